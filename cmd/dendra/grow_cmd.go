package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mbruna/dendra"
	"github.com/mbruna/dendra/feature"
	"github.com/mbruna/dendra/queue"
	queuejson "github.com/mbruna/dendra/queue/json"
	"github.com/mbruna/dendra/queue/redisq"
	"github.com/mbruna/dendra/tree"
	treejson "github.com/mbruna/dendra/tree/json"
	"github.com/mbruna/dendra/tree/redisstore"
	"github.com/spf13/cobra"
	redis "gopkg.in/redis.v5"
)

type growCmdConfig struct {
	*rootCmdConfig
	dataInput       string
	labelsInput     string
	metadataInput   string
	output          string
	label           string
	sqlTable        string
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	queueURL        string
	storeURL        string
	workers         int
	maxDBConns      int
}

func growCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &growCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Grow a classification tree from a set of data",
		Long:  `Grow a binary classification tree from a set of data to predict a binary label.`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			ctx := context.Background()
			var features []feature.Feature
			if config.metadataInput != "" {
				features, err = loadFeatures(config.metadataInput, config.label)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(2)
				}
			}
			tbl, labels, err := readInput(ctx, config.dataInput, config.labelsInput, config.sqlTable, config.maxDBConns, features, config.label)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			if features == nil {
				features = tbl.Features()
			}
			classifier, err := dendra.New(features, config.options()...)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			ts, err := dendra.NewTrainingSet(tbl, labels)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			config.Logf("Growing tree from a set with %d samples and %d features to predict %s ...", tbl.Count(), len(features), config.label)
			t, err := config.grow(ctx, classifier, ts)
			if err != nil {
				fmt.Fprintf(os.Stderr, "growing the tree: %v\n", err)
				os.Exit(6)
			}
			config.Logf("Done")
			config.Logf("%v", t)
			err = outputTree(ctx, config.output, t)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(7)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv), SQLite3 (.db) or NumPy (.npy) file, or a PostgreSQL or MongoDB connection URL with data to use to grow the tree (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVar(&(config.labelsInput), "labels", "", "path to a NumPy (.npy) file with the label vector, when the input is a .npy matrix")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input (required unless the input is .npy)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to a file to which the generated tree will be written in JSON format (defaults to STDOUT)")
	cmd.PersistentFlags().StringVarP(&(config.label), "label", "l", "", "name of the binary column the generated tree should predict (required)")
	cmd.PersistentFlags().StringVar(&(config.sqlTable), "sql-table", "samples", "name of the table holding the samples when the input is an SQL database")
	cmd.PersistentFlags().IntVar(&(config.maxDepth), "max-depth", -1, "maximum depth of the grown tree (negative: unbounded)")
	cmd.PersistentFlags().IntVar(&(config.minSamplesSplit), "min-samples-split", 0, "minimum subsample size for a node to be split (0: no minimum)")
	cmd.PersistentFlags().IntVar(&(config.minSamplesLeaf), "min-samples-leaf", 0, "minimum subsample size of each side of a split for it to be valid (0: no minimum)")
	cmd.PersistentFlags().StringVar(&(config.queueURL), "queue", "", "redis URL to use as task queue, to share growing across processes (defaults to an in-memory queue)")
	cmd.PersistentFlags().StringVar(&(config.storeURL), "node-store", "", "redis URL to use as node store, to share growing across processes (defaults to an in-memory store)")
	cmd.PersistentFlags().IntVar(&(config.workers), "workers", 1, "number of workers expanding nodes concurrently (more than 1 may reorder node IDs)")
	cmd.PersistentFlags().IntVar(&(config.maxDBConns), "max-db-conns", 0, "limit to DB connections opened at a time (defaults to 0: no limit)")
	return cmd
}

func (gcc *growCmdConfig) Validate() error {
	if gcc.metadataInput == "" && !isNpy(gcc.dataInput) {
		return fmt.Errorf("required metadata flag was not set")
	}
	if gcc.label == "" && gcc.labelsInput == "" {
		return fmt.Errorf("required label flag was not set")
	}
	if gcc.workers < 1 {
		return fmt.Errorf("workers flag must be at least 1")
	}
	return nil
}

func (gcc *growCmdConfig) options() []dendra.Option {
	return []dendra.Option{
		dendra.MaxDepth(gcc.maxDepth),
		dendra.MinSamplesSplit(gcc.minSamplesSplit),
		dendra.MinSamplesLeaf(gcc.minSamplesLeaf),
	}
}

func (gcc *growCmdConfig) grow(ctx context.Context, classifier *dendra.Classifier, ts *dendra.TrainingSet) (*tree.Tree, error) {
	ns, err := gcc.nodeStore(classifier)
	if err != nil {
		return nil, err
	}
	defer ns.Close(ctx)
	q, err := gcc.taskQueue(ns)
	if err != nil {
		return nil, err
	}
	defer q.Stop(ctx)
	t, err := dendra.Seed(ctx, classifier, ts, q, ns)
	if err != nil {
		return nil, err
	}
	errs := make(chan error, gcc.workers)
	var wg sync.WaitGroup
	for i := 0; i < gcc.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- dendra.Work(ctx, classifier, t, q, ts, 100*time.Millisecond)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (gcc *growCmdConfig) nodeStore(classifier *dendra.Classifier) (tree.NodeStore, error) {
	if gcc.storeURL == "" {
		return tree.NewMemoryNodeStore(), nil
	}
	opts, err := redis.ParseURL(gcc.storeURL)
	if err != nil {
		return nil, fmt.Errorf("parsing node-store URL: %v", err)
	}
	ned := treejson.NewNodeEncodeDecoder(classifier.Features())
	return redisstore.New(redis.NewClient(opts), "dendra:nodes", ned), nil
}

func (gcc *growCmdConfig) taskQueue(ns tree.NodeStore) (queue.Queue, error) {
	if gcc.queueURL == "" {
		return queue.New(), nil
	}
	opts, err := redis.ParseURL(gcc.queueURL)
	if err != nil {
		return nil, fmt.Errorf("parsing queue URL: %v", err)
	}
	return redisq.New("dendra", redis.NewClient(opts), queuejson.New(ns)), nil
}

func isNpy(input string) bool {
	return len(input) > 4 && input[len(input)-4:] == ".npy"
}
