package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type predictCmdConfig struct {
	*rootCmdConfig
	dataInput     string
	metadataInput string
	treeInput     string
	sqlTable      string
	maxDBConns    int
}

func predictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &predictCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict labels for a set of samples",
		Long:  `Use a previously grown tree to predict the binary label of every sample on the input, printing one label per line in input order.`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			ctx := context.Background()
			features, err := loadFeatures(config.metadataInput, "")
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			t, err := loadTree(config.treeInput, features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			tbl, _, err := readInput(ctx, config.dataInput, "", config.sqlTable, config.maxDBConns, features, "")
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			config.Logf("Predicting labels for %d samples...", tbl.Count())
			predicted, err := t.PredictTable(ctx, tbl)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			for _, p := range predicted {
				fmt.Println(p)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL with the samples to predict (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input (required)")
	cmd.PersistentFlags().StringVarP(&(config.treeInput), "tree", "t", "", "path to a file from which the tree will be read and parsed as JSON (required)")
	cmd.PersistentFlags().StringVar(&(config.sqlTable), "sql-table", "samples", "name of the table holding the samples when the input is an SQL database")
	cmd.PersistentFlags().IntVar(&(config.maxDBConns), "max-db-conns", 0, "limit to DB connections opened at a time (defaults to 0: no limit)")
	return cmd
}

func (pcc *predictCmdConfig) Validate() error {
	if pcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if pcc.treeInput == "" {
		return fmt.Errorf("required tree flag was not set")
	}
	return nil
}
