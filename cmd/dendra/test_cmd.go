package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type testCmdConfig struct {
	*rootCmdConfig
	dataInput     string
	metadataInput string
	treeInput     string
	label         string
	sqlTable      string
	maxDBConns    int
}

func testCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &testCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the performance of a tree against a labeled set of data",
		Long:  `Test the prediction accuracy of a previously grown tree against a labeled set of data.`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			ctx := context.Background()
			features, err := loadFeatures(config.metadataInput, config.label)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			t, err := loadTree(config.treeInput, features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			tbl, labels, err := readInput(ctx, config.dataInput, "", config.sqlTable, config.maxDBConns, features, config.label)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			config.Logf("Testing tree against %d samples...", tbl.Count())
			accuracy, err := t.Test(ctx, tbl, labels)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			fmt.Printf("%f success rate over %d samples\n", accuracy, tbl.Count())
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL with the labeled samples (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input (required)")
	cmd.PersistentFlags().StringVarP(&(config.treeInput), "tree", "t", "", "path to a file from which the tree will be read and parsed as JSON (required)")
	cmd.PersistentFlags().StringVarP(&(config.label), "label", "l", "", "name of the binary column the tree predicts (required)")
	cmd.PersistentFlags().StringVar(&(config.sqlTable), "sql-table", "samples", "name of the table holding the samples when the input is an SQL database")
	cmd.PersistentFlags().IntVar(&(config.maxDBConns), "max-db-conns", 0, "limit to DB connections opened at a time (defaults to 0: no limit)")
	return cmd
}

func (tcc *testCmdConfig) Validate() error {
	if tcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if tcc.treeInput == "" {
		return fmt.Errorf("required tree flag was not set")
	}
	if tcc.label == "" {
		return fmt.Errorf("required label flag was not set")
	}
	return nil
}
