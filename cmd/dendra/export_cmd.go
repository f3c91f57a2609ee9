package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mbruna/dendra/tree/dot"
	"github.com/spf13/cobra"
)

type exportCmdConfig struct {
	*rootCmdConfig
	metadataInput string
	treeInput     string
	output        string
	format        string
}

func exportCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &exportCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a tree as a graphviz drawing",
		Long:  `Render a previously grown tree with graphviz: internal nodes show their split criterion and leaves their predicted class.`,
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
			config.Logf("Rendering tree to %s as %s...", config.output, config.format)
			if err := dot.RenderFile(ctx, t, config.format, config.output); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the features the tree splits on (required)")
	cmd.PersistentFlags().StringVarP(&(config.treeInput), "tree", "t", "", "path to a file from which the tree will be read and parsed as JSON (required)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "tree.png", "path to the file to render the tree to")
	cmd.PersistentFlags().StringVarP(&(config.format), "format", "f", "png", "format to render the tree in: png, svg, jpg or dot")
	return cmd
}

func (ecc *exportCmdConfig) Validate() error {
	if ecc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if ecc.treeInput == "" {
		return fmt.Errorf("required tree flag was not set")
	}
	return nil
}
