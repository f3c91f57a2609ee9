package main

import (
	"os"

	"github.com/spf13/cobra"
)

type rootCmdConfig struct {
	verbose bool
}

func main() {
	if err := cliParser().Execute(); err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dendra",
		Short: "dendra is a tool to grow binary classification trees",
		Long:  `A tool to grow Gini-based classification trees from your data, test them, visualize them, and use them to classify new samples`,
	}
	config := &rootCmdConfig{}
	rootCmd.PersistentFlags().BoolVarP(&(config.verbose), "verbose", "v", false, "")
	rootCmd.AddCommand(versionCmd(), growCmd(config), predictCmd(config), testCmd(config), exportCmd(config))
	return rootCmd
}

func (rcc *rootCmdConfig) Logf(format string, a ...interface{}) {
	logger(rcc.verbose).Logf(format, a...)
}
