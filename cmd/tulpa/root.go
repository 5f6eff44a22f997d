package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tulpa",
	Short: "Tulpa - fact and expression evaluation engine for chat entities",
	Long: `Tulpa decides, per chat event, whether an autonomous entity should
respond, suppress, or defer its response.

Entity behavior is defined by facts: plain text lines, $if conditionals
written in a sandboxed expression language, $respond/$retry decision
directives, and $edit/$view/$use/$blacklist permission directives. Every
regex pattern in an expression is statically checked for catastrophic
backtracking before it is ever matched.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
