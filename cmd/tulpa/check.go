package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"anima-hq/tulpa/pkg/script"
	"anima-hq/tulpa/pkg/script/validator"
)

var checkCmd = &cobra.Command{
	Use:   "check <pattern>",
	Short: "Check a regex pattern against the safety validator",
	Long: `Run a regex pattern through the static safety validator without
compiling or evaluating any expression. Exits non-zero when the pattern
is rejected, printing the rejection category and a suggestion.

Examples:
  tulpa check 'https?://[^\s]+'
  tulpa check '(?:a+)+'`,
	Args: cobra.ExactArgs(1),
	RunE: checkPattern,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func checkPattern(cmd *cobra.Command, args []string) error {
	pattern := args[0]
	if err := script.ValidateRegexPattern(pattern); err != nil {
		var ve *validator.Error
		if errors.As(err, &ve) {
			var suffix string
			if ve.Suggestion != "" {
				suffix = fmt.Sprintf("\n  suggestion: %s", ve.Suggestion)
			}
			return fmt.Errorf("rejected (%s): %s%s", ve.Category, ve.Message, suffix)
		}
		return err
	}
	fmt.Printf("pattern is safe: %s\n", pattern)
	return nil
}
