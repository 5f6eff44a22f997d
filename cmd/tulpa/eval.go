package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"anima-hq/tulpa/pkg/script"
	scripterrors "anima-hq/tulpa/pkg/script/errors"
	"anima-hq/tulpa/pkg/script/eval"
)

var evalFlags struct {
	content   string
	author    string
	name      string
	mentioned bool
	replied   bool
	dtMs      float64
	facts     []string
}

var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Compile and evaluate an expression against a sample context",
	Long: `Compile an expression and evaluate it against a sample context built
from the flags. Compile errors (syntax, unsafe regex, dynamic pattern)
are reported with their offset and suggestion, the same way an entity
editor would surface them.

Examples:
  # Simple condition
  tulpa eval 'mentioned && dt_ms > 5000' --mentioned --dt 6000

  # Regex methods require string literal patterns
  tulpa eval 'content.match("\d+")' --content "room 42"

  # Unsafe patterns are rejected at compile time
  tulpa eval 'content.match("(a+)+")'`,
	Args: cobra.ExactArgs(1),
	RunE: evalExpression,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringVar(&evalFlags.content, "content", "", "message content")
	evalCmd.Flags().StringVar(&evalFlags.author, "author", "user", "message author")
	evalCmd.Flags().StringVar(&evalFlags.name, "name", "tulpa", "entity name")
	evalCmd.Flags().BoolVar(&evalFlags.mentioned, "mentioned", false, "entity was mentioned")
	evalCmd.Flags().BoolVar(&evalFlags.replied, "replied", false, "message replies to the entity")
	evalCmd.Flags().Float64Var(&evalFlags.dtMs, "dt", 0, "milliseconds since last response")
	evalCmd.Flags().StringSliceVar(&evalFlags.facts, "fact", nil, "fact line for has_fact (repeatable)")
}

func evalExpression(cmd *cobra.Command, args []string) error {
	compiled, err := script.Compile(args[0])
	if err != nil {
		return formatScriptError(err)
	}

	ctx := &eval.Context{
		Content:   evalFlags.content,
		Author:    evalFlags.author,
		Name:      evalFlags.name,
		Mentioned: evalFlags.mentioned,
		Replied:   evalFlags.replied,
		DtMs:      evalFlags.dtMs,
		Facts:     evalFlags.facts,
	}

	value, err := compiled.Eval(ctx)
	if err != nil {
		return formatScriptError(err)
	}

	fmt.Printf("value: %s\n", eval.Stringify(value))
	fmt.Printf("truthy: %v\n", eval.Truthy(value))
	return nil
}

// formatScriptError renders an expression error with its offset and
// suggestion when present.
func formatScriptError(err error) error {
	var se *scripterrors.Error
	if !errors.As(err, &se) {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s error at column %d: %s", se.Kind, se.Column, se.Message)
	if se.Suggestion != "" {
		fmt.Fprintf(&b, "\n  suggestion: %s", se.Suggestion)
	}
	return errors.New(b.String())
}
