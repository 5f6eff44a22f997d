// Package script is the entry point for the Tulpa expression language.
//
// The language is a sandboxed expression sublanguage evaluated against a
// per-event context: literals, identifiers, member and index access,
// calls, arithmetic, comparison, short-circuit logic, and the ternary
// operator. There is no assignment, no loops, and no user-defined
// functions.
//
// The package is organized into subpackages:
//
//   - ast: Abstract Syntax Tree node definitions
//   - lexer: tokenization
//   - parser: recursive-descent parsing with C-family precedence
//   - validator: static regex safety analysis (ReDoS rejection)
//   - eval: the recursive evaluator and its Context
//   - errors: rich error types with kind, position, and suggestions
//
// # Basic usage
//
// Compile once, evaluate per event:
//
//	compiled, err := script.Compile(`mentioned && content.match("\\bhelp\\b")`)
//	if err != nil {
//	    // syntax, unsafe-regex, or dynamic-pattern error
//	}
//	v, err := compiled.Eval(&eval.Context{Mentioned: true, Content: "help me"})
//
// Compilation intercepts every regex-bearing method call: the pattern
// argument must be a string literal, and the literal must pass the
// safety validator. A Compiled expression therefore never hands an
// unchecked pattern to the regex engine at run time.
package script
