package script

import (
	"regexp"

	"anima-hq/tulpa/pkg/script/ast"
	"anima-hq/tulpa/pkg/script/eval"
	"anima-hq/tulpa/pkg/script/parser"
	"anima-hq/tulpa/pkg/script/validator"
)

// Compiled is a parsed, pattern-validated expression ready for repeated
// evaluation. It is immutable and safe for concurrent use.
type Compiled struct {
	source   string
	root     ast.Node
	patterns map[*ast.Call]*regexp.Regexp
}

// Compile parses source and validates every regex pattern it contains.
// It fails with a syntax error on malformed input, a dynamic-pattern
// error when a regex method's pattern argument is not a string literal,
// and an unsafe-regex error when a literal pattern is rejected by the
// safety validator.
func Compile(source string) (*Compiled, error) {
	root, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	patterns, err := eval.CompilePatterns(root)
	if err != nil {
		return nil, err
	}
	return &Compiled{source: source, root: root, patterns: patterns}, nil
}

// Eval evaluates the compiled expression against ctx.
func (c *Compiled) Eval(ctx *eval.Context) (any, error) {
	return eval.Run(c.root, ctx, c.patterns)
}

// EvalTruthy evaluates the expression and coerces the result to a
// boolean using the language's truthiness rules.
func (c *Compiled) EvalTruthy(ctx *eval.Context) (bool, error) {
	v, err := c.Eval(ctx)
	if err != nil {
		return false, err
	}
	return eval.Truthy(v), nil
}

// Source returns the original expression source.
func (c *Compiled) Source() string {
	return c.source
}

// Eval is a convenience that compiles and evaluates in one call. Prefer
// Compile when the same expression runs more than once.
func Eval(source string, ctx *eval.Context) (any, error) {
	c, err := Compile(source)
	if err != nil {
		return nil, err
	}
	return c.Eval(ctx)
}

// ValidateRegexPattern statically checks a regex pattern without
// compiling an expression. It is used for pre-flight validation in
// editor and preview surfaces.
func ValidateRegexPattern(pattern string) error {
	return validator.Validate(pattern)
}
