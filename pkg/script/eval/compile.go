package eval

import (
	"regexp"

	"anima-hq/tulpa/pkg/script/ast"
	scripterrors "anima-hq/tulpa/pkg/script/errors"
	"anima-hq/tulpa/pkg/script/validator"
)

// regexMethods are the string methods whose first argument is a regex
// pattern and therefore must be a validator-approved string literal.
var regexMethods = map[string]bool{
	"match":   true,
	"search":  true,
	"replace": true,
	"split":   true,
}

// CompilePatterns walks the tree and pre-compiles every regex pattern
// reaching a matching method. It fails when a pattern argument is not a
// string literal, when the pattern is rejected by the safety validator,
// or when a matchAll call appears anywhere in the tree. The returned map
// is keyed by call node and consulted during evaluation.
func CompilePatterns(root ast.Node) (map[*ast.Call]*regexp.Regexp, error) {
	patterns := make(map[*ast.Call]*regexp.Regexp)
	var firstErr error

	ast.Walk(root, func(n ast.Node) bool {
		call, ok := n.(*ast.Call)
		if !ok {
			return true
		}
		name := call.MethodName()
		if name == "matchAll" {
			firstErr = scripterrors.Syntax(call.Pos(), "matchAll",
				"matchAll is not available, use match instead")
			return false
		}
		if !regexMethods[name] {
			return true
		}

		if len(call.Args) == 0 {
			firstErr = scripterrors.Syntax(call.Pos(), name,
				"%s requires a pattern argument", name)
			return false
		}

		lit, isLit := call.Args[0].(*ast.Literal)
		var pat string
		var isStr bool
		if isLit {
			pat, isStr = lit.StringValue()
		}
		if !isLit || !isStr {
			firstErr = &scripterrors.Error{
				Kind:    scripterrors.KindDynamicPattern,
				Message: name + " requires a string literal pattern",
				Column:  call.Pos() + 1,
			}
			return false
		}

		if err := validator.Validate(pat); err != nil {
			ve := err.(*validator.Error)
			firstErr = &scripterrors.Error{
				Kind:       scripterrors.KindUnsafeRegex,
				Message:    ve.Message,
				Suggestion: ve.Suggestion,
				Column:     call.Pos() + 1,
				Err:        ve,
			}
			return false
		}

		re, err := regexp.Compile(pat)
		if err != nil {
			// Validation accepts a superset of what the host engine
			// compiles (e.g. reversed class ranges), so this is still a
			// user-facing syntax error, not an internal failure.
			firstErr = scripterrors.Syntax(call.Pos(), pat,
				"invalid pattern: %v", err)
			return false
		}
		patterns[call] = re
		return true
	})

	if firstErr != nil {
		return nil, firstErr
	}
	return patterns, nil
}
