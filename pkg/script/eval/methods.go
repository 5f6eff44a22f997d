package eval

import (
	"strings"

	"anima-hq/tulpa/pkg/script/ast"
	scripterrors "anima-hq/tulpa/pkg/script/errors"
)

func (r *runner) callMethod(call *ast.Call, recv any, name string, args []any) (any, error) {
	if list, ok := recv.([]string); ok {
		return callListMethod(list, name, args)
	}

	s, ok := recv.(string)
	if !ok {
		return nil, typeErr("cannot call method %q on %s", name, typeName(recv))
	}

	if regexMethods[name] {
		return r.callRegexMethod(call, s, name, args)
	}

	switch name {
	case "matchAll":
		// CompilePatterns rejects this before evaluation; the guard
		// covers trees evaluated without the compile step.
		return nil, scripterrors.New(scripterrors.KindSyntax,
			"matchAll is not available, use match instead")

	case "includes":
		arg, err := stringArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		return strings.Contains(s, arg), nil

	case "startsWith":
		arg, err := stringArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		return strings.HasPrefix(s, arg), nil

	case "endsWith":
		arg, err := stringArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		return strings.HasSuffix(s, arg), nil

	case "indexOf":
		arg, err := stringArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		idx := strings.Index(s, arg)
		if idx < 0 {
			return float64(-1), nil
		}
		return float64(len([]rune(s[:idx]))), nil

	case "trim":
		return strings.TrimSpace(s), nil

	case "toLowerCase":
		return strings.ToLower(s), nil

	case "toUpperCase":
		return strings.ToUpper(s), nil
	}

	return nil, typeErr("unknown string method %q", name)
}

func (r *runner) callRegexMethod(call *ast.Call, s, name string, args []any) (any, error) {
	re := r.patterns[call]
	if re == nil {
		// Reaching here means the tree skipped CompilePatterns.
		return nil, &scripterrors.Error{
			Kind:    scripterrors.KindDynamicPattern,
			Message: name + " requires a string literal pattern, expression was evaluated without compilation",
		}
	}

	switch name {
	case "match":
		loc := re.FindStringIndex(s)
		if loc == nil {
			return "", nil
		}
		return s[loc[0]:loc[1]], nil

	case "search":
		loc := re.FindStringIndex(s)
		if loc == nil {
			return float64(-1), nil
		}
		return float64(len([]rune(s[:loc[0]]))), nil

	case "replace":
		if len(args) < 2 {
			return nil, typeErr("replace requires a replacement argument")
		}
		repl, ok := args[1].(string)
		if !ok {
			return nil, typeErr("replace replacement must be a string, got %s", typeName(args[1]))
		}
		// First match only; the replacement is literal text since the
		// dialect has no capture groups to reference.
		loc := re.FindStringIndex(s)
		if loc == nil {
			return s, nil
		}
		return s[:loc[0]] + repl + s[loc[1]:], nil

	case "split":
		return re.Split(s, -1), nil
	}

	return nil, typeErr("unknown regex method %q", name)
}

func callListMethod(list []string, name string, args []any) (any, error) {
	switch name {
	case "includes":
		arg, err := stringArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		for _, s := range list {
			if s == arg {
				return true, nil
			}
		}
		return false, nil

	case "join":
		sep := ","
		if len(args) > 0 {
			s, ok := args[0].(string)
			if !ok {
				return nil, typeErr("join separator must be a string, got %s", typeName(args[0]))
			}
			sep = s
		}
		return strings.Join(list, sep), nil
	}
	return nil, typeErr("unknown list method %q", name)
}

func stringArg(method string, args []any, i int) (string, error) {
	if i >= len(args) {
		return "", typeErr("%s requires a string argument", method)
	}
	s, ok := args[i].(string)
	if !ok {
		return "", typeErr("%s requires a string argument, got %s", method, typeName(args[i]))
	}
	return s, nil
}
