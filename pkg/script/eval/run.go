package eval

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"anima-hq/tulpa/pkg/script/ast"
	scripterrors "anima-hq/tulpa/pkg/script/errors"
)

// Run evaluates the tree rooted at root against ctx. patterns is the
// pre-compiled regex map from CompilePatterns; it may be nil when the
// tree is known to contain no regex methods.
func Run(root ast.Node, ctx *Context, patterns map[*ast.Call]*regexp.Regexp) (any, error) {
	r := &runner{ctx: ctx, patterns: patterns}
	return r.eval(root)
}

type runner struct {
	ctx      *Context
	patterns map[*ast.Call]*regexp.Regexp
}

func (r *runner) eval(n ast.Node) (any, error) {
	switch t := n.(type) {
	case *ast.Literal:
		return t.Value, nil

	case *ast.Identifier:
		v, ok := r.ctx.Lookup(t.Name)
		if !ok {
			return nil, typeErr("unknown identifier %q", t.Name)
		}
		return v, nil

	case *ast.Member:
		recv, err := r.eval(t.Recv)
		if err != nil {
			return nil, err
		}
		return member(recv, t.Name)

	case *ast.Index:
		return r.evalIndex(t)

	case *ast.Call:
		return r.evalCall(t)

	case *ast.Unary:
		return r.evalUnary(t)

	case *ast.Binary:
		return r.evalBinary(t)

	case *ast.Logical:
		left, err := r.eval(t.Left)
		if err != nil {
			return nil, err
		}
		// && and || return the deciding operand's value, so chains like
		// self.mood || "neutral" work as fallbacks.
		if t.Op == "&&" {
			if !Truthy(left) {
				return left, nil
			}
			return r.eval(t.Right)
		}
		if Truthy(left) {
			return left, nil
		}
		return r.eval(t.Right)

	case *ast.Ternary:
		cond, err := r.eval(t.Cond)
		if err != nil {
			return nil, err
		}
		if Truthy(cond) {
			return r.eval(t.Then)
		}
		return r.eval(t.Else)
	}

	return nil, typeErr("unsupported expression node %T", n)
}

func (r *runner) evalIndex(t *ast.Index) (any, error) {
	recv, err := r.eval(t.Recv)
	if err != nil {
		return nil, err
	}
	key, err := r.eval(t.Key)
	if err != nil {
		return nil, err
	}

	switch rv := recv.(type) {
	case map[string]string:
		ks, ok := key.(string)
		if !ok {
			return nil, typeErr("map index must be a string, got %s", typeName(key))
		}
		return rv[ks], nil

	case []string:
		i, ok := indexOf(key, len(rv))
		if !ok {
			return nil, nil
		}
		return rv[i], nil

	case string:
		runes := []rune(rv)
		i, ok := indexOf(key, len(runes))
		if !ok {
			return nil, nil
		}
		return string(runes[i]), nil
	}
	return nil, typeErr("cannot index %s", typeName(recv))
}

// indexOf converts a numeric key to a valid slice index. Out-of-range
// and non-numeric keys yield ok=false, which evaluates to nil (falsy)
// rather than an error.
func indexOf(key any, length int) (int, bool) {
	f, ok := key.(float64)
	if !ok {
		return 0, false
	}
	i := int(f)
	if i < 0 || i >= length {
		return 0, false
	}
	return i, true
}

func (r *runner) evalCall(t *ast.Call) (any, error) {
	args := make([]any, len(t.Args))
	for i, a := range t.Args {
		v, err := r.eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	switch callee := t.Callee.(type) {
	case *ast.Member:
		recv, err := r.eval(callee.Recv)
		if err != nil {
			return nil, err
		}
		return r.callMethod(t, recv, callee.Name, args)

	case *ast.Identifier:
		return r.callBuiltin(callee.Name, args)
	}
	return nil, typeErr("expression is not callable")
}

func (r *runner) evalUnary(t *ast.Unary) (any, error) {
	v, err := r.eval(t.Operand)
	if err != nil {
		return nil, err
	}
	if t.Op == "!" {
		return !Truthy(v), nil
	}
	f, ok := v.(float64)
	if !ok {
		return nil, typeErr("unary %q requires a number, got %s", t.Op, typeName(v))
	}
	return -f, nil
}

func (r *runner) evalBinary(t *ast.Binary) (any, error) {
	left, err := r.eval(t.Left)
	if err != nil {
		return nil, err
	}
	right, err := r.eval(t.Right)
	if err != nil {
		return nil, err
	}

	switch t.Op {
	case "==":
		return equals(left, right), nil
	case "!=":
		return !equals(left, right), nil
	case "<", ">", "<=", ">=":
		return compare(t.Op, left, right)
	case "+":
		return add(left, right)
	case "-", "*", "/", "%":
		return arith(t.Op, left, right)
	}
	return nil, typeErr("unsupported operator %q", t.Op)
}

// Truthy reports the general truthiness of a value: false, zero, the
// empty string, the empty list, and nil are falsy.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []string:
		return len(t) > 0
	case []any:
		return len(t) > 0
	case map[string]string:
		return len(t) > 0
	}
	return true
}

// equals compares values of the same type; values of different types
// are never equal.
func equals(a, b any) bool {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	return false
}

func compare(op string, a, b any) (any, error) {
	if af, ok := a.(float64); ok {
		bf, ok := b.(float64)
		if !ok {
			return nil, typeErr("cannot compare number with %s", typeName(b))
		}
		return applyOrder(op, cmpFloat(af, bf)), nil
	}
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		if !ok {
			return nil, typeErr("cannot compare string with %s", typeName(b))
		}
		return applyOrder(op, strings.Compare(as, bs)), nil
	}
	return nil, typeErr("cannot compare %s values", typeName(a))
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func applyOrder(op string, c int) bool {
	switch op {
	case "<":
		return c < 0
	case ">":
		return c > 0
	case "<=":
		return c <= 0
	}
	return c >= 0
}

func add(a, b any) (any, error) {
	af, aNum := a.(float64)
	bf, bNum := b.(float64)
	if aNum && bNum {
		return af + bf, nil
	}
	_, aStr := a.(string)
	_, bStr := b.(string)
	if aStr || bStr {
		return Stringify(a) + Stringify(b), nil
	}
	return nil, typeErr("cannot add %s and %s", typeName(a), typeName(b))
}

func arith(op string, a, b any) (any, error) {
	af, ok := a.(float64)
	if !ok {
		return nil, typeErr("operator %q requires numbers, got %s", op, typeName(a))
	}
	bf, ok := b.(float64)
	if !ok {
		return nil, typeErr("operator %q requires numbers, got %s", op, typeName(b))
	}
	switch op {
	case "-":
		return af - bf, nil
	case "*":
		return af * bf, nil
	case "/":
		return af / bf, nil
	case "%":
		return math.Mod(af, bf), nil
	}
	return nil, typeErr("unsupported operator %q", op)
}

func member(recv any, name string) (any, error) {
	switch rv := recv.(type) {
	case string:
		if name == "length" {
			return float64(len([]rune(rv))), nil
		}
		return nil, typeErr("unknown string property %q", name)

	case []string:
		if name == "length" {
			return float64(len(rv)), nil
		}
		return nil, typeErr("unknown list property %q", name)

	case map[string]string:
		return rv[name], nil

	case TimeInfo:
		switch name {
		case "hour":
			return float64(rv.Hour), nil
		case "minute":
			return float64(rv.Minute), nil
		case "weekday":
			return rv.Weekday, nil
		case "is_day":
			return rv.IsDay, nil
		case "is_night":
			return rv.IsNight, nil
		}
		return nil, typeErr("unknown time property %q", name)

	case ChannelInfo:
		switch name {
		case "name":
			return rv.Name, nil
		case "topic":
			return rv.Topic, nil
		case "nsfw":
			return rv.NSFW, nil
		}
		return nil, typeErr("unknown channel property %q", name)

	case ServerInfo:
		switch name {
		case "id":
			return rv.ID, nil
		case "name":
			return rv.Name, nil
		}
		return nil, typeErr("unknown server property %q", name)
	}
	return nil, typeErr("cannot access property %q on %s", name, typeName(recv))
}

// Stringify renders a value the way the + operator and message output
// expect: numbers without a trailing ".0", lists joined by commas.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []string:
		return strings.Join(t, ",")
	}
	return ""
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []string, []any:
		return "list"
	case map[string]string:
		return "map"
	case TimeInfo:
		return "time"
	case ChannelInfo:
		return "channel"
	case ServerInfo:
		return "server"
	}
	return "value"
}

func typeErr(format string, args ...any) *scripterrors.Error {
	return scripterrors.New(scripterrors.KindType, format, args...)
}
