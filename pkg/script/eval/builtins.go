package eval

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// intArg converts a numeric argument to a positive int, rejecting NaN,
// infinities, and values that do not fit in an int.
func intArg(name string, v any) (int, error) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || f < 1 || f >= float64(math.MaxInt64) {
		return 0, typeErr("%s requires a positive number", name)
	}
	return int(f), nil
}

func (r *runner) callBuiltin(name string, args []any) (any, error) {
	switch name {
	case "random":
		return r.builtinRandom(args)
	case "has_fact":
		s, err := stringArg("has_fact", args, 0)
		if err != nil {
			return nil, err
		}
		return r.ctx.hasFact(s), nil
	case "roll":
		s, err := stringArg("roll", args, 0)
		if err != nil {
			return nil, err
		}
		return r.builtinRoll(s)
	case "messages":
		return r.builtinMessages(args)
	case "duration":
		return builtinDuration(args)
	}
	return nil, typeErr("unknown function %q", name)
}

// random() returns a float in [0, 1); random(n) returns an integer in
// [0, n).
func (r *runner) builtinRandom(args []any) (any, error) {
	if len(args) == 0 {
		return r.ctx.float64n(), nil
	}
	n, err := intArg("random(n)", args[0])
	if err != nil {
		return nil, err
	}
	return float64(r.ctx.intn(n)), nil
}

// builtinRoll evaluates dice notation: "d20", "2d6", "3d8+2", "2d4-1".
func (r *runner) builtinRoll(notation string) (any, error) {
	spec := strings.TrimSpace(strings.ToLower(notation))

	bad := func() error {
		return typeErr("invalid dice notation %q, expected forms like d20, 2d6, or 3d8+2", notation)
	}

	d := strings.IndexByte(spec, 'd')
	if d < 0 {
		return nil, bad()
	}

	count := 1
	if d > 0 {
		n, err := strconv.Atoi(spec[:d])
		if err != nil || n < 1 || n > 100 {
			return nil, bad()
		}
		count = n
	}

	rest := spec[d+1:]
	modifier := 0
	if i := strings.IndexAny(rest, "+-"); i >= 0 {
		m, err := strconv.Atoi(rest[i:])
		if err != nil {
			return nil, bad()
		}
		modifier = m
		rest = rest[:i]
	}

	sides, err := strconv.Atoi(rest)
	if err != nil || sides < 2 || sides > 1000 {
		return nil, bad()
	}

	total := modifier
	for i := 0; i < count; i++ {
		total += r.ctx.intn(sides) + 1
	}
	return float64(total), nil
}

// messages(n), messages(n, format), messages(n, format, filter) renders
// recent history through the caller-supplied callback.
func (r *runner) builtinMessages(args []any) (any, error) {
	if len(args) == 0 {
		return nil, typeErr("messages requires a count argument")
	}
	count, err := intArg("messages count", args[0])
	if err != nil {
		return nil, err
	}
	format := "plain"
	filter := ""
	if len(args) > 1 {
		s, ok := args[1].(string)
		if !ok {
			return nil, typeErr("messages format must be a string, got %s", typeName(args[1]))
		}
		format = s
	}
	if len(args) > 2 {
		s, ok := args[2].(string)
		if !ok {
			return nil, typeErr("messages filter must be a string, got %s", typeName(args[2]))
		}
		filter = s
	}
	if r.ctx.Messages == nil {
		return "", nil
	}
	return r.ctx.Messages(count, format, filter), nil
}

// builtinDuration humanizes a millisecond count into the two largest
// units, e.g. duration(3723000) == "1h 2m".
func builtinDuration(args []any) (any, error) {
	if len(args) == 0 {
		return nil, typeErr("duration requires a millisecond argument")
	}
	ms, ok := args[0].(float64)
	if !ok || math.IsNaN(ms) {
		return nil, typeErr("duration requires a number, got %s", typeName(args[0]))
	}
	if ms < 0 {
		ms = -ms
	}
	// Cap at the longest representable duration instead of letting the
	// multiplication wrap around.
	const maxMs = float64(math.MaxInt64 / int64(time.Millisecond))
	if ms > maxMs {
		ms = maxMs
	}
	d := time.Duration(ms) * time.Millisecond
	if d < time.Second {
		return fmt.Sprintf("%dms", int64(ms)), nil
	}

	units := []struct {
		d    time.Duration
		name string
	}{
		{24 * time.Hour, "d"},
		{time.Hour, "h"},
		{time.Minute, "m"},
		{time.Second, "s"},
	}

	var parts []string
	for _, u := range units {
		if n := d / u.d; n > 0 {
			parts = append(parts, fmt.Sprintf("%d%s", n, u.name))
			d -= n * u.d
		}
		if len(parts) == 2 {
			break
		}
	}
	return strings.Join(parts, " "), nil
}
