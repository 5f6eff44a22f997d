package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Category identifies which safety rule a pattern violated. Categories
// are stable strings suitable for metrics labels.
type Category string

const (
	CategoryCapturingGroup     Category = "capturing_group"
	CategoryNamedGroup         Category = "named_group"
	CategoryBackreference      Category = "backreference"
	CategoryLookaround         Category = "lookaround"
	CategoryUnknownEscape      Category = "unknown_escape"
	CategoryQuantifiedAnchor   Category = "quantified_anchor"
	CategoryDanglingQuantifier Category = "dangling_quantifier"
	CategoryUnterminated       Category = "unterminated"
	CategoryUnknownGroup       Category = "unknown_group"
	CategoryNestedQuantifier   Category = "nested_quantifier"
)

// Error describes why a pattern was rejected, with a human-readable
// reason and a remedy suggestion where one exists.
type Error struct {
	Category   Category
	Message    string
	Suggestion string
	Pos        int // byte offset into the pattern
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("unsafe pattern: ")
	sb.WriteString(e.Message)
	if e.Suggestion != "" {
		sb.WriteString("; suggestion: ")
		sb.WriteString(e.Suggestion)
	}
	return sb.String()
}

// allowedEscapes lists the shorthand escapes a pattern may use. Anything
// else after a backslash, other than an escaped metacharacter, is
// rejected.
const allowedEscapes = `\d \D \w \W \s \S \t \n \r \b`

// shorthandEscapes are quantifiable single-character escapes.
const shorthandEscapes = "dDwWsStnr"

// escapableMeta are metacharacters that may appear escaped as literals.
const escapableMeta = `.\[](){}+*?^$|-/`

// atomKind tracks what the previous pattern element was, which decides
// whether a quantifier may follow it.
type atomKind int

const (
	atomNone   atomKind = iota // start of pattern, group, or alternation branch
	atomNormal                 // literal, escape, class, dot: quantifiable
	atomAnchor                 // ^ $ \b: zero-width, not quantifiable
	atomGroup                  // a just-closed non-capturing group
)

// scope tracks whether any branch of the current group (or the top
// level) has contained a quantified sub-expression. The flag is sticky
// across alternation branches: if any branch quantifies, quantifying the
// enclosing group is unsafe.
type scope struct {
	quantified bool
}

// Validate statically checks pattern for the unsafe constructs this
// package exists to reject. It returns nil when the pattern is safe, or
// an *Error naming the violated rule.
func Validate(pattern string) error {
	v := &scanner{pattern: pattern, stack: []scope{{}}}
	return v.run()
}

type scanner struct {
	pattern string
	stack   []scope

	last atomKind
	// lastAnchor is the text of the anchor when last == atomAnchor,
	// used in error messages.
	lastAnchor string
	// lastGroupQuantified reports whether the just-closed group (when
	// last == atomGroup) contains a quantified sub-expression at any
	// depth.
	lastGroupQuantified bool
}

func (v *scanner) top() *scope {
	return &v.stack[len(v.stack)-1]
}

func (v *scanner) run() error {
	p := v.pattern
	i := 0
	for i < len(p) {
		switch c := p[i]; c {
		case '\\':
			n, err := v.scanEscape(i)
			if err != nil {
				return err
			}
			i = n

		case '[':
			n, err := v.scanClass(i)
			if err != nil {
				return err
			}
			v.last = atomNormal
			i = n

		case '(':
			n, err := v.scanGroupOpen(i)
			if err != nil {
				return err
			}
			i = n

		case ')':
			if len(v.stack) == 1 {
				return &Error{
					Category: CategoryUnterminated,
					Message:  "unmatched closing parenthesis",
					Pos:      i,
				}
			}
			child := v.stack[len(v.stack)-1]
			v.stack = v.stack[:len(v.stack)-1]
			// An internally quantified group makes every enclosing
			// scope count as quantified, so quantifying any ancestor
			// group is caught no matter how deep the nesting is.
			v.top().quantified = v.top().quantified || child.quantified
			v.last = atomGroup
			v.lastGroupQuantified = child.quantified
			i++

		case '+', '*', '?':
			if err := v.applyQuantifier(string(c), i); err != nil {
				return err
			}
			i++
			i = v.skipLazyMarker(i)

		case '{':
			end, ok := scanBraceQuantifier(p, i)
			if !ok {
				// Invalid brace forms like {x} are literal text.
				v.last = atomNormal
				i++
				break
			}
			if err := v.applyQuantifier(p[i:end], i); err != nil {
				return err
			}
			i = v.skipLazyMarker(end)

		case '^', '$':
			v.last = atomAnchor
			v.lastAnchor = string(c)
			i++

		case '|':
			v.last = atomNone
			i++

		case '.':
			v.last = atomNormal
			i++

		case ']', '}':
			// Unmatched closers are literals, matching common engines.
			v.last = atomNormal
			i++

		default:
			_, size := utf8.DecodeRuneInString(p[i:])
			v.last = atomNormal
			i += size
		}
	}

	if len(v.stack) > 1 {
		return &Error{
			Category: CategoryUnterminated,
			Message:  "unterminated group",
			Pos:      len(p),
		}
	}
	return nil
}

// skipLazyMarker consumes a '?' immediately following a quantifier (the
// lazy modifier). Lazy and greedy quantifiers are treated identically by
// the safety analysis.
func (v *scanner) skipLazyMarker(i int) int {
	if i < len(v.pattern) && v.pattern[i] == '?' {
		return i + 1
	}
	return i
}

func (v *scanner) applyQuantifier(q string, pos int) error {
	switch v.last {
	case atomNone:
		return &Error{
			Category: CategoryDanglingQuantifier,
			Message:  fmt.Sprintf("quantifier %q without preceding element", q),
			Pos:      pos,
		}

	case atomAnchor:
		return &Error{
			Category: CategoryQuantifiedAnchor,
			Message: fmt.Sprintf("quantifier %q applied to zero-width anchor %q, anchors cannot be repeated",
				q, v.lastAnchor),
			Pos: pos,
		}

	case atomGroup:
		if v.lastGroupQuantified {
			return &Error{
				Category: CategoryNestedQuantifier,
				Message: fmt.Sprintf("nested quantifier: the group before %q already contains a quantified expression, and quantifying it again can cause catastrophic backtracking",
					q),
				Suggestion: "flatten the pattern or remove one of the quantifiers",
				Pos:        pos,
			}
		}
	}

	v.top().quantified = true
	v.last = atomNone
	return nil
}

func (v *scanner) scanEscape(i int) (int, error) {
	p := v.pattern
	if i+1 >= len(p) {
		return 0, &Error{
			Category: CategoryUnterminated,
			Message:  "trailing backslash",
			Pos:      i,
		}
	}

	c := p[i+1]
	switch {
	case c >= '1' && c <= '9':
		return 0, &Error{
			Category: CategoryBackreference,
			Message: fmt.Sprintf("backreference %q is not supported, backreferences force exponential backtracking in naive engines",
				p[i:i+2]),
			Pos: i,
		}

	case c == 'b':
		v.last = atomAnchor
		v.lastAnchor = `\b`
		return i + 2, nil

	case strings.IndexByte(shorthandEscapes, c) >= 0:
		v.last = atomNormal
		return i + 2, nil

	case strings.IndexByte(escapableMeta, c) >= 0:
		v.last = atomNormal
		return i + 2, nil

	default:
		return 0, &Error{
			Category: CategoryUnknownEscape,
			Message: fmt.Sprintf("unknown escape %q, allowed escapes are %s and escaped metacharacters",
				p[i:i+2], allowedEscapes),
			Pos: i,
		}
	}
}

// scanClass scans a character class starting at the '[' and returns the
// offset past the closing ']'. A ']' immediately after '[' or '[^' is a
// literal. Escapes inside the class are held to the same allowed set as
// the rest of the pattern.
func (v *scanner) scanClass(i int) (int, error) {
	p := v.pattern
	j := i + 1
	if j < len(p) && p[j] == '^' {
		j++
	}
	if j < len(p) && p[j] == ']' {
		j++
	}
	for j < len(p) {
		switch p[j] {
		case ']':
			return j + 1, nil
		case '\\':
			if j+1 >= len(p) {
				return 0, &Error{
					Category: CategoryUnterminated,
					Message:  "trailing backslash",
					Pos:      j,
				}
			}
			c := p[j+1]
			if strings.IndexByte(shorthandEscapes, c) < 0 &&
				strings.IndexByte(escapableMeta, c) < 0 && c != 'b' {
				return 0, &Error{
					Category: CategoryUnknownEscape,
					Message: fmt.Sprintf("unknown escape %q, allowed escapes are %s and escaped metacharacters",
						p[j:j+2], allowedEscapes),
					Pos: j,
				}
			}
			j += 2
		default:
			j++
		}
	}
	return 0, &Error{
		Category: CategoryUnterminated,
		Message:  "unterminated character class",
		Pos:      i,
	}
}

func (v *scanner) scanGroupOpen(i int) (int, error) {
	p := v.pattern
	rest := p[i:]

	switch {
	case strings.HasPrefix(rest, "(?:"):
		v.stack = append(v.stack, scope{})
		v.last = atomNone
		return i + 3, nil

	case strings.HasPrefix(rest, "(?="):
		return 0, &Error{
			Category: CategoryLookaround,
			Message:  "lookahead \"(?=...)\" is not supported",
			Pos:      i,
		}

	case strings.HasPrefix(rest, "(?!"):
		return 0, &Error{
			Category: CategoryLookaround,
			Message:  "negative lookahead \"(?!...)\" is not supported",
			Pos:      i,
		}

	case strings.HasPrefix(rest, "(?<="):
		return 0, &Error{
			Category: CategoryLookaround,
			Message:  "lookbehind \"(?<=...)\" is not supported",
			Pos:      i,
		}

	case strings.HasPrefix(rest, "(?<!"):
		return 0, &Error{
			Category: CategoryLookaround,
			Message:  "negative lookbehind \"(?<!...)\" is not supported",
			Pos:      i,
		}

	case strings.HasPrefix(rest, "(?<"):
		return 0, &Error{
			Category:   CategoryNamedGroup,
			Message:    "named group \"(?<name>...)\" is not supported, captures are never used",
			Suggestion: "use a non-capturing group \"(?:...)\" instead",
			Pos:        i,
		}

	case strings.HasPrefix(rest, "(?"):
		kind := "(?"
		if len(rest) > 2 {
			r, _ := utf8.DecodeRuneInString(rest[2:])
			kind = "(?" + string(r)
		}
		return 0, &Error{
			Category: CategoryUnknownGroup,
			Message:  fmt.Sprintf("unknown group type %q", kind),
			Pos:      i,
		}

	default:
		return 0, &Error{
			Category:   CategoryCapturingGroup,
			Message:    "capturing group \"(...)\" is not supported, captures are never used",
			Suggestion: "use a non-capturing group \"(?:...)\" instead",
			Pos:        i,
		}
	}
}

// scanBraceQuantifier reports whether p[i:] starts a well-formed brace
// quantifier {n}, {n,}, or {n,m}, and the offset past the closing brace.
// Malformed braces are treated as literal text by the caller.
func scanBraceQuantifier(p string, i int) (end int, ok bool) {
	j := i + 1
	digits := 0
	for j < len(p) && p[j] >= '0' && p[j] <= '9' {
		j++
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if j < len(p) && p[j] == ',' {
		j++
		for j < len(p) && p[j] >= '0' && p[j] <= '9' {
			j++
		}
	}
	if j < len(p) && p[j] == '}' {
		return j + 1, true
	}
	return 0, false
}
