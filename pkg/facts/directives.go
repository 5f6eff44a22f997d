package facts

import (
	"regexp"
	"strconv"
	"strings"

	scripterrors "anima-hq/tulpa/pkg/script/errors"
	"anima-hq/tulpa/pkg/script/parser"
)

type lineKind int

const (
	linePlain lineKind = iota
	lineIf
	lineRespond
	lineRetry
	lineEdit
	lineView
	lineUse
	lineBlacklist
	lineLocked
	lineConfig
)

// parsedLine is one classified fact line. Exactly the fields for its
// kind are populated.
type parsedLine struct {
	kind    lineKind
	text    string // plain fact text, or $locked message
	expr    string // $if condition source
	body    string // $if gated body
	respond bool   // $respond value
	retryMs int
	list    string // raw list text for edit/view/use/blacklist
	key     string // config key
	value   string // config value
}

// configKeyRe matches "key: value" facts. The key is lowercase and the
// colon must be followed by whitespace, so prose like "Note: likes tea"
// and URLs stay plain facts.
var configKeyRe = regexp.MustCompile(`^([a-z][a-z0-9_]*):[ \t]+(.+)$`)

// parseLine classifies a single fact line. Directive keywords are
// case-sensitive and recognized at line start only.
func parseLine(line string) (parsedLine, error) {
	trimmed := strings.TrimSpace(line)

	switch {
	case strings.HasPrefix(trimmed, "$if "):
		return parseIf(trimmed)

	case trimmed == "$respond":
		return parsedLine{kind: lineRespond, respond: true}, nil

	case strings.HasPrefix(trimmed, "$respond "):
		arg := strings.TrimSpace(strings.TrimPrefix(trimmed, "$respond "))
		switch arg {
		case "false":
			return parsedLine{kind: lineRespond, respond: false}, nil
		case "true":
			return parsedLine{kind: lineRespond, respond: true}, nil
		}
		return parsedLine{}, scripterrors.New(scripterrors.KindSyntax,
			"$respond takes no argument or \"false\", got %q", arg)

	case strings.HasPrefix(trimmed, "$retry "):
		arg := strings.TrimSpace(strings.TrimPrefix(trimmed, "$retry "))
		ms, err := strconv.Atoi(arg)
		if err != nil || ms <= 0 {
			return parsedLine{}, scripterrors.New(scripterrors.KindSyntax,
				"$retry requires a positive millisecond count, got %q", arg)
		}
		return parsedLine{kind: lineRetry, retryMs: ms}, nil

	case strings.HasPrefix(trimmed, "$edit "):
		return parsedLine{kind: lineEdit, list: strings.TrimPrefix(trimmed, "$edit ")}, nil

	case strings.HasPrefix(trimmed, "$view "):
		return parsedLine{kind: lineView, list: strings.TrimPrefix(trimmed, "$view ")}, nil

	case strings.HasPrefix(trimmed, "$use "):
		return parsedLine{kind: lineUse, list: strings.TrimPrefix(trimmed, "$use ")}, nil

	case strings.HasPrefix(trimmed, "$blacklist "):
		return parsedLine{kind: lineBlacklist, list: strings.TrimPrefix(trimmed, "$blacklist ")}, nil

	case trimmed == "$locked":
		return parsedLine{kind: lineLocked}, nil

	case strings.HasPrefix(trimmed, "$locked "):
		return parsedLine{kind: lineLocked, text: strings.TrimSpace(strings.TrimPrefix(trimmed, "$locked "))}, nil
	}

	if m := configKeyRe.FindStringSubmatch(trimmed); m != nil {
		return parsedLine{kind: lineConfig, key: m[1], value: strings.TrimSpace(m[2]), text: trimmed}, nil
	}

	return parsedLine{kind: linePlain, text: line}, nil
}

// parseIf splits "$if <expr>: <body>" on the real end of the expression.
// ParsePrefix consumes the longest valid expression, so a ":" belonging
// to a ternary inside <expr> is never mistaken for the body separator.
func parseIf(line string) (parsedLine, error) {
	rest := strings.TrimPrefix(line, "$if ")

	_, end, err := parser.ParsePrefix(rest)
	if err != nil {
		return parsedLine{}, err
	}

	expr := strings.TrimSpace(rest[:end])
	tail := strings.TrimSpace(rest[end:])
	if !strings.HasPrefix(tail, ":") {
		return parsedLine{}, scripterrors.New(scripterrors.KindSyntax,
			"$if requires \":\" after the condition")
	}
	body := strings.TrimSpace(tail[1:])
	if body == "" {
		return parsedLine{}, scripterrors.New(scripterrors.KindSyntax,
			"$if requires a fact or directive after \":\"")
	}
	return parsedLine{kind: lineIf, expr: expr, body: body}, nil
}

// Classify scans an ordered fact list into plain facts, conditionals,
// and permission directives without evaluating any expression. Malformed
// directive lines are skipped; callers that need the errors use
// EvaluateFacts.
func Classify(factLines []string) *Classified {
	c := &Classified{Permissions: &Permissions{}}
	for i, line := range factLines {
		p, err := parseLine(line)
		if err != nil {
			continue
		}
		switch p.kind {
		case linePlain:
			c.Plain = append(c.Plain, p.text)
		case lineIf:
			c.Conditionals = append(c.Conditionals, Conditional{Expr: p.expr, Body: p.body, Index: i})
		default:
			applyPermissionLine(c.Permissions, p)
		}
	}
	return c
}

// applyPermissionLine folds a permission directive into p. Non-permission
// directives are ignored.
func applyPermissionLine(p *Permissions, line parsedLine) {
	switch line.kind {
	case lineEdit:
		p.Edit = ParseList(line.list)
	case lineView:
		p.View = ParseList(line.list)
	case lineUse:
		p.Use = ParseList(line.list)
	case lineBlacklist:
		p.Blacklist = append(p.Blacklist, ParseList(line.list).Entries...)
	case lineLocked:
		p.Locked = true
		p.LockMessage = line.text
	}
}
