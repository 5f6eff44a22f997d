package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	scripterrors "anima-hq/tulpa/pkg/script/errors"
)

// Lex tokenizes source and returns the full token stream, terminated by
// an EOF token. It fails with a syntax error on the first unrecognized
// character or unterminated string; it never returns a partial stream.
func Lex(source string) ([]Token, error) {
	l := &lexer{src: source}
	var toks []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks, nil
		}
	}
}

// LexPrefix tokenizes the longest lexable prefix of source. Instead of
// failing on unrecognized input, it stops there and terminates the
// stream with an EOF token at that position. Directive parsing uses it
// when only the leading expression is token text and the rest is free
// form.
func LexPrefix(source string) []Token {
	l := &lexer{src: source}
	var toks []Token
	for {
		before := l.pos
		tok, err := l.next()
		if err != nil {
			l.pos = before
			l.skipSpace()
			toks = append(toks, Token{Kind: EOF, Pos: l.pos})
			return toks
		}
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks
		}
	}
}

type lexer struct {
	src string
	pos int
}

func (l *lexer) next() (Token, error) {
	l.skipSpace()
	start := l.pos

	if l.pos >= len(l.src) {
		return Token{Kind: EOF, Pos: start}, nil
	}

	c := l.src[l.pos]
	switch {
	case c >= '0' && c <= '9':
		return l.lexNumber()
	case c == '"' || c == '\'':
		return l.lexString()
	case isIdentStart(rune(c)):
		return l.lexIdent()
	}

	// Two-character operators first.
	if l.pos+1 < len(l.src) {
		two := l.src[l.pos : l.pos+2]
		if k, ok := twoCharOps[two]; ok {
			l.pos += 2
			return Token{Kind: k, Text: two, Pos: start}, nil
		}
	}

	if k, ok := oneCharOps[c]; ok {
		l.pos++
		return Token{Kind: k, Text: string(c), Pos: start}, nil
	}

	// Lone & or | reads better as a dedicated error than "unexpected character".
	if c == '&' || c == '|' {
		return Token{}, scripterrors.Syntax(start, string(c),
			"unexpected %q, logical operators are %q and %q", string(c), "&&", "||")
	}

	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	_ = size
	return Token{}, scripterrors.Syntax(start, string(r), "unexpected character %q", string(r))
}

var twoCharOps = map[string]Kind{
	"==": EqEq, "!=": BangEq, "<=": LtEq, ">=": GtEq, "&&": AndAnd, "||": OrOr,
}

var oneCharOps = map[byte]Kind{
	'+': Plus, '-': Minus, '*': Star, '/': Slash, '%': Percent, '!': Bang,
	'<': Lt, '>': Gt, '?': Question, ':': Colon, '.': Dot, ',': Comma,
	'(': LParen, ')': RParen, '[': LBracket, ']': RBracket,
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			l.pos++
			continue
		}
		break
	}
}

func (l *lexer) lexNumber() (Token, error) {
	start := l.pos
	seenDot := false
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c >= '0' && c <= '9' {
			l.pos++
			continue
		}
		if c == '.' && !seenDot && l.pos+1 < len(l.src) &&
			l.src[l.pos+1] >= '0' && l.src[l.pos+1] <= '9' {
			// A dot not followed by a digit is member access, not a decimal
			// point, so 1.floor-style inputs tokenize as Number Dot Ident.
			seenDot = true
			l.pos++
			continue
		}
		break
	}
	text := l.src[start:l.pos]
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Token{}, scripterrors.Syntax(start, text, "invalid number literal")
	}
	return Token{Kind: Number, Text: text, Value: f, Pos: start}, nil
}

// lexString handles single- and double-quoted strings. Escapes \n \t \r
// \\ \" \' are decoded; any other backslash sequence is kept verbatim
// (backslash included) so regex patterns like "\d+" survive untouched.
func (l *lexer) lexString() (Token, error) {
	start := l.pos
	quote := l.src[l.pos]
	l.pos++

	var sb strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case quote:
			l.pos++
			return Token{
				Kind: String, Text: l.src[start:l.pos],
				Value: sb.String(), Pos: start,
			}, nil
		case '\\':
			if l.pos+1 >= len(l.src) {
				return Token{}, scripterrors.Syntax(start, l.src[start:],
					"unterminated string literal")
			}
			esc := l.src[l.pos+1]
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\', '"', '\'':
				sb.WriteByte(esc)
			default:
				sb.WriteByte('\\')
				sb.WriteByte(esc)
			}
			l.pos += 2
		default:
			sb.WriteByte(c)
			l.pos++
		}
	}
	return Token{}, scripterrors.Syntax(start, l.src[start:], "unterminated string literal")
}

func (l *lexer) lexIdent() (Token, error) {
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(rune(l.src[l.pos])) {
		l.pos++
	}
	text := l.src[start:l.pos]
	switch text {
	case "true":
		return Token{Kind: Bool, Text: text, Value: true, Pos: start}, nil
	case "false":
		return Token{Kind: Bool, Text: text, Value: false, Pos: start}, nil
	}
	return Token{Kind: Ident, Text: text, Pos: start}, nil
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
