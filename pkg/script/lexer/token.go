package lexer

import "fmt"

// Kind identifies the type of a token.
type Kind int

const (
	// EOF marks the end of input.
	EOF Kind = iota

	// Number is a numeric literal, always lexed as float64.
	Number

	// String is a quoted string literal (single or double quotes).
	String

	// Bool is the keyword true or false.
	Bool

	// Ident is an identifier: names, member names, function names.
	Ident

	// Operators and punctuation.
	Plus     // +
	Minus    // -
	Star     // *
	Slash    // /
	Percent  // %
	Bang     // !
	EqEq     // ==
	BangEq   // !=
	Lt       // <
	Gt       // >
	LtEq     // <=
	GtEq     // >=
	AndAnd   // &&
	OrOr     // ||
	Question // ?
	Colon    // :
	Dot      // .
	Comma    // ,
	LParen   // (
	RParen   // )
	LBracket // [
	RBracket // ]
)

var kindNames = map[Kind]string{
	EOF: "end of input", Number: "number", String: "string", Bool: "boolean",
	Ident: "identifier", Plus: "+", Minus: "-", Star: "*", Slash: "/",
	Percent: "%", Bang: "!", EqEq: "==", BangEq: "!=", Lt: "<", Gt: ">",
	LtEq: "<=", GtEq: ">=", AndAnd: "&&", OrOr: "||", Question: "?",
	Colon: ":", Dot: ".", Comma: ",", LParen: "(", RParen: ")",
	LBracket: "[", RBracket: "]",
}

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a single lexeme with its position in the source.
type Token struct {
	Kind Kind

	// Text is the raw token text. For String tokens, Value holds the
	// unescaped contents instead.
	Text string

	// Value is the decoded value for Number (float64), String (string),
	// and Bool (bool) tokens; nil otherwise.
	Value any

	// Pos is the byte offset of the token's first character.
	Pos int
}

// String returns a description of the token for error messages.
func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "end of input"
	case String:
		return fmt.Sprintf("%q", t.Value)
	default:
		return t.Text
	}
}
