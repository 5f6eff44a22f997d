// Package lexer tokenizes Tulpa expression source text.
//
// The token set covers the restricted expression sublanguage only:
// number, string, and boolean literals, identifiers, arithmetic and
// comparison operators, short-circuit logical operators, the ternary
// operator, member/index access, and call punctuation. Anything else is
// a syntax error at tokenization time.
package lexer
