// Package parser builds expression ASTs from source text.
//
// The grammar is a restricted expression sublanguage with conventional
// C-family precedence (ternary lowest, unary highest):
//
//	ternary    := or ("?" ternary ":" ternary)?
//	or         := and ("||" and)*
//	and        := equality ("&&" equality)*
//	equality   := relational (("==" | "!=") relational)*
//	relational := additive (("<" | ">" | "<=" | ">=") additive)*
//	additive   := multiplicative (("+" | "-") multiplicative)*
//	multiplicative := unary (("*" | "/" | "%") unary)*
//	unary      := ("!" | "-") unary | postfix
//	postfix    := primary ("." ident | "[" ternary "]" | "(" args ")")*
//	primary    := number | string | boolean | ident | "(" ternary ")"
//
// There is no assignment, no statements, no loops, and no declarations.
// Parsing malformed input fails with a syntax error identifying the
// offending token; it never partially succeeds.
//
// ParsePrefix consumes the longest valid expression and reports where it
// stopped, which lets directive parsing split "$if <expr>: <body>" on the
// real end of the expression instead of the first colon (a colon may
// belong to a ternary inside <expr>).
package parser
