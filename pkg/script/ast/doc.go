// Package ast defines the Abstract Syntax Tree for the Tulpa expression
// language.
//
// The tree is a closed set of node kinds: literals, identifiers, member
// access, index access, calls, unary/binary/logical operators, and the
// ternary conditional. Nodes are immutable once constructed; a tree is
// owned exclusively by the Compiled expression that produced it.
//
// There are deliberately no statement, assignment, or loop nodes: the
// language evaluates a single expression against a read-only context.
package ast
