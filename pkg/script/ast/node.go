package ast

import (
	"fmt"
	"strings"
)

// Node is the interface implemented by every expression node.
type Node interface {
	// Pos returns the byte offset of the node in the source expression.
	Pos() int

	// String returns a parenthesized representation for debugging.
	String() string

	node()
}

// Literal represents a number, string, or boolean literal.
// Numbers are always float64; strings carry their unescaped value.
type Literal struct {
	Value  any // float64, string, or bool
	Offset int
}

func (n *Literal) Pos() int { return n.Offset }
func (n *Literal) node()    {}
func (n *Literal) String() string {
	if s, ok := n.Value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", n.Value)
}

// StringValue returns the literal's string value and whether it is a string.
func (n *Literal) StringValue() (string, bool) {
	s, ok := n.Value.(string)
	return s, ok
}

// Identifier represents a bare name resolved against the evaluation context.
type Identifier struct {
	Name   string
	Offset int
}

func (n *Identifier) Pos() int       { return n.Offset }
func (n *Identifier) node()          {}
func (n *Identifier) String() string { return n.Name }

// Member represents property access: recv.name.
type Member struct {
	Recv   Node
	Name   string
	Offset int
}

func (n *Member) Pos() int       { return n.Offset }
func (n *Member) node()          {}
func (n *Member) String() string { return fmt.Sprintf("%s.%s", n.Recv, n.Name) }

// Index represents subscript access: recv[key].
type Index struct {
	Recv   Node
	Key    Node
	Offset int
}

func (n *Index) Pos() int       { return n.Offset }
func (n *Index) node()          {}
func (n *Index) String() string { return fmt.Sprintf("%s[%s]", n.Recv, n.Key) }

// Call represents a function or method invocation. Method calls have a
// *Member callee; context function calls have an *Identifier callee.
type Call struct {
	Callee Node
	Args   []Node
	Offset int
}

func (n *Call) Pos() int { return n.Offset }
func (n *Call) node()    {}
func (n *Call) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", n.Callee, strings.Join(args, ", "))
}

// MethodName returns the method name when the callee is a member access,
// or "" for plain function calls.
func (n *Call) MethodName() string {
	if m, ok := n.Callee.(*Member); ok {
		return m.Name
	}
	return ""
}

// Unary represents prefix negation: !x or -x.
type Unary struct {
	Op      string // "!" or "-"
	Operand Node
	Offset  int
}

func (n *Unary) Pos() int       { return n.Offset }
func (n *Unary) node()          {}
func (n *Unary) String() string { return fmt.Sprintf("(%s%s)", n.Op, n.Operand) }

// Binary represents arithmetic and comparison operators:
// + - * / % == != < > <= >=.
type Binary struct {
	Op     string
	Left   Node
	Right  Node
	Offset int
}

func (n *Binary) Pos() int       { return n.Offset }
func (n *Binary) node()          {}
func (n *Binary) String() string { return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right) }

// Logical represents short-circuit && and ||. It is distinct from Binary
// because the right operand must not be evaluated when the left operand
// decides the result.
type Logical struct {
	Op     string // "&&" or "||"
	Left   Node
	Right  Node
	Offset int
}

func (n *Logical) Pos() int       { return n.Offset }
func (n *Logical) node()          {}
func (n *Logical) String() string { return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right) }

// Ternary represents the conditional operator: cond ? then : else.
type Ternary struct {
	Cond   Node
	Then   Node
	Else   Node
	Offset int
}

func (n *Ternary) Pos() int { return n.Offset }
func (n *Ternary) node()    {}
func (n *Ternary) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", n.Cond, n.Then, n.Else)
}

// Walk calls fn for every node in the tree rooted at n, parents before
// children. It stops early if fn returns false.
func Walk(n Node, fn func(Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	switch t := n.(type) {
	case *Member:
		return Walk(t.Recv, fn)
	case *Index:
		return Walk(t.Recv, fn) && Walk(t.Key, fn)
	case *Call:
		if !Walk(t.Callee, fn) {
			return false
		}
		for _, a := range t.Args {
			if !Walk(a, fn) {
				return false
			}
		}
		return true
	case *Unary:
		return Walk(t.Operand, fn)
	case *Binary:
		return Walk(t.Left, fn) && Walk(t.Right, fn)
	case *Logical:
		return Walk(t.Left, fn) && Walk(t.Right, fn)
	case *Ternary:
		return Walk(t.Cond, fn) && Walk(t.Then, fn) && Walk(t.Else, fn)
	}
	return true
}
