package parser

import (
	"anima-hq/tulpa/pkg/script/ast"
	scripterrors "anima-hq/tulpa/pkg/script/errors"
	"anima-hq/tulpa/pkg/script/lexer"
)

// Parse parses source as a complete expression. Trailing input after the
// expression is a syntax error.
func Parse(source string) (ast.Node, error) {
	node, p, err := parse(source)
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind != lexer.EOF {
		return nil, scripterrors.Syntax(tok.Pos, tok.String(),
			"unexpected %s after expression", tok.String())
	}
	return node, nil
}

// ParsePrefix parses the longest valid expression at the start of source
// and returns the byte offset of the first unconsumed character. The
// caller decides what the remainder means (directive bodies use it for
// the ":" separator). The remainder is lexed tolerantly: free text after
// the expression may contain characters the language cannot tokenize.
func ParsePrefix(source string) (ast.Node, int, error) {
	p := &parser{toks: lexer.LexPrefix(source)}
	node, err := p.parseTernary()
	if err != nil {
		return nil, 0, err
	}
	return node, p.peek().Pos, nil
}

func parse(source string) (ast.Node, *parser, error) {
	toks, err := lexer.Lex(source)
	if err != nil {
		return nil, nil, err
	}
	p := &parser{toks: toks}
	node, err := p.parseTernary()
	if err != nil {
		return nil, nil, err
	}
	return node, p, nil
}

type parser struct {
	toks []lexer.Token
	pos  int
}

func (p *parser) peek() lexer.Token {
	return p.toks[p.pos]
}

func (p *parser) advance() lexer.Token {
	tok := p.toks[p.pos]
	if tok.Kind != lexer.EOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind lexer.Kind) (lexer.Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return tok, scripterrors.Syntax(tok.Pos, tok.String(),
			"expected %q, found %s", kind.String(), tok.String())
	}
	return p.advance(), nil
}

func (p *parser) parseTernary() (ast.Node, error) {
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().Kind != lexer.Question {
		return cond, nil
	}
	q := p.advance()
	thenN, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Colon); err != nil {
		return nil, err
	}
	elseN, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return &ast.Ternary{Cond: cond, Then: thenN, Else: elseN, Offset: q.Pos}, nil
}

func (p *parser) parseOr() (ast.Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind == lexer.OrOr {
		op := p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Logical{Op: "||", Left: left, Right: right, Offset: op.Pos}
	}
	return left, nil
}

func (p *parser) parseAnd() (ast.Node, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind == lexer.AndAnd {
		op := p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &ast.Logical{Op: "&&", Left: left, Right: right, Offset: op.Pos}
	}
	return left, nil
}

func (p *parser) parseEquality() (ast.Node, error) {
	return p.parseBinaryLevel(
		map[lexer.Kind]string{lexer.EqEq: "==", lexer.BangEq: "!="},
		p.parseRelational,
	)
}

func (p *parser) parseRelational() (ast.Node, error) {
	return p.parseBinaryLevel(
		map[lexer.Kind]string{
			lexer.Lt: "<", lexer.Gt: ">", lexer.LtEq: "<=", lexer.GtEq: ">=",
		},
		p.parseAdditive,
	)
}

func (p *parser) parseAdditive() (ast.Node, error) {
	return p.parseBinaryLevel(
		map[lexer.Kind]string{lexer.Plus: "+", lexer.Minus: "-"},
		p.parseMultiplicative,
	)
}

func (p *parser) parseMultiplicative() (ast.Node, error) {
	return p.parseBinaryLevel(
		map[lexer.Kind]string{lexer.Star: "*", lexer.Slash: "/", lexer.Percent: "%"},
		p.parseUnary,
	)
}

func (p *parser) parseBinaryLevel(ops map[lexer.Kind]string, next func() (ast.Node, error)) (ast.Node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := ops[p.peek().Kind]
		if !ok {
			return left, nil
		}
		tok := p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right, Offset: tok.Pos}
	}
}

func (p *parser) parseUnary() (ast.Node, error) {
	tok := p.peek()
	if tok.Kind == lexer.Bang || tok.Kind == lexer.Minus {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		op := "!"
		if tok.Kind == lexer.Minus {
			op = "-"
		}
		return &ast.Unary{Op: op, Operand: operand, Offset: tok.Pos}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (ast.Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Kind {
		case lexer.Dot:
			dot := p.advance()
			name, err := p.expect(lexer.Ident)
			if err != nil {
				return nil, err
			}
			node = &ast.Member{Recv: node, Name: name.Text, Offset: dot.Pos}

		case lexer.LBracket:
			br := p.advance()
			key, err := p.parseTernary()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBracket); err != nil {
				return nil, err
			}
			node = &ast.Index{Recv: node, Key: key, Offset: br.Pos}

		case lexer.LParen:
			paren := p.advance()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			node = &ast.Call{Callee: node, Args: args, Offset: paren.Pos}

		default:
			return node, nil
		}
	}
}

func (p *parser) parseArgs() ([]ast.Node, error) {
	var args []ast.Node
	if p.peek().Kind == lexer.RParen {
		p.advance()
		return args, nil
	}
	for {
		arg, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		switch p.peek().Kind {
		case lexer.Comma:
			p.advance()
		case lexer.RParen:
			p.advance()
			return args, nil
		default:
			tok := p.peek()
			return nil, scripterrors.Syntax(tok.Pos, tok.String(),
				"expected %q or %q in argument list, found %s", ",", ")", tok.String())
		}
	}
}

func (p *parser) parsePrimary() (ast.Node, error) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.Number, lexer.String, lexer.Bool:
		p.advance()
		return &ast.Literal{Value: tok.Value, Offset: tok.Pos}, nil

	case lexer.Ident:
		p.advance()
		return &ast.Identifier{Name: tok.Text, Offset: tok.Pos}, nil

	case lexer.LParen:
		p.advance()
		node, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen); err != nil {
			return nil, err
		}
		return node, nil

	case lexer.EOF:
		return nil, scripterrors.Syntax(tok.Pos, tok.String(), "unexpected end of expression")

	default:
		return nil, scripterrors.Syntax(tok.Pos, tok.String(),
			"unexpected %s", tok.String())
	}
}
