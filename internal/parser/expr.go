package parser

import (
	"github.com/hybris-lang/hybris/internal/ast"
	"github.com/hybris-lang/hybris/internal/token"
)

// parseExpression is the Pratt loop: parse one prefix term, then keep
// folding in infix/postfix operators whose precedence exceeds minPrec.
func (p *Parser) parseExpression(minPrec int) (ast.Expression, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for {
		left, err = p.parsePostfix(left)
		if err != nil {
			return nil, err
		}

		switch p.cur.Kind {
		case token.ASSIGN:
			if minPrec > precAssign {
				return left, nil
			}
			tok := p.cur
			p.next()
			val, err := p.parseExpression(precAssign)
			if err != nil {
				return nil, err
			}
			left, err = p.wrapAssign(tok, left, val)
			if err != nil {
				return nil, err
			}
			continue
		case token.PLUS_EQ, token.MINUS_EQ, token.STAR_EQ, token.SLASH_EQ, token.PERCENT_EQ,
			token.BIT_AND_EQ, token.BIT_OR_EQ, token.BIT_XOR_EQ, token.SHL_EQ, token.SHR_EQ:
			if minPrec > precAssign {
				return left, nil
			}
			tok := p.cur
			op := compoundOpOf[tok.Kind]
			p.next()
			val, err := p.parseExpression(precAssign)
			if err != nil {
				return nil, err
			}
			left = &ast.CompoundAssignExpr{Token: tok, Op: op, Target: left, Value: val}
			continue
		case token.QUESTION:
			if minPrec > precTernary {
				return left, nil
			}
			tok := p.cur
			p.next()
			then, err := p.parseExpression(precTernary)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.COLON); err != nil {
				return nil, err
			}
			alt, err := p.parseExpression(precTernary)
			if err != nil {
				return nil, err
			}
			left = &ast.TernaryExpr{Token: tok, Cond: left, Then: then, Else: alt}
			continue
		}

		prec, ok := binPrec[p.cur.Kind]
		if !ok || prec < minPrec {
			return left, nil
		}
		tok := p.cur
		op := binOpOf[tok.Kind]
		p.next()
		right, err := p.parseExpression(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Token: tok, Op: op, Left: left, Right: right}
	}
}

// wrapAssign builds an AssignExpr for an identifier/attribute target, or an
// IndexAssignExpr when the target is a subscript (spec.md §4.E "Assignment",
// "Index set/push").
func (p *Parser) wrapAssign(tok token.Token, target, val ast.Expression) (ast.Expression, error) {
	if idx, ok := target.(*ast.IndexExpr); ok {
		return &ast.IndexAssignExpr{Token: tok, Collection: idx.Collection, Index: idx.Index, Value: val}, nil
	}
	if push, ok := target.(*ast.IndexAssignExpr); ok && push.Index == nil && push.Value == nil {
		return &ast.IndexAssignExpr{Token: tok, Collection: push.Collection, Value: val}, nil
	}
	return &ast.AssignExpr{Token: tok, Target: target, Value: val}, nil
}

func (p *Parser) parsePrefix() (ast.Expression, error) {
	switch p.cur.Kind {
	case token.INT:
		tok := p.cur
		p.next()
		return &ast.IntegerLiteral{Token: tok, Value: tok.IntVal}, nil
	case token.FLOAT:
		tok := p.cur
		p.next()
		return &ast.FloatLiteral{Token: tok, Value: tok.FltVal}, nil
	case token.CHAR:
		tok := p.cur
		p.next()
		return &ast.CharLiteral{Token: tok, Value: tok.ChrVal}, nil
	case token.STRING:
		tok := p.cur
		p.next()
		parts := make([]ast.StringPart, len(tok.StrPart))
		for i, sp := range tok.StrPart {
			parts[i] = ast.StringPart{Literal: sp.Literal, Ident: sp.Ident}
		}
		return &ast.StringLiteral{Token: tok, Value: tok.Lexeme, Parts: parts}, nil
	case token.TRUE:
		tok := p.cur
		p.next()
		return &ast.BoolLiteral{Token: tok, Value: true}, nil
	case token.FALSE:
		tok := p.cur
		p.next()
		return &ast.BoolLiteral{Token: tok, Value: false}, nil
	case token.NIL_KW:
		tok := p.cur
		p.next()
		return &ast.NilLiteral{Token: tok}, nil
	case token.IDENT:
		tok := p.cur
		p.next()
		return &ast.Identifier{Token: tok, Name: tok.Lexeme}, nil
	case token.DOLLAR:
		tok := p.cur
		p.next()
		expr, err := p.parseExpression(precUnary)
		if err != nil {
			return nil, err
		}
		return &ast.DollarExpr{Token: tok, Expr: expr}, nil
	case token.NEW:
		return p.parseNew()
	case token.LPAREN:
		p.next()
		expr, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	case token.LBRACK:
		return p.parseVectorLiteral()
	case token.LBRACE:
		return p.parseMapLiteral()
	case token.MINUS:
		tok := p.cur
		p.next()
		operand, err := p.parseExpression(precUnary)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Token: tok, Op: ast.OpNeg, Operand: operand}, nil
	case token.NOT:
		tok := p.cur
		p.next()
		operand, err := p.parseExpression(precUnary)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Token: tok, Op: ast.OpNot, Operand: operand}, nil
	case token.BIT_NOT:
		tok := p.cur
		p.next()
		operand, err := p.parseExpression(precUnary)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Token: tok, Op: ast.OpBitNot, Operand: operand}, nil
	case token.INC:
		tok := p.cur
		p.next()
		operand, err := p.parseExpression(precUnary)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Token: tok, Op: ast.OpPreInc, Operand: operand}, nil
	case token.DEC:
		tok := p.cur
		p.next()
		operand, err := p.parseExpression(precUnary)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Token: tok, Op: ast.OpPreDec, Operand: operand}, nil
	}
	return nil, p.errf("unexpected token %q in expression", p.cur.Lexeme)
}

// parsePostfix folds in call/index/attribute-access chains, which bind
// tighter than any infix operator (spec.md §4.E "Call", "Index get",
// "Attribute access").
func (p *Parser) parsePostfix(left ast.Expression) (ast.Expression, error) {
	for {
		switch p.cur.Kind {
		case token.LPAREN:
			tok := p.cur
			p.next()
			var args []ast.Expression
			for !p.curIs(token.RPAREN) {
				arg, err := p.parseExpression(precAssign)
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.curIs(token.COMMA) {
					p.next()
				}
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
			left = &ast.CallExpr{Token: tok, Callee: left, Args: args}
		case token.LBRACK:
			tok := p.cur
			p.next()
			if p.curIs(token.RBRACK) {
				p.next()
				left = &ast.IndexAssignExpr{Token: tok, Collection: left, Index: nil}
				continue
			}
			idx, err := p.parseExpression(precLowest)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACK); err != nil {
				return nil, err
			}
			left = &ast.IndexExpr{Token: tok, Collection: left, Index: idx}
		case token.ARROW:
			tok := p.cur
			p.next()
			name, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			left = &ast.AttributeAccess{Token: tok, Object: left, Name: name.Lexeme}
		default:
			return left, nil
		}
	}
}

func (p *Parser) parseNew() (ast.Expression, error) {
	tok := p.cur
	p.next()
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	expr := &ast.NewExpr{Token: tok, ClassName: name.Lexeme}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	for !p.curIs(token.RPAREN) {
		arg, err := p.parseExpression(precAssign)
		if err != nil {
			return nil, err
		}
		expr.Args = append(expr.Args, arg)
		if p.curIs(token.COMMA) {
			p.next()
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) parseVectorLiteral() (ast.Expression, error) {
	tok := p.cur
	p.next()
	lit := &ast.VectorLiteral{Token: tok}
	for !p.curIs(token.RBRACK) {
		el, err := p.parseExpression(precAssign)
		if err != nil {
			return nil, err
		}
		lit.Elements = append(lit.Elements, el)
		if p.curIs(token.COMMA) {
			p.next()
		}
	}
	if _, err := p.expect(token.RBRACK); err != nil {
		return nil, err
	}
	return lit, nil
}

func (p *Parser) parseMapLiteral() (ast.Expression, error) {
	tok := p.cur
	p.next()
	lit := &ast.MapLiteral{Token: tok}
	for !p.curIs(token.RBRACE) {
		key, err := p.parseExpression(precAssign)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		val, err := p.parseExpression(precAssign)
		if err != nil {
			return nil, err
		}
		lit.Entries = append(lit.Entries, ast.MapEntry{Key: key, Value: val})
		if p.curIs(token.COMMA) {
			p.next()
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return lit, nil
}
