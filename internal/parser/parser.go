// Package parser turns a token stream into an ast.Program. Like
// internal/lexer, the grammar it accepts is an external collaborator per
// spec.md §1 ("The core assumes an AST of typed nodes is handed to it") —
// this is a small, fresh recursive-descent/Pratt implementation sufficient
// to drive internal/eval through every scenario in spec.md §8, not a port
// of the original grammar's yacc-generated parser.
package parser

import (
	"github.com/hybris-lang/hybris/internal/ast"
	"github.com/hybris-lang/hybris/internal/herror"
	"github.com/hybris-lang/hybris/internal/lexer"
	"github.com/hybris-lang/hybris/internal/token"
)

// precedence levels, lowest to highest binding power.
const (
	precLowest int = iota
	precAssign
	precTernary
	precOr
	precAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precRange
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
)

var binPrec = map[token.Kind]int{
	token.OR:       precOr,
	token.AND:      precAnd,
	token.BIT_OR:   precBitOr,
	token.BIT_XOR:  precBitXor,
	token.BIT_AND:  precBitAnd,
	token.EQ:       precEquality,
	token.NOT_EQ:   precEquality,
	token.LT:       precRelational,
	token.GT:       precRelational,
	token.LT_EQ:    precRelational,
	token.GT_EQ:    precRelational,
	token.SHL:      precShift,
	token.SHR:      precShift,
	token.RANGE:    precRange,
	token.REGEX:    precRange,
	token.PLUS:     precAdditive,
	token.MINUS:    precAdditive,
	token.DOT:      precAdditive,
	token.STAR:     precMultiplicative,
	token.SLASH:    precMultiplicative,
	token.PERCENT:  precMultiplicative,
}

var binOpOf = map[token.Kind]ast.BinOp{
	token.PLUS:    ast.OpAdd,
	token.MINUS:   ast.OpSub,
	token.STAR:    ast.OpMul,
	token.SLASH:   ast.OpDiv,
	token.PERCENT: ast.OpMod,
	token.BIT_AND: ast.OpBitAnd,
	token.BIT_OR:  ast.OpBitOr,
	token.BIT_XOR: ast.OpBitXor,
	token.SHL:     ast.OpShl,
	token.SHR:     ast.OpShr,
	token.EQ:      ast.OpEq,
	token.NOT_EQ:  ast.OpNotEq,
	token.LT:      ast.OpLt,
	token.GT:      ast.OpGt,
	token.LT_EQ:   ast.OpLtEq,
	token.GT_EQ:   ast.OpGtEq,
	token.AND:     ast.OpAnd,
	token.OR:      ast.OpOr,
	token.RANGE:   ast.OpRange,
	token.REGEX:   ast.OpRegex,
	token.DOT:     ast.OpDotConcat,
}

var compoundOpOf = map[token.Kind]ast.BinOp{
	token.PLUS_EQ:    ast.OpAdd,
	token.MINUS_EQ:   ast.OpSub,
	token.STAR_EQ:    ast.OpMul,
	token.SLASH_EQ:   ast.OpDiv,
	token.PERCENT_EQ: ast.OpMod,
	token.BIT_AND_EQ: ast.OpBitAnd,
	token.BIT_OR_EQ:  ast.OpBitOr,
	token.BIT_XOR_EQ: ast.OpBitXor,
	token.SHL_EQ:     ast.OpShl,
	token.SHR_EQ:     ast.OpShr,
}

// Parser holds the two-token lookahead window a Pratt parser needs.
type Parser struct {
	l *lexer.Lexer

	cur  token.Token
	peek token.Token
}

// New builds a Parser over src.
func New(src string) *Parser {
	p := &Parser{l: lexer.New(src)}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) curIs(k token.Kind) bool  { return p.cur.Kind == k }
func (p *Parser) peekIs(k token.Kind) bool { return p.peek.Kind == k }

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if p.cur.Kind != k {
		return token.Token{}, p.errf("expected token %d, got %d (%q)", k, p.cur.Kind, p.cur.Lexeme)
	}
	t := p.cur
	p.next()
	return t, nil
}

func (p *Parser) errf(format string, args ...any) error {
	return herror.Newf(herror.Syntax, format, args...).WithPos(herror.Position{Line: p.cur.Line, Column: p.cur.Column})
}

// Parse consumes the whole token stream and returns the resulting program,
// or the first error encountered.
func (p *Parser) Parse() (*ast.Program, error) {
	prog := &ast.Program{}
	for !p.curIs(token.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
	}
	return prog, nil
}

// Parse is a package-level convenience wrapping New(src).Parse().
func Parse(src string) (*ast.Program, error) { return New(src).Parse() }

func (p *Parser) parseBlock() (*ast.Block, error) {
	brace, err := p.expect(token.LBRACE)
	if err != nil {
		return nil, err
	}
	blk := &ast.Block{Token: brace}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			blk.Stmts = append(blk.Stmts, stmt)
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return blk, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.cur.Kind {
	case token.SEMI:
		p.next()
		return nil, nil
	case token.LBRACE:
		return p.parseBlock()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.DO:
		return p.parseDoWhile()
	case token.FOR:
		return p.parseFor()
	case token.FOREACH:
		return p.parseForeach()
	case token.SWITCH:
		return p.parseSwitch()
	case token.BREAK:
		t := p.cur
		p.next()
		p.skipSemi()
		return &ast.BreakStatement{Token: t}, nil
	case token.NEXT:
		t := p.cur
		p.next()
		p.skipSemi()
		return &ast.NextStatement{Token: t}, nil
	case token.RETURN:
		return p.parseReturn()
	case token.THROW:
		return p.parseThrow()
	case token.TRY:
		return p.parseTry()
	case token.FUNCTION:
		return p.parseFunction()
	case token.CLASS:
		return p.parseClass()
	case token.STRUCTURE:
		return p.parseStructure()
	case token.CONST:
		return p.parseConst()
	}
	expr, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	tok := p.cur
	p.skipSemi()
	return &ast.ExpressionStatement{Token: tok, Expr: expr}, nil
}

func (p *Parser) skipSemi() {
	if p.curIs(token.SEMI) {
		p.next()
	}
}

func (p *Parser) parseIf() (ast.Statement, error) {
	tok := p.cur
	p.next()
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStatement{Token: tok, Cond: cond, Then: then}
	if p.curIs(token.ELSE) {
		p.next()
		if p.curIs(token.IF) {
			alt, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			stmt.Else = alt
		} else {
			alt, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			stmt.Else = alt
		}
	}
	return stmt, nil
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	tok := p.cur
	p.next()
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{Token: tok, Cond: cond, Body: body}, nil
}

func (p *Parser) parseDoWhile() (ast.Statement, error) {
	tok := p.cur
	p.next()
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.WHILE); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	p.skipSemi()
	return &ast.DoWhileStatement{Token: tok, Body: body, Cond: cond}, nil
}

func (p *Parser) parseFor() (ast.Statement, error) {
	tok := p.cur
	p.next()
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	stmt := &ast.ForStatement{Token: tok}
	if !p.curIs(token.SEMI) {
		init, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmt.Init = init
	} else {
		p.next()
	}
	if !p.curIs(token.SEMI) {
		cond, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		stmt.Cond = cond
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	if !p.curIs(token.RPAREN) {
		step, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		stmt.Step = &ast.ExpressionStatement{Expr: step}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	return stmt, nil
}

func (p *Parser) parseForeach() (ast.Statement, error) {
	tok := p.cur
	p.next()
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	first, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	stmt := &ast.ForeachStatement{Token: tok}
	if p.curIs(token.ARROW) {
		p.next()
		second, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		stmt.KeyName = first.Lexeme
		stmt.ValueName = second.Lexeme
	} else {
		stmt.ValueName = first.Lexeme
	}
	if _, err := p.expect(token.OF); err != nil {
		return nil, err
	}
	coll, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	stmt.Collection = coll
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	return stmt, nil
}

func (p *Parser) parseSwitch() (ast.Statement, error) {
	tok := p.cur
	p.next()
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	subject, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	stmt := &ast.SwitchStatement{Token: tok, Subject: subject}
	for p.curIs(token.CASE) || p.curIs(token.DEFAULT) {
		clause := ast.CaseClause{Token: p.cur}
		if p.curIs(token.DEFAULT) {
			clause.IsDefault = true
			p.next()
		} else {
			p.next()
			val, err := p.parseExpression(precLowest)
			if err != nil {
				return nil, err
			}
			clause.Value = val
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		for !p.curIs(token.CASE) && !p.curIs(token.DEFAULT) && !p.curIs(token.RBRACE) {
			s, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			if s != nil {
				clause.Body = append(clause.Body, s)
			}
		}
		stmt.Cases = append(stmt.Cases, clause)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	tok := p.cur
	p.next()
	stmt := &ast.ReturnStatement{Token: tok}
	if !p.curIs(token.SEMI) && !p.curIs(token.RBRACE) {
		val, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		stmt.Value = val
	}
	p.skipSemi()
	return stmt, nil
}

func (p *Parser) parseThrow() (ast.Statement, error) {
	tok := p.cur
	p.next()
	val, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	p.skipSemi()
	return &ast.ThrowStatement{Token: tok, Value: val}, nil
}

func (p *Parser) parseTry() (ast.Statement, error) {
	tok := p.cur
	p.next()
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.TryStatement{Token: tok, Body: body}
	if _, err := p.expect(token.CATCH); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	stmt.CatchName = name.Lexeme
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	handler, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt.Handler = handler
	if p.curIs(token.FINALLY) {
		p.next()
		fin, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Finally = fin
	}
	return stmt, nil
}

func (p *Parser) parseParamList() ([]string, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []string
	for !p.curIs(token.RPAREN) {
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		params = append(params, name.Lexeme)
		if p.curIs(token.COMMA) {
			p.next()
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseFunction() (ast.Statement, error) {
	tok := p.cur
	p.next()
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDeclaration{Token: tok, Name: name.Lexeme, Params: params, Body: body}, nil
}

func (p *Parser) parseMethod() (*ast.MethodDeclaration, error) {
	tok := p.cur
	p.next()
	var name string
	if p.curIs(token.IDENT) {
		name = p.cur.Lexeme
		p.next()
	} else {
		op, err := p.parseOperatorName()
		if err != nil {
			return nil, err
		}
		name = mangleOperator(op)
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.MethodDeclaration{Token: tok, Name: name, Params: params, Body: body}, nil
}

func mangleOperator(op string) string { return "__op@" + op }

// parseOperatorName reads an operator-overload method name, e.g.
// `method +(o) {...}` mangled as `__op@+` (spec.md §4.F).
func (p *Parser) parseOperatorName() (string, error) {
	tok := p.cur
	switch tok.Kind {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.EQ, token.NOT_EQ, token.LT, token.GT, token.LT_EQ, token.GT_EQ,
		token.RANGE, token.REGEX, token.DOT:
		p.next()
		return tok.Lexeme, nil
	case token.LBRACK:
		p.next()
		if _, err := p.expect(token.RBRACK); err != nil {
			return "", err
		}
		if p.curIs(token.ASSIGN) {
			p.next()
			return "[]=", nil
		}
		if p.curIs(token.LT) {
			p.next()
			return "[]<", nil
		}
		return "[]", nil
	}
	return "", p.errf("expected operator symbol after 'method', got %q", tok.Lexeme)
}

func (p *Parser) parseClass() (ast.Statement, error) {
	tok := p.cur
	p.next()
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	decl := &ast.ClassDeclaration{Token: tok, Name: name.Lexeme}
	if p.curIs(token.EXTENDS) {
		p.next()
		for {
			parent, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			decl.Parents = append(decl.Parents, parent.Lexeme)
			if p.curIs(token.COMMA) {
				p.next()
				continue
			}
			break
		}
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	access := ast.AccessPublic
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		switch p.cur.Kind {
		case token.PUBLIC:
			access = ast.AccessPublic
			p.next()
			if _, err := p.expect(token.COLON); err != nil {
				return nil, err
			}
		case token.PRIVATE:
			access = ast.AccessPrivate
			p.next()
			if _, err := p.expect(token.COLON); err != nil {
				return nil, err
			}
		case token.PROTECTED:
			access = ast.AccessProtected
			p.next()
			if _, err := p.expect(token.COLON); err != nil {
				return nil, err
			}
		case token.METHOD:
			m, err := p.parseMethod()
			if err != nil {
				return nil, err
			}
			decl.Methods = append(decl.Methods, m)
		default:
			attrTok := p.cur
			attrName, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			attr := &ast.AttributeDeclaration{Token: attrTok, Access: access, Name: attrName.Lexeme}
			if p.curIs(token.ASSIGN) {
				p.next()
				def, err := p.parseExpression(precAssign)
				if err != nil {
					return nil, err
				}
				attr.Default = def
			}
			p.skipSemi()
			decl.Attributes = append(decl.Attributes, attr)
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *Parser) parseStructure() (ast.Statement, error) {
	tok := p.cur
	p.next()
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	decl := &ast.StructureDeclaration{Token: tok, Name: name.Lexeme}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	for !p.curIs(token.RBRACE) {
		f, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		decl.Fields = append(decl.Fields, f.Lexeme)
		if p.curIs(token.COMMA) {
			p.next()
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *Parser) parseConst() (ast.Statement, error) {
	tok := p.cur
	p.next()
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	val, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	p.skipSemi()
	return &ast.ConstantDeclaration{Token: tok, Name: name.Lexeme, Value: val}, nil
}

