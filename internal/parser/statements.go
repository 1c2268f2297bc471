package parser

import (
	"github.com/funvibe/flowtype/internal/ast"
	"github.com/funvibe/flowtype/internal/token"
)

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Kind {
	case token.VAR, token.LET, token.CONST:
		return p.parseVariableDeclaration()
	case token.FUNCTION:
		return p.parseFunctionStatement()
	case token.ASYNC:
		if p.peekIs(token.FUNCTION) {
			return p.parseFunctionStatement()
		}
		return p.parseExpressionStatement()
	case token.CLASS:
		return p.parseClassDeclaration()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement("")
	case token.DO:
		return p.parseDoWhileStatement("")
	case token.FOR:
		return p.parseForStatement("")
	case token.BREAK:
		return p.parseBreakStatement()
	case token.CONTINUE:
		return p.parseContinueStatement()
	case token.THROW:
		return p.parseThrowStatement()
	case token.TRY:
		return p.parseTryStatement()
	case token.SWITCH:
		return p.parseSwitchStatement()
	case token.LBRACE:
		return p.parseBlockStatement()
	case token.SEMI:
		return nil
	case token.IDENT:
		if p.peekIs(token.COLON) {
			return p.parseLabeledStatement()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseLabeledStatement() ast.Statement {
	start := p.cur.Start
	label := p.cur.Literal
	p.next() // consume ident
	p.next() // consume ':'
	var body ast.Statement
	switch p.cur.Kind {
	case token.WHILE:
		body = p.parseWhileStatement(label)
	case token.DO:
		body = p.parseDoWhileStatement(label)
	case token.FOR:
		body = p.parseForStatement(label)
	default:
		body = p.parseStatement()
	}
	return &ast.LabeledStatement{Span: span(start, p.cur.End), Label: label, Body: body}
}

func span(start, end token.Position) ast.Span {
	return ast.Span{Start: start, Stop: end}
}

func (p *Parser) parseVariableDeclaration() *ast.VariableDeclaration {
	start := p.cur.Start
	var kind ast.DeclKind
	switch p.cur.Kind {
	case token.VAR:
		kind = ast.DeclVar
	case token.LET:
		kind = ast.DeclLet
	case token.CONST:
		kind = ast.DeclConst
	}
	decl := &ast.VariableDeclaration{Kind: kind}
	for {
		p.next() // move to target
		target := p.parseBindingTarget()
		var init ast.Expression
		dstart := target.Pos()
		if p.peekIs(token.ASSIGN) {
			p.next()
			p.next()
			init = p.parseExpression(precAssign)
		}
		decl.Declarators = append(decl.Declarators, &ast.Declarator{Span: span(dstart, p.cur.End), Target: target, Init: init})
		if p.peekIs(token.COMMA) {
			p.next()
			continue
		}
		break
	}
	if p.peekIs(token.SEMI) {
		p.next()
	}
	decl.Start = start
	decl.Stop = p.cur.End
	return decl
}

func (p *Parser) parseBindingTarget() ast.Pattern {
	switch p.cur.Kind {
	case token.LBRACKET:
		return p.parseArrayPattern()
	case token.LBRACE:
		return p.parseObjectPattern()
	default:
		return ast.NewIdentifier(p.cur.Literal, p.cur.Start, p.cur.End)
	}
}

func (p *Parser) parseArrayPattern() *ast.ArrayPattern {
	start := p.cur.Start
	pat := &ast.ArrayPattern{}
	p.next() // consume '['
	for !p.curIs(token.RBRACKET) && !p.curIs(token.EOF) {
		if p.curIs(token.COMMA) {
			pat.Elements = append(pat.Elements, nil)
			p.next()
			continue
		}
		if p.curIs(token.DOT_DOT_DOT) {
			p.next()
			target := p.parseBindingTarget()
			pat.Elements = append(pat.Elements, ast.NewRestElement(target, start, p.cur.End))
		} else {
			target := p.parseBindingTarget()
			if p.peekIs(token.ASSIGN) {
				p.next()
				p.next()
				def := p.parseExpression(precAssign)
				target = ast.NewAssignmentPattern(target, def)
			}
			pat.Elements = append(pat.Elements, target)
		}
		if p.peekIs(token.COMMA) {
			p.next()
		}
		p.next()
	}
	pat.Start = start
	pat.Stop = p.cur.End
	return pat
}

func (p *Parser) parseObjectPattern() *ast.ObjectPattern {
	start := p.cur.Start
	pat := &ast.ObjectPattern{}
	p.next() // consume '{'
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if p.curIs(token.DOT_DOT_DOT) {
			p.next()
			rest := ast.NewRestElement(p.parseBindingTarget(), start, p.cur.End)
			pat.Rest = rest
			if p.peekIs(token.COMMA) {
				p.next()
			}
			p.next()
			continue
		}
		key := p.cur.Literal
		keyStart := p.cur.Start
		var target ast.Pattern = ast.NewIdentifier(key, p.cur.Start, p.cur.End)
		if p.peekIs(token.COLON) {
			p.next()
			p.next()
			target = p.parseBindingTarget()
		}
		var def ast.Expression
		if p.peekIs(token.ASSIGN) {
			p.next()
			p.next()
			def = p.parseExpression(precAssign)
		}
		pat.Props = append(pat.Props, ast.NewObjectPatternProp(key, target, def, keyStart, p.cur.End))
		if p.peekIs(token.COMMA) {
			p.next()
		}
		p.next()
	}
	pat.Start = start
	pat.Stop = p.cur.End
	return pat
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	start := p.cur.Start
	blk := &ast.BlockStatement{}
	p.next() // consume '{'
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			blk.Statements = append(blk.Statements, stmt)
		}
		p.next()
	}
	blk.Start = start
	blk.Stop = p.cur.End
	return blk
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	start := p.cur.Start
	expr := p.parseExpression(precLowest)
	stmt := &ast.ExpressionStatement{Expr: expr}
	stmt.Start = start
	if p.peekIs(token.SEMI) {
		p.next()
	}
	stmt.Stop = p.cur.End
	return stmt
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	start := p.cur.Start
	stmt := &ast.ReturnStatement{}
	if !p.peekIs(token.SEMI) && !p.peekIs(token.RBRACE) && !p.peekIs(token.EOF) {
		p.next()
		stmt.Value = p.parseExpression(precLowest)
	}
	stmt.Start = start
	if p.peekIs(token.SEMI) {
		p.next()
	}
	stmt.Stop = p.cur.End
	return stmt
}

func (p *Parser) parseThrowStatement() *ast.ThrowStatement {
	start := p.cur.Start
	p.next()
	val := p.parseExpression(precLowest)
	stmt := &ast.ThrowStatement{Value: val}
	stmt.Start = start
	if p.peekIs(token.SEMI) {
		p.next()
	}
	stmt.Stop = p.cur.End
	return stmt
}

func (p *Parser) parseBreakStatement() *ast.BreakStatement {
	start := p.cur.Start
	label := ""
	if p.peekIs(token.IDENT) {
		p.next()
		label = p.cur.Literal
	}
	stmt := &ast.BreakStatement{Label: label}
	stmt.Start = start
	if p.peekIs(token.SEMI) {
		p.next()
	}
	stmt.Stop = p.cur.End
	return stmt
}

func (p *Parser) parseContinueStatement() *ast.ContinueStatement {
	start := p.cur.Start
	label := ""
	if p.peekIs(token.IDENT) {
		p.next()
		label = p.cur.Literal
	}
	stmt := &ast.ContinueStatement{Label: label}
	stmt.Start = start
	if p.peekIs(token.SEMI) {
		p.next()
	}
	stmt.Stop = p.cur.End
	return stmt
}

func (p *Parser) parseIfStatement() *ast.IfStatement {
	start := p.cur.Start
	p.expect(token.LPAREN)
	p.next()
	cond := p.parseExpression(precLowest)
	p.expect(token.RPAREN)
	p.next()
	then := p.parseStatement()
	stmt := &ast.IfStatement{Cond: cond, Then: then}
	if p.peekIs(token.ELSE) {
		p.next()
		p.next()
		stmt.Alt = p.parseStatement()
	}
	stmt.Start = start
	stmt.Stop = p.cur.End
	return stmt
}

func (p *Parser) parseWhileStatement(label string) *ast.WhileStatement {
	start := p.cur.Start
	p.expect(token.LPAREN)
	p.next()
	cond := p.parseExpression(precLowest)
	p.expect(token.RPAREN)
	p.next()
	body := p.parseStatement()
	return &ast.WhileStatement{Label: label, Cond: cond, Body: body, Span: span(start, p.cur.End)}
}

func (p *Parser) parseDoWhileStatement(label string) *ast.DoWhileStatement {
	start := p.cur.Start
	p.next()
	body := p.parseStatement()
	p.next() // should be WHILE
	p.expect(token.LPAREN)
	p.next()
	cond := p.parseExpression(precLowest)
	p.expect(token.RPAREN)
	stmt := &ast.DoWhileStatement{Label: label, Body: body, Cond: cond}
	stmt.Start = start
	if p.peekIs(token.SEMI) {
		p.next()
	}
	stmt.Stop = p.cur.End
	return stmt
}

// parseForStatement handles classic for, for-in and for-of by first
// parsing the init clause and then inspecting the following token.
func (p *Parser) parseForStatement(label string) ast.Statement {
	start := p.cur.Start
	p.expect(token.LPAREN)
	p.next()

	if p.curIs(token.SEMI) {
		return p.finishClassicFor(start, label, nil)
	}

	isDecl := p.curIs(token.VAR) || p.curIs(token.LET) || p.curIs(token.CONST)
	if isDecl {
		kind := ast.DeclVar
		switch p.cur.Kind {
		case token.LET:
			kind = ast.DeclLet
		case token.CONST:
			kind = ast.DeclConst
		}
		p.next()
		target := p.parseBindingTarget()
		if p.peekIs(token.IN) {
			p.next()
			p.next()
			obj := p.parseExpression(precLowest)
			p.expect(token.RPAREN)
			p.next()
			body := p.parseStatement()
			return &ast.ForInStatement{Label: label, Decl: kind, Target: target, Object: obj, Body: body, Span: span(start, p.cur.End)}
		}
		if p.peekIs(token.OF) {
			p.next()
			p.next()
			it := p.parseExpression(precLowest)
			p.expect(token.RPAREN)
			p.next()
			body := p.parseStatement()
			return &ast.ForOfStatement{Label: label, Decl: kind, Target: target, Iterable: it, Body: body, Span: span(start, p.cur.End)}
		}
		// classic for with a declaration init
		var init ast.Expression
		if p.peekIs(token.ASSIGN) {
			p.next()
			p.next()
			init = p.parseExpression(precAssign)
		}
		decl := &ast.VariableDeclaration{Kind: kind, Declarators: []*ast.Declarator{{Target: target, Init: init}}}
		for p.peekIs(token.COMMA) {
			p.next()
			p.next()
			t2 := p.parseBindingTarget()
			var i2 ast.Expression
			if p.peekIs(token.ASSIGN) {
				p.next()
				p.next()
				i2 = p.parseExpression(precAssign)
			}
			decl.Declarators = append(decl.Declarators, &ast.Declarator{Target: t2, Init: i2})
		}
		p.expect(token.SEMI)
		return p.finishClassicFor(start, label, decl)
	}

	initExpr := p.parseExpression(precLowest)
	p.expect(token.SEMI)
	return p.finishClassicFor(start, label, initExpr)
}

func (p *Parser) finishClassicFor(start token.Position, label string, init ast.Node) *ast.ForStatement {
	var cond ast.Expression
	if !p.peekIs(token.SEMI) {
		p.next()
		cond = p.parseExpression(precLowest)
	}
	p.expect(token.SEMI)
	var update ast.Expression
	if !p.peekIs(token.RPAREN) {
		p.next()
		update = p.parseExpression(precLowest)
	}
	p.expect(token.RPAREN)
	p.next()
	body := p.parseStatement()
	return &ast.ForStatement{Label: label, Init: init, Cond: cond, Update: update, Body: body, Span: span(start, p.cur.End)}
}

func (p *Parser) parseTryStatement() *ast.TryStatement {
	start := p.cur.Start
	p.next()
	block := p.parseBlockStatement()
	stmt := &ast.TryStatement{Block: block}
	if p.peekIs(token.CATCH) {
		p.next()
		cstart := p.cur.Start
		var param ast.Pattern
		if p.peekIs(token.LPAREN) {
			p.next()
			p.next()
			param = p.parseBindingTarget()
			p.expect(token.RPAREN)
		}
		p.next()
		body := p.parseBlockStatement()
		stmt.Catch = &ast.CatchClause{Param: param, Body: body, Span: span(cstart, p.cur.End)}
	}
	if p.peekIs(token.FINALLY) {
		p.next()
		p.next()
		stmt.Finally = p.parseBlockStatement()
	}
	stmt.Start = start
	stmt.Stop = p.cur.End
	return stmt
}

func (p *Parser) parseSwitchStatement() *ast.SwitchStatement {
	start := p.cur.Start
	p.expect(token.LPAREN)
	p.next()
	disc := p.parseExpression(precLowest)
	p.expect(token.RPAREN)
	p.expect(token.LBRACE)
	stmt := &ast.SwitchStatement{Discriminant: disc}
	p.next()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		cstart := p.cur.Start
		c := &ast.SwitchCase{}
		if p.curIs(token.CASE) {
			p.next()
			c.Test = p.parseExpression(precLowest)
			p.expect(token.COLON)
		} else if p.curIs(token.DEFAULT) {
			p.expect(token.COLON)
		}
		p.next()
		for !p.curIs(token.CASE) && !p.curIs(token.DEFAULT) && !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
			s := p.parseStatement()
			if s != nil {
				c.Statements = append(c.Statements, s)
			}
			p.next()
		}
		c.Start = cstart
		c.Stop = p.cur.End
		stmt.Cases = append(stmt.Cases, c)
	}
	stmt.Start = start
	stmt.Stop = p.cur.End
	return stmt
}
