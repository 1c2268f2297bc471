package parser

import (
	"github.com/funvibe/flowtype/internal/ast"
	"github.com/funvibe/flowtype/internal/diagnostics"
	"github.com/funvibe/flowtype/internal/token"
)

func (p *Parser) parseExpression(precedence int) ast.Expression {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxRecursionDepth {
		p.Errors = append(p.Errors, diagnostics.New(p.cur, "expression too complex"))
		p.skipStatement()
		return nil
	}

	left := p.parsePrefix()
	if left == nil {
		return nil
	}

	for !p.peekIs(token.SEMI) && precedence < p.peekPrecedence() {
		switch p.peek.Kind {
		case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT, token.STAR_STAR,
			token.EQ, token.NEQ, token.SEQ, token.SNEQ, token.LT, token.GT, token.LE, token.GE,
			token.AMP, token.PIPE, token.CARET, token.SHL, token.SHR, token.INSTANCEOF:
			p.next()
			left = p.parseBinary(left)
		case token.AND_AND, token.OR_OR, token.QUESTION_QUESTION:
			p.next()
			left = p.parseLogical(left)
		case token.ASSIGN, token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN:
			p.next()
			left = p.parseAssignment(left)
		case token.QUESTION:
			p.next()
			left = p.parseConditional(left)
		case token.LPAREN:
			p.next()
			left = p.parseCall(left, false)
		case token.OPTIONAL_CHAIN:
			p.next()
			if p.peekIs(token.LPAREN) {
				p.next()
				left = p.parseCall(left, true)
			} else {
				p.next()
				left = p.parseMember(left, true)
			}
		case token.DOT:
			p.next()
			left = p.parseMember(left, false)
		case token.LBRACKET:
			p.next()
			left = p.parseIndexMember(left)
		case token.INC, token.DEC:
			p.next()
			left = &ast.UpdateExpression{Span: span(left.Pos(), p.cur.End), Op: p.cur.Literal, Operand: left, Prefix: false}
		default:
			return left
		}
		if left == nil {
			return nil
		}
	}
	return left
}

func (p *Parser) parsePrefix() ast.Expression {
	switch p.cur.Kind {
	case token.IDENT:
		if p.peekIs(token.ARROW) {
			start := p.cur.Start
			param := &ast.Param{Target: ast.NewIdentifier(p.cur.Literal, p.cur.Start, p.cur.End)}
			p.next() // consume ident, cur is now '=>'
			return p.finishArrow(start, []*ast.Param{param}, false)
		}
		return ast.NewIdentifier(p.cur.Literal, p.cur.Start, p.cur.End)
	case token.NUMBER:
		kind := ast.LitNumber
		if len(p.cur.Literal) > 0 && p.cur.Literal[len(p.cur.Literal)-1] == 'n' {
			kind = ast.LitBigInt
		}
		return &ast.Literal{Span: span(p.cur.Start, p.cur.End), Kind: kind, Raw: p.cur.Literal}
	case token.STRING:
		return &ast.Literal{Span: span(p.cur.Start, p.cur.End), Kind: ast.LitString, Raw: p.cur.Literal}
	case token.TRUE, token.FALSE:
		return &ast.Literal{Span: span(p.cur.Start, p.cur.End), Kind: ast.LitBoolean, Raw: p.cur.Literal}
	case token.NULL:
		return &ast.Literal{Span: span(p.cur.Start, p.cur.End), Kind: ast.LitNull, Raw: "null"}
	case token.UNDEFINED:
		return &ast.Literal{Span: span(p.cur.Start, p.cur.End), Kind: ast.LitUndefined, Raw: "undefined"}
	case token.THIS:
		return &ast.ThisExpression{Span: span(p.cur.Start, p.cur.End)}
	case token.SUPER:
		return &ast.SuperExpression{Span: span(p.cur.Start, p.cur.End)}
	case token.BANG, token.MINUS, token.PLUS, token.TILDE, token.TYPEOF, token.VOID, token.DELETE:
		start := p.cur.Start
		op := p.cur.Literal
		p.next()
		operand := p.parseExpression(precUnary)
		return &ast.UnaryExpression{Span: span(start, p.cur.End), Op: op, Operand: operand}
	case token.INC, token.DEC:
		start := p.cur.Start
		op := p.cur.Literal
		p.next()
		operand := p.parseExpression(precUnary)
		return &ast.UpdateExpression{Span: span(start, p.cur.End), Op: op, Operand: operand, Prefix: true}
	case token.AWAIT:
		start := p.cur.Start
		p.next()
		arg := p.parseExpression(precUnary)
		return &ast.AwaitExpression{Span: span(start, p.cur.End), Arg: arg}
	case token.YIELD:
		start := p.cur.Start
		delegate := false
		if p.peekIs(token.STAR) {
			p.next()
			delegate = true
		}
		var arg ast.Expression
		if !p.peekIs(token.SEMI) && !p.peekIs(token.RBRACE) && !p.peekIs(token.RPAREN) {
			p.next()
			arg = p.parseExpression(precAssign)
		}
		return &ast.YieldExpression{Span: span(start, p.cur.End), Arg: arg, Delegate: delegate}
	case token.NEW:
		return p.parseNew()
	case token.LPAREN:
		return p.parseParenOrArrow()
	case token.LBRACKET:
		return p.parseArrayLiteral()
	case token.LBRACE:
		return p.parseObjectLiteral()
	case token.FUNCTION:
		return p.parseFunctionExpression(false)
	case token.ASYNC:
		if p.peekIs(token.FUNCTION) {
			p.next()
			return p.parseFunctionExpression(true)
		}
		return p.parseArrowFromAsync()
	case token.CLASS:
		return p.parseClassExpression()
	default:
		p.Errors = append(p.Errors, diagnostics.New(p.cur, "unexpected token %s in expression", p.cur.Kind))
		return nil
	}
}

func (p *Parser) parseBinary(left ast.Expression) ast.Expression {
	op := p.cur.Literal
	prec := p.curPrecedence()
	start := left.Pos()
	p.next()
	right := p.parseExpression(prec)
	return &ast.BinaryExpression{Span: span(start, p.cur.End), Op: op, Left: left, Right: right}
}

func (p *Parser) parseLogical(left ast.Expression) ast.Expression {
	op := p.cur.Literal
	prec := p.curPrecedence()
	start := left.Pos()
	p.next()
	right := p.parseExpression(prec)
	return &ast.LogicalExpression{Span: span(start, p.cur.End), Op: op, Left: left, Right: right}
}

func (p *Parser) parseAssignment(target ast.Expression) ast.Expression {
	op := p.cur.Literal
	start := target.Pos()
	p.next()
	value := p.parseExpression(precAssign - 1) // right-associative
	return &ast.AssignmentExpression{Span: span(start, p.cur.End), Op: op, Target: target, Value: value}
}

func (p *Parser) parseConditional(cond ast.Expression) ast.Expression {
	start := cond.Pos()
	p.next()
	then := p.parseExpression(precAssign)
	p.expect(token.COLON)
	p.next()
	alt := p.parseExpression(precAssign)
	return &ast.ConditionalExpression{Span: span(start, p.cur.End), Cond: cond, Then: then, Alt: alt}
}

func (p *Parser) parseCall(callee ast.Expression, optional bool) ast.Expression {
	start := callee.Pos()
	call := &ast.CallExpression{Callee: callee, Optional: optional}
	p.next() // at first arg or ')'
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		if p.curIs(token.DOT_DOT_DOT) {
			sstart := p.cur.Start
			p.next()
			arg := p.parseExpression(precAssign)
			call.Args = append(call.Args, &ast.SpreadElement{Span: span(sstart, p.cur.End), Arg: arg})
		} else {
			call.Args = append(call.Args, p.parseExpression(precAssign))
		}
		if p.peekIs(token.COMMA) {
			p.next()
		}
		p.next()
	}
	call.Span = span(start, p.cur.End)
	return call
}

func (p *Parser) parseMember(obj ast.Expression, optional bool) ast.Expression {
	start := obj.Pos()
	name := p.cur.Literal
	return &ast.MemberExpression{Span: span(start, p.cur.End), Object: obj, Property: name, Optional: optional}
}

func (p *Parser) parseIndexMember(obj ast.Expression) ast.Expression {
	start := obj.Pos()
	p.next()
	idx := p.parseExpression(precLowest)
	p.expect(token.RBRACKET)
	return &ast.MemberExpression{Span: span(start, p.cur.End), Object: obj, Index: idx, Computed: true}
}

func (p *Parser) parseNew() ast.Expression {
	start := p.cur.Start
	p.next()
	callee := p.parseExpression(precCall)
	if p.peekIs(token.LPAREN) {
		p.next()
		callee = p.parseCall(callee, false)
	}
	n := &ast.NewExpression{Span: span(start, p.cur.End)}
	if ce, ok := callee.(*ast.CallExpression); ok {
		n.Callee = ce.Callee
		n.Args = ce.Args
	} else {
		n.Callee = callee
	}
	return n
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	start := p.cur.Start
	lit := &ast.ArrayLiteral{}
	p.next()
	for !p.curIs(token.RBRACKET) && !p.curIs(token.EOF) {
		if p.curIs(token.DOT_DOT_DOT) {
			sstart := p.cur.Start
			p.next()
			arg := p.parseExpression(precAssign)
			lit.Elements = append(lit.Elements, &ast.SpreadElement{Span: span(sstart, p.cur.End), Arg: arg})
		} else {
			lit.Elements = append(lit.Elements, p.parseExpression(precAssign))
		}
		if p.peekIs(token.COMMA) {
			p.next()
		}
		p.next()
	}
	lit.Span = span(start, p.cur.End)
	return lit
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	start := p.cur.Start
	lit := &ast.ObjectLiteral{}
	p.next()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		prop := &ast.Property{}
		pstart := p.cur.Start
		if p.curIs(token.LBRACKET) {
			p.next()
			prop.Computed = true
			prop.KeyExpr = p.parseExpression(precLowest)
			p.expect(token.RBRACKET)
			p.next()
		} else if p.curIs(token.DOT_DOT_DOT) {
			sstart := p.cur.Start
			p.next()
			val := p.parseExpression(precAssign)
			spread := &ast.SpreadElement{Span: span(sstart, p.cur.End), Arg: val}
			lit.Properties = append(lit.Properties, &ast.Property{Span: span(pstart, p.cur.End), Key: "...", Value: spread})
			if p.peekIs(token.COMMA) {
				p.next()
			}
			p.next()
			continue
		} else {
			prop.Key = p.cur.Literal
		}
		if p.peekIs(token.COLON) {
			p.next()
			p.next()
			prop.Value = p.parseExpression(precAssign)
		} else if p.peekIs(token.LPAREN) {
			// shorthand method: name(params) { body }
			p.next()
			fn := p.parseFunctionTail(false, false)
			prop.Method = true
			prop.Value = fn
		} else {
			prop.Shorthand = true
			prop.Value = ast.NewIdentifier(prop.Key, pstart, p.cur.End)
		}
		prop.Span = span(pstart, p.cur.End)
		lit.Properties = append(lit.Properties, prop)
		if p.peekIs(token.COMMA) {
			p.next()
		}
		p.next()
	}
	lit.Span = span(start, p.cur.End)
	return lit
}

// parseParenOrArrow disambiguates `(expr)` from `(params) => body` by
// scanning to the matching ')' and checking for a following `=>`.
func (p *Parser) parseParenOrArrow() ast.Expression {
	start := p.cur.Start
	if p.isArrowAhead() {
		params := p.parseParamList()
		p.expect(token.ARROW)
		return p.finishArrow(start, params, false)
	}
	p.next()
	expr := p.parseExpression(precLowest)
	p.expect(token.RPAREN)
	return expr
}

// isArrowAhead performs a lightweight lookahead: balance parens from the
// current '(' and check whether the token right after the matching ')' is
// '=>'. The lexer is a plain value type, so it can be snapshotted and
// scanned ahead without disturbing the parser's actual token stream.
func (p *Parser) isArrowAhead() bool {
	if p.peekIs(token.RPAREN) {
		return true // `() => ...`
	}
	tempL := *p.l
	depth := 1
	cur := p.peek
	for depth > 0 && cur.Kind != token.EOF {
		switch cur.Kind {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				next := tempL.NextToken()
				return next.Kind == token.ARROW
			}
		}
		cur = tempL.NextToken()
	}
	return false
}

func (p *Parser) parseParamList() []*ast.Param {
	var params []*ast.Param
	p.next() // consume '('
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		pstart := p.cur.Start
		param := &ast.Param{}
		if p.curIs(token.DOT_DOT_DOT) {
			param.Rest = true
			p.next()
		}
		param.Target = p.parseBindingTarget()
		if p.peekIs(token.QUESTION) {
			param.Optional = true
			p.next()
		}
		if p.peekIs(token.ASSIGN) {
			p.next()
			p.next()
			param.Default = p.parseExpression(precAssign)
		}
		param.Span = span(pstart, p.cur.End)
		params = append(params, param)
		if p.peekIs(token.COMMA) {
			p.next()
		}
		p.next()
	}
	return params
}

func (p *Parser) finishArrow(start token.Position, params []*ast.Param, async bool) ast.Expression {
	p.next() // consume '=>'
	fn := &ast.FunctionExpression{Params: params, Arrow: true, Async: async}
	if p.curIs(token.LBRACE) {
		fn.Body = p.parseBlockStatement()
	} else {
		exprStart := p.cur.Start
		e := p.parseExpression(precAssign)
		ret := &ast.ReturnStatement{Span: span(exprStart, p.cur.End), Value: e}
		fn.Body = &ast.BlockStatement{Span: ret.Span, Statements: []ast.Statement{ret}}
	}
	fn.Span = span(start, p.cur.End)
	return fn
}

func (p *Parser) parseArrowFromAsync() ast.Expression {
	start := p.cur.Start
	p.next() // consume 'async', now at '(' or ident
	if p.curIs(token.LPAREN) {
		params := p.parseParamList()
		p.expect(token.ARROW)
		return p.finishArrow(start, params, true)
	}
	param := &ast.Param{Target: ast.NewIdentifier(p.cur.Literal, p.cur.Start, p.cur.End)}
	p.expect(token.ARROW)
	return p.finishArrow(start, []*ast.Param{param}, true)
}

func (p *Parser) parseFunctionExpression(async bool) *ast.FunctionExpression {
	start := p.cur.Start
	generator := false
	if p.peekIs(token.STAR) {
		p.next()
		generator = true
	}
	var name *ast.Identifier
	if p.peekIs(token.IDENT) {
		p.next()
		name = ast.NewIdentifier(p.cur.Literal, p.cur.Start, p.cur.End)
	}
	p.expect(token.LPAREN)
	fn := p.parseFunctionTail(async, generator)
	fn.Name = name
	fn.Span = span(start, p.cur.End)
	return fn
}

// parseFunctionTail parses `(params) { body }` with cur positioned at '('.
func (p *Parser) parseFunctionTail(async, generator bool) *ast.FunctionExpression {
	params := p.parseParamList()
	p.expect(token.LBRACE)
	body := p.parseBlockStatement()
	return &ast.FunctionExpression{Params: params, Body: body, Async: async, Generator: generator}
}

func (p *Parser) parseFunctionStatement() *ast.FunctionStatement {
	start := p.cur.Start
	async := false
	if p.curIs(token.ASYNC) {
		async = true
		p.next()
	}
	generator := false
	if p.peekIs(token.STAR) {
		p.next()
		generator = true
	}
	p.next() // ident
	name := ast.NewIdentifier(p.cur.Literal, p.cur.Start, p.cur.End)
	p.expect(token.LPAREN)
	fn := p.parseFunctionTail(async, generator)
	return &ast.FunctionStatement{Span: span(start, p.cur.End), Name: name, Params: fn.Params, Body: fn.Body, Async: async, Generator: generator}
}

func (p *Parser) parseClassExpression() ast.Expression {
	return p.parseClassDeclaration()
}

func (p *Parser) parseClassDeclaration() *ast.ClassDeclaration {
	start := p.cur.Start
	cls := &ast.ClassDeclaration{}
	if p.peekIs(token.IDENT) {
		p.next()
		cls.Name = ast.NewIdentifier(p.cur.Literal, p.cur.Start, p.cur.End)
	}
	if p.peekIs(token.EXTENDS) {
		p.next()
		p.next()
		cls.Superclass = p.parseExpression(precCall)
	}
	p.expect(token.LBRACE)
	p.next()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		mstart := p.cur.Start
		static := false
		if p.curIs(token.STATIC) {
			static = true
			p.next()
		}
		async := false
		if p.curIs(token.ASYNC) {
			async = true
			p.next()
		}
		generator := false
		if p.curIs(token.STAR) {
			generator = true
			p.next()
		}
		kind := "method"
		if (p.curIs(token.IDENT) && (p.cur.Literal == "get" || p.cur.Literal == "set")) && !p.peekIs(token.LPAREN) {
			kind = p.cur.Literal
			p.next()
		}
		name := p.cur.Literal
		if name == "constructor" {
			kind = "constructor"
		}
		if p.peekIs(token.LPAREN) {
			p.next()
			fn := p.parseFunctionTail(async, generator)
			cls.Methods = append(cls.Methods, &ast.ClassMethod{Span: span(mstart, p.cur.End), Name: name, Static: static, Kind: kind, Params: fn.Params, Body: fn.Body, Async: async, Generator: generator})
		} else {
			field := &ast.ClassField{Name: name, Static: static}
			if p.peekIs(token.ASSIGN) {
				p.next()
				p.next()
				field.Init = p.parseExpression(precAssign)
			}
			field.Span = span(mstart, p.cur.End)
			cls.Fields = append(cls.Fields, field)
			if p.peekIs(token.SEMI) {
				p.next()
			}
		}
		p.next()
	}
	cls.Span = span(start, p.cur.End)
	return cls
}
