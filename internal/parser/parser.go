// Package parser builds an *ast.Program from tokens with Pratt-style
// prefix/infix dispatch.
package parser

import (
	"github.com/funvibe/flowtype/internal/ast"
	"github.com/funvibe/flowtype/internal/diagnostics"
	"github.com/funvibe/flowtype/internal/lexer"
	"github.com/funvibe/flowtype/internal/token"
)

const maxRecursionDepth = 250

// precedence levels, lowest to highest.
const (
	_ int = iota
	precLowest
	precAssign     // = += -= etc (right-assoc)
	precConditional // ?:
	precNullish    // ??
	precLogicalOr  // ||
	precLogicalAnd // &&
	precBitOr
	precBitXor
	precBitAnd
	precEquality // == != === !==
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precExponent
	precUnary
	precPostfix // ++ --
	precCall    // foo() foo.bar foo[bar]
)

var precedences = map[token.Kind]int{
	token.ASSIGN: precAssign, token.PLUS_ASSIGN: precAssign,
	token.MINUS_ASSIGN: precAssign, token.STAR_ASSIGN: precAssign, token.SLASH_ASSIGN: precAssign,
	token.QUESTION:           precConditional,
	token.QUESTION_QUESTION:  precNullish,
	token.OR_OR:              precLogicalOr,
	token.AND_AND:            precLogicalAnd,
	token.PIPE:               precBitOr,
	token.CARET:              precBitXor,
	token.AMP:                precBitAnd,
	token.EQ:                 precEquality,
	token.NEQ:                precEquality,
	token.SEQ:                precEquality,
	token.SNEQ:               precEquality,
	token.LT:                 precRelational,
	token.GT:                 precRelational,
	token.LE:                 precRelational,
	token.GE:                 precRelational,
	token.INSTANCEOF:         precRelational,
	token.SHL:                precShift,
	token.SHR:                precShift,
	token.PLUS:               precAdditive,
	token.MINUS:              precAdditive,
	token.STAR:               precMultiplicative,
	token.SLASH:              precMultiplicative,
	token.PERCENT:            precMultiplicative,
	token.STAR_STAR:          precExponent,
	token.INC:                precPostfix,
	token.DEC:                precPostfix,
	token.LPAREN:             precCall,
	token.DOT:                precCall,
	token.OPTIONAL_CHAIN:     precCall,
	token.LBRACKET:           precCall,
}

// Parser consumes a Lexer and produces an *ast.Program.
type Parser struct {
	l      *lexer.Lexer
	cur    token.Token
	peek   token.Token
	Errors []diagnostics.Diagnostic
	depth  int
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	return p
}

func Parse(source string) (*ast.Program, []diagnostics.Diagnostic) {
	p := New(lexer.New(source))
	prog := p.ParseProgram()
	return prog, p.Errors
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) curIs(k token.Kind) bool  { return p.cur.Kind == k }
func (p *Parser) peekIs(k token.Kind) bool { return p.peek.Kind == k }

func (p *Parser) expect(k token.Kind) bool {
	if p.peekIs(k) {
		p.next()
		return true
	}
	p.Errors = append(p.Errors, diagnostics.New(p.peek, "expected %s, got %s", k, p.peek.Kind))
	return false
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peek.Kind]; ok {
		return pr
	}
	return precLowest
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur.Kind]; ok {
		return pr
	}
	return precLowest
}

// ParseProgram parses an entire source file.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	startPos := p.cur.Start
	for !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		p.next()
	}
	prog.Start = startPos
	prog.Stop = p.cur.Start
	return prog
}

// skipStatement advances until the next statement boundary, used for error
// recovery so one malformed statement does not cascade.
func (p *Parser) skipStatement() {
	for !p.curIs(token.SEMI) && !p.curIs(token.EOF) && !p.curIs(token.RBRACE) {
		p.next()
	}
}
