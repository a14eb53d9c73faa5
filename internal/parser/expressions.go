package parser

import (
	"github.com/PoopyPooOS/nushell/internal/engine"
	"github.com/PoopyPooOS/nushell/internal/token"
)

// Operator precedence, lowest binds loosest.
const (
	lowest = iota
	equals
	lessGreater
	sum
	product
	rangeOp
)

var precedences = map[token.Type]int{
	token.EQ:       equals,
	token.NOT_EQ:   equals,
	token.LT:       lessGreater,
	token.GT:       lessGreater,
	token.LE:       lessGreater,
	token.GE:       lessGreater,
	token.PLUS:     sum,
	token.MINUS:    sum,
	token.ASTERISK: product,
	token.SLASH:    product,
	token.RANGE:    rangeOp,
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return lowest
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return lowest
}

// parseMathExpression parses an expression in math position (conditions,
// let values, list items). The cursor starts on the first token of the
// expression and ends on its last token.
func (p *Parser) parseMathExpression(precedence int) engine.Expression {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}
	for precedence < p.peekPrecedence() {
		p.nextToken()
		left = p.parseInfix(left)
		if left == nil {
			return nil
		}
	}
	return left
}

func (p *Parser) parsePrefix() engine.Expression {
	tok := p.curToken
	switch tok.Type {
	case token.INT:
		return p.parseIntLiteral(tok)
	case token.FLOAT:
		return p.parseFloatLiteral(tok)
	case token.STRING:
		return &engine.StringLiteral{Value: tok.Literal, ExpSpan: p.span(tok)}
	case token.VARIABLE:
		return p.parseVarRef(tok)
	case token.IDENT:
		switch tok.Literal {
		case "true", "false":
			return &engine.BoolLiteral{Value: tok.Literal == "true", ExpSpan: p.span(tok)}
		case "null":
			return &engine.NothingLiteral{ExpSpan: p.span(tok)}
		}
		// Bare words in math position read as strings.
		return &engine.StringLiteral{Value: tok.Literal, ExpSpan: p.span(tok)}
	case token.LBRACKET:
		return p.parseListLiteral()
	case token.LPAREN:
		return p.parseSubexpression()
	case token.LBRACE:
		if p.startsRecord() {
			return p.parseRecordLiteral()
		}
		return p.parseClosure()
	default:
		p.errorf(tok, "unexpected token %s in expression", tok.Type)
		return nil
	}
}

func (p *Parser) parseInfix(left engine.Expression) engine.Expression {
	opTok := p.curToken
	prec := p.curPrecedence()
	p.nextToken()
	right := p.parseMathExpression(prec)
	if right == nil {
		return nil
	}
	span := engine.Span{Start: left.Span().Start, End: right.Span().End}
	if opTok.Type == token.RANGE {
		return &engine.RangeLiteral{From: left, To: right, ExpSpan: span}
	}
	return &engine.BinaryOp{Op: string(opTok.Type), Left: left, Right: right, ExpSpan: span}
}

// parseListLiteral parses `[a, b, c]`; commas are optional, whitespace
// separates just as well.
func (p *Parser) parseListLiteral() engine.Expression {
	start := p.curToken
	list := &engine.ListLiteral{}
	for !p.peekTokenIs(token.RBRACKET) {
		if p.peekTokenIs(token.EOF) {
			p.errorf(start, "unclosed list literal")
			return nil
		}
		p.nextToken()
		if p.curTokenIs(token.COMMA) || p.curTokenIs(token.NEWLINE) {
			continue
		}
		item := p.parseMathExpression(lowest)
		if item == nil {
			return nil
		}
		list.Items = append(list.Items, item)
	}
	p.nextToken() // onto ]
	list.ExpSpan = engine.Span{Start: start.Start + p.offset, End: p.curToken.End + p.offset}
	return list
}

// parseSubexpression parses `( ... )` as an eagerly evaluated block.
func (p *Parser) parseSubexpression() engine.Expression {
	start := p.curToken
	p.nextToken()
	body := p.parseBlockBody(token.RPAREN, nil)
	if !p.curTokenIs(token.RPAREN) {
		p.errorf(start, "unclosed subexpression")
		return nil
	}
	span := engine.Span{Start: start.Start + p.offset, End: p.curToken.End + p.offset}
	body.BlockSpan = span
	id := p.ws.AddBlock(body)
	return &engine.SubExpr{ID: id, ExpSpan: span}
}

// startsRecord distinguishes `{key: val}` from a closure by peeking one
// token past the current lookahead. The lexer is a value type, so a copy
// scans ahead without disturbing the parse position.
func (p *Parser) startsRecord() bool {
	if p.peekTokenIs(token.RBRACE) {
		return false
	}
	if !p.peekTokenIs(token.IDENT) && !p.peekTokenIs(token.STRING) {
		return false
	}
	ahead := *p.l
	return ahead.NextToken().Type == token.COLON
}

func (p *Parser) parseRecordLiteral() engine.Expression {
	start := p.curToken
	rec := &engine.RecordLiteral{}
	for !p.peekTokenIs(token.RBRACE) {
		if p.peekTokenIs(token.EOF) {
			p.errorf(start, "unclosed record literal")
			return nil
		}
		p.nextToken()
		if p.curTokenIs(token.COMMA) || p.curTokenIs(token.NEWLINE) {
			continue
		}
		keyTok := p.curToken
		if !p.curTokenIs(token.IDENT) && !p.curTokenIs(token.STRING) {
			p.errorf(keyTok, "expected record key, got %s", keyTok.Type)
			return nil
		}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		val := p.parseMathExpression(lowest)
		if val == nil {
			return nil
		}
		rec.Cols = append(rec.Cols, keyTok.Literal)
		rec.Vals = append(rec.Vals, val)
	}
	p.nextToken() // onto }
	rec.ExpSpan = engine.Span{Start: start.Start + p.offset, End: p.curToken.End + p.offset}
	return rec
}

// parseClosure parses `{ ... }` or `{|x y| ... }` as a block literal. The
// cursor starts on `{` and ends on `}`.
func (p *Parser) parseClosure() engine.Expression {
	start := p.curToken

	var params []engine.BlockParam
	p.enterScope()
	defer p.exitScope()

	if p.peekTokenIs(token.PIPE) {
		p.nextToken() // onto |
		for p.peekTokenIs(token.IDENT) {
			p.nextToken()
			nameTok := p.curToken
			id := p.ws.AddVariable(nameTok.Literal, p.span(nameTok))
			p.scopes[len(p.scopes)-1][nameTok.Literal] = id
			params = append(params, engine.BlockParam{Name: nameTok.Literal, ID: id})
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
			}
		}
		if !p.expectPeek(token.PIPE) {
			return nil
		}
	}

	p.nextToken()
	body := p.parseBlockBody(token.RBRACE, params)
	if !p.curTokenIs(token.RBRACE) {
		p.errorf(start, "unclosed block")
		return nil
	}
	span := engine.Span{Start: start.Start + p.offset, End: p.curToken.End + p.offset}
	body.BlockSpan = span
	id := p.ws.AddBlock(body)
	return &engine.BlockExpr{ID: id, ExpSpan: span}
}
