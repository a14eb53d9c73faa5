package parser

import (
	"github.com/PoopyPooOS/nushell/internal/engine"
	"github.com/PoopyPooOS/nushell/internal/token"
)

// Keyword forms compile into ordinary calls whose decls are keyword
// commands. The parser does the binding work (allocating variable ids,
// staging decls from `def`) so that runtime only ever sees ids.
//
// Every parse function here starts with the cursor on the keyword token
// and ends with it on the token after the whole construct.

func (p *Parser) keywordDecl(tok token.Token) (engine.DeclID, bool) {
	id, ok := p.ws.FindDecl(tok.Literal, p.active)
	if !ok {
		p.errorf(tok, "unknown command %q", tok.Literal)
	}
	return id, ok
}

// parseBareBlock parses `{ ... }` with the cursor on `{`, leaving it on
// the matching `}`. Params are pre-registered in a fresh scope.
func (p *Parser) parseBareBlock(params []engine.BlockParam) (engine.BlockID, engine.Span, bool) {
	start := p.curToken
	p.enterScope()
	for _, prm := range params {
		p.scopes[len(p.scopes)-1][prm.Name] = prm.ID
	}
	p.nextToken()
	body := p.parseBlockBody(token.RBRACE, params)
	p.exitScope()
	if !p.curTokenIs(token.RBRACE) {
		p.errorf(start, "unclosed block")
		return 0, engine.UnknownSpan(), false
	}
	span := engine.Span{Start: start.Start + p.offset, End: p.curToken.End + p.offset}
	body.BlockSpan = span
	return p.ws.AddBlock(body), span, true
}

// parseLet compiles `let name = expr`. The variable id is allocated after
// the value parses, so `let x = $x` still reads the outer binding.
func (p *Parser) parseLet() engine.Expression {
	letTok := p.curToken
	decl, ok := p.keywordDecl(letTok)
	if !ok {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	nameTok := p.curToken
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	val := p.parseMathExpression(lowest)
	if val == nil {
		return nil
	}
	p.nextToken()

	id := p.declareVar(nameTok.Literal, p.span(nameTok))
	return &engine.CallExpr{Call: &engine.Call{
		Decl: decl,
		Head: p.span(letTok),
		Positional: []engine.Expression{
			&engine.VarDecl{ID: id, Name: nameTok.Literal, ExpSpan: p.span(nameTok)},
			val,
		},
	}}
}

// parseDef compiles `def name [params] { body }`, staging the new command
// and its overlay binding so the very next line can call it.
func (p *Parser) parseDef() engine.Expression {
	defTok := p.curToken
	decl, ok := p.keywordDecl(defTok)
	if !ok {
		return nil
	}
	if !p.peekTokenIs(token.IDENT) && !p.peekTokenIs(token.STRING) {
		p.errorf(p.peekToken, "expected command name, got %s", p.peekToken.Type)
		return nil
	}
	p.nextToken()
	nameTok := p.curToken
	name := nameTok.Literal

	var params []engine.BlockParam
	if p.peekTokenIs(token.LBRACKET) {
		p.nextToken()
		for !p.peekTokenIs(token.RBRACKET) {
			if p.peekTokenIs(token.EOF) {
				p.errorf(p.curToken, "unclosed parameter list")
				return nil
			}
			p.nextToken()
			if p.curTokenIs(token.COMMA) || p.curTokenIs(token.NEWLINE) {
				continue
			}
			if !p.curTokenIs(token.IDENT) {
				p.errorf(p.curToken, "expected parameter name, got %s", p.curToken.Type)
				return nil
			}
			id := p.ws.AddVariable(p.curToken.Literal, p.span(p.curToken))
			params = append(params, engine.BlockParam{Name: p.curToken.Literal, ID: id})
		}
		p.nextToken() // onto ]
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	blockID, _, ok := p.parseBareBlock(params)
	if !ok {
		return nil
	}
	p.nextToken()

	sig := engine.NewSignature(name).WithCategory("custom")
	for _, prm := range params {
		sig.Required(prm.Name, engine.ShapeAny, "")
	}
	declID := p.ws.AddDecl(&engine.BlockCommand{
		Cmd:   name,
		Desc:  "custom command",
		Sig:   sig,
		Block: blockID,
	})
	p.ws.AddDeclBinding(p.topOverlay(), name, declID)

	return &engine.CallExpr{Call: &engine.Call{
		Decl: decl,
		Head: p.span(defTok),
		Positional: []engine.Expression{
			&engine.StringLiteral{Value: name, ExpSpan: p.span(nameTok)},
		},
	}}
}

// parseFor compiles `for x in iterable { body }`. The loop variable scopes
// over the body only.
func (p *Parser) parseFor() engine.Expression {
	forTok := p.curToken
	decl, ok := p.keywordDecl(forTok)
	if !ok {
		return nil
	}
	if !p.peekTokenIs(token.IDENT) && !p.peekTokenIs(token.VARIABLE) {
		p.errorf(p.peekToken, "expected loop variable, got %s", p.peekToken.Type)
		return nil
	}
	p.nextToken()
	varTok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	if p.curToken.Literal != "in" {
		p.errorf(p.curToken, "expected \"in\", got %q", p.curToken.Literal)
		return nil
	}
	p.nextToken()
	iter := p.parseMathExpression(lowest)
	if iter == nil {
		return nil
	}

	p.enterScope()
	varID := p.ws.AddVariable(varTok.Literal, p.span(varTok))
	p.scopes[len(p.scopes)-1][varTok.Literal] = varID

	if !p.expectPeek(token.LBRACE) {
		p.exitScope()
		return nil
	}
	blockID, blockSpan, ok := p.parseBareBlock(nil)
	p.exitScope()
	if !ok {
		return nil
	}
	p.nextToken()

	return &engine.CallExpr{Call: &engine.Call{
		Decl: decl,
		Head: p.span(forTok),
		Positional: []engine.Expression{
			&engine.VarDecl{ID: varID, Name: varTok.Literal, ExpSpan: p.span(varTok)},
			iter,
			&engine.BlockExpr{ID: blockID, ExpSpan: blockSpan},
		},
	}}
}

// parseWhile compiles `while cond { body }`.
func (p *Parser) parseWhile() engine.Expression {
	whileTok := p.curToken
	decl, ok := p.keywordDecl(whileTok)
	if !ok {
		return nil
	}
	p.nextToken()
	cond := p.parseMathExpression(lowest)
	if cond == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	blockID, blockSpan, ok := p.parseBareBlock(nil)
	if !ok {
		return nil
	}
	p.nextToken()

	return &engine.CallExpr{Call: &engine.Call{
		Decl: decl,
		Head: p.span(whileTok),
		Positional: []engine.Expression{
			cond,
			&engine.BlockExpr{ID: blockID, ExpSpan: blockSpan},
		},
	}}
}

// parseLoop compiles `loop { body }`.
func (p *Parser) parseLoop() engine.Expression {
	loopTok := p.curToken
	decl, ok := p.keywordDecl(loopTok)
	if !ok {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	blockID, blockSpan, ok := p.parseBareBlock(nil)
	if !ok {
		return nil
	}
	p.nextToken()

	return &engine.CallExpr{Call: &engine.Call{
		Decl: decl,
		Head: p.span(loopTok),
		Positional: []engine.Expression{
			&engine.BlockExpr{ID: blockID, ExpSpan: blockSpan},
		},
	}}
}

// parseIf compiles `if cond { then }` with an optional `else { ... }` or
// `else if ...` chain.
func (p *Parser) parseIf() engine.Expression {
	ifTok := p.curToken
	decl, ok := p.keywordDecl(ifTok)
	if !ok {
		return nil
	}
	p.nextToken()
	cond := p.parseMathExpression(lowest)
	if cond == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	thenID, thenSpan, ok := p.parseBareBlock(nil)
	if !ok {
		return nil
	}

	positional := []engine.Expression{
		cond,
		&engine.BlockExpr{ID: thenID, ExpSpan: thenSpan},
	}

	if p.peekTokenIs(token.IDENT) && p.peekToken.Literal == "else" {
		p.nextToken() // onto else
		switch {
		case p.peekTokenIs(token.LBRACE):
			p.nextToken()
			elseID, elseSpan, ok := p.parseBareBlock(nil)
			if !ok {
				return nil
			}
			positional = append(positional, &engine.BlockExpr{ID: elseID, ExpSpan: elseSpan})
			p.nextToken()
		case p.peekTokenIs(token.IDENT) && p.peekToken.Literal == "if":
			p.nextToken()
			elseExpr := p.parseIf()
			if elseExpr == nil {
				return nil
			}
			positional = append(positional, elseExpr)
		default:
			p.errorf(p.peekToken, "expected block or if after else, got %s", p.peekToken.Type)
			return nil
		}
	} else {
		p.nextToken()
	}

	return &engine.CallExpr{Call: &engine.Call{
		Decl:       decl,
		Head:       p.span(ifTok),
		Positional: positional,
	}}
}

// parseReturn compiles `return` with an optional value expression.
func (p *Parser) parseReturn(closing token.Type) engine.Expression {
	retTok := p.curToken
	decl, ok := p.keywordDecl(retTok)
	if !ok {
		return nil
	}
	call := &engine.Call{Decl: decl, Head: p.span(retTok)}

	if isSeparator(p.peekToken.Type) || p.peekTokenIs(token.PIPE) || p.peekTokenIs(closing) {
		p.nextToken()
		return &engine.CallExpr{Call: call}
	}

	p.nextToken()
	val := p.parseMathExpression(lowest)
	if val == nil {
		return nil
	}
	p.nextToken()
	call.Positional = append(call.Positional, val)
	return &engine.CallExpr{Call: call}
}
