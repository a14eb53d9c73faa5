// Package parser compiles source text into blocks staged in a state
// working set. Everything the parser creates (blocks, spans, variables,
// decls from `def`, overlay bindings from top-level `let`) goes into the
// working set; nothing becomes visible until the caller merges the rendered
// delta. Command and variable names are resolved at parse time against the
// active overlay order, so compiled expressions carry ids, not names.
package parser

import (
	"strconv"

	"github.com/PoopyPooOS/nushell/internal/config"
	"github.com/PoopyPooOS/nushell/internal/engine"
	"github.com/PoopyPooOS/nushell/internal/lexer"
	"github.com/PoopyPooOS/nushell/internal/token"
)

type Parser struct {
	l  *lexer.Lexer
	ws *engine.StateWorkingSet

	active []string
	offset int // file position in the global source space

	curToken  token.Token
	peekToken token.Token

	errors []*engine.Error
	scopes []map[string]engine.VarID
}

// Parse compiles source into a staged top-level block and returns its id.
// active is the caller's overlay order, most recently activated last.
func Parse(ws *engine.StateWorkingSet, active []string, name string, source []byte) (engine.BlockID, error) {
	if len(active) == 0 {
		active = []string{config.DefaultOverlayName}
	}
	covered := ws.AddFile(name, source)

	p := &Parser{
		l:      lexer.New(string(source)),
		ws:     ws,
		active: active,
		offset: covered.Start,
		scopes: []map[string]engine.VarID{{}},
	}
	p.nextToken()
	p.nextToken()

	block := p.parseBlockBody(token.EOF, nil)
	block.BlockSpan = covered
	id := ws.AddBlock(block)

	if len(p.errors) > 0 {
		return id, p.errors[0]
	}
	return id, nil
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorf(p.peekToken, "expected %s, got %s", t, p.peekToken.Type)
	return false
}

func (p *Parser) span(tok token.Token) engine.Span {
	return engine.Span{Start: tok.Start + p.offset, End: tok.End + p.offset}
}

func (p *Parser) errorf(tok token.Token, format string, args ...any) {
	p.errors = append(p.errors, engine.NewError(engine.KindParse, p.span(tok), format, args...))
}

// topOverlay is where top-level definitions are bound.
func (p *Parser) topOverlay() string {
	return p.active[len(p.active)-1]
}

func (p *Parser) enterScope() {
	p.scopes = append(p.scopes, map[string]engine.VarID{})
}

func (p *Parser) exitScope() {
	p.scopes = p.scopes[:len(p.scopes)-1]
}

// declareVar allocates a variable id and registers it in the current parse
// scope. Top-level declarations are additionally staged as overlay
// bindings so later parses (the next REPL line) can resolve them.
func (p *Parser) declareVar(name string, span engine.Span) engine.VarID {
	id := p.ws.AddVariable(name, span)
	p.scopes[len(p.scopes)-1][name] = id
	if len(p.scopes) == 1 {
		p.ws.AddVarBinding(p.topOverlay(), name, id)
	}
	return id
}

func (p *Parser) resolveVar(name string) (engine.VarID, bool) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if id, ok := p.scopes[i][name]; ok {
			return id, true
		}
	}
	return p.ws.FindVariable(name, p.active)
}

func isSeparator(t token.Type) bool {
	return t == token.NEWLINE || t == token.SEMICOLON || t == token.EOF
}

// parseBlockBody reads pipelines until the closing token. Used for the
// whole program (until EOF), block literals (until }) and subexpressions
// (until )).
func (p *Parser) parseBlockBody(closing token.Type, params []engine.BlockParam) *engine.Block {
	block := &engine.Block{Params: params}
	p.skipSeparators(closing)
	for !p.curTokenIs(closing) && !p.curTokenIs(token.EOF) {
		pl := p.parsePipeline(closing)
		if pl != nil && len(pl.Elements) > 0 {
			block.Pipelines = append(block.Pipelines, pl)
		}
		if !isSeparator(p.curToken.Type) && !p.curTokenIs(closing) {
			p.errorf(p.curToken, "unexpected token %s", p.curToken.Type)
			p.synchronize(closing)
		}
		p.skipSeparators(closing)
	}
	return block
}

func (p *Parser) skipSeparators(closing token.Type) {
	for (p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.SEMICOLON)) && !p.curTokenIs(closing) {
		p.nextToken()
	}
}

// synchronize skips to the next statement boundary after a parse error.
func (p *Parser) synchronize(closing token.Type) {
	for !isSeparator(p.curToken.Type) && !p.curTokenIs(closing) && !p.curTokenIs(token.EOF) {
		p.nextToken()
	}
}

func (p *Parser) parsePipeline(closing token.Type) *engine.Pipeline {
	pl := &engine.Pipeline{}
	el := p.parseElement(closing)
	if el == nil {
		p.synchronize(closing)
		return nil
	}
	pl.Elements = append(pl.Elements, el)
	for p.curTokenIs(token.PIPE) {
		p.nextToken()
		// Allow the pipeline to continue on the next line.
		for p.curTokenIs(token.NEWLINE) {
			p.nextToken()
		}
		el := p.parseElement(closing)
		if el == nil {
			p.synchronize(closing)
			return pl
		}
		pl.Elements = append(pl.Elements, el)
	}
	return pl
}

// parseElement parses one pipeline element: a keyword form, a command
// call, or a bare expression.
func (p *Parser) parseElement(closing token.Type) engine.Expression {
	if p.curTokenIs(token.IDENT) {
		switch p.curToken.Literal {
		case "def":
			return p.parseDef()
		case "let":
			return p.parseLet()
		case "for":
			return p.parseFor()
		case "while":
			return p.parseWhile()
		case "loop":
			return p.parseLoop()
		case "if":
			return p.parseIf()
		case "return":
			return p.parseReturn(closing)
		default:
			return p.parseCall(closing)
		}
	}
	expr := p.parseMathExpression(lowest)
	if expr == nil {
		return nil
	}
	p.nextToken()
	return expr
}

// parseCall resolves a (possibly multi-word) command name and parses its
// arguments up to the end of the pipeline element.
func (p *Parser) parseCall(closing token.Type) engine.Expression {
	head := p.curToken
	name := head.Literal
	endTok := head

	// Grow the name while a longer command exists, so `overlay new` and
	// `help commands` resolve as single decls.
	for p.peekTokenIs(token.IDENT) {
		longer := name + " " + p.peekToken.Literal
		if _, ok := p.ws.FindDecl(longer, p.active); !ok {
			break
		}
		p.nextToken()
		name = longer
		endTok = p.curToken
	}

	declID, ok := p.ws.FindDecl(name, p.active)
	if !ok {
		p.errorf(head, "unknown command %q", name)
		return nil
	}
	decl := p.ws.GetDecl(declID)
	sig := decl.Signature()

	call := &engine.Call{
		Decl: declID,
		Head: engine.Span{Start: head.Start + p.offset, End: endTok.End + p.offset},
	}
	p.nextToken()

	for !isSeparator(p.curToken.Type) && !p.curTokenIs(token.PIPE) && !p.curTokenIs(closing) {
		if p.curTokenIs(token.FLAG) {
			flagTok := p.curToken
			flag, ok := sig.FindFlag(flagTok.Literal)
			if !ok {
				p.errorf(flagTok, "command %q has no flag --%s", name, flagTok.Literal)
				return nil
			}
			p.nextToken()
			if call.Named == nil {
				call.Named = map[string]engine.Expression{}
			}
			if flag.Shape == engine.ShapeNothing {
				call.Named[flag.Long] = nil
				continue
			}
			val := p.parseArgExpression()
			if val == nil {
				return nil
			}
			call.Named[flag.Long] = val
			continue
		}
		arg := p.parseArgExpression()
		if arg == nil {
			return nil
		}
		call.Positional = append(call.Positional, arg)
	}

	required := len(sig.Positional)
	if sig.OptionalFrom >= 0 {
		required = sig.OptionalFrom
	}
	if len(call.Positional) < required {
		p.errorf(head, "command %q requires %d positional argument(s), got %d",
			name, required, len(call.Positional))
		return nil
	}

	return &engine.CallExpr{Call: call}
}

// parseArgExpression parses a single argument in command position: bare
// words are strings, everything else follows the literal grammar. The
// token cursor ends up on the token after the argument.
func (p *Parser) parseArgExpression() engine.Expression {
	tok := p.curToken
	switch tok.Type {
	case token.IDENT:
		p.nextToken()
		switch tok.Literal {
		case "true", "false":
			return &engine.BoolLiteral{Value: tok.Literal == "true", ExpSpan: p.span(tok)}
		case "null":
			return &engine.NothingLiteral{ExpSpan: p.span(tok)}
		}
		return &engine.StringLiteral{Value: tok.Literal, ExpSpan: p.span(tok)}
	case token.STRING:
		p.nextToken()
		return &engine.StringLiteral{Value: tok.Literal, ExpSpan: p.span(tok)}
	case token.INT, token.FLOAT, token.VARIABLE, token.LBRACKET, token.LPAREN, token.LBRACE:
		expr := p.parseMathExpression(lowest)
		if expr == nil {
			return nil
		}
		p.nextToken()
		return expr
	default:
		p.errorf(tok, "unexpected token %s in argument position", tok.Type)
		return nil
	}
}

func (p *Parser) parseIntLiteral(tok token.Token) engine.Expression {
	v, err := strconv.ParseInt(tok.Literal, 10, 64)
	if err != nil {
		p.errorf(tok, "invalid integer literal %q", tok.Literal)
		return nil
	}
	return &engine.IntLiteral{Value: v, ExpSpan: p.span(tok)}
}

func (p *Parser) parseFloatLiteral(tok token.Token) engine.Expression {
	v, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		p.errorf(tok, "invalid float literal %q", tok.Literal)
		return nil
	}
	return &engine.FloatLiteral{Value: v, ExpSpan: p.span(tok)}
}

func (p *Parser) parseVarRef(tok token.Token) engine.Expression {
	id, ok := p.resolveVar(tok.Literal)
	if !ok {
		p.errorf(tok, "variable $%s not found", tok.Literal)
		return nil
	}
	return &engine.VarRef{ID: id, ExpSpan: p.span(tok)}
}
