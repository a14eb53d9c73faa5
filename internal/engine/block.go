package engine

// BlockID identifies a compiled block in the engine state.
type BlockID int

// VarID identifies a variable declaration in the engine state.
type VarID int

// DeclID identifies a command declaration in the engine state.
type DeclID int

// OverlayID identifies an overlay frame in the engine state.
type OverlayID int

// Variable is a declared variable. The id is the identity; the name exists
// for diagnostics and scope bindings.
type Variable struct {
	Name     string
	DeclSpan Span
}

// Expression is a node of the compiled form the parser stages into a
// working set. Expressions hold ids, never names: name resolution happens
// at parse time against the active overlay order.
type Expression interface {
	Span() Span
}

type IntLiteral struct {
	Value   int64
	ExpSpan Span
}

func (e *IntLiteral) Span() Span { return e.ExpSpan }

type FloatLiteral struct {
	Value   float64
	ExpSpan Span
}

func (e *FloatLiteral) Span() Span { return e.ExpSpan }

type BoolLiteral struct {
	Value   bool
	ExpSpan Span
}

func (e *BoolLiteral) Span() Span { return e.ExpSpan }

type StringLiteral struct {
	Value   string
	ExpSpan Span
}

func (e *StringLiteral) Span() Span { return e.ExpSpan }

type NothingLiteral struct {
	ExpSpan Span
}

func (e *NothingLiteral) Span() Span { return e.ExpSpan }

type ListLiteral struct {
	Items   []Expression
	ExpSpan Span
}

func (e *ListLiteral) Span() Span { return e.ExpSpan }

type RecordLiteral struct {
	Cols    []string
	Vals    []Expression
	ExpSpan Span
}

func (e *RecordLiteral) Span() Span { return e.ExpSpan }

type RangeLiteral struct {
	From    Expression
	To      Expression
	ExpSpan Span
}

func (e *RangeLiteral) Span() Span { return e.ExpSpan }

// VarRef reads a variable resolved at parse time.
type VarRef struct {
	ID      VarID
	ExpSpan Span
}

func (e *VarRef) Span() Span { return e.ExpSpan }

// VarDecl introduces a variable binding site (let targets, loop variables).
// The owning keyword command binds the id at runtime.
type VarDecl struct {
	ID      VarID
	Name    string
	ExpSpan Span
}

func (e *VarDecl) Span() Span { return e.ExpSpan }

// BlockExpr is a block literal; evaluating it yields a closure capturing
// the current stack frame.
type BlockExpr struct {
	ID      BlockID
	ExpSpan Span
}

func (e *BlockExpr) Span() Span { return e.ExpSpan }

// SubExpr is a parenthesized block evaluated eagerly in a child scope.
type SubExpr struct {
	ID      BlockID
	ExpSpan Span
}

func (e *SubExpr) Span() Span { return e.ExpSpan }

// CallExpr invokes a command.
type CallExpr struct {
	Call *Call
}

func (e *CallExpr) Span() Span { return e.Call.Head }

// BinaryOp is an infix operation in math position (conditions, let values,
// bracketed expressions).
type BinaryOp struct {
	Op      string
	Left    Expression
	Right   Expression
	ExpSpan Span
}

func (e *BinaryOp) Span() Span { return e.ExpSpan }

// Call is a single command invocation: the resolved decl, the head span of
// the command name, and unevaluated argument expressions. Commands pull and
// evaluate what they need through the eval helpers.
type Call struct {
	Decl       DeclID
	Head       Span
	Positional []Expression
	// Named maps a long flag name to its value expression; nil marks a
	// bare switch.
	Named map[string]Expression
}

// Pos returns positional argument n, or nil when absent.
func (c *Call) Pos(n int) Expression {
	if n < 0 || n >= len(c.Positional) {
		return nil
	}
	return c.Positional[n]
}

// HasNamed reports whether a flag was given.
func (c *Call) HasNamed(name string) bool {
	_, ok := c.Named[name]
	return ok
}

// BlockParam is a declared closure/command parameter.
type BlockParam struct {
	Name string
	ID   VarID
}

// Pipeline is a sequence of expressions whose pipeline data feeds left to
// right.
type Pipeline struct {
	Elements []Expression
}

// Block is a compiled sequence of pipelines, the unit of evaluation.
type Block struct {
	Params    []BlockParam
	Pipelines []*Pipeline
	BlockSpan Span
}
