package engine

// CommandType separates ordinary commands from keyword commands. Keyword
// commands are the only ones allowed to stage working sets, merge deltas,
// mutate the stack's environment or overlay state, or interpret raw control
// signals; ordinary commands just transform pipeline data and return
// ordinary errors.
type CommandType int

const (
	NormalCommand CommandType = iota
	KeywordCommand
)

func (t CommandType) String() string {
	if t == KeywordCommand {
		return "keyword"
	}
	return "built-in"
}

// Command is the contract every builtin and host-registered operation
// implements. Run is the one required execution method; extra capabilities
// are separate small interfaces so dispatch stays explicit.
type Command interface {
	Name() string
	Signature() *Signature
	Description() string
	CommandType() CommandType
	Run(state *EngineState, stack *Stack, call *Call, input PipelineData) (PipelineData, error)
}

// ConstCommand marks a command evaluable without full execution context,
// e.g. for constant folding at parse time. Implementations must not touch
// the permanent state behind the working set.
type ConstCommand interface {
	Command
	RunConst(ws *StateWorkingSet, call *Call, input PipelineData) (PipelineData, error)
}

// SyntaxShape describes what a parameter position accepts.
type SyntaxShape int

const (
	ShapeAny SyntaxShape = iota
	ShapeInt
	ShapeString
	ShapeBool
	ShapeList
	ShapeRange
	ShapeBlock
	ShapeClosure
	ShapeVarName
	ShapeNothing
)

// PositionalArg declares one positional parameter.
type PositionalArg struct {
	Name  string
	Shape SyntaxShape
	Desc  string
}

// Flag declares a named parameter. Shape == ShapeNothing marks a switch.
type Flag struct {
	Long  string
	Short string
	Shape SyntaxShape
	Desc  string
}

// Signature is a command's typed parameter declaration, built fluently the
// way commands declare themselves.
type Signature struct {
	Name         string
	Category     string
	Positional   []PositionalArg
	RestArg      *PositionalArg
	OptionalFrom int // index of the first optional positional, -1 if none
	Named        []Flag
	CreatesScope bool
}

// NewSignature starts a signature for a command name.
func NewSignature(name string) *Signature {
	return &Signature{Name: name, OptionalFrom: -1}
}

// Required appends a mandatory positional parameter.
func (s *Signature) Required(name string, shape SyntaxShape, desc string) *Signature {
	s.Positional = append(s.Positional, PositionalArg{Name: name, Shape: shape, Desc: desc})
	return s
}

// Optional appends an optional positional parameter.
func (s *Signature) Optional(name string, shape SyntaxShape, desc string) *Signature {
	if s.OptionalFrom < 0 {
		s.OptionalFrom = len(s.Positional)
	}
	s.Positional = append(s.Positional, PositionalArg{Name: name, Shape: shape, Desc: desc})
	return s
}

// Rest declares a trailing variadic parameter.
func (s *Signature) Rest(name string, shape SyntaxShape, desc string) *Signature {
	s.RestArg = &PositionalArg{Name: name, Shape: shape, Desc: desc}
	return s
}

// Switch appends a boolean flag.
func (s *Signature) Switch(long, short, desc string) *Signature {
	s.Named = append(s.Named, Flag{Long: long, Short: short, Shape: ShapeNothing, Desc: desc})
	return s
}

// NamedFlag appends a value-carrying flag.
func (s *Signature) NamedFlag(long, short string, shape SyntaxShape, desc string) *Signature {
	s.Named = append(s.Named, Flag{Long: long, Short: short, Shape: shape, Desc: desc})
	return s
}

// WithCategory records the help category.
func (s *Signature) WithCategory(category string) *Signature {
	s.Category = category
	return s
}

// Scoped marks that the command evaluates its blocks in a child scope.
func (s *Signature) Scoped() *Signature {
	s.CreatesScope = true
	return s
}

// FindFlag resolves a long or short flag name.
func (s *Signature) FindFlag(name string) (*Flag, bool) {
	for i := range s.Named {
		if s.Named[i].Long == name || (s.Named[i].Short != "" && s.Named[i].Short == name) {
			return &s.Named[i], true
		}
	}
	return nil, false
}

// BlockCommand is a command declared from source with `def`: a signature
// plus a block body. Its Run is a function boundary: a return signal from
// the body is absorbed and becomes the result, while break and continue do
// not cross it.
type BlockCommand struct {
	Cmd      string
	Desc     string
	Sig      *Signature
	Block    BlockID
	IsParser bool // reserved for parser-internal decls
}

func (c *BlockCommand) Name() string             { return c.Cmd }
func (c *BlockCommand) Description() string      { return c.Desc }
func (c *BlockCommand) Signature() *Signature    { return c.Sig }
func (c *BlockCommand) CommandType() CommandType { return NormalCommand }

func (c *BlockCommand) Run(state *EngineState, stack *Stack, call *Call, input PipelineData) (PipelineData, error) {
	if state.EvalBlock == nil {
		return nil, NewError(KindGeneric, call.Head, "engine state has no block evaluator installed")
	}
	block := state.GetBlock(c.Block)
	child := stack.Child()
	for i, param := range block.Params {
		arg := call.Pos(i)
		if arg == nil {
			return nil, NewError(KindMissingParameter, call.Head, "missing required parameter %q", param.Name)
		}
		if state.EvalExpression == nil {
			return nil, NewError(KindGeneric, call.Head, "engine state has no expression evaluator installed")
		}
		val, err := state.EvalExpression(state, stack, arg)
		if err != nil {
			return nil, err
		}
		child.AddVar(param.ID, val)
	}
	data, err := state.EvalBlock(state, child, block, input)
	if err != nil {
		if ret, ok := err.(*ReturnSignal); ok {
			return ValueData{Value: ret.Value}, nil
		}
		// Function bodies are opaque to loop control.
		if brk, ok := err.(*BreakSignal); ok {
			return nil, NewError(KindGeneric, brk.Span, "break used outside of a loop")
		}
		if cnt, ok := err.(*ContinueSignal); ok {
			return nil, NewError(KindGeneric, cnt.Span, "continue used outside of a loop")
		}
		return nil, err
	}
	return data, nil
}
