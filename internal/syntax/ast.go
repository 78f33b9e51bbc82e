package syntax

import "github.com/zclconf/go-cty/cty"

// Node is any parsed tree node.
type Node interface {
	Pos() Pos
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Literal is a constant cty value: numbers, strings, booleans, null.
type Literal struct {
	Value  cty.Value
	SrcPos Pos
}

// Name is a bare identifier reference.
type Name struct {
	Ident  string
	SrcPos Pos
}

// Attr is a dotted attribute access, used for module-qualified callable
// references such as geometry.area.
type Attr struct {
	X      Expr
	Name   string
	SrcPos Pos
}

// Placeholder is the reserved `_` token marking where a piped value is
// inserted within a stage's arguments.
type Placeholder struct {
	SrcPos Pos
}

// TupleExpr is a parenthesized tuple constructor: (), (a,), (a, b).
type TupleExpr struct {
	Elems  []Expr
	SrcPos Pos
}

// ListExpr is a bracketed list constructor: [a, b].
type ListExpr struct {
	Elems  []Expr
	SrcPos Pos
}

// Arg is one call argument, keyword when Name is non-empty.
type Arg struct {
	Name  string
	Value Expr
}

// CallExpr is a call with positional and keyword arguments.
type CallExpr struct {
	Fn     Expr
	Args   []Arg
	SrcPos Pos
}

// DispatchCall is a synthetic node produced by the placement resolver when
// the incoming value's shape is only known at execution. The evaluator
// inspects the incoming value's type at call time: a tuple is spread as
// positional arguments starting at Insert, anything else is passed as a
// single argument at Insert.
type DispatchCall struct {
	Fn       Expr
	Args     []Arg
	Incoming Expr
	Insert   int // index among positional arguments
	SrcPos   Pos
}

// BinaryExpr is a binary operation, including the pipe operator before
// transformation. A transformed tree contains no OpPipe nodes.
type BinaryExpr struct {
	Op     Op
	LHS    Expr
	RHS    Expr
	SrcPos Pos
}

// UnaryExpr is negation or logical not.
type UnaryExpr struct {
	Op     Op
	X      Expr
	SrcPos Pos
}

// CondExpr is the ternary conditional cond ? then : else.
type CondExpr struct {
	Cond   Expr
	Then   Expr
	Else   Expr
	SrcPos Pos
}

// ParamDecl is one declared parameter of a routine or lambda.
type ParamDecl struct {
	Name           string
	Marker         string // declared type marker, "" when absent
	Default        Expr   // nil when no default
	PositionalOnly bool
	KeywordOnly    bool
	VariadicPos    bool // *rest
	VariadicKW     bool // **extra
}

// LambdaExpr is an inline anonymous function: \x, k = 2 -> x * k.
type LambdaExpr struct {
	Params []ParamDecl
	Body   Expr
	SrcPos Pos
}

// CaptureExpr binds Name to the evaluated value of X in the enclosing
// scope and yields that same value: (y := stage).
type CaptureExpr struct {
	Name   string
	X      Expr
	SrcPos Pos
}

// AssignStmt binds a local name: x = expr.
type AssignStmt struct {
	Name   string
	X      Expr
	SrcPos Pos
}

// ExprStmt evaluates an expression for its value and effects.
type ExprStmt struct {
	X      Expr
	SrcPos Pos
}

// ReturnStmt ends the routine with an explicit result.
type ReturnStmt struct {
	X      Expr
	SrcPos Pos
}

func (n *Literal) Pos() Pos      { return n.SrcPos }
func (n *Name) Pos() Pos         { return n.SrcPos }
func (n *Attr) Pos() Pos         { return n.SrcPos }
func (n *Placeholder) Pos() Pos  { return n.SrcPos }
func (n *TupleExpr) Pos() Pos    { return n.SrcPos }
func (n *ListExpr) Pos() Pos     { return n.SrcPos }
func (n *CallExpr) Pos() Pos     { return n.SrcPos }
func (n *DispatchCall) Pos() Pos { return n.SrcPos }
func (n *BinaryExpr) Pos() Pos   { return n.SrcPos }
func (n *UnaryExpr) Pos() Pos    { return n.SrcPos }
func (n *CondExpr) Pos() Pos     { return n.SrcPos }
func (n *LambdaExpr) Pos() Pos   { return n.SrcPos }
func (n *CaptureExpr) Pos() Pos  { return n.SrcPos }
func (n *AssignStmt) Pos() Pos   { return n.SrcPos }
func (n *ExprStmt) Pos() Pos     { return n.SrcPos }
func (n *ReturnStmt) Pos() Pos   { return n.SrcPos }

func (*Literal) exprNode()      {}
func (*Name) exprNode()         {}
func (*Attr) exprNode()         {}
func (*Placeholder) exprNode()  {}
func (*TupleExpr) exprNode()    {}
func (*ListExpr) exprNode()     {}
func (*CallExpr) exprNode()     {}
func (*DispatchCall) exprNode() {}
func (*BinaryExpr) exprNode()   {}
func (*UnaryExpr) exprNode()    {}
func (*CondExpr) exprNode()     {}
func (*LambdaExpr) exprNode()   {}
func (*CaptureExpr) exprNode()  {}

func (*AssignStmt) stmtNode() {}
func (*ExprStmt) stmtNode()   {}
func (*ReturnStmt) stmtNode() {}

// Op enumerates the operators of the language.
type Op int

const (
	OpPipe Op = iota
	OpOr
	OpAnd
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpNeg
	OpNot
)

var opSymbols = map[Op]string{
	OpPipe: "|>",
	OpOr:   "||",
	OpAnd:  "&&",
	OpEq:   "==",
	OpNe:   "!=",
	OpLt:   "<",
	OpLe:   "<=",
	OpGt:   ">",
	OpGe:   ">=",
	OpAdd:  "+",
	OpSub:  "-",
	OpMul:  "*",
	OpDiv:  "/",
	OpMod:  "%",
	OpPow:  "^",
	OpNeg:  "-",
	OpNot:  "!",
}

func (o Op) String() string { return opSymbols[o] }
