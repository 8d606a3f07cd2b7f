// Package hir implements stage H (spec.md's pipeline stage table): lowering
// the monomorphic AST to a flat target-emission-boundary IR. The actual C
// emitter and host-compiler invocation are out of scope (spec §1's
// Non-goals); HIR is the last representation this repository produces —
// every generic has been resolved to a concrete instantiation, every
// method call has been resolved to a direct call, and every declaration
// has a stable emission symbol.
//
// Grounded on internal/vm/compiler.go's separation of a "compile one
// declaration to a flat unit" pass from the analyzer that precedes it;
// amberc's target is a tree-shaped IR rather than funxy's bytecode chunk,
// since C code generation (the actual target-specific flattening) is out
// of scope and HIR only needs to be *close enough* to emission to name
// every symbol and resolve every call.
package hir

import "github.com/amber-lang/amberc/internal/types"

// Program is the output of stage H: every function, record, and union
// the compiled module set needs emitted, keyed by a stable Symbol.
type Program struct {
	Records   []*RecordLayout
	Unions    []*UnionLayout
	Functions []*Function
}

// Field is one named, typed slot — a record field, union case slot, or
// function parameter.
type Field struct {
	Name string
	Type types.Type
}

// RecordLayout is one record declaration's shape. Typarams lists any
// surviving generic parameters: a record used only at concrete
// instantiations still gets exactly one RecordLayout here (the C emitter,
// out of scope, is expected to specialize per monomorphized use; HIR's
// job stops at naming the shape, not laying out concrete C structs per
// instantiation).
type RecordLayout struct {
	Symbol   string
	Typarams []string
	Fields   []Field
}

// CaseLayout is one tagged case of a union.
type CaseLayout struct {
	Name string
	Tag  int
	Slots []Field
}

// UnionLayout is one union declaration's shape.
type UnionLayout struct {
	Symbol   string
	Typarams []string
	Cases    []CaseLayout
}

// Function is one emitted function body: either a non-generic top-level
// function, one monomorphized instantiation of a generic one, or one
// typeclass method body resolved for a specific instance (spec §4.5/§4.6
// — by the time lowering runs, no Function here has any free type
// variable left in its signature or body).
type Function struct {
	Symbol     string
	Params     []Field
	ReturnType types.Type
	Body       []Stmt
}

// Stmt is one lowered statement.
type Stmt interface{ hirStmtNode() }

type LetStmt struct {
	Name  string
	Type  types.Type
	Value Expr
}

func (LetStmt) hirStmtNode() {}

type ExprStmt struct{ Value Expr }

func (ExprStmt) hirStmtNode() {}

// ReturnStmt's Value is nil for a bare `return;` (lowers Unit).
type ReturnStmt struct{ Value Expr }

func (ReturnStmt) hirStmtNode() {}

type IfStmt struct {
	Cond       Expr
	Then, Else []Stmt
}

func (IfStmt) hirStmtNode() {}

type WhileStmt struct {
	Cond Expr
	Body []Stmt
}

func (WhileStmt) hirStmtNode() {}

// ForStmt preserves the source's item/iterable loop shape; funxy's
// equivalent lowers a for-in loop to an explicit index counter at the
// bytecode-compiler boundary, but HIR stays one level higher than that
// (the out-of-scope C emitter does the counter-introducing rewrite).
type ForStmt struct {
	Binding  string
	Iterable Expr
	Body     []Stmt
}

func (ForStmt) hirStmtNode() {}

// CaseArm is one tagged arm of a CaseStmt. Slots names the local bindings
// introduced for this case's payload, positionally matching
// UnionLayout.Cases[Tag].Slots — the out-of-scope C emitter declares one
// local per entry when it lowers the tag switch.
type CaseArm struct {
	CaseName string
	Tag      int
	Slots    []Field
	Body     []Stmt
}

// CaseStmt switches on a union's tag (spec §4.3/§4.4): exhaustiveness was
// already checked at stage F, so lowering never needs a default arm.
type CaseStmt struct {
	Scrutinee Expr
	Arms      []CaseArm
}

func (CaseStmt) hirStmtNode() {}

// Expr is one lowered expression.
type Expr interface {
	hirExprNode()
	Type() types.Type
}

type base struct{ T types.Type }

func (b base) Type() types.Type { return b.T }

type IntLit struct {
	base
	Value int64
}

func (IntLit) hirExprNode() {}

type FloatLit struct {
	base
	Value float64
}

func (FloatLit) hirExprNode() {}

type BoolLit struct {
	base
	Value bool
}

func (BoolLit) hirExprNode() {}

type UnitLit struct{ base }

func (UnitLit) hirExprNode() {}

type Ident struct {
	base
	Name string
}

func (Ident) hirExprNode() {}

type FieldVal struct {
	Name  string
	Value Expr
}

// RecordLit constructs a value of the record named by Symbol.
type RecordLit struct {
	base
	Symbol string
	Fields []FieldVal
}

func (RecordLit) hirExprNode() {}

// ConstructorLit constructs a tagged union value.
type ConstructorLit struct {
	base
	Symbol   string
	CaseName string
	Tag      int
	Fields   []FieldVal
}

func (ConstructorLit) hirExprNode() {}

// Call is a direct call to Symbol — the mangled name of either a concrete
// function, a monomorphized instantiation, or a statically resolved
// typeclass method (spec §4.6: overlapping instances are rejected
// up-front, so every method call resolves to exactly one symbol).
type Call struct {
	base
	Symbol string
	Args   []Expr
}

func (Call) hirExprNode() {}

type FieldAccess struct {
	base
	Head Expr
	Slot string
}

func (FieldAccess) hirExprNode() {}

type IndexExpr struct {
	base
	Head  Expr
	Index Expr
}

func (IndexExpr) hirExprNode() {}

// AddressOf replaces a BorrowExpr: regions are erased by stage H (they
// exist only to drive stage F's borrow-scope checking), so a borrow
// lowers to a plain address-of expression.
type AddressOf struct {
	base
	Target Expr
}

func (AddressOf) hirExprNode() {}

type BinaryExpr struct {
	base
	Op          string
	Left, Right Expr
}

func (BinaryExpr) hirExprNode() {}

type UnaryExpr struct {
	base
	Op      string
	Operand Expr
}

func (UnaryExpr) hirExprNode() {}
