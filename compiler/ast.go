package compiler

import (
	"reflect"
	"strconv"
)

// ---------------------------------------------------------------------------
// AST: Abstract Syntax Tree for prose
// ---------------------------------------------------------------------------

// Position represents a source location.
type Position struct {
	Line   int // 1-based line number
	Column int // characters before the token on its line
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() Position
	withPos(Position) Node
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmt() // marker method
}

// Expr is the interface for expression nodes. Every expression may also
// stand alone as a statement.
type Expr interface {
	Stmt
	expr() // marker method
}

// Member is the interface for class body members.
type Member interface {
	Node
	member() // marker method
}

// WithPos returns a copy of n whose position is replaced by tok's position.
// Children are shared with n, which the parser discards.
func WithPos[T Node](n T, tok Token) T {
	return n.withPos(tok.Pos).(T)
}

// NodeKind returns the node's type name, e.g. "IfStatement".
func NodeKind(n Node) string {
	t := reflect.TypeOf(n)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// Modifier is the visibility of a class member.
type Modifier int

const (
	ModifierNone Modifier = iota
	ModifierPublic
	ModifierSecret
)

func (m Modifier) String() string {
	switch m {
	case ModifierPublic:
		return "public"
	case ModifierSecret:
		return "secret"
	}
	return ""
}

// ---------------------------------------------------------------------------
// Statement nodes
// ---------------------------------------------------------------------------

// Declaration represents `declare a, b[2]`.
type Declaration struct {
	PosVal Position
	Names  []Expr // Identifier, ArrayAccess or DictionaryAccess
}

func (n *Declaration) Pos() Position { return n.PosVal }
func (n *Declaration) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *Declaration) stmt() {}

// SetStatement represents `set target to value`.
type SetStatement struct {
	PosVal Position
	Target Expr
	Value  Expr
}

func (n *SetStatement) Pos() Position { return n.PosVal }
func (n *SetStatement) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *SetStatement) stmt() {}

// AssignStatement represents `target to value`. It also encodes a
// parameter with a default value.
type AssignStatement struct {
	PosVal Position
	Target Expr
	Value  Expr
}

func (n *AssignStatement) Pos() Position { return n.PosVal }
func (n *AssignStatement) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *AssignStatement) stmt() {}

// ElseIfClause is one `else if cond then ...` arm.
type ElseIfClause struct {
	Condition Expr
	Body      []Stmt
}

// IfStatement represents if/else if/else/end if. Else is nil when there is
// no else arm.
type IfStatement struct {
	PosVal    Position
	Condition Expr
	Then      []Stmt
	ElseIfs   []ElseIfClause
	Else      []Stmt
}

func (n *IfStatement) Pos() Position { return n.PosVal }
func (n *IfStatement) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *IfStatement) stmt() {}

// InputStatement represents `input target to input(prompt)`.
type InputStatement struct {
	PosVal Position
	Target Expr
	Prompt Expr
}

func (n *InputStatement) Pos() Position { return n.PosVal }
func (n *InputStatement) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *InputStatement) stmt() {}

// ForStatement represents `for i from a to b [step s] ... end for`.
type ForStatement struct {
	PosVal   Position
	Variable string
	Start    Expr
	End      Expr
	Step     Expr // nil when omitted
	Body     []Stmt
}

func (n *ForStatement) Pos() Position { return n.PosVal }
func (n *ForStatement) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *ForStatement) stmt() {}

// ForeachStatement represents `foreach (k, v) in expr ... end foreach`.
type ForeachStatement struct {
	PosVal    Position
	Variables []string
	Iterable  Expr
	Body      []Stmt
}

func (n *ForeachStatement) Pos() Position { return n.PosVal }
func (n *ForeachStatement) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *ForeachStatement) stmt() {}

// GenerateStatement represents `generate i from a to b [by s] ... stop`.
type GenerateStatement struct {
	PosVal   Position
	Variable string
	Start    Expr
	End      Expr
	By       Expr // nil when omitted
	Body     []Stmt
}

func (n *GenerateStatement) Pos() Position { return n.PosVal }
func (n *GenerateStatement) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *GenerateStatement) stmt() {}

// ShowStatement represents `show expr`.
type ShowStatement struct {
	PosVal Position
	Expr   Expr
}

func (n *ShowStatement) Pos() Position { return n.PosVal }
func (n *ShowStatement) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *ShowStatement) stmt() {}

// ShowLnStatement represents `showline()`.
type ShowLnStatement struct {
	PosVal Position
}

func (n *ShowLnStatement) Pos() Position { return n.PosVal }
func (n *ShowLnStatement) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *ShowLnStatement) stmt() {}

// RepeatStatement represents `repeat while(cond) ... end repeat`.
type RepeatStatement struct {
	PosVal    Position
	Condition Expr
	Body      []Stmt
}

func (n *RepeatStatement) Pos() Position { return n.PosVal }
func (n *RepeatStatement) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *RepeatStatement) stmt() {}

// RepeatTimeStatement represents `repeat n times ... end repeat`.
type RepeatTimeStatement struct {
	PosVal Position
	Times  Expr
	Body   []Stmt
}

func (n *RepeatTimeStatement) Pos() Position { return n.PosVal }
func (n *RepeatTimeStatement) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *RepeatTimeStatement) stmt() {}

// IterateStatement represents `iterate x over(expr) ... end iterate`.
type IterateStatement struct {
	PosVal   Position
	Variable string
	Iterable Expr
	Body     []Stmt
}

func (n *IterateStatement) Pos() Position { return n.PosVal }
func (n *IterateStatement) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *IterateStatement) stmt() {}

// WhenClause is one `when value: ...` arm of a choose statement.
type WhenClause struct {
	Value Expr
	Body  []Stmt
}

// ChooseStatement represents choose/when/otherwise/end choose. Otherwise is
// nil when there is no otherwise arm.
type ChooseStatement struct {
	PosVal    Position
	Subject   Expr
	Whens     []WhenClause
	Otherwise []Stmt
}

func (n *ChooseStatement) Pos() Position { return n.PosVal }
func (n *ChooseStatement) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *ChooseStatement) stmt() {}

// FunctionDecl represents `function name(params) ... end function`.
// Params holds *Identifier for plain parameters and *AssignStatement for
// parameters with a default value.
type FunctionDecl struct {
	PosVal Position
	Name   string
	Params []Stmt
	Body   []Stmt
}

func (n *FunctionDecl) Pos() Position { return n.PosVal }
func (n *FunctionDecl) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *FunctionDecl) stmt() {}

// ReturnStatement represents `return [expr]`.
type ReturnStatement struct {
	PosVal Position
	Value  Expr // nil for a bare return
}

func (n *ReturnStatement) Pos() Position { return n.PosVal }
func (n *ReturnStatement) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *ReturnStatement) stmt() {}

// ClassDecl represents `class Name [inherit Base] ... end class`.
type ClassDecl struct {
	PosVal  Position
	Name    string
	Inherit string // empty when there is no base class
	Members []Member
}

func (n *ClassDecl) Pos() Position { return n.PosVal }
func (n *ClassDecl) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *ClassDecl) stmt() {}

// ImportStatement represents `import a, b.c`.
type ImportStatement struct {
	PosVal  Position
	Modules []string
}

func (n *ImportStatement) Pos() Position { return n.PosVal }
func (n *ImportStatement) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *ImportStatement) stmt() {}

// FromImportStatement represents `from module import a, b`.
type FromImportStatement struct {
	PosVal Position
	Module string
	Names  []string
}

func (n *FromImportStatement) Pos() Position { return n.PosVal }
func (n *FromImportStatement) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *FromImportStatement) stmt() {}

// RaiseException represents `raise error([expr])`.
type RaiseException struct {
	PosVal Position
	Error  Expr // nil for `raise error()`
}

func (n *RaiseException) Pos() Position { return n.PosVal }
func (n *RaiseException) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *RaiseException) stmt() {}

// TryCapture represents `try ... capture(err) ... stop`.
type TryCapture struct {
	PosVal     Position
	Body       []Stmt
	CaptureVar string
	Capture    []Stmt
}

func (n *TryCapture) Pos() Position { return n.PosVal }
func (n *TryCapture) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *TryCapture) stmt() {}

// SkipStatement represents `skip`.
type SkipStatement struct {
	PosVal Position
}

func (n *SkipStatement) Pos() Position { return n.PosVal }
func (n *SkipStatement) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *SkipStatement) stmt() {}

// ExitStatement represents `exit`.
type ExitStatement struct {
	PosVal Position
}

func (n *ExitStatement) Pos() Position { return n.PosVal }
func (n *ExitStatement) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *ExitStatement) stmt() {}

// AwaitStatement represents `await expr`.
type AwaitStatement struct {
	PosVal Position
	Expr   Expr
}

func (n *AwaitStatement) Pos() Position { return n.PosVal }
func (n *AwaitStatement) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *AwaitStatement) stmt() {}

// ParentMethodAccess represents `parent.method(args)`.
type ParentMethodAccess struct {
	PosVal Position
	Method string
	Args   []Expr
}

func (n *ParentMethodAccess) Pos() Position { return n.PosVal }
func (n *ParentMethodAccess) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *ParentMethodAccess) stmt() {}

// ParentAccess represents `parent.field`.
type ParentAccess struct {
	PosVal Position
	Field  Expr
}

func (n *ParentAccess) Pos() Position { return n.PosVal }
func (n *ParentAccess) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *ParentAccess) stmt() {}

// ParentConstructorCall represents `parent.init(args)`.
type ParentConstructorCall struct {
	PosVal Position
	Args   []Expr
}

func (n *ParentConstructorCall) Pos() Position { return n.PosVal }
func (n *ParentConstructorCall) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *ParentConstructorCall) stmt() {}

// Callback represents `callback name(params)`, a closure handed to native
// code such as GUI event handlers.
type Callback struct {
	PosVal Position
	Name   string
	Params []Stmt
}

func (n *Callback) Pos() Position { return n.PosVal }
func (n *Callback) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *Callback) stmt() {}

// EOF marks the end of input.
type EOF struct {
	PosVal Position
}

func (n *EOF) Pos() Position { return n.PosVal }
func (n *EOF) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *EOF) stmt() {}

// ---------------------------------------------------------------------------
// Class members
// ---------------------------------------------------------------------------

// FieldDecl is a field introduced by declare, set or assignment.
type FieldDecl struct {
	PosVal   Position
	Modifier Modifier
	Decl     Stmt // Declaration, SetStatement or AssignStatement
}

func (n *FieldDecl) Pos() Position { return n.PosVal }
func (n *FieldDecl) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *FieldDecl) member() {}

// MethodDecl represents `method name(params) ... end method`.
type MethodDecl struct {
	PosVal   Position
	Modifier Modifier
	Name     string
	Params   []Stmt
	Body     []Stmt
}

func (n *MethodDecl) Pos() Position { return n.PosVal }
func (n *MethodDecl) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *MethodDecl) member() {}

// ConstructorDecl represents `init(params) ... end init`.
type ConstructorDecl struct {
	PosVal   Position
	Modifier Modifier
	Params   []Stmt
	Body     []Stmt
}

func (n *ConstructorDecl) Pos() Position { return n.PosVal }
func (n *ConstructorDecl) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *ConstructorDecl) member() {}

// ---------------------------------------------------------------------------
// Expression nodes
// ---------------------------------------------------------------------------

// Ternary represents `if cond then a else b` in expression position.
type Ternary struct {
	PosVal    Position
	Condition Expr
	Then      Expr
	Else      Expr
}

func (n *Ternary) Pos() Position { return n.PosVal }
func (n *Ternary) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *Ternary) stmt() {}
func (n *Ternary) expr() {}

// BinaryOperation represents `left op right`.
type BinaryOperation struct {
	PosVal   Position
	Left     Expr
	Operator TokenType
	Right    Expr
}

func (n *BinaryOperation) Pos() Position { return n.PosVal }
func (n *BinaryOperation) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *BinaryOperation) stmt() {}
func (n *BinaryOperation) expr() {}

// UnaryOperation represents `not expr`.
type UnaryOperation struct {
	PosVal   Position
	Operator TokenType
	Operand  Expr
}

func (n *UnaryOperation) Pos() Position { return n.PosVal }
func (n *UnaryOperation) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *UnaryOperation) stmt() {}
func (n *UnaryOperation) expr() {}

// FunctionCall represents `name(args)`. input(...) in expression position
// is a FunctionCall named "input".
type FunctionCall struct {
	PosVal Position
	Name   string
	Args   []Expr
}

func (n *FunctionCall) Pos() Position { return n.PosVal }
func (n *FunctionCall) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *FunctionCall) stmt() {}
func (n *FunctionCall) expr() {}

// MethodCall represents `object.method(args)`.
type MethodCall struct {
	PosVal Position
	Object Expr
	Method string
	Args   []Expr
}

func (n *MethodCall) Pos() Position { return n.PosVal }
func (n *MethodCall) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *MethodCall) stmt() {}
func (n *MethodCall) expr() {}

// FieldAccess represents `object.field`.
type FieldAccess struct {
	PosVal Position
	Object Expr
	Field  Expr // Identifier, ArrayAccess or DictionaryAccess
}

func (n *FieldAccess) Pos() Position { return n.PosVal }
func (n *FieldAccess) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *FieldAccess) stmt() {}
func (n *FieldAccess) expr() {}

// ArrayElement represents an array literal `[a, b]`.
type ArrayElement struct {
	PosVal   Position
	Elements []Expr
}

func (n *ArrayElement) Pos() Position { return n.PosVal }
func (n *ArrayElement) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *ArrayElement) stmt() {}
func (n *ArrayElement) expr() {}

// ArrayAccess represents `name[i][j]` where no index is a string literal.
type ArrayAccess struct {
	PosVal  Position
	Name    string
	Indices []Expr
}

func (n *ArrayAccess) Pos() Position { return n.PosVal }
func (n *ArrayAccess) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *ArrayAccess) stmt() {}
func (n *ArrayAccess) expr() {}

// DictPair is one `"key": value` entry of a dictionary literal.
type DictPair struct {
	Key   *StringLiteral
	Value Expr
}

// Dictionary represents a dictionary literal `{"k": v}`.
type Dictionary struct {
	PosVal Position
	Pairs  []DictPair
}

func (n *Dictionary) Pos() Position { return n.PosVal }
func (n *Dictionary) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *Dictionary) stmt() {}
func (n *Dictionary) expr() {}

// DictionaryAccess represents `name["a"]["b"]`.
type DictionaryAccess struct {
	PosVal Position
	Name   string
	Keys   []Expr
}

func (n *DictionaryAccess) Pos() Position { return n.PosVal }
func (n *DictionaryAccess) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *DictionaryAccess) stmt() {}
func (n *DictionaryAccess) expr() {}

// ClassInstantiation represents `new pkg.Class(args)`.
type ClassInstantiation struct {
	PosVal Position
	Class  Expr // Identifier or FieldAccess chain
	Args   []Expr
}

func (n *ClassInstantiation) Pos() Position { return n.PosVal }
func (n *ClassInstantiation) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *ClassInstantiation) stmt() {}
func (n *ClassInstantiation) expr() {}

// ByteArray represents `bytearray(a, b, c)`. Absent arguments are nil.
type ByteArray struct {
	PosVal Position
	Args   [3]Expr
}

func (n *ByteArray) Pos() Position { return n.PosVal }
func (n *ByteArray) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *ByteArray) stmt() {}
func (n *ByteArray) expr() {}

// NumberLiteral represents a numeric literal.
type NumberLiteral struct {
	PosVal Position
	Value  float64
}

func (n *NumberLiteral) Pos() Position { return n.PosVal }
func (n *NumberLiteral) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *NumberLiteral) stmt() {}
func (n *NumberLiteral) expr() {}

// StringLiteral represents a string literal.
type StringLiteral struct {
	PosVal Position
	Value  string
}

func (n *StringLiteral) Pos() Position { return n.PosVal }
func (n *StringLiteral) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *StringLiteral) stmt() {}
func (n *StringLiteral) expr() {}

// HexLiteral represents `0x1A`. Value keeps the raw text.
type HexLiteral struct {
	PosVal Position
	Value  string
}

func (n *HexLiteral) Pos() Position { return n.PosVal }
func (n *HexLiteral) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *HexLiteral) stmt() {}
func (n *HexLiteral) expr() {}

// Int returns the literal's integer value.
func (n *HexLiteral) Int() (int64, error) {
	return strconv.ParseInt(n.Value[2:], 16, 64)
}

// BytesLiteral represents `0b1010`. Value keeps the raw text.
type BytesLiteral struct {
	PosVal Position
	Value  string
}

func (n *BytesLiteral) Pos() Position { return n.PosVal }
func (n *BytesLiteral) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *BytesLiteral) stmt() {}
func (n *BytesLiteral) expr() {}

// Int returns the literal's integer value.
func (n *BytesLiteral) Int() (int64, error) {
	return strconv.ParseInt(n.Value[2:], 2, 64)
}

// ScientificLiteral represents a literal in scientific notation.
type ScientificLiteral struct {
	PosVal Position
	Value  float64
}

func (n *ScientificLiteral) Pos() Position { return n.PosVal }
func (n *ScientificLiteral) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *ScientificLiteral) stmt() {}
func (n *ScientificLiteral) expr() {}

// Identifier represents a variable reference.
type Identifier struct {
	PosVal Position
	Name   string
}

func (n *Identifier) Pos() Position { return n.PosVal }
func (n *Identifier) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *Identifier) stmt() {}
func (n *Identifier) expr() {}

// TrueLiteral represents `true`.
type TrueLiteral struct {
	PosVal Position
}

func (n *TrueLiteral) Pos() Position { return n.PosVal }
func (n *TrueLiteral) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *TrueLiteral) stmt() {}
func (n *TrueLiteral) expr() {}

// FalseLiteral represents `false`.
type FalseLiteral struct {
	PosVal Position
}

func (n *FalseLiteral) Pos() Position { return n.PosVal }
func (n *FalseLiteral) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *FalseLiteral) stmt() {}
func (n *FalseLiteral) expr() {}

// NullLiteral represents `null`.
type NullLiteral struct {
	PosVal Position
}

func (n *NullLiteral) Pos() Position { return n.PosVal }
func (n *NullLiteral) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *NullLiteral) stmt() {}
func (n *NullLiteral) expr() {}

// This represents the `this` receiver.
type This struct {
	PosVal Position
}

func (n *This) Pos() Position { return n.PosVal }
func (n *This) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
func (n *This) stmt() {}
func (n *This) expr() {}

// ---------------------------------------------------------------------------
// Top-level structure
// ---------------------------------------------------------------------------

// Block is the root of a parsed program.
type Block struct {
	PosVal     Position
	Statements []Stmt
}

func (n *Block) Pos() Position { return n.PosVal }
func (n *Block) withPos(p Position) Node {
	c := *n
	c.PosVal = p
	return &c
}
