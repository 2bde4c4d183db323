package compiler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
)

func parseProgram(t *testing.T, input string) *Block {
	t.Helper()
	block, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q): %v", input, err)
	}
	return block
}

func parseSingle(t *testing.T, input string) Stmt {
	t.Helper()
	block := parseProgram(t, input)
	if len(block.Statements) != 1 {
		t.Fatalf("Parse(%q): got %d statements, want 1", input, len(block.Statements))
	}
	return block.Statements[0]
}

// sexpr renders an expression tree compactly for precedence checks.
func sexpr(e Expr) string {
	switch n := e.(type) {
	case *NumberLiteral:
		return strconv.FormatFloat(n.Value, 'g', -1, 64)
	case *Identifier:
		return n.Name
	case *BinaryOperation:
		return fmt.Sprintf("(%s %s %s)", n.Operator, sexpr(n.Left), sexpr(n.Right))
	case *UnaryOperation:
		return fmt.Sprintf("(%s %s)", n.Operator, sexpr(n.Operand))
	}
	return NodeKind(e)
}

func TestParserEndToEnd(t *testing.T) {
	input := "declare x\nset x to 5\nif x > 3 then\nshow x\nend if"
	block := parseProgram(t, input)

	if len(block.Statements) != 3 {
		t.Fatalf("got %d statements, want 3", len(block.Statements))
	}

	decl, ok := block.Statements[0].(*Declaration)
	if !ok {
		t.Fatalf("stmt[0] = %T, want *Declaration", block.Statements[0])
	}
	if len(decl.Names) != 1 || decl.Names[0].(*Identifier).Name != "x" {
		t.Errorf("declaration names = %v", decl.Names)
	}

	set, ok := block.Statements[1].(*SetStatement)
	if !ok {
		t.Fatalf("stmt[1] = %T, want *SetStatement", block.Statements[1])
	}
	if set.Value.(*NumberLiteral).Value != 5 {
		t.Errorf("set value = %v, want 5", set.Value)
	}

	ifStmt, ok := block.Statements[2].(*IfStatement)
	if !ok {
		t.Fatalf("stmt[2] = %T, want *IfStatement", block.Statements[2])
	}
	if got := sexpr(ifStmt.Condition); got != "(> x 3)" {
		t.Errorf("condition = %s, want (> x 3)", got)
	}
	if len(ifStmt.Then) != 1 {
		t.Fatalf("then body has %d statements, want 1", len(ifStmt.Then))
	}
	if _, ok := ifStmt.Then[0].(*ShowStatement); !ok {
		t.Errorf("then[0] = %T, want *ShowStatement", ifStmt.Then[0])
	}
	if len(ifStmt.Else) != 0 {
		t.Errorf("else body = %v, want empty", ifStmt.Else)
	}
	if len(ifStmt.ElseIfs) != 0 {
		t.Errorf("elseif clauses = %v, want none", ifStmt.ElseIfs)
	}

	wantPos := []Position{{1, 0}, {2, 0}, {3, 0}}
	for i, want := range wantPos {
		if got := block.Statements[i].Pos(); got != want {
			t.Errorf("stmt[%d] position = %v, want %v", i, got, want)
		}
	}
	if got := ifStmt.Then[0].Pos(); got != (Position{4, 0}) {
		t.Errorf("show position = %v, want 4:0", got)
	}
}

func TestParserPrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "(+ 1 (* 2 3))"},
		{"1 or 2 and 3", "(or 1 (and 2 3))"},
		{"(1 + 2) * 3", "(* (+ 1 2) 3)"},
		{"1 - 2 - 3", "(- (- 1 2) 3)"},
		{"2 ^ 3 ^ 2", "(^ (^ 2 3) 2)"},
		{"a + b * c ^ 2", "(+ a (* b (^ c 2)))"},
		{"a < b and c >= d", "(and (< a b) (>= c d))"},
		{"a is not b or c is in d", "(or (is not a b) (is in c d))"},
		{"a mod 2 == 0", "(== (mod a 2) 0)"},
		{"x in items", "(in x items)"},
		{"not a and b", "(not (and a b))"},
		{"!done", "(not done)"},
	}

	for _, tc := range tests {
		expr, err := ParseExpression(tc.input)
		if err != nil {
			t.Errorf("ParseExpression(%q): %v", tc.input, err)
			continue
		}
		if got := sexpr(expr); got != tc.want {
			t.Errorf("ParseExpression(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestParserBinaryPosition(t *testing.T) {
	expr, err := ParseExpression("1 + 2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := expr.Pos(); got != (Position{1, 5}) {
		t.Errorf("position = %v, want the EOF token at 1:5", got)
	}

	block := parseProgram(t, "x + 1\nshow x")
	if got := block.Statements[0].Pos(); got != (Position{2, 0}) {
		t.Errorf("position = %v, want the following show at 2:0", got)
	}
}

func TestParserLiterals(t *testing.T) {
	tests := []struct {
		input string
		opts  []Option
		check func(Expr) bool
		desc  string
	}{
		{"42", nil, func(e Expr) bool { return e.(*NumberLiteral).Value == 42 }, "integer"},
		{"3.14", nil, func(e Expr) bool { return e.(*NumberLiteral).Value == 3.14 }, "float"},
		{"-7", nil, func(e Expr) bool { return e.(*NumberLiteral).Value == -7 }, "negative"},
		{`'hello\nworld'`, nil, func(e Expr) bool { return e.(*StringLiteral).Value == "hello\nworld" }, "string"},
		{"0x1A", nil, func(e Expr) bool {
			v, err := e.(*HexLiteral).Int()
			return err == nil && v == 26
		}, "hex"},
		{"0b101", nil, func(e Expr) bool {
			v, err := e.(*BytesLiteral).Int()
			return err == nil && v == 5
		}, "binary"},
		{"0x1A", []Option{WithLiteralMode(LiteralCompat)}, func(e Expr) bool { return e.(*NumberLiteral).Value == 0 }, "compat hex"},
		{"true", nil, func(e Expr) bool { _, ok := e.(*TrueLiteral); return ok }, "true"},
		{"false", nil, func(e Expr) bool { _, ok := e.(*FalseLiteral); return ok }, "false"},
		{"null", nil, func(e Expr) bool { _, ok := e.(*NullLiteral); return ok }, "null"},
		{"this", nil, func(e Expr) bool { _, ok := e.(*This); return ok }, "this"},
	}

	for _, tc := range tests {
		expr, err := ParseExpression(tc.input, tc.opts...)
		if err != nil {
			t.Errorf("%s: parse error: %v", tc.desc, err)
			continue
		}
		if !tc.check(expr) {
			t.Errorf("%s: check failed for %q (got %T)", tc.desc, tc.input, expr)
		}
	}
}

func TestParserDisambiguation(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"set x to 5", "SetStatement"},
		{"x to 5", "AssignStatement"},
		{"x[0] to 5", "AssignStatement"},
		{"x[i[0]][1] to 5", "AssignStatement"},
		{`x["k"] to 5`, "AssignStatement"},
		{"x + 1", "BinaryOperation"},
		{"x[0] + 1", "BinaryOperation"},
		{"x[0]", "ArrayAccess"},
		{`x["k"]`, "DictionaryAccess"},
		{"x", "Identifier"},
		{"f(1, 2)", "FunctionCall"},
		{"obj.run(1)", "MethodCall"},
		{"obj.size", "FieldAccess"},
	}

	for _, tc := range tests {
		stmt := parseSingle(t, tc.input)
		if got := NodeKind(stmt); got != tc.want {
			t.Errorf("Parse(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestParserAssignmentTargets(t *testing.T) {
	assign := parseSingle(t, "x[i[0]][1] to 5").(*AssignStatement)
	access, ok := assign.Target.(*ArrayAccess)
	if !ok {
		t.Fatalf("target = %T, want *ArrayAccess", assign.Target)
	}
	if access.Name != "x" || len(access.Indices) != 2 {
		t.Fatalf("target = %s with %d indices", access.Name, len(access.Indices))
	}
	if inner, ok := access.Indices[0].(*ArrayAccess); !ok || inner.Name != "i" {
		t.Errorf("first index = %#v, want i[0]", access.Indices[0])
	}

	dict := parseSingle(t, `config["a"]["b"] to 1`).(*AssignStatement)
	keys := dict.Target.(*DictionaryAccess).Keys
	if len(keys) != 2 || keys[1].(*StringLiteral).Value != "b" {
		t.Errorf("dictionary keys = %v", keys)
	}
}

func TestParserMixedIndex(t *testing.T) {
	inputs := []string{
		`x["k"][0]`,
		`x[0]["k"] to 1`,
		`show x["a"][1]`,
		`declare x["k"][0]`,
	}

	for _, input := range inputs {
		_, err := Parse(input)
		if err == nil {
			t.Errorf("Parse(%q): expected error", input)
			continue
		}
		if !strings.Contains(err.Error(), "mixed dictionary and array access") {
			t.Errorf("Parse(%q): error = %v", input, err)
		}
	}
}

func TestParserFailFast(t *testing.T) {
	block, err := Parse("if x then show x")
	if err == nil {
		t.Fatal("expected error for missing end if")
	}
	if block != nil {
		t.Errorf("got partial tree %v, want nil", block)
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error %T is not a *ParseError", err)
	}
	if perr.Got != TokenEOF {
		t.Errorf("offending token = %v, want EOF", perr.Got)
	}
	if !strings.Contains(perr.Error(), "expected end if") {
		t.Errorf("error = %q", perr.Error())
	}
	if perr.Pos != (Position{1, 16}) {
		t.Errorf("error position = %v, want 1:16", perr.Pos)
	}
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"set x 5", "expected to"},
		{"for i from 1 to 3 show i", "expected end for"},
		{"show", "expected expression"},
		{"show {1: 2}", "expected string key"},
		{`show {"a": 1,}`, "expected string key"},
		{"5", "unexpected token NUMBER"},
		{"new Point(1, 2)", "unexpected token"},
		{"(x)", "unexpected token"},
		{"show x-1", "unexpected token NUMBER"},
		{"class A x end class", `unexpected identifier "x" in class body`},
		{"class A show 1 end class", "in class body"},
		{"parent x", "expected '.' after 'parent'"},
		{"else", "unexpected else"},
		{"end function", "unexpected token end function"},
		{"function f(1) end function", "expected identifier in parameter list"},
		{"show bytearray(1, 2, 3, 4)", "expected ), found NUMBER"},
		{"this.x + 1 to 2", "cannot assign to BinaryOperation"},
		{"x.1", "expected identifier after '.'"},
		{"show new 5()", "expected class name"},
		{"try show 1", "expected capture"},
		{"try show 1 stop", "unexpected token stop"},
	}

	for _, tc := range tests {
		_, err := Parse(tc.input)
		if err == nil {
			t.Errorf("Parse(%q): expected error", tc.input)
			continue
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("Parse(%q): error %T is not a *ParseError", tc.input, err)
			continue
		}
		if !strings.Contains(err.Error(), tc.message) {
			t.Errorf("Parse(%q): error = %q, want mention of %q", tc.input, err.Error(), tc.message)
		}
	}
}

func TestParserLexErrorPropagates(t *testing.T) {
	_, err := Parse("x = 1")
	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("error = %v (%T), want *LexError", err, err)
	}
	var positioned PositionedError
	if !errors.As(err, &positioned) || positioned.Stage() != StageLexer {
		t.Errorf("error does not report the lexer stage")
	}
}

func TestParserIfElseChain(t *testing.T) {
	input := `if a then
show 1
else if b then
show 2
else if c then
show 3
else
show 4
end if`
	stmt := parseSingle(t, input).(*IfStatement)
	if len(stmt.ElseIfs) != 2 {
		t.Fatalf("got %d elseif clauses, want 2", len(stmt.ElseIfs))
	}
	if stmt.ElseIfs[1].Condition.(*Identifier).Name != "c" {
		t.Errorf("second elseif condition = %v", stmt.ElseIfs[1].Condition)
	}
	if len(stmt.Else) != 1 {
		t.Errorf("else body has %d statements, want 1", len(stmt.Else))
	}
}

func TestParserLoops(t *testing.T) {
	forStmt := parseSingle(t, "for i from 1 to 10 step 2\nshow i\nend for").(*ForStatement)
	if forStmt.Variable != "i" || forStmt.Step == nil || len(forStmt.Body) != 1 {
		t.Errorf("for = %+v", forStmt)
	}
	if noStep := parseSingle(t, "for i from 1 to 3\nend for").(*ForStatement); noStep.Step != nil {
		t.Errorf("step = %v, want nil", noStep.Step)
	}

	foreach := parseSingle(t, "foreach (k, v) in pairs\nshow k\nend foreach").(*ForeachStatement)
	if strings.Join(foreach.Variables, ",") != "k,v" {
		t.Errorf("foreach variables = %v", foreach.Variables)
	}
	simple := parseSingle(t, "foreach item in items\nend foreach").(*ForeachStatement)
	if len(simple.Variables) != 1 || simple.Iterable.(*Identifier).Name != "items" {
		t.Errorf("foreach = %+v", simple)
	}

	gen := parseSingle(t, "generate n from 0 to 4 by 2\nshow n\nstop").(*GenerateStatement)
	if gen.By.(*NumberLiteral).Value != 2 || len(gen.Body) != 1 {
		t.Errorf("generate = %+v", gen)
	}

	while := parseSingle(t, "repeat while (x < 3)\nx to x + 1\nend repeat").(*RepeatStatement)
	if got := sexpr(while.Condition); got != "(< x 3)" {
		t.Errorf("repeat condition = %s", got)
	}
	if _, ok := while.Body[0].(*AssignStatement); !ok {
		t.Errorf("repeat body[0] = %T", while.Body[0])
	}

	times := parseSingle(t, "repeat 3 times\nshowline()\nend repeat").(*RepeatTimeStatement)
	if times.Times.(*NumberLiteral).Value != 3 {
		t.Errorf("repeat times = %v", times.Times)
	}
	if _, ok := times.Body[0].(*ShowLnStatement); !ok {
		t.Errorf("repeat body[0] = %T", times.Body[0])
	}

	iter := parseSingle(t, "iterate item over (items)\nskip\nend iterate").(*IterateStatement)
	if iter.Variable != "item" {
		t.Errorf("iterate variable = %q", iter.Variable)
	}
	if _, ok := iter.Body[0].(*SkipStatement); !ok {
		t.Errorf("iterate body[0] = %T", iter.Body[0])
	}
}

func TestParserEmptyBodies(t *testing.T) {
	stmt := parseSingle(t, "for i from 1 to 3\nend for").(*ForStatement)
	if stmt.Body == nil || len(stmt.Body) != 0 {
		t.Errorf("body = %#v, want empty non-nil slice", stmt.Body)
	}
}

func TestParserChoose(t *testing.T) {
	input := `choose x
when 1:
show "one"
when 2:
show "two"
otherwise:
show "many"
end choose`
	choose := parseSingle(t, input).(*ChooseStatement)
	if len(choose.Whens) != 2 {
		t.Fatalf("got %d when clauses, want 2", len(choose.Whens))
	}
	if choose.Whens[1].Value.(*NumberLiteral).Value != 2 {
		t.Errorf("second when = %v", choose.Whens[1].Value)
	}
	if len(choose.Otherwise) != 1 {
		t.Errorf("otherwise has %d statements, want 1", len(choose.Otherwise))
	}

	bare := parseSingle(t, "choose x\nwhen 1:\nskip\nend choose").(*ChooseStatement)
	if bare.Otherwise != nil {
		t.Errorf("otherwise = %v, want nil", bare.Otherwise)
	}
}

func TestParserFunction(t *testing.T) {
	fn := parseSingle(t, "function add(a, b to 2)\nreturn a + b\nend function").(*FunctionDecl)
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("function = %s with %d params", fn.Name, len(fn.Params))
	}
	if fn.Params[0].(*Identifier).Name != "a" {
		t.Errorf("param[0] = %v", fn.Params[0])
	}
	def, ok := fn.Params[1].(*AssignStatement)
	if !ok {
		t.Fatalf("param[1] = %T, want *AssignStatement", fn.Params[1])
	}
	if def.Pos() != (Position{1, 16}) {
		t.Errorf("default param position = %v, want 1:16", def.Pos())
	}
	ret := fn.Body[0].(*ReturnStatement)
	if got := sexpr(ret.Value); got != "(+ a b)" {
		t.Errorf("return value = %s", got)
	}

	bare := parseSingle(t, "function f()\nreturn\nend function").(*FunctionDecl)
	if len(bare.Params) != 0 {
		t.Errorf("params = %v, want none", bare.Params)
	}
	if ret := bare.Body[0].(*ReturnStatement); ret.Value != nil {
		t.Errorf("bare return value = %v, want nil", ret.Value)
	}
}

func TestParserClass(t *testing.T) {
	input := `class Dog inherit Animal
public declare name
secret set age to 3
sound to "woof"
init(n)
parent.init(n)
this.name to n
end init
method speak()
show this.sound
return this.name
end method
end class`
	class := parseSingle(t, input).(*ClassDecl)
	if class.Name != "Dog" || class.Inherit != "Animal" {
		t.Errorf("class = %s inherit %s", class.Name, class.Inherit)
	}
	if len(class.Members) != 5 {
		t.Fatalf("got %d members, want 5", len(class.Members))
	}

	pub := class.Members[0].(*FieldDecl)
	if pub.Modifier != ModifierPublic {
		t.Errorf("member[0] modifier = %v", pub.Modifier)
	}
	if _, ok := pub.Decl.(*Declaration); !ok {
		t.Errorf("member[0] decl = %T", pub.Decl)
	}
	if pub.Pos() != (Position{3, 0}) {
		t.Errorf("member[0] position = %v, want the next member at 3:0", pub.Pos())
	}

	secret := class.Members[1].(*FieldDecl)
	if secret.Modifier != ModifierSecret {
		t.Errorf("member[1] modifier = %v", secret.Modifier)
	}
	if _, ok := secret.Decl.(*SetStatement); !ok {
		t.Errorf("member[1] decl = %T", secret.Decl)
	}
	if _, ok := class.Members[2].(*FieldDecl).Decl.(*AssignStatement); !ok {
		t.Errorf("member[2] decl = %T", class.Members[2].(*FieldDecl).Decl)
	}

	ctor := class.Members[3].(*ConstructorDecl)
	if len(ctor.Params) != 1 || len(ctor.Body) != 2 {
		t.Fatalf("constructor = %d params, %d statements", len(ctor.Params), len(ctor.Body))
	}
	super := ctor.Body[0].(*ParentConstructorCall)
	if len(super.Args) != 1 || super.Pos() != (Position{6, 7}) {
		t.Errorf("parent.init = %d args at %v", len(super.Args), super.Pos())
	}
	assign := ctor.Body[1].(*AssignStatement)
	field := assign.Target.(*FieldAccess)
	if _, ok := field.Object.(*This); !ok {
		t.Errorf("field object = %T, want *This", field.Object)
	}
	if field.Field.(*Identifier).Name != "name" {
		t.Errorf("field = %v", field.Field)
	}

	method := class.Members[4].(*MethodDecl)
	if method.Name != "speak" || len(method.Body) != 2 {
		t.Errorf("method = %s with %d statements", method.Name, len(method.Body))
	}
	if method.Pos() != (Position{13, 0}) {
		t.Errorf("method position = %v, want end class at 13:0", method.Pos())
	}
}

func TestParserParent(t *testing.T) {
	call := parseSingle(t, "parent.speak(1, 2)").(*ParentMethodAccess)
	if call.Method != "speak" || len(call.Args) != 2 {
		t.Errorf("parent method = %s(%d)", call.Method, len(call.Args))
	}

	field := parseSingle(t, "parent.name").(*ParentAccess)
	if field.Field.(*Identifier).Name != "name" {
		t.Errorf("parent field = %v", field.Field)
	}

	indexed := parseSingle(t, "parent.items[0]").(*ParentAccess)
	if _, ok := indexed.Field.(*ArrayAccess); !ok {
		t.Errorf("parent field = %T, want *ArrayAccess", indexed.Field)
	}
}

func TestParserImports(t *testing.T) {
	imp := parseSingle(t, `import "math", io, net.http`).(*ImportStatement)
	if got := strings.Join(imp.Modules, " "); got != "math io net.http" {
		t.Errorf("modules = %q", got)
	}

	from := parseSingle(t, "from utils import f, g").(*FromImportStatement)
	if from.Module != "utils" || strings.Join(from.Names, ",") != "f,g" {
		t.Errorf("from import = %s %v", from.Module, from.Names)
	}
}

func TestParserTryRaise(t *testing.T) {
	input := `try
raise error("bad")
capture (e)
show e
stop`
	try := parseSingle(t, input).(*TryCapture)
	if try.CaptureVar != "e" || len(try.Body) != 1 || len(try.Capture) != 1 {
		t.Fatalf("try = %+v", try)
	}
	raise := try.Body[0].(*RaiseException)
	if raise.Error.(*StringLiteral).Value != "bad" {
		t.Errorf("raised = %v", raise.Error)
	}

	empty := parseSingle(t, "raise error()").(*RaiseException)
	if empty.Error != nil {
		t.Errorf("raised = %v, want nil", empty.Error)
	}
}

func TestParserInput(t *testing.T) {
	in := parseSingle(t, `input name to input("Name?")`).(*InputStatement)
	if in.Target.(*Identifier).Name != "name" || in.Prompt.(*StringLiteral).Value != "Name?" {
		t.Errorf("input = %+v", in)
	}

	assign := parseSingle(t, `name to input("Name?")`).(*AssignStatement)
	call := assign.Value.(*FunctionCall)
	if call.Name != "input" || len(call.Args) != 1 {
		t.Errorf("input call = %s(%d)", call.Name, len(call.Args))
	}

	if _, ok := parseSingle(t, `input("x")`).(*FunctionCall); !ok {
		t.Error("bare input(...) is not a FunctionCall")
	}
}

func TestParserExpressions(t *testing.T) {
	arr := mustExpr(t, "[1, 2, 3]").(*ArrayElement)
	if len(arr.Elements) != 3 {
		t.Errorf("array has %d elements", len(arr.Elements))
	}
	if empty := mustExpr(t, "[]").(*ArrayElement); len(empty.Elements) != 0 {
		t.Errorf("empty array has %d elements", len(empty.Elements))
	}

	dict := mustExpr(t, `{"a": 1, "b": [2]}`).(*Dictionary)
	if len(dict.Pairs) != 2 || dict.Pairs[0].Key.Value != "a" {
		t.Errorf("dictionary = %+v", dict.Pairs)
	}

	inst := mustExpr(t, "new shapes.Circle(1)").(*ClassInstantiation)
	path := inst.Class.(*FieldAccess)
	if path.Object.(*Identifier).Name != "shapes" || path.Field.(*Identifier).Name != "Circle" {
		t.Errorf("class path = %+v", path)
	}
	if len(inst.Args) != 1 {
		t.Errorf("new args = %d", len(inst.Args))
	}

	ba := mustExpr(t, "bytearray(1, 2)").(*ByteArray)
	if ba.Args[0] == nil || ba.Args[1] == nil || ba.Args[2] != nil {
		t.Errorf("bytearray args = %v", ba.Args)
	}

	tern := mustExpr(t, "if a then 1 else 2").(*Ternary)
	if tern.Else.(*NumberLiteral).Value != 2 {
		t.Errorf("ternary else = %v", tern.Else)
	}
	chained := mustExpr(t, "if a then 1 else if b then 2 else 3").(*Ternary)
	if _, ok := chained.Else.(*Ternary); !ok {
		t.Errorf("chained ternary else = %T, want *Ternary", chained.Else)
	}

	call := mustExpr(t, "obj.items.count()").(*MethodCall)
	if call.Method != "count" {
		t.Errorf("method = %q", call.Method)
	}
	if _, ok := call.Object.(*FieldAccess); !ok {
		t.Errorf("method receiver = %T, want *FieldAccess", call.Object)
	}

	noArgs := mustExpr(t, "f()").(*FunctionCall)
	if noArgs.Args == nil || len(noArgs.Args) != 0 {
		t.Errorf("args = %#v, want empty", noArgs.Args)
	}

	thisCall := mustExpr(t, "this.greet(1).name").(*FieldAccess)
	if _, ok := thisCall.Object.(*MethodCall); !ok {
		t.Errorf("object = %T, want *MethodCall", thisCall.Object)
	}
}

func mustExpr(t *testing.T, input string) Expr {
	t.Helper()
	expr, err := ParseExpression(input)
	if err != nil {
		t.Fatalf("ParseExpression(%q): %v", input, err)
	}
	return expr
}

func TestParserSimpleStatements(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"skip", "SkipStatement"},
		{"exit", "ExitStatement"},
		{"await fetch()", "AwaitStatement"},
		{"showline()", "ShowLnStatement"},
		{"callback onClick(evt)", "Callback"},
		{"declare a, b[2]", "Declaration"},
		{"set p to new Point(1, 2)", "SetStatement"},
	}
	for _, tc := range tests {
		if got := NodeKind(parseSingle(t, tc.input)); got != tc.want {
			t.Errorf("Parse(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}

	decl := parseSingle(t, "declare a, b[2]").(*Declaration)
	if _, ok := decl.Names[1].(*ArrayAccess); !ok {
		t.Errorf("second name = %T, want *ArrayAccess", decl.Names[1])
	}
}

func TestParserIgnoresIndent(t *testing.T) {
	block := parseProgram(t, "if x then\n\tshow x\n\t\tshow\t1\nend if")
	stmt := block.Statements[0].(*IfStatement)
	if len(stmt.Then) != 2 {
		t.Errorf("then body has %d statements, want 2", len(stmt.Then))
	}
}

func TestParserEmptyProgram(t *testing.T) {
	for _, input := range []string{"", "   \n", "// only a comment"} {
		block := parseProgram(t, input)
		if block.Statements == nil || len(block.Statements) != 0 {
			t.Errorf("Parse(%q) = %#v, want empty block", input, block.Statements)
		}
	}
}

func TestParseExpressionTrailing(t *testing.T) {
	_, err := ParseExpression("1 2")
	if err == nil || !strings.Contains(err.Error(), "after expression") {
		t.Errorf("error = %v, want trailing token error", err)
	}
}

func TestParserSignFoldingInExpressions(t *testing.T) {
	for _, input := range []string{"x to 5-3", "show x-1"} {
		_, err := Parse(input)
		var perr *ParseError
		if !errors.As(err, &perr) || perr.Got != TokenNumber {
			t.Errorf("Parse(%q) error = %v, want unexpected NUMBER", input, err)
		}
	}

	p, err := NewParser("x to 5-3", WithSignFolding(false))
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	unfolded, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	assign := unfolded.Statements[0].(*AssignStatement)
	if got := sexpr(assign.Value); got != "(- 5 3)" {
		t.Errorf("value = %s, want (- 5 3)", got)
	}
}
