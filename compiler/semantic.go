package compiler

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Semantic Analyzer: advisory checks over a parsed tree
// ---------------------------------------------------------------------------

// Warning is a non-fatal finding about a parsed tree.
type Warning struct {
	Msg string
	Pos Position
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d, column %d: %s", w.Pos.Line, w.Pos.Column, w.Msg)
}

// SemanticAnalyzer looks for names that are never bound, unreachable code
// and redeclarations. Bindings are flow-insensitive: a name bound anywhere
// in a function body counts as bound throughout it.
type SemanticAnalyzer struct {
	warnings []Warning

	// Names that are always defined, such as host-provided globals
	knownGlobals map[string]bool

	scope  *scope
	warned map[string]bool
}

// scope is one function, method or class body.
type scope struct {
	names  map[string]bool
	funcs  map[string]bool
	parent *scope
}

// NewSemanticAnalyzer creates a new semantic analyzer.
func NewSemanticAnalyzer() *SemanticAnalyzer {
	return &SemanticAnalyzer{
		knownGlobals: make(map[string]bool),
		warned:       make(map[string]bool),
	}
}

// AddKnownGlobal marks name as always defined.
func (s *SemanticAnalyzer) AddKnownGlobal(name string) {
	s.knownGlobals[name] = true
}

// Warnings returns accumulated findings in the order they were found.
func (s *SemanticAnalyzer) Warnings() []Warning {
	return s.warnings
}

func (s *SemanticAnalyzer) warnAt(node Node, format string, args ...interface{}) {
	s.warnings = append(s.warnings, Warning{Msg: fmt.Sprintf(format, args...), Pos: node.Pos()})
}

func (s *SemanticAnalyzer) push() {
	s.scope = &scope{names: make(map[string]bool), funcs: make(map[string]bool), parent: s.scope}
}

func (s *SemanticAnalyzer) pop() {
	s.scope = s.scope.parent
}

func (s *SemanticAnalyzer) bind(name string) {
	if name != "" {
		s.scope.names[name] = true
	}
}

func (s *SemanticAnalyzer) defined(name string) bool {
	for sc := s.scope; sc != nil; sc = sc.parent {
		if sc.names[name] {
			return true
		}
	}
	return s.knownGlobals[name]
}

// AnalyzeProgram checks a whole program.
func (s *SemanticAnalyzer) AnalyzeProgram(tree *Block) {
	if tree == nil {
		return
	}
	s.push()
	s.bindBody(tree.Statements)
	s.analyzeBody(tree.Statements)
	s.pop()
}

// ---------------------------------------------------------------------------
// Binding pass
// ---------------------------------------------------------------------------

// bindBody records every name a statement list introduces, descending into
// nested blocks but not into function or class bodies.
func (s *SemanticAnalyzer) bindBody(stmts []Stmt) {
	for _, stmt := range stmts {
		s.bindStmt(stmt)
	}
}

func (s *SemanticAnalyzer) bindStmt(stmt Stmt) {
	switch st := stmt.(type) {
	case *Declaration:
		for _, name := range st.Names {
			s.bind(rootName(name))
		}
	case *SetStatement:
		s.bind(rootName(st.Target))
	case *AssignStatement:
		s.bind(rootName(st.Target))
	case *InputStatement:
		s.bind(rootName(st.Target))

	case *IfStatement:
		s.bindBody(st.Then)
		for _, c := range st.ElseIfs {
			s.bindBody(c.Body)
		}
		s.bindBody(st.Else)
	case *ForStatement:
		s.bind(st.Variable)
		s.bindBody(st.Body)
	case *GenerateStatement:
		s.bind(st.Variable)
		s.bindBody(st.Body)
	case *IterateStatement:
		s.bind(st.Variable)
		s.bindBody(st.Body)
	case *ForeachStatement:
		for _, v := range st.Variables {
			s.bind(v)
		}
		s.bindBody(st.Body)
	case *RepeatStatement:
		s.bindBody(st.Body)
	case *RepeatTimeStatement:
		s.bindBody(st.Body)
	case *ChooseStatement:
		for _, w := range st.Whens {
			s.bindBody(w.Body)
		}
		s.bindBody(st.Otherwise)
	case *TryCapture:
		s.bindBody(st.Body)
		s.bind(st.CaptureVar)
		s.bindBody(st.Capture)

	case *FunctionDecl:
		if s.scope.funcs[st.Name] {
			s.warnAt(st, "function %q redeclared", st.Name)
		}
		s.scope.funcs[st.Name] = true
		s.bind(st.Name)
	case *ClassDecl:
		s.bind(st.Name)
	case *Callback:
		s.bind(st.Name)

	case *ImportStatement:
		for _, m := range st.Modules {
			segs := strings.Split(m, ".")
			s.bind(segs[0])
			s.bind(segs[len(segs)-1])
		}
	case *FromImportStatement:
		for _, name := range st.Names {
			s.bind(name)
		}
	}
}

// rootName returns the variable an assignment target or declaration binds,
// or "" for member targets.
func rootName(e Expr) string {
	switch t := e.(type) {
	case *Identifier:
		return t.Name
	case *ArrayAccess:
		return t.Name
	case *DictionaryAccess:
		return t.Name
	}
	return ""
}

// ---------------------------------------------------------------------------
// Checking pass
// ---------------------------------------------------------------------------

func (s *SemanticAnalyzer) analyzeBody(stmts []Stmt) {
	for _, stmt := range stmts {
		s.analyzeStmt(stmt)
	}
	s.checkUnreachableCode(stmts)
}

func (s *SemanticAnalyzer) analyzeStmt(stmt Stmt) {
	switch st := stmt.(type) {
	case *Declaration:
		for _, name := range st.Names {
			s.analyzeTarget(name)
		}
	case *SetStatement:
		s.analyzeTarget(st.Target)
		s.analyzeExpr(st.Value)
	case *AssignStatement:
		s.analyzeTarget(st.Target)
		s.analyzeExpr(st.Value)
	case *InputStatement:
		s.analyzeTarget(st.Target)
		s.analyzeExpr(st.Prompt)

	case *IfStatement:
		s.analyzeExpr(st.Condition)
		s.analyzeBody(st.Then)
		for _, c := range st.ElseIfs {
			s.analyzeExpr(c.Condition)
			s.analyzeBody(c.Body)
		}
		s.analyzeBody(st.Else)
	case *ForStatement:
		s.analyzeExprs(st.Start, st.End, st.Step)
		s.analyzeBody(st.Body)
	case *GenerateStatement:
		s.analyzeExprs(st.Start, st.End, st.By)
		s.analyzeBody(st.Body)
	case *ForeachStatement:
		s.analyzeExpr(st.Iterable)
		s.analyzeBody(st.Body)
	case *IterateStatement:
		s.analyzeExpr(st.Iterable)
		s.analyzeBody(st.Body)
	case *RepeatStatement:
		s.analyzeExpr(st.Condition)
		s.analyzeBody(st.Body)
	case *RepeatTimeStatement:
		s.analyzeExpr(st.Times)
		s.analyzeBody(st.Body)
	case *ChooseStatement:
		s.analyzeExpr(st.Subject)
		for _, w := range st.Whens {
			s.analyzeExpr(w.Value)
			s.analyzeBody(w.Body)
		}
		s.analyzeBody(st.Otherwise)
	case *TryCapture:
		s.analyzeBody(st.Body)
		s.analyzeBody(st.Capture)

	case *ShowStatement:
		s.analyzeExpr(st.Expr)
	case *ReturnStatement:
		s.analyzeExpr(st.Value)
	case *RaiseException:
		s.analyzeExpr(st.Error)
	case *AwaitStatement:
		s.analyzeExpr(st.Expr)
	case *ParentMethodAccess:
		s.analyzeExprs(st.Args...)
	case *ParentConstructorCall:
		s.analyzeExprs(st.Args...)

	case *FunctionDecl:
		s.analyzeFunction(st.Params, st.Body)
	case *ClassDecl:
		s.analyzeClass(st)
	case *Callback:
		s.checkParams(st.Params)

	case Expr:
		s.analyzeExpr(st)
	}
}

// analyzeTarget checks the parts of an assignment target that are read.
func (s *SemanticAnalyzer) analyzeTarget(e Expr) {
	switch t := e.(type) {
	case *Identifier:
	case *ArrayAccess:
		s.analyzeExprs(t.Indices...)
	case *DictionaryAccess:
		s.analyzeExprs(t.Keys...)
	case *FieldAccess:
		s.analyzeExpr(t.Object)
	default:
		s.analyzeExpr(e)
	}
}

func (s *SemanticAnalyzer) analyzeExprs(list ...Expr) {
	for _, e := range list {
		s.analyzeExpr(e)
	}
}

func (s *SemanticAnalyzer) analyzeExpr(expr Expr) {
	switch e := expr.(type) {
	case *Identifier:
		s.checkVariableDefined(e, e.Name)
	case *ArrayAccess:
		s.checkVariableDefined(e, e.Name)
		s.analyzeExprs(e.Indices...)
	case *DictionaryAccess:
		s.checkVariableDefined(e, e.Name)
		s.analyzeExprs(e.Keys...)

	case *BinaryOperation:
		s.analyzeExprs(e.Left, e.Right)
	case *UnaryOperation:
		s.analyzeExpr(e.Operand)
	case *Ternary:
		s.analyzeExprs(e.Condition, e.Then, e.Else)

	// The callee of a plain call may be a builtin, so only its arguments
	// are checked.
	case *FunctionCall:
		s.analyzeExprs(e.Args...)
	case *MethodCall:
		s.analyzeExpr(e.Object)
		s.analyzeExprs(e.Args...)
	case *FieldAccess:
		s.analyzeExpr(e.Object)
	case *ClassInstantiation:
		s.analyzeExpr(e.Class)
		s.analyzeExprs(e.Args...)

	case *ArrayElement:
		s.analyzeExprs(e.Elements...)
	case *Dictionary:
		for _, p := range e.Pairs {
			s.analyzeExpr(p.Value)
		}
	case *ByteArray:
		s.analyzeExprs(e.Args[:]...)
	}
}

// checkVariableDefined warns once per name about reads of unbound names.
func (s *SemanticAnalyzer) checkVariableDefined(node Node, name string) {
	if s.defined(name) || s.warned[name] {
		return
	}
	s.warned[name] = true
	s.warnAt(node, "%q may be undefined", name)
}

// checkParams binds parameter names in the current scope, warning about
// duplicates. Default values are checked before the scope is entered.
func (s *SemanticAnalyzer) checkParams(params []Stmt) {
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		name := paramName(p)
		if seen[name] {
			s.warnAt(p, "duplicate parameter %q", name)
		}
		seen[name] = true
	}
}

func paramName(p Stmt) string {
	switch p := p.(type) {
	case *Identifier:
		return p.Name
	case *AssignStatement:
		return rootName(p.Target)
	}
	return ""
}

func (s *SemanticAnalyzer) analyzeFunction(params, body []Stmt) {
	for _, p := range params {
		if def, ok := p.(*AssignStatement); ok {
			s.analyzeExpr(def.Value)
		}
	}
	s.checkParams(params)

	s.push()
	for _, p := range params {
		s.bind(paramName(p))
	}
	s.bindBody(body)
	s.analyzeBody(body)
	s.pop()
}

func (s *SemanticAnalyzer) analyzeClass(c *ClassDecl) {
	s.push()
	defer s.pop()

	for _, m := range c.Members {
		if f, ok := m.(*FieldDecl); ok {
			s.bindStmt(f.Decl)
		}
	}

	methods := make(map[string]bool)
	constructors := 0
	for _, m := range c.Members {
		switch m := m.(type) {
		case *FieldDecl:
			s.analyzeStmt(m.Decl)
		case *MethodDecl:
			if methods[m.Name] {
				s.warnAt(m, "method %q redeclared in class %s", m.Name, c.Name)
			}
			methods[m.Name] = true
			s.analyzeFunction(m.Params, m.Body)
		case *ConstructorDecl:
			if constructors++; constructors == 2 {
				s.warnAt(m, "class %s has more than one init", c.Name)
			}
			s.analyzeFunction(m.Params, m.Body)
		}
	}
}

// checkUnreachableCode warns about the first statement after one that
// always leaves the block.
func (s *SemanticAnalyzer) checkUnreachableCode(stmts []Stmt) {
	for i, stmt := range stmts {
		var kind string
		switch stmt.(type) {
		case *ReturnStatement:
			kind = "return"
		case *ExitStatement:
			kind = "exit"
		case *SkipStatement:
			kind = "skip"
		case *RaiseException:
			kind = "raise"
		default:
			continue
		}
		if i < len(stmts)-1 {
			if _, eof := stmts[i+1].(*EOF); !eof {
				s.warnAt(stmts[i+1], "unreachable code after %s", kind)
			}
		}
		return
	}
}

// ---------------------------------------------------------------------------
// Convenience entry point
// ---------------------------------------------------------------------------

// Analyze runs semantic analysis on a program. Names in globals are treated
// as always defined.
func Analyze(tree *Block, globals ...string) []Warning {
	analyzer := NewSemanticAnalyzer()
	for _, g := range globals {
		analyzer.AddKnownGlobal(g)
	}
	analyzer.AnalyzeProgram(tree)
	return analyzer.Warnings()
}
