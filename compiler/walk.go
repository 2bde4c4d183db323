package compiler

// Walk traverses the AST starting from node, calling fn for each node.
// If fn returns false, Walk stops traversing that branch. Nil children are
// skipped.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *Block:
		walkStmts(n.Statements, fn)

	case *Declaration:
		walkExprs(n.Names, fn)
	case *SetStatement:
		walkExpr(n.Target, fn)
		walkExpr(n.Value, fn)
	case *AssignStatement:
		walkExpr(n.Target, fn)
		walkExpr(n.Value, fn)
	case *IfStatement:
		walkExpr(n.Condition, fn)
		walkStmts(n.Then, fn)
		for _, c := range n.ElseIfs {
			walkExpr(c.Condition, fn)
			walkStmts(c.Body, fn)
		}
		walkStmts(n.Else, fn)
	case *InputStatement:
		walkExpr(n.Target, fn)
		walkExpr(n.Prompt, fn)
	case *ForStatement:
		walkExpr(n.Start, fn)
		walkExpr(n.End, fn)
		walkExpr(n.Step, fn)
		walkStmts(n.Body, fn)
	case *ForeachStatement:
		walkExpr(n.Iterable, fn)
		walkStmts(n.Body, fn)
	case *GenerateStatement:
		walkExpr(n.Start, fn)
		walkExpr(n.End, fn)
		walkExpr(n.By, fn)
		walkStmts(n.Body, fn)
	case *ShowStatement:
		walkExpr(n.Expr, fn)
	case *RepeatStatement:
		walkExpr(n.Condition, fn)
		walkStmts(n.Body, fn)
	case *RepeatTimeStatement:
		walkExpr(n.Times, fn)
		walkStmts(n.Body, fn)
	case *IterateStatement:
		walkExpr(n.Iterable, fn)
		walkStmts(n.Body, fn)
	case *ChooseStatement:
		walkExpr(n.Subject, fn)
		for _, w := range n.Whens {
			walkExpr(w.Value, fn)
			walkStmts(w.Body, fn)
		}
		walkStmts(n.Otherwise, fn)
	case *FunctionDecl:
		walkStmts(n.Params, fn)
		walkStmts(n.Body, fn)
	case *ReturnStatement:
		walkExpr(n.Value, fn)
	case *ClassDecl:
		for _, m := range n.Members {
			Walk(m, fn)
		}
	case *RaiseException:
		walkExpr(n.Error, fn)
	case *TryCapture:
		walkStmts(n.Body, fn)
		walkStmts(n.Capture, fn)
	case *AwaitStatement:
		walkExpr(n.Expr, fn)
	case *ParentMethodAccess:
		walkExprs(n.Args, fn)
	case *ParentAccess:
		walkExpr(n.Field, fn)
	case *ParentConstructorCall:
		walkExprs(n.Args, fn)
	case *Callback:
		walkStmts(n.Params, fn)

	case *FieldDecl:
		if n.Decl != nil {
			Walk(n.Decl, fn)
		}
	case *MethodDecl:
		walkStmts(n.Params, fn)
		walkStmts(n.Body, fn)
	case *ConstructorDecl:
		walkStmts(n.Params, fn)
		walkStmts(n.Body, fn)

	case *Ternary:
		walkExpr(n.Condition, fn)
		walkExpr(n.Then, fn)
		walkExpr(n.Else, fn)
	case *BinaryOperation:
		walkExpr(n.Left, fn)
		walkExpr(n.Right, fn)
	case *UnaryOperation:
		walkExpr(n.Operand, fn)
	case *FunctionCall:
		walkExprs(n.Args, fn)
	case *MethodCall:
		walkExpr(n.Object, fn)
		walkExprs(n.Args, fn)
	case *FieldAccess:
		walkExpr(n.Object, fn)
		walkExpr(n.Field, fn)
	case *ArrayElement:
		walkExprs(n.Elements, fn)
	case *ArrayAccess:
		walkExprs(n.Indices, fn)
	case *Dictionary:
		for _, pair := range n.Pairs {
			if pair.Key != nil {
				Walk(pair.Key, fn)
			}
			walkExpr(pair.Value, fn)
		}
	case *DictionaryAccess:
		walkExprs(n.Keys, fn)
	case *ClassInstantiation:
		walkExpr(n.Class, fn)
		walkExprs(n.Args, fn)
	case *ByteArray:
		for _, arg := range n.Args {
			walkExpr(arg, fn)
		}
	}
}

func walkExpr(e Expr, fn func(Node) bool) {
	if e != nil {
		Walk(e, fn)
	}
}

func walkExprs(list []Expr, fn func(Node) bool) {
	for _, e := range list {
		walkExpr(e, fn)
	}
}

func walkStmts(list []Stmt, fn func(Node) bool) {
	for _, s := range list {
		if s != nil {
			Walk(s, fn)
		}
	}
}
