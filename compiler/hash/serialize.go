package hash

import (
	"encoding/binary"
	"math"

	"github.com/chazu/prose/compiler"
)

// ---------------------------------------------------------------------------
// Deterministic binary serialization of a syntax tree for hashing.
//
// Encoding conventions:
//   - First byte: HashVersion (0x01)
//   - Counts and lengths: uint32 big-endian
//   - Floats: IEEE 754 big-endian 8B
//   - Strings: uint32 big-endian length + UTF-8 bytes
//   - Absent optional children: TagAbsent
//   - Child nodes: serialized inline (flat)
//
// Positions are never written.
// ---------------------------------------------------------------------------

// Serialize produces a deterministic byte serialization of a syntax tree.
// The returned bytes are suitable for hashing with SHA-256.
func Serialize(node compiler.Node) []byte {
	s := &serializer{buf: make([]byte, 0, 256)}
	s.writeByte(HashVersion)
	s.serializeNode(node)
	return s.buf
}

type serializer struct {
	buf []byte
}

func (s *serializer) writeByte(b byte) {
	s.buf = append(s.buf, b)
}

func (s *serializer) writeUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeFloat64(v float64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeString(v string) {
	s.writeUint32(uint32(len(v)))
	s.buf = append(s.buf, v...)
}

func (s *serializer) writeStrings(list []string) {
	s.writeUint32(uint32(len(list)))
	for _, v := range list {
		s.writeString(v)
	}
}

// writeExpr writes an optional expression.
func (s *serializer) writeExpr(e compiler.Expr) {
	if e == nil {
		s.writeByte(TagAbsent)
		return
	}
	s.serializeNode(e)
}

func (s *serializer) writeExprs(list []compiler.Expr) {
	s.writeUint32(uint32(len(list)))
	for _, e := range list {
		s.writeExpr(e)
	}
}

func (s *serializer) writeStmts(list []compiler.Stmt) {
	s.writeUint32(uint32(len(list)))
	for _, st := range list {
		if st == nil {
			s.writeByte(TagAbsent)
			continue
		}
		s.serializeNode(st)
	}
}

// writeBody writes a statement list that may be absent, keeping a missing
// else or otherwise distinct from an empty one.
func (s *serializer) writeBody(list []compiler.Stmt) {
	if list == nil {
		s.writeByte(TagAbsent)
		return
	}
	s.writeByte(TagBlock)
	s.writeStmts(list)
}

func (s *serializer) serializeNode(node compiler.Node) {
	switch n := node.(type) {
	// Literals
	case *compiler.NumberLiteral:
		s.writeByte(TagNumberLiteral)
		s.writeFloat64(n.Value)

	case *compiler.StringLiteral:
		s.writeByte(TagStringLiteral)
		s.writeString(n.Value)

	case *compiler.HexLiteral:
		s.writeByte(TagHexLiteral)
		s.writeString(n.Value)

	case *compiler.BytesLiteral:
		s.writeByte(TagBytesLiteral)
		s.writeString(n.Value)

	case *compiler.ScientificLiteral:
		s.writeByte(TagScientificLiteral)
		s.writeFloat64(n.Value)

	case *compiler.TrueLiteral:
		s.writeByte(TagTrueLiteral)

	case *compiler.FalseLiteral:
		s.writeByte(TagFalseLiteral)

	case *compiler.NullLiteral:
		s.writeByte(TagNullLiteral)

	case *compiler.This:
		s.writeByte(TagThis)

	case *compiler.Identifier:
		s.writeByte(TagIdentifier)
		s.writeString(n.Name)

	// Expressions
	case *compiler.Ternary:
		s.writeByte(TagTernary)
		s.writeExpr(n.Condition)
		s.writeExpr(n.Then)
		s.writeExpr(n.Else)

	case *compiler.BinaryOperation:
		s.writeByte(TagBinaryOperation)
		s.writeString(n.Operator.String())
		s.writeExpr(n.Left)
		s.writeExpr(n.Right)

	case *compiler.UnaryOperation:
		s.writeByte(TagUnaryOperation)
		s.writeString(n.Operator.String())
		s.writeExpr(n.Operand)

	case *compiler.FunctionCall:
		s.writeByte(TagFunctionCall)
		s.writeString(n.Name)
		s.writeExprs(n.Args)

	case *compiler.MethodCall:
		s.writeByte(TagMethodCall)
		s.writeString(n.Method)
		s.writeExpr(n.Object)
		s.writeExprs(n.Args)

	case *compiler.FieldAccess:
		s.writeByte(TagFieldAccess)
		s.writeExpr(n.Object)
		s.writeExpr(n.Field)

	case *compiler.ArrayElement:
		s.writeByte(TagArrayElement)
		s.writeExprs(n.Elements)

	case *compiler.ArrayAccess:
		s.writeByte(TagArrayAccess)
		s.writeString(n.Name)
		s.writeExprs(n.Indices)

	case *compiler.Dictionary:
		s.writeByte(TagDictionary)
		s.writeUint32(uint32(len(n.Pairs)))
		for _, pair := range n.Pairs {
			if pair.Key == nil {
				s.writeByte(TagAbsent)
			} else {
				s.serializeNode(pair.Key)
			}
			s.writeExpr(pair.Value)
		}

	case *compiler.DictionaryAccess:
		s.writeByte(TagDictionaryAccess)
		s.writeString(n.Name)
		s.writeExprs(n.Keys)

	case *compiler.ClassInstantiation:
		s.writeByte(TagClassInstantiation)
		s.writeExpr(n.Class)
		s.writeExprs(n.Args)

	case *compiler.ByteArray:
		s.writeByte(TagByteArray)
		for _, arg := range n.Args {
			s.writeExpr(arg)
		}

	// Statements
	case *compiler.Declaration:
		s.writeByte(TagDeclaration)
		s.writeExprs(n.Names)

	case *compiler.SetStatement:
		s.writeByte(TagSetStatement)
		s.writeExpr(n.Target)
		s.writeExpr(n.Value)

	case *compiler.AssignStatement:
		s.writeByte(TagAssignStatement)
		s.writeExpr(n.Target)
		s.writeExpr(n.Value)

	case *compiler.IfStatement:
		s.writeByte(TagIfStatement)
		s.writeExpr(n.Condition)
		s.writeStmts(n.Then)
		s.writeUint32(uint32(len(n.ElseIfs)))
		for _, c := range n.ElseIfs {
			s.writeExpr(c.Condition)
			s.writeStmts(c.Body)
		}
		s.writeBody(n.Else)

	case *compiler.InputStatement:
		s.writeByte(TagInputStatement)
		s.writeExpr(n.Target)
		s.writeExpr(n.Prompt)

	case *compiler.ForStatement:
		s.writeByte(TagForStatement)
		s.writeString(n.Variable)
		s.writeExpr(n.Start)
		s.writeExpr(n.End)
		s.writeExpr(n.Step)
		s.writeStmts(n.Body)

	case *compiler.ForeachStatement:
		s.writeByte(TagForeachStatement)
		s.writeStrings(n.Variables)
		s.writeExpr(n.Iterable)
		s.writeStmts(n.Body)

	case *compiler.GenerateStatement:
		s.writeByte(TagGenerateStatement)
		s.writeString(n.Variable)
		s.writeExpr(n.Start)
		s.writeExpr(n.End)
		s.writeExpr(n.By)
		s.writeStmts(n.Body)

	case *compiler.ShowStatement:
		s.writeByte(TagShowStatement)
		s.writeExpr(n.Expr)

	case *compiler.ShowLnStatement:
		s.writeByte(TagShowLnStatement)

	case *compiler.RepeatStatement:
		s.writeByte(TagRepeatStatement)
		s.writeExpr(n.Condition)
		s.writeStmts(n.Body)

	case *compiler.RepeatTimeStatement:
		s.writeByte(TagRepeatTimeStatement)
		s.writeExpr(n.Times)
		s.writeStmts(n.Body)

	case *compiler.IterateStatement:
		s.writeByte(TagIterateStatement)
		s.writeString(n.Variable)
		s.writeExpr(n.Iterable)
		s.writeStmts(n.Body)

	case *compiler.ChooseStatement:
		s.writeByte(TagChooseStatement)
		s.writeExpr(n.Subject)
		s.writeUint32(uint32(len(n.Whens)))
		for _, w := range n.Whens {
			s.writeExpr(w.Value)
			s.writeStmts(w.Body)
		}
		s.writeBody(n.Otherwise)

	case *compiler.ReturnStatement:
		s.writeByte(TagReturnStatement)
		s.writeExpr(n.Value)

	case *compiler.ImportStatement:
		s.writeByte(TagImportStatement)
		s.writeStrings(n.Modules)

	case *compiler.FromImportStatement:
		s.writeByte(TagFromImport)
		s.writeString(n.Module)
		s.writeStrings(n.Names)

	case *compiler.RaiseException:
		s.writeByte(TagRaiseException)
		s.writeExpr(n.Error)

	case *compiler.TryCapture:
		s.writeByte(TagTryCapture)
		s.writeStmts(n.Body)
		s.writeString(n.CaptureVar)
		s.writeStmts(n.Capture)

	case *compiler.SkipStatement:
		s.writeByte(TagSkipStatement)

	case *compiler.ExitStatement:
		s.writeByte(TagExitStatement)

	case *compiler.AwaitStatement:
		s.writeByte(TagAwaitStatement)
		s.writeExpr(n.Expr)

	case *compiler.EOF:
		s.writeByte(TagEOF)

	// Declarations and classes
	case *compiler.FunctionDecl:
		s.writeByte(TagFunctionDecl)
		s.writeString(n.Name)
		s.writeStmts(n.Params)
		s.writeStmts(n.Body)

	case *compiler.ClassDecl:
		s.writeByte(TagClassDecl)
		s.writeString(n.Name)
		s.writeString(n.Inherit)
		s.writeUint32(uint32(len(n.Members)))
		for _, m := range n.Members {
			s.serializeNode(m)
		}

	case *compiler.FieldDecl:
		s.writeByte(TagFieldDecl)
		s.writeByte(byte(n.Modifier))
		if n.Decl == nil {
			s.writeByte(TagAbsent)
		} else {
			s.serializeNode(n.Decl)
		}

	case *compiler.MethodDecl:
		s.writeByte(TagMethodDecl)
		s.writeByte(byte(n.Modifier))
		s.writeString(n.Name)
		s.writeStmts(n.Params)
		s.writeStmts(n.Body)

	case *compiler.ConstructorDecl:
		s.writeByte(TagConstructorDecl)
		s.writeByte(byte(n.Modifier))
		s.writeStmts(n.Params)
		s.writeStmts(n.Body)

	case *compiler.ParentMethodAccess:
		s.writeByte(TagParentMethodAccess)
		s.writeString(n.Method)
		s.writeExprs(n.Args)

	case *compiler.ParentAccess:
		s.writeByte(TagParentAccess)
		s.writeExpr(n.Field)

	case *compiler.ParentConstructorCall:
		s.writeByte(TagParentConstructorCall)
		s.writeExprs(n.Args)

	case *compiler.Callback:
		s.writeByte(TagCallback)
		s.writeString(n.Name)
		s.writeStmts(n.Params)

	case *compiler.Block:
		s.writeByte(TagBlock)
		s.writeStmts(n.Statements)
	}
}
