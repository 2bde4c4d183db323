package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chazu/prose/compiler"
)

// ---------------------------------------------------------------------------
// prose fmt: canonical source formatter
// ---------------------------------------------------------------------------

// Format parses a prose source string and returns canonically formatted
// output. Comments are not part of the tree and are not preserved.
func Format(source string, opts ...compiler.Option) (string, error) {
	tree, err := compiler.Parse(source, opts...)
	if err != nil {
		return "", err
	}

	f := &formatter{buf: &strings.Builder{}}
	f.formatBody(tree.Statements)

	// Ensure file ends with exactly one newline
	return strings.TrimRight(f.buf.String(), "\n") + "\n", nil
}

// formatter walks the AST and emits canonically formatted source.
type formatter struct {
	indent int
	buf    *strings.Builder
}

func (f *formatter) write(s string) {
	f.buf.WriteString(s)
}

// line writes one indented line.
func (f *formatter) line(s string) {
	f.buf.WriteString(strings.Repeat("\t", f.indent))
	f.buf.WriteString(s)
	f.buf.WriteByte('\n')
}

func (f *formatter) formatBody(stmts []compiler.Stmt) {
	for _, stmt := range stmts {
		f.formatStmt(stmt)
	}
}

func (f *formatter) block(header string, body []compiler.Stmt) {
	f.line(header)
	f.indent++
	f.formatBody(body)
	f.indent--
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (f *formatter) formatStmt(stmt compiler.Stmt) {
	switch s := stmt.(type) {
	case *compiler.Declaration:
		f.line("declare " + exprList(s.Names))
	case *compiler.SetStatement:
		f.line("set " + exprString(s.Target) + " to " + exprString(s.Value))
	case *compiler.AssignStatement:
		f.line(exprString(s.Target) + " to " + exprString(s.Value))

	case *compiler.IfStatement:
		f.block("if "+exprString(s.Condition)+" then", s.Then)
		for _, c := range s.ElseIfs {
			f.block("else if "+exprString(c.Condition)+" then", c.Body)
		}
		if s.Else != nil {
			f.block("else", s.Else)
		}
		f.line("end if")

	case *compiler.InputStatement:
		f.line("input " + exprString(s.Target) + " to input(" + exprString(s.Prompt) + ")")

	case *compiler.ForStatement:
		header := fmt.Sprintf("for %s from %s to %s", s.Variable, exprString(s.Start), exprString(s.End))
		if s.Step != nil {
			header += " step " + exprString(s.Step)
		}
		f.block(header, s.Body)
		f.line("end for")

	case *compiler.GenerateStatement:
		header := fmt.Sprintf("generate %s from %s to %s", s.Variable, exprString(s.Start), exprString(s.End))
		if s.By != nil {
			header += " by " + exprString(s.By)
		}
		f.block(header, s.Body)
		f.line("stop")

	case *compiler.ForeachStatement:
		f.block("foreach "+strings.Join(s.Variables, ", ")+" in "+exprString(s.Iterable), s.Body)
		f.line("end foreach")

	case *compiler.ShowStatement:
		f.line("show " + exprString(s.Expr))
	case *compiler.ShowLnStatement:
		f.line("showline()")

	case *compiler.RepeatStatement:
		f.block("repeat while ("+exprString(s.Condition)+")", s.Body)
		f.line("end repeat")
	case *compiler.RepeatTimeStatement:
		f.block("repeat "+exprString(s.Times)+" times", s.Body)
		f.line("end repeat")

	case *compiler.IterateStatement:
		f.block("iterate "+s.Variable+" over ("+exprString(s.Iterable)+")", s.Body)
		f.line("end iterate")

	case *compiler.ChooseStatement:
		f.line("choose " + exprString(s.Subject))
		f.indent++
		for _, w := range s.Whens {
			f.block("when "+exprString(w.Value)+":", w.Body)
		}
		if s.Otherwise != nil {
			f.block("otherwise:", s.Otherwise)
		}
		f.indent--
		f.line("end choose")

	case *compiler.FunctionDecl:
		f.block("function "+s.Name+"("+paramList(s.Params)+")", s.Body)
		f.line("end function")

	case *compiler.ReturnStatement:
		if s.Value == nil {
			f.line("return")
		} else {
			f.line("return " + exprString(s.Value))
		}

	case *compiler.ClassDecl:
		header := "class " + s.Name
		if s.Inherit != "" {
			header += " inherit " + s.Inherit
		}
		f.line(header)
		f.indent++
		for _, m := range s.Members {
			f.formatMember(m)
		}
		f.indent--
		f.line("end class")

	case *compiler.ImportStatement:
		modules := make([]string, len(s.Modules))
		for i, m := range s.Modules {
			modules[i] = modulePath(m)
		}
		f.line("import " + strings.Join(modules, ", "))
	case *compiler.FromImportStatement:
		f.line("from " + modulePath(s.Module) + " import " + strings.Join(s.Names, ", "))

	case *compiler.RaiseException:
		f.line("raise error(" + exprString(s.Error) + ")")

	case *compiler.TryCapture:
		f.block("try", s.Body)
		f.block("capture ("+s.CaptureVar+")", s.Capture)
		f.line("stop")

	case *compiler.SkipStatement:
		f.line("skip")
	case *compiler.ExitStatement:
		f.line("exit")
	case *compiler.AwaitStatement:
		f.line("await " + exprString(s.Expr))

	case *compiler.ParentConstructorCall:
		f.line("parent.init(" + exprList(s.Args) + ")")
	case *compiler.ParentMethodAccess:
		f.line("parent." + s.Method + "(" + exprList(s.Args) + ")")
	case *compiler.ParentAccess:
		f.line("parent." + exprString(s.Field))

	case *compiler.Callback:
		f.line("callback " + s.Name + "(" + paramList(s.Params) + ")")

	case *compiler.EOF:
		// nothing

	case compiler.Expr:
		f.line(exprString(s))
	}
}

func (f *formatter) formatMember(m compiler.Member) {
	switch m := m.(type) {
	case *compiler.FieldDecl:
		sub := &formatter{buf: &strings.Builder{}}
		sub.formatStmt(m.Decl)
		f.line(modifierPrefix(m.Modifier) + strings.TrimSuffix(sub.buf.String(), "\n"))
	case *compiler.MethodDecl:
		f.block(modifierPrefix(m.Modifier)+"method "+m.Name+"("+paramList(m.Params)+")", m.Body)
		f.line("end method")
	case *compiler.ConstructorDecl:
		f.block(modifierPrefix(m.Modifier)+"init("+paramList(m.Params)+")", m.Body)
		f.line("end init")
	}
}

func modifierPrefix(m compiler.Modifier) string {
	if m == compiler.ModifierNone {
		return ""
	}
	return m.String() + " "
}

func paramList(params []compiler.Stmt) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		switch p := p.(type) {
		case *compiler.Identifier:
			parts = append(parts, p.Name)
		case *compiler.AssignStatement:
			parts = append(parts, exprString(p.Target)+" to "+exprString(p.Value))
		}
	}
	return strings.Join(parts, ", ")
}

// modulePath writes a module as a bare dotted path when every segment is a
// plain identifier, otherwise as a string.
func modulePath(m string) string {
	if m == "" {
		return quote(m)
	}
	for _, seg := range strings.Split(m, ".") {
		if !isIdentifier(seg) {
			return quote(m)
		}
		if _, reserved := compiler.LookupKeyword(seg); reserved {
			return quote(m)
		}
	}
	return m
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// exprString formats an expression at the top level, where nothing binds
// tighter around it.
func exprString(e compiler.Expr) string {
	if e == nil {
		return ""
	}
	switch e := e.(type) {
	case *compiler.NumberLiteral:
		return strconv.FormatFloat(e.Value, 'f', -1, 64)
	case *compiler.ScientificLiteral:
		return strconv.FormatFloat(e.Value, 'e', -1, 64)
	case *compiler.StringLiteral:
		return quote(e.Value)
	case *compiler.HexLiteral:
		return e.Value
	case *compiler.BytesLiteral:
		return e.Value
	case *compiler.TrueLiteral:
		return "true"
	case *compiler.FalseLiteral:
		return "false"
	case *compiler.NullLiteral:
		return "null"
	case *compiler.This:
		return "this"
	case *compiler.Identifier:
		return e.Name

	case *compiler.BinaryOperation:
		prec := compiler.Precedence(e.Operator)
		return operand(e.Left, prec, false) + " " + e.Operator.String() + " " + operand(e.Right, prec, true)
	case *compiler.UnaryOperation:
		return "not " + exprString(e.Operand)
	case *compiler.Ternary:
		return "if " + exprString(e.Condition) + " then " + exprString(e.Then) + " else " + exprString(e.Else)

	case *compiler.FunctionCall:
		return e.Name + "(" + exprList(e.Args) + ")"
	case *compiler.MethodCall:
		return receiver(e.Object) + "." + e.Method + "(" + exprList(e.Args) + ")"
	case *compiler.FieldAccess:
		return receiver(e.Object) + "." + exprString(e.Field)
	case *compiler.ClassInstantiation:
		return "new " + exprString(e.Class) + "(" + exprList(e.Args) + ")"

	case *compiler.ArrayElement:
		return "[" + exprList(e.Elements) + "]"
	case *compiler.ArrayAccess:
		return e.Name + indexList(e.Indices)
	case *compiler.DictionaryAccess:
		return e.Name + indexList(e.Keys)
	case *compiler.Dictionary:
		pairs := make([]string, len(e.Pairs))
		for i, p := range e.Pairs {
			key := ""
			if p.Key != nil {
				key = quote(p.Key.Value)
			}
			pairs[i] = key + ": " + exprString(p.Value)
		}
		return "{" + strings.Join(pairs, ", ") + "}"
	case *compiler.ByteArray:
		var args []compiler.Expr
		for _, a := range e.Args {
			if a == nil {
				break
			}
			args = append(args, a)
		}
		return "bytearray(" + exprList(args) + ")"
	}
	return ""
}

// operand formats a binary operand, parenthesizing it when the parser
// would otherwise group it differently. `not` and `if` extend to the end
// of the expression, so they are always wrapped.
func operand(e compiler.Expr, parent int, right bool) string {
	switch e := e.(type) {
	case *compiler.UnaryOperation, *compiler.Ternary:
		return "(" + exprString(e) + ")"
	case *compiler.BinaryOperation:
		prec := compiler.Precedence(e.Operator)
		if prec < parent || (right && prec == parent) {
			return "(" + exprString(e) + ")"
		}
	}
	return exprString(e)
}

// receiver formats the object of a member access.
func receiver(e compiler.Expr) string {
	switch e.(type) {
	case *compiler.BinaryOperation, *compiler.UnaryOperation, *compiler.Ternary,
		*compiler.NumberLiteral, *compiler.ScientificLiteral:
		return "(" + exprString(e) + ")"
	}
	return exprString(e)
}

func exprList(list []compiler.Expr) string {
	parts := make([]string, len(list))
	for i, e := range list {
		parts[i] = exprString(e)
	}
	return strings.Join(parts, ", ")
}

func indexList(list []compiler.Expr) string {
	var b strings.Builder
	for _, e := range list {
		b.WriteString("[" + exprString(e) + "]")
	}
	return b.String()
}

// quote writes s as a double-quoted literal using the escapes the lexer
// understands.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// ---------------------------------------------------------------------------
// CLI command: prose fmt
// ---------------------------------------------------------------------------

var (
	fmtCheck bool
	fmtWrite bool
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [files or directories...]",
	Short: "Format prose source files to canonical style",
	Long: `Format prose source files to canonical style.

Without flags the formatted source is written to stdout. With --write files
are rewritten in place; files containing comments are left alone because
comments are not preserved. With --check nothing is written and the command
fails if any file would change.

If no paths are given, the project's source directories are used.`,
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().BoolVar(&fmtCheck, "check", false, "report files that need formatting")
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "rewrite files in place")
	rootCmd.AddCommand(fmtCmd)
}

func runFmt(cmd *cobra.Command, args []string) error {
	m, err := loadManifest()
	if err != nil {
		return err
	}
	opts, err := m.LexerOptions()
	if err != nil {
		return err
	}

	files, err := collectSourceFiles(m, args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Info("no source files found")
		return nil
	}

	anyChanged := false
	for _, path := range files {
		changed, err := formatFile(cmd, path, opts)
		if err != nil {
			return fmt.Errorf("formatting %s: %w", path, err)
		}
		anyChanged = anyChanged || changed
	}

	if fmtCheck && anyChanged {
		return fmt.Errorf("some files need formatting")
	}
	return nil
}

// formatFile formats a single file according to the command flags and
// reports whether the formatted text differs from the original.
func formatFile(cmd *cobra.Command, path string, opts []compiler.Option) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	original := string(content)
	formatted, err := Format(original, opts...)
	if err != nil {
		return false, err
	}
	changed := original != formatted

	switch {
	case fmtCheck:
		if changed {
			fmt.Fprintf(cmd.OutOrStdout(), "would format: %s\n", path)
		}
	case fmtWrite:
		if !changed {
			return false, nil
		}
		if hasComment(original) {
			log.Warningf("skipping %s: comments would be lost", path)
			return true, nil
		}
		if err := os.WriteFile(path, []byte(formatted), 0644); err != nil {
			return false, err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "formatted: %s\n", path)
	default:
		fmt.Fprint(cmd.OutOrStdout(), formatted)
	}
	return changed, nil
}

// hasComment reports whether src may contain a comment. Comment markers
// inside strings count too.
func hasComment(src string) bool {
	return strings.Contains(src, "//") || strings.Contains(src, "/*")
}
