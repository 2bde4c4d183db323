package server

import (
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/chazu/prose/compiler"
)

const sampleDoc = `declare total
function add(a, b)
return a + b
end function
class Shape inherit Base
method area()
return 0
end method
end class
callback onClick(evt)
set total to add(1, 2)
`

func parseSample(t *testing.T) *compiler.Block {
	t.Helper()
	tree, err := compiler.Parse(sampleDoc)
	if err != nil {
		t.Fatalf("parse sample: %v", err)
	}
	return tree
}

// ---------------------------------------------------------------------------
// LSP text extraction helpers
// ---------------------------------------------------------------------------

func TestExtractPrefix_SimpleWord(t *testing.T) {
	text := "show total"
	pos := protocol.Position{Line: 0, Character: 10}
	prefix := extractPrefix(text, pos)
	if prefix != "total" {
		t.Errorf("extractPrefix = %q, want %q", prefix, "total")
	}
}

func TestExtractPrefix_MultiLine(t *testing.T) {
	text := "first line\nsecond line\nadd"
	pos := protocol.Position{Line: 2, Character: 3}
	prefix := extractPrefix(text, pos)
	if prefix != "add" {
		t.Errorf("extractPrefix = %q, want %q", prefix, "add")
	}
}

func TestExtractPrefix_StopsAtDot(t *testing.T) {
	text := "set x to this.wid"
	pos := protocol.Position{Line: 0, Character: 17}
	prefix := extractPrefix(text, pos)
	if prefix != "wid" {
		t.Errorf("extractPrefix = %q, want %q", prefix, "wid")
	}
}

func TestExtractPrefix_CursorAtBeginning(t *testing.T) {
	text := "hello"
	pos := protocol.Position{Line: 0, Character: 0}
	prefix := extractPrefix(text, pos)
	if prefix != "" {
		t.Errorf("extractPrefix at position 0 = %q, want empty string", prefix)
	}
}

func TestExtractPrefix_LineBeyondDocument(t *testing.T) {
	text := "single line"
	pos := protocol.Position{Line: 5, Character: 0}
	prefix := extractPrefix(text, pos)
	if prefix != "" {
		t.Errorf("extractPrefix beyond doc = %q, want empty string", prefix)
	}
}

func TestExtractWord(t *testing.T) {
	tests := []struct {
		text string
		pos  protocol.Position
		want string
	}{
		{"hello world", protocol.Position{Line: 0, Character: 3}, "hello"},
		{"hello world", protocol.Position{Line: 0, Character: 5}, "hello"},
		{"hello world", protocol.Position{Line: 0, Character: 8}, "world"},
		{"first\nmy_var", protocol.Position{Line: 1, Character: 2}, "my_var"},
		{"show café", protocol.Position{Line: 0, Character: 7}, "café"},
		{"x", protocol.Position{Line: 0, Character: 40}, "x"},
		{"", protocol.Position{Line: 0, Character: 0}, ""},
		{"one", protocol.Position{Line: 3, Character: 0}, ""},
	}

	for _, tc := range tests {
		if got := extractWord(tc.text, tc.pos); got != tc.want {
			t.Errorf("extractWord(%q, %v) = %q, want %q", tc.text, tc.pos, got, tc.want)
		}
	}
}

func TestBoolPtr(t *testing.T) {
	if p := boolPtr(true); p == nil || !*p {
		t.Error("boolPtr(true) should point to true")
	}
	if p := boolPtr(false); p == nil || *p {
		t.Error("boolPtr(false) should point to false")
	}
}

// ---------------------------------------------------------------------------
// Diagnostics
// ---------------------------------------------------------------------------

func TestDiagnosticsFor(t *testing.T) {
	if d := diagnosticsFor(nil); d != nil {
		t.Errorf("diagnosticsFor(nil) = %v, want nil", d)
	}

	_, err := compiler.Parse("show 1\nset x to")
	if err == nil {
		t.Fatal("expected parse error")
	}
	perr, ok := err.(*compiler.ParseError)
	if !ok {
		t.Fatalf("error type = %T, want *compiler.ParseError", err)
	}

	diags := diagnosticsFor(err)
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %d, want 1", len(diags))
	}
	d := diags[0]
	if d.Message != perr.Msg {
		t.Errorf("message = %q, want %q", d.Message, perr.Msg)
	}
	if int(d.Range.Start.Line) != perr.Pos.Line-1 || int(d.Range.Start.Character) != perr.Pos.Column {
		t.Errorf("range start = %v, want line %d col %d", d.Range.Start, perr.Pos.Line-1, perr.Pos.Column)
	}
	if d.Severity == nil || *d.Severity != protocol.DiagnosticSeverityError {
		t.Error("severity should be error")
	}
}

func TestDiagnosticsForLexError(t *testing.T) {
	_, err := compiler.Parse("show \"unterminated")
	if _, ok := err.(*compiler.LexError); !ok {
		t.Fatalf("error type = %T, want *compiler.LexError", err)
	}
	if diags := diagnosticsFor(err); len(diags) != 1 || diags[0].Range.Start.Line != 0 {
		t.Errorf("diagnostics = %+v", diags)
	}
}

// ---------------------------------------------------------------------------
// Symbols, definitions, references
// ---------------------------------------------------------------------------

func TestSymbolsFor(t *testing.T) {
	symbols := symbolsFor(parseSample(t))

	want := []struct {
		name string
		kind protocol.SymbolKind
	}{
		{"total", protocol.SymbolKindVariable},
		{"add", protocol.SymbolKindFunction},
		{"Shape", protocol.SymbolKindClass},
		{"onClick", protocol.SymbolKindEvent},
	}
	if len(symbols) != len(want) {
		t.Fatalf("symbols = %d, want %d", len(symbols), len(want))
	}
	for i, w := range want {
		if symbols[i].Name != w.name || symbols[i].Kind != w.kind {
			t.Errorf("symbol %d = %s/%v, want %s/%v", i, symbols[i].Name, symbols[i].Kind, w.name, w.kind)
		}
	}

	class := symbols[2]
	if *class.Detail != "class Shape inherit Base" {
		t.Errorf("class detail = %q", *class.Detail)
	}
	if len(class.Children) != 1 || class.Children[0].Name != "area" || class.Children[0].Kind != protocol.SymbolKindMethod {
		t.Errorf("class children = %+v", class.Children)
	}
	if *symbols[1].Detail != "function add(a, b)" {
		t.Errorf("function detail = %q", *symbols[1].Detail)
	}
	if symbols[1].Range.Start.Line != 1 || symbols[1].Range.Start.Character != 0 {
		t.Errorf("function range = %+v", symbols[1].Range)
	}
}

func TestSymbolsForNilTree(t *testing.T) {
	if s := symbolsFor(nil); s == nil || len(s) != 0 {
		t.Errorf("symbolsFor(nil) = %v, want empty slice", s)
	}
}

func TestClassMembers(t *testing.T) {
	tree, err := compiler.Parse(`class Point
public declare x, y
secret set tag to "p"
init(a, b)
this.x to a
end init
end class`)
	if err != nil {
		t.Fatal(err)
	}

	members := classMembers(tree.Statements[0].(*compiler.ClassDecl))
	var got []string
	for _, m := range members {
		got = append(got, *m.Detail)
	}
	if want := "public x|public y|secret tag|init(a, b)"; strings.Join(got, "|") != want {
		t.Errorf("members = %q, want %q", strings.Join(got, "|"), want)
	}
}

func TestDeclarationsOf(t *testing.T) {
	decls := declarationsOf(parseSample(t))

	var names []string
	for _, d := range decls {
		names = append(names, d.name)
	}
	if got := strings.Join(names, ","); got != "total,add,Shape,area,onClick" {
		t.Errorf("declarations = %q", got)
	}

	total := decls[0]
	if total.selection.Start.Line != 0 || total.selection.Start.Character != 8 || total.selection.End.Character != 13 {
		t.Errorf("total selection = %+v", total.selection)
	}
}

func TestReferencesTo(t *testing.T) {
	tree := parseSample(t)

	refs := referencesTo(tree, "total")
	if len(refs) != 2 {
		t.Fatalf("references to total = %d, want 2", len(refs))
	}
	if refs[1].Start.Line != 10 || refs[1].Start.Character != 4 {
		t.Errorf("second reference = %+v, want 10:4", refs[1].Start)
	}

	refs = referencesTo(tree, "add")
	if len(refs) != 2 {
		t.Fatalf("references to add = %d, want 2", len(refs))
	}
	if refs[0].Start.Line != 10 || refs[0].Start.Character != 13 {
		t.Errorf("call reference = %+v, want 10:13", refs[0].Start)
	}

	if refs := referencesTo(tree, "nothing"); len(refs) != 0 {
		t.Errorf("references to unknown name = %v", refs)
	}
}

// ---------------------------------------------------------------------------
// Completion and hover
// ---------------------------------------------------------------------------

func TestCompletionsFor(t *testing.T) {
	tree := parseSample(t)

	items := completionsFor(tree, "to")
	var labels []string
	for _, it := range items {
		labels = append(labels, it.Label)
	}
	if got := strings.Join(labels, ","); got != "to,total" {
		t.Errorf("completions for 'to' = %q, want to,total", got)
	}
	if *items[0].Kind != protocol.CompletionItemKindKeyword {
		t.Errorf("first item kind = %v, want keyword", *items[0].Kind)
	}
	if *items[1].Kind != protocol.CompletionItemKindVariable {
		t.Errorf("second item kind = %v, want variable", *items[1].Kind)
	}

	items = completionsFor(tree, "Sh")
	labels = nil
	for _, it := range items {
		labels = append(labels, it.Label)
	}
	if got := strings.Join(labels, ","); got != "show,showline,Shape" {
		t.Errorf("completions for 'Sh' = %+v", items)
	}
}

func TestCompletionsWithoutTree(t *testing.T) {
	items := completionsFor(nil, "end")
	if len(items) == 0 {
		t.Fatal("expected keyword completions")
	}
	for _, it := range items {
		if !strings.HasPrefix(it.Label, "end") {
			t.Errorf("unexpected completion %q", it.Label)
		}
	}
}

func TestHoverFor(t *testing.T) {
	tree := parseSample(t)

	h := hoverFor(tree, "while")
	if h == nil {
		t.Fatal("expected hover for keyword")
	}
	if v := h.Contents.(protocol.MarkupContent).Value; !strings.Contains(v, "keyword") {
		t.Errorf("keyword hover = %q", v)
	}

	h = hoverFor(tree, "add")
	if h == nil {
		t.Fatal("expected hover for function")
	}
	if v := h.Contents.(protocol.MarkupContent).Value; !strings.Contains(v, "function add(a, b)") {
		t.Errorf("function hover = %q", v)
	}

	if h := hoverFor(tree, "missing"); h != nil {
		t.Errorf("hover for unknown word = %+v, want nil", h)
	}
}

// ---------------------------------------------------------------------------
// Document store
// ---------------------------------------------------------------------------

func TestLSP_DocumentStore(t *testing.T) {
	s := NewLSP("test")
	uri := protocol.DocumentUri("file:///tmp/main.prose")

	if diags := s.update(string(uri), sampleDoc); len(diags) != 0 {
		t.Fatalf("diagnostics for valid document = %+v", diags)
	}
	text, tree, ok := s.snapshot(uri)
	if !ok || text != sampleDoc || tree == nil {
		t.Fatal("snapshot should return the stored document")
	}

	broken := sampleDoc + "set x to\n"
	if diags := s.update(string(uri), broken); len(diags) != 1 {
		t.Fatalf("diagnostics for broken document = %d, want 1", len(diags))
	}
	text, kept, _ := s.snapshot(uri)
	if text != broken {
		t.Error("snapshot text should be the latest edit")
	}
	if kept != tree {
		t.Error("a failed parse should keep the last good tree")
	}

	if _, _, ok := s.snapshot("file:///tmp/other.prose"); ok {
		t.Error("unknown document should not be found")
	}
}

func TestLSP_WarningDiagnostics(t *testing.T) {
	s := NewLSP("test")
	diags := s.update("file:///tmp/warn.prose", "function f()\nreturn 1\nshow missing\nend function\n")
	if len(diags) != 2 {
		t.Fatalf("got %d diagnostics, want 2: %+v", len(diags), diags)
	}
	for _, d := range diags {
		if d.Severity == nil || *d.Severity != protocol.DiagnosticSeverityWarning {
			t.Errorf("diagnostic %q is not a warning", d.Message)
		}
	}
	if diags[0].Range.Start.Line != 2 {
		t.Errorf("first warning line = %d, want 2", diags[0].Range.Start.Line)
	}
}
