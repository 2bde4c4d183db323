// Package server implements the prose language server.
package server

import (
	"strings"
	"sync"
	"unicode"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/prose/compiler"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "prose-lsp"

var log = commonlog.GetLogger("prose.lsp")

// document is an open editor buffer. tree is the last successful parse, so
// symbols survive while the user is mid-edit.
type document struct {
	text string
	tree *compiler.Block
	err  error
}

// LspServer serves editor features from the prose parser.
type LspServer struct {
	opts []compiler.Option

	mu   sync.Mutex
	docs map[string]*document // URI → document

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a new LSP server that parses with the given lexer options.
func NewLSP(version string, opts ...compiler.Option) *LspServer {
	s := &LspServer{
		opts:    opts,
		docs:    make(map[string]*document),
		version: version,
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion:     s.textDocumentCompletion,
		TextDocumentHover:          s.textDocumentHover,
		TextDocumentDefinition:     s.textDocumentDefinition,
		TextDocumentReferences:     s.textDocumentReferences,
		TextDocumentDocumentSymbol: s.textDocumentDocumentSymbol,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("prose LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"."},
	}

	capabilities.HoverProvider = true
	capabilities.DefinitionProvider = true
	capabilities.ReferencesProvider = true
	capabilities.DocumentSymbolProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	diagnostics := s.update(string(uri), params.TextDocument.Text)
	s.publishDiagnostics(ctx, uri, diagnostics)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			diagnostics := s.update(string(uri), whole.Text)
			s.publishDiagnostics(ctx, uri, diagnostics)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	// Clear diagnostics for the closed document
	s.publishDiagnostics(ctx, uri, []protocol.Diagnostic{})
	return nil
}

// update stores new text for uri, reparses it and returns its diagnostics.
func (s *LspServer) update(uri, text string) []protocol.Diagnostic {
	tree, err := compiler.Parse(text, s.opts...)

	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		doc = &document{}
		s.docs[uri] = doc
	}
	doc.text = text
	doc.err = err
	if err == nil {
		doc.tree = tree
	}
	s.mu.Unlock()

	if err != nil {
		log.Debugf("%s: %v", uri, err)
		return diagnosticsFor(err)
	}
	return warningsFor(compiler.Analyze(tree))
}

// snapshot returns the text and last good tree for uri.
func (s *LspServer) snapshot(uri protocol.DocumentUri) (string, *compiler.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[string(uri)]
	if !ok {
		return "", nil, false
	}
	return doc.text, doc.tree, true
}

// --- Language features ---

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	text, tree, ok := s.snapshot(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	prefix := extractPrefix(text, params.Position)
	if prefix == "" {
		return nil, nil
	}
	return completionsFor(tree, prefix), nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, tree, ok := s.snapshot(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}
	return hoverFor(tree, word), nil
}

func (s *LspServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	uri := params.TextDocument.URI
	text, tree, ok := s.snapshot(uri)
	if !ok {
		return nil, nil
	}

	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}

	var locations []protocol.Location
	for _, d := range declarationsOf(tree) {
		if d.name == word {
			locations = append(locations, protocol.Location{URI: uri, Range: d.selection})
		}
	}
	if len(locations) == 0 {
		return nil, nil
	}
	return locations, nil
}

func (s *LspServer) textDocumentReferences(ctx *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	uri := params.TextDocument.URI
	text, tree, ok := s.snapshot(uri)
	if !ok {
		return nil, nil
	}

	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}

	var locations []protocol.Location
	for _, r := range referencesTo(tree, word) {
		locations = append(locations, protocol.Location{URI: uri, Range: r})
	}
	return locations, nil
}

func (s *LspServer) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	_, tree, ok := s.snapshot(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	return symbolsFor(tree), nil
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, diagnostics []protocol.Diagnostic) {
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// diagnosticsFor converts a lex or parse failure into a single diagnostic
// anchored at the offending position.
func diagnosticsFor(err error) []protocol.Diagnostic {
	if err == nil {
		return nil
	}

	severity := protocol.DiagnosticSeverityError
	source := lspName
	msg := err.Error()
	var pos compiler.Position

	switch e := err.(type) {
	case *compiler.LexError:
		msg, pos = e.Msg, e.Pos
	case *compiler.ParseError:
		msg, pos = e.Msg, e.Pos
	}

	start := toLSP(pos)
	end := start
	end.Character++

	return []protocol.Diagnostic{{
		Range:    protocol.Range{Start: start, End: end},
		Severity: &severity,
		Source:   &source,
		Message:  msg,
	}}
}

// warningsFor converts semantic warnings to LSP diagnostics.
func warningsFor(warnings []compiler.Warning) []protocol.Diagnostic {
	if len(warnings) == 0 {
		return nil
	}
	severity := protocol.DiagnosticSeverityWarning
	source := lspName
	diags := make([]protocol.Diagnostic, 0, len(warnings))
	for _, w := range warnings {
		start := toLSP(w.Pos)
		end := start
		end.Character++
		diags = append(diags, protocol.Diagnostic{
			Range:    protocol.Range{Start: start, End: end},
			Severity: &severity,
			Source:   &source,
			Message:  w.Msg,
		})
	}
	return diags
}

// --- Text extraction helpers ---

// lineAt returns line pos.Line of text as runes, with the cursor column
// clamped to the line length.
func lineAt(text string, pos protocol.Position) ([]rune, int, bool) {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return nil, 0, false
	}
	line := []rune(lines[pos.Line])
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}
	return line, col, true
}

func isWordChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}

// extractPrefix returns the word fragment before the cursor for completion.
func extractPrefix(text string, pos protocol.Position) string {
	line, col, ok := lineAt(text, pos)
	if !ok {
		return ""
	}

	start := col
	for start > 0 && isWordChar(line[start-1]) {
		start--
	}
	return string(line[start:col])
}

// extractWord returns the full identifier under the cursor.
func extractWord(text string, pos protocol.Position) string {
	line, col, ok := lineAt(text, pos)
	if !ok {
		return ""
	}

	start := col
	for start > 0 && isWordChar(line[start-1]) {
		start--
	}
	end := col
	for end < len(line) && isWordChar(line[end]) {
		end++
	}
	return string(line[start:end])
}

func boolPtr(b bool) *bool {
	return &b
}
