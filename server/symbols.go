package server

import (
	"fmt"
	"sort"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/chazu/prose/compiler"
)

// declaration is a named definition found in a document.
type declaration struct {
	name      string
	kind      protocol.SymbolKind
	detail    string
	selection protocol.Range
}

// toLSP converts a 1-based line, 0-based column position to LSP coordinates.
func toLSP(p compiler.Position) protocol.Position {
	line := p.Line - 1
	if line < 0 {
		line = 0
	}
	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(p.Column)}
}

// span returns the range of width characters starting at p.
func span(p compiler.Position, width int) protocol.Range {
	start := toLSP(p)
	end := start
	end.Character += protocol.UInteger(width)
	return protocol.Range{Start: start, End: end}
}

// targetName returns the variable named by an assignment or declaration
// target, or "" for targets without one.
func targetName(e compiler.Expr) string {
	switch t := e.(type) {
	case *compiler.Identifier:
		return t.Name
	case *compiler.ArrayAccess:
		return t.Name
	case *compiler.DictionaryAccess:
		return t.Name
	case *compiler.FieldAccess:
		return targetName(t.Field)
	}
	return ""
}

func paramNames(params []compiler.Stmt) []string {
	names := make([]string, 0, len(params))
	for _, p := range params {
		switch p := p.(type) {
		case *compiler.Identifier:
			names = append(names, p.Name)
		case *compiler.AssignStatement:
			names = append(names, targetName(p.Target))
		}
	}
	return names
}

func signature(keyword, name string, params []compiler.Stmt) string {
	sig := fmt.Sprintf("%s(%s)", name, strings.Join(paramNames(params), ", "))
	if keyword == "" {
		return sig
	}
	return keyword + " " + sig
}

// fieldNames lists the variables a class field declaration introduces.
func fieldNames(f *compiler.FieldDecl) []string {
	switch d := f.Decl.(type) {
	case *compiler.Declaration:
		var names []string
		for _, n := range d.Names {
			if name := targetName(n); name != "" {
				names = append(names, name)
			}
		}
		return names
	case *compiler.SetStatement:
		if name := targetName(d.Target); name != "" {
			return []string{name}
		}
	case *compiler.AssignStatement:
		if name := targetName(d.Target); name != "" {
			return []string{name}
		}
	}
	return nil
}

func functionDecl(n *compiler.FunctionDecl) declaration {
	return declaration{
		name:      n.Name,
		kind:      protocol.SymbolKindFunction,
		detail:    signature("function", n.Name, n.Params),
		selection: span(n.Pos(), len("function ")+len(n.Name)),
	}
}

func classDecl(n *compiler.ClassDecl) declaration {
	detail := "class " + n.Name
	if n.Inherit != "" {
		detail += " inherit " + n.Inherit
	}
	return declaration{
		name:      n.Name,
		kind:      protocol.SymbolKindClass,
		detail:    detail,
		selection: span(n.Pos(), len("class ")+len(n.Name)),
	}
}

func callbackDecl(n *compiler.Callback) declaration {
	return declaration{
		name:      n.Name,
		kind:      protocol.SymbolKindEvent,
		detail:    signature("callback", n.Name, n.Params),
		selection: span(n.Pos(), len("callback ")+len(n.Name)),
	}
}

func variableDecls(n *compiler.Declaration) []declaration {
	var decls []declaration
	for _, target := range n.Names {
		name := targetName(target)
		if name == "" {
			continue
		}
		decls = append(decls, declaration{
			name:      name,
			kind:      protocol.SymbolKindVariable,
			detail:    "declare " + name,
			selection: span(target.Pos(), len(name)),
		})
	}
	return decls
}

// declarationsOf collects every function, class, method, callback and
// declared variable in tree, in source order.
func declarationsOf(tree *compiler.Block) []declaration {
	if tree == nil {
		return nil
	}

	var decls []declaration
	compiler.Walk(tree, func(n compiler.Node) bool {
		switch n := n.(type) {
		case *compiler.FunctionDecl:
			decls = append(decls, functionDecl(n))
		case *compiler.ClassDecl:
			decls = append(decls, classDecl(n))
		case *compiler.MethodDecl:
			decls = append(decls, declaration{
				name:      n.Name,
				kind:      protocol.SymbolKindMethod,
				detail:    signature("method", n.Name, n.Params),
				selection: span(n.Pos(), len(n.Name)),
			})
		case *compiler.Callback:
			decls = append(decls, callbackDecl(n))
		case *compiler.Declaration:
			decls = append(decls, variableDecls(n)...)
			return false
		}
		return true
	})
	return decls
}

// symbolsFor builds the outline of a document: top-level functions,
// classes with their members, callbacks and declared variables.
func symbolsFor(tree *compiler.Block) []protocol.DocumentSymbol {
	symbols := []protocol.DocumentSymbol{}
	if tree == nil {
		return symbols
	}

	for _, stmt := range tree.Statements {
		switch n := stmt.(type) {
		case *compiler.FunctionDecl:
			symbols = append(symbols, functionDecl(n).symbol())
		case *compiler.Callback:
			symbols = append(symbols, callbackDecl(n).symbol())
		case *compiler.Declaration:
			for _, d := range variableDecls(n) {
				symbols = append(symbols, d.symbol())
			}
		case *compiler.ClassDecl:
			class := classDecl(n).symbol()
			class.Children = classMembers(n)
			symbols = append(symbols, class)
		}
	}
	return symbols
}

func classMembers(c *compiler.ClassDecl) []protocol.DocumentSymbol {
	children := []protocol.DocumentSymbol{}
	for _, m := range c.Members {
		switch m := m.(type) {
		case *compiler.MethodDecl:
			d := declaration{
				name:      m.Name,
				kind:      protocol.SymbolKindMethod,
				detail:    memberDetail(m.Modifier, signature("", m.Name, m.Params)),
				selection: span(m.Pos(), len(m.Name)),
			}
			children = append(children, d.symbol())
		case *compiler.ConstructorDecl:
			d := declaration{
				name:      "init",
				kind:      protocol.SymbolKindConstructor,
				detail:    memberDetail(m.Modifier, signature("", "init", m.Params)),
				selection: span(m.Pos(), len("init")),
			}
			children = append(children, d.symbol())
		case *compiler.FieldDecl:
			for _, name := range fieldNames(m) {
				d := declaration{
					name:      name,
					kind:      protocol.SymbolKindField,
					detail:    memberDetail(m.Modifier, name),
					selection: span(m.Pos(), len(name)),
				}
				children = append(children, d.symbol())
			}
		}
	}
	return children
}

func memberDetail(mod compiler.Modifier, text string) string {
	if mod == compiler.ModifierNone {
		return text
	}
	return mod.String() + " " + text
}

func (d declaration) symbol() protocol.DocumentSymbol {
	detail := d.detail
	return protocol.DocumentSymbol{
		Name:           d.name,
		Detail:         &detail,
		Kind:           d.kind,
		Range:          d.selection,
		SelectionRange: d.selection,
	}
}

// referencesTo returns the ranges of every use and definition of name.
func referencesTo(tree *compiler.Block, name string) []protocol.Range {
	if tree == nil {
		return nil
	}

	var ranges []protocol.Range
	compiler.Walk(tree, func(n compiler.Node) bool {
		switch n := n.(type) {
		case *compiler.Identifier:
			if n.Name == name {
				ranges = append(ranges, span(n.Pos(), len(name)))
			}
		case *compiler.FunctionCall:
			if n.Name == name {
				ranges = append(ranges, span(n.Pos(), len(name)))
			}
		case *compiler.ArrayAccess:
			if n.Name == name {
				ranges = append(ranges, span(n.Pos(), len(name)))
			}
		case *compiler.DictionaryAccess:
			if n.Name == name {
				ranges = append(ranges, span(n.Pos(), len(name)))
			}
		}
		return true
	})
	for _, d := range declarationsOf(tree) {
		if d.name == name && d.kind != protocol.SymbolKindVariable {
			ranges = append(ranges, d.selection)
		}
	}
	return ranges
}

// completionsFor offers keywords and names declared in tree that start
// with prefix.
func completionsFor(tree *compiler.Block, prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	lowerPrefix := strings.ToLower(prefix)

	keywords := compiler.Keywords()
	sort.Strings(keywords)
	for _, kw := range keywords {
		if strings.HasPrefix(kw, lowerPrefix) {
			kind := protocol.CompletionItemKindKeyword
			detail := "keyword"
			text := kw
			items = append(items, protocol.CompletionItem{
				Label:      kw,
				Kind:       &kind,
				Detail:     &detail,
				InsertText: &text,
			})
		}
	}

	seen := make(map[string]bool)
	for _, d := range declarationsOf(tree) {
		if seen[d.name] || !strings.HasPrefix(strings.ToLower(d.name), lowerPrefix) {
			continue
		}
		seen[d.name] = true
		kind := completionKind(d.kind)
		detail := d.detail
		text := d.name
		items = append(items, protocol.CompletionItem{
			Label:      d.name,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &text,
		})
	}

	// Limit results
	const maxItems = 100
	if len(items) > maxItems {
		items = items[:maxItems]
	}

	return items
}

func completionKind(k protocol.SymbolKind) protocol.CompletionItemKind {
	switch k {
	case protocol.SymbolKindFunction:
		return protocol.CompletionItemKindFunction
	case protocol.SymbolKindClass:
		return protocol.CompletionItemKindClass
	case protocol.SymbolKindMethod:
		return protocol.CompletionItemKindMethod
	case protocol.SymbolKindEvent:
		return protocol.CompletionItemKindEvent
	}
	return protocol.CompletionItemKindVariable
}

// hoverFor describes word: a keyword, or the first declaration of that name.
func hoverFor(tree *compiler.Block, word string) *protocol.Hover {
	if _, ok := compiler.LookupKeyword(word); ok {
		return &protocol.Hover{
			Contents: protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: fmt.Sprintf("**%s** (keyword)", word),
			},
		}
	}

	for _, d := range declarationsOf(tree) {
		if d.name != word {
			continue
		}
		return &protocol.Hover{
			Contents: protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: "```prose\n" + d.detail + "\n```",
			},
			Range: &d.selection,
		}
	}
	return nil
}
