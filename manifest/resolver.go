package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/prose/compiler"
)

var log = commonlog.GetLogger("prose.manifest")

// ParseFunc parses the source file at path.
type ParseFunc func(path string) (*compiler.Block, error)

// Unit is one resolved project source file.
type Unit struct {
	Module  string          // dotted module name
	Path    string          // absolute file path
	Tree    *compiler.Block // parsed program
	Imports []string        // modules named by the file's import statements
}

// Resolver follows import statements from an entry file to every project
// module it reaches.
type Resolver struct {
	manifest *Manifest
	parse    ParseFunc

	units    []Unit
	state    map[string]visitState
	external map[string]bool
	stack    []string
}

type visitState int

const (
	unvisited visitState = iota
	visiting
	visited
)

// NewResolver creates a resolver that reads files with parse.
func NewResolver(m *Manifest, parse ParseFunc) *Resolver {
	return &Resolver{
		manifest: m,
		parse:    parse,
	}
}

// Resolve parses entry and, transitively, every project module it imports.
// Units are returned in load order (dependencies before dependents).
// Imports that name no file under the source directories are returned as
// external modules, sorted.
func (r *Resolver) Resolve(entry string) ([]Unit, []string, error) {
	abs, err := filepath.Abs(entry)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot resolve path %s: %w", entry, err)
	}

	r.units = nil
	r.state = make(map[string]visitState)
	r.external = make(map[string]bool)
	r.stack = nil

	if err := r.visit(r.moduleFor(abs), abs); err != nil {
		return nil, nil, err
	}

	external := make([]string, 0, len(r.external))
	for name := range r.external {
		external = append(external, name)
	}
	sort.Strings(external)
	return r.units, external, nil
}

func (r *Resolver) visit(module, path string) error {
	switch r.state[module] {
	case visited:
		return nil
	case visiting:
		return r.cycleError(module)
	}

	r.state[module] = visiting
	r.stack = append(r.stack, module)
	log.Debugf("resolving %s (%s)", module, path)

	tree, err := r.parse(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	imports := Imports(tree, r.manifest.Source.Extension)

	for _, name := range imports {
		file, ok := r.locate(name)
		if !ok {
			if !r.external[name] {
				log.Debugf("%s imports external module %s", module, name)
			}
			r.external[name] = true
			continue
		}
		if err := r.visit(name, file); err != nil {
			return err
		}
	}

	r.stack = r.stack[:len(r.stack)-1]
	r.state[module] = visited
	r.units = append(r.units, Unit{
		Module:  module,
		Path:    path,
		Tree:    tree,
		Imports: imports,
	})
	return nil
}

func (r *Resolver) cycleError(module string) error {
	start := 0
	for i, name := range r.stack {
		if name == module {
			start = i
			break
		}
	}
	chain := append(append([]string{}, r.stack[start:]...), module)
	return fmt.Errorf("import cycle: %s", strings.Join(chain, " -> "))
}

// locate finds the file for a module in the first source directory that
// has one.
func (r *Resolver) locate(module string) (string, bool) {
	rel := ModuleFile(module, r.manifest.Source.Extension)
	for _, dir := range r.manifest.SourceDirPaths() {
		path := filepath.Join(dir, rel)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// moduleFor names a file by its place under the source directories, falling
// back to its base name for files outside them.
func (r *Resolver) moduleFor(path string) string {
	for _, dir := range r.manifest.SourceDirPaths() {
		if name, err := ModuleName(dir, path); err == nil {
			return name
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Imports lists the modules a program imports, in source order and without
// duplicates. Quoted path spellings are normalized to dotted names.
func Imports(tree *compiler.Block, ext string) []string {
	if tree == nil {
		return nil
	}
	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		name = normalizeModule(name, ext)
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}

	compiler.Walk(tree, func(n compiler.Node) bool {
		switch n := n.(type) {
		case *compiler.ImportStatement:
			for _, m := range n.Modules {
				add(m)
			}
		case *compiler.FromImportStatement:
			add(n.Module)
		}
		return true
	})
	return names
}
