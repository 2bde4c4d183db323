// Package manifest handles prose.toml project configuration.
package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/chazu/prose/compiler"
)

// FileName is the name of the project manifest.
const FileName = "prose.toml"

// Manifest represents a prose.toml project configuration.
type Manifest struct {
	Project Project     `toml:"project"`
	Source  Source      `toml:"source"`
	Lexer   LexerConfig `toml:"lexer"`
	Cache   CacheConfig `toml:"cache"`

	// Dir is the directory containing the prose.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Source configures source file locations.
type Source struct {
	Dirs      []string `toml:"dirs"`
	Entry     string   `toml:"entry"`
	Extension string   `toml:"extension"`
}

// LexerConfig selects tokenizer behavior.
type LexerConfig struct {
	Literals    string `toml:"literals"`     // "typed" or "compat"
	SignFolding *bool  `toml:"sign_folding"` // nil means enabled
}

// CacheConfig configures the parse cache.
type CacheConfig struct {
	Path    string `toml:"path"`
	Enabled *bool  `toml:"enabled"` // nil means enabled
}

// Default returns the manifest used when a directory has no prose.toml.
func Default(dir string) (*Manifest, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	m := &Manifest{Dir: abs}
	m.applyDefaults()
	return m, nil
}

// Load parses a prose.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	m.applyDefaults()
	if _, err := m.LexerOptions(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

func (m *Manifest) applyDefaults() {
	if len(m.Source.Dirs) == 0 {
		m.Source.Dirs = []string{"src"}
	}
	if m.Source.Extension == "" {
		m.Source.Extension = ".prose"
	}
	if !strings.HasPrefix(m.Source.Extension, ".") {
		m.Source.Extension = "." + m.Source.Extension
	}
	if m.Cache.Path == "" {
		m.Cache.Path = filepath.Join(".prose", "cache.db")
	}
}

// FindAndLoad walks up from startDir to find a prose.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// LexerOptions translates the [lexer] table into compiler options.
func (m *Manifest) LexerOptions() ([]compiler.Option, error) {
	mode, ok := compiler.ParseLiteralMode(m.Lexer.Literals)
	if !ok {
		return nil, fmt.Errorf("lexer.literals: unknown mode %q (want \"typed\" or \"compat\")", m.Lexer.Literals)
	}
	opts := []compiler.Option{compiler.WithLiteralMode(mode)}
	if m.Lexer.SignFolding != nil {
		opts = append(opts, compiler.WithSignFolding(*m.Lexer.SignFolding))
	}
	return opts, nil
}

// CacheEnabled reports whether the parse cache should be used.
func (m *Manifest) CacheEnabled() bool {
	return m.Cache.Enabled == nil || *m.Cache.Enabled
}

// CachePath returns the absolute path of the parse cache database.
func (m *Manifest) CachePath() string {
	if filepath.IsAbs(m.Cache.Path) {
		return m.Cache.Path
	}
	return filepath.Join(m.Dir, m.Cache.Path)
}

// SourceDirPaths returns absolute paths for the configured source directories.
func (m *Manifest) SourceDirPaths() []string {
	var paths []string
	for _, d := range m.Source.Dirs {
		paths = append(paths, filepath.Join(m.Dir, d))
	}
	return paths
}

// EntryPath returns the absolute path of the entry file, or "" if none is
// configured.
func (m *Manifest) EntryPath() string {
	if m.Source.Entry == "" {
		return ""
	}
	if filepath.IsAbs(m.Source.Entry) {
		return m.Source.Entry
	}
	return filepath.Join(m.Dir, m.Source.Entry)
}

// SourceFiles returns every source file under the source directories,
// sorted. Missing directories are skipped.
func (m *Manifest) SourceFiles() ([]string, error) {
	var files []string
	for _, root := range m.SourceDirPaths() {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == m.Source.Extension {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", root, err)
		}
	}
	sort.Strings(files)
	return files, nil
}
