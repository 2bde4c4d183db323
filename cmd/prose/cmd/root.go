package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/chazu/prose/compiler"
	"github.com/chazu/prose/manifest"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("prose.cli")

var (
	cfgPath   string
	verbosity int
)

var rootCmd = &cobra.Command{
	Use:   "prose",
	Short: "Lexer, parser and tooling for the prose scripting language",
	Long: `prose reads programs written in an English-keyword scripting language
and turns them into syntax trees.

Commands:
  tokens   - print the token stream of a file
  parse    - print the syntax tree (tree, json or cbor)
  check    - parse a project from its entry file and follow imports
  fmt      - format source files
  cache    - inspect or prune the parse cache
  lsp      - run the language server on stdio`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		commonlog.Configure(verbosity, nil)
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	return err
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "project directory or prose.toml (default: search upward from .)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable)")
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

// loadManifest loads the manifest named by --config, or the nearest
// prose.toml above the working directory, or the defaults for the working
// directory when there is none.
func loadManifest() (*manifest.Manifest, error) {
	if cfgPath != "" {
		dir := cfgPath
		if filepath.Base(dir) == manifest.FileName {
			dir = filepath.Dir(dir)
		}
		return manifest.Load(dir)
	}

	m, err := manifest.FindAndLoad(".")
	if err != nil {
		return nil, err
	}
	if m != nil {
		log.Debugf("using %s", filepath.Join(m.Dir, manifest.FileName))
		return m, nil
	}
	return manifest.Default(".")
}

// lexerOptions returns the lexer options of the active manifest.
func lexerOptions() ([]compiler.Option, error) {
	m, err := loadManifest()
	if err != nil {
		return nil, err
	}
	return m.LexerOptions()
}

// collectSourceFiles resolves paths to a flat list of source files. With
// no paths, the manifest's source directories are scanned.
func collectSourceFiles(m *manifest.Manifest, paths []string) ([]string, error) {
	if len(paths) == 0 {
		return m.SourceFiles()
	}

	var result []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("invalid path %q: %w", p, err)
		}

		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("cannot access %q: %w", abs, err)
		}

		if !info.IsDir() {
			result = append(result, abs)
			continue
		}
		err = filepath.Walk(abs, func(path string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !fi.IsDir() && strings.HasSuffix(path, m.Source.Extension) {
				result = append(result, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// readSource reads a file, or stdin when path is "-".
func readSource(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
