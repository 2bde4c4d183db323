package cmd

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chazu/prose/cache"
	"github.com/chazu/prose/compiler"
	"github.com/chazu/prose/compiler/hash"
	"github.com/chazu/prose/compiler/wire"
	"github.com/chazu/prose/manifest"
)

var checkNoCache bool

var checkCmd = &cobra.Command{
	Use:   "check [ENTRY]",
	Short: "Parse a project from its entry file and follow imports",
	Long: `Parse ENTRY (default: source.entry from prose.toml) and every project
module it imports, dependencies first. Each module is reported with its
top-level statement count and layout-insensitive tree hash, and advisory
warnings (unbound names, unreachable code) are printed to stderr. Results are kept
in the parse cache so unchanged files are not encoded again.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkNoCache, "no-cache", false, "do not read or write the parse cache")
	rootCmd.AddCommand(checkCmd)
}

// unitReport is the check result for one module.
type unitReport struct {
	Module     string
	Path       string
	Statements int
	TreeHash   string
	Cached     bool
	Warnings   []compiler.Warning
}

// checkReport is the result of checking a project.
type checkReport struct {
	Units    []unitReport
	External []string
}

func runCheck(cmd *cobra.Command, args []string) error {
	m, err := loadManifest()
	if err != nil {
		return err
	}

	entry := m.EntryPath()
	if len(args) == 1 {
		entry = args[0]
	}
	if entry == "" {
		return errors.New("no entry file: pass one or set source.entry in prose.toml")
	}

	var c *cache.Cache
	if m.CacheEnabled() && !checkNoCache {
		c, err = cache.Open(m.CachePath())
		if err != nil {
			return err
		}
		defer c.Close()
	}

	report, err := checkProject(cmd.Context(), m, c, entry)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MODULE\tSTATEMENTS\tHASH\tSOURCE")
	for _, u := range report.Units {
		status := "parsed"
		if u.Cached {
			status = "cached"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", u.Module, u.Statements, u.TreeHash[:12], status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	for _, u := range report.Units {
		for _, warn := range u.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s:%d:%d: warning: %s\n", u.Path, warn.Pos.Line, warn.Pos.Column, warn.Msg)
		}
	}
	for _, name := range report.External {
		fmt.Fprintf(cmd.OutOrStdout(), "external: %s\n", name)
	}
	return nil
}

// checkProject resolves entry and records every module in c. A nil cache
// disables caching.
func checkProject(ctx context.Context, m *manifest.Manifest, c *cache.Cache, entry string) (*checkReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	opts, err := m.LexerOptions()
	if err != nil {
		return nil, err
	}

	digests := make(map[string]string)
	parse := func(path string) (*compiler.Block, error) {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		digests[path] = cache.SourceDigest(src)
		return compiler.Parse(string(src), opts...)
	}

	units, external, err := manifest.NewResolver(m, parse).Resolve(entry)
	if err != nil {
		return nil, err
	}

	report := &checkReport{External: external}
	for _, u := range units {
		r, err := checkUnit(ctx, c, u, digests[u.Path])
		if err != nil {
			return nil, err
		}
		report.Units = append(report.Units, r)
	}
	return report, nil
}

func checkUnit(ctx context.Context, c *cache.Cache, u manifest.Unit, digest string) (unitReport, error) {
	r := unitReport{Module: u.Module, Path: u.Path, Warnings: compiler.Analyze(u.Tree)}

	if c != nil {
		e, err := c.Lookup(ctx, u.Path, digest)
		switch {
		case err == nil:
			r.Statements = e.Statements
			r.TreeHash = e.TreeHash
			r.Cached = true
			log.Debugf("%s: cache hit", u.Module)
			return r, nil
		case !errors.Is(err, cache.ErrNotFound):
			return r, err
		}
	}

	sum := hash.HashTree(u.Tree)
	r.Statements = len(u.Tree.Statements)
	r.TreeHash = hex.EncodeToString(sum[:])

	if c == nil {
		return r, nil
	}
	tree, err := wire.Marshal(u.Tree)
	if err != nil {
		return r, fmt.Errorf("encoding %s: %w", u.Path, err)
	}
	err = c.Store(ctx, &cache.Entry{
		Path:       u.Path,
		Digest:     digest,
		TreeHash:   r.TreeHash,
		Statements: r.Statements,
		Tree:       tree,
	})
	return r, err
}
