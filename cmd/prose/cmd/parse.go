package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chazu/prose/compiler"
	"github.com/chazu/prose/compiler/wire"
)

var parseFormat string

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Print the syntax tree of a file",
	Long: `Parse FILE and print its syntax tree. Use - to read from stdin.

Formats:
  tree  - indented outline with positions (default)
  json  - indented JSON documents
  cbor  - canonical CBOR, as handed to the evaluator`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "tree", "output format: tree, json or cbor")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	opts, err := lexerOptions()
	if err != nil {
		return err
	}
	src, err := readSource(args[0])
	if err != nil {
		return err
	}

	tree, err := compiler.Parse(src, opts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch parseFormat {
	case "tree":
		writeTree(out, wire.FromNode(tree), 0)
		return nil
	case "json":
		data, err := wire.MarshalJSON(tree)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "cbor":
		data, err := wire.Marshal(tree)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}
	return fmt.Errorf("unknown format %q (want tree, json or cbor)", parseFormat)
}

// writeTree prints a document as an indented outline. Scalar fields share
// the node's line; child nodes and lists follow, one level deeper.
func writeTree(w io.Writer, d *wire.Doc, depth int) {
	pad := strings.Repeat("  ", depth)
	if d == nil {
		fmt.Fprintf(w, "%s<nil>\n", pad)
		return
	}

	names := make([]string, 0, len(d.Fields))
	for name := range d.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var scalars []string
	var nested []string
	for _, name := range names {
		switch v := d.Fields[name].(type) {
		case *wire.Doc, []any, map[string]any:
			nested = append(nested, name)
		case nil:
		case string:
			scalars = append(scalars, fmt.Sprintf("%s=%q", name, v))
		default:
			scalars = append(scalars, fmt.Sprintf("%s=%v", name, v))
		}
	}

	fmt.Fprintf(w, "%s%s @%d:%d", pad, d.Kind, d.Line, d.Column)
	if len(scalars) > 0 {
		fmt.Fprintf(w, " %s", strings.Join(scalars, " "))
	}
	fmt.Fprintln(w)

	for _, name := range nested {
		fmt.Fprintf(w, "%s  %s:\n", pad, name)
		writeValue(w, d.Fields[name], depth+2)
	}
}

func writeValue(w io.Writer, v any, depth int) {
	pad := strings.Repeat("  ", depth)
	switch v := v.(type) {
	case *wire.Doc:
		writeTree(w, v, depth)
	case []any:
		if len(v) == 0 {
			fmt.Fprintf(w, "%s(empty)\n", pad)
		}
		for _, item := range v {
			writeValue(w, item, depth)
		}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "%s%s:\n", pad, k)
			writeValue(w, v[k], depth+1)
		}
	case nil:
		fmt.Fprintf(w, "%s<nil>\n", pad)
	case string:
		fmt.Fprintf(w, "%s%q\n", pad, v)
	default:
		fmt.Fprintf(w, "%s%v\n", pad, v)
	}
}
