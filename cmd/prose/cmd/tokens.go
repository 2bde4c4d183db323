package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chazu/prose/compiler"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens FILE",
	Short: "Print the token stream of a file",
	Long: `Print every token of FILE, one per line, with its line and column.
Use - to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}

func runTokens(cmd *cobra.Command, args []string) error {
	opts, err := lexerOptions()
	if err != nil {
		return err
	}
	src, err := readSource(args[0])
	if err != nil {
		return err
	}

	toks, err := compiler.Tokenize(src, opts...)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, tok := range toks {
		fmt.Fprintf(w, "%d:%d\t%s\t%s\n", tok.Pos.Line, tok.Pos.Column, tok.Type, tokenText(tok))
	}
	return w.Flush()
}

func tokenText(tok compiler.Token) string {
	switch tok.Type {
	case compiler.TokenString:
		return quote(tok.Literal)
	case compiler.TokenIndent:
		return fmt.Sprintf("%d tab(s)", len(tok.Literal))
	case compiler.TokenEOF:
		return ""
	}
	return tok.Literal
}
