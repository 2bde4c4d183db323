package cmd

import (
	"github.com/spf13/cobra"

	"github.com/chazu/prose/server"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the language server on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := lexerOptions()
		if err != nil {
			return err
		}
		return server.NewLSP(Version, opts...).Run()
	},
}

func init() {
	rootCmd.AddCommand(lspCmd)
}
