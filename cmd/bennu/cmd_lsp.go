package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/bennu/lsp"
)

const version = "0.1.0"

func newLSPCmd() *cobra.Command {
	var (
		grammarPath string
		start       string
		skipSpace   bool
	)

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start a language server that reports parse errors for a grammar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if grammarPath == "" || start == "" {
				return fmt.Errorf("lsp needs --grammar and --start")
			}

			g, err := compileGrammar(grammarPath, skipSpace)
			if err != nil {
				return err
			}
			if _, ok := g.Rule(start); !ok {
				return fmt.Errorf("start production %s is not defined in %s", start, grammarPath)
			}

			server := lsp.NewServer(g, start, version)
			return server.RunStdio()
		},
	}

	cmd.Flags().StringVarP(&grammarPath, "grammar", "g", "", "EBNF grammar file")
	cmd.Flags().StringVarP(&start, "start", "s", "", "start production")
	cmd.Flags().BoolVar(&skipSpace, "skip-space", true, "skip white space before the tokens of capitalized productions")

	return cmd
}
