package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/bennu/ebnf"
	"github.com/dhamidi/bennu/format"
	"github.com/dhamidi/bennu/text"
)

func newMatchCmd() *cobra.Command {
	var (
		grammarPath  string
		start        string
		skipSpace    bool
		memo         bool
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "match [file]",
		Short: "Parse a file with a grammar and print its syntax tree",
		Long: `Parse a file, or standard input when no file is given, from the start
production of an EBNF grammar. On success the concrete syntax tree is printed;
on failure the positioned parse error is printed and the command fails.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if grammarPath == "" {
				return fmt.Errorf("no grammar given: use --grammar or set grammar in bennu.yaml")
			}

			encoder, err := format.NewEncoder(outputFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			g, err := compileGrammar(grammarPath, skipSpace, ebnf.WithMemo(memo))
			if err != nil {
				return err
			}
			if start == "" {
				return fmt.Errorf("no start production given: use --start")
			}

			filename, src, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			node, err := g.Parse(filename, start, src)
			if err != nil {
				if encErr := encoder.EncodeError(err); encErr != nil {
					return encErr
				}
				cmd.SilenceErrors = true
				return err
			}
			return encoder.Encode(node)
		},
	}

	cmd.Flags().StringVarP(&grammarPath, "grammar", "g", "", "EBNF grammar file")
	cmd.Flags().StringVarP(&start, "start", "s", "", "start production")
	cmd.Flags().BoolVar(&skipSpace, "skip-space", true, "skip white space before the tokens of capitalized productions")
	cmd.Flags().BoolVar(&memo, "memo", true, "memoize productions")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "sexpr", "output format: "+strings.Join(format.Formats, ", "))

	return cmd
}

// compileGrammar loads and compiles the grammar at path.
func compileGrammar(path string, skipSpace bool, opts ...ebnf.Option) (*ebnf.Grammar, error) {
	log := commonlog.GetLogger("bennu.cmd")

	grammar, err := ebnf.Load(path)
	if err != nil {
		return nil, err
	}

	if skipSpace {
		opts = append(opts, ebnf.WithSkip(text.Spaces))
	}
	g, err := ebnf.Compile(grammar, opts...)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", path, err)
	}
	log.Debugf("compiled %s: %d productions", path, len(grammar))

	return g, nil
}

func readInput(stdin io.Reader, args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return "", string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("read input: %w", err)
	}
	return args[0], string(data), nil
}
