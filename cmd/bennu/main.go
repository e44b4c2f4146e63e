package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		verbosity  int
		logPath    string
		configPath string
	)

	rootCmd := &cobra.Command{
		Use:          "bennu",
		Short:        "Packrat parser combinators and EBNF grammar tools",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, configPath); err != nil {
				return err
			}

			var path *string
			if logPath != "" {
				path = &logPath
			}
			commonlog.Configure(verbosity, path)
			return nil
		},
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "write logs to this file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./bennu.yaml)")

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newMatchCmd())
	rootCmd.AddCommand(newLSPCmd())

	return rootCmd
}
