package main

import (
	"context"

	"github.com/catalystgo/logger/logger"
	"github.com/spf13/cobra"

	"github.com/escalopa/chain-migrate/internal/config"
	"github.com/escalopa/chain-migrate/internal/migrate"
)

func main() {
	ctx := context.Background()

	logger.SetLevel(config.LogLevel())

	rootCmd := &cobra.Command{
		Use:          "chain-migrate",
		Short:        "Migrate a chain deployment to the new config schema",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(migrateCommand())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Fatalf(ctx, "run: %v", err)
	}
}

func migrateCommand() *cobra.Command {
	var opts migrate.Options

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the chain data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return migrate.Run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ChainDir, "chain-dir", "d", "", "the old chain dir")
	cmd.Flags().StringVarP(&opts.OutDir, "out-dir", "o", "", "the output dir for the upgraded chain")
	cmd.Flags().StringVarP(&opts.ChainName, "chain-name", "n", "", "name of the chain")
	cmd.Flags().BoolVar(&opts.VerifyData, "verify-data", false, "open each migrated key database read-only and check it walks cleanly")

	_ = cmd.MarkFlagRequired("chain-dir")
	_ = cmd.MarkFlagRequired("out-dir")
	_ = cmd.MarkFlagRequired("chain-name")

	return cmd
}
