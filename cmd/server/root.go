package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nomenclator/internal/config"
	"nomenclator/internal/logging"
)

// cli holds state shared by subcommands once the persistent pre-run has
// loaded configuration.
type cli struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "nomenclator",
		Short: "Build, save and export file nomenclatures from CSV field lists",
		Long: `nomenclator serves a small web tool: upload a CSV of **Field** blocks,
pick one value per field to compose a name, save it with project metadata,
and export the saved history as a spreadsheet.

Run without a subcommand to start the HTTP server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(c.configPath)
			if err != nil {
				return err
			}
			if c.verbose {
				cfg.App.LogLevel = "debug"
			}
			logger, err := logging.New(cfg.App.LogLevel, cfg.App.Env)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.cfg = cfg
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", config.Path(), "path to the TOML config file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(c),
		newParseCmd(c),
		newExportCmd(c),
	)
	return root
}
