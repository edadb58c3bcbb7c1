package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nomenclator/internal/app"
	"nomenclator/internal/metrics"
	"nomenclator/internal/platform/database"
	"nomenclator/internal/repository"
)

func newExportCmd(c *cli) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the saved nomenclatures to an XLSX file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = c.cfg.Export.Filename
			}

			db, err := database.New(cmd.Context(), c.cfg.Database)
			if err != nil {
				return err
			}
			defer func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			}()
			if err := database.Migrate(db); err != nil {
				return err
			}

			svc := app.NewNomenclatureService(
				repository.NewNomenclatureRepository(db),
				nil,
				metrics.New(),
				c.logger.Named("nomenclature"),
			)

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s failed: %w", output, err)
			}
			count, err := svc.Export(cmd.Context(), f)
			if closeErr := f.Close(); err == nil && closeErr != nil {
				err = fmt.Errorf("close %s failed: %w", output, closeErr)
			}
			if err != nil {
				_ = os.Remove(output)
				return err
			}

			c.logger.Info("export written", zap.String("path", output), zap.Int("records", count))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", count, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (defaults to export.filename)")
	return cmd
}
