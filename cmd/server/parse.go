package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nomenclator/internal/fieldblock"
)

func newParseCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse a CSV field file and print its groups as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s failed: %w", args[0], err)
			}
			defer f.Close()

			groups, err := fieldblock.NewParser(c.logger.Named("parser")).ParseReader(f)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"fields": groups})
		},
	}
}
