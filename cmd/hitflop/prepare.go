package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/cognicore/hitflop/internal/prepare"
)

func newPrepareCmd(a *app) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Copy TF-IDF delta keyword tables into the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if source == "" {
				return errors.New("--source required")
			}
			p := &prepare.Preparer{Source: source, Root: a.dataDir, Logger: &a.logger}
			results, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "Analysis root holding TF-IDF_Drama and TF-IDF_Movie (required)")
	return cmd
}
