package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/hitflop/pkg/hitflop/internalerr"
	"github.com/cognicore/hitflop/pkg/hitflop/normalize"
	"github.com/cognicore/hitflop/pkg/hitflop/store/sqlite"
)

func newIndexPostersCmd(a *app) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "index-posters",
		Short: "Build the SQLite poster index from the parquet poster tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				dbPath = a.cfg.PosterDBPath
			}
			if dbPath == "" {
				return fmt.Errorf("--db or POSTER_DB_PATH required: %w", internalerr.ErrInvalidConfig)
			}
			ctx := cmd.Context()

			st, err := sqlite.OpenSQLite(ctx, dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			loader := a.loader(nil)
			for _, ct := range []string{normalize.Movie, normalize.Drama} {
				rows, err := loader.Posters(ctx, ct)
				if errors.Is(err, internalerr.ErrNotFound) {
					a.logger.Warn().Str("content_type", ct).Msg("no poster table")
					continue
				}
				if err != nil {
					return err
				}
				n, err := st.UpsertPosters(ctx, ct, rows)
				if err != nil {
					return err
				}
				a.logger.Info().Str("content_type", ct).Int("posters", n).Str("db", dbPath).Msg("indexed posters")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite poster index path (default: POSTER_DB_PATH)")
	return cmd
}
