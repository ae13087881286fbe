package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cognicore/hitflop/internal/config"
	"github.com/cognicore/hitflop/pkg/hitflop"
	pkgconfig "github.com/cognicore/hitflop/pkg/hitflop/config"
	"github.com/cognicore/hitflop/pkg/hitflop/dataset"
	"github.com/cognicore/hitflop/pkg/hitflop/metrics"
	"github.com/cognicore/hitflop/pkg/hitflop/stoplist"
	"github.com/cognicore/hitflop/pkg/hitflop/store"
	"github.com/cognicore/hitflop/pkg/hitflop/store/sqlite"
)

// app is the state shared by subcommands after the root pre-run.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	dataDir string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "hitflop",
		Short:         "Hit/flop movie and drama text-mining dashboard",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			a.cfg = cfg
			if a.dataDir == "" {
				a.dataDir = cfg.DataDir
			}
			a.logger = config.NewLogger(cfg.AppEnv, cfg.LogLevel)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.dataDir, "data", "d", "", "Data directory (overrides DATA_DIR)")

	root.AddCommand(
		newServeCmd(a),
		newPrepareCmd(a),
		newIndexPostersCmd(a),
		newMCPCmd(a),
	)
	return root
}

// loader builds the cached artifact loader with metrics wired in.
func (a *app) loader(stops *stoplist.Manager) *dataset.Loader {
	return dataset.NewLoader(dataset.LoaderOptions{
		Root:         a.dataDir,
		OverviewPath: a.cfg.OverviewPath,
		Stops:        stops,
		Logger:       &a.logger,
		Observer:     metrics.LoaderObserver{},
	})
}

// dashboard builds the query facade. The SQLite poster index is used when
// POSTER_DB_PATH is set; otherwise posters are read from the parquet tables.
func (a *app) dashboard(ctx context.Context) (*hitflop.Dashboard, error) {
	cl := pkgconfig.Loader{NamesPath: a.cfg.NamesPath, StoplistPath: a.cfg.StoplistPath}
	components, err := cl.Load()
	if err != nil {
		return nil, err
	}

	var posters store.PosterStore
	if a.cfg.PosterDBPath != "" {
		posters, err = sqlite.OpenSQLite(ctx, a.cfg.PosterDBPath)
		if err != nil {
			return nil, err
		}
		a.logger.Info().Str("path", a.cfg.PosterDBPath).Msg("using poster index")
	}

	return hitflop.New(hitflop.Options{
		Loader:        a.loader(components.Stoplist),
		Names:         components.Names,
		Stops:         components.Stoplist,
		Posters:       posters,
		PosterBaseURL: a.cfg.PosterBaseURL,
		Logger:        &a.logger,
		CacheObserver: metrics.LoaderObserver{},
		OnPoster:      metrics.PosterOutcome,
		OnFilter:      metrics.ObserveFilter,
	}), nil
}
