package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/rxcheck/rxcheck/internal/config"
	"github.com/rxcheck/rxcheck/internal/domain/catalog"
	"github.com/rxcheck/rxcheck/internal/domain/clinician"
	"github.com/rxcheck/rxcheck/internal/domain/persistence"
	"github.com/rxcheck/rxcheck/internal/domain/prescription"
	"github.com/rxcheck/rxcheck/internal/platform/analysis"
	"github.com/rxcheck/rxcheck/internal/platform/blobstore"
	"github.com/rxcheck/rxcheck/internal/platform/db"
	"github.com/rxcheck/rxcheck/internal/platform/kvstore"
	"github.com/rxcheck/rxcheck/internal/platform/telemetry"
	"github.com/rxcheck/rxcheck/migrations"
)

const version = "0.1.0"

// app holds the services shared by the HTTP server and the CLI commands.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger

	store    kvstore.Store
	pool     *pgxpool.Pool
	reports  blobstore.Store
	analysis *analysis.Client
	reporter *telemetry.Reporter

	persist       *persistence.Store
	prescriptions *prescription.Service
	catalog       *catalog.Service
	clinicians    *clinician.Service
}

func newLogger(env string, out io.Writer) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	a := &app{cfg: cfg, logger: logger}

	store, pool, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.store, a.pool = store, pool

	if cfg.ReportDir != "" {
		fs, err := blobstore.NewFileStore(cfg.ReportDir)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.reports = fs
	} else {
		a.reports = blobstore.NewMemoryStore()
	}

	a.reporter, err = telemetry.NewReporter(telemetry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Env,
		Release:     "rxcheck@" + version,
		SampleRate:  cfg.SentrySampleRate,
	})
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.analysis = analysis.NewClient(cfg.AnalysisBaseURL, cfg.AnalysisTimeout, logger)
	logger.Info().Str("base_url", a.analysis.BaseURL()).Dur("timeout", cfg.AnalysisTimeout).Msg("analysis backend configured")
	a.persist = persistence.NewStore(store, logger)

	a.prescriptions = prescription.NewService(a.persist, prescription.NewIDSource(nil), logger)
	a.prescriptions.SetEvaluator(prescription.StrategyRemote, prescription.NewRemoteEvaluator(a.analysis, nil, logger))
	if err := a.prescriptions.SetDefaultStrategy(prescription.Strategy(cfg.Evaluator)); err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.prescriptions.SetReports(a.analysis, a.reports)
	a.prescriptions.SetReporter(a.reporter)

	medicines := catalog.DefaultMedicines()
	if cfg.CatalogFile != "" {
		extra, err := catalog.LoadCSVFile(cfg.CatalogFile)
		if err != nil {
			logger.Warn().Err(err).Str("file", cfg.CatalogFile).Msg("medicine dataset not loaded, using built-in catalog")
		} else {
			medicines = append(medicines, extra...)
			logger.Info().Int("count", len(extra)).Msg("medicine dataset loaded")
		}
	}
	a.catalog = catalog.NewService(catalog.NewIndex(medicines), logger)
	if cfg.RemoteSearch {
		a.catalog.SetRemote(a.analysis)
	}

	a.clinicians = clinician.NewService(a.persist, logger)
	return a, nil
}

// openStore connects the configured key-value backend. The pool is non-nil
// only for the postgres backend.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (kvstore.Store, *pgxpool.Pool, error) {
	switch cfg.StoreBackend {
	case config.StoreFile:
		s, err := kvstore.NewFileStore(cfg.StoreFile)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("path", s.Path()).Msg("using file store")
		return s, nil, nil
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBSchema, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, nil, err
		}
		if err := db.CreateSchema(ctx, pool, cfg.DBSchema, migrations.FS); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info().Str("schema", cfg.DBSchema).Msg("connected to database")
		return kvstore.NewPostgresStore(pool), pool, nil
	case config.StoreMongo:
		s, err := kvstore.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("database", cfg.MongoDatabase).Msg("connected to mongodb")
		return s, nil, nil
	default:
		logger.Warn().Msg("using in-memory store, data is lost on restart")
		return kvstore.NewMemoryStore(), nil, nil
	}
}

// Close releases backend connections and flushes pending error reports.
func (a *app) Close(ctx context.Context) {
	a.reporter.Flush(2 * time.Second)
	if c, ok := a.store.(kvstore.Closer); ok {
		if err := c.Close(ctx); err != nil {
			a.logger.Error().Err(err).Msg("failed to close store")
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
