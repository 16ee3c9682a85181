package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/trustlens/internal/adapters/eventstore"
	app "github.com/okian/trustlens/internal/app"
	"github.com/okian/trustlens/internal/config"
	"github.com/okian/trustlens/internal/domain/quality"
	"github.com/okian/trustlens/internal/render"
	"github.com/okian/trustlens/pkg/logger"
	"github.com/okian/trustlens/pkg/metrics"
)

// Metrics server timeout constants.
const (
	readHeaderTimeout = 5 * time.Second
	outFilePermission = 0o644
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env). A config that
	// could mis-weight the score fails here, before any day is read.
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Optional Prometheus endpoint for the duration of the run.
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Error(ctx, "failed to open event store", logger.Error(err))
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	if cfg.EventsCSV != "" {
		f, err := os.Open(cfg.EventsCSV)
		if err != nil {
			log.Error(ctx, "failed to open events csv", logger.Error(err))
			os.Exit(1)
		}
		stats, err := eventstore.ImportCSV(ctx, store, f)
		_ = f.Close()
		if err != nil {
			log.Error(ctx, "csv import failed", logger.Error(err))
			os.Exit(1)
		}
		log.Info(ctx, "csv imported",
			logger.Int("imported", stats.Imported),
			logger.Int("malformed", stats.Malformed),
		)
	}

	svc, err := app.New(store,
		app.WithLogger(log),
		app.WithWeights(cfg.Weights()),
		app.WithWindowDays(cfg.WindowDays),
		app.WithAlertThreshold(cfg.TrustAlertThreshold),
		app.WithExtractor(quality.NewExtractor(
			quality.WithCompletenessThreshold(cfg.CompletenessThreshold),
			quality.WithVolumeMultiplier(cfg.VolumeMultiplier),
			quality.WithOutlierMultiplier(cfg.OutlierMultiplier),
			quality.WithDriftThreshold(cfg.DriftThreshold),
			quality.WithDuplicateKey(cfg.DupFields()),
		)),
	)
	if err != nil {
		log.Error(ctx, "failed to build pipeline", logger.Error(err))
		os.Exit(1)
	}

	table, err := svc.Run(ctx)
	if err != nil {
		log.Error(ctx, "pipeline run failed", logger.Error(err))
		os.Exit(1)
	}

	if cfg.OutCSV != "" {
		if err := writeFile(cfg.OutCSV, func(f *os.File) error {
			return render.WriteCSV(f, table)
		}); err != nil {
			log.Error(ctx, "failed to write csv report", logger.Error(err))
			os.Exit(1)
		}
		log.Info(ctx, "csv report written", logger.String("path", cfg.OutCSV))
	}
	if cfg.OutMemo != "" {
		if err := writeFile(cfg.OutMemo, func(f *os.File) error {
			return render.WriteMemo(f, table, cfg.ReportDays, cfg.TrustAlertThreshold)
		}); err != nil {
			log.Error(ctx, "failed to write memo", logger.Error(err))
			os.Exit(1)
		}
		log.Info(ctx, "decision memo written", logger.String("path", cfg.OutMemo))
	}
}

// openStore picks SQLite when a path is configured, otherwise an in-memory
// store fed solely by the CSV import.
func openStore(ctx context.Context, cfg *config.Config) (eventstore.Store, error) {
	if cfg.DBPath == "" {
		return eventstore.NewMemoryStore(), nil
	}
	return eventstore.OpenSQLite(ctx, cfg.DBPath)
}

func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: readHeaderTimeout}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Get().Warn(ctx, "metrics server stopped", logger.Error(err))
	}
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, outFilePermission)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
