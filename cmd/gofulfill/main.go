// Command gofulfill serves the fulfillment webhook.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/firestore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"

	"github.com/mihaimyh/gofulfill/internal/config"
	"github.com/mihaimyh/gofulfill/pkg/api"
	"github.com/mihaimyh/gofulfill/pkg/gofulfill"
	zlog "github.com/mihaimyh/gofulfill/pkg/gofulfill/logger/zerolog"
	prommetrics "github.com/mihaimyh/gofulfill/pkg/gofulfill/metrics/prometheus"
	chirouter "github.com/mihaimyh/gofulfill/router/chi"
	echorouter "github.com/mihaimyh/gofulfill/router/echo"
	fiberrouter "github.com/mihaimyh/gofulfill/router/fiber"
	ginrouter "github.com/mihaimyh/gofulfill/router/gin"
	gorillarouter "github.com/mihaimyh/gofulfill/router/gorilla"
	bqstorage "github.com/mihaimyh/gofulfill/storage/bigquery"
	fsstorage "github.com/mihaimyh/gofulfill/storage/firestore"
	"github.com/mihaimyh/gofulfill/storage/memory"
	pgstorage "github.com/mihaimyh/gofulfill/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "gofulfill: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log)
	logger.Info().
		Str("name", cfg.App.Name).
		Str("environment", cfg.App.Environment).
		Str("driver", cfg.Storage.Driver).
		Str("router", cfg.Server.Router).
		Msg("starting")

	var mounts []api.Mount
	var metrics gofulfill.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = prommetrics.NewMetrics(reg, cfg.Metrics.Namespace)
		mounts = append(mounts, api.Mount{
			Path:    cfg.Metrics.Path,
			Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		})
	}

	handlerConfig := api.Config{
		Logger:       zlog.NewLogger(logger),
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	}

	// A storage that cannot be built leaves the process up in degraded mode:
	// liveness keeps answering and every webhook call gets a 500.
	storage, closeStorage, err := newStorage(ctx, cfg.Storage)
	if err != nil {
		logger.Error().Err(err).Msg("storage client initialization failed, serving degraded")
	} else {
		defer closeStorage()

		manager, err := gofulfill.NewManager(storage, &gofulfill.Config{
			ReportBaseURL: cfg.Report.BaseURL,
			Logger:        zlog.NewLogger(logger),
			Metrics:       metrics,
		})
		if err != nil {
			return fmt.Errorf("create manager: %w", err)
		}
		handlerConfig.Dispatcher = manager
	}

	handler, err := api.NewHandler(handlerConfig)
	if err != nil {
		return err
	}

	return serve(ctx, cfg.Server, handler, mounts, logger)
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

// newStorage builds the configured backend and a function releasing its client
func newStorage(ctx context.Context, cfg config.StorageConfig) (gofulfill.Storage, func(), error) {
	switch cfg.Driver {
	case config.DriverBigQuery:
		var opts []option.ClientOption
		if cfg.Endpoint != "" {
			opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
		}
		client, err := bigquery.NewClient(ctx, projectID(cfg, bigquery.DetectProjectID), opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("create bigquery client: %w", err)
		}
		s, err := bqstorage.New(client, bqstorage.Config{
			ProjectID:        client.Project(),
			DatasetID:        cfg.Dataset,
			UserTable:        cfg.UserTable,
			EntitlementTable: cfg.EntitlementTable,
			Plans:            cfg.Plans,
			Location:         cfg.Location,
		})
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		return s, func() { client.Close() }, nil

	case config.DriverFirestore:
		client, err := firestore.NewClient(ctx, projectID(cfg, firestore.DetectProjectID))
		if err != nil {
			return nil, nil, fmt.Errorf("create firestore client: %w", err)
		}
		s, err := fsstorage.New(client, fsstorage.Config{
			UsersCollection:        cfg.UserTable,
			EntitlementsCollection: cfg.EntitlementTable,
		})
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		return s, func() { client.Close() }, nil

	case config.DriverPostgres:
		pgConfig := pgstorage.DefaultConfig()
		pgConfig.ConnectionString = cfg.DatabaseURL
		pgConfig.UserTable = cfg.UserTable
		pgConfig.EntitlementTable = cfg.EntitlementTable
		pgConfig.Plans = cfg.Plans
		if cfg.MaxConns > 0 {
			pgConfig.MaxConns = cfg.MaxConns
		}
		s, err := pgstorage.New(ctx, pgConfig)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case config.DriverMemory:
		return memory.New(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// projectID returns the configured project or the client's detection sentinel
func projectID(cfg config.StorageConfig, detect string) string {
	if cfg.ProjectID == "" {
		return detect
	}
	return cfg.ProjectID
}

// serve runs the configured router until ctx is cancelled, then shuts it down
func serve(ctx context.Context, cfg config.ServerConfig, h *api.Handler, mounts []api.Mount, logger zerolog.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	if cfg.Router == config.RouterFiber {
		app := fiberrouter.NewApp(h, mounts...)
		g.Go(func() error {
			logger.Info().Str("addr", cfg.Address()).Msg("listening")
			return app.Listen(cfg.Address())
		})
		g.Go(func() error {
			<-ctx.Done()
			return app.ShutdownWithTimeout(cfg.ShutdownTimeout)
		})
		return wait(g, logger)
	}

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHTTPHandler(cfg.Router, h, mounts),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return wait(g, logger)
}

func newHTTPHandler(router string, h *api.Handler, mounts []api.Mount) http.Handler {
	switch router {
	case config.RouterGorilla:
		return gorillarouter.NewRouter(h, mounts...)
	case config.RouterGin:
		return ginrouter.NewEngine(h, mounts...)
	case config.RouterEcho:
		return echorouter.New(h, mounts...)
	case config.RouterStdlib:
		mux := h.Routes()
		for _, m := range mounts {
			mux.Handle("GET "+m.Path, m.Handler)
		}
		return mux
	default:
		return chirouter.NewRouter(h, mounts...)
	}
}

func wait(g *errgroup.Group, logger zerolog.Logger) error {
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info().Msg("stopped")
	return nil
}
