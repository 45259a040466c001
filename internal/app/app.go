// Package app wires configuration, logging, telemetry, the WebSocket
// hub, the operation manager and the HTTP router into one runnable
// service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"bordereau/internal/bordereau"
	"bordereau/internal/config"
	"bordereau/internal/exporter"
	"bordereau/internal/files"
	"bordereau/internal/infrastructure"
	custommw "bordereau/internal/middleware"
	"bordereau/internal/operations"
	handlers "bordereau/internal/transport/http"
	ws "bordereau/internal/websocket"
)

// Application is the assembled service.
type Application struct {
	Config  *config.Config
	Router  *chi.Mux
	Server  *http.Server
	Hub     *ws.Hub
	Manager *operations.Manager
	Logger  *slog.Logger
	OTel    *infrastructure.OTelProviders
}

// NewApplication loads configuration and assembles the service.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return NewApplicationWithConfig(cfg)
}

// NewApplicationWithConfig assembles the service around the given
// configuration.
func NewApplicationWithConfig(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("input_dir", cfg.Paths.InputDir),
		slog.String("output_file", cfg.Paths.OutputFile),
		slog.Int("port", cfg.Server.Port))

	providers, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config: cfg,
		Logger: logger,
		OTel:   providers,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the hub, the consolidation steps and the
// operation manager.
func (a *Application) initializeServices() error {
	hub := ws.NewHub(a.Logger)
	hub.Start()
	a.Hub = hub

	metrics, err := infrastructure.CreateBusinessMetrics(a.OTel.Meter)
	if err != nil {
		return fmt.Errorf("failed to create business metrics: %w", err)
	}

	layout := bordereau.DefaultLayout()
	inputDir := a.Config.Paths.InputDir
	outputPath := a.Config.OutputPath()

	manager := operations.NewManager(hub, nil, nil)

	scan := operations.NewScanStep(
		files.NewDiscovery(inputDir),
		files.NewManager(inputDir),
		inputDir,
		outputPath,
	)
	consolidate := operations.NewConsolidateStep(
		bordereau.NewConsolidator(layout, a.Logger, bordereau.WithMetrics(metrics)),
		manager.GetBroadcaster(),
	)
	export := operations.NewExportStep(
		exporter.NewXLSXWriter(layout.OutputSheetName, a.Logger),
		exporter.NewCSVWriter(a.Logger),
	)

	for _, step := range []operations.Step{scan, consolidate, export} {
		if err := manager.RegisterStep(step); err != nil {
			return fmt.Errorf("failed to register step %s: %w", step.ID(), err)
		}
	}

	a.Manager = manager
	return nil
}

// setupRouter builds the middleware chain and mounts the handlers. The
// WebSocket route stays outside the full chain because response-writer
// wrappers break the upgrade.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)

	wsHandler := handlers.NewWebSocketHandler(a.Hub, a.Logger)
	r.With(custommw.WebSocketTrace(a.Logger)).Get("/ws", wsHandler.ServeHTTP)

	if a.OTel.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTel.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		otelMiddleware, err := custommw.NewOTelMiddleware(a.OTel)
		if err != nil {
			a.Logger.Error("failed to create OpenTelemetry middleware", slog.Any("error", err))
		} else {
			r.Use(otelMiddleware.Handler)
		}

		r.Use(custommw.StructuredLogger(a.Logger))
		r.Use(custommw.Recoverer(a.Logger))
		r.Use(custommw.SecurityHeaders)
		r.Use(custommw.CORS(a.corsConfig()))

		if a.Config.Security.RateLimit.Enabled {
			r.Use(custommw.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	a.Router = r
}

func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler := handlers.NewHealthHandler(a.Hub, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		// Consolidation runs can take a while; give them their own
		// timeout instead of the server read timeout.
		r.Group(func(r chi.Router) {
			r.Use(custommw.Timeout(a.Config.Server.OperationTimeout, a.Logger))

			operationsHandler := handlers.NewOperationsHandler(
				a.Manager, a.Manager.GetBroadcaster(), a.Logger)
			r.Mount("/operations", operationsHandler.Routes())
		})
	})
}

func (a *Application) corsConfig() custommw.CORSConfig {
	return custommw.CORSConfig{
		AllowedOrigins: []string{
			"http://localhost:" + strconv.Itoa(a.Config.Server.Port),
			"http://127.0.0.1:" + strconv.Itoa(a.Config.Server.Port),
			"http://localhost:3000",
		},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		Logger:           a.Logger,
	}
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         ":" + strconv.Itoa(a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Run serves HTTP until the context is cancelled or a signal arrives,
// then shuts everything down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Stop shuts down the HTTP server, the hub, the operation manager and
// the telemetry providers.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("http server shutdown failed", slog.Any("error", err))
	}

	a.Manager.Stop()
	a.Hub.Stop()

	if a.OTel != nil {
		if err := a.OTel.Shutdown(shutdownCtx); err != nil {
			a.Logger.Error("telemetry shutdown failed", slog.Any("error", err))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		return err
	}

	a.Logger.Info("shutdown complete")
	return nil
}
