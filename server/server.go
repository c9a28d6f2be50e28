// Package server provides the HTTP server for the EPL ingestion system.
//
// The server exposes a REST API to trigger and monitor ingestion runs.
//
// # Endpoints
//
//   - GET /health - Simple health check, returns "ok"
//   - GET|POST /startOrchestrator/{workflow}?epl_season=YYYY - Start a run, returns 202 with a status handle
//   - GET /runtime/instances/{id} - Status of a live or finished instance
//   - GET /history - Terminal runs, most recent first
//   - GET /api/workflows - Names of the workflows this server can start
//   - GET /config - Current configuration as YAML (secrets redacted)
//   - GET /metrics - Prometheus metrics
//
// # Architecture
//
// The server wires the scrape client, vault client and lake writer into a
// single ingestion pipeline, hands it to a runner that executes runs in the
// background, and serves status out of the runner's instance registry. An
// optional cron trigger starts a run for the configured default season on a
// schedule.
//
// # Example
//
//	srv, err := server.New("/etc/eplingest/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/azrulhm/eplingest/activities"
	"github.com/azrulhm/eplingest/config"
	"github.com/azrulhm/eplingest/logging"
	"github.com/azrulhm/eplingest/metrics"
	"github.com/azrulhm/eplingest/server/cron"
	"github.com/azrulhm/eplingest/server/handlers"
	"github.com/azrulhm/eplingest/server/runner"
	"github.com/azrulhm/eplingest/store"
	"github.com/azrulhm/eplingest/transfermarkt"
	"github.com/azrulhm/eplingest/vault"
	"github.com/azrulhm/eplingest/workflow"
)

const (
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultShutdownTimeout = 5 * time.Second
	defaultListenAddr      = ":8080"
	defaultMaxHistory      = 100
)

// WorkflowIngestEPLPlayers is the name the trigger endpoint accepts.
const WorkflowIngestEPLPlayers = "ingest_epl_players"

// Server is the HTTP server for the ingestion API.
type Server struct {
	addr        string
	configPath  string
	cfg         *config.Config
	logger      *slog.Logger
	registry    *metrics.ScrapeRegistry
	httpServer  *http.Server
	runner      *runner.Runner
	cronTrigger *cron.CronTrigger
}

// Option configures a Server.
type Option func(*Server) error

// WithListenAddr configures the address the server listens on.
// Default is ":8080".
func WithListenAddr(addr string) Option {
	return func(s *Server) error {
		s.addr = addr
		return nil
	}
}

// WithCron configures the server to start a run for the configured default
// season on a cron schedule.
// The spec follows standard cron format (5 fields: minute, hour, day, month, weekday).
func WithCron(spec string) Option {
	return func(s *Server) error {
		season := s.cfg.League.DefaultSeason
		if season == 0 {
			return fmt.Errorf("cron trigger requires league.default_season to be set")
		}

		trigger, err := cron.NewCronTrigger(spec, cron.JobFunc(func() error {
			_, err := s.runner.Start(season)
			return err
		}), s.logger)
		if err != nil {
			return fmt.Errorf("creating cron trigger: %w", err)
		}
		s.cronTrigger = trigger
		return nil
	}
}

// New creates a new Server from the config file at configPath.
func New(configPath string, opts ...Option) (*Server, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Output:    cfg.Logging.Output,
		AddSource: cfg.Logging.AddSource,
	})
	if err != nil {
		return nil, err
	}

	registry, err := metrics.NewScrapeRegistry()
	if err != nil {
		return nil, err
	}

	s := &Server{
		addr:       defaultListenAddr,
		configPath: configPath,
		cfg:        &cfg,
		logger:     logger,
		registry:   registry,
	}

	pipeline, err := buildPipeline(&cfg, logger, registry, store.ModeAppend)
	if err != nil {
		return nil, err
	}

	stateStore, err := runner.NewDiskStore(filepath.Join(cfg.Storage.RootDir, "state"), defaultMaxHistory, logger)
	if err != nil {
		return nil, err
	}

	s.runner = runner.New(logger, runner.PipelineFactoryFunc(func() (*workflow.Pipeline, error) {
		return pipeline, nil
	}), runner.WithStateStore(stateStore))

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	logger.Info("configuration loaded", "config_path", configPath)
	return s, nil
}

// buildPipeline assembles the ingestion pipeline from the configuration.
func buildPipeline(cfg *config.Config, logger *slog.Logger, registry metrics.Registry, mode store.Mode) (*workflow.Pipeline, error) {
	tmClient := transfermarkt.NewClient(cfg.Scrape.BaseURL,
		transfermarkt.WithTimeout(cfg.Scrape.FetchTimeout),
		transfermarkt.WithRetries(cfg.Scrape.FetchRetries))

	vaultClient := vault.NewClient(cfg.Vault.URL,
		vault.StaticToken(cfg.Vault.Token),
		vault.WithAPIVersion(cfg.Vault.APIVersion),
		vault.WithTimeout(cfg.Vault.Timeout))

	writer, err := store.NewDiskWriter(cfg.Storage.RootDir, logger)
	if err != nil {
		return nil, err
	}

	stamper, err := activities.NewLoadDateStamper(cfg.Ingest.LoadDateTimezone)
	if err != nil {
		return nil, err
	}

	acts := workflow.Activities{
		Enumerate: activities.NewClubEnumerator(tmClient, cfg.Scrape.LeaguePath, logger),
		LoadDate:  stamper,
		Extract:   activities.NewPlayerExtractor(tmClient, logger),
		Credentials: activities.NewVaultCredentials(vaultClient, activities.SecretNames{
			ClientID:     cfg.Vault.ClientIDSecret,
			ClientSecret: cfg.Vault.ClientSecretSecret,
			TenantID:     cfg.Vault.TenantIDSecret,
		}, logger),
		Upload: activities.NewBatchUploader(writer, logger),
	}

	target := workflow.Target{
		Account:   cfg.Storage.Account,
		Container: cfg.Storage.Container,
		Store:     cfg.Storage.Store,
		Dataset:   cfg.Storage.Dataset,
		Mode:      mode,
	}

	return workflow.New(acts, target,
		workflow.WithLogger(logger),
		workflow.WithExpectedClubCount(cfg.League.ExpectedClubCount),
		workflow.WithRetryPolicy(workflow.RetryPolicy{
			MaxAttempts: cfg.Ingest.MaxAttempts,
			Delay:       cfg.Ingest.RetryDelay,
		}),
		workflow.WithMetrics(registry, cfg.Monitoring.MetricsPrefix))
}

// Logger returns the server's logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// Config returns the current configuration.
func (s *Server) Config() *config.Config {
	return s.cfg
}

// NextRun returns the next scheduled run time, or nil if no cron is configured.
func (s *Server) NextRun() *time.Time {
	if s.cronTrigger == nil {
		return nil
	}
	next := s.cronTrigger.NextRun()
	return &next
}

// Run starts the HTTP server and blocks until the context is cancelled.
// It performs a graceful shutdown when the context is done.
// If a cron trigger is configured, it will be started automatically.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      mux,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	}

	if s.cronTrigger != nil {
		s.logger.Info("starting cron trigger",
			"next_run", s.cronTrigger.NextRun(),
		)
		s.cronTrigger.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			"addr", s.addr,
			"config_path", s.configPath,
		)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	workflows := []string{WorkflowIngestEPLPlayers}

	startHandler := handlers.NewStartHandler(s.runner, workflows)
	instanceHandler := handlers.NewInstanceStatusHandler(s.runner)
	historyHandler := handlers.NewHistoryHandler(s.runner)
	workflowsHandler := handlers.NewAvailableWorkflowsHandler(workflows)
	configHandler := handlers.NewConfigHandler(s)

	mux.HandleFunc("GET /health", handlers.HandleHealth)
	mux.Handle("GET /startOrchestrator/{workflow}", startHandler)
	mux.Handle("POST /startOrchestrator/{workflow}", startHandler)
	mux.Handle("GET /runtime/instances/{id}", instanceHandler)
	mux.Handle("GET /history", historyHandler)
	mux.Handle("GET /api/workflows", workflowsHandler)
	mux.Handle("GET /config", configHandler)
	mux.Handle("GET /metrics", s.registry.Handler())
}
