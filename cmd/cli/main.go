package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/azrulhm/eplingest/activities"
	"github.com/azrulhm/eplingest/config"
	"github.com/azrulhm/eplingest/logging"
	"github.com/azrulhm/eplingest/metrics"
	"github.com/azrulhm/eplingest/store"
	"github.com/azrulhm/eplingest/transfermarkt"
	"github.com/azrulhm/eplingest/vault"
	"github.com/azrulhm/eplingest/workflow"
)

type Args struct {
	ConfigPath string
	Season     int
	Overwrite  bool
	Validate   bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args := parseArgs()

	if args.ConfigPath == "" {
		return fmt.Errorf("config flag (-c or --config) is required")
	}

	cfg, err := config.LoadConfig(args.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Handle validation-only request
	if args.Validate {
		fmt.Printf("Configuration validation successful: %s\n", args.ConfigPath)
		return nil
	}

	if args.Season == 0 {
		args.Season = cfg.League.DefaultSeason
	}
	if args.Season == 0 {
		return fmt.Errorf("season flag (--season) is required when league.default_season is unset")
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Output:    cfg.Logging.Output,
		AddSource: cfg.Logging.AddSource,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	hostname, err := os.Hostname()
	if err != nil {
		return fmt.Errorf("failed to get hostname: %w", err)
	}

	// Push-based metrics registry for one-shot mode
	registry := metrics.NewPushRegistry(metrics.PushConfig{
		URL:      cfg.Monitoring.RemoteWriteURL,
		Prefix:   cfg.Monitoring.MetricsPrefix,
		Job:      cfg.Monitoring.JobName,
		Instance: hostname,
	})

	mode := store.ModeAppend
	if args.Overwrite {
		mode = store.ModeOverwrite
	}

	pipeline, err := buildPipeline(&cfg, logger, registry, mode)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	inst := workflow.NewInstance(args.Season)
	logger.Info("eplingest run starting",
		"instance_id", inst.ID(),
		"season", args.Season,
		"config_path", args.ConfigPath,
	)

	if err := pipeline.Run(ctx, inst); err != nil {
		return fmt.Errorf("run ended %s: %w", inst.Phase(), err)
	}

	status := inst.Snapshot()
	fmt.Printf("Run %s completed: %d records from %d clubs\n", status.ID, status.RecordCount, status.ClubCount)
	return nil
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

func parseArgs() Args {
	configPath := flag.String("config", "", "Path to config file")
	configPathShort := flag.String("c", "", "Path to config file (shorthand)")
	season := flag.Int("season", 0, "Season to ingest (e.g. 2023)")
	overwrite := flag.Bool("overwrite", false, "Replace the partition's contents instead of appending")
	validate := flag.Bool("validate", false, "Validate the config file and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEPL Ingest CLI - one-shot player data ingestion\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --config config.yaml --season 2023\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -c config.yaml --season 2023 --overwrite\n", os.Args[0])
	}

	flag.Parse()

	path := *configPath
	if path == "" && *configPathShort != "" {
		path = *configPathShort
	}

	return Args{
		ConfigPath: path,
		Season:     *season,
		Overwrite:  *overwrite,
		Validate:   *validate,
	}
}
