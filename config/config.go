package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Default scrape settings
	defaultBaseURL      = "https://www.transfermarkt.com"
	defaultLeaguePath   = "/premier-league/startseite/wettbewerb/GB1"
	defaultFetchTimeout = 20 * time.Second
	defaultFetchRetries = 2

	// Default league settings
	defaultExpectedClubCount = 20

	// Default ingest settings
	defaultLoadDateTimezone = "Asia/Kuala_Lumpur"
	defaultMaxAttempts      = 3
	defaultRetryDelay       = 5 * time.Second

	// Default storage settings
	defaultContainer = "bronze"
	defaultStore     = "lake"
	defaultDataset   = "transfermarkt"

	// Default vault settings
	defaultAPIVersion       = "7.4"
	defaultClientIDSecret   = "ingest-sp-client-id"
	defaultClientKeySecret  = "ingest-sp-client-secret"
	defaultTenantIDSecret   = "ingest-sp-tenant-id"
	defaultVaultCallTimeout = 10 * time.Second

	// Default monitoring settings
	defaultMetricsPrefix = "epl_ingest"
	defaultJobName       = "eplingest"

	// Default logging settings
	defaultLogLevel  = "info"
	defaultLogFormat = "json"
	defaultLogOutput = "stdout"
)

// Config represents the complete application configuration
type Config struct {
	Scrape     ScrapeConfig     `yaml:"scrape"`
	League     LeagueConfig     `yaml:"league"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Vault      VaultConfig      `yaml:"vault"`
	Storage    StorageConfig    `yaml:"storage"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ScrapeConfig holds settings for the transfermarkt page fetcher
type ScrapeConfig struct {
	// BaseURL is the root of the site being scraped
	BaseURL string `yaml:"base_url"`

	// LeaguePath is the path of the league listing page, relative to BaseURL
	LeaguePath string `yaml:"league_path"`

	// FetchTimeout bounds a single page fetch
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// FetchRetries is the number of retries per fetch (not counting the first attempt)
	FetchRetries int `yaml:"fetch_retries"`
}

// LeagueConfig describes the league being ingested
type LeagueConfig struct {
	// ExpectedClubCount is the number of distinct club pages the listing
	// must yield before any extraction is dispatched
	ExpectedClubCount int `yaml:"expected_club_count"`

	// DefaultSeason is the season used for scheduled (cron) runs
	DefaultSeason int `yaml:"default_season"`
}

// IngestConfig defines workflow behavior settings
type IngestConfig struct {
	// LoadDateTimezone is the IANA timezone used to stamp load dates
	LoadDateTimezone string `yaml:"load_date_timezone"`

	// MaxAttempts bounds attempts of a single activity invocation
	MaxAttempts int `yaml:"max_attempts"`

	// RetryDelay is the base delay between activity retry attempts
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// VaultConfig holds settings for the secret store
type VaultConfig struct {
	URL        string        `yaml:"url"`
	APIVersion string        `yaml:"api_version"`
	Token      string        `yaml:"token"`
	Timeout    time.Duration `yaml:"timeout"`

	// Names of the three secrets holding the service principal
	ClientIDSecret     string `yaml:"client_id_secret"`
	ClientSecretSecret string `yaml:"client_secret_secret"`
	TenantIDSecret     string `yaml:"tenant_id_secret"`
}

// StorageConfig holds settings for the table store
type StorageConfig struct {
	// Account is the storage account the table store lives in
	Account string `yaml:"account"`

	// Container, Store and Dataset identify the partition root:
	// container/store/dataset/{season}
	Container string `yaml:"container"`
	Store     string `yaml:"store"`
	Dataset   string `yaml:"dataset"`

	// RootDir is the local directory backing the disk writer
	RootDir string `yaml:"root_dir"`
}

// MonitoringConfig holds metrics and monitoring settings
type MonitoringConfig struct {
	RemoteWriteURL string `yaml:"remote_write_url"`
	MetricsPrefix  string `yaml:"metrics_prefix"`
	JobName        string `yaml:"jobname"`
}

// LoggingConfig defines logging behavior settings
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	Output    string `yaml:"output"`
	AddSource bool   `yaml:"add_source"`
}

// Validate performs basic validation on the configuration
func (c *Config) Validate() error {
	if c.Scrape.BaseURL == "" {
		return fmt.Errorf("scrape base URL is required")
	}
	if c.League.ExpectedClubCount <= 0 {
		return fmt.Errorf("expected club count must be positive")
	}
	if c.Ingest.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be positive")
	}
	if c.Vault.URL == "" {
		return fmt.Errorf("vault URL is required")
	}
	if c.Storage.Account == "" {
		return fmt.Errorf("storage account is required")
	}
	if c.Storage.RootDir == "" {
		return fmt.Errorf("storage root dir is required")
	}
	if _, err := time.LoadLocation(c.Ingest.LoadDateTimezone); err != nil {
		return fmt.Errorf("invalid load date timezone %q: %w", c.Ingest.LoadDateTimezone, err)
	}
	return nil
}

// SetDefaults sets reasonable default values for optional fields
func (c *Config) SetDefaults() {
	if c.Scrape.BaseURL == "" {
		c.Scrape.BaseURL = defaultBaseURL
	}
	if c.Scrape.LeaguePath == "" {
		c.Scrape.LeaguePath = defaultLeaguePath
	}
	if c.Scrape.FetchTimeout == 0 {
		c.Scrape.FetchTimeout = defaultFetchTimeout
	}
	if c.Scrape.FetchRetries == 0 {
		c.Scrape.FetchRetries = defaultFetchRetries
	}
	if c.League.ExpectedClubCount == 0 {
		c.League.ExpectedClubCount = defaultExpectedClubCount
	}
	if c.Ingest.LoadDateTimezone == "" {
		c.Ingest.LoadDateTimezone = defaultLoadDateTimezone
	}
	if c.Ingest.MaxAttempts == 0 {
		c.Ingest.MaxAttempts = defaultMaxAttempts
	}
	if c.Ingest.RetryDelay == 0 {
		c.Ingest.RetryDelay = defaultRetryDelay
	}
	if c.Vault.APIVersion == "" {
		c.Vault.APIVersion = defaultAPIVersion
	}
	if c.Vault.Timeout == 0 {
		c.Vault.Timeout = defaultVaultCallTimeout
	}
	if c.Vault.ClientIDSecret == "" {
		c.Vault.ClientIDSecret = defaultClientIDSecret
	}
	if c.Vault.ClientSecretSecret == "" {
		c.Vault.ClientSecretSecret = defaultClientKeySecret
	}
	if c.Vault.TenantIDSecret == "" {
		c.Vault.TenantIDSecret = defaultTenantIDSecret
	}
	if c.Storage.Container == "" {
		c.Storage.Container = defaultContainer
	}
	if c.Storage.Store == "" {
		c.Storage.Store = defaultStore
	}
	if c.Storage.Dataset == "" {
		c.Storage.Dataset = defaultDataset
	}
	if c.Monitoring.MetricsPrefix == "" {
		c.Monitoring.MetricsPrefix = defaultMetricsPrefix
	}
	if c.Monitoring.JobName == "" {
		c.Monitoring.JobName = defaultJobName
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Logging.Output == "" {
		c.Logging.Output = defaultLogOutput
	}
}

// Redacted returns a copy of the configuration safe to expose over the API.
func (c *Config) Redacted() Config {
	out := *c
	if out.Vault.Token != "" {
		out.Vault.Token = "REDACTED"
	}
	return out
}

// LoadConfig reads the YAML config file at the given path and returns a Config struct
func LoadConfig(path string) (Config, error) {
	var cfg Config
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
