package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/azrulhm/eplingest/metrics"
	"github.com/azrulhm/eplingest/store"
	"github.com/azrulhm/eplingest/transfermarkt"
)

// ExtractionInput is the typed payload handed to one extraction activity.
type ExtractionInput struct {
	ClubURL  string
	LoadDate string
}

// UploadInput is the typed payload handed to the upload activity.
type UploadInput struct {
	Records     []transfermarkt.PlayerRecord
	Credentials store.Credentials
	Account     string
	Partition   store.Partition
	Mode        store.Mode
}

// Enumerator lists the club page URLs for a season.
type Enumerator interface {
	EnumerateClubs(ctx context.Context, season int) ([]string, error)
}

// LoadDater stamps the run with the load date string. It is an activity so
// the pipeline never reads the clock itself.
type LoadDater interface {
	LoadDate(ctx context.Context) (string, error)
}

// Extractor turns one club page into player records.
type Extractor interface {
	ExtractPlayers(ctx context.Context, in ExtractionInput) ([]transfermarkt.PlayerRecord, error)
}

// CredentialResolver fetches the service principal used for the upload.
type CredentialResolver interface {
	ResolveCredentials(ctx context.Context) (store.Credentials, error)
}

// Uploader lands the aggregated batch in the lake.
type Uploader interface {
	UploadBatch(ctx context.Context, in UploadInput) error
}

// Activities bundles the pipeline's external effects.
type Activities struct {
	Enumerate   Enumerator
	LoadDate    LoadDater
	Extract     Extractor
	Credentials CredentialResolver
	Upload      Uploader
}

// Target describes where the aggregated batch lands.
type Target struct {
	Account   string
	Container string
	Store     string
	Dataset   string
	Mode      store.Mode
}

// Pipeline runs the fan-out/fan-in season ingestion.
type Pipeline struct {
	acts   Activities
	target Target
	logger *slog.Logger

	expectedClubs int
	retry         RetryPolicy
	metrics       *pipelineMetrics
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		p.logger = logger.With("component", "pipeline")
		return nil
	}
}

// WithExpectedClubCount sets the cardinality gate's expected number of
// distinct club pages.
func WithExpectedClubCount(n int) Option {
	return func(p *Pipeline) error {
		p.expectedClubs = n
		return nil
	}
}

// WithRetryPolicy sets the per-club extraction retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(p *Pipeline) error {
		p.retry = policy
		return nil
	}
}

// WithMetrics registers run metrics with the given registry under namespace.
func WithMetrics(reg metrics.Registry, namespace string) Option {
	return func(p *Pipeline) error {
		m, err := newPipelineMetrics(reg, namespace)
		if err != nil {
			return err
		}
		p.metrics = m
		return nil
	}
}

const defaultExpectedClubs = 20

// New creates a Pipeline. All five activities must be provided.
func New(acts Activities, target Target, opts ...Option) (*Pipeline, error) {
	if acts.Enumerate == nil || acts.LoadDate == nil || acts.Extract == nil ||
		acts.Credentials == nil || acts.Upload == nil {
		return nil, fmt.Errorf("all activities must be provided")
	}

	p := &Pipeline{
		acts:          acts,
		target:        target,
		logger:        slog.Default().With("component", "pipeline"),
		expectedClubs: defaultExpectedClubs,
		retry:         DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// extractionResult is one club's outcome, received in completion order.
type extractionResult struct {
	clubURL string
	records []transfermarkt.PlayerRecord
	err     error
}

// Run drives the instance through the full ingestion. It returns nil only
// when the instance ends in the completed phase; a rejected or failed
// instance yields the error that ended it.
func (p *Pipeline) Run(ctx context.Context, inst *Instance) error {
	logger := p.logger.With("instance_id", inst.ID(), "season", inst.Season())
	started := time.Now()

	err := p.run(ctx, inst, logger)
	p.observe(inst, time.Since(started))
	return err
}

func (p *Pipeline) run(ctx context.Context, inst *Instance, logger *slog.Logger) error {
	inst.transition(PhaseEnumerating, "enumerating club pages")

	loadDate, err := p.acts.LoadDate.LoadDate(ctx)
	if err != nil {
		err = fmt.Errorf("resolving load date: %w", err)
		inst.fail(err)
		return err
	}

	clubs, err := p.acts.Enumerate.EnumerateClubs(ctx, inst.Season())
	if err != nil {
		err = fmt.Errorf("enumerating clubs: %w", err)
		inst.fail(err)
		return err
	}

	clubs = distinct(clubs)
	inst.transition(PhaseValidating, fmt.Sprintf("%d distinct club pages enumerated", len(clubs)))
	if len(clubs) != p.expectedClubs {
		err := &CardinalityError{Expected: p.expectedClubs, Actual: len(clubs)}
		logger.Warn("enumeration rejected", "expected", err.Expected, "actual", err.Actual)
		inst.reject(err)
		return err
	}
	logger.Info("enumeration complete", "clubs", len(clubs), "load_date", loadDate)

	inst.transition(PhaseFanningOut, fmt.Sprintf("extracting %d clubs", len(clubs)))

	results := make(chan extractionResult, len(clubs))
	for _, clubURL := range clubs {
		go p.extractClub(ctx, clubURL, loadDate, results)
	}

	// Join barrier: collect every club's outcome, appending records in the
	// order extractions finish.
	var records []transfermarkt.PlayerRecord
	var firstErr error
	failures := 0
	for range clubs {
		r := <-results
		if r.err != nil {
			failures++
			if p.metrics != nil {
				p.metrics.extractionFailures.Inc()
			}
			logger.Error("club extraction failed", "club_url", r.clubURL, "error", r.err)
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		logger.Debug("club extraction finished", "club_url", r.clubURL, "records", len(r.records))
		records = append(records, r.records...)
	}

	inst.transition(PhaseAggregating, fmt.Sprintf("aggregated %d records from %d clubs", len(records), len(clubs)-failures))
	inst.setCounts(len(clubs), len(records))

	if firstErr != nil {
		err := fmt.Errorf("%d of %d club extractions failed: %w", failures, len(clubs), firstErr)
		inst.fail(err)
		return err
	}

	creds, err := p.acts.Credentials.ResolveCredentials(ctx)
	if err != nil {
		err = fmt.Errorf("resolving credentials: %w", err)
		inst.fail(err)
		return err
	}

	inst.transition(PhaseUploading, fmt.Sprintf("uploading %d records", len(records)))
	err = p.acts.Upload.UploadBatch(ctx, UploadInput{
		Records:     records,
		Credentials: creds,
		Account:     p.target.Account,
		Partition: store.Partition{
			Container: p.target.Container,
			Store:     p.target.Store,
			Dataset:   p.target.Dataset,
			Season:    fmt.Sprintf("%d", inst.Season()),
		},
		Mode: p.target.Mode,
	})
	if err != nil {
		err = fmt.Errorf("uploading batch: %w", err)
		inst.fail(err)
		return err
	}

	inst.transition(PhaseCompleted, fmt.Sprintf("uploaded %d records", len(records)))
	logger.Info("run completed", "records", len(records))
	return nil
}

// extractClub runs one club's extraction under the retry policy.
func (p *Pipeline) extractClub(ctx context.Context, clubURL, loadDate string, results chan<- extractionResult) {
	var records []transfermarkt.PlayerRecord
	err := p.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		records, err = p.acts.Extract.ExtractPlayers(ctx, ExtractionInput{ClubURL: clubURL, LoadDate: loadDate})
		return err
	})
	if err != nil {
		attempts := p.retry.MaxAttempts
		if attempts < 1 {
			attempts = 1
		}
		results <- extractionResult{clubURL: clubURL, err: &ExtractionError{ClubURL: clubURL, Attempts: attempts, Err: err}}
		return
	}
	results <- extractionResult{clubURL: clubURL, records: records}
}

// observe records run metrics once the instance has reached a terminal phase.
func (p *Pipeline) observe(inst *Instance, elapsed time.Duration) {
	if p.metrics == nil {
		return
	}
	p.metrics.recordRun(inst.Phase(), elapsed, inst.Snapshot().RecordCount)
}

// distinct removes duplicate URLs, preserving first-seen order.
func distinct(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := urls[:0:0]
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
