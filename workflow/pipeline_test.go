package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azrulhm/eplingest/store"
	"github.com/azrulhm/eplingest/transfermarkt"
)

type fakeEnumerator struct {
	clubs []string
	err   error
}

func (f *fakeEnumerator) EnumerateClubs(ctx context.Context, season int) ([]string, error) {
	return f.clubs, f.err
}

type fakeLoadDater struct {
	date string
	err  error
}

func (f *fakeLoadDater) LoadDate(ctx context.Context) (string, error) {
	return f.date, f.err
}

type fakeExtractor struct {
	mu       sync.Mutex
	attempts map[string]int
	fn       func(in ExtractionInput, attempt int) ([]transfermarkt.PlayerRecord, error)
}

func (f *fakeExtractor) ExtractPlayers(ctx context.Context, in ExtractionInput) ([]transfermarkt.PlayerRecord, error) {
	f.mu.Lock()
	if f.attempts == nil {
		f.attempts = make(map[string]int)
	}
	f.attempts[in.ClubURL]++
	attempt := f.attempts[in.ClubURL]
	f.mu.Unlock()

	return f.fn(in, attempt)
}

func (f *fakeExtractor) attemptCount(clubURL string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts[clubURL]
}

type fakeCredentials struct {
	creds store.Credentials
	err   error
}

func (f *fakeCredentials) ResolveCredentials(ctx context.Context) (store.Credentials, error) {
	return f.creds, f.err
}

type fakeUploader struct {
	mu     sync.Mutex
	inputs []UploadInput
	err    error
}

func (f *fakeUploader) UploadBatch(ctx context.Context, in UploadInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	return f.err
}

func (f *fakeUploader) calls() []UploadInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inputs
}

func clubURLs(n int) []string {
	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example.com/club-%d/saison_id/2023", i)
	}
	return urls
}

// oneRecordPerClub extracts a single record named after the club URL, with
// the load date stamped in.
func oneRecordPerClub(in ExtractionInput, _ int) ([]transfermarkt.PlayerRecord, error) {
	return []transfermarkt.PlayerRecord{{Name: in.ClubURL, LoadDate: in.LoadDate}}, nil
}

func testTarget() Target {
	return Target{
		Account:   "lakeacct",
		Container: "bronze",
		Store:     "lake",
		Dataset:   "transfermarkt",
		Mode:      store.ModeAppend,
	}
}

func newTestPipeline(t *testing.T, acts Activities, opts ...Option) *Pipeline {
	t.Helper()
	opts = append([]Option{WithRetryPolicy(RetryPolicy{MaxAttempts: 2, Delay: time.Millisecond})}, opts...)
	p, err := New(acts, testTarget(), opts...)
	require.NoError(t, err)
	return p
}

func TestPipeline_CompletedRun(t *testing.T) {
	uploader := &fakeUploader{}
	acts := Activities{
		Enumerate:   &fakeEnumerator{clubs: clubURLs(20)},
		LoadDate:    &fakeLoadDater{date: "01082023"},
		Extract:     &fakeExtractor{fn: oneRecordPerClub},
		Credentials: &fakeCredentials{creds: store.Credentials{ClientID: "id", ClientSecret: "secret", TenantID: "tenant"}},
		Upload:      uploader,
	}
	p := newTestPipeline(t, acts)

	inst := NewInstance(2023)
	require.NoError(t, p.Run(context.Background(), inst))

	status := inst.Snapshot()
	assert.Equal(t, PhaseCompleted, status.Phase)
	assert.Equal(t, 20, status.ClubCount)
	assert.Equal(t, 20, status.RecordCount)
	assert.NotNil(t, status.EndedAt)
	assert.Empty(t, status.Error)

	calls := uploader.calls()
	require.Len(t, calls, 1)
	assert.Len(t, calls[0].Records, 20)
	assert.Equal(t, "id", calls[0].Credentials.ClientID)
	assert.Equal(t, "lakeacct", calls[0].Account)
	assert.Equal(t, "bronze/lake/transfermarkt/2023", calls[0].Partition.Path())
	assert.Equal(t, store.ModeAppend, calls[0].Mode)
	for _, rec := range calls[0].Records {
		assert.Equal(t, "01082023", rec.LoadDate)
	}
}

func TestPipeline_PhaseProgression(t *testing.T) {
	acts := Activities{
		Enumerate:   &fakeEnumerator{clubs: clubURLs(20)},
		LoadDate:    &fakeLoadDater{date: "01082023"},
		Extract:     &fakeExtractor{fn: oneRecordPerClub},
		Credentials: &fakeCredentials{},
		Upload:      &fakeUploader{},
	}
	p := newTestPipeline(t, acts)

	inst := NewInstance(2023)
	require.NoError(t, p.Run(context.Background(), inst))

	var phases []Phase
	for _, e := range inst.Snapshot().Events {
		phases = append(phases, e.Phase)
	}
	assert.Equal(t, []Phase{
		PhaseStarted,
		PhaseEnumerating,
		PhaseValidating,
		PhaseFanningOut,
		PhaseAggregating,
		PhaseUploading,
		PhaseCompleted,
	}, phases)
}

func TestPipeline_ShortEnumerationIsRejected(t *testing.T) {
	uploader := &fakeUploader{}
	extractor := &fakeExtractor{fn: oneRecordPerClub}
	acts := Activities{
		Enumerate:   &fakeEnumerator{clubs: clubURLs(19)},
		LoadDate:    &fakeLoadDater{date: "01082023"},
		Extract:     extractor,
		Credentials: &fakeCredentials{},
		Upload:      uploader,
	}
	p := newTestPipeline(t, acts)

	inst := NewInstance(2023)
	err := p.Run(context.Background(), inst)

	var cardErr *CardinalityError
	require.ErrorAs(t, err, &cardErr)
	assert.Equal(t, 20, cardErr.Expected)
	assert.Equal(t, 19, cardErr.Actual)

	assert.Equal(t, PhaseRejected, inst.Snapshot().Phase)
	assert.Empty(t, uploader.calls())
	assert.Equal(t, 0, extractor.attemptCount(clubURLs(19)[0]))
}

func TestPipeline_DuplicateClubsCountOnce(t *testing.T) {
	// 20 entries but only 19 distinct pages: the gate must reject.
	clubs := clubURLs(19)
	clubs = append(clubs, clubs[0])

	acts := Activities{
		Enumerate:   &fakeEnumerator{clubs: clubs},
		LoadDate:    &fakeLoadDater{date: "01082023"},
		Extract:     &fakeExtractor{fn: oneRecordPerClub},
		Credentials: &fakeCredentials{},
		Upload:      &fakeUploader{},
	}
	p := newTestPipeline(t, acts)

	inst := NewInstance(2023)
	err := p.Run(context.Background(), inst)

	var cardErr *CardinalityError
	require.ErrorAs(t, err, &cardErr)
	assert.Equal(t, 19, cardErr.Actual)
}

func TestPipeline_ExpectedCountOverride(t *testing.T) {
	acts := Activities{
		Enumerate:   &fakeEnumerator{clubs: clubURLs(3)},
		LoadDate:    &fakeLoadDater{date: "01082023"},
		Extract:     &fakeExtractor{fn: oneRecordPerClub},
		Credentials: &fakeCredentials{},
		Upload:      &fakeUploader{},
	}
	p := newTestPipeline(t, acts, WithExpectedClubCount(3))

	inst := NewInstance(2023)
	require.NoError(t, p.Run(context.Background(), inst))
	assert.Equal(t, PhaseCompleted, inst.Snapshot().Phase)
}

func TestPipeline_ExtractionRetriesThenSucceeds(t *testing.T) {
	flaky := clubURLs(20)[7]
	extractor := &fakeExtractor{fn: func(in ExtractionInput, attempt int) ([]transfermarkt.PlayerRecord, error) {
		if in.ClubURL == flaky && attempt == 1 {
			return nil, errors.New("transient fetch error")
		}
		return oneRecordPerClub(in, attempt)
	}}

	acts := Activities{
		Enumerate:   &fakeEnumerator{clubs: clubURLs(20)},
		LoadDate:    &fakeLoadDater{date: "01082023"},
		Extract:     extractor,
		Credentials: &fakeCredentials{},
		Upload:      &fakeUploader{},
	}
	p := newTestPipeline(t, acts)

	inst := NewInstance(2023)
	require.NoError(t, p.Run(context.Background(), inst))

	assert.Equal(t, PhaseCompleted, inst.Snapshot().Phase)
	assert.Equal(t, 20, inst.Snapshot().RecordCount)
	assert.Equal(t, 2, extractor.attemptCount(flaky))
}

func TestPipeline_PermanentExtractionFailureFailsRun(t *testing.T) {
	broken := clubURLs(20)[3]
	extractor := &fakeExtractor{fn: func(in ExtractionInput, attempt int) ([]transfermarkt.PlayerRecord, error) {
		if in.ClubURL == broken {
			return nil, errors.New("page is gone")
		}
		return oneRecordPerClub(in, attempt)
	}}
	uploader := &fakeUploader{}

	acts := Activities{
		Enumerate:   &fakeEnumerator{clubs: clubURLs(20)},
		LoadDate:    &fakeLoadDater{date: "01082023"},
		Extract:     extractor,
		Credentials: &fakeCredentials{},
		Upload:      uploader,
	}
	p := newTestPipeline(t, acts)

	inst := NewInstance(2023)
	err := p.Run(context.Background(), inst)

	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, broken, extErr.ClubURL)
	assert.Equal(t, 2, extErr.Attempts)

	assert.Equal(t, PhaseFailed, inst.Snapshot().Phase)
	assert.Empty(t, uploader.calls())
	// Retries are bounded, not endless.
	assert.Equal(t, 2, extractor.attemptCount(broken))
}

func TestPipeline_OneFailureStillJoinsAll(t *testing.T) {
	// Every healthy club must have been attempted even when one fails:
	// the join barrier waits for all branches before declaring the outcome.
	broken := clubURLs(20)[0]
	extractor := &fakeExtractor{fn: func(in ExtractionInput, attempt int) ([]transfermarkt.PlayerRecord, error) {
		if in.ClubURL == broken {
			return nil, errors.New("boom")
		}
		return oneRecordPerClub(in, attempt)
	}}

	acts := Activities{
		Enumerate:   &fakeEnumerator{clubs: clubURLs(20)},
		LoadDate:    &fakeLoadDater{date: "01082023"},
		Extract:     extractor,
		Credentials: &fakeCredentials{},
		Upload:      &fakeUploader{},
	}
	p := newTestPipeline(t, acts)

	inst := NewInstance(2023)
	require.Error(t, p.Run(context.Background(), inst))

	for _, club := range clubURLs(20)[1:] {
		assert.Equal(t, 1, extractor.attemptCount(club), club)
	}
}

func TestPipeline_UploadErrorFailsRun(t *testing.T) {
	uploader := &fakeUploader{err: errors.New("lake unavailable")}
	acts := Activities{
		Enumerate:   &fakeEnumerator{clubs: clubURLs(20)},
		LoadDate:    &fakeLoadDater{date: "01082023"},
		Extract:     &fakeExtractor{fn: oneRecordPerClub},
		Credentials: &fakeCredentials{},
		Upload:      uploader,
	}
	p := newTestPipeline(t, acts)

	inst := NewInstance(2023)
	err := p.Run(context.Background(), inst)

	require.Error(t, err)
	assert.Equal(t, PhaseFailed, inst.Snapshot().Phase)
	assert.Contains(t, inst.Snapshot().Error, "lake unavailable")
}

func TestPipeline_CredentialErrorFailsRun(t *testing.T) {
	uploader := &fakeUploader{}
	acts := Activities{
		Enumerate:   &fakeEnumerator{clubs: clubURLs(20)},
		LoadDate:    &fakeLoadDater{date: "01082023"},
		Extract:     &fakeExtractor{fn: oneRecordPerClub},
		Credentials: &fakeCredentials{err: errors.New("vault down")},
		Upload:      uploader,
	}
	p := newTestPipeline(t, acts)

	inst := NewInstance(2023)
	require.Error(t, p.Run(context.Background(), inst))

	assert.Equal(t, PhaseFailed, inst.Snapshot().Phase)
	assert.Empty(t, uploader.calls())
}

func TestPipeline_EnumerationErrorFailsRun(t *testing.T) {
	acts := Activities{
		Enumerate:   &fakeEnumerator{err: errors.New("listing unreachable")},
		LoadDate:    &fakeLoadDater{date: "01082023"},
		Extract:     &fakeExtractor{fn: oneRecordPerClub},
		Credentials: &fakeCredentials{},
		Upload:      &fakeUploader{},
	}
	p := newTestPipeline(t, acts)

	inst := NewInstance(2023)
	require.Error(t, p.Run(context.Background(), inst))
	assert.Equal(t, PhaseFailed, inst.Snapshot().Phase)
}

func TestNew_MissingActivity(t *testing.T) {
	_, err := New(Activities{
		Enumerate: &fakeEnumerator{},
		LoadDate:  &fakeLoadDater{},
		Extract:   &fakeExtractor{},
		// Credentials and Upload missing
	}, testTarget())
	assert.Error(t, err)
}
