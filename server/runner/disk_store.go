package runner

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/azrulhm/eplingest/workflow"
)

// DiskStore persists run history to disk as JSON files.
type DiskStore struct {
	dir      string
	logger   *slog.Logger
	maxCount int
	runs     []workflow.Status // protected by mu
	mu       sync.Mutex
}

// NewDiskStore creates a new disk-backed store.
// The directory is created if it doesn't exist, and existing runs are loaded.
func NewDiskStore(dir string, maxCount int, logger *slog.Logger) (*DiskStore, error) {
	s := &DiskStore{
		dir:      dir,
		logger:   logger,
		maxCount: maxCount,
		runs:     make([]workflow.Status, 0),
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	runs, err := s.load()
	if err != nil {
		logger.Warn("failed to load existing runs", "error", err)
		// Continue without existing data
	} else {
		s.runs = runs
	}

	return s, nil
}

// Runs returns all stored runs, most recent first.
func (s *DiskStore) Runs() []workflow.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]workflow.Status, len(s.runs))
	copy(result, s.runs)
	return result
}

// Save persists a run to disk and updates the in-memory representation.
func (s *DiskStore) Save(status workflow.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Timestamp plus the ID prefix keeps filenames unique across runs
	// started within the same second.
	filename := fmt.Sprintf("%s-%.8s.json", status.CreatedAt.Format("2006-01-02T15-04-05"), status.ID)
	path := filepath.Join(s.dir, filename)

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run file: %w", err)
	}

	// Prepend to keep most recent first
	s.runs = append([]workflow.Status{status}, s.runs...)
	if len(s.runs) > s.maxCount {
		s.runs = s.runs[:s.maxCount]
	}

	s.logger.Debug("saved run to disk", "path", path)
	return nil
}

// load loads all runs from disk.
func (s *DiskStore) load() ([]workflow.Status, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read state directory: %w", err)
	}

	runs := make([]workflow.Status, 0, len(files))
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
			continue
		}

		path := filepath.Join(s.dir, file.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("failed to read run file", "file", path, "error", err)
			continue
		}

		var run workflow.Status
		if err := json.Unmarshal(data, &run); err != nil {
			s.logger.Warn("failed to parse run file", "file", path, "error", err)
			continue
		}

		runs = append(runs, run)
	}

	// Sort by start time descending (most recent first)
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})

	if len(runs) > s.maxCount {
		runs = runs[:s.maxCount]
	}

	s.logger.Info("loaded run history from disk", "count", len(runs))
	return runs, nil
}
