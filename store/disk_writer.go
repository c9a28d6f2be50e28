package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// DiskWriter lands batches as JSON files under a local root directory,
// mirroring the lake's partition layout. Each append creates a timestamped
// batch file; overwrite clears the partition first.
type DiskWriter struct {
	root   string
	logger *slog.Logger
	now    func() time.Time
}

// DiskOption configures a DiskWriter.
type DiskOption func(*DiskWriter)

// WithClock overrides the batch-file timestamp source.
func WithClock(now func() time.Time) DiskOption {
	return func(w *DiskWriter) {
		w.now = now
	}
}

// NewDiskWriter creates a writer rooted at dir. The directory is created if
// it doesn't exist.
func NewDiskWriter(dir string, logger *slog.Logger, opts ...DiskOption) (*DiskWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lake root: %w", err)
	}

	w := &DiskWriter{
		root:   dir,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Write lands one batch in the request's partition.
func (w *DiskWriter) Write(ctx context.Context, req WriteRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Join(w.root, filepath.FromSlash(req.Partition.Path()))

	if req.Mode == ModeOverwrite {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to clear partition %s: %w", req.Partition.Path(), err)
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create partition %s: %w", req.Partition.Path(), err)
	}

	data, err := json.MarshalIndent(req.Records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal batch: %w", err)
	}

	filename := "batch-" + w.now().UTC().Format("2006-01-02T15-04-05") + ".json"
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write batch file: %w", err)
	}

	w.logger.Info("wrote batch",
		"partition", req.Partition.Path(),
		"records", len(req.Records),
		"mode", string(req.Mode),
		"path", path)
	return nil
}
