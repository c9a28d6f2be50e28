package activities

import (
	"context"
	"log/slog"

	"github.com/azrulhm/eplingest/store"
	"github.com/azrulhm/eplingest/workflow"
)

// BatchUploader lands the aggregated batch through a store writer.
type BatchUploader struct {
	writer store.Writer
	logger *slog.Logger
}

// NewBatchUploader creates an uploader backed by the given writer.
func NewBatchUploader(writer store.Writer, logger *slog.Logger) *BatchUploader {
	return &BatchUploader{
		writer: writer,
		logger: logger.With("component", "upload"),
	}
}

// UploadBatch writes the batch to its partition. Errors are returned to the
// caller; a batch that cannot land fails the run.
func (u *BatchUploader) UploadBatch(ctx context.Context, in workflow.UploadInput) error {
	u.logger.Info("uploading batch",
		"partition", in.Partition.Path(),
		"records", len(in.Records),
		"mode", string(in.Mode))

	return u.writer.Write(ctx, store.WriteRequest{
		Partition:   in.Partition,
		Records:     in.Records,
		Mode:        in.Mode,
		Account:     in.Account,
		Credentials: in.Credentials,
	})
}
