package activities

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azrulhm/eplingest/store"
	"github.com/azrulhm/eplingest/transfermarkt"
	"github.com/azrulhm/eplingest/workflow"
)

type fakeWriter struct {
	requests []store.WriteRequest
	err      error
}

func (f *fakeWriter) Write(ctx context.Context, req store.WriteRequest) error {
	f.requests = append(f.requests, req)
	return f.err
}

func TestBatchUploader_UploadBatch(t *testing.T) {
	writer := &fakeWriter{}
	u := NewBatchUploader(writer, testLogger())

	in := workflow.UploadInput{
		Records: []transfermarkt.PlayerRecord{{Name: "Bukayo Saka"}},
		Credentials: store.Credentials{
			ClientID: "id", ClientSecret: "secret", TenantID: "tenant",
		},
		Account: "lakeacct",
		Partition: store.Partition{
			Container: "bronze", Store: "lake", Dataset: "transfermarkt", Season: "2023",
		},
		Mode: store.ModeAppend,
	}
	require.NoError(t, u.UploadBatch(context.Background(), in))

	require.Len(t, writer.requests, 1)
	req := writer.requests[0]
	assert.Equal(t, in.Records, req.Records)
	assert.Equal(t, in.Credentials, req.Credentials)
	assert.Equal(t, "lakeacct", req.Account)
	assert.Equal(t, "bronze/lake/transfermarkt/2023", req.Partition.Path())
	assert.Equal(t, store.ModeAppend, req.Mode)
}

func TestBatchUploader_WriterErrorPropagates(t *testing.T) {
	writerErr := errors.New("lake unavailable")
	u := NewBatchUploader(&fakeWriter{err: writerErr}, testLogger())

	err := u.UploadBatch(context.Background(), workflow.UploadInput{})
	assert.ErrorIs(t, err, writerErr)
}
