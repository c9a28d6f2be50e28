// Package store writes extracted player batches into the data lake.
//
// A batch lands in a partition addressed as container/store/dataset/season.
// Writers either append a new batch file to the partition or replace the
// partition's contents entirely.
package store

import (
	"context"
	"fmt"

	"github.com/azrulhm/eplingest/transfermarkt"
)

// Mode selects how a write interacts with existing partition contents.
type Mode string

const (
	// ModeAppend adds a new batch alongside existing ones.
	ModeAppend Mode = "append"
	// ModeOverwrite replaces the partition's contents with this batch.
	ModeOverwrite Mode = "overwrite"
)

// Credentials identify the service principal used to reach the lake.
type Credentials struct {
	ClientID     string
	ClientSecret string
	TenantID     string
}

// Partition addresses where a batch lands.
type Partition struct {
	Container string
	Store     string
	Dataset   string
	Season    string
}

// Path renders the partition as a slash-joined relative path.
func (p Partition) Path() string {
	return fmt.Sprintf("%s/%s/%s/%s", p.Container, p.Store, p.Dataset, p.Season)
}

// WriteRequest carries one batch of records plus everything needed to land it.
type WriteRequest struct {
	Partition   Partition
	Records     []transfermarkt.PlayerRecord
	Mode        Mode
	Account     string
	Credentials Credentials
}

// Writer lands a batch of player records in a partition.
type Writer interface {
	Write(ctx context.Context, req WriteRequest) error
}
