package runner

import "github.com/azrulhm/eplingest/workflow"

// StateStore manages persistence of terminal run snapshots.
type StateStore interface {
	// Runs returns all stored runs, most recent first.
	Runs() []workflow.Status
	// Save persists a terminal run snapshot.
	Save(workflow.Status) error
}
