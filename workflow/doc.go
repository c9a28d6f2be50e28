// Package workflow drives a season ingestion run from enumeration to upload.
//
// The Pipeline itself performs no I/O. Every external effect (HTTP fetches,
// credential lookups, lake writes, even reading the clock for the load date)
// sits behind an activity interface, so a run's outcome is fully determined
// by its inputs and the activity results. Progress is recorded on an
// Instance, which keeps an ordered event history and a thread-safe snapshot
// for status queries.
//
// A run moves through phases:
//
//	started → enumerating → validating → fanning_out → aggregating → uploading → completed
//
// with three terminal outcomes: completed, rejected (the club enumeration
// failed the cardinality gate) and failed (an activity exhausted its
// retries, or the upload failed).
//
// # Example
//
//	p := workflow.New(acts, target,
//	    workflow.WithLogger(logger),
//	    workflow.WithExpectedClubCount(20))
//
//	inst := workflow.NewInstance(2023)
//	if err := p.Run(ctx, inst); err != nil {
//	    // inst.Snapshot().Phase distinguishes rejected from failed
//	}
package workflow
