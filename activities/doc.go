// Package activities provides the concrete activity implementations the
// ingestion pipeline runs. Each activity owns one external effect: fetching
// pages, reading the clock, resolving secrets or landing a batch. The
// pipeline composes them through its activity interfaces and never touches
// the outside world directly.
package activities
