// Package handlers provides HTTP handlers for the ingestion server.
//
// Each handler is in its own file and implements http.Handler.
// Handlers use interfaces to access server dependencies, avoiding
// circular imports.
package handlers

import (
	"github.com/azrulhm/eplingest/config"
	"github.com/azrulhm/eplingest/workflow"
)

// ConfigProvider provides access to the current configuration.
type ConfigProvider interface {
	Config() *config.Config
}

// SeasonStarter can start ingestion runs.
type SeasonStarter interface {
	Start(season int) (string, error)
}

// InstanceProvider provides access to live and finished instances.
type InstanceProvider interface {
	Instance(id string) (workflow.Status, bool)
}

// HistoryProvider provides access to terminal run history.
type HistoryProvider interface {
	History() []workflow.Status
}
