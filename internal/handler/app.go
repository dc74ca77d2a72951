// Package handler implements the HTTP endpoints: workbook processing and the
// app-info query. Handlers are methods-as-closures on App so each one sees the
// shared configuration and the extraction pipeline.
package handler

import (
	"sheetpix/internal/config"
	"sheetpix/internal/extract"
)

// App bundles the dependencies the handlers need.
type App struct {
	configManager *config.ConfigManager
	extractor     *extract.Extractor
}

// NewApp creates the handler application.
func NewApp(cm *config.ConfigManager, ex *extract.Extractor) *App {
	return &App{configManager: cm, extractor: ex}
}
