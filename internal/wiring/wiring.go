// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/bb/internal/adapters/atlas"
	_ "go.trai.ch/bb/internal/adapters/bundler"
	_ "go.trai.ch/bb/internal/adapters/config"
	_ "go.trai.ch/bb/internal/adapters/fs"
	_ "go.trai.ch/bb/internal/adapters/logger"
	_ "go.trai.ch/bb/internal/adapters/telemetry"
	_ "go.trai.ch/bb/internal/adapters/translation"
	_ "go.trai.ch/bb/internal/adapters/treesitter"
	_ "go.trai.ch/bb/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/bb/internal/app"
	_ "go.trai.ch/bb/internal/engine/builder"
)
