// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/rtosm/internal/adapters/config"
	_ "go.trai.ch/rtosm/internal/adapters/kml"
	_ "go.trai.ch/rtosm/internal/adapters/logger"
	_ "go.trai.ch/rtosm/internal/adapters/shell"
	_ "go.trai.ch/rtosm/internal/adapters/sqlite"
	_ "go.trai.ch/rtosm/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/rtosm/internal/app"
)
