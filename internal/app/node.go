package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/rtosm/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"go.trai.ch/rtosm/internal/adapters/kml"     //nolint:depguard // Wired in app layer
	"go.trai.ch/rtosm/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"go.trai.ch/rtosm/internal/adapters/shell"   //nolint:depguard // Wired in app layer
	"go.trai.ch/rtosm/internal/adapters/sqlite"  //nolint:depguard // Wired in app layer
	"go.trai.ch/rtosm/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/rtosm/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			sqlite.NodeID,
			shell.NodeID,
			kml.NodeID,
			watcher.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: app, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	opener, err := graft.Dep[ports.RepositoryOpener](ctx)
	if err != nil {
		return nil, err
	}

	runner, err := graft.Dep[ports.ProcessRunner](ctx)
	if err != nil {
		return nil, err
	}

	boundaries, err := graft.Dep[ports.BoundaryLoader](ctx)
	if err != nil {
		return nil, err
	}

	// The service runs without change notifications when the watcher cannot start.
	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		w = nil
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, opener, runner, boundaries, w, log), nil
}
