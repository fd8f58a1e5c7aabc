package kml

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/rtosm/internal/adapters/logger"
	"go.trai.ch/rtosm/internal/core/ports"
)

// NodeID is the unique identifier for the boundary loader Graft node.
const NodeID graft.ID = "adapter.boundaries"

func init() {
	graft.Register(graft.Node[ports.BoundaryLoader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.BoundaryLoader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(log), nil
		},
	})
}
