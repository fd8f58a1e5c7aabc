package sqlite

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/rtosm/internal/adapters/logger"
	"go.trai.ch/rtosm/internal/core/ports"
)

// NodeID is the unique identifier for the task repository Graft node.
const NodeID graft.ID = "adapter.store"

func init() {
	graft.Register(graft.Node[ports.RepositoryOpener]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.RepositoryOpener, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewOpener(log), nil
		},
	})
}
