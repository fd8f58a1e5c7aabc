package ports

import (
	"context"

	"github.com/paulmach/orb"
	"go.trai.ch/rtosm/internal/core/domain"
)

// BoundaryLoader reads the region boundaries unpacked into a directory.
//
//go:generate go run go.uber.org/mock/mockgen -source=boundary.go -destination=mocks/mock_boundary.go -package=mocks
type BoundaryLoader interface {
	Load(ctx context.Context, dir string) ([]domain.Region, error)
}

// PolyEncoder writes the poly file of a task and returns its path.
type PolyEncoder interface {
	Encode(taskID int64, name string, g orb.Geometry) (string, error)
}
