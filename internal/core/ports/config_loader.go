package ports

import "go.trai.ch/rtosm/internal/core/domain"

// ConfigLoader defines the interface for loading the service configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration from path. An empty path falls back to the
	// default lookup locations, environment variables and defaults.
	Load(path string) (*domain.Config, error)
}
