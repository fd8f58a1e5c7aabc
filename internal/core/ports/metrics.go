package ports

import "time"

// Metrics records service level measurements.
//
//go:generate go run go.uber.org/mock/mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type Metrics interface {
	SetWorkers(n int)
	SetUpdatesInFlight(n int)
	ObserveUpdate(result string, elapsed time.Duration)
	SetCatalogRegions(n int)
}
