package domain

import "time"

// Config is the service configuration.
type Config struct {
	DataDir    string           `mapstructure:"data_dir" validate:"required"`
	WorkDir    string           `mapstructure:"work_dir" validate:"required"`
	Database   string           `mapstructure:"database" validate:"required"`
	Log        LogConfig        `mapstructure:"log"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Extracts   ExtractsConfig   `mapstructure:"extracts"`
	Update     UpdateConfig     `mapstructure:"update"`
	Controller ControllerConfig `mapstructure:"controller"`
	Tools      ToolsConfig      `mapstructure:"tools"`
	Status     StatusConfig     `mapstructure:"status"`
}

// LogConfig controls log verbosity and format.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// CatalogConfig controls where region boundaries come from.
type CatalogConfig struct {
	SourceURL       string        `mapstructure:"source_url" validate:"required,url"`
	MetaDir         string        `mapstructure:"meta_dir" validate:"required"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval" validate:"gt=0"`
	StartupTimeout  time.Duration `mapstructure:"startup_timeout" validate:"gte=0"`
}

// ExtractsConfig controls where extracts are downloaded from.
type ExtractsConfig struct {
	BaseURL    string `mapstructure:"base_url" validate:"required,url"`
	PlanetFile string `mapstructure:"planet_file"`
}

// UpdateConfig controls incremental updates.
type UpdateConfig struct {
	MaxParallel      int           `mapstructure:"max_parallel" validate:"gte=1"`
	DataAgeThreshold time.Duration `mapstructure:"data_age_threshold" validate:"gt=0"`
	CapacityRetry    time.Duration `mapstructure:"capacity_retry" validate:"gt=0"`
}

// ControllerConfig controls the reconciliation loop.
type ControllerConfig struct {
	SyncInterval time.Duration `mapstructure:"sync_interval" validate:"gt=0"`
}

// ToolsConfig names the external executables.
type ToolsConfig struct {
	Wget       string `mapstructure:"wget" validate:"required"`
	Tar        string `mapstructure:"tar" validate:"required"`
	OSMUpdate  string `mapstructure:"osmupdate" validate:"required"`
	OSMConvert string `mapstructure:"osmconvert" validate:"required"`
}

// StatusConfig controls the status HTTP endpoint. An empty address disables it.
type StatusConfig struct {
	Address string `mapstructure:"address" validate:"omitempty,hostname_port"`
}
