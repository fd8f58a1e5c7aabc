// Package config loads the service configuration and task definition files.
package config

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.trai.ch/rtosm/internal/core/domain"
	"go.trai.ch/rtosm/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// EnvPrefix prefixes every environment variable override, e.g. RTOSM_DATA_DIR.
	EnvPrefix = "RTOSM"
	// DefaultConfigName is looked up in the working directory when no path is given.
	DefaultConfigName = "rtosm"
)

// Defaults mirrors the values the service has always shipped with.
var defaults = map[string]any{
	"data_dir":                  "./data",
	"work_dir":                  "./work",
	"database":                  "./db/tasks.db",
	"log.level":                 "info",
	"log.json":                  false,
	"catalog.source_url":        "http://download.geofabrik.de/allkmlfiles.tgz",
	"catalog.meta_dir":          "./meta",
	"catalog.refresh_interval":  "24h",
	"catalog.startup_timeout":   "15m",
	"extracts.base_url":         "http://download.geofabrik.de/",
	"extracts.planet_file":      "",
	"update.max_parallel":       6,
	"update.data_age_threshold": "24h",
	"update.capacity_retry":     "30s",
	"controller.sync_interval":  "5s",
	"tools.wget":                "wget",
	"tools.tar":                 "tar",
	"tools.osmupdate":           "osmupdate",
	"tools.osmconvert":          "osmconvert",
	"status.address":            "",
}

// Loader implements ports.ConfigLoader with viper and validator.
type Loader struct {
	logger   ports.Logger
	validate *validator.Validate
}

var _ ports.ConfigLoader = (*Loader)(nil)

// NewLoader creates a new configuration loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Load merges defaults, the config file and RTOSM_* environment variables,
// in increasing priority.
func (l *Loader) Load(path string) (*domain.Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
		}
	} else {
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
			}
			l.logger.Debug("no config file found, using defaults and environment")
		}
	}

	var cfg domain.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}

	if err := l.validate.Struct(cfg); err != nil {
		return nil, describeValidation(err)
	}

	if used := v.ConfigFileUsed(); used != "" {
		l.logger.Debug("loaded config from " + used)
	}
	return &cfg, nil
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return zerr.Wrap(err, domain.ErrConfigInvalid.Error())
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Namespace()+" ("+fe.Tag()+")")
	}
	return zerr.With(domain.ErrConfigInvalid, "fields", strings.Join(fields, ", "))
}
