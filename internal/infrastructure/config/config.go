package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// ServiceName is reported by the health endpoints.
const ServiceName = "Exoplanet Classification API"

const envPrefix = "EXOSERVE"

// Config holds all application configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Models ModelTable   `mapstructure:"models"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// ModelArtifacts points at the serialized classifier and preprocessor for
// one dataset type, plus the raw input columns dropped before inference.
type ModelArtifacts struct {
	Model        string   `mapstructure:"model"`
	Preprocessor string   `mapstructure:"preprocessor"`
	DropColumns  []string `mapstructure:"drop_columns"`
}

// ModelTable is the static dataset-type to artifact-location mapping. It is
// built once at process start and never mutated.
type ModelTable map[string]ModelArtifacts

// Lookup returns the artifact locations for a dataset type.
func (t ModelTable) Lookup(datasetType string) (ModelArtifacts, bool) {
	entry, ok := t[datasetType]
	return entry, ok
}

// DatasetTypes returns the configured dataset types in sorted order.
func (t ModelTable) DatasetTypes() []string {
	types := make([]string, 0, len(t))
	for dt := range t {
		types = append(types, dt)
	}
	sort.Strings(types)
	return types
}

// Load reads configuration from defaults, an optional YAML file named by
// EXOSERVE_CONFIG, and EXOSERVE_-prefixed environment variables, in
// increasing order of precedence.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv(envPrefix + "_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	// Model table defaults. Kepler and K2 candidates share the K2-trained
	// artifacts; TESS has its own pair.
	v.SetDefault("models.kepler.model", "models/k2_logistic_model.json")
	v.SetDefault("models.kepler.preprocessor", "preprocessors/k2_preprocessor.json")
	v.SetDefault("models.kepler.drop_columns", []string{
		"kepid", "kepoi_name", "kepler_name", "koi_time0bk",
		"koi_teq_err1", "koi_teq_err2", "koi_time0bk_err1", "koi_time0bk_err2",
		"koi_tce_plnt_num", "koi_tce_delivname", "ra", "dec",
		"koi_pdisposition", "koi_score", "koi_disposition",
	})

	v.SetDefault("models.k2.model", "models/k2_logistic_model.json")
	v.SetDefault("models.k2.preprocessor", "preprocessors/k2_preprocessor.json")
	v.SetDefault("models.k2.drop_columns", []string{
		"pl_name", "hostname", "disp_refname", "disc_year", "pl_refname",
		"st_refname", "sy_refname", "rastr", "ra", "decstr", "dec",
		"rowupdate", "pl_pubdate", "releasedate", "discoverymethod",
		"soltype", "disc_facility", "disposition",
	})

	v.SetDefault("models.tess.model", "models/tess_logistic_model.json")
	v.SetDefault("models.tess.preprocessor", "preprocessors/tess_preprocessor.json")
	v.SetDefault("models.tess.drop_columns", []string{
		"loc_rowid", "toi", "tid", "rastr", "decstr",
		"toi_created", "rowupdate", "tfopwg_disp",
	})
}
