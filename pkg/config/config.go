package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Models  ModelsConfig  `mapstructure:"models"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	LogFile  string `mapstructure:"log_file"`
	Preserve bool   `mapstructure:"preserve"`
	Level    string `mapstructure:"level"`
}

// ModelsConfig holds offline model storage configuration
type ModelsConfig struct {
	// Dir is the root directory holding one subdirectory per model.
	Dir string `mapstructure:"dir"`

	// StateFile is the persisted snapshot location (file backend).
	StateFile string `mapstructure:"state_file"`

	// StateBackend selects the snapshot store: "file" or "bolt".
	StateBackend string `mapstructure:"state_backend"`

	// StateDB is the bbolt database location (bolt backend).
	StateDB string `mapstructure:"state_db"`

	// ManifestFiles are the file names whose presence marks a model
	// directory as fully downloaded.
	ManifestFiles []string `mapstructure:"manifest_files"`

	// WatchDebounce batches filesystem events before reconciling.
	WatchDebounce    time.Duration `mapstructure:"watch_debounce"`
	WatchDebounceStr string        `mapstructure:"watch_debounce"` // For parsing string duration
}

// Global config instance
var cfg *Config

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		panic("config not initialized")
	}
	return cfg
}

// Load loads configuration from file and environment
func Load(cfgFile string) (*Config, error) {
	// Set defaults first
	setDefaults()

	// Configure viper
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome == "" {
			xdgConfigHome = filepath.Join(home, ".config")
		}

		viper.AddConfigPath("./" + SettingsDirName) // Check project directory first
		viper.AddConfigPath(filepath.Join(xdgConfigHome, SettingsDirName))
		viper.SetConfigType("yaml")
		viper.SetConfigName("settings")
	}

	// Enable environment variable support
	viper.AutomaticEnv()
	bindEnvironmentVariables()

	// Read config file if it exists; absence is fine, defaults apply
	_ = viper.ReadInConfig()

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Post-process durations (viper doesn't handle time.Duration directly)
	if err := processDurations(cfg); err != nil {
		return nil, fmt.Errorf("failed to process durations: %w", err)
	}

	return cfg, nil
}

// setDefaults sets all default configuration values
func setDefaults() {
	// Logging defaults
	viper.SetDefault("logging.log_file", "./"+SettingsDirName+"/system.log")
	viper.SetDefault("logging.preserve", false)
	viper.SetDefault("logging.level", "info")

	// Model storage defaults
	viper.SetDefault("models.dir", "./"+SettingsDirName+"/models")
	viper.SetDefault("models.state_file", "./"+SettingsDirName+"/model_state.json")
	viper.SetDefault("models.state_backend", "file")
	viper.SetDefault("models.state_db", "./"+SettingsDirName+"/model_state.db")
	viper.SetDefault("models.manifest_files", []string{"model.bin", "model.json"})
	viper.SetDefault("models.watch_debounce", "500ms")
}

// bindEnvironmentVariables binds specific environment variables to Viper keys
func bindEnvironmentVariables() {
	viper.BindEnv("logging.level", "NAVIXMIND_LOG_LEVEL")
	viper.BindEnv("logging.log_file", "NAVIXMIND_LOG_FILE")
	viper.BindEnv("logging.preserve", "NAVIXMIND_LOG_PRESERVE")
	viper.BindEnv("models.dir", "NAVIXMIND_MODELS_DIR")
	viper.BindEnv("models.state_file", "NAVIXMIND_MODELS_STATE_FILE")
	viper.BindEnv("models.state_backend", "NAVIXMIND_MODELS_STATE_BACKEND")
	viper.BindEnv("models.state_db", "NAVIXMIND_MODELS_STATE_DB")
}

// processDurations converts string durations to time.Duration
func processDurations(cfg *Config) error {
	if cfg.Models.WatchDebounceStr != "" {
		d, err := time.ParseDuration(cfg.Models.WatchDebounceStr)
		if err != nil {
			return fmt.Errorf("invalid models.watch_debounce: %w", err)
		}
		cfg.Models.WatchDebounce = d
	} else if cfg.Models.WatchDebounce == 0 {
		// Use default if not set
		cfg.Models.WatchDebounce = 500 * time.Millisecond
	}

	return nil
}

// GetConfigFileUsed returns the path to the config file being used
func GetConfigFileUsed() string {
	return viper.ConfigFileUsed()
}

// Reset clears the global config (useful for testing)
func Reset() {
	cfg = nil
	viper.Reset()
}
