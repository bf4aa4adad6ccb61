package config

import (
	"path/filepath"

	"github.com/spf13/viper"
)

// SettingsDirName is the per-project settings directory.
const SettingsDirName = ".navixmind"

// BaseSettingsDir returns the directory holding the active settings file.
func BaseSettingsDir() string {
	// Check if config.path is explicitly set (for testing)
	if configPath := viper.GetString("config.path"); configPath != "" {
		return configPath
	}

	currentConfig := viper.ConfigFileUsed()
	if currentConfig == "" {
		return "./" + SettingsDirName
	}
	return filepath.Dir(currentConfig)
}

// BuildSettingsPath joins target onto the settings directory.
func BuildSettingsPath(target string) string {
	return filepath.Join(BaseSettingsDir(), target)
}
