package configuration

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// getConfigValue gets value from environment first, then config, then default
func getConfigValue(configValue, envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	// Otherwise use config value if set and not a placeholder
	if configValue != "" && !strings.HasPrefix(configValue, "YOUR_") {
		return configValue
	}
	return defaultValue
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// viperIsSet reports whether key was present in the loaded config file
func viperIsSet(key string) bool {
	return loaded != nil && loaded.IsSet(key)
}

var loaded *viper.Viper
