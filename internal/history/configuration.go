package history

import "strings"

// CommandConfiguration captures configuration values shared by the history commands.
type CommandConfiguration struct {
	Author string `mapstructure:"author"`
}

// DefaultCommandConfiguration provides baseline configuration values for history queries.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Author: "",
	}
}

// DefaultConfigurationValues exposes history defaults keyed beneath the provided configuration prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKeyPrefix + ".author": defaults.Author,
	}
}

// Sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Author = strings.TrimSpace(configuration.Author)
	return sanitized
}
