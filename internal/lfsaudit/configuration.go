package lfsaudit

const (
	defaultRepositoryPathConstant = "."
	defaultCacheDirectoryConstant = ".lfs-audit-cache"
)

// CommandConfiguration holds the configurable audit parameters.
type CommandConfiguration struct {
	RepositoryPath string `mapstructure:"repository"`
	CacheDirectory string `mapstructure:"cache_dir"`
}

// DefaultCommandConfiguration returns the audit defaults.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RepositoryPath: defaultRepositoryPathConstant,
		CacheDirectory: defaultCacheDirectoryConstant,
	}
}

// DefaultConfigurationValues exposes audit defaults keyed beneath the provided configuration prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKeyPrefix + ".repository": defaults.RepositoryPath,
		configurationKeyPrefix + ".cache_dir":  defaults.CacheDirectory,
	}
}

// Sanitize fills empty fields with defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	if len(sanitized.RepositoryPath) == 0 {
		sanitized.RepositoryPath = defaultRepositoryPathConstant
	}
	if len(sanitized.CacheDirectory) == 0 {
		sanitized.CacheDirectory = defaultCacheDirectoryConstant
	}
	return sanitized
}
