package fetch

const (
	defaultWorkerCountConstant = 8
	minimumWorkerCountConstant = 1
)

// CommandConfiguration captures configuration values for the batch fetch command.
type CommandConfiguration struct {
	WorkerCount int `mapstructure:"workers"`
}

// DefaultCommandConfiguration provides baseline configuration values for batch fetching.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		WorkerCount: defaultWorkerCountConstant,
	}
}

// DefaultConfigurationValues exposes fetch defaults keyed beneath the provided configuration prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKeyPrefix + ".workers": defaults.WorkerCount,
	}
}

// Sanitize clamps configuration values into their supported ranges.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	if sanitized.WorkerCount < minimumWorkerCountConstant {
		sanitized.WorkerCount = defaultWorkerCountConstant
	}
	return sanitized
}
