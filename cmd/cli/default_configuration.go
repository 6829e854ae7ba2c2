package cli

import _ "embed"

// Baseline configuration compiled into the binary so allgit works with no
// config file present. User configuration files and ALLGIT_* environment
// variables are layered on top.
//
//go:embed default_config.yaml
var embeddedDefaultConfigurationContent []byte

// EmbeddedDefaultConfiguration returns a copy of the compiled-in defaults
// along with their configuration type identifier.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	configurationCopy := make([]byte, len(embeddedDefaultConfigurationContent))
	copy(configurationCopy, embeddedDefaultConfigurationContent)
	return configurationCopy, configurationTypeConstant
}
