package install

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the installation configuration, persisted as config.yaml
// in the installation root.
type Config struct {
	// TemplateRepo is the GitHub "owner/name" of the upstream template
	// repository whose releases drive upgrades.
	TemplateRepo string `yaml:"template_repo"`

	// TemplateVersion is the template version currently installed.
	TemplateVersion string `yaml:"template_version"`

	// Channel selects which releases to follow (stable or prerelease).
	Channel string `yaml:"channel,omitempty"`
}

// DefaultConfig returns the configuration written by a fresh install.
func DefaultConfig() Config {
	return Config{
		TemplateRepo:    "specwright/templates",
		TemplateVersion: "0.0.0",
		Channel:         "stable",
	}
}

// LoadConfig reads config.yaml from the installation root. A missing
// file returns the defaults (not an error) so tools keep working on
// installations created before configuration existed.
func LoadConfig(l Layout) (Config, error) {
	data, err := os.ReadFile(l.ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("reading config.yaml: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config.yaml: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes config.yaml to the installation root.
func SaveConfig(l Layout, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config.yaml: %w", err)
	}
	if err := os.MkdirAll(l.Root, 0o755); err != nil {
		return fmt.Errorf("creating installation root: %w", err)
	}
	return os.WriteFile(l.ConfigPath(), data, 0o644)
}
