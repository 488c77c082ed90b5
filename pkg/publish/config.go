// Package publish turns a completed farm render instance into a
// dependent Deadline publish job plus the metadata file the farm-side
// integration consumes.
package publish

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultPriority is used when neither the plugin nor the instance
// sets one.
const defaultPriority = 50

// pluginVersion is the Deadline plugin version requested for the
// dependent publish job.
const pluginVersion = "3.0"

// Config is the plugin-level configuration. It is read-only once
// processing starts; overrides set here win over per-instance values.
type Config struct {
	Department    string `yaml:"department"`
	Pool          string `yaml:"pool"`
	SecondaryPool string `yaml:"secondaryPool"`
	Group         string `yaml:"group"`
	// Priority 0 means "no override".
	Priority int `yaml:"priority"`

	// AOVFilter maps a host application name to regex patterns; a
	// product name matching one of its host's patterns is marked
	// review-eligible.
	AOVFilter map[string][]string `yaml:"aovFilter"`

	// EnvironKeys are forwarded into the job environment when set in
	// the current process environment.
	EnvironKeys []string `yaml:"environKeys"`

	// ForwardServerURL opts the AYON server URL into the forwarded
	// environment. Off unless the studio enables it.
	ForwardServerURL bool `yaml:"forwardServerUrl"`

	// SkipIntegrationRepreList names representations that are tagged
	// for deletion instead of being integrated.
	SkipIntegrationRepreList []string `yaml:"skipIntegrationRepreList"`

	// InstanceTransfer lists attribute keys copied onto synthesized
	// instances when the render instance carries the family.
	InstanceTransfer map[string][]string `yaml:"instanceTransfer"`

	// FamiliesTransfer lists family tags copied onto synthesized
	// instances when present on the render instance.
	FamiliesTransfer []string `yaml:"familiesTransfer"`
}

// DefaultConfig returns the studio defaults.
func DefaultConfig() Config {
	return Config{
		AOVFilter: map[string][]string{
			"maya":         {`.*([Bb]eauty).*`},
			"blender":      {`.*([Bb]eauty).*`},
			"aftereffects": {`.*`},
			"harmony":      {`.*`},
			"celaction":    {`.*`},
			"max":          {`.*`},
		},
		EnvironKeys: []string{
			"FTRACK_API_USER",
			"FTRACK_API_KEY",
			"FTRACK_SERVER",
			"AYON_APP_NAME",
			"AYON_USERNAME",
			"AYON_SG_USERNAME",
			"KITSU_LOGIN",
			"KITSU_PWD",
		},
		InstanceTransfer: map[string][]string{
			"slate":       {"slateFrames", "slate"},
			"review":      {"lutPath"},
			"render2d":    {"bakingNukeScripts", "version"},
			"renderlayer": {"convertToScanline"},
		},
		FamiliesTransfer: []string{"render3d", "render2d", "slate"},
	}
}

// LoadConfig reads plugin settings from a YAML file layered over the
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return cfg, nil
}
