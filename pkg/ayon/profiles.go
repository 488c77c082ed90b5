package ayon

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile filtering mirrors the studio settings model: a profile field
// left empty matches everything, otherwise the value must be listed.

// VersionStartProfile decides the starting version number for products
// that have no published version yet.
type VersionStartProfile struct {
	Hosts        []string `yaml:"hosts" json:"hosts"`
	TaskTypes    []string `yaml:"taskTypes" json:"taskTypes"`
	TaskNames    []string `yaml:"taskNames" json:"taskNames"`
	ProductTypes []string `yaml:"productTypes" json:"productTypes"`
	ProductNames []string `yaml:"productNames" json:"productNames"`
	VersionStart int      `yaml:"versionStart" json:"versionStart"`
}

// TemplateNameProfile selects a publish template by publish context.
type TemplateNameProfile struct {
	Hosts        []string `yaml:"hosts" json:"hosts"`
	ProductTypes []string `yaml:"productTypes" json:"productTypes"`
	TaskNames    []string `yaml:"taskNames" json:"taskNames"`
	TaskTypes    []string `yaml:"taskTypes" json:"taskTypes"`
	TemplateName string   `yaml:"templateName" json:"templateName"`
}

// ProjectSettings is the slice of studio settings this module consults.
type ProjectSettings struct {
	VersionStartProfiles []VersionStartProfile `yaml:"versionStartProfiles" json:"versionStartProfiles"`
	TemplateNameProfiles []TemplateNameProfile `yaml:"templateNameProfiles" json:"templateNameProfiles"`
}

// LoadSettings reads project settings from a YAML file. A missing file
// is not an error; the zero settings fall back to the studio defaults.
func LoadSettings(path string) (*ProjectSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ProjectSettings{}, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	var settings ProjectSettings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return &settings, nil
}

func matches(allowed []string, value string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}

// VersionStart returns the starting version for a product that has no
// published versions, from the first matching profile. Default is 1.
func (s *ProjectSettings) VersionStart(
	hostName, taskName, taskType, productType, productName string,
) int {
	for _, p := range s.VersionStartProfiles {
		if matches(p.Hosts, hostName) &&
			matches(p.TaskTypes, taskType) &&
			matches(p.TaskNames, taskName) &&
			matches(p.ProductTypes, productType) &&
			matches(p.ProductNames, productName) {
			return p.VersionStart
		}
	}
	return 1
}

// PublishTemplateName returns the publish template to use for the
// given context, from the first matching profile. Default is "default".
func (s *ProjectSettings) PublishTemplateName(
	hostName, productType, taskName, taskType string,
) string {
	for _, p := range s.TemplateNameProfiles {
		if matches(p.Hosts, hostName) &&
			matches(p.ProductTypes, productType) &&
			matches(p.TaskNames, taskName) &&
			matches(p.TaskTypes, taskType) {
			if p.TemplateName != "" {
				return p.TemplateName
			}
		}
	}
	return "default"
}
