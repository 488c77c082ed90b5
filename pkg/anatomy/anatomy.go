// Package anatomy resolves project path templates to concrete
// directories. Templates use the studio token syntax: {key},
// {key[sub]} for nested lookups and {key:0>N} for zero padding.
package anatomy

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template is one named path template of the project anatomy.
type Template struct {
	Directory string `yaml:"directory" json:"directory"`
	File      string `yaml:"file,omitempty" json:"file,omitempty"`
}

// Anatomy holds the per-project template configuration.
type Anatomy struct {
	ProjectName string                         `yaml:"projectName" json:"projectName"`
	Roots       map[string]string              `yaml:"roots" json:"roots"`
	Templates   map[string]map[string]Template `yaml:"templates" json:"templates"`
}

// Load reads a project anatomy YAML file.
func Load(path string) (*Anatomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read anatomy file: %w", err)
	}
	var a Anatomy
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse anatomy file %s: %w", path, err)
	}
	return &a, nil
}

// TemplateItem returns the named template of a category ("publish",
// "work", ...), falling back to the category's "default" entry.
func (a *Anatomy) TemplateItem(category, name string) (Template, error) {
	group, ok := a.Templates[category]
	if !ok {
		return Template{}, fmt.Errorf("anatomy has no %q templates", category)
	}
	if tpl, ok := group[name]; ok {
		return tpl, nil
	}
	if tpl, ok := group["default"]; ok {
		return tpl, nil
	}
	return Template{}, fmt.Errorf("anatomy %q templates have no %q entry and no default", category, name)
}

// token matches {key}, {key[sub][sub2]} and an optional :0>N pad spec.
var token = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)((?:\[[A-Za-z0-9_]+\])*)(?::([^}]+))?\}`)

var subscript = regexp.MustCompile(`\[([A-Za-z0-9_]+)\]`)

// FormatStrict substitutes every token in the directory pattern from
// data, with the anatomy roots merged in under "root". A missing or
// unresolvable token is an error naming every missing key.
func (a *Anatomy) FormatStrict(tpl Template, data map[string]any) (string, error) {
	merged := make(map[string]any, len(data)+1)
	for k, v := range data {
		merged[k] = v
	}
	if _, ok := merged["root"]; !ok && a.Roots != nil {
		roots := make(map[string]any, len(a.Roots))
		for k, v := range a.Roots {
			roots[k] = v
		}
		merged["root"] = roots
	}
	return formatStrict(tpl.Directory, merged)
}

func formatStrict(pattern string, data map[string]any) (string, error) {
	var missing []string

	out := token.ReplaceAllStringFunc(pattern, func(match string) string {
		m := token.FindStringSubmatch(match)
		key, subs, pad := m[1], m[2], m[3]

		value, ok := data[key]
		if ok && subs != "" {
			for _, sm := range subscript.FindAllStringSubmatch(subs, -1) {
				value, ok = lookup(value, sm[1])
				if !ok {
					break
				}
			}
		}
		if !ok || value == nil {
			missing = append(missing, strings.Trim(match, "{}"))
			return match
		}
		return formatValue(value, pad)
	})

	if len(missing) > 0 {
		sort.Strings(missing)
		return "", fmt.Errorf("missing template fields: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

func lookup(value any, key string) (any, bool) {
	switch v := value.(type) {
	case map[string]any:
		out, ok := v[key]
		return out, ok
	case map[string]string:
		out, ok := v[key]
		return out, ok
	default:
		return nil, false
	}
}

// formatValue renders a token value, honoring a "0>N" pad spec for
// integral values.
func formatValue(value any, pad string) string {
	var number *int
	switch v := value.(type) {
	case int:
		number = &v
	case int64:
		n := int(v)
		number = &n
	case float64:
		if v == float64(int(v)) {
			n := int(v)
			number = &n
		}
	}

	if number != nil && strings.HasPrefix(pad, "0>") {
		width, err := strconv.Atoi(pad[2:])
		if err == nil {
			return fmt.Sprintf("%0*d", width, *number)
		}
	}
	if number != nil {
		return strconv.Itoa(*number)
	}
	return fmt.Sprintf("%v", value)
}
