// Package template loads boot entry templates and turns them into entries.
//
// A template is a TOML, JSON or YAML file whose fields mirror the entry
// directives. Text fields may contain {{name}} placeholders that are filled
// from template variables when the template is rendered.
package template

import (
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"sdbootconf/internal/bootconf"
)

// Template describes a boot entry with optional placeholders.
type Template struct {
	Description       string             `json:"description,omitempty" toml:"description" yaml:"description,omitempty"`
	Vars              map[string]*VarDef `json:"vars,omitempty" toml:"vars" yaml:"vars,omitempty"`
	Title             string             `json:"title,omitempty" toml:"title" yaml:"title,omitempty"`
	Version           string             `json:"version,omitempty" toml:"version" yaml:"version,omitempty"`
	MachineID         string             `json:"machine_id,omitempty" toml:"machine_id" yaml:"machine_id,omitempty"`
	SortKey           string             `json:"sort_key,omitempty" toml:"sort_key" yaml:"sort_key,omitempty"`
	Linux             string             `json:"linux,omitempty" toml:"linux" yaml:"linux,omitempty"`
	Efi               string             `json:"efi,omitempty" toml:"efi" yaml:"efi,omitempty"`
	Initrd            []string           `json:"initrd,omitempty" toml:"initrd" yaml:"initrd,omitempty"`
	Options           string             `json:"options,omitempty" toml:"options" yaml:"options,omitempty"`
	Devicetree        string             `json:"devicetree,omitempty" toml:"devicetree" yaml:"devicetree,omitempty"`
	DevicetreeOverlay []string           `json:"devicetree_overlay,omitempty" toml:"devicetree_overlay" yaml:"devicetree_overlay,omitempty"`
	Architecture      string             `json:"architecture,omitempty" toml:"architecture" yaml:"architecture,omitempty"`
	// Extra holds directives outside the entry vocabulary. They are written
	// in key order.
	Extra map[string]string `json:"extra,omitempty" toml:"extra" yaml:"extra,omitempty"`
}

// VarDef defines a variable that can be substituted into a template.
// In TOML and YAML a VarDef can be a table with fields or a plain string,
// which becomes the default.
type VarDef struct {
	Description string   `json:"description,omitempty" toml:"description" yaml:"description,omitempty"`
	Default     string   `json:"default,omitempty" toml:"default" yaml:"default,omitempty"`
	Required    bool     `json:"required,omitempty" toml:"required" yaml:"required,omitempty"`
	Enum        []string `json:"enum,omitempty" toml:"enum" yaml:"enum,omitempty"`
}

// UnmarshalTOML implements toml.Unmarshaler.
func (v *VarDef) UnmarshalTOML(data any) error {
	switch val := data.(type) {
	case string:
		v.Default = val
		return nil
	case map[string]any:
		if s, ok := val["description"].(string); ok {
			v.Description = s
		}
		if s, ok := val["default"].(string); ok {
			v.Default = s
		}
		if b, ok := val["required"].(bool); ok {
			v.Required = b
		}
		if arr, ok := val["enum"].([]any); ok {
			for _, item := range arr {
				if s, ok := item.(string); ok {
					v.Enum = append(v.Enum, s)
				}
			}
		}
		return nil
	default:
		return fmt.Errorf("expected string or table for variable, got %T", data)
	}
}

// varDefFields avoids recursing into VarDef's own unmarshal methods.
type varDefFields VarDef

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *VarDef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		v.Default = node.Value
		return nil
	}
	return node.Decode((*varDefFields)(v))
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *VarDef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v.Default = s
		return nil
	}
	return json.Unmarshal(data, (*varDefFields)(v))
}

// varPattern matches {{word}} placeholders for variable substitution.
var varPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// ValidateVars checks that all required vars have values and that enum
// constraints hold. It reports every violation at once.
func (t *Template) ValidateVars(provided map[string]string) error {
	var missing, violations []string

	for name, def := range t.Vars {
		value, ok := provided[name]
		if !ok {
			value = def.Default
		}
		if def.Required && value == "" {
			missing = append(missing, name)
			continue
		}
		if value == "" || len(def.Enum) == 0 {
			continue
		}
		if !slices.Contains(def.Enum, value) {
			violations = append(violations, fmt.Sprintf(
				"variable %q value %q not in allowed values: %s",
				name, value, strings.Join(def.Enum, ", ")))
		}
	}

	if len(missing) == 0 && len(violations) == 0 {
		return nil
	}

	var parts []string
	if len(missing) > 0 {
		sort.Strings(missing)
		hints := make([]string, len(missing))
		for i, n := range missing {
			hints[i] = "--var " + n + "=<value>"
		}
		parts = append(parts, fmt.Sprintf("missing required variables: %s\nProvide them with: %s",
			strings.Join(missing, ", "), strings.Join(hints, " ")))
	}
	if len(violations) > 0 {
		sort.Strings(violations)
		parts = append(parts, strings.Join(violations, "\n"))
	}
	return fmt.Errorf("%s", strings.Join(parts, "\n"))
}

// Render validates provided against the template's variables and returns a
// copy with every placeholder replaced. Placeholders naming no variable and
// no provided value are left as-is.
func (t *Template) Render(provided map[string]string) (*Template, error) {
	if err := t.ValidateVars(provided); err != nil {
		return nil, err
	}

	vals := make(map[string]string)
	for name, def := range t.Vars {
		if def.Default != "" {
			vals[name] = def.Default
		}
	}
	maps.Copy(vals, provided)

	sub := func(s string) string { return substitute(s, vals) }
	subAll := func(ss []string) []string {
		if ss == nil {
			return nil
		}
		out := make([]string, len(ss))
		for i, s := range ss {
			out[i] = sub(s)
		}
		return out
	}

	out := *t
	out.Title = sub(t.Title)
	out.Version = sub(t.Version)
	out.MachineID = sub(t.MachineID)
	out.SortKey = sub(t.SortKey)
	out.Linux = sub(t.Linux)
	out.Efi = sub(t.Efi)
	out.Initrd = subAll(t.Initrd)
	out.Options = sub(t.Options)
	out.Devicetree = sub(t.Devicetree)
	out.DevicetreeOverlay = subAll(t.DevicetreeOverlay)
	out.Architecture = sub(t.Architecture)
	if t.Extra != nil {
		out.Extra = make(map[string]string, len(t.Extra))
		for k, v := range t.Extra {
			out.Extra[k] = sub(v)
		}
	}
	return &out, nil
}

// substitute replaces {{name}} with the value from vals.
// Unknown names are left as-is.
func substitute(s string, vals map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-2]
		if v, ok := vals[name]; ok {
			return v
		}
		return match
	})
}

// Apply sets every non-empty field of t on b. Lists are appended.
func (t *Template) Apply(b *bootconf.EntryBuilder) *bootconf.EntryBuilder {
	set := func(f func(string) *bootconf.EntryBuilder, v string) {
		if v != "" {
			f(v)
		}
	}
	set(b.Title, t.Title)
	set(b.Version, t.Version)
	set(b.MachineID, t.MachineID)
	set(b.SortKey, t.SortKey)
	set(b.Linux, t.Linux)
	set(b.Efi, t.Efi)
	if len(t.Initrd) > 0 {
		b.Initrd(t.Initrd...)
	}
	set(b.Options, t.Options)
	set(b.Devicetree, t.Devicetree)
	if len(t.DevicetreeOverlay) > 0 {
		b.DevicetreeOverlay(t.DevicetreeOverlay...)
	}
	set(b.Architecture, t.Architecture)
	for _, k := range slices.Sorted(maps.Keys(t.Extra)) {
		b.Directive(k, t.Extra[k])
	}
	return b
}

// Instantiate renders t with vars and builds the entry id from it.
func (t *Template) Instantiate(id string, vars map[string]string) (bootconf.Entry, error) {
	r, err := t.Render(vars)
	if err != nil {
		return bootconf.Entry{}, err
	}
	b, err := bootconf.NewEntryBuilder(id)
	if err != nil {
		return bootconf.Entry{}, err
	}
	return r.Apply(b).Build()
}
