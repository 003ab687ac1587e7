package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// SearchPath is an ordered list of directories to search for template
// files. Earlier entries take priority over later ones.
type SearchPath []string

// extensions lists the recognised template file suffixes in lookup order.
var extensions = []struct {
	suffix string
	format string
}{
	{".toml", "toml"},
	{".json", "json"},
	{".yaml", "yaml"},
	{".yml", "yaml"},
}

// ErrNotFound is returned when no directory in the search path holds the template.
var ErrNotFound = errors.New("template not found")

// Load searches for a template by name across the search path. The first
// match wins; the file extension determines the parser.
func Load(name string, path SearchPath) (*Template, error) {
	for _, dir := range path {
		for _, ext := range extensions {
			filePath := filepath.Join(dir, name+ext.suffix)
			data, err := os.ReadFile(filePath)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				return nil, fmt.Errorf("reading template %s: %w", filePath, err)
			}
			return decode(data, ext.format, filePath)
		}
	}
	return nil, fmt.Errorf("%w: %q in search path: %s", ErrNotFound, name, strings.Join(path, ", "))
}

func decode(data []byte, format, filePath string) (*Template, error) {
	t := &Template{}
	var err error
	switch format {
	case "json":
		err = json.Unmarshal(data, t)
	case "yaml":
		err = yaml.Unmarshal(data, t)
	default:
		err = toml.Unmarshal(data, t)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s template %s: %w", strings.ToUpper(format), filePath, err)
	}
	return t, nil
}

// Info describes a template found during a search path scan.
type Info struct {
	Name        string `json:"name" yaml:"name" toml:"name"`
	Description string `json:"description" yaml:"description" toml:"description"`
	Vars        int    `json:"vars" yaml:"vars" toml:"vars"`
	SourcePath  string `json:"source_path" yaml:"source_path" toml:"source_path"`
	Format      string `json:"format" yaml:"format" toml:"format"`
}

// List scans all directories in the search path. If the same template name
// appears more than once, only the highest-priority one is returned.
func List(path SearchPath) ([]Info, error) {
	seen := make(map[string]bool)
	var infos []Info

	for _, dir := range path {
		dirEntries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("reading template directory %s: %w", dir, err)
		}

		for _, de := range dirEntries {
			if de.IsDir() {
				continue
			}
			name, format, ok := splitName(de.Name())
			if !ok || seen[name] {
				continue
			}
			seen[name] = true

			filePath := filepath.Join(dir, de.Name())
			data, err := os.ReadFile(filePath)
			if err != nil {
				return nil, fmt.Errorf("reading template %s: %w", filePath, err)
			}
			t, err := decode(data, format, filePath)
			if err != nil {
				return nil, err
			}
			infos = append(infos, Info{
				Name:        name,
				Description: t.Description,
				Vars:        len(t.Vars),
				SourcePath:  filePath,
				Format:      format,
			})
		}
	}
	return infos, nil
}

func splitName(file string) (name, format string, ok bool) {
	for _, ext := range extensions {
		if n, found := strings.CutSuffix(file, ext.suffix); found && n != "" {
			return n, ext.format, true
		}
	}
	return "", "", false
}
