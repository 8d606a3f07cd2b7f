package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest is the optional project-level amber.yaml, layering default
// flags over what's given on the command line the way a real build tool
// does. Grounded on funxy's internal/ext/config.go Config/LoadConfig/
// FindConfig trio, narrowed to the handful of fields amberc's narrower
// CLI surface (§6.1) actually needs instead of funxy's Go-ext-binding
// deps list.
type Manifest struct {
	// Target is the default --target=... value when the flag is omitted.
	Target string `yaml:"target,omitempty"`

	// Entrypoint is the default module:identifier entrypoint.
	Entrypoint string `yaml:"entrypoint,omitempty"`

	// BinPath / OutputPath mirror the Executable / CStandalone target
	// payloads, used when the command line doesn't override them.
	BinPath    string `yaml:"bin_path,omitempty"`
	OutputPath string `yaml:"output_path,omitempty"`

	// SearchPath lists extra module directories. It is parsed from the
	// manifest but not used: applyDefaults maps no flag from it and
	// nothing in amberc searches these directories.
	SearchPath []string `yaml:"search_path,omitempty"`

	// ErrorFormat is "plain" or "json", the default for --errors=....
	ErrorFormat string `yaml:"errors,omitempty"`
}

// LoadManifest reads and parses an amber.yaml file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}

// FindManifest walks up from dir looking for amber.yaml, the way funxy's
// FindConfig walks up looking for funxy.yaml. Returns "" with a nil error
// if none is found — an absent manifest is not an error, just "use
// defaults".
func FindManifest(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "amber.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// applyDefaults fills any flag absent from flags with the manifest's
// corresponding default, without overriding flags the user actually gave.
func (m *Manifest) applyDefaults(flags map[string]flag) {
	if m == nil {
		return
	}
	setDefault(flags, "target", m.Target)
	setDefault(flags, "entrypoint", m.Entrypoint)
	setDefault(flags, "bin_path", m.BinPath)
	setDefault(flags, "output_path", m.OutputPath)
	setDefault(flags, "errors", m.ErrorFormat)
}

func setDefault(flags map[string]flag, name, value string) {
	if value == "" {
		return
	}
	if _, ok := flags[name]; ok {
		return
	}
	flags[name] = flag{Name: name, Value: value, IsSet: true}
}
