package scribe

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

const EnvOptions = "SCRIBE_OPTIONS"

// Options configures one tracker.
type Options struct {
	// Excludes are path patterns whose operations are removed or
	// redacted from every computed record.  A "*" segment matches any
	// array index.
	Excludes []string `yaml:"excludes"`

	// TrackOriginal attaches the pre-change value to every surviving
	// operation.
	TrackOriginal bool `yaml:"trackOriginal"`

	// PurgeOnDelete removes a document's whole history when the
	// document is destroyed.
	PurgeOnDelete bool `yaml:"purgeOnDelete"`
}

// LoadOptions reads an Options YAML file.
func LoadOptions(path string) (*Options, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	opts := &Options{}
	if err := yaml.Unmarshal(d, opts); err != nil {
		return nil, fmt.Errorf("error decoding options %s: %w", path, err)
	}
	return opts, nil
}

// OptionsFromEnv decodes Options from the $SCRIBE_OPTIONS YAML string,
// returning nil when it is unset.
func OptionsFromEnv() (*Options, error) {
	env := os.Getenv(EnvOptions)
	if env == "" {
		return nil, nil
	}
	opts := &Options{}
	if err := yaml.Unmarshal([]byte(env), opts); err != nil {
		return nil, fmt.Errorf("error decoding options from $%s: %w", EnvOptions, err)
	}
	return opts, nil
}
