package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every App validation error.
var ErrInvalidConfig = errors.New("invalid configuration")

// identifierRgx matches names that stay valid once upper-cased into unquoted
// provider identifiers.
var identifierRgx = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// Environment tags a deployment. PROD and INT are known; any other string is
// carried through unchanged.
type Environment string

const (
	EnvProd Environment = "PROD"
	EnvInt  Environment = "INT"
)

// Known reports whether the environment is one of the predefined tags.
func (e Environment) Known() bool {
	return e == EnvProd || e == EnvInt
}

// UnmarshalYAML accepts the tag as a string, or the numeric positions 0
// (PROD) and 1 (INT) used by older deployment files.
func (e *Environment) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("env must be a scalar, got %s", value.ShortTag())
	}
	if value.ShortTag() == "!!int" {
		switch value.Value {
		case "0":
			*e = EnvProd
		case "1":
			*e = EnvInt
		default:
			return fmt.Errorf("unknown env index %s", value.Value)
		}
		return nil
	}
	normalized := strings.ToUpper(value.Value)
	if Environment(normalized).Known() {
		*e = Environment(normalized)
		return nil
	}
	*e = Environment(value.Value)
	return nil
}

// OutputPort declares one data product exposed as its own schema.
type OutputPort struct {
	Name string `yaml:"name" json:"name"`
}

// Warehouse declares a compute warehouse. Any keys besides name and default
// are provider parameters, passed through untouched.
type Warehouse struct {
	Name    string         `yaml:"name" json:"name"`
	Default bool           `yaml:"default" json:"default"`
	Params  map[string]any `yaml:",inline" json:"params,omitempty"`
}

// Snowflake groups the warehouse-provider settings of an App.
type Snowflake struct {
	Warehouses []Warehouse `yaml:"warehouses" json:"warehouses"`
}

// App is the deployment input for one tenant.
type App struct {
	Name        string       `yaml:"name" json:"name"`
	Env         Environment  `yaml:"env" json:"env"`
	OutputPorts []OutputPort `yaml:"outputPorts" json:"outputPorts"`
	Snowflake   Snowflake    `yaml:"snowflake" json:"snowflake"`
	Datahub     bool         `yaml:"datahub" json:"datahub"`
}

// LoadApp decodes an App from YAML. Unknown top-level keys are rejected.
func LoadApp(r io.Reader) (*App, error) {
	var app App
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&app); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidConfig)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &app, nil
}

// LoadAppFile decodes an App from a YAML file.
func LoadAppFile(path string) (*App, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open app config: %w", err)
	}
	defer func() { _ = file.Close() }()

	app, err := LoadApp(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return app, nil
}

// Validate checks required fields and naming. Warehouse default rules are
// checked by the tenant package, which owns them.
func (a *App) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...)))
	}

	switch {
	case a.Name == "":
		fail("name is required")
	case !identifierRgx.MatchString(a.Name):
		fail("name %q is not a valid identifier", a.Name)
	}
	if a.Env == "" {
		fail("env is required")
	}

	seenPorts := make(map[string]bool)
	for i, p := range a.OutputPorts {
		switch {
		case p.Name == "":
			fail("outputPorts[%d]: name is required", i)
			continue
		case !identifierRgx.MatchString(p.Name):
			fail("outputPorts[%d]: name %q is not a valid identifier", i, p.Name)
			continue
		}
		key := strings.ToUpper(p.Name)
		if key == "PUBLIC" {
			fail("outputPorts[%d]: name %q collides with the PUBLIC schema", i, p.Name)
		}
		if seenPorts[key] {
			fail("outputPorts[%d]: duplicate output port %q", i, p.Name)
		}
		seenPorts[key] = true
	}

	for i, w := range a.Snowflake.Warehouses {
		if w.Name != "" && !identifierRgx.MatchString(w.Name) {
			fail("snowflake.warehouses[%d]: name %q is not a valid identifier", i, w.Name)
		}
	}

	return errors.Join(errs...)
}

// PortNames returns the declared output port names in order.
func (a *App) PortNames() []string {
	out := make([]string, len(a.OutputPorts))
	for i, p := range a.OutputPorts {
		out[i] = p.Name
	}
	return out
}
