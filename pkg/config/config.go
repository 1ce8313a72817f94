package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/dataport"
	ConfigFileName    = "dataport.yml"
)

// Source values reported for each attribute.
const (
	SourceDefault     = "default"
	SourceFile        = "file"
	SourceEnvironment = "environment"
)

// ValidLogLevels is the list of accepted log levels
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// ValidLogFormats is the list of accepted log formats
var ValidLogFormats = []string{"json", "console"}

// Settings holds all dataport tool settings
type Settings struct {
	// DeploymentRole is the external role every tenant role is granted to
	DeploymentRole string `yaml:"deployment_role" json:"deployment_role" env:"DATAPORT_DEPLOYMENT_ROLE"`

	// GovernanceRole is the external role of the governance consumer
	GovernanceRole string `yaml:"governance_role" json:"governance_role" env:"DATAPORT_GOVERNANCE_ROLE"`

	// SecretLength is the length of generated service user passwords
	SecretLength int `yaml:"secret_length" json:"secret_length" env:"DATAPORT_SECRET_LENGTH"`

	// DatabaseURL is the ledger database connection string
	DatabaseURL string `yaml:"database_url" json:"database_url" env:"DATABASE_URL"`

	// AuditEnabled enables audit events for ledger writes
	AuditEnabled bool `yaml:"audit_enabled" json:"audit_enabled" env:"DATAPORT_AUDIT_ENABLED"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level" json:"log_level" env:"DATAPORT_LOG_LEVEL"`

	// LogFormat is json or console
	LogFormat string `yaml:"log_format" json:"log_format" env:"DATAPORT_LOG_FORMAT"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// envAttributes maps environment variable names to attribute names
var envAttributes = map[string]string{
	"DATAPORT_DEPLOYMENT_ROLE": "deployment_role",
	"DATAPORT_GOVERNANCE_ROLE": "governance_role",
	"DATAPORT_SECRET_LENGTH":   "secret_length",
	"DATABASE_URL":             "database_url",
	"DATAPORT_AUDIT_ENABLED":   "audit_enabled",
	"DATAPORT_LOG_LEVEL":       "log_level",
	"DATAPORT_LOG_FORMAT":      "log_format",
}

// Defaults returns settings with default values
func Defaults() *Settings {
	s := &Settings{
		DeploymentRole: "DEPLOYMENT",
		GovernanceRole: "DATAHUB",
		SecretLength:   16,
		AuditEnabled:   true,
		LogLevel:       "info",
		LogFormat:      "json",
		sources:        make(map[string]string),
	}
	for _, name := range attributeNames() {
		s.sources[name] = SourceDefault
	}
	return s
}

// Load loads settings from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*Settings, error) {
	// A missing .env is the common case.
	_ = godotenv.Load()

	s := Defaults()

	configPath := os.Getenv("DATAPORT_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	s.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(s.configFilePath); err == nil {
		var file fileSettings
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", s.configFilePath, err)
		}
		s.applyFile(&file)
	}

	if err := s.applyEnv(); err != nil {
		return nil, err
	}

	return s, nil
}

// fileSettings uses pointers so explicit false/zero values in the file are
// distinguishable from absent keys.
type fileSettings struct {
	DeploymentRole *string `yaml:"deployment_role"`
	GovernanceRole *string `yaml:"governance_role"`
	SecretLength   *int    `yaml:"secret_length"`
	DatabaseURL    *string `yaml:"database_url"`
	AuditEnabled   *bool   `yaml:"audit_enabled"`
	LogLevel       *string `yaml:"log_level"`
	LogFormat      *string `yaml:"log_format"`
}

func attributeNames() []string {
	return []string{
		"deployment_role", "governance_role", "secret_length",
		"database_url", "audit_enabled", "log_level", "log_format",
	}
}

func (s *Settings) applyFile(file *fileSettings) {
	if file.DeploymentRole != nil {
		s.DeploymentRole = *file.DeploymentRole
		s.sources["deployment_role"] = SourceFile
	}
	if file.GovernanceRole != nil {
		s.GovernanceRole = *file.GovernanceRole
		s.sources["governance_role"] = SourceFile
	}
	if file.SecretLength != nil {
		s.SecretLength = *file.SecretLength
		s.sources["secret_length"] = SourceFile
	}
	if file.DatabaseURL != nil {
		s.DatabaseURL = *file.DatabaseURL
		s.sources["database_url"] = SourceFile
	}
	if file.AuditEnabled != nil {
		s.AuditEnabled = *file.AuditEnabled
		s.sources["audit_enabled"] = SourceFile
	}
	if file.LogLevel != nil {
		s.LogLevel = *file.LogLevel
		s.sources["log_level"] = SourceFile
	}
	if file.LogFormat != nil {
		s.LogFormat = *file.LogFormat
		s.sources["log_format"] = SourceFile
	}
}

func (s *Settings) applyEnv() error {
	err := env.ParseWithOptions(s, env.Options{
		OnSet: func(tag string, value interface{}, isDefault bool) {
			if isDefault {
				return
			}
			if v, ok := value.(string); ok && v == "" {
				return
			}
			if name, ok := envAttributes[tag]; ok {
				s.sources[name] = SourceEnvironment
			}
		},
	})
	if err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// ConfigFilePath returns the path to the config file
func (s *Settings) ConfigFilePath() string {
	return s.configFilePath
}

// Source returns the source of a configuration attribute
func (s *Settings) Source(name string) string {
	if s.sources == nil {
		return SourceDefault
	}
	if src, ok := s.sources[name]; ok {
		return src
	}
	return SourceDefault
}

// Validate validates the settings
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.DeploymentRole) == "" {
		return fmt.Errorf("deployment_role must not be empty")
	}
	if strings.TrimSpace(s.GovernanceRole) == "" {
		return fmt.Errorf("governance_role must not be empty")
	}
	if s.SecretLength <= 0 {
		return fmt.Errorf("invalid secret_length: %d", s.SecretLength)
	}
	if !contains(ValidLogLevels, s.LogLevel) {
		return fmt.Errorf("invalid log_level: %s", s.LogLevel)
	}
	if !contains(ValidLogFormats, s.LogFormat) {
		return fmt.Errorf("invalid log_format: %s", s.LogFormat)
	}
	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (s *Settings) Attributes() []Attribute {
	dbURL := ""
	if s.DatabaseURL != "" {
		dbURL = "(set)"
	}
	return []Attribute{
		{Name: "deployment_role", Value: s.DeploymentRole, Source: s.Source("deployment_role")},
		{Name: "governance_role", Value: s.GovernanceRole, Source: s.Source("governance_role")},
		{Name: "secret_length", Value: strconv.Itoa(s.SecretLength), Source: s.Source("secret_length")},
		{Name: "database_url", Value: dbURL, Source: s.Source("database_url")},
		{Name: "audit_enabled", Value: strconv.FormatBool(s.AuditEnabled), Source: s.Source("audit_enabled")},
		{Name: "log_level", Value: s.LogLevel, Source: s.Source("log_level")},
		{Name: "log_format", Value: s.LogFormat, Source: s.Source("log_format")},
	}
}

// FormatText returns a text representation of the configuration
func (s *Settings) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", s.configFilePath))
	sb.WriteString(fmt.Sprintf("%-25s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-25s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range s.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-25s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (s *Settings) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": s.configFilePath,
		"attributes":  s.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
