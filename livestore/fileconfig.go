package livestore

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// DefaultIdentifierExpr builds identifiers of the form Todo:42.
const DefaultIdentifierExpr = `typename + ":" + id`

// Config is the serializable configuration of a Store.
type Config struct {
	// IDFieldName is the field whose resolution marks a resource.
	IDFieldName string `yaml:"idFieldName"`

	// IdentifierExpr is an expr-lang expression over the string
	// variables typename and id producing a resource identifier.
	IdentifierExpr string `yaml:"identifierExpr"`

	// MaxConcurrentExecutions bounds the re-executions run in parallel by
	// one Invalidate call.
	MaxConcurrentExecutions int `yaml:"maxConcurrentExecutions"`

	// IncludeIdentifierExtension adds the record's identifiers to each
	// published result under extensions.liveResourceIdentifier.
	IncludeIdentifierExtension bool `yaml:"includeIdentifierExtension"`

	// FeedSize is the number of results buffered per stream returned by
	// Execute.
	FeedSize int `yaml:"feedSize"`

	// MetricsNamespace prefixes metric names.
	MetricsNamespace string `yaml:"metricsNamespace"`
}

// LoadConfig loads a YAML configuration file.  Unset fields take their
// default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses a YAML configuration document.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		IDFieldName:             "id",
		IdentifierExpr:          DefaultIdentifierExpr,
		MaxConcurrentExecutions: 8,
		FeedSize:                16,
		MetricsNamespace:        "livequery",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error
	if c.IDFieldName == "" {
		errs = append(errs, errors.New("idFieldName must not be empty"))
	}
	if c.MaxConcurrentExecutions < 1 {
		errs = append(errs, fmt.Errorf("maxConcurrentExecutions must be positive, got %d", c.MaxConcurrentExecutions))
	}
	if c.FeedSize < 0 {
		errs = append(errs, fmt.Errorf("feedSize must not be negative, got %d", c.FeedSize))
	}
	if _, err := compileIdentifier(c.IdentifierExpr); err != nil {
		errs = append(errs, err)
	}
	if len(errs) != 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
