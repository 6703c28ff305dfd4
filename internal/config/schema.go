package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version  int            `yaml:"version"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Empires  []EmpireConfig `yaml:"empires"`
	Export   ExportConfig   `yaml:"export"`
	Neo4j    Neo4jConfig    `yaml:"neo4j"`
	Server   ServerConfig   `yaml:"server"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig controls the process logger
type LoggingConfig struct {
	Level         string `yaml:"level"`  // debug, info, warn, error
	Format        string `yaml:"format"` // text or json
	IncludeCaller bool   `yaml:"include_caller,omitempty"`
}

// CatalogConfig selects the stars a simulation runs over
type CatalogConfig struct {
	// Path is a HYG CSV file imported when the database holds no stars
	Path string `yaml:"path,omitempty"`
	// LimitLY drops stars further than this from Sol; zero keeps all
	LimitLY float64 `yaml:"limit_ly,omitempty"`
	// Subset keeps only the first n stars; zero keeps all
	Subset int `yaml:"subset,omitempty"`
}

// EmpireConfig describes one network build
type EmpireConfig struct {
	Name      string  `yaml:"name"`
	Algorithm string  `yaml:"algorithm"` // linear, branching, breadth_first, directed
	Start     string  `yaml:"start"`     // star name
	StartDate float64 `yaml:"start_date"`

	// breadth_first
	Target  int      `yaml:"target,omitempty"`
	Degree  int      `yaml:"degree,omitempty"`
	EndDate *float64 `yaml:"end_date,omitempty"`
	Seed    uint64   `yaml:"seed,omitempty"`

	// branching
	Depth       int `yaml:"depth,omitempty"`
	MaxBranches int `yaml:"max_branches,omitempty"`

	// linear
	Iterations int `yaml:"iterations,omitempty"`

	Speed    SpeedConfig    `yaml:"speed"`
	Wait     WaitConfig     `yaml:"wait"`
	Directed DirectedConfig `yaml:"directed,omitempty"`
}

// SpeedConfig selects a probe speed model. Speeds are fractions of c.
type SpeedConfig struct {
	Kind    string  `yaml:"kind"` // constant or logistic
	Value   float64 `yaml:"value,omitempty"`
	Initial float64 `yaml:"initial,omitempty"`
	Growth  float64 `yaml:"growth,omitempty"`
}

// WaitConfig selects a launch delay model, in years
type WaitConfig struct {
	Kind  string  `yaml:"kind"` // none, constant or half_normal
	Mean  float64 `yaml:"mean,omitempty"`
	Decay float64 `yaml:"decay,omitempty"`
	Scale float64 `yaml:"scale,omitempty"`
}

// DirectedConfig holds corridor settings
type DirectedConfig struct {
	End   string  `yaml:"end,omitempty"` // star name
	Limit float64 `yaml:"limit,omitempty"`
}

// ExportConfig holds run export defaults
type ExportConfig struct {
	Format string `yaml:"format"` // json or yaml
	Dir    string `yaml:"dir,omitempty"`
}

// Neo4jConfig holds graph database export settings
type Neo4jConfig struct {
	Enabled        bool   `yaml:"enabled"`
	URI            string `yaml:"uri,omitempty"`
	Database       string `yaml:"database,omitempty"`
	Username       string `yaml:"username,omitempty"`
	Password       string `yaml:"password,omitempty"`
	MaxConnections int    `yaml:"max_connections,omitempty"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
