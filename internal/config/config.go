// Package config provides configuration management for webofworlds.
//
// The config file describes the scenario (which empires grow from where, and
// how) and the surrounding plumbing; the database stores the star catalog and
// every completed run.
//
// Config file locations (priority order):
//  1. $WEBOFWORLDS_CONFIG
//  2. ./webofworlds.yaml
//  3. $XDG_CONFIG_HOME/webofworlds/config.yaml
//  4. ~/.config/webofworlds/config.yaml
//  5. /etc/webofworlds/config.yaml
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Algorithm names accepted in EmpireConfig.Algorithm
const (
	AlgorithmLinear       = "linear"
	AlgorithmBranching    = "branching"
	AlgorithmBreadthFirst = "breadth_first"
	AlgorithmDirected     = "directed"
)

// Speed and wait model kinds
const (
	SpeedConstant  = "constant"
	SpeedLogistic  = "logistic"
	WaitNone       = "none"
	WaitConstant   = "constant"
	WaitHalfNormal = "half_normal"
)

const defaultDatabase = "./webofworlds.db"

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns a single breadth-first human expansion from Sol
func DefaultConfig() *Config {
	cfg := &Config{
		Version:  1,
		Database: DatabaseConfig{Path: defaultDatabase},
		Empires:  []EmpireConfig{{Name: "Human", Start: "Sol", StartDate: 2100}},
	}
	cfg.applyDefaults()
	return cfg
}

// DefaultEmpire returns an empire with every model parameter filled in
func DefaultEmpire(name string) EmpireConfig {
	e := EmpireConfig{Name: name, Start: "Sol"}
	e.applyDefaults()
	return e
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Database.Path == "" {
		c.Database.Path = defaultDatabase
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Export.Format == "" {
		c.Export.Format = "json"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	if c.Neo4j.Database == "" {
		c.Neo4j.Database = "neo4j"
	}
	for i := range c.Empires {
		c.Empires[i].applyDefaults()
	}
}

func (e *EmpireConfig) applyDefaults() {
	if e.Algorithm == "" {
		e.Algorithm = AlgorithmBreadthFirst
	}
	if e.Start == "" {
		e.Start = "Sol"
	}
	switch e.Algorithm {
	case AlgorithmBreadthFirst:
		if e.Target == 0 {
			e.Target = 100
		}
		if e.Degree == 0 {
			e.Degree = 5
		}
	case AlgorithmBranching:
		if e.Depth == 0 {
			e.Depth = 3
		}
		if e.MaxBranches == 0 {
			e.MaxBranches = 3
		}
	case AlgorithmLinear:
		if e.Iterations == 0 {
			e.Iterations = 100
		}
	}

	if e.Speed.Kind == "" {
		e.Speed.Kind = SpeedLogistic
	}
	if e.Speed.Kind == SpeedLogistic {
		if e.Speed.Initial == 0 {
			e.Speed.Initial = 0.1
		}
		if e.Speed.Growth == 0 {
			e.Speed.Growth = 0.0016
		}
	}

	if e.Wait.Kind == "" {
		e.Wait.Kind = WaitHalfNormal
	}
	if e.Wait.Kind == WaitHalfNormal {
		if e.Wait.Mean == 0 {
			e.Wait.Mean = 100
		}
		if e.Wait.Decay == 0 {
			e.Wait.Decay = 0.005
		}
		if e.Wait.Scale == 0 {
			e.Wait.Scale = 50
		}
	}
}

// Validate reports the first problem found in the config
func (c *Config) Validate() error {
	switch strings.ToLower(c.Export.Format) {
	case "json", "yaml", "yml":
	default:
		return fmt.Errorf("%w: export format %q", ErrInvalidConfig, c.Export.Format)
	}
	if c.Catalog.LimitLY < 0 {
		return fmt.Errorf("%w: catalog limit_ly %g", ErrInvalidConfig, c.Catalog.LimitLY)
	}
	if c.Catalog.Subset < 0 {
		return fmt.Errorf("%w: catalog subset %d", ErrInvalidConfig, c.Catalog.Subset)
	}
	if c.Neo4j.Enabled && c.Neo4j.URI == "" {
		return fmt.Errorf("%w: neo4j enabled without uri", ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(c.Empires))
	for i := range c.Empires {
		e := &c.Empires[i]
		if seen[e.Name] {
			return fmt.Errorf("%w: duplicate empire %q", ErrInvalidConfig, e.Name)
		}
		seen[e.Name] = true
		if err := e.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks one empire's parameters for its algorithm
func (e *EmpireConfig) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("%w: empire without name", ErrInvalidConfig)
	}
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: empire %q: %s", ErrInvalidConfig, e.Name, fmt.Sprintf(format, args...))
	}

	switch e.Algorithm {
	case AlgorithmLinear:
		if e.Iterations < 0 {
			return bad("iterations %d", e.Iterations)
		}
	case AlgorithmBranching:
		if e.Depth < 0 || e.MaxBranches < 0 {
			return bad("depth %d, max_branches %d", e.Depth, e.MaxBranches)
		}
	case AlgorithmBreadthFirst:
		if e.Target < 1 {
			return bad("target %d", e.Target)
		}
		if e.Degree < 1 {
			return bad("degree %d", e.Degree)
		}
		if e.EndDate != nil && *e.EndDate < e.StartDate {
			return bad("end_date %g before start_date %g", *e.EndDate, e.StartDate)
		}
	case AlgorithmDirected:
		if e.Directed.End == "" {
			return bad("directed growth without end star")
		}
		if !(e.Directed.Limit > 0) {
			return bad("directed limit %g", e.Directed.Limit)
		}
	default:
		return bad("unknown algorithm %q", e.Algorithm)
	}

	switch e.Speed.Kind {
	case SpeedConstant:
		if !(e.Speed.Value > 0) {
			return bad("constant speed %g", e.Speed.Value)
		}
	case SpeedLogistic:
		if !(e.Speed.Initial > 0) {
			return bad("logistic initial speed %g", e.Speed.Initial)
		}
	default:
		return bad("unknown speed kind %q", e.Speed.Kind)
	}

	switch e.Wait.Kind {
	case WaitNone:
	case WaitConstant:
		if e.Wait.Mean < 0 {
			return bad("constant wait %g", e.Wait.Mean)
		}
	case WaitHalfNormal:
		if e.Wait.Scale < 0 {
			return bad("wait scale %g", e.Wait.Scale)
		}
	default:
		return bad("unknown wait kind %q", e.Wait.Kind)
	}
	return nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Database: %s, Export: %s\n", c.Database.Path, c.Export.Format)
	summary += fmt.Sprintf("Empires (%d):", len(c.Empires))
	for _, e := range c.Empires {
		summary += fmt.Sprintf(" %s[%s from %s]", e.Name, e.Algorithm, e.Start)
	}
	return summary
}
