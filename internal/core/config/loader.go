package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = "classlint.toml"

// Load decodes the TOML file at path, applies environment overrides and
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}
	ApplyEnvOverrides(&cfg)
	return finish(&cfg)
}

// LoadOrDefault loads path when it exists. A missing file yields the
// defaults plus environment overrides unless the caller asked for that file
// explicitly.
func LoadOrDefault(path string, explicit bool) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if explicit || !os.IsNotExist(err) {
			return nil, err
		}
		cfg := &Config{}
		ApplyEnvOverrides(cfg)
		return finish(cfg)
	}
	return Load(path)
}

// DefaultConfig returns a validated configuration without reading a file.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	normalize(cfg)
	return cfg
}

func finish(cfg *Config) (*Config, error) {
	applyDefaults(cfg)
	normalize(cfg)

	if err := validateVersion(cfg); err != nil {
		return nil, err
	}
	if err := validateAnalysis(cfg); err != nil {
		return nil, err
	}
	if err := validateExclude(cfg); err != nil {
		return nil, err
	}
	if err := validateChecks(cfg); err != nil {
		return nil, err
	}
	if err := validateArchitecture(cfg); err != nil {
		return nil, err
	}
	if err := validateOutput(cfg); err != nil {
		return nil, err
	}
	if err := validateDatabase(cfg); err != nil {
		return nil, err
	}
	if err := validateWatch(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if strings.TrimSpace(cfg.Paths.StateDir) == "" {
		cfg.Paths.StateDir = ".classlint"
	}

	if cfg.Checks.Duplication.Threshold == 0 {
		cfg.Checks.Duplication.Threshold = 0.8
	}
	if cfg.Checks.Duplication.MinInstructions == 0 {
		cfg.Checks.Duplication.MinInstructions = 5
	}
	if cfg.Checks.Strategy.MinBranches == 0 {
		cfg.Checks.Strategy.MinBranches = 3
	}

	if strings.TrimSpace(cfg.Output.Format) == "" {
		cfg.Output.Format = "text"
	}

	if strings.TrimSpace(cfg.DB.Path) == "" {
		cfg.DB.Path = "history.db"
	}
	if cfg.DB.BusyTimeout <= 0 {
		cfg.DB.BusyTimeout = 5 * time.Second
	}

	// Default debounce if not set.
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.MaxRate == 0 {
		cfg.Watch.MaxRate = 1
	}
	if cfg.Watch.Burst <= 0 {
		cfg.Watch.Burst = 1
	}
}

func normalize(cfg *Config) {
	cfg.Project = strings.TrimSpace(cfg.Project)
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	cfg.Output.Path = strings.TrimSpace(cfg.Output.Path)
	cfg.Output.InjectMarker = strings.TrimSpace(cfg.Output.InjectMarker)
	cfg.Inputs = trimAll(cfg.Inputs)
	cfg.Classpath = trimAll(cfg.Classpath)
	cfg.Analysis.Include = trimAll(cfg.Analysis.Include)
	cfg.Analysis.Exclude = trimAll(cfg.Analysis.Exclude)
	cfg.Exclude.Classes = trimAll(cfg.Exclude.Classes)
	cfg.Exclude.Files = trimAll(cfg.Exclude.Files)
	for i := range cfg.Architecture.Layers {
		layer := &cfg.Architecture.Layers[i]
		layer.Name = strings.ToLower(strings.TrimSpace(layer.Name))
		layer.Paths = trimAll(layer.Paths)
	}
	for i := range cfg.Architecture.Rules {
		rule := &cfg.Architecture.Rules[i]
		rule.Name = strings.TrimSpace(rule.Name)
		rule.From = strings.ToLower(strings.TrimSpace(rule.From))
		for j := range rule.Allow {
			rule.Allow[j] = strings.ToLower(strings.TrimSpace(rule.Allow[j]))
		}
	}
	if len(cfg.Architecture.Keywords) > 0 {
		keywords := make(map[string]LayerKeywords, len(cfg.Architecture.Keywords))
		for name, kw := range cfg.Architecture.Keywords {
			keywords[strings.ToLower(strings.TrimSpace(name))] = kw
		}
		cfg.Architecture.Keywords = keywords
	}
}

func trimAll(in []string) []string {
	if len(in) == 0 {
		return in
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
