package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	content := `
project = "shop"
inputs = ["target/classes"]
classpath = ["lib/commons.jar"]

[analysis]
workers = 4
include = ["*"]
exclude = ["Encapsulation"]

[exclude]
classes = ["com.acme.generated.**"]
files = ["**/*Test.class"]

[checks.duplication]
threshold = 0.9
min_instructions = 8

[checks.strategy]
min_branches = 5
keywords = ["Strategy"]

[architecture.keywords.data]
packages = ["store"]

[[architecture.layers]]
name = "Presentation"
paths = ["com.acme.web.**"]

[[architecture.rules]]
name = "web"
from = "presentation"
allow = ["domain"]

[output]
format = "SARIF"
path = "out/classlint.sarif"

[db]
enabled = true

[watch]
debounce = "1s"
max_rate = 0.5
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Project != "shop" {
		t.Errorf("Expected project shop, got %q", cfg.Project)
	}
	if len(cfg.Inputs) != 1 || cfg.Inputs[0] != "target/classes" {
		t.Errorf("Unexpected inputs: %v", cfg.Inputs)
	}
	if cfg.Analysis.Workers != 4 {
		t.Errorf("Expected 4 workers, got %d", cfg.Analysis.Workers)
	}
	if cfg.Checks.Duplication.Threshold != 0.9 || cfg.Checks.Duplication.MinInstructions != 8 {
		t.Errorf("Unexpected duplication settings: %+v", cfg.Checks.Duplication)
	}
	if cfg.Checks.Strategy.MinBranches != 5 {
		t.Errorf("Expected min_branches 5, got %d", cfg.Checks.Strategy.MinBranches)
	}
	if got := cfg.Architecture.Keywords["data"].Packages; len(got) != 1 || got[0] != "store" {
		t.Errorf("Unexpected data keywords: %v", got)
	}
	if cfg.Architecture.Layers[0].Name != "presentation" {
		t.Errorf("Expected normalized layer name, got %q", cfg.Architecture.Layers[0].Name)
	}
	if cfg.Output.Format != "sarif" {
		t.Errorf("Expected format sarif, got %q", cfg.Output.Format)
	}
	if cfg.Watch.Debounce != time.Second || cfg.Watch.MaxRate != 0.5 {
		t.Errorf("Unexpected watch settings: %+v", cfg.Watch)
	}
	if !cfg.DB.Enabled || cfg.DB.Path != "history.db" {
		t.Errorf("Unexpected db settings: %+v", cfg.DB)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Version != 1 {
		t.Errorf("Expected version 1, got %d", cfg.Version)
	}
	if cfg.Checks.Duplication.Threshold != 0.8 || cfg.Checks.Duplication.MinInstructions != 5 {
		t.Errorf("Unexpected duplication defaults: %+v", cfg.Checks.Duplication)
	}
	if cfg.Checks.Strategy.MinBranches != 3 {
		t.Errorf("Expected min_branches 3, got %d", cfg.Checks.Strategy.MinBranches)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("Expected text output, got %q", cfg.Output.Format)
	}
	if cfg.DB.Enabled {
		t.Error("Expected history disabled by default")
	}
	if cfg.Watch.Debounce != 500*time.Millisecond || cfg.Watch.Burst != 1 {
		t.Errorf("Unexpected watch defaults: %+v", cfg.Watch)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"version", "version = 3", "unsupported config version"},
		{"workers", "[analysis]\nworkers = -1", "analysis.workers"},
		{"threshold", "[checks.duplication]\nthreshold = 1.5", "checks.duplication.threshold"},
		{"min instructions", "[checks.duplication]\nmin_instructions = -2", "min_instructions"},
		{"format", "[output]\nformat = \"xml\"", "output.format"},
		{"bad class glob", "[exclude]\nclasses = [\"com.[acme\"]", "exclude.classes"},
		{"layer name", "[[architecture.layers]]\nname = \"infra\"\npaths = [\"a.b\"]", "must be one of"},
		{"layer without paths", "[[architecture.layers]]\nname = \"data\"", "at least one path pattern"},
		{"shared pattern", "[[architecture.layers]]\nname = \"data\"\npaths = [\"a.b\"]\n[[architecture.layers]]\nname = \"domain\"\npaths = [\"a/b\"]", "declared in both"},
		{"duplicate rule", "[[architecture.rules]]\nname = \"r1\"\nfrom = \"data\"\nallow = [\"domain\"]\n[[architecture.rules]]\nname = \"r2\"\nfrom = \"data\"\nallow = [\"domain\"]", "multiple rules"},
		{"unknown allow", "[[architecture.rules]]\nname = \"r\"\nfrom = \"data\"\nallow = [\"infra\"]", "unknown allowed layer"},
		{"keyword layer", "[architecture.keywords.unknown]\nclasses = [\"x\"]", "architecture.keywords"},
		{"watch rate", "[watch]\nmax_rate = -1.0", "watch.max_rate"},
		{"retention", "[db]\nretention = -3", "db.retention"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	missing := filepath.Join(t.TempDir(), DefaultFile)

	cfg, err := LoadOrDefault(missing, false)
	if err != nil {
		t.Fatalf("expected defaults for missing implicit config: %v", err)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("Expected default format, got %q", cfg.Output.Format)
	}

	if _, err := LoadOrDefault(missing, true); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("CLASSLINT_ANALYSIS_WORKERS", "3")
	t.Setenv("CLASSLINT_OUTPUT_FORMAT", "json")
	t.Setenv("CLASSLINT_DB_ENABLED", "true")
	t.Setenv("CLASSLINT_WATCH_DEBOUNCE", "2s")
	t.Setenv("CLASSLINT_DB_RETENTION", "30")
	t.Setenv("CLASSLINT_OUTPUT_INJECT_MARKER", " analysis ")
	t.Setenv("CLASSLINT_CLASSPATH", strings.Join([]string{"a.jar", " ", "classes"}, string(os.PathListSeparator)))
	t.Setenv("CLASSLINT_ANALYSIS_WORKERS_IGNORED", "x")

	cfg, err := Load(writeConfig(t, "[analysis]\nworkers = 8\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Analysis.Workers != 3 {
		t.Errorf("Expected env workers 3, got %d", cfg.Analysis.Workers)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Expected env format json, got %q", cfg.Output.Format)
	}
	if !cfg.DB.Enabled {
		t.Error("Expected env to enable history")
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("Expected env debounce 2s, got %v", cfg.Watch.Debounce)
	}
	if cfg.DB.Retention != 30 {
		t.Errorf("Expected env retention 30, got %d", cfg.DB.Retention)
	}
	if cfg.Output.InjectMarker != "analysis" {
		t.Errorf("Expected trimmed inject marker, got %q", cfg.Output.InjectMarker)
	}
	if len(cfg.Classpath) != 2 || cfg.Classpath[1] != "classes" {
		t.Errorf("Unexpected classpath: %v", cfg.Classpath)
	}
}
