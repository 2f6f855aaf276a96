package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: CLASSLINT_[SECTION]_[KEY] (e.g., CLASSLINT_ANALYSIS_WORKERS).
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.Project, "CLASSLINT_PROJECT")
	setEnvString(&cfg.Paths.ProjectRoot, "CLASSLINT_PATHS_PROJECT_ROOT")
	setEnvString(&cfg.Paths.StateDir, "CLASSLINT_PATHS_STATE_DIR")
	setEnvList(&cfg.Classpath, "CLASSLINT_CLASSPATH")

	// Analysis
	setEnvInt(&cfg.Analysis.Workers, "CLASSLINT_ANALYSIS_WORKERS")

	// Output
	setEnvString(&cfg.Output.Format, "CLASSLINT_OUTPUT_FORMAT")
	setEnvString(&cfg.Output.Path, "CLASSLINT_OUTPUT_PATH")
	setEnvString(&cfg.Output.InjectMarker, "CLASSLINT_OUTPUT_INJECT_MARKER")

	// Database
	setEnvBool(&cfg.DB.Enabled, "CLASSLINT_DB_ENABLED")
	setEnvString(&cfg.DB.Path, "CLASSLINT_DB_PATH")
	setEnvDuration(&cfg.DB.BusyTimeout, "CLASSLINT_DB_BUSY_TIMEOUT")
	setEnvInt(&cfg.DB.Retention, "CLASSLINT_DB_RETENTION")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "CLASSLINT_WATCH_DEBOUNCE")
	setEnvFloat64(&cfg.Watch.MaxRate, "CLASSLINT_WATCH_MAX_RATE")

	// Observability
	setEnvString(&cfg.Observability.MetricsAddr, "CLASSLINT_OBSERVABILITY_METRICS_ADDR")
	setEnvString(&cfg.Observability.OTLPEndpoint, "CLASSLINT_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvBool(&cfg.Observability.Insecure, "CLASSLINT_OBSERVABILITY_INSECURE")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

// setEnvList splits on the platform list separator, like CLASSPATH.
func setEnvList(target *[]string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = trimAll(strings.Split(val, string(os.PathListSeparator)))
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
