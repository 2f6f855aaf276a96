package config

import "time"

type Config struct {
	Version int    `toml:"version"`
	Project string `toml:"project"`
	Paths   Paths  `toml:"paths"`
	// Inputs are the .class files, directories and jars analyzed when the
	// command line names none.
	Inputs []string `toml:"inputs"`
	// Classpath lists directories and jars used only to resolve references.
	Classpath     []string      `toml:"classpath"`
	Analysis      Analysis      `toml:"analysis"`
	Exclude       Exclude       `toml:"exclude"`
	Checks        Checks        `toml:"checks"`
	Architecture  Architecture  `toml:"architecture"`
	Output        Output        `toml:"output"`
	DB            Database      `toml:"db"`
	Watch         Watch         `toml:"watch"`
	Observability Observability `toml:"observability"`
}

type Paths struct {
	ProjectRoot string `toml:"project_root"`
	StateDir    string `toml:"state_dir"`
}

type Analysis struct {
	Workers int `toml:"workers"`
	// Include and Exclude select checks by case-insensitive name glob.
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

type Exclude struct {
	// Classes are dotted or slashed class-name globs, e.g. "com.acme.gen.**".
	Classes []string `toml:"classes"`
	// Files are path globs matched against discovered input files.
	Files []string `toml:"files"`
}

type Checks struct {
	Duplication Duplication `toml:"duplication"`
	Strategy    Strategy    `toml:"strategy"`
	Hollywood   Hollywood   `toml:"hollywood"`
}

type Duplication struct {
	Threshold       float64 `toml:"threshold"`
	MinInstructions int     `toml:"min_instructions"`
}

type Strategy struct {
	MinBranches int      `toml:"min_branches"`
	Keywords    []string `toml:"keywords"`
}

type Hollywood struct {
	LowLevel  []string `toml:"low_level"`
	Framework []string `toml:"framework"`
	HighLevel []string `toml:"high_level"`
	Template  []string `toml:"template"`
}

type Architecture struct {
	// Keywords overrides the per-layer keyword sets, keyed by layer name.
	Keywords map[string]LayerKeywords `toml:"keywords"`
	Layers   []ArchitectureLayer      `toml:"layers"`
	Rules    []ArchitectureRule       `toml:"rules"`
}

type LayerKeywords struct {
	Packages []string `toml:"packages"`
	Classes  []string `toml:"classes"`
}

// ArchitectureLayer pins class-name patterns to a layer ahead of keyword
// classification.
type ArchitectureLayer struct {
	Name  string   `toml:"name"`
	Paths []string `toml:"paths"`
}

type ArchitectureRule struct {
	Name  string   `toml:"name"`
	From  string   `toml:"from"`
	Allow []string `toml:"allow"`
}

type Output struct {
	Format string `toml:"format"`
	// Path is the report file; empty writes to stdout.
	Path string `toml:"path"`
	// InjectMarker names a <!-- classlint:NAME:start/end --> block. Markdown
	// reports to an existing file replace only that block with the summary.
	InjectMarker string `toml:"inject_marker"`
}

type Database struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
	// Retention is the number of runs kept per project; 0 keeps all.
	Retention int `toml:"retention"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
	// MaxRate caps re-analysis runs per second.
	MaxRate float64 `toml:"max_rate"`
	Burst   int     `toml:"burst"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
	Insecure     bool   `toml:"insecure"`
}
