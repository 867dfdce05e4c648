// Package config loads CLI defaults for fpgapr, in the same override
// order dbt's config package applies to its repo-root config.yaml: built-in
// defaults, then an optional .env file, then process environment
// variables, then (left to cliapp) explicit flags.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Recognized environment variables.
const (
	envArchitecture = "FPGAPR_ARCHITECTURE"
	envSeed         = "FPGAPR_SEED"
	envMaxTrials    = "FPGAPR_MAX_TRIALS"
	envReportAddr   = "FPGAPR_REPORT_ADDR"
	envTraceDB      = "FPGAPR_TRACE_DB"
)

// Config holds the CLI's resolved default values, before any explicit
// flag overrides cliapp applies on top.
type Config struct {
	Architecture string
	Seed         int64
	MaxTrials    int
	ReportAddr   string
	TraceDB      string
}

// defaults are the built-in values used when neither a .env file nor the
// environment sets a variable.
func defaults() Config {
	return Config{
		Architecture: "",
		Seed:         1,
		MaxTrials:    100,
		ReportAddr:   "",
		TraceDB:      "",
	}
}

// Load resolves a Config from built-in defaults, an optional .env file at
// envPath (silently skipped if absent), and the process environment, in
// that increasing-precedence order. envPath may be empty to skip the file
// stage entirely.
func Load(envPath string) Config {
	cfg := defaults()

	if envPath != "" {
		if vars, err := godotenv.Read(envPath); err == nil {
			applyVars(&cfg, func(key string) (string, bool) {
				v, ok := vars[key]
				return v, ok
			})
		}
	}

	applyVars(&cfg, func(key string) (string, bool) {
		return os.LookupEnv(key)
	})

	return cfg
}

func applyVars(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(envArchitecture); ok && v != "" {
		cfg.Architecture = v
	}

	if v, ok := lookup(envSeed); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = n
		}
	}

	if v, ok := lookup(envMaxTrials); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxTrials = n
		}
	}

	if v, ok := lookup(envReportAddr); ok && v != "" {
		cfg.ReportAddr = v
	}

	if v, ok := lookup(envTraceDB); ok && v != "" {
		cfg.TraceDB = v
	}
}
