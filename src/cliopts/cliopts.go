// Package cliopts is the CLI/options glue named in spec.md §1 as an
// external collaborator: it turns flags and environment variables into
// a RunConfig the rest of the harness consumes. Grounded on the
// teacher's cobra root command wiring (go.mod direct dependency) and its
// envconfig+godotenv "load .env, then bind struct tags" pattern
// referenced from src/app/start.go's mustLoadEnv.
package cliopts

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/pstressdb/dbstress/src/errs"
)

// RunConfig is every setting the standalone runner needs to start a
// workload.
type RunConfig struct {
	DSN         string        `envconfig:"DBSTRESS_DSN"`
	Workers     int           `envconfig:"DBSTRESS_WORKERS" default:"8"`
	Duration    time.Duration `envconfig:"DBSTRESS_DURATION" default:"60s"`
	Seed        uint64        `envconfig:"DBSTRESS_SEED"`
	Capacity    int           `envconfig:"DBSTRESS_CAPACITY" default:"200"`
	MinTables   int           `envconfig:"DBSTRESS_MIN_TABLES" default:"1"`
	MaxTables   int           `envconfig:"DBSTRESS_MAX_TABLES" default:"50"`
	WeightsFile string        `envconfig:"DBSTRESS_WEIGHTS_FILE"`
	LogDir      string        `envconfig:"DBSTRESS_LOG_DIR" default:"./logs"`
	Environment string        `envconfig:"DBSTRESS_ENV" default:"production"`
}

// Validate reports a ConfigError for any conflicting or malformed
// setting that would otherwise surface as a confusing failure deep
// inside the workload.
func (c RunConfig) Validate() error {
	if c.DSN == "" {
		return errs.NewConfigError("dsn", "must not be empty")
	}
	if c.Workers <= 0 {
		return errs.NewConfigError("workers", "must be positive")
	}
	if c.MinTables < 0 || c.MaxTables < c.MinTables {
		return errs.NewConfigError("min_tables/max_tables", "max_tables must be >= min_tables >= 0")
	}
	if c.Capacity < c.MaxTables {
		return errs.NewConfigError("capacity", "must be >= max_tables")
	}
	return nil
}

// Load reads an optional .env file, binds environment variables into a
// RunConfig, and returns it. An empty envFile skips .env loading; a
// named .env file that cannot be read is an error, as are malformed
// environment values.
func Load(envFile string) (RunConfig, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return RunConfig{}, fmt.Errorf("cliopts: load %s: %w", envFile, err)
		}
	}

	var cfg RunConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return RunConfig{}, fmt.Errorf("cliopts: process env: %w", err)
	}
	return cfg, nil
}

// BindFlags registers the flag surface on cmd that overrides whatever
// Load produced, exactly the teacher's layering of cobra flags on top of
// env-sourced defaults.
func BindFlags(cmd *cobra.Command, cfg *RunConfig) {
	cmd.Flags().StringVar(&cfg.DSN, "dsn", cfg.DSN, "SQL server DSN")
	cmd.Flags().IntVar(&cfg.Workers, "workers", cfg.Workers, "worker count")
	cmd.Flags().DurationVar(&cfg.Duration, "duration", cfg.Duration, "run duration")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", cfg.Seed, "RNG seed (0 = random)")
	cmd.Flags().IntVar(&cfg.Capacity, "capacity", cfg.Capacity, "metadata registry capacity")
	cmd.Flags().IntVar(&cfg.MinTables, "min-tables", cfg.MinTables, "minimum table count before drops stop")
	cmd.Flags().IntVar(&cfg.MaxTables, "max-tables", cfg.MaxTables, "maximum table count before creates stop")
	cmd.Flags().StringVar(&cfg.WeightsFile, "weights-file", cfg.WeightsFile, "action weight overrides file path (stored in RunConfig; the runner does not read it)")
	cmd.Flags().StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "directory for per-worker/connection log files")
}
