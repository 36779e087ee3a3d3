// Package placement parses placement command flags and launches the placement runtime.
package placement

import (
	"context"
	"flag"
	"time"

	entrypoint "github.com/hirelane/hirelane/internal/platform/cmd"
	placementserver "github.com/hirelane/hirelane/internal/services/placement/app"
)

// Config holds placement command configuration.
type Config struct {
	Port           int           `env:"HIRELANE_PLACEMENT_PORT" envDefault:"8093"`
	DBPath         string        `env:"HIRELANE_PLACEMENT_DB_PATH" envDefault:"data/placement.db"`
	SweepInterval  time.Duration `env:"HIRELANE_PLACEMENT_SWEEP_INTERVAL" envDefault:"1m"`
	SweepBatch     int           `env:"HIRELANE_PLACEMENT_SWEEP_BATCH" envDefault:"100"`
	ProposalWindow time.Duration `env:"HIRELANE_PLACEMENT_PROPOSAL_WINDOW" envDefault:"336h"`
	GateWindow     time.Duration `env:"HIRELANE_PLACEMENT_GATE_WINDOW" envDefault:"72h"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The placement health gRPC server port")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The placement SQLite database path")
	fs.DurationVar(&cfg.SweepInterval, "sweep-interval", cfg.SweepInterval, "Overdue-gate expiry sweep interval")
	fs.IntVar(&cfg.SweepBatch, "sweep-batch", cfg.SweepBatch, "Maximum applications expired per sweep")
	fs.DurationVar(&cfg.ProposalWindow, "proposal-window", cfg.ProposalWindow, "Candidate response window for proposals")
	fs.DurationVar(&cfg.GateWindow, "gate-window", cfg.GateWindow, "Reviewer response window for gates")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the placement runtime.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServicePlacement, func(context.Context) error {
		return placementserver.Run(ctx, placementserver.RuntimeConfig{
			Port:           cfg.Port,
			DBPath:         cfg.DBPath,
			SweepInterval:  cfg.SweepInterval,
			SweepBatch:     cfg.SweepBatch,
			ProposalWindow: cfg.ProposalWindow,
			GateWindow:     cfg.GateWindow,
		})
	})
}
