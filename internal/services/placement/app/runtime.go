package app

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	placementsqlite "github.com/hirelane/hirelane/internal/services/placement/storage/sqlite"
)

// RuntimeConfig controls placement startup and loop behavior.
type RuntimeConfig struct {
	Port           int
	DBPath         string
	SweepInterval  time.Duration
	SweepBatch     int
	ProposalWindow time.Duration
	GateWindow     time.Duration
}

const (
	defaultPlacementPort = 8093
	defaultPlacementDB   = "data/placement.db"
)

// Run starts placement runtime dependencies, the expiry sweep, and a health
// gRPC server for orchestration probes. It blocks until ctx is canceled.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Port <= 0 {
		cfg.Port = defaultPlacementPort
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = defaultPlacementDB
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create placement storage dir: %w", err)
		}
	}

	store, err := placementsqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open placement sqlite store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Printf("close placement sqlite store: %v", closeErr)
		}
	}()

	service, err := New(Config{
		Applications:   store,
		Attributions:   store,
		Breakdowns:     store,
		Accounts:       store,
		ProposalWindow: cfg.ProposalWindow,
		GateWindow:     cfg.GateWindow,
	})
	if err != nil {
		return fmt.Errorf("build placement service: %w", err)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on placement port %d: %w", cfg.Port, err)
	}
	defer listener.Close()

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("placement.runtime", grpc_health_v1.HealthCheckResponse_SERVING)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(listener)
	}()
	defer func() {
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		<-serveErr
	}()

	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		RunExpirySweep(ctx, service, cfg.SweepInterval, cfg.SweepBatch, log.Printf)
	}()

	log.Printf("placement server listening at %v", listener.Addr())
	<-ctx.Done()
	<-sweepDone
	return nil
}
