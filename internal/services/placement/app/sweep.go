package app

import (
	"context"
	"log"
	"time"

	"github.com/hirelane/hirelane/internal/platform/timeouts"
)

const defaultSweepBatch = 100

// RunExpirySweep periodically expires applications with overdue gate
// deadlines until ctx is canceled. Errors are logged and the loop keeps
// running; a transient storage failure must not stop expiry.
func RunExpirySweep(ctx context.Context, service *Service, interval time.Duration, batch int, logf func(format string, args ...any)) {
	if service == nil {
		return
	}
	if interval <= 0 {
		interval = timeouts.ExpirySweepInterval
	}
	if batch <= 0 {
		batch = defaultSweepBatch
	}
	if logf == nil {
		logf = log.Printf
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, err := service.ExpireOverdueGates(ctx, batch)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logf("expiry sweep: %v", err)
				continue
			}
			if expired > 0 {
				logf("expiry sweep: expired %d applications", expired)
			}
		}
	}
}
