// Package timeouts defines shared timeout constants used across the service.
// Centralizing these values prevents drift between layers and makes the
// durations discoverable.
package timeouts

import "time"

// Shutdown limits how long the runtime waits for in-flight work during
// graceful shutdown.
const Shutdown = 5 * time.Second

// GateResponse is the default window a gate reviewer has to decide before the
// expiry sweep marks the application expired.
const GateResponse = 72 * time.Hour

// ProposalResponse is the default window a candidate has to accept or decline
// a recruiter proposal.
const ProposalResponse = 14 * 24 * time.Hour

// ExpirySweepInterval is the default cadence of the overdue-gate sweep.
const ExpirySweepInterval = time.Minute
