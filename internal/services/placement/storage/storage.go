// Package storage defines persistence contracts for the placement service.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested placement record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a requested write conflicts with uniqueness constraints.
	ErrConflict = errors.New("record conflict")
	// ErrVersionMismatch indicates an optimistic-concurrency check failed because
	// the stored application changed since it was read.
	ErrVersionMismatch = errors.New("application version mismatch")
)

// ApplicationRecord stores one candidate-to-job application row. Role columns
// hold recruiter ids; an empty string means the role is unfilled. The gate
// sequence holds gate labels in decision order.
type ApplicationRecord struct {
	ID          string
	JobID       string
	CandidateID string
	CompanyID   string
	State       string

	CandidateRecruiterID string
	JobOwnerID           string
	CompanyRecruiterID   string
	CandidateSourcerID   string
	CompanySourcerID     string

	GateSequence     []string
	CurrentGateIndex int
	InfoRequested    bool
	ScreenRequired   bool
	ResponseDueAt    *time.Time

	ProposalNotes string
	ProposedAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	// Version increments on every successful update. Writers pass the version
	// they read; a mismatch fails the write.
	Version int64
}

// GateDecisionRecord stores one immutable gate history line.
type GateDecisionRecord struct {
	ApplicationID string
	Seq           int
	Gate          string
	Decision      string
	ReviewerID    string
	Notes         string
	DecidedAt     time.Time
}

// AttributionRecord stores one first-wins sourcer attribution row.
type AttributionRecord struct {
	EntityID    string
	RoleType    string
	RecruiterID string
	CreatedAt   time.Time
}

// BreakdownRecord stores one finalized commission breakdown. Nil amounts mean
// the role was unfilled at hire time.
type BreakdownRecord struct {
	ApplicationID string
	FeeCents      int64
	Tier          string

	CandidateRecruiterCents *int64
	JobOwnerCents           *int64
	CompanyRecruiterCents   *int64
	CandidateSourcerCents   *int64
	CompanySourcerCents     *int64
	PlatformCents           int64
	TotalDistributedCents   int64

	CreatedAt time.Time
}

// AccountRecord stores the live standing of one recruiter account.
type AccountRecord struct {
	RecruiterID string
	Status      string
	UpdatedAt   time.Time
}

// ApplicationStore persists application workflow state.
type ApplicationStore interface {
	// CreateApplication inserts a new application. It returns ErrConflict when
	// an application for the same (job, candidate) pair already exists.
	CreateApplication(ctx context.Context, record ApplicationRecord) (ApplicationRecord, error)
	GetApplication(ctx context.Context, id string) (ApplicationRecord, error)
	GetApplicationByJobAndCandidate(ctx context.Context, jobID string, candidateID string) (ApplicationRecord, error)
	// UpdateApplication persists a new application snapshot and appends any new
	// gate decisions in the same transaction. The write succeeds only when the
	// stored version equals expectedVersion; otherwise ErrVersionMismatch.
	UpdateApplication(ctx context.Context, record ApplicationRecord, expectedVersion int64, decisions []GateDecisionRecord) (ApplicationRecord, error)
	ListGateDecisions(ctx context.Context, applicationID string) ([]GateDecisionRecord, error)
	// ListApplicationsPastDue returns non-terminal applications whose gate
	// response deadline is at or before now, oldest deadline first.
	ListApplicationsPastDue(ctx context.Context, now time.Time, limit int) ([]ApplicationRecord, error)
}

// AttributionStore persists first-sourcer-wins attribution state.
type AttributionStore interface {
	// PutAttributionIfAbsent atomically claims the (entity, role type) pair.
	// It returns the stored record and whether this call created it; a losing
	// concurrent claim receives the earlier winner's record.
	PutAttributionIfAbsent(ctx context.Context, record AttributionRecord) (AttributionRecord, bool, error)
	GetAttribution(ctx context.Context, entityID string, roleType string) (AttributionRecord, error)
}

// BreakdownStore persists finalized commission breakdowns.
type BreakdownStore interface {
	// PutBreakdownIfAbsent stores the breakdown for an application exactly
	// once. It returns the stored record and whether this call created it.
	PutBreakdownIfAbsent(ctx context.Context, record BreakdownRecord) (BreakdownRecord, bool, error)
	GetBreakdown(ctx context.Context, applicationID string) (BreakdownRecord, error)
}

// AccountStore persists recruiter account standing for payout eligibility.
type AccountStore interface {
	PutAccount(ctx context.Context, record AccountRecord) error
	GetAccount(ctx context.Context, recruiterID string) (AccountRecord, error)
}
