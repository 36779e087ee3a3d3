// Package sqlite provides SQLite-backed persistence for placement state.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/hirelane/hirelane/internal/platform/storage/sqlitemigrate"
	"github.com/hirelane/hirelane/internal/services/placement/storage"
	"github.com/hirelane/hirelane/internal/services/placement/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for placement state.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a placement SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := store.runMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) runMigrations() error {
	return sqlitemigrate.ApplyMigrations(s.sqlDB, migrations.FS, "")
}

// CreateApplication inserts a new application row.
func (s *Store) CreateApplication(ctx context.Context, record storage.ApplicationRecord) (storage.ApplicationRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.ApplicationRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ApplicationRecord{}, fmt.Errorf("storage is not configured")
	}
	normalized, err := normalizeApplicationRecord(record)
	if err != nil {
		return storage.ApplicationRecord{}, err
	}
	if normalized.Version <= 0 {
		normalized.Version = 1
	}

	_, err = s.sqlDB.ExecContext(ctx, `
	INSERT INTO applications (
		id, job_id, candidate_id, company_id, state,
		candidate_recruiter_id, job_owner_id, company_recruiter_id, candidate_sourcer_id, company_sourcer_id,
		gate_sequence, current_gate_index, info_requested, screen_required, response_due_at,
		proposal_notes, proposed_at, created_at, updated_at, version
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, applicationArgs(normalized)...)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ApplicationRecord{}, storage.ErrConflict
		}
		return storage.ApplicationRecord{}, fmt.Errorf("create application: %w", err)
	}
	return normalized, nil
}

// GetApplication loads one application by id.
func (s *Store) GetApplication(ctx context.Context, id string) (storage.ApplicationRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.ApplicationRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ApplicationRecord{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.ApplicationRecord{}, fmt.Errorf("application id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, applicationSelect+` WHERE id = ?`, id)
	record, err := scanApplication(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ApplicationRecord{}, storage.ErrNotFound
		}
		return storage.ApplicationRecord{}, fmt.Errorf("get application: %w", err)
	}
	return record, nil
}

// GetApplicationByJobAndCandidate loads the application for a (job, candidate) pair.
func (s *Store) GetApplicationByJobAndCandidate(ctx context.Context, jobID string, candidateID string) (storage.ApplicationRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.ApplicationRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ApplicationRecord{}, fmt.Errorf("storage is not configured")
	}
	jobID = strings.TrimSpace(jobID)
	candidateID = strings.TrimSpace(candidateID)
	if jobID == "" {
		return storage.ApplicationRecord{}, fmt.Errorf("job id is required")
	}
	if candidateID == "" {
		return storage.ApplicationRecord{}, fmt.Errorf("candidate id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, applicationSelect+` WHERE job_id = ? AND candidate_id = ?`, jobID, candidateID)
	record, err := scanApplication(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ApplicationRecord{}, storage.ErrNotFound
		}
		return storage.ApplicationRecord{}, fmt.Errorf("get application by job and candidate: %w", err)
	}
	return record, nil
}

// UpdateApplication persists a new application snapshot guarded by the version
// read earlier, appending new gate decisions in the same transaction.
func (s *Store) UpdateApplication(ctx context.Context, record storage.ApplicationRecord, expectedVersion int64, decisions []storage.GateDecisionRecord) (storage.ApplicationRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.ApplicationRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ApplicationRecord{}, fmt.Errorf("storage is not configured")
	}
	normalized, err := normalizeApplicationRecord(record)
	if err != nil {
		return storage.ApplicationRecord{}, err
	}
	if expectedVersion <= 0 {
		return storage.ApplicationRecord{}, fmt.Errorf("expected version must be greater than zero")
	}
	normalized.Version = expectedVersion + 1

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.ApplicationRecord{}, fmt.Errorf("begin application update: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback application update: %v", cause, rollbackErr)
		}
		return cause
	}

	args := applicationArgs(normalized)
	// Shift id to the WHERE clause: args holds id first, then the SET values.
	result, err := tx.ExecContext(ctx, `
	UPDATE applications SET
		job_id = ?, candidate_id = ?, company_id = ?, state = ?,
		candidate_recruiter_id = ?, job_owner_id = ?, company_recruiter_id = ?, candidate_sourcer_id = ?, company_sourcer_id = ?,
		gate_sequence = ?, current_gate_index = ?, info_requested = ?, screen_required = ?, response_due_at = ?,
		proposal_notes = ?, proposed_at = ?, created_at = ?, updated_at = ?, version = ?
	WHERE id = ? AND version = ?
	`, append(args[1:], normalized.ID, expectedVersion)...)
	if err != nil {
		return storage.ApplicationRecord{}, rollbackWith(fmt.Errorf("update application: %w", err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storage.ApplicationRecord{}, rollbackWith(fmt.Errorf("update application rows affected: %w", err))
	}
	if affected == 0 {
		var exists int
		scanErr := tx.QueryRowContext(ctx, `SELECT 1 FROM applications WHERE id = ?`, normalized.ID).Scan(&exists)
		if errors.Is(scanErr, sql.ErrNoRows) {
			return storage.ApplicationRecord{}, rollbackWith(storage.ErrNotFound)
		}
		if scanErr != nil {
			return storage.ApplicationRecord{}, rollbackWith(fmt.Errorf("check application exists: %w", scanErr))
		}
		return storage.ApplicationRecord{}, rollbackWith(storage.ErrVersionMismatch)
	}

	for _, decision := range decisions {
		if err := insertGateDecision(ctx, tx, decision); err != nil {
			return storage.ApplicationRecord{}, rollbackWith(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storage.ApplicationRecord{}, fmt.Errorf("commit application update: %w", err)
	}
	return normalized, nil
}

// ListGateDecisions returns the gate history for one application in decision order.
func (s *Store) ListGateDecisions(ctx context.Context, applicationID string) ([]storage.GateDecisionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	applicationID = strings.TrimSpace(applicationID)
	if applicationID == "" {
		return nil, fmt.Errorf("application id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
	SELECT application_id, seq, gate, decision, reviewer_id, notes, decided_at
	FROM gate_decisions
	WHERE application_id = ?
	ORDER BY seq ASC
	`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("list gate decisions: %w", err)
	}
	defer rows.Close()

	var results []storage.GateDecisionRecord
	for rows.Next() {
		var record storage.GateDecisionRecord
		var decidedAt int64
		if err := rows.Scan(&record.ApplicationID, &record.Seq, &record.Gate, &record.Decision, &record.ReviewerID, &record.Notes, &decidedAt); err != nil {
			return nil, fmt.Errorf("scan gate decision row: %w", err)
		}
		record.DecidedAt = fromMillis(decidedAt)
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gate decision rows: %w", err)
	}
	return results, nil
}

// ListApplicationsPastDue returns applications whose gate response deadline
// elapsed, oldest deadline first.
func (s *Store) ListApplicationsPastDue(ctx context.Context, now time.Time, limit int) ([]storage.ApplicationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if now.IsZero() {
		return nil, fmt.Errorf("now is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, applicationSelect+`
	WHERE response_due_at IS NOT NULL AND response_due_at <= ?
	ORDER BY response_due_at ASC, id ASC
	LIMIT ?
	`, toMillis(now.UTC()), limit)
	if err != nil {
		return nil, fmt.Errorf("list past-due applications: %w", err)
	}
	defer rows.Close()

	results := make([]storage.ApplicationRecord, 0, limit)
	for rows.Next() {
		record, scanErr := scanApplication(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan past-due application row: %w", scanErr)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate past-due application rows: %w", err)
	}
	return results, nil
}

// PutAttributionIfAbsent atomically claims one (entity, role type) pair.
// The first writer wins; later writers receive the stored record unchanged.
func (s *Store) PutAttributionIfAbsent(ctx context.Context, record storage.AttributionRecord) (storage.AttributionRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return storage.AttributionRecord{}, false, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.AttributionRecord{}, false, fmt.Errorf("storage is not configured")
	}
	record.EntityID = strings.TrimSpace(record.EntityID)
	record.RoleType = strings.TrimSpace(record.RoleType)
	record.RecruiterID = strings.TrimSpace(record.RecruiterID)
	if record.EntityID == "" {
		return storage.AttributionRecord{}, false, fmt.Errorf("entity id is required")
	}
	if record.RoleType == "" {
		return storage.AttributionRecord{}, false, fmt.Errorf("role type is required")
	}
	if record.RecruiterID == "" {
		return storage.AttributionRecord{}, false, fmt.Errorf("recruiter id is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.AttributionRecord{}, false, fmt.Errorf("created_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()

	result, err := s.sqlDB.ExecContext(ctx, `
	INSERT INTO sourcer_attributions (entity_id, role_type, recruiter_id, created_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(entity_id, role_type) DO NOTHING
	`, record.EntityID, record.RoleType, record.RecruiterID, toMillis(record.CreatedAt))
	if err != nil {
		return storage.AttributionRecord{}, false, fmt.Errorf("put attribution: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storage.AttributionRecord{}, false, fmt.Errorf("put attribution rows affected: %w", err)
	}
	if affected > 0 {
		return record, true, nil
	}

	existing, err := s.GetAttribution(ctx, record.EntityID, record.RoleType)
	if err != nil {
		return storage.AttributionRecord{}, false, err
	}
	return existing, false, nil
}

// GetAttribution loads one attribution by entity and role type.
func (s *Store) GetAttribution(ctx context.Context, entityID string, roleType string) (storage.AttributionRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.AttributionRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.AttributionRecord{}, fmt.Errorf("storage is not configured")
	}
	entityID = strings.TrimSpace(entityID)
	roleType = strings.TrimSpace(roleType)
	if entityID == "" {
		return storage.AttributionRecord{}, fmt.Errorf("entity id is required")
	}
	if roleType == "" {
		return storage.AttributionRecord{}, fmt.Errorf("role type is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
	SELECT entity_id, role_type, recruiter_id, created_at
	FROM sourcer_attributions
	WHERE entity_id = ? AND role_type = ?
	`, entityID, roleType)
	var record storage.AttributionRecord
	var createdAt int64
	if err := row.Scan(&record.EntityID, &record.RoleType, &record.RecruiterID, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.AttributionRecord{}, storage.ErrNotFound
		}
		return storage.AttributionRecord{}, fmt.Errorf("get attribution: %w", err)
	}
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

// PutBreakdownIfAbsent stores a finalized breakdown exactly once per application.
func (s *Store) PutBreakdownIfAbsent(ctx context.Context, record storage.BreakdownRecord) (storage.BreakdownRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return storage.BreakdownRecord{}, false, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.BreakdownRecord{}, false, fmt.Errorf("storage is not configured")
	}
	record.ApplicationID = strings.TrimSpace(record.ApplicationID)
	record.Tier = strings.TrimSpace(record.Tier)
	if record.ApplicationID == "" {
		return storage.BreakdownRecord{}, false, fmt.Errorf("application id is required")
	}
	if record.Tier == "" {
		return storage.BreakdownRecord{}, false, fmt.Errorf("tier is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.BreakdownRecord{}, false, fmt.Errorf("created_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()

	result, err := s.sqlDB.ExecContext(ctx, `
	INSERT INTO commission_breakdowns (
		application_id, fee_cents, tier,
		candidate_recruiter_cents, job_owner_cents, company_recruiter_cents, candidate_sourcer_cents, company_sourcer_cents,
		platform_cents, total_distributed_cents, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(application_id) DO NOTHING
	`,
		record.ApplicationID,
		record.FeeCents,
		record.Tier,
		nullableCents(record.CandidateRecruiterCents),
		nullableCents(record.JobOwnerCents),
		nullableCents(record.CompanyRecruiterCents),
		nullableCents(record.CandidateSourcerCents),
		nullableCents(record.CompanySourcerCents),
		record.PlatformCents,
		record.TotalDistributedCents,
		toMillis(record.CreatedAt),
	)
	if err != nil {
		return storage.BreakdownRecord{}, false, fmt.Errorf("put breakdown: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storage.BreakdownRecord{}, false, fmt.Errorf("put breakdown rows affected: %w", err)
	}
	if affected > 0 {
		return record, true, nil
	}

	existing, err := s.GetBreakdown(ctx, record.ApplicationID)
	if err != nil {
		return storage.BreakdownRecord{}, false, err
	}
	return existing, false, nil
}

// GetBreakdown loads the finalized breakdown for one application.
func (s *Store) GetBreakdown(ctx context.Context, applicationID string) (storage.BreakdownRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.BreakdownRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.BreakdownRecord{}, fmt.Errorf("storage is not configured")
	}
	applicationID = strings.TrimSpace(applicationID)
	if applicationID == "" {
		return storage.BreakdownRecord{}, fmt.Errorf("application id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
	SELECT application_id, fee_cents, tier,
		candidate_recruiter_cents, job_owner_cents, company_recruiter_cents, candidate_sourcer_cents, company_sourcer_cents,
		platform_cents, total_distributed_cents, created_at
	FROM commission_breakdowns
	WHERE application_id = ?
	`, applicationID)
	var record storage.BreakdownRecord
	var candidateRecruiter, jobOwner, companyRecruiter, candidateSourcer, companySourcer sql.NullInt64
	var createdAt int64
	if err := row.Scan(
		&record.ApplicationID,
		&record.FeeCents,
		&record.Tier,
		&candidateRecruiter,
		&jobOwner,
		&companyRecruiter,
		&candidateSourcer,
		&companySourcer,
		&record.PlatformCents,
		&record.TotalDistributedCents,
		&createdAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.BreakdownRecord{}, storage.ErrNotFound
		}
		return storage.BreakdownRecord{}, fmt.Errorf("get breakdown: %w", err)
	}
	record.CandidateRecruiterCents = centsPointer(candidateRecruiter)
	record.JobOwnerCents = centsPointer(jobOwner)
	record.CompanyRecruiterCents = centsPointer(companyRecruiter)
	record.CandidateSourcerCents = centsPointer(candidateSourcer)
	record.CompanySourcerCents = centsPointer(companySourcer)
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

// PutAccount upserts one recruiter account standing row.
func (s *Store) PutAccount(ctx context.Context, record storage.AccountRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	record.RecruiterID = strings.TrimSpace(record.RecruiterID)
	record.Status = strings.TrimSpace(record.Status)
	if record.RecruiterID == "" {
		return fmt.Errorf("recruiter id is required")
	}
	if record.Status == "" {
		return fmt.Errorf("account status is required")
	}
	if record.UpdatedAt.IsZero() {
		return fmt.Errorf("updated_at is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
	INSERT INTO accounts (recruiter_id, status, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(recruiter_id) DO UPDATE SET
		status = excluded.status,
		updated_at = excluded.updated_at
	`, record.RecruiterID, record.Status, toMillis(record.UpdatedAt.UTC()))
	if err != nil {
		return fmt.Errorf("put account: %w", err)
	}
	return nil
}

// GetAccount loads one recruiter account standing row.
func (s *Store) GetAccount(ctx context.Context, recruiterID string) (storage.AccountRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.AccountRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.AccountRecord{}, fmt.Errorf("storage is not configured")
	}
	recruiterID = strings.TrimSpace(recruiterID)
	if recruiterID == "" {
		return storage.AccountRecord{}, fmt.Errorf("recruiter id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
	SELECT recruiter_id, status, updated_at
	FROM accounts
	WHERE recruiter_id = ?
	`, recruiterID)
	var record storage.AccountRecord
	var updatedAt int64
	if err := row.Scan(&record.RecruiterID, &record.Status, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.AccountRecord{}, storage.ErrNotFound
		}
		return storage.AccountRecord{}, fmt.Errorf("get account: %w", err)
	}
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

type scanner func(dest ...any) error

type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const applicationSelect = `
	SELECT id, job_id, candidate_id, company_id, state,
		candidate_recruiter_id, job_owner_id, company_recruiter_id, candidate_sourcer_id, company_sourcer_id,
		gate_sequence, current_gate_index, info_requested, screen_required, response_due_at,
		proposal_notes, proposed_at, created_at, updated_at, version
	FROM applications`

func normalizeApplicationRecord(record storage.ApplicationRecord) (storage.ApplicationRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.JobID = strings.TrimSpace(record.JobID)
	record.CandidateID = strings.TrimSpace(record.CandidateID)
	record.CompanyID = strings.TrimSpace(record.CompanyID)
	record.State = strings.TrimSpace(record.State)
	record.CandidateRecruiterID = strings.TrimSpace(record.CandidateRecruiterID)
	record.JobOwnerID = strings.TrimSpace(record.JobOwnerID)
	record.CompanyRecruiterID = strings.TrimSpace(record.CompanyRecruiterID)
	record.CandidateSourcerID = strings.TrimSpace(record.CandidateSourcerID)
	record.CompanySourcerID = strings.TrimSpace(record.CompanySourcerID)
	if record.ID == "" {
		return storage.ApplicationRecord{}, fmt.Errorf("application id is required")
	}
	if record.JobID == "" {
		return storage.ApplicationRecord{}, fmt.Errorf("job id is required")
	}
	if record.CandidateID == "" {
		return storage.ApplicationRecord{}, fmt.Errorf("candidate id is required")
	}
	if record.State == "" {
		return storage.ApplicationRecord{}, fmt.Errorf("application state is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.ApplicationRecord{}, fmt.Errorf("created_at is required")
	}
	if record.UpdatedAt.IsZero() {
		return storage.ApplicationRecord{}, fmt.Errorf("updated_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	if record.ResponseDueAt != nil {
		due := record.ResponseDueAt.UTC()
		record.ResponseDueAt = &due
	}
	if record.ProposedAt != nil {
		proposed := record.ProposedAt.UTC()
		record.ProposedAt = &proposed
	}
	return record, nil
}

func applicationArgs(record storage.ApplicationRecord) []any {
	var responseDueAt sql.NullInt64
	if record.ResponseDueAt != nil {
		responseDueAt = sql.NullInt64{Int64: toMillis(*record.ResponseDueAt), Valid: true}
	}
	var proposedAt sql.NullInt64
	if record.ProposedAt != nil {
		proposedAt = sql.NullInt64{Int64: toMillis(*record.ProposedAt), Valid: true}
	}
	return []any{
		record.ID,
		record.JobID,
		record.CandidateID,
		record.CompanyID,
		record.State,
		record.CandidateRecruiterID,
		record.JobOwnerID,
		record.CompanyRecruiterID,
		record.CandidateSourcerID,
		record.CompanySourcerID,
		strings.Join(record.GateSequence, ","),
		record.CurrentGateIndex,
		boolToInt(record.InfoRequested),
		boolToInt(record.ScreenRequired),
		responseDueAt,
		record.ProposalNotes,
		proposedAt,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
		record.Version,
	}
}

func scanApplication(scan scanner) (storage.ApplicationRecord, error) {
	var record storage.ApplicationRecord
	var gateSequence string
	var infoRequested int
	var screenRequired int
	var responseDueAt sql.NullInt64
	var proposedAt sql.NullInt64
	var createdAt int64
	var updatedAt int64
	if err := scan(
		&record.ID,
		&record.JobID,
		&record.CandidateID,
		&record.CompanyID,
		&record.State,
		&record.CandidateRecruiterID,
		&record.JobOwnerID,
		&record.CompanyRecruiterID,
		&record.CandidateSourcerID,
		&record.CompanySourcerID,
		&gateSequence,
		&record.CurrentGateIndex,
		&infoRequested,
		&screenRequired,
		&responseDueAt,
		&record.ProposalNotes,
		&proposedAt,
		&createdAt,
		&updatedAt,
		&record.Version,
	); err != nil {
		return storage.ApplicationRecord{}, err
	}
	if gateSequence != "" {
		record.GateSequence = strings.Split(gateSequence, ",")
	}
	record.InfoRequested = infoRequested != 0
	record.ScreenRequired = screenRequired != 0
	if responseDueAt.Valid {
		due := fromMillis(responseDueAt.Int64)
		record.ResponseDueAt = &due
	}
	if proposedAt.Valid {
		proposed := fromMillis(proposedAt.Int64)
		record.ProposedAt = &proposed
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

func insertGateDecision(ctx context.Context, execer sqlExecer, record storage.GateDecisionRecord) error {
	record.ApplicationID = strings.TrimSpace(record.ApplicationID)
	record.Gate = strings.TrimSpace(record.Gate)
	record.Decision = strings.TrimSpace(record.Decision)
	if record.ApplicationID == "" {
		return fmt.Errorf("gate decision application id is required")
	}
	if record.Seq < 0 {
		return fmt.Errorf("gate decision seq must be non-negative")
	}
	if record.Gate == "" {
		return fmt.Errorf("gate decision gate is required")
	}
	if record.Decision == "" {
		return fmt.Errorf("gate decision decision is required")
	}
	if record.DecidedAt.IsZero() {
		return fmt.Errorf("gate decision decided_at is required")
	}

	_, err := execer.ExecContext(ctx, `
	INSERT INTO gate_decisions (application_id, seq, gate, decision, reviewer_id, notes, decided_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		record.ApplicationID,
		record.Seq,
		record.Gate,
		record.Decision,
		record.ReviewerID,
		record.Notes,
		toMillis(record.DecidedAt.UTC()),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("insert gate decision: %w", err)
	}
	return nil
}

func nullableCents(value *int64) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *value, Valid: true}
}

func centsPointer(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	cents := value.Int64
	return &cents
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "unique constraint failed")
}
