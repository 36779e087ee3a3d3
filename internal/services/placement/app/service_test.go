package app

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/hirelane/hirelane/internal/platform/errors"
	"github.com/hirelane/hirelane/internal/services/placement/domain/application"
	"github.com/hirelane/hirelane/internal/services/placement/storage"
	placementsqlite "github.com/hirelane/hirelane/internal/services/placement/storage/sqlite"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T) (*Service, *placementsqlite.Store, *testClock) {
	return newTestServiceWith(t, nil)
}

func newTestServiceWith(t *testing.T, configure func(*Config)) (*Service, *placementsqlite.Store, *testClock) {
	t.Helper()
	store, err := placementsqlite.Open(filepath.Join(t.TempDir(), "placement.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})

	clock := &testClock{now: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}
	idSeq := 0
	cfg := Config{
		Applications: store,
		Attributions: store,
		Breakdowns:   store,
		Accounts:     store,
		Now:          clock.Now,
		NewID: func() (string, error) {
			idSeq++
			return fmt.Sprintf("app-%03d", idSeq), nil
		},
	}
	if configure != nil {
		configure(&cfg)
	}
	service, err := New(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service, store, clock
}

// failingBreakdownStore refuses a fixed number of writes before delegating.
type failingBreakdownStore struct {
	storage.BreakdownStore
	failures int
}

func (f *failingBreakdownStore) PutBreakdownIfAbsent(ctx context.Context, record storage.BreakdownRecord) (storage.BreakdownRecord, bool, error) {
	if f.failures > 0 {
		f.failures--
		return storage.BreakdownRecord{}, false, fmt.Errorf("breakdown write refused")
	}
	return f.BreakdownStore.PutBreakdownIfAbsent(ctx, record)
}

func putAccount(t *testing.T, store *placementsqlite.Store, recruiterID string, status string, at time.Time) {
	t.Helper()
	err := store.PutAccount(context.Background(), storage.AccountRecord{
		RecruiterID: recruiterID,
		Status:      status,
		UpdatedAt:   at,
	})
	if err != nil {
		t.Fatalf("put account %s: %v", recruiterID, err)
	}
}

func cents(t *testing.T, amount *int64) int64 {
	t.Helper()
	if amount == nil {
		t.Fatal("expected a non-nil amount")
	}
	return *amount
}

func TestProposalLifecycleToHired(t *testing.T) {
	service, store, clock := newTestService(t)
	ctx := context.Background()

	// Sourcer attributions recorded long before the placement.
	for _, claim := range []RecordSourcerAttributionRequest{
		{EntityID: "cand-1", RoleType: "CANDIDATE_SOURCER", RecruiterID: "rec-cand-sourcer"},
		{EntityID: "acme", RoleType: "COMPANY_SOURCER", RecruiterID: "rec-comp-sourcer"},
	} {
		if _, err := service.RecordSourcerAttribution(ctx, claim); err != nil {
			t.Fatalf("record attribution: %v", err)
		}
	}
	putAccount(t, store, "rec-cand-sourcer", "active", clock.Now())
	putAccount(t, store, "rec-comp-sourcer", "active", clock.Now())

	app, err := service.ProposeAssignment(ctx, ProposeAssignmentRequest{
		JobID:       "job-1",
		CandidateID: "cand-1",
		CompanyID:   "acme",
		RecruiterID: "rec-closer",
		JobOwnerID:  "rec-owner",
	})
	if err != nil {
		t.Fatalf("propose assignment: %v", err)
	}
	if app.State != application.StateAIReview {
		t.Fatalf("expected ai review after proposal, got %s", application.StateLabel(app.State))
	}

	if _, err := service.CompleteAIReview(ctx, app.ID); err != nil {
		t.Fatalf("complete ai review: %v", err)
	}
	app, err = service.SubmitProposal(ctx, app.ID, "strong match")
	if err != nil {
		t.Fatalf("submit proposal: %v", err)
	}
	if app.State != application.StateRecruiterProposed {
		t.Fatalf("expected recruiter proposed, got %s", application.StateLabel(app.State))
	}

	app, err = service.RespondToProposal(ctx, RespondToProposalRequest{ApplicationID: app.ID, Accept: true})
	if err != nil {
		t.Fatalf("accept proposal: %v", err)
	}
	if app.State != application.StateRecruiterReview {
		t.Fatalf("expected recruiter review, got %s", application.StateLabel(app.State))
	}

	app, err = service.SubmitApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("submit application: %v", err)
	}
	if app.State != application.StateSubmitted {
		t.Fatalf("expected submitted, got %s", application.StateLabel(app.State))
	}
	if got := app.Gates.CurrentGate(); got != application.GateCandidateRecruiter {
		t.Fatalf("expected candidate recruiter gate first, got %s", application.GateLabel(got))
	}

	app, err = service.RecordGateDecision(ctx, RecordGateDecisionRequest{
		ApplicationID: app.ID,
		Gate:          "CANDIDATE_RECRUITER",
		Decision:      "APPROVED",
		ReviewerID:    "rec-closer",
	})
	if err != nil {
		t.Fatalf("approve candidate recruiter gate: %v", err)
	}
	if app.State != application.StateCompanyReview {
		t.Fatalf("expected company review, got %s", application.StateLabel(app.State))
	}

	app, err = service.RecordGateDecision(ctx, RecordGateDecisionRequest{
		ApplicationID: app.ID,
		Gate:          "COMPANY",
		Decision:      "APPROVED",
		ReviewerID:    "hiring-manager",
	})
	if err != nil {
		t.Fatalf("approve company gate: %v", err)
	}
	if app.State != application.StateCompanyFeedback {
		t.Fatalf("expected company feedback, got %s", application.StateLabel(app.State))
	}

	if _, err := service.AdvanceCompanyStage(ctx, app.ID, "INTERVIEW"); err != nil {
		t.Fatalf("advance to interview: %v", err)
	}
	if _, err := service.AdvanceCompanyStage(ctx, app.ID, "OFFER"); err != nil {
		t.Fatalf("advance to offer: %v", err)
	}

	result, err := service.MarkHired(ctx, MarkHiredRequest{
		ApplicationID: app.ID,
		FeeCents:      100_000_00,
		Tier:          "PREMIUM",
	})
	if err != nil {
		t.Fatalf("mark hired: %v", err)
	}
	if result.Application.State != application.StateHired {
		t.Fatalf("expected hired, got %s", application.StateLabel(result.Application.State))
	}
	if !result.Finalized {
		t.Fatal("expected first hire to finalize the breakdown")
	}
	if got := cents(t, result.Breakdown.CandidateRecruiterCents); got != 40_000_00 {
		t.Fatalf("candidate recruiter: expected $40,000, got %d cents", got)
	}
	if got := cents(t, result.Breakdown.CandidateSourcerCents); got != 10_000_00 {
		t.Fatalf("candidate sourcer: expected $10,000, got %d cents", got)
	}
	if got := cents(t, result.Breakdown.CompanySourcerCents); got != 10_000_00 {
		t.Fatalf("company sourcer: expected $10,000, got %d cents", got)
	}
	if result.Breakdown.CompanyRecruiterCents != nil {
		t.Fatal("expected nil amount for unfilled company recruiter")
	}
	if result.Breakdown.TotalDistributedCents != 100_000_00 {
		t.Fatalf("expected fee conservation, distributed %d", result.Breakdown.TotalDistributedCents)
	}

	// Hired is terminal: no event moves the record again.
	if _, err := service.Withdraw(ctx, app.ID); apperrors.CodeOf(err) != apperrors.CodeInvalidStateTransition {
		t.Fatalf("expected terminal refusal, got %v", err)
	}

	stored, err := service.GetBreakdown(ctx, app.ID)
	if err != nil {
		t.Fatalf("get breakdown: %v", err)
	}
	if stored.TotalDistributedCents != 100_000_00 {
		t.Fatalf("stored breakdown distributed %d", stored.TotalDistributedCents)
	}

	detail, err := service.GetApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("get application: %v", err)
	}
	if len(detail.History) != 2 {
		t.Fatalf("expected two gate history entries, got %d", len(detail.History))
	}
}

func TestProposeAssignmentDuplicatePair(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	req := ProposeAssignmentRequest{JobID: "job-1", CandidateID: "cand-1", RecruiterID: "rec-1"}
	if _, err := service.ProposeAssignment(ctx, req); err != nil {
		t.Fatalf("first proposal: %v", err)
	}
	req.RecruiterID = "rec-2"
	_, err := service.ProposeAssignment(ctx, req)
	if apperrors.CodeOf(err) != apperrors.CodeDuplicateAssignment {
		t.Fatalf("expected duplicate assignment, got %v", err)
	}
}

func TestRespondToProposalAfterWindowExpires(t *testing.T) {
	service, _, clock := newTestService(t)
	ctx := context.Background()

	app, err := service.ProposeAssignment(ctx, ProposeAssignmentRequest{JobID: "job-1", CandidateID: "cand-1", RecruiterID: "rec-1"})
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if _, err := service.CompleteAIReview(ctx, app.ID); err != nil {
		t.Fatalf("complete ai review: %v", err)
	}
	if _, err := service.SubmitProposal(ctx, app.ID, ""); err != nil {
		t.Fatalf("submit proposal: %v", err)
	}

	clock.Advance(15 * 24 * time.Hour)
	_, err = service.RespondToProposal(ctx, RespondToProposalRequest{ApplicationID: app.ID, Accept: true})
	if apperrors.CodeOf(err) != apperrors.CodeProposalExpired {
		t.Fatalf("expected proposal expired, got %v", err)
	}

	detail, err := service.GetApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("get application: %v", err)
	}
	if detail.Application.State != application.StateExpired {
		t.Fatalf("expected expired state, got %s", application.StateLabel(detail.Application.State))
	}
}

func TestRecordGateDecisionOutOfOrder(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	app := submitTestApplication(t, service, ProposeAssignmentRequest{
		JobID:              "job-1",
		CandidateID:        "cand-1",
		RecruiterID:        "rec-cand",
		CompanyRecruiterID: "rec-comp",
	})
	_, err := service.RecordGateDecision(ctx, RecordGateDecisionRequest{
		ApplicationID: app.ID,
		Gate:          "COMPANY_RECRUITER",
		Decision:      "APPROVED",
	})
	if apperrors.CodeOf(err) != apperrors.CodeInvalidGate {
		t.Fatalf("expected invalid gate, got %v", err)
	}
}

func TestExpireOverdueGates(t *testing.T) {
	service, _, clock := newTestService(t)
	ctx := context.Background()

	app := submitTestApplication(t, service, ProposeAssignmentRequest{
		JobID:       "job-1",
		CandidateID: "cand-1",
		RecruiterID: "rec-cand",
	})

	// Nothing is overdue yet.
	expired, err := service.ExpireOverdueGates(ctx, 10)
	if err != nil {
		t.Fatalf("sweep before deadline: %v", err)
	}
	if expired != 0 {
		t.Fatalf("expected no expiry before deadline, got %d", expired)
	}

	clock.Advance(73 * time.Hour)
	expired, err = service.ExpireOverdueGates(ctx, 10)
	if err != nil {
		t.Fatalf("sweep after deadline: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expected one expiry, got %d", expired)
	}

	detail, err := service.GetApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("get application: %v", err)
	}
	if detail.Application.State != application.StateExpired {
		t.Fatalf("expected expired, got %s", application.StateLabel(detail.Application.State))
	}

	// A second sweep finds nothing: terminal records drop their deadline.
	expired, err = service.ExpireOverdueGates(ctx, 10)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if expired != 0 {
		t.Fatalf("expected idempotent sweep, got %d", expired)
	}
}

func TestCalculateCommissionReadsLedgerAndLiveStatus(t *testing.T) {
	service, store, clock := newTestService(t)
	ctx := context.Background()

	if _, err := service.RecordSourcerAttribution(ctx, RecordSourcerAttributionRequest{
		EntityID:    "cand-1",
		RoleType:    "CANDIDATE_SOURCER",
		RecruiterID: "rec-sourcer",
	}); err != nil {
		t.Fatalf("record attribution: %v", err)
	}
	putAccount(t, store, "rec-sourcer", "active", clock.Now())

	req := CalculateCommissionRequest{
		FeeCents:             50_000_00,
		Tier:                 "FREE",
		CandidateRecruiterID: "rec-closer",
		CandidateID:          "cand-1",
	}
	breakdown, err := service.CalculateCommission(ctx, req)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if got := cents(t, breakdown.CandidateSourcerCents); got != 3_000_00 {
		t.Fatalf("active sourcer: expected $3,000 (6%%), got %d cents", got)
	}

	// The account going inactive changes the very next calculation.
	putAccount(t, store, "rec-sourcer", "inactive", clock.Now())
	breakdown, err = service.CalculateCommission(ctx, req)
	if err != nil {
		t.Fatalf("calculate after deactivation: %v", err)
	}
	if got := cents(t, breakdown.CandidateSourcerCents); got != 0 {
		t.Fatalf("inactive sourcer: expected $0, got %d cents", got)
	}
	if breakdown.TotalDistributedCents != 50_000_00 {
		t.Fatalf("expected fee conservation, distributed %d", breakdown.TotalDistributedCents)
	}
}

func TestRecordSourcerAttributionFirstWins(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := service.RecordSourcerAttribution(ctx, RecordSourcerAttributionRequest{
		EntityID:    "cand-1",
		RoleType:    "candidate_sourcer",
		RecruiterID: "rec-early",
	})
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if !first.Created {
		t.Fatal("expected first claim to create")
	}

	second, err := service.RecordSourcerAttribution(ctx, RecordSourcerAttributionRequest{
		EntityID:    "cand-1",
		RoleType:    "CANDIDATE_SOURCER",
		RecruiterID: "rec-late",
	})
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if second.Created {
		t.Fatal("expected second claim to lose")
	}
	if second.Record.RecruiterID != "rec-early" {
		t.Fatalf("expected winner rec-early, got %q", second.Record.RecruiterID)
	}
}

func TestAdvanceCompanyStageRefusesHiredTarget(t *testing.T) {
	service, _, _ := newTestService(t)
	_, err := service.AdvanceCompanyStage(context.Background(), "app-x", "HIRED")
	if apperrors.CodeOf(err) != apperrors.CodeMissingRequiredField {
		t.Fatalf("expected fee-required refusal, got %v", err)
	}
}

func TestSubmitFreezesGateSequence(t *testing.T) {
	service, _, _ := newTestService(t)

	// The proposal names a candidate recruiter, so with no company
	// recruiter the frozen sequence is [candidate recruiter, company].
	app := submitTestApplication(t, service, ProposeAssignmentRequest{
		JobID:       "job-1",
		CandidateID: "cand-1",
		RecruiterID: "rec-cand",
	})
	if app.Gates.ScreenRequired {
		t.Fatal("screen must not be required when a recruiter holds a gate")
	}
	if len(app.Gates.Sequence) != 2 {
		t.Fatalf("expected two gates, got %d", len(app.Gates.Sequence))
	}
}

func TestMarkHiredRetriesAfterFailedFinalization(t *testing.T) {
	flaky := &failingBreakdownStore{failures: 1}
	service, _, _ := newTestServiceWith(t, func(cfg *Config) {
		flaky.BreakdownStore = cfg.Breakdowns
		cfg.Breakdowns = flaky
	})
	ctx := context.Background()

	app := offerTestApplication(t, service)

	req := MarkHiredRequest{ApplicationID: app.ID, FeeCents: 100_000_00, Tier: "PREMIUM"}
	if _, err := service.MarkHired(ctx, req); err == nil {
		t.Fatal("expected the first finalization to fail")
	}

	// The hire transition committed before the breakdown write failed; the
	// retry must backfill the breakdown instead of refusing the terminal state.
	detail, err := service.GetApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("get application: %v", err)
	}
	if detail.Application.State != application.StateHired {
		t.Fatalf("expected hired after failed finalization, got %s", application.StateLabel(detail.Application.State))
	}

	result, err := service.MarkHired(ctx, req)
	if err != nil {
		t.Fatalf("retry mark hired: %v", err)
	}
	if !result.Finalized {
		t.Fatal("expected the retry to finalize the breakdown")
	}
	if result.Breakdown.TotalDistributedCents != 100_000_00 {
		t.Fatalf("expected fee conservation, distributed %d", result.Breakdown.TotalDistributedCents)
	}

	stored, err := service.GetBreakdown(ctx, app.ID)
	if err != nil {
		t.Fatalf("get breakdown after retry: %v", err)
	}
	if got := cents(t, stored.CandidateRecruiterCents); got != 40_000_00 {
		t.Fatalf("candidate recruiter: expected $40,000, got %d cents", got)
	}
}

func TestProposeWithoutRecruiterRoutesToScreen(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	app := submitTestApplication(t, service, ProposeAssignmentRequest{
		JobID:       "job-1",
		CandidateID: "cand-1",
		CompanyID:   "acme",
	})
	if app.State != application.StateScreen {
		t.Fatalf("expected screen with no recruiters, got %s", application.StateLabel(app.State))
	}
	if !app.Gates.ScreenRequired {
		t.Fatal("expected screen required flag")
	}
	if len(app.Gates.Sequence) != 1 || app.Gates.Sequence[0] != application.GateCompany {
		t.Fatal("expected company-only gate sequence")
	}
	if app.Gates.ResponseDueAt != nil {
		t.Fatal("expected no response deadline while screening")
	}

	app, err := service.CompleteScreen(ctx, app.ID)
	if err != nil {
		t.Fatalf("complete screen: %v", err)
	}
	if app.State != application.StateCompanyReview {
		t.Fatalf("expected company review after screen, got %s", application.StateLabel(app.State))
	}
	if app.Gates.ResponseDueAt == nil {
		t.Fatal("expected the company gate deadline to start after the screen")
	}

	app, err = service.RecordGateDecision(ctx, RecordGateDecisionRequest{
		ApplicationID: app.ID,
		Gate:          "COMPANY",
		Decision:      "APPROVED",
		ReviewerID:    "hiring-manager",
	})
	if err != nil {
		t.Fatalf("approve company gate: %v", err)
	}
	if app.State != application.StateCompanyFeedback {
		t.Fatalf("expected company feedback, got %s", application.StateLabel(app.State))
	}
}

func TestExpireOverdueGatesSkipsScreening(t *testing.T) {
	service, _, clock := newTestService(t)
	ctx := context.Background()

	// The screening application is created first: a deadline on it would
	// sort to the head of every capped sweep batch and starve the rest.
	screening := submitTestApplication(t, service, ProposeAssignmentRequest{
		JobID:       "job-screen",
		CandidateID: "cand-1",
	})
	gated := submitTestApplication(t, service, ProposeAssignmentRequest{
		JobID:       "job-gated",
		CandidateID: "cand-2",
		RecruiterID: "rec-cand",
	})

	clock.Advance(73 * time.Hour)
	expired, err := service.ExpireOverdueGates(ctx, 1)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expected the gated application to expire, got %d", expired)
	}

	detail, err := service.GetApplication(ctx, gated.ID)
	if err != nil {
		t.Fatalf("get gated application: %v", err)
	}
	if detail.Application.State != application.StateExpired {
		t.Fatalf("expected gated application expired, got %s", application.StateLabel(detail.Application.State))
	}
	detail, err = service.GetApplication(ctx, screening.ID)
	if err != nil {
		t.Fatalf("get screening application: %v", err)
	}
	if detail.Application.State != application.StateScreen {
		t.Fatalf("expected screening application untouched, got %s", application.StateLabel(detail.Application.State))
	}
}

func TestCalculateCommissionPinnedSourcer(t *testing.T) {
	service, store, clock := newTestService(t)
	ctx := context.Background()

	// The ledger attribution points at an inactive recruiter; the request
	// pins a hypothetical active one instead.
	if _, err := service.RecordSourcerAttribution(ctx, RecordSourcerAttributionRequest{
		EntityID:    "cand-1",
		RoleType:    "CANDIDATE_SOURCER",
		RecruiterID: "rec-ledger",
	}); err != nil {
		t.Fatalf("record attribution: %v", err)
	}
	putAccount(t, store, "rec-ledger", "inactive", clock.Now())
	putAccount(t, store, "rec-what-if", "active", clock.Now())

	req := CalculateCommissionRequest{
		FeeCents:             50_000_00,
		Tier:                 "FREE",
		CandidateRecruiterID: "rec-closer",
		CandidateID:          "cand-1",
		CandidateSourcerID:   "rec-what-if",
	}
	breakdown, err := service.CalculateCommission(ctx, req)
	if err != nil {
		t.Fatalf("calculate with pin: %v", err)
	}
	if got := cents(t, breakdown.CandidateSourcerCents); got != 3_000_00 {
		t.Fatalf("pinned active sourcer: expected $3,000, got %d cents", got)
	}

	// Without the pin the ledger's inactive sourcer pays zero.
	req.CandidateSourcerID = ""
	breakdown, err = service.CalculateCommission(ctx, req)
	if err != nil {
		t.Fatalf("calculate without pin: %v", err)
	}
	if got := cents(t, breakdown.CandidateSourcerCents); got != 0 {
		t.Fatalf("ledger inactive sourcer: expected $0, got %d cents", got)
	}
}

func submitTestApplication(t *testing.T, service *Service, req ProposeAssignmentRequest) application.Application {
	t.Helper()
	ctx := context.Background()

	app, err := service.ProposeAssignment(ctx, req)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if _, err := service.CompleteAIReview(ctx, app.ID); err != nil {
		t.Fatalf("complete ai review: %v", err)
	}
	if _, err := service.SubmitProposal(ctx, app.ID, ""); err != nil {
		t.Fatalf("submit proposal: %v", err)
	}
	if _, err := service.RespondToProposal(ctx, RespondToProposalRequest{ApplicationID: app.ID, Accept: true}); err != nil {
		t.Fatalf("accept proposal: %v", err)
	}
	app, err = service.SubmitApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("submit application: %v", err)
	}
	return app
}

func offerTestApplication(t *testing.T, service *Service) application.Application {
	t.Helper()
	ctx := context.Background()

	app := submitTestApplication(t, service, ProposeAssignmentRequest{
		JobID:       "job-offer",
		CandidateID: "cand-offer",
		CompanyID:   "acme",
		RecruiterID: "rec-closer",
	})
	for _, gate := range []string{"CANDIDATE_RECRUITER", "COMPANY"} {
		if _, err := service.RecordGateDecision(ctx, RecordGateDecisionRequest{
			ApplicationID: app.ID,
			Gate:          gate,
			Decision:      "APPROVED",
			ReviewerID:    "reviewer",
		}); err != nil {
			t.Fatalf("approve %s gate: %v", gate, err)
		}
	}
	for _, target := range []string{"INTERVIEW", "OFFER"} {
		if _, err := service.AdvanceCompanyStage(ctx, app.ID, target); err != nil {
			t.Fatalf("advance to %s: %v", target, err)
		}
	}
	return app
}
