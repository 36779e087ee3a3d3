// Package app wires the placement domain to storage and exposes the
// service operations behind typed requests.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/hirelane/hirelane/internal/platform/errors"
	"github.com/hirelane/hirelane/internal/platform/id"
	"github.com/hirelane/hirelane/internal/platform/timeouts"
	"github.com/hirelane/hirelane/internal/services/placement/domain/application"
	"github.com/hirelane/hirelane/internal/services/placement/domain/attribution"
	"github.com/hirelane/hirelane/internal/services/placement/domain/commission"
	"github.com/hirelane/hirelane/internal/services/placement/storage"
)

// Service exposes placement operations. All application transitions are
// serialized per application id; distinct applications run fully parallel.
type Service struct {
	applications storage.ApplicationStore
	attributions storage.AttributionStore
	breakdowns   storage.BreakdownStore
	accounts     storage.AccountStore

	calculator commission.Calculator
	now        func() time.Time
	newID      func() (string, error)
	locks      *keyedLocks
	tracer     trace.Tracer

	proposalWindow time.Duration
	gateWindow     time.Duration
}

// Config holds Service dependencies. Stores are required; the rest default
// to production values.
type Config struct {
	Applications storage.ApplicationStore
	Attributions storage.AttributionStore
	Breakdowns   storage.BreakdownStore
	Accounts     storage.AccountStore

	// Calculator defaults to one built on the default rate table.
	Calculator *commission.Calculator
	// Now defaults to time.Now; tests inject fixed clocks.
	Now func() time.Time
	// NewID defaults to platform id generation.
	NewID func() (string, error)

	ProposalWindow time.Duration
	GateWindow     time.Duration
}

// New builds a Service from cfg.
func New(cfg Config) (*Service, error) {
	if cfg.Applications == nil {
		return nil, fmt.Errorf("application store is required")
	}
	if cfg.Attributions == nil {
		return nil, fmt.Errorf("attribution store is required")
	}
	if cfg.Breakdowns == nil {
		return nil, fmt.Errorf("breakdown store is required")
	}
	if cfg.Accounts == nil {
		return nil, fmt.Errorf("account store is required")
	}
	calculator := commission.NewCalculator(commission.DefaultRateTable())
	if cfg.Calculator != nil {
		calculator = *cfg.Calculator
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	newID := cfg.NewID
	if newID == nil {
		newID = id.NewID
	}
	proposalWindow := cfg.ProposalWindow
	if proposalWindow <= 0 {
		proposalWindow = timeouts.ProposalResponse
	}
	gateWindow := cfg.GateWindow
	if gateWindow <= 0 {
		gateWindow = timeouts.GateResponse
	}
	return &Service{
		applications:   cfg.Applications,
		attributions:   cfg.Attributions,
		breakdowns:     cfg.Breakdowns,
		accounts:       cfg.Accounts,
		calculator:     calculator,
		now:            now,
		newID:          newID,
		locks:          newKeyedLocks(),
		tracer:         otel.Tracer("hirelane.placement"),
		proposalWindow: proposalWindow,
		gateWindow:     gateWindow,
	}, nil
}

// CalculateCommissionRequest describes a commission calculation. Closer
// roles are passed explicitly; sourcer roles are resolved from the
// attribution ledger by candidate and company id unless pinned.
type CalculateCommissionRequest struct {
	FeeCents int64
	Tier     string

	CandidateRecruiterID string
	JobOwnerID           string
	CompanyRecruiterID   string

	CandidateID string
	CompanyID   string

	// CandidateSourcerID and CompanySourcerID pin a hypothetical sourcer
	// for the calculation. An empty pin falls back to the ledger.
	CandidateSourcerID string
	CompanySourcerID   string
}

// CalculateCommission resolves sourcer attribution and live eligibility,
// then runs the commission calculator.
func (s *Service) CalculateCommission(ctx context.Context, req CalculateCommissionRequest) (commission.Breakdown, error) {
	ctx, span := s.tracer.Start(ctx, "placement.CalculateCommission")
	defer span.End()

	tier, err := commission.TierFromLabel(req.Tier)
	if err != nil {
		return commission.Breakdown{}, err
	}
	assignment := commission.Assignment{
		CandidateRecruiter: participantFrom(req.CandidateRecruiterID),
		JobOwner:           participantFrom(req.JobOwnerID),
		CompanyRecruiter:   participantFrom(req.CompanyRecruiterID),
	}
	assignment.CandidateSourcer, assignment.CompanySourcer, err = s.resolveSourcers(ctx, req.CandidateID, req.CompanyID)
	if err != nil {
		return commission.Breakdown{}, err
	}
	if pinned := participantFrom(req.CandidateSourcerID); pinned.Filled {
		assignment.CandidateSourcer = pinned
	}
	if pinned := participantFrom(req.CompanySourcerID); pinned.Filled {
		assignment.CompanySourcer = pinned
	}
	sourcers, err := s.sourcerEligibility(ctx, assignment)
	if err != nil {
		return commission.Breakdown{}, err
	}
	return s.calculator.Calculate(commission.Input{
		FeeCents: req.FeeCents,
		Tier:     tier,
		Roles:    assignment,
		Sourcers: sourcers,
	})
}

// RecordSourcerAttributionRequest describes an attribution claim.
type RecordSourcerAttributionRequest struct {
	EntityID    string
	RoleType    string
	RecruiterID string
}

// RecordSourcerAttributionResponse reports the claim outcome. When Created
// is false an earlier attribution won and Record holds that winner.
type RecordSourcerAttributionResponse struct {
	Created bool
	Record  attribution.Record
}

// RecordSourcerAttribution claims first-wins attribution for an entity.
func (s *Service) RecordSourcerAttribution(ctx context.Context, req RecordSourcerAttributionRequest) (RecordSourcerAttributionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "placement.RecordSourcerAttribution")
	defer span.End()

	roleType, err := attribution.RoleTypeFromLabel(req.RoleType)
	if err != nil {
		return RecordSourcerAttributionResponse{}, err
	}
	record, err := attribution.NewRecord(attribution.NewRecordInput{
		EntityID:    req.EntityID,
		RoleType:    roleType,
		RecruiterID: req.RecruiterID,
	}, s.now)
	if err != nil {
		return RecordSourcerAttributionResponse{}, err
	}

	stored, created, err := s.attributions.PutAttributionIfAbsent(ctx, storage.AttributionRecord{
		EntityID:    record.EntityID,
		RoleType:    attribution.RoleTypeLabel(record.RoleType),
		RecruiterID: record.RecruiterID,
		CreatedAt:   record.CreatedAt,
	})
	if err != nil {
		return RecordSourcerAttributionResponse{}, fmt.Errorf("record attribution: %w", err)
	}
	winner, err := attributionFromRecord(stored)
	if err != nil {
		return RecordSourcerAttributionResponse{}, err
	}
	return RecordSourcerAttributionResponse{Created: created, Record: winner}, nil
}

// ProposeAssignmentRequest starts an application for a candidate on a job.
type ProposeAssignmentRequest struct {
	JobID       string
	CandidateID string
	CompanyID   string
	// RecruiterID names the proposing candidate recruiter when one exists.
	// Left empty, the application reaches submission with no recruiter
	// gates and goes through the company-facilitated screen.
	RecruiterID string
	// JobOwnerID and CompanyRecruiterID are optional assignment slots known
	// at proposal time.
	JobOwnerID         string
	CompanyRecruiterID string
	Notes              string
}

// ProposeAssignment creates the application and hands it to AI review. A
// second proposal for the same (job, candidate) pair is refused.
func (s *Service) ProposeAssignment(ctx context.Context, req ProposeAssignmentRequest) (application.Application, error) {
	ctx, span := s.tracer.Start(ctx, "placement.ProposeAssignment")
	defer span.End()

	jobID := strings.TrimSpace(req.JobID)
	candidateID := strings.TrimSpace(req.CandidateID)
	if jobID == "" {
		return application.Application{}, apperrors.New(apperrors.CodeMissingRequiredField, "job id is required")
	}
	if candidateID == "" {
		return application.Application{}, apperrors.New(apperrors.CodeMissingRequiredField, "candidate id is required")
	}

	appID, err := s.newID()
	if err != nil {
		return application.Application{}, fmt.Errorf("generate application id: %w", err)
	}
	at := s.now().UTC()
	created := application.Application{
		ID:          appID,
		JobID:       jobID,
		CandidateID: candidateID,
		CompanyID:   strings.TrimSpace(req.CompanyID),
		State:       application.StateDraft,
		Roles: commission.Assignment{
			CandidateRecruiter: participantFrom(req.RecruiterID),
			JobOwner:           participantFrom(req.JobOwnerID),
			CompanyRecruiter:   participantFrom(req.CompanyRecruiterID),
		},
		ProposalNotes: strings.TrimSpace(req.Notes),
		CreatedAt:     at,
		UpdatedAt:     at,
	}
	if _, err := s.applications.CreateApplication(ctx, recordFromApplication(created, 1)); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return application.Application{}, apperrors.WithMetadata(
				apperrors.CodeDuplicateAssignment,
				"an application for this job and candidate already exists",
				map[string]string{"JobID": jobID, "CandidateID": candidateID},
			)
		}
		return application.Application{}, fmt.Errorf("create application: %w", err)
	}
	return s.applyTransition(ctx, appID, application.Event{Kind: application.EventAIReviewStarted})
}

// CompleteAIReview records the external reviewer finishing its pass.
func (s *Service) CompleteAIReview(ctx context.Context, applicationID string) (application.Application, error) {
	ctx, span := s.tracer.Start(ctx, "placement.CompleteAIReview")
	defer span.End()
	return s.applyTransition(ctx, applicationID, application.Event{Kind: application.EventAIReviewCompleted})
}

// RequestCandidateInfo asks the candidate for more input before proposing.
func (s *Service) RequestCandidateInfo(ctx context.Context, applicationID string) (application.Application, error) {
	ctx, span := s.tracer.Start(ctx, "placement.RequestCandidateInfo")
	defer span.End()
	return s.applyTransition(ctx, applicationID, application.Event{Kind: application.EventInfoRequested})
}

// RecordCandidateResubmission returns an info-requested application to review.
func (s *Service) RecordCandidateResubmission(ctx context.Context, applicationID string) (application.Application, error) {
	ctx, span := s.tracer.Start(ctx, "placement.RecordCandidateResubmission")
	defer span.End()
	return s.applyTransition(ctx, applicationID, application.Event{Kind: application.EventCandidateResubmitted})
}

// SubmitProposal proposes the reviewed candidate to the job and starts the
// candidate's response window.
func (s *Service) SubmitProposal(ctx context.Context, applicationID string, notes string) (application.Application, error) {
	ctx, span := s.tracer.Start(ctx, "placement.SubmitProposal")
	defer span.End()
	return s.applyTransition(ctx, applicationID, application.Event{
		Kind:  application.EventProposalSubmitted,
		Notes: strings.TrimSpace(notes),
	})
}

// RespondToProposalRequest carries the candidate's answer.
type RespondToProposalRequest struct {
	ApplicationID string
	Accept        bool
	Notes         string
}

// RespondToProposal records the candidate accepting or declining. A response
// after the proposal window expires the application instead.
func (s *Service) RespondToProposal(ctx context.Context, req RespondToProposalRequest) (application.Application, error) {
	ctx, span := s.tracer.Start(ctx, "placement.RespondToProposal")
	defer span.End()

	applicationID := strings.TrimSpace(req.ApplicationID)
	unlock := s.locks.lock(applicationID)
	defer unlock()

	record, history, err := s.loadApplication(ctx, applicationID)
	if err != nil {
		return application.Application{}, err
	}
	app, err := applicationFromRecord(record, history)
	if err != nil {
		return application.Application{}, err
	}
	if app.State == application.StateRecruiterProposed && app.ProposedAt != nil {
		deadline := app.ProposedAt.Add(s.proposalWindow)
		if s.now().UTC().After(deadline) {
			if _, err := s.commitTransition(ctx, record, app, application.Event{Kind: application.EventProposalExpired}); err != nil {
				return application.Application{}, err
			}
			return application.Application{}, apperrors.WithMetadata(
				apperrors.CodeProposalExpired,
				"the proposal response window has elapsed",
				map[string]string{"ApplicationID": applicationID},
			)
		}
	}
	kind := application.EventProposalDeclined
	if req.Accept {
		kind = application.EventProposalAccepted
	}
	return s.commitTransition(ctx, record, app, application.Event{Kind: kind, Notes: strings.TrimSpace(req.Notes)})
}

// SubmitApplication enters the gate flow, freezing the gate sequence from
// the roles filled on the placement.
func (s *Service) SubmitApplication(ctx context.Context, applicationID string) (application.Application, error) {
	ctx, span := s.tracer.Start(ctx, "placement.SubmitApplication")
	defer span.End()
	return s.applyTransition(ctx, applicationID, application.Event{
		Kind:           application.EventSubmitted,
		ResponseWindow: s.gateWindow,
	})
}

// RecordGateDecisionRequest carries one gate holder's response.
type RecordGateDecisionRequest struct {
	ApplicationID string
	Gate          string
	Decision      string
	ReviewerID    string
	Notes         string
}

// RecordGateDecision applies a decision at the current gate and appends it
// to the immutable gate history.
func (s *Service) RecordGateDecision(ctx context.Context, req RecordGateDecisionRequest) (application.Application, error) {
	ctx, span := s.tracer.Start(ctx, "placement.RecordGateDecision")
	defer span.End()

	gate, err := application.GateFromLabel(req.Gate)
	if err != nil {
		return application.Application{}, apperrors.Wrap(apperrors.CodeInvalidGate, "parse gate", err)
	}
	decision, err := application.DecisionFromLabel(req.Decision)
	if err != nil {
		return application.Application{}, err
	}
	return s.applyTransition(ctx, req.ApplicationID, application.Event{
		Kind:           application.EventGateDecision,
		Gate:           gate,
		Decision:       decision,
		ReviewerID:     strings.TrimSpace(req.ReviewerID),
		Notes:          strings.TrimSpace(req.Notes),
		ResponseWindow: s.gateWindow,
	})
}

// RecordGateResubmission answers an open info request at the current gate
// and restarts its response window.
func (s *Service) RecordGateResubmission(ctx context.Context, applicationID string) (application.Application, error) {
	ctx, span := s.tracer.Start(ctx, "placement.RecordGateResubmission")
	defer span.End()
	return s.applyTransition(ctx, applicationID, application.Event{
		Kind:           application.EventGateResubmitted,
		ResponseWindow: s.gateWindow,
	})
}

// CompleteScreen finishes the company-facilitated screen for applications
// with no recruiter gates.
func (s *Service) CompleteScreen(ctx context.Context, applicationID string) (application.Application, error) {
	ctx, span := s.tracer.Start(ctx, "placement.CompleteScreen")
	defer span.End()
	return s.applyTransition(ctx, applicationID, application.Event{
		Kind:           application.EventScreenCompleted,
		ResponseWindow: s.gateWindow,
	})
}

// AdvanceCompanyStage moves an application along the post-review chain to
// interview or offer. Hires go through MarkHired so the placement fee is
// captured with the transition.
func (s *Service) AdvanceCompanyStage(ctx context.Context, applicationID string, target string) (application.Application, error) {
	ctx, span := s.tracer.Start(ctx, "placement.AdvanceCompanyStage")
	defer span.End()

	state, err := application.StateFromLabel(target)
	if err != nil {
		return application.Application{}, apperrors.Wrap(apperrors.CodeInvalidStateTransition, "parse target state", err)
	}
	if state == application.StateHired {
		return application.Application{}, apperrors.New(
			apperrors.CodeMissingRequiredField,
			"recording a hire requires the placement fee",
		)
	}
	return s.applyTransition(ctx, applicationID, application.Event{
		Kind:   application.EventCompanyAdvance,
		Target: state,
	})
}

// RejectByCompany records a company rejection after review.
func (s *Service) RejectByCompany(ctx context.Context, applicationID string) (application.Application, error) {
	ctx, span := s.tracer.Start(ctx, "placement.RejectByCompany")
	defer span.End()
	return s.applyTransition(ctx, applicationID, application.Event{Kind: application.EventCompanyRejected})
}

// Withdraw records the candidate withdrawing from any non-terminal state.
func (s *Service) Withdraw(ctx context.Context, applicationID string) (application.Application, error) {
	ctx, span := s.tracer.Start(ctx, "placement.Withdraw")
	defer span.End()
	return s.applyTransition(ctx, applicationID, application.Event{Kind: application.EventWithdrawn})
}

// MarkHiredRequest records the successful placement and its fee.
type MarkHiredRequest struct {
	ApplicationID string
	FeeCents      int64
	Tier          string
}

// HireResult reports the hire transition and its commission breakdown.
// Finalized is false when an earlier hire already wrote the breakdown; the
// stored breakdown is returned unchanged.
type HireResult struct {
	Application application.Application
	Breakdown   commission.Breakdown
	Finalized   bool
}

// MarkHired moves an offer to hired and finalizes the commission breakdown
// exactly once. Sourcer roles are resolved from the attribution ledger and
// their payout eligibility read live at this moment.
//
// A hired application with no stored breakdown means an earlier call
// committed the transition and then failed to write the breakdown; retrying
// skips the transition and backfills the insert.
func (s *Service) MarkHired(ctx context.Context, req MarkHiredRequest) (HireResult, error) {
	ctx, span := s.tracer.Start(ctx, "placement.MarkHired")
	defer span.End()

	tier, err := commission.TierFromLabel(req.Tier)
	if err != nil {
		return HireResult{}, err
	}

	applicationID := strings.TrimSpace(req.ApplicationID)
	unlock := s.locks.lock(applicationID)
	defer unlock()

	record, history, err := s.loadApplication(ctx, applicationID)
	if err != nil {
		return HireResult{}, err
	}
	app, err := applicationFromRecord(record, history)
	if err != nil {
		return HireResult{}, err
	}

	candidateSourcer, companySourcer, err := s.resolveSourcers(ctx, app.CandidateID, app.CompanyID)
	if err != nil {
		return HireResult{}, err
	}
	app.Roles.CandidateSourcer = candidateSourcer
	app.Roles.CompanySourcer = companySourcer

	sourcers, err := s.sourcerEligibility(ctx, app.Roles)
	if err != nil {
		return HireResult{}, err
	}
	breakdown, err := s.calculator.Calculate(commission.Input{
		FeeCents: req.FeeCents,
		Tier:     tier,
		Roles:    app.Roles,
		Sourcers: sourcers,
	})
	if err != nil {
		return HireResult{}, err
	}

	hired := app
	if app.State != application.StateHired {
		hired, err = s.commitTransition(ctx, record, app, application.Event{
			Kind:   application.EventCompanyAdvance,
			Target: application.StateHired,
		})
		if err != nil {
			return HireResult{}, err
		}
	}

	stored, created, err := s.breakdowns.PutBreakdownIfAbsent(ctx, breakdownRecord(applicationID, tier, breakdown, s.now().UTC()))
	if err != nil {
		return HireResult{}, fmt.Errorf("finalize breakdown: %w", err)
	}
	final := breakdown
	if !created {
		final = breakdownFromRecord(stored)
	}
	return HireResult{Application: hired, Breakdown: final, Finalized: created}, nil
}

// ApplicationDetail pairs an application with its gate history.
type ApplicationDetail struct {
	Application application.Application
	History     []application.DecisionEntry
}

// GetApplication loads one application and its gate history.
func (s *Service) GetApplication(ctx context.Context, applicationID string) (ApplicationDetail, error) {
	ctx, span := s.tracer.Start(ctx, "placement.GetApplication")
	defer span.End()

	record, history, err := s.loadApplication(ctx, strings.TrimSpace(applicationID))
	if err != nil {
		return ApplicationDetail{}, err
	}
	app, err := applicationFromRecord(record, history)
	if err != nil {
		return ApplicationDetail{}, err
	}
	return ApplicationDetail{Application: app, History: app.Gates.History}, nil
}

// GetBreakdown loads the finalized commission breakdown for an application.
func (s *Service) GetBreakdown(ctx context.Context, applicationID string) (commission.Breakdown, error) {
	ctx, span := s.tracer.Start(ctx, "placement.GetBreakdown")
	defer span.End()

	record, err := s.breakdowns.GetBreakdown(ctx, strings.TrimSpace(applicationID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return commission.Breakdown{}, apperrors.New(apperrors.CodeNotFound, "breakdown not found")
		}
		return commission.Breakdown{}, fmt.Errorf("get breakdown: %w", err)
	}
	return breakdownFromRecord(record), nil
}

// ExpireOverdueGates expires applications whose gate response deadline has
// elapsed. It returns how many applications were expired. Races with
// concurrent decisions resolve in favor of whichever event commits first.
func (s *Service) ExpireOverdueGates(ctx context.Context, limit int) (int, error) {
	ctx, span := s.tracer.Start(ctx, "placement.ExpireOverdueGates")
	defer span.End()

	if limit <= 0 {
		limit = 100
	}
	overdue, err := s.applications.ListApplicationsPastDue(ctx, s.now().UTC(), limit)
	if err != nil {
		return 0, fmt.Errorf("list overdue applications: %w", err)
	}
	expired := 0
	for _, record := range overdue {
		_, err := s.applyTransition(ctx, record.ID, application.Event{Kind: application.EventGateTimeout})
		if err != nil {
			// A decision that committed between the scan and this transition
			// wins the race; skip and let the next sweep re-check.
			code := apperrors.CodeOf(err)
			if code == apperrors.CodeInvalidStateTransition || code == apperrors.CodeStaleApplication {
				continue
			}
			return expired, err
		}
		expired++
	}
	return expired, nil
}

// applyTransition serializes a read-transition-write cycle for one application.
func (s *Service) applyTransition(ctx context.Context, applicationID string, evt application.Event) (application.Application, error) {
	applicationID = strings.TrimSpace(applicationID)
	unlock := s.locks.lock(applicationID)
	defer unlock()

	record, history, err := s.loadApplication(ctx, applicationID)
	if err != nil {
		return application.Application{}, err
	}
	app, err := applicationFromRecord(record, history)
	if err != nil {
		return application.Application{}, err
	}
	return s.commitTransition(ctx, record, app, evt)
}

// commitTransition runs the pure transition and persists the result guarded
// by the version read earlier. Callers hold the application lock.
func (s *Service) commitTransition(ctx context.Context, record storage.ApplicationRecord, app application.Application, evt application.Event) (application.Application, error) {
	next, err := application.Transition(app, evt, s.now)
	if err != nil {
		return application.Application{}, err
	}
	newDecisions := decisionRecords(app.ID, next.Gates.History, len(app.Gates.History))
	if _, err := s.applications.UpdateApplication(ctx, recordFromApplication(next, record.Version), record.Version, newDecisions); err != nil {
		if errors.Is(err, storage.ErrVersionMismatch) {
			return application.Application{}, apperrors.WithMetadata(
				apperrors.CodeStaleApplication,
				"the application changed since it was read",
				map[string]string{"ApplicationID": app.ID},
			)
		}
		return application.Application{}, fmt.Errorf("persist transition: %w", err)
	}
	return next, nil
}

func (s *Service) loadApplication(ctx context.Context, applicationID string) (storage.ApplicationRecord, []storage.GateDecisionRecord, error) {
	if applicationID == "" {
		return storage.ApplicationRecord{}, nil, apperrors.New(apperrors.CodeMissingRequiredField, "application id is required")
	}
	record, err := s.applications.GetApplication(ctx, applicationID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.ApplicationRecord{}, nil, apperrors.WithMetadata(
				apperrors.CodeNotFound,
				"application not found",
				map[string]string{"ApplicationID": applicationID},
			)
		}
		return storage.ApplicationRecord{}, nil, fmt.Errorf("get application: %w", err)
	}
	history, err := s.applications.ListGateDecisions(ctx, applicationID)
	if err != nil {
		return storage.ApplicationRecord{}, nil, fmt.Errorf("list gate decisions: %w", err)
	}
	return record, history, nil
}

// resolveSourcers reads the attribution ledger for candidate and company
// sourcer entitlements. A missing attribution leaves the role unfilled.
func (s *Service) resolveSourcers(ctx context.Context, candidateID string, companyID string) (commission.Participant, commission.Participant, error) {
	candidate := commission.Unfilled()
	company := commission.Unfilled()

	if trimmed := strings.TrimSpace(candidateID); trimmed != "" {
		record, err := s.attributions.GetAttribution(ctx, trimmed, attribution.RoleTypeLabel(attribution.RoleTypeCandidateSourcer))
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return commission.Participant{}, commission.Participant{}, fmt.Errorf("resolve candidate sourcer: %w", err)
		}
		if err == nil {
			candidate = commission.FilledBy(record.RecruiterID)
		}
	}
	if trimmed := strings.TrimSpace(companyID); trimmed != "" {
		record, err := s.attributions.GetAttribution(ctx, trimmed, attribution.RoleTypeLabel(attribution.RoleTypeCompanySourcer))
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return commission.Participant{}, commission.Participant{}, fmt.Errorf("resolve company sourcer: %w", err)
		}
		if err == nil {
			company = commission.FilledBy(record.RecruiterID)
		}
	}
	return candidate, company, nil
}

// sourcerEligibility reads live account standing for each filled sourcer.
// Recruiters without an account record are treated as inactive.
func (s *Service) sourcerEligibility(ctx context.Context, assignment commission.Assignment) (commission.SourcerEligibility, error) {
	directory := storeDirectory{ctx: ctx, accounts: s.accounts}
	var eligibility commission.SourcerEligibility

	if assignment.CandidateSourcer.Filled {
		active, err := attribution.IsEligible(attribution.Record{
			RoleType:    attribution.RoleTypeCandidateSourcer,
			RecruiterID: assignment.CandidateSourcer.ID,
		}, directory)
		if err != nil {
			return commission.SourcerEligibility{}, err
		}
		eligibility.CandidateSourcerActive = active
	}
	if assignment.CompanySourcer.Filled {
		active, err := attribution.IsEligible(attribution.Record{
			RoleType:    attribution.RoleTypeCompanySourcer,
			RecruiterID: assignment.CompanySourcer.ID,
		}, directory)
		if err != nil {
			return commission.SourcerEligibility{}, err
		}
		eligibility.CompanySourcerActive = active
	}
	return eligibility, nil
}

// storeDirectory adapts the account store to the attribution directory.
type storeDirectory struct {
	ctx      context.Context
	accounts storage.AccountStore
}

func (d storeDirectory) AccountStatus(recruiterID string) (attribution.AccountStatus, error) {
	record, err := d.accounts.GetAccount(d.ctx, recruiterID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return attribution.AccountStatusInactive, nil
		}
		return "", fmt.Errorf("get account %s: %w", recruiterID, err)
	}
	return attribution.AccountStatus(record.Status), nil
}

func participantFrom(recruiterID string) commission.Participant {
	trimmed := strings.TrimSpace(recruiterID)
	if trimmed == "" {
		return commission.Unfilled()
	}
	return commission.FilledBy(trimmed)
}
