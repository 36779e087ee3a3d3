package application

import (
	"fmt"
	"time"

	apperrors "github.com/hirelane/hirelane/internal/platform/errors"
	"github.com/hirelane/hirelane/internal/services/placement/domain/commission"
)

// Application is the workflow record for one candidate submitted to one job.
type Application struct {
	ID          string
	JobID       string
	CandidateID string
	// CompanyID names the hiring company, used to resolve company-side
	// sourcer attribution at placement time.
	CompanyID string
	State     State
	// Roles mirrors the commission assignment for the placement. Gate
	// sequencing reads the recruiter slots; payout uses the whole set.
	Roles commission.Assignment
	// Gates is zero-valued until the submission enters the gate flow.
	Gates         GateRecord
	ProposalNotes string
	ProposedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EventKind names a workflow event.
type EventKind int

const (
	// EventUnspecified represents an invalid event kind.
	EventUnspecified EventKind = iota
	// EventAIReviewStarted moves a draft into AI review.
	EventAIReviewStarted
	// EventAIReviewCompleted records the AI reviewer finishing.
	EventAIReviewCompleted
	// EventInfoRequested records a recruiter asking the candidate for more input.
	EventInfoRequested
	// EventCandidateResubmitted records the candidate answering an info request.
	EventCandidateResubmitted
	// EventProposalSubmitted records a recruiter proposing the candidate for the job.
	EventProposalSubmitted
	// EventProposalAccepted records the candidate accepting the proposal.
	EventProposalAccepted
	// EventProposalDeclined records the candidate declining the proposal.
	EventProposalDeclined
	// EventProposalExpired records the proposal response window elapsing.
	EventProposalExpired
	// EventSubmitted enters the gate flow and freezes the gate sequence.
	EventSubmitted
	// EventGateDecision records the current gate holder's response.
	EventGateDecision
	// EventGateResubmitted answers an open info request at the current gate.
	EventGateResubmitted
	// EventScreenCompleted finishes the company-facilitated screen.
	EventScreenCompleted
	// EventCompanyAdvance moves the application along the post-review chain.
	EventCompanyAdvance
	// EventCompanyRejected records a company rejection after review.
	EventCompanyRejected
	// EventWithdrawn records the candidate withdrawing.
	EventWithdrawn
	// EventGateTimeout expires an application whose gate response window elapsed.
	EventGateTimeout
)

// Event carries a workflow event and its payload. Only the fields relevant
// to the kind are read.
type Event struct {
	Kind     EventKind
	Gate     Gate
	Decision Decision
	// ReviewerID and Notes annotate gate history entries and proposals.
	ReviewerID string
	Notes      string
	// Target is the destination for EventCompanyAdvance.
	Target State
	// ResponseWindow sets the due time whenever the event opens or re-opens
	// a gate. Zero leaves the gate without a deadline.
	ResponseWindow time.Duration
}

// EventKindLabel returns a stable label for an event kind.
func EventKindLabel(kind EventKind) string {
	switch kind {
	case EventAIReviewStarted:
		return "AI_REVIEW_STARTED"
	case EventAIReviewCompleted:
		return "AI_REVIEW_COMPLETED"
	case EventInfoRequested:
		return "INFO_REQUESTED"
	case EventCandidateResubmitted:
		return "CANDIDATE_RESUBMITTED"
	case EventProposalSubmitted:
		return "PROPOSAL_SUBMITTED"
	case EventProposalAccepted:
		return "PROPOSAL_ACCEPTED"
	case EventProposalDeclined:
		return "PROPOSAL_DECLINED"
	case EventProposalExpired:
		return "PROPOSAL_EXPIRED"
	case EventSubmitted:
		return "SUBMITTED"
	case EventGateDecision:
		return "GATE_DECISION"
	case EventGateResubmitted:
		return "GATE_RESUBMITTED"
	case EventScreenCompleted:
		return "SCREEN_COMPLETED"
	case EventCompanyAdvance:
		return "COMPANY_ADVANCE"
	case EventCompanyRejected:
		return "COMPANY_REJECTED"
	case EventWithdrawn:
		return "WITHDRAWN"
	case EventGateTimeout:
		return "GATE_TIMEOUT"
	default:
		return "UNSPECIFIED"
	}
}

// Transition applies an event to an application and returns the updated
// record. The input is never mutated; on error the caller's copy is the
// authoritative state. Callers serialize transitions per application id.
func Transition(app Application, evt Event, now func() time.Time) (Application, error) {
	if now == nil {
		now = time.Now
	}
	if app.State.IsTerminal() {
		return Application{}, transitionError(app.State, evt.Kind)
	}
	at := now().UTC()

	next := app
	next.Gates.Sequence = append([]Gate(nil), app.Gates.Sequence...)
	next.Gates.History = append([]DecisionEntry(nil), app.Gates.History...)

	switch evt.Kind {
	case EventWithdrawn:
		next.State = StateWithdrawn
		next.Gates.ResponseDueAt = nil

	case EventAIReviewStarted:
		if app.State != StateDraft {
			return Application{}, transitionError(app.State, evt.Kind)
		}
		next.State = StateAIReview

	case EventAIReviewCompleted:
		if app.State != StateAIReview {
			return Application{}, transitionError(app.State, evt.Kind)
		}
		next.State = StateAIReviewed

	case EventInfoRequested:
		if app.State != StateAIReviewed {
			return Application{}, transitionError(app.State, evt.Kind)
		}
		next.State = StateRecruiterRequest

	case EventCandidateResubmitted:
		if app.State != StateRecruiterRequest {
			return Application{}, transitionError(app.State, evt.Kind)
		}
		next.State = StateAIReviewed

	case EventProposalSubmitted:
		if app.State != StateAIReviewed {
			return Application{}, transitionError(app.State, evt.Kind)
		}
		next.State = StateRecruiterProposed
		next.ProposalNotes = evt.Notes
		proposedAt := at
		next.ProposedAt = &proposedAt

	case EventProposalAccepted:
		if app.State != StateRecruiterProposed {
			return Application{}, transitionError(app.State, evt.Kind)
		}
		next.State = StateRecruiterReview

	case EventProposalDeclined:
		if app.State != StateRecruiterProposed {
			return Application{}, transitionError(app.State, evt.Kind)
		}
		next.State = StateRejected

	case EventProposalExpired:
		if app.State != StateRecruiterProposed {
			return Application{}, transitionError(app.State, evt.Kind)
		}
		next.State = StateExpired

	case EventSubmitted:
		if app.State != StateRecruiterReview {
			return Application{}, transitionError(app.State, evt.Kind)
		}
		sequence, screenRequired := SequenceFor(
			app.Roles.CandidateRecruiter.Filled,
			app.Roles.CompanyRecruiter.Filled,
		)
		next.Gates = GateRecord{
			Sequence:       sequence,
			CurrentIndex:   0,
			ScreenRequired: screenRequired,
		}
		switch {
		case sequence[0] != GateCompany:
			next.State = StateSubmitted
			next.Gates.ResponseDueAt = dueAt(at, evt.ResponseWindow)
		case screenRequired:
			// The screen has no reviewer deadline. The response clock starts
			// when the screen completes and the company gate opens.
			next.State = StateScreen
		default:
			next.State = StateCompanyReview
			next.Gates.ResponseDueAt = dueAt(at, evt.ResponseWindow)
		}

	case EventGateDecision:
		if app.State != StateSubmitted && app.State != StateCompanyReview {
			return Application{}, transitionError(app.State, evt.Kind)
		}
		current := app.Gates.CurrentGate()
		if current == GateUnspecified || evt.Gate != current {
			return Application{}, apperrors.WithMetadata(
				apperrors.CodeInvalidGate,
				fmt.Sprintf("gate %s is not open, current gate is %s", GateLabel(evt.Gate), GateLabel(current)),
				map[string]string{"Gate": GateLabel(evt.Gate), "CurrentGate": GateLabel(current)},
			)
		}
		switch evt.Decision {
		case DecisionApproved, DecisionDenied, DecisionInfoRequested:
		default:
			return Application{}, ErrInvalidGateDecision
		}
		next.Gates.History = append(next.Gates.History, DecisionEntry{
			Gate:       current,
			Decision:   evt.Decision,
			ReviewerID: evt.ReviewerID,
			Notes:      evt.Notes,
			DecidedAt:  at,
		})
		switch evt.Decision {
		case DecisionApproved:
			next.Gates.InfoRequested = false
			next.Gates.CurrentIndex++
			if next.Gates.CurrentIndex >= len(next.Gates.Sequence) {
				next.State = StateCompanyFeedback
				next.Gates.ResponseDueAt = nil
				break
			}
			next.Gates.ResponseDueAt = dueAt(at, evt.ResponseWindow)
			if next.Gates.CurrentGate() == GateCompany {
				next.State = StateCompanyReview
			}
		case DecisionDenied:
			next.Gates.InfoRequested = false
			next.State = StateRejected
			next.Gates.ResponseDueAt = nil
		case DecisionInfoRequested:
			next.Gates.InfoRequested = true
			next.Gates.ResponseDueAt = dueAt(at, evt.ResponseWindow)
		}

	case EventGateResubmitted:
		if app.State != StateSubmitted && app.State != StateCompanyReview {
			return Application{}, transitionError(app.State, evt.Kind)
		}
		if !app.Gates.InfoRequested {
			return Application{}, ErrInvalidGate
		}
		next.Gates.InfoRequested = false
		next.Gates.ResponseDueAt = dueAt(at, evt.ResponseWindow)

	case EventScreenCompleted:
		if app.State != StateScreen {
			return Application{}, transitionError(app.State, evt.Kind)
		}
		next.State = StateCompanyReview
		next.Gates.ResponseDueAt = dueAt(at, evt.ResponseWindow)

	case EventCompanyAdvance:
		allowed := map[State]State{
			StateCompanyFeedback: StateInterview,
			StateInterview:       StateOffer,
			StateOffer:           StateHired,
		}
		target, ok := allowed[app.State]
		if !ok || evt.Target != target {
			return Application{}, transitionError(app.State, evt.Kind)
		}
		next.State = target

	case EventCompanyRejected:
		switch app.State {
		case StateCompanyFeedback, StateInterview, StateOffer:
			next.State = StateRejected
		default:
			return Application{}, transitionError(app.State, evt.Kind)
		}

	case EventGateTimeout:
		if app.State != StateSubmitted && app.State != StateCompanyReview {
			return Application{}, transitionError(app.State, evt.Kind)
		}
		due := app.Gates.ResponseDueAt
		if due == nil || at.Before(*due) {
			return Application{}, transitionError(app.State, evt.Kind)
		}
		next.State = StateExpired
		next.Gates.ResponseDueAt = nil

	default:
		return Application{}, transitionError(app.State, evt.Kind)
	}

	next.UpdatedAt = at
	return next, nil
}

func dueAt(at time.Time, window time.Duration) *time.Time {
	if window <= 0 {
		return nil
	}
	due := at.Add(window)
	return &due
}

func transitionError(state State, kind EventKind) error {
	return apperrors.WithMetadata(
		apperrors.CodeInvalidStateTransition,
		fmt.Sprintf("event %s is not allowed in state %s", EventKindLabel(kind), StateLabel(state)),
		map[string]string{"State": StateLabel(state), "Event": EventKindLabel(kind)},
	)
}
