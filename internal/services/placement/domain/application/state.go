package application

import (
	"fmt"
	"strings"

	apperrors "github.com/hirelane/hirelane/internal/platform/errors"
)

// State describes where a submission sits in the placement workflow.
type State int

const (
	// StateUnspecified represents an invalid state value.
	StateUnspecified State = iota
	// StateDraft is the initial state of a created submission.
	StateDraft
	// StateAIReview means the external AI reviewer is processing the submission.
	StateAIReview
	// StateAIReviewed means AI review completed and a recruiter may act.
	StateAIReviewed
	// StateRecruiterRequest means the recruiter asked the candidate for more input.
	StateRecruiterRequest
	// StateRecruiterProposed means a recruiter proposed the candidate for a job.
	StateRecruiterProposed
	// StateRecruiterReview means the candidate accepted and the recruiter is preparing the submission.
	StateRecruiterReview
	// StateScreen means company-facilitated screening is required before review.
	StateScreen
	// StateSubmitted means the submission is moving through recruiter approval gates.
	StateSubmitted
	// StateCompanyReview means the hiring company holds the current gate.
	StateCompanyReview
	// StateCompanyFeedback means the company responded and next steps are pending.
	StateCompanyFeedback
	// StateInterview means the candidate is interviewing.
	StateInterview
	// StateOffer means an offer is extended.
	StateOffer
	// StateHired is terminal: the placement succeeded.
	StateHired
	// StateRejected is terminal: a gate or the company declined.
	StateRejected
	// StateWithdrawn is terminal: the candidate withdrew.
	StateWithdrawn
	// StateExpired is terminal: a response window elapsed without a decision.
	StateExpired
)

var (
	// ErrInvalidStateTransition indicates an event not allowed in the current
	// state. The application is unchanged; the caller likely raced and should
	// re-read current state.
	ErrInvalidStateTransition = apperrors.New(apperrors.CodeInvalidStateTransition, "state transition is not allowed")
)

// IsTerminal reports whether a state has no outbound transitions.
func (s State) IsTerminal() bool {
	switch s {
	case StateHired, StateRejected, StateWithdrawn, StateExpired:
		return true
	default:
		return false
	}
}

// StateLabel returns a stable label for a state.
func StateLabel(state State) string {
	switch state {
	case StateDraft:
		return "DRAFT"
	case StateAIReview:
		return "AI_REVIEW"
	case StateAIReviewed:
		return "AI_REVIEWED"
	case StateRecruiterRequest:
		return "RECRUITER_REQUEST"
	case StateRecruiterProposed:
		return "RECRUITER_PROPOSED"
	case StateRecruiterReview:
		return "RECRUITER_REVIEW"
	case StateScreen:
		return "SCREEN"
	case StateSubmitted:
		return "SUBMITTED"
	case StateCompanyReview:
		return "COMPANY_REVIEW"
	case StateCompanyFeedback:
		return "COMPANY_FEEDBACK"
	case StateInterview:
		return "INTERVIEW"
	case StateOffer:
		return "OFFER"
	case StateHired:
		return "HIRED"
	case StateRejected:
		return "REJECTED"
	case StateWithdrawn:
		return "WITHDRAWN"
	case StateExpired:
		return "EXPIRED"
	default:
		return "UNSPECIFIED"
	}
}

// StateFromLabel parses a string label into a State.
// It trims whitespace and matches case-insensitively. Both short ("DRAFT")
// and prefixed ("STATE_DRAFT") forms are accepted.
func StateFromLabel(value string) (State, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return StateUnspecified, fmt.Errorf("application state is required")
	}
	upper := strings.ToUpper(trimmed)
	upper = strings.TrimPrefix(upper, "STATE_")
	for _, state := range allStates {
		if StateLabel(state) == upper {
			return state, nil
		}
	}
	return StateUnspecified, fmt.Errorf("unknown application state: %s", trimmed)
}

var allStates = []State{
	StateDraft,
	StateAIReview,
	StateAIReviewed,
	StateRecruiterRequest,
	StateRecruiterProposed,
	StateRecruiterReview,
	StateScreen,
	StateSubmitted,
	StateCompanyReview,
	StateCompanyFeedback,
	StateInterview,
	StateOffer,
	StateHired,
	StateRejected,
	StateWithdrawn,
	StateExpired,
}

// States lists every workflow state in declaration order.
func States() []State {
	return append([]State(nil), allStates...)
}
