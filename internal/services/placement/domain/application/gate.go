package application

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/hirelane/hirelane/internal/platform/errors"
)

// Gate identifies one approval stop in the submission sequence.
type Gate int

const (
	// GateUnspecified represents an invalid gate value.
	GateUnspecified Gate = iota
	// GateCandidateRecruiter is held by the recruiter representing the candidate.
	GateCandidateRecruiter
	// GateCompanyRecruiter is held by the recruiter representing the company.
	GateCompanyRecruiter
	// GateCompany is held by the hiring company and is always last.
	GateCompany
)

// Decision is a gate holder's response to a submission.
type Decision int

const (
	// DecisionUnspecified represents an invalid decision value.
	DecisionUnspecified Decision = iota
	// DecisionApproved advances the submission to the next gate.
	DecisionApproved
	// DecisionDenied rejects the whole application.
	DecisionDenied
	// DecisionInfoRequested holds the gate open pending candidate input.
	DecisionInfoRequested
)

var (
	// ErrInvalidGate indicates a decision aimed at a gate that is not the
	// current one, or at an application with no open gate.
	ErrInvalidGate = apperrors.New(apperrors.CodeInvalidGate, "gate is not currently open for decisions")
	// ErrInvalidGateDecision indicates an unknown decision value.
	ErrInvalidGateDecision = apperrors.New(apperrors.CodeInvalidGateDecision, "gate decision is not recognized")
)

// DecisionEntry is one immutable line of gate history.
type DecisionEntry struct {
	Gate       Gate
	Decision   Decision
	ReviewerID string
	Notes      string
	DecidedAt  time.Time
}

// GateRecord tracks gate progress for a submitted application. The sequence
// is fixed at submission time from the roles filled on the placement and
// never reordered afterwards.
type GateRecord struct {
	Sequence []Gate
	// CurrentIndex points into Sequence. len(Sequence) means every gate
	// has approved.
	CurrentIndex   int
	History        []DecisionEntry
	InfoRequested  bool
	ScreenRequired bool
	ResponseDueAt  *time.Time
}

// CurrentGate returns the gate awaiting a decision, or GateUnspecified when
// the record is empty or exhausted.
func (r GateRecord) CurrentGate() Gate {
	if r.CurrentIndex < 0 || r.CurrentIndex >= len(r.Sequence) {
		return GateUnspecified
	}
	return r.Sequence[r.CurrentIndex]
}

// GateLabel returns a stable label for a gate.
func GateLabel(gate Gate) string {
	switch gate {
	case GateCandidateRecruiter:
		return "CANDIDATE_RECRUITER"
	case GateCompanyRecruiter:
		return "COMPANY_RECRUITER"
	case GateCompany:
		return "COMPANY"
	default:
		return "UNSPECIFIED"
	}
}

// GateFromLabel parses a string label into a Gate.
// It trims whitespace and matches case-insensitively. Both short ("COMPANY")
// and prefixed ("GATE_COMPANY") forms are accepted.
func GateFromLabel(value string) (Gate, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return GateUnspecified, fmt.Errorf("gate is required")
	}
	upper := strings.ToUpper(trimmed)
	upper = strings.TrimPrefix(upper, "GATE_")
	for _, gate := range []Gate{GateCandidateRecruiter, GateCompanyRecruiter, GateCompany} {
		if GateLabel(gate) == upper {
			return gate, nil
		}
	}
	return GateUnspecified, fmt.Errorf("unknown gate: %s", trimmed)
}

// DecisionLabel returns a stable label for a decision.
func DecisionLabel(decision Decision) string {
	switch decision {
	case DecisionApproved:
		return "APPROVED"
	case DecisionDenied:
		return "DENIED"
	case DecisionInfoRequested:
		return "INFO_REQUESTED"
	default:
		return "UNSPECIFIED"
	}
}

// DecisionFromLabel parses a string label into a Decision.
// It trims whitespace and matches case-insensitively. Both short ("APPROVED")
// and prefixed ("DECISION_APPROVED") forms are accepted.
func DecisionFromLabel(value string) (Decision, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return DecisionUnspecified, ErrInvalidGateDecision
	}
	upper := strings.ToUpper(trimmed)
	upper = strings.TrimPrefix(upper, "DECISION_")
	for _, decision := range []Decision{DecisionApproved, DecisionDenied, DecisionInfoRequested} {
		if DecisionLabel(decision) == upper {
			return decision, nil
		}
	}
	return DecisionUnspecified, apperrors.WithMetadata(
		apperrors.CodeInvalidGateDecision,
		fmt.Sprintf("unknown gate decision: %s", trimmed),
		map[string]string{"Decision": trimmed},
	)
}
