// Package errors provides structured domain errors with machine codes.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Commission errors
	CodeInvalidFee           Code = "COMMISSION_INVALID_FEE"
	CodeInvalidTier          Code = "COMMISSION_INVALID_TIER"
	CodeRoundingInvariant    Code = "COMMISSION_ROUNDING_INVARIANT_VIOLATION"
	CodeRateTableSum         Code = "COMMISSION_RATE_TABLE_SUM_VIOLATION"
	CodeBreakdownFinalized   Code = "COMMISSION_BREAKDOWN_ALREADY_FINALIZED"
	CodeMissingRequiredField Code = "MISSING_REQUIRED_FIELD"

	// Application workflow errors
	CodeInvalidStateTransition Code = "APPLICATION_INVALID_STATE_TRANSITION"
	CodeDuplicateAssignment    Code = "APPLICATION_DUPLICATE_ASSIGNMENT"
	CodeProposalExpired        Code = "APPLICATION_PROPOSAL_EXPIRED"
	CodeInvalidGate            Code = "APPLICATION_INVALID_GATE"
	CodeInvalidGateDecision    Code = "APPLICATION_INVALID_GATE_DECISION"
	CodeStaleApplication       Code = "APPLICATION_STALE_VERSION"

	// Attribution errors
	CodeInvalidSourcerRole Code = "ATTRIBUTION_INVALID_SOURCER_ROLE"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
	CodeConflict Code = "CONFLICT"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeInvalidFee,
		CodeInvalidTier,
		CodeMissingRequiredField,
		CodeInvalidGate,
		CodeInvalidGateDecision,
		CodeInvalidSourcerRole:
		return codes.InvalidArgument

	// AlreadyExists - a record for this identity already exists
	case CodeDuplicateAssignment:
		return codes.AlreadyExists

	// FailedPrecondition - state doesn't allow the operation, usually a race
	case CodeInvalidStateTransition,
		CodeProposalExpired,
		CodeStaleApplication,
		CodeBreakdownFinalized,
		CodeConflict:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	// Internal - invariant violations are engine bugs, never caller faults
	default:
		return codes.Internal
	}
}

// IsInvariantViolation reports whether a code marks an engine defect rather than
// bad input. These must be logged and alerted, never retried: retrying reproduces
// the same bug deterministically.
func (c Code) IsInvariantViolation() bool {
	return c == CodeRoundingInvariant || c == CodeRateTableSum
}
