// Package attribution implements first-sourcer-wins attribution records.
//
// An attribution binds the recruiter who first brought a candidate or company
// onto the platform to a permanent commission entitlement. Records are never
// reassigned, edited, or deleted; an inactive account suppresses payout at
// calculation time without touching the audit trail.
package attribution

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/hirelane/hirelane/internal/platform/errors"
)

// RoleType names which sourcer entitlement an attribution record covers.
type RoleType int

const (
	// RoleTypeUnspecified represents an invalid role type value.
	RoleTypeUnspecified RoleType = iota
	// RoleTypeCandidateSourcer attributes discovery of a candidate.
	RoleTypeCandidateSourcer
	// RoleTypeCompanySourcer attributes business development of a company.
	RoleTypeCompanySourcer
)

// AccountStatus is the live standing of the attributed recruiter's account.
type AccountStatus string

const (
	// AccountStatusActive means the recruiter is entitled to sourcer payouts.
	AccountStatusActive AccountStatus = "active"
	// AccountStatusInactive means payouts are suppressed, attribution retained.
	AccountStatusInactive AccountStatus = "inactive"
)

var (
	// ErrEntityIDRequired indicates a missing candidate or company id.
	ErrEntityIDRequired = apperrors.New(apperrors.CodeMissingRequiredField, "entity id is required")
	// ErrRecruiterIDRequired indicates a missing recruiter id.
	ErrRecruiterIDRequired = apperrors.New(apperrors.CodeMissingRequiredField, "recruiter id is required")
	// ErrInvalidRoleType indicates a missing or unknown sourcer role type.
	ErrInvalidRoleType = apperrors.New(apperrors.CodeInvalidSourcerRole, "sourcer role type is not recognized")
)

// Record is one immutable attribution entry. At most one record exists per
// (EntityID, RoleType) pair, enforced by the store's atomic insert-if-absent.
type Record struct {
	EntityID    string
	RoleType    RoleType
	RecruiterID string
	CreatedAt   time.Time
}

// NewRecordInput describes an attribution attempt.
type NewRecordInput struct {
	EntityID    string
	RoleType    RoleType
	RecruiterID string
}

// NewRecord validates and normalizes an attribution attempt.
func NewRecord(input NewRecordInput, now func() time.Time) (Record, error) {
	if now == nil {
		now = time.Now
	}
	entityID := strings.TrimSpace(input.EntityID)
	if entityID == "" {
		return Record{}, ErrEntityIDRequired
	}
	recruiterID := strings.TrimSpace(input.RecruiterID)
	if recruiterID == "" {
		return Record{}, ErrRecruiterIDRequired
	}
	if input.RoleType != RoleTypeCandidateSourcer && input.RoleType != RoleTypeCompanySourcer {
		return Record{}, ErrInvalidRoleType
	}
	return Record{
		EntityID:    entityID,
		RoleType:    input.RoleType,
		RecruiterID: recruiterID,
		CreatedAt:   now().UTC(),
	}, nil
}

// RoleTypeLabel returns a stable label for a sourcer role type.
func RoleTypeLabel(roleType RoleType) string {
	switch roleType {
	case RoleTypeCandidateSourcer:
		return "CANDIDATE_SOURCER"
	case RoleTypeCompanySourcer:
		return "COMPANY_SOURCER"
	default:
		return "UNSPECIFIED"
	}
}

// RoleTypeFromLabel parses a string label into a RoleType.
// It trims whitespace and matches case-insensitively. Both short
// ("CANDIDATE_SOURCER") and prefixed ("ROLE_TYPE_CANDIDATE_SOURCER") forms
// are accepted.
func RoleTypeFromLabel(value string) (RoleType, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return RoleTypeUnspecified, ErrInvalidRoleType
	}
	upper := strings.ToUpper(trimmed)
	switch upper {
	case "CANDIDATE_SOURCER", "ROLE_TYPE_CANDIDATE_SOURCER":
		return RoleTypeCandidateSourcer, nil
	case "COMPANY_SOURCER", "ROLE_TYPE_COMPANY_SOURCER":
		return RoleTypeCompanySourcer, nil
	default:
		return RoleTypeUnspecified, apperrors.WithMetadata(
			apperrors.CodeInvalidSourcerRole,
			fmt.Sprintf("unknown sourcer role type: %s", trimmed),
			map[string]string{"RoleType": trimmed},
		)
	}
}

// AccountDirectory reports live account standing for recruiters. Lookups run
// at commission-calculation time so a status change between attribution and
// placement always takes effect.
type AccountDirectory interface {
	AccountStatus(recruiterID string) (AccountStatus, error)
}

// IsEligible reports whether the attributed recruiter is currently paid out.
func IsEligible(record Record, directory AccountDirectory) (bool, error) {
	if directory == nil {
		return false, fmt.Errorf("account directory is required")
	}
	status, err := directory.AccountStatus(record.RecruiterID)
	if err != nil {
		return false, fmt.Errorf("look up account status for %s: %w", record.RecruiterID, err)
	}
	return status == AccountStatusActive, nil
}
