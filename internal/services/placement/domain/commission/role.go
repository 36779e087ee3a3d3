package commission

import (
	"fmt"
	"strings"

	apperrors "github.com/hirelane/hirelane/internal/platform/errors"
)

// Role names one of the five commission participants in a placement.
type Role int

const (
	// RoleUnspecified represents an invalid role value.
	RoleUnspecified Role = iota
	// RoleCandidateRecruiter is the closer who shepherds the candidate.
	RoleCandidateRecruiter
	// RoleJobOwner is the recruiter who owns the job listing.
	RoleJobOwner
	// RoleCompanyRecruiter facilitates the hiring company side.
	RoleCompanyRecruiter
	// RoleCandidateSourcer first brought the candidate onto the platform.
	RoleCandidateSourcer
	// RoleCompanySourcer first brought the company onto the platform.
	RoleCompanySourcer
)

// Roles lists the five commission roles in canonical order.
func Roles() []Role {
	return []Role{
		RoleCandidateRecruiter,
		RoleJobOwner,
		RoleCompanyRecruiter,
		RoleCandidateSourcer,
		RoleCompanySourcer,
	}
}

// IsSourcer reports whether payout for this role depends on live account status.
func (r Role) IsSourcer() bool {
	return r == RoleCandidateSourcer || r == RoleCompanySourcer
}

// RoleLabel returns a stable label for a role.
func RoleLabel(role Role) string {
	switch role {
	case RoleCandidateRecruiter:
		return "CANDIDATE_RECRUITER"
	case RoleJobOwner:
		return "JOB_OWNER"
	case RoleCompanyRecruiter:
		return "COMPANY_RECRUITER"
	case RoleCandidateSourcer:
		return "CANDIDATE_SOURCER"
	case RoleCompanySourcer:
		return "COMPANY_SOURCER"
	default:
		return "UNSPECIFIED"
	}
}

// RoleFromLabel parses a string label into a Role.
// It trims whitespace and matches case-insensitively. Both short
// ("JOB_OWNER") and prefixed ("ROLE_JOB_OWNER") forms are accepted.
func RoleFromLabel(value string) (Role, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return RoleUnspecified, apperrors.New(apperrors.CodeMissingRequiredField, "commission role is required")
	}
	upper := strings.ToUpper(trimmed)
	switch upper {
	case "CANDIDATE_RECRUITER", "ROLE_CANDIDATE_RECRUITER":
		return RoleCandidateRecruiter, nil
	case "JOB_OWNER", "ROLE_JOB_OWNER":
		return RoleJobOwner, nil
	case "COMPANY_RECRUITER", "ROLE_COMPANY_RECRUITER":
		return RoleCompanyRecruiter, nil
	case "CANDIDATE_SOURCER", "ROLE_CANDIDATE_SOURCER":
		return RoleCandidateSourcer, nil
	case "COMPANY_SOURCER", "ROLE_COMPANY_SOURCER":
		return RoleCompanySourcer, nil
	default:
		return RoleUnspecified, apperrors.WithMetadata(
			apperrors.CodeMissingRequiredField,
			fmt.Sprintf("unknown commission role: %s", trimmed),
			map[string]string{"Role": trimmed},
		)
	}
}

// Participant is an explicit filled-or-unfilled role slot. The zero value is
// unfilled; an unfilled role's share always rolls up to the platform.
type Participant struct {
	ID     string
	Filled bool
}

// FilledBy returns a filled participant slot.
func FilledBy(id string) Participant {
	return Participant{ID: strings.TrimSpace(id), Filled: strings.TrimSpace(id) != ""}
}

// Unfilled returns an empty participant slot.
func Unfilled() Participant {
	return Participant{}
}

// Assignment holds the five role slots for one placement. Roles are populated
// by business process; the engine never infers or reassigns them.
type Assignment struct {
	CandidateRecruiter Participant
	JobOwner           Participant
	CompanyRecruiter   Participant
	CandidateSourcer   Participant
	CompanySourcer     Participant
}

// Slot returns the participant assigned to a role.
func (a Assignment) Slot(role Role) Participant {
	switch role {
	case RoleCandidateRecruiter:
		return a.CandidateRecruiter
	case RoleJobOwner:
		return a.JobOwner
	case RoleCompanyRecruiter:
		return a.CompanyRecruiter
	case RoleCandidateSourcer:
		return a.CandidateSourcer
	case RoleCompanySourcer:
		return a.CompanySourcer
	default:
		return Participant{}
	}
}
