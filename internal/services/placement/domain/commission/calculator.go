package commission

import (
	"fmt"

	apperrors "github.com/hirelane/hirelane/internal/platform/errors"
)

// ErrInvalidFee indicates a non-positive placement fee.
var ErrInvalidFee = apperrors.New(apperrors.CodeInvalidFee, "placement fee must be positive")

// SourcerEligibility carries live account-status checks for the two sourcer
// roles. Eligibility is read at calculation time, never cached: inactivity
// suppresses payout, not the attribution history.
type SourcerEligibility struct {
	CandidateSourcerActive bool
	CompanySourcerActive   bool
}

// Input describes one commission calculation request.
type Input struct {
	// FeeCents is the total placement fee in integer cents, strictly positive.
	FeeCents int64
	Tier     Tier
	Roles    Assignment
	Sourcers SourcerEligibility
}

// Breakdown is the immutable result of distributing one placement fee.
// Role amounts are nil when the role is unfilled; a filled sourcer role with
// an inactive account pays zero but stays non-nil, since the attribution
// itself is intact.
type Breakdown struct {
	FeeCents                int64
	Tier                    Tier
	CandidateRecruiterCents *int64
	JobOwnerCents           *int64
	CompanyRecruiterCents   *int64
	CandidateSourcerCents   *int64
	CompanySourcerCents     *int64
	PlatformCents           int64
	TotalDistributedCents   int64
}

// AmountFor returns the distributed amount for one role, nil when unfilled.
func (b Breakdown) AmountFor(role Role) *int64 {
	switch role {
	case RoleCandidateRecruiter:
		return b.CandidateRecruiterCents
	case RoleJobOwner:
		return b.JobOwnerCents
	case RoleCompanyRecruiter:
		return b.CompanyRecruiterCents
	case RoleCandidateSourcer:
		return b.CandidateSourcerCents
	case RoleCompanySourcer:
		return b.CompanySourcerCents
	default:
		return nil
	}
}

// Calculator distributes placement fees against an immutable rate table.
// It is pure and safe for concurrent use.
type Calculator struct {
	table RateTable
}

// NewCalculator builds a calculator over a validated rate table.
func NewCalculator(table RateTable) Calculator {
	return Calculator{table: table}
}

// Calculate produces the per-role and platform amounts for one placement fee.
//
// Each filled, eligible role receives round-half-even(fee * rate / 100). The
// platform amount is fee minus the sum of paid role amounts, never an
// independent rate computation, so rounding error lands in the platform share
// and TotalDistributedCents always equals FeeCents exactly.
func (c Calculator) Calculate(input Input) (Breakdown, error) {
	if input.FeeCents <= 0 {
		return Breakdown{}, apperrors.WithMetadata(
			apperrors.CodeInvalidFee,
			fmt.Sprintf("placement fee must be positive, got %d cents", input.FeeCents),
			map[string]string{"FeeCents": fmt.Sprintf("%d", input.FeeCents)},
		)
	}
	rates, err := c.table.RatesFor(input.Tier)
	if err != nil {
		return Breakdown{}, err
	}

	breakdown := Breakdown{
		FeeCents: input.FeeCents,
		Tier:     input.Tier,
	}

	var paid int64
	for _, role := range Roles() {
		slot := input.Roles.Slot(role)
		if !slot.Filled {
			continue
		}
		amount := int64(0)
		if c.roleEligible(role, input.Sourcers) {
			amount = shareCents(input.FeeCents, rates.Rate(role))
		}
		paid += amount
		breakdown.setAmount(role, amount)
	}

	breakdown.PlatformCents = input.FeeCents - paid
	breakdown.TotalDistributedCents = paid + breakdown.PlatformCents

	if breakdown.TotalDistributedCents != input.FeeCents {
		return Breakdown{}, apperrors.WithMetadata(
			apperrors.CodeRoundingInvariant,
			fmt.Sprintf("distributed %d cents against a fee of %d cents", breakdown.TotalDistributedCents, input.FeeCents),
			map[string]string{
				"FeeCents":         fmt.Sprintf("%d", input.FeeCents),
				"DistributedCents": fmt.Sprintf("%d", breakdown.TotalDistributedCents),
			},
		)
	}
	return breakdown, nil
}

// roleEligible reports whether a filled role receives its rate-defined share.
func (c Calculator) roleEligible(role Role, sourcers SourcerEligibility) bool {
	switch role {
	case RoleCandidateSourcer:
		return sourcers.CandidateSourcerActive
	case RoleCompanySourcer:
		return sourcers.CompanySourcerActive
	default:
		return true
	}
}

func (b *Breakdown) setAmount(role Role, cents int64) {
	switch role {
	case RoleCandidateRecruiter:
		b.CandidateRecruiterCents = &cents
	case RoleJobOwner:
		b.JobOwnerCents = &cents
	case RoleCompanyRecruiter:
		b.CompanyRecruiterCents = &cents
	case RoleCandidateSourcer:
		b.CandidateSourcerCents = &cents
	case RoleCompanySourcer:
		b.CompanySourcerCents = &cents
	}
}
