package commission

import (
	"errors"
	"testing"

	apperrors "github.com/hirelane/hirelane/internal/platform/errors"
)

func fullAssignment() Assignment {
	return Assignment{
		CandidateRecruiter: FilledBy("rec-closer"),
		JobOwner:           FilledBy("rec-owner"),
		CompanyRecruiter:   FilledBy("rec-company"),
		CandidateSourcer:   FilledBy("rec-cand-sourcer"),
		CompanySourcer:     FilledBy("rec-comp-sourcer"),
	}
}

func activeSourcers() SourcerEligibility {
	return SourcerEligibility{CandidateSourcerActive: true, CompanySourcerActive: true}
}

func centsValue(t *testing.T, amount *int64) int64 {
	t.Helper()
	if amount == nil {
		t.Fatal("expected a non-nil role amount")
	}
	return *amount
}

func TestCalculatePremiumAllRolesFilled(t *testing.T) {
	calc := NewCalculator(DefaultRateTable())

	// $100,000 premium placement, all five roles filled, sourcers active.
	breakdown, err := calc.Calculate(Input{
		FeeCents: 100_000_00,
		Tier:     TierPremium,
		Roles:    fullAssignment(),
		Sourcers: activeSourcers(),
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	if got := centsValue(t, breakdown.CandidateRecruiterCents); got != 40_000_00 {
		t.Fatalf("candidate recruiter: expected $40,000, got %d cents", got)
	}
	if got := centsValue(t, breakdown.JobOwnerCents); got != 20_000_00 {
		t.Fatalf("job owner: expected $20,000, got %d cents", got)
	}
	if got := centsValue(t, breakdown.CompanyRecruiterCents); got != 20_000_00 {
		t.Fatalf("company recruiter: expected $20,000, got %d cents", got)
	}
	if got := centsValue(t, breakdown.CandidateSourcerCents); got != 10_000_00 {
		t.Fatalf("candidate sourcer: expected $10,000, got %d cents", got)
	}
	if got := centsValue(t, breakdown.CompanySourcerCents); got != 10_000_00 {
		t.Fatalf("company sourcer: expected $10,000, got %d cents", got)
	}
	if breakdown.PlatformCents != 0 {
		t.Fatalf("platform: expected $0, got %d cents", breakdown.PlatformCents)
	}
	if breakdown.TotalDistributedCents != 100_000_00 {
		t.Fatalf("total distributed: expected fee, got %d cents", breakdown.TotalDistributedCents)
	}
}

func TestCalculateFreeTierMostRolesUnfilled(t *testing.T) {
	calc := NewCalculator(DefaultRateTable())

	// $50,000 free-tier placement with only the candidate recruiter filled.
	breakdown, err := calc.Calculate(Input{
		FeeCents: 50_000_00,
		Tier:     TierFree,
		Roles:    Assignment{CandidateRecruiter: FilledBy("rec-closer")},
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	if got := centsValue(t, breakdown.CandidateRecruiterCents); got != 10_000_00 {
		t.Fatalf("candidate recruiter: expected $10,000 (20%%), got %d cents", got)
	}
	for _, role := range []Role{RoleJobOwner, RoleCompanyRecruiter, RoleCandidateSourcer, RoleCompanySourcer} {
		if breakdown.AmountFor(role) != nil {
			t.Fatalf("expected nil amount for unfilled role %s", RoleLabel(role))
		}
	}
	if breakdown.PlatformCents != 40_000_00 {
		t.Fatalf("platform: expected $40,000, got %d cents", breakdown.PlatformCents)
	}
	if breakdown.TotalDistributedCents != 50_000_00 {
		t.Fatalf("total distributed: expected fee, got %d cents", breakdown.TotalDistributedCents)
	}
}

func TestCalculateInactiveSourcerRollsToPlatform(t *testing.T) {
	calc := NewCalculator(DefaultRateTable())

	breakdown, err := calc.Calculate(Input{
		FeeCents: 100_000_00,
		Tier:     TierPremium,
		Roles:    fullAssignment(),
		Sourcers: SourcerEligibility{CandidateSourcerActive: false, CompanySourcerActive: true},
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	// Attributed but inactive: paid zero, amount present, value to platform.
	if got := centsValue(t, breakdown.CandidateSourcerCents); got != 0 {
		t.Fatalf("inactive candidate sourcer: expected $0, got %d cents", got)
	}
	if got := centsValue(t, breakdown.CompanySourcerCents); got != 10_000_00 {
		t.Fatalf("active company sourcer: expected $10,000, got %d cents", got)
	}
	if breakdown.PlatformCents != 10_000_00 {
		t.Fatalf("platform: expected suppressed sourcer share, got %d cents", breakdown.PlatformCents)
	}
	if breakdown.TotalDistributedCents != 100_000_00 {
		t.Fatalf("total distributed: expected fee, got %d cents", breakdown.TotalDistributedCents)
	}
}

func TestCalculateFeeConservationExhaustive(t *testing.T) {
	calc := NewCalculator(DefaultRateTable())
	participants := []string{"p1", "p2", "p3", "p4", "p5"}
	fees := []int64{1, 3, 99, 101, 33_333, 99_999_99, 100_000_00}

	for _, tier := range []Tier{TierPremium, TierPaid, TierFree} {
		for mask := 0; mask < 1<<5; mask++ {
			var assignment Assignment
			for i, role := range Roles() {
				if mask&(1<<i) != 0 {
					slot := FilledBy(participants[i])
					switch role {
					case RoleCandidateRecruiter:
						assignment.CandidateRecruiter = slot
					case RoleJobOwner:
						assignment.JobOwner = slot
					case RoleCompanyRecruiter:
						assignment.CompanyRecruiter = slot
					case RoleCandidateSourcer:
						assignment.CandidateSourcer = slot
					case RoleCompanySourcer:
						assignment.CompanySourcer = slot
					}
				}
			}
			for _, candActive := range []bool{true, false} {
				for _, compActive := range []bool{true, false} {
					for _, fee := range fees {
						breakdown, err := calc.Calculate(Input{
							FeeCents: fee,
							Tier:     tier,
							Roles:    assignment,
							Sourcers: SourcerEligibility{CandidateSourcerActive: candActive, CompanySourcerActive: compActive},
						})
						if err != nil {
							t.Fatalf("tier %s mask %05b fee %d: %v", TierLabel(tier), mask, fee, err)
						}
						if breakdown.TotalDistributedCents != fee {
							t.Fatalf("tier %s mask %05b fee %d: distributed %d", TierLabel(tier), mask, fee, breakdown.TotalDistributedCents)
						}
						if breakdown.PlatformCents < 0 {
							t.Fatalf("tier %s mask %05b fee %d: negative platform share %d", TierLabel(tier), mask, fee, breakdown.PlatformCents)
						}
						for i, role := range Roles() {
							amount := breakdown.AmountFor(role)
							if mask&(1<<i) == 0 {
								if amount != nil {
									t.Fatalf("unfilled role %s received an amount", RoleLabel(role))
								}
								continue
							}
							if amount == nil {
								t.Fatalf("filled role %s has nil amount", RoleLabel(role))
							}
						}
					}
				}
			}
		}
	}
}

func TestCalculateRejectsNonPositiveFee(t *testing.T) {
	calc := NewCalculator(DefaultRateTable())
	for _, fee := range []int64{0, -1, -100_00} {
		_, err := calc.Calculate(Input{FeeCents: fee, Tier: TierPremium, Roles: fullAssignment()})
		if !errors.Is(err, ErrInvalidFee) {
			t.Fatalf("fee %d: expected invalid fee error, got %v", fee, err)
		}
	}
}

func TestCalculateRejectsUnknownTier(t *testing.T) {
	calc := NewCalculator(DefaultRateTable())
	_, err := calc.Calculate(Input{FeeCents: 100, Tier: TierUnspecified, Roles: fullAssignment()})
	if apperrors.CodeOf(err) != apperrors.CodeInvalidTier {
		t.Fatalf("expected invalid tier error, got %v", err)
	}
}
