package commission

import (
	"fmt"
	"strings"

	apperrors "github.com/hirelane/hirelane/internal/platform/errors"
)

// Tier describes the subscription level that selects a commission rate set.
type Tier int

const (
	// TierUnspecified represents an invalid tier value.
	TierUnspecified Tier = iota
	// TierPremium is the highest subscription level.
	TierPremium
	// TierPaid is the standard paid subscription level.
	TierPaid
	// TierFree is the unpaid subscription level.
	TierFree
)

var (
	// ErrInvalidTier indicates a missing or unrecognized subscription tier.
	ErrInvalidTier = apperrors.New(apperrors.CodeInvalidTier, "subscription tier is not recognized")
)

// RateSet holds the five role rates plus the platform remainder for one tier.
// All values are whole percentages in [0,100] and must sum to exactly 100.
type RateSet struct {
	CandidateRecruiter int
	JobOwner           int
	CompanyRecruiter   int
	CandidateSourcer   int
	CompanySourcer     int
	PlatformRemainder  int
}

// Rate returns the percentage for one role.
func (rs RateSet) Rate(role Role) int {
	switch role {
	case RoleCandidateRecruiter:
		return rs.CandidateRecruiter
	case RoleJobOwner:
		return rs.JobOwner
	case RoleCompanyRecruiter:
		return rs.CompanyRecruiter
	case RoleCandidateSourcer:
		return rs.CandidateSourcer
	case RoleCompanySourcer:
		return rs.CompanySourcer
	default:
		return 0
	}
}

func (rs RateSet) sum() int {
	return rs.CandidateRecruiter + rs.JobOwner + rs.CompanyRecruiter +
		rs.CandidateSourcer + rs.CompanySourcer + rs.PlatformRemainder
}

// RateTable is an immutable tier-to-rates mapping validated at construction.
type RateTable struct {
	rates map[Tier]RateSet
}

// NewRateTable builds a rate table and enforces the sums-to-100 invariant for
// every tier. A violation is a configuration defect, caught at startup rather
// than per calculation.
func NewRateTable(rates map[Tier]RateSet) (RateTable, error) {
	if len(rates) == 0 {
		return RateTable{}, apperrors.New(apperrors.CodeRateTableSum, "rate table is empty")
	}
	cloned := make(map[Tier]RateSet, len(rates))
	for tier, rateSet := range rates {
		if tier == TierUnspecified {
			return RateTable{}, apperrors.New(apperrors.CodeInvalidTier, "rate table contains an unspecified tier")
		}
		if total := rateSet.sum(); total != 100 {
			return RateTable{}, apperrors.WithMetadata(
				apperrors.CodeRateTableSum,
				fmt.Sprintf("rates for tier %s sum to %d, expected 100", TierLabel(tier), total),
				map[string]string{"Tier": TierLabel(tier), "Sum": fmt.Sprintf("%d", total)},
			)
		}
		cloned[tier] = rateSet
	}
	return RateTable{rates: cloned}, nil
}

// DefaultRateTable returns the fixed business rate constants.
func DefaultRateTable() RateTable {
	table, err := NewRateTable(map[Tier]RateSet{
		TierPremium: {CandidateRecruiter: 40, JobOwner: 20, CompanyRecruiter: 20, CandidateSourcer: 10, CompanySourcer: 10, PlatformRemainder: 0},
		TierPaid:    {CandidateRecruiter: 30, JobOwner: 15, CompanyRecruiter: 15, CandidateSourcer: 8, CompanySourcer: 8, PlatformRemainder: 24},
		TierFree:    {CandidateRecruiter: 20, JobOwner: 10, CompanyRecruiter: 10, CandidateSourcer: 6, CompanySourcer: 6, PlatformRemainder: 48},
	})
	if err != nil {
		// The defaults are compile-time constants; a sum violation here is unreachable.
		panic(err)
	}
	return table
}

// RatesFor returns the rate set for a tier.
func (t RateTable) RatesFor(tier Tier) (RateSet, error) {
	rateSet, ok := t.rates[tier]
	if !ok {
		return RateSet{}, apperrors.WithMetadata(
			apperrors.CodeInvalidTier,
			fmt.Sprintf("no rates configured for tier %s", TierLabel(tier)),
			map[string]string{"Tier": TierLabel(tier)},
		)
	}
	return rateSet, nil
}

// TierLabel returns a stable label for a tier.
func TierLabel(tier Tier) string {
	switch tier {
	case TierPremium:
		return "PREMIUM"
	case TierPaid:
		return "PAID"
	case TierFree:
		return "FREE"
	default:
		return "UNSPECIFIED"
	}
}

// TierFromLabel parses a string label into a Tier.
// It trims whitespace and matches case-insensitively. Both short ("PREMIUM")
// and prefixed ("TIER_PREMIUM") forms are accepted.
func TierFromLabel(value string) (Tier, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return TierUnspecified, ErrInvalidTier
	}
	upper := strings.ToUpper(trimmed)
	switch upper {
	case "PREMIUM", "TIER_PREMIUM":
		return TierPremium, nil
	case "PAID", "TIER_PAID":
		return TierPaid, nil
	case "FREE", "TIER_FREE":
		return TierFree, nil
	default:
		return TierUnspecified, apperrors.WithMetadata(
			apperrors.CodeInvalidTier,
			fmt.Sprintf("unknown subscription tier: %s", trimmed),
			map[string]string{"Tier": trimmed},
		)
	}
}
