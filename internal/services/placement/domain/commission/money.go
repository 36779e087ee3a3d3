package commission

// shareCents returns round-half-even(feeCents * rate / 100).
//
// Rates are whole percentages, so the exact share is feeCents*rate/100 with a
// remainder in [0,100). Half-even keeps repeated splits unbiased; whatever
// this rounding leaves over is reclaimed by the platform share, which is
// always computed by subtraction.
func shareCents(feeCents int64, rate int) int64 {
	if feeCents <= 0 || rate <= 0 {
		return 0
	}
	product := feeCents * int64(rate)
	quotient := product / 100
	remainder := product % 100

	switch {
	case remainder*2 < 100:
		return quotient
	case remainder*2 > 100:
		return quotient + 1
	case quotient%2 == 0:
		// Exactly half a cent: round to the even quotient.
		return quotient
	default:
		return quotient + 1
	}
}
