package application

// SequenceFor derives the approval gates for a submission from the roles
// filled on the placement. Ordering is canonical: candidate recruiter, then
// company recruiter, then the company. The company gate is always present.
//
// The second return is true when no recruiter holds a gate, meaning a
// company-facilitated screen must run before company review.
func SequenceFor(hasCandidateRecruiter, hasCompanyRecruiter bool) ([]Gate, bool) {
	gates := make([]Gate, 0, 3)
	if hasCandidateRecruiter {
		gates = append(gates, GateCandidateRecruiter)
	}
	if hasCompanyRecruiter {
		gates = append(gates, GateCompanyRecruiter)
	}
	gates = append(gates, GateCompany)
	return gates, !hasCandidateRecruiter && !hasCompanyRecruiter
}
