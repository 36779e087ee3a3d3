// Package commission implements the placement-fee distribution rules.
//
// The package is deliberately pure: the rate table is an injected immutable
// value validated at construction, and the calculator is a total function
// over its inputs. The single correctness guarantee everything here serves
// is fee conservation: for any fee and any combination of filled roles, the
// distributed amounts sum exactly to the input fee, with the platform share
// absorbing every residual cent.
package commission
