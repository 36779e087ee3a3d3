// Package application models the candidate-submission workflow: the state
// machine that routes a submission through recruiter proposal, conditional
// approval gates, and company review, and the gate sequencer that derives
// which gates apply from the roles filled on the placement.
//
// Transition is a pure function; persistence and per-application
// serialization live in the service layer. A record that reaches a terminal
// state (hired, rejected, withdrawn, expired) never transitions again.
package application
