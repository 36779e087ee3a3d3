package app

import (
	"fmt"
	"time"

	"github.com/hirelane/hirelane/internal/services/placement/domain/application"
	"github.com/hirelane/hirelane/internal/services/placement/domain/attribution"
	"github.com/hirelane/hirelane/internal/services/placement/domain/commission"
	"github.com/hirelane/hirelane/internal/services/placement/storage"
)

func recordFromApplication(app application.Application, version int64) storage.ApplicationRecord {
	sequence := make([]string, 0, len(app.Gates.Sequence))
	for _, gate := range app.Gates.Sequence {
		sequence = append(sequence, application.GateLabel(gate))
	}
	return storage.ApplicationRecord{
		ID:          app.ID,
		JobID:       app.JobID,
		CandidateID: app.CandidateID,
		CompanyID:   app.CompanyID,
		State:       application.StateLabel(app.State),

		CandidateRecruiterID: app.Roles.CandidateRecruiter.ID,
		JobOwnerID:           app.Roles.JobOwner.ID,
		CompanyRecruiterID:   app.Roles.CompanyRecruiter.ID,
		CandidateSourcerID:   app.Roles.CandidateSourcer.ID,
		CompanySourcerID:     app.Roles.CompanySourcer.ID,

		GateSequence:     sequence,
		CurrentGateIndex: app.Gates.CurrentIndex,
		InfoRequested:    app.Gates.InfoRequested,
		ScreenRequired:   app.Gates.ScreenRequired,
		ResponseDueAt:    app.Gates.ResponseDueAt,

		ProposalNotes: app.ProposalNotes,
		ProposedAt:    app.ProposedAt,

		CreatedAt: app.CreatedAt,
		UpdatedAt: app.UpdatedAt,
		Version:   version,
	}
}

func applicationFromRecord(record storage.ApplicationRecord, history []storage.GateDecisionRecord) (application.Application, error) {
	state, err := application.StateFromLabel(record.State)
	if err != nil {
		return application.Application{}, fmt.Errorf("application %s: %w", record.ID, err)
	}
	sequence := make([]application.Gate, 0, len(record.GateSequence))
	for _, label := range record.GateSequence {
		gate, err := application.GateFromLabel(label)
		if err != nil {
			return application.Application{}, fmt.Errorf("application %s: %w", record.ID, err)
		}
		sequence = append(sequence, gate)
	}
	entries := make([]application.DecisionEntry, 0, len(history))
	for _, row := range history {
		gate, err := application.GateFromLabel(row.Gate)
		if err != nil {
			return application.Application{}, fmt.Errorf("application %s history: %w", record.ID, err)
		}
		decision, err := application.DecisionFromLabel(row.Decision)
		if err != nil {
			return application.Application{}, fmt.Errorf("application %s history: %w", record.ID, err)
		}
		entries = append(entries, application.DecisionEntry{
			Gate:       gate,
			Decision:   decision,
			ReviewerID: row.ReviewerID,
			Notes:      row.Notes,
			DecidedAt:  row.DecidedAt,
		})
	}
	return application.Application{
		ID:          record.ID,
		JobID:       record.JobID,
		CandidateID: record.CandidateID,
		CompanyID:   record.CompanyID,
		State:       state,
		Roles: commission.Assignment{
			CandidateRecruiter: participantFrom(record.CandidateRecruiterID),
			JobOwner:           participantFrom(record.JobOwnerID),
			CompanyRecruiter:   participantFrom(record.CompanyRecruiterID),
			CandidateSourcer:   participantFrom(record.CandidateSourcerID),
			CompanySourcer:     participantFrom(record.CompanySourcerID),
		},
		Gates: application.GateRecord{
			Sequence:       sequence,
			CurrentIndex:   record.CurrentGateIndex,
			History:        entries,
			InfoRequested:  record.InfoRequested,
			ScreenRequired: record.ScreenRequired,
			ResponseDueAt:  record.ResponseDueAt,
		},
		ProposalNotes: record.ProposalNotes,
		ProposedAt:    record.ProposedAt,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}, nil
}

// decisionRecords converts the history entries appended past priorLen into
// store rows with contiguous sequence numbers.
func decisionRecords(applicationID string, history []application.DecisionEntry, priorLen int) []storage.GateDecisionRecord {
	if len(history) <= priorLen {
		return nil
	}
	records := make([]storage.GateDecisionRecord, 0, len(history)-priorLen)
	for i := priorLen; i < len(history); i++ {
		entry := history[i]
		records = append(records, storage.GateDecisionRecord{
			ApplicationID: applicationID,
			Seq:           i,
			Gate:          application.GateLabel(entry.Gate),
			Decision:      application.DecisionLabel(entry.Decision),
			ReviewerID:    entry.ReviewerID,
			Notes:         entry.Notes,
			DecidedAt:     entry.DecidedAt,
		})
	}
	return records
}

func attributionFromRecord(record storage.AttributionRecord) (attribution.Record, error) {
	roleType, err := attribution.RoleTypeFromLabel(record.RoleType)
	if err != nil {
		return attribution.Record{}, fmt.Errorf("attribution %s: %w", record.EntityID, err)
	}
	return attribution.Record{
		EntityID:    record.EntityID,
		RoleType:    roleType,
		RecruiterID: record.RecruiterID,
		CreatedAt:   record.CreatedAt,
	}, nil
}

func breakdownRecord(applicationID string, tier commission.Tier, breakdown commission.Breakdown, createdAt time.Time) storage.BreakdownRecord {
	return storage.BreakdownRecord{
		ApplicationID: applicationID,
		FeeCents:      breakdown.FeeCents,
		Tier:          commission.TierLabel(tier),

		CandidateRecruiterCents: breakdown.CandidateRecruiterCents,
		JobOwnerCents:           breakdown.JobOwnerCents,
		CompanyRecruiterCents:   breakdown.CompanyRecruiterCents,
		CandidateSourcerCents:   breakdown.CandidateSourcerCents,
		CompanySourcerCents:     breakdown.CompanySourcerCents,
		PlatformCents:           breakdown.PlatformCents,
		TotalDistributedCents:   breakdown.TotalDistributedCents,

		CreatedAt: createdAt,
	}
}

func breakdownFromRecord(record storage.BreakdownRecord) commission.Breakdown {
	tier, err := commission.TierFromLabel(record.Tier)
	if err != nil {
		tier = commission.TierUnspecified
	}
	return commission.Breakdown{
		FeeCents: record.FeeCents,
		Tier:     tier,

		CandidateRecruiterCents: record.CandidateRecruiterCents,
		JobOwnerCents:           record.JobOwnerCents,
		CompanyRecruiterCents:   record.CompanyRecruiterCents,
		CandidateSourcerCents:   record.CandidateSourcerCents,
		CompanySourcerCents:     record.CompanySourcerCents,
		PlatformCents:           record.PlatformCents,
		TotalDistributedCents:   record.TotalDistributedCents,
	}
}
