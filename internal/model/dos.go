package model

// AuditType distinguishes how a selected contest will be audited.
type AuditType string

const (
	AuditComparison   AuditType = "COMPARISON"
	AuditHandCount    AuditType = "HAND_COUNT"
	AuditNotAuditable AuditType = "NOT_AUDITABLE"
	AuditNone         AuditType = "NONE"
)

// ContestForAudit is the DOS admin's selection of one contest for audit.
type ContestForAudit struct {
	ContestID int64     `json:"contest"`
	Audit     AuditType `json:"audit"`
	Reason    string    `json:"reason"`
}

// CountyStatus is the DOS dashboard's per-county progress row.
type CountyStatus struct {
	ID                      int64         `json:"id"`
	ASMState                string        `json:"asm_state"`
	BallotManifest          *UploadedFile `json:"ballot_manifest_file"`
	CVRExport               *UploadedFile `json:"cvr_export_file"`
	AuditedBallotCount      int           `json:"audited_ballot_count"`
	BallotsRemainingInRound int           `json:"ballots_remaining_in_round"`
	CurrentRound            *Round        `json:"current_round"`
	DisagreementCount       int           `json:"disagreement_count"`
	DiscrepancyCount        int           `json:"discrepancy_count"`
	EstimatedBallotsToAudit *int          `json:"estimated_ballots_to_audit,omitempty"`
	Status                  string        `json:"status"`
}

// DOSState is the complete state-admin workflow snapshot.
type DOSState struct {
	ASMState string `json:"asm_state"`

	AuditedContests map[int64]ContestForAudit `json:"audited_contests"`
	Contests        map[int64]Contest         `json:"contests"`
	CountyStatus    map[int64]CountyStatus    `json:"county_status"`

	Election          *Election `json:"election,omitempty"`
	PublicMeetingDate *string   `json:"public_meeting_date,omitempty"`
	RiskLimit         *float64  `json:"risk_limit,omitempty"`
	Seed              string    `json:"seed"`
	AuditStage        string    `json:"audit_stage"`
}

// NewDOSState returns a DOS snapshot with its sub-maps allocated.
func NewDOSState() *DOSState {
	return &DOSState{
		AuditedContests: make(map[int64]ContestForAudit),
		Contests:        make(map[int64]Contest),
		CountyStatus:    make(map[int64]CountyStatus),
	}
}
