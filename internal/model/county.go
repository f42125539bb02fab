package model

import "time"

// CVR is the server's immutable record of a scanned ballot. The client
// never mutates one; interpretations live in ACVRs keyed by CVR id.
type CVR struct {
	ID           int64         `json:"id"`
	CountyID     int64         `json:"county_id"`
	CVRNumber    int           `json:"cvr_number"`
	ScannerID    int           `json:"scanner_id"`
	BatchID      string        `json:"batch_id"`
	RecordID     int           `json:"record_id"`
	RecordType   string        `json:"record_type"`
	ImprintedID  string        `json:"imprinted_id"`
	BallotType   string        `json:"ballot_type"`
	ContestInfo  []ContestInfo `json:"contest_info"`
	AuditBoardIx *int          `json:"audit_board_index,omitempty"`
	Audited      bool          `json:"audited"`
}

// ContestInfo lists the choices the scanner recorded for one contest on a CVR.
type ContestInfo struct {
	Contest int64    `json:"contest"`
	Choices []string `json:"choices"`
}

// CurrentBallot is the CVR under review plus the local submission flag.
// Submitted is set the moment an upload is attempted so a background
// refresh cannot cause the same ballot to be submitted twice.
type CurrentBallot struct {
	CVR
	Submitted bool `json:"submitted"`
}

// ACVRChoices maps a choice name to whether the board saw it marked.
type ACVRChoices map[string]bool

// ACVRContest is the audit board's interpretation of one contest on one
// ballot. Invariant: NoConsensus implies every choice is false.
type ACVRContest struct {
	Choices     ACVRChoices `json:"choices"`
	Comments    string      `json:"comments"`
	NoConsensus bool        `json:"no_consensus"`
}

// ACVR is the per-contest interpretation set for one ballot.
type ACVR map[int64]ACVRContest

// ACVRs holds in-progress interpretations keyed by CVR id.
type ACVRs map[int64]ACVR

// CVRImportState values for a CVR export import on the server.
const (
	ImportNotAttempted = "NOT_ATTEMPTED"
	ImportInProgress   = "IN_PROGRESS"
	ImportSuccessful   = "SUCCESSFUL"
	ImportFailed       = "FAILED"
)

// CVRImportStatus mirrors the server's record of the most recent CVR
// export import attempt.
type CVRImportStatus struct {
	State     string    `json:"import_state"`
	Error     string    `json:"error_message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Election holds the election metadata the DOS admin configured.
type Election struct {
	Date time.Time `json:"election_date"`
	Type string    `json:"election_type"`
}

// CountyState is the complete county-side workflow snapshot. It is
// replaced wholesale on every merge; sub-maps carry over per the merge
// rules in internal/merge.
type CountyState struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`

	ASMState           string `json:"asm_state"`
	AuditBoardASMState string `json:"audit_board_asm_state"`

	AuditBoard      AuditBoard `json:"audit_board"`
	AuditBoardCount *int       `json:"audit_board_count,omitempty"`
	AuditBoardIndex int        `json:"audit_board_index"`

	BallotManifest *UploadedFile `json:"ballot_manifest_file"`
	CVRExport      *UploadedFile `json:"cvr_export_file"`

	BallotManifestCount *int64 `json:"ballot_manifest_count,omitempty"`
	CVRExportCount      *int64 `json:"cvr_export_count,omitempty"`

	CVRImportStatus         CVRImportStatus `json:"cvr_import_status"`
	UploadingBallotManifest bool            `json:"-"`
	UploadingCVRExport      bool            `json:"-"`

	ContestDefs        map[int64]Contest `json:"contest_defs"`
	ContestsUnderAudit []Contest         `json:"contests_under_audit"`

	CurrentRound *Round  `json:"current_round"`
	Rounds       []Round `json:"rounds"`

	CurrentBallot      *CurrentBallot `json:"current_ballot"`
	BallotUnderAuditID *int64         `json:"ballot_under_audit_id,omitempty"`
	CVRsToAudit        []CVR          `json:"cvrs_to_audit"`
	ACVRs              ACVRs          `json:"acvrs"`

	AuditedBallotCount      int  `json:"audited_ballot_count"`
	BallotsRemainingInRound int  `json:"ballots_remaining_in_round"`
	EstimatedBallotsToAudit *int `json:"estimated_ballots_to_audit,omitempty"`
	DisagreementCount       int  `json:"disagreement_count"`
	DiscrepancyCount        int  `json:"discrepancy_count"`

	Election  *Election `json:"election,omitempty"`
	RiskLimit *float64  `json:"risk_limit,omitempty"`
}

// NewCountyState returns a county snapshot with its sub-maps allocated.
func NewCountyState() *CountyState {
	return &CountyState{
		ContestDefs: make(map[int64]Contest),
		ACVRs:       make(ACVRs),
	}
}
