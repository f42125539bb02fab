// Package asm mirrors the server's workflow state machines. The server is
// the sole source of truth: the client projects reported values into local
// enumerations and never invents a transition of its own.
package asm

// CountyState is the county dashboard's workflow stage.
type CountyState string

// County workflow stages, as reported by the server.
const (
	CountyInitial                    CountyState = "COUNTY_INITIAL_STATE"
	CountyAuthenticated              CountyState = "COUNTY_AUTHENTICATED"
	BallotManifestOK                 CountyState = "BALLOT_MANIFEST_OK"
	CVRsImporting                    CountyState = "CVRS_IMPORTING"
	CVRsOK                           CountyState = "CVRS_OK"
	BallotManifestOKAndCVRsImporting CountyState = "BALLOT_MANIFEST_OK_AND_CVRS_IMPORTING"
	BallotManifestAndCVRsOK          CountyState = "BALLOT_MANIFEST_AND_CVRS_OK"
	CountyAuditUnderway              CountyState = "COUNTY_AUDIT_UNDERWAY"
	CountyAuditComplete              CountyState = "COUNTY_AUDIT_COMPLETE"
	DeadlineMissed                   CountyState = "DEADLINE_MISSED"
)

// AuditBoardState is the audit board's workflow stage within a county.
type AuditBoardState string

// Audit board workflow stages.
const (
	AuditInitial                  AuditBoardState = "AUDIT_INITIAL_STATE"
	WaitingForRoundStart          AuditBoardState = "WAITING_FOR_ROUND_START"
	WaitingForRoundStartNoBoard   AuditBoardState = "WAITING_FOR_ROUND_START_NO_AUDIT_BOARD"
	RoundInProgress               AuditBoardState = "ROUND_IN_PROGRESS"
	RoundInProgressNoBoard        AuditBoardState = "ROUND_IN_PROGRESS_NO_AUDIT_BOARD"
	WaitingForRoundSignOff        AuditBoardState = "WAITING_FOR_ROUND_SIGN_OFF"
	WaitingForRoundSignOffNoBoard AuditBoardState = "WAITING_FOR_ROUND_SIGN_OFF_NO_AUDIT_BOARD"
	AuditBoardAuditComplete       AuditBoardState = "AUDIT_COMPLETE"
	UnableToAudit                 AuditBoardState = "UNABLE_TO_AUDIT"
	AuditAborted                  AuditBoardState = "AUDIT_ABORTED"
)

// DOSState is the state admin dashboard's workflow stage.
type DOSState string

// DOS workflow stages.
const (
	DOSInitial            DOSState = "DOS_INITIAL_STATE"
	DOSAuthenticated      DOSState = "DOS_AUTHENTICATED"
	RiskLimitsSet         DOSState = "RISK_LIMITS_SET"
	ContestsToAuditOK     DOSState = "CONTESTS_TO_AUDIT_IDENTIFIED"
	DataToAuditOK         DOSState = "DATA_TO_AUDIT_ESTABLISHED"
	RandomSeedOK          DOSState = "RANDOM_SEED_PUBLISHED"
	BallotOrderDefined    DOSState = "BALLOT_ORDER_DEFINED"
	AuditReadyToStart     DOSState = "AUDIT_READY_TO_START"
	DOSAuditOngoing       DOSState = "DOS_AUDIT_ONGOING"
	DOSRoundComplete      DOSState = "DOS_ROUND_COMPLETE"
	DOSAuditComplete      DOSState = "DOS_AUDIT_COMPLETE"
	AuditResultsPublished DOSState = "AUDIT_RESULTS_PUBLISHED"
)

// Advance projects a server-reported value onto the local state. An empty
// report means the server omitted the field; the previous value is kept so
// a slow round trip does not flicker the UI back to "not started".
func Advance[S ~string](prev S, reported string) S {
	if reported == "" {
		return prev
	}
	return S(reported)
}

// InProgress reports whether the audit board is mid-round (a ballot may be
// assigned for review).
func InProgress(s AuditBoardState) bool {
	return s == RoundInProgress || s == RoundInProgressNoBoard
}

// WaitingForStart reports whether the board is between rounds. County
// audit polling only needs the full battery in these stages.
func WaitingForStart(s AuditBoardState) bool {
	return s == WaitingForRoundStart || s == WaitingForRoundStartNoBoard
}

// WaitingForSignOff reports whether all assigned ballots are reviewed but
// the round has not been signed off. Rendered as a waiting state, never an
// error, even when the server still marks the round in progress.
func WaitingForSignOff(s AuditBoardState) bool {
	return s == WaitingForRoundSignOff || s == WaitingForRoundSignOffNoBoard
}
