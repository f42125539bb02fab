package model

import "time"

// Role identifies which dashboard a session is attached to.
type Role string

const (
	RoleNone   Role = ""
	RoleCounty Role = "county"
	RoleDOS    Role = "dos"
)

// Session is the only client-side state that survives a restart.
// Everything else is rebuilt from the server.
type Session struct {
	Role      Role      `json:"role"`
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Active reports whether the session is usable for authenticated calls.
func (s Session) Active() bool {
	return s.Role != RoleNone && s.Token != ""
}

// Elector is a named participant: an audit board member or a signatory.
type Elector struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Party     string `json:"political_party,omitempty"`
}

// AuditBoard is the roster of electors currently signed in for a county.
// An empty (non-nil) board means explicitly signed out; nil means unknown.
type AuditBoard []Elector

// Contest is a server-defined contest with its votable choices.
type Contest struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	CountyID     int64    `json:"county_id"`
	Choices      []Choice `json:"choices"`
	VotesAllowed int      `json:"votes_allowed"`
}

// Choice is one votable option within a contest.
type Choice struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Round is one bounded period of ballot review.
type Round struct {
	Number                 int        `json:"number"`
	StartTime              time.Time  `json:"start_time"`
	EndTime                *time.Time `json:"end_time,omitempty"`
	ExpectedCount          int        `json:"expected_count"`
	ActualCount            int        `json:"actual_count"`
	Disagreements          int        `json:"disagreements"`
	Discrepancies          int        `json:"discrepancies"`
	StartIndex             int        `json:"start_index"`
	StartAuditPrefixLength int        `json:"start_audit_prefix_length"`
	Signatories            []Elector  `json:"signatories,omitempty"`
}

// UploadedFile describes a file the county has delivered to the server.
type UploadedFile struct {
	ID          int64     `json:"file_id"`
	CountyID    int64     `json:"county_id"`
	Name        string    `json:"filename"`
	Size        int64     `json:"size"`
	Hash        string    `json:"hash"`
	HashStatus  string    `json:"hash_status"`
	Status      string    `json:"status"`
	ApproxCount int64     `json:"approximate_record_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// Hash status values reported by the server for an uploaded file.
const (
	HashVerified   = "VERIFIED"
	HashMismatch   = "MISMATCH"
	HashNotChecked = "NOT_CHECKED"
)
