package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/openrla/rlaclient/internal/model"
)

// CountyDashboard is the decoded county dashboard refresh payload. Pointer
// fields distinguish "omitted by the server" (nil) from "present but
// empty/zero"; the merge engine depends on that distinction.
type CountyDashboard struct {
	ID       *int64 `json:"id"`
	Name     string `json:"name"`
	ASMState string `json:"asm_state"`

	AuditBoard      *AuditBoardWire `json:"audit_board"`
	AuditBoardCount *int            `json:"audit_board_count"`

	BallotManifestFile  *model.UploadedFile `json:"ballot_manifest_file"`
	BallotManifestCount *int64              `json:"ballot_manifest_count"`
	CVRExportFile       *model.UploadedFile `json:"cvr_export_file"`
	CVRExportCount      *int64              `json:"cvr_export_count"`
	CVRImportStatus     *CVRImportWire      `json:"cvr_import_status"`

	// Present on every refresh; nil only if the server omits the key.
	Contests           []int64          `json:"contests"`
	ContestsUnderAudit map[int64]string `json:"contests_under_audit"`

	CurrentRound *model.Round  `json:"current_round"`
	Rounds       []model.Round `json:"rounds"`

	BallotUnderAuditID      *int64 `json:"ballot_under_audit_id"`
	AuditedBallotCount      *int   `json:"audited_ballot_count"`
	BallotsRemainingInRound *int   `json:"ballots_remaining_in_round"`
	EstimatedBallotsToAudit *int   `json:"estimated_ballots_to_audit"`

	DisagreementCount map[string]int `json:"disagreement_count"`
	DiscrepancyCount  map[string]int `json:"discrepancy_count"`

	AuditInfo *AuditInfoWire `json:"audit_info"`
	Status    string         `json:"status"`
}

// AuditBoardWire is the roster as the server sends it.
type AuditBoardWire struct {
	Members    []model.Elector `json:"members"`
	SignInTime *time.Time      `json:"sign_in_time"`
}

// CVRImportWire is the server's record of the latest CVR export import.
type CVRImportWire struct {
	State     string    `json:"import_state"`
	Error     string    `json:"error_message"`
	Timestamp time.Time `json:"timestamp"`
}

// AuditInfoWire is the election metadata block shared by both dashboards.
type AuditInfoWire struct {
	ElectionDate      *time.Time `json:"election_date"`
	ElectionType      string     `json:"election_type"`
	PublicMeetingDate *string    `json:"public_meeting_date"`
	RiskLimit         *float64   `json:"risk_limit"`
	Seed              string     `json:"seed"`
}

// ASMResponse is the finite-state refresh payload for any of the three
// machines. EnabledUIEvents lists the actions the server will accept.
type ASMResponse struct {
	CurrentState    string   `json:"current_state"`
	EnabledUIEvents []string `json:"enabled_ui_events"`
}

// CountyDashboardRefresh fetches the county's workflow snapshot.
func (c *Client) CountyDashboardRefresh(ctx context.Context) (*CountyDashboard, error) {
	var out CountyDashboard
	if err := c.get(ctx, "/county-dashboard", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CountyASMState fetches the county finite-state value.
func (c *Client) CountyASMState(ctx context.Context) (*ASMResponse, error) {
	var out ASMResponse
	if err := c.get(ctx, "/county-asm-state", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AuditBoardASMState fetches the audit board finite-state value.
func (c *Client) AuditBoardASMState(ctx context.Context) (*ASMResponse, error) {
	var out ASMResponse
	if err := c.get(ctx, "/audit-board-asm-state", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ContestsForCounty fetches the contest definitions for one county.
func (c *Client) ContestsForCounty(ctx context.Context, countyID int64) ([]model.Contest, error) {
	var out []model.Contest
	if err := c.get(ctx, fmt.Sprintf("/contest/county?id=%d", countyID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchCVR fetches one cast-vote record by its db id.
func (c *Client) FetchCVR(ctx context.Context, id int64) (*model.CVR, error) {
	var out model.CVR
	if err := c.get(ctx, fmt.Sprintf("/cvr/id/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CVRsToAudit fetches the ballot assignment for a round. When
// includeAudited is false the server returns only unreviewed entries.
func (c *Client) CVRsToAudit(ctx context.Context, round int, includeAudited bool) ([]model.CVR, error) {
	path := fmt.Sprintf("/cvr-to-audit-list?round=%d", round)
	if includeAudited {
		path += "&include_audited=true"
	}
	var out []model.CVR
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ACVRContestWire is one contest's interpretation in a submission body.
type ACVRContestWire struct {
	Contest   int64    `json:"contest"`
	Choices   []string `json:"choices"`
	Comments  string   `json:"comments"`
	Consensus string   `json:"consensus"`
}

// ACVRSubmission is the upload-audit-cvr request body.
type ACVRSubmission struct {
	CVRID    int64             `json:"cvr_id"`
	AuditCVR []ACVRContestWire `json:"audit_cvr"`
}

// SubmitACVR uploads the reconciled interpretation for one ballot.
func (c *Client) SubmitACVR(ctx context.Context, sub ACVRSubmission) error {
	return c.post(ctx, "/upload-audit-cvr", sub, nil)
}

// BallotNotFound reports that the board could not locate a ballot.
func (c *Client) BallotNotFound(ctx context.Context, cvrID int64) error {
	body := struct {
		ID int64 `json:"id"`
	}{ID: cvrID}
	return c.post(ctx, "/ballot-not-found", body, nil)
}

// AuditBoardSignIn submits the board roster. The server requires a full
// roster; an empty one is a local validation failure.
func (c *Client) AuditBoardSignIn(ctx context.Context, board model.AuditBoard) error {
	if len(board) == 0 {
		return &CallError{Endpoint: "/audit-board-sign-in", cause: ErrValidation,
			detail: "audit board roster is empty"}
	}
	body := struct {
		AuditBoard []model.Elector `json:"audit_board"`
	}{AuditBoard: board}
	return c.post(ctx, "/audit-board-sign-in", body, nil)
}

// AuditBoardSignOut signs the current board out.
func (c *Client) AuditBoardSignOut(ctx context.Context) error {
	return c.post(ctx, "/audit-board-sign-out", nil, nil)
}

// SignOffRound closes the current round with the signatories' names.
func (c *Client) SignOffRound(ctx context.Context, signatories []model.Elector) error {
	if len(signatories) == 0 {
		return &CallError{Endpoint: "/sign-off-audit-round", cause: ErrValidation,
			detail: "round sign-off requires signatories"}
	}
	body := struct {
		Signatories []model.Elector `json:"signatories"`
	}{Signatories: signatories}
	return c.post(ctx, "/sign-off-audit-round", body, nil)
}
