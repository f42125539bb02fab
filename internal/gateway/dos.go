package gateway

import (
	"context"
	"regexp"
	"time"

	"github.com/openrla/rlaclient/internal/model"
)

// DOSDashboard is the decoded state-admin dashboard payload.
type DOSDashboard struct {
	ASMState                string                          `json:"asm_state"`
	AuditedContests         map[int64]model.ContestForAudit `json:"audited_contests"`
	CountyStatus            map[int64]model.CountyStatus    `json:"county_status"`
	AuditInfo               *AuditInfoWire                  `json:"audit_info"`
	AuditStage              string                          `json:"audit_stage"`
	EstimatedBallotsToAudit map[int64]int                   `json:"estimated_ballots_to_audit"`
}

// DOSDashboardRefresh fetches the state-admin workflow snapshot.
func (c *Client) DOSDashboardRefresh(ctx context.Context) (*DOSDashboard, error) {
	var out DOSDashboard
	if err := c.get(ctx, "/dos-dashboard", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DOSASMState fetches the state-admin finite-state value.
func (c *Client) DOSASMState(ctx context.Context) (*ASMResponse, error) {
	var out ASMResponse
	if err := c.get(ctx, "/dos-asm-state", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AllContests fetches every contest definition across counties.
func (c *Client) AllContests(ctx context.Context) ([]model.Contest, error) {
	var out []model.Contest
	if err := c.get(ctx, "/contest", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SelectContests submits the contests chosen for audit, with reasons.
func (c *Client) SelectContests(ctx context.Context, selections []model.ContestForAudit) error {
	if len(selections) == 0 {
		return &CallError{Endpoint: "/select-contests", cause: ErrValidation,
			detail: "at least one contest must be selected"}
	}
	return c.post(ctx, "/select-contests", selections, nil)
}

// AuditInfo is the update-audit-info request body.
type AuditInfo struct {
	ElectionDate      *time.Time `json:"election_date,omitempty"`
	ElectionType      string     `json:"election_type,omitempty"`
	PublicMeetingDate *string    `json:"public_meeting_date,omitempty"`
	RiskLimit         *float64   `json:"risk_limit,omitempty"`
}

// SetAuditInfo updates election metadata for the audit.
func (c *Client) SetAuditInfo(ctx context.Context, info AuditInfo) error {
	return c.post(ctx, "/update-audit-info", info, nil)
}

// SetRiskLimit sets the target risk limit for comparison audits.
func (c *Client) SetRiskLimit(ctx context.Context, limit float64) error {
	if limit <= 0 || limit >= 1 {
		return &CallError{Endpoint: "/risk-limit", cause: ErrValidation,
			detail: "risk limit must be in (0, 1)"}
	}
	body := struct {
		RiskLimit float64 `json:"risk_limit"`
	}{RiskLimit: limit}
	return c.post(ctx, "/risk-limit", body, nil)
}

// seedPattern: the seed must be a numeral of at least 20 digits. Checked
// locally so a typo never reaches the server.
var seedPattern = regexp.MustCompile(`^\d{20,}$`)

// UploadRandomSeed publishes the random seed for ballot selection.
func (c *Client) UploadRandomSeed(ctx context.Context, seed string) error {
	if !seedPattern.MatchString(seed) {
		return &CallError{Endpoint: "/random-seed", cause: ErrValidation,
			detail: "seed must be a numeral at least 20 digits long"}
	}
	body := struct {
		Seed string `json:"seed"`
	}{Seed: seed}
	return c.post(ctx, "/random-seed", body, nil)
}

// StartRound triggers the next audit round for all targeted counties.
func (c *Client) StartRound(ctx context.Context) error {
	body := struct {
		Multiplier   float64 `json:"multiplier"`
		UseEstimates bool    `json:"use_estimates"`
	}{Multiplier: 1.0, UseEstimates: true}
	return c.post(ctx, "/start-audit-round", body, nil)
}

// SetHandCount designates a contest for full hand count.
func (c *Client) SetHandCount(ctx context.Context, contestID int64) error {
	body := []model.ContestForAudit{{
		ContestID: contestID,
		Audit:     model.AuditHandCount,
		Reason:    "COUNTY_WIDE_CONTEST",
	}}
	return c.post(ctx, "/hand-count", body, nil)
}
