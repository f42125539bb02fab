// Package merge combines freshly fetched server payloads with the
// previous local state. The default is a deep merge (fields the payload
// omits keep their old values) with an explicit overwrite set for
// collections where an empty value is meaningful and must not be shadowed
// by a stale cache: the audit board roster, the current round, the
// cvrs-to-audit assignment, and contests-under-audit.
//
// Every merge is a pure function from (previous, payload) to next and is
// idempotent, so a response that arrives after its polling loop stopped is
// still safe to apply.
package merge

import (
	"sort"

	"github.com/openrla/rlaclient/internal/asm"
	"github.com/openrla/rlaclient/internal/gateway"
	"github.com/openrla/rlaclient/internal/metrics"
	"github.com/openrla/rlaclient/internal/model"
)

// County merges a county dashboard payload into the previous snapshot and
// returns the next snapshot. prev is never mutated.
func County(prev *model.CountyState, d *gateway.CountyDashboard) *model.CountyState {
	if prev == nil {
		prev = model.NewCountyState()
	}
	next := *prev
	metrics.Merges.WithLabelValues("county_dashboard").Inc()

	// Scalar fields: overlay when present, retain otherwise.
	if d.ID != nil {
		next.ID = *d.ID
	}
	if d.Name != "" {
		next.Name = d.Name
	}
	next.ASMState = string(asm.Advance(asm.CountyState(prev.ASMState), d.ASMState))

	if d.BallotManifestFile != nil {
		next.BallotManifest = d.BallotManifestFile
	}
	if d.BallotManifestCount != nil {
		next.BallotManifestCount = d.BallotManifestCount
	}
	if d.CVRExportFile != nil {
		next.CVRExport = d.CVRExportFile
	}
	if d.CVRExportCount != nil {
		next.CVRExportCount = d.CVRExportCount
	}
	if d.CVRImportStatus != nil {
		next.CVRImportStatus = model.CVRImportStatus{
			State:     d.CVRImportStatus.State,
			Error:     d.CVRImportStatus.Error,
			Timestamp: d.CVRImportStatus.Timestamp,
		}
	}

	if d.AuditedBallotCount != nil {
		next.AuditedBallotCount = *d.AuditedBallotCount
	}
	if d.BallotsRemainingInRound != nil {
		next.BallotsRemainingInRound = *d.BallotsRemainingInRound
	}
	if d.EstimatedBallotsToAudit != nil {
		next.EstimatedBallotsToAudit = d.EstimatedBallotsToAudit
	}
	if d.BallotUnderAuditID != nil {
		next.BallotUnderAuditID = d.BallotUnderAuditID
	}

	next.DisagreementCount = sumCounts(d.DisagreementCount, prev.DisagreementCount)
	next.DiscrepancyCount = sumCounts(d.DiscrepancyCount, prev.DiscrepancyCount)

	if d.AuditInfo != nil {
		if d.AuditInfo.ElectionDate != nil {
			next.Election = &model.Election{
				Date: *d.AuditInfo.ElectionDate,
				Type: d.AuditInfo.ElectionType,
			}
		}
		if d.AuditInfo.RiskLimit != nil {
			next.RiskLimit = d.AuditInfo.RiskLimit
		}
	}

	if len(d.Rounds) > 0 {
		next.Rounds = d.Rounds
	}
	// Present-but-empty clears the list; only an omitted key retains it.
	if d.ContestsUnderAudit != nil {
		next.ContestsUnderAudit = contestsUnderAudit(d.ContestsUnderAudit, next.ContestDefs)
	}

	// Overwrite set: replaced wholesale even when empty. An empty roster
	// is a signed-out board; a nil current round is between-rounds.
	next.AuditBoard = auditBoardFromWire(d.AuditBoard)
	next.CurrentRound = d.CurrentRound

	// A stale board count must not outlive its payload.
	next.AuditBoardCount = d.AuditBoardCount

	return &next
}

// CountyASM merges a finite-state refresh for the county machine.
func CountyASM(prev *model.CountyState, r *gateway.ASMResponse) *model.CountyState {
	if prev == nil {
		prev = model.NewCountyState()
	}
	next := *prev
	metrics.Merges.WithLabelValues("county_asm").Inc()
	next.ASMState = string(asm.Advance(asm.CountyState(prev.ASMState), r.CurrentState))
	return &next
}

// AuditBoardASM merges a finite-state refresh for the audit board machine.
func AuditBoardASM(prev *model.CountyState, r *gateway.ASMResponse) *model.CountyState {
	if prev == nil {
		prev = model.NewCountyState()
	}
	next := *prev
	metrics.Merges.WithLabelValues("audit_board_asm").Inc()
	next.AuditBoardASMState = string(asm.Advance(asm.AuditBoardState(prev.AuditBoardASMState), r.CurrentState))
	return &next
}

// CountyContests merges fetched contest definitions. Definitions are
// keyed by id and overlay existing entries; contests the payload omits
// are retained.
func CountyContests(prev *model.CountyState, contests []model.Contest) *model.CountyState {
	if prev == nil {
		prev = model.NewCountyState()
	}
	next := *prev
	metrics.Merges.WithLabelValues("county_contests").Inc()

	defs := make(map[int64]model.Contest, len(prev.ContestDefs)+len(contests))
	for id, c := range prev.ContestDefs {
		defs[id] = c
	}
	for _, c := range contests {
		defs[c.ID] = c
	}
	next.ContestDefs = defs
	return &next
}

// CVRsToAudit replaces the round's ballot assignment. This is overwrite
// semantics: the server's list is authoritative, empty included.
func CVRsToAudit(prev *model.CountyState, cvrs []model.CVR) *model.CountyState {
	if prev == nil {
		prev = model.NewCountyState()
	}
	next := *prev
	metrics.Merges.WithLabelValues("cvrs_to_audit").Inc()
	next.CVRsToAudit = cvrs
	return &next
}

// sumCounts collapses the server's per-audit-reason count map into the
// single number the dashboard shows; absent payload keeps the old value.
func sumCounts(m map[string]int, old int) int {
	if m == nil {
		return old
	}
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}

func auditBoardFromWire(w *gateway.AuditBoardWire) model.AuditBoard {
	if w == nil {
		return model.AuditBoard{}
	}
	board := make(model.AuditBoard, 0, len(w.Members))
	board = append(board, w.Members...)
	return board
}

// contestsUnderAudit resolves the payload's id→reason map against the
// contest definitions already merged into local state.
func contestsUnderAudit(reasons map[int64]string, defs map[int64]model.Contest) []model.Contest {
	if len(defs) == 0 {
		return nil
	}
	out := make([]model.Contest, 0, len(reasons))
	for id := range reasons {
		if def, ok := defs[id]; ok {
			out = append(out, def)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
