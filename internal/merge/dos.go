package merge

import (
	"github.com/openrla/rlaclient/internal/asm"
	"github.com/openrla/rlaclient/internal/gateway"
	"github.com/openrla/rlaclient/internal/metrics"
	"github.com/openrla/rlaclient/internal/model"
)

// DOS merges a state-admin dashboard payload into the previous snapshot.
func DOS(prev *model.DOSState, d *gateway.DOSDashboard) *model.DOSState {
	if prev == nil {
		prev = model.NewDOSState()
	}
	next := *prev
	metrics.Merges.WithLabelValues("dos_dashboard").Inc()

	next.ASMState = string(asm.Advance(asm.DOSState(prev.ASMState), d.ASMState))

	if d.AuditStage != "" {
		next.AuditStage = d.AuditStage
	}

	// County rows and contest selections overlay by id; rows the payload
	// omits are retained rather than dropped mid-refresh.
	if d.CountyStatus != nil {
		status := make(map[int64]model.CountyStatus, len(prev.CountyStatus)+len(d.CountyStatus))
		for id, cs := range prev.CountyStatus {
			status[id] = cs
		}
		for id, cs := range d.CountyStatus {
			status[id] = cs
		}
		next.CountyStatus = status
	}
	if d.AuditedContests != nil {
		selected := make(map[int64]model.ContestForAudit, len(d.AuditedContests))
		for id, sel := range d.AuditedContests {
			selected[id] = sel
		}
		next.AuditedContests = selected
	}

	if d.AuditInfo != nil {
		if d.AuditInfo.ElectionDate != nil {
			next.Election = &model.Election{
				Date: *d.AuditInfo.ElectionDate,
				Type: d.AuditInfo.ElectionType,
			}
		}
		if d.AuditInfo.PublicMeetingDate != nil {
			next.PublicMeetingDate = d.AuditInfo.PublicMeetingDate
		}
		if d.AuditInfo.RiskLimit != nil {
			next.RiskLimit = d.AuditInfo.RiskLimit
		}
		if d.AuditInfo.Seed != "" {
			next.Seed = d.AuditInfo.Seed
		}
	}

	return &next
}

// DOSASM merges a finite-state refresh for the DOS machine.
func DOSASM(prev *model.DOSState, r *gateway.ASMResponse) *model.DOSState {
	if prev == nil {
		prev = model.NewDOSState()
	}
	next := *prev
	metrics.Merges.WithLabelValues("dos_asm").Inc()
	next.ASMState = string(asm.Advance(asm.DOSState(prev.ASMState), r.CurrentState))
	return &next
}

// DOSContests merges fetched contest definitions by id.
func DOSContests(prev *model.DOSState, contests []model.Contest) *model.DOSState {
	if prev == nil {
		prev = model.NewDOSState()
	}
	next := *prev
	metrics.Merges.WithLabelValues("dos_contests").Inc()

	defs := make(map[int64]model.Contest, len(prev.Contests)+len(contests))
	for id, c := range prev.Contests {
		defs[id] = c
	}
	for _, c := range contests {
		defs[c.ID] = c
	}
	next.Contests = defs
	return &next
}
