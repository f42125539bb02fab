// Package review reconciles the audit board's incremental edits to a
// ballot's interpretation. Edits are partial (absent fields keep their
// previous values) and the no-consensus invariant (no consensus implies
// no recorded choices) is enforced on every merge, not just at submit.
package review

import (
	"sort"

	"github.com/openrla/rlaclient/internal/gateway"
	"github.com/openrla/rlaclient/internal/model"
)

// Seed lazily creates an empty interpretation for every contest on the
// ballot, preserving any entry that already exists: a background refetch
// must never wipe in-progress work. Returns a new ACVRs map; the input is
// not mutated.
func Seed(acvrs model.ACVRs, cvr *model.CVR) model.ACVRs {
	next := make(model.ACVRs, len(acvrs)+1)
	for id, a := range acvrs {
		next[id] = a
	}

	if _, ok := next[cvr.ID]; ok {
		return next
	}

	acvr := make(model.ACVR, len(cvr.ContestInfo))
	for _, info := range cvr.ContestInfo {
		acvr[info.Contest] = model.ACVRContest{
			Choices:  make(model.ACVRChoices),
			Comments: "",
		}
	}
	next[cvr.ID] = acvr
	return next
}

// Edit is one user action against a single (ballot, contest) entry.
// Nil fields mean "unchanged".
type Edit struct {
	BallotID  int64
	ContestID int64

	Choices     model.ACVRChoices
	Comments    *string
	NoConsensus *bool
}

// Apply merges an edit into the interpretation set and returns the next
// set. When the resulting entry has NoConsensus set, every choice is
// forced to false regardless of what the edit supplied.
func Apply(acvrs model.ACVRs, e Edit) model.ACVRs {
	next := make(model.ACVRs, len(acvrs)+1)
	for id, a := range acvrs {
		next[id] = a
	}

	prevBallot := next[e.BallotID]
	ballot := make(model.ACVR, len(prevBallot)+1)
	for id, c := range prevBallot {
		ballot[id] = c
	}

	entry := ballot[e.ContestID]

	choices := make(model.ACVRChoices, len(entry.Choices)+len(e.Choices))
	for name, marked := range entry.Choices {
		choices[name] = marked
	}
	for name, marked := range e.Choices {
		choices[name] = marked
	}
	entry.Choices = choices

	if e.Comments != nil {
		entry.Comments = *e.Comments
	}
	if e.NoConsensus != nil {
		entry.NoConsensus = *e.NoConsensus
	}

	if entry.NoConsensus {
		for name := range entry.Choices {
			entry.Choices[name] = false
		}
	}

	ballot[e.ContestID] = entry
	next[e.BallotID] = ballot
	return next
}

// Submission packages the full reconciled interpretation set for a ballot
// into the wire body, one entry per contest in contest-id order.
func Submission(acvrs model.ACVRs, cvr *model.CVR) gateway.ACVRSubmission {
	acvr := acvrs[cvr.ID]

	contests := make([]gateway.ACVRContestWire, 0, len(acvr))
	for contestID, entry := range acvr {
		marked := make([]string, 0, len(entry.Choices))
		for name, on := range entry.Choices {
			if on {
				marked = append(marked, name)
			}
		}
		sort.Strings(marked)

		consensus := "YES"
		if entry.NoConsensus {
			consensus = "NO"
		}
		contests = append(contests, gateway.ACVRContestWire{
			Contest:   contestID,
			Choices:   marked,
			Comments:  entry.Comments,
			Consensus: consensus,
		})
	}
	sort.Slice(contests, func(i, j int) bool { return contests[i].Contest < contests[j].Contest })

	return gateway.ACVRSubmission{CVRID: cvr.ID, AuditCVR: contests}
}
