// Package ballots sequences the audit board's assigned ballots. The
// server assigns the order; this package only answers "which ballot is
// next", "where are we", and "is the round done".
package ballots

import (
	"github.com/openrla/rlaclient/internal/model"
)

// NextID returns the db id of the first unaudited entry in assignment
// order. ok is false when every entry is audited: the round (or the
// whole audit) is complete for this board.
func NextID(list []model.CVR) (int64, bool) {
	for _, cvr := range list {
		if !cvr.Audited {
			return cvr.ID, true
		}
	}
	return 0, false
}

// Position returns the 1-based rank of id among the unaudited entries,
// for progress display ("ballot 3 of 17"). Returns 0 when id is not an
// unaudited entry in the list.
func Position(list []model.CVR, id int64) int {
	rank := 0
	for _, cvr := range list {
		if cvr.Audited {
			continue
		}
		rank++
		if cvr.ID == id {
			return rank
		}
	}
	return 0
}

// Remaining counts the unaudited entries in the assignment.
func Remaining(list []model.CVR) int {
	n := 0
	for _, cvr := range list {
		if !cvr.Audited {
			n++
		}
	}
	return n
}

// ShouldFetch reports whether the supervisor needs to fetch a ballot:
// only when the computed next id differs from the ballot already held.
// Refetching the held ballot would discard its pending submitted flag and
// open a duplicate-submission window.
func ShouldFetch(list []model.CVR, current *model.CurrentBallot) (int64, bool) {
	next, ok := NextID(list)
	if !ok {
		return 0, false
	}
	if current != nil && current.ID == next {
		return 0, false
	}
	return next, true
}

// RoundComplete reports whether the round is finished for this board.
// Two independent signals must agree: the server's remaining-in-round
// count and the board's own assignment having no unaudited entries.
func RoundComplete(c *model.CountyState) bool {
	if c == nil || c.CurrentRound == nil {
		return false
	}
	_, more := NextID(c.CVRsToAudit)
	return c.BallotsRemainingInRound <= 0 && !more
}

// AwaitingSignOff reports the boundary state where zero ballots remain
// but the server still marks the round in progress. This renders as
// "round finished, awaiting sign-off", not as an error.
func AwaitingSignOff(c *model.CountyState) bool {
	return RoundComplete(c) && c.CurrentRound.EndTime == nil
}
