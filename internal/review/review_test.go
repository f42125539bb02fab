package review

import (
	"reflect"
	"testing"

	"github.com/openrla/rlaclient/internal/model"
)

func strptr(s string) *string { return &s }

func boolptr(b bool) *bool { return &b }

func ballotWithContests(id int64, contests ...int64) *model.CVR {
	cvr := &model.CVR{ID: id}
	for _, c := range contests {
		cvr.ContestInfo = append(cvr.ContestInfo, model.ContestInfo{Contest: c})
	}
	return cvr
}

func TestSeedCreatesEmptyEntryPerContest(t *testing.T) {
	acvrs := Seed(model.ACVRs{}, ballotWithContests(7, 1, 2))

	acvr, ok := acvrs[7]
	if !ok {
		t.Fatal("expected an interpretation for ballot 7")
	}
	if len(acvr) != 2 {
		t.Fatalf("seeded %d contests, want 2", len(acvr))
	}
	for _, contestID := range []int64{1, 2} {
		entry := acvr[contestID]
		if len(entry.Choices) != 0 || entry.Comments != "" || entry.NoConsensus {
			t.Errorf("contest %d seeded non-empty: %+v", contestID, entry)
		}
	}
}

func TestSeedNeverOverwritesInProgressWork(t *testing.T) {
	acvrs := Seed(model.ACVRs{}, ballotWithContests(7, 1))
	acvrs = Apply(acvrs, Edit{
		BallotID:  7,
		ContestID: 1,
		Choices:   model.ACVRChoices{"Alice": true},
		Comments:  strptr("faint mark"),
	})

	// A background refetch seeds the same ballot again.
	reseeded := Seed(acvrs, ballotWithContests(7, 1))

	entry := reseeded[7][1]
	if !entry.Choices["Alice"] || entry.Comments != "faint mark" {
		t.Errorf("refetch clobbered in-progress work: %+v", entry)
	}
}

func TestApplyPartialEditRetainsMissingFields(t *testing.T) {
	acvrs := Seed(model.ACVRs{}, ballotWithContests(7, 3))
	acvrs = Apply(acvrs, Edit{
		BallotID:  7,
		ContestID: 3,
		Choices:   model.ACVRChoices{"X": true},
		Comments:  strptr("ok"),
	})

	// Comments-only edit: choices stay.
	acvrs = Apply(acvrs, Edit{BallotID: 7, ContestID: 3, Comments: strptr("updated")})
	entry := acvrs[7][3]
	if !entry.Choices["X"] {
		t.Error("comments-only edit dropped choice X")
	}
	if entry.Comments != "updated" {
		t.Errorf("comments = %q, want %q", entry.Comments, "updated")
	}

	// Choices-only edit: comments stay.
	acvrs = Apply(acvrs, Edit{BallotID: 7, ContestID: 3, Choices: model.ACVRChoices{"Y": true}})
	entry = acvrs[7][3]
	if entry.Comments != "updated" {
		t.Error("choices-only edit dropped comments")
	}
	if !entry.Choices["X"] || !entry.Choices["Y"] {
		t.Errorf("choices = %+v, want X and Y marked", entry.Choices)
	}
}

func TestNoConsensusClearsChoices(t *testing.T) {
	acvrs := Seed(model.ACVRs{}, ballotWithContests(7, 3))
	acvrs = Apply(acvrs, Edit{
		BallotID:  7,
		ContestID: 3,
		Choices:   model.ACVRChoices{"X": true},
		Comments:  strptr("ok"),
	})

	acvrs = Apply(acvrs, Edit{BallotID: 7, ContestID: 3, NoConsensus: boolptr(true)})

	entry := acvrs[7][3]
	if !entry.NoConsensus {
		t.Fatal("NoConsensus not set")
	}
	if entry.Choices["X"] {
		t.Error("no-consensus entry still has choice X marked")
	}
	if entry.Comments != "ok" {
		t.Errorf("comments = %q, want preserved %q", entry.Comments, "ok")
	}
}

func TestNoConsensusWinsOverSimultaneousChoices(t *testing.T) {
	// An edit that both marks a choice and flags no consensus: the
	// invariant wins and the choice is recorded false.
	acvrs := Seed(model.ACVRs{}, ballotWithContests(7, 3))
	acvrs = Apply(acvrs, Edit{
		BallotID:    7,
		ContestID:   3,
		Choices:     model.ACVRChoices{"X": true},
		NoConsensus: boolptr(true),
	})

	if acvrs[7][3].Choices["X"] {
		t.Error("choice marked true despite no consensus in the same edit")
	}
}

func TestInvariantHoldsForAllEditOrders(t *testing.T) {
	edits := []Edit{
		{BallotID: 7, ContestID: 3, Choices: model.ACVRChoices{"X": true}},
		{BallotID: 7, ContestID: 3, NoConsensus: boolptr(true)},
		{BallotID: 7, ContestID: 3, Comments: strptr("split board")},
	}

	perms := [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}
	for _, p := range perms {
		acvrs := Seed(model.ACVRs{}, ballotWithContests(7, 3))
		for _, i := range p {
			acvrs = Apply(acvrs, edits[i])
		}
		entry := acvrs[7][3]
		if !entry.NoConsensus {
			continue
		}
		for name, marked := range entry.Choices {
			if marked {
				t.Errorf("order %v: choice %q marked despite no consensus", p, name)
			}
		}
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	acvrs := Seed(model.ACVRs{}, ballotWithContests(7, 3))
	before := acvrs[7][3]

	_ = Apply(acvrs, Edit{BallotID: 7, ContestID: 3, Choices: model.ACVRChoices{"X": true}})

	if !reflect.DeepEqual(before, acvrs[7][3]) {
		t.Error("Apply mutated its input map")
	}
}

func TestSubmissionPackagesAllContests(t *testing.T) {
	cvr := ballotWithContests(7, 3, 1)
	acvrs := Seed(model.ACVRs{}, cvr)
	acvrs = Apply(acvrs, Edit{
		BallotID:  7,
		ContestID: 1,
		Choices:   model.ACVRChoices{"B": true, "A": true, "C": false},
	})
	acvrs = Apply(acvrs, Edit{BallotID: 7, ContestID: 3, NoConsensus: boolptr(true)})

	sub := Submission(acvrs, cvr)
	if sub.CVRID != 7 {
		t.Errorf("cvr id = %d, want 7", sub.CVRID)
	}
	if len(sub.AuditCVR) != 2 {
		t.Fatalf("packaged %d contests, want 2", len(sub.AuditCVR))
	}

	// Contest-id order, marked choices only, sorted.
	first := sub.AuditCVR[0]
	if first.Contest != 1 || !reflect.DeepEqual(first.Choices, []string{"A", "B"}) || first.Consensus != "YES" {
		t.Errorf("contest 1 wire = %+v", first)
	}
	second := sub.AuditCVR[1]
	if second.Contest != 3 || len(second.Choices) != 0 || second.Consensus != "NO" {
		t.Errorf("contest 3 wire = %+v", second)
	}
}
