package merge

import (
	"reflect"
	"testing"
	"time"

	"github.com/openrla/rlaclient/internal/gateway"
	"github.com/openrla/rlaclient/internal/model"
)

func intptr(n int) *int { return &n }

func int64ptr(n int64) *int64 { return &n }

func TestCountyOmittedFieldsRetainOldValues(t *testing.T) {
	prev := model.NewCountyState()
	prev.Name = "Adams"
	prev.ASMState = "COUNTY_AUDIT_UNDERWAY"
	prev.AuditedBallotCount = 12
	prev.BallotUnderAuditID = int64ptr(7)

	// A sparse payload: only the remaining count is present.
	next := County(prev, &gateway.CountyDashboard{
		BallotsRemainingInRound: intptr(3),
	})

	if next.Name != "Adams" || next.ASMState != "COUNTY_AUDIT_UNDERWAY" {
		t.Error("omitted scalar fields did not retain old values")
	}
	if next.AuditedBallotCount != 12 {
		t.Errorf("audited count = %d, want retained 12", next.AuditedBallotCount)
	}
	if next.BallotUnderAuditID == nil || *next.BallotUnderAuditID != 7 {
		t.Error("omitted ballot-under-audit id was not retained")
	}
	if next.BallotsRemainingInRound != 3 {
		t.Errorf("remaining = %d, want 3", next.BallotsRemainingInRound)
	}
}

func TestCountyMergeIsIdempotent(t *testing.T) {
	id := int64(44)
	payload := &gateway.CountyDashboard{
		ID:                      &id,
		Name:                    "Adams",
		ASMState:                "COUNTY_AUDIT_UNDERWAY",
		AuditedBallotCount:      intptr(5),
		BallotsRemainingInRound: intptr(2),
		CurrentRound:            &model.Round{Number: 1},
		AuditBoardCount:         intptr(2),
	}

	once := County(model.NewCountyState(), payload)
	twice := County(once, payload)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("applying the same payload twice changed state:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestCountyEmptyAuditBoardOverwrites(t *testing.T) {
	prev := model.NewCountyState()
	prev.AuditBoard = model.AuditBoard{{FirstName: "A", LastName: "B"}}

	// The server reports an explicitly empty roster: the board signed out.
	next := County(prev, &gateway.CountyDashboard{
		AuditBoard: &gateway.AuditBoardWire{Members: []model.Elector{}},
	})

	if len(next.AuditBoard) != 0 {
		t.Errorf("board = %+v, want empty after sign-out", next.AuditBoard)
	}
	if next.AuditBoard == nil {
		t.Error("signed-out board should be empty, not unknown")
	}
}

func TestCountyStaleAuditBoardCountDeleted(t *testing.T) {
	prev := model.NewCountyState()
	prev.AuditBoardCount = intptr(2)

	next := County(prev, &gateway.CountyDashboard{})

	if next.AuditBoardCount != nil {
		t.Errorf("board count = %d, want deleted when absent from payload", *next.AuditBoardCount)
	}
}

func TestCountyCurrentRoundClearedBetweenRounds(t *testing.T) {
	prev := model.NewCountyState()
	prev.CurrentRound = &model.Round{Number: 1}

	next := County(prev, &gateway.CountyDashboard{})

	if next.CurrentRound != nil {
		t.Error("current round survived a payload that omitted it")
	}
}

func TestCountyDisjointPayloadsCommute(t *testing.T) {
	a := &gateway.CountyDashboard{Name: "Adams", AuditedBallotCount: intptr(5)}
	b := &gateway.CountyDashboard{BallotsRemainingInRound: intptr(9)}

	ab := County(County(model.NewCountyState(), a), b)
	ba := County(County(model.NewCountyState(), b), a)

	if !reflect.DeepEqual(ab, ba) {
		t.Errorf("disjoint payloads did not commute:\nab: %+v\nba: %+v", ab, ba)
	}
}

func TestCountyMergeDoesNotMutatePrev(t *testing.T) {
	prev := model.NewCountyState()
	prev.Name = "Adams"
	snapshot := *prev

	_ = County(prev, &gateway.CountyDashboard{Name: "Boulder"})

	if !reflect.DeepEqual(*prev, snapshot) {
		t.Error("merge mutated its input state")
	}
}

func TestCountyDisagreementCountsCollapse(t *testing.T) {
	next := County(model.NewCountyState(), &gateway.CountyDashboard{
		DisagreementCount: map[string]int{"COUNTY_WIDE_CONTEST": 2, "STATE_WIDE_CONTEST": 1},
	})
	if next.DisagreementCount != 3 {
		t.Errorf("disagreements = %d, want 3", next.DisagreementCount)
	}
}

func TestCountyContestsUnderAuditResolvedAgainstDefs(t *testing.T) {
	prev := model.NewCountyState()
	prev.ContestDefs = map[int64]model.Contest{
		3: {ID: 3, Name: "Governor"},
		5: {ID: 5, Name: "Sheriff"},
	}

	next := County(prev, &gateway.CountyDashboard{
		ContestsUnderAudit: map[int64]string{5: "COUNTY_WIDE_CONTEST", 3: "STATE_WIDE_CONTEST"},
	})

	want := []model.Contest{{ID: 3, Name: "Governor"}, {ID: 5, Name: "Sheriff"}}
	if !reflect.DeepEqual(next.ContestsUnderAudit, want) {
		t.Errorf("contests under audit = %+v, want %+v", next.ContestsUnderAudit, want)
	}
}

func TestCountyEmptyContestsUnderAuditClears(t *testing.T) {
	prev := model.NewCountyState()
	prev.ContestDefs = map[int64]model.Contest{4: {ID: 4, Name: "Coroner"}}
	prev.ContestsUnderAudit = []model.Contest{{ID: 4, Name: "Coroner"}}

	// Present but empty: the server says nothing is under audit anymore.
	next := County(prev, &gateway.CountyDashboard{
		ContestsUnderAudit: map[int64]string{},
	})
	if len(next.ContestsUnderAudit) != 0 {
		t.Errorf("contests under audit = %+v, want cleared by empty payload", next.ContestsUnderAudit)
	}

	// Omitted entirely: the previous list is retained.
	next = County(prev, &gateway.CountyDashboard{})
	if len(next.ContestsUnderAudit) != 1 {
		t.Errorf("contests under audit = %+v, want retained when payload omits the key", next.ContestsUnderAudit)
	}
}

func TestCountyASMRetainedWhenPayloadSilent(t *testing.T) {
	prev := model.NewCountyState()
	prev.ASMState = "COUNTY_AUDIT_UNDERWAY"

	next := CountyASM(prev, &gateway.ASMResponse{CurrentState: ""})
	if next.ASMState != "COUNTY_AUDIT_UNDERWAY" {
		t.Errorf("asm = %q, want retained", next.ASMState)
	}

	next = CountyASM(prev, &gateway.ASMResponse{CurrentState: "COUNTY_AUDIT_COMPLETE"})
	if next.ASMState != "COUNTY_AUDIT_COMPLETE" {
		t.Errorf("asm = %q, want advanced", next.ASMState)
	}
}

func TestCVRsToAuditReplacedWholesale(t *testing.T) {
	prev := model.NewCountyState()
	prev.CVRsToAudit = []model.CVR{{ID: 1}, {ID: 2}}

	next := CVRsToAudit(prev, []model.CVR{})
	if len(next.CVRsToAudit) != 0 {
		t.Error("empty assignment did not replace the old one")
	}
}

func TestDOSCountyStatusOverlaysById(t *testing.T) {
	prev := model.NewDOSState()
	prev.CountyStatus = map[int64]model.CountyStatus{
		1: {ID: 1, ASMState: "COUNTY_INITIAL_STATE"},
		2: {ID: 2, ASMState: "COUNTY_INITIAL_STATE"},
	}

	next := DOS(prev, &gateway.DOSDashboard{
		CountyStatus: map[int64]model.CountyStatus{
			2: {ID: 2, ASMState: "COUNTY_AUDIT_UNDERWAY"},
		},
	})

	if next.CountyStatus[1].ASMState != "COUNTY_INITIAL_STATE" {
		t.Error("county row absent from payload was dropped")
	}
	if next.CountyStatus[2].ASMState != "COUNTY_AUDIT_UNDERWAY" {
		t.Error("county row present in payload was not updated")
	}
}

func TestDOSAuditInfoMerged(t *testing.T) {
	date := time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC)
	limit := 0.05
	next := DOS(model.NewDOSState(), &gateway.DOSDashboard{
		AuditInfo: &gateway.AuditInfoWire{
			ElectionDate: &date,
			ElectionType: "general",
			RiskLimit:    &limit,
			Seed:         "12345678901234567890",
		},
	})

	if next.Election == nil || !next.Election.Date.Equal(date) {
		t.Error("election date not merged")
	}
	if next.RiskLimit == nil || *next.RiskLimit != 0.05 {
		t.Error("risk limit not merged")
	}
	if next.Seed != "12345678901234567890" {
		t.Error("seed not merged")
	}
}
