package asm

import "testing"

func TestAdvanceTakesReportedValue(t *testing.T) {
	got := Advance(CountyInitial, string(CountyAuditUnderway))
	if got != CountyAuditUnderway {
		t.Errorf("Advance = %q, want %q", got, CountyAuditUnderway)
	}
}

func TestAdvanceRetainsPreviousOnOmittedField(t *testing.T) {
	// A payload without an ASM field must not reset the stage; the server
	// merely didn't include it in this response.
	got := Advance(CountyAuditUnderway, "")
	if got != CountyAuditUnderway {
		t.Errorf("Advance with empty report = %q, want previous %q", got, CountyAuditUnderway)
	}
}

func TestAdvanceAcceptsUnknownServerValue(t *testing.T) {
	// Newer servers may report stages this client does not enumerate.
	// They are carried verbatim rather than rejected.
	got := Advance(DOSInitial, "SOME_FUTURE_STAGE")
	if got != DOSState("SOME_FUTURE_STAGE") {
		t.Errorf("Advance = %q, want verbatim future stage", got)
	}
}

func TestAuditBoardStagePredicates(t *testing.T) {
	cases := []struct {
		state      AuditBoardState
		inProgress bool
		waiting    bool
		signOff    bool
	}{
		{WaitingForRoundStart, false, true, false},
		{WaitingForRoundStartNoBoard, false, true, false},
		{RoundInProgress, true, false, false},
		{RoundInProgressNoBoard, true, false, false},
		{WaitingForRoundSignOff, false, false, true},
		{WaitingForRoundSignOffNoBoard, false, false, true},
		{AuditBoardAuditComplete, false, false, false},
		{AuditInitial, false, false, false},
	}

	for _, c := range cases {
		if got := InProgress(c.state); got != c.inProgress {
			t.Errorf("InProgress(%q) = %v, want %v", c.state, got, c.inProgress)
		}
		if got := WaitingForStart(c.state); got != c.waiting {
			t.Errorf("WaitingForStart(%q) = %v, want %v", c.state, got, c.waiting)
		}
		if got := WaitingForSignOff(c.state); got != c.signOff {
			t.Errorf("WaitingForSignOff(%q) = %v, want %v", c.state, got, c.signOff)
		}
	}
}
