package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/openrla/rlaclient/internal/gateway"
	"github.com/openrla/rlaclient/internal/model"
	"github.com/openrla/rlaclient/internal/notice"
	"github.com/openrla/rlaclient/internal/poll"
	"github.com/openrla/rlaclient/internal/review"
	"github.com/openrla/rlaclient/internal/store"
)

// reviewGW satisfies poll.CountyGateway with canned responses; every
// submit fails so the review loop has to handle the retry path.
type reviewGW struct {
	submitCalls int
}

func (g *reviewGW) CountyDashboardRefresh(context.Context) (*gateway.CountyDashboard, error) {
	return &gateway.CountyDashboard{}, nil
}

func (g *reviewGW) CountyASMState(context.Context) (*gateway.ASMResponse, error) {
	return &gateway.ASMResponse{}, nil
}

func (g *reviewGW) AuditBoardASMState(context.Context) (*gateway.ASMResponse, error) {
	return &gateway.ASMResponse{}, nil
}

func (g *reviewGW) ContestsForCounty(context.Context, int64) ([]model.Contest, error) {
	return nil, nil
}

func (g *reviewGW) FetchCVR(context.Context, int64) (*model.CVR, error) {
	return nil, errors.New("not in this test")
}

func (g *reviewGW) CVRsToAudit(context.Context, int, bool) ([]model.CVR, error) {
	return nil, nil
}

func (g *reviewGW) SubmitACVR(context.Context, gateway.ACVRSubmission) error {
	g.submitCalls++
	return errors.New("service unavailable")
}

func (g *reviewGW) BallotNotFound(context.Context, int64) error { return nil }

func (g *reviewGW) AuditBoardSignIn(context.Context, model.AuditBoard) error { return nil }

func (g *reviewGW) AuditBoardSignOut(context.Context) error { return nil }

func (g *reviewGW) SignOffRound(context.Context, []model.Elector) error { return nil }

func (g *reviewGW) UploadFile(context.Context, gateway.FileKind, string, io.Reader, string) (*model.UploadedFile, error) {
	return nil, errors.New("not in this test")
}

func (g *reviewGW) ImportFile(context.Context, gateway.FileKind, *model.UploadedFile) error {
	return nil
}

func TestAuditLoopReoffersBallotAfterFailedSubmit(t *testing.T) {
	cvr := model.CVR{
		ID:          42,
		ImprintedID: "1-2-42",
		BatchID:     "2",
		RecordID:    42,
		ContestInfo: []model.ContestInfo{{Contest: 9, Choices: []string{"Alice Ash"}}},
	}
	county := model.NewCountyState()
	county.CurrentRound = &model.Round{Number: 1}
	county.BallotsRemainingInRound = 1
	county.CVRsToAudit = []model.CVR{cvr}
	county.CurrentBallot = &model.CurrentBallot{CVR: cvr}
	county.ContestDefs = map[int64]model.Contest{
		9: {ID: 9, Name: "Sheriff", Choices: []model.Choice{{Name: "Alice Ash"}, {Name: "Bob Birch"}}},
	}
	county.ACVRs = review.Seed(nil, &cvr)

	st := store.New()
	st.Write(store.Snapshot{
		Session: model.Session{Role: model.RoleCounty, Token: "tok", Username: "board"},
		County:  county,
	})

	gw := &reviewGW{}
	notes := notice.NewWriter(io.Discard)
	sup := poll.NewCounty(gw, st, notes)

	// First offering: mark choice 1, no comment, confirm submit (which
	// fails). Second offering proves the ballot came back; quit there.
	script := "1\n\ny\nq\n"
	a := &app{
		st:    st,
		notes: notes,
		stdin: bufio.NewScanner(strings.NewReader(script)),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// The loop only wakes on store writes; nudge it the way the poller
	// would.
	nudgeDone := make(chan struct{})
	defer close(nudgeDone)
	go func() {
		tick := time.NewTicker(10 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-nudgeDone:
				return
			case <-tick.C:
				st.UpdateCounty(func(*model.CountyState) {})
			}
		}
	}()

	if err := a.auditLoop(ctx, sup); err != nil {
		t.Fatalf("auditLoop: %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("loop never offered the ballot a second time after the failed submit")
	}
	if gw.submitCalls != 1 {
		t.Errorf("submit attempts = %d, want 1", gw.submitCalls)
	}

	cur := st.Read().County
	if cur.CurrentBallot == nil || cur.CurrentBallot.Submitted {
		t.Error("failed submit should leave the ballot on hand and unsubmitted")
	}
}
