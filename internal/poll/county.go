package poll

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/openrla/rlaclient/internal/ballots"
	"github.com/openrla/rlaclient/internal/gateway"
	"github.com/openrla/rlaclient/internal/journal"
	"github.com/openrla/rlaclient/internal/merge"
	"github.com/openrla/rlaclient/internal/metrics"
	"github.com/openrla/rlaclient/internal/model"
	"github.com/openrla/rlaclient/internal/notice"
	"github.com/openrla/rlaclient/internal/review"
	"github.com/openrla/rlaclient/internal/store"
)

// CountyGateway is the slice of the gateway a county session uses.
// *gateway.Client satisfies it; tests substitute a fake.
type CountyGateway interface {
	CountyDashboardRefresh(ctx context.Context) (*gateway.CountyDashboard, error)
	CountyASMState(ctx context.Context) (*gateway.ASMResponse, error)
	AuditBoardASMState(ctx context.Context) (*gateway.ASMResponse, error)
	ContestsForCounty(ctx context.Context, countyID int64) ([]model.Contest, error)
	FetchCVR(ctx context.Context, id int64) (*model.CVR, error)
	CVRsToAudit(ctx context.Context, round int, includeAudited bool) ([]model.CVR, error)

	SubmitACVR(ctx context.Context, sub gateway.ACVRSubmission) error
	BallotNotFound(ctx context.Context, cvrID int64) error
	AuditBoardSignIn(ctx context.Context, board model.AuditBoard) error
	AuditBoardSignOut(ctx context.Context) error
	SignOffRound(ctx context.Context, signatories []model.Elector) error
	UploadFile(ctx context.Context, kind gateway.FileKind, filename string, contents io.Reader, hash string) (*model.UploadedFile, error)
	ImportFile(ctx context.Context, kind gateway.FileKind, file *model.UploadedFile) error
}

// County supervises the county-side refresh loop and carries out the
// audit board's actions against the service.
type County struct {
	gw    CountyGateway
	st    *store.Store
	notes *notice.Notifier
	jnl   *journal.Journal // optional

	poller *Poller

	// onSessionEnd runs once when a call reports the session is dead.
	onSessionEnd func()
}

// CountyOption configures a County supervisor.
type CountyOption func(*County)

// WithCountyInterval overrides the refresh cadence.
func WithCountyInterval(d time.Duration) CountyOption {
	return func(c *County) { c.poller = NewPoller(d, c.tick) }
}

// WithCountyJournal records the board's actions to the local journal.
func WithCountyJournal(j *journal.Journal) CountyOption {
	return func(c *County) { c.jnl = j }
}

// WithCountySessionEnd sets the callback invoked when the server reports
// the session is no longer authorized.
func WithCountySessionEnd(fn func()) CountyOption {
	return func(c *County) { c.onSessionEnd = fn }
}

// NewCounty wires a supervisor over the shared store.
func NewCounty(gw CountyGateway, st *store.Store, notes *notice.Notifier, opts ...CountyOption) *County {
	c := &County{gw: gw, st: st, notes: notes}
	c.poller = NewPoller(DefaultInterval, c.tick)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins polling. The first battery runs immediately.
func (c *County) Start(ctx context.Context) { c.poller.Start(ctx) }

// Stop halts polling and waits for the in-flight battery.
func (c *County) Stop() { c.poller.Stop() }

// Kick requests an immediate refresh.
func (c *County) Kick() { c.poller.Kick() }

// SetInterval changes the refresh cadence at runtime.
func (c *County) SetInterval(d time.Duration) { c.poller.SetInterval(d) }

// RefreshOnce runs a single battery outside the polling loop.
func (c *County) RefreshOnce(ctx context.Context) { c.tick(ctx) }

// tick is one polling battery: dashboard, both state machines, contest
// definitions once the county id is known, then the ballot sequence.
func (c *County) tick(ctx context.Context) {
	defer metrics.PollTicks.WithLabelValues("county").Inc()

	if d, err := c.gw.CountyDashboardRefresh(ctx); err != nil {
		if c.sessionEnded(err) {
			return
		}
	} else {
		c.applyDashboard(d)
	}

	if ctx.Err() != nil {
		return
	}
	if r, err := c.gw.AuditBoardASMState(ctx); err != nil {
		if c.sessionEnded(err) {
			return
		}
	} else {
		c.apply(func(prev *model.CountyState) *model.CountyState {
			return merge.AuditBoardASM(prev, r)
		})
	}

	if ctx.Err() != nil {
		return
	}
	if r, err := c.gw.CountyASMState(ctx); err != nil {
		if c.sessionEnded(err) {
			return
		}
	} else {
		c.apply(func(prev *model.CountyState) *model.CountyState {
			return merge.CountyASM(prev, r)
		})
	}

	if ctx.Err() != nil {
		return
	}
	if cur := c.st.Read().County; cur != nil && cur.ID != 0 {
		if defs, err := c.gw.ContestsForCounty(ctx, cur.ID); err != nil {
			if c.sessionEnded(err) {
				return
			}
		} else {
			c.apply(func(prev *model.CountyState) *model.CountyState {
				return merge.CountyContests(prev, defs)
			})
		}
	}

	if ctx.Err() != nil {
		return
	}
	c.sequence(ctx)
}

// sequence keeps the round assignment fresh and fetches the next ballot
// when the one on hand is no longer first in line.
func (c *County) sequence(ctx context.Context) {
	cur := c.st.Read().County
	if cur == nil || cur.CurrentRound == nil {
		return
	}

	list, err := c.gw.CVRsToAudit(ctx, cur.CurrentRound.Number, true)
	if err != nil {
		c.sessionEnded(err)
		return
	}
	c.apply(func(prev *model.CountyState) *model.CountyState {
		return merge.CVRsToAudit(prev, list)
	})

	cur = c.st.Read().County
	if cur == nil {
		return
	}
	id, fetch := ballots.ShouldFetch(cur.CVRsToAudit, cur.CurrentBallot)
	if !fetch || ctx.Err() != nil {
		return
	}

	cvr, err := c.gw.FetchCVR(ctx, id)
	if err != nil {
		c.sessionEnded(err)
		return
	}
	c.st.UpdateCounty(func(s *model.CountyState) {
		s.CurrentBallot = &model.CurrentBallot{CVR: *cvr}
		s.ACVRs = review.Seed(s.ACVRs, cvr)
	})
}

// applyDashboard merges a dashboard payload and surfaces CVR import
// state transitions, which complete asynchronously on the server.
func (c *County) applyDashboard(d *gateway.CountyDashboard) {
	prevImport := ""
	c.st.Update(func(snap store.Snapshot) store.Snapshot {
		if snap.Session.Role != model.RoleCounty {
			return snap
		}
		if snap.County != nil {
			prevImport = snap.County.CVRImportStatus.State
		}
		snap.County = merge.County(snap.County, d)
		return snap
	})

	cur := c.st.Read().County
	if cur == nil || cur.CVRImportStatus.State == prevImport {
		return
	}
	switch cur.CVRImportStatus.State {
	case model.ImportSuccessful:
		c.notes.OK("CVR export import finished")
	case model.ImportFailed:
		c.notes.Danger("CVR export import failed: %s", cur.CVRImportStatus.Error)
		if strings.Contains(cur.CVRImportStatus.Error, "CountingGroup") {
			c.notes.Warn("the CVR export is missing the CountingGroup column; re-export from Dominion with counting groups enabled")
		} else {
			c.notes.Warn("the file uploaded but could not be parsed; verify it is the unmodified export")
		}
	}
}

// apply routes a merge through the store if a county session is active,
// and installs the initial snapshot on the first merge after login. The
// merge runs inside a single locked update so a board edit landing
// between read and write is never reverted.
func (c *County) apply(fn func(*model.CountyState) *model.CountyState) {
	c.st.Update(func(snap store.Snapshot) store.Snapshot {
		if snap.Session.Role != model.RoleCounty {
			return snap
		}
		snap.County = fn(snap.County)
		return snap
	})
}

// sessionEnded handles the NOT_AUTHORIZED signal: wipe local state, stop
// polling, tell the operator. Other failures leave state alone; the next
// tick retries.
func (c *County) sessionEnded(err error) bool {
	if !gateway.NotAuthorized(err) {
		return false
	}
	c.st.Reset()
	c.poller.Cancel()
	c.notes.Danger("session expired; log in again to continue")
	if c.onSessionEnd != nil {
		c.onSessionEnd()
	}
	return true
}

func (c *County) record(ctx context.Context, event, detail string) {
	if c.jnl == nil {
		return
	}
	actor := c.st.Read().Session.Username
	if err := c.jnl.Record(ctx, actor, event, detail); err != nil {
		fmt.Fprintf(os.Stderr, "journal: %v\n", err)
	}
}

// SubmitInterpretation uploads the reconciled interpretation for the
// ballot on hand. The local Submitted flag is set before the call so a
// concurrent refresh cannot trigger a duplicate; a failed call restores
// it and leaves the interpretation untouched.
func (c *County) SubmitInterpretation(ctx context.Context) error {
	cur := c.st.Read().County
	if cur == nil || cur.CurrentBallot == nil {
		return errors.New("no ballot under review")
	}
	if cur.CurrentBallot.Submitted {
		return errors.New("ballot already submitted")
	}
	ballot := cur.CurrentBallot.CVR
	sub := review.Submission(cur.ACVRs, &ballot)

	c.st.UpdateCounty(func(s *model.CountyState) {
		b := *s.CurrentBallot
		b.Submitted = true
		s.CurrentBallot = &b
	})

	if err := c.gw.SubmitACVR(ctx, sub); err != nil {
		c.st.UpdateCounty(func(s *model.CountyState) {
			if s.CurrentBallot != nil && s.CurrentBallot.ID == ballot.ID {
				b := *s.CurrentBallot
				b.Submitted = false
				s.CurrentBallot = &b
			}
		})
		if !c.sessionEnded(err) {
			c.notes.Danger("ballot %s could not be submitted: %v", ballot.ImprintedID, err)
			c.Kick()
		}
		return err
	}

	metrics.BallotsAudited.Inc()
	c.record(ctx, "acvr_submitted", fmt.Sprintf("cvr %d (%s)", ballot.ID, ballot.ImprintedID))
	c.notes.OK("ballot %s submitted", ballot.ImprintedID)
	c.Kick()
	return nil
}

// UpdateInterpretation applies one board edit to local state. No gateway
// call is made until the board submits.
func (c *County) UpdateInterpretation(e review.Edit) {
	c.st.UpdateCounty(func(s *model.CountyState) {
		s.ACVRs = review.Apply(s.ACVRs, e)
	})
}

// ReportBallotNotFound tells the service the board could not locate the
// ballot on hand; the sequence advances on the next refresh.
func (c *County) ReportBallotNotFound(ctx context.Context, cvrID int64) error {
	if err := c.gw.BallotNotFound(ctx, cvrID); err != nil {
		if !c.sessionEnded(err) {
			c.notes.Danger("could not report ballot as not found: %v", err)
			c.Kick()
		}
		return err
	}
	c.st.UpdateCounty(func(s *model.CountyState) {
		if s.CurrentBallot != nil && s.CurrentBallot.ID == cvrID {
			s.CurrentBallot = nil
		}
	})
	c.record(ctx, "ballot_not_found", fmt.Sprintf("cvr %d", cvrID))
	c.notes.OK("ballot recorded as not found")
	c.Kick()
	return nil
}

// SignInBoard submits the audit board roster.
func (c *County) SignInBoard(ctx context.Context, board model.AuditBoard) error {
	if err := c.gw.AuditBoardSignIn(ctx, board); err != nil {
		if !c.sessionEnded(err) {
			c.notes.Danger("audit board sign-in failed: %v", err)
		}
		return err
	}
	c.record(ctx, "board_sign_in", fmt.Sprintf("%d members", len(board)))
	c.notes.OK("audit board signed in")
	c.Kick()
	return nil
}

// SignOutBoard signs the current audit board out.
func (c *County) SignOutBoard(ctx context.Context) error {
	if err := c.gw.AuditBoardSignOut(ctx); err != nil {
		if !c.sessionEnded(err) {
			c.notes.Danger("audit board sign-out failed: %v", err)
		}
		return err
	}
	c.record(ctx, "board_sign_out", "")
	c.notes.OK("audit board signed out")
	c.Kick()
	return nil
}

// SignOffRound closes the completed round with the signatories' names.
func (c *County) SignOffRound(ctx context.Context, signatories []model.Elector) error {
	cur := c.st.Read().County
	if cur == nil || !ballots.RoundComplete(cur) {
		return errors.New("current round is not complete")
	}
	if err := c.gw.SignOffRound(ctx, signatories); err != nil {
		if !c.sessionEnded(err) {
			c.notes.Danger("round sign-off failed: %v", err)
		}
		return err
	}
	c.record(ctx, "round_sign_off", fmt.Sprintf("round %d", cur.CurrentRound.Number))
	c.notes.OK("round %d signed off", cur.CurrentRound.Number)
	c.Kick()
	return nil
}

// UploadBallotManifest runs the two-phase upload for the ballot manifest.
func (c *County) UploadBallotManifest(ctx context.Context, path string) error {
	return c.uploadFile(ctx, gateway.FileBallotManifest, path)
}

// UploadCVRExport runs the two-phase upload for the CVR export.
func (c *County) UploadCVRExport(ctx context.Context, path string) error {
	return c.uploadFile(ctx, gateway.FileCVRExport, path)
}

func (c *County) uploadFile(ctx context.Context, kind gateway.FileKind, path string) error {
	setUploading := func(on bool) {
		c.st.UpdateCounty(func(s *model.CountyState) {
			if kind == gateway.FileBallotManifest {
				s.UploadingBallotManifest = on
			} else {
				s.UploadingCVRExport = on
			}
		})
	}

	hash, err := gateway.HashFile(path)
	if err != nil {
		return fmt.Errorf("hash %s: %w", path, err)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}

	setUploading(true)
	defer setUploading(false)

	uploaded, err := c.gw.UploadFile(ctx, kind, info.Name(), f, hash)
	if err != nil {
		c.uploadFailed(kind, err)
		return err
	}
	if err := c.gw.ImportFile(ctx, kind, uploaded); err != nil {
		c.uploadFailed(kind, err)
		return err
	}

	c.record(ctx, "file_imported", fmt.Sprintf("%s %s (%s)",
		kind, info.Name(), humanize.Bytes(uint64(info.Size()))))
	c.notes.OK("%s imported (%s)", fileLabel(kind), humanize.Bytes(uint64(info.Size())))
	c.Kick()
	return nil
}

// uploadFailed turns a two-phase failure into the remediation the county
// needs: re-enter the hash, re-export with one record per line, or retry.
func (c *County) uploadFailed(kind gateway.FileKind, err error) {
	if c.sessionEnded(err) {
		return
	}
	c.notes.Danger("%s not accepted: %v", fileLabel(kind), err)

	var call *gateway.CallError
	body := ""
	if errors.As(err, &call) {
		body = string(call.Body)
	}
	switch {
	case strings.Contains(body, "HASH_MISMATCH"):
		c.notes.Warn("the file's contents do not match the hash you entered; re-check the digest from your vendor")
	case errors.Is(err, gateway.ErrImportFailed) && kind == gateway.FileCVRExport &&
		strings.Contains(body, "CountingGroup"):
		c.notes.Warn("the CVR export is missing the CountingGroup column; re-export from Dominion with counting groups enabled")
	case errors.Is(err, gateway.ErrImportFailed):
		c.notes.Warn("the file uploaded but could not be parsed; verify it is the unmodified export")
	default:
		c.notes.Warn("the upload did not complete; check your connection and try again")
	}
	c.Kick()
}

func fileLabel(kind gateway.FileKind) string {
	if kind == gateway.FileBallotManifest {
		return "ballot manifest"
	}
	return "CVR export"
}
