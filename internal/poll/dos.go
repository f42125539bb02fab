package poll

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/openrla/rlaclient/internal/gateway"
	"github.com/openrla/rlaclient/internal/journal"
	"github.com/openrla/rlaclient/internal/merge"
	"github.com/openrla/rlaclient/internal/metrics"
	"github.com/openrla/rlaclient/internal/model"
	"github.com/openrla/rlaclient/internal/notice"
	"github.com/openrla/rlaclient/internal/store"
)

// DOSGateway is the slice of the gateway a state-admin session uses.
type DOSGateway interface {
	DOSDashboardRefresh(ctx context.Context) (*gateway.DOSDashboard, error)
	DOSASMState(ctx context.Context) (*gateway.ASMResponse, error)
	AllContests(ctx context.Context) ([]model.Contest, error)

	SelectContests(ctx context.Context, selections []model.ContestForAudit) error
	SetAuditInfo(ctx context.Context, info gateway.AuditInfo) error
	SetRiskLimit(ctx context.Context, limit float64) error
	UploadRandomSeed(ctx context.Context, seed string) error
	StartRound(ctx context.Context) error
	SetHandCount(ctx context.Context, contestID int64) error
}

// DOS supervises the state-admin refresh loop and carries out the
// define-audit sequence against the service.
type DOS struct {
	gw    DOSGateway
	st    *store.Store
	notes *notice.Notifier
	jnl   *journal.Journal

	poller *Poller

	onSessionEnd func()
}

// DOSOption configures a DOS supervisor.
type DOSOption func(*DOS)

// WithDOSInterval overrides the refresh cadence.
func WithDOSInterval(d time.Duration) DOSOption {
	return func(s *DOS) { s.poller = NewPoller(d, s.tick) }
}

// WithDOSJournal records admin actions to the local journal.
func WithDOSJournal(j *journal.Journal) DOSOption {
	return func(s *DOS) { s.jnl = j }
}

// WithDOSSessionEnd sets the callback invoked when the server reports
// the session is no longer authorized.
func WithDOSSessionEnd(fn func()) DOSOption {
	return func(s *DOS) { s.onSessionEnd = fn }
}

// NewDOS wires a supervisor over the shared store.
func NewDOS(gw DOSGateway, st *store.Store, notes *notice.Notifier, opts ...DOSOption) *DOS {
	s := &DOS{gw: gw, st: st, notes: notes}
	s.poller = NewPoller(DefaultInterval, s.tick)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins polling. The first battery runs immediately.
func (s *DOS) Start(ctx context.Context) { s.poller.Start(ctx) }

// Stop halts polling and waits for the in-flight battery.
func (s *DOS) Stop() { s.poller.Stop() }

// Kick requests an immediate refresh.
func (s *DOS) Kick() { s.poller.Kick() }

// SetInterval changes the refresh cadence at runtime.
func (s *DOS) SetInterval(d time.Duration) { s.poller.SetInterval(d) }

// RefreshOnce runs a single battery outside the polling loop.
func (s *DOS) RefreshOnce(ctx context.Context) { s.tick(ctx) }

// tick is one polling battery: dashboard, state machine, contests.
func (s *DOS) tick(ctx context.Context) {
	defer metrics.PollTicks.WithLabelValues("dos").Inc()

	if d, err := s.gw.DOSDashboardRefresh(ctx); err != nil {
		if s.sessionEnded(err) {
			return
		}
	} else {
		s.apply(func(prev *model.DOSState) *model.DOSState {
			return merge.DOS(prev, d)
		})
	}

	if ctx.Err() != nil {
		return
	}
	if r, err := s.gw.DOSASMState(ctx); err != nil {
		if s.sessionEnded(err) {
			return
		}
	} else {
		s.apply(func(prev *model.DOSState) *model.DOSState {
			return merge.DOSASM(prev, r)
		})
	}

	if ctx.Err() != nil {
		return
	}
	if defs, err := s.gw.AllContests(ctx); err != nil {
		s.sessionEnded(err)
	} else {
		s.apply(func(prev *model.DOSState) *model.DOSState {
			return merge.DOSContests(prev, defs)
		})
	}
}

func (s *DOS) apply(fn func(*model.DOSState) *model.DOSState) {
	s.st.Update(func(snap store.Snapshot) store.Snapshot {
		if snap.Session.Role != model.RoleDOS {
			return snap
		}
		snap.DOS = fn(snap.DOS)
		return snap
	})
}

func (s *DOS) sessionEnded(err error) bool {
	if !gateway.NotAuthorized(err) {
		return false
	}
	s.st.Reset()
	s.poller.Cancel()
	s.notes.Danger("session expired; log in again to continue")
	if s.onSessionEnd != nil {
		s.onSessionEnd()
	}
	return true
}

func (s *DOS) record(ctx context.Context, event, detail string) {
	if s.jnl == nil {
		return
	}
	actor := s.st.Read().Session.Username
	if err := s.jnl.Record(ctx, actor, event, detail); err != nil {
		fmt.Fprintf(os.Stderr, "journal: %v\n", err)
	}
}

// act wraps a mutating admin call with the shared failure handling and
// the post-success refresh kick.
func (s *DOS) act(ctx context.Context, event, detail string, call func(context.Context) error) error {
	if err := call(ctx); err != nil {
		if !s.sessionEnded(err) {
			s.notes.Danger("%s failed: %v", event, err)
		}
		return err
	}
	s.record(ctx, event, detail)
	s.notes.OK("%s", event)
	s.Kick()
	return nil
}

// SelectContests submits the contests targeted for audit.
func (s *DOS) SelectContests(ctx context.Context, selections []model.ContestForAudit) error {
	return s.act(ctx, "contests selected", fmt.Sprintf("%d contests", len(selections)),
		func(ctx context.Context) error { return s.gw.SelectContests(ctx, selections) })
}

// SetAuditInfo updates the election metadata.
func (s *DOS) SetAuditInfo(ctx context.Context, info gateway.AuditInfo) error {
	return s.act(ctx, "audit info updated", "",
		func(ctx context.Context) error { return s.gw.SetAuditInfo(ctx, info) })
}

// SetRiskLimit sets the comparison audit risk limit.
func (s *DOS) SetRiskLimit(ctx context.Context, limit float64) error {
	return s.act(ctx, "risk limit set", fmt.Sprintf("%g", limit),
		func(ctx context.Context) error { return s.gw.SetRiskLimit(ctx, limit) })
}

// UploadSeed publishes the random seed from the public meeting.
func (s *DOS) UploadSeed(ctx context.Context, seed string) error {
	return s.act(ctx, "random seed published", "",
		func(ctx context.Context) error { return s.gw.UploadRandomSeed(ctx, seed) })
}

// StartRound launches the next audit round for all targeted counties.
func (s *DOS) StartRound(ctx context.Context) error {
	return s.act(ctx, "audit round started", "",
		func(ctx context.Context) error { return s.gw.StartRound(ctx) })
}

// SetHandCount designates a contest for full hand count.
func (s *DOS) SetHandCount(ctx context.Context, contestID int64) error {
	return s.act(ctx, "contest designated for hand count", fmt.Sprintf("contest %d", contestID),
		func(ctx context.Context) error { return s.gw.SetHandCount(ctx, contestID) })
}
