// rlactl is the command-line client for a risk-limiting audit service.
// County staff use it to deliver election files and walk the audit board
// through ballot review; the state admin uses it to define and launch
// the audit. All workflow state lives on the server; rlactl keeps only
// the session token between runs.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/openrla/rlaclient/internal/ballots"
	"github.com/openrla/rlaclient/internal/config"
	"github.com/openrla/rlaclient/internal/gateway"
	"github.com/openrla/rlaclient/internal/journal"
	"github.com/openrla/rlaclient/internal/metrics"
	"github.com/openrla/rlaclient/internal/model"
	"github.com/openrla/rlaclient/internal/notice"
	"github.com/openrla/rlaclient/internal/poll"
	"github.com/openrla/rlaclient/internal/review"
	"github.com/openrla/rlaclient/internal/session"
	"github.com/openrla/rlaclient/internal/store"
)

// version is set by ldflags at build time.
var version = "dev"

// app carries the wired-up client pieces shared by every subcommand.
type app struct {
	cfg    config.Config
	client *gateway.Client
	st     *store.Store
	notes  *notice.Notifier
	sess   *session.Store
	jnl    *journal.Journal // nil when disabled
	stdin  *bufio.Scanner
}

func newApp(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	sessStore, err := session.NewStore(cfg.StateDir)
	if err != nil {
		return nil, err
	}
	saved, err := sessStore.Load()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	client, err := gateway.New(cfg.BaseURL, gateway.WithToken(saved.Token))
	if err != nil {
		return nil, err
	}

	st := store.New()
	if saved.Active() {
		snap := store.Snapshot{Session: saved}
		switch saved.Role {
		case model.RoleCounty:
			snap.County = model.NewCountyState()
		case model.RoleDOS:
			snap.DOS = model.NewDOSState()
		}
		st.Write(snap)
	}

	a := &app{
		cfg:    cfg,
		client: client,
		st:     st,
		notes:  notice.New(),
		sess:   sessStore,
		stdin:  bufio.NewScanner(os.Stdin),
	}
	if cfg.Journal {
		jnl, err := journal.Open(cfg.StateDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "journal disabled: %v\n", err)
		} else {
			a.jnl = jnl
		}
	}
	return a, nil
}

func (a *app) close() {
	if a.jnl != nil {
		a.jnl.Close()
	}
}

// requireRole refuses to run a subcommand without a matching session.
func (a *app) requireRole(role model.Role) error {
	sess := a.st.Read().Session
	if !sess.Active() {
		return errors.New("not logged in; run rlactl login first")
	}
	if sess.Role != role {
		return fmt.Errorf("this command needs a %s session, current role is %s", role, sess.Role)
	}
	return nil
}

func (a *app) county() *poll.County {
	opts := []poll.CountyOption{poll.WithCountyInterval(a.cfg.PollInterval)}
	if a.jnl != nil {
		opts = append(opts, poll.WithCountyJournal(a.jnl))
	}
	opts = append(opts, poll.WithCountySessionEnd(func() { a.sess.Clear() }))
	return poll.NewCounty(a.client, a.st, a.notes, opts...)
}

func (a *app) dos() *poll.DOS {
	opts := []poll.DOSOption{poll.WithDOSInterval(a.cfg.PollInterval)}
	if a.jnl != nil {
		opts = append(opts, poll.WithDOSJournal(a.jnl))
	}
	opts = append(opts, poll.WithDOSSessionEnd(func() { a.sess.Clear() }))
	return poll.NewDOS(a.client, a.st, a.notes, opts...)
}

// serveMetrics exposes Prometheus metrics when configured.
func (a *app) serveMetrics(ctx context.Context) {
	if a.cfg.MetricsAddr == "" {
		return
	}
	srv := &http.Server{Addr: a.cfg.MetricsAddr, Handler: metrics.Handler()}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "metrics listener: %v\n", err)
		}
	}()
}

// watchConfig applies reload-safe settings while a loop runs.
func (a *app) watchConfig(ctx context.Context, cfgPath string, apply func(config.Config)) {
	w, err := config.NewWatcher(cfgPath, apply)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config watch disabled: %v\n", err)
		return
	}
	if w == nil {
		return
	}
	go w.Run(ctx)
}

func (a *app) prompt(label string) string {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	if !a.stdin.Scan() {
		return ""
	}
	return strings.TrimSpace(a.stdin.Text())
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "rlactl.yaml"
	}
	return filepath.Join(home, ".rlaclient", "rlactl.yaml")
}

func main() {
	var cfgPath string

	rootCmd := &cobra.Command{
		Use:           "rlactl",
		Short:         "Client for a risk-limiting audit service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath(), "path to config file")

	rootCmd.AddCommand(
		loginCmd(&cfgPath),
		logoutCmd(&cfgPath),
		statusCmd(&cfgPath),
		countyCmd(&cfgPath),
		dosCmd(&cfgPath),
		journalCmd(&cfgPath),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "rlactl: %v\n", err)
		os.Exit(1)
	}
}

func loginCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username>",
		Short: "Authenticate with the audit service (two stages)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()
			username := args[0]

			password := a.prompt("password")
			first, err := a.client.AuthenticateFirstFactor(ctx, username, password)
			if err != nil {
				return fmt.Errorf("first factor rejected: %w", err)
			}
			if first.Stage != gateway.StageTraditional && first.Stage != gateway.StageSecondFactor {
				return fmt.Errorf("unexpected authentication stage %q", first.Stage)
			}

			answer := a.prompt("grid challenge answer")
			second, err := a.client.AuthenticateSecondFactor(ctx, username, answer)
			if err != nil {
				return fmt.Errorf("second factor rejected: %w", err)
			}
			role := gateway.RoleFromWire(second.Role)
			if role == model.RoleNone {
				return fmt.Errorf("service reported unknown role %q", second.Role)
			}

			sess := model.Session{
				Role:      role,
				Token:     a.client.Token(),
				Username:  username,
				CreatedAt: time.Now().UTC(),
			}
			if err := a.sess.Save(sess); err != nil {
				return fmt.Errorf("persist session: %w", err)
			}
			if a.jnl != nil {
				a.jnl.Record(ctx, username, "login", string(role))
			}
			a.notes.OK("logged in as %s (%s)", username, role)
			return nil
		},
	}
}

func logoutCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session on the server and locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.client.Unauthenticate(cmd.Context()); err != nil {
				fmt.Fprintf(os.Stderr, "server logout failed (clearing local session anyway): %v\n", err)
			}
			a.st.Reset()
			if err := a.sess.Clear(); err != nil {
				return err
			}
			a.notes.OK("logged out")
			return nil
		},
	}
}

func statusCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Fetch and print the current dashboard once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()

			switch a.st.Read().Session.Role {
			case model.RoleCounty:
				a.county().RefreshOnce(ctx)
				c := a.st.Read().County
				if c == nil {
					return errors.New("session rejected by the server; log in again")
				}
				printCountyStatus(c)
			case model.RoleDOS:
				a.dos().RefreshOnce(ctx)
				d := a.st.Read().DOS
				if d == nil {
					return errors.New("session rejected by the server; log in again")
				}
				printDOSStatus(d)
			default:
				return errors.New("not logged in; run rlactl login first")
			}
			return nil
		},
	}
}

func printCountyStatus(c *model.CountyState) {
	fmt.Printf("county: %s (id %d)\n", c.Name, c.ID)
	fmt.Printf("state:  %s / board %s\n", c.ASMState, c.AuditBoardASMState)
	if c.BallotManifest != nil {
		fmt.Printf("ballot manifest: %s (%s)\n", c.BallotManifest.Name, c.BallotManifest.HashStatus)
	}
	if c.CVRExport != nil {
		fmt.Printf("cvr export: %s (%s, import %s)\n",
			c.CVRExport.Name, c.CVRExport.HashStatus, c.CVRImportStatus.State)
	}
	if c.CurrentRound != nil {
		fmt.Printf("round %d: %d audited, %d remaining\n",
			c.CurrentRound.Number, c.AuditedBallotCount, c.BallotsRemainingInRound)
		if ballots.AwaitingSignOff(c) {
			fmt.Println("all assigned ballots reviewed; waiting for round sign-off")
		}
	}
	fmt.Printf("disagreements: %d  discrepancies: %d\n", c.DisagreementCount, c.DiscrepancyCount)
}

func printDOSStatus(d *model.DOSState) {
	fmt.Printf("state:  %s (stage %s)\n", d.ASMState, d.AuditStage)
	if d.RiskLimit != nil {
		fmt.Printf("risk limit: %g\n", *d.RiskLimit)
	}
	if d.Seed != "" {
		fmt.Printf("seed: %s\n", d.Seed)
	}
	fmt.Printf("contests under audit: %d\n", len(d.AuditedContests))
	for id, cs := range d.CountyStatus {
		fmt.Printf("  county %d: %s\n", id, cs.ASMState)
	}
}

func countyCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "county",
		Short: "County workflow: file delivery, board sign-in, ballot review",
	}
	cmd.AddCommand(
		countyUploadCmd(cfgPath, "upload-manifest", "Upload and import the ballot manifest", gateway.FileBallotManifest),
		countyUploadCmd(cfgPath, "upload-cvr", "Upload and import the CVR export", gateway.FileCVRExport),
		countySignInCmd(cfgPath),
		countySignOutCmd(cfgPath),
		countyAuditCmd(cfgPath),
		countySignOffCmd(cfgPath),
	)
	return cmd
}

func countyUploadCmd(cfgPath *string, use, short string, kind gateway.FileKind) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <file>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.requireRole(model.RoleCounty); err != nil {
				return err
			}
			sup := a.county()
			if kind == gateway.FileBallotManifest {
				return sup.UploadBallotManifest(cmd.Context(), args[0])
			}
			return sup.UploadCVRExport(cmd.Context(), args[0])
		},
	}
}

// parseElector reads "First Last" or "First Last:Party".
func parseElector(s string) (model.Elector, error) {
	var party string
	if i := strings.IndexByte(s, ':'); i >= 0 {
		party = strings.TrimSpace(s[i+1:])
		s = s[:i]
	}
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return model.Elector{}, fmt.Errorf("%q: expected \"First Last\" or \"First Last:Party\"", s)
	}
	return model.Elector{
		FirstName: strings.Join(fields[:len(fields)-1], " "),
		LastName:  fields[len(fields)-1],
		Party:     party,
	}, nil
}

func countySignInCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sign-in \"First Last:Party\" ...",
		Short: "Sign the audit board in",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.requireRole(model.RoleCounty); err != nil {
				return err
			}

			board := make(model.AuditBoard, 0, len(args))
			for _, arg := range args {
				e, err := parseElector(arg)
				if err != nil {
					return err
				}
				board = append(board, e)
			}
			return a.county().SignInBoard(cmd.Context(), board)
		},
	}
}

func countySignOutCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sign-out",
		Short: "Sign the audit board out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.requireRole(model.RoleCounty); err != nil {
				return err
			}
			return a.county().SignOutBoard(cmd.Context())
		},
	}
}

func countySignOffCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sign-off \"First Last\" \"First Last\"",
		Short: "Sign off the completed round",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.requireRole(model.RoleCounty); err != nil {
				return err
			}

			signatories := make([]model.Elector, 0, len(args))
			for _, arg := range args {
				e, err := parseElector(arg)
				if err != nil {
					return err
				}
				signatories = append(signatories, e)
			}

			sup := a.county()
			sup.RefreshOnce(cmd.Context())
			return sup.SignOffRound(cmd.Context(), signatories)
		},
	}
}

func countyAuditCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Run the interactive ballot review session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.requireRole(model.RoleCounty); err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()
			a.serveMetrics(ctx)

			sup := a.county()
			a.watchConfig(ctx, *cfgPath, func(c config.Config) {
				sup.SetInterval(c.PollInterval)
			})
			sup.Start(ctx)
			defer sup.Stop()

			return a.auditLoop(ctx, sup)
		},
	}
}

// auditLoop walks the board through one ballot at a time until the round
// is complete or the session ends.
func (a *app) auditLoop(ctx context.Context, sup *poll.County) error {
	updates := a.st.Watch()
	var reviewed int64 // last ballot offered for review

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-updates:
		}

		snap := a.st.Read()
		if snap.County == nil {
			return errors.New("session ended")
		}
		c := snap.County

		if ballots.AwaitingSignOff(c) {
			fmt.Println("\nall assigned ballots reviewed; run rlactl county sign-off to close the round")
			return nil
		}
		if c.CurrentBallot == nil || c.CurrentBallot.Submitted || c.CurrentBallot.ID == reviewed {
			continue
		}
		reviewed = c.CurrentBallot.ID

		done, retry, err := a.reviewBallot(ctx, sup, c)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if retry {
			// A failed submit keeps the ballot on hand; clear the
			// watermark so the next refresh offers it again.
			reviewed = 0
		}
	}
}

// reviewBallot prompts for the board's interpretation of the ballot on
// hand and submits it. done is true when the operator quits; retry is
// true when a submit failure left the ballot waiting to be re-offered.
func (a *app) reviewBallot(ctx context.Context, sup *poll.County, c *model.CountyState) (done, retry bool, err error) {
	ballot := c.CurrentBallot
	pos := ballots.Position(c.CVRsToAudit, ballot.ID)
	remaining := ballots.Remaining(c.CVRsToAudit)
	fmt.Printf("\nballot %s (batch %s, record %d), %d of %d remaining\n",
		ballot.ImprintedID, ballot.BatchID, ballot.RecordID, pos, remaining)
	fmt.Println("enter choice numbers (comma separated), 'n' for no consensus, or 'missing' if the ballot cannot be found")

	for _, info := range ballot.ContestInfo {
		def, ok := c.ContestDefs[info.Contest]
		if !ok {
			def = model.Contest{ID: info.Contest, Name: fmt.Sprintf("contest %d", info.Contest)}
		}
		fmt.Printf("\n%s\n", def.Name)
		for i, choice := range def.Choices {
			fmt.Printf("  %d. %s\n", i+1, choice.Name)
		}

		answer := a.prompt("marks")
		switch answer {
		case "missing":
			if err := sup.ReportBallotNotFound(ctx, ballot.ID); err != nil {
				return false, false, err
			}
			return false, false, nil
		case "q", "quit":
			return true, false, nil
		case "n":
			noConsensus := true
			sup.UpdateInterpretation(review.Edit{
				BallotID:    ballot.ID,
				ContestID:   info.Contest,
				NoConsensus: &noConsensus,
			})
		default:
			choices := make(model.ACVRChoices)
			for _, part := range strings.Split(answer, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				n, err := strconv.Atoi(part)
				if err != nil || n < 1 || n > len(def.Choices) {
					fmt.Fprintf(os.Stderr, "ignoring %q: not a listed choice\n", part)
					continue
				}
				choices[def.Choices[n-1].Name] = true
			}
			sup.UpdateInterpretation(review.Edit{
				BallotID:  ballot.ID,
				ContestID: info.Contest,
				Choices:   choices,
			})
		}

		if comment := a.prompt("comment (optional)"); comment != "" {
			sup.UpdateInterpretation(review.Edit{
				BallotID:  ballot.ID,
				ContestID: info.Contest,
				Comments:  &comment,
			})
		}
	}

	if confirm := a.prompt("submit interpretation? [y/N]"); confirm == "y" || confirm == "yes" {
		if err := sup.SubmitInterpretation(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "submit failed; the interpretation is kept and the ballot will be offered again: %v\n", err)
			return false, true, nil
		}
	}
	return false, false, nil
}

func dosCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dos",
		Short: "State admin workflow: define and launch the audit",
	}
	cmd.AddCommand(
		dosAuditInfoCmd(cfgPath),
		dosRiskLimitCmd(cfgPath),
		dosSelectContestsCmd(cfgPath),
		dosSeedCmd(cfgPath),
		dosStartRoundCmd(cfgPath),
		dosHandCountCmd(cfgPath),
		dosWatchCmd(cfgPath),
	)
	return cmd
}

func dosAuditInfoCmd(cfgPath *string) *cobra.Command {
	var electionDate, electionType, meetingDate string
	cmd := &cobra.Command{
		Use:   "audit-info",
		Short: "Set election metadata for the audit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.requireRole(model.RoleDOS); err != nil {
				return err
			}

			info := gateway.AuditInfo{ElectionType: electionType}
			if electionDate != "" {
				d, err := time.Parse("2006-01-02", electionDate)
				if err != nil {
					return fmt.Errorf("election date: %w", err)
				}
				info.ElectionDate = &d
			}
			if meetingDate != "" {
				info.PublicMeetingDate = &meetingDate
			}
			return a.dos().SetAuditInfo(cmd.Context(), info)
		},
	}
	cmd.Flags().StringVar(&electionDate, "election-date", "", "election date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&electionType, "election-type", "", "election type (general, primary, ...)")
	cmd.Flags().StringVar(&meetingDate, "public-meeting-date", "", "public meeting date")
	return cmd
}

func dosRiskLimitCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "risk-limit <fraction>",
		Short: "Set the comparison audit risk limit, e.g. 0.05",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.requireRole(model.RoleDOS); err != nil {
				return err
			}

			limit, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("risk limit: %w", err)
			}
			return a.dos().SetRiskLimit(cmd.Context(), limit)
		},
	}
}

func dosSelectContestsCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "select-contests <id:reason> ...",
		Short: "Choose the contests to audit (reason: county or state)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.requireRole(model.RoleDOS); err != nil {
				return err
			}

			selections := make([]model.ContestForAudit, 0, len(args))
			for _, arg := range args {
				id, reason, err := parseContestSelection(arg)
				if err != nil {
					return err
				}
				selections = append(selections, model.ContestForAudit{
					ContestID: id,
					Audit:     model.AuditComparison,
					Reason:    reason,
				})
			}
			return a.dos().SelectContests(cmd.Context(), selections)
		},
	}
}

func parseContestSelection(s string) (int64, string, error) {
	idPart, reasonPart, _ := strings.Cut(s, ":")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%q: contest id must be numeric", s)
	}
	switch reasonPart {
	case "", "county":
		return id, "COUNTY_WIDE_CONTEST", nil
	case "state":
		return id, "STATE_WIDE_CONTEST", nil
	default:
		return 0, "", fmt.Errorf("%q: reason must be county or state", s)
	}
}

func dosSeedCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <digits>",
		Short: "Publish the random seed from the public meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.requireRole(model.RoleDOS); err != nil {
				return err
			}
			return a.dos().UploadSeed(cmd.Context(), args[0])
		},
	}
}

func dosStartRoundCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start-round",
		Short: "Launch the next audit round for all targeted counties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.requireRole(model.RoleDOS); err != nil {
				return err
			}
			return a.dos().StartRound(cmd.Context())
		},
	}
}

func dosHandCountCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "hand-count <contest-id>",
		Short: "Designate a contest for full hand count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.requireRole(model.RoleDOS); err != nil {
				return err
			}

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("contest id: %w", err)
			}
			return a.dos().SetHandCount(cmd.Context(), id)
		},
	}
}

func dosWatchCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Poll and print county progress until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.requireRole(model.RoleDOS); err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()
			a.serveMetrics(ctx)

			sup := a.dos()
			a.watchConfig(ctx, *cfgPath, func(c config.Config) {
				sup.SetInterval(c.PollInterval)
			})
			sup.Start(ctx)
			defer sup.Stop()

			updates := a.st.Watch()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-updates:
				}
				snap := a.st.Read()
				if snap.DOS == nil {
					return errors.New("session ended")
				}
				printDOSStatus(snap.DOS)
				fmt.Println("---")
			}
		},
	}
}

func journalCmd(cfgPath *string) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recent local activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.close()
			if a.jnl == nil {
				return errors.New("journal is disabled in the configuration")
			}

			entries, err := a.jnl.Tail(cmd.Context(), n)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Printf("%s  %-12s %-18s %s\n",
					e.At.Local().Format("2006-01-02 15:04:05"), e.Actor, e.Event, e.Detail)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of entries to show")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the rlactl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rlactl %s\n", version)
		},
	}
}
