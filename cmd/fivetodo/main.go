package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/haedeune/fivetodo/internal/config"
	"github.com/haedeune/fivetodo/internal/credential"
	"github.com/haedeune/fivetodo/internal/engine"
	"github.com/haedeune/fivetodo/internal/model"
	"github.com/haedeune/fivetodo/internal/policy"
	"github.com/haedeune/fivetodo/internal/remote"
	"github.com/haedeune/fivetodo/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "fivetodo",
	Short: "Five tasks a day",
	Long: `fivetodo tracks at most five active tasks per calendar day.
Past days are read-only for content edits; deleted tasks stay undoable for a
few seconds and land in the trash afterwards. Log in to sync with the task
service; guest data migrates to the account on first login.`,
}

func main() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().String("config", "", "config file path")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("FIVETODO")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

// app bundles the wired components behind every command.
type app struct {
	cfg     *config.AppConfig
	session *credential.Session
	engine  *engine.Engine
	undo    *engine.UndoBuffer
	store   *store.SQLiteStore
}

func newApp(ctx context.Context) (*app, error) {
	cfgPath := viper.GetString("config")
	if cfgPath == "" {
		cfgPath = config.DefaultConfigPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	session := credential.NewSession()
	session.Resume()

	profile := store.ProfileGuest
	if _, authed := session.Token(); authed || cfg.Store.Profile == "account" {
		profile = store.ProfileAccount
	}
	st, err := store.NewSQLiteStore(cfg.Store.Path, profile)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	eng := engine.New(engine.Config{
		Client:   remote.NewClient(cfg.API.BaseURL, session),
		Tokens:   session,
		Store:    st,
		OwnerTag: cfg.OwnerTag,
		Logger:   logger,
	})
	session.Bind(eng)

	if err := eng.Load(ctx); err != nil {
		st.Close()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		session: session,
		engine:  eng,
		undo:    engine.NewUndoBuffer(eng, time.Duration(cfg.Undo.WindowMS)*time.Millisecond),
		store:   st,
	}, nil
}

func (a *app) close() {
	a.undo.Close()
	// Drain in-flight best-effort remote calls before the process exits.
	a.engine.Wait()
	_ = a.store.Close()
}

// run wires an app for the duration of one command.
func run(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(ctx, a, args)
	}
}

func registerCommands() {
	rootCmd.AddCommand(
		listCmd(),
		addCmd(),
		doneCmd(),
		editCmd(),
		archiveCmd(),
		rmCmd(),
		undoCmd(),
		restoreCmd(),
		calendarCmd(),
		loginCmd(),
		logoutCmd(),
		pullCmd(),
	)
}

func renderTasks(tasks []model.Task) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Title", "Done", "Archived", "Day", "Sync"})
	for _, task := range tasks {
		t.AppendRow(table.Row{
			shortID(task.ID), task.Title,
			mark(task.IsDone), mark(task.Archived),
			policy.DayKey(task.CreatedAt), string(task.SyncState),
		})
	}
	t.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func mark(b bool) string {
	if b {
		return "x"
	}
	return ""
}

// resolveID accepts a full or shortened identifier.
func resolveID(tasks []model.Task, arg string) (string, error) {
	for _, t := range tasks {
		if t.ID == arg || strings.HasPrefix(t.ID, arg) {
			return t.ID, nil
		}
	}
	return "", fmt.Errorf("no task matching %q", arg)
}

func listCmd() *cobra.Command {
	var all, archived, deleted bool
	var day string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show today's tasks (default), the archive, or the trash",
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			switch {
			case deleted:
				t := table.NewWriter()
				t.SetOutputMirror(os.Stdout)
				t.AppendHeader(table.Row{"ID", "Title", "Deleted at"})
				for _, d := range a.engine.Deleted() {
					t.AppendRow(table.Row{
						shortID(d.ID), d.Title, d.DeletedAt.Format("2006-01-02 15:04"),
					})
				}
				t.Render()
			case archived:
				renderTasks(a.engine.ArchivedTasks())
			case all:
				renderTasks(a.engine.Tasks())
			case day != "":
				d, err := time.ParseInLocation("2006-01-02", day, time.Local)
				if err != nil {
					return fmt.Errorf("invalid day %q: %w", day, err)
				}
				renderTasks(a.engine.TasksOn(d))
			default:
				renderTasks(a.engine.ActiveToday())
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&all, "all", false, "every task")
	cmd.Flags().BoolVar(&archived, "archived", false, "archived tasks")
	cmd.Flags().BoolVar(&deleted, "deleted", false, "trash")
	cmd.Flags().StringVar(&day, "day", "", "tasks owned by a day (YYYY-MM-DD)")
	return cmd
}

func addCmd() *cobra.Command {
	var memo, at string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task for today",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			res := a.engine.Create(ctx, args[0], memo, at)
			if !res.OK {
				fmt.Println(res.Reason)
				return nil
			}
			fmt.Printf("added %s\n", shortID(res.Task.ID))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&memo, "memo", "m", "", "memo (up to 500 chars)")
	cmd.Flags().StringVar(&at, "at", "", "creation instant override (RFC 3339)")
	return cmd
}

func doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task's completion",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			id, err := resolveID(a.engine.Tasks(), args[0])
			if err != nil {
				return err
			}
			a.engine.ToggleDone(ctx, id)
			return nil
		}),
	}
}

func editCmd() *cobra.Command {
	var title, memo string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task's title or memo (today's tasks only)",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&memo, "memo", "", "new memo (empty clears it)")
	cmd.RunE = run(func(ctx context.Context, a *app, args []string) error {
		id, err := resolveID(a.engine.Tasks(), args[0])
		if err != nil {
			return err
		}
		// Date-lock pre-check lives with the caller; the engine does
		// not re-validate it.
		for _, t := range a.engine.Tasks() {
			if t.ID == id && !policy.CanEdit(t, time.Now()) {
				fmt.Println("지난 날짜의 할 일은 수정할 수 없어요.")
				return nil
			}
		}
		// Changed, not non-empty: '--memo ""' clears the memo.
		patch := engine.UpdatePatch{}
		if cmd.Flags().Changed("title") {
			patch.Title = &title
		}
		if cmd.Flags().Changed("memo") {
			patch.Memo = &memo
		}
		res := a.engine.Update(ctx, id, patch)
		if !res.OK {
			fmt.Println(res.Reason)
		}
		return nil
	})
	return cmd
}

func archiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <id>",
		Short: "Move a task to the archive (no-op for completed tasks)",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			id, err := resolveID(a.engine.Tasks(), args[0])
			if err != nil {
				return err
			}
			a.engine.Archive(ctx, id)
			return nil
		}),
	}
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task (undoable for a few seconds)",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			id, err := resolveID(a.engine.Tasks(), args[0])
			if err != nil {
				return err
			}
			removed, index, ok := a.engine.Remove(ctx, id)
			if !ok {
				return nil
			}
			a.undo.Begin(removed, index)
			window := time.Duration(a.cfg.Undo.WindowMS) * time.Millisecond
			fmt.Printf("deleted %q, run 'fivetodo undo' within %s to restore\n",
				removed.Title, window)
			return nil
		}),
	}
}

func undoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Restore the most recent deletion, if the window is still open",
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			// Same-process deletions live in the undo buffer; a separate
			// invocation falls back to the persisted trash.
			if a.undo.Undo(ctx) {
				fmt.Println("restored")
				return nil
			}
			window := time.Duration(a.cfg.Undo.WindowMS) * time.Millisecond
			deleted := a.engine.Deleted()
			if len(deleted) == 0 {
				fmt.Println("nothing to undo")
				return nil
			}
			latest := deleted[0]
			if time.Since(latest.DeletedAt) > window {
				fmt.Println("undo window elapsed")
				return nil
			}
			a.engine.InsertBack(ctx, latest, latest.PriorIndex)
			fmt.Printf("restored %q\n", latest.Title)
			return nil
		}),
	}
}

func restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Bring an archived task back as a fresh today task",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			id, err := resolveID(a.engine.Tasks(), args[0])
			if err != nil {
				return err
			}
			a.engine.Restore(ctx, id)
			return nil
		}),
	}
}

func calendarCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Per-day completion counts for recent days",
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Day", "Done", "Tasks"})
			for i := days - 1; i >= 0; i-- {
				day := time.Now().AddDate(0, 0, -i)
				t.AppendRow(table.Row{
					policy.DayKey(day),
					a.engine.DoneCountOn(day),
					len(a.engine.TasksOn(day)),
				})
			}
			t.Render()
			return nil
		}),
	}
	cmd.Flags().IntVar(&days, "days", 7, "how many days back")
	return cmd
}

func loginCmd() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "login <token>",
		Short: "Store a bearer credential and migrate guest tasks",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			if err := a.session.Login(ctx, args[0], owner); err != nil {
				return err
			}
			fmt.Println("logged in")
			return nil
		}),
	}
	cmd.Flags().StringVar(&owner, "owner", "", "account identity tag")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the credential and clear local state",
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			if err := a.session.Logout(ctx); err != nil {
				return err
			}
			fmt.Println("logged out")
			return nil
		}),
	}
}

func pullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Replace local state with the remote task set",
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			return a.engine.Pull(ctx)
		}),
	}
}
