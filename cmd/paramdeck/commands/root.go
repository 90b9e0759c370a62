package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/jask/paramdeck/internal/binding"
	"github.com/jask/paramdeck/internal/config"
	"github.com/jask/paramdeck/internal/database"
	"github.com/jask/paramdeck/internal/database/repository"
	"github.com/jask/paramdeck/internal/download"
	"github.com/jask/paramdeck/internal/sdk"
	"github.com/jask/paramdeck/internal/secrets"
	"github.com/jask/paramdeck/internal/service"
	"github.com/jask/paramdeck/internal/store"
	"github.com/jask/paramdeck/internal/tui"
)

var (
	configPath   string
	ticketFlag   string
	modelFlag    string
	demo         bool
	acceptReject bool

	app *appContext
)

// appContext holds what every command needs once config is loaded.
type appContext struct {
	cfg     config.Config
	log     *slog.Logger
	logFile io.Closer
	db      *sql.DB
	tickets *secrets.TicketStore
	store   *store.Store

	snapshots   *service.SnapshotService
	exports     *service.ExportService
	maintenance *service.MaintenanceService
}

func Execute() error {
	return execute(os.Args[1:])
}

func execute(args []string) error {
	root := &cobra.Command{
		Use:           "paramdeck",
		Short:         "Drive parametric model sessions from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				if err := os.Setenv("PARAMDECK_CONFIG", configPath); err != nil {
					return err
				}
			}
			a, err := newAppContext()
			if err != nil {
				return err
			}
			app = a
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/paramdeck/config.toml)")
	root.PersistentFlags().StringVar(&ticketFlag, "ticket", "", "backend ticket of the model to open")
	root.PersistentFlags().StringVar(&modelFlag, "model", "", "use the stored ticket of this model")
	root.PersistentFlags().BoolVar(&demo, "demo", false, "use the built-in offline demo model")
	root.Flags().BoolVar(&acceptReject, "accept-reject", false, "stage changes until accepted (overrides ui.accept_reject_mode)")

	root.AddCommand(paramsCmd(), setCmd(), exportCmd(), snapshotCmd(), ticketCmd(), historyCmd(), layoutCmd(), configCmd())
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	// cobra skips post-run hooks when RunE fails
	if app != nil {
		if cerr := app.close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return err
	}
	return nil
}

func newAppContext() (*appContext, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger, closer, err := newLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}
	slog.SetDefault(logger)

	db, err := database.OpenMigrated(cfg.Database.Path)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("open db: %w", err)
	}
	tickets, err := secrets.NewTicketStore("")
	if err != nil {
		db.Close()
		closer.Close()
		return nil, fmt.Errorf("ticket store: %w", err)
	}

	st := store.New(
		store.WithLogger(logger),
		store.WithSaver(&download.Downloader{Dir: cfg.Download.Dir}),
	)
	return &appContext{
		cfg:         cfg,
		log:         logger,
		logFile:     closer,
		db:          db,
		tickets:     tickets,
		store:       st,
		snapshots:   &service.SnapshotService{Store: st, Snapshots: repository.NewSnapshotRepo(db)},
		exports:     &service.ExportService{Store: st, Log: repository.NewExportLogRepo(db), Logger: logger},
		maintenance: &service.MaintenanceService{DB: db},
	}, nil
}

func (a *appContext) close() error {
	ctx := context.Background()
	for _, id := range a.store.SessionIDs() {
		if s, ok := a.store.Session(id); ok {
			if err := s.Close(ctx); err != nil {
				a.log.Warn("close session", "session", id, "err", err)
			}
		}
		a.store.RemoveSession(id)
	}
	err := a.db.Close()
	a.logFile.Close()
	return err
}

func newLogger(cfg config.LogConfig) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, nil, err
	}
	if cfg.File == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), f, nil
}

// openSession opens the demo model or a backend session and registers it.
func (a *appContext) openSession(ctx context.Context) (string, error) {
	var session sdk.Session
	if demo {
		session = sdk.NewDemoSession()
	} else {
		ticket, err := a.resolveTicket()
		if err != nil {
			return "", err
		}
		client := sdk.NewClient(a.cfg.Backend.URL, a.cfg.Backend.Timeout)
		rs, err := client.Open(ctx, ticket)
		if err != nil {
			return "", fmt.Errorf("open session: %w", err)
		}
		session = rs
	}
	if err := a.store.AddSession(session); err != nil {
		return "", err
	}
	a.log.Info("session opened", "session", session.ID(), "model", session.ModelID())
	return session.ID(), nil
}

func (a *appContext) resolveTicket() (string, error) {
	if ticketFlag != "" {
		return ticketFlag, nil
	}
	if modelFlag != "" {
		t, err := a.tickets.Get(modelFlag)
		if errors.Is(err, secrets.ErrNoTicket) {
			return "", fmt.Errorf("no ticket stored for %q; run 'paramdeck ticket set %s <ticket>'", modelFlag, modelFlag)
		}
		return t, err
	}
	if t := strings.TrimSpace(a.cfg.Ticket()); t != "" {
		return t, nil
	}
	return "", errors.New("no ticket; pass --ticket, --model or --demo")
}

func runTUI(ctx context.Context) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return errors.New("the panel needs a terminal; try 'paramdeck params'")
	}
	sid, err := app.openSession(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := tui.Options{
		Binding: binding.Options{
			AcceptRejectMode:  app.cfg.UI.AcceptRejectMode || acceptReject,
			DebounceTimeout:   app.cfg.UI.DebounceTimeout,
			DisableWhileDirty: app.cfg.UI.DisableWhileDirty,
		},
		LayoutPath: app.cfg.UI.LayoutFile,
		Logger:     app.log,
	}
	m := tui.New(ctx, app.store, sid, tui.Services{Snapshots: app.snapshots, Exports: app.exports}, opts)
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func interactive() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
