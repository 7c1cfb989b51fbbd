package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"famjam-cli/internal/config"
	"famjam-cli/internal/format"
	"famjam-cli/internal/logging"
	"famjam-cli/internal/remote"
	"famjam-cli/internal/store"
	"famjam-cli/internal/tui"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type App struct {
	ConfigPath string
	Backend    string
	RedisAddr  string
	SQLitePath string
	LogLevel   string
	PrettyJSON bool

	// Board is the TUI's startup board; it overrides the remembered one.
	Board string

	dir      string
	cfg      *config.Config
	logger   *log.Logger
	closeLog func() error
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "famjam",
		Short:        "famjam: a shared family to-do board (TUI + CLI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive board
  famjam

  # Follow a board as JSON lines (shortcut for: famjam watch SMITH-FAMILY)
  famjam @SMITH-FAMILY

  # Scriptable commands
  famjam tasks add --board smith-family --title "Buy milk" --priority high
  famjam tasks list --board smith-family --filter open --sort dueDate
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// The TUI owns the terminal, so its logs go to a file.
		return app.setup(cmd, !cmd.HasParent())
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.closeLog != nil {
			return app.closeLog()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("FAMJAM_CONFIG", ""), "Path to famjam.toml (default: <config dir>/famjam.toml)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", "", "Remote store backend (redis|sqlite)")
	cmd.PersistentFlags().StringVar(&app.RedisAddr, "redis-addr", "", "Redis address (host:port)")
	cmd.PersistentFlags().StringVar(&app.SQLitePath, "sqlite", "", "Path to the shared SQLite database")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.Flags().StringVar(&app.Board, "board", "", "Board to join when the TUI starts (default: last joined board)")

	cmd.AddCommand(newWatchCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newPrefsCmd(app))
	cmd.AddCommand(newNormalizeCmd(app))
	cmd.AddCommand(newWebCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// setup resolves config (defaults → file → env → flags) and builds the logger.
func (app *App) setup(cmd *cobra.Command, logToFile bool) error {
	dir, err := store.ConfigDir()
	if err != nil {
		return writeErr(cmd, err)
	}
	app.dir = dir

	cfg, err := config.Load(dir, app.ConfigPath)
	if err != nil {
		return writeErr(cmd, err)
	}
	if app.Backend != "" {
		cfg.Backend = strings.ToLower(strings.TrimSpace(app.Backend))
	}
	if app.RedisAddr != "" {
		cfg.Redis.Addr = app.RedisAddr
	}
	if app.SQLitePath != "" {
		cfg.SQLite.Path = app.SQLitePath
	}
	if app.LogLevel != "" {
		cfg.Log.Level = app.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return writeErr(cmd, invalidConfigError{err: err})
	}
	app.cfg = cfg

	logFile := cfg.Log.File
	if logToFile && logFile == "" {
		logFile = filepath.Join(dir, "famjam.log")
	}
	logger, closeLog, err := logging.New(logging.Options{
		Level:    cfg.Log.Level,
		Format:   cfg.Log.Format,
		File:     logFile,
		Fallback: cmd.ErrOrStderr(),
	})
	if err != nil {
		return writeErr(cmd, err)
	}
	app.logger = logger
	app.closeLog = closeLog
	return nil
}

func (app *App) prefsStore() store.PrefsStore {
	return store.PrefsStore{Dir: app.dir}
}

// openStore connects the configured backend. Failures are remote.ConfigError.
func (app *App) openStore(ctx context.Context) (remote.Store, error) {
	switch app.cfg.Backend {
	case config.BackendRedis:
		r, err := remote.NewRedis(ctx, remote.RedisOptions{
			Addr:     app.cfg.Redis.Addr,
			Password: app.cfg.Redis.Password,
			DB:       app.cfg.Redis.DB,
			Prefix:   app.cfg.Redis.Prefix,
		}, app.logger)
		if err != nil {
			return nil, err
		}
		return r, nil
	case config.BackendSQLite:
		s, err := remote.OpenSQLite(ctx, remote.SQLiteOptions{
			Path:         app.cfg.SQLite.Path,
			PollInterval: app.cfg.SQLite.PollInterval.Duration,
		}, app.logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, remote.ConfigError{Backend: app.cfg.Backend, Err: errors.New("unknown backend")}
	}
}

func runTUI(cmd *cobra.Command, app *App) error {
	st, err := app.openStore(cmd.Context())
	if err != nil {
		return writeErr(cmd, err)
	}
	defer st.Close()
	return tui.Run(cmd.Context(), tui.Options{
		Store:  st,
		Prefs:  app.prefsStore(),
		Logger: app.logger,
		Board:  app.Board,
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
