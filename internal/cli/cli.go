// Package cli provides the sophie command-line interface
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"sophie-analyst/config"
	"sophie-analyst/internal/app"
	"sophie-analyst/internal/settings"
	"sophie-analyst/observability"
	"sophie-analyst/repository"
)

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// session is the state shared by every command of one invocation
type session struct {
	useMock  bool
	jsonOut  bool
	cfg      *config.Config
	settings *settings.Store
	app      *app.App
	appOpts  []app.Option
}

// NewRootCmd creates the root command. opts are passed to every App it builds.
func NewRootCmd(opts ...app.Option) *cobra.Command {
	s := &session{appOpts: opts}

	rootCmd := &cobra.Command{
		Use:   "sophie",
		Short: "SOPHIE - AI stock analysis in your terminal",
		Long: `sophie browses trending stocks, SOPHIE scores and AI agent signals served by
the SOPHIE GraphQL backend. When the first backend URL is unreachable the next one is tried.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return s.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, s)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&s.useMock, "mock", false, "Use built-in mock data instead of the backend")
	rootCmd.PersistentFlags().BoolVar(&s.jsonOut, "json", false, "Print raw JSON instead of formatted views")

	rootCmd.AddCommand(
		newTrendingCmd(s),
		newSearchCmd(s),
		newDetailCmd(s),
		newOpenCmd(s),
		newBookmarkCmd(s),
		newDiagnosticsCmd(s),
		newSettingsCmd(s),
		newServeCmd(s),
		newInteractiveCmd(s),
	)

	return rootCmd
}

// init loads .env, configuration and stored settings. The --mock flag wins over both.
func (s *session) init(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil {
		observability.Debug("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	observability.InitLoggerWithLevel(cfg.Log.Production, observability.ParseLevel(cfg.Log.Level))

	store, err := settings.NewStore(cfg.Settings.Dir, cfg.Settings.Passphrase)
	if err != nil {
		observability.Warn("settings store unavailable", "error", err)
	} else {
		store.Apply(cfg)
	}

	if cmd.Flags().Changed("mock") {
		cfg.GraphQL.UseMock = s.useMock
	}

	s.cfg = cfg
	s.settings = store
	return nil
}

// application builds the App on first use
func (s *session) application(ctx context.Context) (*app.App, error) {
	if s.app != nil {
		return s.app, nil
	}
	a, err := app.NewApp(ctx, s.cfg, s.appOpts...)
	if err != nil {
		return nil, err
	}
	s.app = a
	return a, nil
}

func (s *session) repository(ctx context.Context) (repository.StockRepository, error) {
	a, err := s.application(ctx)
	if err != nil {
		return nil, err
	}
	return a.Repository(), nil
}

func (s *session) close() error {
	if s.app == nil {
		return nil
	}
	err := s.app.Close()
	s.app = nil
	return err
}

// print writes v as indented JSON when --json is set, otherwise the rendered view
func (s *session) print(w io.Writer, v any, view func() string) error {
	if s.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprint(w, view())
	return err
}
