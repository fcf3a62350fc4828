package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sophie-analyst/internal/api"
	"sophie-analyst/internal/screens"
	"sophie-analyst/internal/settings"
	"sophie-analyst/models"
	"sophie-analyst/observability"
)

func newTrendingCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "trending",
		Short: "List trending stocks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.application(cmd.Context())
			if err != nil {
				return err
			}
			home := a.Home()
			home.Load(cmd.Context())
			state := home.State()
			if state.Error != "" {
				return errors.New(state.Error)
			}
			return s.print(cmd.OutOrStdout(), state.TrendingStocks, func() string {
				return RenderStockList("Trending stocks", state.TrendingStocks, state.BookmarkedTickers)
			})
		},
	}
}

func newSearchCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search stocks by ticker or company name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.application(cmd.Context())
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")
			home := a.Home()
			home.LoadBookmarkedStocks(cmd.Context())
			home.OnSearchQueryChanged(cmd.Context(), query)
			state := home.State()
			if state.Error != "" {
				return errors.New(state.Error)
			}
			return s.print(cmd.OutOrStdout(), state.SearchResults, func() string {
				return RenderStockList(fmt.Sprintf("Results for %q", query), state.SearchResults, state.BookmarkedTickers)
			})
		},
	}
}

func newDetailCmd(s *session) *cobra.Command {
	var tab string
	cmd := &cobra.Command{
		Use:   "detail <ticker>",
		Short: "Show a stock's analysis",
		Long: `Show SOPHIE analysis for a ticker. --tab selects the section:
SOPHIE, TECHNICAL, FUNDAMENTAL, SENTIMENT or AGENTS.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := models.ParseAnalysisTab(tab)
			if err != nil {
				return err
			}
			a, err := s.application(cmd.Context())
			if err != nil {
				return err
			}
			details := a.Details(args[0])
			details.SelectTab(selected)
			return showDetails(cmd, s, details)
		},
	}
	cmd.Flags().StringVar(&tab, "tab", string(models.TabSophie), "Analysis tab to show")
	return cmd
}

func newOpenCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "open <url>",
		Short: "Open a deep link such as sophie://stock/NVDA",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.application(cmd.Context())
			if err != nil {
				return err
			}
			return showDetails(cmd, s, a.OpenDeepLink(args[0]))
		},
	}
}

func showDetails(cmd *cobra.Command, s *session, details *screens.DetailsModel) error {
	details.LoadStockDetails(cmd.Context())
	state := details.State()
	if state.Error != "" {
		return errors.New(state.Error)
	}
	return s.print(cmd.OutOrStdout(), state, func() string {
		return RenderDetails(state)
	})
}

func newBookmarkCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookmark",
		Short: "Manage bookmarked stocks",
	}

	change := func(use, short string, apply func(ctx context.Context, ticker string) (bool, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <ticker>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ticker := strings.ToUpper(strings.TrimSpace(args[0]))
				if err := api.ValidateTicker(ticker); err != nil {
					return err
				}
				bookmarked, err := apply(cmd.Context(), ticker)
				if err != nil {
					return err
				}
				result := api.BookmarkResponse{Ticker: ticker, IsBookmarked: bookmarked}
				return s.print(cmd.OutOrStdout(), result, func() string {
					if bookmarked {
						return bookmarkStyle.Render("★") + " " + ticker + " bookmarked\n"
					}
					return ticker + " removed from bookmarks\n"
				})
			},
		}
	}

	cmd.AddCommand(
		change("add", "Bookmark a stock", func(ctx context.Context, ticker string) (bool, error) {
			repo, err := s.repository(ctx)
			if err != nil {
				return false, err
			}
			return true, repo.BookmarkStock(ctx, ticker)
		}),
		change("remove", "Remove a bookmark", func(ctx context.Context, ticker string) (bool, error) {
			repo, err := s.repository(ctx)
			if err != nil {
				return false, err
			}
			return false, repo.UnbookmarkStock(ctx, ticker)
		}),
		change("toggle", "Flip a stock's bookmark", func(ctx context.Context, ticker string) (bool, error) {
			repo, err := s.repository(ctx)
			if err != nil {
				return false, err
			}
			return repo.ToggleBookmark(ctx, ticker)
		}),
		&cobra.Command{
			Use:   "list",
			Short: "List bookmarked stocks",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := s.application(cmd.Context())
				if err != nil {
					return err
				}
				home := a.Home()
				home.LoadBookmarkedStocks(cmd.Context())
				state := home.State()
				return s.print(cmd.OutOrStdout(), state.BookmarkedStocks, func() string {
					return RenderStockList("Bookmarks", state.BookmarkedStocks, state.BookmarkedTickers)
				})
			},
		},
	)
	return cmd
}

func newDiagnosticsCmd(s *session) *cobra.Command {
	var reset, network bool
	cmd := &cobra.Command{
		Use:   "diagnostics",
		Short: "Test the backend connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.application(cmd.Context())
			if err != nil {
				return err
			}
			diag := a.Diagnostics()
			if reset {
				diag.ResetEndpoints()
			}
			if err := diag.RunConnectionTest(cmd.Context()); err != nil {
				observability.Debug("connection test failed", "error", err)
			}
			if network {
				diag.CollectNetworkInfo(cmd.Context())
			}
			state := diag.State()
			return s.print(cmd.OutOrStdout(), state, func() string {
				return RenderDiagnostics(state)
			})
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "Start again from the first endpoint")
	cmd.Flags().BoolVar(&network, "network", false, "Also list interfaces and check host reachability")
	return cmd
}

func newSettingsCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage stored backend settings",
	}

	store := func() (*settings.Store, error) {
		if s.settings == nil {
			return nil, errors.New("settings store unavailable")
		}
		return s.settings, nil
	}

	show := func(cmd *cobra.Command) error {
		st, err := store()
		if err != nil {
			return err
		}
		current := st.Get()
		view := SettingsView{
			Path:             st.Path(),
			GraphQLEndpoints: s.cfg.GraphQL.Endpoints,
			StoredEndpoints:  len(current.GraphQLEndpoints) > 0,
			APIToken:         settings.MaskToken(s.cfg.GraphQL.APIToken),
			UseMock:          s.cfg.GraphQL.UseMock,
		}
		if !current.UpdatedAt.IsZero() {
			view.UpdatedAt = current.UpdatedAt.Format(time.RFC3339)
		}
		return s.print(cmd.OutOrStdout(), view, func() string {
			return RenderSettings(view)
		})
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show effective backend settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return show(cmd)
			},
		},
		&cobra.Command{
			Use:   "set-endpoints <url>...",
			Short: "Store the ordered list of GraphQL endpoints",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := store()
				if err != nil {
					return err
				}
				for _, u := range args {
					if err := settings.ValidateEndpointURL(u); err != nil {
						return err
					}
				}
				if err := st.Update(func(cur *settings.Settings) {
					cur.GraphQLEndpoints = append([]string(nil), args...)
				}); err != nil {
					return err
				}
				s.cfg.GraphQL.Endpoints = args
				return show(cmd)
			},
		},
		&cobra.Command{
			Use:   "set-token <token>",
			Short: "Store the backend API token; an empty string clears it",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := store()
				if err != nil {
					return err
				}
				token := strings.TrimSpace(args[0])
				if err := st.Update(func(cur *settings.Settings) {
					cur.APIToken = token
				}); err != nil {
					return err
				}
				s.cfg.GraphQL.APIToken = token
				return show(cmd)
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Probe every configured endpoint",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				timeout := time.Duration(s.cfg.Diagnostics.ProbeTimeoutSeconds) * time.Second
				v := settings.NewValidator(timeout, s.cfg.GraphQL.APIToken)
				results := v.ValidateAll(cmd.Context(), s.cfg.GraphQL.Endpoints)
				return s.print(cmd.OutOrStdout(), results, func() string {
					return RenderValidation(results)
				})
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Clear every stored setting",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := store()
				if err != nil {
					return err
				}
				if err := st.Reset(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Settings reset")
				return nil
			},
		},
	)
	return cmd
}

func newServeCmd(s *session) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API and Prometheus metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.application(cmd.Context())
			if err != nil {
				return err
			}
			if addr == "" {
				addr = s.cfg.HTTP.Addr
			}

			router := api.NewRouter(api.NewHandler(a), s.cfg, a.Metrics(), nil)
			server := &http.Server{
				Addr:              addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				observability.Info("starting HTTP server", "addr", addr, "mock", s.cfg.GraphQL.UseMock)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			observability.Info("shutting down HTTP server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default HTTP_ADDR or :8080)")
	return cmd
}
