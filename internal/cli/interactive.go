package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"sophie-analyst/internal/app"
	"sophie-analyst/internal/screens"
	"sophie-analyst/models"
)

// Menu entries
const (
	menuTrending    = "Trending stocks"
	menuSearch      = "Search"
	menuBookmarks   = "Bookmarks"
	menuDeepLink    = "Open deep link"
	menuDiagnostics = "Connection diagnostics"
	menuQuit        = "Quit"

	optionBack     = "← Back"
	optionBookmark = "★ Toggle bookmark"
)

// prompter asks the user for input
type prompter interface {
	Select(message string, options []string) (string, error)
	Input(message, help string) (string, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Select(message string, options []string) (string, error) {
	var answer string
	err := survey.AskOne(&survey.Select{
		Message:  message,
		Options:  options,
		PageSize: 12,
	}, &answer)
	return answer, err
}

func (surveyPrompter) Input(message, help string) (string, error) {
	var answer string
	err := survey.AskOne(&survey.Input{Message: message, Help: help}, &answer,
		survey.WithValidator(survey.Required))
	return strings.TrimSpace(answer), err
}

func newInteractiveCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Browse stocks with interactive menus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, s)
		},
	}
}

func runInteractive(cmd *cobra.Command, s *session) error {
	a, err := s.application(cmd.Context())
	if err != nil {
		return err
	}
	err = interactiveLoop(cmd.Context(), cmd.OutOrStdout(), a, surveyPrompter{})
	if errors.Is(err, terminal.InterruptErr) {
		return nil
	}
	return err
}

// interactiveLoop shows the main menu until the user quits
func interactiveLoop(ctx context.Context, out io.Writer, a *app.App, p prompter) error {
	home := a.Home()
	fmt.Fprintln(out, titleStyle.Render("SOPHIE stock analysis"))

	for {
		choice, err := p.Select("What would you like to do?", []string{
			menuTrending, menuSearch, menuBookmarks, menuDeepLink, menuDiagnostics, menuQuit,
		})
		if err != nil {
			return err
		}

		switch choice {
		case menuTrending:
			home.Load(ctx)
			state := home.State()
			if state.Error != "" {
				fmt.Fprintln(out, errorStyle.Render(state.Error))
				continue
			}
			fmt.Fprint(out, RenderStockList("Trending stocks", state.TrendingStocks, state.BookmarkedTickers))
			err = pickStock(ctx, out, a, p, state.TrendingStocks)

		case menuSearch:
			query, qerr := p.Input("Search by ticker or company name:", "For example NVDA or Apple")
			if qerr != nil {
				return qerr
			}
			home.LoadBookmarkedStocks(ctx)
			home.OnSearchQueryChanged(ctx, query)
			state := home.State()
			if state.Error != "" {
				fmt.Fprintln(out, errorStyle.Render(state.Error))
				continue
			}
			fmt.Fprint(out, RenderStockList(fmt.Sprintf("Results for %q", query), state.SearchResults, state.BookmarkedTickers))
			err = pickStock(ctx, out, a, p, state.SearchResults)
			home.ClearSearch()

		case menuBookmarks:
			home.LoadBookmarkedStocks(ctx)
			state := home.State()
			fmt.Fprint(out, RenderStockList("Bookmarks", state.BookmarkedStocks, state.BookmarkedTickers))
			err = pickStock(ctx, out, a, p, state.BookmarkedStocks)

		case menuDeepLink:
			link, lerr := p.Input("Deep link:", "For example sophie://stock/NVDA")
			if lerr != nil {
				return lerr
			}
			err = detailLoop(ctx, out, p, a.OpenDeepLink(link))

		case menuDiagnostics:
			diag := a.Diagnostics()
			diag.RunConnectionTest(ctx)
			fmt.Fprint(out, RenderDiagnostics(diag.State()))

		case menuQuit:
			return nil
		}

		if err != nil {
			return err
		}
	}
}

// pickStock lets the user open one of stocks
func pickStock(ctx context.Context, out io.Writer, a *app.App, p prompter, stocks []models.Stock) error {
	if len(stocks) == 0 {
		return nil
	}
	options := make([]string, 0, len(stocks)+1)
	for _, s := range stocks {
		options = append(options, fmt.Sprintf("%s  %s", s.Ticker, s.Name))
	}
	options = append(options, optionBack)

	choice, err := p.Select("Open a stock:", options)
	if err != nil || choice == optionBack {
		return err
	}
	ticker, _, _ := strings.Cut(choice, " ")
	return detailLoop(ctx, out, p, a.Details(ticker))
}

// detailLoop shows a stock and switches tabs until the user goes back
func detailLoop(ctx context.Context, out io.Writer, p prompter, details *screens.DetailsModel) error {
	details.LoadStockDetails(ctx)

	options := make([]string, 0, len(models.AllAnalysisTabs())+2)
	byTitle := make(map[string]models.AnalysisTab, len(models.AllAnalysisTabs()))
	for _, tab := range models.AllAnalysisTabs() {
		options = append(options, tab.Title())
		byTitle[tab.Title()] = tab
	}
	options = append(options, optionBookmark, optionBack)

	for {
		state := details.State()
		fmt.Fprint(out, RenderDetails(state))
		if state.Error != "" {
			return nil
		}

		choice, err := p.Select(fmt.Sprintf("%s:", state.Ticker), options)
		if err != nil {
			return err
		}
		switch choice {
		case optionBack:
			return nil
		case optionBookmark:
			details.ToggleBookmark(ctx)
		default:
			details.SelectTab(byTitle[choice])
		}
	}
}
