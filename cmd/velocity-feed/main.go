package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/kevinmichaelchen/velocity-feed/internal/api"
	"github.com/kevinmichaelchen/velocity-feed/internal/config"
	"github.com/kevinmichaelchen/velocity-feed/internal/dashboard"
	"github.com/kevinmichaelchen/velocity-feed/internal/filter"
	"github.com/kevinmichaelchen/velocity-feed/internal/llm"
	"github.com/kevinmichaelchen/velocity-feed/internal/models"
	"github.com/kevinmichaelchen/velocity-feed/internal/overview"
	"github.com/kevinmichaelchen/velocity-feed/internal/tui"
)

func main() {
	root := &cobra.Command{
		Use:          "velocity-feed",
		Short:        "Browse trending GitHub repositories by star velocity",
		SilenceUsage: true,
		RunE:         runTUI,
	}

	root.AddCommand(
		tuiCmd(), feedCmd(), searchCmd(), readmeCmd(), translateCmd(),
		syncCmd(), backfillCmd(), subscribeCmd(), overviewCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// env is what every command needs: validated config, a logger and the API
// client built from them.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	client *api.Client
	close  func()
}

func setup(interactive bool) (*env, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	closeLog := func() {}
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		closeLog = func() { _ = f.Close() }
		handler = slog.NewTextHandler(f, opts)
	case interactive:
		// The alt screen owns the terminal.
		handler = slog.DiscardHandler
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	logger := slog.New(handler)

	timeouts := api.DefaultTimeouts()
	timeouts.Page = cfg.RequestTimeout
	timeouts.Search = cfg.RequestTimeout
	timeouts.Readme = cfg.RequestTimeout
	timeouts.Subscribe = cfg.RequestTimeout
	timeouts.Sync = cfg.SyncTimeout
	timeouts.Backfill = cfg.BackfillTimeout

	client := api.NewClient(cfg.APIURL, api.WithTimeouts(timeouts), api.WithLogger(logger))
	return &env{cfg: cfg, logger: logger, client: client, close: closeLog}, nil
}

func (e *env) translator() dashboard.Translator {
	if e.cfg.TranslateProvider == config.TranslateViaLLM {
		return llm.NewClient(e.cfg.LLMBaseURL, e.cfg.LLMAPIKey, e.cfg.LLMModel, e.cfg.TranslateLanguage)
	}
	return e.client
}

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive dashboard (default)",
		RunE:  runTUI,
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	e, err := setup(true)
	if err != nil {
		return err
	}
	defer e.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl := dashboard.New(ctx, e.client,
		dashboard.WithLogger(e.logger),
		dashboard.WithTranslator(e.translator()),
		dashboard.WithPageSize(e.cfg.PageSize),
		dashboard.WithRefreshDelays(e.cfg.SyncRefreshDelay, e.cfg.BackfillRefreshDelay),
	)
	_, err = tea.NewProgram(tui.New(ctrl), tea.WithAltScreen()).Run()
	return err
}

// selectionFlags binds the shared filter flags to sel.
func selectionFlags(cmd *cobra.Command, sel *filter.Selection, sort *string) {
	cmd.Flags().StringVar(&sel.Sector, "sector", filter.AllSectors, "Sector id (all, ai, finance, ...)")
	cmd.Flags().StringVar(&sel.Tag, "tag", "", "Topic or market tag")
	cmd.Flags().IntVar(&sel.TimeHorizon, "horizon", 0, "Only repos created in the last N days (0 = all time)")
	cmd.Flags().StringVar(sort, "sort", string(filter.SortTrend), "Sort strategy (trend, velocity_7d, velocity_30d, stars, forks)")
}

func resolveSelection(sel filter.Selection, sort string) (filter.Selection, error) {
	if _, err := filter.ParseSector(sel.Sector); err != nil {
		return sel, err
	}
	s, err := filter.ParseSort(sort)
	if err != nil {
		return sel, err
	}
	tag := sel.Tag
	sel = sel.WithSector(sel.Sector).WithSort(s).WithTimeHorizon(sel.TimeHorizon)
	return sel.WithTag(tag), nil
}

func feedCmd() *cobra.Command {
	var (
		sel   filter.Selection
		sort  string
		page  int
		limit int
	)

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Print one page of the velocity feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.close()

			sel, err := resolveSelection(sel, sort)
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = e.cfg.PageSize
			}

			fp, err := e.client.FetchPage(cmd.Context(), sel, page, limit)
			if err != nil {
				return err
			}

			analysis := fp.Analysis
			if analysis == nil {
				a := dashboard.ComputeAnalysis(fp.Repos)
				analysis = &a
			}
			fmt.Printf("%s · %s · page %d\n", filter.SectorName(sel.Sector), filter.SortLabel(sel.Sort), page)
			printAnalysis(*analysis)
			fmt.Println()
			printRepos(fp.Repos)

			if fp.MoreAfter(limit) {
				fmt.Printf("\nMore results: --page %d\n", page+1)
			}
			return nil
		},
	}
	selectionFlags(cmd, &sel, &sort)
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size (default PAGE_SIZE)")
	return cmd
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Semantic search across tracked repos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.close()

			query := strings.Join(args, " ")
			repos, err := e.client.SemanticSearch(cmd.Context(), query)
			if err != nil {
				return err
			}
			if len(repos) == 0 {
				fmt.Println("No results found")
				return nil
			}
			fmt.Printf("Top %d results for %q:\n\n", len(repos), query)
			printAnalysis(dashboard.ComputeAnalysis(repos))
			fmt.Println()
			printRepos(repos)
			return nil
		},
	}
}

func readmeCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "readme [owner/repo]",
		Short: "Show a repository's README",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.close()

			md, err := e.client.FetchReadme(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if md == "" {
				md = dashboard.ReadmeEmptyText
			}
			return printMarkdown(os.Stdout, md, raw)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown source instead of rendering it")
	return cmd
}

func translateCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "translate [owner/repo]",
		Short: "Show a repository's README translated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.close()

			md, err := e.client.FetchReadme(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if md == "" {
				return fmt.Errorf("%s has no README to translate", args[0])
			}
			out, err := e.translator().Translate(cmd.Context(), md)
			if err != nil {
				return fmt.Errorf("translating README: %w", err)
			}
			return printMarkdown(os.Stdout, out, raw)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown source instead of rendering it")
	return cmd
}

func syncCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Trigger a full database sync on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrigger(cmd.Context(), yes,
				"This will trigger a full database sync. It may take 2-5 minutes.",
				func(ctx context.Context, c *api.Client) (*models.TriggerResult, error) { return c.TriggerSync(ctx) })
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func backfillCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Start a 1-year deep scan across all sectors",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrigger(cmd.Context(), yes,
				"This will start a 1-year deep scan covering all sectors (5-10 minutes, uses GitHub API quota and LLM credits).",
				func(ctx context.Context, c *api.Client) (*models.TriggerResult, error) { return c.TriggerBackfill(ctx) })
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func runTrigger(ctx context.Context, yes bool, prompt string, trigger func(context.Context, *api.Client) (*models.TriggerResult, error)) error {
	e, err := setup(false)
	if err != nil {
		return err
	}
	defer e.close()

	if !yes && !confirm(os.Stdin, prompt) {
		fmt.Println("Cancelled")
		return nil
	}

	result, err := trigger(ctx, e.client)
	if err != nil {
		return err
	}
	if err := refusal(result); err != nil {
		return err
	}
	if result.Message != "" {
		fmt.Println(result.Message)
	} else {
		fmt.Println("Job started")
	}
	return nil
}

// refusal is the error for a trigger the server declined, or nil.
func refusal(result *models.TriggerResult) error {
	if result.Success {
		return nil
	}
	if reason := strings.TrimSpace(result.Error); reason != "" {
		return fmt.Errorf("server refused the job: %s", reason)
	}
	return errors.New("server refused the job without giving a reason")
}

func confirm(in io.Reader, prompt string) bool {
	fmt.Printf("%s Continue? [y/N] ", prompt)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func subscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe [email]",
		Short: "Subscribe to the weekly digest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.client.Subscribe(cmd.Context(), strings.TrimSpace(args[0])); err != nil {
				return err
			}
			fmt.Println("You are on the list!")
			return nil
		},
	}
}

func overviewCmd() *cobra.Command {
	var (
		sel         filter.Selection
		sort        string
		top         int
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Compare every sector's momentum side by side",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.close()

			sel, err := resolveSelection(sel, sort)
			if err != nil {
				return err
			}

			var sectors []string
			if sel.Sector != filter.AllSectors {
				sectors = []string{sel.Sector}
			}
			rows, err := overview.Run(cmd.Context(), e.client, overview.Options{
				Base:        sel,
				Sectors:     sectors,
				PageSize:    e.cfg.PageSize,
				TopN:        top,
				Concurrency: concurrency,
				Logger:      e.logger,
			})
			if err != nil {
				return err
			}

			fmt.Printf("%-12s %6s %9s %9s %6s %6s  %s\n", "SECTOR", "REPOS", "AVG 7D", "AVG 30D", "VIRAL", "ACCEL", "TOP")
			for _, row := range rows {
				if row.Err != nil {
					fmt.Printf("%-12s  error: %v\n", row.Sector.Name, row.Err)
					continue
				}
				a := row.Analysis
				names := make([]string, len(row.Top))
				for i, r := range row.Top {
					names[i] = r.FullName
				}
				fmt.Printf("%-12s %6d %+9.1f %+9.1f %6d %6d  %s\n",
					row.Sector.Name, a.TotalRepos, a.AvgVelocity7d, a.AvgVelocity30d,
					a.ViralCount, a.AcceleratingCount, strings.Join(names, ", "))
			}
			return nil
		},
	}
	selectionFlags(cmd, &sel, &sort)
	cmd.Flags().IntVar(&top, "top", overview.DefaultTopN, "Top repos listed per sector")
	cmd.Flags().IntVar(&concurrency, "concurrency", overview.DefaultConcurrency, "Sectors fetched in parallel")
	return cmd
}

func printAnalysis(a models.Analysis) {
	fmt.Printf("Repos: %d   Avg 7d: %+.1f/day   Avg 30d: %+.1f/day   Viral: %d   Accelerating: %d\n",
		a.TotalRepos, a.AvgVelocity7d, a.AvgVelocity30d, a.ViralCount, a.AcceleratingCount)
}

func printRepos(repos []models.Repo) {
	n := 0
	for _, r := range repos {
		if r.Hidden() {
			continue
		}
		n++
		trend := string(r.Trend())
		if trend == "" {
			trend = string(models.TrendUnknown)
		}
		fmt.Printf("%d. %s  ★ %d  %+.1f/day  [%s]\n", n, r.FullName, r.Stars, r.Velocity7d(), trend)
		if r.Description != "" {
			fmt.Printf("   %s\n", r.Description)
		}
		if len(r.Topics) > 0 {
			fmt.Printf("   Topics: %s\n", strings.Join(r.Topics, ", "))
		}
	}
}

func printMarkdown(w io.Writer, md string, raw bool) error {
	if raw {
		_, err := fmt.Fprintln(w, md)
		return err
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	_, err = fmt.Fprint(w, out)
	return err
}
