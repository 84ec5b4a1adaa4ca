// Package dashboard is the feed synchronization controller. It owns every
// piece of dashboard state and changes it only in response to user intents
// (exported methods) and completion messages (Update). All I/O runs inside
// the tea.Cmd values it returns, so state is only ever touched from the
// Bubble Tea event loop.
//
// Stale completions are dropped where they arrive rather than cancelled:
// feed and search results carry the generation they were requested under,
// README and translation results carry the detail activation that asked
// for them.
package dashboard

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kevinmichaelchen/velocity-feed/internal/filter"
	"github.com/kevinmichaelchen/velocity-feed/internal/models"
)

// Backend is the remote side of the dashboard. *api.Client implements it.
type Backend interface {
	FetchPage(ctx context.Context, sel filter.Selection, page, pageSize int) (*models.FeedPage, error)
	SemanticSearch(ctx context.Context, query string) ([]models.Repo, error)
	FetchReadme(ctx context.Context, fullName string) (string, error)
	TriggerSync(ctx context.Context) (*models.TriggerResult, error)
	TriggerBackfill(ctx context.Context) (*models.TriggerResult, error)
	Subscribe(ctx context.Context, email string) error
	Translator
}

type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Scheduler returns a command that delivers msg after d.
type Scheduler func(d time.Duration, msg tea.Msg) tea.Cmd

func tickScheduler(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

const (
	DefaultPageSize             = 50
	DefaultSyncRefreshDelay     = 2 * time.Minute
	DefaultBackfillRefreshDelay = 5 * time.Minute
)

type Controller struct {
	ctx        context.Context
	backend    Backend
	translator Translator
	logger     *slog.Logger
	now        func() time.Time
	schedule   Scheduler

	pageSize      int
	syncDelay     time.Duration
	backfillDelay time.Duration
	searchRules   []SearchRule

	state State
	// activations numbers detail activations across the controller's
	// lifetime, so a token is never reused after deselection.
	activations uint64
}

type Option func(*Controller)

// WithTranslator overrides the backend's own translation endpoint.
func WithTranslator(t Translator) Option {
	return func(c *Controller) { c.translator = t }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

func WithRefreshDelays(sync, backfill time.Duration) Option {
	return func(c *Controller) {
		c.syncDelay = sync
		c.backfillDelay = backfill
	}
}

func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.schedule = s }
}

func WithSearchRules(rules []SearchRule) Option {
	return func(c *Controller) { c.searchRules = rules }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New returns an idle controller with the default filter. Call Init (or
// LoadFirstPage) to issue the first fetch. ctx bounds every request the
// controller makes.
func New(ctx context.Context, backend Backend, opts ...Option) *Controller {
	c := &Controller{
		ctx:           ctx,
		backend:       backend,
		translator:    backend,
		logger:        slog.Default(),
		now:           time.Now,
		schedule:      tickScheduler,
		pageSize:      DefaultPageSize,
		syncDelay:     DefaultSyncRefreshDelay,
		backfillDelay: DefaultBackfillRefreshDelay,
		searchRules:   DefaultSearchRules,
		state: State{
			Filter:  filter.Default(),
			Phase:   PhaseIdle,
			Page:    1,
			HasMore: true,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init issues the first page-1 load.
func (c *Controller) Init() tea.Cmd {
	return c.LoadFirstPage()
}

// State returns a snapshot. Slices in it are never mutated in place by the
// controller, so callers may hold on to them.
func (c *Controller) State() State {
	return c.state
}

func (c *Controller) PageSize() int { return c.pageSize }

// Update applies one completion message and returns any follow-up command.
// Messages the controller does not own are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case pageLoadedMsg:
		return c.handlePage(msg)
	case searchLoadedMsg:
		return c.handleSearch(msg)
	case readmeLoadedMsg:
		return c.handleReadme(msg)
	case translatedMsg:
		return c.handleTranslation(msg)
	case triggerDoneMsg:
		return c.handleTrigger(msg)
	case refreshDueMsg:
		return c.handleRefreshDue(msg)
	case subscribedMsg:
		return c.handleSubscribed(msg)
	}
	return nil
}

// DismissNotice clears the current notification.
func (c *Controller) DismissNotice() {
	c.state.Notice = nil
}

func (c *Controller) notify(level NoticeLevel, text string) {
	c.state.Notice = &Notice{Level: level, Text: text}
}
