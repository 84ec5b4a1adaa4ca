package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kevinmichaelchen/velocity-feed/internal/filter"
	"github.com/kevinmichaelchen/velocity-feed/internal/models"
)

// fakeBackend answers from the configured funcs. Commands are executed
// synchronously by the tests, so no locking is needed.
type fakeBackend struct {
	fetchPage func(sel filter.Selection, page, size int) (*models.FeedPage, error)
	search    func(q string) ([]models.Repo, error)
	readme    func(fullName string) (string, error)
	translate func(text string) (string, error)
	sync      func() (*models.TriggerResult, error)
	backfill  func() (*models.TriggerResult, error)
	subscribe func(email string) error

	pageCalls     int
	syncCalls     int
	backfillCalls int
}

func (f *fakeBackend) FetchPage(_ context.Context, sel filter.Selection, page, size int) (*models.FeedPage, error) {
	f.pageCalls++
	if f.fetchPage == nil {
		return &models.FeedPage{Repos: []models.Repo{}}, nil
	}
	return f.fetchPage(sel, page, size)
}

func (f *fakeBackend) SemanticSearch(_ context.Context, q string) ([]models.Repo, error) {
	if f.search == nil {
		return []models.Repo{}, nil
	}
	return f.search(q)
}

func (f *fakeBackend) FetchReadme(_ context.Context, fullName string) (string, error) {
	if f.readme == nil {
		return "# " + fullName, nil
	}
	return f.readme(fullName)
}

func (f *fakeBackend) Translate(_ context.Context, text string) (string, error) {
	if f.translate == nil {
		return "translated: " + text, nil
	}
	return f.translate(text)
}

func (f *fakeBackend) TriggerSync(context.Context) (*models.TriggerResult, error) {
	f.syncCalls++
	if f.sync == nil {
		return &models.TriggerResult{Success: true}, nil
	}
	return f.sync()
}

func (f *fakeBackend) TriggerBackfill(context.Context) (*models.TriggerResult, error) {
	f.backfillCalls++
	if f.backfill == nil {
		return &models.TriggerResult{Success: true, Message: "Backfill queued."}, nil
	}
	return f.backfill()
}

func (f *fakeBackend) Subscribe(_ context.Context, email string) error {
	if f.subscribe == nil {
		return nil
	}
	return f.subscribe(email)
}

func newTestController(b *fakeBackend, opts ...Option) *Controller {
	base := []Option{WithLogger(slog.New(slog.DiscardHandler))}
	return New(context.Background(), b, append(base, opts...)...)
}

// exec runs cmd and feeds its message back into the controller.
func exec(t *testing.T, c *Controller, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	return c.Update(cmd())
}

func makeRepos(names ...string) []models.Repo {
	out := make([]models.Repo, len(names))
	for i, n := range names {
		out[i] = models.Repo{FullName: n, Name: n}
	}
	return out
}

func numberedRepos(prefix string, n int) []models.Repo {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("%s/%d", prefix, i)
	}
	return makeRepos(names...)
}

func fullNames(repos []models.Repo) []string {
	out := make([]string, len(repos))
	for i, r := range repos {
		out[i] = r.FullName
	}
	return out
}

func boolPtr(b bool) *bool { return &b }

func withVelocity(r models.Repo, v7, v30 float64, trend models.Trend) models.Repo {
	r.VelocityMetrics = &models.VelocityMetrics{Velocity7d: v7, Velocity30d: v30, Trend: trend}
	return r
}

// loadedController returns a controller that has committed one page of
// repos a/0..a/n-1 with the given has_more flag.
func loadedController(t *testing.T, b *fakeBackend, n int, more bool, opts ...Option) *Controller {
	t.Helper()
	if b.fetchPage == nil {
		b.fetchPage = func(sel filter.Selection, page, size int) (*models.FeedPage, error) {
			return &models.FeedPage{
				Repos:    numberedRepos(fmt.Sprintf("p%d", page), n),
				Metadata: models.Metadata{HasMore: boolPtr(more)},
			}, nil
		}
	}
	c := newTestController(b, opts...)
	exec(t, c, c.Init())
	if c.State().Phase != PhaseReady {
		t.Fatalf("expected ready after first page, got %v", c.State().Phase)
	}
	return c
}
