package dashboard

import (
	"errors"
	"reflect"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kevinmichaelchen/velocity-feed/internal/api"
	"github.com/kevinmichaelchen/velocity-feed/internal/filter"
	"github.com/kevinmichaelchen/velocity-feed/internal/models"
)

func TestInit_LoadsFirstPage(t *testing.T) {
	b := &fakeBackend{
		fetchPage: func(sel filter.Selection, page, size int) (*models.FeedPage, error) {
			if sel != filter.Default() || page != 1 || size != DefaultPageSize {
				t.Errorf("unexpected request sel=%+v page=%d size=%d", sel, page, size)
			}
			return &models.FeedPage{
				Repos:    makeRepos("a/a", "b/b"),
				Analysis: &models.Analysis{TotalRepos: 200, ViralCount: 7},
				Metadata: models.Metadata{HasMore: boolPtr(true)},
			}, nil
		},
	}
	c := newTestController(b)

	cmd := c.Init()
	if !c.State().Loading() {
		t.Fatalf("expected loading after Init, got %v", c.State().Phase)
	}
	exec(t, c, cmd)

	s := c.State()
	if s.Phase != PhaseReady {
		t.Fatalf("expected ready, got %v", s.Phase)
	}
	if got := fullNames(s.Repos); !reflect.DeepEqual(got, []string{"a/a", "b/b"}) {
		t.Errorf("repos = %v", got)
	}
	if s.Analysis == nil || s.Analysis.TotalRepos != 200 || s.Analysis.ViralCount != 7 {
		t.Errorf("expected server analysis, got %+v", s.Analysis)
	}
	if !s.HasMore || s.Page != 1 {
		t.Errorf("expected page 1 with more, got page=%d hasMore=%v", s.Page, s.HasMore)
	}
}

func TestRapidFilterChanges_OnlyLatestGenerationCommits(t *testing.T) {
	b := &fakeBackend{
		fetchPage: func(sel filter.Selection, page, size int) (*models.FeedPage, error) {
			return &models.FeedPage{Repos: makeRepos(sel.Sector + "/repo")}, nil
		},
	}
	c := newTestController(b)

	cmds := []tea.Cmd{c.SetSector("ai"), c.SetSector("finance"), c.SetSector("health")}
	msgs := make([]tea.Msg, len(cmds))
	for i, cmd := range cmds {
		if cmd == nil {
			t.Fatalf("filter change %d produced no command", i)
		}
		msgs[i] = cmd()
	}

	// Newest arrives first, older ones straggle in afterwards.
	for _, i := range []int{2, 0, 1} {
		c.Update(msgs[i])
	}

	s := c.State()
	if got := fullNames(s.Repos); !reflect.DeepEqual(got, []string{"health/repo"}) {
		t.Errorf("expected only the latest generation's result, got %v", got)
	}
	if s.Filter.Sector != "health" {
		t.Errorf("filter sector = %q", s.Filter.Sector)
	}

	// Same outcome when results arrive in request order.
	c2 := newTestController(b)
	cmds = []tea.Cmd{c2.SetSector("ai"), c2.SetSector("finance"), c2.SetSector("health")}
	for _, cmd := range cmds {
		c2.Update(cmd())
		if c2.State().Phase == PhaseReady && c2.State().Filter.Sector != "health" {
			t.Fatalf("stale result committed")
		}
	}
	if got := fullNames(c2.State().Repos); !reflect.DeepEqual(got, []string{"health/repo"}) {
		t.Errorf("expected latest result, got %v", got)
	}
}

func TestUnchangedFilterIsNoop(t *testing.T) {
	c := loadedController(t, &fakeBackend{}, 3, false)
	gen := c.State().Generation

	if cmd := c.SetSector(filter.AllSectors); cmd != nil {
		t.Error("expected nil command for unchanged sector")
	}
	if cmd := c.SetSort(filter.SortTrend); cmd != nil {
		t.Error("expected nil command for unchanged sort")
	}
	if c.State().Generation != gen {
		t.Error("generation changed without a filter change")
	}
}

func TestFilterChangeResetsPagination(t *testing.T) {
	c := loadedController(t, &fakeBackend{}, 2, true, WithPageSize(2))
	exec(t, c, c.LoadNextPage())
	if c.State().Page != 2 {
		t.Fatalf("expected page 2, got %d", c.State().Page)
	}

	cmd := c.SetTimeHorizon(30)
	s := c.State()
	if s.Page != 1 || !s.HasMore || s.Phase != PhaseLoadingFirstPage {
		t.Errorf("expected reset to page 1 loading, got page=%d hasMore=%v phase=%v", s.Page, s.HasMore, s.Phase)
	}
	if s.Filter.TimeHorizon != 30 {
		t.Errorf("time horizon = %d", s.Filter.TimeHorizon)
	}
	exec(t, c, cmd)
	if got := len(c.State().Repos); got != 2 {
		t.Errorf("expected page-1 replace, got %d repos", got)
	}
}

func TestLoadNextPage_AppendsInOrderWithoutDedupe(t *testing.T) {
	b := &fakeBackend{
		fetchPage: func(sel filter.Selection, page, size int) (*models.FeedPage, error) {
			if page == 1 {
				return &models.FeedPage{Repos: makeRepos("a/1", "a/2", "dup/x")}, nil
			}
			return &models.FeedPage{Repos: makeRepos("dup/x", "b/1")}, nil
		},
	}
	c := newTestController(b, WithPageSize(3))
	exec(t, c, c.Init())

	before := c.State().Repos
	cmd := c.LoadNextPage()
	if !c.State().LoadingMore() {
		t.Fatalf("expected loading-more, got %v", c.State().Phase)
	}
	exec(t, c, cmd)

	s := c.State()
	want := []string{"a/1", "a/2", "dup/x", "dup/x", "b/1"}
	if got := fullNames(s.Repos); !reflect.DeepEqual(got, want) {
		t.Errorf("repos = %v, want %v", got, want)
	}
	if s.Page != 2 {
		t.Errorf("page = %d", s.Page)
	}
	if s.HasMore {
		t.Error("expected has_more false from short page fallback")
	}
	if got := fullNames(before); !reflect.DeepEqual(got, []string{"a/1", "a/2", "dup/x"}) {
		t.Errorf("earlier snapshot was mutated: %v", got)
	}
}

func TestLoadNextPage_NoopWithoutHasMore(t *testing.T) {
	b := &fakeBackend{}
	c := loadedController(t, b, 3, false)
	calls := b.pageCalls

	if cmd := c.LoadNextPage(); cmd != nil {
		t.Error("expected nil command when has_more is false")
	}
	if c.State().Phase != PhaseReady {
		t.Errorf("phase changed to %v", c.State().Phase)
	}
	if b.pageCalls != calls {
		t.Error("unexpected fetch")
	}
}

func TestLoadNextPage_NoopWhileLoading(t *testing.T) {
	c := loadedController(t, &fakeBackend{}, 3, true)
	if cmd := c.LoadNextPage(); cmd == nil {
		t.Fatal("expected first load-more to start")
	}
	if cmd := c.LoadNextPage(); cmd != nil {
		t.Error("expected second load-more to be ignored while one is in flight")
	}

	c2 := newTestController(&fakeBackend{})
	c2.Init()
	if cmd := c2.LoadNextPage(); cmd != nil {
		t.Error("expected load-more to be ignored while page 1 loads")
	}
}

func TestHasMoreFallback(t *testing.T) {
	cases := []struct {
		name string
		meta *bool
		n    int
		want bool
	}{
		{"explicit true on short page", boolPtr(true), 1, true},
		{"explicit false on full page", boolPtr(false), 3, false},
		{"full page without flag", nil, 3, true},
		{"short page without flag", nil, 2, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page := &models.FeedPage{
				Repos:    numberedRepos("x", tc.n),
				Metadata: models.Metadata{HasMore: tc.meta},
			}
			if got := hasMore(page, 3); got != tc.want {
				t.Errorf("hasMore = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLoadMoreFailure_KeepsDisplayedData(t *testing.T) {
	b := &fakeBackend{}
	c := loadedController(t, b, 3, true)
	b.fetchPage = func(filter.Selection, int, int) (*models.FeedPage, error) {
		return nil, &api.Error{Kind: api.KindTransport, Op: "GET /api/repos", Err: errors.New("connection reset")}
	}

	exec(t, c, c.LoadNextPage())

	s := c.State()
	if len(s.Repos) != 3 {
		t.Errorf("expected page-1 data kept, got %d repos", len(s.Repos))
	}
	if s.Phase != PhaseReady || s.LoadingMore() {
		t.Errorf("expected loading-more to stop, got %v", s.Phase)
	}
	if s.Err != "" {
		t.Errorf("expected no error banner for load-more failure, got %q", s.Err)
	}
	if s.Page != 1 {
		t.Errorf("page advanced to %d on failure", s.Page)
	}
}

func TestEmptyBackendResultTreatedAsMalformed(t *testing.T) {
	b := &fakeBackend{}
	c := loadedController(t, b, 3, true)
	b.fetchPage = func(filter.Selection, int, int) (*models.FeedPage, error) { return nil, nil }

	exec(t, c, c.LoadNextPage())
	if s := c.State(); len(s.Repos) != 3 || s.Phase != PhaseReady || s.Page != 1 {
		t.Errorf("nil next page changed state: repos=%d phase=%v page=%d", len(s.Repos), s.Phase, s.Page)
	}

	exec(t, c, c.LoadFirstPage())
	s := c.State()
	if s.Phase != PhaseError || s.Err != "Invalid response format from server" {
		t.Errorf("phase=%v Err=%q", s.Phase, s.Err)
	}
	if s.Repos != nil || s.HasMore {
		t.Error("expected data cleared after nil first page")
	}
}

func TestFirstPageFailure_ClearsDataAndSurfacesMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", &api.Error{Kind: api.KindTimeout}, "Request timed out. The server might be busy."},
		{"server with message", &api.Error{Kind: api.KindServer, StatusCode: 500, Message: "database locked"}, "database locked"},
		{"server without message", &api.Error{Kind: api.KindServer, StatusCode: 503}, "HTTP 503: Failed to fetch data"},
		{"malformed", &api.Error{Kind: api.KindMalformed}, "Invalid response format from server"},
		{"transport", &api.Error{Kind: api.KindTransport, Err: errors.New("dial tcp: refused")}, "Failed to connect to tracker"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &fakeBackend{}
			c := loadedController(t, b, 3, true)
			b.fetchPage = func(filter.Selection, int, int) (*models.FeedPage, error) { return nil, tc.err }

			exec(t, c, c.SetSort(filter.SortStars))

			s := c.State()
			if s.Phase != PhaseError {
				t.Fatalf("expected error phase, got %v", s.Phase)
			}
			if s.Err != tc.want {
				t.Errorf("Err = %q, want %q", s.Err, tc.want)
			}
			if s.Repos != nil || s.Analysis != nil {
				t.Error("expected displayed data cleared")
			}
			if s.CanLoadMore() {
				t.Error("expected load-more unavailable after failure")
			}
		})
	}
}

func TestRetryAfterFailure(t *testing.T) {
	fail := true
	b := &fakeBackend{
		fetchPage: func(filter.Selection, int, int) (*models.FeedPage, error) {
			if fail {
				return nil, &api.Error{Kind: api.KindTimeout}
			}
			return &models.FeedPage{Repos: makeRepos("ok/ok")}, nil
		},
	}
	c := newTestController(b)
	exec(t, c, c.Init())
	if c.State().Phase != PhaseError {
		t.Fatalf("expected error, got %v", c.State().Phase)
	}

	fail = false
	cmd := c.LoadFirstPage()
	if c.State().Err != "" {
		t.Error("expected error cleared when retrying")
	}
	exec(t, c, cmd)
	if len(c.State().Repos) != 1 {
		t.Errorf("expected retry to load data")
	}
}

func TestStaleNextPageDiscardedAfterFilterChange(t *testing.T) {
	c := loadedController(t, &fakeBackend{}, 3, true)

	moreCmd := c.LoadNextPage()
	firstCmd := c.SetSort(filter.SortForks)

	c.Update(moreCmd())
	s := c.State()
	if s.Phase != PhaseLoadingFirstPage {
		t.Errorf("stale page 2 changed phase to %v", s.Phase)
	}
	if len(s.Repos) != 3 {
		t.Errorf("stale page 2 was merged: %d repos", len(s.Repos))
	}

	exec(t, c, firstCmd)
	if c.State().Page != 1 || len(c.State().Repos) != 3 {
		t.Errorf("unexpected state after new page 1: page=%d repos=%d", c.State().Page, len(c.State().Repos))
	}
}

func TestMissingServerAnalysisComputedLocally(t *testing.T) {
	b := &fakeBackend{
		fetchPage: func(filter.Selection, int, int) (*models.FeedPage, error) {
			r := makeRepos("a/a", "b/b")
			r[0] = withVelocity(r[0], 4, 8, models.TrendViral)
			return &models.FeedPage{Repos: r}, nil
		},
	}
	c := newTestController(b)
	exec(t, c, c.Init())

	a := c.State().Analysis
	if a == nil {
		t.Fatal("expected computed analysis")
	}
	if a.TotalRepos != 2 || a.AvgVelocity7d != 2 || a.ViralCount != 1 {
		t.Errorf("unexpected analysis %+v", a)
	}
}

func TestDisplayedHidesZeroRelevancy(t *testing.T) {
	zero, some := 0.0, 0.4
	r := makeRepos("keep/unscored", "drop/zero", "keep/scored")
	r[1].RelevancyScore = &zero
	r[2].RelevancyScore = &some

	s := State{Repos: r}
	if got := fullNames(s.Displayed()); !reflect.DeepEqual(got, []string{"keep/unscored", "keep/scored"}) {
		t.Errorf("Displayed = %v", got)
	}
	if len(s.Repos) != 3 {
		t.Error("Displayed mutated the underlying set")
	}
}

func TestDiscoveryTags(t *testing.T) {
	r := makeRepos("a/a", "b/b")
	r[0].Topics = []string{"llm", "agents"}
	r[0].MarketTags = []string{"b2b"}
	r[1].Topics = []string{"agents", "rag", ""}

	s := State{Repos: r}
	if got := s.DiscoveryTags(0); !reflect.DeepEqual(got, []string{"llm", "agents", "b2b", "rag"}) {
		t.Errorf("DiscoveryTags = %v", got)
	}
	if got := s.DiscoveryTags(2); !reflect.DeepEqual(got, []string{"llm", "agents"}) {
		t.Errorf("DiscoveryTags(2) = %v", got)
	}
}

func TestTagToggleAndSectorClearsTag(t *testing.T) {
	c := loadedController(t, &fakeBackend{}, 1, false)

	exec(t, c, c.ToggleTag("rust"))
	if c.State().Filter.Tag != "rust" {
		t.Fatalf("tag = %q", c.State().Filter.Tag)
	}
	exec(t, c, c.SetSector("devtools"))
	if c.State().Filter.Tag != "" {
		t.Errorf("expected sector change to clear tag, got %q", c.State().Filter.Tag)
	}
	if cmd := c.ClearTag(); cmd != nil {
		t.Error("expected clearing an empty tag to be a no-op")
	}
}
