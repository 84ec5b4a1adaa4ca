package dashboard

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kevinmichaelchen/velocity-feed/internal/api"
	"github.com/kevinmichaelchen/velocity-feed/internal/models"
)

type searchLoadedMsg struct {
	generation uint64
	query      string
	repos      []models.Repo
	err        error
}

// SearchRule rewrites a search failure whose text contains Contains into a
// more specific Message.
type SearchRule struct {
	Contains string
	Message  string
}

var DefaultSearchRules = []SearchRule{
	{
		Contains: "Weaviate",
		Message:  "Semantic search database is not running. Ensure Weaviate is configured.",
	},
}

// RunSemanticSearch takes the displayed feed away from pagination until a
// filter interaction or ClearSearch. Blank queries are ignored.
func (c *Controller) RunSemanticSearch(query string) tea.Cmd {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil
	}

	s := &c.state
	s.Generation++
	s.Mode = ModeSemantic
	s.Query = q
	s.Phase = PhaseLoadingFirstPage
	s.HasMore = false
	s.Err = ""

	c.logger.Debug("semantic search", "generation", s.Generation, "query", q)

	ctx, backend, generation := c.ctx, c.backend, s.Generation
	return func() tea.Msg {
		repos, err := backend.SemanticSearch(ctx, q)
		return searchLoadedMsg{generation: generation, query: q, repos: repos, err: err}
	}
}

// ClearSearch leaves semantic mode and reloads page 1 under the current
// filter. It does nothing in browse mode.
func (c *Controller) ClearSearch() tea.Cmd {
	if c.state.Mode != ModeSemantic {
		return nil
	}
	return c.LoadFirstPage()
}

func (c *Controller) handleSearch(msg searchLoadedMsg) tea.Cmd {
	s := &c.state
	if msg.generation != s.Generation {
		c.logger.Debug("discarding stale search", "query", msg.query, "generation", msg.generation)
		return nil
	}

	if msg.err != nil {
		c.logger.Warn("semantic search failed", "query", msg.query, "error", msg.err)
		s.Phase = PhaseError
		s.Err = c.searchErrorMessage(msg.err)
		s.Repos = nil
		s.Analysis = nil
		s.Metadata = models.Metadata{}
		return nil
	}

	a := ComputeAnalysis(msg.repos)
	s.Repos = msg.repos
	s.Analysis = &a
	s.Metadata = models.Metadata{
		SearchDate: c.now().UTC().Format(time.RFC3339),
		Count:      len(msg.repos),
	}
	s.Page = 1
	s.HasMore = false
	s.Phase = PhaseReady
	return nil
}

func (c *Controller) searchErrorMessage(err error) string {
	if api.IsTimeout(err) {
		return "Search timed out. Please try again."
	}
	text := err.Error()
	for _, rule := range c.searchRules {
		if strings.Contains(text, rule.Contains) {
			return rule.Message
		}
	}
	if msg := api.ServerMessage(err); msg != "" {
		return msg
	}
	switch api.KindOf(err) {
	case api.KindServer:
		return "Semantic search failed"
	case api.KindMalformed:
		return "Invalid response from semantic search"
	}
	return "Semantic search is currently unavailable."
}
