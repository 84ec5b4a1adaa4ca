package dashboard

import (
	"errors"
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kevinmichaelchen/velocity-feed/internal/api"
	"github.com/kevinmichaelchen/velocity-feed/internal/filter"
	"github.com/kevinmichaelchen/velocity-feed/internal/models"
)

type pageLoadedMsg struct {
	generation uint64
	page       int
	result     *models.FeedPage
	err        error
}

func (c *Controller) SetSector(id string) tea.Cmd {
	return c.applyFilter(c.state.Filter.WithSector(id))
}

func (c *Controller) ToggleTag(tag string) tea.Cmd {
	return c.applyFilter(c.state.Filter.ToggleTag(tag))
}

func (c *Controller) ClearTag() tea.Cmd {
	return c.applyFilter(c.state.Filter.WithTag(""))
}

func (c *Controller) SetTimeHorizon(days int) tea.Cmd {
	return c.applyFilter(c.state.Filter.WithTimeHorizon(days))
}

func (c *Controller) SetSort(sort filter.Sort) tea.Cmd {
	return c.applyFilter(c.state.Filter.WithSort(sort))
}

// SetFilter replaces the whole selection at once.
func (c *Controller) SetFilter(sel filter.Selection) tea.Cmd {
	return c.applyFilter(sel)
}

// applyFilter reloads page 1 when the selection changed. Any filter
// interaction also ends semantic mode, even one that changes nothing.
func (c *Controller) applyFilter(next filter.Selection) tea.Cmd {
	if next == c.state.Filter && c.state.Mode == ModeBrowse {
		return nil
	}
	c.state.Filter = next
	return c.LoadFirstPage()
}

// LoadFirstPage starts a new generation and fetches page 1 under the
// current filter. The displayed set stays until the result arrives.
func (c *Controller) LoadFirstPage() tea.Cmd {
	s := &c.state
	s.Generation++
	s.Mode = ModeBrowse
	s.Query = ""
	s.Phase = PhaseLoadingFirstPage
	s.Page = 1
	s.HasMore = true
	s.Err = ""

	c.logger.Debug("loading first page", "generation", s.Generation, "filter", s.Filter.String())
	return c.fetchPageCmd(s.Generation, s.Filter, 1)
}

// LoadNextPage fetches the page after the current one, under the generation
// that produced the current data. It is a no-op unless CanLoadMore.
func (c *Controller) LoadNextPage() tea.Cmd {
	s := &c.state
	if !s.CanLoadMore() {
		return nil
	}
	s.Phase = PhaseLoadingNextPage

	c.logger.Debug("loading next page", "generation", s.Generation, "page", s.Page+1)
	return c.fetchPageCmd(s.Generation, s.Filter, s.Page+1)
}

func (c *Controller) fetchPageCmd(generation uint64, sel filter.Selection, page int) tea.Cmd {
	ctx, backend, size := c.ctx, c.backend, c.pageSize
	return func() tea.Msg {
		result, err := backend.FetchPage(ctx, sel, page, size)
		return pageLoadedMsg{generation: generation, page: page, result: result, err: err}
	}
}

func (c *Controller) handlePage(msg pageLoadedMsg) tea.Cmd {
	s := &c.state
	if msg.generation != s.Generation {
		c.logger.Debug("discarding stale page",
			"page", msg.page,
			"generation", msg.generation,
			"current", s.Generation,
		)
		return nil
	}

	if msg.err == nil && msg.result == nil {
		msg.err = &api.Error{Kind: api.KindMalformed, Op: "fetch page", Err: errors.New("empty response")}
	}
	if msg.page == 1 {
		c.commitFirstPage(msg)
	} else {
		c.commitNextPage(msg)
	}
	return nil
}

func (c *Controller) commitFirstPage(msg pageLoadedMsg) {
	s := &c.state
	if msg.err != nil {
		c.logger.Warn("loading feed failed", "filter", s.Filter.String(), "error", msg.err)
		s.Phase = PhaseError
		s.Err = feedErrorMessage(msg.err)
		s.Repos = nil
		s.Analysis = nil
		s.Metadata = models.Metadata{}
		s.HasMore = false
		return
	}

	s.Repos = msg.result.Repos
	s.Analysis = msg.result.Analysis
	if s.Analysis == nil {
		a := ComputeAnalysis(msg.result.Repos)
		s.Analysis = &a
	}
	s.Metadata = msg.result.Metadata
	s.HasMore = hasMore(msg.result, c.pageSize)
	s.Page = 1
	s.Phase = PhaseReady
}

// commitNextPage appends a "load more" result. A failure keeps everything
// already displayed and only ends the loading-more state.
func (c *Controller) commitNextPage(msg pageLoadedMsg) {
	s := &c.state
	s.Phase = PhaseReady
	if msg.err != nil {
		c.logger.Warn("loading more failed", "page", msg.page, "error", msg.err)
		return
	}

	// Concat allocates, so snapshots of the previous slice stay valid.
	// Repeated full names across pages are kept.
	s.Repos = slices.Concat(s.Repos, msg.result.Repos)
	s.Metadata = msg.result.Metadata
	s.HasMore = hasMore(msg.result, c.pageSize)
	s.Page = msg.page
}

// hasMore defers to FeedPage.MoreAfter. An exact-multiple final page is
// misread as "more"; the next load then returns an empty page and clears
// the flag.
func hasMore(page *models.FeedPage, pageSize int) bool {
	return page.MoreAfter(pageSize)
}

func feedErrorMessage(err error) string {
	if api.IsTimeout(err) {
		return "Request timed out. The server might be busy."
	}
	if msg := api.ServerMessage(err); msg != "" {
		return msg
	}
	switch api.KindOf(err) {
	case api.KindServer:
		return fmt.Sprintf("HTTP %d: Failed to fetch data", api.StatusCode(err))
	case api.KindMalformed:
		return "Invalid response format from server"
	case api.KindTransport:
		return "Failed to connect to tracker"
	}
	return err.Error()
}
