// Package tui is the terminal front-end for the dashboard controller. It
// renders controller state and maps keys to controller intents; it keeps
// no feed state of its own beyond the cursor and input widgets.
package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/kevinmichaelchen/velocity-feed/internal/dashboard"
	"github.com/kevinmichaelchen/velocity-feed/internal/filter"
)

type inputMode int

const (
	inputNone inputMode = iota
	inputSearch
	inputEmail
)

type Model struct {
	ctrl *dashboard.Controller
	keys KeyMap

	spinner spinner.Model
	query   textinput.Model
	email   textinput.Model
	readme  viewport.Model

	markdown *glamour.TermRenderer
	// renderedFrom is the Markdown source currently in the viewport.
	renderedFrom string

	input  inputMode
	cursor int

	width  int
	height int
	ready  bool
}

func New(ctrl *dashboard.Controller) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = titleStyle

	q := textinput.New()
	q.Placeholder = "describe what you're looking for"
	q.Prompt = "/ "
	q.CharLimit = 200
	q.Width = 50

	e := textinput.New()
	e.Placeholder = "you@example.com"
	e.Prompt = "> "
	e.CharLimit = 254
	e.Width = 40

	return Model{
		ctrl:    ctrl,
		keys:    DefaultKeyMap,
		spinner: s,
		query:   q,
		email:   e,
		readme:  viewport.New(80, 20),
		width:   80,
		height:  24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.ctrl.Init(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.syncReadme()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		m.afterChange()
		return m, cmd
	}

	wasSubscribing := m.ctrl.State().Subscribe.Loading
	cmd := m.ctrl.Update(msg)
	if st := m.ctrl.State().Subscribe; wasSubscribing && !st.Loading && st.Status != nil && st.Status.OK {
		m.email.Reset()
	}
	m.afterChange()
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.ready = true

	w := max(width-4, 20)
	h := max(height-14, 5)
	m.readme.Width = w
	m.readme.Height = h

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(w),
	)
	if err == nil {
		m.markdown = r
	}
	m.renderedFrom = ""
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	s := m.ctrl.State()

	if s.Confirm != nil {
		switch {
		case key.Matches(msg, m.keys.Yes):
			return m, m.ctrl.Confirm(true)
		case key.Matches(msg, m.keys.No):
			return m, m.ctrl.Confirm(false)
		}
		return m, nil
	}

	switch m.input {
	case inputSearch:
		return m.handleSearchInput(msg)
	case inputEmail:
		return m.handleEmailInput(msg)
	}

	if s.Detail.Active() {
		switch {
		case key.Matches(msg, m.keys.Back):
			m.ctrl.Deselect()
			return m, nil
		case key.Matches(msg, m.keys.ToggleReadme):
			m.ctrl.ToggleReadme()
			m.readme.GotoTop()
			return m, nil
		case key.Matches(msg, m.keys.Translate):
			return m, m.ctrl.Translate()
		case key.Matches(msg, m.keys.Reset):
			m.ctrl.ResetTranslation()
			return m, nil
		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			// The list is hidden behind the detail pane; movement scrolls it.
			var cmd tea.Cmd
			m.readme, cmd = m.readme.Update(msg)
			return m, cmd
		case key.Matches(msg, m.keys.Open), key.Matches(msg, m.keys.LoadMore):
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Dismiss):
		m.ctrl.DismissNotice()
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		return m.moveDown(s)
	case key.Matches(msg, m.keys.Open):
		shown := s.Displayed()
		if m.cursor < len(shown) {
			return m, m.ctrl.Select(shown[m.cursor].FullName)
		}
	case key.Matches(msg, m.keys.LoadMore):
		return m, m.ctrl.LoadNextPage()
	case key.Matches(msg, m.keys.Refresh):
		m.cursor = 0
		return m, m.ctrl.LoadFirstPage()
	case key.Matches(msg, m.keys.NextSector):
		m.cursor = 0
		return m, m.ctrl.SetSector(filter.NextSector(s.Filter.Sector))
	case key.Matches(msg, m.keys.NextSort):
		m.cursor = 0
		return m, m.ctrl.SetSort(filter.NextSort(s.Filter.Sort))
	case key.Matches(msg, m.keys.NextHorizon):
		m.cursor = 0
		return m, m.ctrl.SetTimeHorizon(filter.NextTimeHorizon(s.Filter.TimeHorizon))
	case key.Matches(msg, m.keys.NextTag):
		m.cursor = 0
		return m, m.nextTag(s)
	case key.Matches(msg, m.keys.ClearTag):
		if s.Filter.Tag != "" {
			m.cursor = 0
			return m, m.ctrl.ClearTag()
		}
	case key.Matches(msg, m.keys.Search):
		m.input = inputSearch
		m.query.SetValue(s.Query)
		return m, m.query.Focus()
	case key.Matches(msg, m.keys.ClearSearch):
		m.cursor = 0
		return m, m.ctrl.ClearSearch()
	case key.Matches(msg, m.keys.Sync):
		m.ctrl.RequestSync()
	case key.Matches(msg, m.keys.Backfill):
		m.ctrl.RequestBackfill()
	case key.Matches(msg, m.keys.Subscribe):
		m.ctrl.OpenSubscribe()
		m.input = inputEmail
		m.email.Reset()
		return m, m.email.Focus()
	}
	return m, nil
}

// moveDown advances the cursor and pulls the next page when it reaches the
// last row.
func (m Model) moveDown(s dashboard.State) (Model, tea.Cmd) {
	n := len(s.Displayed())
	if m.cursor < n-1 {
		m.cursor++
	}
	if n > 0 && m.cursor == n-1 && s.CanLoadMore() {
		return m, m.ctrl.LoadNextPage()
	}
	return m, nil
}

// nextTag selects the discovery tag after the current one, clearing the tag
// after the last.
func (m Model) nextTag(s dashboard.State) tea.Cmd {
	tags := s.DiscoveryTags(0)
	if len(tags) == 0 {
		return nil
	}
	if s.Filter.Tag == "" {
		return m.ctrl.ToggleTag(tags[0])
	}
	for i, t := range tags {
		if t == s.Filter.Tag && i+1 < len(tags) {
			return m.ctrl.ToggleTag(tags[i+1])
		}
	}
	return m.ctrl.ClearTag()
}

func (m Model) handleSearchInput(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.input = inputNone
		m.query.Blur()
		m.cursor = 0
		return m, m.ctrl.RunSemanticSearch(m.query.Value())
	case tea.KeyEsc:
		m.input = inputNone
		m.query.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	return m, cmd
}

func (m Model) handleEmailInput(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		return m, m.ctrl.Subscribe(m.email.Value())
	case tea.KeyEsc:
		m.input = inputNone
		m.email.Blur()
		m.ctrl.CloseSubscribe()
		return m, nil
	}
	var cmd tea.Cmd
	m.email, cmd = m.email.Update(msg)
	return m, cmd
}

func (m *Model) afterChange() {
	n := len(m.ctrl.State().Displayed())
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	m.syncReadme()
}

// syncReadme puts the active pane's Markdown into the viewport: the README,
// or the market summary. It re-renders only when the source text changed,
// which covers toggling, translation and reset.
func (m *Model) syncReadme() {
	s := m.ctrl.State()
	d := s.Detail
	if !d.Active() || (d.ShowReadme && d.Loading) {
		m.renderedFrom = ""
		return
	}

	source := d.Readme
	if !d.ShowReadme {
		r, _ := s.Selected()
		source = marketSummary(r)
	}
	if source == m.renderedFrom {
		return
	}
	m.renderedFrom = source
	m.readme.SetContent(m.render(source))
	m.readme.GotoTop()
}

func (m Model) render(md string) string {
	if m.markdown == nil {
		return md
	}
	out, err := m.markdown.Render(md)
	if err != nil {
		return md
	}
	return out
}
