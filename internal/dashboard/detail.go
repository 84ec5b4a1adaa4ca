package dashboard

import (
	tea "github.com/charmbracelet/bubbletea"
)

const (
	ReadmeEmptyText  = "Could not load README."
	ReadmeFailedText = "Failed to load README content."

	translateFailedText = "Translation failed. Please try again later."
)

// Detail is the selected repository's view. The zero value means nothing
// is selected.
type Detail struct {
	// FullName keys the selection into the current repo set.
	FullName string

	Loading bool
	// Failed marks a README fetch that ended in the fallback text.
	Failed      bool
	Readme      string
	Original    string
	Translating bool
	// ShowReadme toggles between the README and the summary panel.
	ShowReadme bool

	activation  uint64
	translation uint64
}

func (d Detail) Active() bool { return d.FullName != "" }

// Translated reports whether the README currently shows a translation.
func (d Detail) Translated() bool {
	return !d.Failed && d.Readme != d.Original
}

func (d Detail) CanTranslate() bool {
	return d.Active() && !d.Loading && !d.Failed && !d.Translating && d.Readme != ""
}

type readmeLoadedMsg struct {
	fullName   string
	activation uint64
	markdown   string
	err        error
}

type translatedMsg struct {
	fullName    string
	activation  uint64
	translation uint64
	text        string
	err         error
}

// Select opens the detail view for a repo in the current set and starts
// its README fetch. Unknown names and the already-selected repo are
// ignored.
func (c *Controller) Select(fullName string) tea.Cmd {
	if c.state.Detail.FullName == fullName {
		return nil
	}
	if _, ok := c.state.Lookup(fullName); !ok {
		return nil
	}

	c.activations++
	c.state.Detail = Detail{
		FullName:   fullName,
		Loading:    true,
		activation: c.activations,
	}

	ctx, backend, activation := c.ctx, c.backend, c.activations
	return func() tea.Msg {
		md, err := backend.FetchReadme(ctx, fullName)
		return readmeLoadedMsg{fullName: fullName, activation: activation, markdown: md, err: err}
	}
}

// Deselect closes the detail view. Results still in flight for it are
// dropped when they arrive.
func (c *Controller) Deselect() {
	c.state.Detail = Detail{}
}

// ToggleReadme flips between README and summary. It never refetches.
func (c *Controller) ToggleReadme() {
	if c.state.Detail.Active() {
		c.state.Detail.ShowReadme = !c.state.Detail.ShowReadme
	}
}

func (c *Controller) owns(fullName string, activation uint64) bool {
	d := c.state.Detail
	return d.Active() && d.FullName == fullName && d.activation == activation
}

func (c *Controller) handleReadme(msg readmeLoadedMsg) tea.Cmd {
	if !c.owns(msg.fullName, msg.activation) {
		c.logger.Debug("discarding stale readme", "repo", msg.fullName)
		return nil
	}

	d := &c.state.Detail
	d.Loading = false
	if msg.err != nil {
		c.logger.Warn("loading readme failed", "repo", msg.fullName, "error", msg.err)
		d.Failed = true
		d.Readme = ReadmeFailedText
		d.Original = ""
		return nil
	}

	content := msg.markdown
	if content == "" {
		content = ReadmeEmptyText
	}
	d.Readme = content
	d.Original = content
	return nil
}

// Translate replaces the README text with its translation. It is a no-op
// while loading, after a failed fetch, or while a translation runs.
func (c *Controller) Translate() tea.Cmd {
	d := &c.state.Detail
	if !d.CanTranslate() {
		return nil
	}
	d.Translating = true
	d.translation++

	ctx, translator := c.ctx, c.translator
	fullName, activation, translation, text := d.FullName, d.activation, d.translation, d.Readme
	return func() tea.Msg {
		out, err := translator.Translate(ctx, text)
		return translatedMsg{
			fullName:    fullName,
			activation:  activation,
			translation: translation,
			text:        out,
			err:         err,
		}
	}
}

// ResetTranslation restores the original README. It also orphans any
// translation still in flight. Calling it twice is harmless.
func (c *Controller) ResetTranslation() {
	d := &c.state.Detail
	if !d.Active() {
		return
	}
	if !d.Failed && !d.Loading {
		d.Readme = d.Original
	}
	d.Translating = false
	d.translation++
}

func (c *Controller) handleTranslation(msg translatedMsg) tea.Cmd {
	if !c.owns(msg.fullName, msg.activation) || c.state.Detail.translation != msg.translation {
		c.logger.Debug("discarding stale translation", "repo", msg.fullName)
		return nil
	}

	d := &c.state.Detail
	d.Translating = false
	if msg.err != nil {
		c.logger.Warn("translation failed", "repo", msg.fullName, "error", msg.err)
		c.notify(NoticeError, translateFailedText)
		return nil
	}
	d.Readme = msg.text
	return nil
}
