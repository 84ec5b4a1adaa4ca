package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the dashboard.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding
	Open key.Binding
	Back key.Binding

	LoadMore key.Binding
	Refresh  key.Binding

	// Filters.
	NextSector  key.Binding
	NextSort    key.Binding
	NextHorizon key.Binding
	NextTag     key.Binding
	ClearTag    key.Binding

	Search      key.Binding
	ClearSearch key.Binding

	// Detail pane.
	ToggleReadme key.Binding
	Translate    key.Binding
	Reset        key.Binding

	// Admin.
	Sync     key.Binding
	Backfill key.Binding
	Yes      key.Binding
	No       key.Binding

	Subscribe key.Binding
	Dismiss   key.Binding
	Quit      key.Binding
}

var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "details"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	LoadMore: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "load more"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	NextSector: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "sector"),
	),
	NextSort: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sort"),
	),
	NextHorizon: key.NewBinding(
		key.WithKeys("h"),
		key.WithHelp("h", "horizon"),
	),
	NextTag: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "tag"),
	),
	ClearTag: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear tag"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "semantic search"),
	),
	ClearSearch: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "clear search"),
	),
	ToggleReadme: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "readme/summary"),
	),
	Translate: key.NewBinding(
		key.WithKeys("T"),
		key.WithHelp("T", "translate"),
	),
	Reset: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "original"),
	),
	Sync: key.NewBinding(
		key.WithKeys("U"),
		key.WithHelp("U", "sync"),
	),
	Backfill: key.NewBinding(
		key.WithKeys("B"),
		key.WithHelp("B", "backfill"),
	),
	Yes: key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "confirm"),
	),
	No: key.NewBinding(
		key.WithKeys("n", "N", "esc"),
		key.WithHelp("n", "cancel"),
	),
	Subscribe: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "subscribe"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "dismiss"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
