package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kevinmichaelchen/velocity-feed/internal/dashboard"
	"github.com/kevinmichaelchen/velocity-feed/internal/filter"
	"github.com/kevinmichaelchen/velocity-feed/internal/models"
)

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	s := m.ctrl.State()

	var b strings.Builder
	b.WriteString(m.header(s))
	b.WriteString("\n")
	if line := m.jobLine(s); line != "" {
		b.WriteString(line + "\n")
	}
	if s.Notice != nil {
		style := okStyle
		if s.Notice.Level == dashboard.NoticeError {
			style = errorStyle
		}
		b.WriteString(style.Render(s.Notice.Text) + mutedStyle.Render("  (d to dismiss)") + "\n")
	}
	b.WriteString("\n")

	switch {
	case s.Confirm != nil:
		b.WriteString(modalStyle.Render(s.Confirm.Prompt + "\n\n" + mutedStyle.Render("y confirm · n cancel")))
	case s.Subscribe.Open:
		b.WriteString(m.subscribeView(s.Subscribe))
	case s.Loading():
		label := "Loading feed..."
		if s.Mode == dashboard.ModeSemantic {
			label = "Searching..."
		}
		b.WriteString(m.spinner.View() + " " + label)
	case s.Phase == dashboard.PhaseError:
		b.WriteString(errorStyle.Render(s.Err) + "\n" + mutedStyle.Render("r to retry"))
	case s.Detail.Active():
		b.WriteString(m.detailView(s))
	default:
		b.WriteString(m.listView(s))
	}

	if m.input == inputSearch {
		b.WriteString("\n\n" + m.query.View())
	}
	b.WriteString("\n\n" + m.helpLine(s))
	return b.String()
}

func (m Model) header(s dashboard.State) string {
	title := titleStyle.Render("Repo Velocity")
	parts := []string{
		"Sector: " + filter.SectorName(s.Filter.Sector),
		"Sort: " + filter.SortLabel(s.Filter.Sort),
		"Horizon: " + filter.HorizonLabel(s.Filter.TimeHorizon),
	}
	if s.Filter.Tag != "" {
		parts = append(parts, "Tag: "+tagStyle.Render("#"+s.Filter.Tag))
	}
	if s.Mode == dashboard.ModeSemantic {
		parts = append(parts, fmt.Sprintf("Search: %q", s.Query))
	}
	line := title + "  " + mutedStyle.Render(strings.Join(parts, " · "))

	if a := s.Analysis; a != nil {
		line += "\n" + mutedStyle.Render(fmt.Sprintf(
			"%d repos · avg 7d %+.1f/day · avg 30d %+.1f/day · %d viral · %d accelerating",
			a.TotalRepos, a.AvgVelocity7d, a.AvgVelocity30d, a.ViralCount, a.AcceleratingCount,
		))
	}
	return line
}

func (m Model) jobLine(s dashboard.State) string {
	var parts []string
	for _, kind := range []dashboard.JobKind{dashboard.JobSync, dashboard.JobBackfill} {
		job := s.Job(kind)
		switch {
		case job.RefreshPending:
			parts = append(parts, fmt.Sprintf("%s started, refresh pending", kind))
		case job.Busy:
			parts = append(parts, fmt.Sprintf("%s %s", m.spinner.View(), kind))
		}
	}
	return mutedStyle.Render(strings.Join(parts, " · "))
}

func (m Model) listView(s dashboard.State) string {
	shown := s.Displayed()
	if len(shown) == 0 {
		return mutedStyle.Render("No repositories match these filters.")
	}

	rows := m.visibleRange(len(shown))
	var b strings.Builder
	for i := rows.start; i < rows.end; i++ {
		b.WriteString(m.row(shown[i], i == m.cursor))
		b.WriteString("\n")
	}

	switch {
	case s.LoadingMore():
		b.WriteString(m.spinner.View() + " Loading more...")
	case s.CanLoadMore():
		b.WriteString(mutedStyle.Render("m to load more"))
	case s.Mode == dashboard.ModeBrowse:
		b.WriteString(mutedStyle.Render("End of feed"))
	}

	if tags := s.DiscoveryTags(0); len(tags) > 0 {
		b.WriteString("\n" + mutedStyle.Render("tags: "+strings.Join(tags, " ")))
	}
	return b.String()
}

type span struct{ start, end int }

// visibleRange keeps the cursor on screen.
func (m Model) visibleRange(n int) span {
	height := max(m.height-10, 3)
	if n <= height {
		return span{0, n}
	}
	start := max(m.cursor-height/2, 0)
	end := min(start+height, n)
	start = max(end-height, 0)
	return span{start, end}
}

func (m Model) row(r models.Repo, selected bool) string {
	name := truncate(r.FullName, 40)
	line := fmt.Sprintf("%-40s ★%7d  %+7.1f/d  %s", name, r.Stars, r.Velocity7d(), trendBadge(r.Trend()))
	if selected {
		return selectedStyle.Render("› ") + selectedStyle.Render(line)
	}
	return "  " + line
}

func (m Model) detailView(s dashboard.State) string {
	d := s.Detail
	r, ok := s.Selected()
	if !ok {
		r = models.Repo{FullName: d.FullName}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(r.FullName) + "  " + trendBadge(r.Trend()) + "\n")
	if r.Description != "" {
		b.WriteString(r.Description + "\n")
	}
	if !d.ShowReadme {
		b.WriteString(mutedStyle.Render(summary(r)) + "\n")
		b.WriteString(paneStyle.Render(m.readme.View()))
		return b.String()
	}

	switch {
	case d.Loading:
		b.WriteString(m.spinner.View() + " Loading README...")
	default:
		b.WriteString(paneStyle.Render(m.readme.View()))
		switch {
		case d.Translating:
			b.WriteString("\n" + m.spinner.View() + " Translating...")
		case d.Translated():
			b.WriteString("\n" + mutedStyle.Render("translated · R to show original"))
		}
	}
	return b.String()
}

const marketSummaryPending = "Market analysis is currently being generated. " +
	"Please trigger a manual sync to populate this data."

// marketSummary is the Markdown shown in the non-README pane.
func marketSummary(r models.Repo) string {
	if strings.TrimSpace(r.MarketSummary) == "" {
		return marketSummaryPending
	}
	return r.MarketSummary
}

func summary(r models.Repo) string {
	lines := []string{
		fmt.Sprintf("Language: %s", orDash(r.Language)),
		fmt.Sprintf("Stars: %d  Forks: %d  Open issues: %d", r.Stars, r.Forks, r.OpenIssues),
	}
	if r.DaysOld > 0 {
		lines = append(lines, fmt.Sprintf("Age: %d days", r.DaysOld))
	}
	if v := r.VelocityMetrics; v != nil {
		lines = append(lines,
			fmt.Sprintf("Velocity: 7d %+.1f/day  30d %+.1f/day  90d %+.1f/day", v.Velocity7d, v.Velocity30d, v.Velocity90d),
			fmt.Sprintf("New stars: 7d %.0f  30d %.0f  90d %.0f", v.Stars7d, v.Stars30d, v.Stars90d),
			fmt.Sprintf("Acceleration: 7d/30d %.2fx  30d/90d %.2fx", v.Acceleration7dVs30d, v.Acceleration30dVs90d),
		)
	}
	if len(r.Topics) > 0 {
		lines = append(lines, "Topics: "+strings.Join(r.Topics, ", "))
	}
	if len(r.MarketTags) > 0 {
		lines = append(lines, "Market: "+strings.Join(r.MarketTags, ", "))
	}
	if r.URL != "" {
		lines = append(lines, r.URL)
	}
	return strings.Join(lines, "\n")
}

func (m Model) subscribeView(sub dashboard.SubscribeState) string {
	body := "Get the weekly velocity digest\n\n" + m.email.View()
	switch {
	case sub.Loading:
		body += "\n\n" + m.spinner.View() + " Subscribing..."
	case sub.Status != nil && sub.Status.OK:
		body += "\n\n" + okStyle.Render(sub.Status.Message)
	case sub.Status != nil:
		body += "\n\n" + errorStyle.Render(sub.Status.Message)
	}
	body += "\n\n" + mutedStyle.Render("enter submit · esc close")
	return modalStyle.Render(body)
}

func (m Model) helpLine(s dashboard.State) string {
	k := m.keys
	var bindings []string
	add := func(help ...string) { bindings = append(bindings, help...) }
	if s.Detail.Active() {
		add(k.ToggleReadme.Help().Key+" "+k.ToggleReadme.Help().Desc,
			k.Translate.Help().Key+" "+k.Translate.Help().Desc,
			k.Reset.Help().Key+" "+k.Reset.Help().Desc,
			k.Back.Help().Key+" "+k.Back.Help().Desc)
	} else {
		add("j/k move", "enter details", "tab sector", "s sort", "h horizon", "t tag", "/ search")
		if s.Mode == dashboard.ModeSemantic {
			add("x clear search")
		}
	}
	add("U sync", "B backfill", "e subscribe", "q quit")
	return mutedStyle.Render(strings.Join(bindings, " · "))
}

func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) > n-1 {
		r = r[:n-1]
	}
	return string(r) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
