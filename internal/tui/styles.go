package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/kevinmichaelchen/velocity-feed/internal/models"
)

var (
	colorAccent = lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#A78BFA"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	colorError  = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	colorOK     = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	okStyle       = lipgloss.NewStyle().Foreground(colorOK)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	tagStyle      = lipgloss.NewStyle().Foreground(colorAccent).Underline(true)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2)
)

var trendColors = map[models.Trend]lipgloss.AdaptiveColor{
	models.TrendViral:        {Light: "#DC2626", Dark: "#F87171"},
	models.TrendAccelerating: {Light: "#EA580C", Dark: "#FB923C"},
	models.TrendSteady:       {Light: "#2563EB", Dark: "#60A5FA"},
	models.TrendDecelerating: {Light: "#CA8A04", Dark: "#FACC15"},
	models.TrendCooling:      {Light: "#4B5563", Dark: "#9CA3AF"},
	models.TrendNew:          {Light: "#059669", Dark: "#34D399"},
}

func trendBadge(t models.Trend) string {
	if t == "" {
		t = models.TrendUnknown
	}
	color, ok := trendColors[t]
	if !ok {
		color = colorMuted
	}
	return lipgloss.NewStyle().Foreground(color).Render(string(t))
}
