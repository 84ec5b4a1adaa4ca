package dashboard

import "github.com/kevinmichaelchen/velocity-feed/internal/models"

// ComputeAnalysis builds the aggregate summary for a result set the backend
// did not summarize. Averages are arithmetic means with missing metrics
// counted as 0; an empty set averages to 0. Repos without a trend are
// counted under "unknown".
func ComputeAnalysis(repos []models.Repo) models.Analysis {
	a := models.Analysis{
		TotalRepos: len(repos),
		Trends:     make(map[string]int),
	}
	if len(repos) == 0 {
		return a
	}

	var sum7d, sum30d float64
	for _, r := range repos {
		sum7d += r.Velocity7d()
		sum30d += r.Velocity30d()

		trend := r.Trend()
		if trend == "" {
			trend = models.TrendUnknown
		}
		a.Trends[string(trend)]++
	}

	n := float64(len(repos))
	a.AvgVelocity7d = sum7d / n
	a.AvgVelocity30d = sum30d / n
	a.ViralCount = a.Trends[string(models.TrendViral)]
	a.AcceleratingCount = a.Trends[string(models.TrendAccelerating)]
	return a
}
