package models

// Trend is the backend's categorical momentum label for a repository.
type Trend string

const (
	TrendViral        Trend = "viral"
	TrendAccelerating Trend = "accelerating"
	TrendSteady       Trend = "steady"
	TrendDecelerating Trend = "decelerating"
	TrendCooling      Trend = "cooling"
	TrendNew          Trend = "new"

	// TrendUnknown is never sent by the backend. It buckets repositories
	// whose metrics or trend are absent when counting locally.
	TrendUnknown Trend = "unknown"
)

type Repo struct {
	Name        string   `json:"name"`
	FullName    string   `json:"full_name"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Language    string   `json:"language"`
	Topics      []string `json:"topics"`
	Stars       int      `json:"stars"`
	Forks       int      `json:"forks"`
	OpenIssues  int      `json:"open_issues"`
	CreatedAt   string   `json:"created_at"`
	DaysOld     int      `json:"days_old"`

	VelocityMetrics *VelocityMetrics `json:"velocity_metrics,omitempty"`

	// RelevancyScore is set by the backend's AI review. Nil means the repo
	// was never scored.
	RelevancyScore *float64 `json:"relevancy_score,omitempty"`
	MarketTags     []string `json:"market_tags,omitempty"`
	// MarketSummary is the backend's generated market analysis, in Markdown.
	// Empty until a sync has produced one.
	MarketSummary string `json:"market_summary,omitempty"`
}

// VelocityMetrics is the backend's growth record. Any field may be missing
// from the payload and then decodes as zero.
type VelocityMetrics struct {
	Stars7d              float64 `json:"stars_7d"`
	Stars30d             float64 `json:"stars_30d"`
	Stars90d             float64 `json:"stars_90d"`
	Velocity7d           float64 `json:"velocity_7d"`
	Velocity30d          float64 `json:"velocity_30d"`
	Velocity90d          float64 `json:"velocity_90d"`
	Acceleration7dVs30d  float64 `json:"acceleration_7d_vs_30d"`
	Acceleration30dVs90d float64 `json:"acceleration_30d_vs_90d"`
	Forks7d              float64 `json:"forks_7d"`
	Forks30d             float64 `json:"forks_30d"`
	Trend                Trend   `json:"trend,omitempty"`
	IntentScore          float64 `json:"intent_score"`
}

func (r Repo) Velocity7d() float64 {
	if r.VelocityMetrics == nil {
		return 0
	}
	return r.VelocityMetrics.Velocity7d
}

func (r Repo) Velocity30d() float64 {
	if r.VelocityMetrics == nil {
		return 0
	}
	return r.VelocityMetrics.Velocity30d
}

// Trend returns the repo's trend, or "" when the backend sent none.
func (r Repo) Trend() Trend {
	if r.VelocityMetrics == nil {
		return ""
	}
	return r.VelocityMetrics.Trend
}

// Hidden reports whether the backend flagged the repo as irrelevant noise.
func (r Repo) Hidden() bool {
	return r.RelevancyScore != nil && *r.RelevancyScore == 0
}
