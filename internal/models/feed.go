package models

// Analysis is the aggregate summary over a result set. The backend supplies
// it for feed pages; semantic search results get one computed locally.
type Analysis struct {
	TotalRepos        int            `json:"total_repos"`
	AvgVelocity7d     float64        `json:"avg_velocity_7d"`
	AvgVelocity30d    float64        `json:"avg_velocity_30d"`
	Trends            map[string]int `json:"trends"`
	ViralCount        int            `json:"viral_count"`
	AcceleratingCount int            `json:"accelerating_count"`
}

type Metadata struct {
	SearchDate   string `json:"search_date"`
	DaysBack     int    `json:"days_back"`
	MinStars     int    `json:"min_stars"`
	Count        int    `json:"count"`
	Page         *int   `json:"page,omitempty"`
	HasMore      *bool  `json:"has_more,omitempty"`
	TrackingMode string `json:"tracking_mode,omitempty"`
}

// FeedPage is one page of GET /api/repos.
type FeedPage struct {
	Sector    string    `json:"sector"`
	Timestamp string    `json:"timestamp"`
	Repos     []Repo    `json:"repos"`
	Analysis  *Analysis `json:"analysis,omitempty"`
	Metadata  Metadata  `json:"metadata"`
}

// MoreAfter reports whether another page follows this one. The server's
// has_more flag wins; without it a full page is taken to mean more.
func (p *FeedPage) MoreAfter(pageSize int) bool {
	if p.Metadata.HasMore != nil {
		return *p.Metadata.HasMore
	}
	return len(p.Repos) == pageSize
}

// TriggerResult is the body of the admin job endpoints.
type TriggerResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
