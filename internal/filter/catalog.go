package filter

import "fmt"

type Sector struct {
	ID   string
	Name string
}

var Sectors = []Sector{
	{ID: AllSectors, Name: "All Sectors"},
	{ID: "ai", Name: "AI & ML"},
	{ID: "finance", Name: "FinTech"},
	{ID: "health", Name: "HealthTech"},
	{ID: "devtools", Name: "DevTools"},
	{ID: "security", Name: "Security"},
	{ID: "web3", Name: "Web3"},
	{ID: "data", Name: "Data"},
	{ID: "mobile", Name: "Mobile"},
}

type Horizon struct {
	Label string
	Days  int
}

var TimeHorizons = []Horizon{
	{Label: "ALL", Days: 0},
	{Label: "30D", Days: 30},
	{Label: "6M", Days: 180},
	{Label: "1Y", Days: 365},
}

type SortOption struct {
	ID    Sort
	Label string
}

var SortStrategies = []SortOption{
	{ID: SortTrend, Label: "Trending"},
	{ID: SortVelocity7d, Label: "7D Growth"},
	{ID: SortVelocity30d, Label: "30D Growth"},
	{ID: SortStars, Label: "Top Stars"},
	{ID: SortForks, Label: "Most Forked"},
}

func ParseSort(s string) (Sort, error) {
	for _, opt := range SortStrategies {
		if string(opt.ID) == s {
			return opt.ID, nil
		}
	}
	return "", fmt.Errorf("unknown sort strategy %q", s)
}

func ParseSector(id string) (Sector, error) {
	for _, sec := range Sectors {
		if sec.ID == id {
			return sec, nil
		}
	}
	return Sector{}, fmt.Errorf("unknown sector %q", id)
}

// SectorName returns the display name for id, or id itself when unknown.
func SectorName(id string) string {
	if sec, err := ParseSector(id); err == nil {
		return sec.Name
	}
	return id
}

func SortLabel(s Sort) string {
	for _, opt := range SortStrategies {
		if opt.ID == s {
			return opt.Label
		}
	}
	return string(s)
}

func HorizonLabel(days int) string {
	for _, h := range TimeHorizons {
		if h.Days == days {
			return h.Label
		}
	}
	return fmt.Sprintf("%dD", days)
}

// NextSector cycles through Sectors, wrapping around.
func NextSector(id string) string {
	for i, sec := range Sectors {
		if sec.ID == id {
			return Sectors[(i+1)%len(Sectors)].ID
		}
	}
	return Sectors[0].ID
}

func NextSort(s Sort) Sort {
	for i, opt := range SortStrategies {
		if opt.ID == s {
			return SortStrategies[(i+1)%len(SortStrategies)].ID
		}
	}
	return SortStrategies[0].ID
}

func NextTimeHorizon(days int) int {
	for i, h := range TimeHorizons {
		if h.Days == days {
			return TimeHorizons[(i+1)%len(TimeHorizons)].Days
		}
	}
	return TimeHorizons[0].Days
}
