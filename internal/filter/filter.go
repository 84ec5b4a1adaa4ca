// Package filter holds the feed's structured filter selection. Selection is
// a plain value: every setter returns a modified copy and nothing here talks
// to the network.
package filter

import (
	"fmt"
	"strings"
)

// AllSectors is the sector id meaning "no sector filter".
const AllSectors = "all"

type Sort string

const (
	SortTrend       Sort = "trend"
	SortVelocity7d  Sort = "velocity_7d"
	SortVelocity30d Sort = "velocity_30d"
	SortStars       Sort = "stars"
	SortForks       Sort = "forks"
)

// Selection is the active filter combination. Tag "" means no tag and
// TimeHorizon 0 means unbounded.
type Selection struct {
	Sector      string
	Tag         string
	TimeHorizon int
	Sort        Sort
}

func Default() Selection {
	return Selection{Sector: AllSectors, Sort: SortTrend}
}

// WithSector selects a sector and clears the tag, since discovery tags are
// derived from the previous sector's results.
func (s Selection) WithSector(id string) Selection {
	if id == "" {
		id = AllSectors
	}
	s.Sector = id
	s.Tag = ""
	return s
}

func (s Selection) WithTag(tag string) Selection {
	s.Tag = strings.TrimSpace(tag)
	return s
}

// ToggleTag selects tag, or clears it when it is already selected.
func (s Selection) ToggleTag(tag string) Selection {
	if s.Tag == tag {
		s.Tag = ""
		return s
	}
	return s.WithTag(tag)
}

func (s Selection) WithTimeHorizon(days int) Selection {
	if days < 0 {
		days = 0
	}
	s.TimeHorizon = days
	return s
}

func (s Selection) WithSort(sort Sort) Selection {
	s.Sort = sort
	return s
}

func (s Selection) String() string {
	parts := []string{"sector=" + s.Sector, "sort=" + string(s.Sort)}
	if s.Tag != "" {
		parts = append(parts, "tag="+s.Tag)
	}
	if s.TimeHorizon > 0 {
		parts = append(parts, fmt.Sprintf("horizon=%dd", s.TimeHorizon))
	}
	return strings.Join(parts, " ")
}
