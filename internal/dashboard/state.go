package dashboard

import (
	"github.com/kevinmichaelchen/velocity-feed/internal/filter"
	"github.com/kevinmichaelchen/velocity-feed/internal/models"
)

// Phase is the feed's loading state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoadingFirstPage
	PhaseLoadingNextPage
	PhaseReady
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoadingFirstPage:
		return "loading"
	case PhaseLoadingNextPage:
		return "loading-more"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// Mode says which data source currently owns the displayed feed.
type Mode int

const (
	ModeBrowse Mode = iota
	ModeSemantic
)

type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeError
)

// Notice is a dismissible message that does not block the rest of the UI.
type Notice struct {
	Level NoticeLevel
	Text  string
}

// State is the whole dashboard session.
type State struct {
	Filter filter.Selection
	// Generation increases every time a page-1 load or a semantic search
	// starts. Results from an older generation are dropped.
	Generation uint64
	Phase      Phase
	Mode       Mode
	// Query is the active semantic query; empty in browse mode.
	Query string

	Page     int
	HasMore  bool
	Repos    []models.Repo
	Analysis *models.Analysis
	Metadata models.Metadata
	// Err is the user-visible failure of the last page-1 load or search.
	Err string

	Detail Detail

	Sync     Job
	Backfill Job
	// Confirm is the confirmation currently awaiting an answer, if any.
	Confirm *Confirmation

	Notice    *Notice
	Subscribe SubscribeState
}

func (s State) Loading() bool { return s.Phase == PhaseLoadingFirstPage }

func (s State) LoadingMore() bool { return s.Phase == PhaseLoadingNextPage }

// CanLoadMore reports whether LoadNextPage would issue a request.
func (s State) CanLoadMore() bool {
	return s.Mode == ModeBrowse && s.Phase == PhaseReady && s.HasMore
}

// Displayed returns the repos to render: the current set minus repos the
// backend scored as irrelevant.
func (s State) Displayed() []models.Repo {
	out := make([]models.Repo, 0, len(s.Repos))
	for _, r := range s.Repos {
		if r.Hidden() {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Lookup finds a repo in the current set by identity.
func (s State) Lookup(fullName string) (models.Repo, bool) {
	for _, r := range s.Repos {
		if r.FullName == fullName {
			return r, true
		}
	}
	return models.Repo{}, false
}

// Selected returns the repo the detail view is showing, if it is still in
// the current set.
func (s State) Selected() (models.Repo, bool) {
	if !s.Detail.Active() {
		return models.Repo{}, false
	}
	return s.Lookup(s.Detail.FullName)
}

const defaultTagLimit = 15

// DiscoveryTags returns up to limit distinct topics and market tags from
// the current set, in first-seen order. limit <= 0 means 15.
func (s State) DiscoveryTags(limit int) []string {
	if limit <= 0 {
		limit = defaultTagLimit
	}
	seen := make(map[string]bool)
	var tags []string
	add := func(tag string) bool {
		if tag == "" || seen[tag] {
			return true
		}
		seen[tag] = true
		tags = append(tags, tag)
		return len(tags) < limit
	}
	for _, r := range s.Repos {
		for _, t := range r.Topics {
			if !add(t) {
				return tags
			}
		}
		for _, t := range r.MarketTags {
			if !add(t) {
				return tags
			}
		}
	}
	return tags
}

func (s *State) job(kind JobKind) *Job {
	if kind == JobBackfill {
		return &s.Backfill
	}
	return &s.Sync
}

// Job returns the state of an admin job.
func (s State) Job(kind JobKind) Job {
	return *s.job(kind)
}
