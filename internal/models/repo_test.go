package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRepoMarketSummaryDecodes(t *testing.T) {
	raw := `{"full_name":"a/b","stars":10,"market_summary":"Strong enterprise pull."}`

	var r Repo
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatal(err)
	}
	if r.MarketSummary != "Strong enterprise pull." {
		t.Errorf("MarketSummary = %q", r.MarketSummary)
	}

	out, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `"market_summary":"Strong enterprise pull."`) {
		t.Errorf("market_summary lost on encode: %s", out)
	}

	var bare Repo
	if err := json.Unmarshal([]byte(`{"full_name":"a/b"}`), &bare); err != nil {
		t.Fatal(err)
	}
	if bare.MarketSummary != "" {
		t.Errorf("expected empty summary, got %q", bare.MarketSummary)
	}
}

func TestFeedPageMoreAfter(t *testing.T) {
	yes, no := true, false
	full := []Repo{{FullName: "a/1"}, {FullName: "a/2"}}

	cases := []struct {
		name    string
		repos   []Repo
		hasMore *bool
		want    bool
	}{
		{"flag true on short page", full[:1], &yes, true},
		{"flag false on full page", full, &no, false},
		{"full page without flag", full, nil, true},
		{"short page without flag", full[:1], nil, false},
		{"empty page without flag", nil, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &FeedPage{Repos: tc.repos, Metadata: Metadata{HasMore: tc.hasMore}}
			if got := p.MoreAfter(2); got != tc.want {
				t.Errorf("MoreAfter(2) = %v, want %v", got, tc.want)
			}
		})
	}
}
