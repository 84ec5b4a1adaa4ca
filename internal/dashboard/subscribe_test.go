package dashboard

import (
	"testing"

	"github.com/kevinmichaelchen/velocity-feed/internal/api"
)

func TestSubscribe(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		wantOK bool
		want   string
	}{
		{"ok", nil, true, "You are on the list!"},
		{"server message", &api.Error{Kind: api.KindServer, StatusCode: 409, Message: "Already subscribed"}, false, "Already subscribed"},
		{"timeout", &api.Error{Kind: api.KindTimeout}, false, "Subscription request timed out."},
		{"server without message", &api.Error{Kind: api.KindServer, StatusCode: 500}, false, "Subscription failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got string
			b := &fakeBackend{subscribe: func(email string) error {
				got = email
				return tc.err
			}}
			c := newTestController(b)
			c.OpenSubscribe()

			cmd := c.Subscribe("  dev@example.com ")
			if !c.State().Subscribe.Loading {
				t.Fatal("expected loading")
			}
			if c.Subscribe("dev@example.com") != nil {
				t.Error("expected duplicate submit to be ignored")
			}
			exec(t, c, cmd)

			if got != "dev@example.com" {
				t.Errorf("email = %q", got)
			}
			st := c.State().Subscribe
			if st.Loading || st.Status == nil || st.Status.OK != tc.wantOK || st.Status.Message != tc.want {
				t.Errorf("unexpected subscribe state %+v (status %+v)", st, st.Status)
			}
		})
	}
}

func TestSubscribe_BlankIgnoredAndCloseResets(t *testing.T) {
	c := newTestController(&fakeBackend{})
	c.OpenSubscribe()
	if c.Subscribe("   ") != nil {
		t.Error("expected blank email to be ignored")
	}
	exec(t, c, c.Subscribe("a@b.c"))
	c.CloseSubscribe()
	if st := c.State().Subscribe; st.Open || st.Status != nil {
		t.Errorf("expected reset after close, got %+v", st)
	}
}

func TestSubscribe_ResultAfterCloseIsNotShownOnReopen(t *testing.T) {
	c := newTestController(&fakeBackend{})
	c.OpenSubscribe()
	cmd := c.Subscribe("a@b.c")
	c.CloseSubscribe()
	if !c.State().Subscribe.Loading {
		t.Fatal("expected request to stay in flight after close")
	}

	exec(t, c, cmd)
	c.OpenSubscribe()
	if st := c.State().Subscribe; st.Loading || st.Status != nil {
		t.Errorf("stale subscribe outcome leaked into reopened modal: %+v", st)
	}
}
