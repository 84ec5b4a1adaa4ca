package dashboard

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kevinmichaelchen/velocity-feed/internal/api"
)

type SubscribeState struct {
	Open    bool
	Loading bool
	Status  *SubscribeStatus
}

type SubscribeStatus struct {
	OK      bool
	Message string
}

type subscribedMsg struct {
	err error
}

func (c *Controller) OpenSubscribe() {
	c.state.Subscribe.Open = true
}

// CloseSubscribe hides the modal and forgets its status. A request still
// in flight keeps Loading set until it completes, and its outcome is not
// shown on the next open.
func (c *Controller) CloseSubscribe() {
	c.state.Subscribe = SubscribeState{Loading: c.state.Subscribe.Loading}
}

// Subscribe submits email to the newsletter. Blank addresses and repeated
// submits while one is in flight are ignored.
func (c *Controller) Subscribe(email string) tea.Cmd {
	email = strings.TrimSpace(email)
	sub := &c.state.Subscribe
	if email == "" || sub.Loading {
		return nil
	}
	sub.Loading = true
	sub.Status = nil

	ctx, backend := c.ctx, c.backend
	return func() tea.Msg {
		return subscribedMsg{err: backend.Subscribe(ctx, email)}
	}
}

func (c *Controller) handleSubscribed(msg subscribedMsg) tea.Cmd {
	sub := &c.state.Subscribe
	sub.Loading = false
	if !sub.Open {
		// Closed while in flight: the outcome is only logged.
		c.logger.Debug("subscribe finished after modal closed", "error", msg.err)
		return nil
	}
	if msg.err != nil {
		c.logger.Warn("subscribe failed", "error", msg.err)
		text := api.ServerMessage(msg.err)
		switch {
		case text != "":
		case api.IsTimeout(msg.err):
			text = "Subscription request timed out."
		default:
			text = "Subscription failed"
		}
		sub.Status = &SubscribeStatus{Message: text}
		return nil
	}
	sub.Status = &SubscribeStatus{OK: true, Message: "You are on the list!"}
	return nil
}
