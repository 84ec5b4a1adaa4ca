package dashboard

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kevinmichaelchen/velocity-feed/internal/api"
	"github.com/kevinmichaelchen/velocity-feed/internal/models"
)

// JobKind names a long-running backend maintenance job.
type JobKind int

const (
	JobSync JobKind = iota + 1
	JobBackfill
)

func (k JobKind) String() string {
	switch k {
	case JobSync:
		return "sync"
	case JobBackfill:
		return "backfill"
	default:
		return "unknown"
	}
}

// Job is an admin trigger's state. Busy spans from confirmation until the
// post-job refresh fires, or until the trigger fails.
type Job struct {
	Busy bool
	// RefreshPending is set once the backend accepted the job and the
	// delayed page-1 reload is scheduled.
	RefreshPending bool
}

type Confirmation struct {
	Job    JobKind
	Prompt string
}

const (
	syncPrompt     = "This will trigger a full database sync. It may take 2-5 minutes. Continue?"
	backfillPrompt = "This will start a 1-year deep scan covering all sectors.\n\n" +
		"Estimated time: 5-10 minutes. This will use GitHub API quota and LLM credits.\n\nProceed?"
)

type triggerDoneMsg struct {
	job    JobKind
	result *models.TriggerResult
	err    error
}

type refreshDueMsg struct {
	job JobKind
}

// RequestSync asks for confirmation of a database sync. It reports false,
// and opens nothing, when the sync is already busy or another confirmation
// is open.
func (c *Controller) RequestSync() bool { return c.request(JobSync) }

// RequestBackfill is RequestSync for the backfill job.
func (c *Controller) RequestBackfill() bool { return c.request(JobBackfill) }

func (c *Controller) request(kind JobKind) bool {
	s := &c.state
	if s.Confirm != nil || s.job(kind).Busy {
		return false
	}
	prompt := syncPrompt
	if kind == JobBackfill {
		prompt = backfillPrompt
	}
	s.Confirm = &Confirmation{Job: kind, Prompt: prompt}
	return true
}

// Confirm answers the open confirmation. Accepting dispatches the job.
func (c *Controller) Confirm(accepted bool) tea.Cmd {
	s := &c.state
	conf := s.Confirm
	if conf == nil {
		return nil
	}
	s.Confirm = nil
	if !accepted {
		return nil
	}

	job := s.job(conf.Job)
	if job.Busy {
		return nil
	}
	job.Busy = true
	job.RefreshPending = false

	c.logger.Info("triggering admin job", "job", conf.Job)

	ctx, backend, kind := c.ctx, c.backend, conf.Job
	return func() tea.Msg {
		var (
			result *models.TriggerResult
			err    error
		)
		if kind == JobBackfill {
			result, err = backend.TriggerBackfill(ctx)
		} else {
			result, err = backend.TriggerSync(ctx)
		}
		return triggerDoneMsg{job: kind, result: result, err: err}
	}
}

func (c *Controller) refreshDelay(kind JobKind) time.Duration {
	if kind == JobBackfill {
		return c.backfillDelay
	}
	return c.syncDelay
}

func (c *Controller) handleTrigger(msg triggerDoneMsg) tea.Cmd {
	job := c.state.job(msg.job)
	if !job.Busy || job.RefreshPending {
		return nil
	}

	if msg.err != nil || msg.result == nil || !msg.result.Success {
		err := msg.err
		if err == nil && msg.result != nil && msg.result.Error != "" {
			err = errors.New(msg.result.Error)
		}
		c.logger.Warn("admin job failed to start", "job", msg.job, "error", err)
		job.Busy = false
		c.notify(NoticeError, triggerFailureText(msg.job, api.IsTimeout(msg.err)))
		return nil
	}

	delay := c.refreshDelay(msg.job)
	job.RefreshPending = true
	c.notify(NoticeInfo, triggerSuccessText(msg.job, msg.result, delay))
	c.logger.Info("admin job started", "job", msg.job, "refresh_in", delay)
	return c.schedule(delay, refreshDueMsg{job: msg.job})
}

func (c *Controller) handleRefreshDue(msg refreshDueMsg) tea.Cmd {
	job := c.state.job(msg.job)
	if !job.RefreshPending {
		return nil
	}
	job.Busy = false
	job.RefreshPending = false
	return c.LoadFirstPage()
}

func triggerSuccessText(kind JobKind, result *models.TriggerResult, delay time.Duration) string {
	if kind == JobBackfill {
		msg := result.Message
		if msg == "" {
			msg = "Backfill started."
		}
		return fmt.Sprintf("%s The backfill is running in the background. Refreshing data in %s...", msg, formatDelay(delay))
	}
	return fmt.Sprintf("Update triggered successfully! Refreshing data in %s...", formatDelay(delay))
}

func triggerFailureText(kind JobKind, timedOut bool) string {
	switch {
	case kind == JobBackfill && timedOut:
		return "Backfill request timed out. It may still be running on the server."
	case kind == JobBackfill:
		return "Failed to start backfill. Check server logs."
	case timedOut:
		return "Update request timed out. Check the server logs."
	default:
		return "Failed to start update. Please try again."
	}
}

func formatDelay(d time.Duration) string {
	switch {
	case d == time.Minute:
		return "1 minute"
	case d >= time.Minute && d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	default:
		return d.String()
	}
}
