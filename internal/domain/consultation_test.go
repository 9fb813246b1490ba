package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unilink/internal/pkg/apperrors"
)

var colombo = time.FixedZone("Asia/Colombo", int((5*time.Hour + 30*time.Minute).Seconds()))

func pendingConsultation() Consultation {
	return Consultation{
		ID:             "c1",
		StudentID:      "s1",
		LecturerID:     "l1",
		Topic:          "Final year project",
		Mode:           ModeOnline,
		PreferredDates: []string{"2026-10-20"},
		Priority:       PriorityHigh,
		Status:         StatusPending,
		CreatedAt:      time.Date(2026, 10, 18, 8, 0, 0, 0, colombo),
	}
}

func accepted(t *testing.T, p Policy, mode string, at time.Time) Consultation {
	t.Helper()
	c, err := p.Apply(pendingConsultation(), Accept{MeetingType: mode, ScheduledAt: at, Location: "Room 2B"}, at.Add(-24*time.Hour))
	require.NoError(t, err)
	return c
}

func TestApply_Accept(t *testing.T) {
	p := NewPolicy(colombo, 0)
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, colombo)
	at := time.Date(2026, 10, 20, 14, 0, 0, 0, colombo)

	t.Run("online accept schedules and clears location", func(t *testing.T) {
		c, err := p.Apply(pendingConsultation(), Accept{MeetingType: "online", ScheduledAt: at, Notes: "  bring drafts ", Location: "ignored"}, now)
		require.NoError(t, err)

		assert.Equal(t, StatusAccepted, c.Status)
		assert.Equal(t, SessionNotStarted, c.SessionStatus)
		assert.Equal(t, ModeOnline, c.Mode)
		assert.Equal(t, at, *c.ScheduledAt)
		assert.Equal(t, now, *c.AcceptedAt)
		assert.Equal(t, "bring drafts", c.LecturerNotes)
		assert.Empty(t, c.Location)
		assert.Equal(t, PhaseScheduled, c.Phase())
	})

	t.Run("in-person accept stores trimmed location", func(t *testing.T) {
		c, err := p.Apply(pendingConsultation(), Accept{MeetingType: "In-Person", ScheduledAt: at, Location: "  Room 2B "}, now)
		require.NoError(t, err)
		assert.Equal(t, ModeInPerson, c.Mode)
		assert.Equal(t, "Room 2B", c.Location)
	})

	failures := []struct {
		name string
		ev   Accept
		want error
	}{
		{name: "empty meeting type", ev: Accept{ScheduledAt: at}, want: apperrors.ErrValidationFailed},
		{name: "unknown meeting type", ev: Accept{MeetingType: "phone", ScheduledAt: at}, want: apperrors.ErrValidationFailed},
		{name: "in-person without location", ev: Accept{MeetingType: "in-person", ScheduledAt: at, Location: "   "}, want: apperrors.ErrValidationFailed},
		{name: "missing schedule", ev: Accept{MeetingType: "online"}, want: apperrors.ErrValidationFailed},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			in := pendingConsultation()
			out, err := p.Apply(in, tt.ev, now)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, in, out)
			assert.Equal(t, StatusPending, out.Status)
		})
	}

	t.Run("accepted consultation cannot be accepted again", func(t *testing.T) {
		c := accepted(t, p, "online", at)
		out, err := p.Apply(c, Accept{MeetingType: "online", ScheduledAt: at.Add(time.Hour)}, now)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
		assert.Equal(t, at, *out.ScheduledAt)
	})
}

func TestPolicy_CanStartOnline(t *testing.T) {
	p := NewPolicy(colombo, 0)
	at := time.Date(2026, 10, 20, 14, 0, 0, 0, colombo)
	c := accepted(t, p, "online", at)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "day before", now: time.Date(2026, 10, 19, 23, 59, 0, 0, colombo), want: false},
		{name: "start of scheduled day", now: time.Date(2026, 10, 20, 0, 0, 0, 0, colombo), want: true},
		{name: "after scheduled time same day", now: time.Date(2026, 10, 20, 22, 0, 0, 0, colombo), want: true},
		{name: "day after", now: time.Date(2026, 10, 21, 0, 0, 1, 0, colombo), want: false},
		{name: "same instant in UTC different local day", now: time.Date(2026, 10, 19, 19, 0, 0, 0, time.UTC), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.CanStart(c, tt.now))
		})
	}

	started := c
	started.SessionStatus = SessionStarted
	assert.False(t, p.CanStart(started, at))
}

func TestPolicy_CanStartInPerson(t *testing.T) {
	p := NewPolicy(colombo, 0)
	at := time.Date(2026, 10, 20, 14, 0, 0, 0, colombo)
	c := accepted(t, p, "in-person", at)

	assert.False(t, p.CanStart(c, at))
	assert.False(t, p.CanStart(c, at.Add(59*time.Second)))
	assert.True(t, p.CanStart(c, at.Add(60*time.Second)))
	assert.True(t, p.CanStart(c, at.Add(48*time.Hour)))

	pending := pendingConsultation()
	pending.Mode = ModeInPerson
	pending.ScheduledAt = &at
	assert.False(t, p.CanStart(pending, at.Add(time.Hour)))
}

func TestApply_StartAndEnd(t *testing.T) {
	p := NewPolicy(colombo, 0)
	at := time.Date(2026, 10, 20, 14, 0, 0, 0, colombo)
	c := accepted(t, p, "in-person", at)

	_, err := p.Apply(c, End{}, at)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	out, err := p.Apply(c, Start{}, at)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotStartable)
	assert.Equal(t, c, out)

	startAt := at.Add(2 * time.Minute)
	running, err := p.Apply(c, Start{}, startAt)
	require.NoError(t, err)
	assert.Equal(t, StatusStarted, running.Status)
	assert.Equal(t, SessionStarted, running.SessionStatus)
	assert.Equal(t, startAt, *running.StartedAt)
	assert.True(t, p.CanEnd(running))

	_, err = p.Apply(running, Start{}, startAt)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	endAt := startAt.Add(30 * time.Minute)
	done, err := p.Apply(running, End{}, endAt)
	require.NoError(t, err)
	assert.Equal(t, StatusEnded, done.Status)
	assert.Equal(t, SessionEnded, done.SessionStatus)
	assert.Equal(t, endAt, *done.EndedAt)
	assert.Equal(t, PhaseEnded, done.Phase())
}

func TestApply_Decline(t *testing.T) {
	p := NewPolicy(nil, 0)
	now := time.Now()

	out, err := p.Apply(pendingConsultation(), Decline{Reason: " on leave "}, now)
	require.NoError(t, err)
	assert.Equal(t, StatusDeclined, out.Status)
	assert.Equal(t, "on leave", out.DeclineReason)

	_, err = p.Apply(out, Decline{}, now)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

// Every event applied from every terminal or later state must never move the
// status back to an earlier point of the lifecycle.
func TestApply_StatusNeverRegresses(t *testing.T) {
	p := NewPolicy(colombo, 0)
	at := time.Date(2026, 10, 20, 14, 0, 0, 0, colombo)
	acc := accepted(t, p, "online", at)
	running, err := p.Apply(acc, Start{}, at)
	require.NoError(t, err)
	done, err := p.Apply(running, End{}, at.Add(time.Hour))
	require.NoError(t, err)
	declined, err := p.Apply(pendingConsultation(), Decline{}, at)
	require.NoError(t, err)

	rank := map[Status]int{StatusPending: 0, StatusAccepted: 1, StatusDeclined: 1, StatusStarted: 2, StatusEnded: 3}
	events := []Event{
		Accept{MeetingType: "online", ScheduledAt: at},
		Decline{},
		Start{},
		End{},
	}

	for _, c := range []Consultation{acc, running, done, declined} {
		for _, ev := range events {
			out, err := p.Apply(c, ev, at.Add(2*time.Hour))
			if err != nil {
				assert.Equal(t, c, out)
				continue
			}
			assert.GreaterOrEqual(t, rank[out.Status], rank[c.Status], "%s from %s", ev.eventName(), c.Status)
		}
	}

	for _, ev := range events {
		_, err := p.Apply(done, ev, at)
		assert.Error(t, err, "ended consultations accept no events")
	}
}

type unknownEvent struct{}

func (unknownEvent) eventName() string { return "unknown" }

func TestApply_UnknownEvent(t *testing.T) {
	_, err := NewPolicy(nil, 0).Apply(pendingConsultation(), unknownEvent{}, time.Now())
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))
}

func TestPhase_InvalidCombination(t *testing.T) {
	c := pendingConsultation()
	c.Status = StatusAccepted
	c.SessionStatus = SessionEnded
	assert.Equal(t, PhaseInvalid, c.Phase())
	assert.True(t, StatusAccepted.Valid())
	assert.False(t, Status("archived").Valid())
}
