package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/yigit/unilink/internal/pkg/apperrors"
)

// Status is the lifecycle state stored on a consultation
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
	StatusStarted  Status = "started"
	StatusEnded    Status = "ended"
)

// Statuses lists every status in lifecycle order
var Statuses = []Status{StatusPending, StatusAccepted, StatusDeclined, StatusStarted, StatusEnded}

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// SessionStatus tracks the meeting itself once a consultation is accepted
type SessionStatus string

const (
	SessionNotStarted SessionStatus = "not-started"
	SessionStarted    SessionStatus = "started"
	SessionEnded      SessionStatus = "ended"
)

// Mode is how the meeting takes place
type Mode string

const (
	ModeInPerson Mode = "in-person"
	ModeOnline   Mode = "online"
)

// ParseMode normalises a meeting type chosen by the lecturer
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeInPerson:
		return ModeInPerson, nil
	case ModeOnline:
		return ModeOnline, nil
	case "":
		return "", apperrors.NewValidationError("meetingType", "meeting type is required")
	default:
		return "", apperrors.NewValidationError("meetingType", fmt.Sprintf("unknown meeting type %q", raw))
	}
}

// Priority is the student's urgency hint
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Consultation is a meeting request from a student to a lecturer
type Consultation struct {
	ID             string
	StudentID      string
	LecturerID     string
	Topic          string
	Description    string
	Mode           Mode
	PreferredDates []string
	Priority       Priority
	Status         Status
	SessionStatus  SessionStatus
	ScheduledAt    *time.Time
	Location       string
	LecturerNotes  string
	DeclineReason  string
	CreatedAt      time.Time
	AcceptedAt     *time.Time
	StartedAt      *time.Time
	EndedAt        *time.Time
}

// Session returns the session sub-status, treating an unset value as not started
func (c Consultation) Session() SessionStatus {
	if c.SessionStatus == "" {
		return SessionNotStarted
	}
	return c.SessionStatus
}

// Phase is the tagged lifecycle state derived from status and session status
type Phase int

const (
	PhasePending Phase = iota
	PhaseScheduled
	PhaseDeclined
	PhaseInSession
	PhaseEnded
	PhaseInvalid
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseScheduled:
		return "scheduled"
	case PhaseDeclined:
		return "declined"
	case PhaseInSession:
		return "in-session"
	case PhaseEnded:
		return "ended"
	default:
		return "invalid"
	}
}

// Phase resolves the stored fields into a single lifecycle state.
// Combinations that cannot be reached through Apply resolve to PhaseInvalid.
func (c Consultation) Phase() Phase {
	switch c.Status {
	case StatusPending:
		return PhasePending
	case StatusDeclined:
		return PhaseDeclined
	case StatusAccepted:
		if c.Session() == SessionNotStarted {
			return PhaseScheduled
		}
	case StatusStarted:
		if c.Session() == SessionStarted {
			return PhaseInSession
		}
	case StatusEnded:
		return PhaseEnded
	}
	return PhaseInvalid
}

// Event is a lecturer action on a consultation
type Event interface {
	eventName() string
}

// Accept schedules a pending consultation
type Accept struct {
	MeetingType string
	ScheduledAt time.Time
	Notes       string
	Location    string
}

// Decline rejects a pending consultation
type Decline struct {
	Reason string
}

// Start opens the meeting of an accepted consultation
type Start struct{}

// End closes a running meeting
type End struct{}

func (Accept) eventName() string  { return "accept" }
func (Decline) eventName() string { return "decline" }
func (Start) eventName() string   { return "start" }
func (End) eventName() string     { return "end" }

// DefaultInPersonGrace is how long after the scheduled time an in-person session becomes startable
const DefaultInPersonGrace = 60 * time.Second

// Policy holds the time rules for starting sessions
type Policy struct {
	// Location decides calendar days for online sessions
	Location      *time.Location
	InPersonGrace time.Duration
}

// NewPolicy builds a Policy, falling back to UTC and DefaultInPersonGrace
func NewPolicy(loc *time.Location, grace time.Duration) Policy {
	if loc == nil {
		loc = time.UTC
	}
	if grace <= 0 {
		grace = DefaultInPersonGrace
	}
	return Policy{Location: loc, InPersonGrace: grace}
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

func (p Policy) grace() time.Duration {
	if p.InPersonGrace <= 0 {
		return DefaultInPersonGrace
	}
	return p.InPersonGrace
}

// CanStart reports whether the session may be started at now.
// Online sessions open for the whole scheduled calendar day; in-person
// sessions open once the grace period after the scheduled time has passed.
func (p Policy) CanStart(c Consultation, now time.Time) bool {
	if c.Status != StatusAccepted || c.ScheduledAt == nil || c.Session() != SessionNotStarted {
		return false
	}

	if c.Mode == ModeOnline {
		return sameDay(now.In(p.location()), c.ScheduledAt.In(p.location()))
	}
	return !now.Before(c.ScheduledAt.Add(p.grace()))
}

// CanEnd reports whether a running session may be ended
func (p Policy) CanEnd(c Consultation) bool {
	return c.Phase() == PhaseInSession
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Apply is the single transition function for consultations.
// It returns the consultation after ev, or an error and the input unchanged.
func (p Policy) Apply(c Consultation, ev Event, now time.Time) (Consultation, error) {
	switch e := ev.(type) {
	case Accept:
		return p.accept(c, e, now)
	case Decline:
		return p.decline(c, e)
	case Start:
		return p.start(c, now)
	case End:
		return p.end(c, now)
	default:
		return c, apperrors.NewBadRequestError(fmt.Sprintf("unsupported consultation event %T", ev))
	}
}

func invalidTransition(c Consultation, ev Event) error {
	return apperrors.NewCustomError(
		apperrors.ErrInvalidTransition,
		fmt.Sprintf("cannot %s a consultation in %s state", ev.eventName(), c.Phase()),
	).WithDetails(map[string]any{"status": string(c.Status), "sessionStatus": string(c.Session())})
}

func (p Policy) accept(c Consultation, e Accept, now time.Time) (Consultation, error) {
	mode, err := ParseMode(e.MeetingType)
	if err != nil {
		return c, err
	}
	location := strings.TrimSpace(e.Location)
	if mode == ModeInPerson && location == "" {
		return c, apperrors.NewValidationError("location", "location is required for in-person consultations")
	}
	if e.ScheduledAt.IsZero() {
		return c, apperrors.NewValidationError("scheduledDateTime", "scheduled date and time is required")
	}
	if c.Phase() != PhasePending {
		return c, invalidTransition(c, e)
	}

	next := c
	scheduled := e.ScheduledAt
	accepted := now
	next.Status = StatusAccepted
	next.SessionStatus = SessionNotStarted
	next.Mode = mode
	next.ScheduledAt = &scheduled
	next.LecturerNotes = strings.TrimSpace(e.Notes)
	next.AcceptedAt = &accepted
	next.Location = ""
	if mode == ModeInPerson {
		next.Location = location
	}
	return next, nil
}

func (p Policy) decline(c Consultation, e Decline) (Consultation, error) {
	if c.Phase() != PhasePending {
		return c, invalidTransition(c, e)
	}
	next := c
	next.Status = StatusDeclined
	next.DeclineReason = strings.TrimSpace(e.Reason)
	return next, nil
}

func (p Policy) start(c Consultation, now time.Time) (Consultation, error) {
	if c.Phase() != PhaseScheduled {
		return c, invalidTransition(c, Start{})
	}
	if !p.CanStart(c, now) {
		return c, apperrors.NewCustomError(apperrors.ErrSessionNotStartable, "the session cannot be started yet").
			WithDetails(map[string]any{"mode": string(c.Mode), "scheduledDateTime": c.ScheduledAt})
	}
	next := c
	started := now
	next.Status = StatusStarted
	next.SessionStatus = SessionStarted
	next.StartedAt = &started
	return next, nil
}

func (p Policy) end(c Consultation, now time.Time) (Consultation, error) {
	if !p.CanEnd(c) {
		return c, invalidTransition(c, End{})
	}
	next := c
	ended := now
	next.Status = StatusEnded
	next.SessionStatus = SessionEnded
	next.EndedAt = &ended
	return next, nil
}
