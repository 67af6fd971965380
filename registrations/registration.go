package registrations

import (
	"time"

	apperrors "github.com/jrsteele09/go-collaborate/internal/errors"
)

type Status string

const (
	StatusAttending          Status = "attending"
	StatusAttended           Status = "attended"
	StatusCancelled          Status = "cancelled"
	StatusSystemCancellation Status = "system_cancellation"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAttending, StatusAttended, StatusCancelled, StatusSystemCancellation:
		return true
	}
	return false
}

// Cancelled reports whether s withdraws the student from the session.
func (s Status) Cancelled() bool {
	return s == StatusCancelled || s == StatusSystemCancellation
}

// Registration records one student's place on one session.
type Registration struct {
	ID        string    `json:"id,omitempty"`
	SessionID string    `json:"session_id"` // Local session id
	StudentID string    `json:"student_id"` // Local user id
	Status    Status    `json:"status"`
	Created   time.Time `json:"created"`
	Changed   time.Time `json:"changed"`
}

func (r *Registration) Validate() error {
	switch {
	case r.SessionID == "":
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "registration session id is required")
	case r.StudentID == "":
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "registration student id is required")
	case !r.Status.Valid():
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "unknown registration status %q", r.Status)
	}
	return nil
}

// JoinLink is the personal session link of an attending student. Active is
// false until the session's early-join window opens.
type JoinLink struct {
	URL    string `json:"url"`
	Active bool   `json:"active"`
}
