package sessions

import (
	"slices"
	"strings"
	"time"

	"github.com/jrsteele09/go-collaborate/collaborate"
	apperrors "github.com/jrsteele09/go-collaborate/internal/errors"
)

const DefaultTimezone = "Europe/London"

// BoundaryTimes are the allowed early-join windows, in minutes.
var BoundaryTimes = []int{0, 15, 30, 45, 60}

// Session is a locally managed Collaborate session. SessionID and GuestURL are
// filled in once the vendor has created it.
type Session struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`

	NoEndDate              bool                       `json:"no_end_date"`
	CreatedTimezone        string                     `json:"created_timezone"`
	BoundaryTime           int                        `json:"boundary_time"`
	ParticipantCanUseTools bool                       `json:"participant_can_use_tools"`
	OccurrenceType         collaborate.OccurrenceType `json:"occurrence_type"`
	AllowInSessionInvitees bool                       `json:"allow_in_session_invitees"`
	AllowGuest             bool                       `json:"allow_guest"`
	GuestRole              collaborate.RoleType       `json:"guest_role"`
	ParticipantRole        collaborate.RoleType       `json:"participant_role"` // Launching role given to registrants
	CanAnnotateWhiteboard  bool                       `json:"can_annotate_whiteboard"`
	CanDownloadRecording   bool                       `json:"can_download_recording"`
	CanPostMessage         bool                       `json:"can_post_message"`
	CanShareAudio          bool                       `json:"can_share_audio"`
	CanShareVideo          bool                       `json:"can_share_video"`
	MustBeSupervised       bool                       `json:"must_be_supervised"`
	OpenChair              bool                       `json:"open_chair"`
	RaiseHandOnEnter       bool                       `json:"raise_hand_on_enter"`
	ShowProfile            bool                       `json:"show_profile"`
	SessionExitURL         string                     `json:"session_exit_url"`

	SessionID string    `json:"session_id,omitempty"` // Collaborate session id
	GuestURL  string    `json:"guest_url,omitempty"`
	Created   time.Time `json:"created"`
	Changed   time.Time `json:"changed"`
}

// NewSession returns a session carrying the default settings. Decoding JSON
// into it keeps the defaults for absent fields.
func NewSession() *Session {
	return &Session{
		NoEndDate:              true,
		CreatedTimezone:        DefaultTimezone,
		BoundaryTime:           15,
		ParticipantCanUseTools: true,
		OccurrenceType:         collaborate.OccurrenceSingle,
		AllowInSessionInvitees: true,
		AllowGuest:             true,
		GuestRole:              collaborate.RolePresenter,
		ParticipantRole:        collaborate.RolePresenter,
		CanAnnotateWhiteboard:  true,
		CanDownloadRecording:   true,
		CanPostMessage:         true,
		CanShareAudio:          true,
		CanShareVideo:          true,
		MustBeSupervised:       true,
	}
}

func (s *Session) Validate() error {
	switch {
	case strings.TrimSpace(s.Name) == "":
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "session name is required")
	case s.Start.IsZero() || s.End.IsZero():
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "session start and end are required")
	case s.End.Before(s.Start):
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "session ends before it starts")
	case !slices.Contains(BoundaryTimes, s.BoundaryTime):
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "boundary time %d is not one of %v", s.BoundaryTime, BoundaryTimes)
	case s.OccurrenceType != collaborate.OccurrenceSingle && s.OccurrenceType != collaborate.OccurrencePerpetual:
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "unknown occurrence type %q", s.OccurrenceType)
	case !s.GuestRole.Valid():
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "unknown guest role %q", s.GuestRole)
	case !s.ParticipantRole.Valid():
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "unknown participant role %q", s.ParticipantRole)
	}
	return nil
}

// Descriptor maps the session onto the vendor's configuration fields.
func (s *Session) Descriptor() collaborate.SessionDescriptor {
	d := collaborate.SessionDescriptor{
		ID:                     s.SessionID,
		Name:                   s.Name,
		Description:            s.Description,
		NoEndDate:              s.NoEndDate,
		CreatedTimezone:        s.CreatedTimezone,
		BoundaryTime:           s.BoundaryTime,
		ParticipantCanUseTools: s.ParticipantCanUseTools,
		OccurrenceType:         s.OccurrenceType,
		AllowInSessionInvitees: s.AllowInSessionInvitees,
		AllowGuest:             s.AllowGuest,
		GuestRole:              s.GuestRole,
		CanAnnotateWhiteboard:  s.CanAnnotateWhiteboard,
		CanDownloadRecording:   s.CanDownloadRecording,
		CanPostMessage:         s.CanPostMessage,
		CanShareAudio:          s.CanShareAudio,
		CanShareVideo:          s.CanShareVideo,
		MustBeSupervised:       s.MustBeSupervised,
		OpenChair:              s.OpenChair,
		RaiseHandOnEnter:       s.RaiseHandOnEnter,
		ShowProfile:            s.ShowProfile,
		SessionExitURL:         s.SessionExitURL,
	}
	d.SetSchedule(s.Start, s.End)
	return d
}

// Synced reports whether the vendor knows this session.
func (s *Session) Synced() bool {
	return s.SessionID != ""
}
