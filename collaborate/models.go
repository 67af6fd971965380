package collaborate

import "time"

// TimeLayout is the vendor's session date-time format. Times are UTC.
const TimeLayout = "2006-01-02T15:04:05"

// RecordingStartLayout is the format of Recording.SessionStartTime.
const RecordingStartLayout = "2006-01-02T15:04:05.000Z"

// RoleType is the launching role of an enrolment or the role given to guests.
type RoleType string

const (
	RoleParticipant RoleType = "participant"
	RolePresenter   RoleType = "presenter"
	RoleModerator   RoleType = "moderator"
)

// Valid reports whether r is a role the vendor accepts.
func (r RoleType) Valid() bool {
	switch r {
	case RoleParticipant, RolePresenter, RoleModerator:
		return true
	}
	return false
}

// EditingPermission derives the whiteboard/file editing permission for an
// enrolment from its launching role.
func (r RoleType) EditingPermission() string {
	if r == RoleModerator {
		return "writer"
	}
	return "reader"
}

// OccurrenceType is "S" for a single session and "P" for a perpetual room.
type OccurrenceType string

const (
	OccurrenceSingle    OccurrenceType = "S"
	OccurrencePerpetual OccurrenceType = "P"
)

// SessionDescriptor is the full set of session configuration fields sent on
// create and update. Read-only fields are populated from vendor responses.
type SessionDescriptor struct {
	ID       string `json:"id,omitempty"`       // Vendor-assigned session id (read-only)
	GuestURL string `json:"guestUrl,omitempty"` // Guest join link (read-only)

	Name                   string         `json:"name"`
	Description            string         `json:"description"`
	StartTime              string         `json:"startTime"`
	EndTime                string         `json:"endTime"`
	NoEndDate              bool           `json:"noEndDate"`
	CreatedTimezone        string         `json:"createdTimezone"`
	BoundaryTime           int            `json:"boundaryTime"` // Minutes before start that attendees may join
	ParticipantCanUseTools bool           `json:"participantCanUseTools"`
	OccurrenceType         OccurrenceType `json:"occurrenceType"`
	AllowInSessionInvitees bool           `json:"allowInSessionInvitees"`
	AllowGuest             bool           `json:"allowGuest"`
	GuestRole              RoleType       `json:"guestRole"`
	CanAnnotateWhiteboard  bool           `json:"canAnnotateWhiteboard"`
	CanDownloadRecording   bool           `json:"canDownloadRecording"`
	CanPostMessage         bool           `json:"canPostMessage"`
	CanShareAudio          bool           `json:"canShareAudio"`
	CanShareVideo          bool           `json:"canShareVideo"`
	MustBeSupervised       bool           `json:"mustBeSupervised"`
	OpenChair              bool           `json:"openChair"`
	RaiseHandOnEnter       bool           `json:"raiseHandOnEnter"`
	ShowProfile            bool           `json:"showProfile"`
	SessionExitURL         string         `json:"sessionExitUrl"`

	Created  string `json:"created,omitempty"`
	Modified string `json:"modified,omitempty"`
}

// SetSchedule formats start and end in the vendor layout.
func (d *SessionDescriptor) SetSchedule(start, end time.Time) {
	d.StartTime = start.UTC().Format(TimeLayout)
	d.EndTime = end.UTC().Format(TimeLayout)
}

// RemoteUser is a vendor user record, keyed locally by ExtID.
type RemoteUser struct {
	ID          string `json:"id,omitempty"`
	ExtID       string `json:"extId"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	AvatarURL   string `json:"avatarUrl"`
	Created     int64  `json:"created,omitempty"`  // Unix seconds
	Modified    int64  `json:"modified,omitempty"` // Unix seconds
}

// Enrolment binds one user to one session.
type Enrolment struct {
	ID                string   `json:"id,omitempty"`
	UserID            string   `json:"userId"`
	LaunchingRole     RoleType `json:"launchingRole"`
	EditingPermission string   `json:"editingPermission"`
	PermanentURL      string   `json:"permanentUrl,omitempty"`
}

// Recording is read-only from the client's point of view.
type Recording struct {
	ID               string `json:"id"`
	Name             string `json:"name,omitempty"`
	SessionStartTime string `json:"sessionStartTime"`
	Restricted       bool   `json:"restricted"`
	Status           string `json:"status"`
	Duration         int64  `json:"duration,omitempty"`
	Created          string `json:"created,omitempty"`
}

// RecordingStatusDone marks a recording that has finished processing.
const RecordingStatusDone = "DONE"

// RecordingURL is the response of /recordings/{id}/url.
type RecordingURL struct {
	URL string `json:"url"`
}

// ResultSet is the vendor's envelope for list responses.
type ResultSet[T any] struct {
	Size    int `json:"size,omitempty"`
	Results []T `json:"results"`
}

// PersonName is a first/last name pair.
type PersonName struct {
	FirstName string
	LastName  string
}

// Profile carries the local account fields used to create a vendor user. Name
// takes precedence; the directory fields are used when no profile name
// exists.
type Profile struct {
	Email string
	Name  *PersonName

	PreferredName     string // Directory preferred first name
	GivenName         string // Directory given name, used when PreferredName is empty
	DirectoryLastName string
}

// ResolvedName returns the first and last name to send to the vendor.
func (p Profile) ResolvedName() (first, last string) {
	if p.Name != nil {
		return p.Name.FirstName, p.Name.LastName
	}
	first = p.PreferredName
	if first == "" {
		first = p.GivenName
	}
	return first, p.DirectoryLastName
}
