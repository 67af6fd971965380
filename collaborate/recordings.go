package collaborate

import (
	"context"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/jrsteele09/go-collaborate/internal/errors"
)

// GetRecordings lists the recordings visible to the user identified by extID.
func (c *Client) GetRecordings(ctx context.Context, extID string) ([]Recording, error) {
	user, err := c.FindUser(ctx, extID)
	if err != nil {
		return nil, err
	}
	var rs ResultSet[Recording]
	if err := c.Do(ctx, http.MethodGet, "/recordings", nil, url.Values{"userId": {user.ID}}, &rs); err != nil {
		return nil, err
	}
	if len(rs.Results) == 0 {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "recordings for %s", extID)
	}
	return rs.Results, nil
}

// GetRecordingLink resolves the playback URL of a recording.
func (c *Client) GetRecordingLink(ctx context.Context, recordingID string) (string, error) {
	if recordingID == "" {
		return "", apperrors.Wrapf(apperrors.ErrInvalidRequest, "recording link: missing recording id")
	}
	var link RecordingURL
	if err := c.Do(ctx, http.MethodGet, "/recordings/"+url.PathEscape(recordingID)+"/url", nil, nil, &link); err != nil {
		return "", err
	}
	if link.URL == "" {
		return "", apperrors.Wrapf(apperrors.ErrNotFound, "recording %s has no url", recordingID)
	}
	return link.URL, nil
}

// FindPlayableRecording returns the first finished, unrestricted recording of
// the occurrence that started at start.
func FindPlayableRecording(recordings []Recording, start time.Time) (*Recording, bool) {
	want := start.UTC().Format(RecordingStartLayout)
	for i := range recordings {
		r := &recordings[i]
		if r.SessionStartTime == want && !r.Restricted && r.Status == RecordingStatusDone {
			return r, true
		}
	}
	return nil, false
}
