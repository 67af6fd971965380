package collaborate

import (
	"context"
	"net/http"
	"net/url"

	apperrors "github.com/jrsteele09/go-collaborate/internal/errors"
)

// CreateSession creates a session and returns the vendor's copy, including the
// new session id. Not idempotent: calling it twice creates two sessions.
func (c *Client) CreateSession(ctx context.Context, d SessionDescriptor) (*SessionDescriptor, error) {
	if err := validateDescriptor(d); err != nil {
		c.logger.Error().Err(err).Msg("Cannot create Collaborate session")
		return nil, err
	}
	var created SessionDescriptor
	if err := c.Do(ctx, http.MethodPost, "/sessions", writable(d), nil, &created); err != nil {
		return nil, err
	}
	if created.ID == "" {
		return nil, apperrors.Wrapf(apperrors.ErrRemoteCall, "create session returned no id")
	}
	return &created, nil
}

// UpdateSession replaces the configuration of an existing session.
func (c *Client) UpdateSession(ctx context.Context, sessionID string, d SessionDescriptor) (*SessionDescriptor, error) {
	if sessionID == "" {
		c.logger.Error().Msg("Cannot update Collaborate session without a session id")
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "update session: missing session id")
	}
	if err := validateDescriptor(d); err != nil {
		c.logger.Error().Err(err).Str("session_id", sessionID).Msg("Cannot update Collaborate session")
		return nil, err
	}
	updated := SessionDescriptor{ID: sessionID}
	if err := c.Do(ctx, http.MethodPatch, sessionPath(sessionID), writable(d), nil, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteSession removes a session.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		c.logger.Error().Msg("Cannot delete Collaborate session without a session id")
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "delete session: missing session id")
	}
	return c.Do(ctx, http.MethodDelete, sessionPath(sessionID), nil, nil, nil)
}

func sessionPath(sessionID string) string {
	return "/sessions/" + url.PathEscape(sessionID)
}

// writable strips the fields the vendor assigns.
func writable(d SessionDescriptor) SessionDescriptor {
	d.ID = ""
	d.GuestURL = ""
	d.Created = ""
	d.Modified = ""
	return d
}

func validateDescriptor(d SessionDescriptor) error {
	switch {
	case d.Name == "":
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "session name is required")
	case d.StartTime == "":
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "session start time is required")
	case d.GuestRole != "" && !d.GuestRole.Valid():
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "invalid guest role %q", d.GuestRole)
	}
	return nil
}
