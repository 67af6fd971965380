package collaborate

import (
	"context"
	"net/http"
	"net/url"

	apperrors "github.com/jrsteele09/go-collaborate/internal/errors"
)

// EnrolUser enrols the user identified by extID on a session, creating the
// vendor user first if needed. An existing enrolment is returned unchanged,
// so enrolling twice issues a single create.
func (c *Client) EnrolUser(ctx context.Context, sessionID string, role RoleType, extID string, profile Profile) (*Enrolment, error) {
	if sessionID == "" {
		c.logger.Error().Str("ext_id", extID).Msg("Cannot enrol user without a session id")
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "enrol user: missing session id")
	}
	if !role.Valid() {
		c.logger.Error().Str("role", string(role)).Msg("Cannot enrol user with an unknown role")
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "enrol user: invalid role %q", role)
	}

	user, err := c.FindOrCreateUser(ctx, extID, profile)
	if err != nil {
		return nil, err
	}

	existing, err := c.enrolmentFor(ctx, sessionID, user.ID)
	if err == nil {
		return existing, nil
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	enrolment := Enrolment{
		UserID:            user.ID,
		LaunchingRole:     role,
		EditingPermission: role.EditingPermission(),
	}
	var created Enrolment
	if err := c.Do(ctx, http.MethodPost, enrolmentsPath(sessionID), enrolment, nil, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetEnrolment returns the user's enrolment on a session.
func (c *Client) GetEnrolment(ctx context.Context, sessionID, extID string) (*Enrolment, error) {
	if sessionID == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "get enrolment: missing session id")
	}
	user, err := c.FindUser(ctx, extID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			c.logger.Info().Str("ext_id", extID).Msg("No enrolment: no matching Collaborate user")
		}
		return nil, err
	}
	return c.enrolmentFor(ctx, sessionID, user.ID)
}

// DeleteEnrolment removes the user's enrolment from a session. ErrNotFound is
// returned, without a DELETE, when there is nothing to remove.
func (c *Client) DeleteEnrolment(ctx context.Context, sessionID, extID string) error {
	enrolment, err := c.GetEnrolment(ctx, sessionID, extID)
	if err != nil {
		return err
	}
	if enrolment.ID == "" {
		return apperrors.Wrapf(apperrors.ErrNotFound, "enrolment for %s has no id", extID)
	}
	return c.Do(ctx, http.MethodDelete, enrolmentsPath(sessionID)+"/"+url.PathEscape(enrolment.ID), nil, nil, nil)
}

func (c *Client) enrolmentFor(ctx context.Context, sessionID, userID string) (*Enrolment, error) {
	var rs ResultSet[Enrolment]
	if err := c.Do(ctx, http.MethodGet, enrolmentsPath(sessionID), nil, url.Values{"userId": {userID}}, &rs); err != nil {
		return nil, err
	}
	if len(rs.Results) == 0 {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "enrolment of user %s on session %s", userID, sessionID)
	}
	return &rs.Results[0], nil
}

func enrolmentsPath(sessionID string) string {
	return sessionPath(sessionID) + "/enrollments"
}
