package collaborate

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/jrsteele09/go-collaborate/internal/errors"
)

// FindUser returns the vendor user whose external id is extID.
func (c *Client) FindUser(ctx context.Context, extID string) (*RemoteUser, error) {
	if extID == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "find user: missing external id")
	}
	var rs ResultSet[RemoteUser]
	if err := c.Do(ctx, http.MethodGet, "/users", nil, url.Values{"extId": {extID}}, &rs); err != nil {
		return nil, err
	}
	if len(rs.Results) == 0 {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "collaborate user %s", extID)
	}
	return &rs.Results[0], nil
}

// CreateUser creates a vendor user for extID from the profile.
func (c *Client) CreateUser(ctx context.Context, extID string, profile Profile) (*RemoteUser, error) {
	if extID == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "create user: missing external id")
	}
	first, last := profile.ResolvedName()
	now := c.nowFunc().Unix()
	user := RemoteUser{
		ExtID:       extID,
		FirstName:   first,
		LastName:    last,
		DisplayName: strings.TrimSpace(first + " " + last),
		Email:       profile.Email,
		Created:     now,
		Modified:    now,
	}
	var created RemoteUser
	if err := c.Do(ctx, http.MethodPost, "/users", user, nil, &created); err != nil {
		return nil, err
	}
	if created.ID == "" {
		return nil, apperrors.Wrapf(apperrors.ErrRemoteCall, "create user %s returned no id", extID)
	}
	return &created, nil
}

// FindOrCreateUser looks the user up by external id and creates it when the
// vendor has none. Two concurrent calls for a new extID may both create.
func (c *Client) FindOrCreateUser(ctx context.Context, extID string, profile Profile) (*RemoteUser, error) {
	user, err := c.FindUser(ctx, extID)
	if err == nil {
		return user, nil
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	return c.CreateUser(ctx, extID, profile)
}
