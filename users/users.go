package users

import (
	"strings"

	"github.com/jrsteele09/go-collaborate/collaborate"
	apperrors "github.com/jrsteele09/go-collaborate/internal/errors"
	"github.com/jrsteele09/go-collaborate/internal/utils"
)

// Name is a profile name entered by the user.
type Name struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// User is a local account. AccountName is the stable identifier shared with
// Collaborate as the user's external id.
type User struct {
	ID          string `json:"id,omitempty"`           // Unique identifier for the user
	AccountName string `json:"account_name,omitempty"` // Login name, sent as extId
	Email       string `json:"email,omitempty"`
	Profile     *Name  `json:"profile,omitempty"` // Optional profile name, preferred over directory fields

	// Directory (LDAP) attributes
	PreferredName string `json:"preferred_name,omitempty"`
	GivenName     string `json:"given_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
}

// Validate checks the fields needed to mirror the user in Collaborate.
func (u *User) Validate() error {
	if strings.TrimSpace(u.AccountName) == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "user account name is required")
	}
	return nil
}

// ExtID is the external id the vendor knows this user by.
func (u *User) ExtID() string {
	return u.AccountName
}

// CollaborateProfile returns the fields used when the vendor user has to be
// created.
func (u *User) CollaborateProfile() collaborate.Profile {
	p := collaborate.Profile{
		Email:             u.Email,
		PreferredName:     u.PreferredName,
		GivenName:         u.GivenName,
		DirectoryLastName: u.LastName,
	}
	if u.Profile != nil {
		p.Name = utils.Ptr(collaborate.PersonName{FirstName: u.Profile.FirstName, LastName: u.Profile.LastName})
	}
	return p
}
