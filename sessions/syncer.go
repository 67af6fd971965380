package sessions

import (
	"context"
	"net/http"
	"time"

	"github.com/jrsteele09/go-collaborate/collaborate"
	apperrors "github.com/jrsteele09/go-collaborate/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Collaborate is the part of the vendor client the syncer drives.
type Collaborate interface {
	CreateSession(ctx context.Context, d collaborate.SessionDescriptor) (*collaborate.SessionDescriptor, error)
	UpdateSession(ctx context.Context, sessionID string, d collaborate.SessionDescriptor) (*collaborate.SessionDescriptor, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// Syncer keeps local session records and their Collaborate counterparts in
// step.
type Syncer struct {
	repo    Repo
	remote  Collaborate
	nowFunc func() time.Time
	logger  zerolog.Logger
}

type SyncerOption func(*Syncer)

func WithNowFunc(now func() time.Time) SyncerOption {
	return func(s *Syncer) {
		s.nowFunc = now
	}
}

func WithLogger(logger zerolog.Logger) SyncerOption {
	return func(s *Syncer) {
		s.logger = logger
	}
}

func NewSyncer(repo Repo, remote Collaborate, opts ...SyncerOption) *Syncer {
	s := &Syncer{
		repo:    repo,
		remote:  remote,
		nowFunc: time.Now,
		logger:  log.Logger.With().Str("component", "sessions").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Syncer) Get(ctx context.Context, id string) (*Session, error) {
	return s.repo.Get(ctx, id)
}

// Save stores the session and creates or updates it in Collaborate. The local
// record is kept even when the vendor call fails, in which case the vendor
// error is returned and the session stays unsynced (or stale).
func (s *Syncer) Save(ctx context.Context, session *Session) error {
	if err := session.Validate(); err != nil {
		return err
	}

	now := s.nowFunc()
	if session.Created.IsZero() {
		session.Created = now
	}
	session.Changed = now
	if err := s.repo.Upsert(ctx, session); err != nil {
		return err
	}

	if !session.Synced() {
		created, err := s.remote.CreateSession(ctx, session.Descriptor())
		if err != nil {
			s.logger.Error().Err(err).Str("id", session.ID).Msg("Unable to create Collaborate session")
			return err
		}
		session.SessionID = created.ID
		session.GuestURL = created.GuestURL
		s.logger.Info().Str("id", session.ID).Str("session_id", created.ID).Msg("Collaborate session created")
		return s.repo.Upsert(ctx, session)
	}

	updated, err := s.remote.UpdateSession(ctx, session.SessionID, session.Descriptor())
	if err != nil {
		s.logger.Error().Err(err).Str("id", session.ID).Str("session_id", session.SessionID).Msg("Unable to update Collaborate session")
		return err
	}
	if updated.GuestURL != "" && updated.GuestURL != session.GuestURL {
		session.GuestURL = updated.GuestURL
		return s.repo.Upsert(ctx, session)
	}
	return nil
}

// Delete removes the session from Collaborate, when it was synced, and then
// locally. A session the vendor no longer has is removed locally as well.
func (s *Syncer) Delete(ctx context.Context, id string) error {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if session.Synced() {
		err := s.remote.DeleteSession(ctx, session.SessionID)
		if err != nil && collaborate.StatusCode(err) != http.StatusNotFound {
			s.logger.Error().Err(err).Str("id", id).Str("session_id", session.SessionID).Msg("Unable to delete Collaborate session")
			return err
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	return nil
}
