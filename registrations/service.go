package registrations

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/go-collaborate/collaborate"
	apperrors "github.com/jrsteele09/go-collaborate/internal/errors"
	"github.com/jrsteele09/go-collaborate/sessions"
	"github.com/jrsteele09/go-collaborate/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Collaborate is the part of the vendor client used for registrations.
type Collaborate interface {
	EnrolUser(ctx context.Context, sessionID string, role collaborate.RoleType, extID string, profile collaborate.Profile) (*collaborate.Enrolment, error)
	GetEnrolment(ctx context.Context, sessionID, extID string) (*collaborate.Enrolment, error)
	DeleteEnrolment(ctx context.Context, sessionID, extID string) error
	GetRecordings(ctx context.Context, extID string) ([]collaborate.Recording, error)
	GetRecordingLink(ctx context.Context, recordingID string) (string, error)
}

// Service applies registration changes to Collaborate enrolments.
type Service struct {
	repo     Repo
	sessions sessions.Repo
	users    users.UserRepo
	remote   Collaborate
	nowFunc  func() time.Time
	logger   zerolog.Logger
}

type ServiceOption func(*Service)

func WithNowFunc(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowFunc = now
	}
}

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(repo Repo, sessionRepo sessions.Repo, userRepo users.UserRepo, remote Collaborate, opts ...ServiceOption) *Service {
	s := &Service{
		repo:     repo,
		sessions: sessionRepo,
		users:    userRepo,
		remote:   remote,
		nowFunc:  time.Now,
		logger:   log.Logger.With().Str("component", "registrations").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Get(ctx context.Context, id string) (*Registration, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a new registration and applies its status. An empty status
// means attending.
func (s *Service) Create(ctx context.Context, reg *Registration) error {
	if reg.Status == "" {
		reg.Status = StatusAttending
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	if _, err := s.sessions.Get(ctx, reg.SessionID); err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, reg.StudentID); err != nil {
		return err
	}

	now := s.nowFunc()
	reg.ID = ""
	reg.Created = now
	reg.Changed = now
	if err := s.repo.Upsert(ctx, reg); err != nil {
		return err
	}
	return s.apply(ctx, reg)
}

// UpdateStatus persists a new status and then enrols or unenrols the student.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Registration, error) {
	if !status.Valid() {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "unknown registration status %q", status)
	}
	reg, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	reg.Status = status
	reg.Changed = s.nowFunc()
	if err := s.repo.Upsert(ctx, reg); err != nil {
		return nil, err
	}
	return reg, s.apply(ctx, reg)
}

// MarkAttended moves an attending registration to attended. Only the
// registered student can do so.
func (s *Service) MarkAttended(ctx context.Context, id, userID string) (*Registration, error) {
	reg, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg.Status != StatusAttending || reg.StudentID != userID {
		return nil, fmt.Errorf("%w: registration %s is %s", apperrors.ErrInvalidTransition, id, reg.Status)
	}
	reg.Status = StatusAttended
	reg.Changed = s.nowFunc()
	if err := s.repo.Upsert(ctx, reg); err != nil {
		s.logger.Error().Err(err).Str("registration_id", id).Str("user_id", userID).Msg("Error changing registration")
		return nil, err
	}
	return reg, nil
}

// JoinURL returns the student's personal join link. It is available to
// attending students until the session ends.
func (s *Service) JoinURL(ctx context.Context, id string) (*JoinLink, error) {
	reg, session, user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg.Status != StatusAttending {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "registration %s is %s", id, reg.Status)
	}
	now := s.nowFunc()
	if now.After(session.End) {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "session %s has ended", session.ID)
	}
	if !session.Synced() {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "session %s has no Collaborate session", session.ID)
	}

	enrolment, err := s.remote.GetEnrolment(ctx, session.SessionID, user.ExtID())
	if err != nil {
		return nil, err
	}
	if enrolment.PermanentURL == "" {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "enrolment %s has no permanent url", enrolment.ID)
	}
	opens := session.Start.Add(-time.Duration(session.BoundaryTime) * time.Minute)
	return &JoinLink{URL: enrolment.PermanentURL, Active: !now.Before(opens)}, nil
}

// RecordingLink returns the playback link of the recording for the occurrence
// the student attended.
func (s *Service) RecordingLink(ctx context.Context, id string) (string, error) {
	reg, session, user, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	if reg.Status != StatusAttended {
		return "", apperrors.Wrapf(apperrors.ErrInvalidRequest, "registration %s is %s", id, reg.Status)
	}

	recordings, err := s.remote.GetRecordings(ctx, user.ExtID())
	if err != nil {
		return "", err
	}
	rec, ok := collaborate.FindPlayableRecording(recordings, session.Start)
	if !ok {
		return "", apperrors.Wrapf(apperrors.ErrNotFound, "no playable recording for session %s", session.ID)
	}
	return s.remote.GetRecordingLink(ctx, rec.ID)
}

// apply makes the Collaborate enrolment match the registration status.
func (s *Service) apply(ctx context.Context, reg *Registration) error {
	if reg.Status != StatusAttending && !reg.Status.Cancelled() {
		return nil
	}

	session, err := s.sessions.Get(ctx, reg.SessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("registration_id", reg.ID).Msg("Could not load the registration's session")
		return s.enrolmentFailure(reg, err)
	}
	if !session.Synced() {
		s.logger.Debug().Str("registration_id", reg.ID).Str("session", session.ID).Msg("No Collaborate session set, nothing to do")
		return nil
	}
	user, err := s.users.GetByID(ctx, reg.StudentID)
	if err != nil {
		s.logger.Error().Err(err).Str("registration_id", reg.ID).Msg("Could not load the registration's student")
		return s.enrolmentFailure(reg, err)
	}

	if reg.Status == StatusAttending {
		enrolment, err := s.remote.EnrolUser(ctx, session.SessionID, session.ParticipantRole, user.ExtID(), user.CollaborateProfile())
		if err != nil {
			s.logger.Error().Err(err).Str("registration_id", reg.ID).Str("ext_id", user.ExtID()).Msg("Unable to create Collaborate enrolment")
			return s.enrolmentFailure(reg, err)
		}
		s.logger.Info().Str("registration_id", reg.ID).Str("enrolment_id", enrolment.ID).Msg("Collaborate enrolment created")
		return nil
	}

	err = s.remote.DeleteEnrolment(ctx, session.SessionID, user.ExtID())
	switch {
	case err == nil:
		s.logger.Info().Str("registration_id", reg.ID).Str("ext_id", user.ExtID()).Msg("Collaborate enrolment removed")
	case apperrors.Is(err, apperrors.ErrNotFound):
		s.logger.Info().Str("registration_id", reg.ID).Str("ext_id", user.ExtID()).Msg("No Collaborate enrolment to remove")
	default:
		s.logger.Error().Err(err).Str("registration_id", reg.ID).Str("ext_id", user.ExtID()).Msg("Unable to remove Collaborate enrolment")
		return err
	}
	return nil
}

func (s *Service) enrolmentFailure(reg *Registration, err error) error {
	if reg.Status == StatusAttending {
		return fmt.Errorf("%w: %w", apperrors.ErrEnrolmentFailed, err)
	}
	return err
}

func (s *Service) load(ctx context.Context, id string) (*Registration, *sessions.Session, *users.User, error) {
	reg, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	session, err := s.sessions.Get(ctx, reg.SessionID)
	if err != nil {
		return nil, nil, nil, err
	}
	user, err := s.users.GetByID(ctx, reg.StudentID)
	if err != nil {
		return nil, nil, nil, err
	}
	return reg, session, user, nil
}
