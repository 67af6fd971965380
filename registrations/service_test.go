package registrations_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/go-collaborate/collaborate"
	"github.com/jrsteele09/go-collaborate/collaborate/vendorfake"
	apperrors "github.com/jrsteele09/go-collaborate/internal/errors"
	"github.com/jrsteele09/go-collaborate/registrations"
	fakeregistrationrepo "github.com/jrsteele09/go-collaborate/registrations/repofake"
	"github.com/jrsteele09/go-collaborate/sessions"
	fakesessionrepo "github.com/jrsteele09/go-collaborate/sessions/repofake"
	"github.com/jrsteele09/go-collaborate/users"
	fakeuserrepo "github.com/jrsteele09/go-collaborate/users/repofake"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var sessionStart = time.Date(2026, 11, 3, 14, 0, 0, 0, time.UTC)

type fixture struct {
	vendor      *vendorfake.Vendor
	service     *registrations.Service
	sessionRepo sessions.Repo
	session     *sessions.Session
	student     *users.User
	now         time.Time
}

func newFixture(t *testing.T, synced bool, opts ...func(*sessions.Session)) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		vendor:      vendorfake.New(t),
		sessionRepo: fakesessionrepo.NewFakeSessionRepo(),
		now:         sessionStart.Add(-24 * time.Hour),
	}
	userRepo := fakeuserrepo.NewFakeUserRepo()

	f.session = sessions.NewSession()
	f.session.Name = "Portfolio review"
	f.session.Start = sessionStart
	f.session.End = sessionStart.Add(time.Hour)
	for _, opt := range opts {
		opt(f.session)
	}
	if synced {
		remote := f.vendor.AddSession(f.session.Descriptor())
		f.session.SessionID = remote.ID
	}
	require.NoError(t, f.sessionRepo.Upsert(ctx, f.session))

	f.student = &users.User{
		AccountName: "ab123456",
		Email:       "ada@example.ac.uk",
		Profile:     &users.Name{FirstName: "Ada", LastName: "Student"},
	}
	require.NoError(t, userRepo.Upsert(ctx, f.student))

	f.service = registrations.NewService(
		fakeregistrationrepo.NewFakeRegistrationRepo(),
		f.sessionRepo,
		userRepo,
		f.vendor.Client(),
		registrations.WithNowFunc(func() time.Time { return f.now }),
		registrations.WithLogger(zerolog.Nop()),
	)
	return f
}

func (f *fixture) register(t *testing.T) *registrations.Registration {
	t.Helper()
	reg := &registrations.Registration{SessionID: f.session.ID, StudentID: f.student.ID}
	require.NoError(t, f.service.Create(context.Background(), reg))
	return reg
}

func TestService_CreateEnrolsStudent(t *testing.T) {
	f := newFixture(t, true)
	reg := f.register(t)
	require.NotEmpty(t, reg.ID)
	require.Equal(t, registrations.StatusAttending, reg.Status)

	enrolments := f.vendor.Enrolments(f.session.SessionID)
	require.Len(t, enrolments, 1)
	require.Equal(t, collaborate.RolePresenter, enrolments[0].LaunchingRole)
	require.Equal(t, "reader", enrolments[0].EditingPermission)

	remoteUser, ok := f.vendor.UserByExtID("ab123456")
	require.True(t, ok)
	require.Equal(t, "Ada Student", remoteUser.DisplayName)
	require.Equal(t, enrolments[0].UserID, remoteUser.ID)
}

func TestService_EnrolUsesParticipantRole(t *testing.T) {
	f := newFixture(t, true, func(s *sessions.Session) {
		s.ParticipantRole = collaborate.RoleModerator
	})
	f.register(t)

	enrolments := f.vendor.Enrolments(f.session.SessionID)
	require.Len(t, enrolments, 1)
	require.Equal(t, collaborate.RoleModerator, enrolments[0].LaunchingRole)
	require.Equal(t, "writer", enrolments[0].EditingPermission)
}

func TestService_CreateValidates(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	err := f.service.Create(ctx, &registrations.Registration{StudentID: f.student.ID})
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)

	err = f.service.Create(ctx, &registrations.Registration{SessionID: f.session.ID, StudentID: f.student.ID, Status: "maybe"})
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)

	err = f.service.Create(ctx, &registrations.Registration{SessionID: "missing", StudentID: f.student.ID})
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	err = f.service.Create(ctx, &registrations.Registration{SessionID: f.session.ID, StudentID: "missing"})
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.Empty(t, f.vendor.Calls())
}

func TestService_UnsyncedSessionDoesNothingRemote(t *testing.T) {
	f := newFixture(t, false)
	reg := f.register(t)

	_, err := f.service.UpdateStatus(context.Background(), reg.ID, registrations.StatusCancelled)
	require.NoError(t, err)
	require.Empty(t, f.vendor.Calls())
}

func TestService_EnrolmentFailure(t *testing.T) {
	f := newFixture(t, true)
	f.vendor.Fail(http.MethodPost, "/sessions/"+f.session.SessionID+"/enrollments", http.StatusInternalServerError)

	reg := &registrations.Registration{SessionID: f.session.ID, StudentID: f.student.ID}
	err := f.service.Create(context.Background(), reg)
	require.ErrorIs(t, err, apperrors.ErrEnrolmentFailed)
	require.ErrorIs(t, err, apperrors.ErrRemoteCall)

	stored, err := f.service.Get(context.Background(), reg.ID)
	require.NoError(t, err, "registration is stored even when enrolment fails")
	require.Equal(t, registrations.StatusAttending, stored.Status)
}

func TestService_CancellationRemovesEnrolment(t *testing.T) {
	for _, status := range []registrations.Status{registrations.StatusCancelled, registrations.StatusSystemCancellation} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t, true)
			reg := f.register(t)
			require.Len(t, f.vendor.Enrolments(f.session.SessionID), 1)

			updated, err := f.service.UpdateStatus(context.Background(), reg.ID, status)
			require.NoError(t, err)
			require.Equal(t, status, updated.Status)
			require.Empty(t, f.vendor.Enrolments(f.session.SessionID))
			require.Equal(t, 1, f.vendor.CountMethod(http.MethodDelete))
		})
	}
}

func TestService_CancellationWithoutEnrolmentIsNoop(t *testing.T) {
	f := newFixture(t, false)
	reg := f.register(t)

	remote := f.vendor.AddSession(f.session.Descriptor())
	f.session.SessionID = remote.ID
	require.NoError(t, f.sessionRepo.Upsert(context.Background(), f.session))

	_, err := f.service.UpdateStatus(context.Background(), reg.ID, registrations.StatusCancelled)
	require.NoError(t, err)
	require.Equal(t, 0, f.vendor.CountMethod(http.MethodDelete))
}

func TestService_UpdateStatusUnknown(t *testing.T) {
	f := newFixture(t, true)
	reg := f.register(t)

	_, err := f.service.UpdateStatus(context.Background(), reg.ID, "lost")
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)

	_, err = f.service.UpdateStatus(context.Background(), "missing", registrations.StatusAttending)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestService_MarkAttended(t *testing.T) {
	f := newFixture(t, true)
	reg := f.register(t)
	ctx := context.Background()

	_, err := f.service.MarkAttended(ctx, reg.ID, "someone-else")
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	updated, err := f.service.MarkAttended(ctx, reg.ID, f.student.ID)
	require.NoError(t, err)
	require.Equal(t, registrations.StatusAttended, updated.Status)

	_, err = f.service.MarkAttended(ctx, reg.ID, f.student.ID)
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition, "only attending registrations can be marked attended")
}

func TestService_JoinURL(t *testing.T) {
	f := newFixture(t, true)
	reg := f.register(t)
	ctx := context.Background()

	link, err := f.service.JoinURL(ctx, reg.ID)
	require.NoError(t, err)
	require.Equal(t, f.vendor.Enrolments(f.session.SessionID)[0].PermanentURL, link.URL)
	require.False(t, link.Active, "link activates 15 minutes before the start")

	f.now = sessionStart.Add(-15 * time.Minute)
	link, err = f.service.JoinURL(ctx, reg.ID)
	require.NoError(t, err)
	require.True(t, link.Active)

	f.now = sessionStart.Add(2 * time.Hour)
	_, err = f.service.JoinURL(ctx, reg.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestService_JoinURLRequiresAttending(t *testing.T) {
	f := newFixture(t, true)
	reg := f.register(t)
	_, err := f.service.UpdateStatus(context.Background(), reg.ID, registrations.StatusCancelled)
	require.NoError(t, err)

	_, err = f.service.JoinURL(context.Background(), reg.ID)
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)
}

func TestService_RecordingLink(t *testing.T) {
	f := newFixture(t, true)
	reg := f.register(t)
	ctx := context.Background()

	f.vendor.AddRecording("ab123456", collaborate.Recording{
		ID:               "rec-other",
		SessionStartTime: "2026-11-10T14:00:00.000Z",
		Status:           collaborate.RecordingStatusDone,
	}, "https://media.example.com/other")
	f.vendor.AddRecording("ab123456", collaborate.Recording{
		ID:               "rec-1",
		SessionStartTime: "2026-11-03T14:00:00.000Z",
		Status:           collaborate.RecordingStatusDone,
	}, "https://media.example.com/rec-1")

	_, err := f.service.RecordingLink(ctx, reg.ID)
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest, "recordings are for attended registrations")

	_, err = f.service.MarkAttended(ctx, reg.ID, f.student.ID)
	require.NoError(t, err)

	link, err := f.service.RecordingLink(ctx, reg.ID)
	require.NoError(t, err)
	require.Equal(t, "https://media.example.com/rec-1", link)
}

func TestService_RecordingLinkNoPlayableRecording(t *testing.T) {
	f := newFixture(t, true)
	reg := f.register(t)
	ctx := context.Background()
	_, err := f.service.MarkAttended(ctx, reg.ID, f.student.ID)
	require.NoError(t, err)

	f.vendor.AddRecording("ab123456", collaborate.Recording{
		SessionStartTime: "2026-11-03T14:00:00.000Z",
		Status:           collaborate.RecordingStatusDone,
		Restricted:       true,
	}, "https://media.example.com/restricted")

	_, err = f.service.RecordingLink(ctx, reg.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
