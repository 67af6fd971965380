package collaborate_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-collaborate/collaborate"
	"github.com/jrsteele09/go-collaborate/collaborate/vendorfake"
	apperrors "github.com/jrsteele09/go-collaborate/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestClient_EnrolUserTwiceCreatesOnce(t *testing.T) {
	vendor := vendorfake.New(t)
	session := vendor.AddSession(testDescriptor())
	client := vendor.Client()
	ctx := context.Background()

	first, err := client.EnrolUser(ctx, session.ID, collaborate.RolePresenter, testExtID, testProfile())
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	require.NotEmpty(t, first.PermanentURL)

	second, err := client.EnrolUser(ctx, session.ID, collaborate.RolePresenter, testExtID, testProfile())
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, first.PermanentURL, second.PermanentURL)

	require.Equal(t, 1, vendor.Count(http.MethodPost, "/sessions/"+session.ID+"/enrollments"))
	require.Len(t, vendor.Enrolments(session.ID), 1)
}

func TestClient_EnrolUserEditingPermission(t *testing.T) {
	tests := []struct {
		role collaborate.RoleType
		want string
	}{
		{collaborate.RoleModerator, "writer"},
		{collaborate.RolePresenter, "reader"},
		{collaborate.RoleParticipant, "reader"},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			vendor := vendorfake.New(t)
			session := vendor.AddSession(testDescriptor())
			client := vendor.Client()

			enrolment, err := client.EnrolUser(context.Background(), session.ID, tt.role, testExtID, testProfile())
			require.NoError(t, err)
			require.Equal(t, tt.want, enrolment.EditingPermission)
			require.Equal(t, tt.role, enrolment.LaunchingRole)

			var sent map[string]any
			calls := vendor.Calls()
			require.NoError(t, json.Unmarshal(calls[len(calls)-1].Body, &sent))
			require.Equal(t, tt.want, sent["editingPermission"])
			require.Equal(t, string(tt.role), sent["launchingRole"])
		})
	}
}

func TestClient_EnrolUserInvalidRequests(t *testing.T) {
	vendor := vendorfake.New(t)
	client := vendor.Client()
	ctx := context.Background()

	_, err := client.EnrolUser(ctx, "session-1", "owner", testExtID, testProfile())
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)

	_, err = client.EnrolUser(ctx, "", collaborate.RolePresenter, testExtID, testProfile())
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)

	require.Empty(t, vendor.Calls())
}

func TestClient_EnrolUserRemoteFailure(t *testing.T) {
	vendor := vendorfake.New(t)
	session := vendor.AddSession(testDescriptor())
	vendor.Fail(http.MethodPost, "/sessions/"+session.ID+"/enrollments", http.StatusBadGateway)
	client := vendor.Client()

	_, err := client.EnrolUser(context.Background(), session.ID, collaborate.RolePresenter, testExtID, testProfile())
	require.ErrorIs(t, err, apperrors.ErrRemoteCall)
	require.Equal(t, http.StatusBadGateway, collaborate.StatusCode(err))
}

func TestClient_GetEnrolment(t *testing.T) {
	vendor := vendorfake.New(t)
	session := vendor.AddSession(testDescriptor())
	client := vendor.Client()
	ctx := context.Background()

	_, err := client.GetEnrolment(ctx, session.ID, "unknown-user")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = client.FindOrCreateUser(ctx, testExtID, testProfile())
	require.NoError(t, err)
	_, err = client.GetEnrolment(ctx, session.ID, testExtID)
	require.ErrorIs(t, err, apperrors.ErrNotFound, "user exists but is not enrolled")

	enrolled, err := client.EnrolUser(ctx, session.ID, collaborate.RoleParticipant, testExtID, testProfile())
	require.NoError(t, err)
	got, err := client.GetEnrolment(ctx, session.ID, testExtID)
	require.NoError(t, err)
	require.Equal(t, enrolled.ID, got.ID)
}

func TestClient_DeleteEnrolment(t *testing.T) {
	vendor := vendorfake.New(t)
	session := vendor.AddSession(testDescriptor())
	client := vendor.Client()
	ctx := context.Background()

	err := client.DeleteEnrolment(ctx, session.ID, testExtID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.Equal(t, 0, vendor.CountMethod(http.MethodDelete))

	enrolment, err := client.EnrolUser(ctx, session.ID, collaborate.RolePresenter, testExtID, testProfile())
	require.NoError(t, err)

	require.NoError(t, client.DeleteEnrolment(ctx, session.ID, testExtID))
	require.Equal(t, 1, vendor.Count(http.MethodDelete, "/sessions/"+session.ID+"/enrollments/"+enrolment.ID))
	require.Empty(t, vendor.Enrolments(session.ID))

	err = client.DeleteEnrolment(ctx, session.ID, testExtID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.Equal(t, 1, vendor.CountMethod(http.MethodDelete))
}
