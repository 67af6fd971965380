package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-collaborate/collaborate"
	"github.com/jrsteele09/go-collaborate/collaborate/vendorfake"
	"github.com/jrsteele09/go-collaborate/internal/config"
	"github.com/jrsteele09/go-collaborate/registrations"
	fakeregistrationrepo "github.com/jrsteele09/go-collaborate/registrations/repofake"
	"github.com/jrsteele09/go-collaborate/server"
	"github.com/jrsteele09/go-collaborate/sessions"
	fakesessionrepo "github.com/jrsteele09/go-collaborate/sessions/repofake"
	fakeuserrepo "github.com/jrsteele09/go-collaborate/users/repofake"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const apiSecret = "test-api-secret"

type testServer struct {
	handler http.Handler
	vendor  *vendorfake.Vendor
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	t.Setenv("ENV", "TEST")
	t.Setenv("API_SECRET", apiSecret)
	t.Setenv("ALLOWED_ORIGINS", "https://events.example.ac.uk")

	vendor := vendorfake.New(t)
	client := vendor.Client()
	userRepo := fakeuserrepo.NewFakeUserRepo()
	sessionRepo := fakesessionrepo.NewFakeSessionRepo()

	syncer := sessions.NewSyncer(sessionRepo, client, sessions.WithLogger(zerolog.Nop()))
	service := registrations.NewService(
		fakeregistrationrepo.NewFakeRegistrationRepo(),
		sessionRepo,
		userRepo,
		client,
		registrations.WithLogger(zerolog.Nop()),
		registrations.WithNowFunc(func() time.Time { return time.Date(2026, 11, 3, 13, 50, 0, 0, time.UTC) }),
	)

	s := server.New(config.New(), server.Services{
		Users:         userRepo,
		Sessions:      syncer,
		Registrations: service,
	}, server.WithLogger(zerolog.Nop()))
	return &testServer{handler: s, vendor: vendor}
}

func (ts *testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Authorization", "Bearer "+apiSecret)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func sessionBody() map[string]any {
	return map[string]any{
		"name":  "Drop-in",
		"start": "2026-11-03T14:00:00Z",
		"end":   "2026-11-03T15:00:00Z",
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAPIRequiresSecret(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, ts.vendor.Calls())
}

func TestCorsPreflight(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/sessions", nil)
	req.Header.Set("Origin", "https://events.example.ac.uk")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://events.example.ac.uk", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/sessions", nil)
	req.Header.Set("Origin", "https://elsewhere.example.com")
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/sessions", sessionBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[sessions.Session](t, rec)
	require.NotEmpty(t, created.SessionID)
	require.Equal(t, "Europe/London", created.CreatedTimezone, "defaults apply to absent fields")

	rec = ts.do(t, http.MethodPut, "/api/sessions/"+created.ID, map[string]any{"name": "Renamed", "session_id": "hijack"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[sessions.Session](t, rec)
	require.Equal(t, created.SessionID, updated.SessionID)
	remote, ok := ts.vendor.Session(created.SessionID)
	require.True(t, ok)
	require.Equal(t, "Renamed", remote.Name)

	rec = ts.do(t, http.MethodDelete, "/api/sessions/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	_, ok = ts.vendor.Session(created.SessionID)
	require.False(t, ok)

	rec = ts.do(t, http.MethodDelete, "/api/sessions/"+created.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateSessionValidation(t *testing.T) {
	ts := newTestServer(t)
	body := sessionBody()
	body["boundary_time"] = 10

	rec := ts.do(t, http.MethodPost, "/api/sessions", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errBody := decodeBody[map[string]string](t, rec)
	require.Equal(t, "invalid_request", errBody["error"])

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(`{not json`))
	req.Header.Set("Authorization", "Bearer "+apiSecret)
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSessionVendorFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.vendor.Fail(http.MethodPost, "/sessions", http.StatusInternalServerError)

	rec := ts.do(t, http.MethodPost, "/api/sessions", sessionBody())
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, "upstream_error", decodeBody[map[string]string](t, rec)["error"])
}

func TestRegistrationFlow(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPut, "/api/users/u1", map[string]any{
		"account_name": "ab123456",
		"email":        "ada@example.ac.uk",
		"profile":      map[string]string{"first_name": "Ada", "last_name": "Student"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/sessions", sessionBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	session := decodeBody[sessions.Session](t, rec)

	rec = ts.do(t, http.MethodPost, "/api/registrations", map[string]any{
		"session_id": session.ID,
		"student_id": "u1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reg := decodeBody[registrations.Registration](t, rec)
	require.Len(t, ts.vendor.Enrolments(session.SessionID), 1)

	rec = ts.do(t, http.MethodGet, "/api/registrations/"+reg.ID+"/join", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	link := decodeBody[registrations.JoinLink](t, rec)
	require.NotEmpty(t, link.URL)
	require.True(t, link.Active)

	rec = ts.do(t, http.MethodPost, "/api/registrations/"+reg.ID+"/attended", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code, "uid is required")

	rec = ts.do(t, http.MethodPost, "/api/registrations/"+reg.ID+"/attended?uid=u2", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/registrations/"+reg.ID+"/attended?uid=u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, registrations.StatusAttended, decodeBody[registrations.Registration](t, rec).Status)

	rec = ts.do(t, http.MethodGet, "/api/registrations/"+reg.ID+"/recording", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	ts.vendor.AddRecording("ab123456", collaborate.Recording{
		SessionStartTime: "2026-11-03T14:00:00.000Z",
		Status:           collaborate.RecordingStatusDone,
	}, "https://media.example.com/rec")
	rec = ts.do(t, http.MethodGet, "/api/registrations/"+reg.ID+"/recording", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "https://media.example.com/rec", decodeBody[map[string]string](t, rec)["url"])

	rec = ts.do(t, http.MethodPost, "/api/registrations/"+reg.ID+"/status", map[string]string{"status": "cancelled"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, ts.vendor.Enrolments(session.SessionID))
}

func TestRegistrationEnrolmentFailureShowsSupportMessage(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPut, "/api/users/u1", map[string]any{"account_name": "ab123456"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodPost, "/api/sessions", sessionBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	session := decodeBody[sessions.Session](t, rec)

	ts.vendor.Fail(http.MethodPost, "/users", http.StatusInternalServerError)
	rec = ts.do(t, http.MethodPost, "/api/registrations", map[string]any{
		"session_id": session.ID,
		"student_id": "u1",
	})
	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	require.Equal(t, "enrolment_failed", body["error"])
	require.Equal(t, server.EnrolmentFailedMessage, body["error_description"])
}

func TestUnknownRegistration(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/api/registrations/nope/join", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/registrations/nope/status", map[string]string{"status": "attending"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}
