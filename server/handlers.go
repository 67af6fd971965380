package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/jrsteele09/go-collaborate/internal/errors"
	"github.com/jrsteele09/go-collaborate/registrations"
	"github.com/jrsteele09/go-collaborate/sessions"
	"github.com/jrsteele09/go-collaborate/users"
	"github.com/rs/zerolog"
)

const contentTypeJSON = "application/json"

// EnrolmentFailedMessage is shown when a student could not be given a place
// in the Collaborate session.
const EnrolmentFailedMessage = "Unfortunately we could not create a Collaborate enrolment for you. Please contact academic support."

type statusRequest struct {
	Status registrations.Status `json:"status"`
}

type urlResponse struct {
	URL string `json:"url"`
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"app":    s.config.GetAppName(),
		})
	}
}

func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

// PutUserHandler creates or replaces a local account.
func (s *Server) PutUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var user users.User
		if !decodeJSON(w, r, &user) {
			return
		}
		user.ID = r.PathValue("id")
		if err := user.Validate(); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.services.Users.Upsert(r.Context(), &user); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *Server) CreateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessions.NewSession()
		if !decodeJSON(w, r, session) {
			return
		}
		session.ID = ""
		session.SessionID = ""
		session.GuestURL = ""
		if err := s.services.Sessions.Save(r.Context(), session); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, session)
	}
}

// UpdateSessionHandler applies the request body over the stored session. The
// Collaborate id and guest link cannot be changed by callers.
func (s *Server) UpdateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		existing, err := s.services.Sessions.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		session := *existing
		if !decodeJSON(w, r, &session) {
			return
		}
		session.ID = existing.ID
		session.SessionID = existing.SessionID
		session.GuestURL = existing.GuestURL
		session.Created = existing.Created
		if err := s.services.Sessions.Save(r.Context(), &session); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}

func (s *Server) DeleteSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.services.Sessions.Delete(r.Context(), r.PathValue("id")); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) CreateRegistrationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reg registrations.Registration
		if !decodeJSON(w, r, &reg) {
			return
		}
		if err := s.services.Registrations.Create(r.Context(), &reg); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, reg)
	}
}

// RegistrationStatusHandler receives registration status changes from the
// booking form.
func (s *Server) RegistrationStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		reg, err := s.services.Registrations.UpdateStatus(r.Context(), r.PathValue("id"), req.Status)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, reg)
	}
}

// RegistrationAttendedHandler is called when the student launches the
// session.
func (s *Server) RegistrationAttendedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := r.URL.Query().Get("uid")
		if uid == "" {
			writeJSONError(w, "invalid_request", "uid is required", http.StatusBadRequest)
			return
		}
		reg, err := s.services.Registrations.MarkAttended(r.Context(), r.PathValue("id"), uid)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, reg)
	}
}

func (s *Server) RegistrationJoinHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		link, err := s.services.Registrations.JoinURL(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, link)
	}
}

func (s *Server) RegistrationRecordingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		link, err := s.services.Registrations.RecordingLink(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, urlResponse{URL: link})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeJSONError(w, "invalid_request", "malformed JSON body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes an error response
func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}

// writeError maps a service error onto a response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())
	switch {
	case apperrors.Is(err, apperrors.ErrEnrolmentFailed):
		logger.Error().Err(err).Msg("Collaborate enrolment failed")
		writeJSONError(w, "enrolment_failed", EnrolmentFailedMessage, http.StatusBadGateway)
	case apperrors.Is(err, apperrors.ErrNotFound):
		writeJSONError(w, "not_found", err.Error(), http.StatusNotFound)
	case apperrors.Is(err, apperrors.ErrInvalidRequest), apperrors.Is(err, apperrors.ErrInvalidTransition):
		writeJSONError(w, "invalid_request", err.Error(), http.StatusBadRequest)
	case apperrors.Is(err, apperrors.ErrTokenAcquisition), apperrors.Is(err, apperrors.ErrRemoteCall):
		logger.Error().Err(err).Msg("Collaborate call failed")
		writeJSONError(w, "upstream_error", "Collaborate is unavailable", http.StatusBadGateway)
	default:
		logger.Error().Err(err).Msg("Unhandled error")
		writeJSONError(w, "server_error", http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
