// Package vendorfake is an in-process fake of the Collaborate REST API for
// tests. It issues real bearer tokens against signed assertions, keeps
// sessions, users, enrolments and recordings in memory and records every call.
package vendorfake

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-collaborate/collaborate"
	"github.com/rs/zerolog"
)

const (
	Key    = "fake-app-key"
	Secret = "fake-app-secret"
)

// Call is one request received by the fake.
type Call struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

type Vendor struct {
	server *httptest.Server

	lock          sync.Mutex
	expiresIn     int64
	calls         []Call
	tokens        map[string]struct{}
	sessions      map[string]*collaborate.SessionDescriptor
	users         map[string]*collaborate.RemoteUser
	enrolments    map[string]map[string]*collaborate.Enrolment // session id -> enrolment id
	recordings    map[string][]collaborate.Recording           // ext id -> recordings
	recordingURLs map[string]string
	failures      map[string]int // "METHOD /path" -> status
}

// New starts a fake vendor that is closed when the test ends.
func New(t testing.TB) *Vendor {
	t.Helper()
	v := &Vendor{
		expiresIn:     3600,
		tokens:        make(map[string]struct{}),
		sessions:      make(map[string]*collaborate.SessionDescriptor),
		users:         make(map[string]*collaborate.RemoteUser),
		enrolments:    make(map[string]map[string]*collaborate.Enrolment),
		recordings:    make(map[string][]collaborate.Recording),
		recordingURLs: make(map[string]string),
		failures:      make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", v.token)
	mux.HandleFunc("POST /sessions", v.authorised(v.createSession))
	mux.HandleFunc("PATCH /sessions/{id}", v.authorised(v.updateSession))
	mux.HandleFunc("DELETE /sessions/{id}", v.authorised(v.deleteSession))
	mux.HandleFunc("GET /sessions/{id}/enrollments", v.authorised(v.listEnrolments))
	mux.HandleFunc("POST /sessions/{id}/enrollments", v.authorised(v.createEnrolment))
	mux.HandleFunc("DELETE /sessions/{id}/enrollments/{eid}", v.authorised(v.deleteEnrolment))
	mux.HandleFunc("GET /users", v.authorised(v.listUsers))
	mux.HandleFunc("POST /users", v.authorised(v.createUser))
	mux.HandleFunc("GET /recordings", v.authorised(v.listRecordings))
	mux.HandleFunc("GET /recordings/{id}/url", v.authorised(v.recordingURL))

	v.server = httptest.NewServer(v.record(mux))
	t.Cleanup(v.server.Close)
	return v
}

func (v *Vendor) URL() string {
	return v.server.URL
}

// Client returns a client configured for the fake with logging disabled.
// Options are applied after the defaults.
func (v *Vendor) Client(options ...collaborate.Option) *collaborate.Client {
	opts := []collaborate.Option{
		collaborate.WithHTTPClient(v.server.Client()),
		collaborate.WithLogger(zerolog.Nop()),
	}
	return collaborate.New(v.server.URL, Key, Secret, append(opts, options...)...)
}

// SetTokenExpiry sets expires_in, in seconds, for issued tokens.
func (v *Vendor) SetTokenExpiry(seconds int64) {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.expiresIn = seconds
}

// Fail makes every request matching method and exact path answer status.
func (v *Vendor) Fail(method, path string, status int) {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.failures[method+" "+path] = status
}

// Calls returns a copy of the received requests in arrival order.
func (v *Vendor) Calls() []Call {
	v.lock.Lock()
	defer v.lock.Unlock()
	return append([]Call(nil), v.calls...)
}

// Count returns how many requests matched method and exact path.
func (v *Vendor) Count(method, path string) int {
	n := 0
	for _, c := range v.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// CountMethod returns how many requests, token requests excluded, used method.
func (v *Vendor) CountMethod(method string) int {
	n := 0
	for _, c := range v.Calls() {
		if c.Method == method && c.Path != "/token" {
			n++
		}
	}
	return n
}

// AddUser stores a vendor user, assigning an id when empty.
func (v *Vendor) AddUser(u collaborate.RemoteUser) collaborate.RemoteUser {
	v.lock.Lock()
	defer v.lock.Unlock()
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	v.users[u.ID] = &u
	return u
}

// AddSession stores a session, assigning an id when empty.
func (v *Vendor) AddSession(d collaborate.SessionDescriptor) collaborate.SessionDescriptor {
	v.lock.Lock()
	defer v.lock.Unlock()
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	v.sessions[d.ID] = &d
	return d
}

// AddRecording makes a recording visible to the user with extID.
func (v *Vendor) AddRecording(extID string, r collaborate.Recording, link string) collaborate.Recording {
	v.lock.Lock()
	defer v.lock.Unlock()
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	v.recordings[extID] = append(v.recordings[extID], r)
	v.recordingURLs[r.ID] = link
	return r
}

func (v *Vendor) Session(id string) (collaborate.SessionDescriptor, bool) {
	v.lock.Lock()
	defer v.lock.Unlock()
	s, ok := v.sessions[id]
	if !ok {
		return collaborate.SessionDescriptor{}, false
	}
	return *s, true
}

func (v *Vendor) Enrolments(sessionID string) []collaborate.Enrolment {
	v.lock.Lock()
	defer v.lock.Unlock()
	var out []collaborate.Enrolment
	for _, e := range v.enrolments[sessionID] {
		out = append(out, *e)
	}
	return out
}

func (v *Vendor) UserByExtID(extID string) (collaborate.RemoteUser, bool) {
	v.lock.Lock()
	defer v.lock.Unlock()
	u := v.userByExtID(extID)
	if u == nil {
		return collaborate.RemoteUser{}, false
	}
	return *u, true
}

func (v *Vendor) userByExtID(extID string) *collaborate.RemoteUser {
	for _, u := range v.users {
		if u.ExtID == extID {
			return u
		}
	}
	return nil
}

func (v *Vendor) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		v.lock.Lock()
		v.calls = append(v.calls, Call{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: body})
		status, fail := v.failures[r.Method+" "+r.URL.Path]
		v.lock.Unlock()

		if fail {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (v *Vendor) authorised(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		v.lock.Lock()
		_, known := v.tokens[tok]
		v.lock.Unlock()
		if !ok || !known {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		if r.Header.Get("Accept") != "application/json" {
			http.Error(w, "not acceptable", http.StatusNotAcceptable)
			return
		}
		next(w, r)
	}
}

func (v *Vendor) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("grant_type") != "urn:ietf:params:oauth:grant-type:jwt-bearer" {
		http.Error(w, "unsupported_grant_type", http.StatusBadRequest)
		return
	}
	parsed, err := jwt.Parse(r.PostForm.Get("assertion"), func(*jwt.Token) (any, error) {
		return []byte(Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil || !parsed.Valid {
		http.Error(w, "invalid_grant", http.StatusUnauthorized)
		return
	}
	// Test clocks are arbitrary, so exp is not checked against wall time.
	if iss, _ := parsed.Claims.GetIssuer(); iss != Key {
		http.Error(w, "invalid_grant", http.StatusUnauthorized)
		return
	}

	tok := "tok-" + uuid.New().String()
	v.lock.Lock()
	v.tokens[tok] = struct{}{}
	expiresIn := v.expiresIn
	v.lock.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": tok,
		"token_type":   "Bearer",
		"expires_in":   expiresIn,
	})
}

func (v *Vendor) createSession(w http.ResponseWriter, r *http.Request) {
	var d collaborate.SessionDescriptor
	if !decode(w, r, &d) {
		return
	}
	d.ID = uuid.New().String()
	d.GuestURL = v.server.URL + "/guest/" + d.ID
	v.lock.Lock()
	v.sessions[d.ID] = &d
	v.lock.Unlock()
	writeJSON(w, http.StatusOK, d)
}

func (v *Vendor) updateSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var d collaborate.SessionDescriptor
	if !decode(w, r, &d) {
		return
	}
	v.lock.Lock()
	existing, ok := v.sessions[id]
	if ok {
		d.ID = id
		d.GuestURL = existing.GuestURL
		v.sessions[id] = &d
	}
	v.lock.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (v *Vendor) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	v.lock.Lock()
	_, ok := v.sessions[id]
	delete(v.sessions, id)
	delete(v.enrolments, id)
	v.lock.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (v *Vendor) listEnrolments(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	userID := r.URL.Query().Get("userId")
	v.lock.Lock()
	results := []collaborate.Enrolment{}
	for _, e := range v.enrolments[id] {
		if userID == "" || e.UserID == userID {
			results = append(results, *e)
		}
	}
	v.lock.Unlock()
	writeJSON(w, http.StatusOK, collaborate.ResultSet[collaborate.Enrolment]{Size: len(results), Results: results})
}

func (v *Vendor) createEnrolment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var e collaborate.Enrolment
	if !decode(w, r, &e) {
		return
	}
	v.lock.Lock()
	defer v.lock.Unlock()
	if _, ok := v.sessions[id]; !ok {
		http.NotFound(w, r)
		return
	}
	e.ID = uuid.New().String()
	e.PermanentURL = v.server.URL + "/join/" + id + "/" + e.ID
	if v.enrolments[id] == nil {
		v.enrolments[id] = make(map[string]*collaborate.Enrolment)
	}
	v.enrolments[id][e.ID] = &e
	writeJSON(w, http.StatusOK, e)
}

func (v *Vendor) deleteEnrolment(w http.ResponseWriter, r *http.Request) {
	id, eid := r.PathValue("id"), r.PathValue("eid")
	v.lock.Lock()
	_, ok := v.enrolments[id][eid]
	delete(v.enrolments[id], eid)
	v.lock.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (v *Vendor) listUsers(w http.ResponseWriter, r *http.Request) {
	extID := r.URL.Query().Get("extId")
	v.lock.Lock()
	results := []collaborate.RemoteUser{}
	if u := v.userByExtID(extID); u != nil {
		results = append(results, *u)
	}
	v.lock.Unlock()
	writeJSON(w, http.StatusOK, collaborate.ResultSet[collaborate.RemoteUser]{Size: len(results), Results: results})
}

func (v *Vendor) createUser(w http.ResponseWriter, r *http.Request) {
	var u collaborate.RemoteUser
	if !decode(w, r, &u) {
		return
	}
	u.ID = uuid.New().String()
	v.lock.Lock()
	v.users[u.ID] = &u
	v.lock.Unlock()
	writeJSON(w, http.StatusOK, u)
}

func (v *Vendor) listRecordings(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	v.lock.Lock()
	results := []collaborate.Recording{}
	if u, ok := v.users[userID]; ok {
		results = append(results, v.recordings[u.ExtID]...)
	}
	v.lock.Unlock()
	writeJSON(w, http.StatusOK, collaborate.ResultSet[collaborate.Recording]{Size: len(results), Results: results})
}

func (v *Vendor) recordingURL(w http.ResponseWriter, r *http.Request) {
	v.lock.Lock()
	link, ok := v.recordingURLs[r.PathValue("id")]
	v.lock.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, collaborate.RecordingURL{URL: link})
}

func decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "unsupported media type", http.StatusUnsupportedMediaType)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
