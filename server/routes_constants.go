package server

// Route path constants
const (
	RouteHealth = "/healthz"

	RouteUser = "/api/users/{id}"

	RouteSessions = "/api/sessions"
	RouteSession  = "/api/sessions/{id}"

	RouteRegistrations         = "/api/registrations"
	RouteRegistrationStatus    = "/api/registrations/{id}/status"
	RouteRegistrationAttended  = "/api/registrations/{id}/attended"
	RouteRegistrationJoin      = "/api/registrations/{id}/join"
	RouteRegistrationRecording = "/api/registrations/{id}/recording"
)
