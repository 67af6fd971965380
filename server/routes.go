package server

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.StdMiddleware()...))

	s.RegisterRouteHandler("PUT "+RouteUser, ChainMiddleware(s.PutUserHandler(), s.APIMiddleware()...))

	s.RegisterRouteHandler("POST "+RouteSessions, ChainMiddleware(s.CreateSessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("PUT "+RouteSession, ChainMiddleware(s.UpdateSessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteSession, ChainMiddleware(s.DeleteSessionHandler(), s.APIMiddleware()...))

	s.RegisterRouteHandler("POST "+RouteRegistrations, ChainMiddleware(s.CreateRegistrationHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteRegistrationStatus, ChainMiddleware(s.RegistrationStatusHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteRegistrationAttended, ChainMiddleware(s.RegistrationAttendedHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteRegistrationJoin, ChainMiddleware(s.RegistrationJoinHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteRegistrationRecording, ChainMiddleware(s.RegistrationRecordingHandler(), s.APIMiddleware()...))

	// Browsers preflight the API routes
	s.RegisterRouteHandler("OPTIONS /api/", ChainMiddleware(s.PreflightHandler(), s.StdMiddleware(s.CorsMiddleware)...))
}
