package server

// Route path constants
const (
	RouteHealth = "/health"

	// Auth Routes - provider handshake & logout
	RouteProviderLogin    = "/auth/provider/login"
	RouteProviderCallback = "/auth/provider/callback"
	RouteAuthLogout       = "/auth/logout"

	// Session Routes
	RouteSession = "/session"
	RouteMe      = "/me"
)
