package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteAuthLogin    = "/api/auth/login"
	RouteAuthCallback = "/api/auth/callback"
	RouteAuthLogout   = "/api/auth/logout"
	RouteAuthVerify   = "/api/auth/verify"
	RouteUser         = "/api/user"

	// Namespace Routes
	RouteFolders      = "/api/folders"
	RouteFolderRename = "/api/folders/rename"
	RouteFolderPath   = "/api/folders/{path...}"

	// Object Routes
	RouteMetadata = "/api/metadata/{key...}"
	RouteSearch   = "/api/search"
	RouteUpload   = "/api/upload"

	// Public Routes
	RouteHealth  = "/api/public/health"
	RouteMetrics = "/metrics"
)
