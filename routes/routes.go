// Package routes wires the gin router for the lookup API.
//
// api.go holds the /v1/* API routes and /healthz, web.go holds the
// informational root route and the overall SetupAllRoutes assembly.
package routes
