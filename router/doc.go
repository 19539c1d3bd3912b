// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router wires the HTTP routes.

All routes live under /api/v1. Everything except the health check and
the login pair requires a bearer token; RequireAuth wraps those
handlers inside the logging middleware.
*/
package router
