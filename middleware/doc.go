// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP cross-cutting helpers.

  - WithLogging: structured request/completion logging with request ids
  - RequireAuth: bearer-token guard; the wallet address lands in the
    request context (WalletFromContext)
  - JSONResponse / ErrorResponse / ParseJSONBody: JSON plumbing
  - CORS: permissive cross-origin handling for the SPA frontend
*/
package middleware
