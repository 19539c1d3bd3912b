// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Votechain API.

# Handler Types

Each handler is a struct with its dependencies injected via a
constructor:

  - AuthHandler: login nonce and wallet-signature login
  - ElectionHandler: election listing and creation
  - VoteHandler: vote submission
  - ResultsHandler: election results and the audit status view

# Authentication

All election and vote operations require a bearer token issued by
POST /api/v1/auth/login; middleware.RequireAuth puts the wallet address
in the request context.

# Results Flow

GET /api/v1/elections/{id}/results goes through the aggregator: the
database tally is returned immediately with source="database" and
chain_syncing=true while the chain read runs in the background;
polling again after the sync lands returns the same tally with
source="blockchain". The deliberate showing of a database value while
the chain value is pending is surfaced to users through those two
fields, never hidden.

GET /api/v1/elections/{id}/results/status exposes the raw per-tier
entries (value, fetch time, age) for audit views.

# Vote Flow

POST /api/v1/vote enforces one vote per wallet per election (409 on
repeat), submits the vote to the contract when one is configured, then
records the row, publishes a vote event and invalidates the cached
results for that election so the next read re-tallies.
*/
package handlers
