// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Votechain API server.

Votechain is a blockchain voting demo: elections and votes live in a
relational database and are mirrored to a small Ethereum contract.
Election results are served from both sources: the database answer
immediately, upgraded to the chain-confirmed answer in the background.

# Starting the Server

The server reads configuration from flags, environment variables, or a
.env file:

	DATABASE_URL=votes.db SECRET_KEY=... go run .

With chain access:

	DATABASE_URL=votes.db SECRET_KEY=... \
	RPC_URL=http://localhost:8545 CONTRACT_ADDRESS=0x... go run .

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite path or PostgreSQL connection string
  - SECRET_KEY (-jwt-secret): token signing secret

Optional settings:

  - PORT (-p): server port (default: 5000)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - RPC_URL / CONTRACT_ADDRESS / CHAIN_ID: Voting contract access
  - PRIVATE_KEY / ACCOUNT_ADDRESS: chain transaction signing
  - REDIS_URL: share the result cache across instances
  - KAFKA_BROKERS / KAFKA_TOPIC: publish vote events
  - DB_RESULT_TTL / CHAIN_RESULT_TTL: result freshness in seconds

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (auth, elections, votes, results)
  - router: route definitions using Go 1.22+ routing
  - aggregator: database/chain result reconciliation
  - results: the two-tier result provider
  - cache: TTL cache store (memory or redis)
  - chain: Voting contract client
  - store: SQL persistence
  - event: vote event publishing
  - middleware: CORS, logging, auth guard, JSON helpers
  - models: request/response types
  - auth: wallet signature verification and tokens
  - db: schema creation
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
