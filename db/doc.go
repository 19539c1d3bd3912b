// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db creates the relational schema for the voting service.

Two dialects are supported, selected by the configured database type:
PostgreSQL for deployments and SQLite (modernc.org/sqlite, pure Go) for
development and tests.

Election ids are 1-based autoincrement in both dialects. This matters:
the on-chain contract numbers elections from 0, and the chain package
maps a database id to its contract id by subtracting one.
*/
package db
