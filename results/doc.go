// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package results produces election tallies from the two sources of
truth: the SQL database and the Voting contract.

The database tally joins the election's candidates in ballot order
against the vote counts and is always available. The chain tally is
attempted only when asked for, and any failure there (no contract
counterpart, RPC error) silently falls back to the database tally. The
Source field on the result records which tier actually answered, so
callers can tell a chain-confirmed tally from a fallback.
*/
package results
