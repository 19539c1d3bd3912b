// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store is the SQL persistence layer for elections, candidates,
users and votes.

It exists as its own package (rather than inline SQL in the handlers)
because the result provider reads elections and tallies outside of any
HTTP request, on behalf of the aggregator's background refreshes.

One rule matters for correctness: candidates keep their ballot order
via election_candidates.position, because the on-chain contract
identifies a candidate by index, not by id.
*/
package store
