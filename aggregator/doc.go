// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package aggregator reconciles the two sources of truth for election
results: the relational database (fast, authoritative-but-potentially-
stale) and the on-chain contract (slow, authoritative-and-final).

# Behavior

FetchResult serves the database value immediately and starts a
background chain fetch; when the chain answer arrives tagged
source=blockchain it replaces the database value for that election.
A chain answer that degraded back to the database (the node was
unreachable, the election is not on chain yet) is discarded so the
chain slot never holds a false "chain-confirmed" value. Database fetch
failures propagate to the caller; chain fetch failures are recorded via
LastChainError and swallowed, because the database value is always an
acceptable fallback.

Each election's entry moves independently:

	Empty → DbLoading → DbReady → (30s) DbStale → DbLoading ...
	                  ↘ ChainLoading → ChainReady → (60s) ChainLoading ...

Once ChainReady is reached the database tier is never re-fetched for
that election; expiry of the chain value triggers a chain re-fetch.

# Concurrency

Concurrent FetchResult calls for one election issue at most one
database call (singleflight) and at most one chain call (an in-flight
flag under the mutex). The chain fetch runs on a context detached from
the caller's, so a consumer disconnecting does not abort the shared
upgrade. Invalidate bumps a per-election generation counter; a fetch
started before the invalidation finds the generation changed and its
result is dropped rather than resurrecting cleared state.

Results are also written through to a cache store, so a fresh session
can reuse values fetched by a previous one within their TTLs.
*/
package aggregator
