// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cache is a TTL-scoped key/value store used to memoize read
results across a server session.

Each entry is one serialized record, {timestamp: epoch-ms, data: ...},
stored under a fixed key-prefix namespace. Freshness is decided at read
time: Load takes the TTL, so the same entry can be fresh for one caller
and stale for another, and a TTL of zero never expires by time.

The store never fails its caller. Backend errors on either path are
logged as warnings and degrade to cache-miss behavior; a broken cache
costs a re-fetch, not a request.

Two backends exist: an in-process map (default) and redis for sharing
the cache across instances.
*/
package cache
