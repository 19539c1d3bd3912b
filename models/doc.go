// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the shared request, response and domain types for
the Votechain API.

The central type is ElectionResult: a tally for one election tagged with
the tier that produced it (SourceDatabase or SourceBlockchain). Results
are immutable values; refreshing a tally always produces a new
ElectionResult rather than mutating one in place.

BlockchainInfo appears in two roles: the outcome of submitting an
election or vote to the contract (submitted/skipped/error), and metadata
on a degraded chain read attached to a database-sourced result.
*/
package models
