// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package chain talks to the Voting smart contract.

Reads (getResults, electionCount) go through eth_call and never need a
key. Writes (createElection, vote) need PRIVATE_KEY configured; without
one the client stays read-only and write attempts report "skipped"
rather than failing, because chain submission is best-effort everywhere
in this system.

The contract numbers elections from 0; the database numbers them from 1.
ResolveElectionID owns that mapping and validates the id against
electionCount before use, so a missing on-chain election turns into
ErrNotOnChain instead of a contract revert.
*/
package chain
