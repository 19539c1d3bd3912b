// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth implements wallet-based login.

A client proves control of a wallet by personal-signing the message
"Login nonce: <nonce>" in MetaMask; VerifySignature recovers the signer
from the EIP-191 hash and compares it (case-insensitively) to the
claimed address. On success the server issues an HS256 token with the
wallet address as subject, valid for one hour.
*/
package auth
