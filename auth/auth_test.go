// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// signNonce produces a wallet-style personal signature (V as 27/28) for
// the login message, the way MetaMask would.
func signNonce(t *testing.T, nonce string) (wallet, signature string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	hash := accounts.TextHash([]byte(LoginMessage(nonce)))
	sig, err := crypto.Sign(hash, key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return crypto.PubkeyToAddress(key.PublicKey).Hex(), hexutil.Encode(sig)
}

func TestGenerateNonce(t *testing.T) {
	a, err := GenerateNonce()
	if err != nil {
		t.Fatalf("GenerateNonce: %v", err)
	}
	b, err := GenerateNonce()
	if err != nil {
		t.Fatalf("GenerateNonce: %v", err)
	}
	if len(a) != 32 {
		t.Errorf("nonce length = %d, want 32 hex chars", len(a))
	}
	if a == b {
		t.Error("two nonces must not collide")
	}
}

func TestVerifySignature(t *testing.T) {
	nonce := "deadbeef"
	wallet, sig := signNonce(t, nonce)

	if err := VerifySignature(wallet, sig, nonce); err != nil {
		t.Errorf("valid signature rejected: %v", err)
	}

	// Address comparison is case-insensitive
	if err := VerifySignature(strings.ToLower(wallet), sig, nonce); err != nil {
		t.Errorf("lowercased address rejected: %v", err)
	}

	if err := VerifySignature("0x0000000000000000000000000000000000000001", sig, nonce); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("wrong wallet accepted: %v", err)
	}
	if err := VerifySignature(wallet, sig, "other-nonce"); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("signature over a different nonce accepted: %v", err)
	}
	if err := VerifySignature(wallet, "0x1234", nonce); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("truncated signature accepted: %v", err)
	}
	if err := VerifySignature(wallet, "not-hex", nonce); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("non-hex signature accepted: %v", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	const wallet = "0xAbC0000000000000000000000000000000000001"
	const secret = "test-secret"

	token, err := IssueToken(wallet, secret, time.Now())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	got, err := VerifyToken(token, secret)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if got != wallet {
		t.Errorf("subject = %q, want %q", got, wallet)
	}
}

func TestVerifyTokenRejections(t *testing.T) {
	const secret = "test-secret"

	token, err := IssueToken("0x01", secret, time.Now())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := VerifyToken(token, "wrong-secret"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token with wrong secret accepted: %v", err)
	}
	if _, err := VerifyToken("not.a.token", secret); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token accepted: %v", err)
	}

	expired, err := IssueToken("0x01", secret, time.Now().Add(-2*TokenLifetime))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := VerifyToken(expired, secret); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token accepted: %v", err)
	}
}
