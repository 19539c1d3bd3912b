// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/votechain/server/auth"
	"github.com/votechain/server/models"
	"github.com/votechain/server/store"
	"github.com/votechain/server/testutil"
)

func setupAuth(t *testing.T) (*AuthHandler, *store.ElectionStore) {
	t.Helper()
	st := store.NewElectionStore(testutil.SetupTestDB(t))
	return NewAuthHandler(st, testutil.GetTestConfig()), st
}

// signLogin produces a wallet-style signature over the login message.
func signLogin(t *testing.T, nonce string) (wallet, signature string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	sig, err := crypto.Sign(accounts.TextHash([]byte(auth.LoginMessage(nonce))), key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return crypto.PubkeyToAddress(key.PublicKey).Hex(), hexutil.Encode(sig)
}

func TestNonce(t *testing.T) {
	handler, _ := setupAuth(t)

	w := httptest.NewRecorder()
	handler.Nonce(w, testutil.MakeRequest("GET", "/api/v1/auth/nonce", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp map[string]string
	testutil.AssertJSON(t, w, &resp)
	if resp["nonce"] == "" {
		t.Error("nonce missing")
	}
	// The message is the exact text the wallet will sign
	if !strings.HasPrefix(resp["message"], "Login nonce: ") ||
		!strings.HasSuffix(resp["message"], resp["nonce"]) {
		t.Errorf("unexpected message %q", resp["message"])
	}
}

func TestLogin(t *testing.T) {
	handler, st := setupAuth(t)
	nonce := "deadbeef"
	wallet, sig := signLogin(t, nonce)

	w := httptest.NewRecorder()
	handler.Login(w, testutil.MakeRequest("POST", "/api/v1/auth/login", models.LoginRequest{
		WalletAddress: wallet,
		Signature:     sig,
		Nonce:         nonce,
	}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.LoginResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.AccessToken == "" {
		t.Fatal("no access token issued")
	}
	if resp.User.WalletAddress != wallet {
		t.Errorf("user wallet = %q, want %q", resp.User.WalletAddress, wallet)
	}

	// The token round-trips through the verifier
	subject, err := auth.VerifyToken(resp.AccessToken, testutil.GetTestConfig().JWTSecret)
	if err != nil || subject != wallet {
		t.Errorf("token verification: subject=%q err=%v", subject, err)
	}

	// First login created the user row
	if _, err := st.GetUser(context.Background(), wallet); err != nil {
		t.Errorf("user not created on login: %v", err)
	}
}

func TestLoginBadSignature(t *testing.T) {
	handler, _ := setupAuth(t)
	nonce := "deadbeef"
	wallet, sig := signLogin(t, nonce)

	// Signature over a different nonce
	w := httptest.NewRecorder()
	handler.Login(w, testutil.MakeRequest("POST", "/api/v1/auth/login", models.LoginRequest{
		WalletAddress: wallet,
		Signature:     sig,
		Nonce:         "other",
	}, nil))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	// Signature claimed by a different wallet
	w = httptest.NewRecorder()
	handler.Login(w, testutil.MakeRequest("POST", "/api/v1/auth/login", models.LoginRequest{
		WalletAddress: "0x0000000000000000000000000000000000000001",
		Signature:     sig,
		Nonce:         nonce,
	}, nil))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestLoginValidation(t *testing.T) {
	handler, _ := setupAuth(t)

	for _, body := range []models.LoginRequest{
		{},
		{WalletAddress: "0x01"},
		{WalletAddress: "0x01", Signature: "0x02"},
		{Signature: "0x02", Nonce: "n"},
	} {
		w := httptest.NewRecorder()
		handler.Login(w, testutil.MakeRequest("POST", "/api/v1/auth/login", body, nil))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	}
}
