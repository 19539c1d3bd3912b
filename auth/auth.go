// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidToken     = errors.New("invalid token")
)

// TokenLifetime bounds how long an issued token stays valid.
const TokenLifetime = time.Hour

// GenerateNonce creates a random hex nonce for the login challenge.
func GenerateNonce() (string, error) {
	b := make([]byte, 16)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// LoginMessage is the exact text the wallet signs. Both sides must
// agree on it byte for byte.
func LoginMessage(nonce string) string {
	return "Login nonce: " + nonce
}

// VerifySignature recovers the signer of the EIP-191 personal-sign
// message for nonce and checks it against the claimed wallet address.
func VerifySignature(walletAddress, signature, nonce string) error {
	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return ErrInvalidSignature
	}

	// Wallets produce V as 27/28; crypto.SigToPub wants 0/1
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	hash := accounts.TextHash([]byte(LoginMessage(nonce)))
	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return ErrInvalidSignature
	}

	recovered := crypto.PubkeyToAddress(*pub)
	if !strings.EqualFold(recovered.Hex(), walletAddress) {
		return ErrInvalidSignature
	}
	return nil
}

// IssueToken creates a signed token with the wallet as subject.
func IssueToken(walletAddress, secret string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   walletAddress,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// VerifyToken validates a token and returns the wallet address it was
// issued for.
func VerifyToken(tokenString, secret string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
