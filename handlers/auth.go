// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/votechain/server/auth"
	"github.com/votechain/server/cliparse"
	"github.com/votechain/server/middleware"
	"github.com/votechain/server/models"
	"github.com/votechain/server/store"
)

type AuthHandler struct {
	store *store.ElectionStore
	cfg   cliparse.Config
}

func NewAuthHandler(st *store.ElectionStore, cfg cliparse.Config) *AuthHandler {
	return &AuthHandler{store: st, cfg: cfg}
}

// Nonce handles GET /api/v1/auth/nonce
// Returns a fresh login nonce for the wallet to sign.
func (h *AuthHandler) Nonce(w http.ResponseWriter, r *http.Request) {
	nonce, err := auth.GenerateNonce()
	if err != nil {
		slog.Error("failed to generate nonce", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to generate nonce")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]string{
		"nonce":   nonce,
		"message": auth.LoginMessage(nonce),
	})
}

// Login handles POST /api/v1/auth/login
// Verifies a personal-sign signature over the login nonce and issues a
// bearer token. The user row is created on first login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if req.WalletAddress == "" || req.Signature == "" || req.Nonce == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "walletAddress, signature and nonce are required")
		return
	}

	if err := auth.VerifySignature(req.WalletAddress, req.Signature, req.Nonce); err != nil {
		slog.Warn("signature verification failed", "wallet", req.WalletAddress)
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	user, err := h.store.EnsureUser(r.Context(), req.WalletAddress)
	if err != nil {
		slog.Error("failed to ensure user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Unable to create user")
		return
	}

	token, err := auth.IssueToken(req.WalletAddress, h.cfg.JWTSecret, time.Now())
	if err != nil {
		slog.Error("failed to issue token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Unable to issue token")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		AccessToken: token,
		User:        user,
	})
}
