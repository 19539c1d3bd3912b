// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/votechain/server/cache"
	"github.com/votechain/server/chain"
	"github.com/votechain/server/middleware"
	"github.com/votechain/server/models"
	"github.com/votechain/server/store"
)

// listCacheKey memoizes the election list; invalidated on create.
const (
	listCacheKey    = "elections:list"
	listCacheTTLSec = 30
)

type ElectionHandler struct {
	store *store.ElectionStore
	chain *chain.Client
	cache *cache.Store
}

// NewElectionHandler accepts a nil chain client; elections then stay
// database-only and the response reports the submission as skipped.
func NewElectionHandler(st *store.ElectionStore, ch *chain.Client, ca *cache.Store) *ElectionHandler {
	return &ElectionHandler{store: st, chain: ch, cache: ca}
}

// List handles GET /api/v1/elections
func (h *ElectionHandler) List(w http.ResponseWriter, r *http.Request) {
	var elections []models.Election
	if !h.cache.Load(r.Context(), listCacheKey, listCacheTTLSec, &elections) {
		var err error
		elections, err = h.store.ListElections(r.Context())
		if err != nil {
			slog.Error("failed to list elections", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		h.cache.Save(r.Context(), listCacheKey, elections)
	}

	middleware.JSONResponse(w, http.StatusOK, models.ListElectionsResponse{
		Elections: elections,
	})
}

// Create handles POST /api/v1/elections
// Persists the election, then submits it to the contract best-effort:
// a chain failure is reported in the response, never rolls back the row.
func (h *ElectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	wallet := middleware.WalletFromContext(r.Context())

	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Title == "" || len(req.Candidates) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title and candidates are required")
		return
	}

	user, err := h.store.GetUser(r.Context(), wallet)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Creator not found. Authenticate before creating elections.")
			return
		}
		slog.Error("failed to query creator", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	election, err := h.store.CreateElection(r.Context(), req.Title, req.Description, req.Candidates, user.ID)
	if err != nil {
		slog.Error("failed to create election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if h.chain != nil {
		election.Blockchain = h.chain.CreateElection(r.Context(), req.Title, req.Candidates)
	} else {
		election.Blockchain = &models.BlockchainInfo{
			Status:  models.ChainStatusSkipped,
			Message: "Blockchain not configured",
		}
	}

	h.cache.Clear(r.Context(), listCacheKey)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateElectionResponse{
		Election: election,
	})
}
