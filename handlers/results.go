// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/votechain/server/aggregator"
	"github.com/votechain/server/middleware"
	"github.com/votechain/server/models"
	"github.com/votechain/server/results"
)

type ResultsHandler struct {
	agg *aggregator.Aggregator
}

func NewResultsHandler(agg *aggregator.Aggregator) *ResultsHandler {
	return &ResultsHandler{agg: agg}
}

// tierStatus describes one tier of an election's result entry for the
// audit view.
type tierStatus struct {
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
	Age       string    `json:"age"`
}

type resultsStatusResponse struct {
	DB             *tierStatus `json:"db,omitempty"`
	Chain          *tierStatus `json:"chain,omitempty"`
	ChainSyncing   bool        `json:"chain_syncing"`
	LastChainError string      `json:"last_chain_error,omitempty"`
}

// GetResults handles GET /api/v1/elections/{id}/results
// Replies with the best tally currently available: the database value
// right away, the chain-confirmed value once the background sync has
// landed. The source field tells the client which one it got.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	id, ok := electionID(w, r)
	if !ok {
		return
	}

	result, err := h.agg.FetchResult(r.Context(), id)
	if err != nil {
		if errors.Is(err, results.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
			return
		}
		slog.Error("failed to fetch results", "election_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load results")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ElectionResultsResponse{
		ElectionResult: *result,
		ChainSyncing:   h.agg.IsChainLoading(id),
	})
}

// GetResultsStatus handles GET /api/v1/elections/{id}/results/status
// The audit view: both tier entries side by side, with fetch ages and
// the last swallowed chain error.
func (h *ResultsHandler) GetResultsStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := electionID(w, r)
	if !ok {
		return
	}

	entry, ok := h.agg.Entry(id)
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "No results fetched for this election")
		return
	}

	response := resultsStatusResponse{
		ChainSyncing: h.agg.IsChainLoading(id),
	}
	if entry.DB != nil {
		response.DB = &tierStatus{
			Source:    entry.DB.Data.Source,
			FetchedAt: entry.DB.FetchedAt,
			Age:       humanize.Time(entry.DB.FetchedAt),
		}
	}
	if entry.Chain != nil {
		response.Chain = &tierStatus{
			Source:    entry.Chain.Data.Source,
			FetchedAt: entry.Chain.FetchedAt,
			Age:       humanize.Time(entry.Chain.FetchedAt),
		}
	}
	if err := h.agg.LastChainError(); err != nil {
		response.LastChainError = err.Error()
	}

	middleware.JSONResponse(w, http.StatusOK, response)
}

func electionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid election id")
		return 0, false
	}
	return id, true
}
