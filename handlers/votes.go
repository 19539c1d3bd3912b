// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/votechain/server/aggregator"
	"github.com/votechain/server/chain"
	"github.com/votechain/server/event"
	"github.com/votechain/server/middleware"
	"github.com/votechain/server/models"
	"github.com/votechain/server/store"
)

type VoteHandler struct {
	store     *store.ElectionStore
	chain     *chain.Client
	agg       *aggregator.Aggregator
	publisher event.VotePublisher
}

func NewVoteHandler(st *store.ElectionStore, ch *chain.Client, agg *aggregator.Aggregator, pub event.VotePublisher) *VoteHandler {
	return &VoteHandler{store: st, chain: ch, agg: agg, publisher: pub}
}

// Submit handles POST /api/v1/vote
// One vote per wallet per election. The chain submission happens after
// the duplicate check but before the row insert, so a contract failure
// leaves no database trace.
func (h *VoteHandler) Submit(w http.ResponseWriter, r *http.Request) {
	wallet := middleware.WalletFromContext(r.Context())

	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.ElectionID == 0 || req.CandidateID == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "electionId and candidateId are required")
		return
	}
	if req.TxHash == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "txHash is required")
		return
	}

	user, err := h.store.EnsureUser(r.Context(), wallet)
	if err != nil {
		slog.Error("failed to ensure voter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	election, err := h.store.GetElection(r.Context(), req.ElectionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
			return
		}
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Resolve the candidate to its ballot index; the contract counts
	// votes by index, not by database id
	candidateIndex := int64(-1)
	for i, cand := range election.Candidates {
		if cand.ID == req.CandidateID {
			candidateIndex = int64(i)
			break
		}
	}
	if candidateIndex < 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}

	voted, err := h.store.HasVoted(r.Context(), req.ElectionID, user.ID)
	if err != nil {
		slog.Error("failed to check existing vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if voted {
		middleware.ErrorResponse(w, http.StatusConflict, "Wallet already voted for this election")
		return
	}

	chainInfo := h.submitToChain(r, req.ElectionID, candidateIndex)
	if chainInfo.Status == models.ChainStatusError {
		middleware.ErrorResponse(w, http.StatusBadRequest, chainInfo.Message)
		return
	}

	vote, err := h.store.RecordVote(r.Context(), req.ElectionID, user.ID, req.CandidateID, req.TxHash)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyVoted) {
			middleware.ErrorResponse(w, http.StatusConflict, "Wallet already voted for this election")
			return
		}
		slog.Error("failed to record vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	ev := models.VoteEvent{
		EventID:     uuid.NewString(),
		ElectionID:  vote.ElectionID,
		CandidateID: vote.CandidateID,
		Wallet:      wallet,
		TxHash:      vote.TxHash,
		CastAt:      time.Now().UTC(),
	}
	if err := h.publisher.Publish(r.Context(), ev); err != nil {
		// Non-fatal: the vote is durable, the event stream is advisory
		slog.Warn("failed to publish vote event", "event_id", ev.EventID, "error", err)
	}

	// Cached results for this election are now stale
	h.agg.Invalidate(r.Context(), req.ElectionID)

	middleware.JSONResponse(w, http.StatusOK, models.SubmitVoteResponse{
		Status:     "ok",
		Vote:       vote,
		Blockchain: chainInfo,
	})
}

func (h *VoteHandler) submitToChain(r *http.Request, electionID, candidateIndex int64) *models.BlockchainInfo {
	if h.chain == nil {
		return &models.BlockchainInfo{
			Status:  models.ChainStatusSkipped,
			Message: "Blockchain not configured",
		}
	}

	contractID, err := h.chain.ResolveElectionID(r.Context(), electionID)
	if err != nil {
		return &models.BlockchainInfo{
			Status:  models.ChainStatusError,
			Message: "Election not found on blockchain",
		}
	}

	return h.chain.CastVote(r.Context(), contractID, candidateIndex)
}
