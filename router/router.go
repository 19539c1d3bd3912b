// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/votechain/server/aggregator"
	"github.com/votechain/server/cache"
	"github.com/votechain/server/chain"
	"github.com/votechain/server/cliparse"
	"github.com/votechain/server/event"
	"github.com/votechain/server/handlers"
	"github.com/votechain/server/middleware"
	"github.com/votechain/server/store"
)

// Deps carries everything the handlers need. Chain may be nil
// (database-only mode).
type Deps struct {
	Store     *store.ElectionStore
	Chain     *chain.Client
	Cache     *cache.Store
	Agg       *aggregator.Aggregator
	Publisher event.VotePublisher
}

func NewRouter(deps Deps, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(deps.Store, cfg)
	electionHandler := handlers.NewElectionHandler(deps.Store, deps.Chain, deps.Cache)
	voteHandler := handlers.NewVoteHandler(deps.Store, deps.Chain, deps.Agg, deps.Publisher)
	resultsHandler := handlers.NewResultsHandler(deps.Agg)

	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAuth(cfg.JWTSecret, h))
	}

	// Health check
	mux.HandleFunc("GET /api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.JSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Wallet login
	mux.HandleFunc("GET /api/v1/auth/nonce", middleware.WithLogging(authHandler.Nonce))
	mux.HandleFunc("POST /api/v1/auth/login", middleware.WithLogging(authHandler.Login))

	// Elections
	mux.HandleFunc("GET /api/v1/elections", authed(electionHandler.List))
	mux.HandleFunc("POST /api/v1/elections", authed(electionHandler.Create))

	// Results
	mux.HandleFunc("GET /api/v1/elections/{id}/results", authed(resultsHandler.GetResults))
	mux.HandleFunc("GET /api/v1/elections/{id}/results/status", authed(resultsHandler.GetResultsStatus))

	// Voting
	mux.HandleFunc("POST /api/v1/vote", authed(voteHandler.Submit))

	return mux
}
