// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/votechain/server/aggregator"
	"github.com/votechain/server/cache"
	"github.com/votechain/server/event"
	"github.com/votechain/server/results"
	"github.com/votechain/server/store"
	"github.com/votechain/server/testutil"
)

func setupRouter(t *testing.T) (*http.ServeMux, *store.ElectionStore) {
	t.Helper()

	st := store.NewElectionStore(testutil.SetupTestDB(t))
	cacheStore := cache.NewStore(cache.NewMemoryBackend())
	agg := aggregator.New(results.NewService(st, nil), cacheStore, aggregator.Config{})

	mux := NewRouter(Deps{
		Store:     st,
		Chain:     nil,
		Cache:     cacheStore,
		Agg:       agg,
		Publisher: event.NopPublisher{},
	}, testutil.GetTestConfig())
	return mux, st
}

func TestHealthRoute(t *testing.T) {
	mux, _ := setupRouter(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/api/v1/health", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp map[string]string
	testutil.AssertJSON(t, w, &resp)
	if resp["status"] != "ok" {
		t.Errorf("status = %q", resp["status"])
	}
}

func TestNonceRouteIsPublic(t *testing.T) {
	mux, _ := setupRouter(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/api/v1/auth/nonce", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	mux, _ := setupRouter(t)

	for _, route := range []struct{ method, path string }{
		{"GET", "/api/v1/elections"},
		{"POST", "/api/v1/elections"},
		{"GET", "/api/v1/elections/1/results"},
		{"GET", "/api/v1/elections/1/results/status"},
		{"POST", "/api/v1/vote"},
	} {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, testutil.MakeRequest(route.method, route.path, nil, nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status %d, want 401", route.method, route.path, w.Code)
		}
	}
}

func TestResultsRouteEndToEnd(t *testing.T) {
	mux, st := setupRouter(t)
	election := testutil.CreateTestElection(t, st, "Student Council", "Alice", "Bob")
	testutil.CastTestVote(t, st, election.ID, election.Candidates[0].ID, "0xV1")

	headers := map[string]string{
		"Authorization": testutil.AuthHeader(t, testutil.GetTestConfig(), "0xViewer"),
	}

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/api/v1/elections/1/results", nil, headers))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/api/v1/elections/1/results/status", nil, headers))
	testutil.AssertStatus(t, w, http.StatusOK)
}

func TestUnknownRoute(t *testing.T) {
	mux, _ := setupRouter(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/api/v1/unknown", nil, nil))
	testutil.AssertStatus(t, w, http.StatusNotFound)
}
