// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/votechain/server/aggregator"
	"github.com/votechain/server/cache"
	"github.com/votechain/server/models"
	"github.com/votechain/server/results"
	"github.com/votechain/server/store"
	"github.com/votechain/server/testutil"
)

// fakeReader answers chain reads with a canned tally.
type fakeReader struct {
	names  []string
	counts []int64
}

func (f *fakeReader) ResolveElectionID(ctx context.Context, dbElectionID int64) (int64, error) {
	return dbElectionID - 1, nil
}

func (f *fakeReader) GetResults(ctx context.Context, contractElectionID int64) ([]string, []*big.Int, error) {
	counts := make([]*big.Int, len(f.counts))
	for i, n := range f.counts {
		counts[i] = big.NewInt(n)
	}
	return f.names, counts, nil
}

func setupResults(t *testing.T, reader results.ChainReader) (*ResultsHandler, *aggregator.Aggregator, models.Election) {
	t.Helper()

	st := store.NewElectionStore(testutil.SetupTestDB(t))
	election := testutil.CreateTestElection(t, st, "Student Council", "Alice", "Bob")
	testutil.CastTestVote(t, st, election.ID, election.Candidates[0].ID, "0xV1")

	svc := results.NewService(st, reader)
	agg := aggregator.New(svc, cache.NewStore(cache.NewMemoryBackend()), aggregator.Config{
		ChainEnabled: reader != nil,
	})
	return NewResultsHandler(agg), agg, election
}

func resultsRequest(electionID string) *http.Request {
	req := testutil.MakeRequest("GET", "/api/v1/elections/"+electionID+"/results", nil, nil)
	req.SetPathValue("id", electionID)
	return req
}

func waitChainSettled(t *testing.T, agg *aggregator.Aggregator, id int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !agg.IsChainLoading(id) {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("timed out waiting for the chain fetch to settle")
}

func TestGetResultsDatabaseOnly(t *testing.T) {
	handler, _, election := setupResults(t, nil)

	w := httptest.NewRecorder()
	handler.GetResults(w, resultsRequest("1"))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ElectionResultsResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Source != models.SourceDatabase {
		t.Errorf("source = %q, want %q", resp.Source, models.SourceDatabase)
	}
	if resp.ChainSyncing {
		t.Error("chain disabled, nothing should be syncing")
	}
	if resp.Election.ID != election.ID || len(resp.Results) != 2 {
		t.Errorf("unexpected payload: %+v", resp)
	}
	if resp.Results[0].Candidate != "Alice" || resp.Results[0].Votes != 1 {
		t.Errorf("unexpected tally: %+v", resp.Results)
	}
}

func TestGetResultsUpgradesToChain(t *testing.T) {
	reader := &fakeReader{names: []string{"Alice", "Bob"}, counts: []int64{4, 1}}
	handler, agg, election := setupResults(t, reader)

	// First response answers from the database while the chain syncs
	w := httptest.NewRecorder()
	handler.GetResults(w, resultsRequest("1"))
	testutil.AssertStatus(t, w, http.StatusOK)

	var first models.ElectionResultsResponse
	testutil.AssertJSON(t, w, &first)
	if first.Source != models.SourceDatabase {
		t.Errorf("first source = %q, want %q", first.Source, models.SourceDatabase)
	}

	waitChainSettled(t, agg, election.ID)

	w = httptest.NewRecorder()
	handler.GetResults(w, resultsRequest("1"))
	testutil.AssertStatus(t, w, http.StatusOK)

	var second models.ElectionResultsResponse
	testutil.AssertJSON(t, w, &second)
	if second.Source != models.SourceBlockchain {
		t.Errorf("second source = %q, want %q", second.Source, models.SourceBlockchain)
	}
	if second.Results[0].Votes != 4 {
		t.Errorf("chain tally not served: %+v", second.Results)
	}
	if second.ChainSyncing {
		t.Error("sync finished, flag should be down")
	}
}

func TestGetResultsUnknownElection(t *testing.T) {
	handler, _, _ := setupResults(t, nil)

	w := httptest.NewRecorder()
	handler.GetResults(w, resultsRequest("999"))
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestGetResultsBadID(t *testing.T) {
	handler, _, _ := setupResults(t, nil)

	for _, id := range []string{"abc", "0", "-1"} {
		w := httptest.NewRecorder()
		handler.GetResults(w, resultsRequest(id))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	}
}

func statusRequest(electionID string) *http.Request {
	req := testutil.MakeRequest("GET", "/api/v1/elections/"+electionID+"/results/status", nil, nil)
	req.SetPathValue("id", electionID)
	return req
}

func TestGetResultsStatusBeforeAnyFetch(t *testing.T) {
	handler, _, _ := setupResults(t, nil)

	w := httptest.NewRecorder()
	handler.GetResultsStatus(w, statusRequest("1"))
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestGetResultsStatus(t *testing.T) {
	reader := &fakeReader{names: []string{"Alice", "Bob"}, counts: []int64{4, 1}}
	handler, agg, election := setupResults(t, reader)

	w := httptest.NewRecorder()
	handler.GetResults(w, resultsRequest("1"))
	testutil.AssertStatus(t, w, http.StatusOK)
	waitChainSettled(t, agg, election.ID)

	w = httptest.NewRecorder()
	handler.GetResultsStatus(w, statusRequest("1"))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp resultsStatusResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.DB == nil || resp.DB.Source != models.SourceDatabase {
		t.Errorf("db tier missing or mislabeled: %+v", resp.DB)
	}
	if resp.Chain == nil || resp.Chain.Source != models.SourceBlockchain {
		t.Errorf("chain tier missing or mislabeled: %+v", resp.Chain)
	}
	if resp.DB.Age == "" {
		t.Error("status should report a human-readable age")
	}
	if resp.ChainSyncing {
		t.Error("sync finished, flag should be down")
	}
	if resp.LastChainError != "" {
		t.Errorf("no chain error happened, got %q", resp.LastChainError)
	}
}
