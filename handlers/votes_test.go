// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/votechain/server/aggregator"
	"github.com/votechain/server/cache"
	"github.com/votechain/server/middleware"
	"github.com/votechain/server/models"
	"github.com/votechain/server/results"
	"github.com/votechain/server/store"
	"github.com/votechain/server/testutil"
)

// capturePublisher records every published vote event.
type capturePublisher struct {
	events []models.VoteEvent
}

func (p *capturePublisher) Publish(ctx context.Context, ev models.VoteEvent) error {
	p.events = append(p.events, ev)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

type voteFixture struct {
	store     *store.ElectionStore
	agg       *aggregator.Aggregator
	publisher *capturePublisher
	election  models.Election
	submit    http.HandlerFunc
}

func setupVote(t *testing.T) voteFixture {
	t.Helper()

	st := store.NewElectionStore(testutil.SetupTestDB(t))
	election := testutil.CreateTestElection(t, st, "Student Council", "Alice", "Bob")

	agg := aggregator.New(results.NewService(st, nil),
		cache.NewStore(cache.NewMemoryBackend()), aggregator.Config{})
	publisher := &capturePublisher{}
	handler := NewVoteHandler(st, nil, agg, publisher)

	cfg := testutil.GetTestConfig()
	return voteFixture{
		store:     st,
		agg:       agg,
		publisher: publisher,
		election:  election,
		submit:    middleware.RequireAuth(cfg.JWTSecret, handler.Submit),
	}
}

func (f voteFixture) request(t *testing.T, wallet string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	headers := map[string]string{}
	if wallet != "" {
		headers["Authorization"] = testutil.AuthHeader(t, testutil.GetTestConfig(), wallet)
	}
	w := httptest.NewRecorder()
	f.submit(w, testutil.MakeRequest("POST", "/api/v1/vote", body, headers))
	return w
}

func TestSubmitVote(t *testing.T) {
	f := setupVote(t)

	w := f.request(t, "0xVoter1", models.SubmitVoteRequest{
		ElectionID:  f.election.ID,
		CandidateID: f.election.Candidates[0].ID,
		TxHash:      "0xabc123",
	})
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.SubmitVoteResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Status != "ok" {
		t.Errorf("status = %q", resp.Status)
	}
	if resp.Vote.TxHash != "0xabc123" {
		t.Errorf("vote tx hash = %q", resp.Vote.TxHash)
	}
	// No chain client configured: the submission is reported as skipped
	if resp.Blockchain == nil || resp.Blockchain.Status != models.ChainStatusSkipped {
		t.Errorf("blockchain info = %+v", resp.Blockchain)
	}

	counts, err := f.store.CountVotes(context.Background(), f.election.ID)
	if err != nil {
		t.Fatal(err)
	}
	if counts[f.election.Candidates[0].ID] != 1 {
		t.Errorf("vote not recorded: %v", counts)
	}

	if len(f.publisher.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(f.publisher.events))
	}
	ev := f.publisher.events[0]
	if ev.ElectionID != f.election.ID || ev.Wallet != "0xVoter1" || ev.EventID == "" {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestSubmitVoteInvalidatesCachedResults(t *testing.T) {
	f := setupVote(t)
	ctx := context.Background()

	if _, err := f.agg.FetchResult(ctx, f.election.ID); err != nil {
		t.Fatal(err)
	}
	if f.agg.GetResult(f.election.ID) == nil {
		t.Fatal("precondition: results cached")
	}

	w := f.request(t, "0xVoter1", models.SubmitVoteRequest{
		ElectionID:  f.election.ID,
		CandidateID: f.election.Candidates[0].ID,
		TxHash:      "0xabc",
	})
	testutil.AssertStatus(t, w, http.StatusOK)

	if f.agg.GetResult(f.election.ID) != nil {
		t.Error("cached results must be invalidated after a vote")
	}
}

func TestSubmitVoteDuplicate(t *testing.T) {
	f := setupVote(t)
	body := models.SubmitVoteRequest{
		ElectionID:  f.election.ID,
		CandidateID: f.election.Candidates[0].ID,
		TxHash:      "0xabc",
	}

	testutil.AssertStatus(t, f.request(t, "0xVoter1", body), http.StatusOK)

	// Same wallet again, even for the other candidate
	body.CandidateID = f.election.Candidates[1].ID
	testutil.AssertStatus(t, f.request(t, "0xVoter1", body), http.StatusConflict)

	// A different wallet is still free to vote
	testutil.AssertStatus(t, f.request(t, "0xVoter2", body), http.StatusOK)
}

func TestSubmitVoteUnknownElection(t *testing.T) {
	f := setupVote(t)

	w := f.request(t, "0xVoter1", models.SubmitVoteRequest{
		ElectionID:  999,
		CandidateID: 1,
		TxHash:      "0xabc",
	})
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestSubmitVoteUnknownCandidate(t *testing.T) {
	f := setupVote(t)

	w := f.request(t, "0xVoter1", models.SubmitVoteRequest{
		ElectionID:  f.election.ID,
		CandidateID: 999,
		TxHash:      "0xabc",
	})
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestSubmitVoteValidation(t *testing.T) {
	f := setupVote(t)

	// txHash is mandatory: the client submits the transaction itself and
	// must hand back the hash
	w := f.request(t, "0xVoter1", models.SubmitVoteRequest{
		ElectionID:  f.election.ID,
		CandidateID: f.election.Candidates[0].ID,
	})
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = f.request(t, "0xVoter1", models.SubmitVoteRequest{TxHash: "0xabc"})
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestSubmitVoteRequiresAuth(t *testing.T) {
	f := setupVote(t)

	w := f.request(t, "", models.SubmitVoteRequest{
		ElectionID:  f.election.ID,
		CandidateID: f.election.Candidates[0].ID,
		TxHash:      "0xabc",
	})
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}
