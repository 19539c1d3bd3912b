// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/votechain/server/auth"
	"github.com/votechain/server/cliparse"
	"github.com/votechain/server/db"
	"github.com/votechain/server/models"
	"github.com/votechain/server/store"
)

// SetupTestDB creates a fresh sqlite database with the full schema.
// The file lives in t.TempDir so each test starts empty.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbConn, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { dbConn.Close() })

	if err := db.CreateSchema(dbConn, "sqlite"); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return dbConn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           5000,
		DatabaseType:   "sqlite",
		JWTSecret:      "test-secret",
		DBResultTTL:    30 * time.Second,
		ChainResultTTL: 60 * time.Second,
	}
}

// CreateTestUser inserts a user for a wallet and returns it
func CreateTestUser(t *testing.T, st *store.ElectionStore, wallet string) models.User {
	t.Helper()

	user, err := st.EnsureUser(context.Background(), wallet)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// CreateTestElection inserts an election with candidates and returns it
func CreateTestElection(t *testing.T, st *store.ElectionStore, title string, candidates ...string) models.Election {
	t.Helper()

	creator := CreateTestUser(t, st, "0xCreator")
	election, err := st.CreateElection(context.Background(), title, "A test election", candidates, creator.ID)
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}
	return election
}

// CastTestVote records a vote for a wallet
func CastTestVote(t *testing.T, st *store.ElectionStore, electionID, candidateID int64, wallet string) models.Vote {
	t.Helper()

	voter := CreateTestUser(t, st, wallet)
	vote, err := st.RecordVote(context.Background(), electionID, voter.ID, candidateID, "0xtest")
	if err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}
	return vote
}

// AuthHeader returns a bearer token header value for a wallet
func AuthHeader(t *testing.T, cfg cliparse.Config, wallet string) string {
	t.Helper()

	token, err := auth.IssueToken(wallet, cfg.JWTSecret, time.Now())
	if err != nil {
		t.Fatalf("Failed to issue test token: %v", err)
	}
	return "Bearer " + token
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
