// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/votechain/server/models"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrAlreadyVoted = errors.New("wallet already voted for this election")
)

// ElectionStore is the SQL persistence layer for users, elections,
// candidates and votes. All timestamps are written from Go so the same
// queries behave identically on postgres and sqlite.
type ElectionStore struct {
	db *sql.DB
}

func NewElectionStore(db *sql.DB) *ElectionStore {
	return &ElectionStore{db: db}
}

// EnsureUser returns the user for a wallet address, creating it if needed.
func (s *ElectionStore) EnsureUser(ctx context.Context, wallet string) (models.User, error) {
	user, err := s.GetUser(ctx, wallet)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return models.User{}, err
	}

	now := time.Now().UTC()
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (wallet_address, is_admin, created_at)
		VALUES ($1, FALSE, $2)
		RETURNING id
	`, wallet, now).Scan(&user.ID)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	user.WalletAddress = wallet
	user.CreatedAt = now
	return user, nil
}

func (s *ElectionStore) GetUser(ctx context.Context, wallet string) (models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, wallet_address, is_admin, created_at
		FROM users
		WHERE wallet_address = $1
	`, wallet).Scan(&user.ID, &user.WalletAddress, &user.IsAdmin, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// CreateElection inserts an election with its candidates. Candidates are
// reused by name when they already exist; position records ballot order,
// which must match the order submitted to the contract.
func (s *ElectionStore) CreateElection(ctx context.Context, title, description string, candidates []string, createdBy int64) (models.Election, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Election{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	election := models.Election{
		Title:       title,
		Description: description,
		CreatedAt:   now,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO elections (title, description, created_by, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, title, description, createdBy, now).Scan(&election.ID)
	if err != nil {
		return models.Election{}, fmt.Errorf("failed to insert election: %w", err)
	}

	for pos, name := range candidates {
		var candID int64
		err = tx.QueryRowContext(ctx, `
			SELECT id FROM candidates WHERE name = $1
		`, name).Scan(&candID)
		if err == sql.ErrNoRows {
			err = tx.QueryRowContext(ctx, `
				INSERT INTO candidates (name, created_at)
				VALUES ($1, $2)
				RETURNING id
			`, name, now).Scan(&candID)
		}
		if err != nil {
			return models.Election{}, fmt.Errorf("failed to resolve candidate %q: %w", name, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO election_candidates (election_id, candidate_id, position)
			VALUES ($1, $2, $3)
		`, election.ID, candID, pos)
		if err != nil {
			return models.Election{}, fmt.Errorf("failed to link candidate %q: %w", name, err)
		}

		election.Candidates = append(election.Candidates, models.Candidate{ID: candID, Name: name})
	}

	if err := tx.Commit(); err != nil {
		return models.Election{}, fmt.Errorf("failed to commit election: %w", err)
	}
	return election, nil
}

// GetElection loads one election with candidates in ballot order.
func (s *ElectionStore) GetElection(ctx context.Context, id int64) (models.Election, error) {
	var election models.Election
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, created_at
		FROM elections
		WHERE id = $1
	`, id).Scan(&election.ID, &election.Title, &election.Description, &election.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Election{}, ErrNotFound
	}
	if err != nil {
		return models.Election{}, fmt.Errorf("failed to query election: %w", err)
	}

	election.Candidates, err = s.electionCandidates(ctx, id)
	if err != nil {
		return models.Election{}, err
	}
	return election, nil
}

// ListElections returns all elections, newest first.
func (s *ElectionStore) ListElections(ctx context.Context) ([]models.Election, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, created_at
		FROM elections
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query elections: %w", err)
	}
	defer rows.Close()

	elections := []models.Election{}
	for rows.Next() {
		var e models.Election
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan election: %w", err)
		}
		elections = append(elections, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate elections: %w", err)
	}

	for i := range elections {
		elections[i].Candidates, err = s.electionCandidates(ctx, elections[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return elections, nil
}

func (s *ElectionStore) electionCandidates(ctx context.Context, electionID int64) ([]models.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name
		FROM candidates c
		JOIN election_candidates ec ON ec.candidate_id = c.id
		WHERE ec.election_id = $1
		ORDER BY ec.position
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// CountVotes tallies votes per candidate id for one election.
func (s *ElectionStore) CountVotes(ctx context.Context, electionID int64) (map[int64]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT candidate_id, COUNT(*)
		FROM votes
		WHERE election_id = $1
		GROUP BY candidate_id
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int64)
	for rows.Next() {
		var candID, n int64
		if err := rows.Scan(&candID, &n); err != nil {
			return nil, fmt.Errorf("failed to scan vote count: %w", err)
		}
		counts[candID] = n
	}
	return counts, rows.Err()
}

// HasVoted reports whether the voter already has a vote recorded for
// the election. Checked before any chain submission so a duplicate is
// rejected without spending gas.
func (s *ElectionStore) HasVoted(ctx context.Context, electionID, voterID int64) (bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM votes WHERE election_id = $1 AND voter_id = $2
	`, electionID, voterID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check existing vote: %w", err)
	}
	return true, nil
}

// RecordVote inserts one vote. Returns ErrAlreadyVoted if the voter has
// a vote for this election already.
func (s *ElectionStore) RecordVote(ctx context.Context, electionID, voterID, candidateID int64, txHash string) (models.Vote, error) {
	var existing int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM votes WHERE election_id = $1 AND voter_id = $2
	`, electionID, voterID).Scan(&existing)
	if err == nil {
		return models.Vote{}, ErrAlreadyVoted
	}
	if err != sql.ErrNoRows {
		return models.Vote{}, fmt.Errorf("failed to check existing vote: %w", err)
	}

	now := time.Now().UTC()
	vote := models.Vote{
		ElectionID:  electionID,
		VoterID:     voterID,
		CandidateID: candidateID,
		TxHash:      txHash,
		CreatedAt:   now,
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO votes (election_id, voter_id, candidate_id, tx_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, electionID, voterID, candidateID, txHash, now).Scan(&vote.ID)
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to insert vote: %w", err)
	}
	return vote, nil
}
