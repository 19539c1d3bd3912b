// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package results

import (
	"context"
	"errors"
	"log/slog"
	"math/big"

	"github.com/votechain/server/models"
	"github.com/votechain/server/store"
)

// ErrNotFound means the election does not exist in the database.
var ErrNotFound = errors.New("election not found")

// Provider answers result fetches for one election. When
// includeBlockchain is false the answer comes from the database alone,
// tagged SourceDatabase. When true, an on-chain read is attempted and
// the result is tagged SourceBlockchain only if that read succeeded.
type Provider interface {
	FetchResults(ctx context.Context, electionID int64, includeBlockchain bool) (*models.ElectionResult, error)
}

// ChainReader is the slice of the chain client the provider uses.
type ChainReader interface {
	ResolveElectionID(ctx context.Context, dbElectionID int64) (int64, error)
	GetResults(ctx context.Context, contractElectionID int64) ([]string, []*big.Int, error)
}

// Service implements Provider over the SQL store and an optional chain
// reader. A nil reader means the server runs database-only.
type Service struct {
	store *store.ElectionStore
	chain ChainReader
}

func NewService(st *store.ElectionStore, ch ChainReader) *Service {
	return &Service{store: st, chain: ch}
}

func (s *Service) FetchResults(ctx context.Context, electionID int64, includeBlockchain bool) (*models.ElectionResult, error) {
	election, err := s.store.GetElection(ctx, electionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	degraded := false
	if includeBlockchain && s.chain != nil {
		if result := s.chainResults(ctx, election); result != nil {
			return result, nil
		}
		degraded = true
	}

	result, err := s.databaseResults(ctx, election)
	if err != nil {
		return nil, err
	}
	if degraded {
		result.Blockchain = &models.BlockchainInfo{
			Status:  models.ChainStatusError,
			Message: "Blockchain read failed, results served from database",
		}
	}
	return result, nil
}

// chainResults attempts the on-chain read. Any failure returns nil and
// the caller falls back to the database tally.
func (s *Service) chainResults(ctx context.Context, election models.Election) *models.ElectionResult {
	contractID, err := s.chain.ResolveElectionID(ctx, election.ID)
	if err != nil {
		slog.Info("election has no on-chain counterpart", "election_id", election.ID)
		return nil
	}

	names, counts, err := s.chain.GetResults(ctx, contractID)
	if err != nil {
		slog.Warn("chain result read failed", "election_id", election.ID, "error", err)
		return nil
	}
	if len(names) != len(counts) {
		slog.Warn("chain returned mismatched tally lengths",
			"election_id", election.ID, "names", len(names), "counts", len(counts))
		return nil
	}

	tally := make([]models.CandidateVotes, len(names))
	for i := range names {
		tally[i] = models.CandidateVotes{
			Candidate: names[i],
			Votes:     counts[i].Int64(),
		}
	}

	return &models.ElectionResult{
		Election: election,
		Results:  tally,
		Source:   models.SourceBlockchain,
	}
}

func (s *Service) databaseResults(ctx context.Context, election models.Election) (*models.ElectionResult, error) {
	counts, err := s.store.CountVotes(ctx, election.ID)
	if err != nil {
		return nil, err
	}

	tally := make([]models.CandidateVotes, len(election.Candidates))
	for i, cand := range election.Candidates {
		tally[i] = models.CandidateVotes{
			Candidate: cand.Name,
			Votes:     counts[cand.ID],
		}
	}

	return &models.ElectionResult{
		Election: election,
		Results:  tally,
		Source:   models.SourceDatabase,
	}, nil
}
