package models

import "time"

// Result source constants
const (
	SourceDatabase   = "database"
	SourceBlockchain = "blockchain"
)

// Blockchain submission status constants
const (
	ChainStatusSubmitted = "submitted"
	ChainStatusSkipped   = "skipped"
	ChainStatusError     = "error"
)

// Request types

type LoginRequest struct {
	WalletAddress string `json:"walletAddress"`
	Signature     string `json:"signature"`
	Nonce         string `json:"nonce"`
}

type CreateElectionRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Candidates  []string `json:"candidates"`
}

type SubmitVoteRequest struct {
	ElectionID  int64  `json:"electionId"`
	CandidateID int64  `json:"candidateId"`
	TxHash      string `json:"txHash"`
}

// Response types

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

type ListElectionsResponse struct {
	Elections []Election `json:"elections"`
}

type CreateElectionResponse struct {
	Election Election `json:"election"`
}

// ElectionResultsResponse is an ElectionResult plus the live syncing
// flag: when chain_syncing is true the tally shown may still be
// upgraded to a chain-confirmed one.
type ElectionResultsResponse struct {
	ElectionResult
	ChainSyncing bool `json:"chain_syncing"`
}

type SubmitVoteResponse struct {
	Status     string          `json:"status"`
	Vote       Vote            `json:"vote"`
	Blockchain *BlockchainInfo `json:"blockchain,omitempty"`
}

// Domain types

type User struct {
	ID            int64     `json:"id"`
	WalletAddress string    `json:"wallet_address"`
	IsAdmin       bool      `json:"is_admin"`
	CreatedAt     time.Time `json:"created_at"`
}

type Candidate struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Election struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	Candidates  []Candidate     `json:"candidates"`
	Blockchain  *BlockchainInfo `json:"blockchain,omitempty"`
}

type Vote struct {
	ID          int64     `json:"id"`
	ElectionID  int64     `json:"election_id"`
	VoterID     int64     `json:"voter_id"`
	CandidateID int64     `json:"candidate_id"`
	TxHash      string    `json:"tx_hash"`
	CreatedAt   time.Time `json:"created_at"`
}

// BlockchainInfo describes the outcome of a chain submission or read.
// Status is one of the ChainStatus* constants.
type BlockchainInfo struct {
	TxHash  string `json:"tx_hash,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Result types

// CandidateVotes is one row of an election tally, in candidate order.
type CandidateVotes struct {
	Candidate string `json:"candidate"`
	Votes     int64  `json:"votes"`
}

// ElectionResult is the payload produced by a single result fetch.
// Source records which tier produced the tally; a produced value is
// never mutated, a new fetch produces a new value.
type ElectionResult struct {
	Election Election         `json:"election"`
	Results  []CandidateVotes `json:"results"`
	Source   string           `json:"source"`
	// Blockchain carries chain-tier metadata (e.g. why a read degraded).
	Blockchain *BlockchainInfo `json:"blockchain,omitempty"`
}

// VoteEvent is published after a vote is durably recorded.
type VoteEvent struct {
	EventID     string    `json:"event_id"`
	ElectionID  int64     `json:"election_id"`
	CandidateID int64     `json:"candidate_id"`
	Wallet      string    `json:"wallet"`
	TxHash      string    `json:"tx_hash"`
	CastAt      time.Time `json:"cast_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
