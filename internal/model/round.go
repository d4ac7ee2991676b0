package model

import "time"

// RoundRecord is one auction round's outcome, persisted for later
// inspection. A round with no solutions and an Error records a solver
// response that failed validation.
type RoundRecord struct {
	AuctionID  string           `json:"auction_id"`
	Solver     string           `json:"solver"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Solutions  []SolutionRecord `json:"solutions"`
	Error      string           `json:"error,omitempty"`
}

// SolutionRecord summarizes one validated solution of a round.
type SolutionRecord struct {
	ID           uint64 `json:"id"`
	Trades       int    `json:"trades"`
	Interactions int    `json:"interactions"`
	ScoreKind    string `json:"score_kind"`
	Score        string `json:"score,omitempty"`
	Gas          uint64 `json:"gas,omitempty"`
}
