package decode

import (
	"math/big"
	"time"

	"solverBridge/internal/domain"
	"solverBridge/internal/model"
)

// resolveScore decides how a solution is ranked. The declared score is
// validated unconditionally; a solution without a well-formed score is
// rejected. When a rank-by-surplus cutoff is configured and the
// auction's driver deadline falls strictly after it, the declared
// score is then ignored and the solution is ranked by realized
// surplus.
func resolveScore(declared model.Score, driverDeadline time.Time, rankBySurplusAfter *time.Time) (domain.Score, error) {
	var score domain.Score
	switch {
	case declared.Solver != nil:
		parsed, ok := new(big.Int).SetString(declared.Solver.Score, 10)
		if !ok {
			return nil, errorf("invalid solver score: %q", declared.Solver.Score)
		}
		score = domain.SolverScore{Score: parsed}
	case declared.RiskAdjusted != nil:
		score = domain.RiskAdjustedScore{SuccessProbability: declared.RiskAdjusted.SuccessProbability}
	default:
		return nil, errorf("score has no variant")
	}

	// The cutoff overrides how the solution is ranked, not whether
	// the declared score is well formed.
	if rankBySurplusAfter != nil && driverDeadline.After(*rankBySurplusAfter) {
		return domain.SurplusScore{}, nil
	}
	return score, nil
}
