package storage

import "solverBridge/internal/model"

// Storage defines a sink for round records.
type Storage interface {
	PutRound(record model.RoundRecord) error
}
