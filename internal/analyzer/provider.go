package analyzer

import (
	"context"

	"github.com/Bahjat/page-snapshot/internal/model"
)

// PageInsightProvider defines the contract for any snapshot engine.
type PageInsightProvider interface {
	Analyze(ctx context.Context, req model.SnapshotRequest) (*model.PageProfile, error)
}
