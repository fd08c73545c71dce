package ports

import (
	"context"

	"go.trai.ch/bb/internal/core/domain"
)

// Builder runs incremental compile passes. Passes must be serialized.
//
//go:generate mockgen -source=builder.go -destination=mocks/mock_builder.go -package=mocks
type Builder interface {
	// Compile runs one pass over project.
	Compile(ctx context.Context, project *domain.Project) (*domain.BuildResult, error)
	// Invalidate forgets probed modification times before a pass.
	Invalidate()
	// ForceRebuild makes the next pass rebuild everything.
	ForceRebuild()
}
