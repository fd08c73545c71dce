package ports

import (
	"context"

	"go.trai.ch/bb/internal/core/domain"
)

// AtlasPacker loads sprite images and packs them into one encoded sheet.
//
//go:generate mockgen -source=atlas.go -destination=mocks/mock_atlas.go -package=mocks
type AtlasPacker interface {
	Pack(ctx context.Context, requests []domain.SpriteRequest) (*domain.Atlas, error)
}
