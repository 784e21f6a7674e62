package ports

import (
	"context"

	"github.com/aretw0/simplebot/pkg/domain"
)

// AssetLoader retrieves static documents such as the welcome card or the email template.
type AssetLoader interface {
	// GetAsset returns the asset with the given id or domain.ErrAssetNotFound.
	GetAsset(ctx context.Context, id string) (*domain.Asset, error)
}
