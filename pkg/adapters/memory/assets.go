package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/simplebot/pkg/domain"
)

// Assets implements ports.AssetLoader using an in-memory map.
type Assets struct {
	assets map[string]domain.Asset
}

// NewAssets creates an asset loader from the provided assets, keyed by their ID.
func NewAssets(assets ...domain.Asset) *Assets {
	m := make(map[string]domain.Asset, len(assets))
	for _, a := range assets {
		m[a.ID] = a
	}
	return &Assets{assets: m}
}

// GetAsset returns a copy of the asset with the given id.
func (l *Assets) GetAsset(ctx context.Context, id string) (*domain.Asset, error) {
	a, ok := l.assets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAssetNotFound, id)
	}
	meta := make(map[string]any, len(a.Metadata))
	for k, v := range a.Metadata {
		meta[k] = v
	}
	a.Metadata = meta
	return &a, nil
}

// IDs returns all available asset ids.
func (l *Assets) IDs() []string {
	ids := make([]string, 0, len(l.assets))
	for id := range l.assets {
		ids = append(ids, id)
	}
	sort.Strings(ids) // Deterministic order
	return ids
}
