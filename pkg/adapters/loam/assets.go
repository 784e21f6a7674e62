// Package loam serves content assets (the welcome card, the email template) from a Loam repository.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/simplebot/pkg/domain"
)

// AssetMetadata is the frontmatter of an asset document.
type AssetMetadata struct {
	ID          string         `json:"id" mapstructure:"id"`
	ContentType string         `json:"content_type" mapstructure:"content_type"`
	Description string         `json:"description" mapstructure:"description"`
	Extra       map[string]any `json:",inline" mapstructure:",remain"`
}

// Assets adapts a Loam repository to ports.AssetLoader.
type Assets struct {
	Repo *loam.TypedRepository[AssetMetadata]
}

// New creates the adapter.
func New(repo *loam.TypedRepository[AssetMetadata]) *Assets {
	return &Assets{Repo: repo}
}

// Open initializes a read-only Loam repository at dir.
func Open(dir string) (*Assets, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid content dir: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[AssetMetadata](repo)), nil
}

// GetAsset loads a document. Loam resolves "end-card" to "end-card.md".
func (a *Assets) GetAsset(ctx context.Context, id string) (*domain.Asset, error) {
	doc, err := a.Repo.Get(ctx, id)
	if err != nil {
		if known, listErr := a.has(ctx, id); listErr == nil && !known {
			return nil, fmt.Errorf("%w: %s", domain.ErrAssetNotFound, id)
		}
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}

	assetID := doc.Data.ID
	if assetID == "" {
		assetID = doc.ID
	}

	return &domain.Asset{
		ID:       trimExtension(assetID),
		Metadata: metadataMap(doc.Data),
		Content:  doc.Content,
	}, nil
}

// IDs lists the asset ids with extensions stripped.
func (a *Assets) IDs(ctx context.Context) ([]string, error) {
	docs, err := a.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existing, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existing, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	return ids, nil
}

func (a *Assets) has(ctx context.Context, id string) (bool, error) {
	ids, err := a.IDs(ctx)
	if err != nil {
		return false, err
	}
	want := trimExtension(id)
	for _, known := range ids {
		if known == want {
			return true, nil
		}
	}
	return false, nil
}

// metadataMap flattens the typed frontmatter back into the generic asset metadata.
func metadataMap(meta AssetMetadata) map[string]any {
	out := make(map[string]any, len(meta.Extra)+3)
	for k, v := range meta.Extra {
		out[k] = v
	}
	if meta.ID != "" {
		out["id"] = meta.ID
	}
	if meta.ContentType != "" {
		out["content_type"] = meta.ContentType
	}
	if meta.Description != "" {
		out["description"] = meta.Description
	}
	return out
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
