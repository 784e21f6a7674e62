package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/simplebot/pkg/domain"
	"github.com/aretw0/simplebot/pkg/ports"
)

// LoadCard reads an attachment payload from the asset loader.
// The asset body must be JSON; its content type comes from the "content_type"
// metadata and defaults to an adaptive card.
func LoadCard(ctx context.Context, assets ports.AssetLoader, id string) (domain.Attachment, error) {
	asset, err := assets.GetAsset(ctx, id)
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("load card %s: %w", id, err)
	}

	content := strings.TrimSpace(asset.Content)
	if !json.Valid([]byte(content)) {
		return domain.Attachment{}, fmt.Errorf("card %s is not valid JSON", id)
	}

	return domain.Attachment{
		ContentType: asset.MetaString("content_type", domain.ContentTypeAdaptiveCard),
		Content:     json.RawMessage(content),
	}, nil
}
