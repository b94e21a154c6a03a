package interfaces

import (
	"context"

	"github.com/ternarybob/clipper/internal/models"
)

// ContentExtractor converts a page capture request into markdown content
type ContentExtractor interface {
	Extract(ctx context.Context, req *models.ExtractRequest) (*models.PageContent, error)
}
