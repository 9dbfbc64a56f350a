package resolve

import (
	"context"

	"github.com/mediapull/mediapull/internal/model"
)

// Resolution is the outcome of resolving one single-item source: the
// candidate encodings plus the remote title used for filename generation.
type Resolution struct {
	Title   string
	Streams []model.Stream
}

// Resolver defines the boundary to the remote metadata service.
type Resolver interface {
	// Resolve returns the candidate streams for a single-item source.
	// Malformed or unreachable identifiers fail with ResolutionError.
	Resolve(ctx context.Context, source model.MediaSource) (*Resolution, error)

	// Expand returns the ordered members of a collection source. Single
	// sources expand to themselves.
	Expand(ctx context.Context, source model.MediaSource) ([]model.MediaSource, error)
}
