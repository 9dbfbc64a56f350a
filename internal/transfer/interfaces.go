package transfer

import (
	"context"
	"io"

	"github.com/mediapull/mediapull/internal/model"
)

// StreamOpener opens the byte stream for a selected encoding. It returns the
// stream, the total size in bytes (0 when unknown), and an error when the
// remote side refuses the transfer.
type StreamOpener interface {
	Open(ctx context.Context, source model.MediaSource, stream model.Stream) (io.ReadCloser, int64, error)
}
