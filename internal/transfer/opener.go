package transfer

import (
	"context"
	"fmt"
	"io"

	"github.com/kkdai/youtube/v2"

	"github.com/mediapull/mediapull/internal/model"
)

// YouTubeOpener opens streams against YouTube by itag, reusing one client
// across jobs.
type YouTubeOpener struct {
	client *youtube.Client
}

// NewYouTubeOpener creates an opener with a fresh client.
func NewYouTubeOpener() *YouTubeOpener {
	return &YouTubeOpener{client: &youtube.Client{}}
}

// Open re-fetches the video metadata and starts the byte stream for the
// exact encoding picked at selection time.
func (o *YouTubeOpener) Open(ctx context.Context, source model.MediaSource, stream model.Stream) (io.ReadCloser, int64, error) {
	video, err := o.client.GetVideoContext(ctx, source.URL)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching video metadata: %w", err)
	}

	for i := range video.Formats {
		if video.Formats[i].ItagNo == stream.Itag {
			body, size, err := o.client.GetStreamContext(ctx, video, &video.Formats[i])
			if err != nil {
				return nil, 0, fmt.Errorf("starting stream: %w", err)
			}
			return body, size, nil
		}
	}
	return nil, 0, fmt.Errorf("itag %d no longer offered for %s", stream.Itag, source.URL)
}
