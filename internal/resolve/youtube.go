package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/kkdai/youtube/v2"

	"github.com/mediapull/mediapull/internal/model"
)

const watchURLPrefix = "https://www.youtube.com/watch?v="

// YouTubeResolver resolves identifiers against YouTube using the
// kkdai/youtube client. Safe for concurrent use.
type YouTubeResolver struct {
	client *youtube.Client
}

// NewYouTubeResolver creates a resolver with a fresh client.
func NewYouTubeResolver() *YouTubeResolver {
	return &YouTubeResolver{client: &youtube.Client{}}
}

// Resolve fetches video metadata and maps the remote formats to Stream
// descriptors. Failures are wrapped in ResolutionError.
func (r *YouTubeResolver) Resolve(ctx context.Context, source model.MediaSource) (*Resolution, error) {
	video, err := r.client.GetVideoContext(ctx, source.URL)
	if err != nil {
		return nil, &model.ResolutionError{URL: source.URL, Err: err}
	}

	streams := make([]model.Stream, 0, len(video.Formats))
	for i := range video.Formats {
		if stream, ok := mapFormat(&video.Formats[i]); ok {
			streams = append(streams, stream)
		}
	}

	return &Resolution{Title: video.Title, Streams: streams}, nil
}

// Expand lists the members of a playlist source in playlist order. A single
// source expands to itself. An unreadable playlist is a ResolutionError for
// the collection as a whole; unplayable members surface later, when their
// own resolution runs.
func (r *YouTubeResolver) Expand(ctx context.Context, source model.MediaSource) ([]model.MediaSource, error) {
	if !source.IsCollection() {
		return []model.MediaSource{source}, nil
	}

	playlist, err := r.client.GetPlaylistContext(ctx, source.URL)
	if err != nil {
		return nil, &model.ResolutionError{URL: source.URL, Err: err}
	}

	members := make([]model.MediaSource, 0, len(playlist.Videos))
	for _, entry := range playlist.Videos {
		members = append(members, model.MediaSource{
			URL:  watchURLPrefix + entry.ID,
			Kind: model.SourceSingle,
		})
	}
	if len(members) == 0 {
		return nil, &model.ResolutionError{URL: source.URL, Err: fmt.Errorf("playlist has no members")}
	}
	return members, nil
}

// mapFormat converts one remote format into a Stream descriptor. Formats
// that are neither audio-only nor progressive video (audio+video in one
// stream) are dropped; adaptive video-only tracks cannot be transferred as
// a single file.
func mapFormat(f *youtube.Format) (model.Stream, bool) {
	audioOnly := f.AudioChannels > 0 && f.Width == 0 && f.Height == 0
	progressive := f.AudioChannels > 0 && f.Width > 0 && f.Height > 0

	switch {
	case audioOnly:
		return model.Stream{
			Kind:    model.StreamAudio,
			Format:  containerTag(f.MimeType),
			Quality: f.Bitrate,
			Size:    int64(f.ContentLength),
			Itag:    f.ItagNo,
		}, true
	case progressive:
		return model.Stream{
			Kind:    model.StreamVideo,
			Format:  containerTag(f.MimeType),
			Quality: f.Height,
			Size:    int64(f.ContentLength),
			Itag:    f.ItagNo,
		}, true
	default:
		return model.Stream{}, false
	}
}

// containerTag extracts the container from a MIME type such as
// "video/mp4; codecs=...". Audio MP4 streams are tagged m4a to match the
// file extension they get on disk.
func containerTag(mimeType string) string {
	mt := mimeType
	if idx := strings.Index(mt, ";"); idx >= 0 {
		mt = mt[:idx]
	}
	parts := strings.SplitN(strings.TrimSpace(mt), "/", 2)
	if len(parts) != 2 {
		return "bin"
	}
	if parts[0] == "audio" && parts[1] == "mp4" {
		return "m4a"
	}
	return parts[1]
}
