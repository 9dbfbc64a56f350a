package resolve

import (
	"testing"

	"github.com/kkdai/youtube/v2"

	"github.com/mediapull/mediapull/internal/model"
)

func TestMapFormat(t *testing.T) {
	tests := []struct {
		name     string
		format   youtube.Format
		kind     model.StreamKind
		quality  int
		tag      string
		expected bool
	}{
		{
			name: "progressive mp4",
			format: youtube.Format{
				ItagNo: 22, MimeType: `video/mp4; codecs="avc1.64001F, mp4a.40.2"`,
				Width: 1280, Height: 720, AudioChannels: 2, ContentLength: 1000,
			},
			kind: model.StreamVideo, quality: 720, tag: "mp4", expected: true,
		},
		{
			name: "audio only m4a",
			format: youtube.Format{
				ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`,
				AudioChannels: 2, Bitrate: 130000,
			},
			kind: model.StreamAudio, quality: 130000, tag: "m4a", expected: true,
		},
		{
			name: "audio only webm",
			format: youtube.Format{
				ItagNo: 251, MimeType: `audio/webm; codecs="opus"`,
				AudioChannels: 2, Bitrate: 160000,
			},
			kind: model.StreamAudio, quality: 160000, tag: "webm", expected: true,
		},
		{
			name: "adaptive video-only is dropped",
			format: youtube.Format{
				ItagNo: 137, MimeType: `video/mp4; codecs="avc1.640028"`,
				Width: 1920, Height: 1080,
			},
			expected: false,
		},
	}

	for _, test := range tests {
		stream, ok := mapFormat(&test.format)
		if ok != test.expected {
			t.Errorf("%s: mapFormat ok = %v, expected %v", test.name, ok, test.expected)
			continue
		}
		if !ok {
			continue
		}
		if stream.Kind != test.kind {
			t.Errorf("%s: kind = %s, expected %s", test.name, stream.Kind, test.kind)
		}
		if stream.Quality != test.quality {
			t.Errorf("%s: quality = %d, expected %d", test.name, stream.Quality, test.quality)
		}
		if stream.Format != test.tag {
			t.Errorf("%s: format = %s, expected %s", test.name, stream.Format, test.tag)
		}
		if stream.Itag != test.format.ItagNo {
			t.Errorf("%s: itag = %d, expected %d", test.name, stream.Itag, test.format.ItagNo)
		}
	}
}

func TestContainerTag(t *testing.T) {
	tests := []struct {
		mimeType string
		expected string
	}{
		{`video/mp4; codecs="avc1"`, "mp4"},
		{`video/webm; codecs="vp9"`, "webm"},
		{`audio/mp4; codecs="mp4a.40.2"`, "m4a"},
		{`audio/webm; codecs="opus"`, "webm"},
		{"garbage", "bin"},
	}

	for _, test := range tests {
		if got := containerTag(test.mimeType); got != test.expected {
			t.Errorf("containerTag(%s) = %s, expected %s", test.mimeType, got, test.expected)
		}
	}
}
