package model

// StreamKind is the requested media kind: audio-only or progressive video.
type StreamKind string

const (
	StreamAudio StreamKind = "audio"
	StreamVideo StreamKind = "video"
)

// String returns the string representation of StreamKind.
func (k StreamKind) String() string {
	return string(k)
}

// Valid reports whether the kind is one of the supported values.
func (k StreamKind) Valid() bool {
	return k == StreamAudio || k == StreamVideo
}

// Stream is one candidate encoding of a remote media item. Quality is a
// monotonically comparable measure: height in pixels for video, bitrate in
// bits per second for audio. Size is the expected byte count, 0 when the
// remote side does not report one. Itag identifies the exact encoding so
// the transfer layer can reopen it. Immutable.
type Stream struct {
	Kind    StreamKind
	Format  string // container tag, e.g. "mp4", "webm", "m4a"
	Quality int
	Size    int64
	Itag    int
}

// SizeKnown reports whether size-based progress is available for this
// stream.
func (s Stream) SizeKnown() bool {
	return s.Size > 0
}
