package model

import "strings"

// SourceKind tells whether a MediaSource points at a single item or an
// expandable collection (playlist).
type SourceKind string

const (
	SourceSingle     SourceKind = "single"
	SourceCollection SourceKind = "collection"
)

// URL parameter that marks a collection URL.
const collectionURLParam = "list="

// MediaSource is an opaque remote identifier handed to the pipeline by the
// caller. Immutable once constructed.
type MediaSource struct {
	URL  string
	Kind SourceKind
}

// NewMediaSource builds a MediaSource, classifying the URL as a single item
// or a collection.
func NewMediaSource(url string) MediaSource {
	return MediaSource{URL: url, Kind: DetectSourceKind(url)}
}

// DetectSourceKind classifies a URL. URLs carrying a playlist parameter are
// collections; everything else is treated as a single item.
func DetectSourceKind(url string) SourceKind {
	if strings.Contains(url, collectionURLParam) {
		return SourceCollection
	}
	return SourceSingle
}

// IsCollection reports whether the source expands to multiple members.
func (s MediaSource) IsCollection() bool {
	return s.Kind == SourceCollection
}
