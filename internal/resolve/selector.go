package resolve

import (
	"sort"

	"github.com/mediapull/mediapull/internal/model"
)

// Select picks exactly one stream of the requested kind. With no preference
// (0) the highest quality wins; a non-zero preference requires an exact
// quality match and never falls back to a different tier. Selection is
// deterministic: stable sort by quality, then by declaration order.
func Select(streams []model.Stream, kind model.StreamKind, preference int) (model.Stream, error) {
	candidates := make([]model.Stream, 0, len(streams))
	for _, s := range streams {
		if s.Kind == kind {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return model.Stream{}, &model.SelectionNotFoundError{Kind: kind, Preference: preference}
	}

	if preference > 0 {
		for _, s := range candidates {
			if s.Quality == preference {
				return s, nil
			}
		}
		return model.Stream{}, &model.SelectionNotFoundError{Kind: kind, Preference: preference}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Quality > candidates[j].Quality
	})
	return candidates[0], nil
}
