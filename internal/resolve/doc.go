package resolve

// Package resolve turns remote media identifiers into candidate stream
// descriptors and picks one deterministically. Collection identifiers
// (playlists) expand to ordered member sources before per-member resolution
// runs. Resolution is a pure query with no side effects.
