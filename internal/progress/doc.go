package progress

// Package progress aggregates per-job progress snapshots from in-flight
// workers into one coherent latest-value-per-job view. It replaces the
// callback-style progress notification of earlier revisions with an owned
// object workers publish to through an explicit channel.
