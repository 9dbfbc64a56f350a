package model

// Package model defines the domain data structures shared across the
// pipeline: media sources, candidate streams, download jobs with explicit
// state transitions, progress snapshots, and per-job results.
