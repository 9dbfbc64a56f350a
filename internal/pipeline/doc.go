package pipeline

// Package pipeline orchestrates the batch: collection expansion, per-member
// resolution and stream selection, then bounded-parallel download workers
// feeding the post-processor. One job's failure never aborts its siblings;
// the result sequence always mirrors submission order.
