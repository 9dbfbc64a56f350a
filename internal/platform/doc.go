package platform

// Package platform contains filesystem glue shared by the pipeline:
// destination directory preconditions and safe filename generation.
