package config

// Package config loads pipeline settings from an optional YAML file with
// environment overrides, and applies defaults and clamping on read.
