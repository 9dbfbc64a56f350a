package transfer

// Package transfer implements the download worker: it streams one selected
// encoding to a temporary path next to the final destination, emitting a
// progress snapshot per chunk and honoring cancellation at chunk
// boundaries. The transport is abstracted behind StreamOpener so tests run
// without the network.
