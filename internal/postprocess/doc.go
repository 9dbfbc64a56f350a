package postprocess

// Package postprocess finalizes a finished transfer: an atomic rename when
// the transferred container already matches the target format, or an ffmpeg
// subprocess invocation when it does not (audio extraction, container
// remux). Failures remove both the temp input and any partial output.
