package postprocess

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/spf13/afero"

	"github.com/mediapull/mediapull/internal/model"
)

// FFmpeg invocation constants
const (
	FFmpegCommand = "ffmpeg"

	// Audio extraction settings
	AudioCodec   = "libmp3lame"
	AudioBitrate = "128k"

	// Container tag that triggers audio extraction instead of a remux
	FormatMP3 = "mp3"

	// Upper bound on diagnostic output attached to a failure
	maxDiagnosticBytes = 2048
)

// Processor finalizes transferred files. Safe for concurrent use; each call
// operates on paths owned exclusively by one job.
type Processor struct {
	fs         afero.Fs
	ffmpegPath string
}

// NewProcessor creates a processor using the ffmpeg binary from PATH.
func NewProcessor(fs afero.Fs) *Processor {
	return &Processor{fs: fs, ffmpegPath: FFmpegCommand}
}

// SetFFmpegPath overrides the transcoder binary location.
func (p *Processor) SetFFmpegPath(path string) {
	if path != "" {
		p.ffmpegPath = path
	}
}

// Finalize moves tempPath to finalPath. When sourceFormat equals
// targetFormat this is a rename and no subprocess runs. Otherwise ffmpeg
// transcodes temp into final; the temp input is removed on success, and on
// any failure both the temp input and the partial output are removed.
func (p *Processor) Finalize(ctx context.Context, tempPath, finalPath, sourceFormat, targetFormat string) error {
	if sourceFormat == targetFormat {
		if err := p.fs.Rename(tempPath, finalPath); err != nil {
			p.fs.Remove(tempPath)
			return &model.PostProcessError{Input: tempPath, Err: err}
		}
		return nil
	}

	// Cancellation is checked before the subprocess ever launches.
	if err := ctx.Err(); err != nil {
		p.fs.Remove(tempPath)
		return &model.PostProcessError{Input: tempPath, Err: fmt.Errorf("%w: %w", model.ErrCancelled, err)}
	}

	args := buildFFmpegArgs(tempPath, finalPath, targetFormat)
	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		p.fs.Remove(finalPath)
		p.fs.Remove(tempPath)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &model.PostProcessError{Input: tempPath, Err: fmt.Errorf("%w: %w", model.ErrCancelled, ctxErr)}
		}
		return &model.PostProcessError{
			Input:  tempPath,
			Output: diagnosticTail(stderr.Bytes()),
			Err:    err,
		}
	}

	if err := p.fs.Remove(tempPath); err != nil {
		return &model.PostProcessError{Input: tempPath, Err: fmt.Errorf("removing temp input: %w", err)}
	}
	return nil
}

// buildFFmpegArgs builds the transcoder arguments. MP3 targets get a real
// audio extraction; any other mismatch is a container remux without
// re-encoding.
func buildFFmpegArgs(inputPath, outputPath, targetFormat string) []string {
	if targetFormat == FormatMP3 {
		return []string{
			"-y",            // Overwrite output file
			"-i", inputPath, // Input file
			"-vn",                 // Drop any video track
			"-acodec", AudioCodec, // Audio codec
			"-ab", AudioBitrate, // Audio bitrate
			"-nostats",
			outputPath,
		}
	}
	return []string{
		"-y",
		"-i", inputPath,
		"-c", "copy", // Remux only, no re-encode
		"-nostats",
		outputPath,
	}
}

// diagnosticTail keeps the end of the transcoder's stderr, where ffmpeg
// prints the actual failure.
func diagnosticTail(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > maxDiagnosticBytes {
		s = s[len(s)-maxDiagnosticBytes:]
	}
	return s
}
