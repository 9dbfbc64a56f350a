package transfer

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/time/rate"

	"github.com/mediapull/mediapull/internal/model"
)

const (
	// PartialSuffix marks in-flight temp files. A crash mid-transfer never
	// leaves a half-written file at the final name.
	PartialSuffix = ".partial"

	// DefaultChunkSize is the copy buffer size; progress is reported and
	// cancellation checked once per chunk.
	DefaultChunkSize = 64 * 1024

	filePermissions = 0644
)

// Worker executes single-stream transfers. Safe for concurrent use; each
// Run owns its temp file exclusively.
type Worker struct {
	fs        afero.Fs
	opener    StreamOpener
	limiter   *rate.Limiter // nil means unlimited bandwidth
	chunkSize int
}

// NewWorker creates a worker over the given filesystem and transport.
func NewWorker(fs afero.Fs, opener StreamOpener) *Worker {
	return &Worker{
		fs:        fs,
		opener:    opener,
		chunkSize: DefaultChunkSize,
	}
}

// SetBandwidthLimit caps the aggregate transfer rate of this worker in
// bytes per second. Zero removes the cap.
func (w *Worker) SetBandwidthLimit(bytesPerSec int) {
	if bytesPerSec <= 0 {
		w.limiter = nil
		return
	}
	burst := bytesPerSec
	if burst < w.chunkSize {
		burst = w.chunkSize
	}
	w.limiter = rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}

// Run transfers the job's stream to <dest>.partial and returns the temp
// path. On any failure the partial file is removed and a TransferError is
// returned; cancellation produces the distinct cancelled reason. Progress
// snapshots are sent to events on every chunk boundary.
func (w *Worker) Run(ctx context.Context, job *model.DownloadJob, events chan<- model.ProgressSnapshot) (string, error) {
	body, size, err := w.opener.Open(ctx, job.Source, job.Stream)
	if err != nil {
		return "", w.failure(job, err)
	}
	defer body.Close()

	// Prefer the size the transport reports at open time, falling back to
	// the resolver's estimate when the stream carries one.
	total := size
	if total <= 0 && job.Stream.SizeKnown() {
		total = job.Stream.Size
	}

	tempPath := job.DestPath + PartialSuffix
	file, err := w.fs.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermissions)
	if err != nil {
		return "", w.failure(job, err)
	}

	buf := make([]byte, w.chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			file.Close()
			w.fs.Remove(tempPath)
			return "", w.failure(job, err)
		}

		n, readErr := body.Read(buf)
		if n > 0 {
			if w.limiter != nil {
				if err := w.limiter.WaitN(ctx, n); err != nil {
					file.Close()
					w.fs.Remove(tempPath)
					return "", w.failure(job, err)
				}
			}
			if _, writeErr := file.Write(buf[:n]); writeErr != nil {
				file.Close()
				w.fs.Remove(tempPath)
				return "", w.failure(job, writeErr)
			}

			transferred := job.AddTransferred(int64(n))
			if events != nil {
				events <- model.ProgressSnapshot{
					JobID:       job.ID,
					Transferred: transferred,
					Total:       total,
					At:          time.Now(),
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			file.Close()
			w.fs.Remove(tempPath)
			return "", w.failure(job, readErr)
		}
	}

	if err := file.Close(); err != nil {
		w.fs.Remove(tempPath)
		return "", w.failure(job, err)
	}
	return tempPath, nil
}

// failure wraps an underlying cause into the job's TransferError,
// preserving the distinct cancellation reason.
func (w *Worker) failure(job *model.DownloadJob, cause error) error {
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		return model.NewCancelledTransfer(job.Source.URL, cause)
	}
	return &model.TransferError{URL: job.Source.URL, Err: cause}
}
