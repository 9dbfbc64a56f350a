package transfer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/spf13/afero"

	"github.com/mediapull/mediapull/internal/model"
)

// fakeOpener serves a fixed payload, optionally failing partway through.
type fakeOpener struct {
	payload   []byte
	size      int64
	openErr   error
	failAfter int // bytes served before the reader errors; 0 disables
}

func (f *fakeOpener) Open(ctx context.Context, source model.MediaSource, stream model.Stream) (io.ReadCloser, int64, error) {
	if f.openErr != nil {
		return nil, 0, f.openErr
	}
	var r io.Reader = bytes.NewReader(f.payload)
	if f.failAfter > 0 {
		r = io.MultiReader(bytes.NewReader(f.payload[:f.failAfter]), &failingReader{})
	}
	return io.NopCloser(r), f.size, nil
}

type failingReader struct{}

func (r *failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("connection reset")
}

func newTestJob(size int64) *model.DownloadJob {
	source := model.NewMediaSource("https://example.com/watch?v=test")
	stream := model.Stream{Kind: model.StreamVideo, Format: "mp4", Quality: 720, Size: size, Itag: 22}
	return model.NewDownloadJob(source, stream, "test", "/downloads/test.mp4")
}

func drain(events chan model.ProgressSnapshot) []model.ProgressSnapshot {
	var got []model.ProgressSnapshot
	for s := range events {
		got = append(got, s)
	}
	return got
}

func TestWorker_Run(t *testing.T) {
	fs := afero.NewMemMapFs()
	payload := bytes.Repeat([]byte("a"), 150*1024)
	worker := NewWorker(fs, &fakeOpener{payload: payload, size: int64(len(payload))})
	job := newTestJob(int64(len(payload)))

	events := make(chan model.ProgressSnapshot, 64)
	tempPath, err := worker.Run(context.Background(), job, events)
	close(events)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if tempPath != job.DestPath+PartialSuffix {
		t.Errorf("Expected temp path %s, got %s", job.DestPath+PartialSuffix, tempPath)
	}

	data, err := afero.ReadFile(fs, tempPath)
	if err != nil {
		t.Fatalf("Failed to read temp file: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("Temp file content mismatch: %d bytes, expected %d", len(data), len(payload))
	}

	snapshots := drain(events)
	if len(snapshots) == 0 {
		t.Fatal("Expected progress snapshots, got none")
	}
	var prev int64
	for _, s := range snapshots {
		if s.Transferred < prev {
			t.Errorf("Transferred went backward: %d after %d", s.Transferred, prev)
		}
		prev = s.Transferred
		if s.Total != int64(len(payload)) {
			t.Errorf("Expected total %d, got %d", len(payload), s.Total)
		}
	}
	if prev != int64(len(payload)) {
		t.Errorf("Final snapshot at %d bytes, expected %d", prev, len(payload))
	}
}

func TestWorker_Run_OpenFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	worker := NewWorker(fs, &fakeOpener{openErr: errors.New("403 forbidden")})
	job := newTestJob(0)

	_, err := worker.Run(context.Background(), job, nil)
	var te *model.TransferError
	if !errors.As(err, &te) {
		t.Fatalf("Expected TransferError, got %v", err)
	}
	if te.Cancelled {
		t.Error("Open failure must not be reported as cancellation")
	}
}

func TestWorker_Run_MidTransferFailureCleansPartial(t *testing.T) {
	fs := afero.NewMemMapFs()
	payload := bytes.Repeat([]byte("b"), 100*1024)
	worker := NewWorker(fs, &fakeOpener{payload: payload, size: int64(len(payload)), failAfter: 70 * 1024})
	job := newTestJob(int64(len(payload)))

	events := make(chan model.ProgressSnapshot, 64)
	_, err := worker.Run(context.Background(), job, events)
	close(events)

	var te *model.TransferError
	if !errors.As(err, &te) {
		t.Fatalf("Expected TransferError, got %v", err)
	}

	exists, statErr := afero.Exists(fs, job.DestPath+PartialSuffix)
	if statErr != nil {
		t.Fatalf("Failed to stat temp file: %v", statErr)
	}
	if exists {
		t.Error("Expected partial file to be removed after failure")
	}
}

func TestWorker_Run_Cancellation(t *testing.T) {
	fs := afero.NewMemMapFs()
	payload := bytes.Repeat([]byte("c"), 256*1024)
	worker := NewWorker(fs, &fakeOpener{payload: payload, size: int64(len(payload))})
	job := newTestJob(int64(len(payload)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := worker.Run(ctx, job, nil)
	var te *model.TransferError
	if !errors.As(err, &te) {
		t.Fatalf("Expected TransferError, got %v", err)
	}
	if !te.Cancelled {
		t.Error("Expected the distinct cancelled reason")
	}
	if !errors.Is(err, model.ErrCancelled) {
		t.Error("errors.Is should match ErrCancelled")
	}

	exists, _ := afero.Exists(fs, job.DestPath+PartialSuffix)
	if exists {
		t.Error("Expected partial file to be removed after cancellation")
	}
}

func TestWorker_Run_ResolverSizeFallback(t *testing.T) {
	fs := afero.NewMemMapFs()
	payload := bytes.Repeat([]byte("e"), 4*1024)
	// Transport reports no size; the stream's resolver estimate is used.
	worker := NewWorker(fs, &fakeOpener{payload: payload, size: 0})
	job := newTestJob(int64(len(payload)))

	events := make(chan model.ProgressSnapshot, 8)
	_, err := worker.Run(context.Background(), job, events)
	close(events)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	snapshots := drain(events)
	if len(snapshots) == 0 {
		t.Fatal("Expected progress snapshots, got none")
	}
	for _, s := range snapshots {
		if s.Total != int64(len(payload)) {
			t.Errorf("Expected total %d from the stream size, got %d", len(payload), s.Total)
		}
	}
}

func TestWorker_Run_UnknownSize(t *testing.T) {
	fs := afero.NewMemMapFs()
	payload := []byte("short payload")
	worker := NewWorker(fs, &fakeOpener{payload: payload, size: 0})
	job := newTestJob(0)

	events := make(chan model.ProgressSnapshot, 8)
	_, err := worker.Run(context.Background(), job, events)
	close(events)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for _, s := range drain(events) {
		if s.Total != 0 {
			t.Errorf("Expected unknown total (0), got %d", s.Total)
		}
		if _, ok := s.Percent(); ok {
			t.Error("Expected indeterminate progress for unknown total")
		}
	}
}

func TestWorker_SetBandwidthLimit(t *testing.T) {
	fs := afero.NewMemMapFs()
	payload := bytes.Repeat([]byte("d"), 8*1024)
	worker := NewWorker(fs, &fakeOpener{payload: payload, size: int64(len(payload))})
	// Large enough not to slow the test, small enough to exercise WaitN.
	worker.SetBandwidthLimit(10 * 1024 * 1024)

	job := newTestJob(int64(len(payload)))
	if _, err := worker.Run(context.Background(), job, nil); err != nil {
		t.Fatalf("Expected no error with bandwidth cap, got %v", err)
	}
}
