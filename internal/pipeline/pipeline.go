package pipeline

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/mediapull/mediapull/internal/model"
	"github.com/mediapull/mediapull/internal/platform"
	"github.com/mediapull/mediapull/internal/postprocess"
	"github.com/mediapull/mediapull/internal/progress"
	"github.com/mediapull/mediapull/internal/resolve"
	"github.com/mediapull/mediapull/internal/transfer"
)

const (
	// DefaultMaxParallel bounds concurrent download workers when the caller
	// does not pick a value.
	DefaultMaxParallel = 3

	// resolveParallel bounds concurrent resolution of collection members.
	// Independent of the download pool.
	resolveParallel = 4

	// eventBuffer sizes the snapshot channel between workers and the
	// aggregator consumer.
	eventBuffer = 64
)

// Request describes one batch invocation.
type Request struct {
	Sources     []model.MediaSource
	Kind        model.StreamKind
	Preference  int // exact quality tier; 0 means highest available
	DestDir     string
	MaxParallel int
}

// Pipeline wires the resolver, download worker, and post-processor into a
// batch scheduler. The aggregator it owns is the live progress view.
type Pipeline struct {
	fs         afero.Fs
	resolver   resolve.Resolver
	worker     *transfer.Worker
	processor  *postprocess.Processor
	aggregator *progress.Aggregator
}

// New creates a pipeline over the given collaborators.
func New(fs afero.Fs, resolver resolve.Resolver, worker *transfer.Worker, processor *postprocess.Processor) *Pipeline {
	return &Pipeline{
		fs:         fs,
		resolver:   resolver,
		worker:     worker,
		processor:  processor,
		aggregator: progress.NewAggregator(),
	}
}

// Aggregator exposes the live progress view for rendering during Run.
func (p *Pipeline) Aggregator() *progress.Aggregator {
	return p.aggregator
}

// item tracks one submitted member through the stages. Items stay in
// submission order; the index into the slice is the result index.
type item struct {
	source model.MediaSource
	job    *model.DownloadJob
	path   string
	err    error
}

// Run executes the batch and blocks until every job is terminal. It returns
// one result per submitted item in submission order. The only error Run
// itself returns is a failed batch-wide precondition; per-job failures land
// in the result slice.
func (p *Pipeline) Run(ctx context.Context, req Request) ([]model.PipelineResult, error) {
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("unknown stream kind %q", req.Kind)
	}
	maxParallel := req.MaxParallel
	if maxParallel < 1 {
		maxParallel = DefaultMaxParallel
	}

	// Destination is a shared precondition: validated once, before any
	// worker spawns.
	if err := platform.EnsureDir(p.fs, req.DestDir); err != nil {
		return nil, &model.PreconditionError{Dir: req.DestDir, Err: err}
	}
	if err := platform.CheckWritable(p.fs, req.DestDir); err != nil {
		return nil, &model.PreconditionError{Dir: req.DestDir, Err: err}
	}

	items := p.expand(ctx, req.Sources)
	p.resolveAll(ctx, items, req)

	for _, it := range items {
		if it.job != nil {
			p.aggregator.Register(it.job.ID)
		}
	}

	events := make(chan model.ProgressSnapshot, eventBuffer)
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		for snap := range events {
			p.aggregator.Observe(snap)
		}
	}()

	p.dispatch(ctx, items, maxParallel, events)

	close(events)
	<-consumerDone
	p.aggregator.Reset()

	results := make([]model.PipelineResult, len(items))
	for i, it := range items {
		results[i] = model.PipelineResult{
			URL:  it.source.URL,
			Job:  it.job,
			Path: it.path,
			Err:  it.err,
		}
	}
	return results, nil
}

// expand flattens collection sources into their ordered members. A failed
// expansion yields a single failed item for that source and does not touch
// its siblings.
func (p *Pipeline) expand(ctx context.Context, sources []model.MediaSource) []*item {
	var items []*item
	for _, source := range sources {
		if !source.IsCollection() {
			items = append(items, &item{source: source})
			continue
		}

		members, err := p.resolver.Expand(ctx, source)
		if err != nil {
			log.Printf("expanding %s failed: %v", source.URL, err)
			items = append(items, &item{source: source, err: err})
			continue
		}
		for _, member := range members {
			items = append(items, &item{source: member})
		}
	}
	return items
}

// resolveAll resolves and selects streams for all pending items with its
// own bounded parallelism. Items keep their slots; failures stay isolated.
func (p *Pipeline) resolveAll(ctx context.Context, items []*item, req Request) {
	slots := make(chan struct{}, resolveParallel)
	var wg sync.WaitGroup

	for _, it := range items {
		if it.err != nil {
			continue
		}
		slots <- struct{}{}
		wg.Add(1)
		go func(it *item) {
			defer wg.Done()
			defer func() { <-slots }()
			it.job, it.err = p.prepareJob(ctx, it.source, req)
		}(it)
	}
	wg.Wait()

	p.assignDestinations(items, req.DestDir)
}

// prepareJob resolves one source and selects its stream. The destination
// path is filled in later, once all titles are known.
func (p *Pipeline) prepareJob(ctx context.Context, source model.MediaSource, req Request) (*model.DownloadJob, error) {
	resolution, err := p.resolver.Resolve(ctx, source)
	if err != nil {
		log.Printf("resolving %s failed: %v", source.URL, err)
		return nil, err
	}

	stream, err := resolve.Select(resolution.Streams, req.Kind, req.Preference)
	if err != nil {
		log.Printf("skipping %s: %v", source.URL, err)
		return nil, err
	}

	return model.NewDownloadJob(source, stream, resolution.Title, ""), nil
}

// assignDestinations computes final paths in submission order, suffixing
// duplicate slugs so no two jobs ever share a destination or temp path.
// Suffixed candidates are re-checked against every name already reserved;
// a title that slugifies to an already-suffixed name bumps further.
func (p *Pipeline) assignDestinations(items []*item, destDir string) {
	used := make(map[string]bool)
	for i, it := range items {
		if it.job == nil {
			continue
		}
		base := platform.SafeFileName(it.job.Title, fmt.Sprintf("media-%d", i+1))
		ext := targetFormat(it.job.Stream)

		name := base + "." + ext
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s-%d.%s", base, n, ext)
		}
		used[name] = true
		it.job.DestPath = filepath.Join(destDir, name)
	}
}

// dispatch runs the download workers with bounded parallelism and FIFO
// dispatch order. After cancellation no queued job starts; it fails with
// the distinct cancelled reason instead.
func (p *Pipeline) dispatch(ctx context.Context, items []*item, maxParallel int, events chan<- model.ProgressSnapshot) {
	slots := make(chan struct{}, maxParallel)
	var wg sync.WaitGroup

	for _, it := range items {
		if it.err != nil || it.job == nil {
			continue
		}

		if ctx.Err() != nil {
			it.job.Transition(model.JobStateFailed)
			it.err = model.NewCancelledTransfer(it.job.Source.URL, ctx.Err())
			continue
		}

		select {
		case <-ctx.Done():
			it.job.Transition(model.JobStateFailed)
			it.err = model.NewCancelledTransfer(it.job.Source.URL, ctx.Err())
			continue
		case slots <- struct{}{}:
		}

		wg.Add(1)
		go func(it *item) {
			defer wg.Done()
			defer func() { <-slots }()
			it.path, it.err = p.runJob(ctx, it.job, events)
		}(it)
	}
	wg.Wait()
}

// runJob drives one job through its state machine: transfer, then
// finalize. Any stage failure marks the job failed and surfaces the cause.
func (p *Pipeline) runJob(ctx context.Context, job *model.DownloadJob, events chan<- model.ProgressSnapshot) (string, error) {
	if err := job.Transition(model.JobStateRunning); err != nil {
		return "", err
	}
	log.Printf("job %s: downloading %s -> %s", job.ID, job.Source.URL, job.DestPath)

	tempPath, err := p.worker.Run(ctx, job, events)
	if err != nil {
		job.Transition(model.JobStateFailed)
		return "", err
	}

	if err := job.Transition(model.JobStatePostProcessing); err != nil {
		return "", err
	}

	if err := p.processor.Finalize(ctx, tempPath, job.DestPath, job.Stream.Format, targetFormat(job.Stream)); err != nil {
		job.Transition(model.JobStateFailed)
		return "", err
	}

	if err := job.Transition(model.JobStateDone); err != nil {
		return "", err
	}
	log.Printf("job %s: done (%d bytes)", job.ID, job.Transferred())
	return job.DestPath, nil
}

// targetFormat is the container a finished job must end up in: audio-only
// downloads are finalized as MP3, video keeps the transferred container.
func targetFormat(stream model.Stream) string {
	if stream.Kind == model.StreamAudio {
		return postprocess.FormatMP3
	}
	return strings.ToLower(stream.Format)
}
