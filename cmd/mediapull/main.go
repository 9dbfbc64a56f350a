package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"

	"github.com/mediapull/mediapull/internal/config"
	"github.com/mediapull/mediapull/internal/model"
	"github.com/mediapull/mediapull/internal/pipeline"
	"github.com/mediapull/mediapull/internal/postprocess"
	"github.com/mediapull/mediapull/internal/resolve"
	"github.com/mediapull/mediapull/internal/transfer"
)

const progressInterval = 500 * time.Millisecond

func main() {
	cfgFileName := flag.String("c", "mediapull.yml", "Path to config file")
	outputDir := flag.String("o", "", "Destination directory (overrides config)")
	audioOnly := flag.Bool("a", false, "Download audio only, finalized as MP3")
	quality := flag.Int("q", 0, "Exact quality tier (height for video, bitrate for audio); 0 picks the best")
	maxParallel := flag.Int("p", 0, "Max parallel downloads (overrides config)")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: mediapull [flags] URL [URL ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	_ = godotenv.Load()

	fs := afero.NewOsFs()
	cfg, err := config.Load(fs, *cfgFileName)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	kind := cfg.StreamKind()
	if *audioOnly {
		kind = model.StreamAudio
	}
	if *quality == 0 {
		*quality = cfg.Quality
	}
	destDir := *outputDir
	if destDir == "" {
		destDir = cfg.DestDir(kind)
	}
	parallel := cfg.MaxParallelDownloads()
	if *maxParallel > 0 {
		parallel = *maxParallel
	}

	worker := transfer.NewWorker(fs, transfer.NewYouTubeOpener())
	if cfg.BandwidthLimit > 0 {
		worker.SetBandwidthLimit(cfg.BandwidthLimit)
	}
	processor := postprocess.NewProcessor(fs)
	if cfg.FFmpegPath != "" {
		processor.SetFFmpegPath(cfg.FFmpegPath)
	}
	p := pipeline.New(fs, resolve.NewYouTubeResolver(), worker, processor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		fmt.Fprintln(os.Stderr, "Received termination signal. Cancelling...")
		cancel()
	}()

	sources := make([]model.MediaSource, flag.NArg())
	for i, url := range flag.Args() {
		sources[i] = model.NewMediaSource(url)
	}

	stopRender := make(chan struct{})
	renderDone := make(chan struct{})
	go renderProgress(p, stopRender, renderDone)

	results, err := p.Run(ctx, pipeline.Request{
		Sources:     sources,
		Kind:        kind,
		Preference:  *quality,
		DestDir:     destDir,
		MaxParallel: parallel,
	})
	close(stopRender)
	<-renderDone
	if err != nil {
		log.Fatalf("run: %v", err)
	}

	summary := model.Summarize(results)
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("FAIL  %s: %v\n", r.URL, r.Err)
			continue
		}
		fmt.Printf("OK    %s -> %s\n", r.URL, r.Path)
	}
	fmt.Printf("%d total, %d succeeded, %d failed\n", summary.Total, summary.Succeeded, summary.Failed)

	if summary.Failed > 0 {
		os.Exit(1)
	}
}

// renderProgress periodically prints the most recently active transfers.
func renderProgress(p *pipeline.Pipeline, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			for _, snap := range p.Aggregator().Recent() {
				if pct, ok := snap.Percent(); ok {
					fmt.Printf("  %s %3d%% (%d/%d bytes)\n", shortID(snap.JobID.String()), pct, snap.Transferred, snap.Total)
				} else {
					fmt.Printf("  %s %d bytes\n", shortID(snap.JobID.String()), snap.Transferred)
				}
			}
		}
	}
}

// shortID trims a job UUID down to its first group for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
