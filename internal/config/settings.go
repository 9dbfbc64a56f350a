package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/afero"
	yaml "gopkg.in/yaml.v2"

	"github.com/mediapull/mediapull/internal/model"
)

// Default values
const (
	DefaultVideosDir   = "VideosDownloads"
	DefaultAudiosDir   = "AudiosDownloads"
	DefaultMaxParallel = 3
	DefaultKind        = "video"

	maxParallelCeiling = 10
)

// Environment overrides. Each one, when set and non-empty, wins over the
// file value.
const (
	EnvVideosDir      = "MEDIAPULL_VIDEOS_DIR"
	EnvAudiosDir      = "MEDIAPULL_AUDIOS_DIR"
	EnvMaxParallel    = "MEDIAPULL_MAX_PARALLEL"
	EnvQuality        = "MEDIAPULL_QUALITY"
	EnvKind           = "MEDIAPULL_KIND"
	EnvBandwidthLimit = "MEDIAPULL_BANDWIDTH_LIMIT"
	EnvFFmpegPath     = "MEDIAPULL_FFMPEG_PATH"
)

// Settings manages application configuration
type Settings struct {
	VideosDir      string `yaml:"videos_dir"`
	AudiosDir      string `yaml:"audios_dir"`
	MaxParallel    int    `yaml:"max_parallel"`
	Quality        int    `yaml:"quality"`
	Kind           string `yaml:"kind"`
	BandwidthLimit int    `yaml:"bandwidth_limit"` // bytes per second, 0 means unlimited
	FFmpegPath     string `yaml:"ffmpeg_path"`
}

// Defaults returns settings with every field at its default.
func Defaults() *Settings {
	return &Settings{
		VideosDir:   DefaultVideosDir,
		AudiosDir:   DefaultAudiosDir,
		MaxParallel: DefaultMaxParallel,
		Kind:        DefaultKind,
	}
}

// Load reads settings from path, falling back to defaults when the file is
// absent, then applies environment overrides. A present but malformed file
// is an error.
func Load(fs afero.Fs, path string) (*Settings, error) {
	s := Defaults()

	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("checking config %s: %w", path, err)
	}
	if exists {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	s.applyEnv()
	return s, nil
}

func (s *Settings) applyEnv() {
	if v := os.Getenv(EnvVideosDir); v != "" {
		s.VideosDir = v
	}
	if v := os.Getenv(EnvAudiosDir); v != "" {
		s.AudiosDir = v
	}
	if v := os.Getenv(EnvKind); v != "" {
		s.Kind = v
	}
	if v := os.Getenv(EnvFFmpegPath); v != "" {
		s.FFmpegPath = v
	}
	if n, ok := envInt(EnvMaxParallel); ok {
		s.MaxParallel = n
	}
	if n, ok := envInt(EnvQuality); ok {
		s.Quality = n
	}
	if n, ok := envInt(EnvBandwidthLimit); ok {
		s.BandwidthLimit = n
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// MaxParallelDownloads returns the worker pool size, clamped to [1, 10].
func (s *Settings) MaxParallelDownloads() int {
	n := s.MaxParallel
	if n < 1 {
		n = DefaultMaxParallel
	}
	if n > maxParallelCeiling {
		n = maxParallelCeiling
	}
	return n
}

// StreamKind returns the configured stream kind, defaulting to video when
// the value is unknown.
func (s *Settings) StreamKind() model.StreamKind {
	kind := model.StreamKind(s.Kind)
	if !kind.Valid() {
		return model.StreamVideo
	}
	return kind
}

// DestDir returns the destination directory for the given stream kind.
func (s *Settings) DestDir(kind model.StreamKind) string {
	if kind == model.StreamAudio {
		if s.AudiosDir != "" {
			return s.AudiosDir
		}
		return DefaultAudiosDir
	}
	if s.VideosDir != "" {
		return s.VideosDir
	}
	return DefaultVideosDir
}
