package ffmpegsource

import (
	"fmt"

	"github.com/user/stereoshow/pkg/adapters/mp4probe"
	"github.com/user/stereoshow/pkg/ports"
)

// Loader discovers tracks with mp4probe and decodes them with ffmpeg.
type Loader struct {
	ffmpegPath string
	logger     ports.Logger
}

// NewLoader creates a loader. An empty ffmpegPath searches the usual locations.
func NewLoader(ffmpegPath string, logger ports.Logger) *Loader {
	return &Loader{ffmpegPath: ffmpegPath, logger: logger}
}

// Load probes the container at path.
func (l *Loader) Load(path string) (ports.Asset, error) {
	probe, err := mp4probe.ProbeFile(path)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}

	for _, t := range probe.Tracks {
		l.logger.Debug("Track %d: %s %s %dx%d, %d samples, frame duration %s",
			t.ID, t.Kind, t.Codec, t.Width, t.Height, t.SampleCount, t.FrameDuration)
	}
	return &asset{probe: probe, loader: l}, nil
}

type asset struct {
	probe  *mp4probe.Probe
	loader *Loader
}

func (a *asset) Path() string {
	return a.probe.Path
}

func (a *asset) StereoTrack() (ports.TrackInfo, bool) {
	return a.probe.StereoTrack()
}

func (a *asset) DepthTrack() (ports.TrackInfo, bool) {
	return a.probe.DepthTrack()
}

func (a *asset) OpenSource(track ports.TrackInfo) (ports.FrameSource, error) {
	return Open(a.loader.ffmpegPath, a.probe.Path, track, a.loader.logger)
}

func (a *asset) Close() error {
	return nil
}

var _ ports.AssetLoader = (*Loader)(nil)
