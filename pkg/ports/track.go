package ports

import (
	"fmt"
	"time"
)

// MediaTime is a rational timestamp of Value/Timescale seconds.
type MediaTime struct {
	Value     int64
	Timescale uint32
}

// IsValid reports whether the time has a usable timescale.
func (t MediaTime) IsValid() bool {
	return t.Timescale > 0
}

// Mul returns t multiplied by n. The result keeps the timescale, so no
// rounding is introduced.
func (t MediaTime) Mul(n int64) MediaTime {
	return MediaTime{Value: t.Value * n, Timescale: t.Timescale}
}

// Duration converts the time to a time.Duration.
func (t MediaTime) Duration() time.Duration {
	if t.Timescale == 0 {
		return 0
	}
	return time.Duration(t.Value) * time.Second / time.Duration(t.Timescale)
}

// String formats the time as value/timescale.
func (t MediaTime) String() string {
	return fmt.Sprintf("%d/%d", t.Value, t.Timescale)
}

// TrackKind classifies a video track of an input asset.
type TrackKind int

const (
	TrackMono TrackKind = iota
	TrackStereo
	TrackDepth
)

// String returns the string representation of the track kind.
func (k TrackKind) String() string {
	switch k {
	case TrackStereo:
		return "stereo"
	case TrackDepth:
		return "depth"
	default:
		return "mono"
	}
}

// TrackInfo describes a video track discovered in an input container.
type TrackInfo struct {
	ID            uint32
	StreamIndex   int // Index of the track in container order
	Kind          TrackKind
	Codec         string // Sample entry type, e.g. "hvc1"
	Width         int
	Height        int
	FrameDuration MediaTime // Minimum per-frame duration
	SampleCount   int
	ViewTags      []Tag
}

// Asset is an opened input container.
type Asset interface {
	// Path returns the file the asset was loaded from.
	Path() string

	// StereoTrack returns the multiview stereo track, if any.
	StereoTrack() (TrackInfo, bool)

	// DepthTrack returns the depth track, if any.
	DepthTrack() (TrackInfo, bool)

	// OpenSource opens a frame source over the given track.
	OpenSource(track TrackInfo) (FrameSource, error)

	// Close releases the asset.
	Close() error
}

// AssetLoader discovers tracks in input containers.
type AssetLoader interface {
	Load(path string) (Asset, error)
}
