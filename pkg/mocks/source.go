package mocks

import (
	"image"
	"image/color"
	"sync"

	"github.com/user/stereoshow/pkg/ports"
)

// FrameSource is a mock implementation of ports.FrameSource that replays
// a fixed list of samples.
type FrameSource struct {
	Samples []ports.Sample

	// Err is returned from Next once all samples have been replayed.
	Err error

	NextFunc  func() (ports.Sample, bool, error)
	CloseFunc func() error

	// Recorded calls for verification
	NextCalls   int
	CloseCalled bool

	pos int
}

// NewFrameSource creates a mock source over samples, assigning ordinals in order.
func NewFrameSource(samples ...ports.Sample) *FrameSource {
	for i := range samples {
		samples[i].Ordinal = i
	}
	return &FrameSource{Samples: samples}
}

func (m *FrameSource) Next() (ports.Sample, bool, error) {
	m.NextCalls++
	if m.NextFunc != nil {
		return m.NextFunc()
	}
	if m.pos >= len(m.Samples) {
		if m.Err != nil {
			return ports.Sample{}, false, m.Err
		}
		return ports.Sample{}, false, nil
	}
	s := m.Samples[m.pos]
	m.pos++
	return s, true, nil
}

func (m *FrameSource) Close() error {
	m.CloseCalled = true
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

var _ ports.FrameSource = (*FrameSource)(nil)

// PixelSample builds a pixel sample with a solid image of the given size and color.
func PixelSample(width, height int, c color.Color, tags ...ports.Tag) ports.Sample {
	return ports.Sample{
		Payload: ports.PixelPayload{Image: SolidImage(width, height, c)},
		Tags:    ports.TagSet(tags),
	}
}

// StereoSamples builds n interleaved left/right pixel samples.
func StereoSamples(n, width, height int, left, right color.Color) []ports.Sample {
	samples := make([]ports.Sample, 0, n*2)
	for i := 0; i < n; i++ {
		samples = append(samples,
			PixelSample(width, height, left, ports.TagStereoLeft, ports.LayerTag(0)),
			PixelSample(width, height, right, ports.TagStereoRight, ports.LayerTag(1)),
		)
	}
	return samples
}

// SolidImage returns an RGBA image filled with c.
func SolidImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// Asset is a mock implementation of ports.Asset.
type Asset struct {
	PathValue string
	Stereo    *ports.TrackInfo
	Depth     *ports.TrackInfo

	// Sources maps a track ID to the source returned by OpenSource.
	Sources        map[uint32]ports.FrameSource
	OpenSourceFunc func(track ports.TrackInfo) (ports.FrameSource, error)

	// Recorded calls for verification
	OpenedTracks []uint32
	CloseCalled  bool
}

func (m *Asset) Path() string { return m.PathValue }

func (m *Asset) StereoTrack() (ports.TrackInfo, bool) {
	if m.Stereo == nil {
		return ports.TrackInfo{}, false
	}
	return *m.Stereo, true
}

func (m *Asset) DepthTrack() (ports.TrackInfo, bool) {
	if m.Depth == nil {
		return ports.TrackInfo{}, false
	}
	return *m.Depth, true
}

func (m *Asset) OpenSource(track ports.TrackInfo) (ports.FrameSource, error) {
	m.OpenedTracks = append(m.OpenedTracks, track.ID)
	if m.OpenSourceFunc != nil {
		return m.OpenSourceFunc(track)
	}
	if src, ok := m.Sources[track.ID]; ok {
		return src, nil
	}
	return NewFrameSource(), nil
}

func (m *Asset) Close() error {
	m.CloseCalled = true
	return nil
}

var _ ports.Asset = (*Asset)(nil)

// AssetLoader is a mock implementation of ports.AssetLoader.
// Load is safe for concurrent use.
type AssetLoader struct {
	mu sync.Mutex

	Assets   map[string]*Asset
	LoadFunc func(path string) (ports.Asset, error)

	// Recorded calls for verification
	LoadedPaths []string
}

func (m *AssetLoader) Load(path string) (ports.Asset, error) {
	m.mu.Lock()
	m.LoadedPaths = append(m.LoadedPaths, path)
	m.mu.Unlock()
	if m.LoadFunc != nil {
		return m.LoadFunc(path)
	}
	if a, ok := m.Assets[path]; ok {
		return a, nil
	}
	return &Asset{PathValue: path}, nil
}

var _ ports.AssetLoader = (*AssetLoader)(nil)

// StereoTrack returns a stereo track description for tests.
func StereoTrack(width, height int, frameDuration ports.MediaTime) *ports.TrackInfo {
	return &ports.TrackInfo{
		ID:            1,
		Kind:          ports.TrackStereo,
		Codec:         "hvc1",
		Width:         width,
		Height:        height,
		FrameDuration: frameDuration,
		ViewTags:      []ports.Tag{ports.TagStereoLeft, ports.TagStereoRight, ports.LayerTag(0), ports.LayerTag(1)},
	}
}

// DepthTrack returns a depth track description for tests.
func DepthTrack(width, height int, frameDuration ports.MediaTime) *ports.TrackInfo {
	return &ports.TrackInfo{
		ID:            2,
		StreamIndex:   1,
		Kind:          ports.TrackDepth,
		Codec:         "hvc1",
		Width:         width,
		Height:        height,
		FrameDuration: frameDuration,
		ViewTags:      []ports.Tag{ports.TagDepth},
	}
}
