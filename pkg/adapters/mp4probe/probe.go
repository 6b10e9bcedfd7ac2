// Package mp4probe discovers video tracks and sample timelines in MP4 and
// QuickTime files.
package mp4probe

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/stereoshow/pkg/ports"
)

// ErrNoVideoTrack is returned when a file has no video track.
var ErrNoVideoTrack = errors.New("mp4probe: no video track found")

// Probe is the result of scanning a container.
type Probe struct {
	Path       string
	Fragmented bool
	Tracks     []ports.TrackInfo
}

// StereoTrack returns the first multiview stereo track.
func (p *Probe) StereoTrack() (ports.TrackInfo, bool) {
	return p.find(ports.TrackStereo)
}

// DepthTrack returns the first depth track.
func (p *Probe) DepthTrack() (ports.TrackInfo, bool) {
	return p.find(ports.TrackDepth)
}

func (p *Probe) find(kind ports.TrackKind) (ports.TrackInfo, bool) {
	for _, t := range p.Tracks {
		if t.Kind == kind {
			return t, true
		}
	}
	return ports.TrackInfo{}, false
}

// ProbeFile scans the video tracks of the file at path.
func ProbeFile(path string) (*Probe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	p, err := ProbeReader(f)
	if err != nil {
		return nil, err
	}
	p.Path = path
	return p, nil
}

// ProbeReader scans the video tracks of an MP4 stream.
func ProbeReader(reader io.ReadSeeker) (*Probe, error) {
	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return nil, fmt.Errorf("decode mp4: %w", err)
	}

	moov := movie(mp4File)
	if moov == nil {
		return nil, fmt.Errorf("no moov box found")
	}

	p := &Probe{Fragmented: mp4File.IsFragmented()}
	for idx, trak := range moov.Traks {
		info, ok := describeTrack(trak)
		if !ok {
			continue
		}
		info.StreamIndex = idx

		tl, err := trackTimeline(mp4File, trak)
		if err == nil {
			info.SampleCount = len(tl.Samples)
			info.FrameDuration = tl.FrameDuration()
		}
		p.Tracks = append(p.Tracks, info)
	}

	if len(p.Tracks) == 0 {
		return nil, ErrNoVideoTrack
	}
	return p, nil
}

func movie(mp4File *mp4.File) *mp4.MoovBox {
	if mp4File.IsFragmented() && mp4File.Init != nil && mp4File.Init.Moov != nil {
		return mp4File.Init.Moov
	}
	return mp4File.Moov
}

// describeTrack classifies a track. Non-video tracks are rejected.
func describeTrack(trak *mp4.TrakBox) (ports.TrackInfo, bool) {
	if trak.Mdia == nil || trak.Mdia.Hdlr == nil {
		return ports.TrackInfo{}, false
	}
	hdlr := trak.Mdia.Hdlr
	if hdlr.HandlerType != "vide" && hdlr.HandlerType != "auxv" {
		return ports.TrackInfo{}, false
	}

	info := ports.TrackInfo{Kind: ports.TrackMono}
	if trak.Tkhd != nil {
		info.ID = trak.Tkhd.TrackID
		info.Width = int(trak.Tkhd.Width >> 16)
		info.Height = int(trak.Tkhd.Height >> 16)
	}

	entry := sampleEntry(trak)
	if entry != nil {
		info.Codec = entry.Type()
		if entry.Width > 0 && entry.Height > 0 {
			info.Width = int(entry.Width)
			info.Height = int(entry.Height)
		}
	}

	switch {
	case hdlr.HandlerType == "auxv" || strings.Contains(strings.ToLower(hdlr.Name), "depth"):
		info.Kind = ports.TrackDepth
		info.ViewTags = []ports.Tag{ports.TagDepth}
	case entry != nil && isMultiview(entry):
		info.Kind = ports.TrackStereo
		info.ViewTags = []ports.Tag{ports.TagStereoLeft, ports.TagStereoRight, ports.LayerTag(0), ports.LayerTag(1)}
	}

	return info, true
}

func sampleEntry(trak *mp4.TrakBox) *mp4.VisualSampleEntryBox {
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return nil
	}
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
			return vse
		}
	}
	return nil
}

// isMultiview reports whether an HEVC sample entry carries a layered
// (MV-HEVC) configuration or a video extended usage box.
func isMultiview(entry *mp4.VisualSampleEntryBox) bool {
	switch entry.Type() {
	case "hvc1", "hev1":
	default:
		return false
	}
	for _, child := range entry.Children {
		switch child.Type() {
		case "lhvC", "vexu":
			return true
		}
	}
	return false
}
