package mp4probe

import (
	"fmt"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/stereoshow/pkg/ports"
)

// nonSyncFlag is sample_is_non_sync_sample in ISO/IEC 14496-12 sample flags.
const nonSyncFlag = 0x00010000

// TimelineSample is the timing of one sample in track timescale units.
type TimelineSample struct {
	DecodeTime uint64
	Duration   uint32
	Sync       bool
}

// Timeline is the sample timing of one video track.
type Timeline struct {
	TrackID   uint32
	Codec     string
	Width     int
	Height    int
	Timescale uint32
	Samples   []TimelineSample
}

// FrameDuration returns the smallest non-zero sample duration.
func (t *Timeline) FrameDuration() ports.MediaTime {
	var min uint32
	for _, s := range t.Samples {
		if s.Duration > 0 && (min == 0 || s.Duration < min) {
			min = s.Duration
		}
	}
	return ports.MediaTime{Value: int64(min), Timescale: t.Timescale}
}

// PresentationTime returns the decode time of sample i as a MediaTime.
func (t *Timeline) PresentationTime(i int) ports.MediaTime {
	return ports.MediaTime{Value: int64(t.Samples[i].DecodeTime), Timescale: t.Timescale}
}

// ReadTimeline reads the sample timeline of the first video track in path.
func ReadTimeline(path string) (*Timeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	mp4File, err := mp4.DecodeFile(f)
	if err != nil {
		return nil, fmt.Errorf("decode mp4: %w", err)
	}

	moov := movie(mp4File)
	if moov == nil {
		return nil, fmt.Errorf("no moov box found")
	}

	for _, trak := range moov.Traks {
		info, ok := describeTrack(trak)
		if !ok {
			continue
		}
		tl, err := trackTimeline(mp4File, trak)
		if err != nil {
			return nil, err
		}
		tl.Codec = info.Codec
		tl.Width = info.Width
		tl.Height = info.Height
		return tl, nil
	}

	return nil, ErrNoVideoTrack
}

func trackTimeline(mp4File *mp4.File, trak *mp4.TrakBox) (*Timeline, error) {
	tl := &Timeline{TrackID: trak.Tkhd.TrackID, Timescale: 1000}
	if trak.Mdia.Mdhd != nil {
		tl.Timescale = trak.Mdia.Mdhd.Timescale
	}

	if mp4File.IsFragmented() {
		return tl, fragmentedTimeline(mp4File, tl)
	}
	return tl, progressiveTimeline(trak, tl)
}

func progressiveTimeline(trak *mp4.TrakBox, tl *Timeline) error {
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
		return fmt.Errorf("no sample table found")
	}
	stbl := trak.Mdia.Minf.Stbl
	if stbl.Stsz == nil || stbl.Stts == nil {
		return fmt.Errorf("no stsz or stts box found")
	}

	syncSamples := make(map[uint32]bool)
	if stbl.Stss != nil {
		for _, nr := range stbl.Stss.SampleNumber {
			syncSamples[nr] = true
		}
	}

	count := stbl.Stsz.SampleNumber
	tl.Samples = make([]TimelineSample, 0, count)
	for nr := uint32(1); nr <= count; nr++ {
		decodeTime, dur := stbl.Stts.GetDecodeTime(nr)
		tl.Samples = append(tl.Samples, TimelineSample{
			DecodeTime: decodeTime,
			Duration:   dur,
			Sync:       stbl.Stss == nil || syncSamples[nr],
		})
	}
	return nil
}

func fragmentedTimeline(mp4File *mp4.File, tl *Timeline) error {
	var trex *mp4.TrexBox
	if mp4File.Init != nil && mp4File.Init.Moov != nil && mp4File.Init.Moov.Mvex != nil {
		for _, t := range mp4File.Init.Moov.Mvex.Trexs {
			if t.TrackID == tl.TrackID {
				trex = t
				break
			}
		}
	}

	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil || frag.Moof.Traf == nil || frag.Moof.Traf.Tfhd.TrackID != tl.TrackID {
				continue
			}
			samples, err := frag.GetFullSamples(trex)
			if err != nil {
				return fmt.Errorf("get samples: %w", err)
			}
			for _, s := range samples {
				tl.Samples = append(tl.Samples, TimelineSample{
					DecodeTime: s.DecodeTime,
					Duration:   s.Dur,
					Sync:       s.Flags&nonSyncFlag == 0,
				})
			}
		}
	}
	return nil
}
