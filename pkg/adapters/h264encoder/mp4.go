package h264encoder

import (
	"fmt"
	"io"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/stereoshow/pkg/ports"
)

// writeMP4 muxes access units into a fragmented MP4 with one video track.
// Sample i has decode time pts[i]; its duration is the distance to the next
// sample, and the last sample lasts one frame duration.
func writeMP4(w io.Writer, width, height int, frameDuration ports.MediaTime, units []accessUnit, pts []ports.MediaTime) error {
	if len(units) == 0 {
		return ErrNoFrames
	}
	if len(units) != len(pts) {
		return fmt.Errorf("%w: %d access units for %d frames", ErrFrameCountMismatch, len(units), len(pts))
	}

	timescale := frameDuration.Timescale
	trackID := uint32(1)

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "video", "und")
	trak := init.Moov.Trak

	sps, pps, err := extractSPSPPS(units)
	if err != nil {
		return fmt.Errorf("extract SPS/PPS: %w", err)
	}

	avcC, err := mp4.CreateAvcC([][]byte{sps}, [][]byte{pps}, true)
	if err != nil {
		return fmt.Errorf("create avcC: %w", err)
	}

	avc1 := mp4.CreateVisualSampleEntryBox("avc1", uint16(width), uint16(height), avcC)
	trak.Mdia.Minf.Stbl.Stsd.AddChild(avc1)

	trak.Tkhd.Width = mp4.Fixed32(width << 16)
	trak.Tkhd.Height = mp4.Fixed32(height << 16)

	frag, err := mp4.CreateFragment(1, trackID)
	if err != nil {
		return fmt.Errorf("create fragment: %w", err)
	}

	for i, au := range units {
		dur := uint32(frameDuration.Value)
		if i < len(units)-1 {
			dur = uint32(pts[i+1].Value - pts[i].Value)
		}

		flags := mp4.NonSyncSampleFlags
		if au.keyframe {
			flags = mp4.SyncSampleFlags
		}

		data := au.toAVCC()
		frag.AddFullSample(mp4.FullSample{
			Sample: mp4.Sample{
				Flags: flags,
				Size:  uint32(len(data)),
				Dur:   dur,
			},
			DecodeTime: uint64(pts[i].Value),
			Data:       data,
		})
	}

	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "avc1", "mp41"})
	if err := ftyp.Encode(w); err != nil {
		return fmt.Errorf("encode ftyp: %w", err)
	}

	if err := init.Moov.Encode(w); err != nil {
		return fmt.Errorf("encode moov: %w", err)
	}

	if err := frag.Encode(w); err != nil {
		return fmt.Errorf("encode fragment: %w", err)
	}

	return nil
}
