package h264encoder

import "fmt"

// H.264 NAL unit types used for access unit framing.
const (
	nalSlice    = 1
	nalIDR      = 5
	nalSEI      = 6
	nalSPS      = 7
	nalPPS      = 8
	nalAUD      = 9
	nalTypeMask = 0x1F
)

// accessUnit is the set of NAL units that make up one coded picture.
type accessUnit struct {
	nalus    [][]byte
	keyframe bool
}

// parseAnnexB parses Annex B byte stream into individual NAL units.
func parseAnnexB(data []byte) [][]byte {
	var nalus [][]byte
	start := -1
	i := 0

	for i < len(data) {
		// Look for start code (0x00 0x00 0x01 or 0x00 0x00 0x00 0x01)
		if i+2 < len(data) && data[i] == 0 && data[i+1] == 0 {
			startCodeLen := 0
			if data[i+2] == 1 {
				startCodeLen = 3
			} else if i+3 < len(data) && data[i+2] == 0 && data[i+3] == 1 {
				startCodeLen = 4
			}

			if startCodeLen > 0 {
				if start >= 0 && i > start {
					nalus = append(nalus, data[start:i])
				}
				i += startCodeLen
				start = i
				continue
			}
		}
		i++
	}

	if start >= 0 && start < len(data) {
		nalus = append(nalus, data[start:])
	}

	return nalus
}

// splitAccessUnits groups an Annex B stream into access units. A new unit
// starts at an access unit delimiter, or at a parameter set, SEI or first
// slice of a picture once the current unit already holds a slice.
func splitAccessUnits(data []byte) []accessUnit {
	var (
		units   []accessUnit
		cur     accessUnit
		haveVCL bool
	)

	flush := func() {
		if len(cur.nalus) > 0 && haveVCL {
			units = append(units, cur)
		}
		cur = accessUnit{}
		haveVCL = false
	}

	for _, nalu := range parseAnnexB(data) {
		if len(nalu) == 0 {
			continue
		}
		typ := nalu[0] & nalTypeMask

		switch typ {
		case nalAUD:
			flush()
		case nalSPS, nalPPS, nalSEI:
			if haveVCL {
				flush()
			}
		case nalSlice, nalIDR:
			// first_mb_in_slice is ue(v); a leading 1 bit encodes 0.
			if haveVCL && len(nalu) > 1 && nalu[1]&0x80 != 0 {
				flush()
			}
			haveVCL = true
			if typ == nalIDR {
				cur.keyframe = true
			}
		}
		cur.nalus = append(cur.nalus, nalu)
	}
	flush()

	return units
}

// extractSPSPPS extracts the first SPS and PPS NAL units.
func extractSPSPPS(units []accessUnit) (sps, pps []byte, err error) {
	for _, au := range units {
		for _, nalu := range au.nalus {
			switch nalu[0] & nalTypeMask {
			case nalSPS:
				if sps == nil {
					sps = append([]byte(nil), nalu...)
				}
			case nalPPS:
				if pps == nil {
					pps = append([]byte(nil), nalu...)
				}
			}
		}
		if sps != nil && pps != nil {
			return sps, pps, nil
		}
	}

	if sps == nil {
		return nil, nil, fmt.Errorf("SPS not found")
	}
	return nil, nil, fmt.Errorf("PPS not found")
}

// toAVCC converts the NAL units of an access unit to AVCC format
// (4-byte length prefixed). Parameter sets and delimiters are dropped
// since they live in the avcC box.
func (au accessUnit) toAVCC() []byte {
	size := 0
	for _, nalu := range au.nalus {
		size += 4 + len(nalu)
	}

	result := make([]byte, 0, size)
	for _, nalu := range au.nalus {
		switch nalu[0] & nalTypeMask {
		case nalSPS, nalPPS, nalAUD:
			continue
		}
		n := len(nalu)
		result = append(result, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
		result = append(result, nalu...)
	}
	return result
}
