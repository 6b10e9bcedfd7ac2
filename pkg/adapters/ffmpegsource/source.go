// Package ffmpegsource decodes video tracks into raw RGBA frames using an
// ffmpeg external process.
package ffmpegsource

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/user/stereoshow/pkg/adapters/h264encoder"
	"github.com/user/stereoshow/pkg/ports"
)

// ErrSourceClosed is returned by Next after Close.
var ErrSourceClosed = errors.New("ffmpegsource: source closed")

// output is one raw video stream produced by ffmpeg.
type output struct {
	name    string
	tags    ports.TagSet
	frames  chan readResult
	pending []readResult
	done    bool // frames is closed
}

type readResult struct {
	payload ports.Payload
	err     error
}

// Source yields the decoded frames of one track. Stereo tracks are decoded
// into two outputs whose frames are interleaved left, right, left, ...
// ffmpeg may write either pipe ahead of the other, so frames read early
// are queued per output rather than left blocking the pipe.
type Source struct {
	path    string
	track   ports.TrackInfo
	logger  ports.Logger
	cmd     *exec.Cmd
	stderr  bytes.Buffer
	files   []io.Closer
	outputs []*output
	merge   *interleaver
	stop    chan struct{}

	ordinal int

	mu        sync.Mutex
	closed    bool
	waited    bool
	waitErr   error
	closeOnce sync.Once
}

// Open starts ffmpeg over track of the file at path. An empty ffmpegPath
// uses the same discovery as the encoder.
func Open(ffmpegPath, path string, track ports.TrackInfo, logger ports.Logger) (*Source, error) {
	if track.Width <= 0 || track.Height <= 0 {
		return nil, fmt.Errorf("ffmpegsource: invalid track size %dx%d", track.Width, track.Height)
	}

	bin, err := h264encoder.FindFFmpeg(ffmpegPath)
	if err != nil {
		return nil, err
	}

	s := &Source{
		path:   path,
		track:  track,
		logger: logger.WithComponent("ffmpegsource"),
		stop:   make(chan struct{}),
	}

	s.cmd = exec.Command(bin, decodeArgs(path, track)...)
	s.cmd.Stderr = &s.stderr

	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}

	readers := []io.Reader{stdout}
	var extraWriter *os.File
	if track.Kind == ports.TrackStereo {
		r, w, err := os.Pipe()
		if err != nil {
			return nil, fmt.Errorf("create view pipe: %w", err)
		}
		s.cmd.ExtraFiles = []*os.File{w}
		s.files = append(s.files, r)
		extraWriter = w
		readers = append(readers, r)

		s.outputs = []*output{
			{name: "left", tags: ports.TagSet{ports.TagStereoLeft, ports.LayerTag(0)}},
			{name: "right", tags: ports.TagSet{ports.TagStereoRight, ports.LayerTag(1)}},
		}
	} else {
		s.outputs = []*output{
			{name: track.Kind.String(), tags: viewTags(track)},
		}
	}

	if err := s.cmd.Start(); err != nil {
		for _, f := range s.files {
			f.Close()
		}
		if extraWriter != nil {
			extraWriter.Close()
		}
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	// The child holds its own copy of the write end.
	if extraWriter != nil {
		extraWriter.Close()
	}

	for i, o := range s.outputs {
		o.frames = make(chan readResult)
		go s.readLoop(o, readers[i])
	}
	s.merge = &interleaver{outputs: s.outputs, logger: s.logger}

	s.logger.Debug("Decoding track %d of %s (%s, %dx%d)", track.ID, path, track.Kind, track.Width, track.Height)
	return s, nil
}

func viewTags(track ports.TrackInfo) ports.TagSet {
	if track.Kind == ports.TrackDepth {
		return ports.TagSet{ports.TagDepth}
	}
	return ports.TagSet(track.ViewTags)
}

// decodeArgs builds the ffmpeg arguments that decode one track of path to
// raw RGBA. Stereo tracks map both views: left to stdout, right to fd 3.
func decodeArgs(path string, track ports.TrackInfo) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-noautorotate",
	}
	if track.Kind == ports.TrackStereo {
		args = append(args, "-view_ids", "-1")
	}
	args = append(args, "-i", path)

	stream := fmt.Sprintf("0:%d", track.StreamIndex)
	if track.Kind == ports.TrackStereo {
		args = append(args, "-map", stream+":vpos:left")
		args = append(args, rawOutput("pipe:1")...)
		args = append(args, "-map", stream+":vpos:right")
		return append(args, rawOutput("pipe:3")...)
	}

	args = append(args, "-map", stream)
	return append(args, rawOutput("pipe:1")...)
}

func rawOutput(target string) []string {
	return []string{
		"-an",
		"-fps_mode", "passthrough",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		target,
	}
}

func (s *Source) readLoop(o *output, r io.Reader) {
	defer close(o.frames)

	fr := newFrameReader(r, s.track.Width, s.track.Height)
	for {
		payload, err := fr.next()
		if err == io.EOF {
			return
		}
		res := readResult{payload: payload, err: err}
		select {
		case o.frames <- res:
		case <-s.stop:
			return
		}
		if err != nil {
			return
		}
	}
}

// Next returns the next decoded sample. Outputs take turns; once one is
// exhausted the other is drained. A failed ffmpeg exit is reported after
// all outputs end.
func (s *Source) Next() (ports.Sample, bool, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ports.Sample{}, false, ErrSourceClosed
	}

	o, payload, ok, err := s.merge.next(s.ordinal)
	if err != nil {
		return ports.Sample{}, false, err
	}
	if ok {
		sample := ports.Sample{Ordinal: s.ordinal, Payload: payload}
		if _, pixel := payload.(ports.PixelPayload); pixel {
			sample.Tags = o.tags
		}
		s.ordinal++
		return sample, true, nil
	}

	if err := s.wait(); err != nil {
		return ports.Sample{}, false, err
	}
	return ports.Sample{}, false, nil
}

// interleaver merges the frames of up to two outputs in turn order. It
// receives from whichever output is ready and queues frames that arrive
// before their turn, so no reader waits on the consumer.
type interleaver struct {
	outputs []*output
	logger  ports.Logger
	turn    int
}

// next returns the next payload in turn order, or false once every output
// has ended. A read error is returned as soon as it arrives.
func (iv *interleaver) next(ordinal int) (*output, ports.Payload, bool, error) {
	for {
		live := false
		for range iv.outputs {
			o := iv.outputs[iv.turn]
			if len(o.pending) > 0 {
				res := o.pending[0]
				o.pending = o.pending[1:]
				iv.turn = (iv.turn + 1) % len(iv.outputs)
				return o, res.payload, true, nil
			}
			if !o.done {
				live = true
				break
			}
			iv.turn = (iv.turn + 1) % len(iv.outputs)
		}
		if !live {
			return nil, nil, false, nil
		}

		if err := iv.receive(ordinal); err != nil {
			return nil, nil, false, err
		}
	}
}

// receive blocks until any live output delivers a frame or ends.
func (iv *interleaver) receive(ordinal int) error {
	var chans [2]chan readResult
	for i, o := range iv.outputs {
		if !o.done {
			chans[i] = o.frames
		}
	}

	var (
		o   *output
		res readResult
		ok  bool
	)
	select {
	case res, ok = <-chans[0]:
		o = iv.outputs[0]
	case res, ok = <-chans[1]:
		o = iv.outputs[1]
	}

	switch {
	case !ok:
		o.done = true
		iv.logger.Debug("Output %s ended at ordinal %d", o.name, ordinal)
	case res.err != nil:
		o.done = true
		return fmt.Errorf("read %s frame: %w", o.name, res.err)
	default:
		o.pending = append(o.pending, res)
	}
	return nil
}

func (s *Source) wait() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.waited {
		return s.waitErr
	}
	s.waited = true

	if err := s.cmd.Wait(); err != nil {
		msg := strings.TrimSpace(s.stderr.String())
		s.waitErr = fmt.Errorf("ffmpeg decode of %s failed: %w: %s", s.path, err, msg)
	}
	for _, f := range s.files {
		f.Close()
	}
	return s.waitErr
}

// Close stops the decode process. It is safe to call more than once.
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		waited := s.waited
		s.mu.Unlock()

		close(s.stop)
		if waited {
			return
		}
		if s.cmd.Process != nil {
			s.cmd.Process.Kill()
		}
		// Killed processes exit non-zero; that is expected here.
		s.wait()
	})
	return nil
}

var _ ports.FrameSource = (*Source)(nil)
