package h264encoder

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/user/stereoshow/pkg/ports"
)

// submission is a buffer queued for the ffmpeg writer.
type submission struct {
	buf *ports.PixelBuffer
	pts ports.MediaTime
}

// session streams buffers to one ffmpeg process and muxes its output into
// the file opened at creation.
type session struct {
	path   string
	width  int
	height int
	opts   ports.EncoderOptions
	logger ports.Logger

	file   *os.File
	pool   *bufferPool
	queue  chan submission
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout bytes.Buffer
	stderr bytes.Buffer

	mu        sync.Mutex
	err       error
	finishing bool
	pts       []ports.MediaTime

	writerDone chan struct{}
	finished   chan struct{}
	finishOnce sync.Once
	result     error
}

func (s *session) start(ffmpegPath string) error {
	args := encodeArgs(s.width, s.height, s.opts.FrameDuration.Timescale, s.opts.FrameDuration.Value, s.opts.Quality, s.opts.Bitrate)

	s.cmd = exec.Command(ffmpegPath, args...)
	s.cmd.Stdout = &s.stdout
	s.cmd.Stderr = &s.stderr

	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	s.stdin = stdin

	if err := s.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	go s.writeLoop()
	return nil
}

// writeLoop writes queued buffers to ffmpeg in submission order and
// returns each buffer to the pool once written.
func (s *session) writeLoop() {
	defer close(s.writerDone)

	w := bufio.NewWriterSize(s.stdin, s.width*4*16)
	for sub := range s.queue {
		if s.Err() == nil {
			if _, err := w.Write(sub.buf.Image.Pix); err != nil {
				s.fail(fmt.Errorf("write frame at %s: %w", sub.pts, err))
			}
		}
		s.pool.Release(sub.buf)
	}
	if s.Err() == nil {
		if err := w.Flush(); err != nil {
			s.fail(fmt.Errorf("flush frames: %w", err))
		}
	}
}

func (s *session) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

// Pool returns the session's pixel buffer pool.
func (s *session) Pool() ports.PixelBufferPool {
	return s.pool
}

// ReadyForMoreData reports whether the submit queue has room.
func (s *session) ReadyForMoreData() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.finishing && s.err == nil && len(s.queue) < cap(s.queue)
}

// Append queues buf for encoding at pts.
func (s *session) Append(buf *ports.PixelBuffer, pts ports.MediaTime) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch {
	case s.finishing:
		err = ErrSessionFinished
	case s.err != nil:
		err = s.err
	case pts.Timescale != s.opts.FrameDuration.Timescale:
		err = fmt.Errorf("%w: %s", ErrTimescaleMismatch, pts)
	}
	if err != nil {
		s.pool.Release(buf)
		return err
	}

	select {
	case s.queue <- submission{buf: buf, pts: pts}:
		s.pts = append(s.pts, pts)
		return nil
	default:
		s.pool.Release(buf)
		return ErrQueueFull
	}
}

// FinishWriting closes input and muxes the output in the background.
// Every call returns a channel that yields the same terminal result.
func (s *session) FinishWriting() <-chan error {
	s.finishOnce.Do(func() {
		s.mu.Lock()
		s.finishing = true
		close(s.queue)
		s.mu.Unlock()

		go s.finish()
	})

	done := make(chan error, 1)
	go func() {
		<-s.finished
		done <- s.result
	}()
	return done
}

func (s *session) finish() {
	defer close(s.finished)
	defer s.file.Close()

	<-s.writerDone
	s.stdin.Close()

	if err := s.cmd.Wait(); err != nil {
		msg := strings.TrimSpace(s.stderr.String())
		s.fail(fmt.Errorf("ffmpeg encoding failed: %w: %s", err, msg))
	}

	if err := s.Err(); err != nil {
		s.result = err
		return
	}

	s.mu.Lock()
	pts := s.pts
	s.mu.Unlock()

	units := splitAccessUnits(s.stdout.Bytes())
	s.logger.Debug("Muxing %d access units into %s", len(units), s.path)

	w := bufio.NewWriter(s.file)
	if err := writeMP4(w, s.width, s.height, s.opts.FrameDuration, units, pts); err != nil {
		s.result = fmt.Errorf("mux %s: %w", s.path, err)
		return
	}
	if err := w.Flush(); err != nil {
		s.result = fmt.Errorf("write %s: %w", s.path, err)
		return
	}
	if err := s.file.Sync(); err != nil {
		s.result = fmt.Errorf("sync %s: %w", s.path, err)
	}
}

// Err returns the error that failed the session, if any.
func (s *session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

var _ ports.EncoderSession = (*session)(nil)
