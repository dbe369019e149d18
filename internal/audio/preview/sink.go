package preview

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Sink receives rendered stereo frames in real time.
type Sink interface {
	Open(sampleRate int) error
	Write(samples [][2]float64) error
	Close() error
}

// DiscardSink drops all audio. It is used when no output device is configured.
type DiscardSink struct{}

func (DiscardSink) Open(int) error            { return nil }
func (DiscardSink) Write([][2]float64) error { return nil }
func (DiscardSink) Close() error             { return nil }

// WriterSink writes interleaved signed 16-bit little-endian PCM to W.
// W is not closed by the sink.
type WriterSink struct {
	W   io.Writer
	buf []byte
}

func (s *WriterSink) Open(int) error {
	return nil
}

func (s *WriterSink) Write(samples [][2]float64) error {
	s.buf = appendPCM16(s.buf[:0], samples)
	_, err := s.W.Write(s.buf)
	return err
}

func (s *WriterSink) Close() error {
	return nil
}

// appendPCM16 encodes frames as interleaved s16le, clipping to full scale.
func appendPCM16(dst []byte, samples [][2]float64) []byte {
	for _, frame := range samples {
		for _, x := range frame {
			x = math.Max(-1, math.Min(1, x))
			dst = binary.LittleEndian.AppendUint16(dst, uint16(int16(x*math.MaxInt16)))
		}
	}
	return dst
}

// CommandSink pipes raw PCM to an external player such as ffplay or aplay.
// The literal "{rate}" in Args is replaced by the sample rate, for example:
//
//	ffplay -f s16le -ar {rate} -ch_layout stereo -nodisp -autoexit -loglevel warning -i pipe:0
type CommandSink struct {
	Name string
	Args []string

	cmd   *exec.Cmd
	stdin io.WriteCloser
	out   WriterSink
}

func (s *CommandSink) Open(sampleRate int) error {
	path, err := exec.LookPath(s.Name)
	if err != nil {
		return fmt.Errorf("preview player not found: %w", err)
	}

	args := make([]string, len(s.Args))
	for i, arg := range s.Args {
		args[i] = strings.ReplaceAll(arg, "{rate}", strconv.Itoa(sampleRate))
	}

	// #nosec G204 - player command comes from configuration
	cmd := exec.Command(path, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return fmt.Errorf("failed to start preview player: %w", err)
	}

	s.cmd = cmd
	s.stdin = stdin
	s.out = WriterSink{W: stdin}
	return nil
}

func (s *CommandSink) Write(samples [][2]float64) error {
	return s.out.Write(samples)
}

// Close ends the input stream and waits for the player to exit.
func (s *CommandSink) Close() error {
	if s.cmd == nil {
		return nil
	}
	closeErr := s.stdin.Close()
	waitErr := s.cmd.Wait()
	s.cmd = nil
	if closeErr != nil {
		return closeErr
	}
	return waitErr
}
