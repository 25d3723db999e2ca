// Package decode opens audio files and detects their format by content.
package decode

import (
	"bytes"
	"errors"
	"io"
	"os"
	"time"

	"github.com/pipelined/musik"
	"github.com/pipelined/musik/flac"
	"github.com/pipelined/musik/mp3"
	"github.com/pipelined/musik/signal"
	"github.com/pipelined/musik/wav"
)

// headerSize is enough bytes to recognize all supported formats.
const headerSize = 12

// ErrUnknownFormat is returned when content doesn't match any supported
// format.
var ErrUnknownFormat = errors.New("unknown audio format")

// Pump is a decoder of one of supported formats.
type Pump interface {
	musik.Pump
	musik.Flusher
	musik.Interrupter
	SampleRate() int
	NumChannels() int
	Length() int64
}

// Format describes how to recognize and decode a container.
type Format struct {
	Name  string
	match func(header []byte) bool
	open  func(r io.ReadSeeker) (Pump, error)
}

// Formats lists supported formats in the order of detection.
var Formats = []Format{
	{
		Name:  "flac",
		match: isFlac,
		open: func(r io.ReadSeeker) (Pump, error) {
			return flac.NewPump(r)
		},
	},
	{
		Name:  "wav",
		match: isWav,
		open: func(r io.ReadSeeker) (Pump, error) {
			return wav.NewPump(r)
		},
	},
	{
		Name:  "mp3",
		match: isMp3,
		open: func(r io.ReadSeeker) (Pump, error) {
			return mp3.NewPump(r)
		},
	},
}

func isFlac(header []byte) bool {
	return bytes.HasPrefix(header, []byte("fLaC"))
}

func isWav(header []byte) bool {
	return len(header) >= 12 &&
		bytes.Equal(header[0:4], []byte("RIFF")) &&
		bytes.Equal(header[8:12], []byte("WAVE"))
}

func isMp3(header []byte) bool {
	if bytes.HasPrefix(header, []byte("ID3")) {
		return true
	}
	// MPEG frame sync: 11 set bits.
	return len(header) >= 2 && header[0] == 0xff && header[1]&0xe0 == 0xe0
}

// Detect returns format which matches provided header.
func Detect(header []byte) (Format, error) {
	for _, f := range Formats {
		if f.match(header) {
			return f, nil
		}
	}
	return Format{}, ErrUnknownFormat
}

// Source is a decoded audio file. It's used as a pump and closes the file
// when the pump is flushed or interrupted. Failures while decoding are
// returned as musik.KindDecode errors.
type Source struct {
	pump   Pump
	path   string
	format string
}

// Open opens the file at path and creates the decoder for its format.
// Failures to access the file are returned as musik.KindFile errors and
// failures to recognize or decode its content as musik.KindDecode errors.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, musik.FileError(path, err)
	}
	pump, format, err := open(f)
	if err != nil {
		f.Close()
		if musik.KindOf(err) != musik.KindUnknown {
			return nil, err
		}
		return nil, musik.DecodeError(path, err)
	}
	return &Source{
		pump:   pump,
		path:   path,
		format: format.Name,
	}, nil
}

func open(f *os.File) (Pump, Format, error) {
	header := make([]byte, headerSize)
	n, err := io.ReadFull(f, header)
	switch err {
	case nil, io.EOF, io.ErrUnexpectedEOF:
	default:
		return nil, Format{}, musik.FileError(f.Name(), err)
	}
	format, err := Detect(header[:n])
	if err != nil {
		return nil, Format{}, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, Format{}, musik.FileError(f.Name(), err)
	}
	pump, err := format.open(f)
	if err != nil {
		return nil, Format{}, err
	}
	return pump, format, nil
}

// Pump implements musik.Pump.
func (s *Source) Pump(pipeID string, bufferSize int) (func() (signal.Float64, error), int, int, error) {
	fn, sampleRate, numChannels, err := s.pump.Pump(pipeID, bufferSize)
	if err != nil {
		return nil, 0, 0, musik.DecodeError(s.path, err)
	}
	return func() (signal.Float64, error) {
		b, err := fn()
		switch err {
		case nil, io.EOF, io.ErrUnexpectedEOF:
			return b, err
		}
		return nil, musik.DecodeError(s.path, err)
	}, sampleRate, numChannels, nil
}

// Flush closes the file.
func (s *Source) Flush(pipeID string) error {
	return s.pump.Flush(pipeID)
}

// Interrupt closes the file.
func (s *Source) Interrupt(pipeID string) error {
	return s.pump.Interrupt(pipeID)
}

// SampleRate returns sample rate of the source.
func (s *Source) SampleRate() int {
	return s.pump.SampleRate()
}

// NumChannels returns number of channels of the source.
func (s *Source) NumChannels() int {
	return s.pump.NumChannels()
}

// Length returns number of samples per channel. It's 0 if unknown.
func (s *Source) Length() int64 {
	return s.pump.Length()
}

// Path returns path of the source file.
func (s *Source) Path() string {
	return s.path
}

// Format returns name of the source format.
func (s *Source) Format() string {
	return s.format
}

// Duration returns duration of the source. It's 0 if the length is unknown.
func (s *Source) Duration() time.Duration {
	return signal.DurationOf(s.SampleRate(), s.Length())
}
