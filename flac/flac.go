// Package flac decodes FLAC streams into musik signal.
package flac

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mewkiz/flac"

	"github.com/pipelined/musik/signal"
)

// Pump reads from FLAC stream. Frames are decoded lazily and re-sliced
// into buffers of requested size.
// This component cannot be reused for consequent runs.
type Pump struct {
	r         io.Reader
	stream    *flac.Stream
	bitDepth  signal.BitDepth
	pending   signal.Float64
	closeOnce sync.Once
}

// NewPump parses stream header and metadata blocks. If r is an io.Closer,
// it's closed by Flush and Interrupt hooks.
func NewPump(r io.Reader) (*Pump, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, err
	}
	bitDepth := signal.BitDepth(stream.Info.BitsPerSample)
	if !bitDepth.Supported() {
		return nil, fmt.Errorf("flac bit depth %d is not supported", bitDepth)
	}
	if stream.Info.NChannels == 0 {
		return nil, fmt.Errorf("flac stream has no channels")
	}
	return &Pump{
		r:        r,
		stream:   stream,
		bitDepth: bitDepth,
	}, nil
}

// Pump returns closure which decodes frames until a buffer of bufferSize
// is filled.
func (p *Pump) Pump(pipeID string, bufferSize int) (func() (signal.Float64, error), int, int, error) {
	return func() (signal.Float64, error) {
		var err error
		for p.pending.Size() < bufferSize {
			if err = p.next(); err != nil {
				break
			}
		}
		if err != nil && err != io.EOF {
			return nil, err
		}
		b := p.pending.Slice(0, bufferSize)
		p.pending = p.pending.Slice(bufferSize, p.pending.Size())
		switch {
		case b.Size() == 0:
			return nil, io.EOF
		case b.Size() < bufferSize:
			return b, io.ErrUnexpectedEOF
		}
		return b, nil
	}, p.SampleRate(), p.NumChannels(), nil
}

// next decodes the next frame and appends it to pending signal.
func (p *Pump) next() error {
	f, err := p.stream.ParseNext()
	if err != nil {
		return err
	}
	ints := make(signal.Int32, len(f.Subframes))
	for i, subframe := range f.Subframes {
		ints[i] = subframe.Samples
	}
	p.pending = p.pending.Append(ints.AsFloat64(p.bitDepth))
	return nil
}

// Flush closes the stream.
func (p *Pump) Flush(string) error {
	return p.close()
}

// Interrupt closes the stream.
func (p *Pump) Interrupt(string) error {
	return p.close()
}

func (p *Pump) close() error {
	var err error
	p.closeOnce.Do(func() {
		if c, ok := p.r.(io.Closer); ok {
			err = c.Close()
		}
	})
	return err
}

// SampleRate returns sample rate of the stream.
func (p *Pump) SampleRate() int {
	return int(p.stream.Info.SampleRate)
}

// NumChannels returns number of channels.
func (p *Pump) NumChannels() int {
	return int(p.stream.Info.NChannels)
}

// BitDepth returns bit depth of the stream.
func (p *Pump) BitDepth() signal.BitDepth {
	return p.bitDepth
}

// Length returns number of samples per channel. It's 0 if the stream
// length is unknown.
func (p *Pump) Length() int64 {
	return int64(p.stream.Info.NSamples)
}

// Duration returns duration of the stream.
func (p *Pump) Duration() time.Duration {
	return signal.DurationOf(p.SampleRate(), p.Length())
}
