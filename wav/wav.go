// Package wav decodes RIFF wave files into musik signal.
package wav

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/pipelined/musik/signal"
)

// pcmFormat is the wave format tag for integer PCM.
const pcmFormat = 1

var (
	// ErrUnsupportedBitDepth is returned when unsupported bit depth is used.
	ErrUnsupportedBitDepth = errors.New("only 8, 16, 24 and 32 bit depth is supported")
	// ErrInvalidFile is returned when stream doesn't have a valid wave header.
	ErrInvalidFile = errors.New("wav is not valid")
)

// Pump reads from wav stream.
// This component cannot be reused for consequent runs.
type Pump struct {
	r           io.ReadSeeker
	decoder     *wav.Decoder
	bitDepth    signal.BitDepth
	sampleRate  int
	numChannels int
	length      int64
	closeOnce   sync.Once
}

// NewPump reads and validates wav header. Audio data is read only when
// the pump is running. If r is an io.Closer, it's closed by Flush and
// Interrupt hooks.
func NewPump(r io.ReadSeeker) (*Pump, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, ErrInvalidFile
	}
	if decoder.WavAudioFormat != pcmFormat {
		return nil, fmt.Errorf("wav audio format %d is not supported", decoder.WavAudioFormat)
	}
	bitDepth := signal.BitDepth(decoder.BitDepth)
	switch bitDepth {
	case signal.BitDepth8, signal.BitDepth16, signal.BitDepth24, signal.BitDepth32:
	default:
		return nil, ErrUnsupportedBitDepth
	}
	if decoder.NumChans == 0 {
		return nil, fmt.Errorf("%w: no channels", ErrInvalidFile)
	}
	if err := decoder.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	numChannels := int(decoder.NumChans)
	frameSize := int64(numChannels) * int64(bitDepth/8)
	return &Pump{
		r:           r,
		decoder:     decoder,
		bitDepth:    bitDepth,
		sampleRate:  int(decoder.SampleRate),
		numChannels: numChannels,
		length:      decoder.PCMLen() / frameSize,
	}, nil
}

// Pump starts the pump process once executed, wav attributes are accessible.
func (p *Pump) Pump(pipeID string, bufferSize int) (func() (signal.Float64, error), int, int, error) {
	ib := &audio.IntBuffer{
		Format:         p.decoder.Format(),
		Data:           make([]int, bufferSize*p.numChannels),
		SourceBitDepth: int(p.bitDepth),
	}

	return func() (signal.Float64, error) {
		readSamples, err := p.decoder.PCMBuffer(ib)
		if err != nil && err != io.EOF {
			return nil, err
		}

		if readSamples == 0 {
			return nil, io.EOF
		}
		data := ib.Data[:readSamples]
		// 8 bit wav samples are unsigned.
		if p.bitDepth == signal.BitDepth8 {
			for i := range data {
				data[i] -= 128
			}
		}
		// prune buffer to actual size
		b := signal.InterInt{Data: data, NumChannels: p.numChannels, BitDepth: p.bitDepth}.AsFloat64()
		if b.Size() != bufferSize {
			return b, io.ErrUnexpectedEOF
		}
		return b, nil
	}, p.sampleRate, p.numChannels, nil
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
	return p.sampleRate
}

// NumChannels returns number of channels.
func (p *Pump) NumChannels() int {
	return p.numChannels
}

// BitDepth returns bit depth of the stream.
func (p *Pump) BitDepth() signal.BitDepth {
	return p.bitDepth
}

// Length returns number of samples per channel.
func (p *Pump) Length() int64 {
	return p.length
}

// Duration returns duration of the stream.
func (p *Pump) Duration() time.Duration {
	return signal.DurationOf(p.sampleRate, p.length)
}
