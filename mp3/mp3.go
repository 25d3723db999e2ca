// Package mp3 decodes MPEG-1/2 audio layer III streams into musik signal.
package mp3

import (
	"encoding/binary"
	"io"
	"sync"
	"time"

	"github.com/hajimehoshi/go-mp3"

	"github.com/pipelined/musik/signal"
)

const (
	// decoder always provides 16 bit stereo.
	numChannels    = 2
	bytesPerSample = 2
	frameSize      = numChannels * bytesPerSample
)

// Pump allows to read mp3 streams.
// This component cannot be reused for consequent runs.
type Pump struct {
	r         io.Reader
	d         *mp3.Decoder
	closeOnce sync.Once
}

// NewPump creates new mp3 Pump. The first frame is decoded to validate
// the stream. If r is an io.Closer, it's closed by Flush and Interrupt
// hooks.
func NewPump(r io.Reader) (*Pump, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	return &Pump{
		r: r,
		d: d,
	}, nil
}

// Pump reads buffer from mp3.
func (p *Pump) Pump(pipeID string, bufferSize int) (func() (signal.Float64, error), int, int, error) {
	buf := make([]byte, bufferSize*frameSize)
	ints := make([]int, bufferSize*numChannels)
	return func() (signal.Float64, error) {
		return readBuffer(p.d, buf, ints)
	}, p.SampleRate(), numChannels, nil
}

// readBuffer reads interleaved 16 bit little endian frames from r and
// converts them to signal. buf must be able to hold len(ints) samples.
func readBuffer(r io.Reader, buf []byte, ints []int) (signal.Float64, error) {
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	// drop incomplete frame
	n = n - n%frameSize
	if n == 0 {
		return nil, io.EOF
	}
	samples := n / bytesPerSample
	for i := 0; i < samples; i++ {
		ints[i] = int(int16(binary.LittleEndian.Uint16(buf[i*bytesPerSample:])))
	}
	b := signal.InterInt{
		Data:        ints[:samples],
		NumChannels: numChannels,
		BitDepth:    signal.BitDepth16,
	}.AsFloat64()
	if n != len(buf) {
		return b, io.ErrUnexpectedEOF
	}
	return b, nil
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

// SampleRate returns sample rate of decoded stream.
func (p *Pump) SampleRate() int {
	if p == nil || p.d == nil {
		return 0
	}
	return p.d.SampleRate()
}

// NumChannels returns number of channels.
func (p *Pump) NumChannels() int {
	return numChannels
}

// Length returns number of samples per channel. It's 0 if the stream
// length is unknown.
func (p *Pump) Length() int64 {
	if l := p.d.Length(); l > 0 {
		return l / frameSize
	}
	return 0
}

// Duration returns duration of the stream.
func (p *Pump) Duration() time.Duration {
	return signal.DurationOf(p.SampleRate(), p.Length())
}
