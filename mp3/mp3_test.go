package mp3

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pipelined/musik"
	"github.com/pipelined/musik/mock"
	"github.com/pipelined/musik/test"
)

func TestReadBuffer(t *testing.T) {
	bufferSize := 4
	pcm := []int16{
		math.MaxInt16, -math.MaxInt16,
		0, 0,
		math.MaxInt16, 0,
		0, math.MaxInt16,
		-math.MaxInt16, 0,
	}
	data := new(bytes.Buffer)
	assert.Nil(t, binary.Write(data, binary.LittleEndian, pcm))
	// incomplete frame in the end of stream is dropped.
	data.Write([]byte{1, 2})

	r := bytes.NewReader(data.Bytes())
	buf := make([]byte, bufferSize*frameSize)
	ints := make([]int, bufferSize*numChannels)

	b, err := readBuffer(r, buf, ints)
	assert.Nil(t, err)
	assert.Equal(t, numChannels, b.NumChannels())
	assert.Equal(t, []float64{1, 0, 1, 0}, b[0])
	assert.Equal(t, []float64{-1, 0, 0, 1}, b[1])

	b, err = readBuffer(r, buf, ints)
	assert.Equal(t, io.ErrUnexpectedEOF, err)
	assert.Equal(t, 1, b.Size())
	assert.Equal(t, float64(-1), b[0][0])

	b, err = readBuffer(r, buf, ints)
	assert.Equal(t, io.EOF, err)
	assert.Nil(t, b)
}

func TestInvalidStream(t *testing.T) {
	_, err := NewPump(bytes.NewReader([]byte("definitely not an mpeg stream")))
	assert.NotNil(t, err)
}

func TestMp3Pipe(t *testing.T) {
	frames := 5
	samples := frames * test.Mp3SamplesPerFrame
	pump, err := NewPump(bytes.NewReader(test.Mp3(frames)))
	assert.Nil(t, err)
	assert.Equal(t, test.Mp3SampleRate, pump.SampleRate())
	assert.Equal(t, 2, pump.NumChannels())
	assert.Equal(t, int64(samples), pump.Length())
	assert.InDelta(t, float64(130*time.Millisecond), float64(pump.Duration()), float64(time.Millisecond))

	sink := &mock.Sink{}
	p, err := musik.New(1000,
		musik.WithPump(pump),
		musik.WithSinks(sink),
	)
	assert.Nil(t, err)
	assert.Nil(t, musik.Wait(p.Run(context.Background())))

	messages, n := sink.Count()
	assert.Equal(t, 6, messages)
	assert.Equal(t, samples, n)
	assert.Equal(t, test.Mp3SampleRate, sink.SampleRate)
	// frames are silent.
	for _, channel := range sink.Buffer() {
		for _, v := range channel {
			assert.InDelta(t, 0, v, 0.01)
		}
	}
}
