package decode_test

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/pipelined/musik"
	"github.com/pipelined/musik/decode"
	"github.com/pipelined/musik/mock"
	"github.com/pipelined/musik/test"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		header []byte
		format string
		err    error
	}{
		{header: []byte("fLaC\x00\x00\x00\x22"), format: "flac"},
		{header: []byte("RIFF\x24\x00\x00\x00WAVE"), format: "wav"},
		{header: []byte("ID3\x04\x00"), format: "mp3"},
		{header: []byte{0xff, 0xfb, 0x90, 0x00}, format: "mp3"},
		{header: []byte("RIFF\x24\x00\x00\x00AVI "), err: decode.ErrUnknownFormat},
		{header: []byte("OggS"), err: decode.ErrUnknownFormat},
		{header: nil, err: decode.ErrUnknownFormat},
	}
	for _, c := range tests {
		format, err := decode.Detect(c.header)
		assert.Equal(t, c.err, err, "%q", c.header)
		assert.Equal(t, c.format, format.Name, "%q", c.header)
	}
}

func TestOpenWav(t *testing.T) {
	path := test.Sample1.Write(t, "sample1.wav")
	src, err := decode.Open(path)
	assert.Nil(t, err)
	assert.Equal(t, "wav", src.Format())
	assert.Equal(t, path, src.Path())
	assert.Equal(t, test.Sample1.SampleRate, src.SampleRate())
	assert.Equal(t, test.Sample1.NumChannels, src.NumChannels())
	assert.Equal(t, int64(test.Sample1.Samples), src.Length())
	assert.InDelta(t, float64(750*time.Millisecond), float64(src.Duration()), float64(time.Millisecond))

	sink := &mock.Sink{Discard: true}
	p, err := musik.New(1024,
		musik.WithPump(src),
		musik.WithSinks(sink),
	)
	assert.Nil(t, err)
	assert.Nil(t, musik.Wait(p.Run(context.Background())))
	_, samples := sink.Count()
	assert.Equal(t, test.Sample1.Samples, samples)
}

func TestOpenFlac(t *testing.T) {
	path := test.WriteFile(t, "header.flac", test.FlacHeader(96000, 2, 24, 96000*3))
	src, err := decode.Open(path)
	assert.Nil(t, err)
	assert.Equal(t, "flac", src.Format())
	assert.Equal(t, 3*time.Second, src.Duration())
	assert.Nil(t, src.Interrupt(""))

	path = test.Sample2.Write(t, "sample2.flac")
	src, err = decode.Open(path)
	assert.Nil(t, err)
	assert.Equal(t, "flac", src.Format())
	assert.Equal(t, test.Sample2.NumChannels, src.NumChannels())
	assert.Equal(t, int64(test.Sample2.Samples), src.Length())

	sink := &mock.Sink{Discard: true}
	p, err := musik.New(1024,
		musik.WithPump(src),
		musik.WithSinks(sink),
	)
	assert.Nil(t, err)
	assert.Nil(t, musik.Wait(p.Run(context.Background())))
	_, samples := sink.Count()
	assert.Equal(t, test.Sample2.Samples, samples)
}

func TestOpenMp3(t *testing.T) {
	path := test.WriteFile(t, "silence.mp3", test.Mp3(3))
	src, err := decode.Open(path)
	assert.Nil(t, err)
	assert.Equal(t, "mp3", src.Format())
	assert.Equal(t, test.Mp3SampleRate, src.SampleRate())
	assert.Equal(t, int64(3*test.Mp3SamplesPerFrame), src.Length())
	assert.Nil(t, src.Flush(""))
}

func TestCorruptFrame(t *testing.T) {
	path := test.Sample2.Write(t, "corrupt.flac")
	test.CorruptTail(t, path)

	// header is fine, so failure happens while playing.
	src, err := decode.Open(path)
	assert.Nil(t, err)
	sink := &mock.Sink{Discard: true}
	p, err := musik.New(1024,
		musik.WithPump(src),
		musik.WithSinks(sink),
	)
	assert.Nil(t, err)
	err = musik.Wait(p.Run(context.Background()))
	assert.True(t, errors.Is(err, musik.ErrDecode), err)
	assert.Equal(t, musik.KindDecode, musik.KindOf(err))
	assert.Contains(t, err.Error(), path)
	assert.True(t, sink.Interrupted)
}

func TestOpenFail(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		description string
		path        string
		sentinel    error
		cause       error
	}{
		{
			description: "missing file",
			path:        filepath.Join(dir, "misty_rainbow.flac"),
			sentinel:    musik.ErrFile,
			cause:       fs.ErrNotExist,
		},
		{
			description: "directory",
			path:        dir,
			sentinel:    musik.ErrFile,
		},
		{
			description: "unknown format",
			path:        test.WriteFile(t, "text.flac", []byte("just some text in a file")),
			sentinel:    musik.ErrDecode,
			cause:       decode.ErrUnknownFormat,
		},
		{
			description: "empty file",
			path:        test.WriteFile(t, "empty.flac", nil),
			sentinel:    musik.ErrDecode,
			cause:       decode.ErrUnknownFormat,
		},
		{
			description: "broken wav",
			path:        test.WriteFile(t, "broken.wav", []byte("RIFF\x24\x00\x00\x00WAVEgarbage")),
			sentinel:    musik.ErrDecode,
		},
		{
			description: "broken flac",
			path:        test.WriteFile(t, "broken.flac", []byte("fLaC\x00\x00")),
			sentinel:    musik.ErrDecode,
		},
	}
	for _, c := range tests {
		src, err := decode.Open(c.path)
		assert.Nil(t, src, c.description)
		assert.True(t, errors.Is(err, c.sentinel), "%v: %v", c.description, err)
		if c.cause != nil {
			assert.True(t, errors.Is(err, c.cause), "%v: %v", c.description, err)
		}
	}
}
