package player_test

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/pipelined/musik"
	"github.com/pipelined/musik/mock"
	"github.com/pipelined/musik/player"
	"github.com/pipelined/musik/test"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// output is a fake device which records played samples.
type output struct {
	sink   *mock.Sink
	opened int
	closed int
}

func (o *output) Sink(musik.Logger) musik.Sink {
	return o.sink
}

func (o *output) Close() error {
	o.closed++
	return nil
}

func (o *output) open() (player.Output, error) {
	o.opened++
	o.sink = &mock.Sink{Discard: true}
	return o, nil
}

func TestPlay(t *testing.T) {
	path := test.Sample1.Write(t, "sample1.wav")
	out := &output{}
	p := player.New(out.open, player.WithBufferSize(512))

	// replay produces the same outcome.
	for i := 1; i <= 2; i++ {
		err := p.Play(context.Background(), path)
		assert.Nil(t, err)
		_, samples := out.sink.Count()
		assert.Equal(t, test.Sample1.Samples, samples)
		assert.Equal(t, test.Sample1.SampleRate, out.sink.SampleRate)
		assert.Equal(t, test.Sample1.NumChannels, out.sink.NumChannels)
		assert.True(t, out.sink.Flushed)
		assert.False(t, out.sink.Interrupted)
		assert.Equal(t, i, out.opened)
		assert.Equal(t, i, out.closed)
	}
}

func TestPlayFail(t *testing.T) {
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
			description: "garbage",
			path:        test.WriteFile(t, "garbage.flac", []byte("definitely not an audio file")),
			sentinel:    musik.ErrDecode,
		},
	}
	for _, c := range tests {
		out := &output{}
		err := player.New(out.open).Play(context.Background(), c.path)
		assert.True(t, errors.Is(err, c.sentinel), "%v: %v", c.description, err)
		if c.cause != nil {
			assert.True(t, errors.Is(err, c.cause), "%v: %v", c.description, err)
		}
		assert.Equal(t, 1, out.closed, c.description)
		messages, _ := out.sink.Count()
		assert.Equal(t, 0, messages, c.description)
	}
}

func TestDeviceFail(t *testing.T) {
	errNoDevice := errors.New("no default output device")
	tests := []struct {
		description string
		err         error
	}{
		{
			description: "plain error",
			err:         errNoDevice,
		},
		{
			description: "device error",
			err:         musik.DeviceError(errNoDevice),
		},
	}
	for _, c := range tests {
		open := func() (player.Output, error) {
			return nil, c.err
		}
		// path doesn't exist, but device is acquired first.
		err := player.New(open).Play(context.Background(), filepath.Join(t.TempDir(), "missing.flac"))
		assert.True(t, errors.Is(err, musik.ErrDevice), "%v: %v", c.description, err)
		assert.False(t, errors.Is(err, musik.ErrFile), "%v: %v", c.description, err)
		assert.True(t, errors.Is(err, errNoDevice), "%v: %v", c.description, err)
	}
}

func TestSinkFail(t *testing.T) {
	path := test.Sample1.Write(t, "sample1.wav")
	out := &output{}
	open := func() (player.Output, error) {
		o, err := out.open()
		out.sink.ErrorOnMake = musik.DeviceError(errors.New("stream open failed"))
		return o, err
	}
	err := player.New(open).Play(context.Background(), path)
	assert.True(t, errors.Is(err, musik.ErrDevice), err)
	assert.Equal(t, 1, out.closed)
}

func TestPlayCancel(t *testing.T) {
	path := test.Sample1.Write(t, "sample1.wav")
	out := &output{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := player.New(out.open).Play(ctx, path)
	assert.True(t, errors.Is(err, context.Canceled), err)
	assert.Equal(t, 1, out.closed)
}

func TestPlayFlac(t *testing.T) {
	path := test.Sample2.Write(t, "misty_rainbow.flac")
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	out := &output{}

	err := player.New(out.open, player.WithLogger(logger)).Play(context.Background(), path)
	assert.Nil(t, err)
	_, samples := out.sink.Count()
	assert.Equal(t, test.Sample2.Samples, samples)
	assert.True(t, out.sink.Flushed)

	var info, counters bool
	for _, e := range hook.AllEntries() {
		switch {
		case e.Level == logrus.InfoLevel && strings.Contains(e.Message, "flac 44100 Hz 2 channels"):
			info = true
		case e.Level == logrus.DebugLevel && strings.Contains(e.Message, "sink components:"):
			counters = true
		}
	}
	assert.True(t, info, "format is logged")
	assert.True(t, counters, "counters are logged")
}

func TestPlayCorruptFrame(t *testing.T) {
	path := test.Sample2.Write(t, "misty_rainbow.flac")
	test.CorruptTail(t, path)
	out := &output{}

	err := player.New(out.open).Play(context.Background(), path)
	assert.True(t, errors.Is(err, musik.ErrDecode), err)
	assert.Equal(t, musik.KindDecode, musik.KindOf(err))
	assert.True(t, out.sink.Interrupted)
	assert.False(t, out.sink.Flushed)
	assert.Equal(t, 1, out.closed)
}
