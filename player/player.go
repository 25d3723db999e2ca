// Package player plays a single audio file on an output device.
package player

import (
	"context"
	"fmt"
	"time"

	"github.com/pipelined/musik"
	"github.com/pipelined/musik/decode"
	"github.com/pipelined/musik/metric"
)

// DefaultBufferSize is number of frames per buffer.
const DefaultBufferSize = 1024

// progressInterval limits how often played duration is logged.
const progressInterval = time.Second

type (
	// Output is an acquired output device.
	Output interface {
		// Sink returns a playback queue for a single run.
		Sink(musik.Logger) musik.Sink
		// Close releases the device.
		Close() error
	}

	// OpenFunc acquires an output device.
	OpenFunc func() (Output, error)

	// Option configures the player.
	Option func(*Player)

	// Player plays files on outputs returned by open func. Every call
	// to Play acquires and releases its own output.
	Player struct {
		open       OpenFunc
		bufferSize int
		log        musik.Logger
	}
)

// WithBufferSize sets number of frames per buffer.
func WithBufferSize(bufferSize int) Option {
	return func(p *Player) {
		if bufferSize > 0 {
			p.bufferSize = bufferSize
		}
	}
}

// WithLogger sets logger for the player and its pipes.
func WithLogger(logger musik.Logger) Option {
	return func(p *Player) {
		if logger != nil {
			p.log = logger
		}
	}
}

// New returns a new player.
func New(open OpenFunc, options ...Option) *Player {
	p := Player{
		open:       open,
		bufferSize: DefaultBufferSize,
		log:        nopLogger{},
	}
	for _, option := range options {
		option(&p)
	}
	return &p
}

// Play acquires the output, decodes the file at path and blocks until it
// has been played. Cancelling the context interrupts playback.
func (p *Player) Play(ctx context.Context, path string) error {
	out, err := p.open()
	if err != nil {
		if musik.KindOf(err) == musik.KindUnknown {
			err = musik.DeviceError(err)
		}
		return err
	}
	defer out.Close()

	src, err := decode.Open(path)
	if err != nil {
		return err
	}
	total := src.Duration()
	p.log.Info(fmt.Sprintf("playing %v: %v %d Hz %d channels %v", src.Path(), src.Format(), src.SampleRate(), src.NumChannels(), total))

	sink := out.Sink(p.log)
	pipe, err := musik.New(p.bufferSize,
		musik.WithName(src.Path()),
		musik.WithLogger(p.log),
		musik.WithPump(src),
		musik.WithSinks(sink),
		musik.WithProgress(p.progress(total)),
	)
	if err != nil {
		src.Interrupt("")
		return err
	}
	err = musik.Wait(pipe.Run(ctx))
	p.log.Debug(fmt.Sprintf("%v source %v", pipe, metric.Get(src)))
	p.log.Debug(fmt.Sprintf("%v sink %v", pipe, metric.Get(sink)))
	if err != nil {
		return err
	}
	p.log.Info(fmt.Sprintf("done %v", src.Path()))
	return nil
}

// progress returns func which logs played duration.
func (p *Player) progress(total time.Duration) musik.ProgressFunc {
	var logged time.Duration
	return func(played time.Duration) {
		if played-logged < progressInterval {
			return
		}
		logged = played
		if total > 0 {
			p.log.Debug(fmt.Sprintf("played %v of %v", played.Truncate(time.Millisecond), total.Truncate(time.Millisecond)))
			return
		}
		p.log.Debug(fmt.Sprintf("played %v", played.Truncate(time.Millisecond)))
	}
}

type nopLogger struct{}

func (nopLogger) Debug(...interface{}) {}

func (nopLogger) Info(...interface{}) {}
