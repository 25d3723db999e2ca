package musik

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/pipelined/musik/signal"
)

// Pump is a source of samples. Pump method returns a closure which
// returns a new buffer with signal data, sample rate and number of channels.
// Implementations should use next error conventions:
// 		- nil if a full buffer was read;
// 		- io.EOF if no data was read;
// 		- io.ErrUnexpectedEOF if not a full buffer was read.
// The latest case means that pump executed as expected, but not enough data was available.
// This incomplete buffer still will be sent further and pump will be finished gracefully.
type Pump interface {
	Pump(pipeID string, bufferSize int) (func() (signal.Float64, error), int, int, error)
}

// Sink is an interface for final stage in audio pipeline.
type Sink interface {
	Sink(pipeID string, sampleRate, numChannels, bufferSize int) (func(signal.Float64) error, error)
}

// Logger is a global interface for pipe loggers
type Logger interface {
	Debug(...interface{})
	Info(...interface{})
}

// ProgressFunc receives the duration of signal consumed by the first sink.
type ProgressFunc func(played time.Duration)

// Errors returned when pipe cannot be bound.
var (
	ErrNoPump  = errors.New("pump is not defined")
	ErrNoSinks = errors.New("sinks are not defined")
)

// newUID returns new unique id value.
func newUID() string {
	return xid.New().String()
}

// message is a main structure for pipe transport
type message struct {
	buffer   signal.Float64 // Buffer of message
	sourceID string         // ID of pipe which spawned this message.
}

// Pipe is a pipeline with fully defined playback sequence
// it has:
//	 1 		pump
//	 1..n	sinks
type Pipe struct {
	uid         string
	name        string
	sampleRate  int
	numChannels int
	bufferSize  int

	pump     *pumpRunner
	sinks    []*sinkRunner
	progress ProgressFunc

	log Logger

	mu    sync.Mutex
	state State
}

// New creates a new pipe and applies provided options. All components
// are bound during the call, so failures of pump and sinks are returned
// here. If binding fails, already bound components are interrupted.
// Returned pipe is in Ready state.
func New(bufferSize int, options ...Option) (*Pipe, error) {
	p := &Pipe{
		uid:        newUID(),
		bufferSize: bufferSize,
		log:        defaultLogger,
		sinks:      make([]*sinkRunner, 0),
	}
	for _, option := range options {
		if err := option(p); err != nil {
			p.release()
			return nil, err
		}
	}
	if p.pump == nil {
		return nil, ErrNoPump
	}
	if len(p.sinks) == 0 {
		p.release()
		return nil, ErrNoSinks
	}
	return p, nil
}

// release calls interrupt hooks of bound components.
func (p *Pipe) release() {
	var errs execErrors
	if p.pump != nil {
		if err := callHook(p.pump.interrupt, p.uid); err != nil {
			errs = append(errs, err)
		}
	}
	for _, s := range p.sinks {
		if err := callHook(s.interrupt, p.uid); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errs.ret(); err != nil {
		p.log.Debug(fmt.Sprintf("%v release: %v", p, err))
	}
}

// Run starts the execution of pipe. The returned channel receives at most
// one error and is closed when all components are done. Calling Run more
// than once results in ErrInvalidState.
func (p *Pipe) Run(ctx context.Context) <-chan error {
	errc := make(chan error, 1)
	if err := p.transition(Ready, Running); err != nil {
		errc <- err
		close(errc)
		return errc
	}

	p.pump.log = p.log
	for _, s := range p.sinks {
		s.log = p.log
	}
	p.sinks[0].progress = p.progress

	runCtx, cancelFn := context.WithCancel(ctx)
	out, pumpErrc := p.pump.run(runCtx, cancelFn, p.uid)
	errcList := make([]<-chan error, 0, 1+len(p.sinks))
	errcList = append(errcList, pumpErrc)
	errcList = append(errcList, p.broadcastToSinks(runCtx, out)...)
	merger := newErrorMerger(errcList...)

	go func() {
		defer close(errc)
		defer cancelFn()
		var errs execErrors
		for err := range merger.errorChan {
			if err == nil {
				continue
			}
			// first error cancels the rest of components.
			if len(errs) == 0 {
				cancelFn()
			}
			errs = append(errs, err)
		}
		p.transition(Running, Terminated)
		if err := errs.ret(); err != nil {
			p.log.Debug(fmt.Sprintf("%v failed: %v", p, err))
			errc <- err
			return
		}
		if err := ctx.Err(); err != nil {
			errc <- err
			return
		}
		p.log.Debug(fmt.Sprintf("%v done", p))
	}()
	return errc
}

// broadcastToSinks passes messages to all sinks.
func (p *Pipe) broadcastToSinks(ctx context.Context, in <-chan message) []<-chan error {
	errcList := make([]<-chan error, 0, len(p.sinks))
	if len(p.sinks) == 1 {
		return append(errcList, p.sinks[0].run(ctx, p.uid, in))
	}

	//list of channels for broadcast
	broadcasts := make([]chan message, len(p.sinks))
	for i := range broadcasts {
		broadcasts[i] = make(chan message)
	}
	for i, s := range p.sinks {
		errcList = append(errcList, s.run(ctx, p.uid, broadcasts[i]))
	}

	go func() {
		//close broadcasts on return
		defer func() {
			for i := range broadcasts {
				close(broadcasts[i])
			}
		}()
		for msg := range in {
			for i := range broadcasts {
				select {
				case broadcasts[i] <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return errcList
}

// Wait for the run to complete or first error to occur.
func Wait(errc <-chan error) error {
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

// SampleRate returns sample rate of the pump.
func (p *Pipe) SampleRate() int {
	return p.sampleRate
}

// NumChannels returns number of channels of the pump.
func (p *Pipe) NumChannels() int {
	return p.numChannels
}

// Convert pipe to string. If name is included if has value.
func (p *Pipe) String() string {
	if p.name == "" {
		return p.uid
	}
	return fmt.Sprintf("%v %v", p.name, p.uid)
}

type silentLogger struct{}

func (silentLogger) Debug(args ...interface{}) {}

func (silentLogger) Info(args ...interface{}) {}

var defaultLogger silentLogger
