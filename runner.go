package musik

import (
	"context"
	"fmt"
	"io"

	"github.com/pipelined/musik/metric"
	"github.com/pipelined/musik/signal"
)

// pumpRunner is pump's runner.
type pumpRunner struct {
	Pump
	id    string
	fn    func() (signal.Float64, error)
	meter metric.ResetFunc
	log   Logger
	hooks
}

// sinkRunner represents sink's runner.
type sinkRunner struct {
	Sink
	id       string
	fn       func(signal.Float64) error
	meter    metric.ResetFunc
	progress ProgressFunc
	log      Logger
	hooks
}

// Flusher defines component that must flushed in the end of execution.
type Flusher interface {
	Flush(string) error
}

// Interrupter defines component that has custom interruption logic.
type Interrupter interface {
	Interrupt(string) error
}

// Resetter defines component that must be resetted before consequent use.
type Resetter interface {
	Reset(string) error
}

// hook represents optional functions for components lyfecycle.
type hook func(string) error

// set of hooks for runners.
type hooks struct {
	flush     hook
	interrupt hook
	reset     hook
}

// bindHooks of component.
func bindHooks(v interface{}) hooks {
	return hooks{
		flush:     flusher(v),
		interrupt: interrupter(v),
		reset:     resetter(v),
	}
}

// flusher checks if interface implements Flusher and if so, return it.
func flusher(i interface{}) hook {
	if v, ok := i.(Flusher); ok {
		return v.Flush
	}
	return nil
}

// interrupter checks if interface implements Interrupter and if so, return it.
func interrupter(i interface{}) hook {
	if v, ok := i.(Interrupter); ok {
		return v.Interrupt
	}
	return nil
}

// resetter checks if interface implements Resetter and if so, return it.
func resetter(i interface{}) hook {
	if v, ok := i.(Resetter); ok {
		return v.Reset
	}
	return nil
}

// newPumpRunner creates the closure. it's separated from run to have pre-run
// logic executed in correct order for all components.
func newPumpRunner(pipeID string, bufferSize int, p Pump) (*pumpRunner, int, int, error) {
	fn, sampleRate, numChannels, err := p.Pump(pipeID, bufferSize)
	if err != nil {
		return nil, 0, 0, err
	}
	r := pumpRunner{
		id:    newUID(),
		fn:    fn,
		Pump:  p,
		meter: metric.Meter(p, sampleRate),
		log:   defaultLogger,
		hooks: bindHooks(p),
	}
	return &r, sampleRate, numChannels, nil
}

// run the Pump runner. On failure cancel is called before out is closed,
// so sinks interrupt instead of flushing.
func (r *pumpRunner) run(ctx context.Context, cancel context.CancelFunc, pipeID string) (<-chan message, <-chan error) {
	out := make(chan message)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		if err := callHook(r.reset, pipeID); err != nil {
			cancel()
			errc <- runError(err, callHook(r.interrupt, pipeID))
			return
		}
		measure := r.meter()
		for {
			b, err := r.fn()
			if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
				cancel()
				r.log.Debug(fmt.Sprintf("%v pump %v failed: %v", pipeID, r.id, err))
				errc <- runError(err, callHook(r.interrupt, pipeID))
				return
			}
			if size := b.Size(); size > 0 {
				measure(int64(size))
				select {
				case out <- message{buffer: b, sourceID: pipeID}:
				case <-ctx.Done():
					if err := callHook(r.interrupt, pipeID); err != nil {
						errc <- runError(nil, err)
					}
					return
				}
			}
			if err != nil {
				r.log.Debug(fmt.Sprintf("%v pump %v done: %v", pipeID, r.id, err))
				if err := callHook(r.flush, pipeID); err != nil {
					errc <- runError(nil, err)
				}
				return
			}
		}
	}()
	return out, errc
}

// newSinkRunner creates the closure. it's separated from run to have pre-run
// logic executed in correct order for all components.
func newSinkRunner(pipeID string, sampleRate, numChannels, bufferSize int, s Sink) (*sinkRunner, error) {
	fn, err := s.Sink(pipeID, sampleRate, numChannels, bufferSize)
	if err != nil {
		return nil, err
	}
	r := sinkRunner{
		id:    newUID(),
		fn:    fn,
		Sink:  s,
		meter: metric.Meter(s, sampleRate),
		log:   defaultLogger,
		hooks: bindHooks(s),
	}
	return &r, nil
}

// run the sink runner.
func (r *sinkRunner) run(ctx context.Context, pipeID string, in <-chan message) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		if err := callHook(r.reset, pipeID); err != nil {
			errc <- runError(err, callHook(r.interrupt, pipeID))
			return
		}
		measure := r.meter()
		for {
			var (
				m  message
				ok bool
			)
			select {
			case m, ok = <-in:
				if !ok {
					// closed input after cancellation must not drain.
					if ctx.Err() != nil {
						if err := callHook(r.interrupt, pipeID); err != nil {
							errc <- runError(nil, err)
						}
						return
					}
					r.log.Debug(fmt.Sprintf("%v sink %v flush", pipeID, r.id))
					if err := callHook(r.flush, pipeID); err != nil {
						errc <- runError(nil, err)
					}
					return
				}
			case <-ctx.Done():
				if err := callHook(r.interrupt, pipeID); err != nil {
					errc <- runError(nil, err)
				}
				return
			}

			if err := r.fn(m.buffer); err != nil {
				errc <- runError(err, callHook(r.interrupt, pipeID))
				return
			}
			played := measure(int64(m.buffer.Size()))
			if r.progress != nil {
				r.progress(played)
			}
		}
	}()
	return errc
}

// callHook calls optional function with pipeID argument.
func callHook(fn hook, pipeID string) error {
	if fn == nil {
		return nil
	}
	return fn(pipeID)
}
