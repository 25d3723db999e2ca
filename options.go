package musik

import "fmt"

// Option provides a way to set functional parameters to pipe.
type Option func(p *Pipe) error

// WithLogger sets logger to Pipe. If this option is not provided, silent logger is used.
func WithLogger(logger Logger) Option {
	return func(p *Pipe) error {
		p.log = logger
		return nil
	}
}

// WithName sets name to Pipe.
func WithName(n string) Option {
	return func(p *Pipe) error {
		p.name = n
		return nil
	}
}

// WithProgress sets a function which is called every time the first sink
// consumed a buffer.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipe) error {
		p.progress = fn
		return nil
	}
}

// WithPump binds pump to Pipe. Pump defines sample rate and number of
// channels for sinks, so it must be provided before them.
func WithPump(pump Pump) Option {
	return func(p *Pipe) error {
		if p.pump != nil {
			return fmt.Errorf("%v: pump is already defined", p)
		}
		r, sampleRate, numChannels, err := newPumpRunner(p.uid, p.bufferSize, pump)
		if err != nil {
			return err
		}
		p.pump = r
		p.sampleRate = sampleRate
		p.numChannels = numChannels
		return nil
	}
}

// WithSinks binds sinks to Pipe.
func WithSinks(sinks ...Sink) Option {
	return func(p *Pipe) error {
		if p.pump == nil {
			return ErrNoPump
		}
		for _, sink := range sinks {
			r, err := newSinkRunner(p.uid, p.sampleRate, p.numChannels, p.bufferSize, sink)
			if err != nil {
				return err
			}
			p.sinks = append(p.sinks, r)
		}
		return nil
	}
}
