// Package mock provides mocks for pipeline components and allows to execute integration tests.
package mock

import (
	"io"
	"time"

	"github.com/pipelined/musik/signal"
)

// Pump mocks a musik.Pump interface.
type Pump struct {
	counter
	Interval    time.Duration
	Limit       int
	Value       float64
	NumChannels int
	SampleRate  int
	ErrorOnCall error
	ErrorOnMake error
	Hooks
}

// Pump returns new buffer for pipe.
func (m *Pump) Pump(pipeID string, bufferSize int) (func() (signal.Float64, error), int, int, error) {
	if m.ErrorOnMake != nil {
		return nil, 0, 0, m.ErrorOnMake
	}
	return func() (signal.Float64, error) {
		if m.ErrorOnCall != nil {
			return nil, m.ErrorOnCall
		}

		if m.samples >= m.Limit {
			return nil, io.EOF
		}
		time.Sleep(m.Interval)

		// calculate buffer size.
		bs := bufferSize
		var err error
		// check if we need a shorter.
		if left := m.Limit - m.samples; left < bs {
			bs = left
			err = io.ErrUnexpectedEOF
		}
		b := signal.EmptyFloat64(m.NumChannels, bs)
		for i := range b {
			for j := range b[i] {
				b[i][j] = m.Value
			}
		}
		m.advance(bs)
		return b, err
	}, m.SampleRate, m.NumChannels, nil
}

// Reset implements musik.Resetter.
func (m *Pump) Reset(string) error {
	m.Resetted = true
	m.reset()
	return m.ErrorOnReset
}

// Interrupt implements musik.Interrupter.
func (m *Pump) Interrupt(string) error {
	m.Interrupted = true
	return m.ErrorOnInterrupt
}

// Flush implements musik.Flusher.
func (m *Pump) Flush(string) error {
	m.Flushed = true
	return m.ErrorOnFlush
}

// Sink mocks up a musik.Sink interface.
// Buffer is not thread-safe, so should not be checked while pipe is running.
type Sink struct {
	counter
	buffer      signal.Float64
	Discard     bool
	Interval    time.Duration
	ErrorOnCall error
	ErrorOnMake error
	Hooks

	SampleRate  int
	NumChannels int
}

// Sink implementation for runner.
func (m *Sink) Sink(pipeID string, sampleRate, numChannels, bufferSize int) (func(signal.Float64) error, error) {
	if m.ErrorOnMake != nil {
		return nil, m.ErrorOnMake
	}
	m.SampleRate = sampleRate
	m.NumChannels = numChannels
	return func(b signal.Float64) error {
		if m.ErrorOnCall != nil {
			return m.ErrorOnCall
		}
		time.Sleep(m.Interval)
		if !m.Discard {
			m.buffer = signal.Float64(m.buffer).Append(b)
		}
		m.advance(b.Size())
		return nil
	}, nil
}

// Reset implements musik.Resetter.
func (m *Sink) Reset(string) error {
	m.Resetted = true
	m.buffer = nil
	m.reset()
	return m.ErrorOnReset
}

// Interrupt implements musik.Interrupter.
func (m *Sink) Interrupt(string) error {
	m.Interrupted = true
	return m.ErrorOnInterrupt
}

// Flush implements musik.Flusher.
func (m *Sink) Flush(string) error {
	m.Flushed = true
	return m.ErrorOnFlush
}

// Buffer returns sink's buffer
func (m *Sink) Buffer() signal.Float64 {
	return m.buffer
}

// Hooks allows to mock components hooks.
type Hooks struct {
	Resetted    bool
	Flushed     bool
	Interrupted bool

	ErrorOnReset     error
	ErrorOnFlush     error
	ErrorOnInterrupt error
}

// counter counts messages and samples passed through component.
type counter struct {
	messages int
	samples  int
}

// Count returns number of messages and samples.
func (c *counter) Count() (int, int) {
	return c.messages, c.samples
}

func (c *counter) advance(size int) {
	c.messages++
	c.samples = c.samples + size
}

// Reset resets counter's metrics.
func (c *counter) reset() {
	c.messages, c.samples = 0, 0
}
