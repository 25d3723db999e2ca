// Package metric publishes playback counters of pipe components through
// expvar. Counters are aggregated per component type under the
// musik.components map.
package metric

import (
	"expvar"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pipelined/musik/signal"
)

// Names of counters in the published map of a component type.
const (
	ComponentCounter = "Components"
	MessageCounter   = "Messages"
	SampleCounter    = "Samples"
	LatencyCounter   = "Latency"
	DurationCounter  = "Duration"
)

var (
	published = expvar.NewMap("musik.components")
	// guards creation of component type maps.
	mu sync.Mutex
)

// Counters is a snapshot of component type counters.
type Counters struct {
	Components int64
	Messages   int64
	Samples    int64
	// Latency is the time between the last two measured buffers.
	Latency time.Duration
	// Duration is the total duration of measured signal.
	Duration time.Duration
}

func (c Counters) String() string {
	return fmt.Sprintf("components: %d messages: %d samples: %d duration: %v latency: %v",
		c.Components, c.Messages, c.Samples, c.Duration, c.Latency)
}

// Get returns counters of provided component type.
func Get(component interface{}) Counters {
	m, ok := published.Get(typeOf(component)).(*expvar.Map)
	if !ok {
		return Counters{}
	}
	return countersOf(m)
}

func countersOf(m *expvar.Map) Counters {
	return Counters{
		Components: intValue(m, ComponentCounter),
		Messages:   intValue(m, MessageCounter),
		Samples:    intValue(m, SampleCounter),
		Latency:    durationValue(m, LatencyCounter),
		Duration:   durationValue(m, DurationCounter),
	}
}

func intValue(m *expvar.Map, counter string) int64 {
	if v, ok := m.Get(counter).(*expvar.Int); ok {
		return v.Value()
	}
	return 0
}

func durationValue(m *expvar.Map, counter string) time.Duration {
	if v, ok := m.Get(counter).(*duration); ok {
		return v.value()
	}
	return 0
}

// ResetFunc returns new Measure closure. This closure is needed to postpone metrics
// capture until component is actually running.
type ResetFunc func() MeasureFunc

// MeasureFunc captures metrics when buffer is processed. It returns the
// duration of signal measured by this closure so far.
type MeasureFunc func(bufferSize int64) time.Duration

// Meter creates new meter closure to capture component counters.
func Meter(component interface{}, sampleRate int) ResetFunc {
	c := counters(typeOf(component))
	c.Add(ComponentCounter, 1)
	latency := c.Get(LatencyCounter).(*duration)
	total := c.Get(DurationCounter).(*duration)
	return func() MeasureFunc {
		calledAt := time.Now()
		var (
			bufferSize     int64
			bufferDuration time.Duration
			measured       time.Duration
		)
		return func(s int64) time.Duration {
			latency.set(time.Since(calledAt))
			c.Add(MessageCounter, 1)
			c.Add(SampleCounter, s)
			// recalculate buffer duration only when buffer size has changed
			if bufferSize != s {
				bufferSize = s
				bufferDuration = signal.DurationOf(sampleRate, s)
			}
			total.add(bufferDuration)
			measured += bufferDuration
			calledAt = time.Now()
			return measured
		}
	}
}

// counters returns published map of component type, creating it if needed.
func counters(componentType string) *expvar.Map {
	mu.Lock()
	defer mu.Unlock()
	if m, ok := published.Get(componentType).(*expvar.Map); ok {
		return m
	}
	m := new(expvar.Map).Init()
	m.Set(LatencyCounter, &duration{})
	m.Set(DurationCounter, &duration{})
	published.Set(componentType, m)
	return m
}

func typeOf(component interface{}) string {
	rv := reflect.ValueOf(component)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	return rv.Type().String()
}

// duration is an expvar.Var of time.Duration, formatted as JSON string.
type duration struct {
	d int64
}

func (v *duration) String() string {
	return fmt.Sprintf("%q", v.value())
}

func (v *duration) value() time.Duration {
	return time.Duration(atomic.LoadInt64(&v.d))
}

func (v *duration) add(delta time.Duration) {
	atomic.AddInt64(&v.d, int64(delta))
}

func (v *duration) set(value time.Duration) {
	atomic.StoreInt64(&v.d, int64(value))
}
