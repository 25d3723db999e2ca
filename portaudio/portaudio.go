// Package portaudio plays signal on the default output device.
package portaudio

import (
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"

	"github.com/pipelined/musik"
	"github.com/pipelined/musik/signal"
)

type (
	// Device represents initialized portaudio API with resolved default
	// output device. It must be closed after use.
	Device struct {
		info *portaudio.DeviceInfo
	}

	// Sink represets portaudio sink which allows to play audio using default device.
	// It's a blocking queue: write returns when device accepted the buffer.
	Sink struct {
		device *Device
		buf    []float32
		stream *portaudio.Stream
		log    musik.Logger
	}
)

// Open initializes portaudio and resolves the default output device.
func Open() (*Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, musik.DeviceError(err)
	}
	info, err := portaudio.DefaultOutputDevice()
	if err == nil && (info == nil || info.MaxOutputChannels == 0) {
		err = errors.New("default device has no output channels")
	}
	if err != nil {
		portaudio.Terminate()
		return nil, musik.DeviceError(err)
	}
	return &Device{info: info}, nil
}

// Name returns name of the output device.
func (d *Device) Name() string {
	return d.info.Name
}

// Close terminates portaudio.
func (d *Device) Close() error {
	return portaudio.Terminate()
}

// Sink returns new sink for the device. Logger is optional.
func (d *Device) Sink(logger musik.Logger) musik.Sink {
	return &Sink{
		device: d,
		log:    logger,
	}
}

// Sink opens and starts the output stream with provided signal properties.
func (s *Sink) Sink(pipeID string, sampleRate, numChannels, bufferSize int) (func(signal.Float64) error, error) {
	if numChannels > s.device.info.MaxOutputChannels {
		return nil, musik.DeviceError(fmt.Errorf("%v supports %d channels, but %d requested", s.device.Name(), s.device.info.MaxOutputChannels, numChannels))
	}
	s.buf = make([]float32, bufferSize*numChannels)
	params := portaudio.HighLatencyParameters(nil, s.device.info)
	params.Output.Channels = numChannels
	params.SampleRate = float64(sampleRate)
	params.FramesPerBuffer = bufferSize

	stream, err := portaudio.OpenStream(params, s.buf)
	if err != nil {
		return nil, musik.DeviceError(err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, musik.DeviceError(err)
	}
	s.stream = stream
	return func(b signal.Float64) error {
		b.InterleaveFloat32(s.buf)
		if err := s.stream.Write(); err != nil {
			if errors.Is(err, portaudio.OutputUnderflowed) {
				s.debug(fmt.Sprintf("%v: output underflowed", pipeID))
				return nil
			}
			return musik.PlaybackError(err)
		}
		return nil
	}, nil
}

// Flush waits until all written buffers are played and closes the stream.
func (s *Sink) Flush(string) error {
	if s.stream == nil {
		return nil
	}
	if err := s.stream.Stop(); err != nil {
		s.close()
		return musik.PlaybackError(err)
	}
	return s.close()
}

// Interrupt discards pending buffers and closes the stream.
func (s *Sink) Interrupt(string) error {
	if s.stream == nil {
		return nil
	}
	if err := s.stream.Abort(); err != nil {
		s.close()
		return musik.PlaybackError(err)
	}
	return s.close()
}

func (s *Sink) close() error {
	err := s.stream.Close()
	s.stream = nil
	if err != nil {
		return musik.PlaybackError(err)
	}
	return nil
}

func (s *Sink) debug(msg string) {
	if s.log != nil {
		s.log.Debug(msg)
	}
}
