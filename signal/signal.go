// Package signal provides an API to manipulate digital signals. It allows to:
// 	- convert interleaved data to non-interleaved
//	- convert bit depth for int signals
//	- interleave float signals for output devices
package signal

import (
	"math"
	"time"
)

// Float64 is a non-interleaved float64 signal.
type Float64 [][]float64

// Int32 is a non-interleaved int32 signal.
type Int32 [][]int32

const (
	// BitDepth8 is 8 bit depth.
	BitDepth8 = BitDepth(8)
	// BitDepth16 is 16 bit depth.
	BitDepth16 = BitDepth(16)
	// BitDepth24 is 24 bit depth.
	BitDepth24 = BitDepth(24)
	// BitDepth32 is 32 bit depth.
	BitDepth32 = BitDepth(32)
)

// InterInt is an interleaved int signal.
type InterInt struct {
	Data        []int
	NumChannels int
	BitDepth
}

// BitDepth contains values required for int-to-float and backward conversion.
type BitDepth int

// devider is used when int to float conversion is done.
func (bitDepth BitDepth) devider() float64 {
	if !bitDepth.Supported() {
		return 1
	}
	return float64(int64(1)<<uint(bitDepth-1) - 1)
}

// multiplier is used when float to int conversion is done.
func (bitDepth BitDepth) multiplier() float64 {
	if !bitDepth.Supported() {
		return 1
	}
	return bitDepth.devider() - 1
}

// Supported returns true if bit depth has a defined conversion.
func (bitDepth BitDepth) Supported() bool {
	return bitDepth > 1 && bitDepth <= BitDepth32
}

// DurationOf returns time duration of passed samples for this sample rate.
func DurationOf(sampleRate int, samples int64) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(samples) / float64(sampleRate) * float64(time.Second))
}

// AsFloat64 converts interleaved int signal to float64.
func (ints InterInt) AsFloat64() Float64 {
	if ints.Data == nil || ints.NumChannels == 0 {
		return nil
	}
	floats := make([][]float64, ints.NumChannels)
	bufSize := int(math.Ceil(float64(len(ints.Data)) / float64(ints.NumChannels)))

	// determine the devider for bit depth conversion
	devider := ints.BitDepth.devider()

	for i := range floats {
		floats[i] = make([]float64, bufSize)
		pos := 0
		for j := i; j < len(ints.Data); j = j + ints.NumChannels {
			floats[i][pos] = float64(ints.Data[j]) / devider
			pos++
		}
	}
	return floats
}

// AsFloat64 converts non-interleaved int32 signal to float64.
func (ints Int32) AsFloat64(bitDepth BitDepth) Float64 {
	if len(ints) == 0 {
		return nil
	}
	devider := bitDepth.devider()
	floats := make([][]float64, len(ints))
	for i := range ints {
		floats[i] = make([]float64, len(ints[i]))
		for j, v := range ints[i] {
			floats[i][j] = float64(v) / devider
		}
	}
	return floats
}

// AsInterInt converts float64 signal to interleaved int.
func (floats Float64) AsInterInt(bitDepth BitDepth) []int {
	var numChannels int
	if numChannels = len(floats); numChannels == 0 {
		return nil
	}

	// determine the multiplier for bit depth conversion
	multiplier := bitDepth.multiplier()

	ints := make([]int, len(floats[0])*numChannels)

	for j := range floats {
		for i := range floats[j] {
			ints[i*numChannels+j] = int(floats[j][i] * multiplier)
		}
	}
	return ints
}

// InterleaveFloat32 writes float64 signal into interleaved float32 slice.
// Positions of dst which are not covered by the signal are zeroed. Number
// of written frames is returned.
func (floats Float64) InterleaveFloat32(dst []float32) int {
	numChannels := floats.NumChannels()
	if numChannels == 0 {
		for i := range dst {
			dst[i] = 0
		}
		return 0
	}
	frames := floats.Size()
	if max := len(dst) / numChannels; frames > max {
		frames = max
	}
	for i := 0; i < frames; i++ {
		for j := range floats {
			var v float64
			if i < len(floats[j]) {
				v = floats[j][i]
			}
			dst[i*numChannels+j] = float32(v)
		}
	}
	for i := frames * numChannels; i < len(dst); i++ {
		dst[i] = 0
	}
	return frames
}

// EmptyFloat64 returns an empty buffer of specified dimentions.
func EmptyFloat64(numChannels int, bufferSize int) Float64 {
	result := make([][]float64, numChannels)
	for i := range result {
		result[i] = make([]float64, bufferSize)
	}
	return result
}

// NumChannels returns number of channels in this sample slice
func (floats Float64) NumChannels() int {
	return len(floats)
}

// Size returns number of samples in single block in this sample slice
func (floats Float64) Size() int {
	if floats.NumChannels() == 0 {
		return 0
	}
	return len(floats[0])
}

// Append buffers set to existing one one
// new buffer is returned if b is nil
func (floats Float64) Append(source Float64) Float64 {
	if floats == nil {
		floats = make([][]float64, source.NumChannels())
		for i := range floats {
			floats[i] = make([]float64, 0, source.Size())
		}
	}
	for i := range source {
		floats[i] = append(floats[i], source[i]...)
	}
	return floats
}

// Slice creates a new copy of buffer from start position with defined legth
// if buffer doesn't have enough samples - shorten block is returned
//
// if start >= buffer size, nil is returned
// if start + len >= buffer size, len is decreased till the end of slice
// if start < 0, nil is returned
func (floats Float64) Slice(start int, len int) Float64 {
	if floats == nil || start >= floats.Size() || start < 0 {
		return nil
	}
	end := start + len
	result := make([][]float64, floats.NumChannels())
	for i := range floats {
		if end > floats.Size() {
			end = floats.Size()
		}
		result[i] = append(result[i], floats[i][start:end]...)
	}
	return result
}
