// Package test contains helper functions usefull for testing musik packages.
// Audio assets are generated into temporary directories, so tests don't
// depend on binary files in the repository.
package test

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

// Wav describes a generated wav asset.
type Wav struct {
	SampleRate  int
	NumChannels int
	BitDepth    int
	Samples     int
}

// Sample1 is a short stereo 16 bit sine wave.
var Sample1 = Wav{
	SampleRate:  44100,
	NumChannels: 2,
	BitDepth:    16,
	Samples:     33053,
}

// Write generates a sine wave wav file in the test temporary directory and
// returns its path.
func (w Wav) Write(t testing.TB, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %v: %v", path, err)
	}
	defer f.Close()

	e := wav.NewEncoder(f, w.SampleRate, w.BitDepth, w.NumChannels, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: w.NumChannels,
			SampleRate:  w.SampleRate,
		},
		Data:           make([]int, w.Samples*w.NumChannels),
		SourceBitDepth: w.BitDepth,
	}
	for i := 0; i < w.Samples; i++ {
		v := sine(i, w.SampleRate, w.BitDepth)
		if w.BitDepth == 8 {
			// 8 bit wav is unsigned.
			v += 128
		}
		for j := 0; j < w.NumChannels; j++ {
			buf.Data[i*w.NumChannels+j] = v
		}
	}
	if err := e.Write(buf); err != nil {
		t.Fatalf("write %v: %v", path, err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("close encoder %v: %v", path, err)
	}
	return path
}

// WriteFile writes arbitrary content into the test temporary directory and
// returns its path.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %v: %v", path, err)
	}
	return path
}

// FlacHeader returns a FLAC stream which consists of the STREAMINFO
// metadata block only. totalSamples is stored in the header but no audio
// frames follow it.
func FlacHeader(sampleRate, numChannels, bitDepth int, totalSamples uint64) []byte {
	const blockSize = 4096
	data := []byte("fLaC")
	// last metadata block, type STREAMINFO, length 34.
	data = append(data, 0x80, 0x00, 0x00, 34)

	info := make([]byte, 34)
	binary.BigEndian.PutUint16(info[0:], blockSize)
	binary.BigEndian.PutUint16(info[2:], blockSize)
	// min and max frame sizes are unknown.
	packed := uint64(sampleRate)<<44 |
		uint64(numChannels-1)<<41 |
		uint64(bitDepth-1)<<36 |
		totalSamples&(1<<36-1)
	binary.BigEndian.PutUint64(info[10:], packed)
	// MD5 signature is left unset.
	return append(data, info...)
}

// Flac describes a generated FLAC asset. Frames are stored verbatim.
type Flac struct {
	SampleRate  int
	NumChannels int
	BitDepth    int
	Samples     int
	BlockSize   int
}

// Sample2 is a short stereo 16 bit FLAC sine wave with a short last frame.
var Sample2 = Flac{
	SampleRate:  44100,
	NumChannels: 2,
	BitDepth:    16,
	Samples:     10000,
	BlockSize:   4096,
}

// Write encodes a sine wave FLAC file in the test temporary directory and
// returns its path.
func (f Flac) Write(t testing.TB, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %v: %v", path, err)
	}
	info := &meta.StreamInfo{
		BlockSizeMin:  uint16(f.BlockSize),
		BlockSizeMax:  uint16(f.BlockSize),
		SampleRate:    uint32(f.SampleRate),
		NChannels:     uint8(f.NumChannels),
		BitsPerSample: uint8(f.BitDepth),
	}
	enc, err := flac.NewEncoder(out, info)
	if err != nil {
		out.Close()
		t.Fatalf("new encoder %v: %v", path, err)
	}
	for pos := 0; pos < f.Samples; pos += f.BlockSize {
		n := min(f.BlockSize, f.Samples-pos)
		subframes := make([]*frame.Subframe, f.NumChannels)
		for c := range subframes {
			samples := make([]int32, n)
			for i := range samples {
				samples[i] = int32(sine(pos+i, f.SampleRate, f.BitDepth))
			}
			subframes[c] = &frame.Subframe{
				SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
				Samples:   samples,
				NSamples:  n,
			}
		}
		fr := &frame.Frame{
			Header: frame.Header{
				HasFixedBlockSize: true,
				BlockSize:         uint16(n),
				SampleRate:        uint32(f.SampleRate),
				Channels:          frame.Channels(f.NumChannels - 1),
				BitsPerSample:     uint8(f.BitDepth),
			},
			Subframes: subframes,
		}
		if err := enc.WriteFrame(fr); err != nil {
			enc.Close()
			t.Fatalf("write frame %v: %v", path, err)
		}
	}
	// closes the file.
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder %v: %v", path, err)
	}
	return path
}

// CorruptTail flips a byte close to the end of the file at path. For
// uncompressed FLAC it breaks the checksum of the last frame.
func CorruptTail(t testing.TB, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %v: %v", path, err)
	}
	if len(data) < 16 {
		t.Fatalf("%v is too short to corrupt", path)
	}
	data[len(data)-10] ^= 0xff
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %v: %v", path, err)
	}
}

// Mp3 frame properties of the Mp3 fixture.
const (
	Mp3SampleRate      = 44100
	Mp3SamplesPerFrame = 1152
	// 144 * 128000 / 44100 without padding.
	mp3FrameSize = 417
)

// Mp3 returns n silent MPEG-1 layer III frames: 128 kbit/s, 44100 Hz,
// stereo, no CRC. Side information and main data are zeroed.
func Mp3(n int) []byte {
	header := []byte{0xff, 0xfb, 0x90, 0x00}
	data := make([]byte, 0, n*mp3FrameSize)
	for i := 0; i < n; i++ {
		f := make([]byte, mp3FrameSize)
		copy(f, header)
		data = append(data, f...)
	}
	return data
}

// sine returns value of 440 Hz sine wave at half of full scale.
func sine(i, sampleRate, bitDepth int) int {
	amplitude := float64(int64(1)<<uint(bitDepth-1)-1) / 2
	return int(amplitude * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
}
