// Package codec decodes compressed and PCM audio files into planar float
// buffers and writes buffers back out as 16-bit WAV.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"

	"github.com/cwbudde/algo-dj/dsp/buffer"
)

var (
	// ErrUnsupportedFormat is returned when the data is neither WAV nor MP3.
	ErrUnsupportedFormat = errors.New("codec: unsupported format")

	// ErrEmptyAudio is returned when a file decodes to zero frames.
	ErrEmptyAudio = errors.New("codec: no audio frames")
)

// Format identifies a container.
type Format int

const (
	FormatUnknown Format = iota
	FormatWAV
	FormatMP3
)

func (f Format) String() string {
	switch f {
	case FormatWAV:
		return "wav"
	case FormatMP3:
		return "mp3"
	default:
		return "unknown"
	}
}

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
	mp3Channels         = 2
)

// Sniff inspects the leading bytes of data.
func Sniff(data []byte) Format {
	switch {
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return FormatWAV
	case len(data) >= 3 && string(data[:3]) == "ID3":
		return FormatMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3
	default:
		return FormatUnknown
	}
}

// Decode decodes a WAV or MP3 file into a single-owner PCM buffer at the
// file's native sample rate.
func Decode(data []byte) (*buffer.PCM, error) {
	switch Sniff(data) {
	case FormatWAV:
		return decodeWAV(data)
	case FormatMP3:
		return decodeMP3(data)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func decodeWAV(data []byte) (*buffer.PCM, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: malformed wav header", ErrUnsupportedFormat)
	}

	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w: wav audio format %d", ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("codec: wav pcm: %w", err)
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		return nil, fmt.Errorf("codec: wav reports %d channels", channels)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(dec.BitDepth)
	}

	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: wav bit depth %d", ErrUnsupportedFormat, bitDepth)
	}

	scale := 1 / math.Pow(2, float64(bitDepth-1))
	offset := 0
	if bitDepth == 8 {
		// 8-bit WAV is unsigned.
		offset = 128
	}

	frames := len(buf.Data) / channels
	out := deinterleave(buf.Data[:frames*channels], channels, func(v int) float64 {
		return float64(v-offset) * scale
	})

	return newPCM(out, float64(buf.Format.SampleRate))
}

func decodeMP3(data []byte) (*buffer.PCM, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("codec: mp3: %w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("codec: mp3 stream: %w", err)
	}

	// go-mp3 always yields interleaved stereo s16le.
	samples := make([]int, len(raw)/2)
	for i := range samples {
		samples[i] = int(int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8))
	}

	frames := len(samples) / mp3Channels
	out := deinterleave(samples[:frames*mp3Channels], mp3Channels, func(v int) float64 {
		return float64(v) / 32768
	})

	return newPCM(out, float64(dec.SampleRate()))
}

func newPCM(data [][]float64, sampleRate float64) (*buffer.PCM, error) {
	if len(data) == 0 || len(data[0]) == 0 {
		return nil, ErrEmptyAudio
	}

	pcm, err := buffer.NewPCM(data, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("codec: %w", err)
	}

	return pcm, nil
}

func deinterleave(interleaved []int, channels int, conv func(int) float64) [][]float64 {
	frames := len(interleaved) / channels

	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}

	for i, v := range interleaved {
		out[i%channels][i/channels] = conv(v)
	}

	return out
}

// EncodeWAV writes pcm as 16-bit PCM WAV. Samples are clipped to [-1,1].
func EncodeWAV(w io.WriteSeeker, pcm *buffer.PCM) error {
	channels := pcm.Channels()
	if channels == 0 {
		return buffer.ErrReleased
	}

	sr := int(math.Round(pcm.SampleRate()))
	frames := pcm.Frames()

	intBuf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sr,
		},
		Data:           make([]int, frames*channels),
		SourceBitDepth: 16,
	}

	for ch := range channels {
		src := pcm.Channel(ch)
		for i, v := range src {
			v = math.Max(-1, math.Min(1, v))
			intBuf.Data[i*channels+ch] = int(math.Round(v * 32767))
		}
	}

	enc := wav.NewEncoder(w, sr, 16, channels, wavFormatPCM)
	if err := enc.Write(intBuf); err != nil {
		return fmt.Errorf("codec: wav write: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("codec: wav close: %w", err)
	}

	return nil
}
