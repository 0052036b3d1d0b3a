package audio

import (
	"encoding/binary"
	"fmt"
	"math"
)

// PCM16ToFloat converts interleaved little-endian int16 PCM to one float32
// slice per channel. A trailing partial sample frame is dropped.
func PCM16ToFloat(pcm []byte, channels int) [][]float32 {
	if channels <= 0 {
		return nil
	}
	frameBytes := 2 * channels
	frames := len(pcm) / frameBytes
	out := make([][]float32, channels)
	for ch := range out {
		out[ch] = make([]float32, frames)
	}
	for i := range frames {
		base := i * frameBytes
		for ch := range channels {
			s := int16(binary.LittleEndian.Uint16(pcm[base+ch*2:]))
			out[ch][i] = float32(s) / 32768
		}
	}
	return out
}

// PCM8ToFloat converts interleaved unsigned 8-bit PCM to float32 channels.
func PCM8ToFloat(pcm []byte, channels int) [][]float32 {
	if channels <= 0 {
		return nil
	}
	frames := len(pcm) / channels
	out := make([][]float32, channels)
	for ch := range out {
		out[ch] = make([]float32, frames)
	}
	for i := range frames {
		for ch := range channels {
			out[ch][i] = (float32(pcm[i*channels+ch]) - 128) / 128
		}
	}
	return out
}

// FloatToPCM16 converts mono float32 samples to little-endian int16 PCM,
// clamping to the int16 range.
func FloatToPCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := math.Round(float64(s) * 32767)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v)))
	}
	return out
}

// Resample resamples mono float32 samples from srcRate to dstRate using
// linear interpolation. If the rates match, samples is returned unchanged.
func Resample(samples []float32, srcRate, dstRate int) []float32 {
	if srcRate <= 0 || dstRate <= 0 || srcRate == dstRate || len(samples) == 0 {
		return samples
	}
	dstLen := int(int64(len(samples)) * int64(dstRate) / int64(srcRate))
	if dstLen == 0 {
		return nil
	}

	out := make([]float32, dstLen)
	ratio := float64(srcRate) / float64(dstRate)
	for i := range dstLen {
		out[i] = Interpolate(samples, float64(i)*ratio)
	}
	return out
}

// ResampleBuffer resamples every channel of b to rate and returns a new
// Buffer. b is returned unchanged if it already has that rate.
func ResampleBuffer(b *Buffer, rate int) *Buffer {
	if b.SampleRate == rate {
		return b
	}
	out := &Buffer{SampleRate: rate, Channels: make([][]float32, len(b.Channels))}
	for i, ch := range b.Channels {
		out.Channels[i] = Resample(ch, b.SampleRate, rate)
	}
	return out
}

// Interpolate returns the linearly interpolated sample at fractional index
// pos. Positions past the end hold the last sample.
func Interpolate(samples []float32, pos float64) float32 {
	n := len(samples)
	if n == 0 || pos < 0 {
		return 0
	}
	idx := int(pos)
	if idx >= n-1 {
		return samples[n-1]
	}
	frac := float32(pos - float64(idx))
	return samples[idx]*(1-frac) + samples[idx+1]*frac
}

// formatString returns a human-readable string for a sample rate and channel
// count, e.g. "48000Hz stereo".
func formatString(rate, channels int) string {
	ch := "mono"
	if channels == 2 {
		ch = "stereo"
	} else if channels > 2 {
		ch = fmt.Sprintf("%dch", channels)
	}
	return fmt.Sprintf("%dHz %s", rate, ch)
}

// String implements fmt.Stringer.
func (b *Buffer) String() string {
	return fmt.Sprintf("%s %s", formatString(b.SampleRate, b.NumChannels()), b.Duration())
}
