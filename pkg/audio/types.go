package audio

import "time"

// Frame is one block of mono audio delivered to subscribers of a playing
// [Sound]. Samples are in the range [-1, 1].
type Frame struct {
	// Samples holds one engine block of audio. The last frame of a clip may
	// be shorter than the engine block size.
	Samples []float32

	// SampleRate in Hz (e.g., 22050, 48000).
	SampleRate int

	// Timestamp is the playback position of the first sample, relative to
	// the start of playback.
	Timestamp time.Duration
}

// Buffer is fully decoded audio, one float32 slice per channel.
type Buffer struct {
	SampleRate int
	Channels   [][]float32
}

// NumChannels returns the number of channels in b.
func (b *Buffer) NumChannels() int {
	return len(b.Channels)
}

// Len returns the number of sample frames per channel.
func (b *Buffer) Len() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Duration returns the playback length at rate 1.
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Len()) * time.Second / time.Duration(b.SampleRate)
}

// ChannelData returns the samples of channel i, or nil if i is out of range.
func (b *Buffer) ChannelData(i int) []float32 {
	if i < 0 || i >= len(b.Channels) {
		return nil
	}
	return b.Channels[i]
}
