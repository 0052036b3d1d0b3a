//go:build portaudio

package engine

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudioAvailable reports whether this binary was built with speaker
// output support.
const PortAudioAvailable = true

// PortAudioOutput plays rendered audio on the default output device.
type PortAudioOutput struct {
	mu     sync.Mutex
	stream *portaudio.Stream
	buffer []float32
	rate   int
}

// NewPortAudioOutput initialises PortAudio and opens a mono output stream on
// the default device.
func NewPortAudioOutput(sampleRate, blockSize int) (Output, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("engine: initialize portaudio: %w", err)
	}
	o := &PortAudioOutput{
		buffer: make([]float32, blockSize),
		rate:   sampleRate,
	}
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), blockSize, o.buffer)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("engine: open portaudio stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("engine: start portaudio stream: %w", err)
	}
	o.stream = stream
	return o, nil
}

// Write blocks until the device accepted samples. Blocks shorter than the
// stream buffer are padded with silence.
func (o *PortAudioOutput) Write(samples []float32, sampleRate int) error {
	if sampleRate != o.rate {
		return fmt.Errorf("engine: portaudio output runs at %d Hz, got %d", o.rate, sampleRate)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	for len(samples) > 0 {
		n := copy(o.buffer, samples)
		clear(o.buffer[n:])
		samples = samples[n:]
		if err := o.stream.Write(); err != nil {
			return fmt.Errorf("engine: portaudio write: %w", err)
		}
	}
	return nil
}

// Close stops the stream and terminates PortAudio.
func (o *PortAudioOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.stream.Stop(); err != nil {
		return fmt.Errorf("engine: stop portaudio stream: %w", err)
	}
	if err := o.stream.Close(); err != nil {
		return fmt.Errorf("engine: close portaudio stream: %w", err)
	}
	return portaudio.Terminate()
}
