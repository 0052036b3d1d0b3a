// Package decode turns encoded audio clips into [audio.Buffer] values.
//
// Two container formats are recognised by sniffing the leading bytes:
//
//   - RIFF/WAVE with 8- or 16-bit integer PCM.
//   - MPEG-1/2 Layer III, with or without a leading ID3v2 tag. This is the
//     format returned by the speech synthesis service.
package decode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"

	"github.com/MrWong99/ohbot/pkg/audio"
)

// ErrUnsupportedFormat is returned when the input is neither WAV nor MP3.
var ErrUnsupportedFormat = errors.New("decode: unsupported audio format")

// Format identifies an audio container.
type Format string

const (
	FormatUnknown Format = ""
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
)

// Sniff reports the container format of data.
func Sniff(data []byte) Format {
	switch {
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return FormatWAV
	case len(data) >= 3 && string(data[0:3]) == "ID3":
		return FormatMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3
	}
	return FormatUnknown
}

// Decode decodes data into a Buffer at the clip's native sample rate.
// data is not retained.
func Decode(data []byte) (*audio.Buffer, error) {
	switch Sniff(data) {
	case FormatWAV:
		return decodeWAV(data)
	case FormatMP3:
		return decodeMP3(data)
	}
	return nil, ErrUnsupportedFormat
}

// ---- MP3 ----

// decodeMP3 decodes an MP3 stream. go-mp3 always produces interleaved
// 16-bit stereo.
func decodeMP3(data []byte) (*audio.Buffer, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: mp3: %w", err)
	}
	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decode: mp3: read: %w", err)
	}
	if len(pcm) < 4 {
		return nil, errors.New("decode: mp3: no audio frames")
	}
	return &audio.Buffer{
		SampleRate: dec.SampleRate(),
		Channels:   audio.PCM16ToFloat(pcm, 2),
	}, nil
}

// ---- WAV ----

// wavInfo holds the format metadata extracted from a RIFF/WAVE header.
type wavInfo struct {
	DataOffset    int // byte offset of the first PCM sample
	DataSize      int // length of the data chunk in bytes
	Format        int // 1 = integer PCM
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// parseWAV scans the RIFF/WAVE container in wav and returns the location of
// the data chunk and the audio format from the "fmt " sub-chunk.
func parseWAV(wav []byte) (wavInfo, error) {
	if len(wav) < 12 {
		return wavInfo{}, errors.New("decode: wav: too short to be a valid RIFF file")
	}
	if string(wav[0:4]) != "RIFF" {
		return wavInfo{}, errors.New("decode: wav: missing RIFF header")
	}
	if string(wav[8:12]) != "WAVE" {
		return wavInfo{}, errors.New("decode: wav: missing WAVE identifier")
	}

	var info wavInfo
	foundFmt := false

	// Walk RIFF chunks starting immediately after the 12-byte RIFF/WAVE header.
	offset := 12
	for offset+8 <= len(wav) {
		chunkID := string(wav[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(wav[offset+4 : offset+8]))

		switch chunkID {
		case "fmt ":
			if chunkSize >= 16 && offset+8+16 <= len(wav) {
				fmtData := wav[offset+8:]
				info.Format = int(binary.LittleEndian.Uint16(fmtData[0:2]))
				info.Channels = int(binary.LittleEndian.Uint16(fmtData[2:4]))
				info.SampleRate = int(binary.LittleEndian.Uint32(fmtData[4:8]))
				info.BitsPerSample = int(binary.LittleEndian.Uint16(fmtData[14:16]))
				foundFmt = true
			}
		case "data":
			if !foundFmt {
				return wavInfo{}, errors.New("decode: wav: data chunk before fmt chunk")
			}
			info.DataOffset = offset + 8
			info.DataSize = min(chunkSize, len(wav)-info.DataOffset)
			return info, nil
		}

		// Chunks are word-aligned: pad by 1 if odd size.
		offset += 8 + chunkSize
		if chunkSize%2 != 0 {
			offset++
		}
	}
	return wavInfo{}, errors.New("decode: wav: missing data chunk")
}

func decodeWAV(wav []byte) (*audio.Buffer, error) {
	info, err := parseWAV(wav)
	if err != nil {
		return nil, err
	}
	if info.Format != 1 {
		return nil, fmt.Errorf("decode: wav: format tag %d: %w", info.Format, ErrUnsupportedFormat)
	}
	if info.Channels <= 0 || info.SampleRate <= 0 {
		return nil, fmt.Errorf("decode: wav: invalid header (%d channels, %d Hz)", info.Channels, info.SampleRate)
	}

	pcm := wav[info.DataOffset : info.DataOffset+info.DataSize]
	var channels [][]float32
	switch info.BitsPerSample {
	case 16:
		channels = audio.PCM16ToFloat(pcm, info.Channels)
	case 8:
		channels = audio.PCM8ToFloat(pcm, info.Channels)
	default:
		return nil, fmt.Errorf("decode: wav: %d bits per sample: %w", info.BitsPerSample, ErrUnsupportedFormat)
	}
	return &audio.Buffer{SampleRate: info.SampleRate, Channels: channels}, nil
}
