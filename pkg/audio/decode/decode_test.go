package decode

import (
	"encoding/binary"
	"errors"
	"testing"
)

// buildTestWAV constructs a minimal RIFF/WAVE byte slice with the supplied
// raw PCM. extra is inserted as an unknown chunk before "data" when non-nil.
func buildTestWAV(pcm []byte, channels, rate, bits int, extra []byte) []byte {
	le := binary.LittleEndian
	var buf []byte
	putU32 := func(v uint32) { buf = le.AppendUint32(buf, v) }
	putU16 := func(v uint16) { buf = le.AppendUint16(buf, v) }

	buf = append(buf, "RIFF"...)
	putU32(0) // patched below
	buf = append(buf, "WAVE"...)

	buf = append(buf, "fmt "...)
	putU32(16)
	putU16(1)
	putU16(uint16(channels))
	putU32(uint32(rate))
	putU32(uint32(rate * channels * bits / 8))
	putU16(uint16(channels * bits / 8))
	putU16(uint16(bits))

	if extra != nil {
		buf = append(buf, "LIST"...)
		putU32(uint32(len(extra)))
		buf = append(buf, extra...)
		if len(extra)%2 != 0 {
			buf = append(buf, 0)
		}
	}

	buf = append(buf, "data"...)
	putU32(uint32(len(pcm)))
	buf = append(buf, pcm...)

	le.PutUint32(buf[4:8], uint32(len(buf)-8))
	return buf
}

func pcm16(samples ...int16) []byte {
	out := make([]byte, 0, len(samples)*2)
	for _, s := range samples {
		out = binary.LittleEndian.AppendUint16(out, uint16(s))
	}
	return out
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"wav", buildTestWAV(pcm16(0), 1, 16000, 16, nil), FormatWAV},
		{"id3", []byte("ID3\x04\x00\x00"), FormatMP3},
		{"mpeg frame sync", []byte{0xFF, 0xFB, 0x90, 0x00}, FormatMP3},
		{"riff but not wave", []byte("RIFF\x00\x00\x00\x00AVI "), FormatUnknown},
		{"text", []byte("<html>"), FormatUnknown},
		{"empty", nil, FormatUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sniff(tc.data); got != tc.want {
				t.Errorf("Sniff = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDecode_WAVMono16(t *testing.T) {
	wav := buildTestWAV(pcm16(0, 16384, -32768), 1, 22050, 16, nil)
	buf, err := Decode(wav)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if buf.SampleRate != 22050 {
		t.Errorf("SampleRate = %d, want 22050", buf.SampleRate)
	}
	if buf.NumChannels() != 1 || buf.Len() != 3 {
		t.Fatalf("shape = %d ch x %d, want 1 x 3", buf.NumChannels(), buf.Len())
	}
	if got := buf.ChannelData(0)[1]; got != 0.5 {
		t.Errorf("sample[1] = %v, want 0.5", got)
	}
	if got := buf.ChannelData(0)[2]; got != -1 {
		t.Errorf("sample[2] = %v, want -1", got)
	}
}

func TestDecode_WAVStereoWithExtraChunk(t *testing.T) {
	wav := buildTestWAV(pcm16(100, -100, 200, -200), 2, 16000, 16, []byte("abc"))
	buf, err := Decode(wav)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if buf.NumChannels() != 2 || buf.Len() != 2 {
		t.Fatalf("shape = %d ch x %d, want 2 x 2", buf.NumChannels(), buf.Len())
	}
	if buf.ChannelData(0)[0] != -buf.ChannelData(1)[0] {
		t.Errorf("channels not de-interleaved: %v / %v", buf.ChannelData(0), buf.ChannelData(1))
	}
}

func TestDecode_WAV8Bit(t *testing.T) {
	wav := buildTestWAV([]byte{128, 0}, 1, 8000, 8, nil)
	buf, err := Decode(wav)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := buf.ChannelData(0); got[0] != 0 || got[1] != -1 {
		t.Errorf("samples = %v, want [0 -1]", got)
	}
}

func TestDecode_Errors(t *testing.T) {
	t.Run("unknown format", func(t *testing.T) {
		_, err := Decode([]byte("not audio at all"))
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("err = %v, want ErrUnsupportedFormat", err)
		}
	})
	t.Run("24-bit wav", func(t *testing.T) {
		_, err := Decode(buildTestWAV(make([]byte, 6), 1, 8000, 24, nil))
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("err = %v, want ErrUnsupportedFormat", err)
		}
	})
	t.Run("truncated mp3", func(t *testing.T) {
		if _, err := Decode([]byte{0xFF, 0xFB}); err == nil {
			t.Error("expected error for truncated mp3")
		}
	})
}

func TestParseWAV_MissingData(t *testing.T) {
	wav := buildTestWAV(nil, 1, 8000, 16, nil)
	wav = wav[:len(wav)-8] // drop the data chunk header
	if _, err := parseWAV(wav); err == nil {
		t.Error("expected error for WAV without data chunk")
	}
}
