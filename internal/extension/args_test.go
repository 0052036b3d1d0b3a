package extension

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestCastToString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "HeadTurn", "HeadTurn"},
		{"integral float", 5.0, "5"},
		{"fraction", 2.5, "2.5"},
		{"negative", -1.0, "-1"},
		{"int", 7, "7"},
		{"bool", true, "true"},
		{"json number", json.Number("3"), "3"},
		{"nan", math.NaN(), "NaN"},
		{"infinity", math.Inf(1), "Infinity"},
		{"negative zero", math.Copysign(0, -1), "0"},
		{"large fixed", 1e20, "100000000000000000000"},
		{"large exponent", 1e21, "1e+21"},
		{"large fraction exponent", 1.5e22, "1.5e+22"},
		{"small fixed", 1e-6, "0.000001"},
		{"small exponent", 1e-7, "1e-7"},
		{"negative small exponent", -2.5e-8, "-2.5e-8"},
		{"json exponent", json.Number("1e21"), "1e+21"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := castToString(tt.in); got != tt.want {
				t.Errorf("castToString(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseBlock(t *testing.T) {
	tests := []struct {
		opcode string
		args   map[string]any
		want   Call
	}{
		{OpSetMotorPosition, map[string]any{"MOTOR": "HeadNod", "POSITION": 5.0}, SetMotorPosition{"HeadNod", "5"}},
		{OpChangeMotorPosition, map[string]any{"MOTOR": "EyeTurn", "POSITION": -2.0}, ChangeMotorPosition{"EyeTurn", "-2"}},
		{OpSetMotorSpeed, map[string]any{"MOTOR": "TopLip", "SPEED": "9"}, SetMotorSpeed{"TopLip", "9"}},
		{OpSetNamedColour, map[string]any{"COLOURNAME": "purple"}, SetNamedColour{"purple"}},
		{OpSetRGBColour, map[string]any{"RGB": "green", "RGBCOLOUR": 10.0}, SetRGBColour{"green", "10"}},
		{OpReset, nil, Reset{}},
		{OpSpeakNoWait, map[string]any{"WORDS": 42.0}, Speak{Words: "42"}},
		{OpSpeakAndWait, map[string]any{"WORDS": "hi"}, Speak{Words: "hi", Wait: true}},
		{OpSetVoice, map[string]any{"VOICE": 2.0}, SetVoice{"2"}},
		{OpSetLanguage, map[string]any{"LANGUAGE": "de"}, SetLanguage{"de"}},
		{OpGetLip, nil, GetLip{}},
		{OpSetMotorPosition, map[string]any{}, SetMotorPosition{}},
	}
	for _, tt := range tests {
		t.Run(tt.opcode, func(t *testing.T) {
			got, err := ParseBlock(tt.opcode, tt.args)
			if err != nil {
				t.Fatalf("ParseBlock: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseBlock() = %#v, want %#v", got, tt.want)
			}
			if got.Opcode() != tt.opcode {
				t.Errorf("Opcode() = %q, want %q", got.Opcode(), tt.opcode)
			}
		})
	}
}

func TestParseBlock_UnknownOpcode(t *testing.T) {
	if _, err := ParseBlock("dance", nil); !errors.Is(err, ErrUnknownOpcode) {
		t.Errorf("err = %v, want ErrUnknownOpcode", err)
	}
}

func TestParseLeadingInt(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"5", 5, true},
		{"  12", 12, true},
		{"3 voices", 3, true},
		{"-1", -1, true},
		{"+4", 4, true},
		{"2.9", 2, true},
		{"TENOR", 0, false},
		{"", 0, false},
		{"-", 0, false},
		{"x3", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseLeadingInt(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("parseLeadingInt(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestWrapClamp(t *testing.T) {
	tests := []struct{ n, want int }{
		{0, 0}, {3, 3}, {4, 0}, {-1, 3}, {-5, 3}, {9, 1},
	}
	for _, tt := range tests {
		if got := wrapClamp(tt.n, 4); got != tt.want {
			t.Errorf("wrapClamp(%d, 4) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestLocaleFromEnv(t *testing.T) {
	tests := map[string]string{
		"en_US.UTF-8":     "en-us",
		"de_DE@euro":      "de-de",
		"fr":              "fr",
		"C":               "",
		"POSIX":           "",
		"":                "",
		"pt_BR.ISO8859-1": "pt-br",
	}
	for in, want := range tests {
		if got := localeFromEnv(in); got != want {
			t.Errorf("localeFromEnv(%q) = %q, want %q", in, got, want)
		}
	}
}
