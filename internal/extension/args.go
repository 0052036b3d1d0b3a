package extension

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnknownOpcode is returned for an opcode the extension does not define.
var ErrUnknownOpcode = errors.New("extension: unknown opcode")

// Block opcodes.
const (
	OpSetMotorPosition    = "setMotorPosition"
	OpChangeMotorPosition = "changeMotorPosition"
	OpSetMotorSpeed       = "setMotorSpeed"
	OpSetNamedColour      = "setNamedColour"
	OpSetRGBColour        = "setRGBColour"
	OpReset               = "reset"
	OpSpeakNoWait         = "speakNoWait"
	OpSpeakAndWait        = "speakAndWait"
	OpSetVoice            = "setVoice"
	OpSetLanguage         = "setLanguage"
	OpGetLip              = "getLip"
)

// Call is one parsed block invocation. Its dynamic type is one of the
// structs below.
type Call interface {
	Opcode() string
}

type (
	SetMotorPosition    struct{ Motor, Position string }
	ChangeMotorPosition struct{ Motor, Delta string }
	SetMotorSpeed       struct{ Motor, Speed string }
	SetNamedColour      struct{ Colour string }
	SetRGBColour        struct{ Channel, Level string }
	Reset               struct{}
	Speak               struct {
		Words string
		Wait  bool
	}
	SetVoice    struct{ Voice string }
	SetLanguage struct{ Language string }
	GetLip      struct{}
)

func (SetMotorPosition) Opcode() string    { return OpSetMotorPosition }
func (ChangeMotorPosition) Opcode() string { return OpChangeMotorPosition }
func (SetMotorSpeed) Opcode() string       { return OpSetMotorSpeed }
func (SetNamedColour) Opcode() string      { return OpSetNamedColour }
func (SetRGBColour) Opcode() string        { return OpSetRGBColour }
func (Reset) Opcode() string               { return OpReset }
func (SetVoice) Opcode() string            { return OpSetVoice }
func (SetLanguage) Opcode() string         { return OpSetLanguage }
func (GetLip) Opcode() string              { return OpGetLip }

func (s Speak) Opcode() string {
	if s.Wait {
		return OpSpeakAndWait
	}
	return OpSpeakNoWait
}

// ParseBlock converts the raw argument bag of a block into its typed
// [Call]. Every argument is cast to a string here; missing arguments
// become "". Values are not validated: the device decides what a motor
// name or position means.
func ParseBlock(opcode string, args map[string]any) (Call, error) {
	arg := func(name string) string { return castToString(args[name]) }

	switch opcode {
	case OpSetMotorPosition:
		return SetMotorPosition{Motor: arg("MOTOR"), Position: arg("POSITION")}, nil
	case OpChangeMotorPosition:
		return ChangeMotorPosition{Motor: arg("MOTOR"), Delta: arg("POSITION")}, nil
	case OpSetMotorSpeed:
		return SetMotorSpeed{Motor: arg("MOTOR"), Speed: arg("SPEED")}, nil
	case OpSetNamedColour:
		return SetNamedColour{Colour: arg("COLOURNAME")}, nil
	case OpSetRGBColour:
		return SetRGBColour{Channel: arg("RGB"), Level: arg("RGBCOLOUR")}, nil
	case OpReset:
		return Reset{}, nil
	case OpSpeakNoWait:
		return Speak{Words: arg("WORDS")}, nil
	case OpSpeakAndWait:
		return Speak{Words: arg("WORDS"), Wait: true}, nil
	case OpSetVoice:
		return SetVoice{Voice: arg("VOICE")}, nil
	case OpSetLanguage:
		return SetLanguage{Language: arg("LANGUAGE")}, nil
	case OpGetLip:
		return GetLip{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOpcode, opcode)
	}
}

// castToString renders a block argument the way the block runtime does:
// integral numbers have no decimal point, booleans are "true"/"false".
func castToString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return formatNumber(x)
	case float32:
		return formatNumber(float64(x))
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return formatNumber(f)
		}
		return x.String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	// Exponent form as the host writes it: "1e+21", "1.5e-7".
	mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + digits
}
