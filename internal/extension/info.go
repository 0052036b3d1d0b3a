package extension

import (
	"unicode"
	"unicode/utf8"
)

// BlockType distinguishes blocks that act from blocks that report a value.
type BlockType string

const (
	BlockCommand  BlockType = "command"
	BlockReporter BlockType = "reporter"
)

// Metadata describes the extension to the block editor.
type Metadata struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Blocks []BlockInfo     `json:"blocks"`
	Menus  map[string]Menu `json:"menus"`
}

// BlockInfo describes one block.
type BlockInfo struct {
	Opcode    string              `json:"opcode"`
	BlockType BlockType           `json:"blockType"`
	Text      string              `json:"text"`
	Arguments map[string]Argument `json:"arguments,omitempty"`
}

// Argument describes one block input. Every Ohbot input is a string.
type Argument struct {
	Type         string `json:"type"`
	Menu         string `json:"menu,omitempty"`
	DefaultValue string `json:"defaultValue"`
}

// Menu lists the choices of a dropdown. Reporters may be dropped onto
// every Ohbot menu.
type Menu struct {
	AcceptReporters bool       `json:"acceptReporters"`
	Items           []MenuItem `json:"items"`
}

// MenuItem is one dropdown entry.
type MenuItem struct {
	Text  string `json:"text"`
	Value string `json:"value"`
}

// Motors lists the robot's motors in menu order.
var Motors = []string{"HeadTurn", "HeadNod", "EyeTurn", "EyeTilt", "TopLip", "BottomLip", "LidBlink"}

// NamedColours lists the eye colours accepted by the named colour block.
var NamedColours = []string{"off", "red", "green", "blue", "yellow", "orange", "purple", "white"}

// RGBChannels lists the channels accepted by the RGB colour block.
var RGBChannels = []string{"red", "green", "blue"}

const defaultWords = "hello"

// Info returns the extension metadata. The language block defaults to the
// current speech language.
func (e *Extension) Info() Metadata {
	str := func(menu, def string) Argument {
		return Argument{Type: "string", Menu: menu, DefaultValue: def}
	}
	motor := str("motors", Motors[0])

	return Metadata{
		ID:   ID,
		Name: "Ohbot",
		Blocks: []BlockInfo{
			{OpSetMotorPosition, BlockCommand, "set [MOTOR] to [POSITION]",
				map[string]Argument{"MOTOR": motor, "POSITION": str("", "5")}},
			{OpChangeMotorPosition, BlockCommand, "change [MOTOR] by [POSITION]",
				map[string]Argument{"MOTOR": motor, "POSITION": str("", "1")}},
			{OpSetMotorSpeed, BlockCommand, "set [MOTOR] speed to [SPEED]",
				map[string]Argument{"MOTOR": motor, "SPEED": str("", "5")}},
			{OpSetNamedColour, BlockCommand, "set colour to [COLOURNAME]",
				map[string]Argument{"COLOURNAME": str("namedColours", "off")}},
			{OpSetRGBColour, BlockCommand, "set colour RGB [RGB] to [RGBCOLOUR]",
				map[string]Argument{"RGB": str("rgbColours", "red"), "RGBCOLOUR": str("", "5")}},
			{OpReset, BlockCommand, "reset", nil},
			{OpSpeakNoWait, BlockCommand, "speak [WORDS]",
				map[string]Argument{"WORDS": str("", defaultWords)}},
			{OpSpeakAndWait, BlockCommand, "speak [WORDS] until done",
				map[string]Argument{"WORDS": str("", defaultWords)}},
			{OpSetVoice, BlockCommand, "set voice to [VOICE]",
				map[string]Argument{"VOICE": str("voices", e.catalog.Voices()[0].ID)}},
			{OpSetLanguage, BlockCommand, "set language to [LANGUAGE]",
				map[string]Argument{"LANGUAGE": str("languages", e.CurrentLanguage())}},
			{OpGetLip, BlockReporter, "lip", nil},
		},
		Menus: map[string]Menu{
			"motors":       plainMenu(Motors),
			"namedColours": plainMenu(NamedColours),
			"rgbColours":   plainMenu(RGBChannels),
			"voices":       e.voiceMenu(),
			"languages":    e.languageMenu(),
		},
	}
}

func plainMenu(values []string) Menu {
	items := make([]MenuItem, len(values))
	for i, v := range values {
		items[i] = MenuItem{Text: v, Value: v}
	}
	return Menu{AcceptReporters: true, Items: items}
}

func (e *Extension) voiceMenu() Menu {
	voices := e.catalog.Voices()
	items := make([]MenuItem, len(voices))
	for i, v := range voices {
		items[i] = MenuItem{Text: v.Name, Value: v.ID}
	}
	return Menu{AcceptReporters: true, Items: items}
}

func (e *Extension) languageMenu() Menu {
	langs := e.catalog.Languages()
	items := make([]MenuItem, len(langs))
	for i, l := range langs {
		items[i] = MenuItem{Text: upperFirst(l.Name), Value: l.ID}
	}
	return Menu{AcceptReporters: true, Items: items}
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}
