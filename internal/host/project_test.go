package host_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/MrWong99/ohbot/internal/host"
)

type voice struct {
	VoiceID string `yaml:"voiceId"`
}

func decodeVoice(node *yaml.Node) (any, error) {
	var v voice
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

func TestProject_SaveAndLoad(t *testing.T) {
	src := host.NewRuntime()
	id := src.AddTarget("Sprite1")
	_ = src.SetCustomState(id, "Scratch.ohbot", &voice{VoiceID: "TENOR"})
	_ = src.SetCustomState(id, "other", map[string]any{"n": 3})
	src.SetLanguage("de")

	var buf bytes.Buffer
	if err := src.SaveProject(&buf); err != nil {
		t.Fatalf("SaveProject: %v", err)
	}
	if !strings.Contains(buf.String(), "voiceId: TENOR") {
		t.Errorf("saved project lacks voice state:\n%s", buf.String())
	}

	dst := host.NewRuntime()
	dst.RegisterState("Scratch.ohbot", decodeVoice)
	dst.AddTarget("discarded")
	if err := dst.LoadProject(&buf); err != nil {
		t.Fatalf("LoadProject: %v", err)
	}

	if dst.Language() != "de" {
		t.Errorf("Language() = %q, want de", dst.Language())
	}
	if n := len(dst.Targets()); n != 2 {
		t.Fatalf("Targets() has %d entries, want 2", n)
	}
	v, ok, err := dst.CustomState(id, "Scratch.ohbot")
	if err != nil || !ok {
		t.Fatalf("CustomState: (%v, %v)", ok, err)
	}
	got, isVoice := v.(*voice)
	if !isVoice || got.VoiceID != "TENOR" {
		t.Errorf("voice state = %#v, want *voice{TENOR}", v)
	}
	other, _, _ := dst.CustomState(id, "other")
	if m, ok := other.(map[string]any); !ok || m["n"] != 3 {
		t.Errorf("undecoded state = %#v", other)
	}
}

func TestLoadProject_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"unknown field", "targets: []\nbogus: 1\n", nil},
		{"duplicate id", "targets:\n  - {id: a, name: x}\n  - {id: a, name: y}\n", host.ErrDuplicateID},
		{"sprite posing as stage", "targets:\n  - {id: a, name: x, stage: true}\n", nil},
		{"empty id", "targets:\n  - {name: x}\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := host.NewRuntime()
			keep := r.AddTarget("keep")
			err := r.LoadProject(strings.NewReader(tt.yaml))
			if err == nil {
				t.Fatal("LoadProject succeeded")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if _, err := r.Target(keep); err != nil {
				t.Error("failed load modified the runtime")
			}
		})
	}
}

func TestLoadProject_Empty(t *testing.T) {
	r := host.NewRuntime()
	r.AddTarget("gone")
	if err := r.LoadProject(strings.NewReader("")); err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if n := len(r.Targets()); n != 1 {
		t.Errorf("Targets() = %d, want only the stage", n)
	}
}

func TestLoadProjectFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.yaml")
	if err := os.WriteFile(path, []byte("language: fr\ntargets:\n  - {id: stage, name: Stage, stage: true}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := host.NewRuntime()
	if err := r.LoadProjectFile(path); err != nil {
		t.Fatalf("LoadProjectFile: %v", err)
	}
	if r.Language() != "fr" {
		t.Errorf("Language() = %q, want fr", r.Language())
	}
	if err := r.LoadProjectFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadProjectFile(missing) succeeded")
	}
}
