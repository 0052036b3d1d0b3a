package host

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// StateDecoder turns the saved YAML form of one custom-state key back into
// the value its extension expects.
type StateDecoder func(node *yaml.Node) (any, error)

// RegisterState installs the decoder for custom-state key. Keys without a
// decoder are loaded as plain YAML values.
func (r *Runtime) RegisterState(key string, dec StateDecoder) {
	r.hookMu.Lock()
	r.decoders[key] = dec
	r.hookMu.Unlock()
}

// Project is the saved form of a runtime.
//
// Example:
//
//	language: de
//	targets:
//	  - id: stage
//	    name: Stage
//	    stage: true
//	  - id: 3f0c...
//	    name: Sprite1
//	    state:
//	      Scratch.ohbot:
//	        voiceId: TENOR
type Project struct {
	Language string         `yaml:"language,omitempty"`
	Targets  []TargetRecord `yaml:"targets"`
}

// TargetRecord is the saved form of one target.
type TargetRecord struct {
	ID     string                `yaml:"id"`
	Name   string                `yaml:"name"`
	Stage  bool                  `yaml:"stage,omitempty"`
	Source string                `yaml:"source,omitempty"`
	State  map[string]*yaml.Node `yaml:"state,omitempty"`
}

// Snapshot returns the current runtime as a [Project].
func (r *Runtime) Snapshot() (*Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p := &Project{Language: r.language, Targets: make([]TargetRecord, 0, len(r.order))}
	for _, id := range r.order {
		t := r.targets[id]
		rec := TargetRecord{ID: t.ID, Name: t.Name, Stage: t.IsStage, Source: t.Source}
		for key, v := range t.state {
			var node yaml.Node
			if err := node.Encode(v); err != nil {
				return nil, fmt.Errorf("host: encode state %q of target %q: %w", key, id, err)
			}
			if rec.State == nil {
				rec.State = make(map[string]*yaml.Node)
			}
			rec.State[key] = &node
		}
		p.Targets = append(p.Targets, rec)
	}
	return p, nil
}

// SaveProject writes the runtime as YAML to w.
func (r *Runtime) SaveProject(w io.Writer) error {
	p, err := r.Snapshot()
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("host: encode project: %w", err)
	}
	return enc.Close()
}

// LoadProject replaces every target, its custom state and the stage
// language with the project read from rd. On error the runtime is left
// unchanged.
func (r *Runtime) LoadProject(rd io.Reader) error {
	var p Project
	dec := yaml.NewDecoder(rd)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && err != io.EOF {
		return fmt.Errorf("host: decode project yaml: %w", err)
	}
	return r.Restore(&p)
}

// LoadProjectFile reads a project from the YAML file at path.
func (r *Runtime) LoadProjectFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("host: open project %q: %w", path, err)
	}
	defer f.Close()
	if err := r.LoadProject(f); err != nil {
		return fmt.Errorf("host: load project %q: %w", path, err)
	}
	return nil
}

// Restore replaces the runtime contents with p. A project without a stage
// record keeps an empty stage.
func (r *Runtime) Restore(p *Project) error {
	r.hookMu.RLock()
	decoders := make(map[string]StateDecoder, len(r.decoders))
	for k, v := range r.decoders {
		decoders[k] = v
	}
	r.hookMu.RUnlock()

	targets := map[string]*target{}
	order := []string{StageID}
	targets[StageID] = &target{Target: Target{ID: StageID, Name: "Stage", IsStage: true}, state: map[string]any{}}

	for i, rec := range p.Targets {
		if rec.Stage != (rec.ID == StageID) {
			return fmt.Errorf("host: target %d (%q): only %q may be the stage", i, rec.ID, StageID)
		}
		if rec.ID == "" {
			return fmt.Errorf("host: target %d (%q): id must not be empty", i, rec.Name)
		}
		t, seen := targets[rec.ID]
		if seen && !rec.Stage {
			return fmt.Errorf("host: target %d: %w: %q", i, ErrDuplicateID, rec.ID)
		}
		if !seen {
			t = &target{state: map[string]any{}}
			targets[rec.ID] = t
			order = append(order, rec.ID)
		}
		t.Target = Target{ID: rec.ID, Name: rec.Name, IsStage: rec.Stage, Source: rec.Source}

		for key, node := range rec.State {
			if node == nil {
				continue
			}
			v, err := decodeState(decoders[key], node)
			if err != nil {
				return fmt.Errorf("host: target %q state %q: %w", rec.ID, key, err)
			}
			t.state[key] = v
		}
	}

	r.mu.Lock()
	r.targets, r.order, r.language = targets, order, p.Language
	r.mu.Unlock()
	return nil
}

func decodeState(dec StateDecoder, node *yaml.Node) (any, error) {
	if dec != nil {
		return dec(node)
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
