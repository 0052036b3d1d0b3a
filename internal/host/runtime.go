// Package host models the block runtime that loads the Ohbot extension: a
// stage plus any number of sprite targets, each carrying extension-owned
// custom state, and the runtime events (clone, stop-all) extensions hook
// into.
package host

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// StageID is the id of the stage target, which always exists.
const StageID = "stage"

// ErrTargetNotFound is returned when no target has the requested id.
var ErrTargetNotFound = errors.New("host: target not found")

// ErrDuplicateID is returned when loading a project with two targets
// sharing an id.
var ErrDuplicateID = errors.New("host: duplicate target id")

// Target describes one runtime target.
type Target struct {
	ID      string
	Name    string
	IsStage bool
	// Source is the id of the target this one was cloned from, if any.
	Source string
}

type target struct {
	Target
	state map[string]any
}

// CloneHook runs after clone has been created from source. Hooks are
// called without any runtime lock held and may read or write custom state.
type CloneHook func(ctx context.Context, clone, source string)

// StopHook runs on every global stop.
type StopHook func(ctx context.Context)

// Runtime is a thread-safe, in-memory block runtime. Create it with
// [NewRuntime].
type Runtime struct {
	mu       sync.RWMutex
	targets  map[string]*target
	order    []string
	language string

	hookMu     sync.RWMutex
	cloneHooks []CloneHook
	stopHooks  []StopHook
	decoders   map[string]StateDecoder
}

// NewRuntime returns a runtime containing only the stage.
func NewRuntime() *Runtime {
	r := &Runtime{decoders: make(map[string]StateDecoder)}
	r.reset()
	return r
}

func (r *Runtime) reset() {
	r.targets = map[string]*target{
		StageID: {Target: Target{ID: StageID, Name: "Stage", IsStage: true}, state: map[string]any{}},
	}
	r.order = []string{StageID}
	r.language = ""
}

// AddTarget creates a sprite target and returns its id.
func (r *Runtime) AddTarget(name string) string {
	id := uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets[id] = &target{Target: Target{ID: id, Name: name}, state: map[string]any{}}
	r.order = append(r.order, id)
	return id
}

// Target returns the target with the given id.
func (r *Runtime) Target(id string) (Target, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.targets[id]
	if !ok {
		return Target{}, ErrTargetNotFound
	}
	return t.Target, nil
}

// Targets returns every target, stage first, in creation order.
func (r *Runtime) Targets() []Target {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Target, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.targets[id].Target)
	}
	return out
}

// CustomState returns the value stored under key on target id.
func (r *Runtime) CustomState(id, key string) (any, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.targets[id]
	if !ok {
		return nil, false, ErrTargetNotFound
	}
	v, ok := t.state[key]
	return v, ok, nil
}

// SetCustomState stores v under key on target id.
func (r *Runtime) SetCustomState(id, key string, v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.targets[id]
	if !ok {
		return ErrTargetNotFound
	}
	t.state[key] = v
	return nil
}

// UpdateCustomState replaces the value under key with fn's result while
// holding the runtime lock. fn receives the current value and whether one
// was set.
func (r *Runtime) UpdateCustomState(id, key string, fn func(cur any, ok bool) any) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.targets[id]
	if !ok {
		return nil, ErrTargetNotFound
	}
	cur, set := t.state[key]
	next := fn(cur, set)
	t.state[key] = next
	return next, nil
}

// Language returns the stage's speech language, or "" when unset.
func (r *Runtime) Language() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.language
}

// SetLanguage stores the stage's speech language.
func (r *Runtime) SetLanguage(lang string) {
	r.mu.Lock()
	r.language = lang
	r.mu.Unlock()
}

// OnClone registers h to run after every clone.
func (r *Runtime) OnClone(h CloneHook) {
	r.hookMu.Lock()
	r.cloneHooks = append(r.cloneHooks, h)
	r.hookMu.Unlock()
}

// OnStopAll registers h to run on every global stop.
func (r *Runtime) OnStopAll(h StopHook) {
	r.hookMu.Lock()
	r.stopHooks = append(r.stopHooks, h)
	r.hookMu.Unlock()
}

// Clone creates a copy of sprite id and runs the clone hooks. Custom state
// is not copied by the runtime; extensions copy what they own from their
// hooks. The stage cannot be cloned.
func (r *Runtime) Clone(ctx context.Context, id string) (string, error) {
	r.mu.Lock()
	src, ok := r.targets[id]
	if !ok || src.IsStage {
		r.mu.Unlock()
		return "", ErrTargetNotFound
	}
	cloneID := uuid.NewString()
	r.targets[cloneID] = &target{
		Target: Target{ID: cloneID, Name: src.Name, Source: id},
		state:  map[string]any{},
	}
	r.order = append(r.order, cloneID)
	r.mu.Unlock()

	r.hookMu.RLock()
	hooks := slices.Clone(r.cloneHooks)
	r.hookMu.RUnlock()
	for _, h := range hooks {
		h(ctx, cloneID, id)
	}
	return cloneID, nil
}

// StopAll runs every stop hook in registration order.
func (r *Runtime) StopAll(ctx context.Context) {
	r.hookMu.RLock()
	hooks := slices.Clone(r.stopHooks)
	r.hookMu.RUnlock()
	for _, h := range hooks {
		h(ctx)
	}
}
