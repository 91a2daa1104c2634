// Package audio provides clip players for the engine: a silent one, a
// recorder for tests and tooling, and a tone synthesizer.
package audio

import (
	"slices"
	"sync"
)

// Silent drops every clip.
type Silent struct{}

func (Silent) PlayClip(string) {}

// Recorder remembers the clips it was asked to play, in order.
type Recorder struct {
	mu    sync.Mutex
	clips []string
}

func (r *Recorder) PlayClip(name string) {
	r.mu.Lock()
	r.clips = append(r.clips, name)
	r.mu.Unlock()
}

// Clips returns a copy of the recorded clip names.
func (r *Recorder) Clips() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.clips)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.clips = nil
	r.mu.Unlock()
}
