package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Synth renders every clip as a short tone sequence through oto.
type Synth struct {
	enabled    bool
	sampleRate int
	ctx        *oto.Context
	volume     float64
	mu         sync.RWMutex
}

// NewSynth opens the audio device. When that fails the synth stays
// silent and err says why.
func NewSynth(enabled bool) (*Synth, error) {
	s := &Synth{
		enabled:    enabled,
		sampleRate: 44100,
		volume:     0.7,
	}
	if !enabled {
		return s, nil
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   s.sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		s.enabled = false
		return s, err
	}
	<-ready
	s.ctx = ctx
	return s, nil
}

func (s *Synth) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
}

func (s *Synth) SetVolume(volume float64) {
	s.mu.Lock()
	s.volume = min(max(volume, 0), 1)
	s.mu.Unlock()
}

// PlayClip returns immediately; playback runs on its own goroutine.
func (s *Synth) PlayClip(name string) {
	s.mu.RLock()
	ctx := s.ctx
	enabled := s.enabled
	volume := s.volume
	s.mu.RUnlock()
	if !enabled || ctx == nil {
		return
	}
	c := clipFor(name)
	if len(c) == 0 {
		return
	}
	go func() {
		player := ctx.NewPlayer(bytes.NewReader(c.pcm(s.sampleRate, volume)))
		player.Play()
		for player.IsPlaying() {
			time.Sleep(5 * time.Millisecond)
		}
		_ = player.Close()
	}()
}

// note is one pitch of a clip; a zero pitch is a rest.
type note struct {
	pitch  float64
	length time.Duration
	gain   float64
}

// clip is a sequence of notes played back to back.
type clip []note

const (
	frameBytes = 4 // stereo, signed 16-bit
	decayRate  = 12.0
)

func (n note) frames(rate int) int {
	return int(float64(rate) * n.length.Seconds())
}

// clipFor maps "land", "rotate", "move" and "chain<N>" to clips. Each
// chain level climbs a whole tone, up to eight levels; chains past the
// first add a fifth after a short rest.
func clipFor(name string) clip {
	switch name {
	case "land":
		return clip{{pitch: 220, length: 70 * time.Millisecond, gain: 0.3}}
	case "rotate":
		return clip{{pitch: 520, length: 40 * time.Millisecond, gain: 0.25}}
	case "move":
		return clip{{pitch: 380, length: 25 * time.Millisecond, gain: 0.18}}
	}
	level, ok := strings.CutPrefix(name, "chain")
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(level)
	if err != nil || n < 0 {
		return nil
	}
	n = min(n, 8)
	root := 440 * math.Pow(2, float64(2*n)/12)
	c := clip{{pitch: root, length: 70 * time.Millisecond, gain: 0.3}}
	if n > 0 {
		c = append(c,
			note{length: 10 * time.Millisecond},
			note{pitch: root * 1.5, length: 90 * time.Millisecond, gain: 0.3},
		)
	}
	return c
}

// pcm renders c as interleaved stereo little-endian int16 frames. Notes
// are sines with a 2ms attack and an exponential decay, scaled by volume.
func (c clip) pcm(rate int, volume float64) []byte {
	total := 0
	for _, n := range c {
		total += n.frames(rate)
	}
	out := make([]byte, 0, total*frameBytes)
	attack := max(rate/500, 1)
	for _, n := range c {
		for i := range n.frames(rate) {
			var v float64
			if n.pitch > 0 {
				t := float64(i) / float64(rate)
				env := math.Exp(-decayRate * t)
				if i < attack {
					env *= float64(i) / float64(attack)
				}
				v = math.Sin(2*math.Pi*n.pitch*t) * n.gain * volume * env
			}
			sample := uint16(int16(v * math.MaxInt16))
			out = binary.LittleEndian.AppendUint16(out, sample)
			out = binary.LittleEndian.AppendUint16(out, sample)
		}
	}
	return out
}
