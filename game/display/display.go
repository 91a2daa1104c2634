// Package display tracks the pieces a presentation surface has to draw
// and turns them into sprite lists.
package display

import (
	"slices"

	"github.com/kamstrup/intmap"

	"github.com/wricardo/meanbean/game/engine"
)

// Sprite sheet columns that are not bond masks.
const (
	ColumnLeading = 18
	ColumnPopping = 20
)

// Sprite is one piece ready to draw. Row is the color's palette index;
// Column selects the bond or state variant.
type Sprite struct {
	ID     int                `json:"id"`
	Color  engine.Color       `json:"color"`
	X      float64            `json:"x"`
	Y      float64            `json:"y"`
	Row    int                `json:"row"`
	Column int                `json:"column"`
	Visual engine.VisualState `json:"visual"`
}

// Registry is the set of registered pieces, in registration order.
type Registry struct {
	index    *intmap.Map[int, *engine.Piece]
	order    []int
	canPaint bool
}

func NewRegistry() *Registry {
	return &Registry{
		index:    intmap.New[int, *engine.Piece](64),
		canPaint: true,
	}
}

// RegisterBean adds p; registering twice keeps the first position.
func (r *Registry) RegisterBean(p *engine.Piece) {
	if _, ok := r.index.Get(p.ID); ok {
		r.index.Put(p.ID, p)
		return
	}
	r.index.Put(p.ID, p)
	r.order = append(r.order, p.ID)
}

// UnregisterBean panics when p was never registered.
func (r *Registry) UnregisterBean(p *engine.Piece) {
	if _, ok := r.index.Get(p.ID); !ok {
		panic(&engine.InvariantError{Op: "UnregisterBean", Msg: "unknown " + p.String()})
	}
	r.index.Del(p.ID)
	if i := slices.Index(r.order, p.ID); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
}

func (r *Registry) Contains(p *engine.Piece) bool {
	_, ok := r.index.Get(p.ID)
	return ok
}

func (r *Registry) Len() int { return r.index.Len() }

// Stop disables painting; Frame returns nothing afterwards.
func (r *Registry) Stop() { r.canPaint = false }

func (r *Registry) CanPaint() bool { return r.canPaint }

// Frame returns the sprites to draw, skipping invisible pieces.
func (r *Registry) Frame() []Sprite {
	if !r.canPaint {
		return nil
	}
	sprites := make([]Sprite, 0, len(r.order))
	for _, id := range r.order {
		p, _ := r.index.Get(id)
		if p.Visual == engine.VisualInvisible {
			continue
		}
		sprites = append(sprites, Sprite{
			ID:     p.ID,
			Color:  p.Color,
			X:      p.DisplayX,
			Y:      p.DisplayY,
			Row:    p.Color.Index(),
			Column: SpriteColumn(p),
			Visual: p.Visual,
		})
	}
	return sprites
}

// SpriteColumn maps a visible piece to its sprite sheet column. It panics
// on an invisible or unknown visual state.
func SpriteColumn(p *engine.Piece) int {
	switch p.Visual {
	case engine.VisualStatic, engine.VisualFlashing:
		return int(p.Bonds)
	case engine.VisualLeading:
		return ColumnLeading
	case engine.VisualPopping:
		return ColumnPopping
	case engine.VisualInvisible:
		panic(&engine.InvariantError{Op: "SpriteColumn", Msg: "invisible " + p.String()})
	}
	panic(&engine.InvariantError{Op: "SpriteColumn", Msg: "unhandled " + p.Visual.String()})
}
