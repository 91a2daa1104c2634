package engine

import (
	"fmt"
	"slices"
	"strings"
)

// Group is a connected cluster of same-color pieces. Once emptied it is
// retired and must never be reused.
type Group struct {
	id      int
	color   Color
	beans   []*Piece
	retired bool
}

// NewGroup creates a group from one or more pieces of the same color.
func NewGroup(id int, beans ...*Piece) *Group {
	if len(beans) == 0 {
		panic(invariant("NewGroup", "empty group #%d", id))
	}
	g := &Group{id: id, color: beans[0].Color}
	for _, b := range beans {
		if b.Color != g.color {
			panic(invariant("NewGroup", "%s does not match %s", b, g))
		}
		g.AddBean(b)
	}
	return g
}

func (g *Group) ID() int       { return g.id }
func (g *Group) Color() Color  { return g.color }
func (g *Group) Retired() bool { return g.retired }

// Len returns the member count after checking back-references.
func (g *Group) Len() int {
	g.CheckConsistency()
	return len(g.beans)
}

func (g *Group) Contains(p *Piece) bool {
	return slices.Contains(g.beans, p)
}

// AddBean moves p into g, detaching it from its previous group first.
func (g *Group) AddBean(p *Piece) {
	if g.retired {
		panic(invariant("AddBean", "reusing retired %s", g))
	}
	if p.Color != g.color {
		panic(invariant("AddBean", "%s does not match %s", p, g))
	}
	if p.group != nil && p.group != g {
		p.group.RemoveBean(p)
	}
	if !g.Contains(p) {
		g.beans = append(g.beans, p)
	}
	p.group = g
	g.CheckConsistency()
	g.UpdateBonds()
}

// RemoveBean detaches p and clears its bonds. The group retires when its
// last member leaves.
func (g *Group) RemoveBean(p *Piece) {
	g.CheckConsistency()
	i := slices.Index(g.beans, p)
	if i < 0 {
		panic(invariant("RemoveBean", "%s not in %s", p, g))
	}
	g.beans = slices.Delete(g.beans, i, i+1)
	p.group = nil
	p.Bonds = BondNone
	if len(g.beans) == 0 {
		g.retired = true
		return
	}
	g.UpdateBonds()
}

// ForEachBean calls fn on a copy of the member list, so fn may remove
// members.
func (g *Group) ForEachBean(fn func(p *Piece)) {
	for _, p := range g.Beans() {
		fn(p)
	}
}

// Beans returns a copy of the member list.
func (g *Group) Beans() []*Piece {
	return slices.Clone(g.beans)
}

// UpdateBonds recomputes every member's bond mask from scratch.
func (g *Group) UpdateBonds() {
	for _, p := range g.beans {
		p.Bonds = BondNone
	}
	for i, a := range g.beans {
		for _, b := range g.beans[i+1:] {
			switch {
			case a.Col == b.Col && a.Row-b.Row == 1:
				a.Bonds |= BondUp
				b.Bonds |= BondDown
			case a.Col == b.Col && a.Row-b.Row == -1:
				a.Bonds |= BondDown
				b.Bonds |= BondUp
			case a.Row == b.Row && a.Col-b.Col == 1:
				a.Bonds |= BondLeft
				b.Bonds |= BondRight
			case a.Row == b.Row && a.Col-b.Col == -1:
				a.Bonds |= BondRight
				b.Bonds |= BondLeft
			}
		}
	}
}

// CheckConsistency panics when a member does not point back to g.
func (g *Group) CheckConsistency() {
	for _, p := range g.beans {
		if p.group != g {
			panic(invariant("CheckConsistency", "inconsistent %s: %s belongs elsewhere", g, p))
		}
	}
}

func (g *Group) String() string {
	s := fmt.Sprintf("Group{#%d %s [%d]}", g.id, g.color, len(g.beans))
	if len(g.beans) == 0 {
		return s
	}
	ids := make([]string, len(g.beans))
	for i, p := range g.beans {
		ids[i] = fmt.Sprintf("#%d", p.ID)
	}
	return s + " [ " + strings.Join(ids, ", ") + " ]"
}
