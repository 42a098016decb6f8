// Package physics is the collision query surface of the simulation. Bodies
// are boxes standing on the ground plane; resolv's spatial hash handles the
// XY broadphase and the narrowphase adds the vertical extent.
package physics

import (
	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/solarlune/resolv"
)

// Resolv tags for collision channels
const (
	TagSolid     = "solid"
	TagCombatant = "combatant"
	TagPickup    = "pickup"
	TagWeapon    = "weapon"
	TagProbe     = "probe"
)

// Body is one collision volume. Its resolv object covers the XY footprint;
// Bottom and Top bound it vertically.
type Body struct {
	Entity  netconfig.EntityID
	Object  *resolv.Object
	Bottom  float64
	Top     float64
	Radius  float64 // pickup spheres only
	enabled bool
	world   *World
}

// Enabled reports whether the body answers queries.
func (b *Body) Enabled() bool {
	return b.enabled
}

// SetEnabled switches query collision for the body on or off.
func (b *Body) SetEnabled(on bool) {
	b.enabled = on
}

// Center is the middle of the body's volume.
func (b *Body) Center() gamemath.Vec3 {
	return gamemath.Vec3{
		X: b.Object.X + b.Object.W/2,
		Y: b.Object.Y + b.Object.H/2,
		Z: (b.Bottom + b.Top) / 2,
	}
}

// HasTag reports whether the body was created with tag.
func (b *Body) HasTag(tag string) bool {
	return b.Object.HasTags(tag)
}

func (b *Body) min() gamemath.Vec3 {
	return gamemath.Vec3{X: b.Object.X, Y: b.Object.Y, Z: b.Bottom}
}

func (b *Body) max() gamemath.Vec3 {
	return gamemath.Vec3{X: b.Object.X + b.Object.W, Y: b.Object.Y + b.Object.H, Z: b.Top}
}

// World wraps a resolv.Space sized to the arena.
type World struct {
	space    *resolv.Space
	cellSize float64
	width    float64
	height   float64
	probe    *resolv.Object
	overlaps map[overlapKey]*Overlap
}

// NewWorld creates an empty world of width x height units hashed into square
// cells of cellSize.
func NewWorld(width, height, cellSize int) *World {
	w := &World{
		space:    resolv.NewSpace(width, height, cellSize, cellSize),
		cellSize: float64(cellSize),
		width:    float64(width),
		height:   float64(height),
		overlaps: make(map[overlapKey]*Overlap),
	}
	c := float64(cellSize)
	w.probe = resolv.NewObject(0, 0, c, c, TagProbe)
	w.space.Add(w.probe)
	return w
}

// Size returns the arena footprint.
func (w *World) Size() (width, height float64) {
	return w.width, w.height
}

// AddSolid adds static level geometry.
func (w *World) AddSolid(x, y, width, depth, height float64) *Body {
	obj := resolv.NewObject(x, y, width, depth, TagSolid)
	b := &Body{Object: obj, Bottom: 0, Top: height, enabled: true, world: w}
	obj.Data = b
	w.space.Add(obj)
	return b
}

// AddBox adds a dynamic box centered on center with the given horizontal half
// extent and vertical half height.
func (w *World) AddBox(id netconfig.EntityID, center gamemath.Vec3, halfExtent, halfHeight float64, tags ...string) *Body {
	obj := resolv.NewObject(center.X-halfExtent, center.Y-halfExtent, halfExtent*2, halfExtent*2, tags...)
	b := &Body{
		Entity:  id,
		Object:  obj,
		Bottom:  center.Z - halfHeight,
		Top:     center.Z + halfHeight,
		enabled: true,
		world:   w,
	}
	obj.Data = b
	w.space.Add(obj)
	return b
}

// AddSphere adds a pickup sphere. Its resolv footprint is the sphere's
// bounding square; overlap tests use the true radius.
func (w *World) AddSphere(id netconfig.EntityID, center gamemath.Vec3, radius float64, tags ...string) *Body {
	b := w.AddBox(id, center, radius, radius, tags...)
	b.Radius = radius
	return b
}

// Move recenters a body.
func (w *World) Move(b *Body, center gamemath.Vec3) {
	half := (b.Top - b.Bottom) / 2
	b.Object.X = center.X - b.Object.W/2
	b.Object.Y = center.Y - b.Object.H/2
	b.Bottom = center.Z - half
	b.Top = center.Z + half
	b.Object.Update()
}

// Remove takes a body out of the world and forgets its overlaps.
func (w *World) Remove(b *Body) {
	if b == nil {
		return
	}
	w.space.Remove(b.Object)
	for k := range w.overlaps {
		if k.sensor == b || k.other == b {
			delete(w.overlaps, k)
		}
	}
}

// candidates gathers enabled bodies carrying any of tags whose cells touch
// the square of cellSize centered on (x, y).
func (w *World) candidates(x, y float64, into map[*Body]struct{}, tags []string) {
	w.probe.X = x - w.cellSize/2
	w.probe.Y = y - w.cellSize/2
	w.probe.Update()
	check := w.probe.Check(0, 0, tags...)
	if check == nil {
		return
	}
	for _, obj := range check.Objects {
		b, ok := obj.Data.(*Body)
		if !ok || !b.enabled {
			continue
		}
		into[b] = struct{}{}
	}
}
