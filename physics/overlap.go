package physics

import (
	"sort"

	"github.com/automoto/blaster-mp/shared/gamemath"
)

// Overlap is a sensor/body pair that currently intersects.
type Overlap struct {
	Sensor *Body
	Other  *Body
}

type overlapKey struct {
	sensor *Body
	other  *Body
}

// UpdateOverlaps recomputes which enabled sensors tagged sensorTag intersect
// bodies tagged otherTag and returns the pairs that started and stopped
// overlapping since the previous call. A sensor or body that was disabled
// ends its overlaps.
func (w *World) UpdateOverlaps(sensors []*Body, otherTag string) (begin, end []Overlap) {
	current := make(map[overlapKey]*Overlap)
	for _, s := range sensors {
		if !s.enabled {
			continue
		}
		found := make(map[*Body]struct{})
		c := s.Center()
		w.probe.X = s.Object.X
		w.probe.Y = s.Object.Y
		w.probe.W = s.Object.W
		w.probe.H = s.Object.H
		w.probe.Update()
		if check := w.probe.Check(0, 0, otherTag); check != nil {
			for _, obj := range check.Objects {
				if b, ok := obj.Data.(*Body); ok && b.enabled && b != s {
					found[b] = struct{}{}
				}
			}
		}
		w.probe.W = w.cellSize
		w.probe.H = w.cellSize

		for b := range found {
			if !sphereAABB(c, s.Radius, b.min(), b.max()) {
				continue
			}
			k := overlapKey{sensor: s, other: b}
			current[k] = &Overlap{Sensor: s, Other: b}
		}
	}

	for k, o := range current {
		if _, ok := w.overlaps[k]; !ok {
			begin = append(begin, *o)
		}
	}
	for k, o := range w.overlaps {
		if _, ok := current[k]; !ok {
			end = append(end, *o)
		}
	}
	w.overlaps = current

	sortOverlaps(begin)
	sortOverlaps(end)
	return begin, end
}

// Overlapping reports whether sensor and other overlapped at the last update.
func (w *World) Overlapping(sensor, other *Body) bool {
	_, ok := w.overlaps[overlapKey{sensor: sensor, other: other}]
	return ok
}

// Touching tests sensor against other right now, without waiting for the
// next UpdateOverlaps.
func (w *World) Touching(sensor, other *Body) bool {
	if sensor == nil || other == nil || !sensor.enabled || !other.enabled {
		return false
	}
	return sphereAABB(sensor.Center(), sensor.Radius, other.min(), other.max())
}

func sphereAABB(c gamemath.Vec3, r float64, lo, hi gamemath.Vec3) bool {
	nearest := gamemath.Vec3{
		X: gamemath.Clamp(c.X, lo.X, hi.X),
		Y: gamemath.Clamp(c.Y, lo.Y, hi.Y),
		Z: gamemath.Clamp(c.Z, lo.Z, hi.Z),
	}
	d := c.Sub(nearest)
	return d.Dot(d) <= r*r
}

// Map iteration order is random; events are ordered by entity IDs so every
// run of the same inputs produces the same callbacks.
func sortOverlaps(list []Overlap) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Sensor.Entity != list[j].Sensor.Entity {
			return list[i].Sensor.Entity < list[j].Sensor.Entity
		}
		return list[i].Other.Entity < list[j].Other.Entity
	})
}
