package physics

import (
	"math"

	"github.com/automoto/blaster-mp/shared/gamemath"
)

// Hit is the first blocking intersection found by a trace.
type Hit struct {
	Body     *Body
	Point    gamemath.Vec3
	Distance float64
}

// LineTrace returns the nearest enabled body carrying one of tags that the
// segment start-end passes through. Bodies in ignore are skipped.
func (w *World) LineTrace(start, end gamemath.Vec3, ignore []*Body, tags ...string) (Hit, bool) {
	dir := end.Sub(start)
	length := dir.Len()
	if length == 0 || len(tags) == 0 {
		return Hit{}, false
	}

	// Only the part of the segment over the arena can touch anything.
	t0, t1, ok := clipToRect(start, dir, 0, 0, w.width, w.height)
	if !ok {
		return Hit{}, false
	}

	found := make(map[*Body]struct{})
	span := (t1 - t0) * dir.Len2D()
	steps := int(math.Ceil(span/(w.cellSize/2))) + 1
	for i := 0; i <= steps; i++ {
		t := t0 + (t1-t0)*float64(i)/float64(steps)
		p := start.Add(dir.Scale(t))
		w.candidates(p.X, p.Y, found, tags)
	}

	best := Hit{}
	bestT := math.Inf(1)
	for b := range found {
		if contains(ignore, b) {
			continue
		}
		t, hit := segmentAABB(start, dir, b.min(), b.max())
		if hit && t < bestT {
			bestT = t
			best = Hit{Body: b, Point: start.Add(dir.Scale(t)), Distance: t * length}
		}
	}
	if best.Body == nil {
		return Hit{}, false
	}
	return best, true
}

func contains(list []*Body, b *Body) bool {
	for _, x := range list {
		if x == b {
			return true
		}
	}
	return false
}

// segmentAABB is the slab test for start + dir*t, t in [0, 1]. It returns
// the entry parameter, or 0 when start is already inside the box.
func segmentAABB(start, dir, lo, hi gamemath.Vec3) (float64, bool) {
	tmin, tmax := 0.0, 1.0
	axes := [3][4]float64{
		{start.X, dir.X, lo.X, hi.X},
		{start.Y, dir.Y, lo.Y, hi.Y},
		{start.Z, dir.Z, lo.Z, hi.Z},
	}
	for _, a := range axes {
		o, d, l, h := a[0], a[1], a[2], a[3]
		if math.Abs(d) < 1e-12 {
			if o < l || o > h {
				return 0, false
			}
			continue
		}
		t1 := (l - o) / d
		t2 := (h - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

// clipToRect returns the parameter range of start + dir*t, t in [0, 1], whose
// XY projection lies inside the rectangle.
func clipToRect(start, dir gamemath.Vec3, x0, y0, x1, y1 float64) (float64, float64, bool) {
	flat := gamemath.Vec3{X: dir.X, Y: dir.Y}
	lo := gamemath.Vec3{X: x0, Y: y0, Z: math.Inf(-1)}
	hi := gamemath.Vec3{X: x1, Y: y1, Z: math.Inf(1)}
	tmin, ok := segmentAABB(gamemath.Vec3{X: start.X, Y: start.Y}, flat, lo, hi)
	if !ok {
		return 0, 0, false
	}
	// Exit parameter: run the slab test backwards from the far end.
	end := gamemath.Vec3{X: start.X + dir.X, Y: start.Y + dir.Y}
	back, ok := segmentAABB(end, flat.Scale(-1), lo, hi)
	if !ok {
		return 0, 0, false
	}
	return tmin, 1 - back, true
}
