package physics

import (
	"math"
	"testing"

	"github.com/automoto/blaster-mp/shared/gamemath"
)

func newTestWorld() *World {
	return NewWorld(4096, 4096, 64)
}

func TestLineTraceHitsNearestBody(t *testing.T) {
	w := newTestWorld()
	near := w.AddBox(1, gamemath.V(1000, 500, 90), 40, 90, TagCombatant)
	w.AddBox(2, gamemath.V(2000, 500, 90), 40, 90, TagCombatant)

	hit, ok := w.LineTrace(gamemath.V(100, 500, 90), gamemath.V(3000, 500, 90), nil, TagCombatant)
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.Body != near {
		t.Fatalf("hit entity %d, want the nearer body", hit.Body.Entity)
	}
	if math.Abs(hit.Point.X-960) > 1e-6 {
		t.Errorf("impact X = %v, want 960", hit.Point.X)
	}
	if math.Abs(hit.Distance-860) > 1e-6 {
		t.Errorf("distance = %v, want 860", hit.Distance)
	}
}

func TestLineTraceIgnoresListedAndDisabledBodies(t *testing.T) {
	w := newTestWorld()
	self := w.AddBox(1, gamemath.V(500, 500, 90), 40, 90, TagCombatant)
	disabled := w.AddBox(2, gamemath.V(800, 500, 90), 40, 90, TagCombatant)
	disabled.SetEnabled(false)
	target := w.AddBox(3, gamemath.V(1100, 500, 90), 40, 90, TagCombatant)

	hit, ok := w.LineTrace(gamemath.V(500, 500, 90), gamemath.V(2000, 500, 90), []*Body{self}, TagCombatant)
	if !ok || hit.Body != target {
		t.Fatalf("hit = %+v, %v; want body 3", hit, ok)
	}
}

func TestLineTracePassesOverShortWall(t *testing.T) {
	w := newTestWorld()
	w.AddSolid(900, 400, 100, 200, 50)

	if _, ok := w.LineTrace(gamemath.V(100, 500, 150), gamemath.V(3000, 500, 150), nil, TagSolid); ok {
		t.Fatal("trace above the wall should not hit")
	}
	if _, ok := w.LineTrace(gamemath.V(100, 500, 20), gamemath.V(3000, 500, 20), nil, TagSolid); !ok {
		t.Fatal("trace through the wall should hit")
	}
}

func TestLineTraceFromOutsideArena(t *testing.T) {
	w := newTestWorld()
	target := w.AddBox(7, gamemath.V(100, 100, 90), 40, 90, TagCombatant)

	end := gamemath.V(100, 100, 90).Add(gamemath.V(1, 1, 0).Normalize().Scale(80000))
	start := gamemath.V(-500, -500, 90)
	hit, ok := w.LineTrace(start, end, nil, TagCombatant)
	if !ok || hit.Body != target {
		t.Fatalf("hit = %+v, %v; want body 7", hit, ok)
	}
}

func TestLineTraceMissesOtherChannels(t *testing.T) {
	w := newTestWorld()
	w.AddBox(1, gamemath.V(1000, 500, 90), 40, 90, TagCombatant)
	if _, ok := w.LineTrace(gamemath.V(100, 500, 90), gamemath.V(3000, 500, 90), nil, TagSolid); ok {
		t.Fatal("solid-only trace hit a combatant")
	}
}

func TestUpdateOverlapsBeginAndEnd(t *testing.T) {
	w := newTestWorld()
	sphere := w.AddSphere(10, gamemath.V(1000, 1000, 30), 150, TagPickup)
	c := w.AddBox(1, gamemath.V(1500, 1000, 90), 40, 90, TagCombatant)
	sensors := []*Body{sphere}

	begin, end := w.UpdateOverlaps(sensors, TagCombatant)
	if len(begin) != 0 || len(end) != 0 {
		t.Fatalf("far apart: begin=%d end=%d", len(begin), len(end))
	}

	w.Move(c, gamemath.V(1100, 1000, 90))
	begin, _ = w.UpdateOverlaps(sensors, TagCombatant)
	if len(begin) != 1 || begin[0].Other != c {
		t.Fatalf("begin = %+v, want combatant overlap", begin)
	}
	if !w.Overlapping(sphere, c) {
		t.Fatal("Overlapping should report the pair")
	}

	// No repeat event while the overlap persists
	begin, end = w.UpdateOverlaps(sensors, TagCombatant)
	if len(begin) != 0 || len(end) != 0 {
		t.Fatalf("steady state: begin=%d end=%d", len(begin), len(end))
	}

	sphere.SetEnabled(false)
	_, end = w.UpdateOverlaps(sensors, TagCombatant)
	if len(end) != 1 || end[0].Other != c {
		t.Fatalf("disabling the sensor should end the overlap, got %+v", end)
	}
}

func TestSphereUsesTrueRadius(t *testing.T) {
	w := newTestWorld()
	sphere := w.AddSphere(10, gamemath.V(1000, 1000, 0), 100, TagPickup)
	// Inside the bounding square but outside the sphere, diagonally.
	w.AddBox(1, gamemath.V(1000+95+5, 1000+95+5, 0), 5, 5, TagCombatant)

	begin, _ := w.UpdateOverlaps([]*Body{sphere}, TagCombatant)
	if len(begin) != 0 {
		t.Fatalf("corner body should not overlap the sphere, got %+v", begin)
	}
}

func TestRemoveForgetsOverlaps(t *testing.T) {
	w := newTestWorld()
	sphere := w.AddSphere(10, gamemath.V(1000, 1000, 30), 150, TagPickup)
	c := w.AddBox(1, gamemath.V(1000, 1000, 90), 40, 90, TagCombatant)
	w.UpdateOverlaps([]*Body{sphere}, TagCombatant)

	w.Remove(c)
	if w.Overlapping(sphere, c) {
		t.Fatal("removed body still overlapping")
	}
	if _, ok := w.LineTrace(gamemath.V(500, 1000, 90), gamemath.V(1500, 1000, 90), nil, TagCombatant); ok {
		t.Fatal("removed body still traceable")
	}
}
