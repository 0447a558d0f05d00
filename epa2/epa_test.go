package epa2

import (
	"testing"

	"github.com/akmonengine/feather/gjk2"
	"github.com/go-gl/mathgl/mgl64"
)

// sphereBody mirrors gjk2's own test double: a minimal Body so these tests
// don't need the actor package's full rigid-body machinery.
type sphereBody struct {
	center mgl64.Vec3
	radius float64
}

func (s sphereBody) SupportWorld(direction mgl64.Vec3) mgl64.Vec3 {
	n := direction
	if n.LenSqr() > gjk2.Epsilon {
		n = n.Normalize()
	}
	return s.center.Add(n.Mul(s.radius))
}

// buildTetrahedron drives a fresh simplex between a and b until GJK reports
// RunEPA, returning the closed simplex. Callers own the returned simplex's
// points until they pass it to Run or call Free themselves.
func buildTetrahedron(t *testing.T, a, b sphereBody) *gjk2.Simplex {
	t.Helper()
	s := gjk2.NewSimplex(a, b, a.center, b.center)
	for {
		result, _ := s.AddPoint()
		switch result {
		case gjk2.Continue:
			continue
		case gjk2.RunEPA:
			return s
		default:
			t.Fatalf("expected RunEPA, got %v", result)
		}
	}
}

func TestNewPolyhedron_RejectsIncompleteSimplex(t *testing.T) {
	s := &gjk2.Simplex{Count: 3}
	if _, err := NewPolyhedron(s); err == nil {
		t.Error("expected error for a 3-point simplex, got nil")
	}
}

func TestNewPolyhedron_FourActiveFaces(t *testing.T) {
	a := sphereBody{center: mgl64.Vec3{0, 0, 0}, radius: 1.0}
	b := sphereBody{center: mgl64.Vec3{1.0, 0, 0}, radius: 1.0}
	s := buildTetrahedron(t, a, b)

	// NewPolyhedron threads s's 4 support points into poly.Faces[...].Vertices;
	// ownership transfers there, so poly.Free() below is the only call that
	// returns them - s.Free() would double-Put the same pointers.
	poly, err := NewPolyhedron(s)
	if err != nil {
		t.Fatalf("NewPolyhedron failed: %v", err)
	}
	if len(poly.Faces) != 4 {
		t.Fatalf("got %d faces, want 4", len(poly.Faces))
	}
	for i, f := range poly.Faces {
		if !f.Active {
			t.Errorf("face %d not active on a fresh polyhedron", i)
		}
		for slot, n := range f.Neighbors {
			if n < 0 || n >= len(poly.Faces) {
				t.Errorf("face %d slot %d neighbor %d out of range", i, slot, n)
			}
		}
	}
	poly.Free()
}

func TestPolyhedron_FindFaceClosestToOrigin(t *testing.T) {
	a := sphereBody{center: mgl64.Vec3{0, 0, 0}, radius: 1.0}
	b := sphereBody{center: mgl64.Vec3{1.0, 0, 0}, radius: 1.0}
	s := buildTetrahedron(t, a, b)

	// Same ownership transfer as above: only poly.Free() frees these points.
	poly, err := NewPolyhedron(s)
	if err != nil {
		t.Fatalf("NewPolyhedron failed: %v", err)
	}
	defer poly.Free()

	if err := poly.FindFaceClosestToOrigin(); err != nil {
		t.Fatalf("FindFaceClosestToOrigin failed: %v", err)
	}
	if poly.ClosestFace < 0 || poly.ClosestFace >= len(poly.Faces) {
		t.Errorf("ClosestFace=%d out of range", poly.ClosestFace)
	}
	if poly.ClosestDistance < 0 {
		t.Errorf("ClosestDistance=%v, want >= 0", poly.ClosestDistance)
	}
}

func TestRun_OverlappingSpheres(t *testing.T) {
	a := sphereBody{center: mgl64.Vec3{0, 0, 0}, radius: 1.0}
	b := sphereBody{center: mgl64.Vec3{1.0, 0, 0}, radius: 1.0}
	s := buildTetrahedron(t, a, b)

	// Run threads s's support points into poly the same way NewPolyhedron
	// does; only poly.Free() below returns them.
	poly, hit, ok := Run(a, b, s)
	if !ok {
		t.Fatal("Run reported no hit for clearly overlapping spheres")
	}
	defer poly.Free()

	if hit.Face == nil {
		t.Fatal("Hit.Face is nil")
	}
	// Two unit spheres one unit apart overlap by exactly 1 along X; the
	// recovered penetration distance (origin to closest face) should be
	// close to that, within EPA's convergence tolerance.
	got := hit.ClosestPoint.Len()
	want := 1.0
	if diff := got - want; diff > 0.05 || diff < -0.05 {
		t.Errorf("ClosestPoint.Len()=%v, want ~%v", got, want)
	}
}

func TestRun_BoxesOverlap(t *testing.T) {
	// Two axis-aligned "boxes" modeled as spheres of a larger radius so the
	// helper types stay small; what matters here is that Run converges and
	// returns an active face regardless of shape.
	a := sphereBody{center: mgl64.Vec3{0, 0, 0}, radius: 1.5}
	b := sphereBody{center: mgl64.Vec3{2.0, 0, 0}, radius: 1.5}
	s := buildTetrahedron(t, a, b)

	poly, hit, ok := Run(a, b, s)
	if !ok {
		t.Fatal("Run reported no hit for overlapping shapes")
	}
	defer poly.Free()

	if !hit.Face.Active {
		t.Error("returned Hit.Face is not Active")
	}
}
