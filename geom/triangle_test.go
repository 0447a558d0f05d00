package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestClosestPointOnTriangle(t *testing.T) {
	a := mgl64.Vec3{0, 0, 0}
	b := mgl64.Vec3{1, 0, 0}
	c := mgl64.Vec3{0, 1, 0}

	tests := []struct {
		name string
		p    mgl64.Vec3
		want mgl64.Vec3
	}{
		{"interior point projects onto itself", mgl64.Vec3{0.25, 0.25, 0}, mgl64.Vec3{0.25, 0.25, 0}},
		{"above the face projects straight down", mgl64.Vec3{0.25, 0.25, 5}, mgl64.Vec3{0.25, 0.25, 0}},
		{"beyond vertex A snaps to A", mgl64.Vec3{-1, -1, 0}, a},
		{"beyond vertex B snaps to B", mgl64.Vec3{2, -1, 0}, b},
		{"beyond vertex C snaps to C", mgl64.Vec3{-1, 2, 0}, c},
		{"beyond edge AB snaps onto AB", mgl64.Vec3{0.5, -1, 0}, mgl64.Vec3{0.5, 0, 0}},
		{"beyond edge AC snaps onto AC", mgl64.Vec3{-1, 0.5, 0}, mgl64.Vec3{0, 0.5, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClosestPointOnTriangle(tt.p, a, b, c)
			if got.Sub(tt.want).LenSqr() > 1e-9 {
				t.Errorf("ClosestPointOnTriangle(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestBarycentricCoordinates_SumsToOne(t *testing.T) {
	a := mgl64.Vec3{0, 0, 0}
	b := mgl64.Vec3{2, 0, 0}
	c := mgl64.Vec3{0, 2, 0}
	p := mgl64.Vec3{0.5, 0.5, 0}

	u, v, w := BarycentricCoordinates(p, a, b, c)
	if sum := u + v + w; math.Abs(sum-1) > 1e-9 {
		t.Errorf("u+v+w = %v, want 1", sum)
	}

	reconstructed := a.Mul(u).Add(b.Mul(v)).Add(c.Mul(w))
	if reconstructed.Sub(p).LenSqr() > 1e-9 {
		t.Errorf("reconstructed point %v != p %v", reconstructed, p)
	}
}

func TestBarycentricCoordinates_DegenerateTriangleIsNaN(t *testing.T) {
	a := mgl64.Vec3{0, 0, 0}
	b := mgl64.Vec3{1, 0, 0}
	c := mgl64.Vec3{2, 0, 0} // collinear with a, b: zero area

	u, v, w := BarycentricCoordinates(mgl64.Vec3{0.5, 0, 0}, a, b, c)
	if !math.IsNaN(u) && !math.IsNaN(v) && !math.IsNaN(w) {
		t.Errorf("expected at least one NaN weight for a degenerate triangle, got u=%v v=%v w=%v", u, v, w)
	}
}
