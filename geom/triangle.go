// Package geom holds the small, shape-agnostic triangle routines that
// gjk2, epa2 and narrowphase all need: the closest point on a triangle to
// a query point, and that point's barycentric weights. These are the
// "geometry utility routines" the collision core treats as external
// collaborators - kept in their own package so they stay swappable without
// touching the simplex or polyhedron code that calls them.
//
// The region tests below follow the same Voronoi-region structure used for
// 2D polygon distance queries (see go-collide's Simplex.evolveTriangle),
// generalized to a triangle embedded in 3D.
package geom

import "github.com/go-gl/mathgl/mgl64"

// ClosestPointOnTriangle returns the point on triangle abc (inclusive of
// its interior and boundary) nearest to p.
func ClosestPointOnTriangle(p, a, b, c mgl64.Vec3) mgl64.Vec3 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a // Vertex region A
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b // Vertex region B
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Mul(v)) // Edge region AB
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c // Vertex region C
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Mul(w)) // Edge region AC
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Mul(w)) // Edge region BC
	}

	// Face region: barycentric interpolation of a, b, c.
	denom := 1.0 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return a.Add(ab.Mul(v)).Add(ac.Mul(w))
}

// BarycentricCoordinates returns the weights (u, v, w) such that
// p == u*a + v*b + w*c and u+v+w == 1, for p known to lie in the plane of
// triangle abc (typically a point already produced by
// ClosestPointOnTriangle). Components are NaN if abc is degenerate
// (zero area) - callers must check before trusting the result.
func BarycentricCoordinates(p, a, b, c mgl64.Vec3) (u, v, w float64) {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	d00 := ab.Dot(ab)
	d01 := ab.Dot(ac)
	d11 := ac.Dot(ac)
	d20 := ap.Dot(ab)
	d21 := ap.Dot(ac)

	denom := d00*d11 - d01*d01
	v = (d11*d20 - d01*d21) / denom
	w = (d00*d21 - d01*d20) / denom
	u = 1 - v - w
	return u, v, w
}
