package gjk2

import (
	"math"

	"github.com/akmonengine/feather/geom"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// MaxIterations bounds GJK's simplex construction. Hitting it is
	// treated as a conservative miss (NoOverlap), never as a crash. epa2
	// bounds its polytope expansion with its own constant of equal value.
	MaxIterations = 20

	// Margin is the shallow-contact skin: a CSO sample that falls just
	// short of the origin, within this distance, is still reported as a
	// touching contact rather than a miss. narrowphase also adds it to
	// the EPA-path penetration depth (|closest point| + Margin).
	Margin = 0.03

	// Epsilon is this module's "effectively zero" threshold, used for
	// degenerate-triangle tests and the tetrahedron face-selection gate.
	Epsilon = 1e-10
)

// Result is the outcome of one Simplex.AddPoint call.
type Result int

const (
	// Continue means the simplex was refined; call AddPoint again.
	Continue Result = iota
	// NoOverlap means the CSO does not contain the origin - no contact.
	NoOverlap
	// RunEPA means the simplex closed into a tetrahedron containing the
	// origin; hand it to epa2 to extract the contact manifold.
	RunEPA
	// ShallowContact means the margin test fired; Hit is populated.
	ShallowContact
)

// ShallowHit carries everything narrowphase needs to assemble a contact
// when AddPoint reports ShallowContact: the closest point found on the
// candidate triangle, and that triangle's three witnesses.
type ShallowHit struct {
	ClosestPoint mgl64.Vec3
	A, B, C      *SupportPoint
}

// Simplex is GJK's working set: 1-4 points sampled from the CSO of bodies
// A and B, plus the search direction for the next sample.
//
// Points[Count-1] always holds the most recently added point - every
// arity-specific step below reads backward from there, matching the
// "a is most recent" convention the algorithm is defined in terms of.
type Simplex struct {
	BodyA, BodyB Body

	Points [4]*SupportPoint
	Count  int

	NextDirection mgl64.Vec3
	Iterations    int
}

// NewSimplex prepares a simplex for a fresh query between a and b. The
// initial direction points from A toward B; if the bodies are exactly
// coincident, any nonzero direction is acceptable, so we fall back to +X
// rather than hang on a zero search direction.
func NewSimplex(a, b Body, positionA, positionB mgl64.Vec3) *Simplex {
	s := &Simplex{BodyA: a, BodyB: b}
	s.Reset(positionA, positionB)
	return s
}

// Reset rewinds s for reuse with a fresh pair of body positions.
func (s *Simplex) Reset(positionA, positionB mgl64.Vec3) {
	s.Count = 0
	s.Iterations = 0
	s.NextDirection = positionB.Sub(positionA)
	if s.NextDirection.LenSqr() < Epsilon {
		s.NextDirection = mgl64.Vec3{1, 0, 0}
	}
}

// Free returns every support point still owned by s to the pool. Callers
// must call this on every exit path once the simplex is no longer needed,
// per the spec's resource discipline.
func (s *Simplex) Free() {
	for i := 0; i < s.Count; i++ {
		if s.Points[i] != nil {
			PutSupportPoint(s.Points[i])
			s.Points[i] = nil
		}
	}
	s.Count = 0
}

// AddPoint performs one GJK iteration: it samples a new CSO point along
// NextDirection, tests whether the origin can still be reached, and - if
// so - reduces the simplex to its closest feature and updates the search
// direction for the next call.
func (s *Simplex) AddPoint() (Result, ShallowHit) {
	s.Iterations++
	if s.Iterations >= MaxIterations {
		return NoOverlap, ShallowHit{}
	}

	sample := GetSupportPoint()
	FindSupport(s.BodyA, s.BodyB, s.NextDirection, sample)
	s.Points[s.Count] = sample
	s.Count++

	if sample.Point.Dot(s.NextDirection) < 0 && s.Count >= 2 {
		if s.Count >= 3 {
			a, b, c := s.Points[0], s.Points[1], s.Points[2]
			q := geom.ClosestPointOnTriangle(mgl64.Vec3{}, a.Point, b.Point, c.Point)
			if q.LenSqr() <= Margin*Margin {
				return ShallowContact, ShallowHit{ClosestPoint: q, A: a, B: b, C: c}
			}
		}
		return NoOverlap, ShallowHit{}
	}

	if s.updateDirection() {
		return RunEPA, ShallowHit{}
	}
	return Continue, ShallowHit{}
}

// updateDirection dispatches to the arity-specific direction update and
// returns true when the simplex has closed into a tetrahedron enclosing
// the origin (meaning EPA should run next).
func (s *Simplex) updateDirection() bool {
	switch s.Count {
	case 1:
		s.direction1()
	case 2:
		s.direction2()
	case 3:
		s.direction3()
	case 4:
		return s.direction4()
	}
	return false
}

// direction1 handles the single-point simplex: the only possible search
// direction is straight back toward the origin.
func (s *Simplex) direction1() {
	a := s.Points[0]
	s.NextDirection = a.Point.Mul(-1)
}

// direction2 handles the two-point (line) simplex {b, a}, a most recent.
func (s *Simplex) direction2() {
	b, a := s.Points[0], s.Points[1]
	ab := b.Point.Sub(a.Point)
	ao := a.Point.Mul(-1)

	if ab.Dot(ao) < 0 {
		// Origin is behind A; drop B.
		PutSupportPoint(b)
		s.Points[0] = a
		s.Count = 1
		s.NextDirection = ao
		return
	}

	dir := ab.Cross(ao).Cross(ab)
	if dir.LenSqr() < Epsilon {
		// ab is parallel to ao: any direction perpendicular to ab works.
		n := ab.Normalize()
		dir = mgl64.Vec3{1 - math.Abs(n.X()), 1 - math.Abs(n.Y()), 1 - math.Abs(n.Z())}
	}
	s.NextDirection = dir
}

// direction3 handles the three-point (triangle) simplex {c, b, a}, a most
// recent, via the eab/eac Voronoi-edge tests from spec.md.
func (s *Simplex) direction3() {
	c, b, a := s.Points[0], s.Points[1], s.Points[2]
	ab := b.Point.Sub(a.Point)
	ac := c.Point.Sub(a.Point)
	ao := a.Point.Mul(-1)
	n := ab.Cross(ac)
	eab := ab.Cross(n)
	eac := n.Cross(ac)

	switch {
	case eac.Dot(ao) >= 0:
		switch {
		case ac.Dot(ao) >= 0:
			PutSupportPoint(b)
			s.Points[0], s.Points[1] = c, a
			s.Count = 2
			s.NextDirection = ac.Cross(ao).Cross(ac)
		case ab.Dot(ao) >= 0:
			PutSupportPoint(c)
			s.Points[0], s.Points[1] = b, a
			s.Count = 2
			s.NextDirection = ab.Cross(ao).Cross(ab)
		default:
			PutSupportPoint(b)
			PutSupportPoint(c)
			s.Points[0] = a
			s.Count = 1
			s.NextDirection = ao
		}
	case eab.Dot(ao) >= 0:
		if ab.Dot(ao) >= 0 {
			PutSupportPoint(c)
			s.Points[0], s.Points[1] = b, a
			s.Count = 2
			s.NextDirection = ab.Cross(ao).Cross(ab)
		} else {
			PutSupportPoint(b)
			PutSupportPoint(c)
			s.Points[0] = a
			s.Count = 1
			s.NextDirection = ao
		}
	default:
		if n.Dot(ao) >= 0 {
			// Origin is above the triangle's front side; reorder to {a,b,c}.
			s.Points[0], s.Points[1], s.Points[2] = a, b, c
			s.NextDirection = n
		} else {
			// Origin is behind the triangle; keep {c,b,a} as-is, the next
			// support sample is appended as the fourth point.
			s.NextDirection = n.Mul(-1)
		}
	}
}

// direction4 handles the four-point (tetrahedron) simplex {d, c, b, a}, a
// most recent. It returns true when the origin is enclosed by all four
// faces, meaning the caller should switch to EPA.
func (s *Simplex) direction4() bool {
	d, c, b, a := s.Points[0], s.Points[1], s.Points[2], s.Points[3]

	type candidateFace struct {
		p0, p1, p2 *SupportPoint
	}
	faces := [4]candidateFace{
		{b, c, d}, // BCD
		{a, c, b}, // ACB
		{c, a, d}, // CAD
		{d, a, b}, // DAB
	}

	bestIdx := -1
	bestDot := Epsilon
	var bestNormal mgl64.Vec3

	for i, f := range faces {
		p0, p1, p2 := f.p0.Point, f.p1.Point, f.p2.Point
		normal := p1.Sub(p0).Cross(p2.Sub(p0))
		if normal.LenSqr() < Epsilon {
			continue // degenerate face, can't be the separating one
		}
		normal = normal.Normalize()
		centroid := p0.Add(p1).Add(p2).Mul(1.0 / 3.0)
		toOrigin := centroid.Mul(-1)
		dot := normal.Dot(toOrigin)
		if dot > bestDot {
			bestDot = dot
			bestIdx = i
			bestNormal = normal
		}
	}

	if bestIdx == -1 {
		// No face was passed by the origin on its outside: the tetrahedron
		// encloses it.
		return true
	}

	f := faces[bestIdx]
	kept := map[*SupportPoint]bool{f.p0: true, f.p1: true, f.p2: true}
	for _, p := range [4]*SupportPoint{d, c, b, a} {
		if !kept[p] {
			PutSupportPoint(p)
		}
	}
	s.Points[0], s.Points[1], s.Points[2] = f.p0, f.p1, f.p2
	s.Count = 3
	s.NextDirection = bestNormal
	return false
}
