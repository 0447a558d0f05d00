package epa2

import (
	"github.com/akmonengine/feather/gjk2"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// MaxIterations bounds polytope expansion, mirroring gjk2.MaxIterations.
	MaxIterations = 20

	// ConvergenceGap is spec.md's EPA_CONDITION: once the squared distance
	// between the newest support sample and the current closest point falls
	// below this value, further expansion would not meaningfully change the
	// contact.
	ConvergenceGap = 0.001
)

// Hit is EPA's result: the face the origin projects onto and the point
// of that projection, ready for narrowphase's barycentric reconstruction.
type Hit struct {
	Face         *Face
	ClosestPoint mgl64.Vec3
}

// Run expands simplex (already closed into a tetrahedron by GJK) until
// the closest face stops changing meaningfully or MaxIterations is hit,
// then reports the contact-bearing face. The caller must call
// poly.Free() when done with the result, win or lose, to return every
// support point still referenced by the polyhedron's faces.
func Run(a, b gjk2.Body, simplex *gjk2.Simplex) (poly *Polyhedron, hit Hit, ok bool) {
	poly, err := NewPolyhedron(simplex)
	if err != nil {
		return nil, Hit{}, false
	}

	for iter := 0; iter < MaxIterations; iter++ {
		if err := poly.FindFaceClosestToOrigin(); err != nil {
			return poly, Hit{}, false
		}

		face := &poly.Faces[poly.ClosestFace]

		// Search direction: the face normal when the origin lies on the
		// face (closest_face_distance effectively zero), otherwise the
		// vector toward the closest point itself.
		direction := face.Normal
		if poly.ClosestDistance >= gjk2.Epsilon {
			direction = poly.ClosestPoint
		}

		sample := gjk2.GetSupportPoint()
		gjk2.FindSupport(a, b, direction, sample)

		d := sample.Point.Sub(poly.ClosestPoint)
		gap := d.Dot(d)
		if gap < ConvergenceGap && poly.ClosestDistance > gjk2.Epsilon {
			gjk2.PutSupportPoint(sample)
			return poly, Hit{Face: face, ClosestPoint: poly.ClosestPoint}, true
		}

		if err := poly.AddVertex(sample); err != nil {
			// Degenerate expansion: report the best face found so far
			// rather than fail outright, the same way the loop reports a
			// hit when MaxIterations runs out.
			gjk2.PutSupportPoint(sample)
			return poly, Hit{Face: face, ClosestPoint: poly.ClosestPoint}, true
		}
	}

	if err := poly.FindFaceClosestToOrigin(); err != nil {
		return poly, Hit{}, false
	}
	face := &poly.Faces[poly.ClosestFace]
	return poly, Hit{Face: face, ClosestPoint: poly.ClosestPoint}, true
}
