package narrowphase

import (
	"math"

	"github.com/akmonengine/feather/actor"
	"github.com/akmonengine/feather/epa2"
	"github.com/akmonengine/feather/gjk2"
)

// TestCollision runs the full narrow-phase pipeline for one pair of
// bodies: GJK first, falling through to EPA only when GJK closes a
// tetrahedron around the origin. It frees every support point it
// acquires on every exit path, per spec.md §4.6 and §4.4.
func TestCollision(a, b *actor.RigidBody) (ContactDetails, bool) {
	simplex := gjk2.NewSimplex(a, b, a.Transform.Position, b.Transform.Position)

	for {
		result, hit := simplex.AddPoint()
		switch result {
		case gjk2.Continue:
			continue
		case gjk2.ShallowContact:
			contact, ok := assembleContact(a, b, hit.A, hit.B, hit.C, hit.ClosestPoint,
				gjk2.Margin-sqrtNonNeg(hit.ClosestPoint.LenSqr()), true, false)
			simplex.Free()
			return contact, ok
		case gjk2.NoOverlap:
			simplex.Free()
			return ContactDetails{}, false
		case gjk2.RunEPA:
			// simplex's 4 support points are threaded into poly.Faces[...].Vertices
			// by epa2.Run; ownership transfers there, so only poly.Free()
			// below returns them - calling simplex.Free() here would
			// double-Put the same pointers into the pool.
			poly, hit, ok := epa2.Run(a, b, simplex)
			if !ok {
				if poly != nil {
					poly.Free()
				}
				return ContactDetails{}, false
			}
			penetration := sqrtNonNeg(hit.ClosestPoint.LenSqr()) + gjk2.Margin
			contact, assembled := assembleContact(a, b,
				hit.Face.Vertices[0], hit.Face.Vertices[1], hit.Face.Vertices[2],
				hit.ClosestPoint, penetration, false, true)
			poly.Free()
			return contact, assembled
		}
	}
}

func sqrtNonNeg(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return math.Sqrt(x)
}
