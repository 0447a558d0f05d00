package epa2

import (
	"github.com/akmonengine/feather/gjk2"
	"github.com/go-gl/mathgl/mgl64"
)

// Face is one triangle of the expanding polytope: three shared support
// points, an outward normal, and the three neighboring faces across its
// edges. Faces live in a Polyhedron's arena and are never deleted, only
// deactivated - see Polyhedron.AddVertex.
//
// Neighbors[0] shares edge (Vertices[0], Vertices[1]);
// Neighbors[1] shares edge (Vertices[1], Vertices[2]);
// Neighbors[2] shares edge (Vertices[2], Vertices[0]).
type Face struct {
	Vertices  [3]*gjk2.SupportPoint
	Normal    mgl64.Vec3
	Active    bool
	Neighbors [3]int
}

// newFace builds a Face from three vertices in the given winding order,
// trusting that order to be outward - callers that can't trust it (the
// initial tetrahedron) correct it before wiring neighbors.
func newFace(a, b, c *gjk2.SupportPoint) Face {
	normal := b.Point.Sub(a.Point).Cross(c.Point.Sub(a.Point))
	if normal.LenSqr() > gjk2.Epsilon {
		normal = normal.Normalize()
	}
	return Face{
		Vertices: [3]*gjk2.SupportPoint{a, b, c},
		Normal:   normal,
		Active:   true,
	}
}

// edgeVertices returns the ordered pair of vertices bounding neighbor
// slot, per the (a,b)/(b,c)/(c,a) convention documented on Face.
func edgeVertices(f *Face, slot int) (a, b *gjk2.SupportPoint) {
	switch slot {
	case 0:
		return f.Vertices[0], f.Vertices[1]
	case 1:
		return f.Vertices[1], f.Vertices[2]
	default:
		return f.Vertices[2], f.Vertices[0]
	}
}

// isVisible reports whether the sample point v lies on the outside of f's
// plane, i.e. whether f should be silhouetted when v is inserted.
func isVisible(f *Face, v *gjk2.SupportPoint) bool {
	return f.Normal.Dot(v.Point.Sub(f.Vertices[0].Point)) > 0
}
