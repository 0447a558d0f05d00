package epa2

import (
	"fmt"

	"github.com/akmonengine/feather/geom"
	"github.com/akmonengine/feather/gjk2"
	"github.com/go-gl/mathgl/mgl64"
)

// Polyhedron is the expanding polytope EPA refines toward the origin: an
// arena of faces, grown by AddVertex and never compacted - silhouetted
// faces are marked Active=false and left in place, per spec.md's Design
// Notes on the arena pattern.
type Polyhedron struct {
	Faces []Face

	ClosestFace int
	// ClosestDistance is the squared distance from the origin to
	// ClosestPoint, per spec.md §3's definition of closest_face_distance.
	ClosestDistance float64
	ClosestPoint    mgl64.Vec3
}

// NewPolyhedron builds the initial four-face tetrahedron from a closed
// GJK simplex. The vertex orderings below are spec.md §4.3's canonical
// construction; each face's orientation is then verified against its
// opposite vertex and corrected if it points inward, per the spec's
// hardening note (a trusted-but-unverified winding is the kind of bug
// that only shows up as a silently wrong contact normal much later).
func NewPolyhedron(simplex *gjk2.Simplex) (*Polyhedron, error) {
	if simplex.Count != 4 {
		return nil, fmt.Errorf("epa2: simplex has %d points, need 4", simplex.Count)
	}
	p0, p1, p2, p3 := simplex.Points[0], simplex.Points[1], simplex.Points[2], simplex.Points[3]

	type seed struct {
		a, b, c, opposite *gjk2.SupportPoint
	}
	seeds := [4]seed{
		{p2, p1, p0, p3},
		{p3, p1, p2, p0},
		{p1, p3, p0, p2},
		{p0, p3, p2, p1},
	}

	poly := &Polyhedron{Faces: make([]Face, 4)}
	for i, s := range seeds {
		a, b, c := s.a, s.b, s.c
		normal := b.Point.Sub(a.Point).Cross(c.Point.Sub(a.Point))
		if normal.Dot(s.opposite.Point.Sub(a.Point)) > 0 {
			// Normal points toward the opposite vertex: inward. Swap the
			// last two vertices to flip the winding (and thus the normal
			// computed from it) so Normal stays derived from Vertices.
			b, c = c, b
		}
		poly.Faces[i] = newFace(a, b, c)
	}

	wireAdjacency(poly.Faces)
	return poly, nil
}

// wireAdjacency fills in every face's Neighbors by matching each directed
// edge (x,y) against another face's reverse edge (y,x). This is a
// generic half-edge match rather than a hardcoded index table, so it
// keeps working regardless of which faces got their winding flipped in
// NewPolyhedron.
func wireAdjacency(faces []Face) {
	for i := range faces {
		for slotI := 0; slotI < 3; slotI++ {
			x, y := edgeVertices(&faces[i], slotI)
			for j := range faces {
				if j == i {
					continue
				}
				for slotJ := 0; slotJ < 3; slotJ++ {
					a, b := edgeVertices(&faces[j], slotJ)
					if a == y && b == x {
						faces[i].Neighbors[slotI] = j
						goto found
					}
				}
			}
		found:
		}
	}
}

// FindFaceClosestToOrigin scans every active face for the one whose
// triangle comes nearest the origin, recording the result on p for the
// caller's convergence test and final contact assembly. It is an error
// to call this with no active faces.
func (p *Polyhedron) FindFaceClosestToOrigin() error {
	best := -1
	var bestPoint mgl64.Vec3
	bestDistSq := 0.0

	for i := range p.Faces {
		f := &p.Faces[i]
		if !f.Active {
			continue
		}
		q := closestPointOnFace(f)
		d := q.LenSqr()
		if best == -1 || d < bestDistSq {
			best = i
			bestPoint = q
			bestDistSq = d
		}
	}
	if best == -1 {
		return fmt.Errorf("epa2: polyhedron has no active faces")
	}
	p.ClosestFace = best
	p.ClosestPoint = bestPoint
	p.ClosestDistance = bestDistSq
	return nil
}

// closestPointOnFace returns the point on f's triangle nearest the
// origin.
func closestPointOnFace(f *Face) mgl64.Vec3 {
	return geom.ClosestPointOnTriangle(mgl64.Vec3{},
		f.Vertices[0].Point, f.Vertices[1].Point, f.Vertices[2].Point)
}

// AddVertex expands the polyhedron with a new CSO sample v: every face
// visible from v is silhouetted (marked inactive), the boundary of that
// silhouette is collected as a ring of edges, and one new face is fanned
// from v to each ring edge, per spec.md §4.3.
func (p *Polyhedron) AddVertex(v *gjk2.SupportPoint) error {
	edges := p.collectSilhouette(p.ClosestFace, v)
	if len(edges) == 0 {
		return fmt.Errorf("epa2: no silhouette edges found for new vertex")
	}

	ring, err := orderRing(edges)
	if err != nil {
		return err
	}

	firstNewFace := len(p.Faces)
	for _, e := range ring {
		nf := newFace(e.a, v, e.b)
		nf.Neighbors[2] = e.thisFace
		p.Faces = append(p.Faces, nf)
		newIdx := len(p.Faces) - 1
		p.Faces[e.thisFace].Neighbors[e.slot] = newIdx
	}

	n := len(ring)
	for i := 0; i < n; i++ {
		idx := firstNewFace + i
		next := firstNewFace + (i+1)%n
		prev := firstNewFace + (i-1+n)%n
		p.Faces[idx].Neighbors[0] = prev
		p.Faces[idx].Neighbors[1] = next
	}
	return nil
}

// Free returns every support point reachable from any face - active or
// silhouetted - to the pool, exactly once each. A vertex is typically
// shared by several faces, so this dedupes by pointer identity rather
// than freeing per-face.
func (p *Polyhedron) Free() {
	seen := make(map[*gjk2.SupportPoint]bool)
	for i := range p.Faces {
		for _, v := range p.Faces[i].Vertices {
			if v != nil && !seen[v] {
				seen[v] = true
				gjk2.PutSupportPoint(v)
			}
		}
	}
	p.Faces = nil
}

type silhouetteEdge struct {
	thisFace   int
	slot       int
	sourceFace int
	a, b       *gjk2.SupportPoint
}

// collectSilhouette walks the polyhedron outward from start, silhouetting
// every face visible from v and recording, for each boundary it crosses
// into a still-active face, the edge between them.
func (p *Polyhedron) collectSilhouette(start int, v *gjk2.SupportPoint) []silhouetteEdge {
	visited := make([]bool, len(p.Faces))
	var edges []silhouetteEdge

	var visit func(faceIdx, sourceFace int)
	visit = func(faceIdx, sourceFace int) {
		if visited[faceIdx] {
			return
		}
		f := &p.Faces[faceIdx]
		if isVisible(f, v) {
			visited[faceIdx] = true
			f.Active = false
			for slot := 0; slot < 3; slot++ {
				visit(f.Neighbors[slot], faceIdx)
			}
			return
		}

		slotInThis := -1
		for s := 0; s < 3; s++ {
			if f.Neighbors[s] == sourceFace {
				slotInThis = s
				break
			}
		}
		if slotInThis == -1 {
			return
		}
		a, b := edgeVertices(f, slotInThis)
		edges = append(edges, silhouetteEdge{
			thisFace: faceIdx, slot: slotInThis, sourceFace: sourceFace, a: a, b: b,
		})
	}
	visit(start, -1)
	return edges
}

// orderRing reorders a set of silhouette edges, collected in arbitrary
// discovery order, into a closed ring where consecutive edges share a
// vertex: edge i's b equals edge i+1's a.
func orderRing(edges []silhouetteEdge) ([]silhouetteEdge, error) {
	byStart := make(map[*gjk2.SupportPoint]silhouetteEdge, len(edges))
	for _, e := range edges {
		byStart[e.a] = e
	}

	ring := make([]silhouetteEdge, 0, len(edges))
	cur := edges[0]
	for i := 0; i < len(edges); i++ {
		ring = append(ring, cur)
		next, ok := byStart[cur.b]
		if !ok {
			return nil, fmt.Errorf("epa2: silhouette ring is not closed")
		}
		cur = next
	}
	if cur.a != ring[0].a {
		return nil, fmt.Errorf("epa2: silhouette ring did not close")
	}
	return ring, nil
}
