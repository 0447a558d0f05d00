// Package gjk2 implements the Gilbert-Johnson-Keerthi algorithm used to
// decide whether two convex rigid bodies overlap, and to build the
// tetrahedral simplex that epa2 expands into a contact manifold.
//
// Every point sampled here keeps, besides its Minkowski-difference
// point, its two witnesses - the points
// on body A and body B that produced it - so the narrowphase package can
// reconstruct a world-space contact point by barycentric interpolation
// once GJK or EPA has located the closest feature.
package gjk2

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// supportPointKind names the kind of record SupportPointPool holds. It is
// unexported and not read by any code; sync.Pool takes no key.
const supportPointKind = "GJK2SupportPoint"

// SupportPoint is a single sample of the Minkowski difference A-B, plus
// the two witness points that produced it.
//
// Invariant: Point == WitnessA.Sub(WitnessB) at all times.
type SupportPoint struct {
	WitnessA mgl64.Vec3 // farthest point on A along +direction
	WitnessB mgl64.Vec3 // farthest point on B along -direction
	Point    mgl64.Vec3 // WitnessA - WitnessB, a point on the CSO
}

// Body is the minimal collaborator the support oracle needs. actor.RigidBody
// satisfies it via SupportWorld.
type Body interface {
	SupportWorld(direction mgl64.Vec3) mgl64.Vec3
}

// SupportPointPool is a process-wide free list for SupportPoint records.
// Exceeding it is not an error: sync.Pool falls
// back to allocating a fresh record.
var SupportPointPool = &sync.Pool{
	New: func() interface{} {
		return &SupportPoint{}
	},
}

// GetSupportPoint pulls an uninitialized SupportPoint from the pool.
func GetSupportPoint() *SupportPoint {
	return SupportPointPool.Get().(*SupportPoint)
}

// PutSupportPoint returns a SupportPoint to the pool. Callers must not
// retain s afterwards.
func PutSupportPoint(s *SupportPoint) {
	SupportPointPool.Put(s)
}

// FindSupport queries the support oracle: it samples body a's farthest
// point along dir into out.WitnessA, body b's farthest point along -dir
// into out.WitnessB, and derives out.Point. dir need not be normalized but
// must be nonzero; the oracle itself never checks this, matching the
// spec's contract that callers guarantee it.
func FindSupport(a, b Body, dir mgl64.Vec3, out *SupportPoint) {
	out.WitnessA = a.SupportWorld(dir)
	out.WitnessB = b.SupportWorld(dir.Mul(-1))
	out.Point = out.WitnessA.Sub(out.WitnessB)
}
