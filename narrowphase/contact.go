// Package narrowphase detects whether two convex rigid bodies intersect
// and, if so, produces a single contact manifold point for them: a
// shared world-space contact point, its local coordinates in each body,
// a unit contact normal, a scalar penetration depth, and the two
// bodies' combined restitution and friction. It drives gjk2 and epa2,
// neither of which knows anything about the assembled result.
package narrowphase

import (
	"math"

	"github.com/akmonengine/feather/actor"
	"github.com/akmonengine/feather/geom"
	"github.com/akmonengine/feather/gjk2"
	"github.com/go-gl/mathgl/mgl64"
)

// ContactDetails is the detector's sole output: one contact point,
// never a multi-point manifold.
type ContactDetails struct {
	BodyA, BodyB *actor.RigidBody

	Normal             mgl64.Vec3
	Point              mgl64.Vec3
	PointInA, PointInB mgl64.Vec3

	PenetrationDepth float64
	Restitution      float64
	Friction         float64
}

// assembleContact implements the shared shallow-hit/EPA-hit assembly from
// spec.md §4.5. negateNormal distinguishes the shallow (margin) path,
// which reverses the natural q/|q| normal, from the EPA path, which does
// not. closestPoint is the nearest point on triangle (a,b,c) to the
// origin in CSO space; penetration carries the branch-specific depth
// formula already computed by the caller (gap to margin for the shallow
// path, |closestPoint|+MARGIN for the EPA path).
func assembleContact(bodyA, bodyB *actor.RigidBody, a, b, c *gjk2.SupportPoint, closestPoint mgl64.Vec3, penetration float64, negateNormal bool, epaPath bool) (ContactDetails, bool) {
	var normal mgl64.Vec3
	lenSq := closestPoint.LenSqr()
	if lenSq < gjk2.Epsilon {
		normal = bodyB.Transform.Position.Sub(bodyA.Transform.Position)
		if normal.LenSqr() < gjk2.Epsilon {
			// Zero-length closest point and zero body separation: bodies
			// are exactly coincident. Per spec.md §7, fall back to an
			// arbitrary nonzero normal rather than reporting no contact -
			// world-up is as good a choice as any other.
			normal = mgl64.Vec3{0, 1, 0}
		} else {
			normal = normal.Normalize()
		}
	} else {
		normal = closestPoint.Mul(1 / math.Sqrt(lenSq))
	}
	if negateNormal {
		normal = normal.Mul(-1)
	}

	u, v, w := geom.BarycentricCoordinates(closestPoint, a.Point, b.Point, c.Point)
	if math.IsNaN(u) || math.IsNaN(v) || math.IsNaN(w) {
		return ContactDetails{}, false
	}

	pointInAWorld := a.WitnessA.Mul(u).Add(b.WitnessA.Mul(v)).Add(c.WitnessA.Mul(w))

	var pointInBWorld mgl64.Vec3
	if epaPath {
		pointInBWorld = a.WitnessB.Mul(u).Add(b.WitnessB.Mul(v)).Add(c.WitnessB.Mul(w))
	} else {
		pointInBWorld = pointInAWorld.Add(normal.Mul(-penetration))
	}

	worldPoint := pointInAWorld.Add(pointInBWorld).Mul(0.5)

	return ContactDetails{
		BodyA:            bodyA,
		BodyB:            bodyB,
		Normal:           normal,
		Point:            worldPoint,
		PointInA:         bodyA.Transform.InverseRotation.Rotate(worldPoint.Sub(bodyA.Transform.Position)),
		PointInB:         bodyB.Transform.InverseRotation.Rotate(worldPoint.Sub(bodyB.Transform.Position)),
		PenetrationDepth: penetration,
		Restitution:      (bodyA.Material.Restitution + bodyB.Material.Restitution) / 2,
		Friction:         meanFriction(bodyA, bodyB),
	}, true
}

func meanFriction(a, b *actor.RigidBody) float64 {
	fa := (a.Material.StaticFriction + a.Material.DynamicFriction) / 2
	fb := (b.Material.StaticFriction + b.Material.DynamicFriction) / 2
	return (fa + fb) / 2
}
