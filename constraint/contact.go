package constraint

import (
	"math"

	"github.com/akmonengine/feather/actor"
	"github.com/akmonengine/feather/narrowphase"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultCompliance controls soft constraint stiffness for contact resolution.
	// Lower values = stiffer contacts (less penetration, potential jitter)
	// Higher values = softer contacts (more penetration, smoother)
	// Typical range: 1e-10 (very stiff) to 1e-6 (soft)
	DefaultCompliance = 1e-7
)

// ContactConstraint wraps the single contact point narrowphase produces
// for a pair of overlapping bodies. Unlike a multi-point manifold, there
// is never a loop over points here - one point, resolved directly.
type ContactConstraint struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
	Point narrowphase.ContactDetails
}

// SolvePosition resolves penetration (PBD style, no lambda accumulation)
func (c *ContactConstraint) SolvePosition(dt float64) {
	if c.BodyA.IsSleeping && c.BodyB.IsSleeping {
		return
	}
	if c.Point.PenetrationDepth <= 1e-8 {
		return
	}

	bodyA := c.BodyA
	bodyB := c.BodyB
	normal := c.Point.Normal

	invMassA := 1.0 / bodyA.Material.GetMass()
	invMassB := 1.0 / bodyB.Material.GetMass()
	IAInv := bodyA.GetInverseInertiaWorld()
	IBInv := bodyB.GetInverseInertiaWorld()

	rA := c.Point.Point.Sub(bodyA.Transform.Position)
	rB := c.Point.Point.Sub(bodyB.Transform.Position)

	rAcrossN := rA.Cross(normal)
	rBcrossN := rB.Cross(normal)
	angularInertiaA := IAInv.Mul3x1(rAcrossN).Dot(rAcrossN)
	angularInertiaB := IBInv.Mul3x1(rBcrossN).Dot(rBcrossN)

	totalWeight := invMassA + invMassB + angularInertiaA + angularInertiaB
	if totalWeight <= 1e-8 {
		return
	}

	alphaTilde := DefaultCompliance / (dt * dt)
	deltaLambda := -c.Point.PenetrationDepth / (totalWeight + alphaTilde)
	impulse := normal.Mul(deltaLambda)

	if bodyA.BodyType != actor.BodyTypeStatic {
		bodyA.Transform.Position = bodyA.Transform.Position.Add(impulse.Mul(invMassA))
	}
	if bodyB.BodyType != actor.BodyTypeStatic {
		bodyB.Transform.Position = bodyB.Transform.Position.Sub(impulse.Mul(invMassB))
	}

	torqueA := rA.Cross(impulse)
	torqueB := rB.Cross(impulse.Mul(-1))
	deltaRotA := IAInv.Mul3x1(torqueA)
	deltaRotB := IBInv.Mul3x1(torqueB)

	if bodyA.BodyType != actor.BodyTypeStatic && deltaRotA.Len() > 1e-10 {
		qDelta := mgl64.Quat{W: 1.0, V: deltaRotA.Mul(0.5)}.Normalize()
		bodyA.Transform.Rotation = qDelta.Mul(bodyA.Transform.Rotation).Normalize()
		bodyA.Transform.InverseRotation = bodyA.Transform.Rotation.Inverse()
	}
	if bodyB.BodyType != actor.BodyTypeStatic && deltaRotB.Len() > 1e-10 {
		qDelta := mgl64.Quat{W: 1.0, V: deltaRotB.Mul(0.5)}.Normalize()
		bodyB.Transform.Rotation = qDelta.Mul(bodyB.Transform.Rotation).Normalize()
		bodyB.Transform.InverseRotation = bodyB.Transform.Rotation.Inverse()
	}
}

// SolveVelocity applies restitution and friction for the contact point.
func (c *ContactConstraint) SolveVelocity(dt float64) {
	if c.BodyA.IsSleeping && c.BodyB.IsSleeping {
		return
	}

	bodyA := c.BodyA
	bodyB := c.BodyB
	normal := c.Point.Normal

	invMassA := 1.0 / bodyA.Material.GetMass()
	invMassB := 1.0 / bodyB.Material.GetMass()
	IAInv := bodyA.GetInverseInertiaWorld()
	IBInv := bodyB.GetInverseInertiaWorld()

	rA := c.Point.Point.Sub(bodyA.Transform.Position)
	rB := c.Point.Point.Sub(bodyB.Transform.Position)

	vA := bodyA.Velocity.Add(bodyA.AngularVelocity.Cross(rA))
	vB := bodyB.Velocity.Add(bodyB.AngularVelocity.Cross(rB))
	relativeVel := vB.Sub(vA)
	normalVel := relativeVel.Dot(normal)

	vAPrev := bodyA.PresolveVelocity.Add(bodyA.PresolveAngularVelocity.Cross(rA))
	vBPrev := bodyB.PresolveVelocity.Add(bodyB.PresolveAngularVelocity.Cross(rB))
	normalVelPrev := vBPrev.Sub(vAPrev).Dot(normal)

	rAcrossN := rA.Cross(normal)
	rBcrossN := rB.Cross(normal)
	angularInertiaA := IAInv.Mul3x1(rAcrossN).Dot(rAcrossN)
	angularInertiaB := IBInv.Mul3x1(rBcrossN).Dot(rBcrossN)
	effectiveMassNormal := invMassA + invMassB + angularInertiaA + angularInertiaB
	if effectiveMassNormal < 1e-10 {
		return
	}

	targetVel := -c.Point.Restitution * normalVelPrev
	lambdaNormal := (targetVel - normalVel) / effectiveMassNormal
	if lambdaNormal < 0 {
		lambdaNormal = 0
	}
	normalImpulse := normal.Mul(lambdaNormal)

	linearImpulseA := normalImpulse.Mul(-invMassA)
	linearImpulseB := normalImpulse.Mul(invMassB)
	angularImpulseA := IAInv.Mul3x1(rA.Cross(normalImpulse.Mul(-1)))
	angularImpulseB := IBInv.Mul3x1(rB.Cross(normalImpulse))

	if lambdaNormal > 0 {
		tangentVel := relativeVel.Sub(normal.Mul(normalVel))
		tangentSpeed := tangentVel.Len()
		if tangentSpeed > 1e-6 {
			tangentDir := tangentVel.Mul(1.0 / tangentSpeed)

			rAcrossT := rA.Cross(tangentDir)
			rBcrossT := rB.Cross(tangentDir)
			angularInertiaAT := IAInv.Mul3x1(rAcrossT).Dot(rAcrossT)
			angularInertiaBT := IBInv.Mul3x1(rBcrossT).Dot(rBcrossT)
			effectiveMassTangent := invMassA + invMassB + angularInertiaAT + angularInertiaBT

			if effectiveMassTangent >= 1e-10 {
				lambdaTangent := -tangentSpeed / effectiveMassTangent
				maxStaticFriction := c.Point.Friction * math.Abs(lambdaNormal)

				var frictionImpulse mgl64.Vec3
				if math.Abs(lambdaTangent) <= maxStaticFriction {
					frictionImpulse = tangentDir.Mul(lambdaTangent)
				} else {
					maxDynamicFriction := c.Point.Friction * math.Abs(lambdaNormal)
					frictionImpulse = tangentDir.Mul(-math.Copysign(maxDynamicFriction, tangentSpeed))
				}

				linearImpulseA = linearImpulseA.Sub(frictionImpulse.Mul(invMassA))
				linearImpulseB = linearImpulseB.Add(frictionImpulse.Mul(invMassB))
				angularImpulseA = angularImpulseA.Add(IAInv.Mul3x1(rA.Cross(frictionImpulse.Mul(-1))))
				angularImpulseB = angularImpulseB.Add(IBInv.Mul3x1(rB.Cross(frictionImpulse)))
			}
		}
	}

	bodyA.Velocity = bodyA.Velocity.Add(linearImpulseA)
	bodyB.Velocity = bodyB.Velocity.Add(linearImpulseB)
	bodyA.AngularVelocity = bodyA.AngularVelocity.Add(angularImpulseA)
	bodyB.AngularVelocity = bodyB.AngularVelocity.Add(angularImpulseB)

	clampSmallVelocities(bodyA)
	clampSmallVelocities(bodyB)
}
