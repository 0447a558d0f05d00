package main

import (
	"fmt"

	"github.com/akmonengine/feather"
	"github.com/akmonengine/feather/actor"
	"github.com/akmonengine/feather/narrowphase"
	"github.com/go-gl/mathgl/mgl64"
)

// CollisionDebugger instruments the narrow-phase pipeline for a single pair.
type CollisionDebugger interface {
	DebugContact(bodyA, bodyB *actor.RigidBody, contact narrowphase.ContactDetails, found bool)
	DebugContactConstraint(bodyA, bodyB *actor.RigidBody, contact *narrowphase.ContactDetails)
}

// SimpleDebugger prints collision info to stdout.
type SimpleDebugger struct{}

func (d *SimpleDebugger) DebugContact(bodyA, bodyB *actor.RigidBody, contact narrowphase.ContactDetails, found bool) {
	fmt.Printf("Narrowphase debug:\n")
	fmt.Printf("   Body A pos: %v\n", bodyA.Transform.Position)
	fmt.Printf("   Body B pos: %v\n", bodyB.Transform.Position)
	if !found {
		fmt.Printf("   No contact\n")
		return
	}
	fmt.Printf("   Contact point: %v\n", contact.Point)
	fmt.Printf("   Normal: %v\n", contact.Normal)
	fmt.Printf("   Penetration: %.6f\n", contact.PenetrationDepth)

	rA := contact.Point.Sub(bodyA.Transform.Position)
	rB := contact.Point.Sub(bodyB.Transform.Position)
	fmt.Printf("      rA: %v (len=%.3f)\n", rA, rA.Len())
	fmt.Printf("      rB: %v (len=%.3f)\n", rB, rB.Len())
}

func (d *SimpleDebugger) DebugContactConstraint(bodyA, bodyB *actor.RigidBody, contact *narrowphase.ContactDetails) {
	fmt.Printf("Contact constraint debug:\n")
	fmt.Printf("   Body A velocity: %v\n", bodyA.Velocity)
	fmt.Printf("   Body A angular velocity: %v\n", bodyA.AngularVelocity)
	fmt.Printf("   Body B velocity: %v\n", bodyB.Velocity)
	fmt.Printf("   Body B angular velocity: %v\n", bodyB.AngularVelocity)
	fmt.Printf("   Normal: %v\n", contact.Normal)
}

// SetupScene creates the test scene with a plane and a falling cube.
func SetupScene() (*feather.World, *actor.RigidBody, *actor.RigidBody, CollisionDebugger) {
	debugger := &SimpleDebugger{}
	world := &feather.World{
		Gravity:  mgl64.Vec3{0, -9.81, 0},
		Substeps: 1,
	}

	planeShape := &actor.Plane{
		Normal:   mgl64.Vec3{0, 1, 0},
		Distance: 0.0,
	}
	planeTransform := actor.Transform{
		Position: mgl64.Vec3{0, 0, 0},
	}
	planeBody := actor.NewRigidBody(planeTransform, planeShape, actor.BodyTypeStatic, 0.0)
	world.AddBody(planeBody)

	boxShape := &actor.Box{
		HalfExtents: mgl64.Vec3{1.5, 1.5, 1.5},
	}
	cubeTransform := actor.Transform{
		Position: mgl64.Vec3{-5.0, 5.0, -5.0},
		Rotation: mgl64.QuatRotate(70.0, mgl64.Vec3{0, 0, 1}),
	}
	cubeBody := actor.NewRigidBody(cubeTransform, boxShape, actor.BodyTypeDynamic, 1.0)
	cubeBody.Material.Restitution = 0.8

	world.AddBody(cubeBody)

	return world, planeBody, cubeBody, debugger
}

// TestCubeFall steps the scene and reports the cube's approach to the
// ground plane via the narrowphase detector directly, independent of
// the collidePlane analytic path world.Step actually uses for it.
func TestCubeFall() {
	fmt.Println("Cube-fall integration test")
	fmt.Println("==========================")

	world, planeBody, cubeBody, debugger := SetupScene()

	fmt.Printf("Initial configuration:\n")
	fmt.Printf("  Plane: position %v\n", planeBody.Transform.Position)
	fmt.Printf("  Cube: position %v, rotation %v\n",
		cubeBody.Transform.Position,
		cubeBody.Transform.Rotation)
	fmt.Printf("  Gravity: %v\n", world.Gravity)
	fmt.Println()

	const dt float64 = 1.0 / 60.0
	const maxSteps int = 200

	for step := 0; step < maxSteps; step++ {
		fmt.Printf("--- STEP %d ---\n", step+1)
		fmt.Printf("Cube state BEFORE:\n")
		fmt.Printf("  Position: %v\n", cubeBody.Transform.Position)
		fmt.Printf("  Velocity: %v\n", cubeBody.Velocity)
		fmt.Printf("  Angular Velocity: %v (len=%.3f)\n", cubeBody.AngularVelocity, cubeBody.AngularVelocity.Len())
		fmt.Printf("  Rotation: %v\n", cubeBody.Transform.Rotation)

		contact, found := narrowphase.TestCollision(planeBody, cubeBody)
		debugger.DebugContact(planeBody, cubeBody, contact, found)
		if found {
			debugger.DebugContactConstraint(planeBody, cubeBody, &contact)
		}

		world.Step(dt)

		fmt.Printf("Cube state AFTER:\n")
		fmt.Printf("  Position: %v\n", cubeBody.Transform.Position)
		fmt.Printf("  Velocity: %v\n", cubeBody.Velocity)
		fmt.Printf("  Angular Velocity: %v (len=%.3f)\n", cubeBody.AngularVelocity, cubeBody.AngularVelocity.Len())
		fmt.Printf("  Rotation: %v\n", cubeBody.Transform.Rotation)

		qDelta := cubeBody.Transform.Rotation.Mul(cubeBody.PreviousTransform.Rotation.Conjugate()).Normalize()
		fmt.Printf("  Rotation delta: qDelta=%v (|V|=%.6f)\n", qDelta, qDelta.V.Len())
		fmt.Println()
	}

	fmt.Println("Test finished!")
}

func main() {
	TestCubeFall()
}
