package feather

import (
	"sync"

	"github.com/akmonengine/feather/actor"
	"github.com/akmonengine/feather/constraint"
	"github.com/akmonengine/feather/narrowphase"
	"github.com/go-gl/mathgl/mgl64"
)

const STIFF_COMPLIANCE = CONCRETE_COMPLIANCE

const (
	CONCRETE_COMPLIANCE = 0.04e-9
	WOOD_COMPLIANCE     = 0.16e-9
	LEATHER_COMPLIANCE  = 14e-8
	TENDON_COMPLIANCE   = 0.2e-7
	RUBBER_COMPLIANCE   = 1e-6
	MUSCLE_COMPLIANCE   = 0.2e-3
	FAT_COMPLIANCE      = 1e-3
)

// BroadPhase performs broad-phase collision detection with the spatial grid:
// it clears the grid, inserts every body by its AABB, and streams candidate
// pairs that share a grid cell on the returned channel
func BroadPhase(spatialGrid *SpatialGrid, bodies []*actor.RigidBody, workersCount int) <-chan Pair {
	spatialGrid.Clear()
	for i, body := range bodies {
		spatialGrid.Insert(i, body)
	}
	spatialGrid.SortCells()

	checkingPairs := spatialGrid.FindPairsParallel(bodies, workersCount)

	return checkingPairs
}

func NarrowPhase(pairs <-chan Pair, workersCount int) []*constraint.ContactConstraint {
	// Dispatcher: separate pairs with planes, and normal convex objects
	planePairs := make(chan Pair, workersCount)
	gjkPairs := make(chan Pair, workersCount)

	go func() {
		defer close(planePairs)
		defer close(gjkPairs)

		for pair := range pairs {
			_, aIsPlane := pair.BodyA.Shape.(*actor.Plane)
			_, bIsPlane := pair.BodyB.Shape.(*actor.Plane)

			if aIsPlane || bIsPlane {
				planePairs <- pair
			} else {
				gjkPairs <- pair
			}
		}
	}()

	allContacts := make(chan *constraint.ContactConstraint, workersCount*2)
	var wg sync.WaitGroup

	// Path 1: GJK/EPA for convex objects
	wg.Add(1)
	go func() {
		defer wg.Done()
		for contact := range convexCollisions(gjkPairs, workersCount) {
			allContacts <- contact
		}
	}()

	// Path 2: analytic collisions with planes
	wg.Add(1)
	go func() {
		defer wg.Done()
		for contact := range collidePlane(planePairs, workersCount) {
			allContacts <- contact
		}
	}()

	go func() {
		wg.Wait()
		close(allContacts)
	}()

	contacts := make([]*constraint.ContactConstraint, 0)
	for c := range allContacts {
		contacts = append(contacts, c)
	}
	return contacts
}

// convexCollisions runs narrowphase.TestCollision over every pair neither
// of which is a plane, fanning the work out across workersCount goroutines.
func convexCollisions(pairChan <-chan Pair, workersCount int) <-chan *constraint.ContactConstraint {
	ch := make(chan *constraint.ContactConstraint, workersCount)

	go func() {
		var wg sync.WaitGroup
		defer close(ch)

		for range workersCount {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for p := range pairChan {
					contact, ok := narrowphase.TestCollision(p.BodyA, p.BodyB)
					if !ok {
						continue
					}
					ch <- &constraint.ContactConstraint{
						BodyA: p.BodyA,
						BodyB: p.BodyB,
						Point: contact,
					}
				}
			}()
		}

		wg.Wait()
	}()

	return ch
}

func collidePlane(pairs <-chan Pair, workersCount int) <-chan *constraint.ContactConstraint {
	ch := make(chan *constraint.ContactConstraint, workersCount)

	go func() {
		var wg sync.WaitGroup
		defer close(ch)

		for range workersCount {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for pair := range pairs {
					var plane *actor.Plane
					var object *actor.RigidBody
					var planeBody *actor.RigidBody
					var contactNormal mgl64.Vec3

					if p, ok := pair.BodyA.Shape.(*actor.Plane); ok {
						plane = p
						planeBody = pair.BodyA
						object = pair.BodyB
						contactNormal = plane.Normal
					} else if p, ok := pair.BodyB.Shape.(*actor.Plane); ok {
						plane = p
						planeBody = pair.BodyB
						object = pair.BodyA
						contactNormal = plane.Normal.Mul(-1)
					} else {
						continue // No plane (should not happen, the data is prefiltered in NarrowPhase)
					}

					worldPoint, penetration, ok := actor.CollideWithPlane(object.Shape, plane.Normal, plane.Distance, object.Transform)
					if !ok {
						continue
					}

					staticFriction := constraint.ComputeStaticFriction(planeBody.Material, object.Material)
					dynamicFriction := constraint.ComputeDynamicFriction(planeBody.Material, object.Material)

					contact := narrowphase.ContactDetails{
						BodyA:            planeBody,
						BodyB:            object,
						Normal:           contactNormal,
						Point:            worldPoint,
						PointInA:         planeBody.Transform.InverseRotation.Rotate(worldPoint.Sub(planeBody.Transform.Position)),
						PointInB:         object.Transform.InverseRotation.Rotate(worldPoint.Sub(object.Transform.Position)),
						PenetrationDepth: penetration,
						Restitution:      constraint.ComputeRestitution(planeBody.Material, object.Material),
						Friction:         (staticFriction + dynamicFriction) / 2,
					}

					ch <- &constraint.ContactConstraint{
						BodyA: planeBody,
						BodyB: object,
						Point: contact,
					}
				}
			}()
		}

		wg.Wait()
	}()

	return ch
}
