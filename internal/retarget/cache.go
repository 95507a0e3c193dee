package retarget

import (
	"mocap-retarget/internal/mathutil"
	"mocap-retarget/internal/skeleton"
)

// DefaultRootHeight is the canonical standing height of the root joint.
const DefaultRootHeight = 1.0

// PositionCache holds the last final position computed for each joint.
// It belongs to a single export session.
type PositionCache struct {
	positions map[skeleton.JointID]mathutil.Vec3
}

// NewCache returns a cache with root seeded at (0, height, 0).
func NewCache(root skeleton.JointID, height float64) *PositionCache {
	c := &PositionCache{positions: make(map[skeleton.JointID]mathutil.Vec3)}
	c.positions[root] = mathutil.Vec3{0, height, 0}
	return c
}

// Get returns the cached position of j, the zero vector when none was stored.
func (c *PositionCache) Get(j skeleton.JointID) mathutil.Vec3 {
	return c.positions[j]
}

func (c *PositionCache) Set(j skeleton.JointID, p mathutil.Vec3) {
	c.positions[j] = p
}

// Snapshot copies the cache contents.
func (c *PositionCache) Snapshot() map[skeleton.JointID]mathutil.Vec3 {
	out := make(map[skeleton.JointID]mathutil.Vec3, len(c.positions))
	for j, p := range c.positions {
		out[j] = p
	}
	return out
}
