package mathutil

// Quat represents a quaternion (x, y, z, w).
type Quat [4]float64

// Y returns the y component, which drives bone roll.
func (q Quat) Y() float64 { return q[1] }
