package retarget

import (
	"fmt"

	"mocap-retarget/internal/skeleton"
)

// MissingJointError reports a frame that lacks a joint the hierarchy reads.
// Nothing is cached or emitted for such a frame.
type MissingJointError struct {
	Frame int
	Joint skeleton.JointID
}

func (e *MissingJointError) Error() string {
	return fmt.Sprintf("retarget: frame %d is missing joint %s", e.Frame, e.Joint)
}
