package skeleton

import "fmt"

// ConfigurationError reports a bone table that cannot be processed in order.
// It is fatal: nothing may be retargeted with such a table.
type ConfigurationError struct {
	Index  int
	Bone   BoneName
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("skeleton: invalid bone hierarchy: %s", e.Reason)
	}
	return fmt.Sprintf("skeleton: invalid bone hierarchy at entry %d (%s): %s", e.Index, e.Bone, e.Reason)
}
