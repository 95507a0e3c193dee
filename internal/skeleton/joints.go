package skeleton

import (
	"fmt"
	"strings"
)

// JointID identifies one tracked joint of the capture skeleton.
type JointID uint8

const (
	HipCenter JointID = iota
	Spine
	ShoulderCenter
	Head
	ShoulderLeft
	ElbowLeft
	WristLeft
	HandLeft
	ShoulderRight
	ElbowRight
	WristRight
	HandRight
	HipLeft
	KneeLeft
	AnkleLeft
	FootLeft
	HipRight
	KneeRight
	AnkleRight
	FootRight

	jointCount
)

var jointNames = [jointCount]string{
	"HipCenter", "Spine", "ShoulderCenter", "Head",
	"ShoulderLeft", "ElbowLeft", "WristLeft", "HandLeft",
	"ShoulderRight", "ElbowRight", "WristRight", "HandRight",
	"HipLeft", "KneeLeft", "AnkleLeft", "FootLeft",
	"HipRight", "KneeRight", "AnkleRight", "FootRight",
}

// AllJoints lists every joint in declaration order.
func AllJoints() []JointID {
	out := make([]JointID, jointCount)
	for i := range out {
		out[i] = JointID(i)
	}
	return out
}

func (j JointID) Valid() bool {
	return j < jointCount
}

func (j JointID) String() string {
	if !j.Valid() {
		return fmt.Sprintf("JointID(%d)", uint8(j))
	}
	return jointNames[j]
}

// ParseJointID resolves a canonical joint name. Matching is exact apart from case.
func ParseJointID(name string) (JointID, error) {
	for i, n := range jointNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return JointID(i), nil
		}
	}
	return 0, fmt.Errorf("skeleton: unknown joint %q", name)
}

func (j JointID) MarshalText() ([]byte, error) {
	if !j.Valid() {
		return nil, fmt.Errorf("skeleton: invalid joint %d", uint8(j))
	}
	return []byte(jointNames[j]), nil
}

func (j *JointID) UnmarshalText(text []byte) error {
	id, err := ParseJointID(string(text))
	if err != nil {
		return err
	}
	*j = id
	return nil
}
