package skeleton

import (
	"fmt"
	"math"
)

// BoneName names a bone of the target character's rig.
type BoneName string

const (
	BoneSpineBase     BoneName = "SpineBase"
	BoneNeck          BoneName = "Neck"
	BonePelvis        BoneName = "Pelvis"
	BoneLeftShoulder  BoneName = "LeftShoulder"
	BoneRightShoulder BoneName = "RightShoulder"
	BoneLeftElbow     BoneName = "LeftElbow"
	BoneRightElbow    BoneName = "RightElbow"
	BoneLeftWrist     BoneName = "LeftWrist"
	BoneRightWrist    BoneName = "RightWrist"
	BoneLeftHip       BoneName = "LeftHip"
	BoneRightHip      BoneName = "RightHip"
	BoneLeftKnee      BoneName = "LeftKnee"
	BoneRightKnee     BoneName = "RightKnee"
	BoneLeftAnkle     BoneName = "LeftAnkle"
	BoneRightAnkle    BoneName = "RightAnkle"
	BoneHead          BoneName = "Head"
)

var knownBones = map[BoneName]struct{}{
	BoneSpineBase: {}, BoneNeck: {}, BonePelvis: {}, BoneHead: {},
	BoneLeftShoulder: {}, BoneRightShoulder: {}, BoneLeftElbow: {}, BoneRightElbow: {},
	BoneLeftWrist: {}, BoneRightWrist: {},
	BoneLeftHip: {}, BoneRightHip: {}, BoneLeftKnee: {}, BoneRightKnee: {},
	BoneLeftAnkle: {}, BoneRightAnkle: {},
}

// Known reports whether n is one of the rig's bone names. Membership is exact.
func (n BoneName) Known() bool {
	_, ok := knownBones[n]
	return ok
}

// BoneSpec is one directed edge of the retargeting tree. Name is the target
// bone that gets pointed at the To joint's final position.
type BoneSpec struct {
	Name           BoneName `json:"name" toml:"name"`
	From           JointID  `json:"from" toml:"from"`
	To             JointID  `json:"to" toml:"to"`
	Length         float64  `json:"length" toml:"length"`
	IgnorePosition bool     `json:"ignore_position" toml:"ignore_position"`
	IgnoreRotation bool     `json:"ignore_rotation" toml:"ignore_rotation"`
}

// Hierarchy is a validated, ordered bone table rooted at Root.
// Every entry's From joint is the root or the To joint of an earlier entry.
type Hierarchy struct {
	root  JointID
	bones []BoneSpec
}

// NewHierarchy validates bones against root and returns the hierarchy.
func NewHierarchy(root JointID, bones []BoneSpec) (*Hierarchy, error) {
	h := &Hierarchy{root: root, bones: append([]BoneSpec(nil), bones...)}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// DefaultHierarchy is the capture-to-biped table, rooted at HipCenter.
func DefaultHierarchy() *Hierarchy {
	h, err := NewHierarchy(HipCenter, defaultBones)
	if err != nil {
		panic(err)
	}
	return h
}

var defaultBones = []BoneSpec{
	{Name: BoneSpineBase, From: HipCenter, To: ShoulderCenter, Length: 0.4375},
	{Name: BoneNeck, From: ShoulderCenter, To: Head, Length: 0.0625, IgnorePosition: true},
	{Name: BoneNeck, From: ShoulderCenter, To: ShoulderLeft, Length: 0.125, IgnorePosition: true},
	{Name: BoneNeck, From: ShoulderCenter, To: ShoulderRight, Length: 0.125, IgnorePosition: true},
	{Name: BoneLeftShoulder, From: ShoulderLeft, To: ElbowLeft, Length: 0.25, IgnoreRotation: true},
	{Name: BoneRightShoulder, From: ShoulderRight, To: ElbowRight, Length: 0.25, IgnoreRotation: true},
	{Name: BoneLeftElbow, From: ElbowLeft, To: HandLeft, Length: 0.125},
	{Name: BoneRightElbow, From: ElbowRight, To: HandRight, Length: 0.125},
	{Name: BonePelvis, From: HipCenter, To: HipLeft, Length: 0.0875, IgnorePosition: true},
	{Name: BonePelvis, From: HipCenter, To: HipRight, Length: 0.0875, IgnorePosition: true},
	{Name: BoneLeftHip, From: HipLeft, To: KneeLeft, Length: 0.5},
	{Name: BoneRightHip, From: HipRight, To: KneeRight, Length: 0.5},
	{Name: BoneLeftKnee, From: KneeLeft, To: AnkleLeft, Length: 0.4375},
	{Name: BoneRightKnee, From: KneeRight, To: AnkleRight, Length: 0.4375},
	{Name: BoneLeftAnkle, From: AnkleLeft, To: FootLeft, Length: 0.125, IgnorePosition: true},
	{Name: BoneRightAnkle, From: AnkleRight, To: FootRight, Length: 0.125, IgnorePosition: true},
}

// Validate checks that the table is a topological order of a tree rooted at Root.
func (h *Hierarchy) Validate() error {
	if !h.root.Valid() {
		return &ConfigurationError{Index: -1, Reason: fmt.Sprintf("invalid root joint %s", h.root)}
	}
	if len(h.bones) == 0 {
		return &ConfigurationError{Index: -1, Reason: "no bones"}
	}

	resolved := map[JointID]bool{h.root: true}
	for i, b := range h.bones {
		fail := func(format string, args ...any) error {
			return &ConfigurationError{Index: i, Bone: b.Name, Reason: fmt.Sprintf(format, args...)}
		}
		switch {
		case !b.Name.Known():
			return fail("unknown bone name %q", string(b.Name))
		case !b.From.Valid() || !b.To.Valid():
			return fail("invalid joint %s -> %s", b.From, b.To)
		case !resolved[b.From]:
			return fail("from joint %s is not the root or an earlier to joint", b.From)
		case b.To == h.root:
			return fail("to joint %s is the root", b.To)
		case resolved[b.To]:
			return fail("to joint %s is already computed by an earlier entry", b.To)
		case math.IsNaN(b.Length) || math.IsInf(b.Length, 0) || b.Length < 0:
			return fail("invalid length %v", b.Length)
		}
		resolved[b.To] = true
	}
	return nil
}

// Root returns the joint every chain starts from.
func (h *Hierarchy) Root() JointID { return h.root }

// Bones returns the table in processing order. Callers must not modify it.
func (h *Hierarchy) Bones() []BoneSpec { return h.bones }

// Len returns the number of bones.
func (h *Hierarchy) Len() int { return len(h.bones) }

// Joints returns every joint the table reads from a frame, root first.
func (h *Hierarchy) Joints() []JointID {
	seen := map[JointID]bool{h.root: true}
	out := []JointID{h.root}
	for _, b := range h.bones {
		for _, j := range [2]JointID{b.From, b.To} {
			if !seen[j] {
				seen[j] = true
				out = append(out, j)
			}
		}
	}
	return out
}
