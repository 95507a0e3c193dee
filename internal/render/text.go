package render

import (
	"fmt"
	"io"

	"mocap-retarget/internal/retarget"
)

// Text is a line-oriented renderer, one instruction per line. It is used for
// inspection and as a stable format for tests.
type Text struct{}

func (Text) Ext() string { return ".txt" }

func (Text) SegmentName(i int) string { return fmt.Sprintf("segment%d", i) }

func (Text) Frame(w io.Writer, f retarget.FrameOutput) error {
	if _, err := fmt.Fprintf(w, "frame %d root %s %s %s\n", f.Index, num(f.Root.X()), num(f.Root.Y()), num(f.Root.Z())); err != nil {
		return err
	}
	for _, b := range f.Bones {
		if !b.Emit {
			continue
		}
		roll := "none"
		if b.HasRoll {
			roll = num(b.Roll) + " " + b.RollDirection.String()
		}
		if _, err := fmt.Fprintf(w, "bone %s %s %s %s roll %s flip %t\n",
			b.Bone.Name, num(b.Position.X()), num(b.Position.Y()), num(b.Position.Z()), roll, b.Flip); err != nil {
			return err
		}
	}
	return nil
}

func (Text) Delay(w io.Writer, seconds float64) error {
	_, err := fmt.Fprintf(w, "delay %s\n", num(seconds))
	return err
}

func (Text) Segment(w io.Writer, seg SegmentInfo, body []byte) error {
	if _, err := fmt.Fprintf(w, "# segment %d frames %d\n", seg.Index, seg.Frames); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}

func (Text) Entry(w io.Writer, e EntryInfo) error {
	_, err := fmt.Fprintf(w, "# animation %s\nsegments %d\n", e.AnimationName, e.SegmentCount)
	return err
}
