package render

import (
	"fmt"
	"io"
	"regexp"
	"text/template"

	"mocap-retarget/internal/retarget"
)

var javaIdentPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var javaPackagePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

const aliceSegmentTemplate = `package {{.Package}};

import org.lgna.story.SBiped;
import org.lgna.story.SBox;
import org.lgna.story.SScene;
import org.lgna.story.SetOpacity;
import org.lgna.story.Move;
import org.lgna.story.MoveTo;
import org.lgna.story.PointAt;
import org.lgna.story.Position;
import org.lgna.story.Roll;
import org.lgna.story.RollDirection;

/**
 * A section of an animation recorded from motion capture.
 */
public class {{.Class}} implements IAnimator {

	SBox box = new SBox();
	SBox root = new SBox();

	public {{.Class}}(SScene scene) {
		box.setName("wand");
		box.setOpacity(0, SetOpacity.duration(0));
		root.setName("root");
		root.setOpacity(0, SetOpacity.duration(0));
		root.setVehicle(scene);
	}

	public void animate(SBiped biped) {
		box.setVehicle(biped);

{{.Body}}	}
}
`

const aliceEntryTemplate = `package {{.Package}};

import java.util.ArrayList;
import java.util.List;
import org.lgna.story.SBiped;
import org.lgna.story.SScene;

/**
 * Plays every segment of a motion-capture animation in order.
 */
public class {{.Class}} implements IAnimator {

	List<IAnimator> animationSegments = new ArrayList<IAnimator>();
	int totalSegments = {{.SegmentCount}};

	public {{.Class}}(SScene scene) throws Exception {
		for (int i = 0; i < totalSegments; i++) {
			Class<?> segmentClass = Class.forName("{{.Package}}.{{.SegmentPrefix}}" + i);
			IAnimator segment = (IAnimator) segmentClass.getConstructor(SScene.class).newInstance(scene);
			animationSegments.add(segment);
		}
	}

	public void animate(SBiped biped) {
		for (IAnimator segment : animationSegments) {
			segment.animate(biped);
		}
	}
}
`

const aliceInterface = `package %s;

import org.lgna.story.SBiped;

/**
 * Common interface for playing animations.
 */
public interface IAnimator {
	void animate(SBiped biped);
}
`

// SegmentPrefix names segment classes: AnimationSegment0, AnimationSegment1, ...
const SegmentPrefix = "AnimationSegment"

var (
	aliceSegmentTmpl = template.Must(template.New("segment").Parse(aliceSegmentTemplate))
	aliceEntryTmpl   = template.Must(template.New("entry").Parse(aliceEntryTemplate))
)

// Alice renders Java statements for an Alice 3 biped. Each bone is animated by
// placing an invisible box at the bone's final position, pointing the bone at
// it, then rolling it.
type Alice struct {
	pkg string
}

// NewAlice returns an Alice renderer for the given Java package.
func NewAlice(pkg string) (*Alice, error) {
	if pkg == "" {
		pkg = DefaultPackage
	}
	if !javaPackagePattern.MatchString(pkg) {
		return nil, fmt.Errorf("render: invalid java package %q", pkg)
	}
	return &Alice{pkg: pkg}, nil
}

func (a *Alice) Ext() string { return ".java" }

func (a *Alice) SegmentName(i int) string { return fmt.Sprintf("%s%d", SegmentPrefix, i) }

// Frame writes the root nudge then the per-bone instructions. Only the
// vertical part of the root displacement is applied.
func (a *Alice) Frame(w io.Writer, f retarget.FrameOutput) error {
	if _, err := fmt.Fprintf(w, "\t\troot.setPositionRelativeToVehicle(new Position(0, %s, 0), Move.duration(0));biped.moveTo(root, MoveTo.duration(0));\n",
		num(f.Root.Y())); err != nil {
		return err
	}
	for _, b := range f.Bones {
		if !b.Emit {
			continue
		}
		p := b.Position
		if _, err := fmt.Fprintf(w, "\t\tbox.setPositionRelativeToVehicle(new Position(%s, %s, %s), Move.duration(0));biped.get%s().pointAt(box, PointAt.duration(0));\n",
			num(p.X()), num(p.Y()), num(p.Z()), b.Bone.Name); err != nil {
			return err
		}
		if b.HasRoll {
			if _, err := fmt.Fprintf(w, "\t\tbiped.get%s().roll(RollDirection.%s, %s, Roll.duration(0));\n",
				b.Bone.Name, b.RollDirection, num(b.Roll)); err != nil {
				return err
			}
		}
		if b.Flip {
			if _, err := fmt.Fprintf(w, "\t\tbiped.get%s().roll(RollDirection.%s, %s, Roll.duration(0));\n",
				b.Bone.Name, retarget.RollLeft, num(retarget.FlipTurns)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *Alice) Delay(w io.Writer, seconds float64) error {
	_, err := fmt.Fprintf(w, "\t\tbox.delay(%s);\n", num(seconds))
	return err
}

func (a *Alice) Segment(w io.Writer, seg SegmentInfo, body []byte) error {
	return aliceSegmentTmpl.Execute(w, struct {
		Package string
		Class   string
		Body    string
	}{Package: a.pkg, Class: a.SegmentName(seg.Index), Body: string(body)})
}

// CheckName rejects animation names that cannot be a Java class name.
func (a *Alice) CheckName(name string) error {
	if !javaIdentPattern.MatchString(name) {
		return fmt.Errorf("render: animation name %q is not a java class name", name)
	}
	return nil
}

func (a *Alice) Entry(w io.Writer, e EntryInfo) error {
	if err := a.CheckName(e.AnimationName); err != nil {
		return err
	}
	return aliceEntryTmpl.Execute(w, struct {
		Package       string
		Class         string
		SegmentCount  int
		SegmentPrefix string
	}{Package: a.pkg, Class: e.AnimationName, SegmentCount: e.SegmentCount, SegmentPrefix: SegmentPrefix})
}

// Support returns the IAnimator interface shared by segments and entry class.
func (a *Alice) Support() []Artifact {
	return []Artifact{{
		Name: "IAnimator.java",
		Write: func(w io.Writer) error {
			_, err := fmt.Fprintf(w, aliceInterface, a.pkg)
			return err
		},
	}}
}
