// Package render turns retargeted frames into the textual instruction format
// of a downstream consumer.
package render

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"mocap-retarget/internal/retarget"
)

// SegmentInfo describes one segment artifact being wrapped.
type SegmentInfo struct {
	Index  int
	Frames int
}

// EntryInfo describes the entry-point artifact that ties segments together.
type EntryInfo struct {
	AnimationName string
	SegmentCount  int
}

// Renderer produces instruction text. Implementations must be deterministic.
type Renderer interface {
	// Ext is the artifact file extension, including the dot.
	Ext() string
	// SegmentName is the artifact base name for segment i.
	SegmentName(i int) string
	Frame(w io.Writer, f retarget.FrameOutput) error
	Delay(w io.Writer, seconds float64) error
	Segment(w io.Writer, seg SegmentInfo, body []byte) error
	Entry(w io.Writer, e EntryInfo) error
}

// Artifact is an extra file a renderer needs next to its segments.
type Artifact struct {
	Name  string
	Write func(w io.Writer) error
}

// Supporter is implemented by renderers that ship fixed support files.
type Supporter interface {
	Support() []Artifact
}

// NameChecker is implemented by renderers that restrict animation names.
// Exporters call it before accepting any frame.
type NameChecker interface {
	CheckName(name string) error
}

// Options configure the built-in renderers.
type Options struct {
	// Package is the Java package of generated Alice classes.
	Package string
}

const DefaultPackage = "edu.calvin.cs.alicekinect"

// New returns the renderer registered under name ("alice" or "text").
func New(name string, opts Options) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "alice":
		return NewAlice(opts.Package)
	case "text":
		return Text{}, nil
	default:
		return nil, fmt.Errorf("render: unknown renderer %q", name)
	}
}

// num formats v with fixed precision. Values that would print as -0.000000
// print as zero.
func num(v float64) string {
	if math.Abs(v) < 5e-7 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}
