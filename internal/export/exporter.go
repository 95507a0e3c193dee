// Package export buffers rendered frames into numbered segment artifacts,
// rotating at a frame threshold, and finalizes them with a manifest.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"mocap-retarget/internal/logging"
	"mocap-retarget/internal/render"
	"mocap-retarget/internal/retarget"
	"mocap-retarget/internal/skeleton"
)

// State is the exporter lifecycle stage.
type State int

const (
	Idle State = iota
	Accepting
	Finalized
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Accepting:
		return "accepting"
	case Finalized:
		return "finalized"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var nowFunc = time.Now

// Session is the mutable state of one export run. It is created by Prepare
// and never shared with another run.
type Session struct {
	ID            uuid.UUID
	StartedAt     time.Time
	SegmentCount  int
	FrameCount    int
	TotalFrames   int
	DroppedFrames int
	Cache         *retarget.PositionCache
	Tracker       *retarget.RootTracker
}

// SegmentFunc observes each flushed segment's frames.
type SegmentFunc func(index int, frames []retarget.FrameOutput)

// Exporter drives retargeting and segment output for one animation.
// It is not safe for concurrent use.
type Exporter struct {
	cfg      Config
	renderer render.Renderer
	engine   *retarget.Engine

	state    State
	session  *Session
	buf      bytes.Buffer
	frames   []retarget.FrameOutput
	segments []SegmentEntry
	// finalFlushed keeps a retried Finish from writing a second final segment.
	finalFlushed bool

	onSegment SegmentFunc
}

// New validates cfg and h and returns an idle exporter.
func New(cfg Config, r render.Renderer, h *skeleton.Hierarchy) (*Exporter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("export: renderer is required")
	}
	if h == nil {
		return nil, fmt.Errorf("export: hierarchy is required")
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	if nc, ok := r.(render.NameChecker); ok {
		if err := nc.CheckName(cfg.AnimationName); err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
	}
	return &Exporter{
		cfg:      cfg,
		renderer: r,
		engine:   retarget.NewEngine(h, cfg.LengthScale),
	}, nil
}

// OnSegment registers fn to observe each flushed segment.
func (e *Exporter) OnSegment(fn SegmentFunc) {
	e.onSegment = fn
}

func (e *Exporter) State() State { return e.state }

// Session returns the current or last session, nil before the first Prepare.
func (e *Exporter) Session() *Session { return e.session }

// Prepare starts a new session: the output directory is created, counters and
// buffer are reset, and the position cache and root anchor start fresh.
func (e *Exporter) Prepare() error {
	if e.state == Accepting {
		return ErrSessionActive
	}
	dir := e.cfg.OutputDirectory
	if err := os.MkdirAll(dir, outputDirFileMode); err != nil {
		return fmt.Errorf("export: create output directory: %w", err)
	}
	if err := removePrevious(dir); err != nil {
		logging.Warn("could not clean previous export", "dir", dir, "err", err)
	}

	root := e.engine.Hierarchy().Root()
	height := e.cfg.RootHeight
	if height == 0 {
		height = retarget.DefaultRootHeight
	}
	e.session = &Session{
		ID:        uuid.New(),
		StartedAt: nowFunc().UTC(),
		Cache:     retarget.NewCache(root, height),
		Tracker:   retarget.NewRootTracker(root, e.cfg.RootMotionMode, e.cfg.RootMotionScale),
	}
	e.buf.Reset()
	e.frames = nil
	e.segments = nil
	e.finalFlushed = false
	e.state = Accepting

	logging.Debug("export prepared", "session", e.session.ID, "dir", dir, "animation", e.cfg.AnimationName)
	return nil
}

func (e *Exporter) capped() bool {
	return e.cfg.MaxSegments > 0 && e.session.SegmentCount >= e.cfg.MaxSegments
}

func (e *Exporter) rotationDue() bool {
	if e.cfg.LegacyOverflow {
		return e.session.FrameCount > e.cfg.FramesPerSegment
	}
	return e.session.FrameCount >= e.cfg.FramesPerSegment
}

// ApplyFrame retargets f and appends its instructions and delay marker to the
// active segment, flushing the segment once it is full. Frames arriving after
// MaxSegments segments have been flushed are dropped without error. A frame
// missing a joint returns *retarget.MissingJointError and changes nothing.
func (e *Exporter) ApplyFrame(f skeleton.Frame) error {
	if e.state != Accepting {
		return ErrNotAccepting
	}
	s := e.session
	if e.capped() {
		if s.DroppedFrames == 0 {
			logging.Info("segment limit reached, dropping remaining frames", "max_segments", e.cfg.MaxSegments, "frame", f.Index)
		}
		s.DroppedFrames++
		return nil
	}

	if err := e.engine.Check(f); err != nil {
		return err
	}
	root, err := s.Tracker.Track(f)
	if err != nil {
		return err
	}
	bones, err := e.engine.Compute(f, s.Cache)
	if err != nil {
		return err
	}
	out := retarget.FrameOutput{
		Index:  f.Index,
		Root:   root,
		Origin: s.Cache.Get(e.engine.Hierarchy().Root()),
		Bones:  bones,
	}

	var frameBuf bytes.Buffer
	if err := e.renderer.Frame(&frameBuf, out); err != nil {
		return fmt.Errorf("export: render frame %d: %w", f.Index, err)
	}
	if err := e.renderer.Delay(&frameBuf, e.cfg.FrameDelay); err != nil {
		return fmt.Errorf("export: render frame %d: %w", f.Index, err)
	}
	e.buf.Write(frameBuf.Bytes())
	e.frames = append(e.frames, out)
	s.FrameCount++
	s.TotalFrames++

	if e.rotationDue() {
		if err := e.flush(); err != nil {
			return err
		}
	}
	return nil
}

// flush writes the buffer as the next numbered segment and starts a new one.
func (e *Exporter) flush() error {
	s := e.session
	name := e.renderer.SegmentName(s.SegmentCount) + e.renderer.Ext()
	info := render.SegmentInfo{Index: s.SegmentCount, Frames: s.FrameCount}
	body := e.buf.Bytes()

	err := writeArtifact(e.cfg.OutputDirectory, name, func(w io.Writer) error {
		return e.renderer.Segment(w, info, body)
	})
	if err != nil {
		return err
	}

	logging.Debug("segment written", "session", s.ID, "segment", s.SegmentCount, "frames", s.FrameCount, "file", name)
	e.segments = append(e.segments, SegmentEntry{Index: s.SegmentCount, File: name, Frames: s.FrameCount})
	if e.onSegment != nil {
		e.onSegment(s.SegmentCount, e.frames)
	}

	e.buf.Reset()
	e.frames = nil
	s.SegmentCount++
	s.FrameCount = 0
	return nil
}

// Finish flushes whatever is buffered as a final segment, even when empty,
// then writes the entry artifact, renderer support files and the manifest.
// The final flush is skipped only when the segment limit is already reached.
// On error the session stays open so Finish can be retried.
func (e *Exporter) Finish() (*Manifest, error) {
	if e.state != Accepting {
		return nil, ErrNotAccepting
	}
	s := e.session
	if !e.finalFlushed && !e.capped() {
		if err := e.flush(); err != nil {
			return nil, err
		}
	}
	e.finalFlushed = true

	dir := e.cfg.OutputDirectory
	entry := e.cfg.AnimationName + e.renderer.Ext()
	err := writeArtifact(dir, entry, func(w io.Writer) error {
		return e.renderer.Entry(w, render.EntryInfo{AnimationName: e.cfg.AnimationName, SegmentCount: s.SegmentCount})
	})
	if err != nil {
		return nil, err
	}

	var support []string
	if sp, ok := e.renderer.(render.Supporter); ok {
		for _, a := range sp.Support() {
			if err := writeArtifact(dir, a.Name, a.Write); err != nil {
				return nil, err
			}
			support = append(support, a.Name)
		}
	}

	m := &Manifest{
		AnimationName:    e.cfg.AnimationName,
		SegmentCount:     s.SegmentCount,
		FrameCount:       s.TotalFrames,
		DroppedFrames:    s.DroppedFrames,
		FramesPerSegment: e.cfg.FramesPerSegment,
		SessionID:        s.ID.String(),
		CreatedAt:        s.StartedAt,
		Entry:            entry,
		Support:          support,
		Segments:         append([]SegmentEntry{}, e.segments...),
	}
	if err := writeArtifact(dir, ManifestFile, m.write); err != nil {
		return nil, err
	}

	e.state = Finalized
	logging.Info("export finished", "animation", m.AnimationName, "segments", m.SegmentCount,
		"frames", m.FrameCount, "dropped", m.DroppedFrames, "dir", dir)
	return m, nil
}

// Abort ends an unfinished session and removes the segments it already wrote,
// leaving the directory as Prepare found it minus the previous export.
func (e *Exporter) Abort() error {
	if e.state != Accepting {
		return ErrNotAccepting
	}
	var errs []error
	for _, seg := range e.segments {
		if err := os.Remove(filepath.Join(e.cfg.OutputDirectory, seg.File)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	logging.Warn("export aborted", "session", e.session.ID, "removed_segments", len(e.segments))
	e.buf.Reset()
	e.frames = nil
	e.segments = nil
	e.state = Idle
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("export: abort: %w", err)
	}
	return nil
}
