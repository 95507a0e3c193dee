// Package recorder keeps captured frames in order and drives previews and
// exports over them.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"mocap-retarget/internal/export"
	"mocap-retarget/internal/logging"
	"mocap-retarget/internal/render"
	"mocap-retarget/internal/retarget"
	"mocap-retarget/internal/skeleton"
)

var (
	ErrEmpty = errors.New("recorder: no frames captured")
	ErrRange = errors.New("recorder: frame range out of bounds")
)

// Recorder is an append-only frame sequence with a looping playback cursor.
// Capture may be called from another goroutine than playback and export.
type Recorder struct {
	mu     sync.RWMutex
	frames []skeleton.Frame
	cursor int

	cfg       export.Config
	renderer  render.Renderer
	hierarchy *skeleton.Hierarchy

	// SkipInvalid makes Export drop frames with missing joints instead of
	// aborting.
	SkipInvalid bool
	onSegment   export.SegmentFunc
}

// New returns an empty recorder whose exports use cfg, r and h.
func New(cfg export.Config, r render.Renderer, h *skeleton.Hierarchy) *Recorder {
	return &Recorder{cfg: cfg, renderer: r, hierarchy: h, cursor: -1}
}

// Capture appends f.
func (r *Recorder) Capture(f skeleton.Frame) {
	r.mu.Lock()
	r.frames = append(r.frames, f)
	r.mu.Unlock()
}

// Clear drops every frame and rewinds playback.
func (r *Recorder) Clear() {
	r.mu.Lock()
	r.frames = nil
	r.cursor = -1
	r.mu.Unlock()
}

// Len returns the number of captured frames.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.frames)
}

// Frames returns a copy of the captured sequence.
func (r *Recorder) Frames() []skeleton.Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]skeleton.Frame(nil), r.frames...)
}

// Next returns the next playback frame in [start, end], wrapping back to start
// after end. A negative end means the last captured frame.
func (r *Recorder) Next(start, end int) (skeleton.Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.frames)
	if n == 0 {
		return skeleton.Frame{}, ErrEmpty
	}
	if end < 0 {
		end = n - 1
	}
	if start < 0 || start > end || end >= n {
		return skeleton.Frame{}, fmt.Errorf("%w: playback [%d, %d] of %d frames", ErrRange, start, end, n)
	}

	span := end - start + 1
	r.cursor = (r.cursor + 1) % span
	return r.frames[start+r.cursor], nil
}

// ConfigureOutput points exports at a single path: its directory becomes the
// output directory and its file stem, when present, the animation name.
func (r *Recorder) ConfigureOutput(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	base := filepath.Base(path)
	if name := strings.TrimSuffix(base, filepath.Ext(base)); strings.TrimSpace(name) != "" && name != "." && name != string(filepath.Separator) {
		r.cfg.AnimationName = name
	}
	r.cfg.OutputDirectory = filepath.Dir(path)
}

// Config returns the export configuration.
func (r *Recorder) Config() export.Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg
}

// OnSegment forwards every flushed segment of later exports to fn.
func (r *Recorder) OnSegment(fn export.SegmentFunc) {
	r.onSegment = fn
}

// Export writes the frames in [start, end) as a new animation. A negative end
// means every frame from start. An empty recording writes nothing and returns
// a nil manifest. If ctx is cancelled between frames, the export is still
// finished so buffered frames reach disk, and ctx's error is returned along
// with the manifest.
func (r *Recorder) Export(ctx context.Context, start, end int) (*export.Manifest, error) {
	r.mu.RLock()
	frames := r.frames
	cfg := r.cfg
	r.mu.RUnlock()

	if len(frames) == 0 {
		logging.Warn("nothing to export, recording is empty")
		return nil, nil
	}
	if end < 0 {
		end = len(frames)
	}
	if start < 0 || start > end || end > len(frames) {
		return nil, fmt.Errorf("%w: export [%d, %d) of %d frames", ErrRange, start, end, len(frames))
	}

	exp, err := export.New(cfg, r.renderer, r.hierarchy)
	if err != nil {
		return nil, err
	}
	if r.onSegment != nil {
		exp.OnSegment(r.onSegment)
	}
	if err := exp.Prepare(); err != nil {
		return nil, err
	}

	var cancelled error
	for _, f := range frames[start:end] {
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}
		if err := exp.ApplyFrame(f); err != nil {
			var missing *retarget.MissingJointError
			if r.SkipInvalid && errors.As(err, &missing) {
				logging.Warn("skipping incomplete frame", "frame", missing.Frame, "joint", missing.Joint)
				continue
			}
			if abortErr := exp.Abort(); abortErr != nil {
				logging.Warn("could not remove partial export", "err", abortErr)
			}
			return nil, fmt.Errorf("recorder: export frame %d: %w", f.Index, err)
		}
	}

	m, err := exp.Finish()
	if err != nil {
		return nil, err
	}
	return m, cancelled
}
