package capture

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fsnotify/fsnotify"

	"mocap-retarget/internal/logging"
	"mocap-retarget/internal/skeleton"
)

// FrameFunc receives each decoded frame. Returning an error stops following.
type FrameFunc func(skeleton.Frame) error

// Follower tails a capture file that another process keeps appending to.
type Follower struct {
	path    string
	file    *os.File
	reader  *bufio.Reader
	partial []byte
	line    int
	watcher *fsnotify.Watcher
	fn      FrameFunc
}

// NewFollower opens path and registers it with a file watcher. The file must exist.
func NewFollower(path string, fn FrameFunc) (*Follower, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("capture: create watcher: %w", err)
	}
	// Watch before the first read so appends in between are not missed.
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, fmt.Errorf("capture: watch %s: %w", path, err)
	}
	f, err := os.Open(path)
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("capture: open %s: %w", path, err)
	}
	return &Follower{
		path:    path,
		file:    f,
		reader:  bufio.NewReader(f),
		watcher: w,
		fn:      fn,
	}, nil
}

// Run delivers the frames already in the file, then every complete line
// appended later, until ctx is done or the file is removed.
func (fl *Follower) Run(ctx context.Context) error {
	defer fl.close()

	if err := fl.drain(); err != nil {
		return err
	}
	for {
		select {
		case e, ok := <-fl.watcher.Events:
			if !ok {
				return nil
			}
			if e.Op&fsnotify.Write != 0 {
				if err := fl.drain(); err != nil {
					return err
				}
			}
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				logging.Warn("capture file went away", "path", fl.path, "op", e.Op.String())
				return fl.finish()
			}

		case err, ok := <-fl.watcher.Errors:
			if !ok {
				return nil
			}
			logging.Error("capture watcher", "path", fl.path, "err", err)

		case <-ctx.Done():
			return fl.finish()
		}
	}
}

// finish reads what is left and reports a trailing line that never got
// its newline. That line is not decoded.
func (fl *Follower) finish() error {
	if err := fl.drain(); err != nil {
		return err
	}
	if len(fl.partial) > 0 {
		logging.Warn("dropping incomplete capture line", "path", fl.path, "line", fl.line+1, "bytes", len(fl.partial))
	}
	return nil
}

// Follow is NewFollower followed by Run.
func Follow(ctx context.Context, path string, fn FrameFunc) error {
	fl, err := NewFollower(path, fn)
	if err != nil {
		return err
	}
	return fl.Run(ctx)
}

// drain reads every complete line currently available. A trailing line
// without a newline is kept until the writer finishes it.
func (fl *Follower) drain() error {
	for {
		chunk, err := fl.reader.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			fl.partial = append(fl.partial, chunk...)
			return nil
		}
		if err != nil {
			return fmt.Errorf("capture: read %s: %w", fl.path, err)
		}
		raw := chunk
		if len(fl.partial) > 0 {
			raw = append(fl.partial, chunk...)
			fl.partial = nil
		}
		fl.line++
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			continue
		}
		f, err := DecodeFrame(raw)
		if err != nil {
			return &DecodeError{Line: fl.line, Err: err}
		}
		if err := fl.fn(f); err != nil {
			return err
		}
	}
}

func (fl *Follower) close() {
	fl.watcher.Close()
	fl.file.Close()
}
