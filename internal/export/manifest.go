package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// ManifestFile is the manifest artifact name inside the output directory.
const ManifestFile = "manifest.json"

// SegmentEntry represents one segment artifact in the manifest.
type SegmentEntry struct {
	Index  int    `json:"index"`
	File   string `json:"file"`
	Frames int    `json:"frames"`
}

// Manifest records what an export produced. A downstream build step reads it
// to assemble the segments.
type Manifest struct {
	AnimationName    string         `json:"animation_name"`
	SegmentCount     int            `json:"segment_count"`
	FrameCount       int            `json:"frame_count"`
	DroppedFrames    int            `json:"dropped_frames"`
	FramesPerSegment int            `json:"frames_per_segment"`
	SessionID        string         `json:"session_id"`
	CreatedAt        time.Time      `json:"created_at"`
	Entry            string         `json:"entry"`
	Support          []string       `json:"support,omitempty"`
	Segments         []SegmentEntry `json:"segments"`
}

// Files lists every artifact the manifest names, manifest excluded.
func (m *Manifest) Files() []string {
	files := make([]string, 0, len(m.Segments)+len(m.Support)+1)
	for _, s := range m.Segments {
		files = append(files, s.File)
	}
	if m.Entry != "" {
		files = append(files, m.Entry)
	}
	return append(files, m.Support...)
}

func (m *Manifest) write(w io.Writer) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// ReadManifest loads manifest.json from dir.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("export: read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("export: parse manifest: %w", err)
	}
	return &m, nil
}

// removePrevious deletes the artifacts of an earlier export into dir so a
// shorter export does not leave stale segments behind.
func removePrevious(dir string) error {
	m, err := ReadManifest(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, name := range append(m.Files(), ManifestFile) {
		if filepath.Base(name) != name {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("export: remove stale %s: %w", name, err)
		}
	}
	return nil
}
