// Package capture reads skeleton frames from JSON-lines capture files.
//
// Each line is one frame:
//
//	{"index":0,"timestamp":0.033,"joints":{"HipCenter":{"position":[0,1,2]},
//	 "ShoulderCenter":{"position":[0,1.5,2],"orientation":[0,0.1,0,0.99]}}}
//
// Joint names are the canonical skeleton names. Orientation is optional and
// given as (x, y, z, w).
package capture

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"mocap-retarget/internal/mathutil"
	"mocap-retarget/internal/skeleton"
)

// DecodeError reports a malformed line.
type DecodeError struct {
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("capture: line %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type frameRecord struct {
	Index     int                    `json:"index"`
	Timestamp float64                `json:"timestamp"`
	Joints    map[string]jointRecord `json:"joints"`
}

type jointRecord struct {
	Position    [3]float64  `json:"position"`
	Orientation *[4]float64 `json:"orientation,omitempty"`
}

// DecodeFrame parses a single JSON frame record.
func DecodeFrame(data []byte) (skeleton.Frame, error) {
	var rec frameRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return skeleton.Frame{}, err
	}
	f := skeleton.NewFrame(rec.Index)
	f.Timestamp = time.Duration(rec.Timestamp * float64(time.Second))
	for name, jr := range rec.Joints {
		id, err := skeleton.ParseJointID(name)
		if err != nil {
			return skeleton.Frame{}, err
		}
		s := skeleton.JointState{Position: mathutil.Vec3(jr.Position)}
		if jr.Orientation != nil {
			s.Orientation = mathutil.Quat(*jr.Orientation)
			s.HasOrientation = true
		}
		f.Joints[id] = s
	}
	return f, nil
}

// EncodeFrame renders f as one JSON line including the trailing newline.
func EncodeFrame(f skeleton.Frame) ([]byte, error) {
	rec := frameRecord{
		Index:     f.Index,
		Timestamp: f.Timestamp.Seconds(),
		Joints:    make(map[string]jointRecord, len(f.Joints)),
	}
	for id, s := range f.Joints {
		jr := jointRecord{Position: [3]float64(s.Position)}
		if s.HasOrientation {
			q := [4]float64(s.Orientation)
			jr.Orientation = &q
		}
		rec.Joints[id.String()] = jr
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Decoder reads frames line by line. Blank lines are skipped.
type Decoder struct {
	r    *bufio.Reader
	line int
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next returns the next frame, or io.EOF once the input is exhausted.
func (d *Decoder) Next() (skeleton.Frame, error) {
	for {
		raw, err := d.r.ReadBytes('\n')
		if len(raw) == 0 && err != nil {
			return skeleton.Frame{}, err
		}
		d.line++
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			if err != nil {
				return skeleton.Frame{}, err
			}
			continue
		}
		f, derr := DecodeFrame(raw)
		if derr != nil {
			return skeleton.Frame{}, &DecodeError{Line: d.line, Err: derr}
		}
		return f, nil
	}
}

// ReadAll decodes every frame in r.
func ReadAll(r io.Reader) ([]skeleton.Frame, error) {
	dec := NewDecoder(r)
	var frames []skeleton.Frame
	for {
		f, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, f)
	}
}

// WriteAll encodes frames to w, one per line.
func WriteAll(w io.Writer, frames []skeleton.Frame) error {
	bw := bufio.NewWriter(w)
	for _, f := range frames {
		data, err := EncodeFrame(f)
		if err != nil {
			return err
		}
		if _, err := bw.Write(data); err != nil {
			return err
		}
	}
	return bw.Flush()
}
