// Package pipeline runs marker pose recovery over a stream of frames: it filters each frame's
// ellipses down to marker candidates, recovers the poses of every candidate in parallel, and
// keeps counters and accuracy statistics for the run.
package pipeline

import (
	"context"
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/joristork/milovision/vision/circlepose"
)

// Frame is the output of the ellipse detector for one image.
type Frame struct {
	ID         string                  `json:"id"`
	Detections []circlepose.RawEllipse `json:"detections"`
	// Truth is the pose of the marker in view, when known.
	Truth *circlepose.Pose `json:"truth,omitempty"`
}

// A FrameSource yields frames. NextFrame returns io.EOF once no frames are left.
type FrameSource interface {
	NextFrame(ctx context.Context) (Frame, error)
}

// JSONSource reads frames from a stream of JSON objects.
type JSONSource struct {
	dec *json.Decoder
	n   int
}

// NewJSONSource returns a FrameSource decoding consecutive Frame objects from r.
func NewJSONSource(r io.Reader) *JSONSource {
	return &JSONSource{dec: json.NewDecoder(r)}
}

// NextFrame decodes the next frame.
func (s *JSONSource) NextFrame(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	var f Frame
	if err := s.dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return Frame{}, io.EOF
		}
		return Frame{}, errors.Wrapf(err, "error decoding frame %d", s.n)
	}
	s.n++
	return f, nil
}
