// Package detection defines the data model shared by all filtering stages:
// detector/tracker observations, chunk descriptors and the per-detection
// quality gate.
package detection

import "math"

// BBox is an axis-aligned bounding box in pixel coordinates, (X1,Y1) top-left
// and (X2,Y2) bottom-right.
type BBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Width returns the box width. Malformed boxes (X2 < X1) yield a negative
// width, which downstream gates treat as degenerate.
func (b BBox) Width() float64 {
	return b.X2 - b.X1
}

// Height returns the box height, negative for malformed boxes.
func (b BBox) Height() float64 {
	return b.Y2 - b.Y1
}

// Area returns width*height. Degenerate boxes produce a non-positive area
// and can never pass an area gate with a positive minimum.
func (b BBox) Area() float64 {
	return b.Width() * b.Height()
}

// AspectRatio returns height/width. A zero or negative width forces the
// ratio to 0 so degenerate boxes always fail the aspect-ratio gate.
func (b BBox) AspectRatio() float64 {
	w := b.Width()
	if w <= 0 {
		return 0
	}
	return b.Height() / w
}

// Center returns the box center point.
func (b BBox) Center() (x, y float64) {
	return (b.X1 + b.X2) / 2, (b.Y1 + b.Y2) / 2
}

// CenterDistance returns the euclidean distance between the centers of two
// boxes, used for track movement estimation.
func (b BBox) CenterDistance(other BBox) float64 {
	x1, y1 := b.Center()
	x2, y2 := other.Center()
	return math.Hypot(x2-x1, y2-y1)
}

// Detection is a single tracker observation: one bounding box with a
// confidence score and a track identity at one frame. Detections are value
// types and are never mutated after ingest.
type Detection struct {
	FrameIndex int     `json:"frame_index"`
	TrackID    int     `json:"track_id"`
	Confidence float64 `json:"confidence"`
	BBox       BBox    `json:"bbox"`
}

// Chunk describes one fixed-length video segment as produced by the
// external splitter. The core consumes chunks read-only; FPS is required to
// convert frame spans into durations.
type Chunk struct {
	ID              string  `json:"chunk_id"`
	StartOffset     float64 `json:"start_offset"`
	DurationSeconds float64 `json:"duration_seconds"`
	FPS             float64 `json:"fps"`
}

// FrameSample is one sampled frame with its detections, the unit consumed
// by the activity filter. How frames are sampled is the caller's concern.
type FrameSample struct {
	FrameIndex int         `json:"frame_index"`
	Detections []Detection `json:"detections"`
}
