package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camsift/camsift/internal/detection"
	"github.com/camsift/camsift/internal/segment"
)

func testChunk() detection.Chunk {
	return detection.Chunk{ID: "chunk_0042", DurationSeconds: 180, FPS: 30}
}

func testSubTrack() segment.SubTrack {
	dets := []detection.Detection{
		{FrameIndex: 60, TrackID: 7, Confidence: 0.6, BBox: detection.BBox{X2: 100, Y2: 100}},
		{FrameIndex: 61, TrackID: 7, Confidence: 0.9, BBox: detection.BBox{X1: 10, X2: 110, Y2: 100}},
		{FrameIndex: 62, TrackID: 7, Confidence: 0.8, BBox: detection.BBox{X1: 20, X2: 120, Y2: 100}},
		{FrameIndex: 63, TrackID: 7, Confidence: 0.7, BBox: detection.BBox{X1: 30, X2: 130, Y2: 100}},
		{FrameIndex: 90, TrackID: 7, Confidence: 0.75, BBox: detection.BBox{X1: 40, X2: 140, Y2: 100}},
	}
	return segment.SubTrack{
		TrackID:         7,
		Detections:      dets,
		DurationSeconds: 1.0,
		MeanConfidence:  0.75,
		Movement:        40.0,
	}
}

func TestAssembleAggregates(t *testing.T) {
	t.Parallel()
	a := NewAssembler()

	ev := a.Assemble(testChunk(), testSubTrack())

	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, "chunk_0042", ev.ChunkID)
	assert.Equal(t, 7, ev.TrackID)
	assert.Equal(t, 60, ev.StartFrame)
	assert.Equal(t, 90, ev.EndFrame)
	assert.InDelta(t, 2.0, ev.StartTime, 1e-9)
	assert.InDelta(t, 3.0, ev.EndTime, 1e-9)
	assert.InDelta(t, 1.0, ev.DurationSeconds, 1e-9)
	assert.Equal(t, 5, ev.DetectionCount)
	assert.InDelta(t, 0.75, ev.MeanConfidence, 1e-9)
	assert.InDelta(t, 0.6, ev.MinConfidence, 1e-9)
	assert.InDelta(t, 0.9, ev.MaxConfidence, 1e-9)
	assert.InDelta(t, 40.0, ev.Movement, 1e-9)
}

func TestAssembleRepresentativeBBoxes(t *testing.T) {
	t.Parallel()
	a := NewAssembler()

	sub := testSubTrack()
	ev := a.Assemble(testChunk(), sub)

	require.Len(t, ev.RepresentativeBBoxes, 3)
	assert.Equal(t, sub.Detections[0].BBox, ev.RepresentativeBBoxes[0])
	assert.Equal(t, sub.Detections[2].BBox, ev.RepresentativeBBoxes[1])
	assert.Equal(t, sub.Detections[4].BBox, ev.RepresentativeBBoxes[2])
}

func TestAssembleSingleDetectionSubTrack(t *testing.T) {
	t.Parallel()
	a := NewAssembler()

	sub := segment.SubTrack{
		TrackID: 2,
		Detections: []detection.Detection{
			{FrameIndex: 10, TrackID: 2, Confidence: 0.8, BBox: detection.BBox{X2: 100, Y2: 100}},
		},
		MeanConfidence: 0.8,
	}
	ev := a.Assemble(testChunk(), sub)

	assert.Equal(t, 10, ev.StartFrame)
	assert.Equal(t, 10, ev.EndFrame)
	assert.Equal(t, 1, ev.DetectionCount)
	require.Len(t, ev.RepresentativeBBoxes, 3)
	// With one survivor, first, middle and last coincide.
	assert.Equal(t, ev.RepresentativeBBoxes[0], ev.RepresentativeBBoxes[1])
	assert.Equal(t, ev.RepresentativeBBoxes[0], ev.RepresentativeBBoxes[2])
}

func TestEventIDsUnique(t *testing.T) {
	t.Parallel()
	a := NewAssembler()

	seen := make(map[string]bool)
	for range 100 {
		ev := a.Assemble(testChunk(), testSubTrack())
		assert.False(t, seen[ev.EventID], "duplicate event id %s", ev.EventID)
		seen[ev.EventID] = true
	}
}

func TestAssembleAll(t *testing.T) {
	t.Parallel()
	a := NewAssembler()

	assert.Nil(t, a.AssembleAll(testChunk(), nil))

	events := a.AssembleAll(testChunk(), []segment.SubTrack{testSubTrack(), testSubTrack()})
	assert.Len(t, events, 2)
	assert.NotEqual(t, events[0].EventID, events[1].EventID)
}
