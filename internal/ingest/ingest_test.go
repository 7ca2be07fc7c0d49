package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camsift/camsift/internal/detection"
	"github.com/camsift/camsift/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadChunkIndex(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	path := writeFile(t, dir, "chunks_index.json", `{
		"chunks": [
			{"chunk_id": "chunk_0000", "start_offset": 0, "duration_seconds": 180, "fps": 30},
			{"chunk_id": "chunk_0001", "start_offset": 180, "duration_seconds": 180, "fps": 30}
		]
	}`)

	chunks, err := LoadChunkIndex(path)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "chunk_0001", chunks[1].ID)
	assert.InDelta(t, 180.0, chunks[1].StartOffset, 1e-9)
}

func TestLoadChunkIndexMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadChunkIndex(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileIO))
}

func TestLoadChunkIndexInvalidFPS(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	path := writeFile(t, dir, "chunks_index.json",
		`{"chunks": [{"chunk_id": "chunk_0000", "duration_seconds": 180, "fps": 0}]}`)

	_, err := LoadChunkIndex(path)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestLoadChunkIndexMissingID(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	path := writeFile(t, dir, "chunks_index.json",
		`{"chunks": [{"duration_seconds": 180, "fps": 30}]}`)

	_, err := LoadChunkIndex(path)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestLoadChunkDetections(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	writeFile(t, dir, "chunk_0000.json", `{
		"chunk_id": "chunk_0000",
		"detections": [
			{"frame_index": 0, "track_id": 1, "confidence": 0.9, "bbox": {"x1": 0, "y1": 0, "x2": 100, "y2": 100}},
			{"frame_index": 1, "track_id": 1, "confidence": 1.7, "bbox": {"x1": 0, "y1": 0, "x2": 100, "y2": 100}},
			{"frame_index": -5, "track_id": 1, "confidence": 0.5, "bbox": {"x1": 0, "y1": 0, "x2": 100, "y2": 100}},
			{"frame_index": 2, "track_id": 2, "confidence": -0.3, "bbox": {"x1": 0, "y1": 0, "x2": 100, "y2": 100}}
		]
	}`)

	dets, err := LoadChunkDetections(dir, "chunk_0000")
	require.NoError(t, err)
	require.Len(t, dets, 3, "negative frame indexes are dropped")

	// Out-of-range confidences are clamped, not rejected.
	assert.InDelta(t, 1.0, dets[1].Confidence, 1e-9)
	assert.InDelta(t, 0.0, dets[2].Confidence, 1e-9)
}

func TestLoadChunkDetectionsMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadChunkDetections(t.TempDir(), "chunk_0404")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryIngest))

	var ee *errors.EnhancedError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "chunk_0404", ee.GetContext()["chunk_id"])
}

func TestLoadChunkDetectionsMalformedJSON(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "chunk_0001.json", `{"detections": [`)

	_, err := LoadChunkDetections(dir, "chunk_0001")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileParsing))
}

func TestSampleFrames(t *testing.T) {
	t.Parallel()

	chunk := detection.Chunk{ID: "chunk_0000", DurationSeconds: 2, FPS: 30}
	dets := []detection.Detection{
		{FrameIndex: 0, TrackID: 2, Confidence: 0.9},
		{FrameIndex: 0, TrackID: 1, Confidence: 0.8},
		{FrameIndex: 15, TrackID: 1, Confidence: 0.7},
		{FrameIndex: 17, TrackID: 1, Confidence: 0.7}, // not on a sampled frame
	}

	samples := SampleFrames(chunk, dets, 15)
	// 60 frames sampled every 15th: frames 0, 15, 30, 45.
	require.Len(t, samples, 4)
	assert.Equal(t, 0, samples[0].FrameIndex)
	assert.Equal(t, 15, samples[1].FrameIndex)
	assert.Equal(t, 45, samples[3].FrameIndex)

	// Detections on a frame are ordered by track id for determinism.
	require.Len(t, samples[0].Detections, 2)
	assert.Equal(t, 1, samples[0].Detections[0].TrackID)
	assert.Equal(t, 2, samples[0].Detections[1].TrackID)

	// Sampled frames without detections are still present.
	assert.Empty(t, samples[2].Detections)
}

func TestSampleFramesEmptyChunk(t *testing.T) {
	t.Parallel()

	assert.Nil(t, SampleFrames(detection.Chunk{FPS: 30}, nil, 15))
}
