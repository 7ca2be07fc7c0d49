// Package ingest loads external detector/tracker output: the chunk index
// produced by the video splitter and one detections file per chunk. The
// pipeline consumes these read-only.
package ingest

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/camsift/camsift/internal/detection"
	"github.com/camsift/camsift/internal/errors"
)

// chunkIndex is the on-disk shape of the splitter's index file.
type chunkIndex struct {
	Chunks []detection.Chunk `json:"chunks"`
}

// chunkDetections is the on-disk shape of one chunk's detector output.
type chunkDetections struct {
	ChunkID    string                `json:"chunk_id"`
	Detections []detection.Detection `json:"detections"`
}

// LoadChunkIndex reads the chunk index JSON. Chunks with a non-positive fps
// cannot be converted to durations and are rejected here, at load time.
func LoadChunkIndex(path string) ([]detection.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(fmt.Errorf("reading chunk index: %w", err)).
			Component("ingest").
			Category(errors.CategoryFileIO).
			FileContext(path).
			Build()
	}

	var index chunkIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, errors.New(fmt.Errorf("parsing chunk index: %w", err)).
			Component("ingest").
			Category(errors.CategoryFileParsing).
			FileContext(path).
			Build()
	}

	for i := range index.Chunks {
		c := &index.Chunks[i]
		if c.ID == "" {
			return nil, errors.Newf("chunk index entry %d has no chunk_id", i).
				Component("ingest").
				Category(errors.CategoryValidation).
				FileContext(path).
				Build()
		}
		if c.FPS <= 0 {
			return nil, errors.Newf("chunk %s has invalid fps %v", c.ID, c.FPS).
				Component("ingest").
				Category(errors.CategoryValidation).
				ChunkContext(c.ID).
				Build()
		}
	}

	return index.Chunks, nil
}

// LoadChunkDetections reads one chunk's detections file from dir. A missing
// file is reported so the caller can degrade that chunk to zero events; it
// never aborts sibling chunks. Detections are normalized, not rejected:
// confidence is clamped to [0,1] and negative frame indexes are dropped.
func LoadChunkDetections(dir, chunkID string) ([]detection.Detection, error) {
	path := filepath.Join(dir, chunkID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(fmt.Errorf("reading detections for chunk %s: %w", chunkID, err)).
			Component("ingest").
			Category(errors.CategoryIngest).
			ChunkContext(chunkID).
			FileContext(path).
			Build()
	}

	var payload chunkDetections
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, errors.New(fmt.Errorf("parsing detections for chunk %s: %w", chunkID, err)).
			Component("ingest").
			Category(errors.CategoryFileParsing).
			ChunkContext(chunkID).
			FileContext(path).
			Build()
	}

	dets := make([]detection.Detection, 0, len(payload.Detections))
	for _, det := range payload.Detections {
		if det.FrameIndex < 0 {
			continue
		}
		det.Confidence = clampConfidence(det.Confidence)
		dets = append(dets, det)
	}
	return dets, nil
}

// clampConfidence normalizes out-of-range confidence scores instead of
// treating them as errors.
func clampConfidence(c float64) float64 {
	switch {
	case math.IsNaN(c), c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}

// SampleFrames builds the activity-filter input: every sampleRate-th frame
// of the chunk with whatever detections landed on it, including frames with
// none. The frame count is derived from the chunk duration and fps.
func SampleFrames(chunk detection.Chunk, dets []detection.Detection, sampleRate int) []detection.FrameSample {
	if sampleRate < 1 {
		sampleRate = 1
	}

	totalFrames := int(math.Round(chunk.FPS * chunk.DurationSeconds))
	if totalFrames < 1 {
		return nil
	}

	byFrame := make(map[int][]detection.Detection)
	for _, det := range dets {
		byFrame[det.FrameIndex] = append(byFrame[det.FrameIndex], det)
	}

	samples := make([]detection.FrameSample, 0, totalFrames/sampleRate+1)
	for f := 0; f < totalFrames; f += sampleRate {
		frameDets := byFrame[f]
		sort.SliceStable(frameDets, func(i, j int) bool {
			return frameDets[i].TrackID < frameDets[j].TrackID
		})
		samples = append(samples, detection.FrameSample{
			FrameIndex: f,
			Detections: frameDets,
		})
	}
	return samples
}
