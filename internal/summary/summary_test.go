package summary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camsift/camsift/internal/conf"
	"github.com/camsift/camsift/internal/detection"
	"github.com/camsift/camsift/internal/event"
	"github.com/camsift/camsift/internal/filter"
)

func TestBucketFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		duration float64
		want     string
	}{
		{0.5, "<1s"},
		{0.999, "<1s"},
		{1.0, "1-5s"},
		{4.9, "1-5s"},
		{5.0, "5-15s"},
		{14.9, "5-15s"},
		{15.0, "15-30s"},
		{29.9, "15-30s"},
		{30.0, ">30s"},
		{120.0, ">30s"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, BucketFor(tc.duration), "duration %v", tc.duration)
	}
}

func TestNewDurationHistogramCoversAllBuckets(t *testing.T) {
	t.Parallel()

	h := NewDurationHistogram()
	require.Len(t, h, 5)
	for _, b := range []string{"<1s", "1-5s", "5-15s", "15-30s", ">30s"} {
		count, ok := h[b]
		assert.True(t, ok, "missing bucket %s", b)
		assert.Zero(t, count)
	}
}

func TestEventsSummaryRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sum := &EventsSummary{
		Statistics: RunStats{
			TotalChunks:      3,
			ActiveChunks:     2,
			InactiveChunks:   1,
			TotalEvents:      1,
			EventsByDuration: NewDurationHistogram(),
		},
		Events: []event.Event{
			{
				EventID:        "test-event",
				ChunkID:        "chunk_0001",
				TrackID:        7,
				StartFrame:     0,
				EndFrame:       30,
				DurationSeconds: 1.0,
				DetectionCount: 31,
			},
		},
		DetectorConfig: conf.EventDetectorSettings{MinTrackLength: 15},
	}
	sum.Statistics.EventsByDuration["1-5s"] = 1

	require.NoError(t, WriteEventsSummary(dir, sum))

	loaded, err := LoadEventsSummary(filepath.Join(dir, EventsSummaryFile))
	require.NoError(t, err)
	assert.Equal(t, sum.Statistics, loaded.Statistics)
	require.Len(t, loaded.Events, 1)
	assert.Equal(t, "chunk_0001", loaded.Events[0].ChunkID)
	assert.Equal(t, 15, loaded.DetectorConfig.MinTrackLength)
}

func TestActivityReportRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	report := &ActivityReport{
		Statistics: RunStats{TotalChunks: 1, ActiveChunks: 1},
		ActiveChunks: []ChunkActivity{
			{
				Chunk: detection.Chunk{ID: "chunk_0001", FPS: 30, DurationSeconds: 60},
				Activity: filter.Result{
					Active:        true,
					ActiveFrames:  42,
					SampledFrames: 120,
					ActivityScore: 0.35,
				},
			},
		},
	}

	require.NoError(t, WriteActivityReport(dir, report))

	loaded, err := LoadActivityReport(filepath.Join(dir, ActivityReportFile))
	require.NoError(t, err)
	require.Len(t, loaded.ActiveChunks, 1)
	assert.Equal(t, "chunk_0001", loaded.ActiveChunks[0].Chunk.ID)
	assert.True(t, loaded.ActiveChunks[0].Activity.Active)
	assert.InDelta(t, 0.35, loaded.ActiveChunks[0].Activity.ActivityScore, 1e-9)
}

func TestWriteCreatesOutputDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "output")
	require.NoError(t, WriteEventsSummary(dir, &EventsSummary{}))

	_, err := os.Stat(filepath.Join(dir, EventsSummaryFile))
	require.NoError(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadEventsSummary(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadProposals(path)
	require.Error(t, err)
}
