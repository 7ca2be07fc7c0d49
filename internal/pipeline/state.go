package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/camsift/camsift/internal/errors"
)

// Pipeline stages tracked by the state file.
const (
	StageActivity = "activity_filter"
	StageEvents   = "event_detection"
	StageLabeling = "labeling"
)

// chunkState records which stages completed for a chunk.
type chunkState struct {
	Completed map[string]string `json:"completed"` // stage -> RFC3339 completion time
}

// stateFile is the on-disk layout.
type stateFile struct {
	Version   int                   `json:"version"`
	UpdatedAt string                `json:"updated_at"`
	Chunks    map[string]chunkState `json:"chunks"`
}

// StateManager persists per-chunk stage completion so interrupted runs can
// resume without redoing finished chunks. Safe for concurrent use.
type StateManager struct {
	mu    sync.Mutex
	path  string
	state stateFile
}

// NewStateManager loads state from path, starting empty when the file does
// not exist yet. A path of "" disables persistence; completions are then
// tracked in memory only.
func NewStateManager(path string) (*StateManager, error) {
	sm := &StateManager{
		path: path,
		state: stateFile{
			Version: 1,
			Chunks:  make(map[string]chunkState),
		},
	}
	if path == "" {
		return sm, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return sm, nil
	}
	if err != nil {
		return nil, errors.New(fmt.Errorf("reading state file: %w", err)).
			Component("pipeline").
			Category(errors.CategoryState).
			FileContext(path).
			Build()
	}
	if err := json.Unmarshal(data, &sm.state); err != nil {
		return nil, errors.New(fmt.Errorf("parsing state file: %w", err)).
			Component("pipeline").
			Category(errors.CategoryState).
			FileContext(path).
			Build()
	}
	if sm.state.Chunks == nil {
		sm.state.Chunks = make(map[string]chunkState)
	}
	return sm, nil
}

// IsCompleted reports whether the stage already completed for the chunk.
func (sm *StateManager) IsCompleted(chunkID, stage string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	cs, ok := sm.state.Chunks[chunkID]
	if !ok {
		return false
	}
	_, done := cs.Completed[stage]
	return done
}

// MarkCompleted records stage completion for the chunk and flushes the state
// file.
func (sm *StateManager) MarkCompleted(chunkID, stage string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	cs, ok := sm.state.Chunks[chunkID]
	if !ok {
		cs = chunkState{Completed: make(map[string]string)}
	}
	cs.Completed[stage] = time.Now().UTC().Format(time.RFC3339)
	sm.state.Chunks[chunkID] = cs

	return sm.flushLocked()
}

// CompletedCount returns how many chunks completed the given stage.
func (sm *StateManager) CompletedCount(stage string) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	n := 0
	for _, cs := range sm.state.Chunks {
		if _, done := cs.Completed[stage]; done {
			n++
		}
	}
	return n
}

// Reset clears all recorded state and removes the state file.
func (sm *StateManager) Reset() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.state.Chunks = make(map[string]chunkState)
	if sm.path == "" {
		return nil
	}
	if err := os.Remove(sm.path); err != nil && !os.IsNotExist(err) {
		return errors.New(fmt.Errorf("removing state file: %w", err)).
			Component("pipeline").
			Category(errors.CategoryState).
			FileContext(sm.path).
			Build()
	}
	return nil
}

// flushLocked writes the state file atomically. Caller holds mu.
func (sm *StateManager) flushLocked() error {
	if sm.path == "" {
		return nil
	}

	sm.state.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(&sm.state, "", "  ")
	if err != nil {
		return errors.New(fmt.Errorf("marshaling state: %w", err)).
			Component("pipeline").
			Category(errors.CategoryState).
			FileContext(sm.path).
			Build()
	}

	if err := os.MkdirAll(filepath.Dir(sm.path), 0o755); err != nil {
		return errors.New(fmt.Errorf("creating state directory: %w", err)).
			Component("pipeline").
			Category(errors.CategoryState).
			FileContext(sm.path).
			Build()
	}

	tmp := sm.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.New(fmt.Errorf("writing state file: %w", err)).
			Component("pipeline").
			Category(errors.CategoryState).
			FileContext(sm.path).
			Build()
	}
	if err := os.Rename(tmp, sm.path); err != nil {
		return errors.New(fmt.Errorf("replacing state file: %w", err)).
			Component("pipeline").
			Category(errors.CategoryState).
			FileContext(sm.path).
			Build()
	}
	return nil
}
