package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/M4dhxv/Financial-Analysis/internal/core"
)

// DefaultMemoryRuns is how many runs a Memory store keeps by default.
const DefaultMemoryRuns = 100

// Memory is a bounded in-process RunStore. When full, the oldest run is
// evicted.
type Memory struct {
	mu    sync.RWMutex
	runs  map[uuid.UUID]*core.Run
	order []uuid.UUID // oldest first
	max   int
}

// NewMemory creates a Memory store holding at most maxRuns runs.
func NewMemory(maxRuns int) *Memory {
	if maxRuns <= 0 {
		maxRuns = DefaultMemoryRuns
	}
	return &Memory{
		runs: make(map[uuid.UUID]*core.Run),
		max:  maxRuns,
	}
}

func (m *Memory) SaveRun(ctx context.Context, run *core.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.runs[run.ID]; !exists {
		m.order = append(m.order, run.ID)
	}
	m.runs[run.ID] = run

	for len(m.order) > m.max {
		delete(m.runs, m.order[0])
		m.order = m.order[1:]
	}
	return nil
}

func (m *Memory) GetRun(ctx context.Context, id uuid.UUID) (*core.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[id]
	if !ok {
		return nil, core.ErrRunNotFound
	}
	return run, nil
}

func (m *Memory) ListRuns(ctx context.Context, limit int) ([]core.RunInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 || limit > len(m.order) {
		limit = len(m.order)
	}
	infos := make([]core.RunInfo, 0, limit)
	for i := len(m.order) - 1; i >= 0 && len(infos) < limit; i-- {
		infos = append(infos, m.runs[m.order[i]].Info())
	}
	return infos, nil
}

// PruneRuns deletes runs created before the cutoff.
func (m *Memory) PruneRuns(ctx context.Context, before time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.order[:0]
	var pruned int64
	for _, id := range m.order {
		if m.runs[id].CreatedAt.Before(before) {
			delete(m.runs, id)
			pruned++
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
	return pruned, nil
}

// Len returns the number of stored runs.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runs)
}
