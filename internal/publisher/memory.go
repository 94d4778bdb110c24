package publisher

import (
	"context"
	"fmt"
	"sync"
)

// MemoryDestination keeps surfaces in memory. Used for dry runs and tests.
type MemoryDestination struct {
	mu       sync.Mutex
	surfaces map[string]*memorySurface
	calls    []string
}

type memorySurface struct {
	rows, cols int
	cells      [][]string
}

// NewMemoryDestination creates an empty in-memory destination
func NewMemoryDestination() *MemoryDestination {
	return &MemoryDestination{surfaces: make(map[string]*memorySurface)}
}

// Name implements Destination.
func (m *MemoryDestination) Name() string { return "memory" }

// Exists implements Destination.
func (m *MemoryDestination) Exists(_ context.Context, surface string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "exists")
	_, ok := m.surfaces[surface]
	return ok, nil
}

// Create implements Destination.
func (m *MemoryDestination) Create(_ context.Context, surface string, rows, cols int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "create")
	if _, ok := m.surfaces[surface]; ok {
		return fmt.Errorf("surface %q already exists", surface)
	}
	m.surfaces[surface] = &memorySurface{rows: rows, cols: cols}
	return nil
}

// Clear implements Destination.
func (m *MemoryDestination) Clear(_ context.Context, surface string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "clear")
	s, ok := m.surfaces[surface]
	if !ok {
		return fmt.Errorf("surface %q not found", surface)
	}
	s.cells = nil
	return nil
}

// WriteRows implements Destination. The surface grows to fit.
func (m *MemoryDestination) WriteRows(_ context.Context, surface string, startRow int, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, fmt.Sprintf("write@%d", startRow))
	s, ok := m.surfaces[surface]
	if !ok {
		return fmt.Errorf("surface %q not found", surface)
	}
	if startRow < 1 {
		return fmt.Errorf("invalid start row %d", startRow)
	}

	need := startRow - 1 + len(rows)
	for len(s.cells) < need {
		s.cells = append(s.cells, nil)
	}
	if need > s.rows {
		s.rows = need
	}
	for i, row := range rows {
		s.cells[startRow-1+i] = append([]string(nil), row...)
	}
	return nil
}

// Seed replaces a surface's content, creating it when needed.
func (m *MemoryDestination) Seed(surface string, cells [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.surfaces[surface]
	if !ok {
		s = &memorySurface{}
		m.surfaces[surface] = s
	}
	s.cells = cells
	if len(cells) > s.rows {
		s.rows = len(cells)
	}
}

// Contents returns a copy of a surface's rows, trailing empty rows dropped.
func (m *MemoryDestination) Contents(surface string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.surfaces[surface]
	if !ok {
		return nil
	}
	end := len(s.cells)
	for end > 0 && len(s.cells[end-1]) == 0 {
		end--
	}
	out := make([][]string, end)
	for i := 0; i < end; i++ {
		out[i] = append([]string(nil), s.cells[i]...)
	}
	return out
}

// Size returns the grid size of a surface.
func (m *MemoryDestination) Size(surface string) (rows, cols int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.surfaces[surface]
	if !ok {
		return 0, 0, false
	}
	return s.rows, s.cols, true
}

// Calls returns the operations performed so far.
func (m *MemoryDestination) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
