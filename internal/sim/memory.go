// Package sim provides in-memory address spaces and a file system for
// running the kernel without hardware.
package sim

import (
	"errors"
	"fmt"
	"sync"
)

// PageSize is the allocation unit of Memory.
const PageSize = 4096

var (
	// ErrOutOfMemory is returned when the page budget is exhausted.
	ErrOutOfMemory = errors.New("out of memory")
	// ErrOutOfRange is returned for accesses past the end of a space.
	ErrOutOfRange = errors.New("address out of range")
	// ErrForeignHandle is returned for handles not created by this Memory.
	ErrForeignHandle = errors.New("handle not owned by this memory")
)

// Space is a user address space.
type Space struct {
	id    int
	data  []byte
	pages int
}

// Frame is a trapframe page.
type Frame struct {
	id int
}

// Memory is a bounded pool of pages backing address spaces and
// trapframes. A zero limit means unbounded. It is safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	limit  int
	inUse  int
	nextID int
	spaces map[*Space]struct{}
	frames map[*Frame]struct{}
}

// NewMemory returns a pool of at most limit pages.
func NewMemory(limit int) *Memory {
	return &Memory{
		limit:  limit,
		spaces: make(map[*Space]struct{}),
		frames: make(map[*Frame]struct{}),
	}
}

func pagesFor(size uint64) int {
	return int((size + PageSize - 1) / PageSize)
}

// take reserves n pages. m.mu must be held.
func (m *Memory) take(n int) error {
	if m.limit > 0 && m.inUse+n > m.limit {
		return fmt.Errorf("%w: need %d pages, %d of %d in use", ErrOutOfMemory, n, m.inUse, m.limit)
	}
	m.inUse += n
	return nil
}

func (m *Memory) space(as any) (*Space, error) {
	s, ok := as.(*Space)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrForeignHandle, as)
	}
	if _, ok := m.spaces[s]; !ok {
		return nil, ErrForeignHandle
	}
	return s, nil
}

// Create returns an empty address space.
func (m *Memory) Create() (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s := &Space{id: m.nextID}
	m.spaces[s] = struct{}{}
	return s, nil
}

// Copy duplicates the first size bytes of src into the empty space dst.
func (m *Memory) Copy(src, dst any, size uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.space(src)
	if err != nil {
		return err
	}
	d, err := m.space(dst)
	if err != nil {
		return err
	}
	if size > uint64(len(s.data)) {
		return fmt.Errorf("%w: copy %d bytes of %d", ErrOutOfRange, size, len(s.data))
	}
	n := pagesFor(size) - d.pages
	if n > 0 {
		if err := m.take(n); err != nil {
			return err
		}
		d.pages += n
	}
	d.data = append(d.data[:0], s.data[:size]...)
	return nil
}

// Resize changes the size of as from oldSize to newSize.
func (m *Memory) Resize(as any, oldSize, newSize uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.space(as)
	if err != nil {
		return oldSize, err
	}
	if oldSize != uint64(len(s.data)) {
		return oldSize, fmt.Errorf("%w: size is %d, caller has %d", ErrOutOfRange, len(s.data), oldSize)
	}

	want := pagesFor(newSize)
	switch {
	case want > s.pages:
		if err := m.take(want - s.pages); err != nil {
			return oldSize, err
		}
	case want < s.pages:
		m.inUse -= s.pages - want
	}
	s.pages = want

	if newSize > oldSize {
		s.data = append(s.data, make([]byte, newSize-oldSize)...)
	} else {
		s.data = s.data[:newSize]
	}
	return newSize, nil
}

// Destroy frees as.
func (m *Memory) Destroy(as any, size uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.space(as)
	if err != nil {
		return
	}
	m.inUse -= s.pages
	delete(m.spaces, s)
}

// CopyOut writes data at addr.
func (m *Memory) CopyOut(as any, addr uint64, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.space(as)
	if err != nil {
		return err
	}
	if addr+uint64(len(data)) > uint64(len(s.data)) || addr+uint64(len(data)) < addr {
		return fmt.Errorf("%w: write %d bytes at %#x", ErrOutOfRange, len(data), addr)
	}
	copy(s.data[addr:], data)
	return nil
}

// CopyIn reads n bytes at addr.
func (m *Memory) CopyIn(as any, addr uint64, n int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.space(as)
	if err != nil {
		return nil, err
	}
	if n < 0 || addr+uint64(n) > uint64(len(s.data)) || addr+uint64(n) < addr {
		return nil, fmt.Errorf("%w: read %d bytes at %#x", ErrOutOfRange, n, addr)
	}
	out := make([]byte, n)
	copy(out, s.data[addr:])
	return out, nil
}

// AllocFrame reserves one page for a trapframe.
func (m *Memory) AllocFrame() (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.take(1); err != nil {
		return nil, err
	}
	m.nextID++
	f := &Frame{id: m.nextID}
	m.frames[f] = struct{}{}
	return f, nil
}

// FreeFrame releases a trapframe page.
func (m *Memory) FreeFrame(frame any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := frame.(*Frame)
	if !ok {
		return
	}
	if _, ok := m.frames[f]; !ok {
		return
	}
	delete(m.frames, f)
	m.inUse--
}

// PagesInUse reports the number of allocated pages.
func (m *Memory) PagesInUse() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inUse
}

// Spaces reports the number of live address spaces.
func (m *Memory) Spaces() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.spaces)
}
