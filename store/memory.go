package store

import (
	"errors"
	"sync"
)

var errOutOfBounds = errors.New("access out of bounds")

// Memory is RAM-backed Storage. New memory reads as erased (0xFF) like a blank EEPROM
type Memory struct {
	mtx  sync.Mutex
	data []byte
}

var _ Storage = &Memory{}

// NewMemory allocates size bytes of erased storage
func NewMemory(size int) *Memory {
	data := make([]byte, size)
	for i := range data {
		data[i] = 0xFF
	}
	return &Memory{data: data}
}

// NewMemoryFrom creates Memory holding a copy of an existing image, which is
// used to simulate a power cycle
func NewMemoryFrom(image []byte) *Memory {
	data := make([]byte, len(image))
	copy(data, image)
	return &Memory{data: data}
}

func (m *Memory) Size() int64 {
	return int64(len(m.data))
}

func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if off < 0 || off+int64(len(p)) > int64(len(m.data)) {
		return 0, errOutOfBounds
	}
	return copy(p, m.data[off:]), nil
}

func (m *Memory) WriteAt(p []byte, off int64) (int, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if off < 0 || off+int64(len(p)) > int64(len(m.data)) {
		return 0, errOutOfBounds
	}
	return copy(m.data[off:], p), nil
}

// Snapshot returns a copy of the raw contents
func (m *Memory) Snapshot() []byte {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out
}
