package repository

import (
	"encoding/json"
	"os"
	"sync"
)

// Store is the browser-storage analogue: flat string keys, whole-value
// writes, no partial updates. Implementations never fail: absent keys read
// as empty and write errors degrade to in-memory state.
type Store interface {
	Set(key, value string)
	Get(key string) string
	Clear(keys ...string)
}

// MemoryStore holds volatile state, the sessionStorage counterpart. It is
// also the store used by tests.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
}

func (m *MemoryStore) Get(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.values[key]
}

func (m *MemoryStore) Clear(keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(keys) == 0 {
		m.values = make(map[string]string)
		return
	}

	for _, key := range keys {
		delete(m.values, key)
	}
}

// FileStore persists keys to a JSON file so the session survives restarts,
// the localStorage counterpart. A missing or corrupt file reads as empty.
type FileStore struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

func NewFileStore(path string) *FileStore {
	s := &FileStore{
		path:   path,
		values: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}

	var stored map[string]string
	if err := json.Unmarshal(data, &stored); err != nil {
		return s
	}

	s.values = stored

	return s
}

func (f *FileStore) Set(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.values[key] = value
	f.flush()
}

func (f *FileStore) Get(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.values[key]
}

func (f *FileStore) Clear(keys ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(keys) == 0 {
		f.values = make(map[string]string)
	} else {
		for _, key := range keys {
			delete(f.values, key)
		}
	}

	f.flush()
}

func (f *FileStore) flush() {
	data, err := json.Marshal(f.values)
	if err != nil {
		return
	}

	_ = os.WriteFile(f.path, data, 0o600)
}
