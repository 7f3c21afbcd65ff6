package result

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Store persists one record per constant id. Put atomically replaces any
// prior record with the same id; readers never observe a partial write.
type Store interface {
	Put(rec Record) error
	Get(id string) (Record, bool, error)
	List() ([]Record, error)
}

// FileStore keeps one JSON file per constant under a results directory, the
// layout the external serving layer reads.
type FileStore struct {
	dir string
}

// NewFileStore creates the results directory if needed and returns a store
// over it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating results directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Put writes the record to a temp file and renames it into place, so the
// replace is atomic on the same filesystem.
func (s *FileStore) Put(rec Record) error {
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding record %q: %w", rec.ConstantID, err)
	}

	final := filepath.Join(s.dir, rec.ConstantID+".json")
	tmp, err := os.CreateTemp(s.dir, rec.ConstantID+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for record %q: %w", rec.ConstantID, err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing record %q: %w", rec.ConstantID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing record %q: %w", rec.ConstantID, err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing record %q: %w", rec.ConstantID, err)
	}
	return nil
}

// Get reads the record for the given id, reporting false if none exists.
func (s *FileStore) Get(id string) (Record, bool, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, id+".json"))
	if os.IsNotExist(err) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("reading record %q: %w", id, err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, false, fmt.Errorf("decoding record %q: %w", id, err)
	}
	return rec, true, nil
}

// List returns every persisted record, ordered by constant id.
func (s *FileStore) List() ([]Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing results directory: %w", err)
	}

	var records []Record
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		rec, ok, err := s.Get(strings.TrimSuffix(name, ".json"))
		if err != nil {
			return nil, err
		}
		if ok {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ConstantID < records[j].ConstantID })
	return records, nil
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu   sync.RWMutex
	byID map[string]Record
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{byID: make(map[string]Record)}
}

func (s *MemStore) Put(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[rec.ConstantID] = rec
	return nil
}

func (s *MemStore) Get(id string) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	return rec, ok, nil
}

func (s *MemStore) List() ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]Record, 0, len(s.byID))
	for _, rec := range s.byID {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ConstantID < records[j].ConstantID })
	return records, nil
}
