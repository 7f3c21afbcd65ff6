package result

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id string, status Status) Record {
	v := 1.5
	return Record{
		ConstantID:      id,
		CalculatedValue: &v,
		Status:          status,
		Timestamp:       time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC),
		PassID:          "pass-1",
	}
}

func TestFileStore_PutGet(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(record("alpha", StatusCompleted)))

	rec, ok, err := store.Get("alpha")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alpha", rec.ConstantID)
	assert.Equal(t, StatusCompleted, rec.Status)
	require.NotNil(t, rec.CalculatedValue)
	assert.InDelta(t, 1.5, *rec.CalculatedValue, 1e-12)
}

func TestFileStore_GetMissing(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, ok, err := store.Get("nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_PutReplaces(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Put(record("alpha", StatusWarning)))
	require.NoError(t, store.Put(record("alpha", StatusCompleted)))

	rec, ok, err := store.Get("alpha")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, rec.Status)

	// No temp files linger after a replace.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "alpha.json", entries[0].Name())
}

func TestFileStore_LayoutOnDisk(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Put(record("m_proton", StatusCompleted)))

	raw, err := os.ReadFile(filepath.Join(dir, "m_proton.json"))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "m_proton", decoded["constant_id"])
	assert.Equal(t, "completed", decoded["status"])
	assert.Equal(t, "pass-1", decoded["pass_id"])
}

func TestFileStore_List(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Put(record("charlie", StatusError)))
	require.NoError(t, store.Put(record("alpha", StatusCompleted)))
	require.NoError(t, store.Put(record("bravo", StatusWarning)))

	// Non-record files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("x"), 0o644))

	records, err := store.List()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "alpha", records[0].ConstantID)
	assert.Equal(t, "bravo", records[1].ConstantID)
	assert.Equal(t, "charlie", records[2].ConstantID)
}

func TestMemStore(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.Put(record("beta", StatusCompleted)))
	require.NoError(t, store.Put(record("alpha", StatusWarning)))

	rec, ok, err := store.Get("beta")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, rec.Status)

	_, ok, err = store.Get("nope")
	require.NoError(t, err)
	assert.False(t, ok)

	records, err := store.List()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "alpha", records[0].ConstantID)
}
