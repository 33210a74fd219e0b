package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"passrs/internal/crypto"
)

func openJournal(t *testing.T, keep int) *Journal {
	t.Helper()
	j, err := OpenJournal(filepath.Join(t.TempDir(), "nested", "history.db"), keep)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_AppendAndPrune(t *testing.T) {
	ctx := context.Background()
	j := openJournal(t, 3)
	path := filepath.Join(t.TempDir(), "data")

	for i := 0; i < 5; i++ {
		require.NoError(t, j.Append(ctx, Entry{Path: path, Size: 100 + i, Passwords: i}))
	}
	require.NoError(t, j.Append(ctx, Entry{Path: "/elsewhere", Size: 1}))

	entries, err := j.List(ctx, path)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Greater(t, entries[0].ID, entries[1].ID, "newest first")
	assert.Equal(t, 104, entries[0].Size)
	assert.Equal(t, 4, entries[0].Passwords)
	assert.False(t, entries[0].SavedAt.IsZero())

	other, err := j.List(ctx, "/elsewhere")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestJournal_KeepsGivenTimestamp(t *testing.T) {
	ctx := context.Background()
	j := openJournal(t, 0)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, j.Append(ctx, Entry{Path: "/p", SavedAt: at, Encrypted: true}))

	entries, err := j.List(ctx, "/p")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, at.Equal(entries[0].SavedAt))
	assert.True(t, entries[0].Encrypted)
}

func TestFile_SaveAppendsJournal(t *testing.T) {
	ctx := context.Background()
	f := &File{Path: filepath.Join(t.TempDir(), "data"), Journal: openJournal(t, 10)}

	require.NoError(t, f.Save(ctx, sampleStore(), nil))
	require.NoError(t, f.Save(ctx, sampleStore(), crypto.DeriveKey("pw")))

	entries, err := f.Journal.List(ctx, f.Path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Encrypted)
	assert.False(t, entries[1].Encrypted)
	assert.Equal(t, 1, entries[0].Passwords)
	assert.Equal(t, 1, entries[0].TOTPs)
}

func TestFile_FailedSaveIsNotJournaled(t *testing.T) {
	ctx := context.Background()
	f := &File{Path: filepath.Join(t.TempDir(), "missing-dir", "data"), Journal: openJournal(t, 10)}

	require.ErrorIs(t, f.Save(ctx, sampleStore(), nil), ErrWrite)

	entries, err := f.Journal.List(ctx, f.Path)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "file:memdb?mode=memory", sqliteDSN("file:memdb?mode=memory"))
	dsn := sqliteDSN("/tmp/x.db")
	assert.Contains(t, dsn, "file:///tmp/x.db?")
	assert.Contains(t, dsn, "mode=rwc")
}
