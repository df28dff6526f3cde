package pager

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "index.db")
}

func TestCreateThenOpenExisting(t *testing.T) {
	path := tempPath(t)

	pg, err := Create(path, 8)
	require.NoError(t, err)

	id, page, err := pg.Allocate()
	require.NoError(t, err)
	assert.Equal(t, PageID(1), id)
	copy(page[:], []byte("hello"))
	require.NoError(t, pg.Unpin(id, true))
	require.NoError(t, pg.Close())

	reopened, err := OpenExisting(path, 8)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Read(id)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got[:5]))
	require.NoError(t, reopened.Unpin(id, false))
}

func TestOpenExistingMissingFileReturnsFileNotFound(t *testing.T) {
	_, err := OpenExisting(tempPath(t), 8)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestCreateTwiceFails(t *testing.T) {
	path := tempPath(t)
	pg, err := Create(path, 8)
	require.NoError(t, err)
	require.NoError(t, pg.Close())

	_, err = Create(path, 8)
	assert.Error(t, err)
}

func TestUnpinWithoutPinIsAnError(t *testing.T) {
	pg, err := Create(tempPath(t), 8)
	require.NoError(t, err)
	defer pg.Close()

	id, _, err := pg.Allocate()
	require.NoError(t, err)
	require.NoError(t, pg.Unpin(id, false))

	err = pg.Unpin(id, false)
	assert.ErrorIs(t, err, ErrNotPinned)
}

func TestFlushRefusesWhilePagesArePinned(t *testing.T) {
	pg, err := Create(tempPath(t), 8)
	require.NoError(t, err)
	defer func() {
		_ = pg.Unpin(1, false)
		pg.Close()
	}()

	_, _, err = pg.Allocate()
	require.NoError(t, err)

	err = pg.Flush()
	assert.ErrorIs(t, err, ErrPagesPinned)
}

func TestReadPinsAndEvictsOnlyUnpinnedFrames(t *testing.T) {
	pg, err := Create(tempPath(t), 2)
	require.NoError(t, err)
	defer pg.Close()

	id1, p1, err := pg.Allocate()
	require.NoError(t, err)
	copy(p1[:], []byte("one"))
	require.NoError(t, pg.Unpin(id1, true))

	id2, p2, err := pg.Allocate()
	require.NoError(t, err)
	copy(p2[:], []byte("two"))
	require.NoError(t, pg.Unpin(id2, true))

	// Pin id1 so it can't be evicted, then force a third resident frame —
	// with cacheLimit 2, id2 (the only unpinned frame) must be evicted.
	_, err = pg.Read(id1)
	require.NoError(t, err)

	id3, p3, err := pg.Allocate()
	require.NoError(t, err)
	copy(p3[:], []byte("three"))
	require.NoError(t, pg.Unpin(id3, true))

	got2, err := pg.Read(id2)
	require.NoError(t, err)
	assert.Equal(t, "two", string(got2[:3]))
	require.NoError(t, pg.Unpin(id2, false))
	require.NoError(t, pg.Unpin(id1, false))
}

func TestReadOfUnallocatedPageFails(t *testing.T) {
	pg, err := Create(tempPath(t), 8)
	require.NoError(t, err)
	defer pg.Close()

	_, err = pg.Read(PageID(42))
	assert.ErrorIs(t, err, ErrPageNotAllocated)
}

