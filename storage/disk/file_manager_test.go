package disk

import (
	"bytes"
	"os"
	"path"
	"testing"

	"github.com/okello/mara/storage/page"
	"github.com/okello/mara/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileManager(t *testing.T) {
	t.Run("allocates pages with increasing numbers", func(t *testing.T) {
		fm := createDbFile(t)

		for want := page.PageID(0); want < 3; want++ {
			pg, err := fm.AllocatePage()
			require.NoError(t, err)
			assert.Equal(t, want, pg.ID())
		}
	})

	t.Run("writes and reads a page back", func(t *testing.T) {
		fm := createDbFile(t)

		pg, err := fm.AllocatePage()
		require.NoError(t, err)
		copy(pg.Data()[:], "stored on disk")
		require.NoError(t, fm.WritePage(pg))

		got, err := fm.ReadPage(pg.ID())
		require.NoError(t, err)
		assert.Equal(t, "stored on disk", string(bytes.Trim(got.Data()[:], "\x00")))
	})

	t.Run("fails on unknown page numbers", func(t *testing.T) {
		fm := createDbFile(t)

		var invalid *util.InvalidPageError
		_, err := fm.ReadPage(12)
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, page.PageID(12), invalid.PageNo)

		assert.ErrorAs(t, fm.WritePage(page.New(12)), &invalid)
		assert.ErrorAs(t, fm.DeletePage(12), &invalid)
	})

	t.Run("deleted pages are gone, their slots reused", func(t *testing.T) {
		fm := createDbFile(t)

		first, err := fm.AllocatePage()
		require.NoError(t, err)
		require.NoError(t, fm.DeletePage(first.ID()))

		var invalid *util.InvalidPageError
		_, err = fm.ReadPage(first.ID())
		assert.ErrorAs(t, err, &invalid)

		// a new allocation reuses the file slot but never the page number
		second, err := fm.AllocatePage()
		require.NoError(t, err)
		assert.NotEqual(t, first.ID(), second.ID())

		copy(second.Data()[:], "recycled slot")
		require.NoError(t, fm.WritePage(second))

		got, err := fm.ReadPage(second.ID())
		require.NoError(t, err)
		assert.Equal(t, "recycled slot", string(bytes.Trim(got.Data()[:], "\x00")))
	})

	t.Run("grows the file past the initial capacity", func(t *testing.T) {
		fm := createDbFile(t)

		var last *page.Page
		for i := 0; i < defaultPageCapacity+1; i++ {
			pg, err := fm.AllocatePage()
			require.NoError(t, err)
			last = pg
		}

		copy(last.Data()[:], "beyond capacity")
		require.NoError(t, fm.WritePage(last))

		got, err := fm.ReadPage(last.ID())
		require.NoError(t, err)
		assert.Equal(t, "beyond capacity", string(bytes.Trim(got.Data()[:], "\x00")))
	})

	t.Run("reports its filename", func(t *testing.T) {
		fm := createDbFile(t)
		assert.Equal(t, "test.db", path.Base(fm.Filename()))
	})
}

func createDbFile(t *testing.T) *FileManager {
	t.Helper()
	dbFile := path.Join(t.TempDir(), "test.db")

	file, err := os.OpenFile(dbFile, os.O_CREATE|os.O_RDWR, 0644)
	require.NoError(t, err)
	t.Cleanup(func() { _ = file.Close() })

	return NewFileManager(file)
}
