package badger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/hybridkb/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "kb")
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	info, err := os.Stat(tmpDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_PathIsFile(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0644))

	backend, err := OpenBackend(tmpFile, false)
	require.Error(t, err)
	assert.Nil(t, backend)
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	assert.False(t, backend.IsClosed())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())

	err = backend.WithTx(func(tx *badger.Txn) error { return nil }, false)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestScanPrefix_HonorsContext(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	err = backend.WithTx(func(tx *badger.Txn) error {
		for _, k := range []string{"p:1", "p:2", "q:1"} {
			if err := tx.Set([]byte(k), nil); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	require.NoError(t, err)

	t.Run("counts prefixed keys", func(t *testing.T) {
		count := 0
		err := backend.WithTx(func(tx *badger.Txn) error {
			return backend.scanPrefix(context.Background(), tx, []byte("p:"), false, func(*badger.Item) error {
				count++
				return nil
			})
		}, false)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := backend.WithTx(func(tx *badger.Txn) error {
			return backend.scanPrefix(ctx, tx, []byte("p:"), false, func(*badger.Item) error {
				return nil
			})
		}, false)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestWithTx_ReportsConflict(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	// The outer transaction reads a key that a second transaction rewrites
	// before the outer one commits.
	err = backend.WithTx(func(tx *badger.Txn) error {
		if _, err := tx.Get([]byte("v:shared")); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		inner := backend.WithTx(func(other *badger.Txn) error {
			if err := other.Set([]byte("v:shared"), []byte{1}); err != nil {
				return err
			}
			return other.Commit()
		}, true)
		require.NoError(t, inner)

		if err := tx.Set([]byte("v:mine"), []byte{2}); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	assert.ErrorIs(t, err, storage.ErrConflict)
	assert.ErrorIs(t, err, badger.ErrConflict)
}
