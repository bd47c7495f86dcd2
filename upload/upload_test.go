package upload

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStore_SaveAndOpen(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	content := "Model Number,Unit Price,Quantity\nABC-100,19.99,5\n"
	saved, err := store.Save(context.Background(), "orders.csv", strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, "orders.csv", saved.OriginalName)
	assert.Equal(t, int64(len(content)), saved.Size)
	assert.True(t, strings.HasSuffix(saved.Path, "_orders.csv"),
		"stored name should keep the original name as suffix: %s", saved.Path)

	rc, err := store.Open(saved)
	require.NoError(t, err)
	defer rc.Close()

	back, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, string(back))
}

// 同名上传不得互相覆盖
func TestDiskStore_NoCollision(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	first, err := store.Save(ctx, "orders.csv", strings.NewReader("first"))
	require.NoError(t, err)
	second, err := store.Save(ctx, "orders.csv", strings.NewReader("second"))
	require.NoError(t, err)

	assert.NotEqual(t, first.Path, second.Path)

	rc, err := store.Open(first)
	require.NoError(t, err)
	defer rc.Close()
	back, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "first", string(back))
}

// 客户端携带的路径成分必须被剥离
func TestDiskStore_StripsPath(t *testing.T) {
	root := t.TempDir()
	store, err := NewDiskStore(root)
	require.NoError(t, err)

	saved, err := store.Save(context.Background(), "../../etc/orders.csv", strings.NewReader("x"))
	require.NoError(t, err)

	assert.Equal(t, "orders.csv", saved.OriginalName)
	assert.Equal(t, root, filepath.Dir(saved.Path), "file must stay under the upload root")
}

func TestDiskStore_SaveCancelled(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Save(ctx, "orders.csv", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}
