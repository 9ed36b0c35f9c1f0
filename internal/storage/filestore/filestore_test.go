package filestore

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/storetest"
)

func TestStore_Plain(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storage.Store {
		s, err := New(afero.NewMemMapFs(), "/data", false)
		require.NoError(t, err)
		return s
	})
}

func TestStore_Compressed(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storage.Store {
		s, err := New(afero.NewMemMapFs(), "/data", true)
		require.NoError(t, err)
		return s
	})
}

func TestStore_OS(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storage.Store {
		s, err := NewOS(t.TempDir(), true)
		require.NoError(t, err)
		return s
	})
}

func TestStore_CompressedOnDisk(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, err := New(fs, "/data", true)
	require.NoError(t, err)

	require.NoError(t, s.SavePodBuddies(context.Background(), "u1", []string{"bob"}))

	data, err := afero.ReadFile(fs, "/data/profiles/u1.json.zst")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte{0x28, 0xb5, 0x2f, 0xfd}), "expected zstd frame magic")

	plain, err := decompress(data)
	require.NoError(t, err)
	assert.Contains(t, string(plain), `"podBuddies":["bob"]`)
}

func TestStore_EscapesUID(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, err := New(fs, "/data", false)
	require.NoError(t, err)

	require.NoError(t, s.AddFriend(context.Background(), "../evil", "AAAA2345"))

	exists, err := afero.Exists(fs, "/data/profiles/__evil.json")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCompressRoundTrip(t *testing.T) {
	in := []byte(`{"uid":"u1","friends":["AAAA2345"]}`)
	out, err := decompress(compress(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
