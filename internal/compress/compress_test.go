package compress

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressDecompress_RoundTrip(t *testing.T) {
	for _, c := range []Codec{Gzip, Zstd} {
		t.Run(c.String(), func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "syslog-2020-05-12")
			content := []byte("May 12 10:00:00 host a\nMay 12 10:00:01 host b\n")
			require.NoError(t, os.WriteFile(path, content, 0o644))

			require.NoError(t, Compress(path, c))

			_, err := os.Stat(path)
			assert.True(t, os.IsNotExist(err), "plain file must be removed")

			require.NoError(t, Decompress(path+c.Ext()))

			_, err = os.Stat(path + c.Ext())
			assert.True(t, os.IsNotExist(err), "compressed file must be removed")

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, content, got)
		})
	}
}

func TestCompress_AppendsToExistingArchive(t *testing.T) {
	for _, c := range []Codec{Gzip, Zstd} {
		t.Run(c.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "app-2021-01-01")

			require.NoError(t, os.WriteFile(path, []byte("first run\n"), 0o644))
			require.NoError(t, Compress(path, c))

			require.NoError(t, os.WriteFile(path, []byte("second run\n"), 0o644))
			require.NoError(t, Compress(path, c))

			require.NoError(t, Decompress(path+c.Ext()))

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "first run\nsecond run\n", string(got))
		})
	}
}

func TestDecompress_CorruptInputIsKept(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "messages.2.gz")
	require.NoError(t, os.WriteFile(path, []byte("this is not gzip"), 0o644))

	err := Decompress(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)

	_, err = os.Stat(path)
	assert.NoError(t, err, "original must be kept")

	_, err = os.Stat(filepath.Join(dir, "messages.2"))
	assert.True(t, os.IsNotExist(err), "partial output must be removed")
}

func TestDecompress_UnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.2.bz2")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	err := Decompress(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a compressed file")
}

func TestCompress_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope-2020-01-01")

	err := Compress(path, Gzip)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))

	_, statErr := os.Stat(path + ".gz")
	assert.True(t, os.IsNotExist(statErr))
}

func TestCodecs(t *testing.T) {
	assert.Equal(t, []string{".gz", ".zst"}, Extensions())

	c, ok := CodecForPath("/var/log/syslog.3.zst")
	assert.True(t, ok)
	assert.Equal(t, Zstd, c)

	c, ok = CodecForPath("/var/log/syslog.3.gz")
	assert.True(t, ok)
	assert.Equal(t, Gzip, c)

	_, ok = CodecForPath("/var/log/syslog.3")
	assert.False(t, ok)

	parsed, err := ParseCodec("zstd")
	require.NoError(t, err)
	assert.Equal(t, Zstd, parsed)

	_, err = ParseCodec("lz4")
	assert.Error(t, err)
}
