package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()

	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeGzip(t *testing.T, path, content string) {
	t.Helper()

	var buf bytes.Buffer

	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	writeFile(t, path, buf.String())
}

func readGzip(t *testing.T, path string) string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer zr.Close()

	data, err := io.ReadAll(zr)
	require.NoError(t, err)

	return string(data)
}

func readZstd(t *testing.T, path string) string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	zr, err := zstd.NewReader(f)
	require.NoError(t, err)
	defer zr.Close()

	data, err := io.ReadAll(zr)
	require.NoError(t, err)

	return string(data)
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

// seedInput lays out a small rotated log tree and returns its root
func seedInput(t *testing.T) string {
	t.Helper()

	in := t.TempDir()

	writeFile(t, filepath.Join(in, "app", "app.log.1"),
		"2024-03-01 10:00:00 start\n"+
			"2024-03-02 09:00:00 next\n"+
			"continuation without date\n"+
			"2024-03-01 23:59:59 late\n")
	writeGzip(t, filepath.Join(in, "app.log.2.gz"), "2024-03-02 08:00:00 from archive\n")
	writeFile(t, filepath.Join(in, "notes.1"), "hello world\n")
	writeFile(t, filepath.Join(in, "current.log"), "2024-03-03 00:00:00 live\n")

	return in
}

func TestRoot_SplitAndCompress(t *testing.T) {
	in := seedInput(t)
	out := filepath.Join(t.TempDir(), "out")

	_, _, err := execute(t, in, out)
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01 10:00:00 start\n2024-03-01 23:59:59 late\n",
		readGzip(t, filepath.Join(out, "app", "app.log-2024-03-01.gz")))
	assert.Equal(t, "2024-03-02 09:00:00 next\n",
		readGzip(t, filepath.Join(out, "app", "app.log-2024-03-02.gz")))
	assert.Equal(t, "2024-03-02 08:00:00 from archive\n",
		readGzip(t, filepath.Join(out, "app.log-2024-03-02.gz")))

	assert.NoFileExists(t, filepath.Join(out, "app", "app.log-2024-03-01"))
	assert.NoFileExists(t, filepath.Join(in, "app", "app.log.1"))
	assert.NoFileExists(t, filepath.Join(in, "app.log.2.gz"))
	assert.NoFileExists(t, filepath.Join(in, "app.log.2"))

	// unclassified and non-rotated files are left alone
	assert.Equal(t, "hello world\n", readFile(t, filepath.Join(in, "notes.1")))
	assert.FileExists(t, filepath.Join(in, "current.log"))
	assert.NoFileExists(t, filepath.Join(out, "current-2024-03-03.gz"))
}

func TestRoot_NoCompress(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")

	writeFile(t, filepath.Join(in, "app.log.1"), "2024-03-01 10:00:00 start\n")
	writeGzip(t, filepath.Join(in, "old.log.2.gz"), "2024-03-01 10:00:00 archived\n")

	_, _, err := execute(t, in, out, "--no-compress")
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01 10:00:00 start\n", readFile(t, filepath.Join(out, "app.log-2024-03-01")))
	assert.NoFileExists(t, filepath.Join(out, "app.log-2024-03-01.gz"))

	// compressed inputs are not touched without compression
	assert.FileExists(t, filepath.Join(in, "old.log.2.gz"))
}

func TestRoot_ConfigFileAndFlagPrecedence(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	cfgPath := filepath.Join(t.TempDir(), "logsplit.toml")

	writeFile(t, cfgPath, "input = \""+filepath.ToSlash(in)+"\"\noutput = \""+filepath.ToSlash(out)+"\"\n\n[compression]\ncodec = \"zstd\"\n")

	t.Run("config selects zstd", func(t *testing.T) {
		writeFile(t, filepath.Join(in, "app.log.1"), "2024-03-01 10:00:00 first\n")

		_, _, err := execute(t, "-c", cfgPath)
		require.NoError(t, err)

		assert.Equal(t, "2024-03-01 10:00:00 first\n", readZstd(t, filepath.Join(out, "app.log-2024-03-01.zst")))
	})

	t.Run("flag overrides config", func(t *testing.T) {
		writeFile(t, filepath.Join(in, "app.log.1"), "2024-03-05 10:00:00 second\n")

		_, _, err := execute(t, "-c", cfgPath, "--codec", "gzip")
		require.NoError(t, err)

		assert.Equal(t, "2024-03-05 10:00:00 second\n", readGzip(t, filepath.Join(out, "app.log-2024-03-05.gz")))
		assert.NoFileExists(t, filepath.Join(out, "app.log-2024-03-05.zst"))
	})
}

func TestRoot_RerunAppendsToArchive(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	content := "2024-03-01 10:00:00 start\n"

	for i := 0; i < 2; i++ {
		writeFile(t, filepath.Join(in, "app.log.1"), content)

		_, _, err := execute(t, in, out)
		require.NoError(t, err)
	}

	assert.Equal(t, content+content, readGzip(t, filepath.Join(out, "app.log-2024-03-01.gz")))
}

func TestRoot_OutputInsideInput(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(in, "out")

	writeGzip(t, filepath.Join(out, "old.log-2024-01-01.gz"), "2024-01-01 00:00:00 kept\n")
	writeFile(t, filepath.Join(out, "stale.1"), "2024-01-02 00:00:00 not an input\n")
	writeFile(t, filepath.Join(in, "app.log.1"), "2024-03-01 10:00:00 start\n")

	_, _, err := execute(t, in, out)
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01 00:00:00 kept\n", readGzip(t, filepath.Join(out, "old.log-2024-01-01.gz")))
	assert.NoFileExists(t, filepath.Join(out, "old.log-2024-01-01"))
	assert.FileExists(t, filepath.Join(out, "stale.1"))
	assert.FileExists(t, filepath.Join(out, "app.log-2024-03-01.gz"))
}

func TestRoot_FileFailuresDoNotStopTheRun(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")

	writeFile(t, filepath.Join(in, "broken.log.1.gz"), "not gzip at all")
	writeFile(t, filepath.Join(in, "app.log.1"), "2024-03-01 10:00:00 start\n")

	_, stderr, err := execute(t, in, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.log.1.gz")
	assert.Contains(t, stderr, "Failed to decompress file")

	assert.FileExists(t, filepath.Join(in, "broken.log.1.gz"))
	assert.NoFileExists(t, filepath.Join(in, "broken.log.1"))
	assert.FileExists(t, filepath.Join(out, "app.log-2024-03-01.gz"))
}

func TestRoot_Preconditions(t *testing.T) {
	t.Run("missing input argument", func(t *testing.T) {
		_, _, err := execute(t)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "input directory is required")
	})

	t.Run("input does not exist", func(t *testing.T) {
		_, _, err := execute(t, filepath.Join(t.TempDir(), "absent"), t.TempDir())
		assert.Error(t, err)
	})

	t.Run("input is a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file")
		writeFile(t, path, "x\n")

		_, _, err := execute(t, path, t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is not a directory")
	})

	t.Run("output is a file", func(t *testing.T) {
		in := t.TempDir()
		writeFile(t, filepath.Join(in, "app.log.1"), "2024-03-01 10:00:00 start\n")

		out := filepath.Join(t.TempDir(), "file")
		writeFile(t, out, "x\n")

		_, _, err := execute(t, in, out)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is not a directory")

		// nothing was processed
		assert.FileExists(t, filepath.Join(in, "app.log.1"))
	})

	t.Run("output is created", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "a", "b", "c")

		_, _, err := execute(t, t.TempDir(), out)
		require.NoError(t, err)
		assert.DirExists(t, out)
	})

	t.Run("invalid codec", func(t *testing.T) {
		_, _, err := execute(t, t.TempDir(), t.TempDir(), "--codec", "lz4")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown codec")
	})

	t.Run("too many arguments", func(t *testing.T) {
		_, _, err := execute(t, "a", "b", "c")
		assert.Error(t, err)
	})
}

func TestRoot_JSONLogs(t *testing.T) {
	in := t.TempDir()
	writeFile(t, filepath.Join(in, "app.log.1"), "2024-03-01 10:00:00 start\n")

	_, stderr, err := execute(t, in, filepath.Join(t.TempDir(), "out"), "--log-format", "json")
	require.NoError(t, err)

	assert.Contains(t, stderr, `"msg":"File split"`)
	assert.Contains(t, stderr, `"msg":"Run finished"`)
	assert.Contains(t, stderr, `"run_id":`)
}
