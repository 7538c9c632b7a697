// Package compress compresses dated output files and restores compressed
// rotated inputs.
package compress

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Codec is a supported compression format
type Codec int

const (
	Gzip Codec = iota
	Zstd
)

var codecs = []Codec{Gzip, Zstd}

func (c Codec) String() string {
	switch c {
	case Zstd:
		return "zstd"
	default:
		return "gzip"
	}
}

// Ext returns the file extension, dot included
func (c Codec) Ext() string {
	switch c {
	case Zstd:
		return ".zst"
	default:
		return ".gz"
	}
}

func ParseCodec(name string) (Codec, error) {
	for _, c := range codecs {
		if c.String() == name {
			return c, nil
		}
	}

	return Gzip, fmt.Errorf("unknown codec: %s", name)
}

// Extensions lists the extensions of every supported codec
func Extensions() []string {
	exts := make([]string, 0, len(codecs))
	for _, c := range codecs {
		exts = append(exts, c.Ext())
	}

	return exts
}

// CodecForPath picks the codec from the file extension
func CodecForPath(path string) (Codec, bool) {
	for _, c := range codecs {
		if strings.HasSuffix(path, c.Ext()) {
			return c, true
		}
	}

	return Gzip, false
}

func newEncoder(w io.Writer, c Codec) (io.WriteCloser, error) {
	switch c {
	case Zstd:
		return zstd.NewWriter(w,
			zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
			zstd.WithWindowSize(1<<23))
	default:
		return gzip.NewWriterLevel(w, gzip.DefaultCompression)
	}
}

func newDecoder(r io.Reader, c Codec) (io.ReadCloser, error) {
	switch c {
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}

		return dec.IOReadCloser(), nil
	default:
		return gzip.NewReader(r)
	}
}

// Compress appends the content of path as one new member to path+ext and
// removes path. Earlier members stay readable: both codecs decode
// concatenated members as a single stream. A failed append is truncated
// away so the archive is left as it was.
func Compress(path string, c Codec) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dstPath := path + c.Ext()

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}

	info, err := dst.Stat()
	if err != nil {
		dst.Close()

		return err
	}

	err = encode(dst, src, c)
	if err != nil {
		_ = dst.Truncate(info.Size())
		dst.Close()

		return fmt.Errorf("failed to compress %s: %w", path, err)
	}

	err = dst.Close()
	if err != nil {
		return fmt.Errorf("failed to close %s: %w", dstPath, err)
	}

	src.Close()

	return os.Remove(path)
}

func encode(dst io.Writer, src io.Reader, c Codec) error {
	enc, err := newEncoder(dst, c)
	if err != nil {
		return err
	}

	_, err = io.Copy(enc, src)
	if err != nil {
		enc.Close()

		return err
	}

	return enc.Close()
}

// Decompress writes the decoded content of path next to it, without the
// codec extension, and removes path. On failure the partial output is
// removed and path is kept.
func Decompress(path string) error {
	c, ok := CodecForPath(path)
	if !ok {
		return fmt.Errorf("not a compressed file: %s", path)
	}

	dstPath := strings.TrimSuffix(path, c.Ext())
	if dstPath == "" {
		return fmt.Errorf("invalid compressed file name: %s", path)
	}

	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return err
	}

	err = decode(dst, src, c)
	closeErr := dst.Close()

	if err == nil && closeErr != nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(dstPath)

		return fmt.Errorf("failed to decompress %s: %w", path, err)
	}

	src.Close()

	return os.Remove(path)
}

func decode(dst io.Writer, src io.Reader, c Codec) error {
	dec, err := newDecoder(src, c)
	if err != nil {
		return err
	}

	_, err = io.Copy(dst, dec)

	return errors.Join(err, dec.Close())
}
