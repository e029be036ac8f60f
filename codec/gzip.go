package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Gzip implements Codec using gzip streams.
type Gzip struct {
	level int
}

// NewGzip creates a gzip codec with the default compression level.
func NewGzip() *Gzip {
	return &Gzip{level: gzip.DefaultCompression}
}

// NewGzipLevel creates a gzip codec with an explicit compression level.
// Returns an error for levels outside the range gzip accepts.
func NewGzipLevel(level int) (*Gzip, error) {
	if _, err := gzip.NewWriterLevel(io.Discard, level); err != nil {
		return nil, fmt.Errorf("invalid gzip level %d: %w", level, err)
	}
	return &Gzip{level: level}, nil
}

// Compress reads src to EOF and writes the gzip stream to dst.
func (g *Gzip) Compress(dst io.Writer, src io.Reader) error {
	zw, err := gzip.NewWriterLevel(dst, g.level)
	if err != nil {
		return fmt.Errorf("create gzip writer: %w", err)
	}
	if _, err := io.Copy(zw, src); err != nil {
		zw.Close()
		return fmt.Errorf("compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flush gzip stream: %w", err)
	}
	return nil
}

// Decompress reads a gzip stream from src and writes the original bytes to dst.
func (g *Gzip) Decompress(dst io.Writer, src io.Reader) error {
	zr, err := gzip.NewReader(src)
	if err != nil {
		return fmt.Errorf("open gzip stream: %w", err)
	}
	defer zr.Close()
	if _, err := io.Copy(dst, zr); err != nil {
		return fmt.Errorf("decompress: %w", err)
	}
	return nil
}

// Ext returns ".gz".
func (g *Gzip) Ext() string {
	return ".gz"
}

// Encode compresses a byte slice in one call.
func (g *Gzip) Encode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.Compress(&buf, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode decompresses a byte slice in one call.
func (g *Gzip) Decode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.Decompress(&buf, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
