// Package codec provides the streaming compression codec used by the on-disk
// cache tiers. Implementations are stateless and safe for concurrent use.
package codec

import (
	"io"
)

// Codec compresses and decompresses arbitrary byte payloads.
type Codec interface {
	// Compress reads src to EOF and writes the compressed stream to dst.
	Compress(dst io.Writer, src io.Reader) error

	// Decompress reads a compressed stream from src and writes the original
	// bytes to dst.
	Decompress(dst io.Writer, src io.Reader) error

	// Ext is the file extension for payloads produced by this codec,
	// including the leading dot.
	Ext() string
}
