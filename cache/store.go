package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ucanhq/convocache/codec"
)

// Tier identifies which cache tier served a lookup.
type Tier string

const (
	// TierMemory is the in-process map tier.
	TierMemory Tier = "memory"

	// TierDisk is the compressed on-disk tier.
	TierDisk Tier = "disk"
)

// envelope is the on-disk representation of a cached value. The timestamp is
// the entry's creation time; an entry older than the store's TTL is treated
// as absent.
type envelope struct {
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Store is a two-tier cache for values of type V: an in-process map for hot
// entries backed by one compressed file per key for entries that survive
// across runs. Values must round-trip through encoding/json.
//
// Store does no internal locking. Callers that introduce concurrency must
// serialize access per key; two writers racing on the same on-disk entry is
// undefined.
type Store[V any] struct {
	dir    string
	ttl    time.Duration
	codec  codec.Codec
	logger *zap.Logger
	mem    map[string]V
}

// NewStore creates a Store backed by the given directory. The directory is
// created lazily on the first Put. A nil logger disables logging.
func NewStore[V any](dir string, ttl time.Duration, c codec.Codec, logger *zap.Logger) *Store[V] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store[V]{
		dir:    dir,
		ttl:    ttl,
		codec:  c,
		logger: logger,
		mem:    make(map[string]V),
	}
}

// Get returns the cached value for key and the tier that served it. The
// memory tier is checked first; on a miss the on-disk tier is read,
// decompressed, and TTL-checked. A valid disk hit is promoted into memory.
// Expired or unreadable entries are treated as absent — every failure mode
// on the read path degrades to a cache miss, never an error.
func (s *Store[V]) Get(key string) (V, Tier, bool) {
	if v, ok := s.mem[key]; ok {
		return v, TierMemory, true
	}

	var zero V
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("cache read failed",
				zap.String("key", key),
				zap.Error(err))
		}
		return zero, "", false
	}

	var buf bytes.Buffer
	if err := s.codec.Decompress(&buf, bytes.NewReader(raw)); err != nil {
		s.logger.Warn("cache entry failed to decompress",
			zap.String("key", key),
			zap.Error(err))
		return zero, "", false
	}

	var env envelope
	if err := json.Unmarshal(buf.Bytes(), &env); err != nil {
		s.logger.Warn("cache entry envelope is corrupt",
			zap.String("key", key),
			zap.Error(err))
		return zero, "", false
	}

	// Expired entries are not promoted; the file is left for the next Put
	// or an explicit Invalidate/Clear to overwrite or remove.
	if time.Since(env.Timestamp) > s.ttl {
		return zero, "", false
	}

	var value V
	if err := json.Unmarshal(env.Data, &value); err != nil {
		s.logger.Warn("cache entry payload is corrupt",
			zap.String("key", key),
			zap.Error(err))
		return zero, "", false
	}

	s.mem[key] = value
	return value, TierDisk, true
}

// Put stores value under key: a fresh-timestamped envelope is compressed to
// the on-disk tier and the raw value is stored in memory. A disk write
// failure is logged and swallowed — the caller's value is cached in memory
// regardless.
func (s *Store[V]) Put(key string, value V) {
	if err := s.writeDisk(key, value); err != nil {
		s.logger.Warn("cache write failed",
			zap.String("key", key),
			zap.Error(err))
	}
	s.mem[key] = value
}

// PutMemory stores value in the memory tier only, without touching disk or
// stamping a TTL. Used when loading trusted offline snapshots.
func (s *Store[V]) PutMemory(key string, value V) {
	s.mem[key] = value
}

// Invalidate removes key from both tiers. Calling it on an absent key is not
// an error.
func (s *Store[V]) Invalidate(key string) {
	delete(s.mem, key)
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("cache file removal failed",
			zap.String("key", key),
			zap.Error(err))
	}
}

// Clear empties the memory tier and deletes every cache file in the store's
// directory.
func (s *Store[V]) Clear() {
	s.mem = make(map[string]V)

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("cache directory scan failed",
				zap.String("dir", s.dir),
				zap.Error(err))
		}
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != s.codec.Ext() {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warn("cache file removal failed",
				zap.String("path", path),
				zap.Error(err))
		}
	}
}

// MemoryLen reports the number of entries in the memory tier.
func (s *Store[V]) MemoryLen() int {
	return len(s.mem)
}

// Path returns the on-disk location for key. Exposed for instrumentation and
// tests; production callers never touch the files directly.
func (s *Store[V]) Path(key string) string {
	return s.path(key)
}

func (s *Store[V]) writeDisk(key string, value V) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	payload, err := json.Marshal(envelope{Data: data, Timestamp: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory %s: %w", s.dir, err)
	}

	var buf bytes.Buffer
	if err := s.codec.Compress(&buf, bytes.NewReader(payload)); err != nil {
		return err
	}
	if err := os.WriteFile(s.path(key), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	return nil
}

// path maps a key to its cache file. Escaping is injective, so distinct keys
// never share a file.
func (s *Store[V]) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+s.codec.Ext())
}
