package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ucanhq/convocache/types"
)

// Offline snapshot file prefixes. One file per conversation record, one per
// message list.
const (
	offlineConvPrefix = "conv_"
	offlineMsgsPrefix = "msgs_"
)

// PrepareOffline materializes the given conversations into the offline
// snapshot area. Only data the tiered cache can currently resolve is
// snapshotted; conversations with nothing cached are skipped. Per-entry
// failures are logged and do not abort the remaining ids.
func (m *Manager) PrepareOffline(conversationIDs []string) error {
	dir := filepath.Join(m.root, dirOffline)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create offline directory: %w", err)
	}

	for _, id := range conversationIDs {
		if conv, ok := m.GetConversation(id); ok {
			if err := m.writeOffline(dir, offlineConvPrefix, id, conv); err != nil {
				m.logger.Warn("offline conversation snapshot failed",
					zap.String("conversation_id", id),
					zap.Error(err))
			}
		}
		if msgs, ok := m.GetMessages(id); ok {
			if err := m.writeOffline(dir, offlineMsgsPrefix, id, msgs); err != nil {
				m.logger.Warn("offline message snapshot failed",
					zap.String("conversation_id", id),
					zap.Error(err))
			}
		}
	}
	return nil
}

// LoadOffline scans the offline snapshot area and populates the memory tier,
// bypassing TTL checks — snapshots are trusted for the session that loaded
// them. Missing or corrupt files are skipped with a logged error; partial
// success is acceptable. Returns the number of entries loaded.
func (m *Manager) LoadOffline() int {
	dir := filepath.Join(m.root, dirOffline)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn("offline directory scan failed", zap.Error(err))
		}
		return 0
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != m.codec.Ext() {
			continue
		}
		stem := strings.TrimSuffix(name, m.codec.Ext())

		switch {
		case strings.HasPrefix(stem, offlineConvPrefix):
			id, ok := m.offlineID(stem, offlineConvPrefix, name)
			if !ok {
				continue
			}
			var conv types.Conversation
			if !m.readOffline(filepath.Join(dir, name), &conv) {
				continue
			}
			m.conversations.PutMemory(id, conv)
			loaded++
		case strings.HasPrefix(stem, offlineMsgsPrefix):
			id, ok := m.offlineID(stem, offlineMsgsPrefix, name)
			if !ok {
				continue
			}
			var msgs []*types.Message
			if !m.readOffline(filepath.Join(dir, name), &msgs) {
				continue
			}
			m.messages.PutMemory(id, msgs)
			loaded++
		}
	}
	return loaded
}

func (m *Manager) clearOffline() {
	dir := filepath.Join(m.root, dirOffline)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn("offline directory scan failed", zap.Error(err))
		}
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != m.codec.Ext() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			m.logger.Warn("offline file removal failed",
				zap.String("path", path),
				zap.Error(err))
		}
	}
}

// writeOffline stores a raw compressed JSON value, without the TTL envelope
// the live tiers use — offline entries are valid for as long as they exist.
func (m *Manager) writeOffline(dir, prefix, conversationID string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal offline value: %w", err)
	}
	var buf bytes.Buffer
	if err := m.codec.Compress(&buf, bytes.NewReader(data)); err != nil {
		return err
	}
	path := filepath.Join(dir, prefix+url.PathEscape(conversationID)+m.codec.Ext())
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write offline file: %w", err)
	}
	return nil
}

func (m *Manager) readOffline(path string, out any) bool {
	raw, err := os.ReadFile(path)
	if err != nil {
		m.logger.Warn("offline file read failed",
			zap.String("path", path),
			zap.Error(err))
		return false
	}
	var buf bytes.Buffer
	if err := m.codec.Decompress(&buf, bytes.NewReader(raw)); err != nil {
		m.logger.Warn("offline file failed to decompress",
			zap.String("path", path),
			zap.Error(err))
		return false
	}
	if err := json.Unmarshal(buf.Bytes(), out); err != nil {
		m.logger.Warn("offline file is corrupt",
			zap.String("path", path),
			zap.Error(err))
		return false
	}
	return true
}

func (m *Manager) offlineID(stem, prefix, name string) (string, bool) {
	id, err := url.PathUnescape(strings.TrimPrefix(stem, prefix))
	if err != nil {
		m.logger.Warn("offline file has an unparseable name", zap.String("name", name))
		return "", false
	}
	return id, true
}
