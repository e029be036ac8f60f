// Package convocache provides a conversation cache and context-compression
// subsystem for chat applications backed by an external message store.
//
// It is opinionated (Anthropic summarization, gzip on disk, PostgreSQL or
// SQLite persistence), modular, and designed for clients that keep long
// conversation histories but hand a language model a bounded context.
//
// # Key Features
//
//   - Two-tier conversation cache: in-process memory over compressed disk
//     files with a TTL, promotion on disk hits, and explicit invalidation
//   - History compression: day-groups of old messages folded into durable
//     summary records via Anthropic, with a content-hash summary cache
//   - Context assembly: summaries plus recent raw messages, trimmed to a
//     token budget newest-first
//   - Offline snapshots: TTL-exempt cache exports for running disconnected
//   - Hooks for observing cache tiers and compression passes
//
// # Quick Start
//
// Create a manager over a store and a summarizer:
//
//	store, _ := storage.OpenSQLite("app.db")
//	client := anthropic.NewClient()
//	sum := summarizer.NewAnthropic(&client, summarizer.DefaultModel)
//
//	mgr, err := convocache.New(store, sum, convocache.Config{
//	    CacheDir: "/var/lib/myapp/cache",
//	})
//
// Read through the cache, compress old history, and assemble model context:
//
//	conv, _ := mgr.Conversation(ctx, conversationID)
//	_, _ = mgr.CompressHistory(ctx, conversationID)
//	items, _ := mgr.Context(ctx, conversationID, 4000)
//
// The cache assumes one goroutine touches a given conversation at a time;
// coordination across goroutines belongs to the caller.
package convocache
