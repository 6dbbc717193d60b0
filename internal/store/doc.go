// Package store provides persistent storage for expert-gateway using SQLite.
//
// # Data Models
//
//   - Conversation: the message thread between one user and one agent
//   - Message: append-only log entries with role "user" or "assistant"
//   - UserProfile: per-user preferred display name
//
// # Guarantees
//
// Messages are append-only and ordered: created_at is non-decreasing across
// successive appends to the same conversation (AppendMessage clamps against
// the previous maximum inside a transaction). ListMessages with a limit
// returns the most recent N messages as a suffix window, still ascending.
//
// Conversation lookups by (user, agent) pair return the most recently
// updated match; no uniqueness is enforced on the pair.
// GetOwnedConversation returns ErrNotFound for both missing rows and rows
// owned by another user, so cross-user existence is never leaked.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// Timestamps are stored as fixed-width UTC strings with millisecond
// precision, so string comparison in SQL matches chronological order.
//
// Use NewSQLiteStore(":memory:") for tests that want a throwaway database.
package store
