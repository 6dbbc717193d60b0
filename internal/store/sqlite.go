// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides conversation/message/profile persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// timeLayout is a fixed-width RFC 3339 variant with millisecond precision.
// All timestamps are stored as UTC strings in this layout, so lexicographic
// order equals chronological order and index scans sort correctly.
const timeLayout = "2006-01-02T15:04:05.000Z"

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS conversations (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			agent_id   TEXT NOT NULL,
			title      TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_conversations_pair
			ON conversations(user_id, agent_id, updated_at);

		CREATE TABLE IF NOT EXISTS messages (
			id              TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			role            TEXT NOT NULL,
			content         TEXT NOT NULL,
			created_at      TEXT NOT NULL,
			FOREIGN KEY (conversation_id) REFERENCES conversations(id),
			CHECK (role IN ('user', 'assistant'))
		);

		CREATE INDEX IF NOT EXISTS idx_messages_conversation_created
			ON messages(conversation_id, created_at);

		CREATE TABLE IF NOT EXISTS user_profiles (
			user_id        TEXT PRIMARY KEY,
			preferred_name TEXT NOT NULL,
			created_at     TEXT NOT NULL,
			updated_at     TEXT NOT NULL
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// CreateConversation creates a new conversation for the given user/agent pair.
// No uniqueness is enforced on the pair; every call creates a fresh row.
func (s *SQLiteStore) CreateConversation(ctx context.Context, userID, agentID, title string) (*Conversation, error) {
	now := time.Now().UTC()
	conv := &Conversation{
		ID:        uuid.New().String(),
		UserID:    userID,
		AgentID:   agentID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
		INSERT INTO conversations (id, user_id, agent_id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		conv.ID,
		conv.UserID,
		conv.AgentID,
		conv.Title,
		conv.CreatedAt.Format(timeLayout),
		conv.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting conversation: %w", err)
	}

	s.logger.Debug("created conversation", "id", conv.ID, "user_id", userID, "agent_id", agentID)
	return conv, nil
}

// FindLatestForPair retrieves the most recently updated conversation for a
// (user, agent) pair. Returns ErrNotFound if the pair has no conversations.
func (s *SQLiteStore) FindLatestForPair(ctx context.Context, userID, agentID string) (*Conversation, error) {
	query := `
		SELECT id, user_id, agent_id, title, created_at, updated_at
		FROM conversations
		WHERE user_id = ? AND agent_id = ?
		ORDER BY updated_at DESC
		LIMIT 1
	`

	return s.scanConversation(s.db.QueryRowContext(ctx, query, userID, agentID))
}

// GetOwnedConversation retrieves a conversation by ID, verifying ownership.
// Returns ErrNotFound both when the conversation doesn't exist and when it
// belongs to a different user, so existence is never leaked across users.
func (s *SQLiteStore) GetOwnedConversation(ctx context.Context, conversationID, userID string) (*Conversation, error) {
	query := `
		SELECT id, user_id, agent_id, title, created_at, updated_at
		FROM conversations
		WHERE id = ? AND user_id = ?
	`

	return s.scanConversation(s.db.QueryRowContext(ctx, query, conversationID, userID))
}

func (s *SQLiteStore) scanConversation(row *sql.Row) (*Conversation, error) {
	var conv Conversation
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&conv.ID,
		&conv.UserID,
		&conv.AgentID,
		&conv.Title,
		&createdAtStr,
		&updatedAtStr,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying conversation: %w", err)
	}

	conv.CreatedAt, err = time.Parse(timeLayout, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	conv.UpdatedAt, err = time.Parse(timeLayout, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &conv, nil
}

// TouchConversation sets the conversation's updated_at to the current time.
// Returns ErrNotFound if the conversation doesn't exist.
func (s *SQLiteStore) TouchConversation(ctx context.Context, conversationID string) error {
	query := `UPDATE conversations SET updated_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query,
		time.Now().UTC().Format(timeLayout),
		conversationID,
	)
	if err != nil {
		return fmt.Errorf("touching conversation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("touched conversation", "id", conversationID)
	return nil
}

// AppendMessage appends a message to a conversation's log. The stored
// created_at is clamped to the conversation's previous maximum, so it is
// non-decreasing across successive appends even if the wall clock steps
// backwards. The lookup and insert run in one transaction.
func (s *SQLiteStore) AppendMessage(ctx context.Context, conversationID, role, content string) (*Message, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	if role != RoleUser && role != RoleAssistant {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	createdAt := time.Now().UTC().Format(timeLayout)

	var lastCreated sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT MAX(created_at) FROM messages WHERE conversation_id = ?`,
		conversationID,
	).Scan(&lastCreated)
	if err != nil {
		return nil, fmt.Errorf("querying last message time: %w", err)
	}
	if lastCreated.Valid && lastCreated.String > createdAt {
		createdAt = lastCreated.String
	}

	msg := &Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, msg.ID, msg.ConversationID, msg.Role, msg.Content, createdAt)
	if err != nil {
		return nil, fmt.Errorf("inserting message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing message: %w", err)
	}

	msg.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing message created_at: %w", err)
	}

	s.logger.Debug("appended message", "id", msg.ID, "conversation_id", conversationID, "role", role)
	return msg, nil
}

// ListMessages retrieves messages for a conversation in chronological order
// (oldest first). If limit is positive, the most recent `limit` messages are
// returned, still in chronological order - a suffix window of the log.
// If limit is 0 or negative, all messages are returned.
// rowid breaks ties between messages stored in the same millisecond.
func (s *SQLiteStore) ListMessages(ctx context.Context, conversationID string, limit int) ([]*Message, error) {
	var query string
	var args []any

	if limit > 0 {
		// Get the N most recent messages, but return them in chronological order
		query = `
			SELECT id, conversation_id, role, content, created_at
			FROM (
				SELECT rowid AS rid, id, conversation_id, role, content, created_at
				FROM messages
				WHERE conversation_id = ?
				ORDER BY created_at DESC, rowid DESC
				LIMIT ?
			)
			ORDER BY created_at ASC, rid ASC
		`
		args = []any{conversationID, limit}
	} else {
		query = `
			SELECT id, conversation_id, role, content, created_at
			FROM messages
			WHERE conversation_id = ?
			ORDER BY created_at ASC, rowid ASC
		`
		args = []any{conversationID}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var msg Message
		var createdAtStr string

		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}

		msg.CreatedAt, err = time.Parse(timeLayout, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing message created_at: %w", err)
		}

		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating message rows: %w", err)
	}

	return messages, nil
}

// GetProfile retrieves the profile for a user.
// Returns ErrNotFound if the user has never saved one.
func (s *SQLiteStore) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
	query := `
		SELECT user_id, preferred_name, created_at, updated_at
		FROM user_profiles
		WHERE user_id = ?
	`

	var profile UserProfile
	var createdAtStr, updatedAtStr string

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.PreferredName,
		&createdAtStr,
		&updatedAtStr,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}

	profile.CreatedAt, err = time.Parse(timeLayout, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	profile.UpdatedAt, err = time.Parse(timeLayout, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &profile, nil
}

// UpsertProfile creates or updates the profile for a user, keyed by user id.
// created_at is preserved on update.
func (s *SQLiteStore) UpsertProfile(ctx context.Context, userID, preferredName string) (*UserProfile, error) {
	if preferredName == "" {
		return nil, ErrEmptyContent
	}

	now := time.Now().UTC().Format(timeLayout)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_profiles (user_id, preferred_name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			preferred_name = excluded.preferred_name,
			updated_at = excluded.updated_at
	`, userID, preferredName, now, now)
	if err != nil {
		return nil, fmt.Errorf("upserting profile: %w", err)
	}

	s.logger.Debug("saved profile", "user_id", userID)
	return s.GetProfile(ctx, userID)
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
