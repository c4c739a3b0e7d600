package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/RichardoC/askbot/internal/models"
)

// Timestamps are stored as unix milliseconds so both drivers agree.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS chats (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_chats_user_updated ON chats(user_id, updated_at)`,
	`CREATE TABLE IF NOT EXISTS messages (
    id TEXT PRIMARY KEY,
    chat_id TEXT NOT NULL,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    tool_result TEXT,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (chat_id) REFERENCES chats(id) ON DELETE CASCADE
)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_chat_created ON messages(chat_id, created_at)`,
}

type Database struct {
	db  *sql.DB
	now func() time.Time
}

// New opens the database with driver "sqlite3" (cgo) or "sqlite" (pure Go)
// and applies the schema.
func New(driver, dbPath string) (*Database, error) {
	db, err := sql.Open(driver, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	// One connection keeps pragmas in effect and serializes writers.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return &Database{db: db, now: time.Now}, nil
}

func (db *Database) Close() error {
	return db.db.Close()
}

func (db *Database) Ping(ctx context.Context) error {
	return db.db.PingContext(ctx)
}

func (db *Database) timestamp() time.Time {
	return db.now().UTC().Truncate(time.Millisecond)
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertChat(ctx context.Context, ex execer, chat *models.Chat) error {
	_, err := ex.ExecContext(ctx, `
        INSERT INTO chats (id, user_id, title, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?)`,
		chat.ID, chat.UserID, chat.Title, chat.CreatedAt.UnixMilli(), chat.UpdatedAt.UnixMilli())
	return err
}

func insertMessage(ctx context.Context, ex execer, msg *models.Message) error {
	var tool sql.NullString
	if msg.ToolResult != nil {
		data, err := json.Marshal(msg.ToolResult)
		if err != nil {
			return fmt.Errorf("encode tool result: %w", err)
		}
		tool = sql.NullString{String: string(data), Valid: true}
	}
	if _, err := ex.ExecContext(ctx, `
        INSERT INTO messages (id, chat_id, role, content, tool_result, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.ChatID, msg.Role, msg.Content, tool, msg.CreatedAt.UnixMilli()); err != nil {
		return err
	}
	_, err := ex.ExecContext(ctx, `UPDATE chats SET updated_at = ? WHERE id = ?`,
		msg.CreatedAt.UnixMilli(), msg.ChatID)
	return err
}

func (db *Database) prepareChat(chat *models.Chat) {
	if chat.ID == "" {
		chat.ID = uuid.NewString()
	}
	if chat.Title == "" {
		chat.Title = models.DefaultChatTitle
	}
	now := db.timestamp()
	chat.CreatedAt = now
	chat.UpdatedAt = now
}

func (db *Database) prepareMessage(msg *models.Message, notBefore time.Time) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.CreatedAt = db.timestamp()
	if msg.CreatedAt.Before(notBefore) {
		msg.CreatedAt = notBefore
	}
}

// CreateChat inserts chat, filling its ID, default title and timestamps.
func (db *Database) CreateChat(ctx context.Context, chat *models.Chat) error {
	db.prepareChat(chat)
	if err := insertChat(ctx, db.db, chat); err != nil {
		return fmt.Errorf("create chat: %w", err)
	}
	return nil
}

// CreateChatWithMessage inserts a chat and its first message atomically.
func (db *Database) CreateChatWithMessage(ctx context.Context, chat *models.Chat, msg *models.Message) error {
	db.prepareChat(chat)
	msg.ChatID = chat.ID
	db.prepareMessage(msg, chat.CreatedAt)

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertChat(ctx, tx, chat); err != nil {
		return fmt.Errorf("create chat: %w", err)
	}
	if err := insertMessage(ctx, tx, msg); err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	chat.UpdatedAt = msg.CreatedAt
	return nil
}

// SaveMessage appends msg to its chat and bumps the chat's updated_at.
func (db *Database) SaveMessage(ctx context.Context, msg *models.Message) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Keep message order monotonic even if the clock steps back.
	var last sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		`SELECT MAX(created_at) FROM messages WHERE chat_id = ?`, msg.ChatID).Scan(&last); err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	var notBefore time.Time
	if last.Valid {
		notBefore = fromMillis(last.Int64)
	}
	db.prepareMessage(msg, notBefore)

	if err := insertMessage(ctx, tx, msg); err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return tx.Commit()
}

func (db *Database) UpdateChatTitle(ctx context.Context, id, title string) error {
	_, err := db.db.ExecContext(ctx, "UPDATE chats SET title = ? WHERE id = ?", title, id)
	return err
}

// ListChats returns the user's chats, most recently updated first, each with
// its first message and message count.
func (db *Database) ListChats(ctx context.Context, userID string) ([]models.ChatSummary, error) {
	rows, err := db.db.QueryContext(ctx, `
        SELECT c.id, c.user_id, c.title, c.created_at, c.updated_at,
               (SELECT COUNT(*) FROM messages m WHERE m.chat_id = c.id),
               f.id, f.role, f.content, f.tool_result, f.created_at
        FROM chats c
        LEFT JOIN messages f ON f.rowid = (
            SELECT m.rowid FROM messages m
            WHERE m.chat_id = c.id
            ORDER BY m.created_at, m.rowid
            LIMIT 1)
        WHERE c.user_id = ?
        ORDER BY c.updated_at DESC, c.rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	chats := make([]models.ChatSummary, 0)
	for rows.Next() {
		var (
			s                 models.ChatSummary
			created, updated  int64
			msgID, role, body sql.NullString
			tool              sql.NullString
			msgCreated        sql.NullInt64
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &created, &updated, &s.Count.Messages,
			&msgID, &role, &body, &tool, &msgCreated); err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		s.CreatedAt = fromMillis(created)
		s.UpdatedAt = fromMillis(updated)
		s.Messages = []models.Message{}
		if msgID.Valid {
			msg := models.Message{
				ID:        msgID.String,
				ChatID:    s.ID,
				Role:      role.String,
				Content:   body.String,
				CreatedAt: fromMillis(msgCreated.Int64),
			}
			if msg.ToolResult, err = decodeToolResult(tool); err != nil {
				return nil, err
			}
			s.Messages = append(s.Messages, msg)
		}
		chats = append(chats, s)
	}
	return chats, rows.Err()
}

// GetChat returns the user's chat with all messages oldest first, or nil if
// it does not exist or belongs to someone else.
func (db *Database) GetChat(ctx context.Context, userID, id string) (*models.Chat, error) {
	chat := &models.Chat{}
	var created, updated int64
	err := db.db.QueryRowContext(ctx, `
        SELECT id, user_id, title, created_at, updated_at
        FROM chats
        WHERE id = ? AND user_id = ?`, id, userID).
		Scan(&chat.ID, &chat.UserID, &chat.Title, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	chat.CreatedAt = fromMillis(created)
	chat.UpdatedAt = fromMillis(updated)

	chat.Messages, err = db.messages(ctx, id)
	if err != nil {
		return nil, err
	}
	return chat, nil
}

func (db *Database) messages(ctx context.Context, chatID string) ([]models.Message, error) {
	rows, err := db.db.QueryContext(ctx, `
        SELECT id, chat_id, role, content, tool_result, created_at
        FROM messages
        WHERE chat_id = ?
        ORDER BY created_at, rowid`, chatID)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var (
			msg     models.Message
			tool    sql.NullString
			created int64
		)
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.Role, &msg.Content, &tool, &created); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.CreatedAt = fromMillis(created)
		if msg.ToolResult, err = decodeToolResult(tool); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func decodeToolResult(s sql.NullString) (*models.ToolResult, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var tr models.ToolResult
	if err := json.Unmarshal([]byte(s.String), &tr); err != nil {
		return nil, fmt.Errorf("decode tool result: %w", err)
	}
	return &tr, nil
}

// DeleteChat removes the user's chat and its messages. It reports false if
// no such chat exists for the user.
func (db *Database) DeleteChat(ctx context.Context, userID, id string) (bool, error) {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chats WHERE id = ? AND user_id = ?`, id, userID).Scan(&n); err != nil {
		return false, fmt.Errorf("delete chat: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE chat_id = ?", id); err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM chats WHERE id = ?", id); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}
