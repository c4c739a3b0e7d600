package db

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/RichardoC/askbot/internal/models"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	database, err := New("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// stepClock returns a clock that advances by step on every call.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	now := start
	return func() time.Time {
		t := now
		now = now.Add(step)
		return t
	}
}

func TestCreateChatWithMessageRoundTrip(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	chat := &models.Chat{UserID: "alice"}
	msg := &models.Message{Role: models.RoleUser, Content: "What's the weather in Tokyo?"}
	if err := database.CreateChatWithMessage(ctx, chat, msg); err != nil {
		t.Fatalf("CreateChatWithMessage: %v", err)
	}
	if chat.ID == "" || msg.ID == "" || msg.ChatID != chat.ID {
		t.Fatalf("ids not assigned: chat=%q msg=%q chatId=%q", chat.ID, msg.ID, msg.ChatID)
	}
	if chat.Title != models.DefaultChatTitle {
		t.Errorf("title = %q, want default", chat.Title)
	}

	got, err := database.GetChat(ctx, "alice", chat.ID)
	if err != nil {
		t.Fatalf("GetChat: %v", err)
	}
	if got == nil || len(got.Messages) != 1 {
		t.Fatalf("GetChat = %+v", got)
	}
	m := got.Messages[0]
	if m.Content != msg.Content || m.Role != models.RoleUser {
		t.Errorf("message = %+v", m)
	}
	if m.CreatedAt.Before(got.CreatedAt) {
		t.Errorf("message created %v before chat %v", m.CreatedAt, got.CreatedAt)
	}
	if !got.UpdatedAt.Equal(m.CreatedAt) {
		t.Errorf("updatedAt = %v, want %v", got.UpdatedAt, m.CreatedAt)
	}
}

func TestSaveMessageOrderAndToolResult(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	database.now = stepClock(start, time.Second)

	chat := &models.Chat{UserID: "alice", Title: "Stocks"}
	if err := database.CreateChat(ctx, chat); err != nil {
		t.Fatalf("CreateChat: %v", err)
	}

	user := &models.Message{ChatID: chat.ID, Role: models.RoleUser, Content: "TCS stock price"}
	if err := database.SaveMessage(ctx, user); err != nil {
		t.Fatalf("SaveMessage: %v", err)
	}

	// A clock that jumped backwards must not reorder the conversation.
	database.now = func() time.Time { return start.Add(-time.Hour) }
	tool, err := models.NewToolResult(models.ToolStock, models.Quote{Symbol: "TCS.NS", Price: 3456.79, Currency: "₹"})
	if err != nil {
		t.Fatalf("NewToolResult: %v", err)
	}
	reply := &models.Message{ChatID: chat.ID, Role: models.RoleAssistant, Content: "📈 ...", ToolResult: tool}
	if err := database.SaveMessage(ctx, reply); err != nil {
		t.Fatalf("SaveMessage: %v", err)
	}

	got, err := database.GetChat(ctx, "alice", chat.ID)
	if err != nil || got == nil {
		t.Fatalf("GetChat = %v, %v", got, err)
	}
	if len(got.Messages) != 2 || got.Messages[0].ID != user.ID || got.Messages[1].ID != reply.ID {
		t.Fatalf("messages out of order: %+v", got.Messages)
	}
	if got.Messages[1].CreatedAt.Before(got.Messages[0].CreatedAt) {
		t.Fatal("timestamps went backwards")
	}
	if got.Messages[0].ToolResult != nil {
		t.Error("user message has a tool result")
	}
	tr := got.Messages[1].ToolResult
	if tr == nil || tr.Type != models.ToolStock {
		t.Fatalf("tool result = %+v", tr)
	}
	var q models.Quote
	if err := json.Unmarshal(tr.Data, &q); err != nil || q.Symbol != "TCS.NS" || q.Currency != "₹" {
		t.Fatalf("tool data = %s (%v)", tr.Data, err)
	}
	if got.Title != "Stocks" {
		t.Errorf("title = %q", got.Title)
	}
}

func TestListChats(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	database.now = stepClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), time.Minute)

	older := &models.Chat{UserID: "alice"}
	if err := database.CreateChatWithMessage(ctx, older, &models.Message{Role: models.RoleUser, Content: "first"}); err != nil {
		t.Fatal(err)
	}
	newer := &models.Chat{UserID: "alice", Title: "Empty"}
	if err := database.CreateChat(ctx, newer); err != nil {
		t.Fatal(err)
	}
	if err := database.CreateChat(ctx, &models.Chat{UserID: "bob"}); err != nil {
		t.Fatal(err)
	}
	// Appending to the older chat moves it to the top.
	if err := database.SaveMessage(ctx, &models.Message{ChatID: older.ID, Role: models.RoleAssistant, Content: "second"}); err != nil {
		t.Fatal(err)
	}
	if err := database.UpdateChatTitle(ctx, older.ID, "Renamed"); err != nil {
		t.Fatal(err)
	}

	chats, err := database.ListChats(ctx, "alice")
	if err != nil {
		t.Fatalf("ListChats: %v", err)
	}
	if len(chats) != 2 {
		t.Fatalf("got %d chats, want 2", len(chats))
	}
	if chats[0].ID != older.ID || chats[1].ID != newer.ID {
		t.Fatalf("order = %s, %s", chats[0].ID, chats[1].ID)
	}
	if chats[0].Title != "Renamed" || chats[0].Count.Messages != 2 {
		t.Errorf("first = %+v", chats[0])
	}
	if len(chats[0].Messages) != 1 || chats[0].Messages[0].Content != "first" {
		t.Errorf("preview = %+v", chats[0].Messages)
	}
	if chats[1].Count.Messages != 0 || len(chats[1].Messages) != 0 {
		t.Errorf("empty chat = %+v", chats[1])
	}

	none, err := database.ListChats(ctx, "carol")
	if err != nil || none == nil || len(none) != 0 {
		t.Fatalf("ListChats(carol) = %v, %v; want empty non-nil", none, err)
	}
}

func TestOwnership(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	chat := &models.Chat{UserID: "alice"}
	if err := database.CreateChat(ctx, chat); err != nil {
		t.Fatal(err)
	}

	got, err := database.GetChat(ctx, "bob", chat.ID)
	if err != nil || got != nil {
		t.Fatalf("GetChat(bob) = %v, %v; want nil", got, err)
	}
	if got, err := database.GetChat(ctx, "alice", chat.ID); err != nil || got == nil {
		t.Fatalf("GetChat(alice) = %v, %v", got, err)
	}
	if ok, err := database.DeleteChat(ctx, "bob", chat.ID); err != nil || ok {
		t.Fatalf("DeleteChat(bob) = %v, %v", ok, err)
	}
}

func TestDeleteChatRemovesMessages(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	chat := &models.Chat{UserID: "alice"}
	if err := database.CreateChatWithMessage(ctx, chat, &models.Message{Role: models.RoleUser, Content: "hi"}); err != nil {
		t.Fatal(err)
	}

	ok, err := database.DeleteChat(ctx, "alice", chat.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteChat = %v, %v", ok, err)
	}

	if got, err := database.GetChat(ctx, "alice", chat.ID); err != nil || got != nil {
		t.Fatalf("GetChat after delete = %v, %v", got, err)
	}
	chats, err := database.ListChats(ctx, "alice")
	if err != nil || len(chats) != 0 {
		t.Fatalf("ListChats after delete = %v, %v", chats, err)
	}
	var n int
	if err := database.db.QueryRow("SELECT COUNT(*) FROM messages WHERE chat_id = ?", chat.ID).Scan(&n); err != nil || n != 0 {
		t.Fatalf("orphaned messages: %d (%v)", n, err)
	}
	if ok, err := database.DeleteChat(ctx, "alice", chat.ID); err != nil || ok {
		t.Fatalf("second DeleteChat = %v, %v", ok, err)
	}
}
