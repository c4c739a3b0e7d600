package models

import (
	"encoding/json"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	DefaultChatTitle = "New Chat"
)

type Message struct {
	ID         string      `json:"id"`
	ChatID     string      `json:"chatId"`
	Role       string      `json:"role"` // user or assistant
	Content    string      `json:"content"`
	ToolResult *ToolResult `json:"toolResult,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

type Chat struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Messages  []Message `json:"messages"`
}

// ChatSummary is a list entry: the chat, its first message as a preview and
// the total message count.
type ChatSummary struct {
	Chat
	Count MessageCount `json:"_count"`
}

type MessageCount struct {
	Messages int `json:"messages"`
}

type ToolType string

const (
	ToolWeather ToolType = "weather"
	ToolStock   ToolType = "stock"
	ToolF1      ToolType = "f1"
)

// ToolResult is the structured payload persisted with assistant messages.
type ToolResult struct {
	Type ToolType        `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NewToolResult marshals v as the payload of a tool result.
func NewToolResult(t ToolType, v any) (*ToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &ToolResult{Type: t, Data: data}, nil
}
