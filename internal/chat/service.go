// Package chat persists conversations and produces assistant replies.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/RichardoC/askbot/internal/assistant"
	"github.com/RichardoC/askbot/internal/llm"
	"github.com/RichardoC/askbot/internal/models"
)

// ErrNotFound is returned for a chat that does not exist or belongs to
// another user.
var ErrNotFound = errors.New("chat not found")

type Store interface {
	CreateChat(ctx context.Context, chat *models.Chat) error
	CreateChatWithMessage(ctx context.Context, chat *models.Chat, msg *models.Message) error
	SaveMessage(ctx context.Context, msg *models.Message) error
	UpdateChatTitle(ctx context.Context, id, title string) error
	ListChats(ctx context.Context, userID string) ([]models.ChatSummary, error)
	GetChat(ctx context.Context, userID, id string) (*models.Chat, error)
	DeleteChat(ctx context.Context, userID, id string) (bool, error)
}

type Responder interface {
	Reply(ctx context.Context, text string) assistant.Reply
}

type Titler interface {
	Title(ctx context.Context, message string) string
}

type Service struct {
	store     Store
	responder Responder
	titler    Titler
	logger    *zap.Logger
}

func NewService(store Store, responder Responder, titler Titler, logger *zap.Logger) *Service {
	return &Service{store: store, responder: responder, titler: titler, logger: logger}
}

// SendResult is the outcome of Send. ChatID is empty when nothing was stored.
type SendResult struct {
	ChatID  string
	Message string
	Reply   *models.Message
}

// Send stores text as a user message in chatID, or in a new chat when chatID
// is empty, then stores and returns the assistant's reply.
func (s *Service) Send(ctx context.Context, userID, chatID, text string) (*SendResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return &SendResult{Message: assistant.HelpText}, nil
	}

	userMsg := &models.Message{Role: models.RoleUser, Content: text}
	if chatID == "" {
		chat := &models.Chat{UserID: userID, Title: s.title(ctx, text)}
		if err := s.store.CreateChatWithMessage(ctx, chat, userMsg); err != nil {
			return nil, fmt.Errorf("start chat: %w", err)
		}
		chatID = chat.ID
		s.logger.Info("chat created", zap.String("chat_id", chatID), zap.String("user_id", userID))
	} else {
		chat, err := s.store.GetChat(ctx, userID, chatID)
		if err != nil {
			return nil, err
		}
		if chat == nil {
			return nil, ErrNotFound
		}
		userMsg.ChatID = chatID
		if err := s.store.SaveMessage(ctx, userMsg); err != nil {
			return nil, err
		}
		// A chat created empty takes its title from its first message.
		if len(chat.Messages) == 0 && chat.Title == models.DefaultChatTitle {
			if err := s.store.UpdateChatTitle(ctx, chatID, s.title(ctx, text)); err != nil {
				s.logger.Warn("failed to update chat title", zap.String("chat_id", chatID), zap.Error(err))
			}
		}
	}

	reply := s.responder.Reply(ctx, text)
	assistantMsg := &models.Message{
		ChatID:     chatID,
		Role:       models.RoleAssistant,
		Content:    reply.Content,
		ToolResult: reply.Tool,
	}
	if err := s.store.SaveMessage(ctx, assistantMsg); err != nil {
		return nil, err
	}

	return &SendResult{ChatID: chatID, Message: reply.Content, Reply: assistantMsg}, nil
}

func (s *Service) title(ctx context.Context, text string) string {
	t := llm.Truncate(text)
	if s.titler != nil {
		t = s.titler.Title(ctx, text)
	}
	if t == "" {
		return models.DefaultChatTitle
	}
	return t
}

func (s *Service) List(ctx context.Context, userID string) ([]models.ChatSummary, error) {
	return s.store.ListChats(ctx, userID)
}

// Create makes an empty chat. An empty title becomes the default.
func (s *Service) Create(ctx context.Context, userID, title string) (*models.Chat, error) {
	chat := &models.Chat{UserID: userID, Title: strings.TrimSpace(title), Messages: []models.Message{}}
	if err := s.store.CreateChat(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *Service) Get(ctx context.Context, userID, chatID string) (*models.Chat, error) {
	chat, err := s.store.GetChat(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrNotFound
	}
	return chat, nil
}

func (s *Service) Delete(ctx context.Context, userID, chatID string) error {
	ok, err := s.store.DeleteChat(ctx, userID, chatID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	s.logger.Info("chat deleted", zap.String("chat_id", chatID), zap.String("user_id", userID))
	return nil
}
