// Package llm names chats with a language model.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// MaxTitleRunes bounds every chat title.
const MaxTitleRunes = 50

const titlePrompt = `Write a short title (at most six words) for a chat that starts with the message below.
Respond with only the title, no quotes or punctuation at the end.

Message: %s

Title:`

// Service generates chat titles. A nil *Service or one without a model
// falls back to truncating the first message.
type Service struct {
	llm    llms.Model
	logger *zap.Logger
}

func New(baseURL, token, model string, logger *zap.Logger) (*Service, error) {
	llm, err := openai.New(
		openai.WithToken(token),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, err
	}
	return &Service{llm: llm, logger: logger}, nil
}

// NewWithModel wraps an existing model.
func NewWithModel(m llms.Model, logger *zap.Logger) *Service {
	return &Service{llm: m, logger: logger}
}

// Title returns a title for a chat whose first message is message.
func (s *Service) Title(ctx context.Context, message string) string {
	fallback := Truncate(message)
	if s == nil || s.llm == nil {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	completion, err := llms.GenerateFromSinglePrompt(ctx, s.llm, fmt.Sprintf(titlePrompt, message))
	if err != nil {
		s.logger.Warn("failed to generate chat title", zap.Error(err))
		return fallback
	}
	if title := cleanTitle(completion); title != "" {
		return title
	}
	return fallback
}

func cleanTitle(completion string) string {
	title := strings.TrimSpace(completion)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	title = strings.TrimPrefix(title, "Title:")
	title = strings.Trim(strings.TrimSpace(title), `"'`+"`")
	title = strings.TrimRight(title, ".")
	return Truncate(title)
}

// Truncate trims text and cuts it to MaxTitleRunes.
func Truncate(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= MaxTitleRunes {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:MaxTitleRunes]))
}
