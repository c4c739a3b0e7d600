package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

type fakeModel struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, m := range messages {
		for _, p := range m.Parts {
			if tp, ok := p.(llms.TextContent); ok {
				f.prompt += tp.Text
			}
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func TestTitleFromModel(t *testing.T) {
	m := &fakeModel{reply: "  \"Tokyo Weather Check.\"\nextra line"}
	s := NewWithModel(m, zap.NewNop())

	got := s.Title(context.Background(), "What's the weather in Tokyo?")
	if got != "Tokyo Weather Check" {
		t.Fatalf("Title = %q", got)
	}
	if !strings.Contains(m.prompt, "What's the weather in Tokyo?") {
		t.Fatalf("prompt missing message: %q", m.prompt)
	}
}

func TestTitleFallbacks(t *testing.T) {
	long := strings.Repeat("stock price of reliance industries ", 4)
	tests := []struct {
		name string
		s    *Service
		msg  string
		want string
	}{
		{"nil_service", nil, "  hello   there ", "hello there"},
		{"model_error", NewWithModel(&fakeModel{err: errors.New("down")}, zap.NewNop()), "When is the next F1 race?", "When is the next F1 race?"},
		{"empty_completion", NewWithModel(&fakeModel{reply: "  \n"}, zap.NewNop()), "hi", "hi"},
		{"long_message", nil, long, Truncate(long)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.s.Title(context.Background(), tc.msg); got != tc.want {
				t.Fatalf("Title = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	in := strings.Repeat("🏎️ fast ", 20)
	got := Truncate(in)
	if n := utf8.RuneCountInString(got); n > MaxTitleRunes {
		t.Fatalf("Truncate kept %d runes", n)
	}
	if !utf8.ValidString(got) {
		t.Fatal("Truncate split a rune")
	}
	if Truncate("short") != "short" {
		t.Fatal("short text changed")
	}
}
