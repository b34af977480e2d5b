package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"farmlink/internal/entities"
	"farmlink/internal/interfaces"
)

var (
	ErrChatBusy  = errors.New("previous message still processing")
	ErrEmptyText = errors.New("empty message")
)

// RateLimitedError reports a chat that exceeded its message rate
type RateLimitedError struct {
	Wait time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry in %s", e.Wait)
}

// ChatRouter is the channel-side caller of the assistant. It keeps the
// per-chat history, one request in flight per chat and the per-chat rate.
type ChatRouter struct {
	assistant interfaces.Assistant
	sessions  *SessionManager
	limiter   *MessageRateLimiter
	logger    *slog.Logger
}

func NewChatRouter(assistant interfaces.Assistant, limiter *MessageRateLimiter, logger *slog.Logger) *ChatRouter {
	return &ChatRouter{
		assistant: assistant,
		sessions:  NewSessionManager(),
		limiter:   limiter,
		logger:    logger,
	}
}

// Route hands text from chatID to the assistant and records both sides
func (r *ChatRouter) Route(ctx context.Context, platform, chatID, text, location string) (entities.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return entities.ChatMessage{}, ErrEmptyText
	}
	key := platform + ":" + chatID
	if r.limiter != nil && !r.limiter.Allow(key) {
		return entities.ChatMessage{}, &RateLimitedError{Wait: r.limiter.WaitTime(key)}
	}

	session := r.sessions.GetOrCreateSession(key)
	if !session.TryStart() {
		return entities.ChatMessage{}, ErrChatBusy
	}
	defer session.Finish()

	session.Append(entities.NewUserMessage(text))
	start := time.Now()
	reply := r.assistant.ProcessMessage(ctx, text, location)
	session.Append(reply)

	r.logger.Info("chat reply sent",
		"platform", platform,
		"chat", chatID,
		"products", len(reply.Products),
		"took", time.Since(start))
	return reply, nil
}

// Session exposes the stored conversation of a chat
func (r *ChatRouter) Session(platform, chatID string) *ChatSession {
	return r.sessions.GetOrCreateSession(platform + ":" + chatID)
}

// BusyNotice renders a Route error as a user-facing notice
func BusyNotice(err error) string {
	var rl *RateLimitedError
	switch {
	case errors.As(err, &rl):
		secs := int(rl.Wait.Round(time.Second) / time.Second)
		if secs < 1 {
			secs = 1
		}
		return fmt.Sprintf("⏳ You're sending messages too fast. Please wait %ds and try again.", secs)
	case errors.Is(err, ErrChatBusy):
		return "⏳ I'm still working on your previous message, one moment please."
	default:
		return ""
	}
}

// singleStarBold maps **bold** to the *bold* used by Telegram Markdown and WhatsApp
func singleStarBold(s string) string {
	return strings.ReplaceAll(s, "**", "*")
}
