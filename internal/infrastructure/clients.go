package infrastructure

import (
	"context"
	"fmt"
	"strconv"

	"farmlink/internal/config"
	"farmlink/internal/interfaces"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// NewAIClient builds the oracle selected by cfg.AIProvider
func NewAIClient(ctx context.Context, cfg config.Config) (interfaces.AIClient, error) {
	switch cfg.AIProvider {
	case config.ProviderGemini:
		client, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.AIProvider)
	}
}

// botSender is the part of *tgbotapi.BotAPI used to reply
type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// TelegramClient sends replies through a bot
type TelegramClient struct {
	Bot    *tgbotapi.BotAPI
	sender botSender
}

func NewTelegramClient(token string) (*TelegramClient, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot token: %w", err)
	}
	return &TelegramClient{Bot: bot, sender: bot}, nil
}

func (t *TelegramClient) SendMessage(to, content string) error {
	chatID, err := strconv.ParseInt(to, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram chat id %q: %w", to, err)
	}
	return t.sendText(tgbotapi.NewMessage(chatID, content))
}

// SendMessageWithMenu sends message with inline keyboard menu
func (t *TelegramClient) SendMessageWithMenu(chatID int64, content string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, content)
	msg.ReplyMarkup = keyboard
	return t.sendText(msg)
}

func (t *TelegramClient) SendPhoto(chatID int64, url, caption string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(url))
	photo.Caption = caption
	_, err := t.sender.Send(photo)
	return err
}

// AnswerCallback stops the loading spinner on an inline button
func (t *TelegramClient) AnswerCallback(callbackID, text string) error {
	_, err := t.sender.Request(tgbotapi.NewCallback(callbackID, text))
	return err
}

// sendText tries Markdown first and resends as plain text when Telegram
// rejects the entities.
func (t *TelegramClient) sendText(msg tgbotapi.MessageConfig) error {
	plain := msg.Text
	msg.Text = singleStarBold(plain)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := t.sender.Send(msg); err == nil {
		return nil
	}
	msg.Text = plain
	msg.ParseMode = ""
	_, err := t.sender.Send(msg)
	return err
}

var (
	_ interfaces.Messenger = (*TelegramClient)(nil)
	_ interfaces.AIClient  = (*GeminiClient)(nil)
	_ interfaces.AIClient  = (*OpenAIClient)(nil)
)
