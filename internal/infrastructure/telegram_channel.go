package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"farmlink/internal/entities"
	"farmlink/internal/interfaces"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	PlatformTelegram = "telegram"

	// WelcomeSettingKey holds an admin-editable /start greeting
	WelcomeSettingKey = "welcome_message"

	DefaultWelcome = "🙏 Namaste! I'm VendorGPT, your sourcing assistant.\n\n" +
		"Tell me what you need in English or Hindi, for example:\n" +
		"• \"I need 50 kg onions under ₹30 per kg\"\n" +
		"• \"मुझे 20 किलो टमाटर चाहिए\"\n\n" +
		"I'll find wholesalers with stock and share their prices and contacts."
)

// TelegramChannel polls a bot and answers chats through the assistant
type TelegramChannel struct {
	client   *TelegramClient
	router   *ChatRouter
	products interfaces.ProductLookup
	settings interfaces.SettingsStore
	logger   *slog.Logger
}

func NewTelegramChannel(client *TelegramClient, router *ChatRouter, products interfaces.ProductLookup, settings interfaces.SettingsStore, logger *slog.Logger) *TelegramChannel {
	return &TelegramChannel{
		client:   client,
		router:   router,
		products: products,
		settings: settings,
		logger:   logger.With("channel", PlatformTelegram),
	}
}

// Run polls for updates until ctx is cancelled
func (c *TelegramChannel) Run(ctx context.Context) error {
	if c.client.Bot == nil {
		return errors.New("telegram bot not initialised")
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := c.client.Bot.GetUpdatesChan(u)
	c.logger.Info("telegram polling started", "bot", c.client.Bot.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			c.client.Bot.StopReceivingUpdates()
			c.logger.Info("telegram polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go c.HandleUpdate(ctx, update)
		}
	}
}

func (c *TelegramChannel) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		c.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		c.handleMessage(ctx, update.Message)
	}
}

func (c *TelegramChannel) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	chatID := m.Chat.ID

	if m.IsCommand() {
		switch m.Command() {
		case "start", "help":
			c.reply(chatID, c.welcome(ctx))
		default:
			c.reply(chatID, "Unknown command. Just tell me what you want to buy.")
		}
		return
	}

	reply, err := c.router.Route(ctx, PlatformTelegram, strconv.FormatInt(chatID, 10), m.Text, "")
	if err != nil {
		if notice := BusyNotice(err); notice != "" {
			c.reply(chatID, notice)
		}
		return
	}

	if len(reply.Products) > 0 {
		if err := c.client.SendMessageWithMenu(chatID, reply.Message, ProductKeyboard(reply.Products)); err != nil {
			c.logger.Error("send reply failed", "chat", chatID, "error", err)
		}
		return
	}
	c.reply(chatID, reply.Message)
}

func (c *TelegramChannel) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if err := c.client.AnswerCallback(cb.ID, ""); err != nil {
		c.logger.Warn("answer callback failed", "error", err)
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	action, productID, ok := parseCallback(cb.Data)
	if !ok {
		return
	}
	product, err := c.products.GetByID(ctx, productID)
	if err != nil {
		c.logger.Warn("callback product lookup failed", "product", productID, "error", err)
		c.reply(chatID, "Sorry, that listing is no longer available.")
		return
	}

	switch action {
	case callbackPhoto:
		if product.ImageURL == "" {
			c.reply(chatID, fmt.Sprintf("No photo has been uploaded for %s yet.", product.Name))
			return
		}
		if err := c.client.SendPhoto(chatID, product.ImageURL, product.Name); err != nil {
			c.logger.Error("send photo failed", "product", productID, "error", err)
		}
	case callbackContact:
		c.reply(chatID, ContactText(product))
	case callbackDelivery:
		c.reply(chatID, DeliveryText(product))
	}
}

func (c *TelegramChannel) welcome(ctx context.Context) string {
	if c.settings == nil {
		return DefaultWelcome
	}
	text, err := c.settings.GetSetting(ctx, WelcomeSettingKey)
	if err != nil {
		c.logger.Warn("welcome setting unavailable", "error", err)
		return DefaultWelcome
	}
	if text == "" {
		return DefaultWelcome
	}
	return text
}

func (c *TelegramChannel) reply(chatID int64, text string) {
	if err := c.client.SendMessage(strconv.FormatInt(chatID, 10), text); err != nil {
		c.logger.Error("send message failed", "chat", chatID, "error", err)
	}
}

// ContactText is the follow-up shown for "contact supplier"
func ContactText(p entities.Product) string {
	supplier := p.WholesalerName
	if supplier == "" {
		supplier = "the supplier"
	}
	if p.MobileNo == "" {
		return fmt.Sprintf("📞 No phone number is listed for %s. Please place an order in the app and %s will reach out.", p.Name, supplier)
	}
	return fmt.Sprintf("📞 Contact %s for **%s**: %s", supplier, p.Name, p.Contact())
}

// DeliveryText is the follow-up shown for "check delivery options"
func DeliveryText(p entities.Product) string {
	return fmt.Sprintf("🚚 **%s** ships from %s, %s.\nMinimum order: %d units, %d units in stock.\nPlace an order and the supplier will confirm delivery timing.",
		p.Name, p.Address, p.City, p.MinOrder, p.Quantity)
}
