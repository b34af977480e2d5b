package infrastructure

import (
	"context"
	"log/slog"

	"farmlink/internal/interfaces"

	"go.mau.fi/whatsmeow/types/events"
)

const PlatformWhatsApp = "whatsapp"

// WhatsAppStatus is the pairing state shown to admins
type WhatsAppStatus struct {
	Enabled   bool   `json:"enabled"`
	Connected bool   `json:"connected"`
	LoggedIn  bool   `json:"logged_in"`
	Phone     string `json:"phone,omitempty"`
	Name      string `json:"name,omitempty"`
	HasQR     bool   `json:"has_qr"`
}

// WhatsAppChannel answers direct WhatsApp chats through the assistant
type WhatsAppChannel struct {
	client    *WhatsAppClient
	messenger interfaces.Messenger
	router    *ChatRouter
	logger    *slog.Logger
	ctx       context.Context
}

func NewWhatsAppChannel(client *WhatsAppClient, router *ChatRouter, logger *slog.Logger) *WhatsAppChannel {
	return &WhatsAppChannel{
		client:    client,
		messenger: client,
		router:    router,
		logger:    logger.With("channel", PlatformWhatsApp),
		ctx:       context.Background(),
	}
}

// Start registers the event handler and connects. Requests inherit ctx.
func (c *WhatsAppChannel) Start(ctx context.Context) error {
	c.ctx = ctx
	c.client.AddHandler(c.HandleEvent)
	return c.client.Connect(ctx)
}

func (c *WhatsAppChannel) Stop() {
	c.client.Disconnect()
}

func (c *WhatsAppChannel) HandleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.Message:
		if v.Info.IsFromMe || v.Info.IsGroup {
			return
		}
		content := MessageText(v.Message)
		if content == "" {
			return
		}
		go c.HandleText(v.Info.Chat.String(), content)
	case *events.Connected:
		c.logger.Info("whatsapp connected")
	case *events.LoggedOut:
		c.logger.Warn("whatsapp logged out", "reason", v.Reason)
	}
}

// HandleText routes one inbound text and sends the reply
func (c *WhatsAppChannel) HandleText(chatID, content string) {
	reply, err := c.router.Route(c.ctx, PlatformWhatsApp, chatID, content, "")
	text := reply.Message
	if err != nil {
		if text = BusyNotice(err); text == "" {
			return
		}
	}
	if err := c.messenger.SendMessage(chatID, singleStarBold(text)); err != nil {
		c.logger.Error("send reply failed", "chat", chatID, "error", err)
	}
}

func (c *WhatsAppChannel) Status() WhatsAppStatus {
	phone, name := c.client.GetUserInfo()
	return WhatsAppStatus{
		Enabled:   true,
		Connected: c.client.IsConnected(),
		LoggedIn:  c.client.IsLoggedIn(),
		Phone:     phone,
		Name:      name,
		HasQR:     c.client.GetQR() != "",
	}
}

// QRCode returns the pending pairing code, empty once paired
func (c *WhatsAppChannel) QRCode() string {
	return c.client.GetQR()
}

func (c *WhatsAppChannel) Logout(ctx context.Context) error {
	return c.client.Logout(ctx)
}
