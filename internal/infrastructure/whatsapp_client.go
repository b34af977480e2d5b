package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

type WhatsAppClient struct {
	Client *whatsmeow.Client
	logger *slog.Logger

	qrCode string
	qrLock sync.RWMutex
}

// NewWhatsAppClient opens the device store at dbPath and prepares a client
// for its first device, creating a fresh one when none is paired yet.
func NewWhatsAppClient(ctx context.Context, dbPath string, logger *slog.Logger) (*WhatsAppClient, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create devices directory: %w", err)
	}

	dbLog := waLog.Stdout("Database", "WARN", true)
	container, err := sqlstore.New(ctx, "sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)", dbLog)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to device store: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	clientLog := waLog.Stdout("Client", "WARN", true)
	return &WhatsAppClient{
		Client: whatsmeow.NewClient(deviceStore, clientLog),
		logger: logger.With("channel", PlatformWhatsApp),
	}, nil
}

func (w *WhatsAppClient) Connect(ctx context.Context) error {
	if w.Client.Store.ID != nil {
		if err := w.Client.Connect(); err != nil {
			return err
		}
		w.logger.Info("whatsapp connected with existing session")
		return nil
	}

	qrChan, err := w.Client.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("qr channel: %w", err)
	}
	if err := w.Client.Connect(); err != nil {
		return err
	}
	go w.watchQR(qrChan)
	return nil
}

func (w *WhatsAppClient) watchQR(qrChan <-chan whatsmeow.QRChannelItem) {
	for evt := range qrChan {
		if evt.Event == whatsmeow.QRChannelEventCode {
			w.setQR(evt.Code)
			w.logger.Info("whatsapp pairing code refreshed")
			continue
		}
		w.setQR("")
		w.logger.Info("whatsapp login event", "event", evt.Event)
	}
}

func (w *WhatsAppClient) setQR(code string) {
	w.qrLock.Lock()
	defer w.qrLock.Unlock()
	w.qrCode = code
}

func (w *WhatsAppClient) GetQR() string {
	w.qrLock.RLock()
	defer w.qrLock.RUnlock()
	return w.qrCode
}

func (w *WhatsAppClient) IsLoggedIn() bool {
	return w.Client.Store.ID != nil
}

// IsConnected returns true if client is connected and logged in
func (w *WhatsAppClient) IsConnected() bool {
	return w.Client.IsConnected() && w.Client.Store.ID != nil
}

// GetUserInfo returns connected user's phone number and push name
func (w *WhatsAppClient) GetUserInfo() (string, string) {
	if w.Client.Store.ID == nil {
		return "", ""
	}
	return w.Client.Store.ID.User, w.Client.Store.PushName
}

// Logout unpairs the device and reconnects so a new QR code is issued
func (w *WhatsAppClient) Logout(ctx context.Context) error {
	w.setQR("")
	if err := w.Client.Logout(ctx); err != nil {
		return err
	}
	w.Client.Disconnect()
	return w.Connect(ctx)
}

func (w *WhatsAppClient) Disconnect() {
	w.Client.Disconnect()
}

func (w *WhatsAppClient) AddHandler(handler func(interface{})) {
	w.Client.AddEventHandler(handler)
}

// SendMessage sends text to a full JID or a bare phone number
func (w *WhatsAppClient) SendMessage(to string, content string) error {
	jid, err := ParseRecipient(to)
	if err != nil {
		return err
	}
	_, err = w.Client.SendMessage(context.Background(), jid, &waProto.Message{
		Conversation: proto.String(content),
	})
	return err
}

// ParseRecipient turns "919876543210" or "919876543210@s.whatsapp.net" into a JID
func ParseRecipient(to string) (types.JID, error) {
	to = strings.TrimPrefix(strings.TrimSpace(to), "+")
	if !strings.Contains(to, "@") {
		to += "@" + types.DefaultUserServer
	}
	jid, err := types.ParseJID(to)
	if err != nil {
		return types.JID{}, fmt.Errorf("invalid number format: %w", err)
	}
	return jid, nil
}

// MessageText extracts the text body of a plain or extended text message
func MessageText(msg *waProto.Message) string {
	if msg == nil {
		return ""
	}
	if msg.GetConversation() != "" {
		return msg.GetConversation()
	}
	return msg.GetExtendedTextMessage().GetText()
}
