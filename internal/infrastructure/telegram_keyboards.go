package infrastructure

import (
	"fmt"
	"strings"

	"farmlink/internal/entities"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	callbackPhoto    = "photo"
	callbackContact  = "contact"
	callbackDelivery = "delivery"
)

// ProductKeyboard creates one follow-up row per offered product
func ProductKeyboard(products []entities.Product) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(products))
	for i, p := range products {
		n := i + 1
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("📷 Photo %d", n), callbackData(callbackPhoto, p.ID)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("📞 Contact %d", n), callbackData(callbackContact, p.ID)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🚚 Delivery %d", n), callbackData(callbackDelivery, p.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func callbackData(action, productID string) string {
	return action + ":" + productID
}

// parseCallback splits "action:productID"
func parseCallback(data string) (action, productID string, ok bool) {
	action, productID, ok = strings.Cut(data, ":")
	if !ok || productID == "" {
		return "", "", false
	}
	switch action {
	case callbackPhoto, callbackContact, callbackDelivery:
		return action, productID, true
	}
	return "", "", false
}
