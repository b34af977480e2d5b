package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one turn of a VendorGPT conversation.
// Products is nil unless the assistant attached a matched listing; a search with
// zero matches is reported through Message, never through an empty slice.
type ChatMessage struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	IsBot     bool      `json:"isBot"`
	Timestamp time.Time `json:"timestamp"`
	Products  []Product `json:"products,omitempty"`
}

// Intent values understood by the assistant
const (
	IntentBuy          = "buy"
	IntentInquiry      = "inquiry"
	IntentPriceCheck   = "price_check"
	IntentAvailability = "availability"
	IntentGeneral      = "general"
)

// Urgency values, empty string means unset
const (
	UrgencyImmediate = "immediate"
	UrgencyToday     = "today"
	UrgencyTomorrow  = "tomorrow"
	UrgencyThisWeek  = "this_week"
)

// ExtractedIntent is the structured purchase intent pulled out of free text.
// Empty strings mean the oracle did not provide the field.
type ExtractedIntent struct {
	ProductType string `json:"product_type,omitempty"`
	Quantity    string `json:"quantity,omitempty"`
	Budget      string `json:"budget,omitempty"`
	Urgency     string `json:"urgency,omitempty"`
	Intent      string `json:"intent"`
}

// IsBuy reports whether the intent is a purchase with a known product
func (i ExtractedIntent) IsBuy() bool {
	return i.Intent == IntentBuy && i.ProductType != ""
}

// NewMessageID returns a sortable, collision-resistant message id such as
// "bot_1718000000000_1a2b3c4d".
func NewMessageID(prefix string) string {
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), uuid.NewString()[:8])
}

// NewUserMessage builds the user side of a conversation turn
func NewUserMessage(text string) ChatMessage {
	return ChatMessage{
		ID:        NewMessageID("user"),
		Message:   text,
		Timestamp: time.Now(),
	}
}
