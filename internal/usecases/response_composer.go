package usecases

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"farmlink/internal/entities"
)

const conversationPrompt = `You are VendorGPT, an AI assistant helping street food vendors find suppliers.
User said: "%s"

Context: You help vendors find fresh vegetables, fruits, and ingredients from local suppliers.

Respond in a helpful, friendly manner. If they need suppliers, ask for:
- What product they need
- How much quantity
- Their budget (if flexible)
- When they need it

Keep responses concise and practical.`

// Reply is the composed assistant answer. Products is nil unless a listing was rendered.
type Reply struct {
	Text     string
	Products []entities.Product
}

// ResponseComposer renders the assistant reply for an intent and its matches
type ResponseComposer struct {
	oracle oracle
}

// Compose picks the reply branch: a listing or apology for a concrete buy
// intent, otherwise a conversational answer from the oracle.
func (c *ResponseComposer) Compose(ctx context.Context, userText string, intent entities.ExtractedIntent, matches []entities.Product) (Reply, error) {
	if intent.IsBuy() {
		return ComposeOffers(intent, matches), nil
	}
	text, err := c.oracle.generate(ctx, "general chat", fmt.Sprintf(conversationPrompt, userText))
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: text}, nil
}

// ComposeOffers renders the buy branch without calling the oracle
func ComposeOffers(intent entities.ExtractedIntent, matches []entities.Product) Reply {
	if len(matches) == 0 {
		return Reply{Text: noMatchText(intent.ProductType)}
	}

	products := make([]entities.Product, len(matches))
	copy(products, matches)

	var sb strings.Builder
	plural := ""
	if len(products) > 1 {
		plural = "s"
	}
	sb.WriteString(fmt.Sprintf("Great! I found %d supplier%s for %s:\n\n", len(products), plural, intent.ProductType))

	for i, p := range products {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		supplier := p.WholesalerName
		if supplier == "" {
			supplier = "Supplier"
		}
		sb.WriteString(fmt.Sprintf("%d. **%s** - ₹%s/unit\n", i+1, p.Name, FormatPrice(p.Price)))
		sb.WriteString(fmt.Sprintf("   📍 %s, %s\n", p.Address, p.City))
		sb.WriteString(fmt.Sprintf("   👤 %s\n", supplier))
		sb.WriteString(fmt.Sprintf("   📦 Available: %d units (Min order: %d)\n", p.Quantity, p.MinOrder))
		sb.WriteString(fmt.Sprintf("   📞 %s", p.Contact()))
	}

	sb.WriteString("\n\nWould you like to:\n")
	sb.WriteString("• View detailed photos of any product\n")
	sb.WriteString("• Contact a supplier directly\n")
	sb.WriteString("• Check delivery options")

	return Reply{Text: sb.String(), Products: products}
}

func noMatchText(productType string) string {
	return fmt.Sprintf("Sorry, I couldn't find any %s suppliers in your area right now. Would you like me to:\n\n"+
		"1. Search in nearby areas (within 10km)?\n"+
		"2. Notify you when suppliers become available?\n"+
		"3. Suggest alternative products?", productType)
}

// FormatPrice prints whole prices without decimals
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}
