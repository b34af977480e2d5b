package usecases

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"farmlink/internal/entities"
)

const extractionPrompt = `Extract product requirements from this message: "%s"

Respond in JSON format:
{
  "product_type": "extracted product name",
  "quantity": "extracted quantity with unit",
  "budget": "extracted budget if mentioned",
  "urgency": "immediate/today/tomorrow/this_week",
  "intent": "buy/inquiry/price_check/availability"
}

If information is missing, set to null.`

var knownIntents = map[string]bool{
	entities.IntentBuy:          true,
	entities.IntentInquiry:      true,
	entities.IntentPriceCheck:   true,
	entities.IntentAvailability: true,
	entities.IntentGeneral:      true,
}

var knownUrgencies = map[string]bool{
	entities.UrgencyImmediate: true,
	entities.UrgencyToday:     true,
	entities.UrgencyTomorrow:  true,
	entities.UrgencyThisWeek:  true,
}

// IntentExtractor asks the oracle for structured purchase intent
type IntentExtractor struct {
	oracle oracle
}

// Extract returns the purchase intent found in userText. Unparsable oracle
// output degrades to the general intent; only oracle failures are returned as errors.
func (e *IntentExtractor) Extract(ctx context.Context, userText string) (entities.ExtractedIntent, error) {
	raw, err := e.oracle.generate(ctx, "extract intent", fmt.Sprintf(extractionPrompt, userText))
	if err != nil {
		return entities.ExtractedIntent{}, err
	}
	return ParseIntent(raw), nil
}

// ParseIntent converts raw oracle text into an intent record. Missing or
// unexpected values are dropped and the intent falls back to general.
func ParseIntent(raw string) entities.ExtractedIntent {
	obj, ok := ParseJSONObject(raw)
	if !ok {
		return entities.ExtractedIntent{Intent: entities.IntentGeneral}
	}

	intent := entities.ExtractedIntent{
		ProductType: textField(obj, "product_type"),
		Quantity:    textField(obj, "quantity"),
		Budget:      textField(obj, "budget"),
		Urgency:     normalizeEnum(textField(obj, "urgency"), knownUrgencies),
		Intent:      normalizeEnum(textField(obj, "intent"), knownIntents),
	}
	if intent.Intent == "" {
		intent.Intent = entities.IntentGeneral
	}
	return intent
}

// textField renders a loosely typed JSON value as trimmed text
func textField(obj map[string]interface{}, key string) string {
	var s string
	switch v := obj[key].(type) {
	case string:
		s = strings.TrimSpace(v)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
	if strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
		return ""
	}
	return s
}

func normalizeEnum(value string, allowed map[string]bool) string {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.ReplaceAll(v, " ", "_")
	if allowed[v] {
		return v
	}
	return ""
}
