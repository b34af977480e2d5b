package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"farmlink/internal/entities"
	"farmlink/internal/interfaces"
)

// FallbackReply is sent whenever a request fails anywhere in the pipeline
const FallbackReply = "Sorry, I'm having trouble processing your request right now. Please try again."

// VendorGPT is the conversational product-search assistant.
// It keeps no per-conversation state and is safe for concurrent use.
type VendorGPT struct {
	extractor *IntentExtractor
	matcher   *CatalogMatcher
	composer  *ResponseComposer
	logger    *slog.Logger
}

type Option func(*VendorGPT)

// WithOracleTimeout bounds every oracle call; zero leaves calls unbounded
func WithOracleTimeout(d time.Duration) Option {
	return func(v *VendorGPT) {
		v.extractor.oracle.timeout = d
		v.composer.oracle.timeout = d
	}
}

// WithMatchLimit overrides the number of offers returned per search
func WithMatchLimit(n int) Option {
	return func(v *VendorGPT) {
		if n > 0 {
			v.matcher.limit = n
		}
	}
}

func NewVendorGPT(ai interfaces.AIClient, catalog interfaces.CatalogReader, logger *slog.Logger, opts ...Option) *VendorGPT {
	o := oracle{client: ai}
	v := &VendorGPT{
		extractor: &IntentExtractor{oracle: o},
		matcher:   NewCatalogMatcher(catalog, logger),
		composer:  &ResponseComposer{oracle: o},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ProcessMessage answers one user message. It never fails: any error or panic
// below is logged and replaced with FallbackReply.
func (v *VendorGPT) ProcessMessage(ctx context.Context, userText, locationHint string) (msg entities.ChatMessage) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			v.logger.Error("vendorgpt: panic recovered", "panic", fmt.Sprint(r))
			msg = botMessage(FallbackReply, nil)
		}
	}()

	reply, err := v.answer(ctx, userText, locationHint)
	if err != nil {
		v.logger.Error("vendorgpt: request failed", "error", err, "took", time.Since(start))
		return botMessage(FallbackReply, nil)
	}

	v.logger.Info("vendorgpt: reply ready",
		"products", len(reply.Products), "reply_len", len(reply.Text), "took", time.Since(start))
	return botMessage(reply.Text, reply.Products)
}

func (v *VendorGPT) answer(ctx context.Context, userText, locationHint string) (Reply, error) {
	intent, err := v.extractor.Extract(ctx, userText)
	if err != nil {
		return Reply{}, err
	}
	v.logger.Debug("vendorgpt: intent extracted",
		"intent", intent.Intent, "product_type", intent.ProductType, "budget", intent.Budget, "urgency", intent.Urgency)

	var matches []entities.Product
	if intent.IsBuy() {
		matches = v.matcher.Match(ctx, intent.ProductType, intent.Budget, locationHint)
	}
	return v.composer.Compose(ctx, userText, intent, matches)
}

func botMessage(text string, products []entities.Product) entities.ChatMessage {
	if len(products) == 0 {
		products = nil
	}
	return entities.ChatMessage{
		ID:        entities.NewMessageID("bot"),
		Message:   text,
		IsBot:     true,
		Timestamp: time.Now(),
		Products:  products,
	}
}
