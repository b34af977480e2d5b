package interfaces

import (
	"context"

	"farmlink/internal/entities"
)

// AIClient turns a prompt into a text completion
type AIClient interface {
	GenerateResponse(ctx context.Context, prompt string) (string, error)
}

// CatalogReader returns a full snapshot of the products collection
type CatalogReader interface {
	FetchAllRows(ctx context.Context) ([]entities.CatalogRow, error)
}

// Assistant answers one user utterance. It never fails; degraded paths
// produce an apology message instead.
type Assistant interface {
	ProcessMessage(ctx context.Context, userText, locationHint string) entities.ChatMessage
}

type ProductLookup interface {
	GetByID(ctx context.Context, id string) (entities.Product, error)
}

type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

type Messenger interface {
	SendMessage(to, content string) error
}
