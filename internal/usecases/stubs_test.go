package usecases

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"farmlink/internal/entities"
)

// stubAI replays canned completions in order and records prompts
type stubAI struct {
	mu        sync.Mutex
	responses []string
	err       error
	prompts   []string
}

func (s *stubAI) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", errors.New("stub: no response queued")
	}
	r := s.responses[0]
	s.responses = s.responses[1:]
	return r, nil
}

func (s *stubAI) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

type stubCatalog struct {
	rows    []entities.CatalogRow
	err     error
	fetches int
}

func (s *stubCatalog) FetchAllRows(ctx context.Context) ([]entities.CatalogRow, error) {
	s.fetches++
	return s.rows, s.err
}

type panicCatalog struct{}

func (panicCatalog) FetchAllRows(ctx context.Context) ([]entities.CatalogRow, error) {
	panic("boom")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func row(id string, data map[string]interface{}) entities.CatalogRow {
	return entities.CatalogRow{ID: id, Data: data}
}

func onionRow(id string, price float64, qty int) entities.CatalogRow {
	return row(id, map[string]interface{}{
		"name":           "Red Onion",
		"description":    "Fresh Nashik onions",
		"address":        "APMC Market",
		"city":           "Pune",
		"mobileNo":       "9876543210",
		"price":          price,
		"minOrder":       float64(10),
		"quantity":       float64(qty),
		"wholesalerName": "Sharma Traders",
	})
}
