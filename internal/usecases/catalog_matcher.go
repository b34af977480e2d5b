package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"farmlink/internal/entities"
	"farmlink/internal/interfaces"
)

const (
	// DefaultMatchLimit caps the number of offers returned for one query
	DefaultMatchLimit = 5
	// DefaultCountryCode is used for rows without a dialing prefix
	DefaultCountryCode = "+91"
)

var digitsRe = regexp.MustCompile(`[0-9]+`)

// CatalogMatcher filters a full catalog snapshot against extracted intent
type CatalogMatcher struct {
	catalog interfaces.CatalogReader
	logger  *slog.Logger
	limit   int
}

func NewCatalogMatcher(catalog interfaces.CatalogReader, logger *slog.Logger) *CatalogMatcher {
	return &CatalogMatcher{catalog: catalog, logger: logger, limit: DefaultMatchLimit}
}

// Match returns up to five in-stock products whose name or description contains
// productType and whose price fits budget. A failed fetch yields no products.
func (m *CatalogMatcher) Match(ctx context.Context, productType, budget, locationHint string) []entities.Product {
	products, err := m.MatchWithStatus(ctx, productType, budget, locationHint)
	if err != nil {
		m.logger.Warn("catalog match degraded", "product_type", productType, "error", err)
		return nil
	}
	return products
}

// MatchWithStatus is Match with the fetch failure kept distinguishable from an
// empty result. The error always wraps ErrCatalogUnavailable.
//
// locationHint is accepted but not applied: there is no agreed rule for
// location filtering yet.
func (m *CatalogMatcher) MatchWithStatus(ctx context.Context, productType, budget, locationHint string) ([]entities.Product, error) {
	if locationHint != "" {
		m.logger.Debug("location hint ignored by matcher", "location", locationHint)
	}

	rows, err := m.catalog.FetchAllRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	needle := strings.ToLower(productType)
	var matches []entities.Product
	for _, row := range rows {
		p := CoerceProduct(row)
		if !nameMatches(p, needle) || !budgetAllows(p.Price, budget) || p.Quantity <= 0 {
			continue
		}
		matches = append(matches, p)
		if len(matches) == m.limit {
			break
		}
	}
	return matches, nil
}

func nameMatches(p entities.Product, needle string) bool {
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle)
}

// budgetAllows applies 20% headroom over the first number found in budget.
// A budget without digits, or no budget at all, allows any price.
func budgetAllows(price float64, budget string) bool {
	if budget == "" {
		return true
	}
	digits := digitsRe.FindString(budget)
	if digits == "" {
		return true
	}
	ceiling, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return true
	}
	// price <= ceiling*1.2 without the float rounding of 1.2
	return price*5 <= ceiling*6
}

// CoerceProduct turns a raw catalog document into a Product, defaulting
// every missing or zero field instead of failing.
func CoerceProduct(row entities.CatalogRow) entities.Product {
	d := row.Data
	return entities.Product{
		ID:              row.ID,
		Name:            stringOr(d, "name", ""),
		Description:     stringOr(d, "description", ""),
		Address:         stringOr(d, "address", ""),
		City:            stringOr(d, "city", ""),
		MobileNo:        stringOr(d, "mobileNo", ""),
		CountryCode:     stringOr(d, "countryCode", DefaultCountryCode),
		Price:           numberOr(d, "price", 0),
		MinOrder:        int(numberOr(d, "minOrder", 1)),
		Quantity:        int(numberOr(d, "quantity", 0)),
		ImageURL:        stringOr(d, "imageUrl", ""),
		WholesalerID:    stringOr(d, "wholesalerId", ""),
		WholesalerName:  stringOr(d, "wholesalerName", ""),
		WholesalerPhoto: stringOr(d, "wholesalerPhoto", ""),
	}
}

func stringOr(d map[string]interface{}, key, def string) string {
	var s string
	switch v := d[key].(type) {
	case string:
		s = v
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		s = v.String()
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	}
	if s == "" {
		return def
	}
	return s
}

// numberOr reads a numeric field; zero, missing and non-numeric values yield def
func numberOr(d map[string]interface{}, key string, def float64) float64 {
	var n float64
	switch v := d[key].(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case json.Number:
		n, _ = v.Float64()
	case string:
		n, _ = strconv.ParseFloat(strings.TrimSpace(v), 64)
	}
	if n == 0 || math.IsNaN(n) {
		return def
	}
	return n
}
