package entities

import (
	"strings"
	"time"
)

// Product is a catalog entry listed by a wholesaler
type Product struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Address         string  `json:"address"`
	City            string  `json:"city"`
	MobileNo        string  `json:"mobileNo"`
	CountryCode     string  `json:"countryCode"`
	Price           float64 `json:"price"`
	MinOrder        int     `json:"minOrder"`
	Quantity        int     `json:"quantity"`
	ImageURL        string  `json:"imageUrl"`
	WholesalerID    string  `json:"wholesalerId"`
	WholesalerName  string  `json:"wholesalerName,omitempty"`
	WholesalerPhoto string  `json:"wholesalerPhoto,omitempty"`
}

// CatalogRow is an untyped catalog document as stored, before coercion
type CatalogRow struct {
	ID        string
	Data      map[string]interface{}
	CreatedAt time.Time
}

// Document returns the storable form of a product, without identity fields
func (p Product) Document() map[string]interface{} {
	return map[string]interface{}{
		"name":         p.Name,
		"description":  p.Description,
		"address":      p.Address,
		"city":         p.City,
		"mobileNo":     p.MobileNo,
		"countryCode":  p.CountryCode,
		"price":        p.Price,
		"minOrder":     p.MinOrder,
		"quantity":     p.Quantity,
		"imageUrl":     p.ImageURL,
		"wholesalerId": p.WholesalerID,
	}
}

// Contact joins dialing code and number
func (p Product) Contact() string {
	return strings.TrimSpace(p.CountryCode + " " + p.MobileNo)
}
