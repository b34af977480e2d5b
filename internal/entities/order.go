package entities

import "time"

type Order struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"product_id"`
	ProductName  string    `json:"product_name"`
	Quantity     int       `json:"quantity"`
	Amount       float64   `json:"amount"`
	Status       string    `json:"status"`
	WholesalerID string    `json:"wholesaler_id"`
	VendorID     string    `json:"vendor_id"`
	CreatedAt    time.Time `json:"created_at"`
}
