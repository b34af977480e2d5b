package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"farmlink/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderPlan decides an order against the locked product row. It returns the
// order to insert and the product document to store in its place.
type OrderPlan func(row entities.CatalogRow) (entities.Order, map[string]interface{}, error)

type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

// Place locks the product, applies plan and records the order in one
// transaction. Errors returned by plan abort the transaction unchanged.
func (r *OrderRepository) Place(ctx context.Context, productID string, plan OrderPlan) (entities.Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return entities.Order{}, fmt.Errorf("begin order: %w", err)
	}
	defer tx.Rollback(ctx)

	var row entities.CatalogRow
	err = tx.QueryRow(ctx, `SELECT id, doc, created_at FROM products WHERE id = $1 FOR UPDATE`, productID).
		Scan(&row.ID, &row.Data, &row.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.Order{}, ErrNotFound
	}
	if err != nil {
		return entities.Order{}, fmt.Errorf("lock product: %w", err)
	}
	if row.Data == nil {
		row.Data = map[string]interface{}{}
	}

	order, doc, err := plan(row)
	if err != nil {
		return entities.Order{}, err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return entities.Order{}, fmt.Errorf("encode product: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE products SET doc = $2, updated_at = NOW() WHERE id = $1`, productID, raw); err != nil {
		return entities.Order{}, fmt.Errorf("update stock: %w", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (id, product_id, product_name, quantity, amount, status, wholesaler_id, vendor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, order.ID, order.ProductID, order.ProductName, order.Quantity, order.Amount, order.Status,
		order.WholesalerID, order.VendorID).Scan(&order.CreatedAt)
	if err != nil {
		return entities.Order{}, fmt.Errorf("insert order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return entities.Order{}, fmt.Errorf("commit order: %w", err)
	}
	return order, nil
}

// ListForUser returns orders placed by or received by userID, newest first
func (r *OrderRepository) ListForUser(ctx context.Context, userID, role string) ([]entities.Order, error) {
	column := "vendor_id"
	if role == entities.RoleWholesaler {
		column = "wholesaler_id"
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, product_id, product_name, quantity, amount, status, wholesaler_id, vendor_id, created_at
		FROM orders WHERE `+column+` = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := []entities.Order{}
	for rows.Next() {
		var o entities.Order
		if err := rows.Scan(&o.ID, &o.ProductID, &o.ProductName, &o.Quantity, &o.Amount, &o.Status,
			&o.WholesalerID, &o.VendorID, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// OrderTotals summarises all orders for the admin dashboard
type OrderTotals struct {
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
	Today   int     `json:"today"`
}

func (r *OrderRepository) Totals(ctx context.Context) (OrderTotals, error) {
	var t OrderTotals
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(amount), 0),
			COUNT(*) FILTER (WHERE created_at >= date_trunc('day', NOW()))
		FROM orders
	`).Scan(&t.Count, &t.Revenue, &t.Today)
	if err != nil {
		return OrderTotals{}, fmt.Errorf("order totals: %w", err)
	}
	return t, nil
}
