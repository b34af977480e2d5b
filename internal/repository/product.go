package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"farmlink/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type ProductRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{
		db: db,
	}
}

// Wholesaler name and photo are overlaid on the document when the owner
// still exists, so readers see them as ordinary document fields.
const catalogSelect = `
	SELECT p.id, p.doc, p.created_at, u.name, u.photo_url
	FROM products p
	LEFT JOIN users u ON u.id = p.wholesaler_id`

// FetchAllRows returns the whole catalog in listing order
func (r *ProductRepository) FetchAllRows(ctx context.Context) ([]entities.CatalogRow, error) {
	rows, err := r.db.Query(ctx, catalogSelect+` ORDER BY p.created_at, p.id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	return scanCatalogRows(rows)
}

// ListByWholesaler returns the rows owned by one wholesaler, newest first
func (r *ProductRepository) ListByWholesaler(ctx context.Context, wholesalerID string) ([]entities.CatalogRow, error) {
	rows, err := r.db.Query(ctx, catalogSelect+` WHERE p.wholesaler_id = $1 ORDER BY p.created_at DESC, p.id`, wholesalerID)
	if err != nil {
		return nil, fmt.Errorf("query wholesaler products: %w", err)
	}
	return scanCatalogRows(rows)
}

func (r *ProductRepository) GetRow(ctx context.Context, id string) (entities.CatalogRow, error) {
	rows, err := r.db.Query(ctx, catalogSelect+` WHERE p.id = $1`, id)
	if err != nil {
		return entities.CatalogRow{}, fmt.Errorf("query product: %w", err)
	}
	found, err := scanCatalogRows(rows)
	if err != nil {
		return entities.CatalogRow{}, err
	}
	if len(found) == 0 {
		return entities.CatalogRow{}, ErrNotFound
	}
	return found[0], nil
}

// Create inserts a product document and returns its creation time
func (r *ProductRepository) Create(ctx context.Context, id, wholesalerID string, doc map[string]interface{}) (time.Time, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return time.Time{}, fmt.Errorf("encode product: %w", err)
	}
	var createdAt time.Time
	err = r.db.QueryRow(ctx, `
		INSERT INTO products (id, wholesaler_id, doc, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING created_at
	`, id, wholesalerID, raw).Scan(&createdAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("insert product: %w", err)
	}
	return createdAt, nil
}

// Upsert writes a document under id, replacing any existing one
func (r *ProductRepository) Upsert(ctx context.Context, id, wholesalerID string, doc map[string]interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO products (id, wholesaler_id, doc, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET wholesaler_id = EXCLUDED.wholesaler_id,
			doc = EXCLUDED.doc,
			updated_at = NOW()
	`, id, wholesalerID, raw)
	if err != nil {
		return fmt.Errorf("upsert product %s: %w", id, err)
	}
	return nil
}

// Update replaces the document of a product owned by wholesalerID
func (r *ProductRepository) Update(ctx context.Context, id, wholesalerID string, doc map[string]interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE products SET doc = $3, updated_at = NOW()
		WHERE id = $1 AND wholesaler_id = $2
	`, id, wholesalerID, raw)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id, wholesalerID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1 AND wholesaler_id = $2`, id, wholesalerID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}

func scanCatalogRows(rows pgx.Rows) ([]entities.CatalogRow, error) {
	defer rows.Close()

	var out []entities.CatalogRow
	for rows.Next() {
		var (
			row        entities.CatalogRow
			ownerName  *string
			ownerPhoto *string
		)
		if err := rows.Scan(&row.ID, &row.Data, &row.CreatedAt, &ownerName, &ownerPhoto); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if row.Data == nil {
			row.Data = map[string]interface{}{}
		}
		overlayOwner(row.Data, ownerName, ownerPhoto)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return out, nil
}

func overlayOwner(doc map[string]interface{}, name, photo *string) {
	if name != nil && *name != "" {
		doc["wholesalerName"] = *name
	}
	if photo != nil && *photo != "" {
		doc["wholesalerPhoto"] = *photo
	}
}
