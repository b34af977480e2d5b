package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"farmlink/internal/entities"
	"farmlink/internal/repository"

	"github.com/google/uuid"
)

// UnknownWholesaler labels listings whose owner account is gone
const UnknownWholesaler = "Unknown"

type ProductStore interface {
	FetchAllRows(ctx context.Context) ([]entities.CatalogRow, error)
	ListByWholesaler(ctx context.Context, wholesalerID string) ([]entities.CatalogRow, error)
	GetRow(ctx context.Context, id string) (entities.CatalogRow, error)
	Create(ctx context.Context, id, wholesalerID string, doc map[string]interface{}) (time.Time, error)
	Update(ctx context.Context, id, wholesalerID string, doc map[string]interface{}) error
	Delete(ctx context.Context, id, wholesalerID string) error
}

// ProductUsecase is the wholesaler and vendor view of the catalog
type ProductUsecase struct {
	repo ProductStore
}

func NewProductUsecase(repo ProductStore) *ProductUsecase {
	return &ProductUsecase{repo: repo}
}

// ListCatalog returns every listing with its wholesaler's name and photo
func (uc *ProductUsecase) ListCatalog(ctx context.Context) ([]entities.Product, error) {
	rows, err := uc.repo.FetchAllRows(ctx)
	if err != nil {
		return nil, err
	}
	products := make([]entities.Product, 0, len(rows))
	for _, row := range rows {
		p := CoerceProduct(row)
		if p.WholesalerName == "" {
			p.WholesalerName = UnknownWholesaler
		}
		products = append(products, p)
	}
	return products, nil
}

func (uc *ProductUsecase) ListOwn(ctx context.Context, wholesalerID string) ([]entities.Product, error) {
	rows, err := uc.repo.ListByWholesaler(ctx, wholesalerID)
	if err != nil {
		return nil, err
	}
	products := make([]entities.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, CoerceProduct(row))
	}
	return products, nil
}

func (uc *ProductUsecase) GetByID(ctx context.Context, id string) (entities.Product, error) {
	row, err := uc.repo.GetRow(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return entities.Product{}, ErrProductNotFound
	}
	if err != nil {
		return entities.Product{}, err
	}
	return CoerceProduct(row), nil
}

func (uc *ProductUsecase) Create(ctx context.Context, wholesalerID string, p entities.Product) (entities.Product, error) {
	p = normalizeProduct(p)
	if err := ValidateProduct(p); err != nil {
		return entities.Product{}, err
	}
	p.ID = uuid.NewString()
	p.WholesalerID = wholesalerID

	if _, err := uc.repo.Create(ctx, p.ID, wholesalerID, p.Document()); err != nil {
		return entities.Product{}, err
	}
	return p, nil
}

func (uc *ProductUsecase) Update(ctx context.Context, wholesalerID, id string, p entities.Product) (entities.Product, error) {
	if err := uc.checkOwner(ctx, wholesalerID, id); err != nil {
		return entities.Product{}, err
	}
	p = normalizeProduct(p)
	if err := ValidateProduct(p); err != nil {
		return entities.Product{}, err
	}
	p.ID = id
	p.WholesalerID = wholesalerID

	if err := uc.repo.Update(ctx, id, wholesalerID, p.Document()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return entities.Product{}, ErrProductNotFound
		}
		return entities.Product{}, err
	}
	return p, nil
}

func (uc *ProductUsecase) Delete(ctx context.Context, wholesalerID, id string) error {
	if err := uc.checkOwner(ctx, wholesalerID, id); err != nil {
		return err
	}
	err := uc.repo.Delete(ctx, id, wholesalerID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProductNotFound
	}
	return err
}

func (uc *ProductUsecase) checkOwner(ctx context.Context, wholesalerID, id string) error {
	current, err := uc.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.WholesalerID != wholesalerID {
		return ErrNotOwner
	}
	return nil
}

func normalizeProduct(p entities.Product) entities.Product {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.Address = strings.TrimSpace(p.Address)
	p.City = strings.TrimSpace(p.City)
	p.MobileNo = strings.TrimSpace(p.MobileNo)
	p.CountryCode = strings.TrimSpace(p.CountryCode)
	if p.CountryCode == "" {
		p.CountryCode = DefaultCountryCode
	}
	if p.MinOrder <= 0 {
		p.MinOrder = 1
	}
	p.WholesalerName = ""
	p.WholesalerPhoto = ""
	return p
}

// ValidateProduct checks a listing before it is stored
func ValidateProduct(p entities.Product) error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case p.Price < 0:
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	case p.Quantity < 0:
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidProduct)
	case p.City == "":
		return fmt.Errorf("%w: city is required", ErrInvalidProduct)
	}
	return nil
}
