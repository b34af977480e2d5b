package usecases

import (
	"context"
	"errors"
	"fmt"

	"farmlink/internal/entities"
	"farmlink/internal/repository"

	"github.com/google/uuid"
)

const OrderStatusSuccess = "success"

type OrderStore interface {
	Place(ctx context.Context, productID string, plan repository.OrderPlan) (entities.Order, error)
	ListForUser(ctx context.Context, userID, role string) ([]entities.Order, error)
}

// OrderReceipt is returned to the vendor after a successful order
type OrderReceipt struct {
	Order       entities.Order `json:"order"`
	PaymentLink string         `json:"payment_link,omitempty"`
}

type OrderUsecase struct {
	repo        OrderStore
	paymentLink string
}

func NewOrderUsecase(repo OrderStore, paymentLink string) *OrderUsecase {
	return &OrderUsecase{repo: repo, paymentLink: paymentLink}
}

// PlaceOrder buys quantity units of a product and decrements its stock
func (uc *OrderUsecase) PlaceOrder(ctx context.Context, vendorID, productID string, quantity int) (OrderReceipt, error) {
	if quantity <= 0 {
		return OrderReceipt{}, ErrInvalidQuantity
	}
	order, err := uc.repo.Place(ctx, productID, func(row entities.CatalogRow) (entities.Order, map[string]interface{}, error) {
		return PlanOrder(row, vendorID, quantity)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return OrderReceipt{}, ErrProductNotFound
	}
	if err != nil {
		return OrderReceipt{}, err
	}
	return OrderReceipt{Order: order, PaymentLink: uc.paymentLink}, nil
}

func (uc *OrderUsecase) ListOrders(ctx context.Context, userID, role string) ([]entities.Order, error) {
	return uc.repo.ListForUser(ctx, userID, role)
}

// PlanOrder checks quantity against the locked product and returns the order
// plus the product document with its stock reduced.
func PlanOrder(row entities.CatalogRow, vendorID string, quantity int) (entities.Order, map[string]interface{}, error) {
	p := CoerceProduct(row)
	if quantity < p.MinOrder {
		return entities.Order{}, nil, fmt.Errorf("%w: at least %d units", ErrBelowMinOrder, p.MinOrder)
	}
	if quantity > p.Quantity {
		return entities.Order{}, nil, fmt.Errorf("%w: %d units available", ErrInsufficientStock, p.Quantity)
	}

	doc := make(map[string]interface{}, len(row.Data))
	for k, v := range row.Data {
		doc[k] = v
	}
	// joined owner fields are not part of the stored document
	delete(doc, "wholesalerName")
	delete(doc, "wholesalerPhoto")
	doc["quantity"] = p.Quantity - quantity

	order := entities.Order{
		ID:           uuid.NewString(),
		ProductID:    p.ID,
		ProductName:  p.Name,
		Quantity:     quantity,
		Amount:       p.Price * float64(quantity),
		Status:       OrderStatusSuccess,
		WholesalerID: p.WholesalerID,
		VendorID:     vendorID,
	}
	return order, doc, nil
}
