package usecases

import (
	"context"
	"fmt"

	"farmlink/internal/entities"
	"farmlink/internal/repository"
)

type DashboardStore interface {
	CountByRole(ctx context.Context) (map[string]int, error)
	List(ctx context.Context) ([]entities.User, error)
}

type CatalogCounter interface {
	Count(ctx context.Context) (int, error)
}

type OrderTotaler interface {
	Totals(ctx context.Context) (repository.OrderTotals, error)
}

type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	ListSettings(ctx context.Context) ([]repository.Setting, error)
}

// PlatformStats is the admin overview
type PlatformStats struct {
	Wholesalers int                    `json:"wholesalers"`
	Vendors     int                    `json:"vendors"`
	Admins      int                    `json:"admins"`
	Products    int                    `json:"products"`
	Orders      repository.OrderTotals `json:"orders"`
}

// DashboardUsecase backs the admin endpoints
type DashboardUsecase struct {
	users    DashboardStore
	products CatalogCounter
	orders   OrderTotaler
	settings SettingsStore
}

func NewDashboardUsecase(users DashboardStore, products CatalogCounter, orders OrderTotaler, settings SettingsStore) *DashboardUsecase {
	return &DashboardUsecase{
		users:    users,
		products: products,
		orders:   orders,
		settings: settings,
	}
}

func (u *DashboardUsecase) Stats(ctx context.Context) (PlatformStats, error) {
	roles, err := u.users.CountByRole(ctx)
	if err != nil {
		return PlatformStats{}, err
	}
	products, err := u.products.Count(ctx)
	if err != nil {
		return PlatformStats{}, fmt.Errorf("count products: %w", err)
	}
	orders, err := u.orders.Totals(ctx)
	if err != nil {
		return PlatformStats{}, err
	}
	return PlatformStats{
		Wholesalers: roles[entities.RoleWholesaler],
		Vendors:     roles[entities.RoleVendor],
		Admins:      roles[entities.RoleAdmin],
		Products:    products,
		Orders:      orders,
	}, nil
}

func (u *DashboardUsecase) ListUsers(ctx context.Context) ([]entities.User, error) {
	return u.users.List(ctx)
}

// Config Management
func (u *DashboardUsecase) GetSetting(ctx context.Context, key string) (string, error) {
	return u.settings.GetSetting(ctx, key)
}

func (u *DashboardUsecase) SetSetting(ctx context.Context, key, value string) error {
	return u.settings.SetSetting(ctx, key, value)
}

func (u *DashboardUsecase) ListSettings(ctx context.Context) ([]repository.Setting, error) {
	return u.settings.ListSettings(ctx)
}
