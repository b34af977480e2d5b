package usecases

import (
	"context"
	"sync"
	"testing"
	"time"

	"farmlink/internal/entities"
	"farmlink/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memProducts mimics the Postgres catalog: documents keyed by id with an owner column
type memProducts struct {
	mu     sync.Mutex
	docs   map[string]map[string]interface{}
	owners map[string]string
	names  map[string]string
	order  []string
}

func newMemProducts() *memProducts {
	return &memProducts{
		docs:   map[string]map[string]interface{}{},
		owners: map[string]string{},
		names:  map[string]string{},
	}
}

func (m *memProducts) row(id string) entities.CatalogRow {
	doc := map[string]interface{}{}
	for k, v := range m.docs[id] {
		doc[k] = v
	}
	if name := m.names[m.owners[id]]; name != "" {
		doc["wholesalerName"] = name
	}
	return entities.CatalogRow{ID: id, Data: doc}
}

func (m *memProducts) FetchAllRows(context.Context) ([]entities.CatalogRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entities.CatalogRow{}
	for _, id := range m.order {
		out = append(out, m.row(id))
	}
	return out, nil
}

func (m *memProducts) ListByWholesaler(_ context.Context, wid string) ([]entities.CatalogRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entities.CatalogRow{}
	for _, id := range m.order {
		if m.owners[id] == wid {
			out = append(out, m.row(id))
		}
	}
	return out, nil
}

func (m *memProducts) GetRow(_ context.Context, id string) (entities.CatalogRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return entities.CatalogRow{}, repository.ErrNotFound
	}
	return m.row(id), nil
}

func (m *memProducts) Create(_ context.Context, id, wid string, doc map[string]interface{}) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[id] = doc
	m.owners[id] = wid
	m.order = append(m.order, id)
	return time.Now(), nil
}

func (m *memProducts) Update(_ context.Context, id, wid string, doc map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.owners[id] != wid {
		return repository.ErrNotFound
	}
	m.docs[id] = doc
	return nil
}

func (m *memProducts) Delete(_ context.Context, id, wid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.owners[id] != wid {
		return repository.ErrNotFound
	}
	delete(m.docs, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func validListing() entities.Product {
	return entities.Product{
		Name: " Red Onion ", City: "Pune", Address: "Market Yard",
		MobileNo: "9876543210", Price: 25, MinOrder: 10, Quantity: 500,
	}
}

func TestProductUsecase_CreateAndList(t *testing.T) {
	store := newMemProducts()
	store.names["w1"] = "Sharma Traders"
	uc := NewProductUsecase(store)
	ctx := context.Background()

	created, err := uc.Create(ctx, "w1", validListing())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Red Onion", created.Name)
	assert.Equal(t, DefaultCountryCode, created.CountryCode)
	assert.Equal(t, "w1", created.WholesalerID)

	// orphaned listing from a deleted account
	_, err = store.Create(ctx, "orphan", "gone", map[string]interface{}{"name": "Garlic", "price": "90"})
	require.NoError(t, err)

	catalog, err := uc.ListCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, catalog, 2)
	assert.Equal(t, "Sharma Traders", catalog[0].WholesalerName)
	assert.Equal(t, UnknownWholesaler, catalog[1].WholesalerName)
	assert.Equal(t, float64(90), catalog[1].Price)

	own, err := uc.ListOwn(ctx, "w1")
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, created.ID, own[0].ID)
}

func TestProductUsecase_Validation(t *testing.T) {
	uc := NewProductUsecase(newMemProducts())
	ctx := context.Background()

	for name, mutate := range map[string]func(*entities.Product){
		"no name":        func(p *entities.Product) { p.Name = "  " },
		"no city":        func(p *entities.Product) { p.City = "" },
		"negative price": func(p *entities.Product) { p.Price = -1 },
		"negative stock": func(p *entities.Product) { p.Quantity = -5 },
	} {
		t.Run(name, func(t *testing.T) {
			p := validListing()
			mutate(&p)
			_, err := uc.Create(ctx, "w1", p)
			assert.ErrorIs(t, err, ErrInvalidProduct)
		})
	}
}

func TestProductUsecase_OwnershipEnforced(t *testing.T) {
	uc := NewProductUsecase(newMemProducts())
	ctx := context.Background()
	created, err := uc.Create(ctx, "w1", validListing())
	require.NoError(t, err)

	update := validListing()
	update.Price = 22
	_, err = uc.Update(ctx, "w2", created.ID, update)
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.ErrorIs(t, uc.Delete(ctx, "w2", created.ID), ErrNotOwner)

	updated, err := uc.Update(ctx, "w1", created.ID, update)
	require.NoError(t, err)
	assert.Equal(t, float64(22), updated.Price)

	got, err := uc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(22), got.Price)

	require.NoError(t, uc.Delete(ctx, "w1", created.ID))
	_, err = uc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, uc.Delete(ctx, "w1", created.ID), ErrProductNotFound)
}

func TestProductUsecase_CreatedListingIsMatchable(t *testing.T) {
	store := newMemProducts()
	uc := NewProductUsecase(store)
	ctx := context.Background()
	_, err := uc.Create(ctx, "w1", validListing())
	require.NoError(t, err)

	matcher := NewCatalogMatcher(store, testLogger())
	matches := matcher.Match(ctx, "onion", "30", "")
	require.Len(t, matches, 1)
	assert.Equal(t, 10, matches[0].MinOrder)
	assert.Equal(t, "+91 9876543210", matches[0].Contact())
}
