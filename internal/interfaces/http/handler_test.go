package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"farmlink/internal/entities"
	"farmlink/internal/infrastructure"
	"farmlink/internal/repository"
	"farmlink/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const testSecret = "handler-test-secret-0123456789"

type fakeAssistant struct {
	mu       sync.Mutex
	text     string
	location string
}

func (f *fakeAssistant) ProcessMessage(_ context.Context, text, location string) entities.ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text, f.location = text, location
	return entities.ChatMessage{ID: "ai-1", Message: "Found onions", IsBot: true, Timestamp: time.Now()}
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]*entities.User
}

func (m *memUsers) Create(_ context.Context, u *entities.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.users == nil {
		m.users = map[string]*entities.User{}
	}
	u.ID = "u-" + u.Email
	m.users[u.Email] = u
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[email], nil
}

type fakeProducts struct {
	catalog []entities.Product
	created entities.Product
	err     error
}

func (f *fakeProducts) ListCatalog(context.Context) ([]entities.Product, error) {
	return f.catalog, f.err
}

func (f *fakeProducts) ListOwn(_ context.Context, wid string) ([]entities.Product, error) {
	var out []entities.Product
	for _, p := range f.catalog {
		if p.WholesalerID == wid {
			out = append(out, p)
		}
	}
	return out, f.err
}

func (f *fakeProducts) GetByID(_ context.Context, id string) (entities.Product, error) {
	for _, p := range f.catalog {
		if p.ID == id {
			return p, nil
		}
	}
	return entities.Product{}, usecases.ErrProductNotFound
}

func (f *fakeProducts) Create(_ context.Context, wid string, p entities.Product) (entities.Product, error) {
	p.ID = "p-new"
	p.WholesalerID = wid
	f.created = p
	return p, f.err
}

func (f *fakeProducts) Update(_ context.Context, wid, id string, p entities.Product) (entities.Product, error) {
	if f.err != nil {
		return entities.Product{}, f.err
	}
	p.ID, p.WholesalerID = id, wid
	return p, nil
}

func (f *fakeProducts) Delete(context.Context, string, string) error { return f.err }

type fakeOrders struct {
	err      error
	vendorID string
	role     string
}

func (f *fakeOrders) PlaceOrder(_ context.Context, vendorID, productID string, qty int) (usecases.OrderReceipt, error) {
	f.vendorID = vendorID
	if f.err != nil {
		return usecases.OrderReceipt{}, f.err
	}
	return usecases.OrderReceipt{
		Order:       entities.Order{ID: "o-1", ProductID: productID, Quantity: qty, VendorID: vendorID},
		PaymentLink: "https://pay.example/checkout",
	}, nil
}

func (f *fakeOrders) ListOrders(_ context.Context, userID, role string) ([]entities.Order, error) {
	f.role = role
	return []entities.Order{{ID: "o-1", VendorID: userID}}, nil
}

type fakeAdmin struct {
	settings map[string]string
}

func (f *fakeAdmin) Stats(context.Context) (usecases.PlatformStats, error) {
	return usecases.PlatformStats{}, nil
}

func (f *fakeAdmin) ListUsers(context.Context) ([]entities.User, error) {
	return []entities.User{{ID: "u-1", Email: "a@b.co"}}, nil
}

func (f *fakeAdmin) GetSetting(_ context.Context, key string) (string, error) {
	return f.settings[key], nil
}

func (f *fakeAdmin) SetSetting(_ context.Context, key, value string) error {
	f.settings[key] = value
	return nil
}

func (f *fakeAdmin) ListSettings(context.Context) ([]repository.Setting, error) {
	var out []repository.Setting
	for k, v := range f.settings {
		out = append(out, repository.Setting{Key: k, Value: v})
	}
	return out, nil
}

type fakeWhatsApp struct {
	qr       string
	loggedIn bool
	logouts  int
}

func (f *fakeWhatsApp) Status() infrastructure.WhatsAppStatus {
	return infrastructure.WhatsAppStatus{Enabled: true, LoggedIn: f.loggedIn, HasQR: f.qr != ""}
}

func (f *fakeWhatsApp) QRCode() string { return f.qr }

func (f *fakeWhatsApp) Logout(context.Context) error {
	f.logouts++
	return nil
}

type testServer struct {
	router    *gin.Engine
	auth      *usecases.AuthUsecase
	assistant *fakeAssistant
	products  *fakeProducts
	orders    *fakeOrders
	admin     *fakeAdmin
	whatsapp  *fakeWhatsApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &testServer{
		auth:      usecases.NewAuthUsecase(&memUsers{}, testSecret),
		assistant: &fakeAssistant{},
		products: &fakeProducts{catalog: []entities.Product{
			{ID: "p-1", Name: "Red Onion", Price: 28, WholesalerID: "w-1", WholesalerName: "Ravi Traders"},
			{ID: "p-2", Name: "Tomato", Price: 20, WholesalerID: "w-2"},
		}},
		orders:   &fakeOrders{},
		admin:    &fakeAdmin{settings: map[string]string{}},
		whatsapp: &fakeWhatsApp{},
	}
	s.router = gin.New()
	SetupRoutes(s.router, Deps{
		Assistant:  s.assistant,
		Auth:       s.auth,
		Products:   s.products,
		Orders:     s.orders,
		Admin:      s.admin,
		WhatsApp:   s.whatsapp,
		Middleware: NewMiddleware(testSecret),
		ChatRate:   rate.Inf,
		ChatBurst:  1,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return s
}

func (s *testServer) token(t *testing.T, id, role string) string {
	t.Helper()
	tok, err := s.auth.IssueToken(&entities.User{ID: id, Role: role, Name: id})
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestChat(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/chat", "", gin.H{"message": "  need onions  ", "location": "Pune"})
	require.Equal(t, http.StatusOK, w.Code)

	var msg entities.ChatMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
	assert.Equal(t, "Found onions", msg.Message)
	assert.True(t, msg.IsBot)
	assert.Equal(t, "need onions", s.assistant.text)
	assert.Equal(t, "Pune", s.assistant.location)
}

func TestChatRejectsBlankMessage(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/chat", "", gin.H{"message": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, s.assistant.text)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "ravi@farm.in", "password": "secret1", "name": "Ravi", "role": "wholesaler",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "secret1")

	w = s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "ravi@farm.in", "password": "secret1", "name": "Ravi", "role": "wholesaler",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ravi@farm.in", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Token string        `json:"token"`
		User  entities.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, entities.RoleWholesaler, resp.User.Role)

	w = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ravi@farm.in", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body gin.H
		code int
	}{
		{"bad email", gin.H{"email": "nope", "password": "secret1", "name": "A", "role": "vendor"}, http.StatusBadRequest},
		{"short password", gin.H{"email": "a@b.co", "password": "123", "name": "A", "role": "vendor"}, http.StatusBadRequest},
		{"missing name", gin.H{"email": "a@b.co", "password": "secret1", "role": "vendor"}, http.StatusBadRequest},
		{"admin role", gin.H{"email": "a@b.co", "password": "secret1", "name": "A", "role": "admin"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestProductsRequireAuth(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/products", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/products", "garbage", nil).Code)

	w := s.do(http.MethodGet, "/api/products", s.token(t, "v-1", entities.RoleVendor), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ravi Traders")
}

func TestGetProductNotFound(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/products/missing", s.token(t, "v-1", entities.RoleVendor), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWholesalerProducts(t *testing.T) {
	s := newTestServer(t)
	wholesaler := s.token(t, "w-1", entities.RoleWholesaler)

	w := s.do(http.MethodGet, "/api/wholesaler/products", wholesaler, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var own []entities.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &own))
	require.Len(t, own, 1)
	assert.Equal(t, "p-1", own[0].ID)

	w = s.do(http.MethodPost, "/api/wholesaler/products", wholesaler, gin.H{"name": "Garlic\x00", "price": 90})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "w-1", s.products.created.WholesalerID)
	assert.Equal(t, "Garlic", s.products.created.Name)

	vendor := s.token(t, "v-1", entities.RoleVendor)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/wholesaler/products", vendor, nil).Code)
}

func TestWholesalerUpdateErrors(t *testing.T) {
	s := newTestServer(t)
	wholesaler := s.token(t, "w-1", entities.RoleWholesaler)

	s.products.err = usecases.ErrNotOwner
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPut, "/api/wholesaler/products/p-2", wholesaler, gin.H{"name": "x"}).Code)

	s.products.err = usecases.ErrInvalidProduct
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, "/api/wholesaler/products/p-1", wholesaler, gin.H{"name": ""}).Code)

	s.products.err = nil
	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/api/wholesaler/products/p-1", wholesaler, nil).Code)
}

func TestPlaceOrder(t *testing.T) {
	s := newTestServer(t)
	vendor := s.token(t, "v-1", entities.RoleVendor)

	w := s.do(http.MethodPost, "/api/orders", vendor, gin.H{"product_id": "p-1", "quantity": 10})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "v-1", s.orders.vendorID)
	assert.Contains(t, w.Body.String(), "https://pay.example/checkout")

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/orders", vendor, gin.H{"quantity": 1}).Code)

	s.orders.err = usecases.ErrInsufficientStock
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/api/orders", vendor, gin.H{"product_id": "p-1", "quantity": 9999}).Code)

	s.orders.err = usecases.ErrBelowMinOrder
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/orders", vendor, gin.H{"product_id": "p-1", "quantity": 1}).Code)

	wholesaler := s.token(t, "w-1", entities.RoleWholesaler)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/orders", wholesaler, gin.H{"product_id": "p-1", "quantity": 1}).Code)
}

func TestListOrdersPassesRole(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/orders", s.token(t, "w-1", entities.RoleWholesaler), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entities.RoleWholesaler, s.orders.role)
}
