package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"farmlink/internal/entities"
	"farmlink/internal/infrastructure"
	"farmlink/internal/interfaces"
	"farmlink/internal/repository"
	"farmlink/internal/usecases"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type AuthService interface {
	Register(ctx context.Context, in usecases.RegisterInput) (*entities.User, error)
	Login(ctx context.Context, email, password string) (string, *entities.User, error)
}

type ProductService interface {
	ListCatalog(ctx context.Context) ([]entities.Product, error)
	ListOwn(ctx context.Context, wholesalerID string) ([]entities.Product, error)
	GetByID(ctx context.Context, id string) (entities.Product, error)
	Create(ctx context.Context, wholesalerID string, p entities.Product) (entities.Product, error)
	Update(ctx context.Context, wholesalerID, id string, p entities.Product) (entities.Product, error)
	Delete(ctx context.Context, wholesalerID, id string) error
}

type OrderService interface {
	PlaceOrder(ctx context.Context, vendorID, productID string, quantity int) (usecases.OrderReceipt, error)
	ListOrders(ctx context.Context, userID, role string) ([]entities.Order, error)
}

type AdminService interface {
	Stats(ctx context.Context) (usecases.PlatformStats, error)
	ListUsers(ctx context.Context) ([]entities.User, error)
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	ListSettings(ctx context.Context) ([]repository.Setting, error)
}

// WhatsAppAdmin is the paired-device view used by admins
type WhatsAppAdmin interface {
	Status() infrastructure.WhatsAppStatus
	QRCode() string
	Logout(ctx context.Context) error
}

// Deps wires the router. WhatsApp is nil when the channel is disabled.
type Deps struct {
	Assistant  interfaces.Assistant
	Auth       AuthService
	Products   ProductService
	Orders     OrderService
	Admin      AdminService
	WhatsApp   WhatsAppAdmin
	Middleware *Middleware
	ChatRate   rate.Limit
	ChatBurst  int
	Logger     *slog.Logger
}

type Handler struct {
	assistant interfaces.Assistant
	auth      AuthService
	products  ProductService
	orders    OrderService
	logger    *slog.Logger
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		assistant: d.Assistant,
		auth:      d.Auth,
		products:  d.Products,
		orders:    d.Orders,
		logger:    d.Logger,
	}
}

func SetupRoutes(r *gin.Engine, d Deps) {
	h := NewHandler(d)
	adminHandler := NewAdminHandler(d.Admin, d.WhatsApp, d.Logger)
	mw := d.Middleware

	// Apply Security Middleware
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(10 << 20)) // 10MB max request size
	r.Use(mw.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public Routes
	r.POST("/api/chat", mw.RateLimitByClientIP(d.ChatRate, d.ChatBurst), h.Chat)

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	api := r.Group("/api")
	api.Use(mw.AuthRequired())
	api.Use(mw.RateLimitPerUser(5, 10))
	{
		api.GET("/products", h.ListCatalog)
		api.GET("/products/:id", h.GetProduct)

		api.GET("/orders", h.ListOrders)
		api.POST("/orders", mw.RoleRequired(entities.RoleVendor), h.PlaceOrder)

		wholesaler := api.Group("/wholesaler")
		wholesaler.Use(mw.RoleRequired(entities.RoleWholesaler))
		{
			wholesaler.GET("/products", h.ListOwnProducts)
			wholesaler.POST("/products", h.CreateProduct)
			wholesaler.PUT("/products/:id", h.UpdateProduct)
			wholesaler.DELETE("/products/:id", h.DeleteProduct)
		}
	}

	// Admin-only Routes
	admin := r.Group("/api/admin")
	admin.Use(mw.AuthRequired())
	admin.Use(mw.RoleRequired(entities.RoleAdmin))
	{
		admin.GET("/stats", adminHandler.GetStats)
		admin.GET("/users", adminHandler.GetAllUsers)
		admin.GET("/settings", adminHandler.GetAllSettings)
		admin.GET("/settings/:key", adminHandler.GetSetting)
		admin.PUT("/settings/:key", adminHandler.SetSetting)
		admin.GET("/whatsapp/status", adminHandler.GetWhatsAppStatus)
		admin.GET("/whatsapp/qr", adminHandler.GetWhatsAppQR)
		admin.POST("/whatsapp/logout", adminHandler.LogoutWhatsApp)
	}
}

type chatRequest struct {
	Message  string `json:"message"`
	Location string `json:"location"`
}

// Chat answers one VendorGPT message. Blank input is rejected here; every
// other request gets a reply, degraded or not.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	text := strings.TrimSpace(SanitizeString(req.Message))
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	if !ValidateLength(text, 1, MaxMessageLength) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is too long"})
		return
	}
	location := TruncateString(strings.TrimSpace(SanitizeString(req.Location)), MaxLocationLength)

	c.JSON(http.StatusOK, h.assistant.ProcessMessage(c.Request.Context(), text, location))
}

func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		PhotoURL string `json:"photo_url"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if !ValidEmail(req.Email) || len(req.Password) < MinPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email or password (min 6 chars)"})
		return
	}
	if !ValidateLength(strings.TrimSpace(req.Name), 1, MaxNameLength) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), usecases.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     SanitizeString(req.Name),
		PhotoURL: req.PhotoURL,
		Role:     req.Role,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	token, user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// writeError maps domain errors to HTTP statuses
func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecases.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, usecases.ErrNotOwner):
		status = http.StatusForbidden
	case errors.Is(err, usecases.ErrProductNotFound):
		status = http.StatusNotFound
	case errors.Is(err, usecases.ErrEmailTaken), errors.Is(err, usecases.ErrInsufficientStock):
		status = http.StatusConflict
	case errors.Is(err, usecases.ErrInvalidProduct), errors.Is(err, usecases.ErrInvalidRole),
		errors.Is(err, usecases.ErrBelowMinOrder), errors.Is(err, usecases.ErrInvalidQuantity):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
