package http

import (
	"log/slog"
	"net/http"

	"farmlink/internal/infrastructure"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

type AdminHandler struct {
	admin    AdminService
	whatsapp WhatsAppAdmin
	logger   *slog.Logger
}

func NewAdminHandler(admin AdminService, whatsapp WhatsAppAdmin, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		admin:    admin,
		whatsapp: whatsapp,
		logger:   logger,
	}
}

// GetStats returns platform statistics
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("admin stats failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	whatsapp := infrastructure.WhatsAppStatus{}
	if h.whatsapp != nil {
		whatsapp = h.whatsapp.Status()
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":    stats,
		"whatsapp": whatsapp,
	})
}

// GetAllUsers returns list of all users
func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	users, err := h.admin.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) GetAllSettings(c *gin.Context) {
	settings, err := h.admin.ListSettings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *AdminHandler) GetSetting(c *gin.Context) {
	key := c.Param("key")
	if !ValidConfigKey(key) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid config key"})
		return
	}
	value, err := h.admin.GetSetting(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch setting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

func (h *AdminHandler) SetSetting(c *gin.Context) {
	key := c.Param("key")
	var payload struct {
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	// Input validation
	if !ValidConfigKey(key) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid config key"})
		return
	}
	if !ValidateLength(payload.Value, 0, MaxConfigValLength) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Config value too long"})
		return
	}
	payload.Value = SanitizeString(payload.Value)

	if err := h.admin.SetSetting(c.Request.Context(), key, payload.Value); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save config"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *AdminHandler) GetWhatsAppStatus(c *gin.Context) {
	if h.whatsapp == nil {
		c.JSON(http.StatusOK, infrastructure.WhatsAppStatus{})
		return
	}
	c.JSON(http.StatusOK, h.whatsapp.Status())
}

// GetWhatsAppQR returns the pairing QR code as PNG
func (h *AdminHandler) GetWhatsAppQR(c *gin.Context) {
	if h.whatsapp == nil {
		c.String(http.StatusServiceUnavailable, "WhatsApp not configured")
		return
	}

	code := h.whatsapp.QRCode()
	if code == "" {
		if h.whatsapp.Status().LoggedIn {
			c.String(http.StatusOK, "Already logged in")
			return
		}
		c.String(http.StatusAccepted, "QR code not yet available. Please wait...")
		return
	}

	png, err := qrcode.Encode(code, qrcode.Medium, 256)
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to generate QR code")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// LogoutWhatsApp unpairs the device; a fresh QR code follows
func (h *AdminHandler) LogoutWhatsApp(c *gin.Context) {
	if h.whatsapp == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "WhatsApp not configured"})
		return
	}
	if err := h.whatsapp.Logout(c.Request.Context()); err != nil {
		h.logger.Warn("whatsapp logout failed", "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}
