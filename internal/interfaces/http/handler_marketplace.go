package http

import (
	"net/http"

	"farmlink/internal/entities"

	"github.com/gin-gonic/gin"
)

// ListCatalog is the vendor catalog with wholesaler names and photos
func (h *Handler) ListCatalog(c *gin.Context) {
	products, err := h.products.ListCatalog(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) GetProduct(c *gin.Context) {
	p, err := h.products.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) ListOwnProducts(c *gin.Context) {
	products, err := h.products.ListOwn(c.Request.Context(), getUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var p entities.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	created, err := h.products.Create(c.Request.Context(), getUserID(c), sanitizeProduct(p))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	var p entities.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	updated, err := h.products.Update(c.Request.Context(), getUserID(c), c.Param("id"), sanitizeProduct(p))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) PlaceOrder(c *gin.Context) {
	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ProductID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id and quantity are required"})
		return
	}
	receipt, err := h.orders.PlaceOrder(c.Request.Context(), getUserID(c), req.ProductID, req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

// ListOrders returns placed orders for vendors and received orders for wholesalers
func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), getUserID(c), getRole(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func sanitizeProduct(p entities.Product) entities.Product {
	p.Name = TruncateString(SanitizeString(p.Name), MaxNameLength)
	p.Description = SanitizeString(p.Description)
	p.Address = SanitizeString(p.Address)
	p.City = TruncateString(SanitizeString(p.City), MaxNameLength)
	p.MobileNo = SanitizeString(p.MobileNo)
	p.CountryCode = SanitizeString(p.CountryCode)
	p.ImageURL = SanitizeString(p.ImageURL)
	return p
}
