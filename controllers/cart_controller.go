package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/cart"
)

type CartController struct {
	Store *cart.Store
}

func NewCartController(store *cart.Store) *CartController {
	return &CartController{Store: store}
}

// GetCart returns the current cart lines and derived count
func (cc *CartController) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"lines": cc.Store.Lines(),
		"count": cc.Store.Count(),
	})
}

// AddItem merges an item into the cart
func (cc *CartController) AddItem(c *gin.Context) {
	var req struct {
		ProductID string  `json:"product_id" binding:"required"`
		Name      string  `json:"name" binding:"required"`
		UnitPrice float64 `json:"unit_price" binding:"required"`
		Quantity  int     `json:"quantity"`
		ImageRef  string  `json:"image_ref"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cc.Store.AddLine(c.Request.Context(), req.ProductID, req.Name, req.UnitPrice, req.Quantity, req.ImageRef)

	c.JSON(http.StatusOK, gin.H{
		"lines": cc.Store.Lines(),
		"count": cc.Store.Count(),
	})
}

// UpdateQuantity overwrites a line's quantity; zero or less removes it
func (cc *CartController) UpdateQuantity(c *gin.Context) {
	productID := c.Param("product_id")
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	cc.Store.SetQuantity(c.Request.Context(), productID, req.Quantity)

	c.JSON(http.StatusOK, gin.H{
		"lines": cc.Store.Lines(),
		"count": cc.Store.Count(),
	})
}

// RemoveItem deletes a line from the cart
func (cc *CartController) RemoveItem(c *gin.Context) {
	productID := c.Param("product_id")
	cc.Store.RemoveLine(c.Request.Context(), productID)

	c.JSON(http.StatusOK, gin.H{
		"lines": cc.Store.Lines(),
		"count": cc.Store.Count(),
	})
}

// ClearCart empties the cart
func (cc *CartController) ClearCart(c *gin.Context) {
	cc.Store.Clear(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}
