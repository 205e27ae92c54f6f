package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/api"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/pkg/apperrors"
)

type ProductController struct {
	API    *api.Client
	Logger *zap.Logger
}

func NewProductController(client *api.Client, logger *zap.Logger) *ProductController {
	return &ProductController{API: client, Logger: logger}
}

// ListProducts proxies one catalog page from the remote API
func (pc *ProductController) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	products, pagination, err := pc.API.ListProducts(c.Request.Context(), page)
	if err != nil {
		pc.Logger.Error("product list failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products, "pagination": pagination})
}

// GetProduct proxies a single product from the remote API
func (pc *ProductController) GetProduct(c *gin.Context) {
	product, err := pc.API.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		pc.Logger.Error("product fetch failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// ListOrders proxies the signed-in user's order history
func (pc *ProductController) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	orders, pagination, err := pc.API.ListOrders(c.Request.Context(), page)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionExpired) || errors.Is(err, apperrors.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}
		pc.Logger.Error("order list failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "pagination": pagination})
}
