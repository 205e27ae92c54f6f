package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/checkout"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/models"
)

type CheckoutController struct {
	Orchestrator *checkout.Orchestrator
}

func NewCheckoutController(orc *checkout.Orchestrator) *CheckoutController {
	return &CheckoutController{Orchestrator: orc}
}

// Quote prices the current cart for a destination city
func (cc *CheckoutController) Quote(c *gin.Context) {
	city := c.Query("city")
	if city == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "city is required"})
		return
	}

	quote := cc.Orchestrator.Quote(city)
	c.JSON(http.StatusOK, gin.H{"quote": quote})
}

// SelectMethod switches the payment method, resetting path-specific state
func (cc *CheckoutController) SelectMethod(c *gin.Context) {
	var req struct {
		Method string `json:"method" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	method := models.PaymentMethod(req.Method)
	if method != models.PaymentMethodCard && method != models.PaymentMethodCOD {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown payment method"})
		return
	}

	cc.Orchestrator.SelectPaymentMethod(method)
	c.JSON(http.StatusOK, gin.H{
		"method":       method,
		"cod_verified": cc.Orchestrator.CODVerified(),
	})
}

// VerifyPhone runs cash-on-delivery phone verification
func (cc *CheckoutController) VerifyPhone(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := cc.Orchestrator.VerifyPhone(c.Request.Context(), req.Phone); err != nil {
		var fieldErr *checkout.FieldError
		if errors.As(err, &fieldErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": fieldErr.Field})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"verified": true})
}

// Submit places the order via the selected payment path
func (cc *CheckoutController) Submit(c *gin.Context) {
	var form models.CheckoutForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	orderID, err := cc.Orchestrator.Submit(c.Request.Context(), form)
	if err != nil {
		status := http.StatusBadRequest
		resp := gin.H{"error": err.Error()}

		var fieldErr *checkout.FieldError
		switch {
		case errors.As(err, &fieldErr):
			resp["field"] = fieldErr.Field
		case errors.Is(err, checkout.ErrAlreadyProcessing):
			status = http.StatusConflict
		case errors.Is(err, checkout.ErrCODNotVerified),
			errors.Is(err, checkout.ErrNoPaymentMethod),
			errors.Is(err, checkout.ErrCartEmpty):
			// 400 with the message as-is
		default:
			status = http.StatusBadGateway
		}

		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order_id": orderID})
}
