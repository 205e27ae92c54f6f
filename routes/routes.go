package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/controllers"
)

// Register wires the storefront HTTP surface onto the router.
func Register(r *gin.Engine, cartCtrl *controllers.CartController, checkoutCtrl *controllers.CheckoutController, authCtrl *controllers.AuthController, productCtrl *controllers.ProductController) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", authCtrl.Login)
		auth.POST("/register", authCtrl.Register)
		auth.POST("/logout", authCtrl.Logout)
		auth.GET("/me", authCtrl.Me)
	}

	cart := r.Group("/cart")
	{
		cart.GET("", cartCtrl.GetCart)
		cart.POST("/items", cartCtrl.AddItem)
		cart.PUT("/items/:product_id", cartCtrl.UpdateQuantity)
		cart.DELETE("/items/:product_id", cartCtrl.RemoveItem)
		cart.DELETE("", cartCtrl.ClearCart)
	}

	checkout := r.Group("/checkout")
	{
		checkout.GET("/quote", checkoutCtrl.Quote)
		checkout.POST("/payment-method", checkoutCtrl.SelectMethod)
		checkout.POST("/verify-phone", checkoutCtrl.VerifyPhone)
		checkout.POST("/submit", checkoutCtrl.Submit)
	}

	r.GET("/products", productCtrl.ListProducts)
	r.GET("/products/:id", productCtrl.GetProduct)
	r.GET("/orders", productCtrl.ListOrders)
}
