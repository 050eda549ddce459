package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nickflanagn24/bookstore/config"
	"github.com/Nickflanagn24/bookstore/controllers"
	"github.com/Nickflanagn24/bookstore/middleware"
)

// Controllers bundles every controller for route registration.
type Controllers struct {
	Auth          *controllers.AuthController
	Books         *controllers.BookController
	Cart          *controllers.CartController
	Orders        *controllers.OrderController
	Payments      *controllers.PaymentController
	Reviews       *controllers.ReviewController
	Newsletter    *controllers.NewsletterController
	Contact       *controllers.ContactController
	Notifications *controllers.NotificationController
}

// Register wires the whole HTTP surface onto the engine.
func Register(r *gin.Engine, cfg *config.Config, ctrl Controllers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Use(middleware.AuthRateLimit())
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)
	}
	api.GET("/auth/me", middleware.AuthRequired(cfg.JWTSecret), ctrl.Auth.Me)

	// Public catalog.
	books := api.Group("/books")
	{
		books.GET("", ctrl.Books.List)
		books.GET("/:id", ctrl.Books.Get)
		books.GET("/:id/reviews", ctrl.Reviews.ListForBook)
	}

	// Public newsletter and contact form.
	newsletter := api.Group("/newsletter")
	{
		newsletter.POST("/subscribe", ctrl.Newsletter.Subscribe)
		newsletter.GET("/confirm/:token", ctrl.Newsletter.Confirm)
		newsletter.GET("/unsubscribe/:token", ctrl.Newsletter.Unsubscribe)
	}
	api.POST("/contact", ctrl.Contact.Submit)

	// Stripe calls this; it authenticates with its signature, not a JWT.
	api.POST("/payments/webhook", ctrl.Payments.StripeWebhook)

	// Authenticated customer surface.
	authed := api.Group("")
	authed.Use(middleware.AuthRequired(cfg.JWTSecret))
	{
		cart := authed.Group("/cart")
		{
			cart.GET("", ctrl.Cart.Get)
			cart.POST("/items", ctrl.Cart.AddItem)
			cart.PATCH("/items/:itemId", ctrl.Cart.UpdateItem)
			cart.DELETE("/items/:itemId", ctrl.Cart.RemoveItem)
			cart.DELETE("", ctrl.Cart.Clear)
		}

		orders := authed.Group("/orders")
		{
			orders.GET("", ctrl.Orders.List)
			orders.GET("/:number", ctrl.Orders.Get)
		}

		checkout := authed.Group("/checkout")
		{
			checkout.POST("", ctrl.Payments.CreateCheckoutSession)
			checkout.GET("/success", ctrl.Payments.CheckoutSuccess)
			checkout.GET("/cancelled", ctrl.Payments.CheckoutCancelled)
		}

		reviews := authed.Group("/reviews")
		{
			reviews.GET("", ctrl.Reviews.ListMine)
			reviews.PUT("/:reviewId", ctrl.Reviews.Update)
			reviews.DELETE("/:reviewId", ctrl.Reviews.Delete)
		}
		authed.POST("/books/:id/reviews", ctrl.Reviews.Create)
	}

	// Staff surface.
	staff := api.Group("/admin")
	staff.Use(middleware.AuthRequired(cfg.JWTSecret), middleware.StaffRequired())
	{
		staff.POST("/books", ctrl.Books.Create)
		staff.PUT("/books/:id", ctrl.Books.Update)
		staff.DELETE("/books/:id", ctrl.Books.Retire)

		staff.GET("/orders", ctrl.Orders.ListAll)
		staff.PATCH("/orders/:id/status", ctrl.Orders.UpdateStatus)

		staff.GET("/contact-messages", ctrl.Contact.List)
		staff.PATCH("/contact-messages/:id/read", ctrl.Contact.MarkRead)

		staff.GET("/notifications", ctrl.Notifications.Logs)
		staff.POST("/notifications/test", ctrl.Notifications.SendTest)
	}
}
