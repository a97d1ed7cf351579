package router

import (
	"github.com/gin-gonic/gin"

	"github.com/loomshop/loomshop-backend/config"
	"github.com/loomshop/loomshop-backend/internal/app/controller"
	"github.com/loomshop/loomshop-backend/internal/middleware"
	"github.com/loomshop/loomshop-backend/internal/websocket"
)

type Router struct {
	authController       *controller.AuthController
	productController    *controller.ProductController
	optionController     *controller.OptionController
	upsellController     *controller.UpsellController
	collectionController *controller.CollectionController
	cartController       *controller.CartController
	orderController      *controller.OrderController
	uploadController     *controller.UploadController
	orderFeed            *websocket.Hub
	authMiddleware       *middleware.AuthMiddleware
	config               *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	optionController *controller.OptionController,
	upsellController *controller.UpsellController,
	collectionController *controller.CollectionController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	uploadController *controller.UploadController,
	orderFeed *websocket.Hub,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:       authController,
		productController:    productController,
		optionController:     optionController,
		upsellController:     upsellController,
		collectionController: collectionController,
		cartController:       cartController,
		orderController:      orderController,
		uploadController:     uploadController,
		orderFeed:            orderFeed,
		authMiddleware:       authMiddleware,
		config:               cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "LOOMSHOP API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", r.productController.GetAllProducts)
			products.GET("/:id", r.productController.GetProductByID)
			products.GET("/slug/:slug", r.productController.GetProductBySlug)
			products.POST("/:id/options/resolve", r.optionController.ResolveOptions)
			products.POST("/:id/options/select", r.optionController.SelectOption)
		}

		upsells := v1.Group("/upsells")
		{
			upsells.GET("", r.upsellController.GetAllUpsells)
			upsells.GET("/:id", r.upsellController.GetUpsellByID)
		}

		collections := v1.Group("/collections")
		{
			collections.GET("", r.collectionController.GetAllCollections)
			collections.GET("/:slug", r.collectionController.GetCollectionBySlug)
		}

		auth := v1.Group("/auth")
		auth.Use(r.authMiddleware.Authenticate())
		{
			auth.POST("/logout", r.authController.Logout)
		}

		cart := v1.Group("/cart")
		cart.Use(r.authMiddleware.Authenticate())
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("/products", r.cartController.AddProductLine)
			cart.POST("/upsells", r.cartController.AddUpsellLine)
			cart.PUT("/order", r.cartController.ReorderLines)
			cart.PUT("/lines/:variantId/quantity", r.cartController.UpdateQuantity)
			cart.DELETE("/lines/:variantId", r.cartController.RemoveLine)
			cart.DELETE("", r.cartController.ClearCart)
		}

		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.GET("", r.orderController.GetMyOrders)
			orders.GET("/:id", r.orderController.GetOrderByID)
			orders.POST("", r.orderController.Checkout)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireAdmin())
		{
			admin.POST("/products", r.productController.CreateProduct)
			admin.PUT("/products/:id", r.productController.UpdateProduct)
			admin.DELETE("/products/:id", r.productController.DeleteProduct)

			admin.POST("/products/:id/option-groups", r.optionController.CreateGroup)
			admin.PUT("/option-groups/:id", r.optionController.UpdateGroup)
			admin.DELETE("/option-groups/:id", r.optionController.DeleteGroup)
			admin.POST("/option-groups/:id/values", r.optionController.CreateValue)
			admin.PUT("/option-values/:id", r.optionController.UpdateValue)
			admin.DELETE("/option-values/:id", r.optionController.DeleteValue)
			admin.POST("/products/:id/chaining", r.optionController.CreateChaining)
			admin.PUT("/chaining/:id", r.optionController.UpdateChaining)
			admin.DELETE("/chaining/:id", r.optionController.DeleteChaining)

			admin.POST("/upsells", r.upsellController.CreateUpsell)
			admin.PUT("/upsells/:id", r.upsellController.UpdateUpsell)
			admin.DELETE("/upsells/:id", r.upsellController.DeleteUpsell)
			admin.POST("/upsells/reprice", r.upsellController.RepriceUpsells)

			admin.POST("/collections", r.collectionController.CreateCollection)
			admin.PUT("/collections/:id", r.collectionController.UpdateCollection)
			admin.DELETE("/collections/:id", r.collectionController.DeleteCollection)

			admin.GET("/orders", r.orderController.GetAllOrders)
			admin.GET("/orders/export", r.orderController.ExportOrders)
			admin.GET("/orders/feed", r.orderFeed.ServeOrderFeed)
			admin.PUT("/orders/:id/status", r.orderController.UpdateOrderStatus)

			admin.POST("/uploads", r.uploadController.IssueUploadTicket)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
