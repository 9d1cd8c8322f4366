package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"mercato-system/config"
	"mercato-system/internal/database"
	"mercato-system/internal/gateway/handlers"
	"mercato-system/internal/gateway/middleware"
	adminsvc "mercato-system/internal/services/admin/handler"
	billingsvc "mercato-system/internal/services/billing/handler"
	invoicesvc "mercato-system/internal/services/invoice/handler"
	ordersvc "mercato-system/internal/services/order/handler"
	"mercato-system/internal/utils"
)

func main() {
	cfg := config.LoadConfig()
	utils.SetJWTSecret(cfg.Auth.JWTSecret)

	db, err := database.NewConnection(cfg.DB.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	redisClient := config.NewRedisClient(cfg.Redis)

	invoiceHandler := handlers.NewInvoiceHTTPHandler(invoicesvc.NewInvoiceHandler(db, redisClient))
	orderHandler := handlers.NewOrderHTTPHandler(ordersvc.NewOrderHandler(db, redisClient))
	billingHandler := handlers.NewBillingHTTPHandler(billingsvc.NewBillingHandler(db, redisClient))
	adminHandler := handlers.NewAdminHTTPHandler(adminsvc.NewAdminHandler(db, redisClient))

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))
	r.Use(middleware.RateLimit("300-M"))

	api := r.Group("/api")
	api.Use(middleware.JWTAuth())

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.POST("/invoices", invoiceHandler.CreateInvoice)
		admin.GET("/invoices", invoiceHandler.ListAdminInvoices)

		admin.POST("/orders", orderHandler.CreateOrderForShop)
		admin.GET("/orders", orderHandler.ListAllOrders)
		admin.GET("/orders/shop/:shopId", orderHandler.ListOrdersByShop)
		admin.GET("/orders/:id", orderHandler.GetOrder)
		admin.PUT("/orders/update-status", orderHandler.UpdateOrderStatus)

		admin.POST("/shops", adminHandler.CreateShop)
		admin.GET("/shops", adminHandler.ListShops)
		admin.POST("/products", adminHandler.CreateProduct)
		admin.GET("/products", adminHandler.ListAdminProducts)
		admin.GET("/products/low-stock", adminHandler.ListLowStock)

		admin.POST("/bills", billingHandler.CreateAdminBill)
		admin.GET("/bills", billingHandler.ListAdminBills)
	}

	shop := api.Group("/shop")
	shop.Use(middleware.RequireShop())
	{
		shop.GET("/invoices/pending", invoiceHandler.LatestPendingInvoice)
		shop.GET("/invoices/all", invoiceHandler.ListShopInvoices)
		shop.POST("/invoices/:invoiceId/confirm", invoiceHandler.ConfirmInvoice)

		shop.POST("/orders", orderHandler.CreateOrder)
		shop.GET("/orders", orderHandler.ListShopOrders)
		shop.GET("/orders/:id", orderHandler.GetShopOrder)

		shop.GET("/products", adminHandler.ListShopProducts)

		shop.POST("/bills", billingHandler.CreateShopBill)
		shop.GET("/bills", billingHandler.ListShopBills)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"message":   "Server is running",
			"timestamp": time.Now(),
		})
	})

	port := ":" + cfg.Server.Port
	log.Printf("Starting server on port %s", port)
	if err := r.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
