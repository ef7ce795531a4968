package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"backend/internal/cache"
	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/events"
	"backend/internal/handlers"
	"backend/internal/middleware"
	"backend/internal/notify"
	"backend/internal/orders"
	"backend/internal/payments"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)
	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureAdminIndexes(db); err != nil {
		log.Printf("admin index warning: %v", err)
	}

	orderStore := orders.NewMongoStore(db)

	mailer := notify.NewSMTPMailer(
		config.AppEnv.SMTPHost,
		config.AppEnv.SMTPPort,
		config.AppEnv.SMTPUser,
		config.AppEnv.SMTPPass,
		config.AppEnv.MailFrom,
	)
	dispatcher := notify.NewDispatcher(mailer, config.AppEnv.OrdersEmail)

	var producer *events.Producer
	if config.AppEnv.KafkaBroker != "" {
		producer, err = events.NewProducer(config.AppEnv.KafkaBroker)
		if err != nil {
			log.Printf("kafka disabled: %v", err)
			producer = nil
		}
	}
	defer producer.Close()

	var itemCache *cache.ShopItemCache
	if config.AppEnv.RedisAddr != "" {
		itemCache = cache.NewShopItemCache(redis.NewClient(&redis.Options{
			Addr: config.AppEnv.RedisAddr,
		}))
	}

	gatewayCfg := payments.RedirectConfig{
		ProcessURL:  config.AppEnv.GatewayURL,
		MerchantID:  config.AppEnv.GatewayMerchantID,
		MerchantKey: config.AppEnv.GatewayMerchantKey,
		ReturnURL:   config.AppEnv.GatewayReturnURL,
		CancelURL:   config.AppEnv.GatewayCancelURL,
		NotifyURL:   config.AppEnv.GatewayNotifyURL,
	}

	r := gin.Default()
	r.Static("/public", "./public")

	// public site
	r.GET("/shop/items", handlers.GetShopItems(db, itemCache))
	r.GET("/events", handlers.GetEvents(db))
	r.GET("/gallery", handlers.GetGalleryFolders(db))
	r.GET("/partners", handlers.GetPartners(db))

	// checkout + payment reconciliation
	pricer := handlers.NewShopItemPricer(db)
	r.POST("/orders", handlers.Checkout(pricer, orderStore, dispatcher, producer, gatewayCfg, config.AppEnv.DeliveryFee))
	r.GET("/orders/:reference", handlers.GetOrderByReference(orderStore))
	r.POST("/payments/notify", handlers.PaymentNotify(orderStore, dispatcher, producer))

	r.POST("/admin/login", handlers.AdminLogin(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminOnly(config.AppEnv.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true})
		})

		admin.GET("/orders", handlers.GetAdminOrders(orderStore))
		admin.GET("/orders/:id", handlers.GetAdminOrder(orderStore))
		admin.PUT("/orders/:id/status", handlers.UpdateOrderStatus(orderStore, dispatcher, producer))
		admin.POST("/orders/:id/notify", handlers.SendOrderEmail(orderStore, dispatcher))
		admin.DELETE("/orders/:id", handlers.DeleteOrder(orderStore))

		admin.GET("/shop/items", handlers.GetAllShopItems(db))
		admin.POST("/shop/items", handlers.CreateShopItem(db, itemCache))
		admin.PUT("/shop/items/:id", handlers.UpdateShopItem(db, itemCache))
		admin.DELETE("/shop/items/:id", handlers.DeleteShopItem(db, itemCache))

		admin.GET("/events", handlers.GetAllEvents(db))
		admin.POST("/events", handlers.CreateEvent(db))
		admin.PUT("/events/:id", handlers.UpdateEvent(db))
		admin.DELETE("/events/:id", handlers.DeleteEvent(db))

		admin.POST("/gallery", handlers.CreateGalleryFolder(db))
		admin.POST("/gallery/:id/images", handlers.UploadGalleryImage(db))
		admin.DELETE("/gallery/:id/images", handlers.DeleteGalleryImage(db))
		admin.DELETE("/gallery/:id", handlers.DeleteGalleryFolder(db))

		admin.POST("/partners", handlers.CreatePartner(db))
		admin.PUT("/partners/:id", handlers.UpdatePartner(db))
		admin.DELETE("/partners/:id", handlers.DeletePartner(db))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
