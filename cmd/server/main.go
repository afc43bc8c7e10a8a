package main

import (
	"log"
	"strings"

	"cafepos-backend/internal/audit"
	"cafepos-backend/internal/auth"
	"cafepos-backend/internal/catalog"
	"cafepos-backend/internal/config"
	"cafepos-backend/internal/database"
	"cafepos-backend/internal/ledger"
	"cafepos-backend/internal/metrics"
	"cafepos-backend/internal/models"
	"cafepos-backend/internal/notify"
	"cafepos-backend/internal/orders"
	"cafepos-backend/internal/tables"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	// Sipariş olayları (opsiyonel): RABBITMQ_URL tanımlıysa mutfak/bar ekranları
	// için yayın yapılır, değilse publisher nil kalır ve yayın no-op olur.
	var publisher *notify.Publisher
	if cfg.RabbitMQURL != "" {
		var err error
		publisher, err = notify.NewPublisher(cfg.RabbitMQURL)
		if err != nil {
			log.Printf("[WARN] RabbitMQ bağlantısı kurulamadı, olaylar yayınlanmayacak: %v", err)
		} else {
			defer publisher.Close()
		}
	}

	orderSvc := orders.NewService(database.DB)
	ledgerSvc := ledger.NewService(database.DB)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Use(logger.New())
	app.Use(metrics.Middleware())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Admin routes
	adminRoutes := protected.Group("")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	// Kullanıcı yönetimi
	adminRoutes.Post("/auth/users", auth.CreateUserHandler())

	// Menü yönetimi
	adminRoutes.Post("/categories", catalog.CreateCategoryHandler())
	adminRoutes.Put("/categories/:id", catalog.UpdateCategoryHandler())
	adminRoutes.Delete("/categories/:id", catalog.DeleteCategoryHandler())
	adminRoutes.Post("/products", catalog.CreateProductHandler())
	adminRoutes.Put("/products/:id", catalog.UpdateProductHandler())
	adminRoutes.Delete("/products/:id", catalog.DeleteProductHandler())

	// Bölge ve masa yönetimi
	adminRoutes.Post("/zones", tables.CreateZoneHandler())
	adminRoutes.Delete("/zones/:id", tables.DeleteZoneHandler())
	adminRoutes.Post("/tables", tables.CreateTableHandler())
	adminRoutes.Put("/tables/:id", tables.UpdateTableHandler())
	adminRoutes.Delete("/tables/:id", tables.DeleteTableHandler())

	// Malzeme yönetimi
	adminRoutes.Post("/ingredients", ledger.CreateIngredientHandler())
	adminRoutes.Post("/ingredients/import-excel", ledger.ImportExcelHandler(ledgerSvc))

	// Ortak (auth gerektiren) route'lar

	// Menü
	protected.Get("/categories", catalog.ListCategoriesHandler())
	protected.Get("/products", catalog.ListProductsHandler())

	// Bölgeler ve masalar
	protected.Get("/zones", tables.ListZonesHandler())
	protected.Get("/tables", tables.ListTablesHandler())

	// Siparişler: oluşturma/düzenleme kasiyer, durum güncelleme mutfak da yapabilir
	cashierRoutes := protected.Group("")
	cashierRoutes.Use(auth.RequireRole(models.RoleAdmin, models.RoleCashier))
	cashierRoutes.Post("/orders", orders.CreateOrderHandler(orderSvc, publisher))
	cashierRoutes.Put("/orders/:id/items/:itemId", orders.EditItemHandler(orderSvc))

	kitchenRoutes := protected.Group("")
	kitchenRoutes.Use(auth.RequireRole(models.RoleAdmin, models.RoleCashier, models.RoleKitchen))
	kitchenRoutes.Get("/orders", orders.ListOrdersHandler(orderSvc))
	kitchenRoutes.Get("/orders/:id", orders.GetOrderHandler(orderSvc))
	kitchenRoutes.Put("/orders/:id/status", orders.UpdateStatusHandler(orderSvc, publisher))
	kitchenRoutes.Put("/orders/:id/items/:itemId/served", orders.MarkItemServedHandler(orderSvc))

	// Envanter defteri
	protected.Get("/ingredients", ledger.ListIngredientsHandler())
	protected.Post("/ingredients/:id/transactions", ledger.RecordTransactionHandler(ledgerSvc))
	protected.Get("/ingredients/:id/transactions", ledger.ListTransactionsHandler(ledgerSvc))

	// Denetim kayıtları
	protected.Get("/audit/order-items", audit.ListItemEditsHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
