package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/template/html/v2"
	"github.com/sirupsen/logrus"

	"github.com/steinhorstbr/d-shop-craft/internal/audit"
	"github.com/steinhorstbr/d-shop-craft/internal/config"
	"github.com/steinhorstbr/d-shop-craft/internal/database"
	"github.com/steinhorstbr/d-shop-craft/internal/handlers"
	"github.com/steinhorstbr/d-shop-craft/internal/middleware"
	"github.com/steinhorstbr/d-shop-craft/internal/models"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}
	if err := database.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("migration failed")
	}

	auth := middleware.NewAuth(cfg.JWTSecret)
	auditWriter := audit.NewWriter(db, logrus.StandardLogger())
	h := handlers.New(db, auth, auditWriter, cfg)

	engine := html.New("./views", ".html")
	engine.AddFunc("shortCode", models.ShortCode)

	app := fiber.New(fiber.Config{
		Views: engine,
	})

	app.Use(logger.New())

	app.Static("/public", "./public")

	// Storefront pages (server-rendered)
	app.Get("/loja/:id", h.StorefrontPage)
	app.Get("/loja/:id/produto/:productID", h.ProductPage)

	api := app.Group("/api/v1")

	// === PUBLIC ROUTES ===
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "Running", "message": "API Ready"})
	})
	api.Post("/auth/signup", h.Signup)
	api.Post("/auth/login", h.Login)

	public := api.Group("/public/stores/:id")
	public.Get("", h.GetPublicStore)
	public.Get("/products", h.ListPublicProducts)
	public.Get("/categories", h.ListPublicCategories)
	public.Post("/checkout", h.Checkout)

	// Signed design-file downloads carry their own token.
	api.Get("/files/designs", h.DownloadDesignFile)

	// === PROTECTED ROUTES (JWT) ===
	api.Use(auth.Protected())
	api.Get("/me", h.Profile)

	// Platform operator routes
	admin := api.Group("/admin", middleware.RoleRequired(models.RoleSuperAdmin))
	admin.Get("/plans", h.ListPlans)
	admin.Post("/plans", h.CreatePlan)
	admin.Put("/plans/:id", h.UpdatePlan)
	admin.Delete("/plans/:id", h.DeletePlan)
	admin.Get("/stores", h.AdminListStores)
	admin.Patch("/stores/:id/active", h.AdminSetStoreActive)
	admin.Patch("/stores/:id/plan", h.AdminSetStorePlan)
	admin.Get("/config", h.GetPlatformConfig)
	admin.Put("/config", h.UpdatePlatformConfig)
	admin.Get("/dashboard", h.AdminDashboard)

	// Store-scoped routes: everything below needs a resolved tenant. The
	// group middleware mounts at /api/v1, so the admin routes above must be
	// registered first.
	store := api.Group("", middleware.RoleRequired(models.RoleStoreAdmin), middleware.TenantRequired())

	store.Get("/store", h.GetMyStore)
	store.Put("/store", h.UpdateMyStore)
	store.Get("/dashboard", h.Dashboard)

	store.Get("/categories", h.ListCategories)
	store.Post("/categories", h.CreateCategory)
	store.Put("/categories/:id", h.UpdateCategory)
	store.Delete("/categories/:id", h.DeleteCategory)

	store.Get("/products", h.ListProducts)
	store.Post("/products", h.CreateProduct)
	store.Get("/products/:id", h.GetProduct)
	store.Put("/products/:id", h.UpdateProduct)
	store.Delete("/products/:id", h.DeleteProduct)
	store.Post("/products/:id/photos", h.UploadProductPhoto)
	store.Delete("/products/:id/photos", h.DeleteProductPhoto)
	store.Post("/products/:id/design-file", h.UploadDesignFile)
	store.Post("/costs/estimate", h.EstimateCost)

	store.Get("/filaments", h.ListFilaments)
	store.Post("/filaments", h.CreateFilament)
	store.Put("/filaments/:id", h.UpdateFilament)
	store.Delete("/filaments/:id", h.DeleteFilament)
	store.Get("/filaments/:id/purchases", h.ListFilamentPurchases)
	store.Post("/filaments/:id/purchases", h.RegisterFilamentPurchase)

	store.Get("/printers", h.ListPrinters)
	store.Post("/printers", h.CreatePrinter)
	store.Put("/printers/:id", h.UpdatePrinter)
	store.Delete("/printers/:id", h.DeletePrinter)

	store.Get("/packaging", h.ListPackaging)
	store.Post("/packaging", h.CreatePackaging)
	store.Put("/packaging/:id", h.UpdatePackaging)
	store.Delete("/packaging/:id", h.DeletePackaging)

	store.Get("/customers", h.ListCustomers)
	store.Post("/customers", h.CreateCustomer)
	store.Put("/customers/:id", h.UpdateCustomer)
	store.Delete("/customers/:id", h.DeleteCustomer)

	store.Get("/orders", h.ListOrders)
	store.Post("/orders", h.CreateOrder)
	store.Get("/orders/:id", h.GetOrder)
	store.Put("/orders/:id", h.UpdateOrder)
	store.Delete("/orders/:id", h.DeleteOrder)
	store.Patch("/orders/:id/production-status", h.UpdateProductionStatus)
	store.Patch("/orders/:id/payment-status", h.UpdatePaymentStatus)

	store.Get("/audit", h.ListAuditLog)

	logrus.WithField("addr", cfg.BindAddr).Info("server listening")
	if err := app.Listen(cfg.BindAddr); err != nil {
		auditWriter.Flush()
		logrus.WithError(err).Fatal("server stopped")
	}
	auditWriter.Flush()
}
