package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/steinhorstbr/d-shop-craft/internal/audit"
	"github.com/steinhorstbr/d-shop-craft/internal/config"
	"github.com/steinhorstbr/d-shop-craft/internal/middleware"
	"github.com/steinhorstbr/d-shop-craft/internal/models"
	"github.com/steinhorstbr/d-shop-craft/internal/repository"
)

// Handlers bundles the typed repositories and shared services every route
// needs. One instance is built at startup and wired into the router.
type Handlers struct {
	DB    *gorm.DB
	Auth  *middleware.Auth
	Audit *audit.Writer
	Cache *repository.ViewCache
	Cfg   config.Config

	Categories *repository.Repo[models.ProductCategory, *models.ProductCategory]
	Products   *repository.Repo[models.Product, *models.Product]
	Filaments  *repository.Repo[models.Filament, *models.Filament]
	Printers   *repository.Repo[models.Printer, *models.Printer]
	Packaging  *repository.Repo[models.Packaging, *models.Packaging]
	Customers  *repository.Repo[models.Customer, *models.Customer]
	Orders     *repository.Repo[models.Order, *models.Order]
}

func New(db *gorm.DB, auth *middleware.Auth, aw *audit.Writer, cfg config.Config) *Handlers {
	cache := repository.NewViewCache()
	return &Handlers{
		DB:    db,
		Auth:  auth,
		Audit: aw,
		Cache: cache,
		Cfg:   cfg,

		Categories: repository.NewRepo[models.ProductCategory, *models.ProductCategory](db, cache, aw),
		Products:   repository.NewRepo[models.Product, *models.Product](db, cache, aw),
		Filaments:  repository.NewRepo[models.Filament, *models.Filament](db, cache, aw),
		Printers:   repository.NewRepo[models.Printer, *models.Printer](db, cache, aw),
		Packaging:  repository.NewRepo[models.Packaging, *models.Packaging](db, cache, aw),
		Customers:  repository.NewRepo[models.Customer, *models.Customer](db, cache, aw),
		Orders:     repository.NewRepo[models.Order, *models.Order](db, cache, aw),
	}
}

// repoError maps repository failures onto the status codes the dashboard
// expects.
func repoError(c *fiber.Ctx, err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, repository.ErrNoTenant):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "No store resolved for this account"})
	case errors.Is(err, repository.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": notFoundMsg})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
