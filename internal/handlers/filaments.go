package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/steinhorstbr/d-shop-craft/internal/audit"
	"github.com/steinhorstbr/d-shop-craft/internal/middleware"
	"github.com/steinhorstbr/d-shop-craft/internal/models"
)

type FilamentRequest struct {
	Name          string  `json:"name"`
	Material      string  `json:"material"`
	Color         string  `json:"color"`
	Brand         string  `json:"brand"`
	Supplier      string  `json:"supplier"`
	PricePerKg    float64 `json:"price_per_kg"`
	QuantityGrams float64 `json:"quantity_grams"`
	Notes         string  `json:"notes"`
}

func (r *FilamentRequest) validate() string {
	if r.Name == "" {
		return "Name is required"
	}
	if r.Material == "" || r.Color == "" {
		return "Material and color are required"
	}
	if r.PricePerKg < 0 || r.QuantityGrams < 0 {
		return "Price and quantity cannot be negative"
	}
	return ""
}

func (r *FilamentRequest) apply(f *models.Filament) {
	f.Name = r.Name
	f.Material = r.Material
	f.Color = r.Color
	f.Brand = r.Brand
	f.Supplier = r.Supplier
	f.PricePerKg = r.PricePerKg
	f.QuantityGrams = r.QuantityGrams
	f.Notes = r.Notes
}

func (h *Handlers) ListFilaments(c *fiber.Ctx) error {
	filaments, err := h.Filaments.List(middleware.StoreID(c))
	if err != nil {
		return repoError(c, err, "Filaments not found")
	}
	return c.JSON(filaments)
}

func (h *Handlers) CreateFilament(c *fiber.Ctx) error {
	var req FilamentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return badRequest(c, msg)
	}

	var filament models.Filament
	req.apply(&filament)
	if err := h.Filaments.Insert(middleware.StoreID(c), middleware.UserID(c), &filament); err != nil {
		return repoError(c, err, "Filament not found")
	}
	return c.Status(fiber.StatusCreated).JSON(filament)
}

func (h *Handlers) UpdateFilament(c *fiber.Ctx) error {
	var req FilamentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return badRequest(c, msg)
	}

	storeID := middleware.StoreID(c)
	filament, err := h.Filaments.Get(storeID, c.Params("id"))
	if err != nil {
		return repoError(c, err, "Filament not found")
	}

	req.apply(filament)
	if err := h.Filaments.Update(storeID, middleware.UserID(c), filament); err != nil {
		return repoError(c, err, "Filament not found")
	}
	return c.JSON(filament)
}

func (h *Handlers) DeleteFilament(c *fiber.Ctx) error {
	if err := h.Filaments.Delete(middleware.StoreID(c), middleware.UserID(c), c.Params("id")); err != nil {
		return repoError(c, err, "Filament not found")
	}
	return c.JSON(fiber.Map{"message": "Filament deleted successfully"})
}

type FilamentPurchaseRequest struct {
	QuantityGrams float64    `json:"quantity_grams"`
	PricePaid     *float64   `json:"price_paid"`
	Supplier      string     `json:"supplier"`
	Brand         string     `json:"brand"`
	PurchaseDate  *time.Time `json:"purchase_date"`
	Notes         string     `json:"notes"`
}

// ListFilamentPurchases returns the purchase history for one spool, newest
// first.
func (h *Handlers) ListFilamentPurchases(c *fiber.Ctx) error {
	storeID := middleware.StoreID(c)
	filament, err := h.Filaments.Get(storeID, c.Params("id"))
	if err != nil {
		return repoError(c, err, "Filament not found")
	}

	var purchases []models.FilamentPurchase
	err = h.DB.Where("filament_id = ?", filament.ID).
		Order("created_at desc").
		Find(&purchases).Error
	if err != nil {
		logrus.WithError(err).Error("list filament purchases")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.JSON(purchases)
}

// RegisterFilamentPurchase records a stock-in and rolls the purchase into the
// spool's running quantity. The purchase ledger itself is append-only; spool
// totals only ever change here and at order fulfillment.
func (h *Handlers) RegisterFilamentPurchase(c *fiber.Ctx) error {
	var req FilamentPurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.QuantityGrams <= 0 {
		return badRequest(c, "Quantity must be greater than zero")
	}

	storeID := middleware.StoreID(c)
	filament, err := h.Filaments.Get(storeID, c.Params("id"))
	if err != nil {
		return repoError(c, err, "Filament not found")
	}

	purchaseDate := req.PurchaseDate
	if purchaseDate == nil {
		now := time.Now()
		purchaseDate = &now
	}

	purchase := models.FilamentPurchase{
		FilamentID:    filament.ID,
		QuantityGrams: req.QuantityGrams,
		PricePaid:     req.PricePaid,
		Supplier:      req.Supplier,
		Brand:         req.Brand,
		PurchaseDate:  purchaseDate,
		Notes:         req.Notes,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&purchase).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{
			"quantity_grams":     gorm.Expr("quantity_grams + ?", req.QuantityGrams),
			"last_purchase_date": purchaseDate,
		}
		if req.Supplier != "" {
			updates["supplier"] = req.Supplier
		}
		if req.Brand != "" {
			updates["brand"] = req.Brand
		}
		return tx.Model(&models.Filament{}).
			Where("id = ? AND store_id = ?", filament.ID, storeID).
			Updates(updates).Error
	})
	if err != nil {
		logrus.WithError(err).Error("register filament purchase")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to register purchase"})
	}

	h.Cache.InvalidateEntity(filament.EntityName(), storeID)
	h.Audit.Record(audit.Entry{
		StoreID:    storeID,
		UserID:     middleware.UserID(c),
		EntityType: filament.EntityName(),
		EntityID:   filament.ID,
		Action:     models.AuditUpdated,
		Details:    map[string]any{"purchase_id": purchase.ID, "quantity_grams": req.QuantityGrams},
	})

	return c.Status(fiber.StatusCreated).JSON(purchase)
}
