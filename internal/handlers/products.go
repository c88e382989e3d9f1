package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/steinhorstbr/d-shop-craft/internal/costing"
	"github.com/steinhorstbr/d-shop-craft/internal/middleware"
	"github.com/steinhorstbr/d-shop-craft/internal/models"
)

// ProductRequest is the create/update payload for a product.
type ProductRequest struct {
	CategoryID            *string  `json:"category_id"`
	Name                  string   `json:"name"`
	Description           string   `json:"description"`
	SalePrice             float64  `json:"sale_price"`
	SalePricePromotional  *float64 `json:"sale_price_promotional"`
	IsOnSale              bool     `json:"is_on_sale"`
	WeightGrams           float64  `json:"weight_grams"`
	ProductionTimeMinutes float64  `json:"production_time_minutes"`
	ProductionCost        float64  `json:"production_cost"`
	PackagingCost         float64  `json:"packaging_cost"`
	PostProductionCost    float64  `json:"post_production_cost"`
	CardFeePercent        float64  `json:"card_fee_percent"`
	WasteRatePercent      float64  `json:"waste_rate_percent"`
	HasColorVariation     bool     `json:"has_color_variation"`
	ColorOptions          []string `json:"color_options"`
	IsCustomizable        bool     `json:"is_customizable"`
	CustomizationType     string   `json:"customization_type"`
	IsActive              *bool    `json:"is_active"`
}

func (r *ProductRequest) validate() string {
	if r.Name == "" {
		return "Name is required"
	}
	if r.SalePrice < 0 {
		return "Sale price cannot be negative"
	}
	if r.IsOnSale && r.SalePricePromotional != nil && *r.SalePricePromotional > r.SalePrice {
		return "Promotional price cannot exceed the base price"
	}
	return ""
}

func (r *ProductRequest) apply(p *models.Product) {
	p.CategoryID = r.CategoryID
	p.Name = r.Name
	p.Description = r.Description
	p.SalePrice = r.SalePrice
	p.SalePricePromotional = r.SalePricePromotional
	p.IsOnSale = r.IsOnSale
	p.WeightGrams = r.WeightGrams
	p.ProductionTimeMinutes = r.ProductionTimeMinutes
	p.ProductionCost = r.ProductionCost
	p.PackagingCost = r.PackagingCost
	p.PostProductionCost = r.PostProductionCost
	p.CardFeePercent = r.CardFeePercent
	p.WasteRatePercent = r.WasteRatePercent
	p.HasColorVariation = r.HasColorVariation
	p.ColorOptions = r.ColorOptions
	if !r.HasColorVariation {
		p.ColorOptions = nil
	}
	p.IsCustomizable = r.IsCustomizable
	p.CustomizationType = r.CustomizationType
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
}

func (h *Handlers) ListProducts(c *fiber.Ctx) error {
	products, err := h.Products.List(middleware.StoreID(c))
	if err != nil {
		return repoError(c, err, "Products not found")
	}
	return c.JSON(products)
}

func (h *Handlers) GetProduct(c *fiber.Ctx) error {
	product, err := h.Products.Get(middleware.StoreID(c), c.Params("id"))
	if err != nil {
		return repoError(c, err, "Product not found")
	}
	return c.JSON(product)
}

func (h *Handlers) CreateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return badRequest(c, msg)
	}

	storeID := middleware.StoreID(c)

	// The subscription plan caps how many products a store can carry.
	var store models.Store
	if err := h.DB.Preload("SubscriptionPlan").First(&store, "id = ?", storeID).Error; err == nil {
		if store.SubscriptionPlan != nil && store.SubscriptionPlan.MaxProducts > 0 {
			var count int64
			h.DB.Model(&models.Product{}).Where("store_id = ?", storeID).Count(&count)
			if count >= int64(store.SubscriptionPlan.MaxProducts) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Product limit for your plan reached"})
			}
		}
	}

	product := models.Product{IsActive: true}
	req.apply(&product)

	if err := h.Products.Insert(storeID, middleware.UserID(c), &product); err != nil {
		logrus.WithError(err).Error("create product")
		return repoError(c, err, "Product not found")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *Handlers) UpdateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return badRequest(c, msg)
	}

	storeID := middleware.StoreID(c)
	product, err := h.Products.Get(storeID, c.Params("id"))
	if err != nil {
		return repoError(c, err, "Product not found")
	}

	req.apply(product)
	if err := h.Products.Update(storeID, middleware.UserID(c), product); err != nil {
		logrus.WithError(err).Error("update product")
		return repoError(c, err, "Product not found")
	}
	return c.JSON(product)
}

// DeleteProduct removes the product and nulls its order-item references so
// historical orders keep their rows.
func (h *Handlers) DeleteProduct(c *fiber.Ctx) error {
	storeID := middleware.StoreID(c)
	id := c.Params("id")

	// Ownership check before touching anything referencing the product.
	if _, err := h.Products.Get(storeID, id); err != nil {
		return repoError(c, err, "Product not found")
	}

	err := h.DB.Model(&models.OrderItem{}).
		Where("product_id = ?", id).
		Update("product_id", nil).Error
	if err != nil {
		logrus.WithError(err).Error("unlink order items")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete product"})
	}

	if err := h.Products.Delete(storeID, middleware.UserID(c), id); err != nil {
		return repoError(c, err, "Product not found")
	}
	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}

// EstimateCost runs the cost calculator for the product form. Pure
// computation, nothing is stored.
func (h *Handlers) EstimateCost(c *fiber.Ctx) error {
	var in costing.Inputs
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}
	return c.JSON(costing.Estimate(in))
}
