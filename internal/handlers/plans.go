package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/steinhorstbr/d-shop-craft/internal/models"
)

type PlanRequest struct {
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	PriceMonthly        float64  `json:"price_monthly"`
	MaxProducts         int      `json:"max_products"`
	MaxPhotosPerProduct int      `json:"max_photos_per_product"`
	PaymentMethods      []string `json:"payment_methods"`
	IsTrial             *bool    `json:"is_trial"`
	IsActive            *bool    `json:"is_active"`
}

func (r *PlanRequest) validate() string {
	if r.Name == "" {
		return "Name is required"
	}
	if r.PriceMonthly < 0 {
		return "Monthly price cannot be negative"
	}
	if r.MaxProducts < 0 || r.MaxPhotosPerProduct < 0 {
		return "Limits cannot be negative"
	}
	return ""
}

func (r *PlanRequest) apply(p *models.SubscriptionPlan) {
	p.Name = r.Name
	p.Description = r.Description
	p.PriceMonthly = r.PriceMonthly
	p.MaxProducts = r.MaxProducts
	p.MaxPhotosPerProduct = r.MaxPhotosPerProduct
	p.PaymentMethods = r.PaymentMethods
	if r.IsTrial != nil {
		p.IsTrial = *r.IsTrial
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
}

func (h *Handlers) ListPlans(c *fiber.Ctx) error {
	var plans []models.SubscriptionPlan
	if err := h.DB.Order("price_monthly asc").Find(&plans).Error; err != nil {
		logrus.WithError(err).Error("list plans")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.JSON(plans)
}

func (h *Handlers) CreatePlan(c *fiber.Ctx) error {
	var req PlanRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return badRequest(c, msg)
	}

	plan := models.SubscriptionPlan{
		MaxProducts:         10,
		MaxPhotosPerProduct: 6,
		IsActive:            true,
	}
	req.apply(&plan)
	if err := h.DB.Create(&plan).Error; err != nil {
		logrus.WithError(err).Error("create plan")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create plan"})
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

func (h *Handlers) UpdatePlan(c *fiber.Ctx) error {
	var req PlanRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return badRequest(c, msg)
	}

	var plan models.SubscriptionPlan
	if err := h.DB.First(&plan, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Plan not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	req.apply(&plan)
	err := h.DB.Model(&plan).Select("*").Omit("id", "created_at").Updates(&plan).Error
	if err != nil {
		logrus.WithError(err).Error("update plan")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update plan"})
	}
	return c.JSON(plan)
}

// DeletePlan refuses while stores are attached; subscriptions must be moved
// first so no store silently loses its limits.
func (h *Handlers) DeletePlan(c *fiber.Ctx) error {
	id := c.Params("id")

	var attached int64
	h.DB.Model(&models.Store{}).Where("subscription_plan_id = ?", id).Count(&attached)
	if attached > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Plan is in use by stores"})
	}

	result := h.DB.Delete(&models.SubscriptionPlan{}, "id = ?", id)
	if result.Error != nil {
		logrus.WithError(result.Error).Error("delete plan")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete plan"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Plan not found"})
	}
	return c.JSON(fiber.Map{"message": "Plan deleted successfully"})
}
