package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/steinhorstbr/d-shop-craft/internal/middleware"
	"github.com/steinhorstbr/d-shop-craft/internal/models"
)

const lowStockThresholdGrams = 500.0

// Dashboard aggregates the back-office summary figures: order counts per
// production stage, realized and pending revenue, catalog size and the
// filaments running low.
func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	storeID := middleware.StoreID(c)

	var orders []models.Order
	err := h.DB.Select("production_status", "payment_status", "total_amount").
		Where("store_id = ?", storeID).
		Find(&orders).Error
	if err != nil {
		logrus.WithError(err).Error("dashboard orders")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	var pendingOrders, inProduction, completed int
	var revenue, pendingRevenue float64
	for _, o := range orders {
		switch o.ProductionStatus {
		case models.ProductionAwaiting:
			pendingOrders++
		case models.ProductionInProduction:
			inProduction++
		case models.ProductionDone:
			completed++
		}
		switch o.PaymentStatus {
		case models.PaymentPaid:
			revenue += o.TotalAmount
		case models.PaymentAwaiting:
			pendingRevenue += o.TotalAmount
		}
	}

	var totalProducts, activeProducts int64
	h.DB.Model(&models.Product{}).Where("store_id = ?", storeID).Count(&totalProducts)
	h.DB.Model(&models.Product{}).Where("store_id = ? AND is_active = ?", storeID, true).Count(&activeProducts)

	var lowStock []models.Filament
	err = h.DB.Select("id", "name", "quantity_grams").
		Where("store_id = ? AND quantity_grams < ?", storeID, lowStockThresholdGrams).
		Order("quantity_grams asc").
		Find(&lowStock).Error
	if err != nil {
		logrus.WithError(err).Error("dashboard filaments")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	var customers int64
	h.DB.Model(&models.Customer{}).Where("store_id = ?", storeID).Count(&customers)

	return c.JSON(fiber.Map{
		"orders": fiber.Map{
			"pending":       pendingOrders,
			"in_production": inProduction,
			"completed":     completed,
			"total":         len(orders),
		},
		"revenue":         revenue,
		"pending_revenue": pendingRevenue,
		"products": fiber.Map{
			"total":  totalProducts,
			"active": activeProducts,
		},
		"customers":           customers,
		"low_stock_filaments": lowStock,
	})
}

// AdminDashboard summarizes the platform: store counts per subscription
// state and the monthly revenue of active subscriptions.
func (h *Handlers) AdminDashboard(c *fiber.Ctx) error {
	var stores []models.Store
	err := h.DB.Preload("SubscriptionPlan").Find(&stores).Error
	if err != nil {
		logrus.WithError(err).Error("admin dashboard stores")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	var trial, active int
	var monthlyRevenue float64
	for _, s := range stores {
		switch s.SubscriptionStatus {
		case models.SubscriptionTrial:
			trial++
		case models.SubscriptionActive:
			active++
			if s.SubscriptionPlan != nil {
				monthlyRevenue += s.SubscriptionPlan.PriceMonthly
			}
		}
	}

	return c.JSON(fiber.Map{
		"total_stores":         len(stores),
		"trial_stores":         trial,
		"active_subscriptions": active,
		"monthly_revenue":      monthlyRevenue,
	})
}
