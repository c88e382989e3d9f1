package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/steinhorstbr/d-shop-craft/internal/middleware"
	"github.com/steinhorstbr/d-shop-craft/internal/models"
)

// ListAuditLog returns the store's recent audit entries, newest first.
// Optional filters: entity_type, limit (default 100, max 500).
func (h *Handlers) ListAuditLog(c *fiber.Ctx) error {
	storeID := middleware.StoreID(c)
	if storeID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "No store resolved for this account"})
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 500 {
		limit = 500
	}

	query := h.DB.Where("store_id = ?", storeID)
	if entityType := c.Query("entity_type"); entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}

	var entries []models.AuditLogEntry
	err := query.Order("created_at desc").Limit(limit).Find(&entries).Error
	if err != nil {
		logrus.WithError(err).Error("list audit log")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.JSON(entries)
}
