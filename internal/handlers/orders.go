package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/steinhorstbr/d-shop-craft/internal/audit"
	"github.com/steinhorstbr/d-shop-craft/internal/middleware"
	"github.com/steinhorstbr/d-shop-craft/internal/models"
	"github.com/steinhorstbr/d-shop-craft/internal/orders"
)

type OrderItemRequest struct {
	ProductID         *string  `json:"product_id"`
	Quantity          int      `json:"quantity"`
	UnitPrice         *float64 `json:"unit_price"`
	ColorSelected     string   `json:"color_selected"`
	CustomizationText string   `json:"customization_text"`
	Notes             string   `json:"notes"`
}

type OrderRequest struct {
	CustomerID      *string            `json:"customer_id"`
	PrinterID       *string            `json:"printer_id"`
	FilamentID      *string            `json:"filament_id"`
	PackagingID     *string            `json:"packaging_id"`
	ProductionNotes string             `json:"production_notes"`
	Items           []OrderItemRequest `json:"items"`
}

// buildItems turns the request items into rows, snapshotting each product's
// effective price unless the caller priced the line explicitly.
func (h *Handlers) buildItems(storeID, orderID string, reqs []OrderItemRequest) ([]models.OrderItem, string) {
	items := make([]models.OrderItem, 0, len(reqs))
	for _, r := range reqs {
		qty := r.Quantity
		if qty <= 0 {
			qty = 1
		}
		item := models.OrderItem{
			OrderID:           orderID,
			ProductID:         r.ProductID,
			Quantity:          qty,
			ColorSelected:     r.ColorSelected,
			CustomizationText: r.CustomizationText,
			Notes:             r.Notes,
		}
		switch {
		case r.UnitPrice != nil:
			if *r.UnitPrice < 0 {
				return nil, "Unit price cannot be negative"
			}
			item.UnitPrice = *r.UnitPrice
		case r.ProductID != nil:
			product, err := h.Products.Get(storeID, *r.ProductID)
			if err != nil {
				return nil, "Product not found: " + *r.ProductID
			}
			item.UnitPrice = product.EffectivePrice()
		default:
			return nil, "Each item needs a product or an explicit unit price"
		}
		items = append(items, item)
	}
	return items, ""
}

func (h *Handlers) ListOrders(c *fiber.Ctx) error {
	storeID := middleware.StoreID(c)
	if storeID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "No store resolved for this account"})
	}

	var list []models.Order
	err := h.DB.Preload("Items").
		Where("store_id = ?", storeID).
		Order("created_at desc").
		Find(&list).Error
	if err != nil {
		logrus.WithError(err).Error("list orders")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.JSON(list)
}

func (h *Handlers) GetOrder(c *fiber.Ctx) error {
	var order models.Order
	err := h.DB.Preload("Items").
		Where("store_id = ? AND id = ?", middleware.StoreID(c), c.Params("id")).
		First(&order).Error
	if err != nil {
		return repoError(c, err, "Order not found")
	}
	return c.JSON(order)
}

func (h *Handlers) CreateOrder(c *fiber.Ctx) error {
	var req OrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if len(req.Items) == 0 {
		return badRequest(c, "Order needs at least one item")
	}

	storeID := middleware.StoreID(c)
	order := models.Order{
		StoreID:          storeID,
		CustomerID:       req.CustomerID,
		PrinterID:        req.PrinterID,
		FilamentID:       req.FilamentID,
		PackagingID:      req.PackagingID,
		ProductionStatus: models.ProductionAwaiting,
		PaymentStatus:    models.PaymentAwaiting,
		ProductionNotes:  req.ProductionNotes,
	}

	items, msg := h.buildItems(storeID, "", req.Items)
	if msg != "" {
		return badRequest(c, msg)
	}
	order.TotalAmount = orders.Total(items)

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		logrus.WithError(err).Error("create order")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create order"})
	}
	order.Items = items

	h.Cache.InvalidateEntity(order.EntityName(), storeID)
	h.Audit.Record(audit.Entry{
		StoreID:    storeID,
		UserID:     middleware.UserID(c),
		EntityType: order.EntityName(),
		EntityID:   order.ID,
		Action:     models.AuditCreated,
		Details:    map[string]any{"total_amount": order.TotalAmount, "items": len(items)},
	})

	return c.Status(fiber.StatusCreated).JSON(order)
}

// UpdateOrder rewrites the order header and replaces its line items when the
// payload carries any, then recomputes the stored total.
func (h *Handlers) UpdateOrder(c *fiber.Ctx) error {
	var req OrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	storeID := middleware.StoreID(c)
	var order models.Order
	err := h.DB.Where("store_id = ? AND id = ?", storeID, c.Params("id")).First(&order).Error
	if err != nil {
		return repoError(c, err, "Order not found")
	}

	var items []models.OrderItem
	if len(req.Items) > 0 {
		var msg string
		items, msg = h.buildItems(storeID, order.ID, req.Items)
		if msg != "" {
			return badRequest(c, msg)
		}
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"customer_id":      req.CustomerID,
			"printer_id":       req.PrinterID,
			"filament_id":      req.FilamentID,
			"packaging_id":     req.PackagingID,
			"production_notes": req.ProductionNotes,
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return err
		}

		if len(items) > 0 {
			err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error
			if err != nil {
				return err
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}

		total, err := orders.Recalculate(tx, order.ID)
		if err != nil {
			return err
		}
		order.TotalAmount = total
		return nil
	})
	if err != nil {
		logrus.WithError(err).Error("update order")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update order"})
	}

	h.Cache.InvalidateEntity(order.EntityName(), storeID)
	h.Audit.Record(audit.Entry{
		StoreID:    storeID,
		UserID:     middleware.UserID(c),
		EntityType: order.EntityName(),
		EntityID:   order.ID,
		Action:     models.AuditUpdated,
	})

	return h.GetOrder(c)
}

func (h *Handlers) DeleteOrder(c *fiber.Ctx) error {
	storeID := middleware.StoreID(c)
	id := c.Params("id")

	var order models.Order
	err := h.DB.Where("store_id = ? AND id = ?", storeID, id).First(&order).Error
	if err != nil {
		return repoError(c, err, "Order not found")
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
	if err != nil {
		logrus.WithError(err).Error("delete order")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete order"})
	}

	h.Cache.InvalidateEntity(order.EntityName(), storeID)
	h.Audit.Record(audit.Entry{
		StoreID:    storeID,
		UserID:     middleware.UserID(c),
		EntityType: order.EntityName(),
		EntityID:   id,
		Action:     models.AuditDeleted,
	})

	return c.JSON(fiber.Map{"message": "Order deleted successfully"})
}

type ProductionStatusRequest struct {
	Status models.ProductionStatus `json:"status"`
}

// UpdateProductionStatus moves an order along the production pipeline;
// arriving at done settles the filament deduction.
func (h *Handlers) UpdateProductionStatus(c *fiber.Ctx) error {
	var req ProductionStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	switch req.Status {
	case models.ProductionAwaiting, models.ProductionInProduction, models.ProductionDone:
	default:
		return badRequest(c, "Invalid production status")
	}

	storeID := middleware.StoreID(c)
	var order models.Order
	err := h.DB.Where("store_id = ? AND id = ?", storeID, c.Params("id")).First(&order).Error
	if err != nil {
		return repoError(c, err, "Order not found")
	}

	previous := order.ProductionStatus
	if err := orders.SetProductionStatus(h.DB, &order, req.Status); err != nil {
		logrus.WithError(err).Error("update production status")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update status"})
	}

	h.Cache.InvalidateEntity(order.EntityName(), storeID)
	if order.FilamentID != nil {
		h.Cache.InvalidateEntity("filament", storeID)
	}
	h.Audit.Record(audit.Entry{
		StoreID:    storeID,
		UserID:     middleware.UserID(c),
		EntityType: order.EntityName(),
		EntityID:   order.ID,
		Action:     models.AuditStatusChanged,
		Details:    map[string]any{"field": "production_status", "from": previous, "to": req.Status},
	})

	return c.JSON(order)
}

type PaymentStatusRequest struct {
	Status models.PaymentStatus `json:"status"`
}

// UpdatePaymentStatus flips the payment axis. It never touches production
// state or inventory.
func (h *Handlers) UpdatePaymentStatus(c *fiber.Ctx) error {
	var req PaymentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	switch req.Status {
	case models.PaymentAwaiting, models.PaymentPaid, models.PaymentRefunded, models.PaymentCanceled:
	default:
		return badRequest(c, "Invalid payment status")
	}

	storeID := middleware.StoreID(c)
	var order models.Order
	err := h.DB.Where("store_id = ? AND id = ?", storeID, c.Params("id")).First(&order).Error
	if err != nil {
		return repoError(c, err, "Order not found")
	}

	previous := order.PaymentStatus
	if err := h.DB.Model(&order).Update("payment_status", req.Status).Error; err != nil {
		logrus.WithError(err).Error("update payment status")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update status"})
	}
	order.PaymentStatus = req.Status

	h.Cache.InvalidateEntity(order.EntityName(), storeID)
	h.Audit.Record(audit.Entry{
		StoreID:    storeID,
		UserID:     middleware.UserID(c),
		EntityType: order.EntityName(),
		EntityID:   order.ID,
		Action:     models.AuditStatusChanged,
		Details:    map[string]any{"field": "payment_status", "from": previous, "to": req.Status},
	})

	return c.JSON(order)
}
