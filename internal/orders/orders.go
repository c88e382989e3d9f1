// Package orders holds the order-total and fulfillment logic shared by the
// order handlers.
package orders

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/steinhorstbr/d-shop-craft/internal/models"
)

// Total is the order amount: Σ unit price × quantity over the line items.
func Total(items []models.OrderItem) float64 {
	var sum float64
	for _, item := range items {
		sum += item.UnitPrice * float64(item.Quantity)
	}
	return sum
}

// Recalculate persists a fresh total after line items changed.
func Recalculate(db *gorm.DB, orderID string) (float64, error) {
	var items []models.OrderItem
	if err := db.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return 0, fmt.Errorf("load items: %w", err)
	}
	total := Total(items)
	err := db.Model(&models.Order{}).Where("id = ?", orderID).Update("total_amount", total).Error
	if err != nil {
		return 0, fmt.Errorf("store total: %w", err)
	}
	return total, nil
}

// FilamentUsageGrams sums product weight × quantity across the order's
// items. Items whose product was deleted contribute nothing: the weight is
// unknown, so it counts as zero rather than failing the fulfillment.
func FilamentUsageGrams(db *gorm.DB, items []models.OrderItem) (float64, error) {
	var total float64
	for _, item := range items {
		if item.ProductID == nil {
			continue
		}
		var product models.Product
		err := db.Select("weight_grams").Where("id = ?", *item.ProductID).First(&product).Error
		if err == gorm.ErrRecordNotFound {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("load product %s: %w", *item.ProductID, err)
		}
		total += product.WeightGrams * float64(item.Quantity)
	}
	return total, nil
}

// SetProductionStatus moves an order along the production pipeline. The
// transition into done deducts the consumed filament from the linked spool,
// clamped at zero; status flip and deduction run in one transaction. The
// deduction fires only when the order was not already done, so repeating the
// call cannot drain inventory twice.
func SetProductionStatus(db *gorm.DB, order *models.Order, next models.ProductionStatus) error {
	previous := order.ProductionStatus
	if previous == next {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(order).Update("production_status", next).Error
		if err != nil {
			return err
		}
		order.ProductionStatus = next

		if next != models.ProductionDone || previous == models.ProductionDone {
			return nil
		}
		if order.FilamentID == nil {
			return nil
		}

		var items []models.OrderItem
		if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
			return err
		}
		usage, err := FilamentUsageGrams(tx, items)
		if err != nil {
			return err
		}
		if usage <= 0 {
			return nil
		}

		var filament models.Filament
		err = tx.Where("id = ? AND store_id = ?", *order.FilamentID, order.StoreID).First(&filament).Error
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		remaining := filament.QuantityGrams - usage
		if remaining < 0 {
			remaining = 0
		}
		return tx.Model(&filament).Update("quantity_grams", remaining).Error
	})
}
