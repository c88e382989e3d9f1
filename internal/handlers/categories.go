package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/steinhorstbr/d-shop-craft/internal/middleware"
	"github.com/steinhorstbr/d-shop-craft/internal/models"
)

type CategoryRequest struct {
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

func (h *Handlers) ListCategories(c *fiber.Ctx) error {
	categories, err := h.Categories.List(middleware.StoreID(c))
	if err != nil {
		return repoError(c, err, "Categories not found")
	}
	return c.JSON(categories)
}

func (h *Handlers) CreateCategory(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Name == "" {
		return badRequest(c, "Name is required")
	}

	category := models.ProductCategory{Name: req.Name, SortOrder: req.SortOrder}
	if err := h.Categories.Insert(middleware.StoreID(c), middleware.UserID(c), &category); err != nil {
		return repoError(c, err, "Category not found")
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *Handlers) UpdateCategory(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Name == "" {
		return badRequest(c, "Name is required")
	}

	storeID := middleware.StoreID(c)
	category, err := h.Categories.Get(storeID, c.Params("id"))
	if err != nil {
		return repoError(c, err, "Category not found")
	}

	category.Name = req.Name
	category.SortOrder = req.SortOrder
	if err := h.Categories.Update(storeID, middleware.UserID(c), category); err != nil {
		return repoError(c, err, "Category not found")
	}
	return c.JSON(category)
}

// DeleteCategory detaches the category from its products before removing it.
func (h *Handlers) DeleteCategory(c *fiber.Ctx) error {
	storeID := middleware.StoreID(c)
	id := c.Params("id")

	if _, err := h.Categories.Get(storeID, id); err != nil {
		return repoError(c, err, "Category not found")
	}

	err := h.DB.Model(&models.Product{}).
		Where("category_id = ? AND store_id = ?", id, storeID).
		Update("category_id", nil).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete category"})
	}

	if err := h.Categories.Delete(storeID, middleware.UserID(c), id); err != nil {
		return repoError(c, err, "Category not found")
	}
	return c.JSON(fiber.Map{"message": "Category deleted successfully"})
}
