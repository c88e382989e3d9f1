package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/steinhorstbr/d-shop-craft/internal/middleware"
	"github.com/steinhorstbr/d-shop-craft/internal/models"
)

type PackagingRequest struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Cost       float64 `json:"cost"`
	Quantity   int     `json:"quantity"`
	Dimensions string  `json:"dimensions"`
	Supplier   string  `json:"supplier"`
	Notes      string  `json:"notes"`
}

func (r *PackagingRequest) validate() string {
	if r.Name == "" {
		return "Name is required"
	}
	if r.Cost < 0 || r.Quantity < 0 {
		return "Cost and quantity cannot be negative"
	}
	return ""
}

func (r *PackagingRequest) apply(p *models.Packaging) {
	p.Name = r.Name
	if r.Type != "" {
		p.Type = r.Type
	}
	p.Cost = r.Cost
	p.Quantity = r.Quantity
	p.Dimensions = r.Dimensions
	p.Supplier = r.Supplier
	p.Notes = r.Notes
}

func (h *Handlers) ListPackaging(c *fiber.Ctx) error {
	packaging, err := h.Packaging.List(middleware.StoreID(c))
	if err != nil {
		return repoError(c, err, "Packaging not found")
	}
	return c.JSON(packaging)
}

func (h *Handlers) CreatePackaging(c *fiber.Ctx) error {
	var req PackagingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return badRequest(c, msg)
	}

	item := models.Packaging{Type: "box"}
	req.apply(&item)
	if err := h.Packaging.Insert(middleware.StoreID(c), middleware.UserID(c), &item); err != nil {
		return repoError(c, err, "Packaging not found")
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *Handlers) UpdatePackaging(c *fiber.Ctx) error {
	var req PackagingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return badRequest(c, msg)
	}

	storeID := middleware.StoreID(c)
	item, err := h.Packaging.Get(storeID, c.Params("id"))
	if err != nil {
		return repoError(c, err, "Packaging not found")
	}

	req.apply(item)
	if err := h.Packaging.Update(storeID, middleware.UserID(c), item); err != nil {
		return repoError(c, err, "Packaging not found")
	}
	return c.JSON(item)
}

func (h *Handlers) DeletePackaging(c *fiber.Ctx) error {
	if err := h.Packaging.Delete(middleware.StoreID(c), middleware.UserID(c), c.Params("id")); err != nil {
		return repoError(c, err, "Packaging not found")
	}
	return c.JSON(fiber.Map{"message": "Packaging deleted successfully"})
}
