package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/steinhorstbr/d-shop-craft/internal/middleware"
	"github.com/steinhorstbr/d-shop-craft/internal/models"
)

type PrinterRequest struct {
	Name                   string  `json:"name"`
	Model                  string  `json:"model"`
	PowerConsumptionWatts  float64 `json:"power_consumption_watts"`
	MaintenanceCostMonthly float64 `json:"maintenance_cost_monthly"`
	Notes                  string  `json:"notes"`
}

func (r *PrinterRequest) validate() string {
	if r.Name == "" {
		return "Name is required"
	}
	if r.PowerConsumptionWatts < 0 || r.MaintenanceCostMonthly < 0 {
		return "Power and maintenance cost cannot be negative"
	}
	return ""
}

func (r *PrinterRequest) apply(p *models.Printer) {
	p.Name = r.Name
	p.Model = r.Model
	p.PowerConsumptionWatts = r.PowerConsumptionWatts
	p.MaintenanceCostMonthly = r.MaintenanceCostMonthly
	p.Notes = r.Notes
}

func (h *Handlers) ListPrinters(c *fiber.Ctx) error {
	printers, err := h.Printers.List(middleware.StoreID(c))
	if err != nil {
		return repoError(c, err, "Printers not found")
	}
	return c.JSON(printers)
}

func (h *Handlers) CreatePrinter(c *fiber.Ctx) error {
	var req PrinterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return badRequest(c, msg)
	}

	var printer models.Printer
	req.apply(&printer)
	if err := h.Printers.Insert(middleware.StoreID(c), middleware.UserID(c), &printer); err != nil {
		return repoError(c, err, "Printer not found")
	}
	return c.Status(fiber.StatusCreated).JSON(printer)
}

func (h *Handlers) UpdatePrinter(c *fiber.Ctx) error {
	var req PrinterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return badRequest(c, msg)
	}

	storeID := middleware.StoreID(c)
	printer, err := h.Printers.Get(storeID, c.Params("id"))
	if err != nil {
		return repoError(c, err, "Printer not found")
	}

	req.apply(printer)
	if err := h.Printers.Update(storeID, middleware.UserID(c), printer); err != nil {
		return repoError(c, err, "Printer not found")
	}
	return c.JSON(printer)
}

func (h *Handlers) DeletePrinter(c *fiber.Ctx) error {
	if err := h.Printers.Delete(middleware.StoreID(c), middleware.UserID(c), c.Params("id")); err != nil {
		return repoError(c, err, "Printer not found")
	}
	return c.JSON(fiber.Map{"message": "Printer deleted successfully"})
}
