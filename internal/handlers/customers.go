package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/steinhorstbr/d-shop-craft/internal/middleware"
	"github.com/steinhorstbr/d-shop-craft/internal/models"
)

type CustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Source  string `json:"source"`
	Notes   string `json:"notes"`
}

func (r *CustomerRequest) apply(cu *models.Customer) {
	cu.Name = r.Name
	cu.Email = r.Email
	cu.Phone = r.Phone
	cu.Address = r.Address
	cu.Source = r.Source
	cu.Notes = r.Notes
}

func (h *Handlers) ListCustomers(c *fiber.Ctx) error {
	customers, err := h.Customers.List(middleware.StoreID(c))
	if err != nil {
		return repoError(c, err, "Customers not found")
	}
	return c.JSON(customers)
}

func (h *Handlers) CreateCustomer(c *fiber.Ctx) error {
	var req CustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Name == "" {
		return badRequest(c, "Name is required")
	}

	var customer models.Customer
	req.apply(&customer)
	if err := h.Customers.Insert(middleware.StoreID(c), middleware.UserID(c), &customer); err != nil {
		return repoError(c, err, "Customer not found")
	}
	return c.Status(fiber.StatusCreated).JSON(customer)
}

func (h *Handlers) UpdateCustomer(c *fiber.Ctx) error {
	var req CustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Name == "" {
		return badRequest(c, "Name is required")
	}

	storeID := middleware.StoreID(c)
	customer, err := h.Customers.Get(storeID, c.Params("id"))
	if err != nil {
		return repoError(c, err, "Customer not found")
	}

	req.apply(customer)
	if err := h.Customers.Update(storeID, middleware.UserID(c), customer); err != nil {
		return repoError(c, err, "Customer not found")
	}
	return c.JSON(customer)
}

// DeleteCustomer keeps the customer's orders; their customer_id is nulled so
// order history survives the contact record.
func (h *Handlers) DeleteCustomer(c *fiber.Ctx) error {
	storeID := middleware.StoreID(c)
	id := c.Params("id")

	if _, err := h.Customers.Get(storeID, id); err != nil {
		return repoError(c, err, "Customer not found")
	}

	err := h.DB.Model(&models.Order{}).
		Where("customer_id = ? AND store_id = ?", id, storeID).
		Update("customer_id", nil).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete customer"})
	}

	if err := h.Customers.Delete(storeID, middleware.UserID(c), id); err != nil {
		return repoError(c, err, "Customer not found")
	}
	return c.JSON(fiber.Map{"message": "Customer deleted successfully"})
}
