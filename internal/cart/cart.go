// Package cart holds the checkout cart math and the WhatsApp hand-off
// message. Nothing here touches the database: the storefront keeps the cart
// client-side and only asks the server to render the final message link.
package cart

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/steinhorstbr/d-shop-craft/internal/models"
)

type Item struct {
	ProductID         string  `json:"product_id"`
	Name              string  `json:"name"`
	UnitPrice         float64 `json:"unit_price"`
	Quantity          int     `json:"quantity"`
	Color             string  `json:"color"`
	CustomizationText string  `json:"customization_text"`
}

// Cart is an ordered list of line items. Lines are keyed by the
// (product, color, customization) triple: adding a matching item bumps the
// quantity instead of appending a duplicate line.
type Cart struct {
	Items []Item `json:"items"`
}

func (c *Cart) Add(item Item) {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	for i := range c.Items {
		existing := &c.Items[i]
		if existing.ProductID == item.ProductID &&
			existing.Color == item.Color &&
			existing.CustomizationText == item.CustomizationText {
			existing.Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
}

// UpdateQuantity adjusts a line by delta and drops it when it reaches zero.
func (c *Cart) UpdateQuantity(index, delta int) {
	if index < 0 || index >= len(c.Items) {
		return
	}
	c.Items[index].Quantity += delta
	if c.Items[index].Quantity <= 0 {
		c.Items = append(c.Items[:index], c.Items[index+1:]...)
	}
}

func (c *Cart) Total() float64 {
	return Total(c.Items)
}

func Total(items []Item) float64 {
	var sum float64
	for _, item := range items {
		sum += item.UnitPrice * float64(item.Quantity)
	}
	return sum
}

// BuildMessage renders the order summary sent to the seller. The single-item
// "buy now" button and the multi-item cart checkout both go through here so
// the line format stays identical.
func BuildMessage(items []Item) string {
	var b strings.Builder
	b.WriteString("🛒 *Novo Pedido*\n\n")
	for i, item := range items {
		fmt.Fprintf(&b, "%d. *%s* (Cód: %s)\n", i+1, item.Name, models.ShortCode(item.ProductID))
		fmt.Fprintf(&b, "   Qtd: %d | R$ %.2f\n", item.Quantity, item.UnitPrice*float64(item.Quantity))
		if item.Color != "" {
			fmt.Fprintf(&b, "   Cor: %s\n", item.Color)
		}
		if item.CustomizationText != "" {
			fmt.Fprintf(&b, "   Personalização: %s\n", item.CustomizationText)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "💰 *Total: R$ %.2f*", Total(items))
	return b.String()
}

// Link composes the wa.me deep link for a store's WhatsApp number. Purely
// advisory: there is no API call and no delivery confirmation.
func Link(phone, message string) string {
	return "https://wa.me/" + phone + "?text=" + url.QueryEscape(message)
}
