package cart

import (
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseMessageTotal recovers the grand total from the message's last line.
func parseMessageTotal(t *testing.T, msg string) float64 {
	t.Helper()
	lines := strings.Split(msg, "\n")
	last := lines[len(lines)-1]
	require.Contains(t, last, "Total: R$ ")
	raw := strings.TrimSuffix(last[strings.Index(last, "R$ ")+len("R$ "):], "*")
	total, err := strconv.ParseFloat(raw, 64)
	require.NoError(t, err)
	return total
}

func TestAddMergesIdenticalTriple(t *testing.T) {
	c := &Cart{}
	c.Add(Item{ProductID: "p1", Name: "Vaso", UnitPrice: 25, Quantity: 1, Color: "Azul"})
	c.Add(Item{ProductID: "p1", Name: "Vaso", UnitPrice: 25, Quantity: 2, Color: "Azul"})

	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)
}

func TestAddKeepsDistinctVariationsApart(t *testing.T) {
	c := &Cart{}
	c.Add(Item{ProductID: "p1", Color: "Azul"})
	c.Add(Item{ProductID: "p1", Color: "Vermelho"})
	c.Add(Item{ProductID: "p1", Color: "Azul", CustomizationText: "Maria"})

	assert.Len(t, c.Items, 3)
}

func TestUpdateQuantityDropsEmptiedLines(t *testing.T) {
	c := &Cart{}
	c.Add(Item{ProductID: "p1", Quantity: 2})
	c.Add(Item{ProductID: "p2", Quantity: 1})

	c.UpdateQuantity(1, -1)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "p1", c.Items[0].ProductID)

	c.UpdateQuantity(5, 1) // out of range is a no-op
	assert.Len(t, c.Items, 1)
}

func TestMessageTotalMatchesComputedTotal(t *testing.T) {
	cases := [][]Item{
		{{ProductID: "11111111-aaaa", Name: "Vaso", UnitPrice: 25.5, Quantity: 2}},
		{
			{ProductID: "11111111-aaaa", Name: "Vaso", UnitPrice: 25.5, Quantity: 2, Color: "Azul"},
			{ProductID: "22222222-bbbb", Name: "Chaveiro", UnitPrice: 9.9, Quantity: 3, CustomizationText: "João"},
			{ProductID: "33333333-cccc", Name: "Suporte", UnitPrice: 120, Quantity: 1},
		},
		{},
	}

	for _, items := range cases {
		want := 0.0
		for _, item := range items {
			want += item.UnitPrice * float64(item.Quantity)
		}
		assert.InDelta(t, want, Total(items), 1e-9)

		msg := BuildMessage(items)
		assert.InDelta(t, want, parseMessageTotal(t, msg), 0.005)
	}
}

func TestSingleAndMultiItemLinesShareFormat(t *testing.T) {
	item := Item{ProductID: "abcdef12-3456", Name: "Vaso", UnitPrice: 10, Quantity: 1}
	single := BuildMessage([]Item{item})
	multi := BuildMessage([]Item{item, {ProductID: "ffffffff", Name: "Outro", UnitPrice: 5, Quantity: 1}})

	assert.Contains(t, single, "1. *Vaso* (Cód: ABCDEF12)")
	assert.Contains(t, multi, "1. *Vaso* (Cód: ABCDEF12)")
}

func TestMessageIncludesVariationLines(t *testing.T) {
	msg := BuildMessage([]Item{{
		ProductID: "abcdef12", Name: "Vaso", UnitPrice: 10, Quantity: 2,
		Color: "Azul", CustomizationText: "Maria",
	}})
	assert.Contains(t, msg, "Qtd: 2 | R$ 20.00")
	assert.Contains(t, msg, "Cor: Azul")
	assert.Contains(t, msg, "Personalização: Maria")
}

func TestLinkEncodesMessage(t *testing.T) {
	link := Link("5511999999999", "🛒 *Novo Pedido*")
	require.True(t, strings.HasPrefix(link, "https://wa.me/5511999999999?text="))

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "🛒 *Novo Pedido*", u.Query().Get("text"))
}
