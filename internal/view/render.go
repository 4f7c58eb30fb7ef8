// Package view projects cart state into display descriptions. Every function
// here is pure: the same snapshot always renders the same output.
package view

import (
	"fmt"

	"github.com/shopspring/decimal"

	"MiniCart/internal/cart"
	"MiniCart/internal/catalog"
)

const (
	EmptyImage   = "assets/images/illustration-empty-cart.svg"
	EmptyAlt     = "illustration-empty-cart"
	EmptyCaption = "Your added items will appear here"

	CheckoutLabel = "Checkout"
)

type Options struct {
	ShowCategory bool
	// Currency defaults to "$".
	Currency string
}

type EmptyState struct {
	Image   string `json:"image"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
}

type Row struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
	Summary   string `json:"summary"`
}

type Action struct {
	Label string `json:"label"`
}

type Cart struct {
	Title    string      `json:"title"`
	Count    int         `json:"count"`
	Empty    *EmptyState `json:"empty,omitempty"`
	Rows     []Row       `json:"rows,omitempty"`
	Total    string      `json:"total,omitempty"`
	Checkout *Action     `json:"checkout,omitempty"`
}

func Render(s cart.Snapshot, opts Options) Cart {
	out := Cart{
		Title: fmt.Sprintf("Your Cart (%d)", s.TotalItems),
		Count: s.TotalItems,
	}

	if s.Empty() {
		out.Empty = &EmptyState{Image: EmptyImage, Alt: EmptyAlt, Caption: EmptyCaption}
		return out
	}

	out.Rows = make([]Row, 0, len(s.LineItems))
	for _, li := range s.LineItems {
		out.Rows = append(out.Rows, renderRow(li, opts))
	}
	out.Total = Money(s.TotalPrice, opts.Currency)
	out.Checkout = &Action{Label: CheckoutLabel}
	return out
}

func renderRow(li cart.LineItem, opts Options) Row {
	unit := Money(li.UnitPrice, opts.Currency)
	row := Row{
		ProductID: li.ProductID,
		Name:      li.Name,
		UnitPrice: unit,
		Quantity:  li.Quantity,
		LineTotal: Money(li.LineTotal(), opts.Currency),
		Summary:   fmt.Sprintf("%s x %d", unit, li.Quantity),
	}
	if opts.ShowCategory {
		row.Category = li.Category
	}
	return row
}

// Money rounds half away from zero to cents.
func Money(d decimal.Decimal, currency string) string {
	if currency == "" {
		currency = "$"
	}
	return currency + d.StringFixed(2)
}

type Card struct {
	ProductID string        `json:"product_id"`
	Name      string        `json:"name"`
	Category  string        `json:"category"`
	Price     string        `json:"price"`
	Image     catalog.Image `json:"image"`
	Selected  int           `json:"selected"`
	InCart    int           `json:"in_cart"`
}

// RenderCatalog describes the product cards: the pending quantity picked
// on each card (1 when none was picked) and what is already in the cart.
func RenderCatalog(products []catalog.Product, selected map[string]int, s cart.Snapshot, opts Options) []Card {
	inCart := make(map[string]int, len(s.LineItems))
	for _, li := range s.LineItems {
		inCart[li.ProductID] = li.Quantity
	}

	out := make([]Card, 0, len(products))
	for _, p := range products {
		sel := selected[p.ID]
		if sel < 1 {
			sel = 1
		}
		out = append(out, Card{
			ProductID: p.ID,
			Name:      p.Name,
			Category:  p.Category,
			Price:     Money(p.Price, opts.Currency),
			Image:     p.Image,
			Selected:  sel,
			InCart:    inCart[p.ID],
		})
	}
	return out
}
