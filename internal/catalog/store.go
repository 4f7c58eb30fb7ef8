package catalog

import (
	"context"

	"github.com/shopspring/decimal"

	"MiniCart/internal/cart"
)

type Image struct {
	Thumbnail string `json:"thumbnail"`
	Mobile    string `json:"mobile"`
	Tablet    string `json:"tablet"`
	Desktop   string `json:"desktop"`
}

type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Image    Image           `json:"image"`
	Position int             `json:"position"`
}

func (p Product) CartProduct() cart.Product {
	return cart.Product{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		UnitPrice: p.Price,
	}
}

// Store lists products in catalog order.
type Store interface {
	Ping(ctx context.Context) error
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, bool, error)
}

func Lookup(products []Product) cart.MapCatalog {
	out := make([]cart.Product, 0, len(products))
	for _, p := range products {
		out = append(out, p.CartProduct())
	}
	return cart.NewMapCatalog(out)
}
