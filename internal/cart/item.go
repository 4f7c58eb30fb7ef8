// Package cart keeps the line items of one shopping cart consistent with
// their derived totals. A Store is not safe for concurrent use; callers that
// share one serialize access themselves.
package cart

import "github.com/shopspring/decimal"

type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type LineItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

func (li LineItem) Product() Product {
	return Product{
		ID:        li.ProductID,
		Name:      li.Name,
		Category:  li.Category,
		UnitPrice: li.UnitPrice,
	}
}

func newLineItem(p Product, qty int) LineItem {
	return LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Category:  p.Category,
		UnitPrice: p.UnitPrice,
		Quantity:  qty,
	}
}

// Snapshot is a copied-out view of a cart. Changing it never affects the
// Store it came from.
type Snapshot struct {
	LineItems  []LineItem      `json:"line_items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func (s Snapshot) Empty() bool { return len(s.LineItems) == 0 }

func (s Snapshot) Quantity(productID string) int {
	for _, li := range s.LineItems {
		if li.ProductID == productID {
			return li.Quantity
		}
	}
	return 0
}
