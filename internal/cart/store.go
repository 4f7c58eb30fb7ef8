package cart

import (
	"fmt"
	"iter"
	"math"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Store holds the line items of one cart keyed by product id. Every
// operation validates its input before touching state, so a failed call
// leaves the cart exactly as it was.
type Store struct {
	catalog Catalog

	lines map[string]LineItem
	order []string
	known map[string]Product
}

// NewStore returns an empty cart. The catalog may be nil, in which case only
// products previously passed to AddOrIncrement can be materialized by
// SetQuantity or Increment.
func NewStore(c Catalog) *Store {
	return &Store{
		catalog: c,
		lines:   make(map[string]LineItem),
		known:   make(map[string]Product),
	}
}

func (s *Store) AddOrIncrement(p Product, by int) (Snapshot, error) {
	if err := checkDelta(by); err != nil {
		return Snapshot{}, err
	}
	if err := checkProduct(p); err != nil {
		return Snapshot{}, err
	}

	if li, ok := s.lines[p.ID]; ok {
		qty, err := addQuantity(li.Quantity, by)
		if err != nil {
			return Snapshot{}, err
		}
		li.Quantity = qty
		s.lines[p.ID] = li
		return s.Snapshot(), nil
	}

	// An existing line keeps the product data it was created with; known
	// follows the line so a later re-materialization prices it the same way.
	s.insert(newLineItem(p, by))
	s.known[p.ID] = p
	return s.Snapshot(), nil
}

func (s *Store) SetQuantity(productID string, qty int) (Snapshot, error) {
	if qty <= 0 {
		s.remove(productID)
		return s.Snapshot(), nil
	}

	if li, ok := s.lines[productID]; ok {
		li.Quantity = qty
		s.lines[productID] = li
		return s.Snapshot(), nil
	}

	p, err := s.resolve(productID)
	if err != nil {
		return Snapshot{}, err
	}
	s.insert(newLineItem(p, qty))
	return s.Snapshot(), nil
}

func (s *Store) Increment(productID string, by int) (Snapshot, error) {
	if err := checkDelta(by); err != nil {
		return Snapshot{}, err
	}

	if li, ok := s.lines[productID]; ok {
		qty, err := addQuantity(li.Quantity, by)
		if err != nil {
			return Snapshot{}, err
		}
		li.Quantity = qty
		s.lines[productID] = li
		return s.Snapshot(), nil
	}

	p, err := s.resolve(productID)
	if err != nil {
		return Snapshot{}, err
	}
	s.insert(newLineItem(p, by))
	return s.Snapshot(), nil
}

// Decrement lowers a line's quantity and drops the line once it would reach
// zero. Decrementing an absent product is a no-op.
func (s *Store) Decrement(productID string, by int) (Snapshot, error) {
	if err := checkDelta(by); err != nil {
		return Snapshot{}, err
	}

	li, ok := s.lines[productID]
	if !ok {
		return s.Snapshot(), nil
	}

	if li.Quantity <= by {
		s.remove(productID)
	} else {
		li.Quantity -= by
		s.lines[productID] = li
	}
	return s.Snapshot(), nil
}

func (s *Store) Remove(productID string) Snapshot {
	s.remove(productID)
	return s.Snapshot()
}

func (s *Store) Clear() Snapshot {
	clear(s.lines)
	s.order = s.order[:0]
	return s.Snapshot()
}

func (s *Store) TotalItems() int {
	n := 0
	for _, li := range s.lines {
		n += li.Quantity
	}
	return n
}

func (s *Store) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, li := range s.lines {
		total = total.Add(li.LineTotal())
	}
	return total
}

func (s *Store) Len() int { return len(s.lines) }

func (s *Store) Get(productID string) (LineItem, bool) {
	li, ok := s.lines[productID]
	return li, ok
}

// Items returns the line items in the order they were first added.
func (s *Store) Items() []LineItem {
	out := make([]LineItem, 0, len(s.order))
	for li := range s.All() {
		out = append(out, li)
	}
	return out
}

// All yields copies of the line items in display order. The sequence can be
// ranged over any number of times.
func (s *Store) All() iter.Seq[LineItem] {
	return func(yield func(LineItem) bool) {
		for _, id := range slices.Clone(s.order) {
			li, ok := s.lines[id]
			if !ok {
				continue
			}
			if !yield(li) {
				return
			}
		}
	}
}

func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		LineItems:  s.Items(),
		TotalItems: s.TotalItems(),
		TotalPrice: s.TotalPrice(),
	}
}

func (s *Store) insert(li LineItem) {
	s.lines[li.ProductID] = li
	s.order = append(s.order, li.ProductID)
}

func (s *Store) remove(productID string) {
	if _, ok := s.lines[productID]; !ok {
		return
	}
	delete(s.lines, productID)
	if i := slices.Index(s.order, productID); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
}

// resolve finds product data for a line that is not in the cart: first from
// products added earlier in this cart, then from the catalog.
func (s *Store) resolve(productID string) (Product, error) {
	if p, ok := s.known[productID]; ok {
		return p, nil
	}
	if s.catalog != nil && strings.TrimSpace(productID) != "" {
		if p, ok := s.catalog.Lookup(productID); ok {
			if err := checkProduct(p); err != nil {
				return Product{}, err
			}
			s.known[productID] = p
			return p, nil
		}
	}
	return Product{}, fmt.Errorf("%w: %q", ErrUnknownProduct, productID)
}

func checkDelta(by int) error {
	if by < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, by)
	}
	return nil
}

func checkProduct(p Product) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: empty product id", ErrUnknownProduct)
	}
	if p.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: %s", ErrInvalidPrice, p.UnitPrice)
	}
	return nil
}

func addQuantity(qty, by int) (int, error) {
	if by > math.MaxInt-qty {
		return 0, fmt.Errorf("%w: quantity overflow", ErrInvalidQuantity)
	}
	return qty + by, nil
}
