package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

type MemStore struct {
	mu sync.RWMutex
	m  map[string]Product
}

func NewMemStore(products ...Product) *MemStore {
	if len(products) == 0 {
		products = Desserts()
	}

	s := &MemStore{m: make(map[string]Product, len(products))}
	for i, p := range products {
		if p.Position == 0 {
			p.Position = i + 1
		}
		s.m[p.ID] = p
	}
	return s
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) List(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}

	sortByPosition(out)
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id string) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.m[id]
	return p, ok, nil
}

func sortByPosition(ps []Product) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Position != ps[j].Position {
			return ps[i].Position < ps[j].Position
		}
		return ps[i].ID < ps[j].ID
	})
}

// Desserts is the storefront's default catalog.
func Desserts() []Product {
	return []Product{
		dessert("waffle", "Waffle with Berries", "Waffle", "6.50"),
		dessert("creme-brulee", "Vanilla Bean Crème Brûlée", "Crème Brûlée", "7.00"),
		dessert("macaron", "Macaron Mix of Five", "Macaron", "8.00"),
		dessert("tiramisu", "Classic Tiramisu", "Tiramisu", "5.50"),
		dessert("baklava", "Pistachio Baklava", "Baklava", "4.00"),
		dessert("meringue", "Lemon Meringue Pie", "Pie", "5.00"),
		dessert("cake", "Red Velvet Cake", "Cake", "4.50"),
		dessert("brownie", "Salted Caramel Brownie", "Brownie", "5.50"),
		dessert("panna-cotta", "Vanilla Panna Cotta", "Panna Cotta", "6.50"),
	}
}

func dessert(id, name, category, price string) Product {
	const dir = "assets/images/image-"
	return Product{
		ID:       id,
		Name:     name,
		Category: category,
		Price:    decimal.RequireFromString(price),
		Image: Image{
			Thumbnail: dir + id + "-thumbnail.jpg",
			Mobile:    dir + id + "-mobile.jpg",
			Tablet:    dir + id + "-tablet.jpg",
			Desktop:   dir + id + "-desktop.jpg",
		},
	}
}
