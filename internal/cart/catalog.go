package cart

// Catalog resolves product data for lines the store has not seen yet.
type Catalog interface {
	Lookup(id string) (Product, bool)
}

type CatalogFunc func(id string) (Product, bool)

func (f CatalogFunc) Lookup(id string) (Product, bool) { return f(id) }

// MapCatalog is a fixed lookup table, typically built from a catalog listing
// when a page session starts.
type MapCatalog map[string]Product

func NewMapCatalog(products []Product) MapCatalog {
	m := make(MapCatalog, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return m
}

func (m MapCatalog) Lookup(id string) (Product, bool) {
	p, ok := m[id]
	return p, ok
}
