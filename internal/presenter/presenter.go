// Package presenter turns storefront intents into cart mutations and
// re-renders the cart after each one.
package presenter

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"MiniCart/internal/cart"
	"MiniCart/internal/catalog"
	"MiniCart/internal/view"
)

var ErrUnknownIntent = errors.New("unknown intent")

const ConfirmNotice = "Order Confirmed"

type Kind string

const (
	KindAdd            Kind = "add"
	KindIncrement      Kind = "increment"
	KindDecrement      Kind = "decrement"
	KindRemove         Kind = "remove"
	KindSet            Kind = "set"
	KindClear          Kind = "clear"
	KindSelectIncrease Kind = "select_increase"
	KindSelectDecrease Kind = "select_decrease"
	KindConfirm        Kind = "confirm"
	KindView           Kind = "view"
)

// Intent is one user action. Quantity is optional for add (the card's
// selected quantity is used), increment and decrement (1), and required for
// set.
type Intent struct {
	Kind      Kind   `json:"kind" yaml:"kind"`
	ProductID string `json:"product_id,omitempty" yaml:"product,omitempty"`
	Quantity  *int   `json:"qty,omitempty" yaml:"qty,omitempty"`
}

type Result struct {
	Cart     view.Cart     `json:"cart"`
	Snapshot cart.Snapshot `json:"snapshot"`
	Catalog  []view.Card   `json:"catalog,omitempty"`
	Notice   string        `json:"notice,omitempty"`
}

type Options struct {
	View view.Options
	// ResetSelectorAfterAdd puts a card's selected quantity back to 1 after
	// it was added to the cart.
	ResetSelectorAfterAdd bool
}

func DefaultOptions() Options {
	return Options{ResetSelectorAfterAdd: true}
}

type Presenter struct {
	store    *cart.Store
	products []catalog.Product
	byID     map[string]catalog.Product
	selector map[string]int
	opts     Options
	log      *zap.Logger
}

// New wires a presenter to a fresh cart backed by the given catalog listing.
func New(products []catalog.Product, opts Options, log *zap.Logger) *Presenter {
	if log == nil {
		log = zap.NewNop()
	}

	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	return &Presenter{
		store:    cart.NewStore(catalog.Lookup(products)),
		products: products,
		byID:     byID,
		selector: make(map[string]int),
		opts:     opts,
		log:      log,
	}
}

func (p *Presenter) Store() *cart.Store { return p.store }

func (p *Presenter) Dispatch(in Intent) (Result, error) {
	var notice string

	switch in.Kind {
	case KindView:
	case KindAdd:
		if err := p.add(in); err != nil {
			return Result{}, err
		}
	case KindIncrement:
		if _, err := p.store.Increment(in.ProductID, qtyOr(in.Quantity, 1)); err != nil {
			return Result{}, err
		}
	case KindDecrement:
		if _, err := p.store.Decrement(in.ProductID, qtyOr(in.Quantity, 1)); err != nil {
			return Result{}, err
		}
	case KindRemove:
		p.store.Remove(in.ProductID)
	case KindSet:
		if in.Quantity == nil {
			return Result{}, fmt.Errorf("%w: set needs qty", cart.ErrInvalidQuantity)
		}
		if _, err := p.store.SetQuantity(in.ProductID, *in.Quantity); err != nil {
			return Result{}, err
		}
	case KindClear:
		p.store.Clear()
	case KindSelectIncrease, KindSelectDecrease:
		if err := p.adjustSelector(in); err != nil {
			return Result{}, err
		}
	case KindConfirm:
		notice = ConfirmNotice
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownIntent, in.Kind)
	}

	res := p.Render()
	res.Notice = notice

	p.log.Debug("intent applied",
		zap.String("intent", string(in.Kind)),
		zap.String("product_id", in.ProductID),
		zap.Int("total_items", res.Snapshot.TotalItems),
		zap.String("total_price", res.Snapshot.TotalPrice.String()),
	)
	return res, nil
}

// Render projects the current state without changing it.
func (p *Presenter) Render() Result {
	snap := p.store.Snapshot()
	return Result{
		Cart:     view.Render(snap, p.opts.View),
		Snapshot: snap,
		Catalog:  view.RenderCatalog(p.products, p.selector, snap, p.opts.View),
	}
}

func (p *Presenter) Selected(productID string) int {
	if n := p.selector[productID]; n > 0 {
		return n
	}
	return 1
}

func (p *Presenter) add(in Intent) error {
	prod, err := p.product(in.ProductID)
	if err != nil {
		return err
	}

	qty := p.Selected(in.ProductID)
	if in.Quantity != nil {
		qty = *in.Quantity
	}

	if _, err := p.store.AddOrIncrement(prod.CartProduct(), qty); err != nil {
		return err
	}

	if p.opts.ResetSelectorAfterAdd {
		delete(p.selector, in.ProductID)
	}
	return nil
}

// adjustSelector changes the quantity picked on a product card. It never
// drops below 1.
func (p *Presenter) adjustSelector(in Intent) error {
	if _, err := p.product(in.ProductID); err != nil {
		return err
	}

	step := qtyOr(in.Quantity, 1)
	if step < 1 {
		return fmt.Errorf("%w: %d", cart.ErrInvalidQuantity, step)
	}

	n := p.Selected(in.ProductID)
	if in.Kind == KindSelectIncrease {
		if step > math.MaxInt-n {
			return fmt.Errorf("%w: quantity overflow", cart.ErrInvalidQuantity)
		}
		n += step
	} else {
		n = max(1, n-step)
	}
	p.selector[in.ProductID] = n
	return nil
}

func (p *Presenter) product(id string) (catalog.Product, error) {
	prod, ok := p.byID[id]
	if !ok {
		return catalog.Product{}, fmt.Errorf("%w: %q", cart.ErrUnknownProduct, id)
	}
	return prod, nil
}

func qtyOr(q *int, def int) int {
	if q == nil {
		return def
	}
	return *q
}
