package presenter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MiniCart/internal/cart"
	"MiniCart/internal/catalog"
	"MiniCart/internal/presenter"
	"MiniCart/internal/view"
)

func qty(n int) *int { return &n }

func newPresenter(opts presenter.Options) *presenter.Presenter {
	return presenter.New(catalog.Desserts(), opts, nil)
}

func dispatch(t *testing.T, p *presenter.Presenter, in presenter.Intent) presenter.Result {
	t.Helper()
	res, err := p.Dispatch(in)
	require.NoError(t, err, "intent %+v", in)
	return res
}

func TestPresenter_AddIncrementDecrementToEmpty(t *testing.T) {
	p := newPresenter(presenter.DefaultOptions())

	res := dispatch(t, p, presenter.Intent{Kind: presenter.KindAdd, ProductID: "waffle"})
	assert.Equal(t, "Your Cart (1)", res.Cart.Title)
	assert.Equal(t, "$6.50", res.Cart.Total)

	res = dispatch(t, p, presenter.Intent{Kind: presenter.KindIncrement, ProductID: "waffle"})
	assert.Equal(t, "$13.00", res.Cart.Total)
	require.Len(t, res.Cart.Rows, 1)
	assert.Equal(t, "$6.50 x 2", res.Cart.Rows[0].Summary)

	res = dispatch(t, p, presenter.Intent{Kind: presenter.KindDecrement, ProductID: "waffle", Quantity: qty(2)})
	require.NotNil(t, res.Cart.Empty)
	assert.Equal(t, view.EmptyCaption, res.Cart.Empty.Caption)
	assert.Equal(t, "Your Cart (0)", res.Cart.Title)
	assert.Nil(t, res.Cart.Checkout)
}

func TestPresenter_SelectorFeedsAddAndResets(t *testing.T) {
	p := newPresenter(presenter.DefaultOptions())

	dispatch(t, p, presenter.Intent{Kind: presenter.KindSelectIncrease, ProductID: "macaron"})
	res := dispatch(t, p, presenter.Intent{Kind: presenter.KindSelectIncrease, ProductID: "macaron"})
	assert.Equal(t, 3, p.Selected("macaron"))
	assert.Equal(t, 3, cardFor(t, res, "macaron").Selected)

	res = dispatch(t, p, presenter.Intent{Kind: presenter.KindAdd, ProductID: "macaron"})
	assert.Equal(t, 3, res.Snapshot.TotalItems)
	assert.Equal(t, "$24.00", res.Cart.Total)
	assert.Equal(t, 1, p.Selected("macaron"))
	assert.Equal(t, 3, cardFor(t, res, "macaron").InCart)
}

func TestPresenter_SelectorKeptWhenResetDisabled(t *testing.T) {
	p := newPresenter(presenter.Options{})

	dispatch(t, p, presenter.Intent{Kind: presenter.KindSelectIncrease, ProductID: "cake", Quantity: qty(2)})
	dispatch(t, p, presenter.Intent{Kind: presenter.KindAdd, ProductID: "cake"})
	res := dispatch(t, p, presenter.Intent{Kind: presenter.KindAdd, ProductID: "cake"})

	assert.Equal(t, 6, res.Snapshot.TotalItems)
	assert.Equal(t, 3, p.Selected("cake"))
}

func TestPresenter_SelectorFloorIsOne(t *testing.T) {
	p := newPresenter(presenter.DefaultOptions())

	dispatch(t, p, presenter.Intent{Kind: presenter.KindSelectDecrease, ProductID: "meringue"})
	assert.Equal(t, 1, p.Selected("meringue"))

	_, err := p.Dispatch(presenter.Intent{Kind: presenter.KindSelectDecrease, ProductID: "pie"})
	require.ErrorIs(t, err, cart.ErrUnknownProduct)

	dispatch(t, p, presenter.Intent{Kind: presenter.KindSelectIncrease, ProductID: "meringue"})
	dispatch(t, p, presenter.Intent{Kind: presenter.KindSelectDecrease, ProductID: "meringue", Quantity: qty(10)})
	assert.Equal(t, 1, p.Selected("meringue"))
}

func TestPresenter_ExplicitQuantityOverridesSelector(t *testing.T) {
	p := newPresenter(presenter.DefaultOptions())

	dispatch(t, p, presenter.Intent{Kind: presenter.KindSelectIncrease, ProductID: "baklava"})
	res := dispatch(t, p, presenter.Intent{Kind: presenter.KindAdd, ProductID: "baklava", Quantity: qty(5)})

	assert.Equal(t, 5, res.Snapshot.TotalItems)
	assert.Equal(t, "$20.00", res.Cart.Total)
}

func TestPresenter_Errors(t *testing.T) {
	p := newPresenter(presenter.DefaultOptions())

	_, err := p.Dispatch(presenter.Intent{Kind: presenter.KindAdd, ProductID: "pizza"})
	require.ErrorIs(t, err, cart.ErrUnknownProduct)

	_, err = p.Dispatch(presenter.Intent{Kind: presenter.KindIncrement, ProductID: "pizza"})
	require.ErrorIs(t, err, cart.ErrUnknownProduct)

	_, err = p.Dispatch(presenter.Intent{Kind: presenter.KindAdd, ProductID: "waffle", Quantity: qty(0)})
	require.ErrorIs(t, err, cart.ErrInvalidQuantity)

	_, err = p.Dispatch(presenter.Intent{Kind: presenter.KindSet, ProductID: "waffle"})
	require.ErrorIs(t, err, cart.ErrInvalidQuantity)

	_, err = p.Dispatch(presenter.Intent{Kind: "teleport"})
	require.ErrorIs(t, err, presenter.ErrUnknownIntent)

	assert.True(t, p.Render().Snapshot.Empty())
}

func TestPresenter_SetRemoveClearConfirm(t *testing.T) {
	p := newPresenter(presenter.Options{View: view.Options{ShowCategory: true}})

	dispatch(t, p, presenter.Intent{Kind: presenter.KindSet, ProductID: "tiramisu", Quantity: qty(2)})
	dispatch(t, p, presenter.Intent{Kind: presenter.KindAdd, ProductID: "brownie"})
	res := dispatch(t, p, presenter.Intent{Kind: presenter.KindConfirm})
	assert.Equal(t, presenter.ConfirmNotice, res.Notice)
	assert.Equal(t, 3, res.Snapshot.TotalItems)
	assert.Equal(t, "Tiramisu", res.Cart.Rows[0].Category)

	res = dispatch(t, p, presenter.Intent{Kind: presenter.KindRemove, ProductID: "tiramisu"})
	assert.Equal(t, 1, res.Snapshot.TotalItems)
	res = dispatch(t, p, presenter.Intent{Kind: presenter.KindRemove, ProductID: "tiramisu"})
	assert.Equal(t, 1, res.Snapshot.TotalItems)

	res = dispatch(t, p, presenter.Intent{Kind: presenter.KindClear})
	assert.True(t, res.Snapshot.Empty())
	assert.Empty(t, res.Notice)
}

func cardFor(t *testing.T, res presenter.Result, id string) view.Card {
	t.Helper()
	for _, c := range res.Catalog {
		if c.ProductID == id {
			return c
		}
	}
	t.Fatalf("no card for %s", id)
	return view.Card{}
}
