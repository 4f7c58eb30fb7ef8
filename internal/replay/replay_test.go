package replay_test

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MiniCart/internal/catalog"
	"MiniCart/internal/replay"
)

func loadScript(t *testing.T, path string) replay.Script {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	s, err := replay.Parse(f)
	require.NoError(t, err)
	return s
}

func TestRun_Checkout(t *testing.T) {
	s := loadScript(t, "testdata/checkout.yaml")
	require.Len(t, s.Steps, 8)

	out, err := replay.Run(s, catalog.Desserts(), nil)
	require.NoError(t, err)
	require.Len(t, out, 8)

	assert.ErrorContains(t, out[4].Err, "unknown product")
	assert.Equal(t, "Order Confirmed", out[6].Result.Notice)
	assert.NotNil(t, out[7].Result.Cart.Empty)

	var buf bytes.Buffer
	require.NoError(t, replay.Write(&buf, out))
	text := buf.String()
	for _, want := range []string{
		"2. add macaron",
		"Macaron / Macaron Mix of Five  $8.00 x 2  $16.00",
		"Total: $29.00",
		"error: unknown product",
		"6. decrement waffle x100",
		"Your added items will appear here",
	} {
		assert.Contains(t, text, want)
	}
	assert.NotContains(t, text, "FAIL")
}

func TestRun_ReportsFailedExpectations(t *testing.T) {
	s, err := replay.Parse(strings.NewReader(`
steps:
  - kind: add
    product: brownie
    expect: {count: 2, total: "$5.50"}
  - kind: set
    product: brownie
    expect: {error: invalid quantity}
  - kind: remove
    product: brownie
    expect: {error: nope}
`))
	require.NoError(t, err)

	out, err := replay.Run(s, catalog.Desserts(), nil)
	require.ErrorIs(t, err, replay.ErrExpectation)
	assert.Contains(t, err.Error(), "2 of 3")

	assert.Equal(t, []string{"count 1, want 2"}, out[0].Failures)
	assert.Empty(t, out[1].Failures)
	assert.Equal(t, []string{`expected error "nope", got none`}, out[2].Failures)
}

func TestRun_ResetSelectorOption(t *testing.T) {
	s, err := replay.Parse(strings.NewReader(`
options: {reset_selector: false}
steps:
  - {kind: select_increase, product: cake}
  - {kind: add, product: cake}
  - {kind: add, product: cake, expect: {count: 4}}
`))
	require.NoError(t, err)

	_, err = replay.Run(s, catalog.Desserts(), nil)
	require.NoError(t, err)
}

func TestParse_Rejects(t *testing.T) {
	for name, src := range map[string]string{
		"empty":         "",
		"unknown field": "steps:\n  - {kind: add, product: cake, price: 1}\n",
		"missing kind":  "steps:\n  - {product: cake}\n",
		"not yaml":      "steps: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := replay.Parse(strings.NewReader(src))
			require.Error(t, err)
		})
	}
}
