package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"MiniCart/internal/catalog"
	"MiniCart/pkg/kit"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CATALOG_URL", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestCatalogCmd_Table(t *testing.T) {
	out, err := execute(t, "", "catalog")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(catalog.Desserts())+1)
	assert.Contains(t, lines[0], "PRICE")
	assert.Contains(t, lines[1], "waffle")
	assert.Contains(t, lines[1], "$6.50")
}

func TestCatalogCmd_JSONFromRemote(t *testing.T) {
	ts := httptest.NewServer(catalog.NewHandler(
		&catalog.Server{Store: catalog.NewMemStore(catalog.Desserts()[:2]...)},
		kit.HTTPDeps{Log: zap.NewNop(), Service: "catalog"},
	))
	t.Cleanup(ts.Close)

	out, err := execute(t, "", "catalog", "--json", "--catalog-url", ts.URL)
	require.NoError(t, err)

	var ps []catalog.Product
	require.NoError(t, json.Unmarshal([]byte(out), &ps))
	require.Len(t, ps, 2)
	assert.Equal(t, "creme-brulee", ps[1].ID)
}

func TestReplayCmd_Stdin(t *testing.T) {
	script := `
steps:
  - {kind: add, product: tiramisu, qty: 2, expect: {total: "$11.00"}}
  - {kind: remove, product: tiramisu, expect: {count: 0}}
`
	out, err := execute(t, script, "replay", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "1. add tiramisu x2")
	assert.Contains(t, out, "Total: $11.00")
}

func TestReplayCmd_FailedExpectationExitsNonZero(t *testing.T) {
	out, err := execute(t, "steps:\n  - {kind: add, product: cake, expect: {count: 3}}\n", "replay", "-")
	require.Error(t, err)
	assert.Contains(t, out, "FAIL: count 1, want 3")
}

func TestReplayCmd_MissingFile(t *testing.T) {
	_, err := execute(t, "", "replay", "does-not-exist.yaml")
	require.Error(t, err)
}
