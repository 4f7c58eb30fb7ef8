// Package replay runs a scripted sequence of storefront intents against a
// fresh cart and reports each rendered state. Scripts are YAML:
//
//	options:
//	  show_category: true
//	steps:
//	  - kind: add
//	    product: waffle
//	    qty: 2
//	    expect: {count: 2, total: "$13.00"}
//	  - kind: add
//	    product: pie
//	    expect: {error: unknown product}
package replay

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"MiniCart/internal/catalog"
	"MiniCart/internal/presenter"
	"MiniCart/internal/view"
)

var ErrExpectation = errors.New("expectation failed")

type Script struct {
	Options ScriptOptions `yaml:"options"`
	Steps   []Step        `yaml:"steps"`
}

type ScriptOptions struct {
	ShowCategory bool `yaml:"show_category"`
	// ResetSelector defaults to true.
	ResetSelector *bool `yaml:"reset_selector"`
}

type Step struct {
	presenter.Intent `yaml:",inline"`
	Expect           *Expect `yaml:"expect,omitempty"`
}

// Expect checks the state after a step. Empty fields are not checked; Error
// matches as a substring of the step's error.
type Expect struct {
	Count *int   `yaml:"count"`
	Total string `yaml:"total"`
	Error string `yaml:"error"`
}

type Outcome struct {
	Step     Step
	Result   presenter.Result
	Err      error
	Failures []string
}

func Parse(r io.Reader) (Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return Script{}, errors.New("empty script")
		}
		return Script{}, fmt.Errorf("parse script: %w", err)
	}
	for i, st := range s.Steps {
		if st.Kind == "" {
			return Script{}, fmt.Errorf("step %d: kind required", i+1)
		}
	}
	return s, nil
}

func (o ScriptOptions) presenterOptions() presenter.Options {
	reset := true
	if o.ResetSelector != nil {
		reset = *o.ResetSelector
	}
	return presenter.Options{
		View:                  view.Options{ShowCategory: o.ShowCategory},
		ResetSelectorAfterAdd: reset,
	}
}

// Run applies every step in order. A rejected intent does not stop the run;
// it is recorded on its outcome. The returned error wraps ErrExpectation
// when any step's expectation did not hold.
func Run(s Script, products []catalog.Product, log *zap.Logger) ([]Outcome, error) {
	p := presenter.New(products, s.Options.presenterOptions(), log)

	out := make([]Outcome, 0, len(s.Steps))
	failed := 0
	for _, st := range s.Steps {
		res, err := p.Dispatch(st.Intent)
		if err != nil {
			res = p.Render()
		}
		o := Outcome{Step: st, Result: res, Err: err}
		o.Failures = check(st.Expect, res, err)
		if len(o.Failures) > 0 {
			failed++
		}
		out = append(out, o)
	}

	if failed > 0 {
		return out, fmt.Errorf("%w: %d of %d steps", ErrExpectation, failed, len(s.Steps))
	}
	return out, nil
}

func check(e *Expect, res presenter.Result, err error) []string {
	if e == nil {
		return nil
	}

	var f []string
	switch {
	case e.Error == "" && err != nil:
		f = append(f, fmt.Sprintf("unexpected error: %v", err))
	case e.Error != "" && err == nil:
		f = append(f, fmt.Sprintf("expected error %q, got none", e.Error))
	case e.Error != "" && !strings.Contains(err.Error(), e.Error):
		f = append(f, fmt.Sprintf("expected error %q, got %v", e.Error, err))
	}
	if e.Count != nil && *e.Count != res.Cart.Count {
		f = append(f, fmt.Sprintf("count %d, want %d", res.Cart.Count, *e.Count))
	}
	if e.Total != "" && e.Total != res.Cart.Total {
		f = append(f, fmt.Sprintf("total %q, want %q", res.Cart.Total, e.Total))
	}
	return f
}

// Write prints outcomes as plain text, one block per step.
func Write(w io.Writer, outcomes []Outcome) error {
	var b strings.Builder
	for i, o := range outcomes {
		fmt.Fprintf(&b, "%d. %s", i+1, o.Step.Kind)
		if o.Step.ProductID != "" {
			fmt.Fprintf(&b, " %s", o.Step.ProductID)
		}
		if o.Step.Quantity != nil {
			fmt.Fprintf(&b, " x%d", *o.Step.Quantity)
		}
		b.WriteByte('\n')

		if o.Err != nil {
			fmt.Fprintf(&b, "   error: %v\n", o.Err)
		}
		writeCart(&b, o.Result)
		for _, f := range o.Failures {
			fmt.Fprintf(&b, "   FAIL: %s\n", f)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeCart(b *strings.Builder, res presenter.Result) {
	c := res.Cart
	fmt.Fprintf(b, "   %s\n", c.Title)
	if c.Empty != nil {
		fmt.Fprintf(b, "   %s\n", c.Empty.Caption)
	}
	for _, r := range c.Rows {
		name := r.Name
		if r.Category != "" {
			name = r.Category + " / " + r.Name
		}
		fmt.Fprintf(b, "   - %s  %s  %s\n", name, r.Summary, r.LineTotal)
	}
	if c.Total != "" {
		fmt.Fprintf(b, "   Total: %s\n", c.Total)
	}
	if res.Notice != "" {
		fmt.Fprintf(b, "   %s\n", res.Notice)
	}
}
