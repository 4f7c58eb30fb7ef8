package view

import (
	"html/template"
	"io"
)

var cartTmpl = template.Must(template.New("cart").Parse(`<div class="cart-container">
<h1>{{.Title}}</h1>
<div class="flex-container">
{{- if .Empty}}
<img src="{{.Empty.Image}}" alt="{{.Empty.Alt}}">
<p>{{.Empty.Caption}}</p>
{{- else}}
<div class="cart-items">
{{- range .Rows}}
<div class="cart-item" data-product-id="{{.ProductID}}">
<div class="cart-item-details">
<p class="cart-item-name">{{.Name}}</p>
{{- if .Category}}
<p class="cart-item-category">{{.Category}}</p>
{{- end}}
<p class="cart-item-price">{{.Summary}}</p>
<p class="cart-item-total">{{.LineTotal}}</p>
</div>
<div class="cart-item-actions">
<button class="decrease-quantity" data-product-id="{{.ProductID}}">-</button>
<span class="quantity">{{.Quantity}}</span>
<button class="increase-quantity" data-product-id="{{.ProductID}}">+</button>
<button class="remove-item" data-product-id="{{.ProductID}}">Remove</button>
</div>
</div>
{{- end}}
<div class="cart-total">
<p>Total: {{.Total}}</p>
</div>
<button class="checkout-button">{{.Checkout.Label}}</button>
</div>
{{- end}}
</div>
</div>
`))

// WriteHTML writes the cart fragment the storefront swaps into the page.
func WriteHTML(w io.Writer, c Cart) error {
	return cartTmpl.Execute(w, c)
}
