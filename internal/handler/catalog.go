package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/product"
)

// GetCatalog lists products with their live stock and sale state.
func (h *Handler) GetCatalog(w http.ResponseWriter, _ *http.Request) {
	products := h.session.Snapshot().Products
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("products", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, p := range products {
						encodeProduct(e, p)
					}
				})
			})
			e.Field("stockReport", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, line := range product.StockStatusReport(products) {
						e.Str(line)
					}
				})
			})
			e.Field("totalStock", func(e *jx.Encoder) { e.Int(product.TotalStock(products)) })
			e.Field("lowTotalStock", func(e *jx.Encoder) { e.Bool(product.LowTotalStock(products)) })
		})
	})
}

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(p.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("price", func(e *jx.Encoder) { encodeMoney(e, p.Price) })
		e.Field("originalPrice", func(e *jx.Encoder) { encodeMoney(e, p.OriginalPrice) })
		e.Field("stock", func(e *jx.Encoder) { e.Int(p.Stock) })
		e.Field("onSale", func(e *jx.Encoder) { e.Bool(p.OnSale) })
		e.Field("suggestSale", func(e *jx.Encoder) { e.Bool(p.SuggestSale) })
		if status := product.StockStatus(p); status != "" {
			e.Field("status", func(e *jx.Encoder) { e.Str(status) })
		}
	})
}

// encodeMoney writes d as a plain JSON number.
func encodeMoney(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.String()))
}
