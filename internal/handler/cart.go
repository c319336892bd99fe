package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/kart-pricing/internal/pricing"
	"github.com/xenking/kart-pricing/internal/session"
)

// GetCart returns the cart lines with the priced summary.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, r)
}

// AddItem takes one unit of {"productId"} from stock into the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var id string
	err := readObject(r, w, func(d *jx.Decoder, key string) error {
		if key != "productId" {
			return d.Skip()
		}
		v, err := d.Str()
		id = v
		return err
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if id == "" {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}

	if err := h.session.Add(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeCart(w, r)
}

// ChangeItem moves the line quantity by {"delta"}.
func (h *Handler) ChangeItem(w http.ResponseWriter, r *http.Request) {
	var (
		delta int
		seen  bool
	)
	err := readObject(r, w, func(d *jx.Decoder, key string) error {
		if key != "delta" {
			return d.Skip()
		}
		v, err := d.Int()
		delta, seen = v, true
		return err
	})
	if err == nil && !seen {
		err = errors.New("delta is required")
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.session.ChangeQuantity(r.Context(), r.PathValue("id"), delta); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeCart(w, r)
}

// RemoveItem drops the line and returns its units to stock.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Remove(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeCart(w, r)
}

func (h *Handler) writeCart(w http.ResponseWriter, r *http.Request) {
	q := h.session.Quote(r.Context())
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeQuote(e, q)
	})
}

func encodeQuote(e *jx.Encoder, q session.Quote) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("lines", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, it := range q.Items {
					encodeItem(e, it)
				}
			})
		})
		e.Field("lastSelected", func(e *jx.Encoder) { e.Str(q.LastSelected) })
		e.Field("summary", func(e *jx.Encoder) { encodeSummary(e, q.Summary) })
	})
}

func encodeItem(e *jx.Encoder, it pricing.Item) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("productId", func(e *jx.Encoder) { e.Str(it.Product.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(it.Product.Name) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
		e.Field("unitPrice", func(e *jx.Encoder) { encodeMoney(e, it.Product.Price) })
	})
}

func encodeSummary(e *jx.Encoder, s pricing.Summary) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("subtotal", func(e *jx.Encoder) { encodeMoney(e, s.Subtotal) })
		e.Field("totalQuantity", func(e *jx.Encoder) { e.Int(s.TotalQuantity) })
		e.Field("total", func(e *jx.Encoder) { e.Int64(s.Total) })
		e.Field("discountLabel", func(e *jx.Encoder) { e.Str(s.DiscountLabel) })
		e.Field("bulkApplied", func(e *jx.Encoder) { e.Bool(s.BulkApplied) })
		e.Field("weekdayApplied", func(e *jx.Encoder) { e.Bool(s.WeekdayApplied) })
		e.Field("itemDiscounts", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, d := range s.ItemDiscounts {
					e.Obj(func(e *jx.Encoder) {
						e.Field("productId", func(e *jx.Encoder) { e.Str(d.ProductID) })
						e.Field("name", func(e *jx.Encoder) { e.Str(d.Name) })
						e.Field("percent", func(e *jx.Encoder) { e.Int64(d.Percent) })
					})
				}
			})
		})
		e.Field("loyaltyPoints", func(e *jx.Encoder) { e.Int64(s.LoyaltyPoints) })
		e.Field("pointDetails", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, line := range s.Points.Details {
					e.Str(line)
				}
			})
		})
	})
}
