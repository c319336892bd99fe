// Package handler serves the cart session as JSON over HTTP for the demo UI.
package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kart-pricing/internal/session"
)

const maxBodySize = 1 << 16

// Session is the part of session.Session the handlers drive.
type Session interface {
	Add(ctx context.Context, id string) error
	ChangeQuantity(ctx context.Context, id string, delta int) error
	Remove(ctx context.Context, id string) error
	Snapshot() session.Snapshot
	Quote(ctx context.Context) session.Quote
}

var _ Session = (*session.Session)(nil)

// Handler maps HTTP requests onto session actions.
type Handler struct {
	session Session
}

// NewHandler returns a Handler bound to s.
func NewHandler(s Session) *Handler {
	return &Handler{session: s}
}

// Register adds the API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/catalog", h.GetCatalog)
	mux.HandleFunc("GET /api/cart", h.GetCart)
	mux.HandleFunc("POST /api/cart/items", h.AddItem)
	mux.HandleFunc("PATCH /api/cart/items/{id}", h.ChangeItem)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.RemoveItem)
}

// statusOf maps a session error to an HTTP status. Unknown errors are 500.
func statusOf(err error) int {
	var notFound *session.ProductNotFoundError
	switch {
	case errors.As(err, &notFound), errors.Is(err, session.ErrNotInCart):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, session.ErrInvalidQuantity):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusOf(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Cart action failed", zap.Error(err))
		msg = "internal server error"
	}
	writeError(w, code, msg)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Int(code) })
			e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
		})
	})
}

func writeJSON(w http.ResponseWriter, code int, encode func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encode(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(e.Bytes())
}

// readObject decodes a JSON object body, calling field for every key.
func readObject(r *http.Request, w http.ResponseWriter, field func(d *jx.Decoder, key string) error) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return errors.Wrap(err, "read body")
	}
	if err := jx.DecodeBytes(data).Obj(field); err != nil {
		return errors.Wrap(err, "decode body")
	}
	return nil
}
