package main

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kart-pricing/internal/domain/cart"
	"github.com/xenking/kart-pricing/internal/domain/product"
	"github.com/xenking/kart-pricing/internal/storage/seedfile"
)

func TestParseCart(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []cart.Line
		wantErr bool
	}{
		{name: "single", input: "p1=5", want: []cart.Line{{ProductID: "p1", Quantity: 5}}},
		{
			name: "merged and ordered",
			input: "p5=10, p1=2,p5=1",
			want: []cart.Line{{ProductID: "p5", Quantity: 11}, {ProductID: "p1", Quantity: 2}},
		},
		{name: "empty", input: " ", wantErr: true},
		{name: "missing qty", input: "p1", wantErr: true},
		{name: "zero qty", input: "p1=0", wantErr: true},
		{name: "not a number", input: "p1=many", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCart(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, "p1=10,p2=10,p3=10", "2024-01-02", "", time.Time{})
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "Quote for 2024-01-02 (Tuesday)")
	assert.Contains(t, s, "bulk discount applied")
	assert.Contains(t, s, "Subtotal: 600000.00")
	assert.Contains(t, s, "Total:    405000")
	assert.Contains(t, s, "Discount: 32.5%")
}

func TestRun_SeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, seedfile.Save(path, product.DefaultCatalog()[:1]))

	var out bytes.Buffer
	require.NoError(t, run(&out, "p1=1", "2024-01-01", path, time.Time{}))
	assert.Contains(t, out.String(), "Total:    10000")

	err := run(&out, "p2=1", "2024-01-01", path, time.Time{})
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestRun_BadDate(t *testing.T) {
	var out bytes.Buffer
	require.Error(t, run(&out, "p1=1", "tuesday", "", time.Time{}))
}
