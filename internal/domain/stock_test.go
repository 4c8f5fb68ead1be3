package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStockChange(t *testing.T) {
	tests := []struct {
		name       string
		oldStock   int
		newStock   int
		wantAmount int
	}{
		{"decrease", 20, 15, -5},
		{"increase", 15, 25, 10},
		{"no change", 10, 10, 0},
		{"to zero", 5, 0, -5},
		{"from zero", 0, 50, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewStockChange("prod-1", tt.oldStock, tt.newStock, StockReasonCorrection, "admin-1")
			assert.Equal(t, "prod-1", c.ProductID)
			assert.Equal(t, tt.oldStock, c.OldStock)
			assert.Equal(t, tt.newStock, c.NewStock)
			assert.Equal(t, tt.wantAmount, c.ChangeAmount)
			assert.Equal(t, StockReasonCorrection, c.Reason)
			assert.Equal(t, "admin-1", c.ChangedBy)
			assert.False(t, c.CreatedAt.IsZero())
		})
	}
}

func TestProduct_LowStock(t *testing.T) {
	p := Product{StockQuantity: 10}

	assert.True(t, p.LowStock(10))
	assert.True(t, p.LowStock(15))
	assert.False(t, p.LowStock(9))
	assert.False(t, p.LowStock(0))
}
