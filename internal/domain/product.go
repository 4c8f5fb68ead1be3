package domain

import (
	"time"
)

// DefaultLowStockThreshold is the stock level at or below which a product is
// flagged for restocking when no explicit threshold is given.
const DefaultLowStockThreshold = 10

// Product represents a catalog product as far as the storefront core is
// concerned. StockQuantity is mutated only through the stock ledger.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	SKU           string    `json:"sku"`
	PriceCents    int64     `json:"price_cents"`
	StockQuantity int       `json:"stock_quantity"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// LowStock reports whether the product is at or below the given threshold.
func (p *Product) LowStock(threshold int) bool {
	return p.StockQuantity <= threshold
}
