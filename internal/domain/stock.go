package domain

import (
	"time"
)

// Common stock change reasons. The reason field is free text; these are the
// conventions the admin UI uses.
const (
	StockReasonRestock    = "restock"
	StockReasonDamaged    = "damaged"
	StockReasonSale       = "sale"
	StockReasonCorrection = "correction"
)

// StockChange is one immutable entry in a product's stock ledger. Entries are
// created exactly once per stock update and never mutated or deleted.
type StockChange struct {
	ID           int64     `json:"id"`
	ProductID    string    `json:"product_id"`
	OldStock     int       `json:"old_stock"`
	NewStock     int       `json:"new_stock"`
	ChangeAmount int       `json:"change_amount"`
	Reason       string    `json:"reason"`
	ChangedBy    string    `json:"changed_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewStockChange builds a ledger entry for a transition from oldStock to
// newStock. ChangeAmount may be negative.
func NewStockChange(productID string, oldStock, newStock int, reason, changedBy string) StockChange {
	return StockChange{
		ProductID:    productID,
		OldStock:     oldStock,
		NewStock:     newStock,
		ChangeAmount: newStock - oldStock,
		Reason:       reason,
		ChangedBy:    changedBy,
		CreatedAt:    time.Now().UTC(),
	}
}
