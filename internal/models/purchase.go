package models

import "time"

const PurchaseCompleted = "completed"

// Purchase records a checkout. The (buyer, listing, status) index keeps at
// most one completed purchase per buyer and listing.
type Purchase struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BuyerID    uint      `gorm:"not null;uniqueIndex:idx_purchases_buyer_listing_status,priority:1" json:"user_id"`
	ListingID  uint      `gorm:"not null;index;uniqueIndex:idx_purchases_buyer_listing_status,priority:2" json:"game_id"`
	AmountPaid float64   `gorm:"not null" json:"amount_paid"`
	Status     string    `gorm:"size:20;not null;default:'completed';uniqueIndex:idx_purchases_buyer_listing_status,priority:3" json:"status"`
	CreatedAt  time.Time `json:"purchased_at"`
}
