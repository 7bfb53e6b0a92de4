package models

import "time"

type Review struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ListingID    uint      `gorm:"not null;index;uniqueIndex:idx_reviews_listing_author,priority:1" json:"game_id"`
	AuthorID     uint      `gorm:"not null;uniqueIndex:idx_reviews_listing_author,priority:2" json:"user_id"`
	Rating       int       `gorm:"not null" json:"rating"`
	Title        string    `gorm:"size:200" json:"title"`
	Content      string    `gorm:"type:text" json:"content"`
	HelpfulCount int       `gorm:"not null;default:0" json:"helpful_count"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
