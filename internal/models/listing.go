package models

import "time"

// Listing is a game offered for sale. DeveloperID references the owning
// developer account; deleting a listing leaves purchases, reviews and annex
// documents that reference it in place.
type Listing struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null;size:200" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Genre       string    `gorm:"size:50;index" json:"genre"`
	Price       float64   `gorm:"not null;default:0" json:"price"`
	DeveloperID uint      `gorm:"not null;index" json:"developer_id"`
	Featured    bool      `gorm:"not null;default:false" json:"is_featured"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Listing) TableName() string {
	return "games"
}
