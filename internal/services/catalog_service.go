package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/dto"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/models"
	"gorm.io/gorm"
)

// CatalogService manages game listings.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// Create persists a listing owned by caller, who must be a developer.
func (s *CatalogService) Create(caller *models.Account, req *dto.CreateGameRequest) (*models.Listing, error) {
	if err := RequireRole(caller, models.RoleDeveloper); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	price := 0.0
	if req.Price != nil {
		price = *req.Price
	}
	if price < 0 {
		return nil, ErrInvalidPrice
	}

	listing := models.Listing{
		Title:       title,
		Description: req.Description,
		Genre:       req.Genre,
		Price:       price,
		DeveloperID: caller.ID,
	}
	if err := s.db.Create(&listing).Error; err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return &listing, nil
}

func (s *CatalogService) Get(id uint) (*models.Listing, error) {
	return findListing(s.db, id)
}

// List returns one page of listings, optionally filtered by exact genre.
func (s *CatalogService) List(page Page, genre string) ([]models.Listing, int64, error) {
	var listings []models.Listing
	var total int64

	query := s.db.Model(&models.Listing{})
	if genre != "" {
		query = query.Where("genre = ?", genre)
	}
	query = query.Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count games: %w", err)
	}
	if err := query.Order("id ASC").Limit(page.PerPage).Offset(page.Offset()).Find(&listings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list games: %w", err)
	}
	return listings, total, nil
}

// Update applies only the fields present in req.
func (s *CatalogService) Update(caller *models.Account, id uint, req *dto.UpdateGameRequest) (*models.Listing, error) {
	listing, err := findListing(s.db, id)
	if err != nil {
		return nil, err
	}
	if err := requireListingOwner(caller, listing); err != nil {
		return nil, err
	}

	changes, err := listingChanges(req)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return listing, nil
	}

	if err := s.db.Model(listing).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}
	return findListing(s.db, id)
}

// Delete removes the listing row only. Purchases, reviews and annex
// documents that reference it are left in place.
func (s *CatalogService) Delete(caller *models.Account, id uint) error {
	listing, err := findListing(s.db, id)
	if err != nil {
		return err
	}
	if err := requireListingOwner(caller, listing); err != nil {
		return err
	}
	if err := s.db.Delete(listing).Error; err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return nil
}

// RequireOwner loads the listing and applies the ownership gate.
func (s *CatalogService) RequireOwner(caller *models.Account, id uint) (*models.Listing, error) {
	listing, err := findListing(s.db, id)
	if err != nil {
		return nil, err
	}
	if err := requireListingOwner(caller, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func listingChanges(req *dto.UpdateGameRequest) (map[string]interface{}, error) {
	changes := make(map[string]interface{})
	if req.Title.Set {
		title := strings.TrimSpace(req.Title.Value)
		if req.Title.Null || title == "" {
			return nil, ErrTitleRequired
		}
		changes["title"] = title
	}
	if req.Description.Set {
		changes["description"] = req.Description.Value
	}
	if req.Genre.Set {
		changes["genre"] = req.Genre.Value
	}
	if req.Price.Set {
		if req.Price.Null || req.Price.Value < 0 {
			return nil, ErrInvalidPrice
		}
		changes["price"] = req.Price.Value
	}
	return changes, nil
}

func findListing(db *gorm.DB, id uint) (*models.Listing, error) {
	var listing models.Listing
	if err := db.First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	return &listing, nil
}
