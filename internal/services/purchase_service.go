package services

import (
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/dto"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/models"
	"gorm.io/gorm"
)

// PurchaseService is the ownership ledger.
type PurchaseService struct {
	db *gorm.DB
}

func NewPurchaseService(db *gorm.DB) *PurchaseService {
	return &PurchaseService{db: db}
}

// Checkout records a completed purchase of gameID by caller at the listing's
// current price. The existence check and the insert share a transaction, and
// the (buyer, listing, status) unique index rejects a concurrent duplicate
// that slips past the check.
func (s *PurchaseService) Checkout(caller *models.Account, gameID uint) (*models.Purchase, *models.Listing, error) {
	if caller == nil {
		return nil, nil, ErrSessionInvalid
	}
	if gameID == 0 {
		return nil, nil, Validationf("game_id is required")
	}

	var purchase models.Purchase
	var listing *models.Listing
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		listing, err = findListing(tx, gameID)
		if err != nil {
			return err
		}

		owned, err := owns(tx, caller.ID, gameID)
		if err != nil {
			return err
		}
		if owned {
			return ErrAlreadyOwned
		}

		purchase = models.Purchase{
			BuyerID:    caller.ID,
			ListingID:  gameID,
			AmountPaid: listing.Price,
			Status:     models.PurchaseCompleted,
		}
		return tx.Create(&purchase).Error
	})
	if err != nil {
		if KindOf(err) != KindServer {
			return nil, nil, err
		}
		if isDuplicateKey(err) {
			return nil, nil, ErrAlreadyOwned
		}
		return nil, nil, fmt.Errorf("failed to complete checkout: %w", err)
	}
	return &purchase, listing, nil
}

// GetOrder returns one of caller's purchases with its listing.
func (s *PurchaseService) GetOrder(caller *models.Account, orderID uint) (*dto.OrderView, error) {
	var purchase models.Purchase
	if err := s.db.First(&purchase, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if caller == nil || purchase.BuyerID != caller.ID {
		return nil, ErrNotOrderOwner
	}

	views, err := s.attachListings([]models.Purchase{purchase})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// History returns caller's completed purchases, oldest first.
func (s *PurchaseService) History(caller *models.Account) ([]dto.OrderView, error) {
	purchases, err := s.completed(caller)
	if err != nil {
		return nil, err
	}
	return s.attachListings(purchases)
}

// Library returns the listings caller owns that still exist.
func (s *PurchaseService) Library(caller *models.Account) ([]models.Listing, error) {
	views, err := s.History(caller)
	if err != nil {
		return nil, err
	}
	games := make([]models.Listing, 0, len(views))
	for _, v := range views {
		if v.Game != nil {
			games = append(games, *v.Game)
		}
	}
	return games, nil
}

// Owns reports whether accountID holds a completed purchase of gameID.
func (s *PurchaseService) Owns(accountID, gameID uint) (bool, error) {
	return owns(s.db, accountID, gameID)
}

func (s *PurchaseService) completed(caller *models.Account) ([]models.Purchase, error) {
	if caller == nil {
		return nil, ErrSessionInvalid
	}
	var purchases []models.Purchase
	err := s.db.Where("buyer_id = ? AND status = ?", caller.ID, models.PurchaseCompleted).
		Order("created_at ASC, id ASC").
		Find(&purchases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load purchases: %w", err)
	}
	return purchases, nil
}

func (s *PurchaseService) attachListings(purchases []models.Purchase) ([]dto.OrderView, error) {
	ids := make([]uint, 0, len(purchases))
	for _, p := range purchases {
		ids = append(ids, p.ListingID)
	}

	byID := make(map[uint]models.Listing, len(ids))
	if len(ids) > 0 {
		var listings []models.Listing
		if err := s.db.Where("id IN ?", ids).Find(&listings).Error; err != nil {
			return nil, fmt.Errorf("failed to load games: %w", err)
		}
		for _, l := range listings {
			byID[l.ID] = l
		}
	}

	views := make([]dto.OrderView, len(purchases))
	for i, p := range purchases {
		views[i] = dto.OrderView{Purchase: p}
		if l, ok := byID[p.ListingID]; ok {
			l := l
			views[i].Game = &l
		}
	}
	return views, nil
}

func owns(db *gorm.DB, accountID, gameID uint) (bool, error) {
	var count int64
	err := db.Model(&models.Purchase{}).
		Where("buyer_id = ? AND listing_id = ? AND status = ?", accountID, gameID, models.PurchaseCompleted).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check ownership: %w", err)
	}
	return count > 0, nil
}
