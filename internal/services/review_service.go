package services

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/dto"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/models"
	"gorm.io/gorm"
)

// Review list orderings.
const (
	SortRecent  = "recent"
	SortHelpful = "helpful"
	SortRating  = "rating"
)

type ReviewService struct {
	db        *gorm.DB
	purchases *PurchaseService
	filter    *ContentFilter
}

// NewReviewService builds the review store. filter may be nil.
func NewReviewService(db *gorm.DB, purchases *PurchaseService, filter *ContentFilter) *ReviewService {
	return &ReviewService{db: db, purchases: purchases, filter: filter}
}

// Create adds caller's review of gameID. Caller must own the game and may
// review it once.
func (s *ReviewService) Create(caller *models.Account, gameID uint, req *dto.CreateReviewRequest) (*models.Review, error) {
	if caller == nil {
		return nil, ErrSessionInvalid
	}
	owned, err := s.purchases.Owns(caller.ID, gameID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, ErrMustOwnGame
	}

	var count int64
	if err := s.db.Model(&models.Review{}).Where("listing_id = ? AND author_id = ?", gameID, caller.ID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check reviews: %w", err)
	}
	if count > 0 {
		return nil, ErrAlreadyReviewed
	}

	if req.Rating == nil {
		return nil, ErrRatingRequired
	}
	if err := validateRating(*req.Rating); err != nil {
		return nil, err
	}

	review := models.Review{
		ListingID: gameID,
		AuthorID:  caller.ID,
		Rating:    *req.Rating,
		Title:     req.Title,
		Content:   req.Content,
	}
	if err := s.db.Create(&review).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	s.flag(caller, &review, review.Title, review.Content)
	return &review, nil
}

// List returns one page of gameID's reviews and the mean rating over all of
// them, rounded to one decimal.
func (s *ReviewService) List(gameID uint, sort string, page Page) ([]models.Review, int64, float64, error) {
	query := s.db.Model(&models.Review{}).Where("listing_id = ?", gameID).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	var reviews []models.Review
	err := query.Order(reviewOrder(sort)).Limit(page.PerPage).Offset(page.Offset()).Find(&reviews).Error
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to list reviews: %w", err)
	}

	avg, err := s.averageRating(gameID)
	if err != nil {
		return nil, 0, 0, err
	}
	return reviews, total, avg, nil
}

func (s *ReviewService) Update(caller *models.Account, reviewID uint, req *dto.UpdateReviewRequest) (*models.Review, error) {
	review, err := s.find(reviewID)
	if err != nil {
		return nil, err
	}
	if err := requireReviewAuthor(caller, review); err != nil {
		return nil, err
	}

	changes := make(map[string]interface{})
	if req.Rating.Set {
		if req.Rating.Null {
			return nil, ErrRatingRequired
		}
		if err := validateRating(req.Rating.Value); err != nil {
			return nil, err
		}
		changes["rating"] = req.Rating.Value
	}
	if req.Title.Set {
		changes["title"] = req.Title.Value
	}
	if req.Content.Set {
		changes["content"] = req.Content.Value
	}
	if len(changes) == 0 {
		return review, nil
	}

	if err := s.db.Model(review).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	s.flag(caller, review, req.Title.Value, req.Content.Value)
	return s.find(reviewID)
}

func (s *ReviewService) Delete(caller *models.Account, reviewID uint) error {
	review, err := s.find(reviewID)
	if err != nil {
		return err
	}
	if err := requireReviewAuthor(caller, review); err != nil {
		return err
	}
	if err := s.db.Delete(review).Error; err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}

// MarkHelpful increments the helpful count in place. Any caller may call it
// any number of times.
func (s *ReviewService) MarkHelpful(reviewID uint) (int, error) {
	result := s.db.Model(&models.Review{}).
		Where("id = ?", reviewID).
		UpdateColumn("helpful_count", gorm.Expr("helpful_count + ?", 1))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark review helpful: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, ErrReviewNotFound
	}

	review, err := s.find(reviewID)
	if err != nil {
		return 0, err
	}
	return review.HelpfulCount, nil
}

func (s *ReviewService) averageRating(gameID uint) (float64, error) {
	var avg float64
	row := s.db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0)").
		Where("listing_id = ?", gameID).
		Row()
	if err := row.Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to average ratings: %w", err)
	}
	return math.Round(avg*10) / 10, nil
}

func (s *ReviewService) find(id uint) (*models.Review, error) {
	var review models.Review
	if err := s.db.First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to load review: %w", err)
	}
	return &review, nil
}

func reviewOrder(sort string) string {
	switch sort {
	case SortHelpful:
		return "helpful_count DESC, id DESC"
	case SortRating:
		return "rating DESC, id DESC"
	default:
		return "created_at DESC, id DESC"
	}
}

func validateRating(r int) error {
	if r < 1 || r > 5 {
		return ErrRatingRange
	}
	return nil
}

// flag logs and counts reviews whose text trips the content filter. The
// stored text is left as submitted.
func (s *ReviewService) flag(caller *models.Account, review *models.Review, texts ...string) {
	if !s.filter.Flagged(texts...) {
		return
	}
	metrics.RecordFlaggedReview()
	slog.Warn("review flagged by content filter",
		"action", "review_flagged",
		"review_id", review.ID,
		"game_id", review.ListingID,
		"account_id", caller.ID,
	)
}
