package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/dto"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// AdminService holds moderation operations. Every method applies the admin
// role gate to caller.
type AdminService struct {
	db *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

func (s *AdminService) ListUsers(caller *models.Account, page Page, roleFilter string) ([]models.Account, int64, error) {
	if err := RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.Account{})
	if roleFilter != "" {
		role, ok := models.ParseRole(roleFilter)
		if !ok {
			return nil, 0, errInvalidRole()
		}
		query = query.Where("role = ?", role)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	var accounts []models.Account
	if err := query.Order("id ASC").Limit(page.PerPage).Offset(page.Offset()).Find(&accounts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return accounts, total, nil
}

// GetUser returns the account with the number of games it has created.
func (s *AdminService) GetUser(caller *models.Account, id uint) (*dto.UserDetailResponse, error) {
	if err := RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	account, err := s.findAccount(id)
	if err != nil {
		return nil, err
	}

	detail := &dto.UserDetailResponse{Account: *account}
	switch account.Role {
	case models.RoleDeveloper:
		if err := s.db.Model(&models.Listing{}).Where("developer_id = ?", id).Count(&detail.GamesCreated).Error; err != nil {
			return nil, fmt.Errorf("failed to count games: %w", err)
		}
	case models.RolePlayer, models.RoleAdmin:
		detail.GamesCreated = 0
	}
	return detail, nil
}

// ChangeRole sets id's role. An admin cannot change their own role.
func (s *AdminService) ChangeRole(caller *models.Account, id uint, roleName string) (*models.Account, error) {
	if err := RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	if caller.ID == id {
		return nil, ErrSelfRoleChange
	}
	role, ok := models.ParseRole(roleName)
	if !ok {
		return nil, errInvalidRole()
	}
	account, err := s.findAccount(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(account).Update("role", role).Error; err != nil {
		return nil, fmt.Errorf("failed to change role: %w", err)
	}
	account.Role = role
	return account, nil
}

// Suspend deactivates id. An admin cannot suspend themself.
func (s *AdminService) Suspend(caller *models.Account, id uint) error {
	if err := RequireRole(caller, models.RoleAdmin); err != nil {
		return err
	}
	if caller.ID == id {
		return ErrSelfSuspend
	}
	return s.setActive(id, false)
}

func (s *AdminService) Unsuspend(caller *models.Account, id uint) error {
	if err := RequireRole(caller, models.RoleAdmin); err != nil {
		return err
	}
	return s.setActive(id, true)
}

func (s *AdminService) ListGames(caller *models.Account, page Page) ([]models.Listing, int64, error) {
	if err := RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, 0, err
	}
	query := s.db.Model(&models.Listing{}).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count games: %w", err)
	}
	var listings []models.Listing
	if err := query.Order("id ASC").Limit(page.PerPage).Offset(page.Offset()).Find(&listings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list games: %w", err)
	}
	return listings, total, nil
}

// SetFeatured features or unfeatures any listing, bypassing the ownership gate.
func (s *AdminService) SetFeatured(caller *models.Account, gameID uint, featured bool) error {
	if err := RequireRole(caller, models.RoleAdmin); err != nil {
		return err
	}
	listing, err := findListing(s.db, gameID)
	if err != nil {
		return err
	}
	if err := s.db.Model(listing).Update("featured", featured).Error; err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}
	return nil
}

// RemoveGame deletes any listing. Like an owner delete, nothing cascades.
func (s *AdminService) RemoveGame(caller *models.Account, gameID uint) error {
	if err := RequireRole(caller, models.RoleAdmin); err != nil {
		return err
	}
	listing, err := findListing(s.db, gameID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(listing).Error; err != nil {
		return fmt.Errorf("failed to remove game: %w", err)
	}
	return nil
}

func (s *AdminService) Stats(caller *models.Account) (*dto.PlatformStats, error) {
	if err := RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}

	stats := &dto.PlatformStats{}
	counts := []struct {
		model interface{}
		where []interface{}
		dst   *int64
	}{
		{&models.Account{}, nil, &stats.TotalUsers},
		{&models.Listing{}, nil, &stats.TotalGames},
		{&models.Account{}, []interface{}{"role = ?", models.RolePlayer}, &stats.TotalPlayers},
		{&models.Account{}, []interface{}{"role = ?", models.RoleDeveloper}, &stats.TotalDevelopers},
		{&models.Account{}, []interface{}{"role = ?", models.RoleAdmin}, &stats.TotalAdmins},
		{&models.Purchase{}, []interface{}{"status = ?", models.PurchaseCompleted}, &stats.TotalPurchases},
		{&models.Review{}, nil, &stats.TotalReviews},
	}
	// Each count writes its own field, so they can run concurrently.
	var g errgroup.Group
	for _, c := range counts {
		c := c
		g.Go(func() error {
			q := s.db.Model(c.model)
			if len(c.where) > 0 {
				q = q.Where(c.where[0], c.where[1:]...)
			}
			return q.Count(c.dst).Error
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	return stats, nil
}

func (s *AdminService) setActive(id uint, active bool) error {
	account, err := s.findAccount(id)
	if err != nil {
		return err
	}
	if err := s.db.Model(account).Update("active", active).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (s *AdminService) findAccount(id uint) (*models.Account, error) {
	var account models.Account
	if err := s.db.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &account, nil
}

func errInvalidRole() error {
	names := make([]string, len(models.Roles))
	for i, r := range models.Roles {
		names[i] = r.String()
	}
	return Validationf("Role must be one of: %s", strings.Join(names, ", "))
}
