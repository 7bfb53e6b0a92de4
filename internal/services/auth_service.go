package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/config"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/dto"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	minPasswordLength = 8
	// bcrypt rejects longer inputs.
	maxPasswordBytes = 72
)

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

// Register creates a player account. Emails are stored lowercased; usernames
// are compared case-sensitively.
func (s *AuthService) Register(req *dto.RegisterRequest) (*models.Account, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	if email == "" || username == "" || req.Password == "" {
		return nil, ErrFieldsRequired
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if len(req.Password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	if taken, err := s.exists("email = ?", email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}
	if taken, err := s.exists("username = ?", username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := models.Account{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		DisplayName:  username,
		Role:         models.RolePlayer,
		Active:       true,
	}
	if s.isBootstrapAdmin(email) {
		account.Role = models.RoleAdmin
	}

	if err := s.db.Create(&account).Error; err != nil {
		if isDuplicateKey(err) {
			if taken, _ := s.exists("email = ?", email); taken {
				return nil, ErrEmailTaken
			}
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return &account, nil
}

// Login verifies credentials and opens a session. The returned token is
// bound to the new session's id.
func (s *AuthService) Login(req *dto.LoginRequest) (*models.Account, string, error) {
	identifier := strings.TrimSpace(req.EmailOrUsername)
	if identifier == "" || req.Password == "" {
		return nil, "", Validationf("Email/username and password required")
	}

	var account models.Account
	err := s.db.Where("email = ? OR username = ?", strings.ToLower(identifier), identifier).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrAccountNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load account: %w", err)
	}

	if !VerifyPassword(account.PasswordHash, req.Password) {
		return nil, "", ErrWrongPassword
	}
	if !account.Active {
		return nil, "", ErrAccountSuspended
	}

	token, err := s.openSession(&account)
	if err != nil {
		return nil, "", err
	}
	return &account, token, nil
}

// Logout revokes the session.
func (s *AuthService) Logout(sessionID uuid.UUID) error {
	return s.db.Model(&models.Session{}).
		Where("id = ?", sessionID).
		Update("revoked", true).Error
}

// ResolveSession returns the account behind an unrevoked, unexpired session.
func (s *AuthService) ResolveSession(sessionID uuid.UUID, accountID uint) (*models.Account, error) {
	var session models.Session
	err := s.db.Where("id = ? AND account_id = ? AND revoked = ?", sessionID, accountID, false).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, ErrSessionInvalid
	}

	var account models.Account
	if err := s.db.First(&account, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if !account.Active {
		return nil, ErrAccountSuspended
	}
	return &account, nil
}

// PromoteBootstrapAdmins gives role=admin to existing accounts whose email is
// listed in ADMIN_EMAILS.
func (s *AuthService) PromoteBootstrapAdmins() (int64, error) {
	emails := s.cfg.AdminEmailList()
	if len(emails) == 0 {
		return 0, nil
	}
	result := s.db.Model(&models.Account{}).
		Where("email IN ? AND role <> ?", emails, models.RoleAdmin).
		Update("role", models.RoleAdmin)
	return result.RowsAffected, result.Error
}

// VerifyPassword reports whether password matches the stored bcrypt hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *AuthService) openSession(account *models.Account) (string, error) {
	now := time.Now()
	session := models.Session{
		ID:        uuid.New(),
		AccountID: account.ID,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}
	if err := s.db.Create(&session).Error; err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(account.ID), 10),
		"sid": session.ID.String(),
		"iat": now.Unix(),
		"exp": session.ExpiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.SessionSecret))
}

func (s *AuthService) exists(query string, arg interface{}) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Account{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check account: %w", err)
	}
	return count > 0, nil
}

func (s *AuthService) isBootstrapAdmin(email string) bool {
	for _, e := range s.cfg.AdminEmailList() {
		if e == email {
			return true
		}
	}
	return false
}
