package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/config"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/database"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/dto"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/models"
)

var accountSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.SessionSecret = "test-secret"
	cfg.SessionTTL = time.Hour
	return cfg
}

// newAccount inserts an active account with the given role directly.
func newAccount(t *testing.T, db *gorm.DB, role models.Role) *models.Account {
	t.Helper()
	n := accountSeq.Add(1)
	account := &models.Account{
		Email:        fmt.Sprintf("user%d@example.com", n),
		Username:     fmt.Sprintf("user%d", n),
		PasswordHash: "x",
		Role:         role,
		Active:       true,
	}
	require.NoError(t, db.Create(account).Error)
	return account
}

func newListing(t *testing.T, db *gorm.DB, dev *models.Account, title string, price float64) *models.Listing {
	t.Helper()
	listing, err := NewCatalogService(db).Create(dev, &dto.CreateGameRequest{Title: title, Genre: "rpg", Price: &price})
	require.NoError(t, err)
	return listing
}

func assertKind(t *testing.T, want Kind, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, KindOf(err), "error: %v", err)
}
