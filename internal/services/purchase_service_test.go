package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/dto"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/models"
)

func TestCheckoutSnapshotsPrice(t *testing.T) {
	db := newTestDB(t)
	catalog := NewCatalogService(db)
	purchases := NewPurchaseService(db)
	dev := newAccount(t, db, models.RoleDeveloper)
	player := newAccount(t, db, models.RolePlayer)
	listing := newListing(t, db, dev, "Quest", 19.99)

	order, game, err := purchases.Checkout(player, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, 19.99, order.AmountPaid)
	assert.Equal(t, models.PurchaseCompleted, order.Status)
	assert.Equal(t, listing.ID, game.ID)

	_, err = catalog.Update(dev, listing.ID, &dto.UpdateGameRequest{Price: dto.Some(29.99)})
	require.NoError(t, err)

	view, err := purchases.GetOrder(player, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 19.99, view.AmountPaid)
	require.NotNil(t, view.Game)
	assert.Equal(t, 29.99, view.Game.Price)
}

func TestCheckoutTwiceConflicts(t *testing.T) {
	db := newTestDB(t)
	purchases := NewPurchaseService(db)
	dev := newAccount(t, db, models.RoleDeveloper)
	player := newAccount(t, db, models.RolePlayer)
	listing := newListing(t, db, dev, "Quest", 5)

	_, _, err := purchases.Checkout(player, listing.ID)
	require.NoError(t, err)
	_, _, err = purchases.Checkout(player, listing.ID)
	assert.ErrorIs(t, err, ErrAlreadyOwned)
	assertKind(t, KindConflict, err)

	_, _, err = purchases.Checkout(player, 12345)
	assert.ErrorIs(t, err, ErrGameNotFound)
	_, _, err = purchases.Checkout(player, 0)
	assertKind(t, KindValidation, err)
}

// The test DB has a single connection, so these checkouts serialize and the
// losers fail the ownership check. TestCheckoutLosesInsertRace covers the
// unique-index path.
func TestConcurrentCheckoutExactlyOneSucceeds(t *testing.T) {
	db := newTestDB(t)
	purchases := NewPurchaseService(db)
	dev := newAccount(t, db, models.RoleDeveloper)
	player := newAccount(t, db, models.RolePlayer)
	listing := newListing(t, db, dev, "Hot Release", 59.99)

	const n = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes, conflicts := 0, 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := purchases.Checkout(player, listing.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case KindOf(err) == KindConflict:
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, conflicts)

	var count int64
	db.Model(&models.Purchase{}).Where("buyer_id = ? AND listing_id = ?", player.ID, listing.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUniqueIndexRejectsDuplicateCompletedPurchase(t *testing.T) {
	db := newTestDB(t)
	player := newAccount(t, db, models.RolePlayer)

	first := models.Purchase{BuyerID: player.ID, ListingID: 1, AmountPaid: 1, Status: models.PurchaseCompleted}
	require.NoError(t, db.Create(&first).Error)
	dup := models.Purchase{BuyerID: player.ID, ListingID: 1, AmountPaid: 1, Status: models.PurchaseCompleted}
	err := db.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, isDuplicateKey(err))
}

// A competing purchase lands between the ownership check and the insert.
func TestCheckoutLosesInsertRace(t *testing.T) {
	db := newTestDB(t)
	purchases := NewPurchaseService(db)
	dev := newAccount(t, db, models.RoleDeveloper)
	player := newAccount(t, db, models.RolePlayer)
	listing := newListing(t, db, dev, "Contested", 19.99)

	var once sync.Once
	err := db.Callback().Create().Before("gorm:create").Register("test:competing_purchase", func(tx *gorm.DB) {
		if tx.Statement.Schema == nil || tx.Statement.Schema.Table != "purchases" {
			return
		}
		once.Do(func() {
			err := tx.Session(&gorm.Session{NewDB: true}).Exec(
				"INSERT INTO purchases (buyer_id, listing_id, amount_paid, status, created_at) VALUES (?, ?, ?, ?, ?)",
				player.ID, listing.ID, listing.Price, models.PurchaseCompleted, time.Now(),
			).Error
			require.NoError(t, err)
		})
	})
	require.NoError(t, err)

	_, _, err = purchases.Checkout(player, listing.ID)
	assert.ErrorIs(t, err, ErrAlreadyOwned)
	assertKind(t, KindConflict, err)
}

func TestOrdersAreCallerScoped(t *testing.T) {
	db := newTestDB(t)
	purchases := NewPurchaseService(db)
	dev := newAccount(t, db, models.RoleDeveloper)
	alice := newAccount(t, db, models.RolePlayer)
	bob := newAccount(t, db, models.RolePlayer)
	g1 := newListing(t, db, dev, "One", 1)
	g2 := newListing(t, db, dev, "Two", 2)

	order, _, err := purchases.Checkout(alice, g1.ID)
	require.NoError(t, err)
	_, _, err = purchases.Checkout(alice, g2.ID)
	require.NoError(t, err)
	_, _, err = purchases.Checkout(bob, g2.ID)
	require.NoError(t, err)

	_, err = purchases.GetOrder(bob, order.ID)
	assert.ErrorIs(t, err, ErrNotOrderOwner)
	_, err = purchases.GetOrder(alice, 999)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	history, err := purchases.History(alice)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, g1.ID, history[0].Game.ID)

	library, err := purchases.Library(bob)
	require.NoError(t, err)
	require.Len(t, library, 1)
	assert.Equal(t, "Two", library[0].Title)

	owned, err := purchases.Owns(bob.ID, g1.ID)
	require.NoError(t, err)
	assert.False(t, owned)
}
