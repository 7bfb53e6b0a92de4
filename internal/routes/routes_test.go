package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/annex"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/config"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/database"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/services"
)

const adminEmail = "root@example.com"

type testServer struct {
	app *fiber.App
	db  *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
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

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := config.Defaults()
	cfg.SessionSecret = "routes-test-secret"
	cfg.AdminEmails = adminEmail
	cfg.RateLimitMax = 0
	cfg.AuthRateLimitMax = 0

	authService := services.NewAuthService(db, cfg)
	catalog := services.NewCatalogService(db)
	purchases := services.NewPurchaseService(db)
	reviews := services.NewReviewService(db, purchases, services.NewContentFilter())
	annexService := services.NewAnnexService(annex.New(client), catalog)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Use(requestid.New())
	Setup(app, cfg, authService,
		handlers.NewAuthHandler(authService, cfg),
		handlers.NewHealthHandler(db, annexService),
		handlers.NewGameHandler(catalog, annexService),
		handlers.NewPurchaseHandler(purchases),
		handlers.NewReviewHandler(reviews),
		handlers.NewAdminHandler(services.NewAdminService(db)),
	)
	return &testServer{app: app, db: db}
}

type response struct {
	status  int
	body    map[string]interface{}
	cookies []*http.Cookie
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: token})
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := response{status: resp.StatusCode, cookies: resp.Cookies()}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out.body), string(raw))
	}
	return out
}

func (s *testServer) register(t *testing.T, email, username string) {
	t.Helper()
	r := s.do(t, http.MethodPost, "/auth/register", map[string]string{
		"email": email, "username": username, "password": "password1",
	}, "")
	require.Equal(t, http.StatusCreated, r.status, r.body)
}

// login returns the session cookie value.
func (s *testServer) login(t *testing.T, identifier string) string {
	t.Helper()
	r := s.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email_or_username": identifier, "password": "password1",
	}, "")
	require.Equal(t, http.StatusOK, r.status, r.body)
	for _, c := range r.cookies {
		if c.Name == "session" {
			assert.True(t, c.HttpOnly)
			return c.Value
		}
	}
	t.Fatal("login did not set the session cookie")
	return ""
}

func (s *testServer) signup(t *testing.T, email, username string) string {
	t.Helper()
	s.register(t, email, username)
	return s.login(t, username)
}

func id(body map[string]interface{}) float64 {
	v, _ := body["id"].(float64)
	return v
}

func path(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	r := s.do(t, http.MethodPost, "/auth/register", map[string]string{
		"email": "a@example.com", "username": "alice", "password": "pw",
	}, "")
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "Password must be at least 8 characters", r.body["error"])

	r = s.do(t, http.MethodPost, "/auth/register", map[string]string{
		"email": "A@Example.com", "username": "alice", "password": "password1",
	}, "")
	require.Equal(t, http.StatusCreated, r.status)
	user := r.body["user"].(map[string]interface{})
	assert.Equal(t, "a@example.com", user["email"])
	assert.Equal(t, "player", user["role"])
	assert.NotContains(t, user, "password_hash")

	r = s.do(t, http.MethodPost, "/auth/register", map[string]string{
		"email": "a@example.com", "username": "alice2", "password": "password1",
	}, "")
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "Email already registered", r.body["error"])

	r = s.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email_or_username": "alice", "password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, r.status)
	assert.Equal(t, "Wrong password", r.body["error"])

	r = s.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email_or_username": "nobody", "password": "password1",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, r.status)
	assert.Equal(t, "User not found", r.body["error"])

	token := s.login(t, "A@EXAMPLE.COM")
	r = s.do(t, http.MethodGet, "/auth/profile", nil, token)
	assert.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "alice", r.body["username"])
}

func TestLogoutEndsSession(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "b@example.com", "bob")

	r := s.do(t, http.MethodPost, "/auth/logout", nil, token)
	assert.Equal(t, http.StatusOK, r.status)

	r = s.do(t, http.MethodGet, "/auth/profile", nil, token)
	assert.Equal(t, http.StatusUnauthorized, r.status)
	assert.NotEmpty(t, r.body["error"])
}

func TestBearerTokenAccepted(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "c@example.com", "carol")
	r := s.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email_or_username": "carol", "password": "password1",
	}, "")
	require.Equal(t, http.StatusOK, r.status)
	token := r.body["token"].(string)

	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	s := newTestServer(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/purchases/checkout"},
		{http.MethodGet, "/api/purchases/library"},
		{http.MethodPost, "/api/games"},
		{http.MethodGet, "/api/admin/stats"},
		{http.MethodGet, "/auth/profile"},
	} {
		r := s.do(t, tc.method, tc.path, map[string]int{"game_id": 1}, "")
		assert.Equal(t, http.StatusUnauthorized, r.status, tc.path)
		assert.IsType(t, "", r.body["error"], tc.path)
	}

	r := s.do(t, http.MethodGet, "/auth/profile", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, r.status)
}

func TestMarketplaceFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.signup(t, adminEmail, "root")
	dev := s.signup(t, "dev@example.com", "dev")
	player := s.signup(t, "p@example.com", "player")

	// A player cannot list games until an admin promotes them.
	r := s.do(t, http.MethodPost, "/api/games", map[string]interface{}{"title": "Nope"}, dev)
	assert.Equal(t, http.StatusForbidden, r.status)
	assert.Equal(t, "Only developers can create games", r.body["error"])

	r = s.do(t, http.MethodGet, "/api/admin/users?role=player", nil, admin)
	require.Equal(t, http.StatusOK, r.status)
	var devID float64
	for _, u := range r.body["users"].([]interface{}) {
		if u.(map[string]interface{})["username"] == "dev" {
			devID = id(u.(map[string]interface{}))
		}
	}
	require.NotZero(t, devID)

	r = s.do(t, http.MethodPut, path("/api/admin/users/%d/role", int(devID)), map[string]string{"role": "developer"}, admin)
	require.Equal(t, http.StatusOK, r.status, r.body)

	r = s.do(t, http.MethodPost, "/api/games", map[string]interface{}{
		"title": "Star Forge", "genre": "strategy", "price": 19.99,
	}, dev)
	require.Equal(t, http.StatusCreated, r.status, r.body)
	gameID := int(id(r.body))
	assert.Equal(t, false, r.body["is_featured"])

	r = s.do(t, http.MethodPut, path("/api/games/%d", gameID), map[string]interface{}{"price": 24.5}, dev)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "Star Forge", r.body["title"])
	assert.Equal(t, 24.5, r.body["price"])

	r = s.do(t, http.MethodPut, path("/api/games/%d", gameID), map[string]interface{}{"price": 1}, player)
	assert.Equal(t, http.StatusForbidden, r.status)

	r = s.do(t, http.MethodGet, "/api/games?genre=strategy", nil, "")
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, float64(1), r.body["total"])
	assert.Equal(t, float64(1), r.body["current_page"])

	// Checkout is once per buyer.
	r = s.do(t, http.MethodPost, "/api/purchases/checkout", map[string]int{"game_id": gameID}, player)
	require.Equal(t, http.StatusCreated, r.status, r.body)
	order := r.body["order"].(map[string]interface{})
	assert.Equal(t, 24.5, order["amount_paid"])
	orderID := int(id(order))

	r = s.do(t, http.MethodPost, "/api/purchases/checkout", map[string]int{"game_id": gameID}, player)
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "You already own this game", r.body["error"])

	r = s.do(t, http.MethodGet, path("/api/purchases/%d", orderID), nil, dev)
	assert.Equal(t, http.StatusForbidden, r.status)
	r = s.do(t, http.MethodGet, path("/api/purchases/%d", orderID), nil, player)
	assert.Equal(t, http.StatusOK, r.status)

	r = s.do(t, http.MethodGet, "/api/purchases/library", nil, player)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, float64(1), r.body["total"])

	// Reviews need ownership.
	r = s.do(t, http.MethodPost, path("/api/reviews/%d", gameID), map[string]interface{}{"rating": 5}, dev)
	assert.Equal(t, http.StatusForbidden, r.status)

	r = s.do(t, http.MethodPost, path("/api/reviews/%d", gameID), map[string]interface{}{"rating": 4, "title": "Solid"}, player)
	require.Equal(t, http.StatusCreated, r.status, r.body)
	reviewID := int(id(r.body))

	r = s.do(t, http.MethodPost, path("/api/reviews/%d/helpful", reviewID), nil, "")
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, float64(1), r.body["helpful_count"])

	r = s.do(t, http.MethodGet, path("/api/reviews/game/%d?per_page=1", gameID), nil, "")
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, 4.0, r.body["average_rating"])
	assert.Equal(t, float64(1), r.body["total"])

	// Stats see everything.
	r = s.do(t, http.MethodGet, "/api/admin/stats", nil, admin)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, float64(3), r.body["total_users"])
	assert.Equal(t, float64(1), r.body["total_purchases"])
	assert.Equal(t, float64(1), r.body["total_reviews"])
}

func TestAnnexRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := s.signup(t, adminEmail, "root")
	s.register(t, "dev@example.com", "dev")
	dev := s.login(t, "dev")

	r := s.do(t, http.MethodGet, "/api/admin/users?role=player", nil, admin)
	require.Equal(t, http.StatusOK, r.status)
	devID := int(id(r.body["users"].([]interface{})[0].(map[string]interface{})))
	r = s.do(t, http.MethodPut, path("/api/admin/users/%d/role", devID), map[string]string{"role": "developer"}, admin)
	require.Equal(t, http.StatusOK, r.status)

	r = s.do(t, http.MethodPost, "/api/games", map[string]interface{}{"title": "Tagged"}, dev)
	require.Equal(t, http.StatusCreated, r.status)
	gameID := int(id(r.body))

	r = s.do(t, http.MethodGet, path("/api/games/%d/analytics", gameID), nil, "")
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, float64(0), r.body["views"])

	for i := 0; i < 2; i++ {
		r = s.do(t, http.MethodPost, path("/api/games/%d/view", gameID), nil, "")
		require.Equal(t, http.StatusOK, r.status)
	}
	r = s.do(t, http.MethodGet, path("/api/games/%d/analytics", gameID), nil, "")
	assert.Equal(t, float64(2), r.body["views"])
	assert.Equal(t, float64(0), r.body["downloads"])

	r = s.do(t, http.MethodGet, path("/api/games/%d/metadata", gameID), nil, "")
	assert.Equal(t, http.StatusNotFound, r.status)
	assert.Equal(t, "No metadata found", r.body["error"])

	r = s.do(t, http.MethodPost, path("/api/games/%d/metadata", gameID), map[string]interface{}{
		"tags": []string{"Roguelike"}, "developer_notes": "beta",
	}, dev)
	require.Equal(t, http.StatusCreated, r.status, r.body)
	assert.Equal(t, true, r.body["stored"])

	r = s.do(t, http.MethodGet, path("/api/games/%d/metadata", gameID), nil, "")
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, []interface{}{"roguelike"}, r.body["tags"])

	r = s.do(t, http.MethodGet, "/api/games/search?tags=roguelike,puzzle", nil, "")
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, float64(1), r.body["total"])
}

func TestAdminGuards(t *testing.T) {
	s := newTestServer(t)
	admin := s.signup(t, adminEmail, "root")
	player := s.signup(t, "p@example.com", "player")

	r := s.do(t, http.MethodGet, "/api/admin/users", nil, player)
	assert.Equal(t, http.StatusForbidden, r.status)
	assert.Equal(t, "Admin access required", r.body["error"])

	r = s.do(t, http.MethodGet, "/auth/profile", nil, admin)
	require.Equal(t, http.StatusOK, r.status)
	adminID := int(id(r.body))

	r = s.do(t, http.MethodPut, path("/api/admin/users/%d/role", adminID), map[string]string{"role": "player"}, admin)
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "Cannot change your own role", r.body["error"])

	r = s.do(t, http.MethodPost, path("/api/admin/users/%d/suspend", adminID), nil, admin)
	assert.Equal(t, http.StatusBadRequest, r.status)

	r = s.do(t, http.MethodGet, "/api/admin/users/abc", nil, admin)
	assert.Equal(t, http.StatusBadRequest, r.status)
}

func TestSuspendedAccountIsLockedOut(t *testing.T) {
	s := newTestServer(t)
	admin := s.signup(t, adminEmail, "root")
	player := s.signup(t, "p@example.com", "player")

	r := s.do(t, http.MethodGet, "/auth/profile", nil, player)
	require.Equal(t, http.StatusOK, r.status)
	playerID := int(id(r.body))

	r = s.do(t, http.MethodPost, path("/api/admin/users/%d/suspend", playerID), nil, admin)
	require.Equal(t, http.StatusOK, r.status)

	r = s.do(t, http.MethodGet, "/auth/profile", nil, player)
	assert.Equal(t, http.StatusForbidden, r.status)
	assert.Equal(t, "Account suspended", r.body["error"])

	r = s.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email_or_username": "player", "password": "password1",
	}, "")
	assert.Equal(t, http.StatusForbidden, r.status)

	r = s.do(t, http.MethodPost, path("/api/admin/users/%d/unsuspend", playerID), nil, admin)
	require.Equal(t, http.StatusOK, r.status)
	r = s.do(t, http.MethodGet, "/auth/profile", nil, player)
	assert.Equal(t, http.StatusOK, r.status)
}

func TestHealthAndErrorShape(t *testing.T) {
	s := newTestServer(t)

	r := s.do(t, http.MethodGet, "/api/health", nil, "")
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "ok", r.body["status"])
	assert.Equal(t, "ok", r.body["db"])
	assert.Equal(t, "ok", r.body["annex"])

	r = s.do(t, http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, r.status)
	assert.IsType(t, "", r.body["error"])

	r = s.do(t, http.MethodGet, "/api/games/999", nil, "")
	assert.Equal(t, http.StatusNotFound, r.status)
	assert.Equal(t, "Game not found", r.body["error"])

	r = s.do(t, http.MethodGet, "/api/games/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, r.status)
}
