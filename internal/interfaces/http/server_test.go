package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/your-org/giftlist-backend/internal/config"
	"github.com/your-org/giftlist-backend/internal/domain/wishlist"
	"github.com/your-org/giftlist-backend/internal/infrastructure/database/memory"
	"github.com/your-org/giftlist-backend/internal/infrastructure/metrics"
	apihttp "github.com/your-org/giftlist-backend/internal/interfaces/http"
	"github.com/your-org/giftlist-backend/internal/pkg/auth"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type api struct {
	t       *testing.T
	handler http.Handler
	jwt     *auth.JWTManager
	clock   *clock
}

type response struct {
	Code    int
	Header  http.Header
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Kind    string          `json:"kind"`
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.FromEnv()
	cfg.App.Environment = "test"
	cfg.Security.RateLimitPerMinute = 0
	cfg.Sharing.BaseURL = "https://gifts.example.com"

	logger, _ := test.NewNullLogger()
	clk := &clock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}

	services := wishlist.NewServices(memory.NewStore(),
		wishlist.WithLogger(logger),
		wishlist.WithClock(clk.Now),
		wishlist.WithShareBaseURL(cfg.Sharing.BaseURL),
		wishlist.WithPasswordHasher(auth.NewPasswordManager(bcrypt.MinCost)),
	)

	jwt := auth.NewJWTManager(cfg)
	server := apihttp.NewServer(cfg, logger, apihttp.Dependencies{
		Services:  services,
		Validator: jwt,
		Metrics:   metrics.New(),
	})

	return &api{t: t, handler: server.Handler(), jwt: jwt, clock: clk}
}

func (a *api) token(userID uint, email string) string {
	a.t.Helper()
	token, err := a.jwt.GenerateAccessToken(userID, email, "")
	require.NoError(a.t, err)
	return token
}

func (a *api) do(method, path, token string, body interface{}, headers ...string) response {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	res := response{Code: rec.Code, Header: rec.Header()}
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(rec.Body.Bytes(), &res)
	}
	return res
}

func decode[T any](t *testing.T, res response) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(res.Data, &out), "body: %s", string(res.Data))
	return out
}

func TestHealthAndReadiness(t *testing.T) {
	a := newAPI(t)

	res := a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))

	res = a.do(http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, res.Code)

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "giftlist_http_requests_total")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newAPI(t)

	res := a.do(http.MethodGet, "/api/v1/wishlists", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, string(wishlist.KindUnauthorized), res.Kind)

	res = a.do(http.MethodGet, "/api/v1/wishlists", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestCreateAndFetchWishlist(t *testing.T) {
	a := newAPI(t)
	owner := a.token(1, "owner@example.com")

	res := a.do(http.MethodPost, "/api/v1/wishlists", owner, gin.H{"name": ""})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, string(wishlist.KindValidation), res.Kind)

	res = a.do(http.MethodPost, "/api/v1/wishlists", owner, gin.H{"name": "Birthday", "description": "turning 30"})
	require.Equal(t, http.StatusCreated, res.Code)
	created := decode[wishlist.Wishlist](t, res)
	assert.EqualValues(t, 1, created.OwnerID)
	assert.True(t, created.Settings.AllowComments)

	res = a.do(http.MethodGet, fmt.Sprintf("/api/v1/wishlists/%d", created.ID), owner, nil)
	require.Equal(t, http.StatusOK, res.Code)
	detail := decode[wishlist.WishlistDetail](t, res)
	assert.Equal(t, "Birthday", detail.Wishlist.Name)

	res = a.do(http.MethodGet, "/api/v1/wishlists/abc", owner, nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = a.do(http.MethodGet, "/api/v1/wishlists/999", owner, nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, string(wishlist.KindNotFound), res.Kind)

	stranger := a.token(99, "x@example.com")
	res = a.do(http.MethodGet, fmt.Sprintf("/api/v1/wishlists/%d", created.ID), stranger, nil)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = a.do(http.MethodDelete, fmt.Sprintf("/api/v1/wishlists/%d", created.ID), owner, nil)
	assert.Equal(t, http.StatusOK, res.Code)
	res = a.do(http.MethodGet, fmt.Sprintf("/api/v1/wishlists/%d", created.ID), owner, nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestInvitedContributorReservesOverHTTP(t *testing.T) {
	a := newAPI(t)
	owner := a.token(1, "owner@example.com")
	invitee := a.token(2, "u2@example.com")
	stranger := a.token(99, "x@example.com")
	anonymous := a.token(98, "")

	res := a.do(http.MethodPost, "/api/v1/wishlists", owner, gin.H{"name": "Wedding", "is_collaborative": true})
	require.Equal(t, http.StatusCreated, res.Code)
	w := decode[wishlist.Wishlist](t, res)
	base := fmt.Sprintf("/api/v1/wishlists/%d", w.ID)

	res = a.do(http.MethodPost, base+"/items", owner, gin.H{"title": "Stand mixer", "price": 50})
	require.Equal(t, http.StatusCreated, res.Code)
	item := decode[wishlist.Item](t, res)
	assert.Equal(t, wishlist.ItemStatusAvailable, item.Status)

	res = a.do(http.MethodPost, base+"/invite", owner, gin.H{"email": "u2@example.com", "role": "contributor"})
	require.Equal(t, http.StatusCreated, res.Code)
	inv := decode[wishlist.Invitation](t, res)

	res = a.do(http.MethodGet, "/api/v1/wishlist-invitations", invitee, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Len(t, decode[[]wishlist.Invitation](t, res), 1)

	res = a.do(http.MethodPut, fmt.Sprintf("/api/v1/wishlist-invitations/%d/accept", inv.ID), stranger, nil)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = a.do(http.MethodPut, fmt.Sprintf("/api/v1/wishlist-invitations/%d/accept", inv.ID), anonymous, nil)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = a.do(http.MethodPut, fmt.Sprintf("/api/v1/wishlist-invitations/%d/accept", inv.ID), invitee, nil)
	require.Equal(t, http.StatusOK, res.Code)
	collaborator := decode[wishlist.Collaborator](t, res)
	assert.Equal(t, wishlist.RoleContributor, collaborator.Role)

	res = a.do(http.MethodPut, fmt.Sprintf("%s/items/%d/reserve", base, item.ID), invitee, nil)
	require.Equal(t, http.StatusOK, res.Code)
	reserved := decode[wishlist.Item](t, res)
	assert.Equal(t, wishlist.ItemStatusReserved, reserved.Status)

	res = a.do(http.MethodPut, fmt.Sprintf("%s/items/%d/reserve", base, item.ID), stranger, nil)
	assert.Equal(t, http.StatusConflict, res.Code)
	assert.Equal(t, string(wishlist.KindConflict), res.Kind)

	res = a.do(http.MethodGet, base+"/activity?limit=2", owner, nil)
	require.Equal(t, http.StatusOK, res.Code)
	entries := decode[[]wishlist.ActivityEntry](t, res)
	require.Len(t, entries, 2)
	assert.Equal(t, wishlist.VerbReserved, entries[0].Verb)

	res = a.do(http.MethodGet, base+"/stats", invitee, nil)
	require.Equal(t, http.StatusOK, res.Code)
	stats := decode[wishlist.WishlistStats](t, res)
	assert.Equal(t, 1, stats.ReservedItems)
}

func TestPasswordProtectedShareOverHTTP(t *testing.T) {
	a := newAPI(t)
	owner := a.token(1, "owner@example.com")

	res := a.do(http.MethodPost, "/api/v1/wishlists", owner, gin.H{"name": "Housewarming"})
	require.Equal(t, http.StatusCreated, res.Code)
	w := decode[wishlist.Wishlist](t, res)
	base := fmt.Sprintf("/api/v1/wishlists/%d", w.ID)

	res = a.do(http.MethodPost, base+"/share", owner, gin.H{"share_type": "private", "password": "abc"})
	require.Equal(t, http.StatusCreated, res.Code)
	share := decode[struct {
		ShareCode string `json:"share_code"`
		ShareURL  string `json:"share_url"`
	}](t, res)
	require.NotEmpty(t, share.ShareCode)
	assert.Equal(t, "https://gifts.example.com/wishlists/public/"+share.ShareCode, share.ShareURL)

	public := "/api/v1/wishlists/public/" + share.ShareCode

	res = a.do(http.MethodGet, public, "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = a.do(http.MethodGet, public, "", nil, "X-Share-Password", "abc")
	require.Equal(t, http.StatusOK, res.Code)
	view := decode[wishlist.PublicWishlist](t, res)
	assert.EqualValues(t, 1, view.ViewCount)
	assert.Equal(t, "Housewarming", view.Name)

	res = a.do(http.MethodPost, public, "", gin.H{"password": "abc"})
	require.Equal(t, http.StatusOK, res.Code)
	assert.EqualValues(t, 2, decode[wishlist.PublicWishlist](t, res).ViewCount)

	res = a.do(http.MethodPost, public, "", gin.H{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = a.do(http.MethodDelete, base+"/share?type=private", owner, nil)
	require.Equal(t, http.StatusOK, res.Code)

	res = a.do(http.MethodGet, public, "", nil, "X-Share-Password", "abc")
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = a.do(http.MethodDelete, base+"/share", owner, nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestExpiredShareIsGone(t *testing.T) {
	a := newAPI(t)
	owner := a.token(1, "owner@example.com")

	res := a.do(http.MethodPost, "/api/v1/wishlists", owner, gin.H{"name": "Trip"})
	require.Equal(t, http.StatusCreated, res.Code)
	w := decode[wishlist.Wishlist](t, res)

	expiresAt := a.clock.Now().Add(time.Hour)
	res = a.do(http.MethodPost, fmt.Sprintf("/api/v1/wishlists/%d/share", w.ID), owner, gin.H{"share_type": "public", "expires_at": expiresAt})
	require.Equal(t, http.StatusCreated, res.Code)
	code := decode[struct {
		ShareCode string `json:"share_code"`
	}](t, res).ShareCode

	a.clock.Advance(2 * time.Hour)
	res = a.do(http.MethodGet, "/api/v1/wishlists/public/"+code, "", nil)
	assert.Equal(t, http.StatusGone, res.Code)
	assert.Equal(t, string(wishlist.KindExpired), res.Kind)
}

func TestShareCodeClaimOverHTTP(t *testing.T) {
	a := newAPI(t)
	owner := a.token(1, "owner@example.com")
	friend := a.token(5, "friend@example.com")

	res := a.do(http.MethodPost, "/api/v1/wishlists", owner, gin.H{"name": "Baby shower"})
	require.Equal(t, http.StatusCreated, res.Code)
	w := decode[wishlist.Wishlist](t, res)
	base := fmt.Sprintf("/api/v1/wishlists/%d", w.ID)

	res = a.do(http.MethodPost, base+"/items", owner, gin.H{"title": "Stroller", "price": 300})
	require.Equal(t, http.StatusCreated, res.Code)
	item := decode[wishlist.Item](t, res)

	res = a.do(http.MethodPost, base+"/share", owner, gin.H{"share_type": "public"})
	require.Equal(t, http.StatusCreated, res.Code)
	code := decode[struct {
		ShareCode string `json:"share_code"`
	}](t, res).ShareCode

	claim := fmt.Sprintf("%s/items/%d/purchase", base, item.ID)
	res = a.do(http.MethodPut, claim, friend, nil)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = a.do(http.MethodPut, claim, friend, nil, "X-Share-Code", code)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, wishlist.ItemStatusPurchased, decode[wishlist.Item](t, res).Status)
}

func TestCommentsOverHTTP(t *testing.T) {
	a := newAPI(t)
	owner := a.token(1, "owner@example.com")
	guest := a.token(2, "guest@example.com")

	res := a.do(http.MethodPost, "/api/v1/wishlists", owner, gin.H{"name": "Party", "is_collaborative": true})
	require.Equal(t, http.StatusCreated, res.Code)
	w := decode[wishlist.Wishlist](t, res)
	base := fmt.Sprintf("/api/v1/wishlists/%d", w.ID)

	res = a.do(http.MethodPost, base+"/collaborators", owner, gin.H{"user_id": 2, "role": "viewer"})
	require.Equal(t, http.StatusCreated, res.Code)

	res = a.do(http.MethodPost, base+"/items", owner, gin.H{"title": "Speaker"})
	require.Equal(t, http.StatusCreated, res.Code)
	item := decode[wishlist.Item](t, res)
	comments := fmt.Sprintf("/api/v1/wishlist-items/%d/comments", item.ID)

	res = a.do(http.MethodPost, comments, guest, gin.H{"message": "Got it covered"})
	require.Equal(t, http.StatusCreated, res.Code)
	comment := decode[wishlist.Comment](t, res)

	res = a.do(http.MethodGet, comments, owner, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Len(t, decode[[]wishlist.Comment](t, res), 1)

	res = a.do(http.MethodDelete, fmt.Sprintf("%s/%d", comments, comment.ID), owner, nil)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = a.do(http.MethodDelete, fmt.Sprintf("%s/%d", comments, comment.ID), guest, nil)
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestCollaboratorRoleManagementOverHTTP(t *testing.T) {
	a := newAPI(t)
	owner := a.token(1, "owner@example.com")
	admin := a.token(2, "admin@example.com")

	res := a.do(http.MethodPost, "/api/v1/wishlists", owner, gin.H{"name": "Team gifts", "is_collaborative": true})
	require.Equal(t, http.StatusCreated, res.Code)
	w := decode[wishlist.Wishlist](t, res)
	base := fmt.Sprintf("/api/v1/wishlists/%d", w.ID)

	res = a.do(http.MethodPost, base+"/collaborators", owner, gin.H{"user_id": 2, "role": "admin"})
	require.Equal(t, http.StatusCreated, res.Code)
	adminRow := decode[wishlist.Collaborator](t, res)

	res = a.do(http.MethodPost, base+"/collaborators", owner, gin.H{"user_id": 3, "role": "viewer"})
	require.Equal(t, http.StatusCreated, res.Code)
	viewerRow := decode[wishlist.Collaborator](t, res)

	res = a.do(http.MethodPost, base+"/collaborators", owner, gin.H{"user_id": 4, "role": "emperor"})
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = a.do(http.MethodPut, fmt.Sprintf("%s/collaborators/%d", base, viewerRow.ID), admin, gin.H{"role": "contributor"})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, wishlist.RoleContributor, decode[wishlist.Collaborator](t, res).Role)

	res = a.do(http.MethodDelete, fmt.Sprintf("%s/collaborators/%d", base, adminRow.ID), admin, nil)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = a.do(http.MethodGet, "/api/v1/wishlists/shared-with-me", admin, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Len(t, decode[[]wishlist.Wishlist](t, res), 1)

	res = a.do(http.MethodDelete, fmt.Sprintf("%s/collaborators/%d", base, adminRow.ID), owner, nil)
	assert.Equal(t, http.StatusOK, res.Code)
}
