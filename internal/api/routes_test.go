package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantmatch-backend-go/internal/config"
	"grantmatch-backend-go/internal/core"
	"grantmatch-backend-go/internal/crypto"
	"grantmatch-backend-go/internal/db"
	"grantmatch-backend-go/internal/logger"
	"grantmatch-backend-go/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router   *gin.Engine
	accounts db.AccountRepository
	catalog  db.Catalog
	tokens   *crypto.TokenIssuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.NewTest(t)
	tokens, err := crypto.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	accounts := db.NewMemoryAccountRepository()
	startups := db.NewMemoryStartupRepository()
	tracking := db.NewMemoryTrackingRepository()
	catalogRepo := db.NewMemoryCatalogRepository()
	matches := db.NewMemoryMatchRepository()
	notes := db.NewMemoryNotificationRepository()

	catalog := core.NewCatalogService(catalogRepo, nil, 0, log)
	syncer := core.NewTierSynchronizer(accounts, startups, log)
	notifications := core.NewNotificationService(notes, core.NotificationDelivery{}, log)
	accountSvc := core.NewAccountService(accounts, tokens, syncer, notifications, log)

	svc := Services{
		Accounts:      accountSvc,
		Screening:     core.NewScreeningService(accounts, startups, matches, catalog, core.NewRanker(nil, time.Second, 0, log), syncer, log),
		Catalog:       catalog,
		Matches:       core.NewMatchService(matches, catalog),
		Coupons:       core.NewCouponService(catalogRepo, accounts, syncer, notifications, log),
		Startups:      core.NewStartupService(startups),
		Tracking:      core.NewTrackingService(tracking, startups, accounts, catalog, notifications, false, log),
		Notifications: notifications,
		Stats:         core.NewStatsService(accounts, startups, tracking, matches, catalog),
	}

	router := gin.New()
	SetupRoutes(router, &config.Config{UploadDir: t.TempDir()}, log, tokens, svc)
	return &testServer{router: router, accounts: accounts, catalog: catalogRepo, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// staff creates an account with tier directly and returns it with a token.
func (s *testServer) staff(t *testing.T, name, email string, tier models.Tier) (*models.Account, string) {
	t.Helper()
	a := &models.Account{Name: name, Email: email, Tier: tier}
	require.NoError(t, s.accounts.Create(context.Background(), a))
	token, err := s.tokens.Issue(a.ID, a.Email)
	require.NoError(t, err)
	return a, token
}

func (s *testServer) register(t *testing.T, name, email string) (string, string) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", models.RegisterRequest{Name: name, Email: email, Password: "hunter22"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res struct {
		Token string         `json:"token"`
		User  models.Account `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res.User.ID, res.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

var screeningBody = models.ScreeningAnswers{
	StartupName:         "Acme Pay",
	FounderName:         "Ada",
	EntityType:          "Pvt Ltd",
	Location:            "Pune",
	Industry:            "Fintech",
	Description:         "Payments",
	ContactEmail:        "founder@acme.test",
	ContactPhone:        "123",
	Stage:               "Seed",
	Stability:           "Stable",
	Demographic:         "Women-led",
	PastGrantExperience: "No",
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "UP")

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	id, token := s.register(t, "Ada", "ada@acme.test")

	w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", models.RegisterRequest{Name: "Ada", Email: "ADA@acme.test", Password: "hunter22"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"name": "Bo", "email": "not-an-email", "password": "hunter22"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{Email: "ada@acme.test", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{Email: "ada@acme.test", Password: "hunter22"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me models.Account
	decode(t, w, &me)
	assert.Equal(t, id, me.ID)
	assert.Equal(t, models.TierFree, me.Tier)
	assert.NotContains(t, w.Body.String(), "password")

	w = s.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestScreeningMatchesAndCoupon(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	for i := 1; i <= 12; i++ {
		_, err := s.catalog.CreateGrant(ctx, models.Grant{Name: "Fund", Sector: "Fintech"}, i == 2)
		require.NoError(t, err)
	}
	require.NoError(t, s.catalog.PutCoupon(ctx, models.Coupon{Code: "GRANT199", Active: true, Tier: models.TierPremium}))
	_, token := s.register(t, "Ada", "ada@acme.test")

	w := s.do(t, http.MethodGet, "/api/v1/startups/my", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/screening", token, screeningBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res core.ScreeningResult
	decode(t, w, &res)
	assert.Equal(t, 10, res.MatchesFound)

	w = s.do(t, http.MethodGet, "/api/v1/matches", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list core.MatchList
	decode(t, w, &list)
	require.Len(t, list.Grants, 3)
	assert.True(t, list.Grants[1].SoftApproval)

	w = s.do(t, http.MethodPost, "/api/v1/coupons/redeem", token, models.RedeemCouponRequest{Code: "grant199"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/matches", token, nil)
	decode(t, w, &list)
	assert.Len(t, list.Grants, 10)

	w = s.do(t, http.MethodGet, "/api/v1/startups/my", token, nil)
	var st models.Startup
	decode(t, w, &st)
	assert.Equal(t, models.TierPremium, st.Tier)

	w = s.do(t, http.MethodPost, "/api/v1/coupons/redeem", token, models.RedeemCouponRequest{Code: "bogus"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/notifications/my", token, nil)
	var notes []models.Notification
	decode(t, w, &notes)
	require.Len(t, notes, 1)

	w = s.do(t, http.MethodPost, "/api/v1/notifications/"+notes[0].ID+"/read", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats core.PublicStats
	decode(t, w, &stats)
	assert.Equal(t, 1, stats.TotalStartups)
	assert.Equal(t, 12, stats.TotalGrants)
	assert.Equal(t, 10, stats.ActiveMatches)
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.staff(t, "Root", "root@acme.test", models.TierAdmin)
	_, incubatorToken := s.staff(t, "Ina", "ina@acme.test", models.TierIncubationAdmin)
	_, analystToken := s.staff(t, "Vera", "vera@acme.test", models.TierVentureAnalyst)
	founderID, founderToken := s.register(t, "Ada", "ada@acme.test")

	grant := models.CreateGrantRequest{Name: "New Fund", Sector: "Health", SoftApproval: true}
	w := s.do(t, http.MethodPost, "/api/v1/admin/grants", founderToken, grant)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/admin/grants", adminToken, grant)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.GrantView
	decode(t, w, &created)
	assert.Equal(t, "1", created.ID)
	assert.True(t, created.SoftApproval)

	w = s.do(t, http.MethodGet, "/api/v1/grants", founderToken, nil)
	var grants []models.GrantView
	decode(t, w, &grants)
	require.Len(t, grants, 1)
	assert.True(t, grants[0].SoftApproval)

	w = s.do(t, http.MethodGet, "/api/v1/admin/stats", incubatorToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, "/api/v1/admin/stats", analystToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/users/"+founderID+"/tier", analystToken, models.ChangeTierRequest{Tier: "expert"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(t, http.MethodPut, "/api/v1/users/"+founderID+"/tier", adminToken, models.ChangeTierRequest{Tier: "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodPut, "/api/v1/users/"+founderID+"/tier", incubatorToken, models.ChangeTierRequest{Tier: "premium"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodPut, "/api/v1/users/missing/tier", adminToken, models.ChangeTierRequest{Tier: "premium"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/startups", founderToken, nil)
	assert.Equal(t, http.StatusOK, w.Code, "founder is expert now")
	w = s.do(t, http.MethodGet, "/api/v1/startups", analystToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTrackingRoutes(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, s.catalog.PutGrant(ctx, models.Grant{ID: "009", Name: "Seed Fund"}))

	_, analystToken := s.staff(t, "Vera", "vera@acme.test", models.TierVentureAnalyst)
	_, otherToken := s.staff(t, "Otto", "otto@acme.test", models.TierVentureAnalyst)
	founderID, founderToken := s.register(t, "Ada", "ada@acme.test")
	w := s.do(t, http.MethodPost, "/api/v1/screening", founderToken, screeningBody)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/tracking/startups", analystToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String(), "free startups are hidden from analysts")

	w = s.do(t, http.MethodPost, "/api/v1/tracking", founderToken, models.CreateTrackingRequest{StartupID: founderID, GrantID: "9"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/tracking", analystToken, models.CreateTrackingRequest{StartupID: founderID, GrantID: "9", Status: "Applied"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var entry models.TrackingEntry
	decode(t, w, &entry)
	assert.NotEmpty(t, entry.AppliedDate)

	w = s.do(t, http.MethodPost, "/api/v1/tracking", analystToken, models.CreateTrackingRequest{StartupID: founderID, GrantID: "009"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/tracking/"+entry.ID, analystToken, map[string]string{"status": "Bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodPut, "/api/v1/tracking/"+entry.ID, otherToken, map[string]string{"notes": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodPut, "/api/v1/tracking/"+entry.ID, analystToken, map[string]string{"status": "Approved"})
	require.Equal(t, http.StatusOK, w.Code)

	// Screenshot upload.
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "proof.JPG")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tracking/"+entry.ID+"/screenshot", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+analystToken)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var uploaded struct {
		Data models.TrackingEntry `json:"data"`
	}
	decode(t, rec, &uploaded)
	assert.Regexp(t, `^`+entry.ID+`_\d{8}_\d{6}\.jpg$`, filepath.Base(uploaded.Data.ScreenshotPath))
	_, err = os.Stat(uploaded.Data.ScreenshotPath)
	assert.NoError(t, err)

	// Owner view.
	w = s.do(t, http.MethodGet, "/api/v1/startups/"+founderID+"/tracking", founderToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var views []models.TrackingView
	decode(t, w, &views)
	require.Len(t, views, 1)
	assert.Equal(t, "Vera", views[0].AnalystName)
	assert.Equal(t, "Seed Fund", views[0].GrantName)
	assert.Equal(t, models.StatusApproved, views[0].Status)

	w = s.do(t, http.MethodGet, "/api/v1/startups/"+founderID+"/tracking", analystToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/tracking", otherToken, nil)
	assert.Equal(t, "[]", w.Body.String())
	w = s.do(t, http.MethodGet, "/api/v1/tracking/startups/"+founderID, analystToken, nil)
	decode(t, w, &views)
	assert.Len(t, views, 1)

	w = s.do(t, http.MethodDelete, "/api/v1/tracking/"+entry.ID, analystToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodDelete, "/api/v1/tracking/"+entry.ID, analystToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
