package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/config"
	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/memstore"
	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/model"
	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/service"
)

type testServer struct {
	router http.Handler
	auth   *service.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	db := memstore.New()
	photos := db.Photos("http://example.test")
	catalog, err := config.LoadCatalog("")
	require.NoError(t, err)

	auth := service.NewAuthService(db.Users(), nil, "handler-test-secret", time.Hour, logger)
	router := NewRouter(Deps{
		Listings:  service.NewListingService(db.Listings(), db.Images(), photos, logger),
		Leads:     service.NewLeadService(db.Leads(), db.Listings(), logger),
		Analytics: service.NewAnalyticsService(db.Leads(), db.Listings()),
		Auth:      auth,
		Photos:    photos,
		Catalog:   config.NewCatalogStore(catalog),
		Logger:    logger,
	})
	return &testServer{router: router, auth: auth}
}

func (s *testServer) token(t *testing.T, email string, admin bool) string {
	t.Helper()
	ctx := context.Background()
	creds := service.Credentials{Email: email, Password: "secret123"}
	if admin {
		_, err := s.auth.EnsureAdmin(ctx, creds)
		require.NoError(t, err)
	} else {
		_, err := s.auth.SignUp(ctx, creds)
		require.NoError(t, err)
	}
	res, err := s.auth.SignIn(ctx, creds)
	require.NoError(t, err)
	return res.Token
}

func (s *testServer) do(method, path, token, contentType string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) doJSON(method, path, token string, body any) *httptest.ResponseRecorder {
	var data []byte
	if body != nil {
		data, _ = json.Marshal(body)
	}
	return s.do(method, path, token, "application/json", data)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type file struct {
	name, contentType, body string
}

func listingForm(t *testing.T, fields map[string][]string, files ...file) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vals := range fields {
		for _, v := range vals {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	for _, f := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="images"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

func TestHealthAndFilters(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/health", "", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/filters", "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cat := decode[config.Catalog](t, w)
	assert.NotEmpty(t, cat.PriceBands)
	assert.Contains(t, cat.Neighborhoods, "Westlake")
}

func TestContactForm(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, "agent@example.com", true)

	w := s.doJSON(http.MethodPost, "/api/leads/contact", "", gin.H{"name": "", "email": "a@example.com", "message": "hi"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[struct {
		Fields map[string]string `json:"fields"`
	}](t, w)
	assert.Equal(t, "Name is required", body.Fields["name"])

	w = s.doJSON(http.MethodPost, "/api/leads/contact", "", gin.H{"name": "Jane", "email": "jane@example.com", "message": "hi"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodGet, "/api/admin/leads", admin, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	leads := decode[[]map[string]any](t, w)
	require.Len(t, leads, 1)
	assert.Equal(t, "general", leads[0]["kind"])
	assert.Nil(t, leads[0]["property_id"])
}

func TestAdminRoutesNeedAdmin(t *testing.T) {
	s := newTestServer(t)
	customer := s.token(t, "buyer@example.com", false)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/admin/listings", "", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/admin/listings", customer, "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/admin/leads", "garbage", "", nil).Code)
}

func TestListingLifecycle(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, "agent@example.com", true)

	body, ct := listingForm(t, map[string][]string{
		"title":    {"Hilltop Modern"},
		"address":  {"12 Westlake Ridge Rd, Austin"},
		"price":    {"1850000"},
		"bedrooms": {"4"},
		"status":   {"Active"},
	},
		file{"front.jpg", "image/jpeg", "jpeg-bytes"},
		file{"notes.txt", "text/plain", "not an image"},
		file{"back.png", "image/png", "png-bytes"},
	)
	w := s.do(http.MethodPost, "/api/admin/listings", admin, ct, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	saved := decode[SaveResponse](t, w)
	require.Len(t, saved.Images, 3)
	assert.NotEmpty(t, saved.Images[1].Error)
	require.Len(t, saved.Listing.Images, 2)
	assert.Equal(t, 0, saved.Listing.Images[0].DisplayOrder)
	assert.Equal(t, 1, saved.Listing.Images[1].DisplayOrder)
	id := saved.Listing.ID

	imageURL := saved.Listing.Images[0].URL
	w = s.do(http.MethodGet, strings.TrimPrefix(imageURL, "http://example.test"), "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, "jpeg-bytes", w.Body.String())

	w = s.do(http.MethodGet, "/api/listings?neighborhood=westlake&beds=3&price=1000000-2000000", "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]ListingResponse](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "12 Westlake Ridge Rd", list[0].Neighborhood)

	w = s.do(http.MethodGet, "/api/listings?beds=5", "", "", nil)
	assert.Empty(t, decode[[]ListingResponse](t, w))

	body, ct = listingForm(t, map[string][]string{
		"title":            {"Hilltop Modern"},
		"address":          {"12 Westlake Ridge Rd, Austin"},
		"price":            {"1750000"},
		"status":           {"Sold"},
		"remove_image_ids": {saved.Listing.Images[0].ID},
	})
	w = s.do(http.MethodPut, "/api/admin/listings/"+id, admin, ct, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[SaveResponse](t, w)
	assert.Len(t, updated.Listing.Images, 1)
	assert.False(t, updated.Listing.Bedrooms.Valid)

	w = s.do(http.MethodGet, "/api/admin/listings?status=Sold&search=ridge", admin, "", nil)
	assert.Len(t, decode[[]ListingResponse](t, w), 1)

	assert.Equal(t, http.StatusPreconditionRequired, s.do(http.MethodDelete, "/api/admin/listings/"+id, admin, "", nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/admin/listings/"+id+"?confirm=true", admin, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/listings/"+id, "", "", nil).Code)
}

func TestPocketListingsNeedSignIn(t *testing.T) {
	s := newTestServer(t)
	customer := s.token(t, "buyer@example.com", false)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/listings?pocket=true", "", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/listings?pocket=true", customer, "", nil).Code)
}

func TestShowingRequestUnknownListing(t *testing.T) {
	s := newTestServer(t)
	w := s.doJSON(http.MethodPost, "/api/listings/5b0f3c1e-8a3b-4c1e-9c55-2d9d7f1a0e11/showings", "",
		gin.H{"name": "Sam", "email": "sam@example.com", "phone": "5125550100"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyticsWindow(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, "agent@example.com", true)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/admin/analytics?days=14", admin, "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/admin/analytics?days=week", admin, "", nil).Code)

	w := s.do(http.MethodGet, "/api/admin/analytics?days=7", admin, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rep := decode[service.AnalyticsReport](t, w)
	assert.Equal(t, 7, rep.WindowDays)
	assert.Empty(t, rep.RecentLeads)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.doJSON(http.MethodPost, "/api/auth/signup", "", gin.H{"email": "new@example.com", "password": "secret123"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.doJSON(http.MethodPost, "/api/auth/signup", "", gin.H{"email": "new@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.doJSON(http.MethodPost, "/api/auth/signin", "", gin.H{"email": "new@example.com", "password": "nope123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid login credentials")

	w = s.doJSON(http.MethodPost, "/api/auth/signin", "", gin.H{"email": "new@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	token := decode[service.SignInResult](t, w).Token

	w = s.do(http.MethodGet, "/api/auth/me", token, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[struct {
		User model.User `json:"user"`
	}](t, w)
	assert.Equal(t, "new@example.com", me.User.Email)
	assert.Equal(t, model.RoleCustomer, me.User.Role)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodPost, "/api/auth/signout", token, "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/auth/me", token, "", nil).Code)
}

func TestNonFinitePriceRejected(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, "agent@example.com", true)

	for _, price := range []string{"NaN", "Inf", "Infinity"} {
		body, ct := listingForm(t, map[string][]string{
			"title": {"Villa"}, "address": {"1 Lake Dr, Westlake, Austin"}, "price": {price},
		})
		w := s.do(http.MethodPost, "/api/admin/listings", admin, ct, body)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, "price %q", price)
		assert.Contains(t, w.Body.String(), "Price must be a non-negative number")
	}

	w := s.do(http.MethodGet, "/api/listings?price=NaN-", "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]ListingResponse](t, w))
}
