package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncapp "github.com/zndr1991-lab/GanteParts/internal/application/sync"
	"github.com/zndr1991-lab/GanteParts/internal/domain/marketplace"
	"github.com/zndr1991-lab/GanteParts/internal/infrastructure/auth"
	"github.com/zndr1991-lab/GanteParts/internal/infrastructure/config"
)

func newOAuthRouter(t *testing.T, userID uuid.UUID, api *stubAPI, credentials *stubCredentials) *gin.Engine {
	t.Helper()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-that-is-long-enough",
		AccessTokenExpiration: time.Hour,
		Issuer:                "ganteparts-test",
	})
	oauth := syncapp.NewOAuthService(syncapp.OAuthServiceConfig{
		Credentials: credentials,
		API:         api,
		Recorder:    nopRecorder{},
	})

	engine := gin.New()
	engine.Use(fakeAuth(userID))
	NewMarketplaceHandler(oauth, nil, jwtService, nil).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func TestOAuthFlowAuthorizeAndCallback(t *testing.T) {
	userID := uuid.New()
	credentials := &stubCredentials{}
	api := &stubAPI{
		exchangeFn: func(ctx context.Context, code string) (*marketplace.ExchangeResult, error) {
			assert.Equal(t, "the-code", code)
			return &marketplace.ExchangeResult{
				TokenGrant: marketplace.TokenGrant{
					AccessToken:  "access-token",
					RefreshToken: "refresh-token",
					ExpiresIn:    6 * time.Hour,
				},
				MeliUserID: "123456",
			}, nil
		},
	}
	engine := newOAuthRouter(t, userID, api, credentials)

	// Step 1: authorize redirects to the marketplace and parks the cookies.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/mercadolibre/auth", nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	location := w.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "https://auth.test/"))

	redirect, err := url.Parse(location)
	require.NoError(t, err)
	state := redirect.Query().Get("state")
	require.NotEmpty(t, state)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	// Step 2: the callback with matching state links the account.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet,
		"/api/v1/mercadolibre/callback?code=the-code&state="+state, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/inventory?mlLinked=1", w.Header().Get("Location"))
	require.NotNil(t, credentials.credential)
	assert.Equal(t, userID, credentials.credential.UserID)
	assert.Equal(t, "123456", credentials.credential.MeliUserID)
}

func TestOAuthCallbackStateMismatch(t *testing.T) {
	userID := uuid.New()
	credentials := &stubCredentials{}
	engine := newOAuthRouter(t, userID, &stubAPI{}, credentials)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/mercadolibre/auth", nil)
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusFound, w.Code)
	cookies := w.Result().Cookies()

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet,
		"/api/v1/mercadolibre/callback?code=the-code&state=attacker-controlled", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/inventory?mlLinked=0", w.Header().Get("Location"))
	assert.Nil(t, credentials.credential)
}

func TestOAuthCallbackWithoutCookies(t *testing.T) {
	engine := newOAuthRouter(t, uuid.New(), &stubAPI{}, &stubCredentials{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/mercadolibre/callback?code=the-code&state=whatever", nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/inventory?mlLinked=0", w.Header().Get("Location"))
}
