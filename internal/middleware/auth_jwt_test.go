package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"electrohub/internal/config"
	"electrohub/internal/domain/model"
	"electrohub/internal/middleware"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

const mwTestSecret = "mw_test_secret"

func mwConfig() config.Config {
	return config.Config{JWTSecret: mwTestSecret}
}

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(method, claims)
	s, err := tok.SignedString([]byte(secret))
	assert.NoError(t, err)
	return s
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":  "10",
		"role": string(model.RoleUser),
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(15 * time.Minute).Unix(),
	}
}

// AuthJWTを通してhandlerまで届くかを確認する
func runAuthJWT(t *testing.T, authz string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured echo.Context
	h := middleware.AuthJWT(mwConfig())(func(c echo.Context) error {
		captured = c
		return c.NoContent(http.StatusOK)
	})

	err := h(c)
	assert.NoError(t, err)
	return rec, captured
}

func TestAuthJWT_MissingHeader(t *testing.T) {
	rec, next := runAuthJWT(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, next)
}

func TestAuthJWT_NotBearer(t *testing.T) {
	rec, next := runAuthJWT(t, "Basic abcdef")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, next)
}

func TestAuthJWT_WrongSecret(t *testing.T) {
	token := signToken(t, "another_secret", jwt.SigningMethodHS256, validClaims())

	rec, next := runAuthJWT(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, next)
}

func TestAuthJWT_WrongSigningMethod(t *testing.T) {
	//HS256以外は正しいシークレットでも弾く
	token := signToken(t, mwTestSecret, jwt.SigningMethodHS512, validClaims())

	rec, next := runAuthJWT(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, next)
}

func TestAuthJWT_ExpiredToken(t *testing.T) {
	claims := validClaims()
	claims["exp"] = time.Now().Add(-time.Minute).Unix()
	token := signToken(t, mwTestSecret, jwt.SigningMethodHS256, claims)

	rec, next := runAuthJWT(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, next)
}

func TestAuthJWT_ValidToken(t *testing.T) {
	token := signToken(t, mwTestSecret, jwt.SigningMethodHS256, validClaims())

	rec, next := runAuthJWT(t, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	if assert.NotNil(t, next) {
		assert.Equal(t, int64(10), next.Get(middleware.CtxUserIDKey))
		assert.Equal(t, string(model.RoleUser), next.Get(middleware.CtxUserRoleKey))
	}
}

// =====================
// RequireRole
// =====================

func runRequireRole(t *testing.T, role string, allowed ...model.Role) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set(middleware.CtxUserRoleKey, role)
	}

	h := middleware.RequireRole(allowed...)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	assert.NoError(t, h(c))
	return rec
}

func TestRequireRole_AllowsListedRole(t *testing.T) {
	rec := runRequireRole(t, string(model.RoleSeller), model.RoleSeller, model.RoleAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_ForbidsOtherRole(t *testing.T) {
	rec := runRequireRole(t, string(model.RoleUser), model.RoleSeller, model.RoleAdmin)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRole_MissingRole(t *testing.T) {
	rec := runRequireRole(t, "", model.RoleSeller)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
