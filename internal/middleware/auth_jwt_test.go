package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func serve(authz string) (*httptest.ResponseRecorder, interface{}) {
	e := echo.New()
	var seen interface{}
	h := AuthJWT(testSecret)(func(c echo.Context) error {
		seen = c.Get(CtxUserIDKey)
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	_ = h(e.NewContext(req, rec))
	return rec, seen
}

func TestAuthJWT_Valid(t *testing.T) {
	tok := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	rec, seen := serve("Bearer " + tok)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(42), seen)
}

func TestAuthJWT_NumericSub(t *testing.T) {
	tok := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": 7})

	rec, seen := serve("Bearer " + tok)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(7), seen)
}

func TestAuthJWT_Rejects(t *testing.T) {
	expired := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub": "1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	wrongKey := sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "1"})
	noSub := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"role": "USER"})
	hs512 := sign(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.MapClaims{"sub": "1"})

	cases := map[string]string{
		"missing":    "",
		"not bearer": "Basic abc",
		"empty":      "Bearer ",
		"expired":    "Bearer " + expired,
		"wrong key":  "Bearer " + wrongKey,
		"no sub":     "Bearer " + noSub,
		"hs512":      "Bearer " + hs512,
	}
	for name, authz := range cases {
		t.Run(name, func(t *testing.T) {
			rec, seen := serve(authz)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Nil(t, seen)
		})
	}
}
