package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "test-secret"

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()))
	r.GET("/me", AuthMiddleware(secret, zap.NewNop()), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(UserIDKey))
	})
	return r
}

func do(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareAcceptsIssuedToken(t *testing.T) {
	token, err := IssueToken(secret, "user-42", "a@b.c", time.Now())
	require.NoError(t, err)

	w := do(newRouter(), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-42", w.Body.String())
}

func TestAuthMiddlewareRejects(t *testing.T) {
	expired, err := IssueToken(secret, "user-42", "a@b.c", time.Now().Add(-2*TokenTTL))
	require.NoError(t, err)
	otherSecret, err := IssueToken("other", "user-42", "a@b.c", time.Now())
	require.NoError(t, err)
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-42"}).SignedString([]byte(secret))
	require.NoError(t, err)
	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}).SignedString([]byte(secret))
	require.NoError(t, err)

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Token abc",
		"garbage":        "Bearer abc.def.ghi",
		"expired":        "Bearer " + expired,
		"wrong secret":   "Bearer " + otherSecret,
		"no expiry":      "Bearer " + noExp,
		"no subject":     "Bearer " + noSub,
	}
	r := newRouter()
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(r, header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
