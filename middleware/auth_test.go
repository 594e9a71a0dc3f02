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

	"storefront-api/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testIssuer(now time.Time) *TokenIssuer {
	iss := NewTokenIssuer([]byte("test-secret"), time.Hour)
	iss.now = func() time.Time { return now }
	return iss
}

func alex() *models.Account {
	return &models.Account{ID: 7, Name: "Alex", Phone: "0711234567", Role: models.RoleCustomer, Email: "alex@example.com"}
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	now := time.Now()
	iss := testIssuer(now)

	raw, err := iss.Issue(alex())
	require.NoError(t, err)

	claims, err := iss.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.AccountID)
	assert.Equal(t, "Alex", claims.Name)
	assert.Equal(t, models.RoleCustomer, claims.Role)
	assert.Equal(t, "0711234567", claims.Phone)
	assert.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestTokenIssuer_Failures(t *testing.T) {
	now := time.Now()
	iss := testIssuer(now)
	raw, err := iss.Issue(alex())
	require.NoError(t, err)

	_, err = iss.Verify("")
	assert.ErrorIs(t, err, ErrTokenMissing)

	later := testIssuer(now.Add(2 * time.Hour))
	_, err = later.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = iss.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrTokenMalformed)

	other := NewTokenIssuer([]byte("another-secret"), time.Hour)
	_, err = other.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenMalformed)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{AccountID: 1, Role: models.RoleAdmin})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = iss.Verify(unsigned)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func newAuthRouter(iss *TokenIssuer) *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthRequired(iss), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetAccountID(c), "role": GetRole(c), "admin": IsAdmin(c)})
	})
	r.GET("/admin", AuthRequired(iss), RoleRequired(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthRequired(t *testing.T) {
	now := time.Now()
	iss := testIssuer(now)
	r := newAuthRouter(iss)
	raw, err := iss.Issue(alex())
	require.NoError(t, err)
	expired, err := testIssuer(now.Add(-3 * time.Hour)).Issue(alex())
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing", "", http.StatusUnauthorized, "Authorization header required"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Authorization header required"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "expired"},
		{"malformed", "Bearer garbage", http.StatusUnauthorized, "Invalid token"},
		{"valid", "Bearer " + raw, http.StatusOK, `"id":7`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), tc.body)
		})
	}
}

func TestRoleRequired(t *testing.T) {
	iss := testIssuer(time.Now())
	r := newAuthRouter(iss)

	customer, err := iss.Issue(alex())
	require.NoError(t, err)
	admin := alex()
	admin.Role = models.RoleAdmin
	adminToken, err := iss.Issue(admin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+customer)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
