package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"storefront-api/models"
)

var (
	ErrTokenMissing   = errors.New("token missing")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
)

const (
	ctxAccountID = "accountID"
	ctxName      = "name"
	ctxRole      = "role"
	ctxClaims    = "claims"
)

type Claims struct {
	AccountID uint        `json:"account_id"`
	Name      string      `json:"name"`
	Role      models.Role `json:"role"`
	Phone     string      `json:"phone"`
	Email     string      `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

// Issue creates a signed JWT for an account
func (t *TokenIssuer) Issue(account *models.Account) (string, error) {
	now := t.now()
	claims := Claims{
		AccountID: account.ID,
		Name:      account.Name,
		Role:      account.Role,
		Phone:     account.Phone,
		Email:     account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(account.ID),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify parses raw and tells a missing token apart from an expired or
// malformed one.
func (t *TokenIssuer) Verify(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrTokenMissing
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	switch {
	case err == nil && token.Valid:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	default:
		return nil, ErrTokenMalformed
	}
}

// AuthRequired validates the bearer token and injects its claims into context
func AuthRequired(issuer *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw := ""
		if strings.HasPrefix(header, "Bearer ") {
			raw = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		}
		claims, err := issuer.Verify(raw)
		if err != nil {
			var msg string
			switch {
			case errors.Is(err, ErrTokenMissing):
				msg = "Authorization header required (Bearer <token>)"
			case errors.Is(err, ErrTokenExpired):
				msg = "Token has expired, please sign in again"
			default:
				msg = "Invalid token"
			}
			abort(c, http.StatusUnauthorized, msg)
			return
		}
		c.Set(ctxAccountID, claims.AccountID)
		c.Set(ctxName, claims.Name)
		c.Set(ctxRole, claims.Role)
		c.Set(ctxClaims, claims)
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := GetRole(c)
		for _, r := range roles {
			if caller == r {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "Access denied. Required role(s): "+rolesString(roles))
	}
}

func rolesString(roles []models.Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}

// GetAccountID extracts the caller's account ID from context
func GetAccountID(c *gin.Context) uint {
	return c.GetUint(ctxAccountID)
}

// GetRole extracts caller role from context
func GetRole(c *gin.Context) models.Role {
	val, _ := c.Get(ctxRole)
	role, _ := val.(models.Role)
	return role
}

func GetClaims(c *gin.Context) *Claims {
	val, _ := c.Get(ctxClaims)
	claims, _ := val.(*Claims)
	return claims
}

func IsAdmin(c *gin.Context) bool {
	return GetRole(c) == models.RoleAdmin
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": msg})
}
