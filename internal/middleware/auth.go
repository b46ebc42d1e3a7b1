package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// CtxUserKey context key for the authenticated user
const CtxUserKey = "user"

// Claims JWT 负载，uid 指向 users 表主键
type Claims struct {
	UserID uint `json:"uid"`
	jwt.RegisteredClaims
}

// ParseToken validates an HMAC-signed token string and returns its claims
func ParseToken(raw string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Auth JWT 校验中间件，支持 Bearer 头和 accessToken cookie 两种携带方式
type Auth struct {
	secret []byte
	store  storage.Storage
}

func NewAuth(secret string, store storage.Storage) *Auth {
	return &Auth{secret: []byte(secret), store: store}
}

func (a *Auth) tokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if cookie, err := c.Cookie("accessToken"); err == nil {
		return cookie
	}
	return ""
}

func (a *Auth) loadUser(c *gin.Context) (*models.User, error) {
	raw := a.tokenFromRequest(c)
	if raw == "" {
		return nil, errors.New("missing token")
	}
	claims, err := ParseToken(raw, a.secret)
	if err != nil {
		return nil, err
	}
	return a.store.GetUserByID(c.Request.Context(), claims.UserID)
}

// AuthRequired ensures a valid session and puts the user into the context
func (a *Auth) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := a.loadUser(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":    false,
				"statusCode": http.StatusUnauthorized,
				"error":      gin.H{"kind": "unauthorized", "message": "invalid or missing session"},
			})
			return
		}
		c.Set(CtxUserKey, user)
		c.Next()
	}
}

// OptionalAuth loads the user when a valid token is present, never blocks
func (a *Auth) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := a.loadUser(c); err == nil {
			c.Set(CtxUserKey, user)
		}
		c.Next()
	}
}

// CurrentUser 从上下文取出已认证用户
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(CtxUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
