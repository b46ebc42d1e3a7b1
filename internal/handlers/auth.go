package handlers

import (
	"errors"
	"net/http"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/storage"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type AuthHandler struct {
	store storage.Storage
	cfg   *config.Config
}

func NewAuthHandler(store storage.Storage, cfg *config.Config) *AuthHandler {
	return &AuthHandler{store: store, cfg: cfg}
}

// signToken 签发 HS256 token，jti 用 uuid 以便刷新轮换时比对
func (h *AuthHandler) signToken(userID uint, ttl time.Duration) (string, error) {
	claims := middleware.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

// issueTokens 签发 access/refresh 一对 token，refresh 存库用于轮换校验
func (h *AuthHandler) issueTokens(c *gin.Context, user *models.User) (string, string, error) {
	accessToken, err := h.signToken(user.ID, h.cfg.AccessTokenTTL)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := h.signToken(user.ID, h.cfg.RefreshTokenTTL)
	if err != nil {
		return "", "", err
	}

	user.RefreshToken = refreshToken
	if err := h.store.UpdateUser(c.Request.Context(), user); err != nil {
		return "", "", err
	}

	secure := h.cfg.Production
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("accessToken", accessToken, int(h.cfg.AccessTokenTTL.Seconds()), "/", "", secure, true)
	c.SetCookie("refreshToken", refreshToken, int(h.cfg.RefreshTokenTTL.Seconds()), "/", "", secure, true)
	return accessToken, refreshToken, nil
}

func (h *AuthHandler) clearTokenCookies(c *gin.Context) {
	secure := h.cfg.Production
	c.SetCookie("accessToken", "", -1, "/", "", secure, true)
	c.SetCookie("refreshToken", "", -1, "/", "", secure, true)
}

type registerRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid request body")
		return
	}
	if req.FullName == "" || req.Email == "" || req.Password == "" {
		failValidation(c, "all fields are required")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	user := models.User{
		FullName: req.FullName,
		Email:    req.Email,
		Password: hash,
	}
	if err := h.store.CreateUser(c.Request.Context(), &user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			failConflict(c, "user with this email already exists")
			return
		}
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "User registered successfully", user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		failValidation(c, "email and password are required")
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			failNotFound(c, "user does not exist")
			return
		}
		fail(c, err)
		return
	}

	if !utils.CheckPasswordHash(req.Password, user.Password) {
		failUnauthorized(c, "incorrect password")
		return
	}

	accessToken, refreshToken, err := h.issueTokens(c, user)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "User logged in successfully", gin.H{
		"user":         user,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

// Refresh POST /api/v1/auth/refresh-token
// cookie 里的 refresh token 必须与库中存的完全一致，旧 token 刷新后立即失效
func (h *AuthHandler) Refresh(c *gin.Context) {
	raw, err := c.Cookie("refreshToken")
	if err != nil || raw == "" {
		failUnauthorized(c, "unauthorized request")
		return
	}

	claims, err := middleware.ParseToken(raw, []byte(h.cfg.JWTSecret))
	if err != nil {
		failUnauthorized(c, "invalid refresh token")
		return
	}

	user, err := h.store.GetUserByID(c.Request.Context(), claims.UserID)
	if err != nil {
		failUnauthorized(c, "invalid refresh token")
		return
	}
	if user.RefreshToken != raw {
		failUnauthorized(c, "refresh token is expired or used")
		return
	}

	accessToken, refreshToken, err := h.issueTokens(c, user)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Access token refreshed", gin.H{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

// Logout POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		failUnauthorized(c, "invalid or missing session")
		return
	}

	user.RefreshToken = ""
	if err := h.store.UpdateUser(c.Request.Context(), user); err != nil {
		fail(c, err)
		return
	}

	h.clearTokenCookies(c)
	respond(c, http.StatusOK, "User logged out", gin.H{})
}

// Verify GET /api/v1/auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		failUnauthorized(c, "invalid or missing session")
		return
	}
	respond(c, http.StatusOK, "Token verified successfully", gin.H{"user": user})
}
