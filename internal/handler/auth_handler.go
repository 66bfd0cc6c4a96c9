package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Charltoon/Memory-Archive/internal/common"
	"github.com/Charltoon/Memory-Archive/internal/domain"
	"github.com/Charltoon/Memory-Archive/internal/middleware"
	"github.com/Charltoon/Memory-Archive/internal/service"
)

const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/api/auth"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	service      service.AuthService
	accessTTL    time.Duration
	refreshTTL   time.Duration
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service service.AuthService, accessTTL, refreshTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		service:      service,
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
		secureCookie: secureCookie,
	}
}

// Credentials handles POST /api/auth/credentials.
// isSignUp selects sign-up; otherwise it is a sign-in.
func (h *AuthHandler) Credentials(c *gin.Context) {
	var req domain.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validateRequest(&req); err != nil {
		common.HandleError(c, err, "")
		return
	}

	resp, err := h.service.Authenticate(c.Request.Context(), &req)
	if err != nil {
		common.HandleError(c, err, "Authentication failed")
		return
	}

	h.setSessionCookies(c, resp)

	data := gin.H{
		"accessToken": resp.AccessToken,
		"user":        resp.User,
	}
	if req.IsSignUp {
		common.CreatedResponse(c, data)
		return
	}
	common.SuccessResponse(c, data, nil)
}

// RefreshToken handles POST /api/auth/refresh; the refresh token is read
// from its httpOnly cookie and rotated
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil || refreshToken == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Refresh token not found in cookie", nil)
		return
	}

	resp, err := h.service.RefreshToken(c.Request.Context(), refreshToken)
	if err != nil {
		if common.StatusFor(err) == http.StatusUnauthorized {
			h.clearSessionCookies(c)
		}
		common.HandleError(c, err, "Token refresh failed")
		return
	}

	h.setSessionCookies(c, resp)
	common.SuccessResponse(c, gin.H{
		"accessToken": resp.AccessToken,
		"user":        resp.User,
	}, nil)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.clearSessionCookies(c)
	common.SuccessResponse(c, gin.H{"success": true}, nil)
}

// Session handles GET /api/auth/session. Anonymous callers get null data.
func (h *AuthHandler) Session(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.SuccessResponse(c, nil, nil)
		return
	}

	user, err := h.service.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		common.HandleError(c, err, "Failed to load session")
		return
	}

	common.SuccessResponse(c, gin.H{"user": user}, nil)
}

func (h *AuthHandler) setSessionCookies(c *gin.Context, resp *service.LoginResponse) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, resp.AccessToken, int(h.accessTTL.Seconds()), "/", "", h.secureCookie, true)
	c.SetCookie(refreshCookieName, resp.RefreshToken, int(h.refreshTTL.Seconds()), refreshCookiePath, "", h.secureCookie, true)
}

func (h *AuthHandler) clearSessionCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", h.secureCookie, true)
	c.SetCookie(refreshCookieName, "", -1, refreshCookiePath, "", h.secureCookie, true)
}
