package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/middleware"
	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/service"
)

// AuthHandler exposes sign-up, password and passcode sign-in, and sign-out.
type AuthHandler struct {
	Auth *service.AuthService
}

// RegisterRoutes expects middleware.Authenticate to run on rg.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	grp := rg.Group("/auth")
	{
		grp.POST("/signup", h.SignUp)
		grp.POST("/signin", h.SignIn)
		grp.POST("/otp", h.RequestOTP)
		grp.POST("/otp/verify", h.VerifyOTP)
		grp.POST("/signout", middleware.RequireSession(), h.SignOut)
		grp.GET("/me", middleware.RequireSession(), h.Me)
	}
}

type otpRequest struct {
	Email string `json:"email" form:"email"`
	Code  string `json:"code" form:"code"`
}

// POST /api/auth/signup
func (h *AuthHandler) SignUp(c *gin.Context) {
	var creds service.Credentials
	if err := c.ShouldBind(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	u, err := h.Auth.SignUp(c.Request.Context(), creds)
	if err != nil {
		respondError(c, err, "Failed to sign up")
		return
	}
	c.JSON(http.StatusCreated, u)
}

// POST /api/auth/signin
func (h *AuthHandler) SignIn(c *gin.Context) {
	var creds service.Credentials
	if err := c.ShouldBind(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	res, err := h.Auth.SignIn(c.Request.Context(), creds)
	if err != nil {
		respondError(c, err, "Failed to sign in")
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/auth/otp
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := h.Auth.RequestOTP(c.Request.Context(), req.Email); err != nil {
		respondError(c, err, "Failed to send code")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Check your email for a sign-in code"})
}

// POST /api/auth/otp/verify
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	res, err := h.Auth.VerifyOTP(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		respondError(c, err, "Failed to sign in")
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/auth/signout
func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.Auth.SignOut(c.Request.Context(), middleware.Session(c)); err != nil {
		respondError(c, err, "Failed to sign out")
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	sess := middleware.Session(c)
	u, err := h.Auth.CurrentUser(c.Request.Context(), sess)
	if err != nil {
		respondError(c, err, "Failed to load account")
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess, "user": u})
}
