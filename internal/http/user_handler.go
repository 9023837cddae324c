package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blogify/internal/service"
	"blogify/internal/token"
)

// UserHandler mantiene dependencias para endpoints de cuentas.
type UserHandler struct {
	logger       *zap.Logger
	accounts     *service.AccountService
	tokens       *token.Service
	cookieSecure bool
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(logger *zap.Logger, accounts *service.AccountService, tokens *token.Service, cookieSecure bool) *UserHandler {
	return &UserHandler{
		logger:       logger,
		accounts:     accounts,
		tokens:       tokens,
		cookieSecure: cookieSecure,
	}
}

// setSessionCookie deja el token en una cookie HttpOnly SameSite=Strict de 24h.
func (h *UserHandler) setSessionCookie(c *gin.Context, tok string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(TokenCookieName, tok, int(token.SessionTTL.Seconds()), "/", "", h.cookieSecure, true)
}

func (h *UserHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(TokenCookieName, "", -1, "/", "", h.cookieSecure, true)
}

// Signup maneja POST /user/signup.
func (h *UserHandler) Signup(c *gin.Context) {
	var req struct {
		FullName string `json:"full_name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid signup request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.accounts.Signup(c.Request.Context(), req.FullName, req.Email, req.Password); err != nil {
		h.writeAccountError(c, err, "signup failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP sent to email"})
}

// VerifyOTP maneja POST /user/verify-otp.
func (h *UserHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		OTP   string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid otp verify request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.accounts.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		h.writeAccountError(c, err, "verify otp failed")
		return
	}

	tok, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	h.setSessionCookie(c, tok)
	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"token":   tok,
		"user":    user,
	})
}

// ResendOTP maneja POST /user/resend-otp.
func (h *UserHandler) ResendOTP(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		FullName string `json:"full_name"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid resend otp request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.accounts.ResendOTP(c.Request.Context(), req.FullName, req.Email, req.Password); err != nil {
		h.writeAccountError(c, err, "resend otp failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP resent successfully!"})
}

// Login maneja POST /user/login.
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		case errors.Is(err, service.ErrEmailNotVerified):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Email not verified"})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		default:
			h.logger.Error("login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not login"})
		}
		return
	}

	tok, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	h.setSessionCookie(c, tok)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   tok,
		"user":    user,
	})
}

// GoogleLogin maneja POST /user/google-login.
func (h *UserHandler) GoogleLogin(c *gin.Context) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}

	user, err := h.accounts.GoogleLogin(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		h.writeAccountError(c, err, "google login failed")
		return
	}

	tok, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	h.setSessionCookie(c, tok)
	c.JSON(http.StatusOK, gin.H{
		"message": "Google login successful",
		"token":   tok,
		"user":    user,
	})
}

// Logout maneja POST /user/logout. Solo limpia la cookie del cliente:
// el token sigue siendo criptográficamente válido hasta su expiración.
func (h *UserHandler) Logout(c *gin.Context) {
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me maneja GET /user/me.
func (h *UserHandler) Me(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// PublicProfile maneja GET /user/public/:username.
func (h *UserHandler) PublicProfile(c *gin.Context) {
	user, blogs, err := h.accounts.PublicProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.writeAccountError(c, err, "public profile failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "blogs": blogs})
}

// Profile maneja GET /user/profile/:id.
func (h *UserHandler) Profile(c *gin.Context) {
	data, err := h.accounts.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeAccountError(c, err, "profile failed")
		return
	}
	c.JSON(http.StatusOK, data)
}

// UpdateProfile maneja PUT /user/profile/:id (multipart).
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	input := service.UpdateProfileInput{
		FullName:    c.PostForm("full_name"),
		Password:    c.PostForm("password"),
		RemoveImage: c.PostForm("remove_image") == "true",
	}

	if file, ok := openFormFile(c, "profileImage"); ok {
		defer file.Close()
		input.Image = file
	}

	if err := h.accounts.UpdateProfile(c.Request.Context(), c.Param("id"), input); err != nil {
		h.writeAccountError(c, err, "profile update failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}

// DeleteProfile maneja DELETE /user/profile/:id.
func (h *UserHandler) DeleteProfile(c *gin.Context) {
	if err := h.accounts.DeleteAccount(c.Request.Context(), c.Param("id")); err != nil {
		h.writeAccountError(c, err, "account deletion failed")
		return
	}
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// ToggleSave maneja POST /user/save/:blogId.
func (h *UserHandler) ToggleSave(c *gin.Context) {
	user, _ := CurrentUser(c)
	saved, err := h.accounts.ToggleSaveBlog(c.Request.Context(), user.ID, c.Param("blogId"))
	if err != nil {
		h.writeAccountError(c, err, "save blog failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

func (h *UserHandler) writeAccountError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email, full name, and password are required."})
	case errors.Is(err, service.ErrInvalidEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
	case errors.Is(err, service.ErrNameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
	case errors.Is(err, service.ErrOTPInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OTP"})
	case errors.Is(err, service.ErrOTPExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "OTP expired"})
	case errors.Is(err, service.ErrMailSend):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Could not send email. Try again."})
	case errors.Is(err, service.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many OTP requests. Try again later."})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, service.ErrBlogNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Blog not found"})
	default:
		h.logger.Error(logMsg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}

// openFormFile abre un archivo multipart opcional; ausencia no es error.
func openFormFile(c *gin.Context, field string) (multipart.File, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, false
	}
	file, err := header.Open()
	if err != nil {
		return nil, false
	}
	return file, true
}

func readerOrNil(file multipart.File, ok bool) io.Reader {
	if !ok {
		return nil
	}
	return file
}
