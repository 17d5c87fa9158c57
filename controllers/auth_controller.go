package controllers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"cafe-backend/middlewares"
	"cafe-backend/models"
	"cafe-backend/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	db        *sql.DB
	jwtSecret string
	tokenTTL  time.Duration
	logger    *slog.Logger
}

func NewAuthController(db *sql.DB, jwtSecret string, tokenTTL time.Duration, logger *slog.Logger) *AuthController {
	return &AuthController{
		db:        db,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// Login verifies credentials and issues a bearer token. Unknown email and
// wrong password produce the same response so callers cannot probe for
// registered addresses.
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password required"})
		return
	}

	var (
		userID       int
		passwordHash string
		role         string
	)
	err := ac.db.QueryRow(
		"SELECT id, password, role FROM users WHERE email = ?",
		req.Email,
	).Scan(&userID, &passwordHash, &role)

	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		ac.logger.Error("failed to look up user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if !utils.CheckPassword(passwordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateToken(userID, role, ac.jwtSecret, ac.tokenTTL)
	if err != nil {
		ac.logger.Error("failed to sign token", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	ac.logger.Info("user logged in", "user_id", userID, "role", role)
	c.JSON(http.StatusOK, models.LoginResponse{Token: token, Role: role})
}

func (ac *AuthController) GetProfile(c *gin.Context) {
	userID := c.GetInt(middlewares.ContextUserID)

	var profile models.Profile
	err := ac.db.QueryRow(
		"SELECT name, email, phone, role FROM users WHERE id = ?",
		userID,
	).Scan(&profile.Name, &profile.Email, &profile.Phone, &profile.Role)

	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		ac.logger.Error("failed to read profile", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (ac *AuthController) UpdateProfile(c *gin.Context) {
	userID := c.GetInt(middlewares.ContextUserID)

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and phone required"})
		return
	}

	if _, err := ac.db.Exec(
		"UPDATE users SET name = ?, phone = ? WHERE id = ?",
		req.Name, req.Phone, userID,
	); err != nil {
		ac.logger.Error("failed to update profile", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}

// ChangePassword rotates the stored hash after re-verifying the old
// password.
func (ac *AuthController) ChangePassword(c *gin.Context) {
	userID := c.GetInt(middlewares.ContextUserID)

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields required"})
		return
	}

	var currentHash string
	err := ac.db.QueryRow("SELECT password FROM users WHERE id = ?", userID).Scan(&currentHash)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		ac.logger.Error("failed to read password hash", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if !utils.CheckPassword(currentHash, req.OldPassword) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Old password incorrect"})
		return
	}

	newHash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		ac.logger.Error("failed to hash password", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if _, err := ac.db.Exec("UPDATE users SET password = ? WHERE id = ?", newHash, userID); err != nil {
		ac.logger.Error("failed to update password", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	ac.logger.Info("password changed", "user_id", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}
