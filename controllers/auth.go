// controllers/auth.go
package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"salonbook-backend/models"
	"salonbook-backend/repository"
	"salonbook-backend/utils"
)

type RegisterInput struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8"`
	Email    string `json:"email"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthController struct {
	users    repository.UserRepository
	secret   string
	tokenTTL time.Duration
	logger   *slog.Logger
}

func NewAuthController(users repository.UserRepository, secret string, tokenTTL time.Duration, logger *slog.Logger) *AuthController {
	return &AuthController{users: users, secret: secret, tokenTTL: tokenTTL, logger: logger}
}

func (ac *AuthController) Register(c *gin.Context) {
	var input RegisterInput

	// Bind and validate input
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Email != "" && !utils.ValidateEmail(input.Email) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid email address")
		return
	}

	newUser := models.User{
		Username: strings.TrimSpace(input.Username),
		Password: input.Password, // Will be hashed in BeforeCreate hook
		Email:    input.Email,
		IsActive: true,
	}

	if err := ac.users.Create(c.Request.Context(), &newUser); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			utils.RespondWithError(c, http.StatusConflict, "Username already exists")
			return
		}
		ac.logger.Error("create user failed", "err", err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, ok := ac.issueToken(c, newUser.ID)
	if !ok {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   token,
		"user": gin.H{
			"id":       newUser.ID,
			"username": newUser.Username,
			"email":    newUser.Email,
		},
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var input LoginInput

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx := c.Request.Context()
	user, err := ac.users.GetByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			ac.logger.Error("load user failed", "err", err)
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// Check password
	if !user.IsActive || !utils.CheckPasswordHash(input.Password, user.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, ok := ac.issueToken(c, user.ID)
	if !ok {
		return
	}

	// Update last login
	if err := ac.users.TouchLastLogin(ctx, user.ID, time.Now()); err != nil {
		ac.logger.Warn("update last login failed", "user_id", user.ID, "err", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

func (ac *AuthController) Me(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString("userId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	user, err := ac.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":        user.ID,
			"username":  user.Username,
			"email":     user.Email,
			"lastLogin": user.LastLogin,
		},
	})
}

// issueToken signs a token and sets it as the session cookie
func (ac *AuthController) issueToken(c *gin.Context, userID uuid.UUID) (string, bool) {
	token, err := utils.GenerateToken(userID.String(), ac.secret, ac.tokenTTL)
	if err != nil {
		ac.logger.Error("generate token failed", "err", err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return "", false
	}

	c.SetCookie(
		"token",
		token,
		int(ac.tokenTTL.Seconds()),
		"/",
		"",
		true,
		true,
	)
	return token, true
}
