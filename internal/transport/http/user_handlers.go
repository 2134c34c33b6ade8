package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/roomtalk/roomtalk-server/internal/core"
	"github.com/roomtalk/roomtalk-server/internal/store"
)

// UserHandlers provides HTTP handlers for the user endpoints.
type UserHandlers struct {
	store store.Store
	hub   *core.Hub
	log   *zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance.
func NewUserHandlers(st store.Store, hub *core.Hub, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{
		store: st,
		hub:   hub,
		log:   logger,
	}
}

// SignupRequest represents the signup request body.
type SignupRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Picture  string `json:"picture"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LogoutRequest represents the logout request body.
type LogoutRequest struct {
	ID          string           `json:"_id" binding:"required"`
	NewMessages map[string]int64 `json:"newMessages"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Signup handles user creation.
// POST /users
func (h *UserHandlers) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid signup request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.log.Error().Err(err).Msg("hash password")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	user, err := h.store.CreateUser(c.Request.Context(), &store.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Picture:      req.Picture,
		Status:       store.StatusOffline,
	})
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "user with this email already exists"})
			return
		}
		h.log.Error().Err(err).Str("email", req.Email).Msg("create user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("user created")
	c.JSON(http.StatusCreated, userView(user))
}

// Login verifies credentials and marks the user online.
// POST /users/login
func (h *UserHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid login request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
			return
		}
		h.log.Error().Err(err).Msg("lookup user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
		return
	}

	if err := h.store.SetUserPresence(c.Request.Context(), user.ID, store.StatusOnline, user.NewMessages); err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("set user online")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	user.Status = store.StatusOnline

	c.JSON(http.StatusOK, userView(user))
}

// Logout marks the user offline, overwrites its unread counters, and pushes
// the refreshed roster to every session except the one logging out.
// DELETE /logout
func (h *UserHandlers) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid logout request")
		c.Status(http.StatusBadRequest)
		return
	}

	ctx := c.Request.Context()

	if _, err := h.store.GetUserByID(ctx, req.ID); err != nil {
		h.log.Warn().Err(err).Str("user_id", req.ID).Msg("logout for unknown user")
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.store.SetUserPresence(ctx, req.ID, store.StatusOffline, req.NewMessages); err != nil {
		h.log.Error().Err(err).Str("user_id", req.ID).Msg("set user offline")
		c.Status(http.StatusBadRequest)
		return
	}

	users, err := h.store.ListUsers(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("fetch roster")
		c.Status(http.StatusBadRequest)
		return
	}
	h.hub.BroadcastRoster(users, req.ID)

	h.log.Info().Str("user_id", req.ID).Msg("user logged out")
	c.Status(http.StatusOK)
}
