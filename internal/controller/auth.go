package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/Evgen-Mutagen/atm-inventory/internal/core"
	"github.com/Evgen-Mutagen/atm-inventory/internal/middlewareinternal"
	"github.com/Evgen-Mutagen/atm-inventory/internal/service"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthController struct {
	authService core.AuthService
	logger      *zap.Logger
}

func NewAuthController(authService core.AuthService, logger *zap.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var request credentials
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		c.logger.Debug("Invalid request format", zap.Error(err))
		writeError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	user, err := c.authService.Register(r.Context(), request.Username, request.Password)
	if err != nil {
		c.logger.Warn("Registration failed",
			zap.String("username", request.Username),
			zap.Error(err))

		switch {
		case errors.Is(err, service.ErrEmptyCredentials):
			writeError(w, r, http.StatusBadRequest, "Please enter both fields")
		case errors.Is(err, service.ErrUserAlreadyExists):
			writeError(w, r, http.StatusConflict, "Username already exists")
		default:
			writeError(w, r, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.logger.Info("User registered successfully",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, messageResponse{Message: "User registered successfully. Please login."})
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var request credentials
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		c.logger.Debug("Invalid request format", zap.Error(err))
		writeError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	user, token, err := c.authService.Login(r.Context(), request.Username, request.Password)
	if err != nil {
		c.logger.Warn("Login failed",
			zap.String("username", request.Username),
			zap.Error(err))

		switch {
		case errors.Is(err, service.ErrEmptyCredentials):
			writeError(w, r, http.StatusBadRequest, "Please enter both fields")
		case errors.Is(err, service.ErrInvalidCredentials):
			writeError(w, r, http.StatusUnauthorized, "Invalid credentials")
		default:
			writeError(w, r, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.logger.Info("User logged in successfully",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username))

	http.SetCookie(w, &http.Cookie{
		Name:     middlewareinternal.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	render.JSON(w, r, loginResponse{Token: token, Username: user.Username})
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}
