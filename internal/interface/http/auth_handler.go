package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/aerosimlabs/simgate/config"
	"github.com/aerosimlabs/simgate/internal/application"
	"github.com/aerosimlabs/simgate/internal/domain/entity"
	repo "github.com/aerosimlabs/simgate/internal/domain/repository"
	"github.com/aerosimlabs/simgate/internal/interface/middleware"
	"github.com/aerosimlabs/simgate/pkg/helpers"
	"github.com/aerosimlabs/simgate/pkg/response"
	"github.com/aerosimlabs/simgate/pkg/validation"
)

type AuthHandler struct {
	Svc       *application.Service
	Artifacts *application.ArtifactResolver
	Cfg       *config.Config
	Logger    *logrus.Logger
}

func NewAuthHandler(svc *application.Service, artifacts *application.ArtifactResolver, cfg *config.Config, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Artifacts: artifacts, Cfg: cfg, Logger: logger}
}

type signupRequest struct {
	Organization string `json:"organization" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Mobile       string `json:"mobile" binding:"required"`
	Username     string `json:"username" binding:"required"`
	Password     string `json:"password" binding:"required"`
	Address      string `json:"address" binding:"required"`
	MAC          string `json:"mac"`
}

// loginRequest carries both identity fields; which one is mandatory depends
// on LOGIN_IDENTITY_FIELD, so presence is checked by hand below.
type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	MAC      string `json:"mac"`
}

type loginResponse struct {
	Success         bool             `json:"success"`
	Token           string           `json:"token"`
	User            entity.Sanitized `json:"user"`
	SimulatorURL    string           `json:"simulator_url"`
	SimulatorKeyHex string           `json:"simulator_key_hex,omitempty"`
}

// Health GET /
func (h *AuthHandler) Health(c *gin.Context) {
	c.String(http.StatusOK, "Simgate Server Running...")
}

// Signup POST /udansignup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailDetails(c, http.StatusBadRequest, "Missing required fields.", validation.ToDetails(err))
		return
	}

	err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Organization: req.Organization,
		Email:        req.Email,
		Mobile:       req.Mobile,
		Username:     req.Username,
		Password:     req.Password,
		Address:      req.Address,
		MAC:          req.MAC,
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			response.Fail(c, http.StatusConflict, "Username or email already exists.")
			return
		}
		h.Logger.WithError(err).Error("signup failed")
		response.Fail(c, http.StatusInternalServerError, "Server error during signup.")
		return
	}
	response.OK(c, http.StatusOK)
}

// Login POST /udanlogin
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Missing "+h.Cfg.LoginIdentityField+" or password.")
		return
	}

	identity := req.Username
	if h.Cfg.LoginIdentityField == config.IdentityEmail {
		identity = req.Email
	}
	if identity == "" || req.Password == "" {
		response.Fail(c, http.StatusBadRequest, "Missing "+h.Cfg.LoginIdentityField+" or password.")
		return
	}
	if h.Cfg.MACRequired && req.MAC == "" {
		response.Fail(c, http.StatusBadRequest, "Missing required fields.")
		return
	}

	a, token, err := h.Svc.Login(c.Request.Context(), identity, req.Password, req.MAC)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, "Invalid credentials.")
			return
		}
		h.Logger.WithError(err).Error("login failed")
		response.Fail(c, http.StatusInternalServerError, "Server error during login.")
		return
	}

	resp := loginResponse{
		Success:         true,
		Token:           token,
		User:            a.Sanitize(),
		SimulatorURL:    h.Artifacts.URL(c.Request),
		SimulatorKeyHex: h.Artifacts.KeyHex(),
	}
	c.JSON(http.StatusOK, resp)
}

// Me GET /me (bearer token)
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := c.MustGet(middleware.CtxClaimsKey).(*helpers.Claims)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Invalid token.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "payload": claims})
}
