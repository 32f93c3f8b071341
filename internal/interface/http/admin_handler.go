package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/aerosimlabs/simgate/internal/application"
	repo "github.com/aerosimlabs/simgate/internal/domain/repository"
	"github.com/aerosimlabs/simgate/pkg/response"
)

// AdminHandler serves the read/update endpoints over the account collection.
// All of its routes sit behind the bearer middleware; the upstream system
// left them open, which was a defect rather than a contract.
type AdminHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewAdminHandler(svc *application.Service, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Svc: svc, Logger: logger}
}

// GetUsers GET /getUsers
func (h *AdminHandler) GetUsers(c *gin.Context) {
	users, err := h.Svc.ListAccounts(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("list accounts failed")
		response.Fail(c, http.StatusInternalServerError, "Server error.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

// GetDashboardCounts GET /getDashboardCounts
func (h *AdminHandler) GetDashboardCounts(c *gin.Context) {
	counts, err := h.Svc.DashboardCounts(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("dashboard counts failed")
		response.Fail(c, http.StatusInternalServerError, "Server error.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"totalUsers":    counts.TotalUsers,
		"totalAccess":   counts.TotalAccess,
		"pendingAccess": counts.PendingAccess,
	})
}

// UpdateUser PUT /updateUser/:id
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id := c.Param("id")
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid payload.")
		return
	}
	// Password changes go through the credential workflows, never this path.
	delete(fields, "password")
	delete(fields, "passwordHash")

	if err := h.Svc.UpdateAccount(c.Request.Context(), id, fields); err != nil {
		switch {
		case errors.Is(err, repo.ErrNoChange):
			response.Fail(c, http.StatusNotFound, "No changes applied.")
		case errors.Is(err, repo.ErrDuplicate):
			response.Fail(c, http.StatusConflict, "Username or email already exists.")
		default:
			h.Logger.WithError(err).WithField("account_id", id).Error("update account failed")
			response.Fail(c, http.StatusInternalServerError, "Server error.")
		}
		return
	}
	response.OK(c, http.StatusOK)
}
