package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/aerosimlabs/simgate/internal/interface/http"
	"github.com/aerosimlabs/simgate/internal/interface/middleware"
	"github.com/aerosimlabs/simgate/pkg/helpers"
)

// AdminModule registers the account administration routes behind the bearer
// middleware.
type AdminModule struct {
	Handler *handlers.AdminHandler
	JWT     *helpers.JWTManager
}

func NewAdminModule(h *handlers.AdminHandler, jwt *helpers.JWTManager) *AdminModule {
	return &AdminModule{Handler: h, JWT: jwt}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/")
	admin.Use(middleware.BearerAuth(m.JWT))
	{
		admin.GET("/getUsers", m.Handler.GetUsers)
		admin.GET("/getDashboardCounts", m.Handler.GetDashboardCounts)
		admin.PUT("/updateUser/:id", m.Handler.UpdateUser)
	}
}
