package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aerosimlabs/simgate/internal/container"
	handlers "github.com/aerosimlabs/simgate/internal/interface/http"
	"github.com/aerosimlabs/simgate/internal/interface/middleware"
	"github.com/aerosimlabs/simgate/pkg/helpers"
)

// AuthModule wires the public credential endpoints and the protected /me.
// Signup and login carry per-IP rate limits; both limiters pass through
// when Redis is absent.
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	signupLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath())
	loginLimiter := middleware.RateLimit(container.GetRedis(), 20, time.Minute, middleware.KeyByIPAndPath())

	rg.GET("/", m.Handler.Health)
	rg.POST("/udansignup", signupLimiter, m.Handler.Signup)
	rg.POST("/udanlogin", loginLimiter, m.Handler.Login)

	auth := rg.Group("/")
	auth.Use(middleware.BearerAuth(m.JWT))
	{
		auth.GET("/me", m.Handler.Me)
	}
}
