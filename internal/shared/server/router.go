package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"upfolio-backend/internal/account"
	"upfolio-backend/internal/assistant"
	"upfolio-backend/internal/auth"
	"upfolio-backend/internal/credits"
	"upfolio-backend/internal/portfolio"
	"upfolio-backend/internal/resumes"
	"upfolio-backend/internal/shared/config"
	"upfolio-backend/internal/shared/metrics"
	"upfolio-backend/internal/shared/server/middleware"
	"upfolio-backend/internal/shared/server/respond"
	"upfolio-backend/internal/users"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config           config.Config
	AuthHandler      *auth.Handler
	GoogleAuth       *auth.GoogleService
	ResumeHandler    *resumes.Handler
	PortfolioHandler *portfolio.Handler
	AssistantHandler *assistant.Handler
	CreditsHandler   *credits.Handler
	UserHandler      *users.Handler
	AccountHandler   *account.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())

	// Unauthenticated: registration, login, token flows, OAuth.
	deps.AuthHandler.RegisterRoutes(api)
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}

	// Public portfolio pages live at the site root, not under the API
	// prefix. OptionalAuth lets owners preview a private portfolio without
	// opening it to anyone else.
	public := r.Group("", middleware.OptionalAuth())
	deps.PortfolioHandler.RegisterRoutes(public)

	authed := api.Group("", middleware.Auth())
	registerMeRoutes(authed)
	deps.AuthHandler.RegisterProtectedRoutes(authed)
	deps.ResumeHandler.RegisterRoutes(authed)
	deps.AssistantHandler.RegisterRoutes(authed)
	deps.CreditsHandler.RegisterRoutes(authed)
	deps.UserHandler.RegisterRoutes(authed)
	deps.AccountHandler.RegisterRoutes(authed)

	if deps.Config.AdminToken != "" {
		admin := api.Group("/admin", adminAuth(deps.Config.AdminToken))
		deps.CreditsHandler.RegisterAdminRoutes(admin)
	}

	return r
}

// adminAuth gates administrative routes on a shared token header.
func adminAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader("X-Admin-Token")
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "invalid admin token", nil)
			return
		}
		c.Next()
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
