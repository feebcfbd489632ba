package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobgujarat-backend/internal/account"
	"jobgujarat-backend/internal/applications"
	googleauth "jobgujarat-backend/internal/auth"
	"jobgujarat-backend/internal/hiring"
	"jobgujarat-backend/internal/jobs"
	"jobgujarat-backend/internal/payments"
	"jobgujarat-backend/internal/services/health"
	"jobgujarat-backend/internal/shared/config"
	"jobgujarat-backend/internal/shared/metrics"
	"jobgujarat-backend/internal/shared/server/middleware"
	"jobgujarat-backend/internal/shared/server/respond"
	"jobgujarat-backend/internal/uploads"
	"jobgujarat-backend/internal/users"
)

// Rate limit groups. Payment routes get a tight budget; everything else
// shares the browse budget.
const (
	groupPayments = "PAYMENTS"
	groupBrowse   = "BROWSE"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config              config.Config
	GoogleAuth          *googleauth.GoogleService
	UsersHandler        *users.Handler
	JobsHandler         *jobs.Handler
	ApplicationsHandler *applications.Handler
	PaymentsHandler     *payments.Handler
	HiringHandler       *hiring.Handler
	AccountHandler      *account.Handler
	Health              *health.Service
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
		middleware.Auth(deps.Config.Env),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				groupPayments: {Rate: 1, Burst: 5},
				groupBrowse:   {Rate: 20, Burst: 40},
			},
			DefaultGroup: groupBrowse,
			GroupFor: func(c *gin.Context) string {
				if strings.HasPrefix(c.Request.URL.Path, "/api/v1/payments/") && c.Request.Method == http.MethodPost {
					return groupPayments
				}
				return groupBrowse
			},
		}),
	)

	r.GET("/metrics", metrics.Handler())
	if deps.Config.ObjectStoreType == "local" {
		r.Static("/files", deps.Config.LocalStoreDir)
	}

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health != nil {
			respond.JSON(c, http.StatusOK, deps.Health.Status(c.Request.Context()))
			return
		}
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UsersHandler != nil {
		deps.UsersHandler.RegisterRoutes(api)
	}
	if deps.JobsHandler != nil {
		deps.JobsHandler.RegisterRoutes(api)
	}
	if deps.ApplicationsHandler != nil {
		deps.ApplicationsHandler.RegisterRoutes(api)
	}
	if deps.PaymentsHandler != nil {
		deps.PaymentsHandler.RegisterRoutes(api)
	}
	if deps.HiringHandler != nil {
		deps.HiringHandler.RegisterRoutes(api)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(api)
	}
	uploads.RegisterRoutes(api)

	return r
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
