package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/clearpath/auth-service/internal/config"
	"github.com/clearpath/auth-service/internal/domain/interfaces"
	"github.com/clearpath/auth-service/internal/handler/http/middleware"
)

// RouterDeps bundles everything the router wires together.
type RouterDeps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Tokens  interfaces.TokenService
	Limiter middleware.Limiter
	Auth    *AuthHandler
	Profile *ProfileHandler
	Admin   *AdminHandler
	Health  *HealthHandler
}

// NewRouter builds the gin engine with the full middleware chain and route
// table.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(deps.Logger),
		middleware.Recovery(deps.Logger),
		middleware.CORS(deps.Config.CORS),
	)
	if deps.Config.Metrics.Enabled {
		router.Use(middleware.Metrics())
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	if deps.Health != nil {
		router.GET("/health", deps.Health.Live)
		router.GET("/ready", deps.Health.Ready)
	}

	rl := deps.Config.Security.RateLimiting
	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", rateLimited(deps, rl.RegisterIP, "register"), deps.Auth.Register)
		auth.POST("/login", rateLimited(deps, rl.LoginIP, "login"), deps.Auth.Login)
		auth.POST("/refresh", deps.Auth.Refresh)
		// Logout sits outside the auth middleware: it must work with an
		// expired access token or with only the refresh cookie left.
		auth.POST("/logout", deps.Auth.Logout)
	}

	profile := api.Group("/profile", middleware.Auth(deps.Tokens))
	{
		profile.GET("", deps.Profile.Get)
		profile.PUT("", deps.Profile.Update)
		profile.PUT("/change-email", deps.Profile.ChangeEmail)
		profile.PUT("/change-password", deps.Profile.ChangePassword)
		profile.PUT("/deactivate", deps.Profile.Deactivate)
		profile.PUT("/reactivate", deps.Profile.Reactivate)
		profile.PUT("/delete", deps.Profile.Delete)
	}

	admin := api.Group("/admin", middleware.Auth(deps.Tokens), middleware.RequireAdmin())
	{
		admin.GET("/users", deps.Admin.ListUsers)
		admin.GET("/admins", deps.Admin.ListAdmins)
		admin.GET("/roles", deps.Admin.ListRoles)

		admin.GET("/user", deps.Admin.GetUserByEmail)
		admin.GET("/user/:id", deps.Admin.GetUser)
		admin.POST("/user/promote", deps.Admin.PromoteByEmail)
		admin.POST("/user/:id/promote", deps.Admin.Promote)
		admin.POST("/user/demote", deps.Admin.DemoteByEmail)
		admin.POST("/user/:id/demote", deps.Admin.Demote)
		admin.POST("/user/:id/revoke-token", deps.Admin.RevokeToken)
		admin.POST("/reset-password", deps.Admin.ResetPassword)
		admin.PUT("/user/:id/restore", deps.Admin.Restore)
		admin.DELETE("/user/:id", deps.Admin.HardDelete)
	}

	return router
}

func rateLimited(deps RouterDeps, rule config.RateLimitRule, scope string) gin.HandlerFunc {
	if !deps.Config.Security.RateLimiting.Enabled || deps.Limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(deps.Limiter, rule, scope, deps.Logger)
}
