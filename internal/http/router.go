package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/arbenl/ecohubkosova-sub002/internal/admin"
	"github.com/arbenl/ecohubkosova-sub002/internal/authsync"
	"github.com/arbenl/ecohubkosova-sub002/internal/config"
	"github.com/arbenl/ecohubkosova-sub002/internal/db"
	"github.com/arbenl/ecohubkosova-sub002/internal/http/handlers"
	"github.com/arbenl/ecohubkosova-sub002/internal/http/middlewares"
	"github.com/arbenl/ecohubkosova-sub002/internal/identity"
	"github.com/arbenl/ecohubkosova-sub002/internal/observability"
	"github.com/arbenl/ecohubkosova-sub002/internal/profiles"
	"github.com/arbenl/ecohubkosova-sub002/internal/sessions"
	"github.com/arbenl/ecohubkosova-sub002/internal/store"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20 // 1 MiB

type Deps struct {
	Cfg  config.Config
	Log  *slog.Logger
	Prom *observability.Prom
	DB   *db.Pool

	Provider identity.Provider
	Sync     *authsync.Synchronizer
	Versions *sessions.VersionStore
	Profiles *profiles.Service

	Orgs       store.Organizations
	Listings   store.Listings
	Articles   store.Articles
	OrgCreator handlers.OrganizationCreator

	AdminUsers         *admin.Users
	AdminOrganizations *admin.Organizations
	AdminListings      *admin.Listings
	AdminArticles      *admin.Articles

	Metrics http.Handler
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	secure := d.Cfg.Env == "prod"

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	if d.Cfg.TracingEnabled {
		r.Use(otelgin.Middleware("ecohub-api"))
	}

	authMW := middlewares.NewAuthMiddleware(d.Provider)
	loginLimiter := middlewares.NewRateLimiter(10, time.Minute)

	// health
	health := handlers.NewHealthHandler(d.DB)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/api/health/db", health.DatabaseHealth)

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	// public marketplace directory
	directory := handlers.NewDirectoryHandler(d.Orgs, d.Listings, d.Articles, d.Log)
	r.GET("/api/organizatat", directory.ListOrganizations)
	r.GET("/api/listimet", directory.ListListings)
	r.GET("/api/artikujt", directory.ListArticles)

	// auth
	auth := handlers.NewAuthHandler(d.Sync, d.Provider, d.Profiles, d.Versions, secure, d.Log)
	r.POST("/api/auth/login", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), auth.Login)

	authed := r.Group("/api", authMW.RequireAuth(), middlewares.SessionVersion(d.Versions, secure, d.Log))
	{
		authed.POST("/auth/signout", auth.SignOut)
		authed.GET("/auth/state", auth.State)

		profile := handlers.NewProfileHandler(d.Profiles, d.Log)
		authed.GET("/me/profile", profile.Me)
		authed.PATCH("/me/profile", profile.UpdateMe)

		orgs := handlers.NewOrganizationsHandler(d.OrgCreator, d.Log)
		authed.POST("/organizations", orgs.Create)
	}

	// admin surface gated on the users-table role
	adminGroup := r.Group("/api/admin", authMW.RequireAuth(), authMW.RequireAdmin(d.Profiles))
	{
		users := handlers.NewAdminUsersHandler(d.AdminUsers)
		adminGroup.GET("/users", users.List)
		adminGroup.PATCH("/users/:id", users.Update)
		adminGroup.DELETE("/users/:id", users.Delete)

		orgs := handlers.NewAdminOrganizationsHandler(d.AdminOrganizations)
		adminGroup.GET("/organizatat", orgs.List)
		adminGroup.PATCH("/organizatat/:id", orgs.Update)
		adminGroup.DELETE("/organizatat/:id", orgs.Delete)

		listings := handlers.NewAdminListingsHandler(d.AdminListings)
		adminGroup.GET("/listimet", listings.List)
		adminGroup.PATCH("/listimet/:id", listings.Update)
		adminGroup.DELETE("/listimet/:id", listings.Delete)

		articles := handlers.NewAdminArticlesHandler(d.AdminArticles)
		adminGroup.GET("/artikujt", articles.List)
		adminGroup.PATCH("/artikujt/:id", articles.Update)
		adminGroup.DELETE("/artikujt/:id", articles.Delete)
	}

	return r
}
