package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arbenl/ecohubkosova-sub002/internal/admin"
	"github.com/arbenl/ecohubkosova-sub002/internal/authsync"
	"github.com/arbenl/ecohubkosova-sub002/internal/config"
	"github.com/arbenl/ecohubkosova-sub002/internal/db"
	httpx "github.com/arbenl/ecohubkosova-sub002/internal/http"
	"github.com/arbenl/ecohubkosova-sub002/internal/identity"
	"github.com/arbenl/ecohubkosova-sub002/internal/observability"
	"github.com/arbenl/ecohubkosova-sub002/internal/profiles"
	"github.com/arbenl/ecohubkosova-sub002/internal/sessions"
	"github.com/arbenl/ecohubkosova-sub002/internal/store"
	"github.com/arbenl/ecohubkosova-sub002/internal/store/postgres"
	"github.com/arbenl/ecohubkosova-sub002/internal/store/rest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// metrics
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	// tracing (optional)
	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracer(ctx, "ecohub-api", cfg.OTLPEndpoint)
		if err != nil {
			log.Error("tracer init failed", "err", err)
		} else {
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdown(sctx)
			}()
		}
	}

	// primary store; connects lazily, Init just warms it up
	pool, err := db.New(cfg.DatabaseURL, log)
	if err != nil {
		log.Error("db pool setup failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	initCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	if err := pool.Init(initCtx); err != nil {
		log.Warn("db warm-up failed, continuing with lazy connect", "err", err)
	}
	cancel()

	// session versions
	versions := sessions.New(sessions.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer versions.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if err := versions.Ping(pingCtx); err != nil {
		log.Warn("redis unreachable, session version signal degraded", "err", err)
	}
	cancel()

	// identity provider
	var provider identity.Provider
	var local *identity.Local

	switch cfg.AuthMode {
	case "remote":
		provider = identity.NewClient(cfg.AuthURL, cfg.AuthAnonKey, cfg.AuthServiceKey, log)
	default:
		local = identity.NewLocal(cfg.AuthJWTSecret, cfg.AccessTokenTTL)
		provider = local
	}

	// dual-path stores: Postgres primary, REST secondary
	pgProfiles := postgres.NewProfilesRepo(pool, prom)
	pgOrgs := postgres.NewOrganizationsRepo(pool, prom)
	pgListings := postgres.NewListingsRepo(pool, prom)
	pgArticles := postgres.NewArticlesRepo(pool, prom)

	dec := &store.Decorator{
		Log: log,
		OnFallback: func(op, outcome string) {
			prom.FallbacksTotal.WithLabelValues(op, outcome).Inc()
		},
	}

	var (
		orgStore     store.Organizations = pgOrgs
		listingStore store.Listings      = pgListings
		articleStore store.Articles      = pgArticles
		userStore    store.Profiles      = pgProfiles
		restProfiles store.Profiles
	)

	if cfg.RestURL != "" {
		rc := rest.NewClient(cfg.RestURL, cfg.RestServiceKey)
		restProfiles = rest.NewProfiles(rc)

		userStore = &store.FallbackProfiles{Decorator: dec, Primary: pgProfiles, Secondary: restProfiles}
		orgStore = &store.FallbackOrganizations{Decorator: dec, Primary: pgOrgs, Secondary: rest.NewOrganizations(rc)}
		listingStore = &store.FallbackListings{Decorator: dec, Primary: pgListings, Secondary: rest.NewListings(rc)}
		articleStore = &store.FallbackArticles{Decorator: dec, Primary: pgArticles, Secondary: rest.NewArticles(rc)}
	}

	// services
	profileSvc := profiles.NewService(pgProfiles, restProfiles, provider, log)

	sync := authsync.New(provider, profileSvc, log)
	sync.SetAuthEventObserver(func(t identity.EventType) {
		prom.AuthEventsTotal.WithLabelValues(string(t)).Inc()
	})
	sync.SetRetryObserver(func() {
		prom.ProfileFetchRetries.Inc()
	})
	defer sync.Close()
	sync.Start(ctx)

	// bootstrap admin (optional)
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		seedAdmin(ctx, cfg, pool, local, log)
	}

	router := httpx.NewRouter(httpx.Deps{
		Cfg:  cfg,
		Log:  log,
		Prom: prom,
		DB:   pool,

		Provider: provider,
		Sync:     sync,
		Versions: versions,
		Profiles: profileSvc,

		Orgs:       orgStore,
		Listings:   listingStore,
		Articles:   articleStore,
		OrgCreator: pgOrgs,

		AdminUsers:         admin.NewUsers(userStore, log),
		AdminOrganizations: admin.NewOrganizations(orgStore, log),
		AdminListings:      admin.NewListings(listingStore, log),
		AdminArticles:      admin.NewArticles(articleStore, log),

		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "auth_mode", cfg.AuthMode)
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		return
	}
	log.Info("shutdown complete")
}

// seedAdmin makes sure the configured operator account exists in both the
// identity provider (local mode only) and the users table.
func seedAdmin(ctx context.Context, cfg config.Config, pool *db.Pool, local *identity.Local, log *slog.Logger) {
	id := ""

	if local != nil {
		var err error
		id, err = local.Register(cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName)
		if err != nil {
			log.Warn("admin registration failed", "err", err)
			return
		}
	}

	if id == "" {
		// remote mode: the provider owns the account, nothing to register
		return
	}

	sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := pool.EnsureAdmin(sctx, id, cfg.AdminEmail, cfg.AdminName); err != nil {
		log.Warn("admin seed failed", "err", err)
		return
	}
	log.Info("admin account ready", "email", cfg.AdminEmail)
}
