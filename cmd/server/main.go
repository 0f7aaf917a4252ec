package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/uiticket/ticket-system/internal/api"
	"github.com/uiticket/ticket-system/internal/core/ports"
	"github.com/uiticket/ticket-system/internal/core/service"
	"github.com/uiticket/ticket-system/internal/infrastructure/config"
	"github.com/uiticket/ticket-system/internal/infrastructure/db/memory"
	mongodb "github.com/uiticket/ticket-system/internal/infrastructure/db/mongo"
	"github.com/uiticket/ticket-system/internal/infrastructure/db/postgres"
	redisdb "github.com/uiticket/ticket-system/internal/infrastructure/db/redis"
	"github.com/uiticket/ticket-system/internal/infrastructure/http/handlers"
	"github.com/uiticket/ticket-system/internal/infrastructure/identity"
	"github.com/uiticket/ticket-system/internal/infrastructure/session"
	"github.com/uiticket/ticket-system/internal/infrastructure/storage"
	"github.com/uiticket/ticket-system/pkg/logger"
)

// @title        Ticket System API
// @version      1.0
// @description  Help-desk tickets with cookie-session authentication.
// @BasePath     /
// @securityDefinitions.apikey  SessionCookie
// @in                          cookie
// @name                        ticket_session
func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "ticket-system",
	})

	db, err := postgres.Connect(ctx, postgres.Config{
		URL:          cfg.Database.URL,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	}, logger.Component("gorm"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer postgres.Close(db)

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate schema")
	}

	checks := []handlers.Check{{Name: "postgres", Ping: func(ctx context.Context) error { return postgres.Ping(ctx, db) }}}

	users, roles, extra, cleanup := identityStores(ctx, cfg, db, log)
	defer cleanup()
	checks = append(checks, extra...)

	var revoker session.Revoker = session.NewMemoryRevoker()
	if cfg.Redis.Enabled {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		revoker = redisdb.NewSessionRevoker(rdb)
		checks = append(checks, redisCheck(rdb))
	}

	avatars, avatarDir := avatarStorage(ctx, cfg, log)

	sessions := session.NewCookieManager(session.Config{
		Secret:     []byte(cfg.Session.Secret),
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.SecureCookie,
	}, revoker, logger.Component("session"))

	userManager := identity.NewUserManager(users, identity.Options{
		BcryptCost: cfg.BcryptCost,
		Passwords:  identity.DefaultPasswordPolicy(),
	}, logger.Component("identity"))
	roleManager := identity.NewRoleManager(roles, logger.Component("identity"))

	authService := service.NewAuthService(userManager, roleManager, sessions, logger.Component("auth"))
	if err := authService.EnsureRolesExist(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure roles")
	}
	ticketService := service.NewTicketService(postgres.NewScopeFactory(db, logger.Component("uow")), logger.Component("tickets"))

	router := api.NewRouter(api.Deps{
		Log:          logger.Component("http"),
		Sessions:     sessions,
		Auth:         authService,
		Tickets:      ticketService,
		Avatars:      avatars,
		AvatarDir:    avatarDir,
		AvatarPrefix: cfg.Avatar.PublicPrefix,
		Checks:       checks,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("identity", cfg.IdentityBackend).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}

// identityStores picks the user and role persistence named by IDENTITY_BACKEND.
func identityStores(ctx context.Context, cfg *config.Config, db *gorm.DB, log zerolog.Logger) (identity.UserRepository, identity.RoleRepository, []handlers.Check, func()) {
	switch cfg.IdentityBackend {
	case config.BackendMongo:
		client, mdb, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to mongo")
		}
		if err := mongodb.EnsureIndexes(ctx, mdb); err != nil {
			log.Fatal().Err(err).Msg("failed to create mongo indexes")
		}
		check := handlers.Check{Name: "mongodb", Ping: func(ctx context.Context) error { return mongodb.Ping(ctx, client) }}
		cleanup := func() { _ = client.Disconnect(context.Background()) }
		return mongodb.NewUserStore(mdb), mongodb.NewRoleStore(mdb), []handlers.Check{check}, cleanup
	case config.BackendMemory:
		roles := memory.NewRoleStore()
		return memory.NewUserStore(roles), roles, nil, func() {}
	default:
		return postgres.NewUserStore(db), postgres.NewRoleStore(db), nil, func() {}
	}
}

// avatarStorage returns the configured store and, for local storage, the
// directory to serve statically.
func avatarStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.AvatarStorage, string) {
	if cfg.Avatar.Backend == config.AvatarS3 {
		s3cfg := storage.S3Config{
			Bucket:    cfg.Avatar.S3Bucket,
			Region:    cfg.Avatar.S3Region,
			Endpoint:  cfg.Avatar.S3Endpoint,
			AccessKey: cfg.Avatar.S3AccessKey,
			SecretKey: cfg.Avatar.S3SecretKey,
			PublicURL: cfg.Avatar.S3PublicURL,
		}
		client, err := storage.NewS3Client(ctx, s3cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build s3 client")
		}
		return storage.NewS3Store(client, s3cfg), ""
	}

	local, err := storage.NewLocalStore(cfg.Avatar.Dir, cfg.Avatar.PublicPrefix)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare avatar directory")
	}
	return local, local.Dir()
}

func redisCheck(rdb *goredis.Client) handlers.Check {
	return handlers.Check{Name: "redis", Ping: func(ctx context.Context) error { return redisdb.Ping(ctx, rdb) }}
}
