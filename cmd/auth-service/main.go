package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/clearpath/auth-service/internal/config"
	handler "github.com/clearpath/auth-service/internal/handler/http"
	"github.com/clearpath/auth-service/internal/infrastructure/database"
	"github.com/clearpath/auth-service/internal/infrastructure/database/postgres"
	"github.com/clearpath/auth-service/internal/infrastructure/ratelimit"
	"github.com/clearpath/auth-service/internal/infrastructure/security"
	"github.com/clearpath/auth-service/internal/service"
	"github.com/clearpath/auth-service/internal/utils/logger"
	"github.com/clearpath/auth-service/internal/utils/validation"
)

func main() {
	// A .env file is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("service terminated", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := runMigrations(cfg.Database, log); err != nil {
			return fmt.Errorf("migrations failed: %w", err)
		}
	}

	pool, err := postgres.NewDBPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	redisClient, err := ratelimit.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	passwords, err := security.NewArgon2idPasswordService(cfg.Security.PasswordHash)
	if err != nil {
		return fmt.Errorf("password service init failed: %w", err)
	}
	tokens, err := security.NewHMACTokenService(cfg.JWT)
	if err != nil {
		return fmt.Errorf("token service init failed: %w", err)
	}

	userRepo := database.NewPgxUserRepository(pool)
	roleRepo := database.NewPgxRoleRepository(pool)

	authSvc, err := service.NewAuthService(userRepo, roleRepo, passwords, tokens, cfg.JWT, log)
	if err != nil {
		return fmt.Errorf("auth service init failed: %w", err)
	}
	profileSvc := service.NewProfileService(userRepo, roleRepo, passwords, log)
	adminSvc := service.NewAdminService(userRepo, roleRepo, passwords, log)

	if err := service.EnsureDefaultRoles(ctx, roleRepo, log); err != nil {
		return err
	}
	if err := service.EnsureInitialAdmin(ctx, userRepo, roleRepo, passwords, cfg.InitialAdmin, log); err != nil {
		return err
	}

	if err := validation.RegisterPasswordRule(); err != nil {
		return fmt.Errorf("validator setup failed: %w", err)
	}

	cookies := handler.NewCookieWriter(cfg.Cookie)
	limiter := ratelimit.NewRedisRateLimiter(redisClient, log)

	router := handler.NewRouter(handler.RouterDeps{
		Config:  cfg,
		Logger:  log,
		Tokens:  tokens,
		Limiter: limiter,
		Auth:    handler.NewAuthHandler(authSvc, tokens, cookies, log),
		Profile: handler.NewProfileHandler(profileSvc, authSvc, cookies, log),
		Admin:   handler.NewAdminHandler(adminSvc, log),
		Health:  handler.NewHealthHandler(pool, redisClient),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func runMigrations(cfg config.DatabaseConfig, log *zap.Logger) error {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, cfg.SSLMode)

	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	defer func() {
		if _, dbErr := m.Close(); dbErr != nil {
			log.Warn("failed to close migration connection", zap.Error(dbErr))
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	log.Info("migrations applied")
	return nil
}
