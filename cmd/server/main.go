package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"portal/internal/auth"
	"portal/internal/config"
	apphttp "portal/internal/http"
	"portal/internal/repository"
	"portal/internal/repository/memory"
	"portal/internal/repository/mongo"
	"portal/internal/repository/sqlite"
	"portal/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	configureLogger(logger, cfg)

	secret, insecure := cfg.SigningSecret()
	if insecure {
		logger.Warn("auth jwt secret not set, signing tokens with the insecure development default")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, err := buildRepository(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup credential store: %v", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := users.Close(closeCtx); err != nil {
			logger.Warnf("close credential store: %v", err)
		}
	}()

	if err := users.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}

	tokens := auth.NewTokenIssuer(secret, cfg.Auth.TokenTTL)
	userService, err := service.NewUserService(users, auth.NewPasswordHasher(cfg.Auth.BcryptCost), tokens)
	if err != nil {
		logger.Fatalf("setup user service: %v", err)
	}

	if cfg.Bootstrap.Username != "" {
		created, err := userService.EnsureUser(ctx, service.RegisterInput{
			Username: cfg.Bootstrap.Username,
			Email:    cfg.Bootstrap.Email,
			FullName: cfg.Bootstrap.FullName,
			Password: cfg.Bootstrap.Password,
		})
		if err != nil {
			logger.Fatalf("bootstrap user: %v", err)
		}
		if created {
			logger.Infof("created bootstrap user %s", cfg.Bootstrap.Username)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	router, err := apphttp.NewEngine(cfg.Server.TrustedProxies)
	if err != nil {
		logger.Fatalf("setup router: %v", err)
	}
	handler := apphttp.NewHandler(
		userService,
		service.NewCatalogService(),
		service.NewAuthGate(tokens, users),
		logger,
		apphttp.Options{
			CORSOrigins: cfg.CORS.Origins,
			LoginRate:   cfg.Auth.LoginRate,
			LoginBurst:  cfg.Auth.LoginBurst,
		},
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func configureLogger(logger *logrus.Logger, cfg config.Config) {
	if strings.EqualFold(cfg.Log.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

func buildRepository(ctx context.Context, cfg config.Config, logger *logrus.Logger) (repository.UserRepository, error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		client, err := mongo.Connect(ctx, cfg.Database.URI)
		if err != nil {
			return nil, err
		}
		logger.Infof("using mongo database %s", cfg.Database.Name)
		return mongo.NewUserRepository(client, cfg.Database.Name), nil
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		logger.Infof("using sqlite database %s", cfg.Database.Path)
		return sqlite.NewUserRepository(db), nil
	case config.DriverMemory:
		logger.Warn("using in-memory credential store, accounts are lost on restart")
		return memory.NewUserRepository(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}
