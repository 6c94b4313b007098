package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/adminpanel/internal/audit"
	"github.com/Skotchmaster/adminpanel/internal/authn"
	"github.com/Skotchmaster/adminpanel/internal/authz"
	"github.com/Skotchmaster/adminpanel/internal/config"
	"github.com/Skotchmaster/adminpanel/internal/db"
	"github.com/Skotchmaster/adminpanel/internal/hash"
	"github.com/Skotchmaster/adminpanel/internal/httpserver"
	"github.com/Skotchmaster/adminpanel/internal/logging"
	"github.com/Skotchmaster/adminpanel/internal/repo"
	"github.com/Skotchmaster/adminpanel/internal/revocation"
	"github.com/Skotchmaster/adminpanel/internal/service"
	"github.com/Skotchmaster/adminpanel/internal/tokens"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	logger := logging.New(cfg.LogLevel).With("app", cfg.AppName, "env", cfg.AppEnv)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	if err == nil {
		err = db.Migrate(initCtx, gdb)
	}
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	store := revocation.NewRedisStore(rdb, cfg.AccessTTL)
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := store.Ping(pingCtx); err != nil {
		logger.Warn("redis not reachable at startup", "addr", cfg.RedisAddr, "error", err)
	}
	cancel()

	codec, err := tokens.NewCodec(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.AccessTTL, cfg.RefreshTTL)
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}

	sinks := []audit.Sink{&audit.DBSink{DB: gdb}}
	var kafkaSink *audit.KafkaSink
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink = &audit.KafkaSink{Writer: audit.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaAuditTopic)}
		sinks = append(sinks, kafkaSink)
		logger.Info("audit kafka sink enabled", "topic", cfg.KafkaAuditTopic)
	}
	if cfg.ESURL != "" {
		es, err := audit.NewElasticClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			logger.Warn("audit elasticsearch sink disabled", "error", err)
		} else {
			sinks = append(sinks, &audit.ElasticSink{Client: es, Index: cfg.ESAuditIndex})
			logger.Info("audit elasticsearch sink enabled", "index", cfg.ESAuditIndex)
		}
	}
	recorder := audit.NewFanout(sinks...)

	accounts := repo.New(gdb)
	resolver := authz.NewResolver(accounts)

	e := httpserver.New(&httpserver.Deps{
		Logger:        logger,
		AppName:       cfg.AppName,
		Version:       cfg.Version(),
		APIPrefix:     cfg.APIPrefix,
		Authenticator: authn.NewAuthenticator(codec, store),
		Resolver:      resolver,
		AuthHandler: &httpserver.AuthHTTP{Svc: &service.AuthService{
			Accounts:          accounts,
			Tokens:            codec,
			Revocations:       store,
			Hasher:            hash.Bcrypt{},
			Audit:             recorder,
			MaxFailedAttempts: cfg.MaxFailedLogins,
		}},
		UsersHandler:       &httpserver.UsersHTTP{Svc: &service.UserService{Accounts: accounts, Audit: recorder}},
		PermissionsHandler: &httpserver.PermissionsHTTP{Resolver: resolver},
		RolesHandler:       &httpserver.RolesHTTP{Svc: &service.RoleService{Grants: accounts, Audit: recorder}},
		AuditHandler:       &httpserver.AuditHTTP{Svc: &service.AuditService{Logs: accounts}},
		LoginRatePerMinute: cfg.LoginRatePerMinute,
		ReadyChecks: map[string]httpserver.ReadyCheck{
			"database": func(ctx context.Context) error { return db.Ping(ctx, gdb) },
			"redis":    store.Ping,
		},
	})

	go func() {
		logger.Info("http server starting", "addr", cfg.Addr)
		if err := e.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("echo start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo shutdown", "error", err)
	}
	if kafkaSink != nil {
		if err := kafkaSink.Close(); err != nil {
			logger.Error("kafka close", "error", err)
		}
	}
	if err := rdb.Close(); err != nil {
		logger.Error("redis close", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db close", "error", err)
	}

	logger.Info("shutdown complete")
}
