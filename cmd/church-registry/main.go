package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"church-registry/internal/config"
	"church-registry/internal/database"
	httpapi "church-registry/internal/http"
	"church-registry/internal/logger"
	"church-registry/internal/repository"
	"church-registry/internal/service"
	"church-registry/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "church-registry")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Optional Redis: only caches the listing's per-tenant credential
	// lookups. The service runs fine without it.
	var kv store.KV
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		kv = store.NewRedisKV(redisClient)
		log.Info("Redis credential cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	var clientsRepo repository.ClientsRepository
	var tenantDBs repository.TenantDatabases
	var adminUsersRepo repository.AdminUsersRepository

	var db *sql.DB
	if cfg.DBEnabled {
		if d, err := database.NewMySQLDB(&cfg.Database); err == nil {
			db = d
			log.Info("MySQL enabled for church-registry",
				zap.String("host", cfg.Database.Host),
				zap.String("database", cfg.Database.Database))
		} else {
			log.Warn("DB enabled but connection failed, falling back to in-memory repositories", zap.Error(err))
		}
	}

	if db != nil {
		clientsRepo = repository.NewMySQLClientsRepository(db)
		tenantDBs = repository.NewMySQLTenantDatabases(db)
		adminUsersRepo = repository.NewMySQLAdminUsersRepository(db)

		bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := clientsRepo.EnsureSchema(bootCtx); err != nil {
			log.Fatal("failed to ensure registry schema", zap.Error(err))
		}
		if err := adminUsersRepo.EnsureSchema(bootCtx); err != nil {
			log.Fatal("failed to ensure usuarios schema", zap.Error(err))
		}
		bootCancel()
	} else {
		// DB 未就绪：内存 repo 支持联测（注册/列表页面不再因无 DB 失败）
		clientsRepo = repository.NewMemoryClientsRepository()
		tenantDBs = repository.NewMemoryTenantDatabases()
		adminUsersRepo = repository.NewMemoryAdminUsersRepository()
	}

	provisioner := service.NewProvisioner(clientsRepo, tenantDBs, log)
	lifecycle := service.NewLifecycle(clientsRepo, tenantDBs, kv, log)

	router := httpapi.NewRouter(log)
	router.RegisterClientRoutes(httpapi.NewClientsHandler(provisioner, lifecycle, log))
	router.RegisterUserRoutes(httpapi.NewUsersHandler(adminUsersRepo, log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case err := <-errCh:
		log.Error("HTTP server stopped", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if db != nil {
		_ = db.Close()
	}
}
