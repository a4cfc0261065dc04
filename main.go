package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"clinicd/m/internal/api"
	"clinicd/m/internal/auth"
	"clinicd/m/internal/config"
	"clinicd/m/internal/database"
	"clinicd/m/internal/migrations"
	"clinicd/m/internal/seed"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("configuration error: " + err.Error())
	}

	log := newLogger(cfg.Env)
	defer log.Sync()

	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}
	if cfg.SeedFile != "" {
		seed.LoadInventory(db, cfg.SeedFile, log)
	}

	revocation := auth.NewStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
	tokens := auth.NewManager(cfg.Secret, revocation)
	handler := api.New(db, log, tokens, cfg.CORSOrigins)

	log.Info("clinic server starting", zap.String("port", cfg.HTTPPort), zap.String("env", cfg.Env))
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

func newLogger(env string) *zap.Logger {
	var zcfg zap.Config
	if env == "production" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	logger, err := zcfg.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger
}
