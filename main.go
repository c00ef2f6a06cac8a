package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"tradesim/config"
	"tradesim/database"
	"tradesim/handlers"
	"tradesim/quote"
	"tradesim/service"
	"tradesim/session"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Fatal("failed to get database instance")
	}
	defer sqlDB.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.WithError(err).Fatal("failed to connect to Redis")
	}
	defer rdb.Close()

	sessions := session.NewRedisStore(rdb, cfg.JWTSecret, cfg.SessionTTL)
	quotes := quote.NewClient(cfg.APIKey, rdb, log)
	auth := service.NewAuthService(db, cfg.StartingCash)
	trading := service.NewTradingService(db, quotes)

	router := gin.Default()
	handler := handlers.New(auth, trading, quotes, sessions, cfg.SessionTTL, log)
	handler.Register(router)

	log.WithField("port", cfg.Port).Info("starting server")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
