package main

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/talent-marketplace/internal/config"
	"github.com/iliyamo/talent-marketplace/internal/logger"
	"github.com/iliyamo/talent-marketplace/internal/middleware"
)

func echoLimiter(rdb *redis.Client) echo.MiddlewareFunc {
	cfg := config.LoadRateLimitConfig()
	logger.WithComponent("server").WithFields(logrus.Fields{
		"enabled":  cfg.Enabled && rdb != nil,
		"capacity": cfg.Capacity,
		"strategy": cfg.KeyStrategy,
	}).Info("rate limiter configured")
	return middleware.NewTokenBucket(cfg, rdb)
}
