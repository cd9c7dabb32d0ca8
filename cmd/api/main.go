package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-jewelry-pos/internal/app"
	"go-jewelry-pos/internal/config"
	"go-jewelry-pos/internal/handler"
	"go-jewelry-pos/internal/middleware"
	"go-jewelry-pos/internal/scheduler"
	"go-jewelry-pos/internal/service"
	"go-jewelry-pos/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	// 1. Load config and logger
	cfg, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		panic(err)
	}
	log := logger.Must(logger.New(cfg.Logger.Development))
	defer log.Sync() //nolint:errcheck

	// 2. Connect, migrate, seed and build services
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	a, err := app.New(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Fatal("failed to start application", zap.Error(err))
	}

	// 3. WebSocket hub
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go a.Hub.Run(hubCtx)

	// 4. Scheduler
	var goldPrices service.BuybackService
	if a.GoldFeedEnabled {
		goldPrices = a.Services.Buyback
	}
	sched := scheduler.NewScheduler(cfg.Scheduler, a.Location, a.Services.Stock, goldPrices, logger.Named(log, "scheduler"))
	if err := sched.Start(); err != nil {
		log.Fatal("invalid scheduler configuration", zap.Error(err))
	}

	// 5. Handlers
	svc := a.Services
	handlers := handler.Handlers{
		Auth:        handler.NewAuthHandler(svc.Auth),
		User:        handler.NewUserHandler(svc.User),
		Role:        handler.NewRoleHandler(svc.User),
		Dashboard:   handler.NewDashboardHandler(svc.Dashboard),
		Item:        handler.NewItemHandler(svc.Item),
		Stock:       handler.NewStockHandler(svc.Stock),
		Sale:        handler.NewSaleHandler(svc.Sale),
		Buyback:     handler.NewBuybackHandler(svc.Buyback),
		Maintenance: handler.NewMaintenanceHandler(svc.Maintenance, svc.Stock.Today),
		Promo:       handler.NewPromoHandler(svc.Promo),
	}

	// 6. Setup Fiber
	fiberApp := fiber.New(fiber.Config{
		AppName: cfg.Server.AppName,
	})
	fiberApp.Use(middleware.RequestLogger(logger.Named(log, "http")))
	fiberApp.Use(recover.New())
	fiberApp.Use(cors.New())

	// 7. Routes
	handler.RegisterRoutes(fiberApp, handlers, svc.Auth)

	fiberApp.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	fiberApp.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !a.Hub.Add(c) {
			return
		}
		defer a.Hub.Remove(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		if err := fiberApp.Listen(":" + cfg.Server.Port); err != nil {
			log.Panic("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	sched.Stop(shutdownCtx)
	if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	stopHub()
	select {
	case <-a.Hub.Done():
	case <-shutdownCtx.Done():
		log.Warn("ws hub did not stop in time")
	}
	a.Close(shutdownCtx)

	log.Info("server exited")
}
