package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/benbeisheim/chess-backend/internal/config"
	"github.com/benbeisheim/chess-backend/internal/controller"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/suggest"
)

func main() {
	log.SetHandler(cli.New(os.Stderr))

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("loading config")
	}
	log.SetLevel(cfg.LogLevel)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigin,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))

	// The fallback seed only has to differ between runs.
	seed := uint64(time.Now().UnixNano())
	fallback := suggest.NewRandom(seed, seed>>1)
	var suggester suggest.Suggester = fallback
	if cfg.UseRemoteSuggester() {
		suggester = suggest.NewRemote(cfg.SuggestURL, cfg.SuggestAPIKey, cfg.SuggestModel, cfg.SuggestTimeout)
		log.WithField("model", cfg.SuggestModel).Info("computer moves use the remote suggester")
	}

	// Initialize services
	gameManager := service.NewGameManager()
	gameService := service.NewGameService(
		gameManager,
		suggest.NewChooser(suggester, fallback),
		cfg.SuggestTimeout+time.Second,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go gameManager.Run(ctx, cfg.MatchmakingInterval)

	controller.Register(app,
		controller.NewGameController(gameService),
		controller.NewWebSocketController(gameService),
		cfg.AllowedOrigin,
	)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			log.WithError(err).Error("shutdown")
		}
	}()

	log.WithField("addr", cfg.Addr).Info("listening")
	if err := app.Listen(cfg.Addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
	gameService.Wait()
}
