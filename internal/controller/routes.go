package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/benbeisheim/chess-backend/internal/middleware"
)

// Register mounts the REST API under /api and the sockets under /ws.
func Register(app *fiber.App, gc *GameController, wsc *WebSocketController, allowedOrigin string) {
	wsConfig := websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         []string{allowedOrigin},
	}
	sockets := app.Group("/ws", middleware.EnsurePlayerID(), middleware.WebSocketUpgrade())
	sockets.Get("/matchmaking", websocket.New(wsc.HandleMatchmaking, wsConfig))
	sockets.Get("/game/:gameId", websocket.New(wsc.HandleConnection, wsConfig))

	api := app.Group("/api", middleware.EnsurePlayerID())

	gameRoutes := api.Group("/game")
	gameRoutes.Post("/matchmaking/join", gc.JoinMatchmaking)
	gameRoutes.Post("/matchmaking/leave", gc.LeaveMatchmaking)
	gameRoutes.Get("/matchmaking/status", gc.MatchmakingStatus)
	gameRoutes.Post("/create", gc.CreateGame)
	gameRoutes.Post("/join/:gameId", gc.JoinGame)
	gameRoutes.Get("/:gameId", gc.GetGameState)
	gameRoutes.Get("/:gameId/moves/:square", gc.LegalMoves)
	gameRoutes.Post("/:gameId/click", gc.Click)
	gameRoutes.Post("/:gameId/move", gc.MakeMove)
	gameRoutes.Post("/:gameId/promote", gc.Promote)
	gameRoutes.Post("/:gameId/reset", gc.Reset)
}
