package controller

import (
	"github.com/apex/log"
	"github.com/gofiber/fiber/v2"

	"github.com/benbeisheim/chess-backend/internal/notation"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/suggest"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)

	var req createRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid create request")
		}
	}
	mode, err := service.ParseMode(req.Mode)
	if err != nil {
		return fail(c, err)
	}
	difficulty, err := suggest.ParseDifficulty(req.Difficulty)
	if err != nil {
		return fail(c, err)
	}

	gameID, color, err := gc.gameService.CreateGame(playerID, mode, difficulty)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
		"color":   color,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	color, err := gc.gameService.JoinGame(gameID, playerID)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"game": gameID, "player": playerID}).Warn("join rejected")
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(gameState)
}

// LegalMoves answers the legal destinations of the piece on :square, given
// as a square name like "e2".
func (gc *GameController) LegalMoves(c *fiber.Ctx) error {
	pos, err := notation.ParseSquare(c.Params("square"))
	if err != nil {
		return fail(c, err)
	}
	moves, err := gc.gameService.LegalMoves(c.Params("gameId"), pos)
	if err != nil {
		return fail(c, err)
	}
	names := make([]string, 0, len(moves))
	for _, m := range moves {
		names = append(names, notation.SquareName(m))
	}
	return c.JSON(fiber.Map{
		"square":  notation.SquareName(pos),
		"moves":   moves,
		"squares": names,
	})
}

func (gc *GameController) Click(c *fiber.Ctx) error {
	var req squareRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid click request")
	}
	pos, err := req.position()
	if err != nil {
		return fail(c, err)
	}
	state, err := gc.gameService.Click(c.Params("gameId"), c.Locals("playerID").(string), pos)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	var req moveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid move request")
	}

	var (
		state service.Snapshot
		err   error
	)
	switch {
	case req.Notation != "":
		state, err = gc.gameService.HandleNotationMove(gameID, playerID, req.Notation)
	case req.From != nil && req.To != nil:
		state, err = gc.gameService.HandleMove(gameID, playerID, modelMove(req))
	default:
		return badRequest(c, "a move needs from and to, or notation")
	}
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"game": gameID, "player": playerID}).Debug("move rejected")
		return fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) Promote(c *fiber.Ctx) error {
	var req promoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid promotion request")
	}
	state, err := gc.gameService.Promote(c.Params("gameId"), c.Locals("playerID").(string), req.Piece)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) Reset(c *fiber.Ctx) error {
	state, err := gc.gameService.Reset(c.Params("gameId"), c.Locals("playerID").(string))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)

	if err := gc.gameService.JoinMatchmaking(playerID); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"status": service.MatchQueued,
	})
}

func (gc *GameController) LeaveMatchmaking(c *fiber.Ctx) error {
	left := gc.gameService.LeaveMatchmaking(c.Locals("playerID").(string))
	return c.JSON(fiber.Map{
		"left": left,
	})
}

func (gc *GameController) MatchmakingStatus(c *fiber.Ctx) error {
	return c.JSON(gc.gameService.MatchmakingStatus(c.Locals("playerID").(string)))
}
