package handlers

import (
	"strconv"

	"swiss-tournament/middleware"
	"swiss-tournament/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTournamentRoutes(app *fiber.App, tournamentService *services.TournamentService, pairingService *services.PairingService, adminToken string) {
	// 🔓 Read-only routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/players/count", countPlayers(tournamentService))
	app.Get("/players/search", searchPlayers(tournamentService))
	app.Get("/standings", standings(tournamentService))
	app.Get("/standings/stream", streamStandings(tournamentService))
	app.Get("/pairings", swissPairings(pairingService))
	app.Get("/matches", listMatches(tournamentService))

	// 🔐 Mutating routes require the admin token (when configured)
	admin := middleware.AdminAuthMiddleware(adminToken)
	app.Post("/players", admin, registerPlayer(tournamentService))
	app.Delete("/players", admin, deletePlayers(tournamentService))
	app.Post("/matches", admin, reportMatch(tournamentService))
	app.Delete("/matches", admin, deleteMatches(tournamentService))
}

func registerPlayer(svc *services.TournamentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Name string `json:"name"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
		}

		player, err := svc.RegisterPlayer(c.UserContext(), req.Name)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(player)
	}
}

func countPlayers(svc *services.TournamentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		count, err := svc.CountPlayers(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"count": count})
	}
}

func searchPlayers(svc *services.TournamentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "50"))
		if err != nil {
			limit = 50
		}

		players, err := svc.SearchPlayers(c.UserContext(), c.Query("q", ""), limit)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"players": players, "count": len(players)})
	}
}

func deletePlayers(svc *services.TournamentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeletePlayers(c.UserContext()); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func standings(svc *services.TournamentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.Standings(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"standings": rows, "count": len(rows)})
	}
}

func swissPairings(ps *services.PairingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pairs, err := ps.SwissPairings(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"pairings": pairs, "total_pairs": len(pairs)})
	}
}

func reportMatch(svc *services.TournamentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			WinnerID uint `json:"winner_id"`
			LoserID  uint `json:"loser_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
		}
		if req.WinnerID == 0 || req.LoserID == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "winner_id and loser_id are required"})
		}

		match, err := svc.ReportMatch(c.UserContext(), req.WinnerID, req.LoserID)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(match)
	}
}

func listMatches(svc *services.TournamentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		matches, err := svc.ListMatches(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"matches": matches, "count": len(matches)})
	}
}

func deleteMatches(svc *services.TournamentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeleteMatches(c.UserContext()); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
