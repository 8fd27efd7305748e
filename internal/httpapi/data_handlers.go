package httpapi

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// interactionsTable holds the student chatbot message log the dashboard reads.
const interactionsTable = "interactions"

const defaultMessageLimit = 100

func (s *Server) handleAnalyticsOverview(c *fiber.Ctx) error {
	var rows []map[string]any
	if err := s.data.Table(interactionsTable).Select("*").Limit(defaultMessageLimit).Get(c.UserContext(), &rows); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"total_messages": len(rows),
		"data":           rows,
	})
}

func (s *Server) handleAnalyticsDaily(c *fiber.Ctx) error {
	return s.passthroughList(c, 0)
}

func (s *Server) handleAnalyticsMessages(c *fiber.Ctx) error {
	return s.passthroughList(c, 0)
}

func (s *Server) handleListMessages(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultMessageLimit)
	return s.passthroughList(c, limit)
}

func (s *Server) handleGetMessage(c *fiber.Ctx) error {
	id := c.Params("id")

	var rows []map[string]any
	if err := s.data.Table(interactionsTable).Select("*").Eq("id", id).Get(c.UserContext(), &rows); err != nil {
		return err
	}

	if len(rows) == 0 {
		return goerrors.New("message not found", goerrors.CategoryNotFound).
			WithTextCode("MESSAGE_NOT_FOUND").
			WithCode(goerrors.CodeNotFound)
	}

	return c.JSON(rows[0])
}

func (s *Server) passthroughList(c *fiber.Ctx, limit int) error {
	q := s.data.Table(interactionsTable).Select("*")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []map[string]any
	if err := q.Get(c.UserContext(), &rows); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": rows})
}
