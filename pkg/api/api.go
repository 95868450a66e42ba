// Package api implements the REST surface for evaluating dice expressions.
package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lemonberrylabs/dice-notation/pkg/dice"
	"github.com/lemonberrylabs/dice-notation/pkg/stats"
)

// Server is the REST API server.
type Server struct {
	app    *fiber.App
	eval   *dice.Evaluator
	stats  *stats.Store
	logger zerolog.Logger
}

// New creates a new API server.
func New(ev *dice.Evaluator, st *stats.Store, logger zerolog.Logger) *Server {
	srv := &Server{
		eval:   ev,
		stats:  st,
		logger: logger,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          srv.handleError,
	})
	app.Use(srv.logRequests)

	app.Post("/v1/rolls", srv.postRoll)
	app.Get("/v1/rolls", srv.getRoll)
	app.Get("/v1/stats", srv.getStats)
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	srv.app = app
	return srv
}

// Listen starts the HTTP server on the given address.
func (s *Server) Listen(addr string) error {
	if err := s.app.Listen(addr); err != nil {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

// RollResponse is the payload returned for a successful evaluation.
type RollResponse struct {
	Expression string  `json:"expression" yaml:"expression"`
	Total      float32 `json:"total" yaml:"total"`
	TotalText  string  `json:"totalText" yaml:"totalText"`
	Display    string  `json:"display" yaml:"display"`
}

// NewRollResponse builds the response for expression and its result.
func NewRollResponse(expression string, res dice.Result) RollResponse {
	return RollResponse{
		Expression: expression,
		Total:      res.Value,
		TotalText:  dice.FormatTotal(res.Value),
		Display:    res.Display,
	}
}

// ErrorStatus maps an evaluation error to an HTTP code and a canonical status name.
func ErrorStatus(err error) (int, string) {
	switch dice.KindOf(err) {
	case 0:
		return fiber.StatusInternalServerError, "INTERNAL"
	case dice.KindTooManyDice:
		return fiber.StatusUnprocessableEntity, "RESOURCE_EXHAUSTED"
	default:
		return fiber.StatusBadRequest, "INVALID_ARGUMENT"
	}
}

// --- Handlers ---

type rollRequest struct {
	Expression string `json:"expression"`
}

func (s *Server) postRoll(c *fiber.Ctx) error {
	var req rollRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_ARGUMENT", fmt.Sprintf("invalid request body: %v", err), "")
	}
	return s.roll(c, req.Expression)
}

func (s *Server) getRoll(c *fiber.Ctx) error {
	return s.roll(c, c.Query("expression"))
}

func (s *Server) roll(c *fiber.Ctx, expression string) error {
	if strings.TrimSpace(expression) == "" {
		return writeError(c, fiber.StatusBadRequest, "INVALID_ARGUMENT", "expression is required", "")
	}

	res, err := s.eval.Roll(expression)
	s.stats.Record(res, err)
	if err != nil {
		kind := dice.KindOf(err)
		s.logger.Debug().
			Str("expression", expression).
			Str("kind", kind.String()).
			Err(err).
			Msg("evaluation failed")
		code, status := ErrorStatus(err)
		return writeError(c, code, status, err.Error(), kind.String())
	}

	return c.JSON(NewRollResponse(expression, res))
}

func (s *Server) getStats(c *fiber.Ctx) error {
	return c.JSON(s.stats.Snapshot())
}

// --- Middleware ---

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debug().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("dur", time.Since(start)).
		Msg("request")
	return err
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	status := "INTERNAL"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		switch code {
		case fiber.StatusNotFound:
			status = "NOT_FOUND"
		case fiber.StatusMethodNotAllowed:
			status = "UNIMPLEMENTED"
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
			status = "INVALID_ARGUMENT"
		}
	}
	if code >= fiber.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return writeError(c, code, status, err.Error(), "")
}

// --- Helpers ---

func writeError(c *fiber.Ctx, code int, status, message, kind string) error {
	body := fiber.Map{
		"code":    code,
		"message": message,
		"status":  status,
	}
	if kind != "" {
		body["kind"] = kind
	}
	return c.Status(code).JSON(fiber.Map{"error": body})
}
