// Package api implements the REST API for running ego programs over HTTP.
package api

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lemonberrylabs/ego/pkg/pipeline"
	"github.com/lemonberrylabs/ego/pkg/store"
	"github.com/lemonberrylabs/ego/pkg/types"
)

// Server is the HTTP API server.
type Server struct {
	app  *fiber.App
	exec *Executor
}

// New creates a new API server.
func New(exec *Executor) *Server {
	srv := &Server{exec: exec}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	// Runs API
	app.Post("/v1/runs", srv.createRun)
	app.Get("/v1/runs/:id", srv.getRun)
	app.Get("/v1/runs", srv.listRuns)

	// Front-end phases
	app.Post("/v1/tokenize", srv.tokenize)
	app.Post("/v1/parse", srv.parse)

	srv.app = app
	return srv
}

// Listen starts the HTTP server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing and for mounting
// the web UI).
func (s *Server) App() *fiber.App {
	return s.app
}

type sourceRequest struct {
	Source string `json:"source"`
}

// requestError is a client error raised while reading a request.
type requestError struct {
	code    int
	status  string
	message string
}

func (e *requestError) Error() string { return e.message }

func readSource(c *fiber.Ctx) (string, *requestError) {
	var req sourceRequest
	if err := c.BodyParser(&req); err != nil {
		return "", &requestError{400, "INVALID_ARGUMENT", fmt.Sprintf("invalid request body: %v", err)}
	}
	if req.Source == "" {
		return "", &requestError{400, "INVALID_ARGUMENT", "source is required"}
	}
	return req.Source, nil
}

func (s *Server) createRun(c *fiber.Ctx) error {
	source, reqErr := readSource(c)
	if reqErr != nil {
		return errorResponse(c, reqErr.code, reqErr.status, reqErr.message)
	}

	run, err := s.exec.Execute(c.UserContext(), source)
	if err != nil {
		return errorResponse(c, 500, "INTERNAL", err.Error())
	}
	return c.Status(200).JSON(runToJSON(run))
}

func (s *Server) getRun(c *fiber.Ctx) error {
	run, err := s.exec.Store().GetRun(c.Params("id"))
	if err != nil {
		return errorResponse(c, 404, "NOT_FOUND", err.Error())
	}
	return c.JSON(runToJSON(run))
}

func (s *Server) listRuns(c *fiber.Ctx) error {
	runs := s.exec.Store().ListRuns()

	items := make([]fiber.Map, len(runs))
	for i, run := range runs {
		items[i] = runToJSON(run)
	}
	return c.JSON(fiber.Map{
		"runs": items,
	})
}

func (s *Server) tokenize(c *fiber.Ctx) error {
	source, reqErr := readSource(c)
	if reqErr != nil {
		return errorResponse(c, reqErr.code, reqErr.status, reqErr.message)
	}
	return c.JSON(fiber.Map{
		"tokens": pipeline.Tokenize(source),
	})
}

func (s *Server) parse(c *fiber.Ctx) error {
	source, reqErr := readSource(c)
	if reqErr != nil {
		return errorResponse(c, reqErr.code, reqErr.status, reqErr.message)
	}

	tree, err := pipeline.Parse(source)
	if err != nil {
		if d, ok := types.AsDiagnostic(err); ok {
			return c.Status(400).JSON(fiber.Map{
				"error": fiber.Map{
					"code":       400,
					"message":    d.Error(),
					"status":     "INVALID_ARGUMENT",
					"diagnostic": d,
				},
			})
		}
		return errorResponse(c, 500, "INTERNAL", err.Error())
	}
	return c.JSON(fiber.Map{
		"tree":   tree,
		"render": tree.String(),
	})
}

// --- Helpers ---

func errorResponse(c *fiber.Ctx, code int, status, message string) error {
	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
			"status":  status,
		},
	})
}

func runToJSON(run *store.Run) fiber.Map {
	result := fiber.Map{
		"id":        run.ID,
		"state":     run.State,
		"source":    run.Source,
		"output":    run.Output,
		"steps":     run.Steps,
		"startTime": run.StartTime.Format(time.RFC3339),
	}
	if run.Error != nil {
		errMap := fiber.Map{
			"kind":    run.Error.Kind,
			"message": run.Error.Message,
		}
		if run.Error.Line > 0 {
			errMap["line"] = run.Error.Line
		}
		result["error"] = errMap
	}
	if !run.EndTime.IsZero() {
		result["endTime"] = run.EndTime.Format(time.RFC3339)
	}
	return result
}
