// Package dashboard exposes the archive store to the desktop shell as a
// small local HTTP API. It shares the store instance with the MCP router;
// both boundaries see the same in-memory state.
package dashboard

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/HelloDave666/mcp-workspace/internal/archerr"
	"github.com/HelloDave666/mcp-workspace/internal/archive"
	"github.com/HelloDave666/mcp-workspace/internal/storage"
)

// EditDetector reports whether the archive document was modified by
// another process since this one loaded it.
type EditDetector interface {
	ExternalEdit() bool
}

// Server is the dashboard Fiber application.
type Server struct {
	app   *fiber.App
	store *archive.Store
	files *storage.FileStore
	edits EditDetector
	log   zerolog.Logger
	addr  string
}

// NewServer creates the dashboard API. edits may be nil when no watcher is
// running.
func NewServer(addr string, store *archive.Store, files *storage.FileStore, edits EditDetector, logger zerolog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	})

	s := &Server{
		app:   app,
		store: store,
		files: files,
		edits: edits,
		log:   logger.With().Str("component", "dashboard").Logger(),
		addr:  addr,
	}

	app.Use(recover.New())
	app.Use(func(c *fiber.Ctx) error {
		s.log.Debug().Str("method", c.Method()).Str("path", c.Path()).Msg("dashboard request")
		return c.Next()
	})

	api := app.Group("/api")
	api.Get("/projects", s.listProjects)
	api.Get("/health", s.health)
	api.Post("/projects/:id/rename", s.renameProject)
	api.Post("/backup", s.createBackup)
	api.Get("/export", s.exportBackup)
	api.Get("/integrity", s.integrity)
	api.Get("/search", s.search)

	return s
}

// Start blocks serving the API until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.addr).Msg("dashboard API starting")
	return s.app.Listen(s.addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app, used by tests.
func (s *Server) App() *fiber.App { return s.app }

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// fail maps a typed error onto an HTTP status plus a machine-readable body.
func fail(c *fiber.Ctx, err error) error {
	kind := archerr.KindOf(err)

	status := fiber.StatusInternalServerError
	switch kind {
	case archerr.KindNotFound:
		status = fiber.StatusNotFound
	case archerr.KindInvalidArguments:
		status = fiber.StatusBadRequest
	case archerr.KindDuplicateName, archerr.KindConfirmationRequired, archerr.KindNoCurrentProject:
		status = fiber.StatusConflict
	}

	return c.Status(status).JSON(errorBody{
		Kind:    string(kind),
		Message: archerr.MessageOf(err),
	})
}

func (s *Server) listProjects(c *fiber.Ctx) error {
	currentID := ""
	if p := s.store.CurrentProject(); p != nil {
		currentID = p.ID
	}
	return c.JSON(fiber.Map{
		"projects":           s.store.Projects(),
		"current_project_id": currentID,
	})
}

func (s *Server) health(c *fiber.Ctx) error {
	h, err := s.store.CheckStorageHealth()
	if err != nil {
		return fail(c, err)
	}

	externalEdit := false
	if s.edits != nil {
		externalEdit = s.edits.ExternalEdit()
	}

	return c.JSON(fiber.Map{
		"storage":       h,
		"external_edit": externalEdit,
	})
}

type renameRequest struct {
	NewName        string  `json:"new_name"`
	NewDescription *string `json:"new_description"`
}

func (s *Server) renameProject(c *fiber.Ctx) error {
	var req renameRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, archerr.InvalidArguments("invalid request body: %v", err))
	}

	p, err := s.store.RenameProject(c.Params("id"), req.NewName, req.NewDescription)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(p)
}

func (s *Server) createBackup(c *fiber.Ctx) error {
	dir, err := s.store.CreateBackup()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"backup_dir": dir})
}

func (s *Server) exportBackup(c *fiber.Ctx) error {
	dest := c.Query("dest")
	if dest == "" {
		return fail(c, archerr.InvalidArguments("query parameter dest is required"))
	}
	if err := s.files.ExportBackup(dest); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"exported_to": dest})
}

func (s *Server) integrity(c *fiber.Ctx) error {
	return c.JSON(s.store.AnalyzeIntegrity())
}

func (s *Server) search(c *fiber.Ctx) error {
	results, err := s.store.SearchConversations(c.Query("q"), c.Query("project_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"results": results})
}
