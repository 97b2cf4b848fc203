package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"tracker-api/config"
	"tracker-api/domain"
)

const exportScope = "export"

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, svc Services, auth config.AuthConfig, logger *log.Logger) {
	e.JSONSerializer = sonicSerializer{}
	e.HTTPErrorHandler = errorHandler(logger)
	e.Use(Observe(logger))
	e.Use(middleware.Recover())

	e.GET("/healthz", healthz())

	projects := e.Group("/api/projects", BasicAuth(auth, logger))
	projects.POST("", createProject(svc.Projects, logger))
	projects.GET("", listProjects(svc.Projects, logger))
	projects.GET("/:id", getProject(svc.Projects, logger))
	projects.PUT("/:id", updateProject(svc.Projects, logger))
	projects.DELETE("/:id", deleteProject(svc.Projects, logger))
	projects.GET("/:id/summary", projectSummary(svc.Projects, logger))
	projects.POST("/:id/todos", linkTodo(svc.Links, logger))
	projects.DELETE("/:id/todos/:todoId", unlinkTodo(svc.Links, logger))
	projects.POST("/:id/export", exportProject(svc.Exporter, svc.Deduper, logger))

	todos := e.Group("/api/todos")
	todos.POST("", createTodo(svc.Links, logger))
	todos.GET("/:id", getTodo(svc.Todos, logger))
	todos.PUT("/:id", updateTodo(svc.Todos, logger))
	todos.DELETE("/:id", deleteTodo(svc.Links, logger))
	todos.DELETE("/:id/:projectId", deleteTodoFromProject(svc.Links, logger))
	todos.PUT("/:id/complete", setTodoStatus(svc.Todos, domain.StatusCompleted, logger))
	todos.PUT("/:id/pending", setTodoStatus(svc.Todos, domain.StatusPending, logger))
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func badBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid body"})
}

func createProject(svc ProjectService, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req projectRequest
		if err := decodeBody(c, &req); err != nil {
			return badBody(c)
		}
		p, err := svc.Create(c.Request().Context(), req.Title)
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusCreated, p)
	}
}

func listProjects(svc ProjectService, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		projects, err := svc.List(c.Request().Context())
		if err != nil {
			return respondError(c, logger, err)
		}
		if len(projects) == 0 {
			return c.JSON(http.StatusNotFound, errorResponse{Message: "No projects found"})
		}
		return c.JSON(http.StatusOK, projects)
	}
}

func getProject(svc ProjectService, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := svc.Get(c.Request().Context(), c.Param("id"))
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, p)
	}
}

func updateProject(svc ProjectService, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req projectRequest
		if err := decodeBody(c, &req); err != nil {
			return badBody(c)
		}
		p, err := svc.UpdateTitle(c.Request().Context(), c.Param("id"), req.Title)
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, p)
	}
}

func deleteProject(svc ProjectService, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, messageResponse{Message: "Project deleted successfully"})
	}
}

func projectSummary(svc ProjectService, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		sum, err := svc.Summary(c.Request().Context(), c.Param("id"))
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, sum)
	}
}

func linkTodo(links Relationships, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req linkTodoRequest
		if err := decodeBody(c, &req); err != nil {
			return badBody(c)
		}
		if err := links.LinkTodo(c.Request().Context(), c.Param("id"), req.TodoID); err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, messageResponse{Message: "Todo added successfully"})
	}
}

func unlinkTodo(links Relationships, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := links.UnlinkTodo(c.Request().Context(), c.Param("id"), c.Param("todoId")); err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, messageResponse{Message: "Todo removed successfully"})
	}
}

// exportProject ships the project summary as a gist. A repeated
// Idempotency-Key is rejected until the first export fails or the key expires.
func exportProject(exp Exporter, dedup Deduper, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		projectID := c.Param("id")
		key := strings.TrimSpace(c.Request().Header.Get(headerIdempotencyKey))
		scope := exportScope + ":" + projectID

		recorded := false
		if key != "" && dedup != nil {
			added, err := dedup.Add(ctx, scope, key)
			switch {
			case err != nil:
				logger.WithError(err).WithField("project", projectID).Warn("idempotency check failed; exporting anyway")
			case !added:
				return c.JSON(http.StatusConflict, errorResponse{Message: "Export already submitted for this Idempotency-Key"})
			default:
				recorded = true
			}
		}

		res, err := exp.Export(ctx, projectID)
		if err != nil {
			if recorded {
				if rerr := dedup.Remove(ctx, scope, key); rerr != nil {
					logger.WithError(rerr).Warn("failed to release idempotency key")
				}
			}
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, exportResponse{
			Message:         "Project summary exported successfully as Gist",
			MarkdownContent: res.Markdown,
			GistID:          res.GistID,
			GistURL:         res.GistURL,
		})
	}
}
