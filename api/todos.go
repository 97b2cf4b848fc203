package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"tracker-api/domain"
)

func createTodo(links Relationships, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req createTodoRequest
		if err := decodeBody(c, &req); err != nil {
			return badBody(c)
		}
		if req.ProjectID == "" || strings.TrimSpace(req.Description) == "" {
			return c.JSON(http.StatusBadRequest, errorResponse{Message: "Project ID and description are required"})
		}
		p, t, err := links.AddTodo(c.Request().Context(), req.ProjectID, req.Description)
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusCreated, createTodoResponse{Project: p, Todo: t})
	}
}

func getTodo(svc TodoService, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		t, err := svc.Get(c.Request().Context(), c.Param("id"))
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, t)
	}
}

func updateTodo(svc TodoService, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req updateTodoRequest
		if err := decodeBody(c, &req); err != nil {
			return badBody(c)
		}
		changes := domain.TodoChanges{Description: req.Description}
		if req.Status != nil {
			st, err := domain.ParseStatus(*req.Status)
			if err != nil {
				return respondError(c, logger, err)
			}
			changes.Status = &st
		}
		t, err := svc.Update(c.Request().Context(), c.Param("id"), changes)
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, t)
	}
}

func deleteTodo(links Relationships, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := links.DeleteTodo(c.Request().Context(), c.Param("id")); err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, messageResponse{Message: "Todo deleted successfully"})
	}
}

func deleteTodoFromProject(links Relationships, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := links.DeleteTodoCascade(c.Request().Context(), c.Param("id"), c.Param("projectId"))
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, messageResponse{Message: "Todo deleted successfully"})
	}
}

func setTodoStatus(svc TodoService, status domain.Status, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		t, err := svc.SetStatus(c.Request().Context(), c.Param("id"), status)
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, t)
	}
}
