package web

import (
	"errors"
	"net/http"
	"net/url"

	"famjam-cli/internal/boardid"
	"famjam-cli/internal/dispatch"
	"famjam-cli/internal/model"
	"famjam-cli/internal/projection"
	"famjam-cli/internal/remote"

	"github.com/labstack/echo/v4"
)

type createTaskRequest struct {
	Title     string `json:"title"`
	Assignee  string `json:"assignee"`
	DueDate   string `json:"dueDate"`
	Priority  string `json:"priority"`
	CreatedBy string `json:"createdBy"`
}

type setStatusRequest struct {
	Status string `json:"status"`
}

type listResponse struct {
	Board  string            `json:"board"`
	Filter projection.Filter `json:"filter"`
	Sort   projection.Sort   `json:"sort"`
	Total  int               `json:"total"`
	Tasks  []model.Task      `json:"tasks"`
}

func boardParam(c echo.Context) string {
	raw := c.Param("board")
	if v, err := url.PathUnescape(raw); err == nil {
		raw = v
	}
	return boardid.Normalize(raw)
}

func (s *Server) handleNormalize(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"board": boardid.Normalize(c.QueryParam("code"))})
}

func (s *Server) handleListTasks(c echo.Context) error {
	board := boardParam(c)
	if board == "" {
		return s.actionError(c, dispatch.ActionCreate, dispatch.EmptyInputError{Field: "board"})
	}
	docs, err := s.cfg.Store.Query(c.Request().Context(), board, remote.Where{})
	if err != nil {
		s.logger.WithError(err).WithField("board", board).Warn("list tasks")
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Couldn't load tasks. Check store config."})
	}
	tasks := make([]model.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, model.Decode(d.ID, d.Fields))
	}
	filter := projection.ParseFilter(c.QueryParam("filter"))
	sortBy := projection.ParseSort(c.QueryParam("sort"))
	return c.JSON(http.StatusOK, listResponse{
		Board:  board,
		Filter: filter,
		Sort:   sortBy,
		Total:  len(tasks),
		Tasks:  projection.Project(tasks, filter, sortBy),
	})
}

func (s *Server) handleCreateTask(c echo.Context) error {
	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	id, err := s.disp.CreateTask(c.Request().Context(), boardParam(c), dispatch.NewTask{
		Title:     req.Title,
		Assignee:  req.Assignee,
		DueDate:   req.DueDate,
		Priority:  req.Priority,
		CreatedBy: req.CreatedBy,
	})
	if err != nil {
		return s.actionError(c, dispatch.ActionCreate, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"id":   id,
		"note": dispatch.Outcome{Action: dispatch.ActionCreate}.Note(),
	})
}

func (s *Server) handleSetStatus(c echo.Context) error {
	var req setStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	status, ok := model.ParseStatus(req.Status)
	if !ok {
		return s.actionError(c, dispatch.ActionSetStatus, dispatch.InvalidInputError{Field: "status", Value: req.Status})
	}
	if err := s.disp.SetStatus(c.Request().Context(), boardParam(c), c.Param("id"), status); err != nil {
		return s.actionError(c, dispatch.ActionSetStatus, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"note": dispatch.Outcome{Action: dispatch.ActionSetStatus, Status: status}.Note(),
	})
}

func (s *Server) handleDeleteTask(c echo.Context) error {
	if err := s.disp.DeleteTask(c.Request().Context(), boardParam(c), c.Param("id")); err != nil {
		return s.actionError(c, dispatch.ActionDelete, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleClearDone(c echo.Context) error {
	res, err := s.disp.ClearDone(c.Request().Context(), boardParam(c))
	if err != nil && !errors.Is(err, dispatch.ErrNothingToClear) {
		return s.actionError(c, dispatch.ActionClearDone, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"removed": res.Removed,
		"note":    dispatch.Outcome{Action: dispatch.ActionClearDone, Removed: res.Removed, Err: err}.Note(),
	})
}

// actionError maps dispatcher errors onto HTTP statuses; the body carries the user-facing note.
func (s *Server) actionError(c echo.Context, action dispatch.Action, err error) error {
	status := http.StatusBadGateway
	var empty dispatch.EmptyInputError
	var invalid dispatch.InvalidInputError
	switch {
	case errors.As(err, &empty), errors.As(err, &invalid):
		status = http.StatusBadRequest
	case errors.Is(err, remote.ErrNotFound):
		status = http.StatusNotFound
	}
	return c.JSON(status, map[string]string{
		"error": err.Error(),
		"note":  dispatch.Outcome{Action: action, Err: err}.Note(),
	})
}
