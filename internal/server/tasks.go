package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/grindworks/grindstone/internal/database"
	"github.com/grindworks/grindstone/internal/logger"
)

type taskRequest struct {
	Title  string     `json:"title"`
	Notes  string     `json:"notes"`
	DueAt  *time.Time `json:"due_at"`
	Points int        `json:"points"`
}

type taskResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Notes       string     `json:"notes"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	Points      int        `json:"points"`
	Done        bool       `json:"done"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func toTaskResponse(task *database.Task) taskResponse {
	return taskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Notes:       task.Notes,
		DueAt:       task.DueAt,
		Points:      task.Points,
		Done:        task.Done,
		CreatedAt:   task.CreatedAt,
		CompletedAt: task.CompletedAt,
	}
}

func taskIDFrom(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r)
	tasks, err := s.db.ListTasks(account.ID)
	if err != nil {
		logger.Error("Failed to list tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, toTaskResponse(task))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r)
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := s.db.CreateTask(account.ID, req.Title, req.Notes, req.DueAt, req.Points)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toTaskResponse(task))
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r)
	taskID, err := taskIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := s.db.UpdateTask(account.ID, taskID, req.Title, req.Notes, req.DueAt, req.Points)
	if err != nil {
		if errors.Is(err, database.ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r)
	taskID, err := taskIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	if err := s.db.DeleteTask(account.ID, taskID); err != nil {
		if errors.Is(err, database.ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		logger.Error("Failed to delete task", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r)
	taskID, err := taskIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	awarded, err := s.db.CompleteTask(account.ID, taskID)
	if err != nil {
		if errors.Is(err, database.ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		logger.Error("Failed to complete task", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	balance, err := s.db.GetPointsBalance(account.ID)
	if err != nil {
		logger.Error("Failed to load points balance", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	logger.Audit("Task completed", "account_id", account.ID, "task_id", taskID, "points_awarded", awarded)
	writeJSON(w, http.StatusOK, map[string]any{
		"points_awarded": awarded,
		"points_balance": balance,
	})
}

func (s *Server) handlePoints(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r)
	balance, err := s.db.GetPointsBalance(account.ID)
	if err != nil {
		logger.Error("Failed to load points balance", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"balance": balance})
}
