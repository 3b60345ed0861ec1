package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/sayilar/internal/errors"
	"github.com/vytor/sayilar/internal/models"
	"github.com/vytor/sayilar/internal/numbers"
	"github.com/vytor/sayilar/internal/services"
)

type createScreenRequest struct {
	ProfileID int64 `json:"profile_id"`
}

type createScreenResponse struct {
	ID     string          `json:"id"`
	Screen models.Snapshot `json:"screen"`
}

type startGameRequest struct {
	Difficulty string `json:"difficulty"`
}

type answerRequest struct {
	Value *int `json:"value"`
}

type backResponse struct {
	Delegate bool            `json:"delegate"`
	Screen   models.Snapshot `json:"screen"`
}

// void adapts an operation that cannot fail.
func void(fn func(*numbers.Screen)) services.ScreenAction {
	return func(screen *numbers.Screen) error {
		fn(screen)
		return nil
	}
}

// screenAction serves a bodiless operation on the screen named in the URL.
func (s *Server) screenAction(action services.ScreenAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.runAction(w, r, action)
	}
}

func (s *Server) runAction(w http.ResponseWriter, r *http.Request, action services.ScreenAction) {
	snap, err := s.ScreenService.Do(r.Context(), chi.URLParam(r, "id"), action)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, snap)
}

func (s *Server) handleCreateScreen(w http.ResponseWriter, r *http.Request) {
	var req createScreenRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	id, snap, err := s.ScreenService.Create(r.Context(), req.ProfileID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.Header().Set("Location", "/screens/"+id)
	writeJSON(w, r, http.StatusCreated, createScreenResponse{ID: id, Screen: snap})
}

func (s *Server) handleGetScreen(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ScreenService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, snap)
}

func (s *Server) handleDeleteScreen(w http.ResponseWriter, r *http.Request) {
	if err := s.ScreenService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOpenStage(w http.ResponseWriter, r *http.Request) {
	raw, err := urlParamInt(r, "stage")
	if err != nil {
		handleError(w, r, err)
		return
	}
	stage, err := models.ParseStage(int(raw))
	if err != nil {
		handleError(w, r, errors.NewValidationError("stage", err.Error()))
		return
	}
	s.runAction(w, r, func(screen *numbers.Screen) error {
		return screen.OpenStage(stage)
	})
}

func (s *Server) handleOpenNumber(w http.ResponseWriter, r *http.Request) {
	n, err := urlParamInt(r, "number")
	if err != nil {
		handleError(w, r, err)
		return
	}
	s.runAction(w, r, func(screen *numbers.Screen) error {
		return screen.OpenNumber(int(n))
	})
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	var req startGameRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	d, err := models.ParseDifficulty(req.Difficulty)
	if err != nil {
		handleError(w, r, errors.NewValidationError("difficulty", "must be easy or hard"))
		return
	}
	s.runAction(w, r, func(screen *numbers.Screen) error {
		return screen.StartGame(d)
	})
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Value == nil {
		handleError(w, r, errors.NewValidationError("value", "is required"))
		return
	}
	v := *req.Value
	s.runAction(w, r, func(screen *numbers.Screen) error {
		screen.SubmitAnswer(v)
		return nil
	})
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	var delegate bool
	snap, err := s.ScreenService.Do(r.Context(), chi.URLParam(r, "id"), func(screen *numbers.Screen) error {
		delegate = screen.Back()
		return nil
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, backResponse{Delegate: delegate, Screen: snap})
}
