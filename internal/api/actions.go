package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/pihole-card-core/internal/card"
)

// Entity actions exposed under /entities/{entity_id}.
const (
	actionToggle  = "toggle"
	actionPress   = "press"
	actionInstall = "install"
)

// PauseRequest is the body of POST /actions/pause.
// Duration accepts seconds or a Go duration string ("5m").
type PauseRequest struct {
	Duration *card.PauseDuration `json:"duration"`
}

// acceptedResponse is returned for fire-and-forget actions.
type acceptedResponse struct {
	Status   string `json:"status"`
	Commands int    `json:"commands"`
}

func writeAccepted(w http.ResponseWriter, commands int) {
	writeJSON(w, http.StatusAccepted, acceptedResponse{Status: "accepted", Commands: commands})
}

// handlePause disables blocking on every device for the requested duration.
func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	var req PauseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Duration == nil {
		writeValidation(w, "duration is required")
		return
	}

	s.runSetupAction(w, r, func(ctx context.Context, setup *card.SetupRecord) (int, error) {
		return s.actions.Pause(ctx, setup, time.Duration(*req.Duration))
	})
}

// handleResume re-enables blocking on every device.
func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.runSetupAction(w, r, s.actions.Resume)
}

// handleRefresh presses every device's refresh button.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.runSetupAction(w, r, s.actions.Refresh)
}

// handlePurge presses every device's purge-diagnosis button.
func (s *Server) handlePurge(w http.ResponseWriter, r *http.Request) {
	s.runSetupAction(w, r, s.actions.PurgeDiagnosis)
}

// runSetupAction assembles the setup and applies fn to it.
func (s *Server) runSetupAction(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, setup *card.SetupRecord) (int, error),
) {
	setup, ok := s.assemble()
	if !ok {
		writeNotConfigured(w)
		return
	}

	n, err := fn(r.Context(), setup)
	if err != nil {
		s.writeActionError(w, err)
		return
	}
	s.logger.Info("card action", "path", r.URL.Path, "subject", tokenSubject(r.Context()), "commands", n)
	writeAccepted(w, n)
}

// handleEntityAction returns a handler applying action to the entity in
// the URL. The entity must be placed in the current setup.
func (s *Server) handleEntityAction(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entityID := chi.URLParam(r, "entity_id")

		setup, ok := s.assemble()
		if !ok {
			writeNotConfigured(w)
			return
		}
		e, ok := setup.FindEntity(entityID)
		if !ok {
			writeNotFound(w, "entity not found")
			return
		}

		var err error
		switch action {
		case actionToggle:
			err = s.actions.Toggle(r.Context(), e)
		case actionPress:
			err = s.actions.Press(r.Context(), e)
		case actionInstall:
			err = s.actions.InstallUpdate(r.Context(), e)
		}
		if err != nil {
			s.writeActionError(w, err)
			return
		}
		writeAccepted(w, 1)
	}
}
