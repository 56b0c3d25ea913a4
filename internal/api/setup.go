package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/pihole-card-core/internal/card"
)

// setupResponse is the body of GET /setup and of setup.changed events.
type setupResponse struct {
	Setup   *card.SetupRecord `json:"setup"`
	Summary card.Summary      `json:"summary"`
}

func newSetupResponse(setup *card.SetupRecord) setupResponse {
	return setupResponse{
		Setup:   setup,
		Summary: card.Summarize(setup),
	}
}

// configResponse is the body of GET /config.
type configResponse struct {
	card.Config

	PauseDurations    []int          `json:"pause_duration_seconds"`
	VisibleSections   []card.Section `json:"visible_sections"`
	CollapsedSections []card.Section `json:"collapsed"`
}

// handleGetConfig returns the card configuration with derived UI fields.
func (s *Server) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	resp := configResponse{Config: s.card}

	for _, d := range s.card.PauseDurations() {
		resp.PauseDurations = append(resp.PauseDurations, int(d.Seconds()))
	}
	resp.VisibleSections = []card.Section{}
	resp.CollapsedSections = []card.Section{}
	for _, sec := range card.AllSections {
		if !s.card.ShowSection(sec) {
			continue
		}
		resp.VisibleSections = append(resp.VisibleSections, sec)
		if s.card.IsCollapsed(sec) {
			resp.CollapsedSections = append(resp.CollapsedSections, sec)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleGetSetup returns the assembled setup. setup is null when no device
// is configured; it has an empty device list when none resolved.
func (s *Server) handleGetSetup(w http.ResponseWriter, _ *http.Request) {
	setup, _ := s.assemble()
	writeJSON(w, http.StatusOK, newSetupResponse(setup))
}

// handleGetDevice assembles a single device by ID.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, ok := card.AssembleDevice(s.store.Snapshot(), &s.card, id)
	if !ok {
		writeNotFound(w, "device not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
