package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"collection-route-service/internal/api/dto"
	"collection-route-service/internal/ports"
)

type LocationHandler struct {
	Repo ports.ScenarioRepository
}

// List returns all locations of the stored scenario.
func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	locations, _, err := h.Repo.LoadScenario(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("load scenario failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListLocationResponse{Locations: make([]dto.LocationResponse, 0, len(locations))}
	for _, loc := range locations {
		res.Locations = append(res.Locations, dto.LocationResponse{
			ID:         loc.ID,
			Role:       loc.Role.String(),
			Included:   loc.Included,
			DirectCost: loc.DirectCost,
			Fixed:      loc.Fixed.String(),
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
