package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"collection-route-service/internal/api/dto"
	"collection-route-service/internal/domain"
	"collection-route-service/internal/ports"
	"collection-route-service/internal/services"
)

type SolveHandler struct {
	Repo   ports.ScenarioRepository
	Solver ports.Solver
	// Cache is optional; a nil cache disables result reuse.
	Cache ports.ResultCache
}

// Solve runs one optimization over the stored scenario with the request's
// config and operator overrides. Identical runs are answered from the
// result cache when one is wired.
func (h *SolveHandler) Solve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.SolveRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	cfg, err := planConfigFromRequest(req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	locations, edges, err := h.Repo.LoadScenario(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("load scenario failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	locations, err = applyOverrides(locations, req.Overrides)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	graph, err := domain.NewGraph(locations, edges)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	key := runKey(locations, edges, cfg)
	if h.Cache != nil {
		if cached, ok, err := h.Cache.Get(r.Context(), key); err != nil {
			// A broken cache must not fail the run.
			log.Warn().Err(err).Msg("result cache get failed")
		} else if ok {
			writeJSON(w, r, http.StatusOK, toSolveResponse(cached, true))
			return
		}
	}

	res, err := services.OptimizeRoutes(r.Context(), graph, cfg, h.Solver)
	if err != nil {
		var vErr *domain.ValidationError
		var iErr *domain.InfeasibleError
		switch {
		case errors.As(err, &vErr):
			writeError(w, r, http.StatusBadRequest, vErr.Error())
		case errors.As(err, &iErr):
			writeError(w, r, http.StatusUnprocessableEntity, iErr.Error())
		default:
			log.Error().Err(err).Msg("optimize routes failed")
			writeError(w, r, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	if h.Cache != nil {
		if err := h.Cache.Put(r.Context(), key, res); err != nil {
			log.Warn().Err(err).Msg("result cache put failed")
		}
	}

	writeJSON(w, r, http.StatusOK, toSolveResponse(res, false))
}

func planConfigFromRequest(req dto.SolveRequest) (domain.PlanConfig, error) {
	cfg := domain.PlanConfig{
		MaxDriveMinutes:   req.MaxDriveMinutes,
		MaxRoutes:         req.MaxRoutes,
		FlatCostPerMinute: req.FlatCostPerMinute,
		GasCostPerMile:    req.GasCostPerMile,
		StaffCostPerHour:  req.StaffCostPerHour,
		StartID:           req.Start,
		EndID:             req.End,
	}
	if cfg.MaxRoutes == 0 {
		cfg.MaxRoutes = 1
	}

	switch req.CostModel {
	case "", "flat":
		cfg.CostModel = domain.CostModelFlat
	case "itemized":
		cfg.CostModel = domain.CostModelItemized
	default:
		return cfg, errors.New("cost_model must be \"flat\" or \"itemized\"")
	}

	return cfg, nil
}

// applyOverrides merges the request's per-location edits into a copy of
// the stored location table.
func applyOverrides(locations []domain.Location, overrides []dto.SolveOverride) ([]domain.Location, error) {
	if len(overrides) == 0 {
		return locations, nil
	}

	byID := make(map[string]int, len(locations))
	out := make([]domain.Location, len(locations))
	copy(out, locations)
	for i, loc := range out {
		byID[loc.ID] = i
	}

	for _, o := range overrides {
		i, ok := byID[o.LocationID]
		if !ok {
			return nil, errors.New("override references unknown location " + o.LocationID)
		}
		if o.Fixed != nil {
			fixed, err := domain.ParseFixedDecision(*o.Fixed)
			if err != nil {
				return nil, err
			}
			out[i].Fixed = fixed
		}
		if o.DirectCost != nil {
			out[i].DirectCost = *o.DirectCost
		}
		if o.Included != nil {
			out[i].Included = *o.Included
		}
	}

	return out, nil
}

// runKey hashes the exact solver input so cache hits are only possible for
// byte-identical runs.
func runKey(locations []domain.Location, edges []domain.Edge, cfg domain.PlanConfig) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	_ = enc.Encode(locations)
	_ = enc.Encode(edges)
	_ = enc.Encode(cfg)
	return hex.EncodeToString(h.Sum(nil))
}

func toSolveResponse(res *domain.Result, cached bool) dto.SolveResponse {
	out := dto.SolveResponse{
		RunID:     res.RunID,
		Status:    string(res.Status),
		Direct:    make([]dto.DirectShipmentResponse, 0, len(res.Direct)),
		Routes:    make([]dto.RouteResponse, 0, len(res.Routes)),
		TotalCost: res.TotalCost,
		Cached:    cached,
	}

	for _, d := range res.Direct {
		out.Direct = append(out.Direct, dto.DirectShipmentResponse{LocationID: d.LocationID, Cost: d.Cost})
	}
	for _, route := range res.Routes {
		stops := make([]dto.RouteStopResponse, 0, len(route.Stops))
		for _, s := range route.Stops {
			stops = append(stops, dto.RouteStopResponse{LocationID: s.LocationID, Minutes: s.Minutes, Cost: s.Cost})
		}
		out.Routes = append(out.Routes, dto.RouteResponse{
			Stops:        stops,
			TotalMinutes: route.TotalMinutes,
			TotalCost:    route.TotalCost,
		})
	}

	return out
}
