package clock

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/resolvefit/backend/internal/resolution"
	"github.com/resolvefit/backend/internal/telemetry/tracing"
	"github.com/resolvefit/backend/pkg"

	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

type advanceRequest struct {
	GoalID string `json:"goal_id"`
	ToDate string `json:"to_date"` // YYYY-MM-DD
}

func (h *Handler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.clock.advance")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req advanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("advance clock, unmarshal json params: %s", err)
		http.Error(w, "advance clock failed", http.StatusBadRequest)
		return
	}
	if req.GoalID == "" {
		http.Error(w, "goal_id is required", http.StatusBadRequest)
		return
	}

	toDate, err := time.Parse("2006-01-02", req.ToDate)
	if err != nil {
		http.Error(w, "to_date must be formatted as YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	result, err := h.service.Advance(ctx, req.GoalID, toDate)
	if err != nil {
		log.Errorf("advance clock for goal [%s]: %s", req.GoalID, err)
		resolution.WriteError(w, err)
		return
	}

	resultJson, err := json.Marshal(result)
	if err != nil {
		log.Errorf("failed to marshal advance result: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resultJson)
}
