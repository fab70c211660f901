package ledger

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/resolvefit/backend/internal/resolution"
	"github.com/resolvefit/backend/internal/resolution/aggregate"
	"github.com/resolvefit/backend/internal/telemetry/tracing"
	"github.com/resolvefit/backend/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=ledger_test

type outcomeService interface {
	RecordOutcome(ctx context.Context, workoutID string, outcome Outcome) (aggregate.UpdatedChain, error)
	UndoOutcome(ctx context.Context, workoutID string) (aggregate.UpdatedChain, error)
	RecordContext(ctx context.Context, workoutID string, snapshot resolution.ContextSnapshot) (*resolution.DailyWorkout, error)
}

type Handler struct {
	service outcomeService
}

func NewHandler(service outcomeService) *Handler {
	return &Handler{
		service: service,
	}
}

type completeRequest struct {
	ActualDurationMinutes int                  `json:"actual_duration_minutes"`
	PerceivedIntensity    resolution.Intensity `json:"perceived_intensity"`
	HowItFelt             string               `json:"how_it_felt"`
	RPE                   *int                 `json:"rpe"`
	Difficulty            string               `json:"difficulty"`
	Notes                 string               `json:"notes"`
}

type skipRequest struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.ledger.complete")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("complete workout, unmarshal json params: %s", err)
		http.Error(w, "complete workout failed", http.StatusBadRequest)
		return
	}

	updated, err := h.service.RecordOutcome(ctx, mux.Vars(r)["id"], Outcome{
		Completed:             true,
		ActualDurationMinutes: req.ActualDurationMinutes,
		PerceivedIntensity:    req.PerceivedIntensity,
		HowItFelt:             req.HowItFelt,
		RPE:                   req.RPE,
		Difficulty:            req.Difficulty,
		Notes:                 req.Notes,
	})
	if err != nil {
		log.Errorf("complete workout: %s", err)
		resolution.WriteError(w, err)
		return
	}

	writeUpdatedChain(w, updated)
}

func (h *Handler) HandleSkip(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.ledger.skip")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req skipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("skip workout, unmarshal json params: %s", err)
		http.Error(w, "skip workout failed", http.StatusBadRequest)
		return
	}

	updated, err := h.service.RecordOutcome(ctx, mux.Vars(r)["id"], Outcome{
		Completed:  false,
		SkipReason: req.Reason,
		Notes:      req.Notes,
	})
	if err != nil {
		log.Errorf("skip workout: %s", err)
		resolution.WriteError(w, err)
		return
	}

	writeUpdatedChain(w, updated)
}

func (h *Handler) HandleContext(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.ledger.context")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var snapshot resolution.ContextSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
		log.Errorf("record workout context, unmarshal json params: %s", err)
		http.Error(w, "record workout context failed", http.StatusBadRequest)
		return
	}

	workout, err := h.service.RecordContext(ctx, mux.Vars(r)["id"], snapshot)
	if err != nil {
		log.Errorf("record workout context: %s", err)
		resolution.WriteError(w, err)
		return
	}

	workoutJson, err := json.Marshal(workout)
	if err != nil {
		log.Errorf("failed to marshal workout: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, workoutJson)
}

func (h *Handler) HandleUndo(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.ledger.undo")
	defer span.End()

	updated, err := h.service.UndoOutcome(ctx, mux.Vars(r)["id"])
	if err != nil {
		log.Errorf("undo workout outcome: %s", err)
		resolution.WriteError(w, err)
		return
	}

	writeUpdatedChain(w, updated)
}

func writeUpdatedChain(w http.ResponseWriter, updated aggregate.UpdatedChain) {
	updatedJson, err := json.Marshal(updated)
	if err != nil {
		log.Errorf("failed to marshal updated chain: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, updatedJson)
}
