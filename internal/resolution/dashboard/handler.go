package dashboard

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/resolvefit/backend/internal/resolution"
	"github.com/resolvefit/backend/internal/telemetry/tracing"
	"github.com/resolvefit/backend/pkg"

	"github.com/gorilla/mux"
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

func (h *Handler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.overview")
	defer span.End()

	view, err := h.service.Overview(ctx, mux.Vars(r)["goalId"])
	if err != nil {
		log.Errorf("dashboard overview: %s", err)
		resolution.WriteError(w, err)
		return
	}
	writeView(w, view)
}

func (h *Handler) HandleQuarter(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.quarter")
	defer span.End()

	vars := mux.Vars(r)
	quarter, err := strconv.Atoi(vars["quarter"])
	if err != nil {
		http.Error(w, "quarter must be a number", http.StatusBadRequest)
		return
	}

	view, err := h.service.Quarter(ctx, vars["goalId"], quarter)
	if err != nil {
		log.Errorf("dashboard quarter: %s", err)
		resolution.WriteError(w, err)
		return
	}
	writeView(w, view)
}

func (h *Handler) HandleWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.week")
	defer span.End()

	vars := mux.Vars(r)
	weekNumber, err := strconv.Atoi(vars["week"])
	if err != nil {
		http.Error(w, "week must be a number", http.StatusBadRequest)
		return
	}

	view, err := h.service.Week(ctx, vars["goalId"], weekNumber)
	if err != nil {
		log.Errorf("dashboard week: %s", err)
		resolution.WriteError(w, err)
		return
	}
	writeView(w, view)
}

func (h *Handler) HandleWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.workout")
	defer span.End()

	view, err := h.service.Workout(ctx, mux.Vars(r)["id"])
	if err != nil {
		log.Errorf("dashboard workout: %s", err)
		resolution.WriteError(w, err)
		return
	}
	writeView(w, view)
}

func writeView(w http.ResponseWriter, view any) {
	viewJson, err := json.Marshal(view)
	if err != nil {
		log.Errorf("failed to marshal dashboard view: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, viewJson)
}
