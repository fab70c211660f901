package lifeevents

import (
	"encoding/json"
	"net/http"

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

func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.lifeevents.report")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var params ReportParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		log.Errorf("report life event, unmarshal json params: %s", err)
		http.Error(w, "report life event failed", http.StatusBadRequest)
		return
	}
	// the path owns the goal id, the body cannot redirect the event
	params.GoalID = mux.Vars(r)["goalId"]

	event, err := h.service.Report(ctx, params)
	if err != nil {
		log.Errorf("report life event: %s", err)
		resolution.WriteError(w, err)
		return
	}

	eventJson, err := json.Marshal(event)
	if err != nil {
		log.Errorf("failed to marshal life event: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, eventJson, http.StatusCreated)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.lifeevents.list")
	defer span.End()

	events, err := h.service.ListForGoal(ctx, mux.Vars(r)["goalId"])
	if err != nil {
		log.Errorf("list life events: %s", err)
		resolution.WriteError(w, err)
		return
	}
	writeEvents(w, events)
}

func (h *Handler) HandleListActive(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.lifeevents.listActive")
	defer span.End()

	events, err := h.service.ListActiveForGoal(ctx, mux.Vars(r)["goalId"])
	if err != nil {
		log.Errorf("list active life events: %s", err)
		resolution.WriteError(w, err)
		return
	}
	writeEvents(w, events)
}

func writeEvents(w http.ResponseWriter, events []*LifeEvent) {
	if events == nil {
		events = []*LifeEvent{}
	}

	eventsJson, err := json.Marshal(events)
	if err != nil {
		log.Errorf("failed to marshal life events: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, eventsJson)
}
