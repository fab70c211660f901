package goals

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

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.create")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var params CreateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		log.Errorf("create goal, unmarshal json params: %s", err)
		http.Error(w, "create goal failed", http.StatusBadRequest)
		return
	}

	result, err := h.service.Create(ctx, params)
	if err != nil {
		log.Errorf("create goal: %s", err)
		resolution.WriteError(w, err)
		return
	}

	resultJson, err := json.Marshal(result)
	if err != nil {
		log.Errorf("failed to marshal created goal: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, resultJson, http.StatusCreated)
}

func (h *Handler) HandleConfirmComplete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.confirmComplete")
	defer span.End()

	goal, err := h.service.ConfirmComplete(ctx, mux.Vars(r)["id"])
	if err != nil {
		log.Errorf("confirm goal completion: %s", err)
		resolution.WriteError(w, err)
		return
	}
	writeGoal(w, goal)
}

func (h *Handler) HandleAbandon(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.abandon")
	defer span.End()

	goal, err := h.service.Abandon(ctx, mux.Vars(r)["id"])
	if err != nil {
		log.Errorf("abandon goal: %s", err)
		resolution.WriteError(w, err)
		return
	}
	writeGoal(w, goal)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.list")
	defer span.End()

	goals, err := h.service.List(ctx)
	if err != nil {
		log.Errorf("list goals: %s", err)
		resolution.WriteError(w, err)
		return
	}
	if goals == nil {
		goals = []*resolution.YearlyGoal{}
	}

	goalsJson, err := json.Marshal(goals)
	if err != nil {
		log.Errorf("failed to marshal goals: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, goalsJson)
}

func writeGoal(w http.ResponseWriter, goal *resolution.YearlyGoal) {
	goalJson, err := json.Marshal(goal)
	if err != nil {
		log.Errorf("failed to marshal goal: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, goalJson)
}
