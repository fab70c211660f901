package modify

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

func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.modify.apply")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var mod resolution.Modification
	if err := json.NewDecoder(r.Body).Decode(&mod); err != nil {
		log.Errorf("apply modification, unmarshal json params: %s", err)
		http.Error(w, "apply modification failed", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	level := resolution.ModificationLevel(vars["level"])

	updated, err := h.service.Apply(ctx, level, vars["id"], mod)
	if err != nil {
		log.Errorf("apply modification [%s/%s]: %s", level, vars["id"], err)
		resolution.WriteError(w, err)
		return
	}

	updatedJson, err := json.Marshal(updated)
	if err != nil {
		log.Errorf("failed to marshal updated chain: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, updatedJson)
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.modify.history")
	defer span.End()

	vars := mux.Vars(r)
	level := resolution.ModificationLevel(vars["level"])

	records, err := h.service.History(ctx, level, vars["id"])
	if err != nil {
		log.Errorf("modification history [%s/%s]: %s", level, vars["id"], err)
		resolution.WriteError(w, err)
		return
	}
	if records == nil {
		records = []*resolution.ModificationRecord{}
	}

	recordsJson, err := json.Marshal(records)
	if err != nil {
		log.Errorf("failed to marshal modification records: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, recordsJson)
}
